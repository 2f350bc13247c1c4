package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/socialflow-api/api/swagger"
	"github.com/noah-isme/socialflow-api/internal/handler"
	internalmiddleware "github.com/noah-isme/socialflow-api/internal/middleware"
	"github.com/noah-isme/socialflow-api/internal/repository"
	"github.com/noah-isme/socialflow-api/internal/service"
	"github.com/noah-isme/socialflow-api/internal/widget"
	"github.com/noah-isme/socialflow-api/pkg/cache"
	"github.com/noah-isme/socialflow-api/pkg/config"
	"github.com/noah-isme/socialflow-api/pkg/database"
	"github.com/noah-isme/socialflow-api/pkg/export"
	"github.com/noah-isme/socialflow-api/pkg/i18n"
	"github.com/noah-isme/socialflow-api/pkg/jobs"
	"github.com/noah-isme/socialflow-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/socialflow-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/socialflow-api/pkg/middleware/requestid"
	"github.com/noah-isme/socialflow-api/pkg/sesskey"
)

// @title Social Flow API
// @version 1.0.0
// @description Ranked course activity feed for the host learning platform
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect database", "type", cfg.Database.Type, "error", err)
	}
	defer db.Close()

	location, err := time.LoadLocation(cfg.Site.Timezone)
	if err != nil {
		logr.Sugar().Warnw("unknown timezone, using UTC", "timezone", cfg.Site.Timezone, "error", err)
		location = time.UTC
	}

	metricsSvc := service.NewMetricsService()

	var redisClient redis.UniversalClient
	if cfg.Redis.Enabled {
		client, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer client.Close()
			redisClient = client
		}
	}
	cacheRepo := repository.NewCacheRepository(redisClient, "socialflow:"+cfg.Database.Prefix, logr)
	nbpaCache := service.NewCacheService(cacheRepo, metricsSvc, cfg.Nbpa.CacheTTL, logr, redisClient != nil)
	flowCache := service.NewCacheService(cacheRepo, metricsSvc, cfg.Flow.CacheTTL, logr, redisClient != nil && cfg.Flow.CacheEnabled)

	catalog, err := i18n.NewEnglish()
	if err != nil {
		logr.Sugar().Fatalw("failed to load string catalogue", "error", err)
	}
	renderer, err := widget.NewRenderer(catalog, cfg.Site.SurveyLink, location)
	if err != nil {
		logr.Sugar().Fatalw("failed to parse widget templates", "error", err)
	}
	validate := validator.New()

	tables := repository.Tables(cfg.Database.Prefix)
	dialect := database.Dialect(cfg.Database.Type)
	flowRepo := repository.NewFlowRepository(db, tables, dialect, cfg.Flow.LogComponent)
	courseRepo := repository.NewCourseRepository(db, tables)
	preferenceRepo := repository.NewPreferenceRepository(db, tables)
	participantRepo := repository.NewParticipantRepository(db, tables)
	accessRepo := repository.NewAccessRepository(db, tables)

	authSvc := service.NewAuthService(service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		Issuer:            cfg.JWT.Issuer,
	}, sesskey.NewSigner(cfg.Sesskey.Secret, 0), logr)
	accessSvc := service.NewAccessService(accessRepo, cfg.Site.Admins, cfg.Flow.TrackingRoles, logr)
	preferenceSvc := service.NewPreferenceService(preferenceRepo, validate, logr)
	participantSvc := service.NewParticipantService(participantRepo, nbpaCache, metricsSvc, service.ParticipantConfig{
		TrackingRoles: cfg.Flow.TrackingRoles,
		CacheTTL:      cfg.Nbpa.CacheTTL,
	}, logr)
	flowSvc := service.NewFlowService(flowRepo, courseRepo, preferenceSvc, participantSvc, accessSvc, flowCache, metricsSvc, catalog,
		service.FlowConfig{SiteURL: cfg.Site.URL, CacheTTL: cfg.Flow.CacheTTL, Location: location}, logr)
	exportSvc := service.NewExportService(export.NewCSVExporter(export.WithBOM()), export.NewPDFExporter(), catalog, location, logr)

	refresher := service.NewNbpaRefresher(participantSvc, nil, cfg.Nbpa.RefreshInterval, logr)
	refresher.SetRankedCache(flowSvc)
	refreshQueue := jobs.NewQueue("nbpa-refresh", refresher.Handle, jobs.QueueConfig{
		Workers:    cfg.Nbpa.RefreshWorkers,
		MaxRetries: cfg.Nbpa.RefreshRetries,
		JobTimeout: cfg.Nbpa.RefreshTimeout,
		Logger:     logr,
	})
	refresher.SetQueue(refreshQueue)
	refreshQueue.Start(ctx)
	defer refreshQueue.Stop()
	refresher.Start(ctx)

	socialFlowHandler := handler.NewSocialFlowHandler(flowSvc, authSvc, renderer, exportSvc, validate, logr)
	metricsHandler := handler.NewMetricsHandler(metricsSvc, db)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())
	r.NoRoute(handler.NotFound)

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(authSvc))
	{
		api.GET("/socialflow", socialFlowHandler.Widget)
		api.POST("/socialflow", socialFlowHandler.Widget)
		api.GET("/socialflow/data", socialFlowHandler.Data)
		api.GET("/socialflow/export", socialFlowHandler.Export)
		api.GET("/system/metrics", internalmiddleware.RequireSiteAdmin(accessSvc), metricsHandler.System)
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "db_type", cfg.Database.Type)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}

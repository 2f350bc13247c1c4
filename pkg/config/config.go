package config

import (
	"errors"
	"io/fs"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Sesskey  SesskeyConfig
	CORS     CORSConfig
	Log      LogConfig
	Site     SiteConfig
	Flow     FlowConfig
	Nbpa     NbpaConfig
}

type DatabaseConfig struct {
	Type         string
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	Path         string
	Prefix       string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

// SesskeyConfig configures the form session keys guarding preference writes.
type SesskeyConfig struct {
	Secret string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SiteConfig describes the host platform the widget is embedded in.
type SiteConfig struct {
	URL        string
	Admins     []int64
	Timezone   string
	SurveyLink string
}

// FlowConfig governs the ranked flow query and its cache.
type FlowConfig struct {
	CacheEnabled  bool
	CacheTTL      time.Duration
	TrackingRoles []string
	LogComponent  string
}

// NbpaConfig governs participant count caching and the periodic refresh job.
type NbpaConfig struct {
	CacheTTL        time.Duration
	RefreshInterval time.Duration
	RefreshWorkers  int
	RefreshRetries  int
	RefreshTimeout  time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Type:         strings.ToLower(v.GetString("DB_TYPE")),
		Driver:       v.GetString("DB_DRIVER"),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		Path:         v.GetString("DB_PATH"),
		Prefix:       v.GetString("DB_PREFIX"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.Sesskey = SesskeyConfig{Secret: v.GetString("SESSKEY_SECRET")}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Site = SiteConfig{
		URL:        strings.TrimRight(v.GetString("SITE_URL"), "/"),
		Admins:     parseIDs(v.GetString("SITE_ADMINS")),
		Timezone:   v.GetString("TIMEZONE"),
		SurveyLink: v.GetString("SURVEY_LINK"),
	}

	cfg.Flow = FlowConfig{
		CacheEnabled:  v.GetBool("ENABLE_FLOW_CACHE"),
		CacheTTL:      parseDuration(v.GetString("FLOW_CACHE_TTL"), 5*time.Minute),
		TrackingRoles: splitAndTrim(v.GetString("TRACKING_ROLES")),
		LogComponent:  v.GetString("LOG_COMPONENT"),
	}
	if len(cfg.Flow.TrackingRoles) == 0 {
		cfg.Flow.TrackingRoles = []string{"student"}
	}

	cfg.Nbpa = NbpaConfig{
		CacheTTL:        parseDuration(v.GetString("NBPA_CACHE_TTL"), time.Hour),
		RefreshInterval: parseDuration(v.GetString("NBPA_REFRESH_INTERVAL"), 24*time.Hour),
		RefreshWorkers:  v.GetInt("NBPA_REFRESH_WORKERS"),
		RefreshRetries:  v.GetInt("NBPA_REFRESH_RETRIES"),
		RefreshTimeout:  parseDuration(v.GetString("NBPA_REFRESH_TIMEOUT"), 2*time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_TYPE", "pgsql")
	v.SetDefault("DB_DRIVER", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "moodle")
	v.SetDefault("DB_PASSWORD", "moodle")
	v.SetDefault("DB_NAME", "moodle")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_PATH", "socialflow.db")
	v.SetDefault("DB_PREFIX", "mdl_")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "socialflow")
	v.SetDefault("SESSKEY_SECRET", "dev_sesskey_secret")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SITE_URL", "http://localhost")
	v.SetDefault("SITE_ADMINS", "2")
	v.SetDefault("TIMEZONE", "Europe/Brussels")
	v.SetDefault("SURVEY_LINK", "")

	v.SetDefault("ENABLE_FLOW_CACHE", false)
	v.SetDefault("FLOW_CACHE_TTL", "5m")
	v.SetDefault("TRACKING_ROLES", "student")
	v.SetDefault("LOG_COMPONENT", "logstore_socialflow")

	v.SetDefault("NBPA_CACHE_TTL", "1h")
	v.SetDefault("NBPA_REFRESH_INTERVAL", "24h")
	v.SetDefault("NBPA_REFRESH_WORKERS", 2)
	v.SetDefault("NBPA_REFRESH_RETRIES", 3)
	v.SetDefault("NBPA_REFRESH_TIMEOUT", "2m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

func parseIDs(raw string) []int64 {
	parts := splitAndTrim(raw)
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

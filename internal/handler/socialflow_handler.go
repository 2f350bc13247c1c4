package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/socialflow-api/internal/dto"
	"github.com/noah-isme/socialflow-api/internal/middleware"
	"github.com/noah-isme/socialflow-api/internal/models"
	"github.com/noah-isme/socialflow-api/internal/service"
	appErrors "github.com/noah-isme/socialflow-api/pkg/errors"
	"github.com/noah-isme/socialflow-api/pkg/response"
)

type flowBuilder interface {
	Build(ctx context.Context, userID int64, req dto.FlowRequest, sesskeyValid bool) (*models.Flow, error)
}

type sesskeyIssuer interface {
	Sesskey(claims *models.JWTClaims) (string, error)
	VerifySesskey(claims *models.JWTClaims, key string) bool
}

type widgetRenderer interface {
	Render(flow *models.Flow, sesskey string) ([]byte, error)
	RenderError(message string) ([]byte, error)
}

type flowExporter interface {
	Export(flow *models.Flow, format string) (*service.ExportFile, error)
}

// SocialFlowHandler serves the social flow widget, its JSON data and exports.
type SocialFlowHandler struct {
	flows    flowBuilder
	sesskeys sesskeyIssuer
	renderer widgetRenderer
	exporter flowExporter
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSocialFlowHandler constructs the handler.
func NewSocialFlowHandler(flows flowBuilder, sesskeys sesskeyIssuer, renderer widgetRenderer, exporter flowExporter, validate *validator.Validate, logger *zap.Logger) *SocialFlowHandler {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SocialFlowHandler{flows: flows, sesskeys: sesskeys, renderer: renderer, exporter: exporter, validate: validate, logger: logger}
}

// Widget godoc
// @Summary Social flow widget
// @Description Renders the widget HTML fragment. Submitted filter choices are stored when the sesskey is valid.
// @Tags SocialFlow
// @Accept x-www-form-urlencoded
// @Produce html
// @Param socialflow_optionchoice formData int false "Reference period in days" Enums(14, 7, 3, 1)
// @Param socialflow_typechoice formData string false "Action type" Enums(consult, contrib, both)
// @Param socialflow_itemnumchoice formData int false "Number of lines" Enums(5, 10, 15, 20, 30, 50, 100)
// @Param socialflow_courseschoice[] formData []int false "Course ids"
// @Param sesskey formData string false "Session key"
// @Success 200 {string} string "HTML fragment"
// @Router /socialflow [get]
// @Router /socialflow [post]
func (h *SocialFlowHandler) Widget(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	flow, err := h.build(c, claims)
	if err != nil {
		if errors.Is(err, appErrors.ErrNoData) {
			h.renderError(c)
			return
		}
		response.Error(c, err)
		return
	}

	sesskey, err := h.sesskeys.Sesskey(claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	body, err := h.renderer.Render(flow, sesskey)
	if err != nil {
		h.logger.Error("failed to render widget", zap.Int64("user_id", claims.UserID), zap.Error(err))
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render widget"))
		return
	}
	response.HTML(c, http.StatusOK, body)
}

// Data godoc
// @Summary Social flow data
// @Tags SocialFlow
// @Produce json
// @Param socialflow_optionchoice query int false "Reference period in days" Enums(14, 7, 3, 1)
// @Param socialflow_typechoice query string false "Action type" Enums(consult, contrib, both)
// @Param socialflow_itemnumchoice query int false "Number of lines" Enums(5, 10, 15, 20, 30, 50, 100)
// @Param sesskey query string false "Session key"
// @Success 200 {object} response.Envelope
// @Router /socialflow/data [get]
func (h *SocialFlowHandler) Data(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	start := time.Now()
	flow, err := h.build(c, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, flow.CacheHit)
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = map[string]interface{}{}
	}
	meta["cache_hit"] = flow.CacheHit
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, flow, meta)
}

// Export godoc
// @Summary Export the social flow
// @Tags SocialFlow
// @Produce text/csv
// @Produce application/pdf
// @Param format query string true "Export format" Enums(csv, pdf)
// @Success 200 {file} file
// @Router /socialflow/export [get]
func (h *SocialFlowHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var query dto.ExportQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, err.Error()))
		return
	}
	if err := h.validate.Struct(query); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf"))
		return
	}

	flow, err := h.flows.Build(c.Request.Context(), claims.UserID, dto.FlowRequest{}, false)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Export(flow, query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}

func (h *SocialFlowHandler) build(c *gin.Context, claims *models.JWTClaims) (*models.Flow, error) {
	var req dto.FlowRequest
	if err := c.ShouldBind(&req); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	valid := req.HasChoices() && h.sesskeys.VerifySesskey(claims, req.Sesskey)
	return h.flows.Build(c.Request.Context(), claims.UserID, req, valid)
}

func (h *SocialFlowHandler) renderError(c *gin.Context) {
	body, err := h.renderer.RenderError("")
	if err != nil {
		response.Error(c, appErrors.ErrNoData)
		return
	}
	response.HTML(c, http.StatusOK, body)
}

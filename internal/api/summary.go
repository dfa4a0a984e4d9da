package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"chatonline-world/backend/internal/models"
	"chatonline-world/backend/internal/service"
	apperrors "chatonline-world/backend/pkg/errors"
	"chatonline-world/backend/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SummaryController handles the summary endpoints
type SummaryController struct {
	summaryService *service.SummaryService
}

// NewSummaryController creates a new summary controller
func NewSummaryController(summaryService *service.SummaryService) *SummaryController {
	return &SummaryController{summaryService: summaryService}
}

// RegisterRoutes registers the summary routes. guards run in order in front
// of the location summary handler.
func (c *SummaryController) RegisterRoutes(router *gin.RouterGroup, guards ...gin.HandlerFunc) {
	router.GET("/summaries", c.ListSummaries)

	handlers := append(append([]gin.HandlerFunc{}, guards...), c.LocationSummary)
	router.GET("/ai/location-summary", handlers...)
}

// ListSummaries returns every stored summary, newest first
func (c *SummaryController) ListSummaries(ctx *gin.Context) {
	summaries, err := c.summaryService.List(ctx.Request.Context())
	if err != nil {
		ctx.Error(err)
		return
	}

	out := make([]models.SummaryDict, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, s.ToDict())
	}
	ctx.JSON(http.StatusOK, out)
}

// LocationSummary describes the place at the lat/lng query coordinate
func (c *SummaryController) LocationSummary(ctx *gin.Context) {
	rawLat := strings.TrimSpace(ctx.Query("lat"))
	rawLng := strings.TrimSpace(ctx.Query("lng"))
	if rawLat == "" || rawLng == "" {
		ctx.Error(apperrors.NewBadRequestError("MISSING_PARAMETERS", "Missing required query parameters: lat, lng"))
		return
	}

	lat, latErr := strconv.ParseFloat(rawLat, 64)
	lng, lngErr := strconv.ParseFloat(rawLng, 64)
	if latErr != nil || lngErr != nil {
		ctx.Error(apperrors.NewBadRequestError("INVALID_PARAMETERS", "lat and lng must be numeric"))
		return
	}

	summary, err := c.summaryService.GenerateLocationSummary(ctx.Request.Context(), lat, lng)
	if err != nil {
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) && appErr.Code == service.CodeModelResponse {
			logger.FromGin(ctx).Warn("Model response error", "error", err.Error())
			ctx.JSON(appErr.StatusCode, gin.H{
				"error":   appErr.Message,
				"details": appErr.Details,
			})
			return
		}
		ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, summary)
}

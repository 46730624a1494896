package suggestions

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/neighborly/internal/requests"
	"github.com/richxcame/neighborly/pkg/common"
	"github.com/richxcame/neighborly/pkg/logger"
	"github.com/richxcame/neighborly/pkg/middleware"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for suggestions
type Handler struct {
	service SuggestionProvider
}

// NewHandler creates a new suggestions handler
func NewHandler(service SuggestionProvider) *Handler {
	return &Handler{service: service}
}

type suggestionsRequest struct {
	Latitude           *float64 `form:"latitude" binding:"required,latitude"`
	Longitude          *float64 `form:"longitude" binding:"required,longitude"`
	MaxSuggestions     int      `form:"max_suggestions" binding:"omitempty,min=1,max=10"`
	IncludeExplanation *bool    `form:"include_explanation"`
	RadiusKm           float64  `form:"radius_km" binding:"omitempty,gt=0,lte=100"`
}

type trendingRequest struct {
	Hours int `form:"hours" binding:"omitempty,min=1,max=720"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=20"`
}

type weatherRequest struct {
	Latitude  *float64 `form:"latitude" binding:"required,latitude"`
	Longitude *float64 `form:"longitude" binding:"required,longitude"`
}

type insightsRequest struct {
	Latitude  *float64 `form:"latitude" binding:"required,latitude"`
	Longitude *float64 `form:"longitude" binding:"required,longitude"`
	RadiusKm  float64  `form:"radius_km" binding:"omitempty,gt=0,lte=100"`
}

// GetSuggestions handles ranking nearby requests for the caller
func (h *Handler) GetSuggestions(c *gin.Context) {
	userID, ok := common.RequireUserID(c, middleware.GetUserID)
	if !ok {
		return
	}

	var req suggestionsRequest
	if !common.BindQuery(c, &req) {
		return
	}

	includeExplanation := true
	if req.IncludeExplanation != nil {
		includeExplanation = *req.IncludeExplanation
	}

	result := h.service.GetSuggestions(c.Request.Context(), SuggestionQuery{
		UserID:             userID,
		Latitude:           *req.Latitude,
		Longitude:          *req.Longitude,
		MaxSuggestions:     req.MaxSuggestions,
		IncludeExplanation: includeExplanation,
		RadiusKm:           req.RadiusKm,
	})

	limit := req.MaxSuggestions
	if limit == 0 {
		limit = DefaultMaxSuggestions
	}
	common.SuccessResponseWithMeta(c, result, &common.Meta{
		Count:        len(result.Suggestions),
		Limit:        limit,
		Degraded:     result.Degraded(),
		Degradations: result.DegradationNames(),
	})
}

// GetTrendingCategories handles listing the most requested categories
func (h *Handler) GetTrendingCategories(c *gin.Context) {
	var req trendingRequest
	if !common.BindQuery(c, &req) {
		return
	}

	trending, err := h.service.GetTrendingCategories(c.Request.Context(), req.Hours, req.Limit)
	if err != nil {
		logger.WarnContext(c.Request.Context(), "trending categories unavailable", zap.Error(err))
		common.SuccessResponseWithMeta(c, []TrendingCategory{}, &common.Meta{
			Degraded:     true,
			Degradations: []string{string(DegradationTrendingUnavailable)},
		})
		return
	}

	common.SuccessResponseWithMeta(c, trending, &common.Meta{Count: len(trending)})
}

// GetWeather handles reporting current conditions at a coordinate
func (h *Handler) GetWeather(c *gin.Context) {
	var req weatherRequest
	if !common.BindQuery(c, &req) {
		return
	}

	report, err := h.service.CurrentWeather(c.Request.Context(), *req.Latitude, *req.Longitude)
	if common.HandleServiceError(c, asBadRequest(err), "failed to look up weather") {
		return
	}

	common.SuccessResponseWithMeta(c, report, &common.Meta{
		Degraded:     len(report.Degradations) > 0,
		Degradations: degradationNames(report.Degradations),
	})
}

// GetInsights handles summarising demand around the caller
func (h *Handler) GetInsights(c *gin.Context) {
	userID, ok := common.RequireUserID(c, middleware.GetUserID)
	if !ok {
		return
	}

	var req insightsRequest
	if !common.BindQuery(c, &req) {
		return
	}

	insights, err := h.service.GetInsights(c.Request.Context(), InsightsQuery{
		UserID:    userID,
		Latitude:  *req.Latitude,
		Longitude: *req.Longitude,
		RadiusKm:  req.RadiusKm,
	})
	if common.HandleServiceError(c, asBadRequest(err), "failed to build suggestion insights") {
		return
	}

	common.SuccessResponseWithMeta(c, insights, &common.Meta{
		Count:        insights.TotalNearbyRequests,
		Degraded:     insights.Degraded(),
		Degradations: degradationNames(insights.Degradations),
	})
}

// asBadRequest turns query validation failures into 400s.
func asBadRequest(err error) error {
	if errors.Is(err, ErrInvalidCoordinates) || errors.Is(err, requests.ErrInvalidRadius) {
		return common.NewBadRequestError(err.Error(), err)
	}
	return err
}

// RegisterRoutes registers suggestion routes behind bearer authentication
// and per-user rate limiting. limiter may be nil.
func (h *Handler) RegisterRoutes(r *gin.Engine, jwtSecret string, limiter middleware.RateLimiter) {
	api := r.Group("/api/v1/suggestions")
	api.Use(middleware.AuthMiddleware(jwtSecret), middleware.RateLimit(limiter))
	{
		api.GET("", h.GetSuggestions)
		api.GET("/trending", h.GetTrendingCategories)
		api.GET("/weather", h.GetWeather)
		api.GET("/insights", h.GetInsights)
	}
}

// NotFound answers unknown routes with the standard envelope
func NotFound(c *gin.Context) {
	common.ErrorResponse(c, http.StatusNotFound, "route not found")
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/cobenefits/internal/analytics"
	apierrors "github.com/stwalsh4118/cobenefits/internal/errors"
	"github.com/stwalsh4118/cobenefits/internal/middleware"
	"github.com/stwalsh4118/cobenefits/internal/services"
)

// DashboardHandler serves the dashboard aggregations as JSON.
type DashboardHandler struct {
	service services.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler instance.
func NewDashboardHandler(service services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		service: service,
	}
}

// SelectionRequest holds the query parameters shared by every dashboard
// endpoint except the repeatable nation parameter, which is read separately
// so an explicit empty selection can be told apart from no selection.
type SelectionRequest struct {
	Benefit string `form:"benefit" binding:"omitempty,max=64"`
}

// RankingRequest represents the query parameters for the ranking endpoint.
type RankingRequest struct {
	SelectionRequest
	Mode string `form:"mode" binding:"omitempty,oneof=total per_capita"`
}

// HeadToHeadRequest names the two local authorities to compare. Either may
// be omitted.
type HeadToHeadRequest struct {
	SelectionRequest
	A string `form:"a" binding:"omitempty,max=128"`
	B string `form:"b" binding:"omitempty,max=128"`
}

// bindQuery binds and validates query parameters into req, writing the error
// response itself. It reports whether the handler should continue.
func bindQuery(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindQuery(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			apierrors.ValidationError(c, validationErrors)
			return false
		}
		apierrors.BadRequest(c, "Invalid query parameters", nil)
		return false
	}
	return true
}

// queryFrom builds a service query. A missing nation parameter leaves
// Nations nil so the service applies the default selection.
func queryFrom(c *gin.Context, req SelectionRequest) services.Query {
	q := services.Query{Benefit: req.Benefit}
	if nations, ok := c.GetQueryArray("nation"); ok {
		q.Nations = nations
	}
	return q
}

// fail maps a service error onto the error envelope.
func fail(c *gin.Context, err error, action string) {
	switch {
	case errors.Is(err, services.ErrDatasetUnavailable):
		apierrors.DatasetUnavailable(c, err)
	case errors.Is(err, services.ErrEmptySelection):
		apierrors.EmptySelection(c)
	case errors.Is(err, services.ErrUnknownNation):
		apierrors.BadRequest(c, "Unknown nation", map[string]interface{}{"nation": c.QueryArray("nation")})
	case errors.Is(err, services.ErrUnknownBenefit):
		apierrors.BadRequest(c, "Unknown benefit category", map[string]interface{}{"benefit": c.Query("benefit")})
	case errors.Is(err, services.ErrUnknownRankMode):
		apierrors.BadRequest(c, "Unknown ranking mode", map[string]interface{}{"mode": c.Query("mode")})
	case errors.Is(err, services.ErrUnknownLocalAuthority):
		apierrors.NotFound(c, "Local authority not found")
	default:
		apierrors.InternalServerError(c, "Failed to "+action, err)
	}
}

// Filters handles GET /api/v1/filters.
func (h *DashboardHandler) Filters(c *gin.Context) {
	opts, err := h.service.Filters(c.Request.Context())
	if err != nil {
		fail(c, err, "load filter options")
		return
	}
	c.JSON(http.StatusOK, opts)
}

// Dashboard handles GET /api/v1/dashboard and returns every aggregation for
// the selection in one response.
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	var req HeadToHeadRequest
	if !bindQuery(c, &req) {
		return
	}

	d, err := h.service.Dashboard(c.Request.Context(), queryFrom(c, req.SelectionRequest), req.A, req.B)
	if err != nil {
		fail(c, err, "build dashboard")
		return
	}
	c.JSON(http.StatusOK, d)
}

// KPIs handles GET /api/v1/dashboard/kpis.
func (h *DashboardHandler) KPIs(c *gin.Context) {
	var req SelectionRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.service.KPIs(c.Request.Context(), queryFrom(c, req))
	if err != nil {
		fail(c, err, "compute KPIs")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Trend handles GET /api/v1/dashboard/trend.
func (h *DashboardHandler) Trend(c *gin.Context) {
	var req SelectionRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.service.Trend(c.Request.Context(), queryFrom(c, req))
	if err != nil {
		fail(c, err, "compute trend")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Ranking handles GET /api/v1/dashboard/ranking?mode=total|per_capita.
func (h *DashboardHandler) Ranking(c *gin.Context) {
	var req RankingRequest
	if !bindQuery(c, &req) {
		return
	}

	mode, err := analytics.ParseRankMode(req.Mode)
	if err != nil {
		fail(c, err, "rank local authorities")
		return
	}

	if log := middleware.GetLogger(c); log != nil {
		log.Debug("Processing ranking request", map[string]interface{}{
			"mode":    mode,
			"benefit": req.Benefit,
		})
	}

	result, err := h.service.Ranking(c.Request.Context(), queryFrom(c, req.SelectionRequest), mode)
	if err != nil {
		fail(c, err, "rank local authorities")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Correlation handles GET /api/v1/dashboard/correlation.
func (h *DashboardHandler) Correlation(c *gin.Context) {
	var req SelectionRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.service.Correlation(c.Request.Context(), queryFrom(c, req))
	if err != nil {
		fail(c, err, "compute correlations")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Scatter handles GET /api/v1/dashboard/scatter.
func (h *DashboardHandler) Scatter(c *gin.Context) {
	var req SelectionRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.service.Scatter(c.Request.Context(), queryFrom(c, req))
	if err != nil {
		fail(c, err, "compute scatter")
		return
	}
	c.JSON(http.StatusOK, result)
}

// HeadToHead handles GET /api/v1/dashboard/head-to-head?a=&b=.
func (h *DashboardHandler) HeadToHead(c *gin.Context) {
	var req HeadToHeadRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.service.HeadToHead(c.Request.Context(), queryFrom(c, req.SelectionRequest), req.A, req.B)
	if err != nil {
		fail(c, err, "compare local authorities")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Breakdown handles GET /api/v1/dashboard/breakdown.
func (h *DashboardHandler) Breakdown(c *gin.Context) {
	var req SelectionRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.service.Breakdown(c.Request.Context(), queryFrom(c, req))
	if err != nil {
		fail(c, err, "compute damage breakdown")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Comparison handles GET /api/v1/dashboard/comparison.
func (h *DashboardHandler) Comparison(c *gin.Context) {
	var req SelectionRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.service.Comparison(c.Request.Context(), queryFrom(c, req))
	if err != nil {
		fail(c, err, "compare benefits")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Insight handles GET /api/v1/dashboard/insight.
func (h *DashboardHandler) Insight(c *gin.Context) {
	var req SelectionRequest
	if !bindQuery(c, &req) {
		return
	}

	result, err := h.service.Insight(c.Request.Context(), queryFrom(c, req))
	if err != nil {
		fail(c, err, "generate insight")
		return
	}
	c.JSON(http.StatusOK, result)
}

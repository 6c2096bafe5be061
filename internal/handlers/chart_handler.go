package handlers

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/stwalsh4118/cobenefits/internal/errors"
	"github.com/stwalsh4118/cobenefits/internal/render"
	"github.com/stwalsh4118/cobenefits/internal/services"
)

// ChartHandler serves dashboard charts as PNG images.
type ChartHandler struct {
	service services.DashboardService
}

// NewChartHandler creates a new ChartHandler instance.
func NewChartHandler(service services.DashboardService) *ChartHandler {
	return &ChartHandler{service: service}
}

// ChartRequest represents the query parameters for the chart endpoint.
type ChartRequest struct {
	HeadToHeadRequest
	Width  int `form:"width" binding:"omitempty,gte=200,lte=2400"`
	Height int `form:"height" binding:"omitempty,gte=150,lte=1600"`
}

// Chart handles GET /api/v1/charts/:chart.
// A chart whose aggregation is empty answers 404 so the client can show an
// "unavailable" notice in its place.
func (h *ChartHandler) Chart(c *gin.Context) {
	chart, err := render.ParseChart(c.Param("chart"))
	if err != nil {
		apierrors.NotFound(c, "Unknown chart")
		return
	}

	var req ChartRequest
	if !bindQuery(c, &req) {
		return
	}

	d, err := h.service.Dashboard(c.Request.Context(), queryFrom(c, req.SelectionRequest), req.A, req.B)
	if err != nil {
		fail(c, err, "build dashboard")
		return
	}

	var buf bytes.Buffer
	size := render.Size{Width: req.Width, Height: req.Height}
	if err := render.Dashboard(&buf, chart, d, size); err != nil {
		if errors.Is(err, render.ErrNoData) {
			apierrors.NotFound(c, "Chart unavailable for this selection")
			return
		}
		apierrors.InternalServerError(c, "Failed to render chart", err)
		return
	}

	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

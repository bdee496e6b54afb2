package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-api/internal/service"
	"github.com/noah-isme/college-api/pkg/response"
)

// PerformanceHandler exposes the aggregated performance views.
type PerformanceHandler struct {
	performance *service.PerformanceService
	identity    *service.IdentityService
}

// NewPerformanceHandler constructs PerformanceHandler.
func NewPerformanceHandler(performance *service.PerformanceService, identity *service.IdentityService) *PerformanceHandler {
	return &PerformanceHandler{performance: performance, identity: identity}
}

// My godoc
// @Summary The calling student's performance summary
// @Tags Performance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /performance/me [get]
func (h *PerformanceHandler) My(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	perf, err := h.performance.MyPerformance(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, perf, nil)
}

// Class godoc
// @Summary Ranked per-student performance of a class
// @Tags Performance
// @Produce json
// @Security BearerAuth
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /performance/class/{classId} [get]
func (h *PerformanceHandler) Class(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.performance.ClassPerformance(c.Request.Context(), actor, c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Department godoc
// @Summary Per-class rollup for the calling HOD's department
// @Tags Performance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /performance/department [get]
func (h *PerformanceHandler) Department(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.performance.DepartmentPerformance(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Trend godoc
// @Summary The calling student's score trend by exam type
// @Tags Performance
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /performance/trend [get]
func (h *PerformanceHandler) Trend(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	points, err := h.performance.MyTrend(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, points, nil)
}

// Export godoc
// @Summary Export class performance as CSV or PDF
// @Tags Performance
// @Produce text/csv,application/pdf
// @Security BearerAuth
// @Param classId path string true "Class ID"
// @Param format query string false "Export format (csv or pdf)" default(csv)
// @Success 200 {file} byte
// @Router /performance/class/{classId}/export [get]
func (h *PerformanceHandler) Export(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	classID := c.Param("classId")
	format := c.DefaultQuery("format", "csv")
	payload, contentType, err := h.performance.ExportClassPerformance(c.Request.Context(), actor, classID, format)
	if err != nil {
		response.Error(c, err)
		return
	}
	filename := fmt.Sprintf("class-performance-%s.%s", classID, format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, payload)
}

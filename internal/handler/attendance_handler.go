package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/service"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
	"github.com/noah-isme/college-api/pkg/response"
)

// AttendanceHandler exposes attendance endpoints.
type AttendanceHandler struct {
	attendance *service.AttendanceService
	identity   *service.IdentityService
}

// NewAttendanceHandler constructs AttendanceHandler.
func NewAttendanceHandler(attendance *service.AttendanceService, identity *service.IdentityService) *AttendanceHandler {
	return &AttendanceHandler{attendance: attendance, identity: identity}
}

// RecordBatch godoc
// @Summary Record a class-day attendance roster
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.AttendanceBatchRequest true "Batch payload"
// @Success 201 {object} response.Envelope
// @Router /attendance/batch [post]
func (h *AttendanceHandler) RecordBatch(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.AttendanceBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.attendance.RecordBatch(c.Request.Context(), actor, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"recorded": len(req.Records)})
}

// RecordSingle godoc
// @Summary Record or correct one student's attendance
// @Tags Attendance
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.AttendanceSingleRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) RecordSingle(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.AttendanceSingleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.attendance.RecordSingle(c.Request.Context(), actor, req); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"recorded": 1})
}

// ListByDate godoc
// @Summary List a class-day roster
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param classId path string true "Class ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/class/{classId} [get]
func (h *AttendanceHandler) ListByDate(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.attendance.ListByDate(c.Request.Context(), actor, c.Param("classId"), c.Query("date"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// ListForStudent godoc
// @Summary List one student's attendance in a class
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param classId path string true "Class ID"
// @Param studentId path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/class/{classId}/student/{studentId} [get]
func (h *AttendanceHandler) ListForStudent(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	days, err := h.attendance.ListForStudent(c.Request.Context(), actor, c.Param("classId"), c.Param("studentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}

// ListMine godoc
// @Summary List the calling student's own attendance
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /attendance/mine [get]
func (h *AttendanceHandler) ListMine(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	days, err := h.attendance.ListMine(c.Request.Context(), actor, c.Query("from"), c.Query("to"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, days, nil)
}

// Summary godoc
// @Summary Per-student attendance summary of a class
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/class/{classId}/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.attendance.Summary(c.Request.Context(), actor, c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

// Top godoc
// @Summary Best-attending students of a class
// @Tags Attendance
// @Produce json
// @Security BearerAuth
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /attendance/class/{classId}/top [get]
func (h *AttendanceHandler) Top(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.attendance.Top(c.Request.Context(), actor, c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

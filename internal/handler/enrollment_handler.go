package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/service"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
	"github.com/noah-isme/college-api/pkg/response"
)

// EnrollmentHandler exposes enrollment workflow endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
	identity    *service.IdentityService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService, identity *service.IdentityService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments, identity: identity}
}

// Request godoc
// @Summary Request enrollment into a class
// @Tags Enrollments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.EnrollRequest true "Enrollment payload"
// @Success 201 {object} response.Envelope
// @Router /enrollments [post]
func (h *EnrollmentHandler) Request(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	enrollment, err := h.enrollments.Request(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, enrollment)
}

// Approve godoc
// @Summary Approve a pending enrollment request
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/approve [put]
func (h *EnrollmentHandler) Approve(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.enrollments.Approve(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// Reject godoc
// @Summary Reject a pending enrollment request
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enrollment ID"
// @Success 200 {object} response.Envelope
// @Router /enrollments/{id}/reject [put]
func (h *EnrollmentHandler) Reject(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	enrollment, err := h.enrollments.Reject(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, enrollment, nil)
}

// ListPending godoc
// @Summary List pending enrollment requests in scope
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /enrollments/pending [get]
func (h *EnrollmentHandler) ListPending(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	requests, err := h.enrollments.ListPending(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, requests, nil)
}

// ListMine godoc
// @Summary List the calling student's enrollments
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Param status query string false "Enrollment status" default(approved)
// @Success 200 {object} response.Envelope
// @Router /enrollments/mine [get]
func (h *EnrollmentHandler) ListMine(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := models.EnrollmentStatus(c.Query("status"))
	classes, err := h.enrollments.ListMine(c.Request.Context(), actor, status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// ListAvailable godoc
// @Summary List classes available for enrollment
// @Tags Enrollments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /enrollments/available [get]
func (h *EnrollmentHandler) ListAvailable(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	classes, err := h.enrollments.ListAvailable(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

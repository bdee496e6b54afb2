package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/service"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
	"github.com/noah-isme/college-api/pkg/response"
)

// ClassHandler exposes class endpoints.
type ClassHandler struct {
	classes  *service.ClassService
	identity *service.IdentityService
}

// NewClassHandler constructs ClassHandler.
func NewClassHandler(classes *service.ClassService, identity *service.IdentityService) *ClassHandler {
	return &ClassHandler{classes: classes, identity: identity}
}

// Create godoc
// @Summary Create a class
// @Tags Classes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	class, err := h.classes.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Get godoc
// @Summary Fetch one class
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	class, err := h.classes.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class, nil)
}

// ListMine godoc
// @Summary List the calling teacher's classes
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /classes/mine [get]
func (h *ClassHandler) ListMine(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	classes, err := h.classes.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// ListDepartment godoc
// @Summary List the department's classes
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /classes/department [get]
func (h *ClassHandler) ListDepartment(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	classes, err := h.classes.ListDepartment(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes, nil)
}

// Students godoc
// @Summary List approved students of a class
// @Tags Classes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/students [get]
func (h *ClassHandler) Students(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	students, err := h.classes.ListApprovedStudents(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

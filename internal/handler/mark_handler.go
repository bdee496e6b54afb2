package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/college-api/internal/models"
	"github.com/noah-isme/college-api/internal/service"
	appErrors "github.com/noah-isme/college-api/pkg/errors"
	"github.com/noah-isme/college-api/pkg/response"
)

// MarkHandler exposes mark endpoints.
type MarkHandler struct {
	marks    *service.MarkService
	identity *service.IdentityService
}

// NewMarkHandler constructs MarkHandler.
func NewMarkHandler(marks *service.MarkService, identity *service.IdentityService) *MarkHandler {
	return &MarkHandler{marks: marks, identity: identity}
}

// Create godoc
// @Summary Record an exam score
// @Tags Marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body models.CreateMarkRequest true "Mark payload"
// @Success 201 {object} response.Envelope
// @Router /marks [post]
func (h *MarkHandler) Create(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.CreateMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mark, err := h.marks.Create(c.Request.Context(), actor, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mark)
}

// Update godoc
// @Summary Correct an exam score
// @Tags Marks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mark ID"
// @Param payload body models.UpdateMarkRequest true "Update payload"
// @Success 200 {object} response.Envelope
// @Router /marks/{id} [put]
func (h *MarkHandler) Update(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req models.UpdateMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	mark, err := h.marks.Update(c.Request.Context(), actor, c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark, nil)
}

// Get godoc
// @Summary Fetch one mark
// @Tags Marks
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mark ID"
// @Success 200 {object} response.Envelope
// @Router /marks/{id} [get]
func (h *MarkHandler) Get(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	mark, err := h.marks.GetByID(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, mark, nil)
}

// List godoc
// @Summary List marks in scope
// @Tags Marks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /marks [get]
func (h *MarkHandler) List(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	marks, err := h.marks.List(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// ListByClass godoc
// @Summary List the calling teacher's marks for a class
// @Tags Marks
// @Produce json
// @Security BearerAuth
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /marks/class/{classId} [get]
func (h *MarkHandler) ListByClass(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	marks, err := h.marks.ListByClass(c.Request.Context(), actor, c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// ListMine godoc
// @Summary List the calling student's own marks
// @Tags Marks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /marks/mine [get]
func (h *MarkHandler) ListMine(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	marks, err := h.marks.ListMine(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// ListMineByClass godoc
// @Summary List the calling student's marks for a class
// @Tags Marks
// @Produce json
// @Security BearerAuth
// @Param classId path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /marks/mine/class/{classId} [get]
func (h *MarkHandler) ListMineByClass(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	marks, err := h.marks.ListMineByClass(c.Request.Context(), actor, c.Param("classId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, marks, nil)
}

// SubjectDifficulty godoc
// @Summary Rank subjects by lowest average score
// @Tags Marks
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /marks/subject-difficulty [get]
func (h *MarkHandler) SubjectDifficulty(c *gin.Context) {
	actor, err := actorFromContext(c, h.identity)
	if err != nil {
		response.Error(c, err)
		return
	}
	rows, err := h.marks.SubjectDifficulty(c.Request.Context(), actor)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rows, nil)
}

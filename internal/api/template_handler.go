package api

import (
	"net/http"

	"alcyxob/trainlog/internal/service"
	"alcyxob/trainlog/internal/validation"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	templates, err := h.templateService.ListTemplates(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, templates)
}

func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	var req validation.CreateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.CreateTemplate(c.Request.Context(), currentUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	templateID, ok := pathID(c, "id", service.ErrTemplateNotFound)
	if !ok {
		return
	}

	template, err := h.templateService.GetTemplate(c.Request.Context(), currentUser(c).ID, templateID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

func (h *TemplateHandler) UpdateTemplate(c *gin.Context) {
	templateID, ok := pathID(c, "id", service.ErrTemplateNotFound)
	if !ok {
		return
	}
	var req validation.UpdateTemplateRequest
	if !bindJSON(c, &req) {
		return
	}

	template, err := h.templateService.UpdateTemplate(c.Request.Context(), currentUser(c).ID, templateID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, template)
}

// DeleteTemplate removes a template and its planned exercises. Sessions created
// from it are untouched.
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	templateID, ok := pathID(c, "id", service.ErrTemplateNotFound)
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplate(c.Request.Context(), currentUser(c).ID, templateID); err != nil {
		respondError(c, err)
		return
	}
	success(c)
}

func (h *TemplateHandler) AddTemplateExercise(c *gin.Context) {
	templateID, ok := pathID(c, "id", service.ErrTemplateNotFound)
	if !ok {
		return
	}
	var req validation.AddTemplateExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	te, err := h.templateService.AddTemplateExercise(c.Request.Context(), currentUser(c).ID, templateID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, te)
}

func (h *TemplateHandler) UpdateTemplateExercise(c *gin.Context) {
	templateID, ok := pathID(c, "id", service.ErrTemplateNotFound)
	if !ok {
		return
	}
	teID, ok := pathID(c, "teId", service.ErrTemplateExerciseNotFound)
	if !ok {
		return
	}
	var req validation.UpdateTemplateExerciseRequest
	if !bindJSON(c, &req) {
		return
	}

	te, err := h.templateService.UpdateTemplateExercise(c.Request.Context(), currentUser(c).ID, templateID, teID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, te)
}

func (h *TemplateHandler) DeleteTemplateExercise(c *gin.Context) {
	templateID, ok := pathID(c, "id", service.ErrTemplateNotFound)
	if !ok {
		return
	}
	teID, ok := pathID(c, "teId", service.ErrTemplateExerciseNotFound)
	if !ok {
		return
	}

	if err := h.templateService.DeleteTemplateExercise(c.Request.Context(), currentUser(c).ID, templateID, teID); err != nil {
		respondError(c, err)
		return
	}
	success(c)
}

package api

import (
	"alcyxob/fitness-coach/internal/planfile"
	"alcyxob/fitness-coach/internal/service"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// maxPlanFileSize bounds imported plan files.
const maxPlanFileSize = 1 << 20

type TemplateHandler struct {
	templateService service.TemplateService
}

func NewTemplateHandler(templateService service.TemplateService) *TemplateHandler {
	return &TemplateHandler{templateService: templateService}
}

type RenameTemplateRequest struct {
	Title string `json:"title" binding:"required"`
}

type CopyTemplateRequest struct {
	Title string `json:"title"` // Optional; defaults to the source title
}

// CreateTemplate godoc
// @Summary Create a template with empty days
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param template body service.TemplateInput true "Title and number of days (1-7)"
// @Success 201 {object} service.TemplateTree
// @Failure 400 {object} gin.H "Invalid input"
// @Router /trainer/templates [post]
func (h *TemplateHandler) CreateTemplate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	var req service.TemplateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	tree, err := h.templateService.CreateTemplate(c.Request.Context(), actor, req)
	if err != nil {
		respondError(c, err, "create template")
		return
	}
	c.JSON(http.StatusCreated, tree)
}

// ListTemplates godoc
// @Summary List the coach's template library
// @Description Backing templates of from-scratch plans are not listed.
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.Template
// @Router /trainer/templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	templates, err := h.templateService.ListTemplates(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "list templates")
		return
	}
	c.JSON(http.StatusOK, templates)
}

// GetTemplate godoc
// @Summary Get a template with its days, exercises and sets
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.TemplateTree
// @Failure 404 {object} gin.H "Template not found"
// @Router /trainer/templates/{templateId} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}
	tree, err := h.templateService.GetTemplate(c.Request.Context(), actor, templateID)
	if err != nil {
		respondError(c, err, "load template")
		return
	}
	c.JSON(http.StatusOK, tree)
}

func (h *TemplateHandler) RenameTemplate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}
	var req RenameTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	tpl, err := h.templateService.RenameTemplate(c.Request.Context(), actor, templateID, req.Title)
	if err != nil {
		respondError(c, err, "rename template")
		return
	}
	c.JSON(http.StatusOK, tpl)
}

// DeleteTemplate godoc
// @Summary Delete a template and its tree
// @Tags Templates
// @Security BearerAuth
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Template not found"
// @Failure 409 {object} gin.H "A mesocycle still trains from this template"
// @Router /trainer/templates/{templateId} [delete]
func (h *TemplateHandler) DeleteTemplate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}
	if err := h.templateService.DeleteTemplate(c.Request.Context(), actor, templateID); err != nil {
		respondError(c, err, "delete template")
		return
	}
	c.Status(http.StatusNoContent)
}

// DuplicateTemplate godoc
// @Summary Copy a template into a new independent template
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param copy body CopyTemplateRequest false "Optional title"
// @Success 201 {object} service.TemplateTree
// @Failure 404 {object} gin.H "Template not found"
// @Router /trainer/templates/{templateId}/duplicate [post]
func (h *TemplateHandler) DuplicateTemplate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	templateID, ok := objectIDParam(c, "templateId")
	if !ok {
		return
	}
	req, ok := bindOptionalCopy(c)
	if !ok {
		return
	}
	tree, err := h.templateService.DuplicateTemplate(c.Request.Context(), actor, templateID, req.Title)
	if err != nil {
		respondError(c, err, "duplicate template")
		return
	}
	c.JSON(http.StatusCreated, tree)
}

// ImportTemplate godoc
// @Summary Create a template from a TOML or YAML plan file
// @Description The request body is the file itself. The format comes from the
// @Description format query parameter, or else from the Content-Type header.
// @Tags Templates
// @Accept plain
// @Produce json
// @Security BearerAuth
// @Param format query string false "toml or yaml"
// @Success 201 {object} service.TemplateTree
// @Failure 400 {object} gin.H "Unreadable or invalid plan"
// @Router /trainer/template-imports [post]
func (h *TemplateHandler) ImportTemplate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPlanFileSize+1))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to read plan file")
		return
	}
	if len(data) > maxPlanFileSize {
		abortWithError(c, http.StatusRequestEntityTooLarge, "Plan file is too large")
		return
	}

	plan, err := planfile.Parse(data, importFormat(c))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	draft, err := plan.Draft()
	if err != nil {
		abortWithError(c, http.StatusBadRequest, err.Error())
		return
	}
	tree, err := h.templateService.ImportTemplate(c.Request.Context(), actor, draft)
	if err != nil {
		respondError(c, err, "import template")
		return
	}
	c.JSON(http.StatusCreated, tree)
}

func importFormat(c *gin.Context) planfile.Format {
	if f := strings.ToLower(c.Query("format")); f != "" {
		if f == "yml" {
			return planfile.FormatYAML
		}
		return planfile.Format(f)
	}
	if strings.Contains(strings.ToLower(c.ContentType()), "yaml") {
		return planfile.FormatYAML
	}
	return planfile.FormatTOML
}

// bindOptionalCopy accepts an empty body as "no title given".
func bindOptionalCopy(c *gin.Context) (CopyTemplateRequest, bool) {
	var req CopyTemplateRequest
	if c.Request.ContentLength == 0 {
		return req, true
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return req, false
	}
	return req, true
}

package api

import (
	"alcyxob/fitness-coach/internal/service"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the calendar date format of mesocycle start dates.
const DateLayout = "2006-01-02"

type MesocycleHandler struct {
	cycleService service.CycleService
}

func NewMesocycleHandler(cycleService service.CycleService) *MesocycleHandler {
	return &MesocycleHandler{cycleService: cycleService}
}

// CreateMesocycleRequest selects the plan either by templateId or by
// dayCount for a from-scratch plan.
type CreateMesocycleRequest struct {
	TemplateID    string `json:"templateId"`
	DayCount      int    `json:"dayCount"`
	Title         string `json:"title"`
	StartDate     string `json:"startDate" binding:"required"` // YYYY-MM-DD
	DurationWeeks int    `json:"durationWeeks"`
}

func (r CreateMesocycleRequest) toInput(clientID primitive.ObjectID) (service.CreateMesocycleInput, error) {
	in := service.CreateMesocycleInput{
		ClientID:      clientID,
		DayCount:      r.DayCount,
		Title:         r.Title,
		DurationWeeks: r.DurationWeeks,
	}
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return in, err
	}
	in.StartDate = start
	if r.TemplateID != "" {
		id, err := primitive.ObjectIDFromHex(r.TemplateID)
		if err != nil {
			return in, err
		}
		in.TemplateID = &id
	}
	return in, nil
}

// CreateMesocycle godoc
// @Summary Start a mesocycle for a client
// @Description Completes the client's current mesocycle and creates the new
// @Description active one with one microcycle per week.
// @Tags Mesocycles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Param mesocycle body CreateMesocycleRequest true "Plan source, start date and duration"
// @Success 201 {object} service.MesocycleView
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Client or template not found"
// @Router /trainer/clients/{clientId}/mesocycles [post]
func (h *MesocycleHandler) CreateMesocycle(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	clientID, ok := objectIDParam(c, "clientId")
	if !ok {
		return
	}
	var req CreateMesocycleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	in, err := req.toInput(clientID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	view, err := h.cycleService.CreateMesocycle(c.Request.Context(), actor, in)
	if err != nil {
		respondError(c, err, "create mesocycle")
		return
	}
	c.JSON(http.StatusCreated, view)
}

// ListClientMesocycles godoc
// @Summary List a managed client's mesocycles, newest first
// @Tags Mesocycles
// @Produce json
// @Security BearerAuth
// @Param clientId path string true "Client ID"
// @Success 200 {array} domain.Mesocycle
// @Failure 404 {object} gin.H "Client not found"
// @Router /trainer/clients/{clientId}/mesocycles [get]
func (h *MesocycleHandler) ListClientMesocycles(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	clientID, ok := objectIDParam(c, "clientId")
	if !ok {
		return
	}
	mesocycles, err := h.cycleService.ListClientMesocycles(c.Request.Context(), actor, clientID)
	if err != nil {
		respondError(c, err, "list mesocycles")
		return
	}
	c.JSON(http.StatusOK, mesocycles)
}

// GetMesocycle godoc
// @Summary Get a mesocycle with its weeks and current day tree
// @Description Open to the coach who created it and the client it belongs to.
// @Tags Mesocycles
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.MesocycleView
// @Failure 404 {object} gin.H "Mesocycle not found"
// @Router /mesocycles/{mesocycleId} [get]
func (h *MesocycleHandler) GetMesocycle(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	mesocycleID, ok := objectIDParam(c, "mesocycleId")
	if !ok {
		return
	}
	view, err := h.cycleService.GetMesocycle(c.Request.Context(), actor, mesocycleID)
	if err != nil {
		respondError(c, err, "load mesocycle")
		return
	}
	c.JSON(http.StatusOK, view)
}

// ListLoggedWeeks godoc
// @Summary Weeks of a mesocycle that have workout logs
// @Tags Mesocycles
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.LoggedWeek
// @Router /mesocycles/{mesocycleId}/logged-weeks [get]
func (h *MesocycleHandler) ListLoggedWeeks(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	mesocycleID, ok := objectIDParam(c, "mesocycleId")
	if !ok {
		return
	}
	weeks, err := h.cycleService.ListLoggedWeeks(c.Request.Context(), actor, mesocycleID)
	if err != nil {
		respondError(c, err, "list logged weeks")
		return
	}
	c.JSON(http.StatusOK, weeks)
}

func (h *MesocycleHandler) CompleteMesocycle(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	mesocycleID, ok := objectIDParam(c, "mesocycleId")
	if !ok {
		return
	}
	m, err := h.cycleService.CompleteMesocycle(c.Request.Context(), actor, mesocycleID)
	if err != nil {
		respondError(c, err, "complete mesocycle")
		return
	}
	c.JSON(http.StatusOK, m)
}

// SaveAsTemplate godoc
// @Summary Save the mesocycle's current plan as a new template
// @Tags Mesocycles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param copy body CopyTemplateRequest false "Optional title, defaults to the mesocycle title"
// @Success 201 {object} service.TemplateTree
// @Router /trainer/mesocycles/{mesocycleId}/save-as-template [post]
func (h *MesocycleHandler) SaveAsTemplate(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	mesocycleID, ok := objectIDParam(c, "mesocycleId")
	if !ok {
		return
	}
	req, ok := bindOptionalCopy(c)
	if !ok {
		return
	}
	tree, err := h.cycleService.SaveAsTemplate(c.Request.Context(), actor, mesocycleID, req.Title)
	if err != nil {
		respondError(c, err, "save mesocycle as template")
		return
	}
	c.JSON(http.StatusCreated, tree)
}

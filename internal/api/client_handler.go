package api

import (
	"alcyxob/fitness-coach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ClientHandler serves the client's view of their plan and workout logging.
type ClientHandler struct {
	cycleService service.CycleService
	logService   service.LogService
}

func NewClientHandler(cycleService service.CycleService, logService service.LogService) *ClientHandler {
	return &ClientHandler{cycleService: cycleService, logService: logService}
}

// GetActiveMesocycle godoc
// @Summary The client's active mesocycle
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.MesocycleView
// @Failure 404 {object} gin.H "No active mesocycle"
// @Router /client/active-mesocycle [get]
func (h *ClientHandler) GetActiveMesocycle(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	view, err := h.cycleService.GetActiveMesocycle(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err, "load active mesocycle")
		return
	}
	c.JSON(http.StatusOK, view)
}

func (h *ClientHandler) ListMyMesocycles(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	mesocycles, err := h.cycleService.ListClientMesocycles(c.Request.Context(), actor, actor.ID)
	if err != nil {
		respondError(c, err, "list mesocycles")
		return
	}
	c.JSON(http.StatusOK, mesocycles)
}

// RecordWorkout godoc
// @Summary Log a completed training day
// @Description The log and all its exercise and set entries are stored together or not at all.
// @Tags Client
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param microcycleId path string true "Microcycle (week) ID"
// @Param workout body service.WorkoutInput true "Completed workout"
// @Success 201 {object} domain.WorkoutDayLog
// @Failure 400 {object} gin.H "Invalid input, or the day is not in the current plan"
// @Failure 404 {object} gin.H "Microcycle not found"
// @Router /client/microcycles/{microcycleId}/logs [post]
func (h *ClientHandler) RecordWorkout(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	microcycleID, ok := objectIDParam(c, "microcycleId")
	if !ok {
		return
	}
	var req service.WorkoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	entry, err := h.logService.RecordWorkout(c.Request.Context(), actor, microcycleID, req)
	if err != nil {
		respondError(c, err, "record workout")
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (h *ClientHandler) UpdateWorkout(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	logID, ok := objectIDParam(c, "logId")
	if !ok {
		return
	}
	var req service.WorkoutInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	entry, err := h.logService.UpdateWorkout(c.Request.Context(), actor, logID, req)
	if err != nil {
		respondError(c, err, "update workout")
		return
	}
	c.JSON(http.StatusOK, entry)
}

// ListMicrocycleLogs godoc
// @Summary Workout logs of one week
// @Description Open to the client and the coach of the mesocycle.
// @Tags Client
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.WorkoutDayLog
// @Router /microcycles/{microcycleId}/logs [get]
func (h *ClientHandler) ListMicrocycleLogs(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	microcycleID, ok := objectIDParam(c, "microcycleId")
	if !ok {
		return
	}
	logs, err := h.logService.ListMicrocycleLogs(c.Request.Context(), actor, microcycleID)
	if err != nil {
		respondError(c, err, "list workout logs")
		return
	}
	c.JSON(http.StatusOK, logs)
}

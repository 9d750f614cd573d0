package api

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/ordering"
	"alcyxob/fitness-coach/internal/service"
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// dayTreeEditor is the editing surface shared by templates and mesocycles.
// For a mesocycle the first edit forks the plan.
type dayTreeEditor interface {
	AddDay(ctx context.Context, actor service.Actor, ownerID primitive.ObjectID, in service.DayInput) (*domain.Day, error)
	UpdateDay(ctx context.Context, actor service.Actor, ownerID, dayID primitive.ObjectID, in service.DayInput) (*domain.Day, error)
	DeleteDay(ctx context.Context, actor service.Actor, ownerID, dayID primitive.ObjectID) error
	ReorderDays(ctx context.Context, actor service.Actor, ownerID primitive.ObjectID, changes []ordering.Item) ([]domain.Day, error)
	AddExercise(ctx context.Context, actor service.Actor, ownerID, dayID primitive.ObjectID, in service.ExerciseInput) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, actor service.Actor, ownerID, dayID, exerciseID primitive.ObjectID, in service.ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, actor service.Actor, ownerID, dayID, exerciseID primitive.ObjectID) error
	ReorderExercises(ctx context.Context, actor service.Actor, ownerID, dayID primitive.ObjectID, changes []ordering.Item) ([]domain.Exercise, error)
}

// ReorderRequest lists (id, order) pairs applied in one step. Siblings not
// listed keep their order.
type ReorderRequest struct {
	Items []ordering.Item `json:"items" binding:"required,min=1"`
}

// TreeHandler serves day and exercise edits for one kind of owner. ownerParam
// names the path parameter holding the owner id.
type TreeHandler struct {
	editor     dayTreeEditor
	ownerParam string
}

func NewTreeHandler(editor dayTreeEditor, ownerParam string) *TreeHandler {
	return &TreeHandler{editor: editor, ownerParam: ownerParam}
}

// Register mounts the edit routes on a group whose path already contains
// the owner parameter.
func (h *TreeHandler) Register(g *gin.RouterGroup) {
	g.POST("/days", h.AddDay)
	g.PUT("/day-order", h.ReorderDays)
	g.PATCH("/days/:dayId", h.UpdateDay)
	g.DELETE("/days/:dayId", h.DeleteDay)
	g.POST("/days/:dayId/exercises", h.AddExercise)
	g.PUT("/days/:dayId/exercise-order", h.ReorderExercises)
	g.PUT("/days/:dayId/exercises/:exerciseId", h.UpdateExercise)
	g.DELETE("/days/:dayId/exercises/:exerciseId", h.DeleteExercise)
}

// path reads the actor and the owner id plus the named path ids. It aborts
// the request and returns false on the first bad value.
func (h *TreeHandler) path(c *gin.Context, names ...string) (service.Actor, []primitive.ObjectID, bool) {
	actor, ok := actorFromContext(c)
	if !ok {
		return actor, nil, false
	}
	ids := make([]primitive.ObjectID, 0, len(names)+1)
	for _, name := range append([]string{h.ownerParam}, names...) {
		id, ok := objectIDParam(c, name)
		if !ok {
			return actor, nil, false
		}
		ids = append(ids, id)
	}
	return actor, ids, true
}

// AddDay godoc
// @Summary Append a day to the plan
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param day body service.DayInput true "Day title"
// @Success 201 {object} domain.Day
// @Failure 400 {object} gin.H "Invalid input or the plan already has 7 days"
// @Failure 404 {object} gin.H "Plan not found"
// @Router /trainer/templates/{templateId}/days [post]
// @Router /trainer/mesocycles/{mesocycleId}/days [post]
func (h *TreeHandler) AddDay(c *gin.Context) {
	actor, ids, ok := h.path(c)
	if !ok {
		return
	}
	var req service.DayInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	day, err := h.editor.AddDay(c.Request.Context(), actor, ids[0], req)
	if err != nil {
		respondError(c, err, "add day")
		return
	}
	c.JSON(http.StatusCreated, day)
}

func (h *TreeHandler) UpdateDay(c *gin.Context) {
	actor, ids, ok := h.path(c, "dayId")
	if !ok {
		return
	}
	var req service.DayInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	day, err := h.editor.UpdateDay(c.Request.Context(), actor, ids[0], ids[1], req)
	if err != nil {
		respondError(c, err, "update day")
		return
	}
	c.JSON(http.StatusOK, day)
}

// DeleteDay godoc
// @Summary Delete a day and its exercises
// @Description Remaining days are renumbered 1..N. Days with workout logs cannot be deleted.
// @Tags Plans
// @Security BearerAuth
// @Success 204 "Deleted"
// @Failure 404 {object} gin.H "Plan or day not found"
// @Failure 409 {object} gin.H "Day has workout logs"
// @Router /trainer/templates/{templateId}/days/{dayId} [delete]
// @Router /trainer/mesocycles/{mesocycleId}/days/{dayId} [delete]
func (h *TreeHandler) DeleteDay(c *gin.Context) {
	actor, ids, ok := h.path(c, "dayId")
	if !ok {
		return
	}
	if err := h.editor.DeleteDay(c.Request.Context(), actor, ids[0], ids[1]); err != nil {
		respondError(c, err, "delete day")
		return
	}
	c.Status(http.StatusNoContent)
}

// ReorderDays godoc
// @Summary Move days
// @Description Applies every (id, order) pair or none of them. Day numbers are compacted to 1..N afterwards.
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param order body ReorderRequest true "New positions"
// @Success 200 {array} domain.Day
// @Failure 400 {object} gin.H "Unknown id or duplicate positions"
// @Router /trainer/templates/{templateId}/day-order [put]
// @Router /trainer/mesocycles/{mesocycleId}/day-order [put]
func (h *TreeHandler) ReorderDays(c *gin.Context) {
	actor, ids, ok := h.path(c)
	if !ok {
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	days, err := h.editor.ReorderDays(c.Request.Context(), actor, ids[0], req.Items)
	if err != nil {
		respondError(c, err, "reorder days")
		return
	}
	c.JSON(http.StatusOK, days)
}

// AddExercise godoc
// @Summary Append an exercise with its sets to a day
// @Tags Plans
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exercise body service.ExerciseInput true "Exercise"
// @Success 201 {object} domain.Exercise
// @Failure 400 {object} gin.H "Invalid input"
// @Failure 404 {object} gin.H "Plan or day not found"
// @Router /trainer/templates/{templateId}/days/{dayId}/exercises [post]
// @Router /trainer/mesocycles/{mesocycleId}/days/{dayId}/exercises [post]
func (h *TreeHandler) AddExercise(c *gin.Context) {
	actor, ids, ok := h.path(c, "dayId")
	if !ok {
		return
	}
	var req service.ExerciseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ex, err := h.editor.AddExercise(c.Request.Context(), actor, ids[0], ids[1], req)
	if err != nil {
		respondError(c, err, "add exercise")
		return
	}
	c.JSON(http.StatusCreated, ex)
}

func (h *TreeHandler) UpdateExercise(c *gin.Context) {
	actor, ids, ok := h.path(c, "dayId", "exerciseId")
	if !ok {
		return
	}
	var req service.ExerciseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ex, err := h.editor.UpdateExercise(c.Request.Context(), actor, ids[0], ids[1], ids[2], req)
	if err != nil {
		respondError(c, err, "update exercise")
		return
	}
	c.JSON(http.StatusOK, ex)
}

func (h *TreeHandler) DeleteExercise(c *gin.Context) {
	actor, ids, ok := h.path(c, "dayId", "exerciseId")
	if !ok {
		return
	}
	if err := h.editor.DeleteExercise(c.Request.Context(), actor, ids[0], ids[1], ids[2]); err != nil {
		respondError(c, err, "delete exercise")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *TreeHandler) ReorderExercises(c *gin.Context) {
	actor, ids, ok := h.path(c, "dayId")
	if !ok {
		return
	}
	var req ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	exercises, err := h.editor.ReorderExercises(c.Request.Context(), actor, ids[0], ids[1], req.Items)
	if err != nil {
		respondError(c, err, "reorder exercises")
		return
	}
	c.JSON(http.StatusOK, exercises)
}

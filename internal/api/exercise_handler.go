package api

import (
	"alcyxob/fitness-coach/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ExerciseHandler serves demo videos attached to planned exercises.
type ExerciseHandler struct {
	uploadService service.UploadService
}

func NewExerciseHandler(uploadService service.UploadService) *ExerciseHandler {
	return &ExerciseHandler{uploadService: uploadService}
}

type RequestUploadURLRequest struct {
	ContentType string `json:"contentType" binding:"required"` // e.g. "video/mp4"
}

type ConfirmUploadRequest struct {
	ObjectKey   string `json:"objectKey" binding:"required"`
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType" binding:"required"`
	Size        int64  `json:"size" binding:"min=0"`
}

type VideoDownloadURLResponse struct {
	DownloadURL string `json:"downloadUrl"`
}

// RequestVideoUploadURL godoc
// @Summary Get a presigned URL to upload an exercise demo video
// @Description The client uploads straight to object storage, then calls the confirm endpoint with the returned objectKey.
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param request body RequestUploadURLRequest true "Video content type"
// @Success 200 {object} service.UploadURLResponse
// @Failure 400 {object} gin.H "Not a video content type"
// @Failure 404 {object} gin.H "Exercise not found"
// @Router /trainer/exercises/{exerciseId}/video/upload-url [post]
func (h *ExerciseHandler) RequestVideoUploadURL(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	var req RequestUploadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	resp, err := h.uploadService.RequestVideoUploadURL(c.Request.Context(), actor, exerciseID, req.ContentType)
	if err != nil {
		respondError(c, err, "generate upload URL")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ConfirmVideoUpload godoc
// @Summary Attach an uploaded video to the exercise
// @Tags Exercises
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Param request body ConfirmUploadRequest true "Upload details"
// @Success 200 {object} domain.Exercise
// @Failure 400 {object} gin.H "Object key was not issued for this exercise"
// @Failure 409 {object} gin.H "Upload already confirmed"
// @Router /trainer/exercises/{exerciseId}/video/confirm [post]
func (h *ExerciseHandler) ConfirmVideoUpload(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	var req ConfirmUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	ex, err := h.uploadService.ConfirmVideoUpload(c.Request.Context(), actor, exerciseID, service.VideoConfirmation{
		ObjectKey:   req.ObjectKey,
		FileName:    req.FileName,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		respondError(c, err, "confirm upload")
		return
	}
	c.JSON(http.StatusOK, ex)
}

// GetVideoDownloadURL godoc
// @Summary Get a temporary link to the exercise's demo video
// @Tags Exercises
// @Produce json
// @Security BearerAuth
// @Param exerciseId path string true "Exercise ID"
// @Success 200 {object} VideoDownloadURLResponse
// @Failure 404 {object} gin.H "Exercise or video not found"
// @Router /exercises/{exerciseId}/video [get]
func (h *ExerciseHandler) GetVideoDownloadURL(c *gin.Context) {
	actor, ok := actorFromContext(c)
	if !ok {
		return
	}
	exerciseID, ok := objectIDParam(c, "exerciseId")
	if !ok {
		return
	}
	url, err := h.uploadService.GetVideoDownloadURL(c.Request.Context(), actor, exerciseID)
	if err != nil {
		respondError(c, err, "generate download URL")
		return
	}
	c.JSON(http.StatusOK, VideoDownloadURLResponse{DownloadURL: url})
}

package service

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/storage"
	"context"
	"errors"
	"fmt"
	"log"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var (
	ErrUploadURLError        = errors.New("failed to generate upload URL")
	ErrDownloadURLError      = errors.New("failed to generate download URL")
	ErrUploadMetadataMissing = fmt.Errorf("%w: exercise has no uploaded video", ErrNotFound)
)

// UploadURLResponse structure for returning URL and object key
type UploadURLResponse struct {
	UploadURL string `json:"uploadUrl"`
	ObjectKey string `json:"objectKey"` // The key to report back on confirm
}

// VideoConfirmation describes a finished direct upload to object storage.
type VideoConfirmation struct {
	ObjectKey   string `json:"objectKey" validate:"required"`
	FileName    string `json:"fileName" validate:"max=255"`
	ContentType string `json:"contentType" validate:"required"`
	Size        int64  `json:"size" validate:"min=0"`
}

// UploadService handles exercise demo videos. Files go straight to object
// storage through presigned URLs; only the object key is stored.
type UploadService interface {
	RequestVideoUploadURL(ctx context.Context, actor Actor, exerciseID primitive.ObjectID, contentType string) (*UploadURLResponse, error)
	ConfirmVideoUpload(ctx context.Context, actor Actor, exerciseID primitive.ObjectID, in VideoConfirmation) (*domain.Exercise, error)
	GetVideoDownloadURL(ctx context.Context, actor Actor, exerciseID primitive.ObjectID) (string, error)
}

type uploadService struct {
	repos       repository.Repositories
	fileStorage storage.FileStorage
	expiry      time.Duration
}

func NewUploadService(repos repository.Repositories, fileStorage storage.FileStorage, expiry time.Duration) UploadService {
	if expiry <= 0 {
		expiry = storage.DefaultPresignedURLExpiry
	}
	return &uploadService{repos: repos, fileStorage: fileStorage, expiry: expiry}
}

func coachVideoPrefix(coachID primitive.ObjectID) string {
	return path.Join("exercise-videos", coachID.Hex()) + "/"
}

func videoKeyPrefix(coachID, exerciseID primitive.ObjectID) string {
	return coachVideoPrefix(coachID) + exerciseID.Hex() + "/"
}

func (s *uploadService) RequestVideoUploadURL(ctx context.Context, actor Actor, exerciseID primitive.ObjectID, contentType string) (*UploadURLResponse, error) {
	if contentType == "" || !strings.HasPrefix(strings.ToLower(contentType), "video/") {
		return nil, validationf("invalid or missing video content type")
	}
	if _, err := s.coachExercise(ctx, actor, exerciseID); err != nil {
		return nil, err
	}

	fileExtension := "bin"
	if parts := strings.SplitN(contentType, "/", 2); len(parts) == 2 && parts[1] != "" {
		fileExtension = parts[1]
	}
	objectKey := videoKeyPrefix(actor.ID, exerciseID) + fmt.Sprintf("%s.%s", uuid.NewString(), fileExtension)

	uploadURL, err := s.fileStorage.GeneratePresignedUploadURL(ctx, objectKey, contentType, s.expiry)
	if err != nil {
		log.Printf("ERROR: Presign upload for exercise %s: %v", exerciseID.Hex(), err)
		return nil, ErrUploadURLError
	}
	return &UploadURLResponse{UploadURL: uploadURL, ObjectKey: objectKey}, nil
}

// ConfirmVideoUpload records the upload and points the exercise at the new
// object key. It is called after the file reached storage.
func (s *uploadService) ConfirmVideoUpload(ctx context.Context, actor Actor, exerciseID primitive.ObjectID, in VideoConfirmation) (*domain.Exercise, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if !strings.HasPrefix(in.ObjectKey, videoKeyPrefix(actor.ID, exerciseID)) {
		return nil, validationf("objectKey was not issued for this exercise")
	}

	var ex *domain.Exercise
	var replaced string
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		ex, err = s.coachExercise(ctx, actor, exerciseID)
		if err != nil {
			return err
		}
		replaced = ex.VideoURL
		upload := &domain.Upload{
			ExerciseID:  exerciseID,
			TrainerID:   actor.ID,
			ObjectKey:   in.ObjectKey,
			FileName:    in.FileName,
			ContentType: in.ContentType,
			Size:        in.Size,
		}
		if _, err := s.repos.Uploads.Create(ctx, upload); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflictf("upload already confirmed")
			}
			return err
		}
		ex.VideoURL = in.ObjectKey
		return mapRepoErr(s.repos.Exercises.Update(ctx, ex), "exercise")
	})
	if err != nil {
		return nil, err
	}
	s.removeReplacedVideo(ctx, replaced, actor.ID)
	return ex, nil
}

// removeReplacedVideo deletes the object a new upload superseded once no
// exercise refers to it anymore. Forked and duplicated exercises share the key
// of their source. Only keys issued to this coach are touched; external URLs
// are left alone. Failures are logged, the upload itself already succeeded.
func (s *uploadService) removeReplacedVideo(ctx context.Context, objectKey string, coachID primitive.ObjectID) {
	if objectKey == "" || !strings.HasPrefix(objectKey, coachVideoPrefix(coachID)) {
		return
	}
	refs, err := s.repos.Exercises.CountByVideoURL(ctx, objectKey)
	if err != nil {
		log.Printf("WARN: Failed to count references to video %s: %v", objectKey, err)
		return
	}
	if refs > 0 {
		return
	}
	if err := s.fileStorage.DeleteObject(ctx, objectKey); err != nil {
		log.Printf("WARN: Failed to delete replaced video %s: %v", objectKey, err)
	}
}

// GetVideoDownloadURL returns a temporary link to the video the exercise
// points at. Copies made by a fork or duplicate resolve to their source's
// upload. Coaches reach their own exercises, clients the exercises of their
// active plan.
func (s *uploadService) GetVideoDownloadURL(ctx context.Context, actor Actor, exerciseID primitive.ObjectID) (string, error) {
	var ex *domain.Exercise
	var err error
	if actor.IsClient() {
		ex, err = s.clientExercise(ctx, actor, exerciseID)
	} else {
		ex, err = s.coachExercise(ctx, actor, exerciseID)
	}
	if err != nil {
		return "", err
	}
	if ex.VideoURL == "" {
		return "", ErrUploadMetadataMissing
	}

	upload, err := s.repos.Uploads.GetByObjectKey(ctx, ex.VideoURL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUploadMetadataMissing
		}
		return "", err
	}
	downloadURL, err := s.fileStorage.GeneratePresignedDownloadURL(ctx, upload.ObjectKey, s.expiry)
	if err != nil {
		log.Printf("ERROR: Presign download for exercise %s: %v", exerciseID.Hex(), err)
		return "", ErrDownloadURLError
	}
	return downloadURL, nil
}

// coachExercise loads an exercise from a template or mesocycle of the coach.
func (s *uploadService) coachExercise(ctx context.Context, actor Actor, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	if err := requireCoach(actor); err != nil {
		return nil, err
	}
	ex, day, err := s.exerciseWithDay(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	switch {
	case day.TemplateID != nil:
		_, err = ownedTemplate(ctx, s.repos.Templates, actor.ID, *day.TemplateID)
	case day.MesocycleID != nil:
		_, err = coachMesocycle(ctx, s.repos.Mesocycles, actor.ID, *day.MesocycleID)
	default:
		err = notFound("exercise")
	}
	if err != nil {
		return nil, notFound("exercise")
	}
	return ex, nil
}

func (s *uploadService) clientExercise(ctx context.Context, actor Actor, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	ex, day, err := s.exerciseWithDay(ctx, exerciseID)
	if err != nil {
		return nil, err
	}
	m, err := s.repos.Mesocycles.GetActiveByClientID(ctx, actor.ID)
	if err != nil {
		return nil, notFound("exercise")
	}
	owner, err := activeOwner(m)
	if err != nil || !owner.owns(day) {
		return nil, notFound("exercise")
	}
	return ex, nil
}

func (s *uploadService) exerciseWithDay(ctx context.Context, exerciseID primitive.ObjectID) (*domain.Exercise, *domain.Day, error) {
	ex, err := s.repos.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, nil, mapRepoErr(err, "exercise")
	}
	day, err := s.repos.Days.GetByID(ctx, ex.DayID)
	if err != nil {
		return nil, nil, mapRepoErr(err, "exercise")
	}
	return ex, day, nil
}

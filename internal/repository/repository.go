package repository

import (
	"alcyxob/fitness-coach/internal/domain"
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for repository layer
var (
	ErrNotFound  = RepositoryError("not found")
	ErrDuplicate = RepositoryError("duplicate key")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// Transactor runs fn atomically: either every write made through the context
// passed to fn is committed, or none is. Calls nested inside fn join the
// outer transaction.
type Transactor interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
}

// TemplateRepository stores template headers. Days and exercises live in
// their own repositories.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.Template) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Template, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error) // Excludes auto-generated templates
	Update(ctx context.Context, template *domain.Template) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// DayRepository stores template days and mesocycle-owned days.
type DayRepository interface {
	Create(ctx context.Context, day *domain.Day) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Day, error)
	GetByTemplateID(ctx context.Context, templateID primitive.ObjectID) ([]domain.Day, error)   // Sorted by dayNumber
	GetByMesocycleID(ctx context.Context, mesocycleID primitive.ObjectID) ([]domain.Day, error) // Sorted by dayNumber
	Update(ctx context.Context, day *domain.Day) error
	SetDayNumber(ctx context.Context, id primitive.ObjectID, dayNumber int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// ExerciseRepository stores planned exercises with their embedded sets.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.Exercise, error) // Sorted by order
	Update(ctx context.Context, exercise *domain.Exercise) error
	SetOrder(ctx context.Context, id primitive.ObjectID, order int) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByDayID(ctx context.Context, dayID primitive.ObjectID) error
	CountByVideoURL(ctx context.Context, videoURL string) (int64, error)
}

// MesocycleRepository defines the interface for interacting with mesocycle data.
type MesocycleRepository interface {
	Create(ctx context.Context, mesocycle *domain.Mesocycle) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Mesocycle, error)
	GetActiveByClientID(ctx context.Context, clientID primitive.ObjectID) (*domain.Mesocycle, error)
	GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Mesocycle, error) // Newest start first
	Complete(ctx context.Context, id primitive.ObjectID, at time.Time) error
	// MarkForked flips isForked from false to true and clears the template
	// reference. It reports false when the mesocycle was already forked.
	MarkForked(ctx context.Context, id primitive.ObjectID) (bool, error)
	CountByTemplateID(ctx context.Context, templateID primitive.ObjectID) (int64, error)
}

// MicrocycleRepository defines the interface for interacting with microcycle data.
type MicrocycleRepository interface {
	CreateMany(ctx context.Context, microcycles []domain.Microcycle) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Microcycle, error)
	GetByMesocycleID(ctx context.Context, mesocycleID primitive.ObjectID) ([]domain.Microcycle, error) // Sorted by weekNumber
}

// WorkoutLogRepository defines the interface for interacting with workout-day logs.
type WorkoutLogRepository interface {
	Create(ctx context.Context, log *domain.WorkoutDayLog) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutDayLog, error)
	Update(ctx context.Context, log *domain.WorkoutDayLog) error
	GetByMicrocycleID(ctx context.Context, microcycleID primitive.ObjectID) ([]domain.WorkoutDayLog, error)
	GetByMesocycleID(ctx context.Context, mesocycleID primitive.ObjectID) ([]domain.WorkoutDayLog, error)
	CountByDayID(ctx context.Context, dayID primitive.ObjectID) (int64, error)
	CountByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) (int64, error)
}

// NotificationRepository defines the interface for notification records.
type NotificationRepository interface {
	Create(ctx context.Context, notification *domain.Notification) (primitive.ObjectID, error)
	GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID) ([]domain.Notification, error) // Newest first
}

// UploadRepository defines the interface for interacting with upload metadata.
type UploadRepository interface {
	Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error)
	GetByObjectKey(ctx context.Context, objectKey string) (*domain.Upload, error)
}

// Repositories bundles every repository plus the transactor of one backing store.
type Repositories struct {
	Tx            Transactor
	Users         UserRepository
	Templates     TemplateRepository
	Days          DayRepository
	Exercises     ExerciseRepository
	Mesocycles    MesocycleRepository
	Microcycles   MicrocycleRepository
	WorkoutLogs   WorkoutLogRepository
	Notifications NotificationRepository
	Uploads       UploadRepository
}

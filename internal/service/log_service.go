package service

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type SetLogInput struct {
	SetNumber int      `json:"setNumber" validate:"min=1"`
	Reps      int      `json:"reps" validate:"min=1"`
	Weight    *float64 `json:"weight" validate:"required,min=0"` // Zero is a valid weight, absent is not
	RIR       *int     `json:"rir,omitempty" validate:"omitempty,min=0,max=10"`
}

type ExerciseLogInput struct {
	ExerciseID primitive.ObjectID `json:"exerciseId"`
	Sets       []SetLogInput      `json:"sets" validate:"min=1,dive"`
}

// WorkoutInput is one completed session. Exercise order follows the slice.
type WorkoutInput struct {
	DayID       primitive.ObjectID `json:"dayId"`
	CompletedAt time.Time          `json:"completedAt"`
	RPE         *int               `json:"rpe,omitempty" validate:"omitempty,min=1,max=10"`
	Fatigue     *int               `json:"fatigue,omitempty" validate:"omitempty,min=1,max=10"`
	Notes       string             `json:"notes" validate:"max=2000"`
	Exercises   []ExerciseLogInput `json:"exercises" validate:"min=1,dive"`
}

func (in WorkoutInput) validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if in.DayID == primitive.NilObjectID {
		return validationf("dayId is required")
	}
	if in.CompletedAt.IsZero() {
		return validationf("completedAt is required")
	}
	seenEx := make(map[primitive.ObjectID]bool, len(in.Exercises))
	for i, ex := range in.Exercises {
		if ex.ExerciseID == primitive.NilObjectID {
			return validationf("exercises[%d].exerciseId is required", i)
		}
		if seenEx[ex.ExerciseID] {
			return validationf("exercise %s is logged more than once", ex.ExerciseID.Hex())
		}
		seenEx[ex.ExerciseID] = true
		seenSet := make(map[int]bool, len(ex.Sets))
		for _, set := range ex.Sets {
			if seenSet[set.SetNumber] {
				return validationf("exercises[%d] repeats setNumber %d", i, set.SetNumber)
			}
			seenSet[set.SetNumber] = true
		}
	}
	return nil
}

func (in WorkoutInput) exerciseLogs() []domain.ExerciseLog {
	out := make([]domain.ExerciseLog, len(in.Exercises))
	for i, ex := range in.Exercises {
		sets := make([]domain.SetLog, len(ex.Sets))
		for j, s := range ex.Sets {
			sets[j] = domain.SetLog{SetNumber: s.SetNumber, Reps: s.Reps, Weight: *s.Weight, RIR: s.RIR}
		}
		out[i] = domain.ExerciseLog{ExerciseID: ex.ExerciseID, Order: i + 1, Sets: sets}
	}
	return out
}

type LogService interface {
	RecordWorkout(ctx context.Context, actor Actor, microcycleID primitive.ObjectID, in WorkoutInput) (*domain.WorkoutDayLog, error)
	UpdateWorkout(ctx context.Context, actor Actor, logID primitive.ObjectID, in WorkoutInput) (*domain.WorkoutDayLog, error)
	ListMicrocycleLogs(ctx context.Context, actor Actor, microcycleID primitive.ObjectID) ([]domain.WorkoutDayLog, error)
}

type logService struct {
	repos repository.Repositories
}

func NewLogService(repos repository.Repositories) LogService {
	return &logService{repos: repos}
}

// RecordWorkout stores a session log. The day must be part of the
// mesocycle's current tree and every exercise must belong to that day.
// Nothing is stored unless the whole submission is valid.
func (s *logService) RecordWorkout(ctx context.Context, actor Actor, microcycleID primitive.ObjectID, in WorkoutInput) (*domain.WorkoutDayLog, error) {
	if err := requireClient(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var entry *domain.WorkoutDayLog
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		week, m, err := s.clientWeek(ctx, actor, microcycleID)
		if err != nil {
			return err
		}
		owner, err := activeOwner(m)
		if err != nil {
			return err
		}
		day, err := s.repos.Days.GetByID(ctx, in.DayID)
		if err != nil || !owner.owns(day) {
			return validationf("day %s is not part of the mesocycle's current plan", in.DayID.Hex())
		}
		if err := s.checkExercises(ctx, day.ID, in.Exercises); err != nil {
			return err
		}

		entry = &domain.WorkoutDayLog{
			MicrocycleID: week.ID,
			MesocycleID:  m.ID,
			ClientID:     actor.ID,
			DayID:        day.ID,
			CompletedAt:  in.CompletedAt.UTC(),
			RPE:          in.RPE,
			Fatigue:      in.Fatigue,
			Notes:        in.Notes,
			Exercises:    in.exerciseLogs(),
		}
		if _, err := s.repos.WorkoutLogs.Create(ctx, entry); err != nil {
			return err
		}

		note := &domain.Notification{
			RecipientID: m.TrainerID,
			Kind:        domain.NotificationWorkoutLogged,
			Message:     fmt.Sprintf("Workout logged for week %d of %q", week.WeekNumber, m.Title),
		}
		_, err = s.repos.Notifications.Create(ctx, note)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateWorkout edits a log in place. Its microcycle and day stay fixed.
func (s *logService) UpdateWorkout(ctx context.Context, actor Actor, logID primitive.ObjectID, in WorkoutInput) (*domain.WorkoutDayLog, error) {
	if err := requireClient(actor); err != nil {
		return nil, err
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	var entry *domain.WorkoutDayLog
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.repos.WorkoutLogs.GetByID(ctx, logID)
		if err != nil {
			return mapRepoErr(err, "workout log")
		}
		if entry.ClientID != actor.ID {
			return notFound("workout log")
		}
		if in.DayID != entry.DayID {
			return validationf("dayId of a logged workout cannot change")
		}
		if err := s.checkExercises(ctx, entry.DayID, in.Exercises); err != nil {
			return err
		}
		entry.CompletedAt = in.CompletedAt.UTC()
		entry.RPE = in.RPE
		entry.Fatigue = in.Fatigue
		entry.Notes = in.Notes
		entry.Exercises = in.exerciseLogs()
		return mapRepoErr(s.repos.WorkoutLogs.Update(ctx, entry), "workout log")
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// ListMicrocycleLogs is open to the client who trains the week and the coach
// who planned it.
func (s *logService) ListMicrocycleLogs(ctx context.Context, actor Actor, microcycleID primitive.ObjectID) ([]domain.WorkoutDayLog, error) {
	week, err := s.repos.Microcycles.GetByID(ctx, microcycleID)
	if err != nil {
		return nil, mapRepoErr(err, "microcycle")
	}
	if _, err := visibleMesocycle(ctx, s.repos, actor, week.MesocycleID); err != nil {
		return nil, notFound("microcycle")
	}
	return s.repos.WorkoutLogs.GetByMicrocycleID(ctx, week.ID)
}

func (s *logService) clientWeek(ctx context.Context, actor Actor, microcycleID primitive.ObjectID) (*domain.Microcycle, *domain.Mesocycle, error) {
	week, err := s.repos.Microcycles.GetByID(ctx, microcycleID)
	if err != nil {
		return nil, nil, mapRepoErr(err, "microcycle")
	}
	m, err := s.repos.Mesocycles.GetByID(ctx, week.MesocycleID)
	if err != nil {
		return nil, nil, mapRepoErr(err, "microcycle")
	}
	if m.ClientID != actor.ID {
		return nil, nil, notFound("microcycle")
	}
	return week, m, nil
}

func (s *logService) checkExercises(ctx context.Context, dayID primitive.ObjectID, logs []ExerciseLogInput) error {
	planned, err := s.repos.Exercises.GetByDayID(ctx, dayID)
	if err != nil {
		return err
	}
	known := make(map[primitive.ObjectID]bool, len(planned))
	for _, ex := range planned {
		known[ex.ID] = true
	}
	for _, l := range logs {
		if !known[l.ExerciseID] {
			return validationf("exercise %s is not part of day %s", l.ExerciseID.Hex(), dayID.Hex())
		}
	}
	return nil
}

package memory

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"errors"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type workoutLogRepository struct{ s *Store }

func assignExerciseLogIDs(logs []domain.ExerciseLog) {
	for i := range logs {
		if logs[i].ID == primitive.NilObjectID {
			logs[i].ID = primitive.NewObjectID()
		}
	}
}

func (r *workoutLogRepository) Create(ctx context.Context, l *domain.WorkoutDayLog) (primitive.ObjectID, error) {
	if l.MicrocycleID == primitive.NilObjectID || l.DayID == primitive.NilObjectID || l.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout log requires microcycleId, dayId, and clientId")
	}
	err := r.s.write(ctx, func() error {
		l.ID = primitive.NewObjectID()
		assignExerciseLogIDs(l.Exercises)
		now := time.Now().UTC()
		l.CreatedAt = now
		l.UpdatedAt = now
		r.s.workoutLogs[l.ID] = l.Clone()
		return nil
	})
	return l.ID, err
}

func (r *workoutLogRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutDayLog, error) {
	var found *domain.WorkoutDayLog
	r.s.read(func() {
		if l, ok := r.s.workoutLogs[id]; ok {
			cp := l.Clone()
			found = &cp
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *workoutLogRepository) Update(ctx context.Context, l *domain.WorkoutDayLog) error {
	if l.ID == primitive.NilObjectID {
		return errors.New("workout log ID is required for update")
	}
	return r.s.write(ctx, func() error {
		stored, ok := r.s.workoutLogs[l.ID]
		if !ok {
			return repository.ErrNotFound
		}
		assignExerciseLogIDs(l.Exercises)
		next := l.Clone()
		next.MicrocycleID = stored.MicrocycleID
		next.MesocycleID = stored.MesocycleID
		next.ClientID = stored.ClientID
		next.DayID = stored.DayID
		next.CreatedAt = stored.CreatedAt
		next.UpdatedAt = time.Now().UTC()
		r.s.workoutLogs[l.ID] = next
		return nil
	})
}

func (r *workoutLogRepository) GetByMicrocycleID(ctx context.Context, microcycleID primitive.ObjectID) ([]domain.WorkoutDayLog, error) {
	return r.find(func(l domain.WorkoutDayLog) bool { return l.MicrocycleID == microcycleID }), nil
}

func (r *workoutLogRepository) GetByMesocycleID(ctx context.Context, mesocycleID primitive.ObjectID) ([]domain.WorkoutDayLog, error) {
	return r.find(func(l domain.WorkoutDayLog) bool { return l.MesocycleID == mesocycleID }), nil
}

func (r *workoutLogRepository) find(match func(domain.WorkoutDayLog) bool) []domain.WorkoutDayLog {
	out := []domain.WorkoutDayLog{}
	r.s.read(func() {
		for _, l := range r.s.workoutLogs {
			if match(l) {
				out = append(out, l.Clone())
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CompletedAt.Before(out[j].CompletedAt) })
	return out
}

func (r *workoutLogRepository) CountByDayID(ctx context.Context, dayID primitive.ObjectID) (int64, error) {
	var n int64
	r.s.read(func() {
		for _, l := range r.s.workoutLogs {
			if l.DayID == dayID {
				n++
			}
		}
	})
	return n, nil
}

func (r *workoutLogRepository) CountByExerciseID(ctx context.Context, exerciseID primitive.ObjectID) (int64, error) {
	var n int64
	r.s.read(func() {
		for _, l := range r.s.workoutLogs {
			for _, ex := range l.Exercises {
				if ex.ExerciseID == exerciseID {
					n++
					break
				}
			}
		}
	})
	return n, nil
}

type notificationRepository struct{ s *Store }

func (r *notificationRepository) Create(ctx context.Context, n *domain.Notification) (primitive.ObjectID, error) {
	if n.RecipientID == primitive.NilObjectID || n.Kind == "" {
		return primitive.NilObjectID, errors.New("notification requires recipientId and kind")
	}
	err := r.s.write(ctx, func() error {
		n.ID = primitive.NewObjectID()
		n.CreatedAt = time.Now().UTC()
		if n.ScheduledFor.IsZero() {
			n.ScheduledFor = n.CreatedAt
		}
		r.s.notifications[n.ID] = *n
		return nil
	})
	return n.ID, err
}

func (r *notificationRepository) GetByRecipientID(ctx context.Context, recipientID primitive.ObjectID) ([]domain.Notification, error) {
	out := []domain.Notification{}
	r.s.read(func() {
		for _, n := range r.s.notifications {
			if n.RecipientID == recipientID {
				out = append(out, n)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledFor.After(out[j].ScheduledFor) })
	return out, nil
}

type uploadRepository struct{ s *Store }

func (r *uploadRepository) Create(ctx context.Context, upload *domain.Upload) (primitive.ObjectID, error) {
	if upload.ExerciseID == primitive.NilObjectID || upload.TrainerID == primitive.NilObjectID || upload.ObjectKey == "" {
		return primitive.NilObjectID, errors.New("upload requires exerciseId, trainerId, and objectKey")
	}
	err := r.s.write(ctx, func() error {
		for _, u := range r.s.uploads {
			if u.ObjectKey == upload.ObjectKey {
				return repository.ErrDuplicate
			}
		}
		upload.ID = primitive.NewObjectID()
		upload.UploadedAt = time.Now().UTC()
		r.s.uploads[upload.ID] = *upload
		return nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return upload.ID, nil
}

func (r *uploadRepository) GetByObjectKey(ctx context.Context, objectKey string) (*domain.Upload, error) {
	var found *domain.Upload
	r.s.read(func() {
		for _, u := range r.s.uploads {
			if u.ObjectKey == objectKey {
				cp := u
				found = &cp
				return
			}
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

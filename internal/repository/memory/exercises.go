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

type exerciseRepository struct{ s *Store }

func assignSetIDs(sets []domain.Set) []domain.Set {
	if sets == nil {
		return []domain.Set{}
	}
	for i := range sets {
		if sets[i].ID == primitive.NilObjectID {
			sets[i].ID = primitive.NewObjectID()
		}
	}
	return sets
}

func (r *exerciseRepository) Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error) {
	if exercise.Name == "" || exercise.DayID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("exercise name and day ID are required")
	}
	err := r.s.write(ctx, func() error {
		exercise.ID = primitive.NewObjectID()
		exercise.Sets = assignSetIDs(exercise.Sets)
		now := time.Now().UTC()
		exercise.CreatedAt = now
		exercise.UpdatedAt = now
		r.s.exercises[exercise.ID] = exercise.Clone()
		return nil
	})
	return exercise.ID, err
}

func (r *exerciseRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error) {
	var found *domain.Exercise
	r.s.read(func() {
		if e, ok := r.s.exercises[id]; ok {
			cp := e.Clone()
			found = &cp
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *exerciseRepository) GetByDayID(ctx context.Context, dayID primitive.ObjectID) ([]domain.Exercise, error) {
	exercises := []domain.Exercise{}
	r.s.read(func() {
		for _, e := range r.s.exercises {
			if e.DayID == dayID {
				exercises = append(exercises, e.Clone())
			}
		}
	})
	sort.Slice(exercises, func(i, j int) bool { return exercises[i].Order < exercises[j].Order })
	return exercises, nil
}

func (r *exerciseRepository) Update(ctx context.Context, exercise *domain.Exercise) error {
	if exercise.ID == primitive.NilObjectID {
		return errors.New("exercise ID is required for update")
	}
	if exercise.Name == "" {
		return errors.New("exercise name cannot be empty")
	}
	return r.s.write(ctx, func() error {
		e, ok := r.s.exercises[exercise.ID]
		if !ok {
			return repository.ErrNotFound
		}
		exercise.Sets = assignSetIDs(exercise.Sets)
		e.Name = exercise.Name
		e.Description = exercise.Description
		e.VideoURL = exercise.VideoURL
		e.Comment = exercise.Comment
		e.Order = exercise.Order
		e.Sets = exercise.Sets
		e.UpdatedAt = time.Now().UTC()
		r.s.exercises[e.ID] = e.Clone()
		return nil
	})
}

func (r *exerciseRepository) SetOrder(ctx context.Context, id primitive.ObjectID, order int) error {
	return r.s.write(ctx, func() error {
		e, ok := r.s.exercises[id]
		if !ok {
			return repository.ErrNotFound
		}
		e = e.Clone()
		e.Order = order
		e.UpdatedAt = time.Now().UTC()
		r.s.exercises[id] = e
		return nil
	})
}

func (r *exerciseRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.exercises[id]; !ok {
			return repository.ErrNotFound
		}
		delete(r.s.exercises, id)
		return nil
	})
}

func (r *exerciseRepository) DeleteByDayID(ctx context.Context, dayID primitive.ObjectID) error {
	return r.s.write(ctx, func() error {
		for id, e := range r.s.exercises {
			if e.DayID == dayID {
				delete(r.s.exercises, id)
			}
		}
		return nil
	})
}

func (r *exerciseRepository) CountByVideoURL(ctx context.Context, videoURL string) (int64, error) {
	var n int64
	r.s.read(func() {
		for _, e := range r.s.exercises {
			if e.VideoURL == videoURL {
				n++
			}
		}
	})
	return n, nil
}

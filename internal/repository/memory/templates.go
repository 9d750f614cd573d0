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

type templateRepository struct{ s *Store }

func (r *templateRepository) Create(ctx context.Context, template *domain.Template) (primitive.ObjectID, error) {
	if template.Title == "" || template.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template title and trainer ID are required")
	}
	err := r.s.write(ctx, func() error {
		template.ID = primitive.NewObjectID()
		now := time.Now().UTC()
		template.CreatedAt = now
		template.UpdatedAt = now
		r.s.templates[template.ID] = *template
		return nil
	})
	return template.ID, err
}

func (r *templateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Template, error) {
	var found *domain.Template
	r.s.read(func() {
		if t, ok := r.s.templates[id]; ok {
			found = &t
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *templateRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Template, error) {
	templates := []domain.Template{}
	r.s.read(func() {
		for _, t := range r.s.templates {
			if t.TrainerID == trainerID && !t.AutoGenerated {
				templates = append(templates, t)
			}
		}
	})
	sort.SliceStable(templates, func(i, j int) bool {
		if templates[i].CreatedAt.Equal(templates[j].CreatedAt) {
			return templates[i].ID.Hex() > templates[j].ID.Hex()
		}
		return templates[i].CreatedAt.After(templates[j].CreatedAt)
	})
	return templates, nil
}

func (r *templateRepository) Update(ctx context.Context, template *domain.Template) error {
	if template.ID == primitive.NilObjectID {
		return errors.New("template ID is required for update")
	}
	return r.s.write(ctx, func() error {
		t, ok := r.s.templates[template.ID]
		if !ok {
			return repository.ErrNotFound
		}
		t.Title = template.Title
		t.NumberOfDays = template.NumberOfDays
		t.UpdatedAt = time.Now().UTC()
		r.s.templates[t.ID] = t
		return nil
	})
}

func (r *templateRepository) Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error {
	return r.s.write(ctx, func() error {
		t, ok := r.s.templates[id]
		if !ok || t.TrainerID != trainerID {
			return repository.ErrNotFound
		}
		delete(r.s.templates, id)
		return nil
	})
}

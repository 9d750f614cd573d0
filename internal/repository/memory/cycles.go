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

type mesocycleRepository struct{ s *Store }

func cloneMesocycle(m domain.Mesocycle) domain.Mesocycle {
	out := m
	out.TemplateID = cloneID(m.TemplateID)
	if m.CompletedAt != nil {
		at := *m.CompletedAt
		out.CompletedAt = &at
	}
	return out
}

// Create enforces one active mesocycle per client, like the partial unique
// index of the Mongo driver.
func (r *mesocycleRepository) Create(ctx context.Context, m *domain.Mesocycle) (primitive.ObjectID, error) {
	if m.ClientID == primitive.NilObjectID || m.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("mesocycle requires clientId and trainerId")
	}
	err := r.s.write(ctx, func() error {
		if m.IsActive {
			for _, existing := range r.s.mesocycles {
				if existing.ClientID == m.ClientID && existing.IsActive {
					return repository.ErrDuplicate
				}
			}
		}
		m.ID = primitive.NewObjectID()
		now := time.Now().UTC()
		m.CreatedAt = now
		m.UpdatedAt = now
		r.s.mesocycles[m.ID] = cloneMesocycle(*m)
		return nil
	})
	if err != nil {
		return primitive.NilObjectID, err
	}
	return m.ID, nil
}

func (r *mesocycleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Mesocycle, error) {
	return r.findOne(func(m domain.Mesocycle) bool { return m.ID == id })
}

func (r *mesocycleRepository) GetActiveByClientID(ctx context.Context, clientID primitive.ObjectID) (*domain.Mesocycle, error) {
	return r.findOne(func(m domain.Mesocycle) bool { return m.ClientID == clientID && m.IsActive })
}

func (r *mesocycleRepository) findOne(match func(domain.Mesocycle) bool) (*domain.Mesocycle, error) {
	var found *domain.Mesocycle
	r.s.read(func() {
		for _, m := range r.s.mesocycles {
			if match(m) {
				cp := cloneMesocycle(m)
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

func (r *mesocycleRepository) GetByClientID(ctx context.Context, clientID primitive.ObjectID) ([]domain.Mesocycle, error) {
	out := []domain.Mesocycle{}
	r.s.read(func() {
		for _, m := range r.s.mesocycles {
			if m.ClientID == clientID {
				out = append(out, cloneMesocycle(m))
			}
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].StartDate.After(out[j].StartDate)
	})
	return out, nil
}

func (r *mesocycleRepository) Complete(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	return r.s.write(ctx, func() error {
		m, ok := r.s.mesocycles[id]
		if !ok {
			return repository.ErrNotFound
		}
		m = cloneMesocycle(m)
		m.IsActive = false
		m.IsCompleted = true
		m.CompletedAt = &at
		m.UpdatedAt = time.Now().UTC()
		r.s.mesocycles[id] = m
		return nil
	})
}

func (r *mesocycleRepository) MarkForked(ctx context.Context, id primitive.ObjectID) (bool, error) {
	flipped := false
	err := r.s.write(ctx, func() error {
		m, ok := r.s.mesocycles[id]
		if !ok {
			return repository.ErrNotFound
		}
		if m.IsForked {
			return nil
		}
		m = cloneMesocycle(m)
		m.IsForked = true
		m.TemplateID = nil
		m.UpdatedAt = time.Now().UTC()
		r.s.mesocycles[id] = m
		flipped = true
		return nil
	})
	return flipped, err
}

func (r *mesocycleRepository) CountByTemplateID(ctx context.Context, templateID primitive.ObjectID) (int64, error) {
	var n int64
	r.s.read(func() {
		for _, m := range r.s.mesocycles {
			if m.TemplateID != nil && *m.TemplateID == templateID {
				n++
			}
		}
	})
	return n, nil
}

type microcycleRepository struct{ s *Store }

func (r *microcycleRepository) CreateMany(ctx context.Context, microcycles []domain.Microcycle) error {
	for _, mc := range microcycles {
		if mc.MesocycleID == primitive.NilObjectID {
			return errors.New("microcycle requires mesocycleId")
		}
	}
	return r.s.write(ctx, func() error {
		for i := range microcycles {
			microcycles[i].ID = primitive.NewObjectID()
			r.s.microcycles[microcycles[i].ID] = microcycles[i]
		}
		return nil
	})
}

func (r *microcycleRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Microcycle, error) {
	var found *domain.Microcycle
	r.s.read(func() {
		if mc, ok := r.s.microcycles[id]; ok {
			found = &mc
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *microcycleRepository) GetByMesocycleID(ctx context.Context, mesocycleID primitive.ObjectID) ([]domain.Microcycle, error) {
	out := []domain.Microcycle{}
	r.s.read(func() {
		for _, mc := range r.s.microcycles {
			if mc.MesocycleID == mesocycleID {
				out = append(out, mc)
			}
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].WeekNumber < out[j].WeekNumber })
	return out, nil
}

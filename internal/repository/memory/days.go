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

type dayRepository struct{ s *Store }

func cloneDay(d domain.Day) domain.Day {
	out := d
	out.TemplateID = cloneID(d.TemplateID)
	out.MesocycleID = cloneID(d.MesocycleID)
	return out
}

func (r *dayRepository) Create(ctx context.Context, day *domain.Day) (primitive.ObjectID, error) {
	if (day.TemplateID == nil) == (day.MesocycleID == nil) {
		return primitive.NilObjectID, errors.New("day requires exactly one of templateId or mesocycleId")
	}
	err := r.s.write(ctx, func() error {
		day.ID = primitive.NewObjectID()
		now := time.Now().UTC()
		day.CreatedAt = now
		day.UpdatedAt = now
		r.s.days[day.ID] = cloneDay(*day)
		return nil
	})
	return day.ID, err
}

func (r *dayRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Day, error) {
	var found *domain.Day
	r.s.read(func() {
		if d, ok := r.s.days[id]; ok {
			cp := cloneDay(d)
			found = &cp
		}
	})
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *dayRepository) GetByTemplateID(ctx context.Context, templateID primitive.ObjectID) ([]domain.Day, error) {
	return r.find(func(d domain.Day) bool { return d.OwnedByTemplate(templateID) }), nil
}

func (r *dayRepository) GetByMesocycleID(ctx context.Context, mesocycleID primitive.ObjectID) ([]domain.Day, error) {
	return r.find(func(d domain.Day) bool { return d.OwnedByMesocycle(mesocycleID) }), nil
}

func (r *dayRepository) find(match func(domain.Day) bool) []domain.Day {
	days := []domain.Day{}
	r.s.read(func() {
		for _, d := range r.s.days {
			if match(d) {
				days = append(days, cloneDay(d))
			}
		}
	})
	sort.Slice(days, func(i, j int) bool { return days[i].DayNumber < days[j].DayNumber })
	return days
}

func (r *dayRepository) Update(ctx context.Context, day *domain.Day) error {
	if day.ID == primitive.NilObjectID {
		return errors.New("day ID is required for update")
	}
	return r.s.write(ctx, func() error {
		d, ok := r.s.days[day.ID]
		if !ok {
			return repository.ErrNotFound
		}
		d = cloneDay(d)
		d.Title = day.Title
		d.DayNumber = day.DayNumber
		d.UpdatedAt = time.Now().UTC()
		r.s.days[d.ID] = d
		return nil
	})
}

func (r *dayRepository) SetDayNumber(ctx context.Context, id primitive.ObjectID, dayNumber int) error {
	return r.s.write(ctx, func() error {
		d, ok := r.s.days[id]
		if !ok {
			return repository.ErrNotFound
		}
		d = cloneDay(d)
		d.DayNumber = dayNumber
		d.UpdatedAt = time.Now().UTC()
		r.s.days[id] = d
		return nil
	})
}

func (r *dayRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	return r.s.write(ctx, func() error {
		if _, ok := r.s.days[id]; !ok {
			return repository.ErrNotFound
		}
		delete(r.s.days, id)
		return nil
	})
}

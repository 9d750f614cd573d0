package service

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/ordering"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ForkService edits a client's mesocycle. The first structural edit of a
// template-backed mesocycle copies the template tree into the mesocycle and
// applies the edit to the copy, all in one transaction. Ids of the template
// tree passed to that first edit are translated to their copies; afterwards
// only the mesocycle's own ids are accepted.
type ForkService interface {
	AddDay(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID, in DayInput) (*domain.Day, error)
	UpdateDay(ctx context.Context, actor Actor, mesocycleID, dayID primitive.ObjectID, in DayInput) (*domain.Day, error)
	DeleteDay(ctx context.Context, actor Actor, mesocycleID, dayID primitive.ObjectID) error
	ReorderDays(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID, changes []ordering.Item) ([]domain.Day, error)

	AddExercise(ctx context.Context, actor Actor, mesocycleID, dayID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, actor Actor, mesocycleID, dayID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, actor Actor, mesocycleID, dayID, exerciseID primitive.ObjectID) error
	ReorderExercises(ctx context.Context, actor Actor, mesocycleID, dayID primitive.ObjectID, changes []ordering.Item) ([]domain.Exercise, error)
}

type forkService struct {
	repos  repository.Repositories
	editor treeEditor
}

func NewForkService(repos repository.Repositories) ForkService {
	return &forkService{repos: repos, editor: treeEditor{repos: repos}}
}

// idMap translates template ids to the ids of their copies. It is empty when
// the mesocycle had already been forked.
type idMap map[primitive.ObjectID]primitive.ObjectID

func (m idMap) resolve(id primitive.ObjectID) primitive.ObjectID {
	if to, ok := m[id]; ok {
		return to
	}
	return id
}

func (m idMap) resolveItems(items []ordering.Item) []ordering.Item {
	out := make([]ordering.Item, len(items))
	for i, it := range items {
		out[i] = ordering.Item{ID: m.resolve(it.ID), Order: it.Order}
	}
	return out
}

func (s *forkService) AddDay(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID, in DayInput) (*domain.Day, error) {
	var day *domain.Day
	err := s.edit(ctx, actor, mesocycleID, func(ctx context.Context, o treeOwner, ids idMap) error {
		var err error
		day, err = s.editor.addDay(ctx, o, in)
		return err
	})
	return day, err
}

func (s *forkService) UpdateDay(ctx context.Context, actor Actor, mesocycleID, dayID primitive.ObjectID, in DayInput) (*domain.Day, error) {
	var day *domain.Day
	err := s.edit(ctx, actor, mesocycleID, func(ctx context.Context, o treeOwner, ids idMap) error {
		var err error
		day, err = s.editor.updateDay(ctx, o, ids.resolve(dayID), in)
		return err
	})
	return day, err
}

func (s *forkService) DeleteDay(ctx context.Context, actor Actor, mesocycleID, dayID primitive.ObjectID) error {
	return s.edit(ctx, actor, mesocycleID, func(ctx context.Context, o treeOwner, ids idMap) error {
		return s.editor.deleteDay(ctx, o, ids.resolve(dayID))
	})
}

func (s *forkService) ReorderDays(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID, changes []ordering.Item) ([]domain.Day, error) {
	var days []domain.Day
	err := s.edit(ctx, actor, mesocycleID, func(ctx context.Context, o treeOwner, ids idMap) error {
		var err error
		days, err = s.editor.reorderDays(ctx, o, ids.resolveItems(changes))
		return err
	})
	return days, err
}

func (s *forkService) AddExercise(ctx context.Context, actor Actor, mesocycleID, dayID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	var ex *domain.Exercise
	err := s.edit(ctx, actor, mesocycleID, func(ctx context.Context, o treeOwner, ids idMap) error {
		var err error
		ex, err = s.editor.addExercise(ctx, o, ids.resolve(dayID), in)
		return err
	})
	return ex, err
}

func (s *forkService) UpdateExercise(ctx context.Context, actor Actor, mesocycleID, dayID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	var ex *domain.Exercise
	err := s.edit(ctx, actor, mesocycleID, func(ctx context.Context, o treeOwner, ids idMap) error {
		var err error
		ex, err = s.editor.updateExercise(ctx, o, ids.resolve(dayID), ids.resolve(exerciseID), in)
		return err
	})
	return ex, err
}

func (s *forkService) DeleteExercise(ctx context.Context, actor Actor, mesocycleID, dayID, exerciseID primitive.ObjectID) error {
	return s.edit(ctx, actor, mesocycleID, func(ctx context.Context, o treeOwner, ids idMap) error {
		return s.editor.deleteExercise(ctx, o, ids.resolve(dayID), ids.resolve(exerciseID))
	})
}

func (s *forkService) ReorderExercises(ctx context.Context, actor Actor, mesocycleID, dayID primitive.ObjectID, changes []ordering.Item) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	err := s.edit(ctx, actor, mesocycleID, func(ctx context.Context, o treeOwner, ids idMap) error {
		var err error
		exercises, err = s.editor.reorderExercises(ctx, o, ids.resolve(dayID), ids.resolveItems(changes))
		return err
	})
	return exercises, err
}

// edit forks the mesocycle if needed and runs fn against its own tree. A
// failing fn rolls the fork back too.
func (s *forkService) edit(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID, fn func(ctx context.Context, o treeOwner, ids idMap) error) error {
	if err := requireCoach(actor); err != nil {
		return err
	}
	return s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		m, err := coachMesocycle(ctx, s.repos.Mesocycles, actor.ID, mesocycleID)
		if err != nil {
			return err
		}
		ids, err := s.ensureForked(ctx, m)
		if err != nil {
			return err
		}
		return fn(ctx, mesocycleOwner(m.ID), ids)
	})
}

// ensureForked flips isForked with a conditional update; only the caller
// that wins the flip copies the template tree.
func (s *forkService) ensureForked(ctx context.Context, m *domain.Mesocycle) (idMap, error) {
	if m.IsForked {
		return idMap{}, nil
	}
	if m.TemplateID == nil {
		return nil, notFound("mesocycle template")
	}
	templateID := *m.TemplateID

	flipped, err := s.repos.Mesocycles.MarkForked(ctx, m.ID)
	if err != nil {
		return nil, mapRepoErr(err, "mesocycle")
	}
	if !flipped {
		return idMap{}, nil
	}

	src, err := s.editor.loadTree(ctx, templateOwner(templateID))
	if err != nil {
		return nil, err
	}
	ids, err := s.editor.cloneTree(ctx, src, mesocycleOwner(m.ID))
	if err != nil {
		return nil, err
	}
	m.IsForked = true
	m.TemplateID = nil
	log.Printf("INFO: Forked mesocycle %s from template %s (%d days)", m.ID.Hex(), templateID.Hex(), len(src))
	return idMap(ids), nil
}

package service

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/ordering"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"fmt"
	"log"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TemplateInput struct {
	Title        string `json:"title" validate:"required,max=200"`
	NumberOfDays int    `json:"numberOfDays" validate:"min=1,max=7"`
}

// TemplateDraft is a complete plan built outside the service, for example
// parsed from an imported file.
type TemplateDraft struct {
	Title string     `json:"title" validate:"required,max=200"`
	Days  []DayDraft `json:"days" validate:"min=1,max=7,dive"`
}

type DayDraft struct {
	Title     string          `json:"title" validate:"max=200"`
	Exercises []ExerciseInput `json:"exercises"`
}

// ValidateTemplateDraft checks a draft without storing it.
func ValidateTemplateDraft(d TemplateDraft) error {
	if err := validateStruct(d); err != nil {
		return err
	}
	for i, day := range d.Days {
		for j, ex := range day.Exercises {
			if err := validateExerciseInput(ex); err != nil {
				return fmt.Errorf("day %d exercise %d: %w", i+1, j+1, err)
			}
		}
	}
	return nil
}

type TemplateService interface {
	CreateTemplate(ctx context.Context, actor Actor, in TemplateInput) (*TemplateTree, error)
	ListTemplates(ctx context.Context, actor Actor) ([]domain.Template, error)
	GetTemplate(ctx context.Context, actor Actor, templateID primitive.ObjectID) (*TemplateTree, error)
	RenameTemplate(ctx context.Context, actor Actor, templateID primitive.ObjectID, title string) (*domain.Template, error)
	DeleteTemplate(ctx context.Context, actor Actor, templateID primitive.ObjectID) error

	AddDay(ctx context.Context, actor Actor, templateID primitive.ObjectID, in DayInput) (*domain.Day, error)
	UpdateDay(ctx context.Context, actor Actor, templateID, dayID primitive.ObjectID, in DayInput) (*domain.Day, error)
	DeleteDay(ctx context.Context, actor Actor, templateID, dayID primitive.ObjectID) error
	ReorderDays(ctx context.Context, actor Actor, templateID primitive.ObjectID, changes []ordering.Item) ([]domain.Day, error)

	AddExercise(ctx context.Context, actor Actor, templateID, dayID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	UpdateExercise(ctx context.Context, actor Actor, templateID, dayID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error)
	DeleteExercise(ctx context.Context, actor Actor, templateID, dayID, exerciseID primitive.ObjectID) error
	ReorderExercises(ctx context.Context, actor Actor, templateID, dayID primitive.ObjectID, changes []ordering.Item) ([]domain.Exercise, error)

	DuplicateTemplate(ctx context.Context, actor Actor, templateID primitive.ObjectID, title string) (*TemplateTree, error)
	ImportTemplate(ctx context.Context, actor Actor, draft TemplateDraft) (*TemplateTree, error)
}

type templateService struct {
	repos  repository.Repositories
	editor treeEditor
}

func NewTemplateService(repos repository.Repositories) TemplateService {
	return &templateService{repos: repos, editor: treeEditor{repos: repos}}
}

// CreateTemplate stores a template with NumberOfDays empty days numbered 1..N.
func (s *templateService) CreateTemplate(ctx context.Context, actor Actor, in TemplateInput) (*TemplateTree, error) {
	if err := requireCoach(actor); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	var tree *TemplateTree
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		tpl, err := createEmptyTemplate(ctx, s.repos, actor.ID, in.Title, in.NumberOfDays, false)
		if err != nil {
			return err
		}
		tree, err = s.load(ctx, tpl)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

func (s *templateService) ListTemplates(ctx context.Context, actor Actor) ([]domain.Template, error) {
	if err := requireCoach(actor); err != nil {
		return nil, err
	}
	return s.repos.Templates.GetByTrainerID(ctx, actor.ID)
}

func (s *templateService) GetTemplate(ctx context.Context, actor Actor, templateID primitive.ObjectID) (*TemplateTree, error) {
	tpl, err := s.owned(ctx, actor, templateID)
	if err != nil {
		return nil, err
	}
	return s.load(ctx, tpl)
}

func (s *templateService) RenameTemplate(ctx context.Context, actor Actor, templateID primitive.ObjectID, title string) (*domain.Template, error) {
	if err := validateStruct(TemplateInput{Title: title, NumberOfDays: 1}); err != nil {
		return nil, err
	}
	tpl, err := s.owned(ctx, actor, templateID)
	if err != nil {
		return nil, err
	}
	tpl.Title = title
	if err := s.repos.Templates.Update(ctx, tpl); err != nil {
		return nil, mapRepoErr(err, "template")
	}
	return tpl, nil
}

// DeleteTemplate removes a template with its whole tree. Templates still
// backing a mesocycle, or whose days were logged before a fork, cannot be
// deleted.
func (s *templateService) DeleteTemplate(ctx context.Context, actor Actor, templateID primitive.ObjectID) error {
	return s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		tpl, err := s.owned(ctx, actor, templateID)
		if err != nil {
			return err
		}
		n, err := s.repos.Mesocycles.CountByTemplateID(ctx, tpl.ID)
		if err != nil {
			return err
		}
		if n > 0 {
			return conflictf("template is used by %d mesocycles", n)
		}
		if err := s.editor.deleteTree(ctx, templateOwner(tpl.ID)); err != nil {
			return err
		}
		return mapRepoErr(s.repos.Templates.Delete(ctx, tpl.ID, actor.ID), "template")
	})
}

func (s *templateService) AddDay(ctx context.Context, actor Actor, templateID primitive.ObjectID, in DayInput) (*domain.Day, error) {
	var day *domain.Day
	err := s.edit(ctx, actor, templateID, func(ctx context.Context, tpl *domain.Template) error {
		var err error
		if day, err = s.editor.addDay(ctx, templateOwner(tpl.ID), in); err != nil {
			return err
		}
		return s.syncDayCount(ctx, tpl)
	})
	return day, err
}

func (s *templateService) UpdateDay(ctx context.Context, actor Actor, templateID, dayID primitive.ObjectID, in DayInput) (*domain.Day, error) {
	var day *domain.Day
	err := s.edit(ctx, actor, templateID, func(ctx context.Context, tpl *domain.Template) error {
		var err error
		day, err = s.editor.updateDay(ctx, templateOwner(tpl.ID), dayID, in)
		return err
	})
	return day, err
}

func (s *templateService) DeleteDay(ctx context.Context, actor Actor, templateID, dayID primitive.ObjectID) error {
	return s.edit(ctx, actor, templateID, func(ctx context.Context, tpl *domain.Template) error {
		if err := s.editor.deleteDay(ctx, templateOwner(tpl.ID), dayID); err != nil {
			return err
		}
		return s.syncDayCount(ctx, tpl)
	})
}

func (s *templateService) ReorderDays(ctx context.Context, actor Actor, templateID primitive.ObjectID, changes []ordering.Item) ([]domain.Day, error) {
	var days []domain.Day
	err := s.edit(ctx, actor, templateID, func(ctx context.Context, tpl *domain.Template) error {
		var err error
		days, err = s.editor.reorderDays(ctx, templateOwner(tpl.ID), changes)
		return err
	})
	return days, err
}

func (s *templateService) AddExercise(ctx context.Context, actor Actor, templateID, dayID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	var ex *domain.Exercise
	err := s.edit(ctx, actor, templateID, func(ctx context.Context, tpl *domain.Template) error {
		var err error
		ex, err = s.editor.addExercise(ctx, templateOwner(tpl.ID), dayID, in)
		return err
	})
	return ex, err
}

func (s *templateService) UpdateExercise(ctx context.Context, actor Actor, templateID, dayID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	var ex *domain.Exercise
	err := s.edit(ctx, actor, templateID, func(ctx context.Context, tpl *domain.Template) error {
		var err error
		ex, err = s.editor.updateExercise(ctx, templateOwner(tpl.ID), dayID, exerciseID, in)
		return err
	})
	return ex, err
}

func (s *templateService) DeleteExercise(ctx context.Context, actor Actor, templateID, dayID, exerciseID primitive.ObjectID) error {
	return s.edit(ctx, actor, templateID, func(ctx context.Context, tpl *domain.Template) error {
		return s.editor.deleteExercise(ctx, templateOwner(tpl.ID), dayID, exerciseID)
	})
}

func (s *templateService) ReorderExercises(ctx context.Context, actor Actor, templateID, dayID primitive.ObjectID, changes []ordering.Item) ([]domain.Exercise, error) {
	var exercises []domain.Exercise
	err := s.edit(ctx, actor, templateID, func(ctx context.Context, tpl *domain.Template) error {
		var err error
		exercises, err = s.editor.reorderExercises(ctx, templateOwner(tpl.ID), dayID, changes)
		return err
	})
	return exercises, err
}

// DuplicateTemplate deep-copies a template into a new independent one.
func (s *templateService) DuplicateTemplate(ctx context.Context, actor Actor, templateID primitive.ObjectID, title string) (*TemplateTree, error) {
	var tree *TemplateTree
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		src, err := s.owned(ctx, actor, templateID)
		if err != nil {
			return err
		}
		if title == "" {
			title = src.Title + " (copy)"
		}
		days, err := s.editor.loadTree(ctx, templateOwner(src.ID))
		if err != nil {
			return err
		}
		tree, err = copyIntoTemplate(ctx, s.editor, actor.ID, title, days)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// ImportTemplate stores a complete draft as a new template.
func (s *templateService) ImportTemplate(ctx context.Context, actor Actor, draft TemplateDraft) (*TemplateTree, error) {
	if err := requireCoach(actor); err != nil {
		return nil, err
	}
	if err := ValidateTemplateDraft(draft); err != nil {
		return nil, err
	}
	var tree *TemplateTree
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		tpl, err := createEmptyTemplate(ctx, s.repos, actor.ID, draft.Title, 0, false)
		if err != nil {
			return err
		}
		owner := templateOwner(tpl.ID)
		for _, d := range draft.Days {
			day, err := s.editor.addDay(ctx, owner, DayInput{Title: d.Title})
			if err != nil {
				return err
			}
			for _, ex := range d.Exercises {
				if _, err := s.editor.addExercise(ctx, owner, day.ID, ex); err != nil {
					return err
				}
			}
		}
		if err := s.syncDayCount(ctx, tpl); err != nil {
			return err
		}
		tree, err = s.load(ctx, tpl)
		return err
	})
	if err != nil {
		return nil, err
	}
	log.Printf("INFO: Imported template %s with %d days for coach %s", tree.Template.ID.Hex(), len(tree.Days), actor.ID.Hex())
	return tree, nil
}

// edit runs fn on an owned template inside a transaction.
func (s *templateService) edit(ctx context.Context, actor Actor, templateID primitive.ObjectID, fn func(ctx context.Context, tpl *domain.Template) error) error {
	return s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		tpl, err := s.owned(ctx, actor, templateID)
		if err != nil {
			return err
		}
		return fn(ctx, tpl)
	})
}

func (s *templateService) owned(ctx context.Context, actor Actor, templateID primitive.ObjectID) (*domain.Template, error) {
	if err := requireCoach(actor); err != nil {
		return nil, err
	}
	return ownedTemplate(ctx, s.repos.Templates, actor.ID, templateID)
}

func (s *templateService) syncDayCount(ctx context.Context, tpl *domain.Template) error {
	days, err := s.repos.Days.GetByTemplateID(ctx, tpl.ID)
	if err != nil {
		return err
	}
	if tpl.NumberOfDays == len(days) {
		return nil
	}
	tpl.NumberOfDays = len(days)
	return mapRepoErr(s.repos.Templates.Update(ctx, tpl), "template")
}

func (s *templateService) load(ctx context.Context, tpl *domain.Template) (*TemplateTree, error) {
	days, err := s.editor.loadTree(ctx, templateOwner(tpl.ID))
	if err != nil {
		return nil, err
	}
	return &TemplateTree{Template: *tpl, Days: days}, nil
}

// ownedTemplate loads a template of the coach. Templates of other coaches
// are reported as missing.
func ownedTemplate(ctx context.Context, templates repository.TemplateRepository, coachID, templateID primitive.ObjectID) (*domain.Template, error) {
	tpl, err := templates.GetByID(ctx, templateID)
	if err != nil {
		return nil, mapRepoErr(err, "template")
	}
	if tpl.TrainerID != coachID {
		return nil, notFound("template")
	}
	return tpl, nil
}

func createEmptyTemplate(ctx context.Context, repos repository.Repositories, coachID primitive.ObjectID, title string, days int, auto bool) (*domain.Template, error) {
	tpl := &domain.Template{
		TrainerID:     coachID,
		Title:         title,
		NumberOfDays:  days,
		AutoGenerated: auto,
	}
	if _, err := repos.Templates.Create(ctx, tpl); err != nil {
		return nil, err
	}
	owner := templateOwner(tpl.ID)
	for n := 1; n <= days; n++ {
		if _, err := repos.Days.Create(ctx, owner.newDay(n, "")); err != nil {
			return nil, err
		}
	}
	return tpl, nil
}

// copyIntoTemplate creates a new template holding a copy of days.
func copyIntoTemplate(ctx context.Context, editor treeEditor, coachID primitive.ObjectID, title string, days []domain.DayTree) (*TemplateTree, error) {
	tpl, err := createEmptyTemplate(ctx, editor.repos, coachID, title, 0, false)
	if err != nil {
		return nil, err
	}
	owner := templateOwner(tpl.ID)
	if _, err := editor.cloneTree(ctx, days, owner); err != nil {
		return nil, err
	}
	tpl.NumberOfDays = len(days)
	if err := editor.repos.Templates.Update(ctx, tpl); err != nil {
		return nil, err
	}
	copied, err := editor.loadTree(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &TemplateTree{Template: *tpl, Days: copied}, nil
}

package service

import (
	"alcyxob/fitness-coach/internal/cycle"
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateMesocycleInput describes a new mesocycle. Exactly one of TemplateID
// and DayCount selects the plan: a template of the coach, or a from-scratch
// plan with DayCount empty days.
type CreateMesocycleInput struct {
	ClientID      primitive.ObjectID  `json:"clientId"`
	TemplateID    *primitive.ObjectID `json:"templateId,omitempty"`
	DayCount      int                 `json:"dayCount,omitempty"`
	Title         string              `json:"title" validate:"max=200"`
	StartDate     time.Time           `json:"startDate"`
	DurationWeeks int                 `json:"durationWeeks"`
}

// MesocycleView is a mesocycle with its weeks and the day tree clients train
// from: the template's while unforked, the mesocycle's own once forked.
type MesocycleView struct {
	Mesocycle   domain.Mesocycle    `json:"mesocycle"`
	Microcycles []domain.Microcycle `json:"microcycles"`
	Days        []domain.DayTree    `json:"days"`
}

// LoggedWeek is a microcycle that has at least one workout log.
type LoggedWeek struct {
	Microcycle domain.Microcycle `json:"microcycle"`
	LogCount   int               `json:"logCount"`
}

type CycleService interface {
	CreateMesocycle(ctx context.Context, actor Actor, in CreateMesocycleInput) (*MesocycleView, error)
	CompleteMesocycle(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID) (*domain.Mesocycle, error)
	GetMesocycle(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID) (*MesocycleView, error)
	ListClientMesocycles(ctx context.Context, actor Actor, clientID primitive.ObjectID) ([]domain.Mesocycle, error)
	GetActiveMesocycle(ctx context.Context, actor Actor) (*MesocycleView, error)
	SaveAsTemplate(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID, title string) (*TemplateTree, error)
	ListLoggedWeeks(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID) ([]LoggedWeek, error)
}

type cycleService struct {
	repos  repository.Repositories
	editor treeEditor
	now    Clock
}

func NewCycleService(repos repository.Repositories, clock Clock) CycleService {
	return &cycleService{repos: repos, editor: treeEditor{repos: repos}, now: clockOrDefault(clock)}
}

func (in CreateMesocycleInput) validate() ([]cycle.Window, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.ClientID == primitive.NilObjectID {
		return nil, validationf("clientId is required")
	}
	if in.StartDate.IsZero() {
		return nil, validationf("startDate is required")
	}
	if in.TemplateID != nil && in.DayCount != 0 {
		return nil, validationf("give either templateId or dayCount, not both")
	}
	if in.TemplateID == nil && (in.DayCount < 1 || in.DayCount > domain.MaxDaysPerWeek) {
		return nil, validationf("dayCount must be between 1 and %d", domain.MaxDaysPerWeek)
	}
	windows, err := cycle.Windows(in.StartDate, in.DurationWeeks)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	return windows, nil
}

// CreateMesocycle completes the client's active mesocycle, if any, and
// creates the new active one with its microcycles in one transaction.
func (s *cycleService) CreateMesocycle(ctx context.Context, actor Actor, in CreateMesocycleInput) (*MesocycleView, error) {
	if err := requireCoach(actor); err != nil {
		return nil, err
	}
	windows, err := in.validate()
	if err != nil {
		return nil, err
	}
	start := windows[0].Start

	var view *MesocycleView
	err = s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if _, err := managedClient(ctx, s.repos.Users, actor.ID, in.ClientID); err != nil {
			return err
		}

		var tpl *domain.Template
		var err error
		if in.TemplateID != nil {
			tpl, err = ownedTemplate(ctx, s.repos.Templates, actor.ID, *in.TemplateID)
		} else {
			title := in.Title
			if title == "" {
				title = "Custom plan"
			}
			tpl, err = createEmptyTemplate(ctx, s.repos, actor.ID, title, in.DayCount, true)
		}
		if err != nil {
			return err
		}

		now := s.now()
		prev, err := s.repos.Mesocycles.GetActiveByClientID(ctx, in.ClientID)
		switch {
		case err == nil:
			if err := s.repos.Mesocycles.Complete(ctx, prev.ID, now); err != nil {
				return err
			}
			log.Printf("INFO: Completed mesocycle %s of client %s", prev.ID.Hex(), in.ClientID.Hex())
		case !errors.Is(err, repository.ErrNotFound):
			return err
		}

		title := in.Title
		if title == "" {
			title = tpl.Title
		}
		templateID := tpl.ID
		m := &domain.Mesocycle{
			ClientID:      in.ClientID,
			TrainerID:     actor.ID,
			Title:         title,
			TemplateID:    &templateID,
			StartDate:     start,
			EndDate:       cycle.EndDate(start, in.DurationWeeks),
			DurationWeeks: in.DurationWeeks,
			IsActive:      true,
		}
		if _, err := s.repos.Mesocycles.Create(ctx, m); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return conflictf("client already has an active mesocycle")
			}
			return err
		}

		weeks := make([]domain.Microcycle, len(windows))
		for i, w := range windows {
			weeks[i] = domain.Microcycle{MesocycleID: m.ID, WeekNumber: w.Week, StartDate: w.Start, EndDate: w.End}
		}
		if err := s.repos.Microcycles.CreateMany(ctx, weeks); err != nil {
			return err
		}

		scheduled := now
		if start.After(now) {
			scheduled = start
		}
		note := &domain.Notification{
			RecipientID:  in.ClientID,
			Kind:         domain.NotificationMesocycleAssigned,
			Message:      fmt.Sprintf("New training plan %q starts %s", m.Title, start.Format("2006-01-02")),
			ScheduledFor: scheduled,
		}
		if _, err := s.repos.Notifications.Create(ctx, note); err != nil {
			return err
		}

		days, err := s.editor.loadTree(ctx, templateOwner(tpl.ID))
		if err != nil {
			return err
		}
		view = &MesocycleView{Mesocycle: *m, Microcycles: weeks, Days: days}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return view, nil
}

func (s *cycleService) CompleteMesocycle(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID) (*domain.Mesocycle, error) {
	var m *domain.Mesocycle
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		var err error
		m, err = s.coachMesocycle(ctx, actor, mesocycleID)
		if err != nil {
			return err
		}
		if m.IsCompleted {
			return conflictf("mesocycle is already completed")
		}
		now := s.now()
		if err := s.repos.Mesocycles.Complete(ctx, m.ID, now); err != nil {
			return mapRepoErr(err, "mesocycle")
		}
		m.IsActive = false
		m.IsCompleted = true
		m.CompletedAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

func (s *cycleService) GetMesocycle(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID) (*MesocycleView, error) {
	m, err := visibleMesocycle(ctx, s.repos, actor, mesocycleID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, m)
}

func (s *cycleService) ListClientMesocycles(ctx context.Context, actor Actor, clientID primitive.ObjectID) ([]domain.Mesocycle, error) {
	switch {
	case actor.IsCoach():
		if _, err := managedClient(ctx, s.repos.Users, actor.ID, clientID); err != nil {
			return nil, err
		}
	case actor.ID != clientID:
		return nil, notFound("client")
	}
	return s.repos.Mesocycles.GetByClientID(ctx, clientID)
}

func (s *cycleService) GetActiveMesocycle(ctx context.Context, actor Actor) (*MesocycleView, error) {
	if err := requireClient(actor); err != nil {
		return nil, err
	}
	m, err := s.repos.Mesocycles.GetActiveByClientID(ctx, actor.ID)
	if err != nil {
		return nil, mapRepoErr(err, "active mesocycle")
	}
	return s.view(ctx, m)
}

// SaveAsTemplate promotes the mesocycle's current day tree into a new
// template of the coach. The copy has no link back to the mesocycle.
func (s *cycleService) SaveAsTemplate(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID, title string) (*TemplateTree, error) {
	if err := validateStruct(DayInput{Title: title}); err != nil {
		return nil, err
	}
	var tree *TemplateTree
	err := s.repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		m, err := s.coachMesocycle(ctx, actor, mesocycleID)
		if err != nil {
			return err
		}
		owner, err := activeOwner(m)
		if err != nil {
			return err
		}
		days, err := s.editor.loadTree(ctx, owner)
		if err != nil {
			return err
		}
		if title == "" {
			title = m.Title
		}
		tree, err = copyIntoTemplate(ctx, s.editor, actor.ID, title, days)
		return err
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// ListLoggedWeeks returns the weeks of a mesocycle that have workout logs.
func (s *cycleService) ListLoggedWeeks(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID) ([]LoggedWeek, error) {
	m, err := visibleMesocycle(ctx, s.repos, actor, mesocycleID)
	if err != nil {
		return nil, err
	}
	weeks, err := s.repos.Microcycles.GetByMesocycleID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	logs, err := s.repos.WorkoutLogs.GetByMesocycleID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	counts := make(map[primitive.ObjectID]int, len(weeks))
	for _, l := range logs {
		counts[l.MicrocycleID]++
	}
	out := []LoggedWeek{}
	for _, w := range weeks {
		if n := counts[w.ID]; n > 0 {
			out = append(out, LoggedWeek{Microcycle: w, LogCount: n})
		}
	}
	return out, nil
}

func (s *cycleService) view(ctx context.Context, m *domain.Mesocycle) (*MesocycleView, error) {
	weeks, err := s.repos.Microcycles.GetByMesocycleID(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	owner, err := activeOwner(m)
	if err != nil {
		return nil, err
	}
	days, err := s.editor.loadTree(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &MesocycleView{Mesocycle: *m, Microcycles: weeks, Days: days}, nil
}

func (s *cycleService) coachMesocycle(ctx context.Context, actor Actor, mesocycleID primitive.ObjectID) (*domain.Mesocycle, error) {
	if err := requireCoach(actor); err != nil {
		return nil, err
	}
	return coachMesocycle(ctx, s.repos.Mesocycles, actor.ID, mesocycleID)
}

func coachMesocycle(ctx context.Context, mesocycles repository.MesocycleRepository, coachID, mesocycleID primitive.ObjectID) (*domain.Mesocycle, error) {
	m, err := mesocycles.GetByID(ctx, mesocycleID)
	if err != nil {
		return nil, mapRepoErr(err, "mesocycle")
	}
	if m.TrainerID != coachID {
		return nil, notFound("mesocycle")
	}
	return m, nil
}

// visibleMesocycle loads a mesocycle the actor may read: the coach who
// created it or the client it belongs to.
func visibleMesocycle(ctx context.Context, repos repository.Repositories, actor Actor, mesocycleID primitive.ObjectID) (*domain.Mesocycle, error) {
	m, err := repos.Mesocycles.GetByID(ctx, mesocycleID)
	if err != nil {
		return nil, mapRepoErr(err, "mesocycle")
	}
	if (actor.IsCoach() && m.TrainerID == actor.ID) || (actor.IsClient() && m.ClientID == actor.ID) {
		return m, nil
	}
	return nil, notFound("mesocycle")
}

// activeOwner returns whose day tree the mesocycle currently trains from.
func activeOwner(m *domain.Mesocycle) (treeOwner, error) {
	if m.IsForked {
		return mesocycleOwner(m.ID), nil
	}
	if m.TemplateID == nil {
		return treeOwner{}, fmt.Errorf("mesocycle %s has neither a template nor its own days", m.ID.Hex())
	}
	return templateOwner(*m.TemplateID), nil
}

package service

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"alcyxob/fitness-coach/internal/repository/memory"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// fixture wires every service against one in-memory store with a coach, a
// client on the coach's roster and a clock tests can move.
type fixture struct {
	ctx   context.Context
	repos repository.Repositories
	now   time.Time

	coach  Actor
	client Actor

	trainer   TrainerService
	templates TemplateService
	cycles    CycleService
	forks     ForkService
	logs      LogService
	notes     NotificationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		ctx:   context.Background(),
		repos: memory.NewRepositories(),
		now:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }

	f.trainer = NewTrainerService(f.repos)
	f.templates = NewTemplateService(f.repos)
	f.cycles = NewCycleService(f.repos, clock)
	f.forks = NewForkService(f.repos)
	f.logs = NewLogService(f.repos)
	f.notes = NewNotificationService(f.repos.Notifications, clock)

	f.coach = f.user(t, "coach@example.com", domain.RoleTrainer)
	f.client = f.user(t, "client@example.com", domain.RoleClient)
	if _, err := f.trainer.AddClientByEmail(f.ctx, f.coach, "client@example.com"); err != nil {
		t.Fatalf("AddClientByEmail: %v", err)
	}
	return f
}

func (f *fixture) user(t *testing.T, email string, role domain.Role) Actor {
	t.Helper()
	u := &domain.User{Name: email, Email: email, PasswordHash: "hash", Role: role}
	if _, err := f.repos.Users.Create(f.ctx, u); err != nil {
		t.Fatalf("create user %s: %v", email, err)
	}
	return Actor{ID: u.ID, Role: role}
}

// addClient creates another client managed by the fixture coach.
func (f *fixture) addClient(t *testing.T, email string) Actor {
	t.Helper()
	a := f.user(t, email, domain.RoleClient)
	if _, err := f.trainer.AddClientByEmail(f.ctx, f.coach, email); err != nil {
		t.Fatalf("AddClientByEmail(%s): %v", email, err)
	}
	return a
}

func sets(n, min, max int) []SetInput {
	out := make([]SetInput, n)
	for i := range out {
		out[i] = SetInput{SetNumber: i + 1, MinReps: min, MaxReps: max}
	}
	return out
}

// template builds a template of the coach with days x exercisesPerDay
// exercises named "D<day>E<n>", each with two 8-12 sets.
func (f *fixture) template(t *testing.T, days, exercisesPerDay int) *TemplateTree {
	t.Helper()
	tree, err := f.templates.CreateTemplate(f.ctx, f.coach, TemplateInput{Title: "Base", NumberOfDays: days})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	for i, d := range tree.Days {
		for j := 1; j <= exercisesPerDay; j++ {
			in := ExerciseInput{Name: fmt.Sprintf("D%dE%d", i+1, j), Sets: sets(2, 8, 12)}
			if _, err := f.templates.AddExercise(f.ctx, f.coach, tree.Template.ID, d.Day.ID, in); err != nil {
				t.Fatalf("AddExercise: %v", err)
			}
		}
	}
	tree, err = f.templates.GetTemplate(f.ctx, f.coach, tree.Template.ID)
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	return tree
}

func (f *fixture) mesocycle(t *testing.T, client Actor, tpl *TemplateTree, start time.Time, weeks int) *MesocycleView {
	t.Helper()
	id := tpl.Template.ID
	view, err := f.cycles.CreateMesocycle(f.ctx, f.coach, CreateMesocycleInput{
		ClientID:      client.ID,
		TemplateID:    &id,
		StartDate:     start,
		DurationWeeks: weeks,
	})
	if err != nil {
		t.Fatalf("CreateMesocycle: %v", err)
	}
	return view
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("error = %v, want %v", err, kind)
	}
}

func countExercises(days []domain.DayTree) int {
	n := 0
	for _, d := range days {
		n += len(d.Exercises)
	}
	return n
}

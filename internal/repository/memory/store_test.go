package memory

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTemplate(t *testing.T, repos repository.Repositories, ctx context.Context, title string) primitive.ObjectID {
	t.Helper()
	id, err := repos.Templates.Create(ctx, &domain.Template{TrainerID: primitive.NewObjectID(), Title: title})
	if err != nil {
		t.Fatalf("create template: %v", err)
	}
	return id
}

func TestTransactionRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	keep := newTemplate(t, repos, ctx, "keep")

	boom := errors.New("boom")
	var created primitive.ObjectID
	err := repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		created = newTemplate(t, repos, ctx, "discard")
		tpl, err := repos.Templates.GetByID(ctx, keep)
		if err != nil {
			return err
		}
		tpl.Title = "renamed"
		if err := repos.Templates.Update(ctx, tpl); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("WithTransaction error = %v, want boom", err)
	}

	if _, err := repos.Templates.GetByID(ctx, created); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("template created in failed transaction still exists (err = %v)", err)
	}
	tpl, err := repos.Templates.GetByID(ctx, keep)
	if err != nil {
		t.Fatal(err)
	}
	if tpl.Title != "keep" {
		t.Errorf("title = %q, want update rolled back", tpl.Title)
	}
}

func TestNestedTransactionJoinsOuter(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()

	var inner primitive.ObjectID
	err := repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		// Would deadlock if the nested call took the lock again.
		if err := repos.Tx.WithTransaction(ctx, func(ctx context.Context) error {
			inner = newTemplate(t, repos, ctx, "inner")
			return nil
		}); err != nil {
			return err
		}
		return errors.New("outer fails")
	})
	if err == nil {
		t.Fatal("expected outer error")
	}
	if _, err := repos.Templates.GetByID(ctx, inner); !errors.Is(err, repository.ErrNotFound) {
		t.Error("inner write survived the outer rollback")
	}
}

func TestOneActiveMesocyclePerClient(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	client, coach := primitive.NewObjectID(), primitive.NewObjectID()

	first := &domain.Mesocycle{ClientID: client, TrainerID: coach, IsActive: true}
	if _, err := repos.Mesocycles.Create(ctx, first); err != nil {
		t.Fatal(err)
	}
	_, err := repos.Mesocycles.Create(ctx, &domain.Mesocycle{ClientID: client, TrainerID: coach, IsActive: true})
	if !errors.Is(err, repository.ErrDuplicate) {
		t.Fatalf("second active mesocycle error = %v, want ErrDuplicate", err)
	}

	if err := repos.Mesocycles.Complete(ctx, first.ID, time.Now()); err != nil {
		t.Fatal(err)
	}
	if _, err := repos.Mesocycles.Create(ctx, &domain.Mesocycle{ClientID: client, TrainerID: coach, IsActive: true}); err != nil {
		t.Fatalf("create after completing the previous one: %v", err)
	}
}

func TestMarkForkedFlipsOnce(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	tplID := primitive.NewObjectID()
	m := &domain.Mesocycle{ClientID: primitive.NewObjectID(), TrainerID: primitive.NewObjectID(), TemplateID: &tplID, IsActive: true}
	if _, err := repos.Mesocycles.Create(ctx, m); err != nil {
		t.Fatal(err)
	}

	flipped, err := repos.Mesocycles.MarkForked(ctx, m.ID)
	if err != nil || !flipped {
		t.Fatalf("first MarkForked = %v, %v; want true", flipped, err)
	}
	flipped, err = repos.Mesocycles.MarkForked(ctx, m.ID)
	if err != nil || flipped {
		t.Fatalf("second MarkForked = %v, %v; want false", flipped, err)
	}
	got, _ := repos.Mesocycles.GetByID(ctx, m.ID)
	if !got.IsForked || got.TemplateID != nil {
		t.Errorf("after fork: isForked=%v templateId=%v", got.IsForked, got.TemplateID)
	}
	if _, err := repos.Mesocycles.MarkForked(ctx, primitive.NewObjectID()); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("MarkForked on unknown id = %v, want ErrNotFound", err)
	}
}

func TestReturnedValuesAreCopies(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	tplID := primitive.NewObjectID()
	dayID, err := repos.Days.Create(ctx, &domain.Day{TemplateID: &tplID, DayNumber: 1})
	if err != nil {
		t.Fatal(err)
	}
	rest := 90
	ex := &domain.Exercise{DayID: dayID, Name: "Squat", Order: 1, Sets: []domain.Set{{SetNumber: 1, MinReps: 5, MaxReps: 5, RestSeconds: &rest}}}
	if _, err := repos.Exercises.Create(ctx, ex); err != nil {
		t.Fatal(err)
	}
	if ex.Sets[0].ID == primitive.NilObjectID {
		t.Error("set id not assigned")
	}

	got, _ := repos.Exercises.GetByID(ctx, ex.ID)
	*got.Sets[0].RestSeconds = 5
	got.Sets[0].MinReps = 1

	again, _ := repos.Exercises.GetByID(ctx, ex.ID)
	if again.Sets[0].MinReps != 5 || *again.Sets[0].RestSeconds != 90 {
		t.Errorf("stored exercise changed through a returned copy: %+v", again.Sets[0])
	}
}

func TestVideoReferenceLookups(t *testing.T) {
	ctx := context.Background()
	repos := NewRepositories()
	dayID := primitive.NewObjectID()
	const key = "exercise-videos/coach/ex/1.mp4"
	for _, name := range []string{"Squat", "Squat (copy)", "Lunge"} {
		ex := &domain.Exercise{DayID: dayID, Name: name, Order: 1}
		if name != "Lunge" {
			ex.VideoURL = key
		}
		if _, err := repos.Exercises.Create(ctx, ex); err != nil {
			t.Fatalf("create exercise: %v", err)
		}
	}
	if n, _ := repos.Exercises.CountByVideoURL(ctx, key); n != 2 {
		t.Errorf("CountByVideoURL = %d, want 2", n)
	}

	if _, err := repos.Uploads.GetByObjectKey(ctx, key); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("GetByObjectKey before upload = %v, want ErrNotFound", err)
	}
	upload := &domain.Upload{ExerciseID: primitive.NewObjectID(), TrainerID: primitive.NewObjectID(), ObjectKey: key}
	if _, err := repos.Uploads.Create(ctx, upload); err != nil {
		t.Fatalf("create upload: %v", err)
	}
	got, err := repos.Uploads.GetByObjectKey(ctx, key)
	if err != nil || got.ID != upload.ID {
		t.Errorf("GetByObjectKey = %+v, %v", got, err)
	}
	if _, err := repos.Uploads.Create(ctx, &domain.Upload{ExerciseID: upload.ExerciseID, TrainerID: upload.TrainerID, ObjectKey: key}); !errors.Is(err, repository.ErrDuplicate) {
		t.Errorf("second upload with the same key = %v, want ErrDuplicate", err)
	}
}

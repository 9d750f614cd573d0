package service

import (
	"alcyxob/fitness-coach/internal/ordering"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateTemplate(t *testing.T) {
	f := newFixture(t)

	tree, err := f.templates.CreateTemplate(f.ctx, f.coach, TemplateInput{Title: "Upper/Lower", NumberOfDays: 4})
	if err != nil {
		t.Fatalf("CreateTemplate: %v", err)
	}
	if tree.Template.NumberOfDays != 4 || len(tree.Days) != 4 {
		t.Fatalf("template = %d days declared, %d stored", tree.Template.NumberOfDays, len(tree.Days))
	}
	for i, d := range tree.Days {
		if d.Day.DayNumber != i+1 {
			t.Errorf("days[%d].DayNumber = %d", i, d.Day.DayNumber)
		}
	}

	tests := []struct {
		name string
		in   TemplateInput
	}{
		{"no title", TemplateInput{NumberOfDays: 3}},
		{"zero days", TemplateInput{Title: "x", NumberOfDays: 0}},
		{"eight days", TemplateInput{Title: "x", NumberOfDays: 8}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.templates.CreateTemplate(f.ctx, f.coach, tt.in)
			wantKind(t, err, ErrValidation)
		})
	}

	_, err = f.templates.CreateTemplate(f.ctx, f.client, TemplateInput{Title: "x", NumberOfDays: 1})
	wantKind(t, err, ErrUnauthorized)
}

func TestTemplateDayCountFollowsDays(t *testing.T) {
	f := newFixture(t)
	tree := f.template(t, 6, 0)
	id := tree.Template.ID

	day, err := f.templates.AddDay(f.ctx, f.coach, id, DayInput{Title: "Seventh"})
	if err != nil {
		t.Fatalf("AddDay: %v", err)
	}
	if day.DayNumber != 7 {
		t.Errorf("DayNumber = %d, want 7", day.DayNumber)
	}
	_, err = f.templates.AddDay(f.ctx, f.coach, id, DayInput{})
	wantKind(t, err, ErrValidation)

	if err := f.templates.DeleteDay(f.ctx, f.coach, id, tree.Days[1].Day.ID); err != nil {
		t.Fatalf("DeleteDay: %v", err)
	}
	got, err := f.templates.GetTemplate(f.ctx, f.coach, id)
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if got.Template.NumberOfDays != 6 || len(got.Days) != 6 {
		t.Fatalf("after delete = %d declared %d stored, want 6", got.Template.NumberOfDays, len(got.Days))
	}
	for i, d := range got.Days {
		if d.Day.DayNumber != i+1 {
			t.Errorf("days[%d].DayNumber = %d, want compacted", i, d.Day.DayNumber)
		}
	}
	if got.Days[5].Day.Title != "Seventh" {
		t.Errorf("last day = %q, want Seventh", got.Days[5].Day.Title)
	}
}

func TestTemplateExerciseOrdering(t *testing.T) {
	f := newFixture(t)
	tree := f.template(t, 1, 3)
	id, dayID := tree.Template.ID, tree.Days[0].Day.ID
	e1, e2, e3 := tree.Days[0].Exercises[0].ID, tree.Days[0].Exercises[1].ID, tree.Days[0].Exercises[2].ID

	got, err := f.templates.ReorderExercises(f.ctx, f.coach, id, dayID, []ordering.Item{{ID: e1, Order: 10}, {ID: e3, Order: 1}})
	if err != nil {
		t.Fatalf("ReorderExercises: %v", err)
	}
	wantOrder := []struct {
		id    primitive.ObjectID
		order int
	}{{e3, 1}, {e2, 2}, {e1, 10}}
	for i, w := range wantOrder {
		if got[i].ID != w.id || got[i].Order != w.order {
			t.Errorf("got[%d] = %s@%d, want %s@%d", i, got[i].Name, got[i].Order, w.id.Hex(), w.order)
		}
	}

	for _, bad := range [][]ordering.Item{
		{{ID: e1, Order: 2}},                       // collides with e2
		{{ID: e1, Order: 0}},                       // below 1
		{{ID: primitive.NewObjectID(), Order: 4}},  // unknown
		{{ID: e1, Order: 4}, {ID: e1, Order: 5}},   // repeated id
	} {
		_, err := f.templates.ReorderExercises(f.ctx, f.coach, id, dayID, bad)
		wantKind(t, err, ErrValidation)
	}

	next, err := f.templates.AddExercise(f.ctx, f.coach, id, dayID, ExerciseInput{Name: "Curl", Sets: sets(3, 10, 15)})
	if err != nil {
		t.Fatalf("AddExercise: %v", err)
	}
	if next.Order != 11 {
		t.Errorf("new exercise order = %d, want 11", next.Order)
	}

	if err := f.templates.DeleteExercise(f.ctx, f.coach, id, dayID, e2); err != nil {
		t.Fatalf("DeleteExercise: %v", err)
	}
	left, _ := f.repos.Exercises.GetByDayID(f.ctx, dayID)
	for i, ex := range left {
		if ex.Order != i+1 {
			t.Errorf("after delete %s order = %d, want %d", ex.Name, ex.Order, i+1)
		}
	}
}

func TestTemplateExerciseValidation(t *testing.T) {
	f := newFixture(t)
	tree := f.template(t, 1, 1)
	id, dayID := tree.Template.ID, tree.Days[0].Day.ID

	tests := []struct {
		name string
		in   ExerciseInput
	}{
		{"no name", ExerciseInput{Sets: sets(1, 5, 5)}},
		{"max below min", ExerciseInput{Name: "x", Sets: []SetInput{{SetNumber: 1, MinReps: 10, MaxReps: 8}}}},
		{"zero min reps", ExerciseInput{Name: "x", Sets: []SetInput{{SetNumber: 1, MinReps: 0, MaxReps: 8}}}},
		{"set number zero", ExerciseInput{Name: "x", Sets: []SetInput{{SetNumber: 0, MinReps: 5, MaxReps: 8}}}},
		{"duplicate set number", ExerciseInput{Name: "x", Sets: []SetInput{{SetNumber: 1, MinReps: 5, MaxReps: 8}, {SetNumber: 1, MinReps: 5, MaxReps: 8}}}},
		{"negative rest", ExerciseInput{Name: "x", Sets: []SetInput{{SetNumber: 1, MinReps: 5, MaxReps: 8, RestSeconds: intp(-1)}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.templates.AddExercise(f.ctx, f.coach, id, dayID, tt.in)
			wantKind(t, err, ErrValidation)
		})
	}

	ex := tree.Days[0].Exercises[0]
	updated, err := f.templates.UpdateExercise(f.ctx, f.coach, id, dayID, ex.ID, ExerciseInput{
		Name: "Front squat",
		Sets: []SetInput{{SetNumber: 2, MinReps: 6, MaxReps: 8}, {SetNumber: 1, MinReps: 8, MaxReps: 10, RestSeconds: intp(120)}},
	})
	if err != nil {
		t.Fatalf("UpdateExercise: %v", err)
	}
	if updated.Name != "Front squat" || len(updated.Sets) != 2 || updated.Sets[0].SetNumber != 1 || *updated.Sets[0].RestSeconds != 120 {
		t.Errorf("updated = %+v", updated)
	}
}

func TestDeleteTemplate(t *testing.T) {
	f := newFixture(t)
	used := f.template(t, 2, 1)
	unused := f.template(t, 2, 2)
	view := f.mesocycle(t, f.client, used, date(2024, 1, 1), 4)

	err := f.templates.DeleteTemplate(f.ctx, f.coach, used.Template.ID)
	wantKind(t, err, ErrConflict)

	if err := f.templates.DeleteTemplate(f.ctx, f.coach, unused.Template.ID); err != nil {
		t.Fatalf("DeleteTemplate: %v", err)
	}
	_, err = f.templates.GetTemplate(f.ctx, f.coach, unused.Template.ID)
	wantKind(t, err, ErrNotFound)
	for _, d := range unused.Days {
		if _, err := f.repos.Days.GetByID(f.ctx, d.Day.ID); err == nil {
			t.Errorf("day %s survived template deletion", d.Day.ID.Hex())
		}
	}

	// Once the only mesocycle forks away, the template is free to go.
	if _, err := f.forks.AddDay(f.ctx, f.coach, view.Mesocycle.ID, DayInput{}); err != nil {
		t.Fatalf("AddDay: %v", err)
	}
	if err := f.templates.DeleteTemplate(f.ctx, f.coach, used.Template.ID); err != nil {
		t.Errorf("DeleteTemplate after fork: %v", err)
	}
}

func TestTemplateDeleteDayBlockedByLogs(t *testing.T) {
	f := newFixture(t)
	tpl := f.template(t, 2, 1)
	view := f.mesocycle(t, f.client, tpl, date(2024, 1, 1), 4)
	day := tpl.Days[0]
	if _, err := f.logs.RecordWorkout(f.ctx, f.client, view.Microcycles[0].ID, workout(day.Day.ID, day.Exercises[0].ID)); err != nil {
		t.Fatalf("RecordWorkout: %v", err)
	}

	err := f.templates.DeleteDay(f.ctx, f.coach, tpl.Template.ID, day.Day.ID)
	wantKind(t, err, ErrConflict)
	err = f.templates.DeleteExercise(f.ctx, f.coach, tpl.Template.ID, day.Day.ID, day.Exercises[0].ID)
	wantKind(t, err, ErrConflict)
}

func TestDeleteTemplateKeepsLoggedHistory(t *testing.T) {
	f := newFixture(t)
	tpl := f.template(t, 2, 1)
	view := f.mesocycle(t, f.client, tpl, date(2024, 1, 1), 4)
	day := tpl.Days[0]
	logged, err := f.logs.RecordWorkout(f.ctx, f.client, view.Microcycles[0].ID, workout(day.Day.ID, day.Exercises[0].ID))
	if err != nil {
		t.Fatalf("RecordWorkout: %v", err)
	}
	// The fork drops the mesocycle's template reference, the log still points at it.
	if _, err := f.forks.UpdateDay(f.ctx, f.coach, view.Mesocycle.ID, day.Day.ID, DayInput{Title: "Push"}); err != nil {
		t.Fatalf("UpdateDay: %v", err)
	}

	err = f.templates.DeleteTemplate(f.ctx, f.coach, tpl.Template.ID)
	wantKind(t, err, ErrConflict)

	if _, err := f.templates.GetTemplate(f.ctx, f.coach, tpl.Template.ID); err != nil {
		t.Errorf("GetTemplate after refused delete: %v", err)
	}
	if _, err := f.repos.Days.GetByID(f.ctx, logged.DayID); err != nil {
		t.Errorf("logged day lookup: %v", err)
	}
	if _, err := f.repos.Exercises.GetByID(f.ctx, logged.Exercises[0].ExerciseID); err != nil {
		t.Errorf("logged exercise lookup: %v", err)
	}
}

func TestTemplateOwnership(t *testing.T) {
	f := newFixture(t)
	tpl := f.template(t, 1, 1)
	otherCoach := f.user(t, "other@example.com", "trainer")

	_, err := f.templates.GetTemplate(f.ctx, otherCoach, tpl.Template.ID)
	wantKind(t, err, ErrNotFound)
	_, err = f.templates.RenameTemplate(f.ctx, otherCoach, tpl.Template.ID, "mine now")
	wantKind(t, err, ErrNotFound)
	_, err = f.templates.AddDay(f.ctx, otherCoach, tpl.Template.ID, DayInput{})
	wantKind(t, err, ErrNotFound)

	// A day of another template is not found under this one.
	second := f.template(t, 1, 1)
	_, err = f.templates.UpdateDay(f.ctx, f.coach, tpl.Template.ID, second.Days[0].Day.ID, DayInput{Title: "x"})
	wantKind(t, err, ErrNotFound)

	renamed, err := f.templates.RenameTemplate(f.ctx, f.coach, tpl.Template.ID, "Renamed")
	if err != nil {
		t.Fatalf("RenameTemplate: %v", err)
	}
	if renamed.Title != "Renamed" {
		t.Errorf("Title = %q", renamed.Title)
	}
	_, err = f.templates.RenameTemplate(f.ctx, f.coach, tpl.Template.ID, "")
	wantKind(t, err, ErrValidation)
}

func TestDuplicateTemplateIsIndependent(t *testing.T) {
	f := newFixture(t)
	src := f.template(t, 2, 2)

	dup, err := f.templates.DuplicateTemplate(f.ctx, f.coach, src.Template.ID, "")
	if err != nil {
		t.Fatalf("DuplicateTemplate: %v", err)
	}
	if dup.Template.Title != "Base (copy)" || dup.Template.ID == src.Template.ID || dup.Template.NumberOfDays != 2 {
		t.Errorf("duplicate = %+v", dup.Template)
	}
	if countExercises(dup.Days) != 4 {
		t.Fatalf("duplicate has %d exercises, want 4", countExercises(dup.Days))
	}

	dupDay := dup.Days[0]
	if _, err := f.templates.UpdateExercise(f.ctx, f.coach, dup.Template.ID, dupDay.Day.ID, dupDay.Exercises[0].ID, ExerciseInput{Name: "Changed"}); err != nil {
		t.Fatalf("UpdateExercise on duplicate: %v", err)
	}
	if err := f.templates.DeleteDay(f.ctx, f.coach, dup.Template.ID, dup.Days[1].Day.ID); err != nil {
		t.Fatalf("DeleteDay on duplicate: %v", err)
	}

	orig, err := f.templates.GetTemplate(f.ctx, f.coach, src.Template.ID)
	if err != nil {
		t.Fatalf("GetTemplate: %v", err)
	}
	if len(orig.Days) != 2 || orig.Days[0].Exercises[0].Name != "D1E1" {
		t.Errorf("source changed through its duplicate: %+v", orig.Days)
	}

	named, err := f.templates.DuplicateTemplate(f.ctx, f.coach, src.Template.ID, "Deload")
	if err != nil {
		t.Fatalf("DuplicateTemplate: %v", err)
	}
	if named.Template.Title != "Deload" {
		t.Errorf("Title = %q", named.Template.Title)
	}
}

func TestImportTemplate(t *testing.T) {
	f := newFixture(t)
	draft := TemplateDraft{
		Title: "Imported",
		Days: []DayDraft{
			{Title: "Push", Exercises: []ExerciseInput{{Name: "Bench", Sets: sets(3, 6, 8)}, {Name: "Dips", Sets: sets(2, 8, 12)}}},
			{Title: "Pull", Exercises: []ExerciseInput{{Name: "Row", Sets: sets(3, 8, 10)}}},
		},
	}
	tree, err := f.templates.ImportTemplate(f.ctx, f.coach, draft)
	if err != nil {
		t.Fatalf("ImportTemplate: %v", err)
	}
	if tree.Template.NumberOfDays != 2 || len(tree.Days) != 2 || countExercises(tree.Days) != 3 {
		t.Fatalf("tree = %+v", tree.Template)
	}
	if tree.Days[0].Exercises[1].Name != "Dips" || tree.Days[0].Exercises[1].Order != 2 {
		t.Errorf("exercise order lost: %+v", tree.Days[0].Exercises[1])
	}

	draft.Days[1].Exercises[0].Sets[0].MaxReps = 1
	_, err = f.templates.ImportTemplate(f.ctx, f.coach, draft)
	wantKind(t, err, ErrValidation)

	listed, _ := f.templates.ListTemplates(f.ctx, f.coach)
	if len(listed) != 1 {
		t.Errorf("ListTemplates = %d, want only the valid import", len(listed))
	}
}

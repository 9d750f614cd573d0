package service

import (
	"alcyxob/fitness-coach/internal/domain"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func intp(v int) *int           { return &v }
func floatp(v float64) *float64 { return &v }

// workout logs two sets of each given exercise.
func workout(dayID primitive.ObjectID, exerciseIDs ...primitive.ObjectID) WorkoutInput {
	in := WorkoutInput{
		DayID:       dayID,
		CompletedAt: time.Date(2024, 1, 2, 18, 30, 0, 0, time.UTC),
		RPE:         intp(8),
		Fatigue:     intp(4),
		Notes:       "felt strong",
	}
	for _, id := range exerciseIDs {
		in.Exercises = append(in.Exercises, ExerciseLogInput{
			ExerciseID: id,
			Sets: []SetLogInput{
				{SetNumber: 1, Reps: 10, Weight: floatp(60), RIR: intp(2)},
				{SetNumber: 2, Reps: 9, Weight: floatp(60)},
			},
		})
	}
	return in
}

func TestRecordWorkout(t *testing.T) {
	f := newFixture(t)
	view := f.mesocycle(t, f.client, f.template(t, 2, 2), date(2024, 1, 1), 4)
	day := view.Days[0]
	week := view.Microcycles[0]

	entry, err := f.logs.RecordWorkout(f.ctx, f.client, week.ID, workout(day.Day.ID, day.Exercises[1].ID, day.Exercises[0].ID))
	if err != nil {
		t.Fatalf("RecordWorkout: %v", err)
	}
	if entry.MicrocycleID != week.ID || entry.MesocycleID != view.Mesocycle.ID || entry.ClientID != f.client.ID || entry.DayID != day.Day.ID {
		t.Errorf("entry references = %+v", entry)
	}
	if len(entry.Exercises) != 2 {
		t.Fatalf("len(Exercises) = %d, want 2", len(entry.Exercises))
	}
	if entry.Exercises[0].ExerciseID != day.Exercises[1].ID || entry.Exercises[0].Order != 1 || entry.Exercises[1].Order != 2 {
		t.Errorf("exercise logs do not keep submission order: %+v", entry.Exercises)
	}
	if s := entry.Exercises[0].Sets[0]; s.Reps != 10 || s.Weight != 60 || s.RIR == nil || *s.RIR != 2 {
		t.Errorf("set log = %+v", s)
	}

	logs, err := f.logs.ListMicrocycleLogs(f.ctx, f.coach, week.ID)
	if err != nil {
		t.Fatalf("ListMicrocycleLogs: %v", err)
	}
	if len(logs) != 1 || logs[0].ID != entry.ID {
		t.Errorf("logs = %+v", logs)
	}

	notes, err := f.notes.ListNotifications(f.ctx, f.coach)
	if err != nil {
		t.Fatalf("ListNotifications: %v", err)
	}
	if len(notes) != 1 || notes[0].Kind != domain.NotificationWorkoutLogged {
		t.Fatalf("coach notifications = %+v", notes)
	}
	if !strings.Contains(notes[0].Message, "week 1") {
		t.Errorf("message = %q", notes[0].Message)
	}
}

func TestRecordWorkoutZeroWeight(t *testing.T) {
	f := newFixture(t)
	view := f.mesocycle(t, f.client, f.template(t, 1, 1), date(2024, 1, 1), 4)
	day := view.Days[0]

	in := workout(day.Day.ID, day.Exercises[0].ID)
	in.Exercises[0].Sets[0].Weight = floatp(0)
	in.RPE, in.Fatigue = nil, nil
	entry, err := f.logs.RecordWorkout(f.ctx, f.client, view.Microcycles[0].ID, in)
	if err != nil {
		t.Fatalf("RecordWorkout: %v", err)
	}
	if entry.Exercises[0].Sets[0].Weight != 0 || entry.RPE != nil {
		t.Errorf("entry = %+v", entry)
	}
}

func TestRecordWorkoutRejectsWithoutWriting(t *testing.T) {
	f := newFixture(t)
	tpl := f.template(t, 2, 2)
	view := f.mesocycle(t, f.client, tpl, date(2024, 1, 1), 4)
	day := view.Days[0]
	otherDay := view.Days[1]
	week := view.Microcycles[0].ID

	tests := []struct {
		name string
		edit func(*WorkoutInput)
	}{
		{"no exercises", func(in *WorkoutInput) { in.Exercises = nil }},
		{"exercise without sets", func(in *WorkoutInput) { in.Exercises[1].Sets = nil }},
		{"set number zero", func(in *WorkoutInput) { in.Exercises[1].Sets[1].SetNumber = 0 }},
		{"repeated set number", func(in *WorkoutInput) { in.Exercises[0].Sets[1].SetNumber = 1 }},
		{"zero reps", func(in *WorkoutInput) { in.Exercises[1].Sets[0].Reps = 0 }},
		{"missing weight", func(in *WorkoutInput) { in.Exercises[1].Sets[1].Weight = nil }},
		{"negative weight", func(in *WorkoutInput) { in.Exercises[0].Sets[0].Weight = floatp(-5) }},
		{"rpe 11", func(in *WorkoutInput) { in.RPE = intp(11) }},
		{"rpe 0", func(in *WorkoutInput) { in.RPE = intp(0) }},
		{"fatigue 11", func(in *WorkoutInput) { in.Fatigue = intp(11) }},
		{"no completion date", func(in *WorkoutInput) { in.CompletedAt = time.Time{} }},
		{"exercise of another day", func(in *WorkoutInput) { in.Exercises[1].ExerciseID = otherDay.Exercises[0].ID }},
		{"exercise logged twice", func(in *WorkoutInput) { in.Exercises[1].ExerciseID = in.Exercises[0].ExerciseID }},
		{"unknown day", func(in *WorkoutInput) { in.DayID = primitive.NewObjectID() }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := workout(day.Day.ID, day.Exercises[0].ID, day.Exercises[1].ID)
			tt.edit(&in)
			_, err := f.logs.RecordWorkout(f.ctx, f.client, week, in)
			wantKind(t, err, ErrValidation)
		})
	}

	logs, _ := f.repos.WorkoutLogs.GetByMesocycleID(f.ctx, view.Mesocycle.ID)
	if len(logs) != 0 {
		t.Errorf("%d logs stored by rejected submissions", len(logs))
	}
	notes, _ := f.repos.Notifications.GetByRecipientID(f.ctx, f.coach.ID)
	if len(notes) != 0 {
		t.Errorf("%d coach notifications stored by rejected submissions", len(notes))
	}
}

func TestRecordWorkoutAfterForkRejectsTemplateDay(t *testing.T) {
	f := newFixture(t)
	tpl := f.template(t, 1, 1)
	view := f.mesocycle(t, f.client, tpl, date(2024, 1, 1), 4)
	week := view.Microcycles[0].ID
	tday := tpl.Days[0]

	// Logging against the template tree is fine before the fork.
	if _, err := f.logs.RecordWorkout(f.ctx, f.client, week, workout(tday.Day.ID, tday.Exercises[0].ID)); err != nil {
		t.Fatalf("RecordWorkout before fork: %v", err)
	}

	if _, err := f.forks.UpdateDay(f.ctx, f.coach, view.Mesocycle.ID, tday.Day.ID, DayInput{Title: "Forked"}); err != nil {
		t.Fatalf("UpdateDay: %v", err)
	}
	_, err := f.logs.RecordWorkout(f.ctx, f.client, week, workout(tday.Day.ID, tday.Exercises[0].ID))
	wantKind(t, err, ErrValidation)

	forked, _ := f.cycles.GetActiveMesocycle(f.ctx, f.client)
	cday := forked.Days[0]
	if _, err := f.logs.RecordWorkout(f.ctx, f.client, week, workout(cday.Day.ID, cday.Exercises[0].ID)); err != nil {
		t.Errorf("RecordWorkout on forked tree: %v", err)
	}
}

func TestRecordWorkoutScopedToClient(t *testing.T) {
	f := newFixture(t)
	view := f.mesocycle(t, f.client, f.template(t, 1, 1), date(2024, 1, 1), 4)
	day := view.Days[0]
	in := workout(day.Day.ID, day.Exercises[0].ID)
	other := f.addClient(t, "second@example.com")

	_, err := f.logs.RecordWorkout(f.ctx, other, view.Microcycles[0].ID, in)
	wantKind(t, err, ErrNotFound)
	_, err = f.logs.RecordWorkout(f.ctx, f.coach, view.Microcycles[0].ID, in)
	wantKind(t, err, ErrUnauthorized)
	_, err = f.logs.RecordWorkout(f.ctx, f.client, primitive.NewObjectID(), in)
	wantKind(t, err, ErrNotFound)
	_, err = f.logs.ListMicrocycleLogs(f.ctx, other, view.Microcycles[0].ID)
	wantKind(t, err, ErrNotFound)
}

func TestUpdateWorkout(t *testing.T) {
	f := newFixture(t)
	view := f.mesocycle(t, f.client, f.template(t, 2, 2), date(2024, 1, 1), 4)
	day := view.Days[0]
	entry, err := f.logs.RecordWorkout(f.ctx, f.client, view.Microcycles[0].ID, workout(day.Day.ID, day.Exercises[0].ID))
	if err != nil {
		t.Fatalf("RecordWorkout: %v", err)
	}

	in := workout(day.Day.ID, day.Exercises[1].ID)
	in.Notes = "swapped"
	in.RPE = intp(9)
	updated, err := f.logs.UpdateWorkout(f.ctx, f.client, entry.ID, in)
	if err != nil {
		t.Fatalf("UpdateWorkout: %v", err)
	}
	if updated.ID != entry.ID || updated.Notes != "swapped" || *updated.RPE != 9 {
		t.Errorf("updated = %+v", updated)
	}
	stored, _ := f.repos.WorkoutLogs.GetByID(f.ctx, entry.ID)
	if len(stored.Exercises) != 1 || stored.Exercises[0].ExerciseID != day.Exercises[1].ID {
		t.Errorf("stored exercises = %+v", stored.Exercises)
	}

	bad := workout(view.Days[1].Day.ID, view.Days[1].Exercises[0].ID)
	_, err = f.logs.UpdateWorkout(f.ctx, f.client, entry.ID, bad)
	wantKind(t, err, ErrValidation)

	in.RPE = intp(12)
	_, err = f.logs.UpdateWorkout(f.ctx, f.client, entry.ID, in)
	wantKind(t, err, ErrValidation)

	other := f.addClient(t, "second@example.com")
	_, err = f.logs.UpdateWorkout(f.ctx, other, entry.ID, workout(day.Day.ID, day.Exercises[0].ID))
	wantKind(t, err, ErrNotFound)

	stored, _ = f.repos.WorkoutLogs.GetByID(f.ctx, entry.ID)
	if stored.Notes != "swapped" {
		t.Errorf("rejected updates changed the log: %+v", stored)
	}
}

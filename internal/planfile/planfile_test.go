package planfile

import (
	"alcyxob/fitness-coach/internal/service"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const tomlPlan = `
title = "Upper / Lower"

[[day]]
title = "Upper"

  [[day.exercise]]
  name = "Bench Press"
  sets = 3
  reps = "6-8"
  rest_seconds = 180

  [[day.exercise]]
  name = "Row"
  comment = "pause at the top"

    [[day.exercise.set]]
    min_reps = 10
    max_reps = 12

    [[day.exercise.set]]
    min_reps = 8
    max_reps = 10
    rest_seconds = 90

[[day]]
title = "Lower"

  [[day.exercise]]
  name = "Squat"
  sets = 5
  reps = "5"
`

const yamlPlan = `
title: Full body
days:
  - title: A
    exercises:
      - name: Deadlift
        sets: 2
        reps: "3-5"
      - name: Plank
`

func TestParseTOML(t *testing.T) {
	plan, err := Parse([]byte(tomlPlan), FormatTOML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	draft, err := plan.Draft()
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if err := service.ValidateTemplateDraft(draft); err != nil {
		t.Fatalf("ValidateTemplateDraft: %v", err)
	}

	if draft.Title != "Upper / Lower" {
		t.Errorf("title = %q", draft.Title)
	}
	if len(draft.Days) != 2 {
		t.Fatalf("days = %d, want 2", len(draft.Days))
	}
	bench := draft.Days[0].Exercises[0]
	if len(bench.Sets) != 3 {
		t.Fatalf("bench sets = %d, want 3", len(bench.Sets))
	}
	for i, s := range bench.Sets {
		if s.SetNumber != i+1 || s.MinReps != 6 || s.MaxReps != 8 {
			t.Errorf("bench set %d = %+v", i, s)
		}
		if s.RestSeconds == nil || *s.RestSeconds != 180 {
			t.Errorf("bench set %d rest = %v, want 180", i, s.RestSeconds)
		}
	}

	row := draft.Days[0].Exercises[1]
	if row.Comment != "pause at the top" {
		t.Errorf("row comment = %q", row.Comment)
	}
	if len(row.Sets) != 2 || row.Sets[1].SetNumber != 2 || row.Sets[1].MinReps != 8 {
		t.Fatalf("row sets = %+v", row.Sets)
	}
	if row.Sets[0].RestSeconds != nil {
		t.Errorf("row set 1 rest = %v, want nil", *row.Sets[0].RestSeconds)
	}
	if row.Sets[1].RestSeconds == nil || *row.Sets[1].RestSeconds != 90 {
		t.Errorf("row set 2 rest = %v, want 90", row.Sets[1].RestSeconds)
	}

	squat := draft.Days[1].Exercises[0]
	if len(squat.Sets) != 5 || squat.Sets[4].MinReps != 5 || squat.Sets[4].MaxReps != 5 {
		t.Errorf("squat sets = %+v", squat.Sets)
	}
}

func TestParseYAML(t *testing.T) {
	plan, err := Parse([]byte(yamlPlan), FormatYAML)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	draft, err := plan.Draft()
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if draft.Title != "Full body" || len(draft.Days) != 1 {
		t.Fatalf("draft = %+v", draft)
	}
	ex := draft.Days[0].Exercises
	if len(ex) != 2 {
		t.Fatalf("exercises = %d, want 2", len(ex))
	}
	if len(ex[0].Sets) != 2 || ex[0].Sets[0].MinReps != 3 || ex[0].Sets[0].MaxReps != 5 {
		t.Errorf("deadlift sets = %+v", ex[0].Sets)
	}
	if len(ex[1].Sets) != 0 {
		t.Errorf("plank sets = %+v, want none", ex[1].Sets)
	}
}

func TestParseRejectsUnknownKeys(t *testing.T) {
	if _, err := Parse([]byte("title = \"x\"\ntitel = \"y\"\n"), FormatTOML); err == nil {
		t.Error("toml: expected error for unknown key")
	}
	if _, err := Parse([]byte("title: x\ndayz: []\n"), FormatYAML); err == nil {
		t.Error("yaml: expected error for unknown key")
	}
}

func TestDraftErrors(t *testing.T) {
	tests := []struct {
		name string
		ex   Exercise
		want string
	}{
		{"both styles", Exercise{Name: "A", Sets: 3, Reps: "5", SetList: []Set{{MinReps: 5}}}, "either"},
		{"bad reps", Exercise{Name: "A", Sets: 3, Reps: "five"}, "invalid reps"},
		{"reversed range", Exercise{Name: "A", Sets: 3, Reps: "12-8"}, "invalid reps range"},
		{"reps without sets", Exercise{Name: "A", Reps: "8"}, "sets must be"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := Plan{Title: "T", Days: []Day{{Exercises: []Exercise{tt.ex}}}}
			_, err := plan.Draft()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Draft() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestDraftFailsValidation(t *testing.T) {
	plan := Plan{Title: "", Days: []Day{{Title: "A"}}}
	draft, err := plan.Draft()
	if err != nil {
		t.Fatalf("Draft: %v", err)
	}
	if err := service.ValidateTemplateDraft(draft); err == nil {
		t.Error("expected validation error for missing title")
	}
}

func TestParseReps(t *testing.T) {
	tests := []struct {
		in       string
		min, max int
		ok       bool
	}{
		{"10", 10, 10, true},
		{"8-12", 8, 12, true},
		{" 6 - 8 ", 6, 8, true},
		{"0", 0, 0, false},
		{"", 0, 0, false},
		{"8-", 0, 0, false},
	}
	for _, tt := range tests {
		min, max, err := ParseReps(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("ParseReps(%q) err = %v, ok want %v", tt.in, err, tt.ok)
			continue
		}
		if tt.ok && (min != tt.min || max != tt.max) {
			t.Errorf("ParseReps(%q) = %d,%d want %d,%d", tt.in, min, max, tt.min, tt.max)
		}
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "plan.yml")
	if err := os.WriteFile(path, []byte(yamlPlan), 0o644); err != nil {
		t.Fatal(err)
	}
	plan, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if plan.Title != "Full body" {
		t.Errorf("title = %q", plan.Title)
	}

	if _, err := Load(filepath.Join(dir, "plan.json")); err == nil {
		t.Error("expected error for unsupported extension")
	}
}

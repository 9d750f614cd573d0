package service

import (
	"alcyxob/fitness-coach/internal/domain"
	"alcyxob/fitness-coach/internal/ordering"
	"alcyxob/fitness-coach/internal/repository"
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SetInput is a prescribed rep range as submitted by a coach.
type SetInput struct {
	SetNumber   int  `json:"setNumber" validate:"min=1"`
	MinReps     int  `json:"minReps" validate:"min=1"`
	MaxReps     int  `json:"maxReps" validate:"gtefield=MinReps"`
	RestSeconds *int `json:"restSeconds,omitempty" validate:"omitempty,min=0"`
}

// ExerciseInput carries the editable fields of an exercise. Sets replace the
// exercise's current sets as a whole.
type ExerciseInput struct {
	Name        string     `json:"name" validate:"required,max=200"`
	Description string     `json:"description" validate:"max=2000"`
	VideoURL    string     `json:"videoUrl" validate:"max=1000"`
	Comment     string     `json:"comment" validate:"max=2000"`
	Sets        []SetInput `json:"sets" validate:"dive"`
}

type DayInput struct {
	Title string `json:"title" validate:"max=200"`
}

// TemplateTree is a template with its days and exercises.
type TemplateTree struct {
	Template domain.Template  `json:"template"`
	Days     []domain.DayTree `json:"days"`
}

func validateExerciseInput(in ExerciseInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	seen := make(map[int]bool, len(in.Sets))
	for _, s := range in.Sets {
		if seen[s.SetNumber] {
			return validationf("setNumber %d is used more than once", s.SetNumber)
		}
		seen[s.SetNumber] = true
	}
	return nil
}

func toSets(in []SetInput) []domain.Set {
	sets := make([]domain.Set, len(in))
	for i, s := range in {
		sets[i] = domain.Set{
			SetNumber:   s.SetNumber,
			MinReps:     s.MinReps,
			MaxReps:     s.MaxReps,
			RestSeconds: s.RestSeconds,
		}
	}
	sort.SliceStable(sets, func(i, j int) bool { return sets[i].SetNumber < sets[j].SetNumber })
	return sets
}

// treeOwner identifies whose day tree is being read or edited: a template or
// a forked mesocycle.
type treeOwner struct {
	templateID  *primitive.ObjectID
	mesocycleID *primitive.ObjectID
}

func templateOwner(id primitive.ObjectID) treeOwner  { return treeOwner{templateID: &id} }
func mesocycleOwner(id primitive.ObjectID) treeOwner { return treeOwner{mesocycleID: &id} }

func (o treeOwner) owns(d *domain.Day) bool {
	if o.templateID != nil {
		return d.OwnedByTemplate(*o.templateID)
	}
	return o.mesocycleID != nil && d.OwnedByMesocycle(*o.mesocycleID)
}

func (o treeOwner) newDay(number int, title string) *domain.Day {
	d := &domain.Day{DayNumber: number, Title: title}
	if o.templateID != nil {
		id := *o.templateID
		d.TemplateID = &id
	} else {
		id := *o.mesocycleID
		d.MesocycleID = &id
	}
	return d
}

// treeEditor implements the structural edits shared by templates and forked
// mesocycles. Callers run it inside a transaction.
type treeEditor struct {
	repos repository.Repositories
}

func (e treeEditor) days(ctx context.Context, o treeOwner) ([]domain.Day, error) {
	if o.templateID != nil {
		return e.repos.Days.GetByTemplateID(ctx, *o.templateID)
	}
	return e.repos.Days.GetByMesocycleID(ctx, *o.mesocycleID)
}

// loadTree returns the owner's days sorted by number with their exercises.
func (e treeEditor) loadTree(ctx context.Context, o treeOwner) ([]domain.DayTree, error) {
	days, err := e.days(ctx, o)
	if err != nil {
		return nil, err
	}
	tree := make([]domain.DayTree, 0, len(days))
	for _, d := range days {
		exercises, err := e.repos.Exercises.GetByDayID(ctx, d.ID)
		if err != nil {
			return nil, err
		}
		tree = append(tree, domain.DayTree{Day: d, Exercises: exercises})
	}
	return tree, nil
}

// cloneTree copies src under a new owner with fresh ids everywhere and
// returns the mapping from every source day and exercise id to its copy.
func (e treeEditor) cloneTree(ctx context.Context, src []domain.DayTree, o treeOwner) (map[primitive.ObjectID]primitive.ObjectID, error) {
	ids := make(map[primitive.ObjectID]primitive.ObjectID)
	for _, dt := range src {
		day := o.newDay(dt.Day.DayNumber, dt.Day.Title)
		dayID, err := e.repos.Days.Create(ctx, day)
		if err != nil {
			return nil, err
		}
		ids[dt.Day.ID] = dayID

		for _, ex := range dt.Exercises {
			cp := ex.Clone()
			cp.ID = primitive.NilObjectID
			cp.DayID = dayID
			for i := range cp.Sets {
				cp.Sets[i].ID = primitive.NilObjectID
			}
			exID, err := e.repos.Exercises.Create(ctx, &cp)
			if err != nil {
				return nil, err
			}
			ids[ex.ID] = exID
		}
	}
	return ids, nil
}

func (e treeEditor) getDay(ctx context.Context, o treeOwner, dayID primitive.ObjectID) (*domain.Day, error) {
	day, err := e.repos.Days.GetByID(ctx, dayID)
	if err != nil {
		return nil, mapRepoErr(err, "day")
	}
	if !o.owns(day) {
		return nil, notFound("day")
	}
	return day, nil
}

func (e treeEditor) getExercise(ctx context.Context, o treeOwner, dayID, exerciseID primitive.ObjectID) (*domain.Exercise, error) {
	if _, err := e.getDay(ctx, o, dayID); err != nil {
		return nil, err
	}
	ex, err := e.repos.Exercises.GetByID(ctx, exerciseID)
	if err != nil {
		return nil, mapRepoErr(err, "exercise")
	}
	if ex.DayID != dayID {
		return nil, notFound("exercise")
	}
	return ex, nil
}

func (e treeEditor) addDay(ctx context.Context, o treeOwner, in DayInput) (*domain.Day, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	days, err := e.days(ctx, o)
	if err != nil {
		return nil, err
	}
	if len(days) >= domain.MaxDaysPerWeek {
		return nil, validationf("a plan holds at most %d days", domain.MaxDaysPerWeek)
	}
	day := o.newDay(ordering.Next(dayItems(days)), in.Title)
	if _, err := e.repos.Days.Create(ctx, day); err != nil {
		return nil, err
	}
	return day, nil
}

func (e treeEditor) updateDay(ctx context.Context, o treeOwner, dayID primitive.ObjectID, in DayInput) (*domain.Day, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	day, err := e.getDay(ctx, o, dayID)
	if err != nil {
		return nil, err
	}
	day.Title = in.Title
	if err := e.repos.Days.Update(ctx, day); err != nil {
		return nil, mapRepoErr(err, "day")
	}
	return day, nil
}

// deleteDay removes a day with its exercises and renumbers the remaining
// days 1..N. Days referenced by a workout log cannot be deleted.
func (e treeEditor) deleteDay(ctx context.Context, o treeOwner, dayID primitive.ObjectID) error {
	if _, err := e.getDay(ctx, o, dayID); err != nil {
		return err
	}
	n, err := e.repos.WorkoutLogs.CountByDayID(ctx, dayID)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflictf("day has %d logged workouts", n)
	}
	if err := e.repos.Exercises.DeleteByDayID(ctx, dayID); err != nil {
		return err
	}
	if err := e.repos.Days.Delete(ctx, dayID); err != nil {
		return mapRepoErr(err, "day")
	}
	days, err := e.days(ctx, o)
	if err != nil {
		return err
	}
	before := dayItems(days)
	return e.writeDayNumbers(ctx, before, ordering.Compact(before))
}

// reorderDays applies the requested positions and then renumbers 1..N, so
// day numbers stay contiguous whatever values the caller picked.
func (e treeEditor) reorderDays(ctx context.Context, o treeOwner, changes []ordering.Item) ([]domain.Day, error) {
	days, err := e.days(ctx, o)
	if err != nil {
		return nil, err
	}
	before := dayItems(days)
	next, err := ordering.Apply(before, changes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := e.writeDayNumbers(ctx, before, ordering.Compact(next)); err != nil {
		return nil, err
	}
	return e.days(ctx, o)
}

func (e treeEditor) writeDayNumbers(ctx context.Context, before, next []ordering.Item) error {
	for _, it := range ordering.Changed(before, next) {
		if err := e.repos.Days.SetDayNumber(ctx, it.ID, it.Order); err != nil {
			return mapRepoErr(err, "day")
		}
	}
	return nil
}

func (e treeEditor) addExercise(ctx context.Context, o treeOwner, dayID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if err := validateExerciseInput(in); err != nil {
		return nil, err
	}
	if _, err := e.getDay(ctx, o, dayID); err != nil {
		return nil, err
	}
	siblings, err := e.repos.Exercises.GetByDayID(ctx, dayID)
	if err != nil {
		return nil, err
	}
	ex := &domain.Exercise{
		DayID:       dayID,
		Name:        in.Name,
		Description: in.Description,
		VideoURL:    in.VideoURL,
		Comment:     in.Comment,
		Order:       ordering.Next(exerciseItems(siblings)),
		Sets:        toSets(in.Sets),
	}
	if _, err := e.repos.Exercises.Create(ctx, ex); err != nil {
		return nil, err
	}
	return ex, nil
}

func (e treeEditor) updateExercise(ctx context.Context, o treeOwner, dayID, exerciseID primitive.ObjectID, in ExerciseInput) (*domain.Exercise, error) {
	if err := validateExerciseInput(in); err != nil {
		return nil, err
	}
	ex, err := e.getExercise(ctx, o, dayID, exerciseID)
	if err != nil {
		return nil, err
	}
	ex.Name = in.Name
	ex.Description = in.Description
	ex.VideoURL = in.VideoURL
	ex.Comment = in.Comment
	ex.Sets = toSets(in.Sets)
	if err := e.repos.Exercises.Update(ctx, ex); err != nil {
		return nil, mapRepoErr(err, "exercise")
	}
	return ex, nil
}

func (e treeEditor) deleteExercise(ctx context.Context, o treeOwner, dayID, exerciseID primitive.ObjectID) error {
	if _, err := e.getExercise(ctx, o, dayID, exerciseID); err != nil {
		return err
	}
	n, err := e.repos.WorkoutLogs.CountByExerciseID(ctx, exerciseID)
	if err != nil {
		return err
	}
	if n > 0 {
		return conflictf("exercise has %d logged workouts", n)
	}
	if err := e.repos.Exercises.Delete(ctx, exerciseID); err != nil {
		return mapRepoErr(err, "exercise")
	}
	siblings, err := e.repos.Exercises.GetByDayID(ctx, dayID)
	if err != nil {
		return err
	}
	before := exerciseItems(siblings)
	return e.writeExerciseOrder(ctx, before, ordering.Compact(before))
}

// reorderExercises keeps caller-specified positions, gaps included.
func (e treeEditor) reorderExercises(ctx context.Context, o treeOwner, dayID primitive.ObjectID, changes []ordering.Item) ([]domain.Exercise, error) {
	if _, err := e.getDay(ctx, o, dayID); err != nil {
		return nil, err
	}
	siblings, err := e.repos.Exercises.GetByDayID(ctx, dayID)
	if err != nil {
		return nil, err
	}
	before := exerciseItems(siblings)
	next, err := ordering.Apply(before, changes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if err := e.writeExerciseOrder(ctx, before, next); err != nil {
		return nil, err
	}
	return e.repos.Exercises.GetByDayID(ctx, dayID)
}

func (e treeEditor) writeExerciseOrder(ctx context.Context, before, next []ordering.Item) error {
	for _, it := range ordering.Changed(before, next) {
		if err := e.repos.Exercises.SetOrder(ctx, it.ID, it.Order); err != nil {
			return mapRepoErr(err, "exercise")
		}
	}
	return nil
}

// deleteTree removes every day and exercise of the owner. Nothing is removed
// while any day of the tree has logged workouts.
func (e treeEditor) deleteTree(ctx context.Context, o treeOwner) error {
	days, err := e.days(ctx, o)
	if err != nil {
		return err
	}
	var logged int64
	for _, d := range days {
		n, err := e.repos.WorkoutLogs.CountByDayID(ctx, d.ID)
		if err != nil {
			return err
		}
		logged += n
	}
	if logged > 0 {
		return conflictf("tree has %d logged workouts", logged)
	}
	for _, d := range days {
		if err := e.repos.Exercises.DeleteByDayID(ctx, d.ID); err != nil {
			return err
		}
		if err := e.repos.Days.Delete(ctx, d.ID); err != nil {
			return err
		}
	}
	return nil
}

func dayItems(days []domain.Day) []ordering.Item {
	items := make([]ordering.Item, len(days))
	for i, d := range days {
		items[i] = ordering.Item{ID: d.ID, Order: d.DayNumber}
	}
	return items
}

func exerciseItems(exercises []domain.Exercise) []ordering.Item {
	items := make([]ordering.Item, len(exercises))
	for i, ex := range exercises {
		items[i] = ordering.Item{ID: ex.ID, Order: ex.Order}
	}
	return items
}

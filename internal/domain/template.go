package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxDaysPerWeek caps the number of training days a plan can hold.
const MaxDaysPerWeek = 7

// Template is a reusable training week owned by a coach.
type Template struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID     primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Title         string             `bson:"title" json:"title"`
	NumberOfDays  int                `bson:"numberOfDays" json:"numberOfDays"`
	AutoGenerated bool               `bson:"autoGenerated" json:"autoGenerated"` // Backing template of a from-scratch plan
	CreatedAt     time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Day is a training day. It belongs either to a template (TemplateID set) or,
// once a mesocycle has been forked, to that mesocycle (MesocycleID set).
type Day struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	TemplateID  *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	MesocycleID *primitive.ObjectID `bson:"mesocycleId,omitempty" json:"mesocycleId,omitempty"`
	DayNumber   int                 `bson:"dayNumber" json:"dayNumber"` // 1..N, unique within the owner
	Title       string              `bson:"title,omitempty" json:"title,omitempty"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// OwnedByTemplate reports whether the day is part of the given template's tree.
func (d *Day) OwnedByTemplate(templateID primitive.ObjectID) bool {
	return d.TemplateID != nil && *d.TemplateID == templateID
}

// OwnedByMesocycle reports whether the day is part of the given mesocycle's own tree.
func (d *Day) OwnedByMesocycle(mesocycleID primitive.ObjectID) bool {
	return d.MesocycleID != nil && *d.MesocycleID == mesocycleID
}

// Exercise is a planned exercise within a day. Sets are embedded so an
// exercise and its rep ranges are always written together.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	DayID       primitive.ObjectID `bson:"dayId" json:"dayId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	VideoURL    string             `bson:"videoUrl,omitempty" json:"videoUrl,omitempty"` // Object key or external URL
	Comment     string             `bson:"comment,omitempty" json:"comment,omitempty"`
	Order       int                `bson:"order" json:"order"` // Unique within the day
	Sets        []Set              `bson:"sets" json:"sets"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Set is a prescribed rep range.
type Set struct {
	ID          primitive.ObjectID `bson:"_id" json:"id"`
	SetNumber   int                `bson:"setNumber" json:"setNumber"`
	MinReps     int                `bson:"minReps" json:"minReps"`
	MaxReps     int                `bson:"maxReps" json:"maxReps"`
	RestSeconds *int               `bson:"restSeconds,omitempty" json:"restSeconds,omitempty"`
}

// DayTree is a day with its exercises sorted by order.
type DayTree struct {
	Day       Day        `json:"day"`
	Exercises []Exercise `json:"exercises"`
}

// Clone returns a deep copy of the exercise.
func (e Exercise) Clone() Exercise {
	out := e
	if e.Sets != nil {
		out.Sets = make([]Set, len(e.Sets))
		for i, s := range e.Sets {
			out.Sets[i] = s.Clone()
		}
	}
	return out
}

// Clone returns a deep copy of the set.
func (s Set) Clone() Set {
	out := s
	if s.RestSeconds != nil {
		rest := *s.RestSeconds
		out.RestSeconds = &rest
	}
	return out
}

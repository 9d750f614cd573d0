package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Mesocycle is a client's training block generated from a template.
// While IsForked is false its days are the template's days; after the first
// structural edit it owns a private copy and TemplateID is cleared.
type Mesocycle struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ClientID      primitive.ObjectID  `bson:"clientId" json:"clientId"`
	TrainerID     primitive.ObjectID  `bson:"trainerId" json:"trainerId"`
	Title         string              `bson:"title" json:"title"`
	TemplateID    *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	StartDate     time.Time           `bson:"startDate" json:"startDate"`
	EndDate       time.Time           `bson:"endDate" json:"endDate"`
	DurationWeeks int                 `bson:"durationWeeks" json:"durationWeeks"`
	IsForked      bool                `bson:"isForked" json:"isForked"`
	IsActive      bool                `bson:"isActive" json:"isActive"`
	IsCompleted   bool                `bson:"isCompleted" json:"isCompleted"`
	CompletedAt   *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Microcycle is one training week of a mesocycle.
type Microcycle struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MesocycleID primitive.ObjectID `bson:"mesocycleId" json:"mesocycleId"`
	WeekNumber  int                `bson:"weekNumber" json:"weekNumber"`
	StartDate   time.Time          `bson:"startDate" json:"startDate"`
	EndDate     time.Time          `bson:"endDate" json:"endDate"`
}

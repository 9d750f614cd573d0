package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NotificationKind identifies what triggered a notification.
type NotificationKind string

const (
	NotificationMesocycleAssigned NotificationKind = "mesocycle_assigned"
	NotificationWorkoutLogged     NotificationKind = "workout_logged"
)

// Notification is a message record for a user. Delivery is handled elsewhere;
// ScheduledFor is either the creation time or a future moment.
type Notification struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	RecipientID  primitive.ObjectID `bson:"recipientId" json:"recipientId"`
	Kind         NotificationKind   `bson:"kind" json:"kind"`
	Message      string             `bson:"message" json:"message"`
	ScheduledFor time.Time          `bson:"scheduledFor" json:"scheduledFor"`
	ReadAt       *time.Time         `bson:"readAt,omitempty" json:"readAt,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
}

package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role type to distinguish between user roles
type Role string

const (
	RoleTrainer Role = "trainer"
	RoleAdmin   Role = "admin"
	RoleClient  Role = "client"
)

// User represents a user in the system (a coach or a client).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	Role         Role               `bson:"role" json:"role"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`

	// --- Coach-specific ---
	ClientIDs []primitive.ObjectID `bson:"clientIds,omitempty" json:"clientIds,omitempty"`

	// --- Client-specific ---
	TrainerID *primitive.ObjectID `bson:"trainerId,omitempty" json:"trainerId,omitempty"`
}

func (u *User) IsClient() bool {
	return u.Role == RoleClient
}

// IsCoach reports whether the user manages clients. Admins are coaches scoped
// to their own roster, exactly like trainers.
func (u *User) IsCoach() bool {
	return IsCoachRole(u.Role)
}

func IsCoachRole(r Role) bool {
	return r == RoleTrainer || r == RoleAdmin
}

// ManagedBy reports whether the client is on the given coach's roster.
func (u *User) ManagedBy(coachID primitive.ObjectID) bool {
	return u.IsClient() && u.TrainerID != nil && *u.TrainerID == coachID
}

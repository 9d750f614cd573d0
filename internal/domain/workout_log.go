package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkoutDayLog is a completed session. Exercise and set logs are embedded so
// a log is persisted in a single write.
type WorkoutDayLog struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	MicrocycleID primitive.ObjectID `bson:"microcycleId" json:"microcycleId"`
	MesocycleID  primitive.ObjectID `bson:"mesocycleId" json:"mesocycleId"` // Denormalized for week listings
	ClientID     primitive.ObjectID `bson:"clientId" json:"clientId"`
	DayID        primitive.ObjectID `bson:"dayId" json:"dayId"`
	CompletedAt  time.Time          `bson:"completedAt" json:"completedAt"`
	RPE          *int               `bson:"rpe,omitempty" json:"rpe,omitempty"`
	Fatigue      *int               `bson:"fatigue,omitempty" json:"fatigue,omitempty"`
	Notes        string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Exercises    []ExerciseLog      `bson:"exercises" json:"exercises"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type ExerciseLog struct {
	ID         primitive.ObjectID `bson:"_id" json:"id"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Order      int                `bson:"order" json:"order"`
	Sets       []SetLog           `bson:"sets" json:"sets"`
}

type SetLog struct {
	SetNumber int     `bson:"setNumber" json:"setNumber"`
	Reps      int     `bson:"reps" json:"reps"`
	Weight    float64 `bson:"weight" json:"weight"`
	RIR       *int    `bson:"rir,omitempty" json:"rir,omitempty"`
}

// Clone returns a deep copy of the log.
func (l WorkoutDayLog) Clone() WorkoutDayLog {
	out := l
	out.RPE = cloneInt(l.RPE)
	out.Fatigue = cloneInt(l.Fatigue)
	if l.Exercises != nil {
		out.Exercises = make([]ExerciseLog, len(l.Exercises))
		for i, ex := range l.Exercises {
			cp := ex
			cp.Sets = make([]SetLog, len(ex.Sets))
			for j, s := range ex.Sets {
				cp.Sets[j] = s
				cp.Sets[j].RIR = cloneInt(s.RIR)
			}
			out.Exercises[i] = cp
		}
	}
	return out
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

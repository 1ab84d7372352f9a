package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the wire format of a session date.
const DateLayout = "2006-01-02"

// Session is one logged or planned workout. Date is stored as UTC midnight.
type Session struct {
	ID         primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID    primitive.ObjectID  `bson:"ownerId" json:"ownerId"`
	Title      string              `bson:"title" json:"title"`
	Category   Category            `bson:"category" json:"category"`
	Date       time.Time           `bson:"date" json:"date"`
	Notes      *string             `bson:"notes" json:"notes"`
	TemplateID *primitive.ObjectID `bson:"templateId" json:"templateId"`
	CreatedAt  time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// SessionExercise places an exercise inside a session.
type SessionExercise struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionID  primitive.ObjectID `bson:"sessionId" json:"sessionId"`
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Order      int                `bson:"order" json:"order"`
	Notes      *string            `bson:"notes" json:"notes"`
	CreatedAt  time.Time          `bson:"createdAt" json:"createdAt"`
}

// ExerciseSessionLogs is the set logs of one exercise within one session,
// as read back for progress aggregation.
type ExerciseSessionLogs struct {
	SessionID         primitive.ObjectID
	SessionExerciseID primitive.ObjectID
	Date              time.Time
	SetLogs           []SetLog // ordered by SetIndex
}

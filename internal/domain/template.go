package domain

import (
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionTemplate is a reusable, ordered list of exercises used to seed sessions.
type SessionTemplate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID   primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Title     string             `bson:"title" json:"title"`
	Category  Category           `bson:"category" json:"category"`
	Notes     *string            `bson:"notes" json:"notes"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// TemplateExercise is one slot of a template with optional pre-fill defaults.
type TemplateExercise struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TemplateID         primitive.ObjectID `bson:"templateId" json:"templateId"`
	ExerciseID         primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Order              int                `bson:"order" json:"order"`
	DefaultSets        *int               `bson:"defaultSets" json:"defaultSets"`
	DefaultReps        *int               `bson:"defaultReps" json:"defaultReps"`
	DefaultWeight      *float64           `bson:"defaultWeight" json:"defaultWeight"`
	DefaultDurationSec *int               `bson:"defaultDurationSec" json:"defaultDurationSec"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
}

// SessionNotes renders the defaults as the notes of a session exercise:
// "{sets}x{reps} @ {weight}" when reps are set, "{duration}s" when only a
// duration is set, nil otherwise. Zero values count as unset.
func (te *TemplateExercise) SessionNotes() *string {
	var notes string
	switch {
	case te.DefaultReps != nil && *te.DefaultReps != 0:
		sets, weight := "", ""
		if te.DefaultSets != nil {
			sets = strconv.Itoa(*te.DefaultSets)
		}
		if te.DefaultWeight != nil {
			weight = strconv.FormatFloat(*te.DefaultWeight, 'f', -1, 64)
		}
		notes = sets + "x" + strconv.Itoa(*te.DefaultReps) + " @ " + weight
	case te.DefaultDurationSec != nil && *te.DefaultDurationSec != 0:
		notes = strconv.Itoa(*te.DefaultDurationSec) + "s"
	default:
		return nil
	}
	return &notes
}

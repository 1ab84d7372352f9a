package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type WeightUnit string

const (
	UnitLb WeightUnit = "lb"
	UnitKg WeightUnit = "kg"
)

// SetLog records one set. (SessionExerciseID, SetIndex) is unique.
type SetLog struct {
	ID                primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	SessionExerciseID primitive.ObjectID `bson:"sessionExerciseId" json:"sessionExerciseId"`
	SetIndex          int                `bson:"setIndex" json:"setIndex"`
	Reps              *int               `bson:"reps" json:"reps"`
	Weight            *float64           `bson:"weight" json:"weight"`
	Unit              WeightUnit         `bson:"unit" json:"unit"`
	DurationSec       *int               `bson:"durationSec" json:"durationSec"`
	DistanceMeters    *int               `bson:"distanceMeters" json:"distanceMeters"`
	RPE               *int               `bson:"rpe" json:"rpe"`
	Completed         bool               `bson:"completed" json:"completed"`
	Notes             *string            `bson:"notes" json:"notes"`
	CreatedAt         time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time          `bson:"updatedAt" json:"updatedAt"`
}

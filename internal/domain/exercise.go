// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise is a library entry. A nil OwnerID marks a global catalog exercise.
type Exercise struct {
	ID           primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	OwnerID      *primitive.ObjectID `bson:"ownerId" json:"ownerId"`
	Name         string              `bson:"name" json:"name"`
	Category     Category            `bson:"category" json:"category"`
	Muscles      []string            `bson:"muscles" json:"muscles"`
	Equipment    []string            `bson:"equipment" json:"equipment"`
	Instructions string              `bson:"instructions" json:"instructions"`
	YoutubeID    *string             `bson:"youtubeId" json:"youtubeId"`
	CreatedAt    time.Time           `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time           `bson:"updatedAt" json:"updatedAt"`
}

// Ownership returns the tagged owner of the exercise.
func (e *Exercise) Ownership() Ownership {
	if e.OwnerID == nil || e.OwnerID.IsZero() {
		return GlobalOwnership()
	}
	return OwnedBy(*e.OwnerID)
}

// Ownership is either Global or Owned(userID). Handlers ask it for capabilities
// instead of inspecting OwnerID directly.
type Ownership struct {
	global bool
	owner  primitive.ObjectID
}

func GlobalOwnership() Ownership {
	return Ownership{global: true}
}

func OwnedBy(userID primitive.ObjectID) Ownership {
	return Ownership{owner: userID}
}

func (o Ownership) IsGlobal() bool {
	return o.global
}

// Owner returns the owning user and false for global exercises.
func (o Ownership) Owner() (primitive.ObjectID, bool) {
	if o.global {
		return primitive.NilObjectID, false
	}
	return o.owner, true
}

// CanView: global exercises are visible to everyone, owned ones only to the owner.
func (o Ownership) CanView(userID primitive.ObjectID) bool {
	return o.global || o.owner == userID
}

// CanEdit: the shared catalog is editable by any authenticated user.
func (o Ownership) CanEdit(userID primitive.ObjectID) bool {
	return o.global || o.owner == userID
}

// CanDelete: global exercises can never be deleted.
func (o Ownership) CanDelete(userID primitive.ObjectID) bool {
	return !o.global && o.owner == userID
}

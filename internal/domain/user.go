package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account holder. Email is always stored lowercased.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Name         string             `bson:"name" json:"name"`
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON

	// ResetToken holds the sha256 hex of the raw reset token, never the raw token itself.
	ResetToken       *string    `bson:"resetToken,omitempty" json:"-"`
	ResetTokenExpiry *time.Time `bson:"resetTokenExpiry,omitempty" json:"-"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a back-office account. Accounts are created by the seed command.
type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email              string             `bson:"email" json:"email"`
	PasswordHash       string             `bson:"password" json:"-"`
	MustChangePassword bool               `bson:"mustChangePassword" json:"mustChangePassword"`
	IsAdmin            bool               `bson:"isAdmin" json:"isAdmin"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

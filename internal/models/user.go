package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`

	Username string `bson:"username" json:"username"`
	Email    string `bson:"email" json:"email"`
	Phone    string `bson:"phone,omitempty" json:"phone,omitempty"`
	Password string `bson:"password" json:"-"` // argon2id hash, never serialized

	// ProfilePicture is the object-storage public id of the uploaded image,
	// not a URL; callers build the delivery URL from it.
	ProfilePicture string `bson:"profile_picture,omitempty" json:"profile_picture,omitempty"`
}

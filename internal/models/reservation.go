package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reservation links a user to a gift and the chosen delivery date. The date
// is stored exactly as entered; the original catalog never validated its
// format, only that it is non-empty.
type Reservation struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`

	UserID string `bson:"user_id" json:"user_id"`
	GiftID string `bson:"gift_id" json:"gift_id"`
	Date   string `bson:"date" json:"date"`
}

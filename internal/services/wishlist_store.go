package services

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/database"
	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/models"
)

// MongoGiftStore implements GiftStore against the gifts collection.
type MongoGiftStore struct{}

func (MongoGiftStore) GetGift(ctx context.Context, giftID string) (*models.Gift, error) {
	oid, err := primitive.ObjectIDFromHex(giftID)
	if err != nil {
		return nil, ErrGiftNotFound
	}

	var gift models.Gift
	err = database.DB.Collection(database.GiftsCollection).
		FindOne(ctx, bson.M{"_id": oid}).Decode(&gift)
	if err == mongo.ErrNoDocuments {
		return nil, ErrGiftNotFound
	}
	if err != nil {
		return nil, err
	}
	return &gift, nil
}

func (MongoGiftStore) ListGifts(ctx context.Context) ([]models.Gift, error) {
	cursor, err := database.DB.Collection(database.GiftsCollection).
		Find(ctx, bson.M{}, options.Find().SetSort(bson.M{"name": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var gifts []models.Gift
	if err := cursor.All(ctx, &gifts); err != nil {
		return nil, err
	}
	return gifts, nil
}

func (MongoGiftStore) GetGiftsByIDs(ctx context.Context, giftIDs []string) (map[string]models.Gift, error) {
	oids := make([]primitive.ObjectID, 0, len(giftIDs))
	for _, id := range giftIDs {
		oid, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			continue // dangling reference, surfaces as gift_missing
		}
		oids = append(oids, oid)
	}

	result := make(map[string]models.Gift, len(oids))
	if len(oids) == 0 {
		return result, nil
	}

	cursor, err := database.DB.Collection(database.GiftsCollection).
		Find(ctx, bson.M{"_id": bson.M{"$in": oids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var gifts []models.Gift
	if err := cursor.All(ctx, &gifts); err != nil {
		return nil, err
	}
	for _, g := range gifts {
		result[g.ID.Hex()] = g
	}
	return result, nil
}

// ClaimGift is the conditional update at the core of the workflow: the
// filter requires available:true, so of two racing claims exactly one
// matches and the other sees no document.
func (s MongoGiftStore) ClaimGift(ctx context.Context, giftID string) error {
	oid, err := primitive.ObjectIDFromHex(giftID)
	if err != nil {
		return ErrGiftNotFound
	}

	res := database.DB.Collection(database.GiftsCollection).FindOneAndUpdate(ctx,
		bson.M{"_id": oid, "available": true},
		bson.M{"$set": bson.M{"available": false}},
	)
	if res.Err() == mongo.ErrNoDocuments {
		// Either the gift does not exist or it was already claimed.
		if _, getErr := s.GetGift(ctx, giftID); getErr != nil {
			return getErr
		}
		return ErrGiftUnavailable
	}
	return res.Err()
}

func (MongoGiftStore) ReleaseGift(ctx context.Context, giftID string) error {
	oid, err := primitive.ObjectIDFromHex(giftID)
	if err != nil {
		return ErrGiftNotFound
	}

	_, err = database.DB.Collection(database.GiftsCollection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"available": true}},
	)
	return err
}

// MongoReservationStore implements ReservationStore against the
// reservations collection.
type MongoReservationStore struct{}

func (MongoReservationStore) CreateReservation(ctx context.Context, r *models.Reservation) error {
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	_, err := database.DB.Collection(database.ReservationsCollection).InsertOne(ctx, r)
	if mongo.IsDuplicateKeyError(err) {
		// The unique index on gift_id caught a double booking.
		return ErrAlreadyReserved
	}
	return err
}

func (MongoReservationStore) ListByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	cursor, err := database.DB.Collection(database.ReservationsCollection).Find(ctx,
		bson.M{"user_id": userID},
		options.Find().SetSort(bson.M{"created_at": -1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var reservations []models.Reservation
	if err := cursor.All(ctx, &reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (MongoReservationStore) DeleteOwned(ctx context.Context, reservationID, userID string) (*models.Reservation, error) {
	oid, err := primitive.ObjectIDFromHex(reservationID)
	if err != nil {
		return nil, ErrReservationNotFound
	}

	var reservation models.Reservation
	err = database.DB.Collection(database.ReservationsCollection).
		FindOneAndDelete(ctx, bson.M{"_id": oid, "user_id": userID}).
		Decode(&reservation)
	if err == mongo.ErrNoDocuments {
		return nil, ErrReservationNotFound
	}
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

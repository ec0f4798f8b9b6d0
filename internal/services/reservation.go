package services

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/models"
)

var (
	ErrGiftNotFound        = errors.New("gift not found")
	ErrGiftUnavailable     = errors.New("gift is not available")
	ErrAlreadyReserved     = errors.New("gift is already reserved")
	ErrDateRequired        = errors.New("delivery date is required")
	ErrReservationNotFound = errors.New("reservation not found")
)

// GiftStore is the gift side of the document store.
type GiftStore interface {
	GetGift(ctx context.Context, giftID string) (*models.Gift, error)
	ListGifts(ctx context.Context) ([]models.Gift, error)
	// GetGiftsByIDs batch-fetches gifts, keyed by hex id. Ids that do not
	// resolve are simply absent from the result.
	GetGiftsByIDs(ctx context.Context, giftIDs []string) (map[string]models.Gift, error)
	// ClaimGift atomically flips available from true to false. Returns
	// ErrGiftUnavailable when the gift exists but the flag was already false
	// (or another claim won the race), ErrGiftNotFound when it does not exist.
	ClaimGift(ctx context.Context, giftID string) error
	// ReleaseGift sets available back to true.
	ReleaseGift(ctx context.Context, giftID string) error
}

// ReservationStore is the reservation side of the document store.
type ReservationStore interface {
	// CreateReservation inserts the record, filling ID and CreatedAt.
	// Returns ErrAlreadyReserved when the gift already has a reservation.
	CreateReservation(ctx context.Context, r *models.Reservation) error
	ListByUser(ctx context.Context, userID string) ([]models.Reservation, error)
	// DeleteOwned removes a reservation only when it belongs to userID and
	// returns the deleted record, or ErrReservationNotFound.
	DeleteOwned(ctx context.Context, reservationID, userID string) (*models.Reservation, error)
}

// Receipt is one row of the receipts view: a reservation joined with the
// current gift details. GiftMissing marks rows whose gift id no longer
// resolves; the rest of the listing is unaffected.
type Receipt struct {
	Reservation models.Reservation `json:"reservation"`
	Gift        *models.Gift       `json:"gift,omitempty"`
	GiftMissing bool               `json:"gift_missing,omitempty"`
}

// ReservationService orchestrates the reserve/cancel workflow on top of the
// stores. The claim step is a conditional update, so two concurrent confirms
// on one gift cannot both succeed: the loser gets ErrGiftUnavailable and
// nothing is written for it.
type ReservationService struct {
	Gifts        GiftStore
	Reservations ReservationStore
	Events       AvailabilityPublisher // optional
}

func NewReservationService(gifts GiftStore, reservations ReservationStore, events AvailabilityPublisher) *ReservationService {
	return &ReservationService{Gifts: gifts, Reservations: reservations, Events: events}
}

// ListGifts returns the full catalog.
func (s *ReservationService) ListGifts(ctx context.Context) ([]models.Gift, error) {
	return s.Gifts.ListGifts(ctx)
}

// Select returns the gift backing the date prompt. No state is touched;
// an unavailable gift yields ErrGiftUnavailable so the prompt never opens.
func (s *ReservationService) Select(ctx context.Context, giftID string) (*models.Gift, error) {
	gift, err := s.Gifts.GetGift(ctx, giftID)
	if err != nil {
		return nil, err
	}
	if !gift.Available {
		return nil, ErrGiftUnavailable
	}
	return gift, nil
}

// Confirm reserves a gift for the user. The availability claim happens first
// and is atomic; if the reservation insert then fails, the claim is rolled
// back so the gift is not stranded as unavailable with no reservation.
func (s *ReservationService) Confirm(ctx context.Context, userID, giftID, date string) (*models.Reservation, *models.Gift, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, nil, ErrDateRequired
	}

	if err := s.Gifts.ClaimGift(ctx, giftID); err != nil {
		return nil, nil, err
	}

	reservation := &models.Reservation{
		UserID:    userID,
		GiftID:    giftID,
		Date:      date,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.Reservations.CreateReservation(ctx, reservation); err != nil {
		// Compensate: hand the claim back so availability matches reality.
		if releaseErr := s.Gifts.ReleaseGift(ctx, giftID); releaseErr != nil {
			log.Printf("failed to release gift %s after reservation insert error: %v", giftID, releaseErr)
		}
		return nil, nil, err
	}

	gift, err := s.Gifts.GetGift(ctx, giftID)
	if err != nil {
		// Reservation stands; the redirect link is just missing.
		log.Printf("reserved gift %s but could not reload it: %v", giftID, err)
		gift = nil
	}

	s.publish(ctx, AvailabilityEvent{Type: EventGiftReserved, GiftID: giftID})
	return reservation, gift, nil
}

// Receipts lists the user's reservations with gift details joined via one
// batched lookup instead of a per-row fetch.
func (s *ReservationService) Receipts(ctx context.Context, userID string) ([]Receipt, error) {
	reservations, err := s.Reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(reservations) == 0 {
		return []Receipt{}, nil
	}

	ids := make([]string, 0, len(reservations))
	for _, r := range reservations {
		ids = append(ids, r.GiftID)
	}
	gifts, err := s.Gifts.GetGiftsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	receipts := make([]Receipt, 0, len(reservations))
	for _, r := range reservations {
		row := Receipt{Reservation: r}
		if g, ok := gifts[r.GiftID]; ok {
			gift := g
			row.Gift = &gift
		} else {
			row.GiftMissing = true
		}
		receipts = append(receipts, row)
	}
	return receipts, nil
}

// Cancel reverses a reservation: the record is deleted first (owner-scoped),
// then availability is restored. Deleting first means a failure between the
// two steps can only leave an unavailable gift with no reservation, never a
// reservation for an available gift.
func (s *ReservationService) Cancel(ctx context.Context, userID, reservationID string) error {
	reservation, err := s.Reservations.DeleteOwned(ctx, reservationID, userID)
	if err != nil {
		return err
	}

	if err := s.Gifts.ReleaseGift(ctx, reservation.GiftID); err != nil {
		log.Printf("reservation %s deleted but gift %s not released: %v", reservationID, reservation.GiftID, err)
		return err
	}

	s.publish(ctx, AvailabilityEvent{Type: EventGiftReleased, GiftID: reservation.GiftID})
	return nil
}

// SelectedGiftIDs returns the set of gift ids the user currently has
// reserved, for marking catalog entries as selected-by-viewer.
func (s *ReservationService) SelectedGiftIDs(ctx context.Context, userID string) (map[string]bool, error) {
	reservations, err := s.Reservations.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	selected := make(map[string]bool, len(reservations))
	for _, r := range reservations {
		selected[r.GiftID] = true
	}
	return selected, nil
}

func (s *ReservationService) publish(ctx context.Context, evt AvailabilityEvent) {
	if s.Events == nil {
		return
	}
	if err := s.Events.PublishAvailability(ctx, evt); err != nil {
		log.Printf("failed to publish availability event for gift %s: %v", evt.GiftID, err)
	}
}

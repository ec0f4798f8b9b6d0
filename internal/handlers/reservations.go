package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/services"
)

var reservationService *services.ReservationService

// InitReservationService wires the workflow service used by the catalog and
// reservation handlers.
func InitReservationService(svc *services.ReservationService) {
	reservationService = svc
}

type CreateReservationRequest struct {
	GiftID string `json:"gift_id"`
	Date   string `json:"date"`
}

type ReservationResponse struct {
	Success     bool        `json:"success"`
	Message     string      `json:"message,omitempty"`
	Reservation interface{} `json:"reservation,omitempty"`
	// Link is the gift's external retailer URL; the client navigates there
	// after a successful reservation.
	Link string `json:"link,omitempty"`
}

type ReceiptsResponse struct {
	Success  bool               `json:"success"`
	Message  string             `json:"message,omitempty"`
	Receipts []services.Receipt `json:"receipts"`
}

// SelectGift backs the date-selection prompt: returns the gift when it can
// still be reserved, without touching any state. An unavailable gift gets
// 409 so the prompt never opens.
func SelectGift(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := requireAuth(r); !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	giftID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	gift, err := reservationService.Select(ctx, giftID)
	switch {
	case errors.Is(err, services.ErrGiftNotFound):
		writeError(w, http.StatusNotFound, "Gift not found")
		return
	case errors.Is(err, services.ErrGiftUnavailable):
		writeError(w, http.StatusConflict, "This gift has already been reserved")
		return
	case err != nil:
		log.Printf("ERROR: Failed to load gift %s: %v", giftID, err)
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	payload := map[string]interface{}{
		"success": true,
		"gift":    gift,
	}
	if cloudinaryService != nil {
		payload["image_url"] = cloudinaryService.ImageURL(gift.Image)
	}
	writeJSON(w, http.StatusOK, payload)
}

// CreateReservation confirms a pending selection: claims the gift and
// records the reservation. A date is required before anything is written;
// a lost availability race comes back as 409.
func CreateReservation(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req CreateReservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.GiftID == "" {
		writeError(w, http.StatusBadRequest, "gift_id is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	reservation, gift, err := reservationService.Confirm(ctx, userID, req.GiftID, req.Date)
	switch {
	case errors.Is(err, services.ErrDateRequired):
		writeError(w, http.StatusBadRequest, "Please choose a delivery date")
		return
	case errors.Is(err, services.ErrGiftNotFound):
		writeError(w, http.StatusNotFound, "Gift not found")
		return
	case errors.Is(err, services.ErrGiftUnavailable), errors.Is(err, services.ErrAlreadyReserved):
		writeError(w, http.StatusConflict, "This gift has already been reserved")
		return
	case err != nil:
		log.Printf("ERROR: Failed to reserve gift %s for %s: %v", req.GiftID, userID, err)
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return
	}

	resp := ReservationResponse{
		Success:     true,
		Message:     "Gift reserved",
		Reservation: reservation,
	}
	if gift != nil {
		resp.Link = gift.Link
	}
	writeJSON(w, http.StatusCreated, resp)
}

// GetReservations lists the viewer's reservations with gift details joined.
func GetReservations(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	receipts, err := reservationService.Receipts(ctx, userID)
	if err != nil {
		log.Printf("ERROR: Failed to load receipts for %s: %v", userID, err)
		writeJSON(w, http.StatusInternalServerError, ReceiptsResponse{
			Success:  false,
			Message:  "Failed to load your gifts",
			Receipts: []services.Receipt{},
		})
		return
	}

	writeJSON(w, http.StatusOK, ReceiptsResponse{Success: true, Receipts: receipts})
}

// CancelReservation reverses a reservation the viewer owns and restores the
// gift's availability.
func CancelReservation(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	reservationID := chi.URLParam(r, "id")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	err := reservationService.Cancel(ctx, userID, reservationID)
	switch {
	case errors.Is(err, services.ErrReservationNotFound):
		writeError(w, http.StatusNotFound, "Reservation not found")
		return
	case err != nil:
		log.Printf("ERROR: Failed to cancel reservation %s for %s: %v", reservationID, userID, err)
		writeError(w, http.StatusInternalServerError, "Could not cancel this gift. Try again.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Reservation cancelled",
	})
}

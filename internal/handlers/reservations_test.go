package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/models"
	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/services"
)

// stubGiftStore returns canned results and counts claim attempts.
type stubGiftStore struct {
	gift       *models.Gift
	claimErr   error
	claimCalls int
}

func (s *stubGiftStore) GetGift(ctx context.Context, giftID string) (*models.Gift, error) {
	if s.gift == nil {
		return nil, services.ErrGiftNotFound
	}
	return s.gift, nil
}

func (s *stubGiftStore) ListGifts(ctx context.Context) ([]models.Gift, error) {
	if s.gift == nil {
		return nil, nil
	}
	return []models.Gift{*s.gift}, nil
}

func (s *stubGiftStore) GetGiftsByIDs(ctx context.Context, giftIDs []string) (map[string]models.Gift, error) {
	return map[string]models.Gift{}, nil
}

func (s *stubGiftStore) ClaimGift(ctx context.Context, giftID string) error {
	s.claimCalls++
	return s.claimErr
}

func (s *stubGiftStore) ReleaseGift(ctx context.Context, giftID string) error { return nil }

type stubReservationStore struct {
	deleteErr error
	listed    []models.Reservation
}

func (s *stubReservationStore) CreateReservation(ctx context.Context, r *models.Reservation) error {
	return nil
}

func (s *stubReservationStore) ListByUser(ctx context.Context, userID string) ([]models.Reservation, error) {
	return s.listed, nil
}

func (s *stubReservationStore) DeleteOwned(ctx context.Context, reservationID, userID string) (*models.Reservation, error) {
	if s.deleteErr != nil {
		return nil, s.deleteErr
	}
	return &models.Reservation{GiftID: primitive.NewObjectID().Hex()}, nil
}

func authAsUser(t *testing.T, userID string) {
	t.Helper()
	orig := validateSession
	validateSession = func(ctx context.Context, token string) (string, bool, error) {
		if token == "" {
			return "", false, nil
		}
		return userID, true, nil
	}
	t.Cleanup(func() { validateSession = orig })
}

func newTestRouter(gifts services.GiftStore, reservations services.ReservationStore) *chi.Mux {
	InitReservationService(services.NewReservationService(gifts, reservations, nil))
	r := chi.NewRouter()
	r.Get("/api/gifts", GetCatalog)
	r.Get("/api/gifts/{id}", SelectGift)
	r.Post("/api/reservations", CreateReservation)
	r.Delete("/api/reservations/{id}", CancelReservation)
	return r
}

func TestCreateReservationRequiresAuth(t *testing.T) {
	authAsUser(t, "user-1")
	router := newTestRouter(&stubGiftStore{}, &stubReservationStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateReservationRequiresDate(t *testing.T) {
	authAsUser(t, "user-1")
	gifts := &stubGiftStore{}
	router := newTestRouter(gifts, &stubReservationStore{})

	body := `{"gift_id":"` + primitive.NewObjectID().Hex() + `","date":"  "}`
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "delivery date")
	// The rejection happened before any remote write.
	assert.Zero(t, gifts.claimCalls)
}

func TestCreateReservationConflict(t *testing.T) {
	authAsUser(t, "user-1")
	gifts := &stubGiftStore{claimErr: services.ErrGiftUnavailable}
	router := newTestRouter(gifts, &stubReservationStore{})

	body := `{"gift_id":"` + primitive.NewObjectID().Hex() + `","date":"2026-06-15"}`
	req := httptest.NewRequest(http.MethodPost, "/api/reservations", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "already been reserved")
}

func TestSelectGiftUnavailable(t *testing.T) {
	authAsUser(t, "user-1")
	gift := &models.Gift{ID: primitive.NewObjectID(), Name: "Tent", Available: false}
	router := newTestRouter(&stubGiftStore{gift: gift}, &stubReservationStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/gifts/"+gift.ID.Hex(), nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSelectGiftReturnsLink(t *testing.T) {
	authAsUser(t, "user-1")
	gift := &models.Gift{
		ID:        primitive.NewObjectID(),
		Name:      "Laptop",
		Available: true,
		Link:      "https://shop.example.com/laptop",
	}
	router := newTestRouter(&stubGiftStore{gift: gift}, &stubReservationStore{})

	req := httptest.NewRequest(http.MethodGet, "/api/gifts/"+gift.ID.Hex(), nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), gift.Link)
}

func TestGetCatalogMarksViewerSelection(t *testing.T) {
	authAsUser(t, "user-1")
	gift := &models.Gift{
		ID:        primitive.NewObjectID(),
		Name:      "Tent",
		Available: false,
		Type:      models.CategoryCamping,
	}
	reservations := &stubReservationStore{
		listed: []models.Reservation{{UserID: "user-1", GiftID: gift.ID.Hex()}},
	}
	router := newTestRouter(&stubGiftStore{gift: gift}, reservations)

	req := httptest.NewRequest(http.MethodGet, "/api/gifts", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"label":"Camping"`)
	assert.Contains(t, rec.Body.String(), `"selected_by_viewer":true`)
}

func TestCancelReservationNotFound(t *testing.T) {
	authAsUser(t, "user-1")
	reservations := &stubReservationStore{deleteErr: services.ErrReservationNotFound}
	router := newTestRouter(&stubGiftStore{}, reservations)

	req := httptest.NewRequest(http.MethodDelete, "/api/reservations/"+primitive.NewObjectID().Hex(), nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/models"
)

// profileStubs replaces the profile cache and the user lookup behind GetMe,
// counting how often each layer is touched.
type profileStubs struct {
	cached      *models.User
	lookupUser  *models.User
	lookupErr   error
	lookupCalls int
	cacheCalls  int
	dropped     []string
}

func stubProfileLayer(t *testing.T) *profileStubs {
	t.Helper()
	s := &profileStubs{}

	origCached := cachedProfile
	origCache := cacheProfile
	origDrop := dropCachedProfile
	origFind := findUserByID

	cachedProfile = func(ctx context.Context, userID string) (*models.User, bool) {
		if s.cached == nil {
			return nil, false
		}
		return s.cached, true
	}
	cacheProfile = func(ctx context.Context, user *models.User) error {
		s.cacheCalls++
		return nil
	}
	dropCachedProfile = func(ctx context.Context, userID string) error {
		s.dropped = append(s.dropped, userID)
		return nil
	}
	findUserByID = func(ctx context.Context, userID string) (*models.User, error) {
		s.lookupCalls++
		if s.lookupErr != nil {
			return nil, s.lookupErr
		}
		return s.lookupUser, nil
	}

	t.Cleanup(func() {
		cachedProfile = origCached
		cacheProfile = origCache
		dropCachedProfile = origDrop
		findUserByID = origFind
	})
	return s
}

func getMe(t *testing.T) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()
	GetMe(rec, req)
	return rec
}

func TestGetMeServesCachedProfileWithoutStoreRead(t *testing.T) {
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "maya",
		Email:    "maya@example.com",
	}
	authAsUser(t, user.ID.Hex())
	stubs := stubProfileLayer(t)
	stubs.cached = user

	rec := getMe(t)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maya")
	// The cached profile answered the request on its own.
	assert.Zero(t, stubs.lookupCalls)
}

func TestGetMeFetchesAndRecachesOnMiss(t *testing.T) {
	user := &models.User{
		ID:       primitive.NewObjectID(),
		Username: "maya",
		Email:    "maya@example.com",
	}
	authAsUser(t, user.ID.Hex())
	stubs := stubProfileLayer(t)
	stubs.lookupUser = user

	rec := getMe(t)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maya")
	assert.Equal(t, 1, stubs.lookupCalls)
	assert.Equal(t, 1, stubs.cacheCalls)
}

func TestGetMeDropsCacheWhenLookupFails(t *testing.T) {
	userID := primitive.NewObjectID().Hex()
	authAsUser(t, userID)
	stubs := stubProfileLayer(t)
	stubs.lookupErr = mongo.ErrNoDocuments

	rec := getMe(t)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	// The stale cached entry is cleared instead of surviving the failure.
	assert.Equal(t, []string{userID}, stubs.dropped)
	assert.Zero(t, stubs.cacheCalls)
}

package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/database"
	"github.com/Romeo-the-rebel/Graduation-wishlist/internal/models"
)

const (
	// SessionDuration is 7 days
	SessionDuration = 7 * 24 * time.Hour
	// SessionKeyPrefix is the Redis key prefix for sessions
	SessionKeyPrefix = "session:"
	// UserSessionKeyPrefix is the Redis key prefix for user->session mapping
	UserSessionKeyPrefix = "user_session:"
	// ProfileCacheKeyPrefix is the Redis key prefix for cached user profiles
	ProfileCacheKeyPrefix = "profile:"
)

// CreateSession creates a new session for a user and stores it in Redis.
// If the user already has a session, the old one is invalidated first so the
// 7-day timer resets from the current login. Returns the session token.
func CreateSession(ctx context.Context, userID string) (string, error) {
	InvalidateUserSessions(ctx, userID)

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	sessionToken := base64.URLEncoding.EncodeToString(tokenBytes)

	sessionKey := SessionKeyPrefix + sessionToken
	userSessionKey := UserSessionKeyPrefix + userID

	// Store session with 7-day expiration
	if err := database.RedisClient.Set(ctx, sessionKey, userID, SessionDuration).Err(); err != nil {
		return "", err
	}

	// Store user->session mapping
	if err := database.RedisClient.Set(ctx, userSessionKey, sessionToken, SessionDuration).Err(); err != nil {
		return "", err
	}

	return sessionToken, nil
}

// ValidateSession checks if a session token is valid and returns the user ID.
func ValidateSession(ctx context.Context, sessionToken string) (string, bool, error) {
	if sessionToken == "" {
		return "", false, nil
	}

	sessionKey := SessionKeyPrefix + sessionToken
	userID, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err != nil {
		return "", false, nil
	}

	return userID, true, nil
}

// InvalidateSession removes a session from Redis along with the cached profile.
func InvalidateSession(ctx context.Context, sessionToken string) error {
	if sessionToken == "" {
		return nil
	}

	sessionKey := SessionKeyPrefix + sessionToken

	// Get user ID before deleting so the reverse mapping and profile go too
	userID, err := database.RedisClient.Get(ctx, sessionKey).Result()
	if err == nil && userID != "" {
		database.RedisClient.Del(ctx, UserSessionKeyPrefix+userID)
		database.RedisClient.Del(ctx, ProfileCacheKeyPrefix+userID)
	}

	return database.RedisClient.Del(ctx, sessionKey).Err()
}

// InvalidateUserSessions invalidates the active session for a user.
func InvalidateUserSessions(ctx context.Context, userID string) error {
	userSessionKey := UserSessionKeyPrefix + userID

	sessionToken, err := database.RedisClient.Get(ctx, userSessionKey).Result()
	if err == nil && sessionToken != "" {
		database.RedisClient.Del(ctx, SessionKeyPrefix+sessionToken)
	}

	return database.RedisClient.Del(ctx, userSessionKey).Err()
}

// CacheProfile stores a user profile in Redis for the lifetime of the session.
// The cache is a rehydration hint only: the session token itself is always
// validated, the profile body just saves a Mongo round trip.
func CacheProfile(ctx context.Context, user *models.User) error {
	data, err := json.Marshal(user)
	if err != nil {
		return err
	}
	key := ProfileCacheKeyPrefix + user.ID.Hex()
	return database.RedisClient.Set(ctx, key, data, SessionDuration).Err()
}

// CachedProfile returns the cached profile for a user, or (nil, false) on a
// cache miss. A corrupt payload is treated as a miss and dropped.
func CachedProfile(ctx context.Context, userID string) (*models.User, bool) {
	key := ProfileCacheKeyPrefix + userID
	data, err := database.RedisClient.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		database.RedisClient.Del(ctx, key)
		return nil, false
	}
	return &user, true
}

// DropCachedProfile removes the cached profile, e.g. after a failed
// authoritative lookup.
func DropCachedProfile(ctx context.Context, userID string) error {
	if userID == "" {
		return fmt.Errorf("user id is empty")
	}
	return database.RedisClient.Del(ctx, ProfileCacheKeyPrefix+userID).Err()
}

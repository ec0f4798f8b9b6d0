package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "mongodb://localhost:27017/wishlist", cfg.MongoURI)
	assert.Equal(t, "redis://localhost:6379/0", cfg.RedisURI)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MONGODB_URI", "mongodb://db.example.com:27017/gifts")
	t.Setenv("REDIS_URI", "redis://cache.example.com:6379/1")
	t.Setenv("PORT", "9000")
	t.Setenv("ENV", "Production")

	cfg := Load()

	assert.Equal(t, "mongodb://db.example.com:27017/gifts", cfg.MongoURI)
	assert.Equal(t, "redis://cache.example.com:6379/1", cfg.RedisURI)
	assert.Equal(t, "9000", cfg.Port)
	assert.True(t, cfg.IsProduction())
}

func TestAllowedOriginsParsing(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://wishlist.example.com, https://www.wishlist.example.com ,")

	cfg := Load()

	assert.Equal(t, []string{"https://wishlist.example.com", "https://www.wishlist.example.com"}, cfg.AllowedOrigins)
}

func TestAllowedOriginsFallsBackToFrontendURL(t *testing.T) {
	t.Setenv("FRONTEND_URL", "https://frontend.example.com")

	cfg := Load()

	assert.Equal(t, []string{"https://frontend.example.com"}, cfg.AllowedOrigins)
}

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("RATE_LIMIT_MAX", "")
	t.Setenv("ADMIN_TELEGRAM_IDS", "42, 7,nope")

	cfg := Load()
	assert.Equal(t, 3, cfg.MaxActiveListings)
	assert.Equal(t, 24*time.Hour, cfg.PostingCooldown)
	assert.Equal(t, 5, cfg.MaxImages)
	assert.Equal(t, 5<<20, cfg.MaxFileSize)
	assert.Equal(t, 100, cfg.RateLimitMax)
	assert.Equal(t, []int64{42, 7}, cfg.AdminTelegramIDs)
	assert.NotEmpty(t, cfg.JWTSecret)
	assert.True(t, cfg.IsDevelopment())
}

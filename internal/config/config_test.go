package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("RATING_MIN", "")
	t.Setenv("RATING_MAX", "")
	t.Setenv("TICKET_CLOSE_GRACE_MS", "")
	t.Setenv("SETTINGS_PATH", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 1, cfg.Tickets.RatingMin)
	assert.Equal(t, 10, cfg.Tickets.RatingMax)
	assert.Equal(t, 3*time.Second, cfg.Tickets.CloseGrace())
	assert.Equal(t, "./config.json", cfg.Settings.Path)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RATING_MIN", "0")
	t.Setenv("RATING_MAX", "5")
	t.Setenv("TICKET_CLOSE_GRACE_MS", "250")
	t.Setenv("DELETION_POLL_INTERVAL_MS", "50")
	t.Setenv("APP_PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Tickets.RatingMin)
	assert.Equal(t, 5, cfg.Tickets.RatingMax)
	assert.Equal(t, 250*time.Millisecond, cfg.Tickets.CloseGrace())
	assert.Equal(t, 50*time.Millisecond, cfg.Tickets.DeletionPollInterval())
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
}

func TestLoad_RejectsInvertedRatingRange(t *testing.T) {
	t.Setenv("RATING_MIN", "8")
	t.Setenv("RATING_MAX", "3")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "abc")

	_, err := Load()
	assert.ErrorContains(t, err, "REDIS_DB")
}

func TestDurationFallbacks(t *testing.T) {
	assert.Equal(t, time.Second, TicketConfig{}.DeletionPollInterval())
	assert.Equal(t, 30*time.Second, TicketConfig{}.ReservationTTL())
	assert.Equal(t, 15*time.Second, DiscordConfig{}.InteractionTimeout())
	assert.Equal(t, time.Duration(0), AppConfig{}.RequestTimeout())
}

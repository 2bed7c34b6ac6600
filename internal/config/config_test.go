package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, 3, cfg.Voice.CallQuota)
	assert.Equal(t, 180, cfg.Voice.MaxCallSeconds)
	assert.Equal(t, 2*time.Second, cfg.Voice.TranscriptDelay)
	assert.Equal(t, time.Second, cfg.Voice.TickInterval)
	assert.Equal(t, "https://api.vapi.ai", cfg.Vapi.BaseURL)
	assert.Equal(t, "sb-access-token", cfg.Auth.CookieName)
	assert.False(t, cfg.IsProduction())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("VOICE_CALL_QUOTA", "0")
	t.Setenv("VOICE_MAX_CALL_SECONDS", "60")
	t.Setenv("VOICE_TRANSCRIPT_DELAY", "500ms")
	t.Setenv("GO_ENV", "production")

	cfg := Load()

	assert.Equal(t, 0, cfg.Voice.CallQuota)
	assert.Equal(t, 60, cfg.Voice.MaxCallSeconds)
	assert.Equal(t, 500*time.Millisecond, cfg.Voice.TranscriptDelay)
	assert.True(t, cfg.IsProduction())
}

func TestInvalidNumbersFallBack(t *testing.T) {
	t.Setenv("VOICE_CALL_QUOTA", "three")
	t.Setenv("VOICE_TICK_INTERVAL", "soon")

	cfg := Load()

	assert.Equal(t, 3, cfg.Voice.CallQuota)
	assert.Equal(t, time.Second, cfg.Voice.TickInterval)
}

func TestNonPositiveCallCeilingFallsBack(t *testing.T) {
	for _, value := range []string{"0", "-30"} {
		t.Setenv("VOICE_MAX_CALL_SECONDS", value)

		cfg := Load()

		assert.Equal(t, 180, cfg.Voice.MaxCallSeconds, value)
	}
}

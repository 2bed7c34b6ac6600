package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAuthUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user AuthUser
		want string
	}{
		{name: "metadata name wins", user: AuthUser{Name: "Dana", Email: "d@example.com"}, want: "Dana"},
		{name: "email local part", user: AuthUser{Email: "sam.lee@example.com"}, want: "sam.lee"},
		{name: "blank metadata name", user: AuthUser{Name: "  ", Email: "x@y.z"}, want: "x"},
		{name: "nothing known", user: AuthUser{}, want: "User"},
		{name: "email without local part", user: AuthUser{Email: "@example.com"}, want: "User"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.user.DisplayName())
		})
	}
}

func TestConversationFinishRoundsDuration(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c := &VoiceConversation{StartedAt: start}

	c.Finish(start.Add(10*time.Second), 9.6)

	assert.True(t, c.IsEnded())
	assert.Equal(t, 10, *c.DurationSeconds)
	assert.Equal(t, start.Add(10*time.Second), *c.EndedAt)
}

func TestConversationFinishNeverPrecedesStart(t *testing.T) {
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c := &VoiceConversation{StartedAt: start}

	c.Finish(start.Add(-3*time.Second), -4)

	assert.False(t, c.EndedAt.Before(c.StartedAt))
	assert.Equal(t, 0, *c.DurationSeconds)
}

func TestNewQuotaStatus(t *testing.T) {
	fresh := NewQuotaStatus(3, 0)
	assert.Equal(t, 3, fresh.Remaining)
	assert.True(t, fresh.CanCall)

	last := NewQuotaStatus(3, 2)
	assert.Equal(t, 1, last.Remaining)
	assert.True(t, last.CanCall)

	spent := NewQuotaStatus(3, 5)
	assert.Equal(t, 0, spent.Remaining)
	assert.False(t, spent.CanCall)

	unlimited := NewQuotaStatus(0, 42)
	assert.True(t, unlimited.Unlimited)
	assert.True(t, unlimited.CanCall)
}

package entity

import (
	"math"
	"time"

	"github.com/google/uuid"
)

type VoiceConversation struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	UserAuthId      uuid.UUID
	AssistantId     uuid.UUID
	Mode            string
	VapiCallId      *string
	Transcript      []string
	RecordingURL    *string
	StartedAt       time.Time
	EndedAt         *time.Time
	DurationSeconds *int
}

func (c *VoiceConversation) IsEnded() bool {
	return c.EndedAt != nil
}

// Finish stamps the end of the conversation. endedAt never precedes
// StartedAt, and the duration is rounded to whole seconds.
func (c *VoiceConversation) Finish(endedAt time.Time, duration float64) {
	if endedAt.Before(c.StartedAt) {
		endedAt = c.StartedAt
	}
	if duration < 0 || math.IsNaN(duration) {
		duration = 0
	}
	seconds := int(math.Round(duration))
	c.EndedAt = &endedAt
	c.DurationSeconds = &seconds
}

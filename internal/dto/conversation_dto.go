package dto

import (
	"time"

	"github.com/google/uuid"
)

type ListConversationsQuery struct {
	Page  int    `query:"page"`
	Limit int    `query:"limit"`
	Mode  string `query:"mode"`
}

type ConversationResponse struct {
	Id              uuid.UUID  `json:"id"`
	Mode            string     `json:"mode"`
	DurationSeconds *int       `json:"duration_seconds"`
	Transcript      []string   `json:"transcript"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at"`
	VapiCallId      *string    `json:"vapi_call_id,omitempty"`
	RecordingUrl    *string    `json:"recording_url,omitempty"`
	UserAuthId      uuid.UUID  `json:"user_auth_id"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

type ConversationListResponse struct {
	Conversations []ConversationResponse `json:"conversations"`
	Pagination    Pagination             `json:"pagination"`
	ModeCounts    map[string]int64       `json:"modeCounts"`
}

type ConversationEnvelope struct {
	Conversation ConversationResponse `json:"conversation"`
}

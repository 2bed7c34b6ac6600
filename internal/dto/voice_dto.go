package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateAssistantRequest struct {
	Mode     string `json:"mode" validate:"required"`
	Tone     string `json:"tone" validate:"omitempty,oneof=professional casual friendly"`
	Language string `json:"language" validate:"omitempty,oneof=english arabic"`
}

type ProvisionResponse struct {
	AssistantId string `json:"assistantId"`
	Mode        string `json:"mode"`
	Success     bool   `json:"success"`
	Reused      bool   `json:"reused"`
}

type AssistantResponse struct {
	Id              uuid.UUID `json:"id"`
	Mode            string    `json:"mode"`
	VapiAssistantId string    `json:"vapi_assistant_id"`
	Tone            string    `json:"tone"`
	Language        string    `json:"language"`
	CreatedAt       time.Time `json:"created_at"`
}

type AssistantListResponse struct {
	Assistants []AssistantResponse `json:"assistants"`
}

type UserSummary struct {
	Name          string  `json:"name"`
	Email         string  `json:"email"`
	PreferredMode *string `json:"preferred_mode"`
}

// CheckUserResponse keeps the camelCase keys the dashboard reads.
type CheckUserResponse struct {
	CanCall        bool        `json:"canCall"`
	RemainingCalls int         `json:"remainingCalls"`
	CallLimit      int         `json:"callLimit"`
	Unlimited      bool        `json:"unlimited"`
	UserId         uuid.UUID   `json:"userId"`
	UserProfile    UserSummary `json:"userProfile"`
}

type StartCallRequest struct {
	AssistantId string `json:"assistantId" validate:"required"`
	Mode        string `json:"mode" validate:"required"`
	Language    string `json:"language" validate:"omitempty,oneof=english arabic"`
}

type StartCallResponse struct {
	ConversationId uuid.UUID `json:"conversationId"`
	StartTime      time.Time `json:"startTime"`
	RemainingCalls int       `json:"remainingCalls"`
	Success        bool      `json:"success"`
}

// EndCallRequest.Duration is a pointer so that an omitted duration is
// rejected while 0 is accepted.
type EndCallRequest struct {
	ConversationId string   `json:"conversationId" validate:"required,uuid"`
	Duration       *float64 `json:"duration" validate:"required,gte=0"`
	Transcript     []string `json:"transcript"`
	VapiCallId     string   `json:"vapiCallId"`
}

const (
	TranscriptSourceVapi     = "vapi"
	TranscriptSourceFallback = "fallback"
)

type EndCallResponse struct {
	Success          bool     `json:"success"`
	Transcript       []string `json:"transcript"`
	VapiCallId       *string  `json:"vapiCallId"`
	RecordingUrl     *string  `json:"recordingUrl"`
	DurationSeconds  int      `json:"durationSeconds"`
	TranscriptSource string   `json:"transcriptSource"`
	Message          string   `json:"message"`
}

type CleanupResult struct {
	Id     uuid.UUID `json:"id"`
	VapiId string    `json:"vapiId"`
	Mode   string    `json:"mode"`
	Status string    `json:"status"`
	Error  string    `json:"error,omitempty"`
}

type CleanupResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Results []CleanupResult `json:"results"`
	Cleaned int             `json:"cleaned"`
}

// OrphanedAssistantMessage is queued when an assistant was created remotely
// but its local record could not be written.
type OrphanedAssistantMessage struct {
	RecordId        uuid.UUID `json:"record_id"`
	UserId          uuid.UUID `json:"user_id"`
	Mode            string    `json:"mode"`
	VapiAssistantId string    `json:"vapi_assistant_id"`
	Tone            string    `json:"tone"`
	Language        string    `json:"language"`
	CreatedAt       time.Time `json:"created_at"`
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

// VoiceAssistant links a (user, mode) pair to an assistant hosted on Vapi.
type VoiceAssistant struct {
	Id              uuid.UUID
	UserId          uuid.UUID
	Mode            string
	VapiAssistantId string
	Tone            string
	Language        string
	CreatedAt       time.Time
}

const (
	CleanupStatusDeleted = "deleted"
	CleanupStatusValid   = "valid"
	CleanupStatusError   = "error"
)

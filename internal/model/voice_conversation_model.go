package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type VoiceConversation struct {
	Id              uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID                   `gorm:"type:uuid;not null;index"`
	UserAuthId      uuid.UUID                   `gorm:"type:uuid;not null;index"`
	AssistantId     uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Mode            string                      `gorm:"type:varchar(50);not null;index"`
	VapiCallId      *string                     `gorm:"type:varchar(255)"`
	Transcript      datatypes.JSONSlice[string] `gorm:"type:jsonb"`
	RecordingURL    *string                     `gorm:"type:text"`
	StartedAt       time.Time                   `gorm:"not null;index"`
	EndedAt         *time.Time
	DurationSeconds *int
}

func (VoiceConversation) TableName() string {
	return "voice_conversations"
}

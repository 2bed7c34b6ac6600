package model

import (
	"time"

	"github.com/google/uuid"
)

type VoiceAssistant struct {
	Id              uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId          uuid.UUID `gorm:"type:uuid;not null;index:idx_voice_assistants_user_mode,priority:1"`
	Mode            string    `gorm:"type:varchar(50);not null;index:idx_voice_assistants_user_mode,priority:2"`
	VapiAssistantId string    `gorm:"type:varchar(255);not null;index"`
	Tone            string    `gorm:"type:varchar(50);not null;default:'friendly'"`
	Language        string    `gorm:"type:varchar(50);not null;default:'english'"`
	CreatedAt       time.Time `gorm:"autoCreateTime;index:idx_voice_assistants_user_mode,priority:3"`
}

func (VoiceAssistant) TableName() string {
	return "voice_assistants"
}

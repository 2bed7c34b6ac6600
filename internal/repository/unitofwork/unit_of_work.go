package unitofwork

import (
	"context"

	"ai-voice-assistant-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	VoiceAssistantRepository() contract.VoiceAssistantRepository
	VoiceConversationRepository() contract.VoiceConversationRepository
}

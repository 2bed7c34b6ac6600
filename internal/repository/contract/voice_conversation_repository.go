package contract

import (
	"context"

	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type VoiceConversationRepository interface {
	Create(ctx context.Context, conversation *entity.VoiceConversation) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VoiceConversation, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.VoiceConversation, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Finish writes the end-of-call fields of an open conversation owned by
	// the conversation's UserAuthId. Returns false when nothing matched
	// (missing, not owned, or already ended).
	Finish(ctx context.Context, conversation *entity.VoiceConversation) (bool, error)

	// CountByMode groups the caller's conversations by mode.
	CountByMode(ctx context.Context, authUserId uuid.UUID) (map[string]int64, error)
}

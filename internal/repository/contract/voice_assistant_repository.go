package contract

import (
	"context"

	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type VoiceAssistantRepository interface {
	Create(ctx context.Context, assistant *entity.VoiceAssistant) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VoiceAssistant, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.VoiceAssistant, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

package contract

import (
	"context"

	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	UpdateFields(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)

	// IncrementCallCount adds one call to the counter only while it is below
	// limit, in a single statement. limit <= 0 means no cap. Reports whether
	// the increment happened.
	IncrementCallCount(ctx context.Context, id uuid.UUID, limit int) (bool, error)
}

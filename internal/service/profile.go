package service

import (
	"context"
	"fmt"
	"time"

	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/repository/specification"
	"ai-voice-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// ensureProfile returns the caller's profile row, creating it on the first
// authenticated action. A concurrent first request may win the insert; the
// unique index on auth_user_id makes ours fail and we read theirs.
func ensureProfile(ctx context.Context, uow unitofwork.UnitOfWork, authUser entity.AuthUser) (*entity.User, error) {
	repo := uow.UserRepository()

	user, err := repo.FindOne(ctx, specification.ByAuthUserID{AuthUserID: authUser.Id})
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	now := time.Now()
	user = &entity.User{
		Id:         uuid.New(),
		AuthUserId: authUser.Id,
		Name:       authUser.DisplayName(),
		Email:      authUser.Email,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if createErr := repo.Create(ctx, user); createErr != nil {
		existing, err := repo.FindOne(ctx, specification.ByAuthUserID{AuthUserID: authUser.Id})
		if err != nil || existing == nil {
			return nil, fmt.Errorf("create profile: %w", createErr)
		}
		return existing, nil
	}
	return user, nil
}

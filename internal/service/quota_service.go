package service

import (
	"context"

	"ai-voice-assistant-be/internal/dto"
	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/pkg/apperror"
	"ai-voice-assistant-be/internal/repository/specification"
	"ai-voice-assistant-be/internal/repository/unitofwork"
)

type IQuotaService interface {
	Status(ctx context.Context, authUser entity.AuthUser) (*dto.CheckUserResponse, error)

	// Reserve consumes one call for user inside the caller's transaction.
	// It fails with a quota error when the cap is already reached.
	Reserve(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) (entity.QuotaStatus, error)
}

type quotaService struct {
	uowFactory unitofwork.RepositoryFactory
	limit      int
}

func NewQuotaService(uowFactory unitofwork.RepositoryFactory, limit int) IQuotaService {
	return &quotaService{
		uowFactory: uowFactory,
		limit:      limit,
	}
}

func (s *quotaService) Status(ctx context.Context, authUser entity.AuthUser) (*dto.CheckUserResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := ensureProfile(ctx, uow, authUser)
	if err != nil {
		return nil, err
	}

	quota := entity.NewQuotaStatus(s.limit, user.CallCount)
	return &dto.CheckUserResponse{
		CanCall:        quota.CanCall,
		RemainingCalls: quota.Remaining,
		CallLimit:      quota.Limit,
		Unlimited:      quota.Unlimited,
		UserId:         user.Id,
		UserProfile: dto.UserSummary{
			Name:          user.Name,
			Email:         user.Email,
			PreferredMode: user.PreferredMode,
		},
	}, nil
}

func (s *quotaService) Reserve(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User) (entity.QuotaStatus, error) {
	ok, err := uow.UserRepository().IncrementCallCount(ctx, user.Id, s.limit)
	if err != nil {
		return entity.QuotaStatus{}, err
	}
	if !ok {
		return entity.NewQuotaStatus(s.limit, user.CallCount), apperror.QuotaExceeded("Call limit reached")
	}

	fresh, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: user.Id})
	if err != nil {
		return entity.QuotaStatus{}, err
	}
	if fresh != nil {
		user.CallCount = fresh.CallCount
	} else {
		user.CallCount++
	}
	return entity.NewQuotaStatus(s.limit, user.CallCount), nil
}

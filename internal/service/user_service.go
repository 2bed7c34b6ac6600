package service

import (
	"context"
	"strings"
	"time"

	"ai-voice-assistant-be/internal/dto"
	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/persona"
	"ai-voice-assistant-be/internal/pkg/apperror"
	"ai-voice-assistant-be/internal/pkg/logger"
	"ai-voice-assistant-be/internal/repository/unitofwork"
	"ai-voice-assistant-be/pkg/events"
)

type IUserService interface {
	GetProfile(ctx context.Context, authUser entity.AuthUser) (*dto.ProfileEnvelope, error)
	UpdateProfile(ctx context.Context, authUser entity.AuthUser, req *dto.UpdateProfileRequest) error
	CompleteOnboarding(ctx context.Context, authUser entity.AuthUser, req *dto.OnboardingRequest) (*dto.OnboardingResponse, error)
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
	assistants IAssistantService
	events     events.Publisher
	logger     logger.ILogger
}

func NewUserService(
	uowFactory unitofwork.RepositoryFactory,
	assistants IAssistantService,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) IUserService {
	return &userService{
		uowFactory: uowFactory,
		assistants: assistants,
		events:     eventPublisher,
		logger:     logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, authUser entity.AuthUser) (*dto.ProfileEnvelope, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := ensureProfile(ctx, uow, authUser)
	if err != nil {
		return nil, err
	}
	return &dto.ProfileEnvelope{Profile: toProfileResponse(user)}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, authUser entity.AuthUser, req *dto.UpdateProfileRequest) error {
	fields, err := profileFields(req.Name, req.Phone, req.PreferredMode)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := ensureProfile(ctx, uow, authUser)
	if err != nil {
		return err
	}

	fields["updated_at"] = time.Now()
	return uow.UserRepository().UpdateFields(ctx, user.Id, fields)
}

// CompleteOnboarding marks the profile onboarded. A tone in the request
// means the task-assistant flow: scheduling, sales and service assistants are
// provisioned first so a failure leaves onboarding incomplete.
func (s *userService) CompleteOnboarding(ctx context.Context, authUser entity.AuthUser, req *dto.OnboardingRequest) (*dto.OnboardingResponse, error) {
	preferredMode := strings.TrimSpace(req.PreferredMode)
	tone := strings.TrimSpace(req.Tone)
	if preferredMode == "" && tone == "" {
		return nil, apperror.Validation("Preferred mode is required")
	}

	var modePtr *string
	if preferredMode != "" {
		modePtr = &preferredMode
	}
	fields, err := profileFields(req.Name, req.Phone, modePtr)
	if err != nil {
		return nil, err
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := ensureProfile(ctx, uow, authUser)
	if err != nil {
		return nil, err
	}

	res := &dto.OnboardingResponse{Success: true, Message: "Onboarding completed successfully"}
	if tone != "" {
		provisioned, err := s.assistants.ProvisionMany(ctx, authUser, persona.OnboardingModes, tone, req.Language)
		if err != nil {
			return nil, err
		}
		res.Assistants = provisioned
		if preferredMode == "" {
			fields["preferred_mode"] = persona.OnboardingModes[0]
		}
	}

	fields["onboarding_completed"] = true
	fields["updated_at"] = time.Now()
	if err := uow.UserRepository().UpdateFields(ctx, user.Id, fields); err != nil {
		return nil, err
	}

	s.logger.Info("USER", "Onboarding completed", map[string]interface{}{
		"auth_user_id": authUser.Id,
		"assistants":   len(res.Assistants),
	})
	publishEvent(ctx, s.events, s.logger, events.New(events.TypeOnboardingCompleted, authUser.Id.String(), map[string]interface{}{
		"assistants": len(res.Assistants),
	}))

	return res, nil
}

// profileFields turns optional request fields into a column map. Absent
// fields are skipped; a blank phone clears the column.
func profileFields(name, phone, preferredMode *string) (map[string]interface{}, error) {
	fields := make(map[string]interface{})

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if trimmed == "" {
			return nil, apperror.Validation("Name cannot be empty")
		}
		fields["name"] = trimmed
	}
	if phone != nil {
		if trimmed := strings.TrimSpace(*phone); trimmed != "" {
			fields["phone"] = trimmed
		} else {
			fields["phone"] = nil
		}
	}
	if preferredMode != nil {
		mode := strings.TrimSpace(*preferredMode)
		if !persona.Valid(mode) {
			return nil, apperror.Validation("Invalid preferred mode")
		}
		fields["preferred_mode"] = mode
	}
	return fields, nil
}

func toProfileResponse(u *entity.User) *dto.UserProfileResponse {
	return &dto.UserProfileResponse{
		Id:                  u.Id,
		Name:                u.Name,
		Email:               u.Email,
		Phone:               u.Phone,
		PreferredMode:       u.PreferredMode,
		CallCount:           u.CallCount,
		OnboardingCompleted: u.OnboardingCompleted,
		CreatedAt:           u.CreatedAt,
		UpdatedAt:           u.UpdatedAt,
	}
}

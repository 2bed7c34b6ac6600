package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id                  uuid.UUID `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Phone               *string   `json:"phone"`
	PreferredMode       *string   `json:"preferred_mode"`
	CallCount           int       `json:"call_count"`
	OnboardingCompleted bool      `json:"onboarding_completed"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

type ProfileEnvelope struct {
	Profile *UserProfileResponse `json:"profile"`
}

// UpdateProfileRequest uses pointers so an absent field is left untouched
// while an explicit "" clears the phone.
type UpdateProfileRequest struct {
	Name          *string `json:"name" validate:"omitempty,max=100"`
	Phone         *string `json:"phone" validate:"omitempty,max=32"`
	PreferredMode *string `json:"preferred_mode"`
}

type OnboardingRequest struct {
	PreferredMode string  `json:"preferred_mode"`
	Tone          string  `json:"tone" validate:"omitempty,oneof=professional casual friendly"`
	Language      string  `json:"language" validate:"omitempty,oneof=english arabic"`
	Name          *string `json:"name" validate:"omitempty,max=100"`
	Phone         *string `json:"phone" validate:"omitempty,max=32"`
}

type OnboardingResponse struct {
	Success    bool                `json:"success"`
	Message    string              `json:"message"`
	Assistants []ProvisionResponse `json:"assistants,omitempty"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

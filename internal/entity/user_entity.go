package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// AuthUser is the identity extracted from the auth provider's access token.
type AuthUser struct {
	Id    uuid.UUID
	Email string
	Name  string
}

// DisplayName picks the profile name for a first-time user: token metadata,
// then the email local part, then "User".
func (a AuthUser) DisplayName() string {
	if name := strings.TrimSpace(a.Name); name != "" {
		return name
	}
	if local, _, _ := strings.Cut(a.Email, "@"); local != "" {
		return local
	}
	return "User"
}

type User struct {
	Id                  uuid.UUID
	AuthUserId          uuid.UUID
	Name                string
	Email               string
	Phone               *string
	PreferredMode       *string
	CallCount           int
	OnboardingCompleted bool
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// QuotaStatus is the caller's view of the call cap. Limit <= 0 means the cap
// is disabled.
type QuotaStatus struct {
	Limit     int
	Used      int
	Remaining int
	CanCall   bool
	Unlimited bool
}

func NewQuotaStatus(limit, used int) QuotaStatus {
	if limit <= 0 {
		return QuotaStatus{Limit: limit, Used: used, CanCall: true, Unlimited: true}
	}
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return QuotaStatus{Limit: limit, Used: used, Remaining: remaining, CanCall: remaining > 0}
}

package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ByMode struct {
	Mode string
}

func (s ByMode) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("mode = ?", s.Mode)
}

type ByVapiAssistantID struct {
	VapiAssistantID string
}

func (s ByVapiAssistantID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("vapi_assistant_id = ?", s.VapiAssistantID)
}

// OwnedByAuthUser scopes conversations to the caller. Rows of other users
// look exactly like missing rows.
type OwnedByAuthUser struct {
	AuthUserID uuid.UUID
}

func (s OwnedByAuthUser) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_auth_id = ?", s.AuthUserID)
}

// OpenConversation matches conversations that have not ended yet.
type OpenConversation struct{}

func (s OpenConversation) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("ended_at IS NULL")
}

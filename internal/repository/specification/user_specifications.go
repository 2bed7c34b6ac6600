package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ByAuthUserID matches the profile row of an auth provider identity.
type ByAuthUserID struct {
	AuthUserID uuid.UUID
}

func (s ByAuthUserID) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("auth_user_id = ?", s.AuthUserID)
}

type UserOwnedBy struct {
	UserID uuid.UUID
}

func (s UserOwnedBy) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("user_id = ?", s.UserID)
}

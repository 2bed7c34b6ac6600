package model

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	Id                  uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AuthUserId          uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	Name                string    `gorm:"type:varchar(255);not null"`
	Email               string    `gorm:"type:varchar(255);not null;default:''"`
	Phone               *string   `gorm:"type:varchar(50)"`
	PreferredMode       *string   `gorm:"type:varchar(50)"`
	CallCount           int       `gorm:"not null;default:0"`
	OnboardingCompleted bool      `gorm:"not null;default:false"`
	CreatedAt           time.Time `gorm:"autoCreateTime"`
	UpdatedAt           time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

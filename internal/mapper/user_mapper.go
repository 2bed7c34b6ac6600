package mapper

import (
	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/model"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:                  u.Id,
		AuthUserId:          u.AuthUserId,
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

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:                  u.Id,
		AuthUserId:          u.AuthUserId,
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

func (m *UserMapper) ToEntities(users []*model.User) []*entity.User {
	entities := make([]*entity.User, len(users))
	for i, u := range users {
		entities[i] = m.ToEntity(u)
	}
	return entities
}

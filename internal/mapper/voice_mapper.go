package mapper

import (
	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/model"

	"gorm.io/datatypes"
)

type VoiceMapper struct{}

func NewVoiceMapper() *VoiceMapper {
	return &VoiceMapper{}
}

// Assistant Mappers

func (m *VoiceMapper) AssistantToEntity(a *model.VoiceAssistant) *entity.VoiceAssistant {
	if a == nil {
		return nil
	}
	return &entity.VoiceAssistant{
		Id:              a.Id,
		UserId:          a.UserId,
		Mode:            a.Mode,
		VapiAssistantId: a.VapiAssistantId,
		Tone:            a.Tone,
		Language:        a.Language,
		CreatedAt:       a.CreatedAt,
	}
}

func (m *VoiceMapper) AssistantToModel(a *entity.VoiceAssistant) *model.VoiceAssistant {
	if a == nil {
		return nil
	}
	return &model.VoiceAssistant{
		Id:              a.Id,
		UserId:          a.UserId,
		Mode:            a.Mode,
		VapiAssistantId: a.VapiAssistantId,
		Tone:            a.Tone,
		Language:        a.Language,
		CreatedAt:       a.CreatedAt,
	}
}

func (m *VoiceMapper) AssistantsToEntities(items []*model.VoiceAssistant) []*entity.VoiceAssistant {
	entities := make([]*entity.VoiceAssistant, len(items))
	for i, a := range items {
		entities[i] = m.AssistantToEntity(a)
	}
	return entities
}

// Conversation Mappers

func (m *VoiceMapper) ConversationToEntity(c *model.VoiceConversation) *entity.VoiceConversation {
	if c == nil {
		return nil
	}

	var transcript []string
	if c.Transcript != nil {
		transcript = []string(c.Transcript)
	}

	return &entity.VoiceConversation{
		Id:              c.Id,
		UserId:          c.UserId,
		UserAuthId:      c.UserAuthId,
		AssistantId:     c.AssistantId,
		Mode:            c.Mode,
		VapiCallId:      c.VapiCallId,
		Transcript:      transcript,
		RecordingURL:    c.RecordingURL,
		StartedAt:       c.StartedAt,
		EndedAt:         c.EndedAt,
		DurationSeconds: c.DurationSeconds,
	}
}

func (m *VoiceMapper) ConversationToModel(c *entity.VoiceConversation) *model.VoiceConversation {
	if c == nil {
		return nil
	}

	var transcript datatypes.JSONSlice[string]
	if c.Transcript != nil {
		transcript = datatypes.JSONSlice[string](c.Transcript)
	}

	return &model.VoiceConversation{
		Id:              c.Id,
		UserId:          c.UserId,
		UserAuthId:      c.UserAuthId,
		AssistantId:     c.AssistantId,
		Mode:            c.Mode,
		VapiCallId:      c.VapiCallId,
		Transcript:      transcript,
		RecordingURL:    c.RecordingURL,
		StartedAt:       c.StartedAt,
		EndedAt:         c.EndedAt,
		DurationSeconds: c.DurationSeconds,
	}
}

func (m *VoiceMapper) ConversationsToEntities(items []*model.VoiceConversation) []*entity.VoiceConversation {
	entities := make([]*entity.VoiceConversation, len(items))
	for i, c := range items {
		entities[i] = m.ConversationToEntity(c)
	}
	return entities
}

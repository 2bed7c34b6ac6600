package implementation

import (
	"context"
	"errors"

	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/mapper"
	"ai-voice-assistant-be/internal/model"
	"ai-voice-assistant-be/internal/repository/contract"
	"ai-voice-assistant-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type VoiceConversationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VoiceMapper
}

func NewVoiceConversationRepository(db *gorm.DB) contract.VoiceConversationRepository {
	return &VoiceConversationRepositoryImpl{
		db:     db,
		mapper: mapper.NewVoiceMapper(),
	}
}

func (r *VoiceConversationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *VoiceConversationRepositoryImpl) Create(ctx context.Context, conversation *entity.VoiceConversation) error {
	m := r.mapper.ConversationToModel(conversation)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*conversation = *r.mapper.ConversationToEntity(m)
	return nil
}

func (r *VoiceConversationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VoiceConversation, error) {
	var m model.VoiceConversation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ConversationToEntity(&m), nil
}

func (r *VoiceConversationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.VoiceConversation, error) {
	var models []*model.VoiceConversation
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ConversationsToEntities(models), nil
}

func (r *VoiceConversationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.VoiceConversation{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *VoiceConversationRepositoryImpl) Finish(ctx context.Context, conversation *entity.VoiceConversation) (bool, error) {
	var transcript interface{}
	if conversation.Transcript != nil {
		transcript = datatypes.JSONSlice[string](conversation.Transcript)
	}

	result := r.db.WithContext(ctx).Model(&model.VoiceConversation{}).
		Where("id = ? AND user_auth_id = ? AND ended_at IS NULL", conversation.Id, conversation.UserAuthId).
		Updates(map[string]interface{}{
			"duration_seconds": conversation.DurationSeconds,
			"transcript":       transcript,
			"vapi_call_id":     conversation.VapiCallId,
			"recording_url":    conversation.RecordingURL,
			"ended_at":         conversation.EndedAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *VoiceConversationRepositoryImpl) CountByMode(ctx context.Context, authUserId uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Mode  string
		Count int64
	}
	err := r.db.WithContext(ctx).Model(&model.VoiceConversation{}).
		Select("mode, COUNT(*) as count").
		Where("user_auth_id = ?", authUserId).
		Group("mode").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Mode] = row.Count
	}
	return counts, nil
}

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
	"gorm.io/gorm"
)

type VoiceAssistantRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.VoiceMapper
}

func NewVoiceAssistantRepository(db *gorm.DB) contract.VoiceAssistantRepository {
	return &VoiceAssistantRepositoryImpl{
		db:     db,
		mapper: mapper.NewVoiceMapper(),
	}
}

func (r *VoiceAssistantRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *VoiceAssistantRepositoryImpl) Create(ctx context.Context, assistant *entity.VoiceAssistant) error {
	m := r.mapper.AssistantToModel(assistant)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*assistant = *r.mapper.AssistantToEntity(m)
	return nil
}

func (r *VoiceAssistantRepositoryImpl) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.VoiceAssistant{}).Error
}

func (r *VoiceAssistantRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.VoiceAssistant, error) {
	var m model.VoiceAssistant
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.AssistantToEntity(&m), nil
}

func (r *VoiceAssistantRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.VoiceAssistant, error) {
	var models []*model.VoiceAssistant
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.AssistantsToEntities(models), nil
}

func (r *VoiceAssistantRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.VoiceAssistant{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

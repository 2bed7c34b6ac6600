package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ai-voice-assistant-be/internal/config"
	"ai-voice-assistant-be/internal/dto"
	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/persona"
	"ai-voice-assistant-be/internal/pkg/apperror"
	"ai-voice-assistant-be/internal/pkg/logger"
	"ai-voice-assistant-be/internal/repository/specification"
	"ai-voice-assistant-be/internal/repository/unitofwork"
	"ai-voice-assistant-be/pkg/events"
	"ai-voice-assistant-be/pkg/vapi"

	"github.com/google/uuid"
)

const (
	endCallMessage  = "Thank you for talking with me today. Have a great day!"
	backgroundSound = "off"
)

var endCallPhrases = []string{"goodbye", "bye", "see you later", "talk to you later"}

type IAssistantService interface {
	Provision(ctx context.Context, authUser entity.AuthUser, req *dto.CreateAssistantRequest) (*dto.ProvisionResponse, error)
	ProvisionMany(ctx context.Context, authUser entity.AuthUser, modes []string, tone, language string) ([]dto.ProvisionResponse, error)
	ListForUser(ctx context.Context, authUser entity.AuthUser) (*dto.AssistantListResponse, error)
	Cleanup(ctx context.Context) (*dto.CleanupResponse, error)
}

type assistantService struct {
	uowFactory     unitofwork.RepositoryFactory
	vapiClient     vapi.Client
	vapiCfg        config.VapiConfig
	maxCallSeconds int
	orphans        IPublisherService
	events         events.Publisher
	logger         logger.ILogger
}

func NewAssistantService(
	uowFactory unitofwork.RepositoryFactory,
	vapiClient vapi.Client,
	vapiCfg config.VapiConfig,
	maxCallSeconds int,
	orphans IPublisherService,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) IAssistantService {
	return &assistantService{
		uowFactory:     uowFactory,
		vapiClient:     vapiClient,
		vapiCfg:        vapiCfg,
		maxCallSeconds: maxCallSeconds,
		orphans:        orphans,
		events:         eventPublisher,
		logger:         logger,
	}
}

func (s *assistantService) Provision(ctx context.Context, authUser entity.AuthUser, req *dto.CreateAssistantRequest) (*dto.ProvisionResponse, error) {
	mode := strings.TrimSpace(req.Mode)
	if mode == "" {
		return nil, apperror.Validation("Mode is required")
	}
	if !persona.Valid(mode) {
		return nil, apperror.Validation("Invalid mode")
	}
	tone := persona.NormalizeTone(req.Tone)
	if !persona.ValidTone(tone) {
		return nil, apperror.Validation("Invalid tone")
	}
	language := persona.NormalizeLanguage(req.Language)
	if !persona.ValidLanguage(language) {
		return nil, apperror.Validation("Invalid language")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := ensureProfile(ctx, uow, authUser)
	if err != nil {
		return nil, err
	}

	existing, err := uow.VoiceAssistantRepository().FindOne(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.ByMode{Mode: mode},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		exists, err := s.vapiClient.AssistantExists(ctx, existing.VapiAssistantId)
		switch {
		case err != nil:
			// Can't tell; keep the record and provision a fresh one.
			s.logger.Warn("ASSISTANT", "Existence check failed, creating new assistant", map[string]interface{}{
				"vapi_assistant_id": existing.VapiAssistantId,
				"error":             err.Error(),
			})
		case exists:
			s.logger.Info("ASSISTANT", "Reusing existing assistant", map[string]interface{}{
				"vapi_assistant_id": existing.VapiAssistantId,
				"mode":              mode,
			})
			return &dto.ProvisionResponse{
				AssistantId: existing.VapiAssistantId,
				Mode:        mode,
				Success:     true,
				Reused:      true,
			}, nil
		default:
			s.logger.Info("ASSISTANT", "Stored assistant no longer exists remotely", map[string]interface{}{
				"vapi_assistant_id": existing.VapiAssistantId,
			})
			if err := uow.VoiceAssistantRepository().Delete(ctx, existing.Id); err != nil {
				s.logger.Error("ASSISTANT", "Failed to delete stale assistant record", map[string]interface{}{
					"id":    existing.Id,
					"error": err.Error(),
				})
			}
		}
	}

	remote, err := s.createRemote(ctx, mode, tone, language)
	if err != nil {
		return nil, err
	}

	record := &entity.VoiceAssistant{
		Id:              uuid.New(),
		UserId:          user.Id,
		Mode:            mode,
		VapiAssistantId: remote.ID,
		Tone:            tone,
		Language:        language,
		CreatedAt:       time.Now(),
	}
	if err := uow.VoiceAssistantRepository().Create(ctx, record); err != nil {
		s.logger.Error("ASSISTANT", "Failed to store assistant", map[string]interface{}{
			"vapi_assistant_id": remote.ID,
			"error":             err.Error(),
		})
		s.queueOrphan(ctx, record)
	}

	publishEvent(ctx, s.events, s.logger, events.New(events.TypeAssistantProvisioned, authUser.Id.String(), map[string]interface{}{
		"mode":              mode,
		"vapi_assistant_id": remote.ID,
	}))

	return &dto.ProvisionResponse{
		AssistantId: remote.ID,
		Mode:        mode,
		Success:     true,
		Reused:      false,
	}, nil
}

func (s *assistantService) ProvisionMany(ctx context.Context, authUser entity.AuthUser, modes []string, tone, language string) ([]dto.ProvisionResponse, error) {
	results := make([]dto.ProvisionResponse, 0, len(modes))
	for _, mode := range modes {
		res, err := s.Provision(ctx, authUser, &dto.CreateAssistantRequest{Mode: mode, Tone: tone, Language: language})
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, nil
}

// ListForUser returns the newest record per mode.
func (s *assistantService) ListForUser(ctx context.Context, authUser entity.AuthUser) (*dto.AssistantListResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	res := &dto.AssistantListResponse{Assistants: make([]dto.AssistantResponse, 0)}

	user, err := uow.UserRepository().FindOne(ctx, specification.ByAuthUserID{AuthUserID: authUser.Id})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return res, nil
	}

	records, err := uow.VoiceAssistantRepository().FindAll(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	for _, r := range records {
		if seen[r.Mode] {
			continue
		}
		seen[r.Mode] = true
		res.Assistants = append(res.Assistants, dto.AssistantResponse{
			Id:              r.Id,
			Mode:            r.Mode,
			VapiAssistantId: r.VapiAssistantId,
			Tone:            r.Tone,
			Language:        r.Language,
			CreatedAt:       r.CreatedAt,
		})
	}
	return res, nil
}

func (s *assistantService) Cleanup(ctx context.Context) (*dto.CleanupResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	records, err := uow.VoiceAssistantRepository().FindAll(ctx, specification.OrderBy{Field: "created_at"})
	if err != nil {
		return nil, err
	}

	res := &dto.CleanupResponse{Success: true, Results: make([]dto.CleanupResult, 0, len(records))}
	for _, r := range records {
		result := dto.CleanupResult{Id: r.Id, VapiId: r.VapiAssistantId, Mode: r.Mode}

		exists, err := s.vapiClient.AssistantExists(ctx, r.VapiAssistantId)
		switch {
		case err != nil:
			result.Status = entity.CleanupStatusError
			result.Error = err.Error()
		case exists:
			result.Status = entity.CleanupStatusValid
		default:
			if err := uow.VoiceAssistantRepository().Delete(ctx, r.Id); err != nil {
				result.Status = entity.CleanupStatusError
				result.Error = err.Error()
			} else {
				result.Status = entity.CleanupStatusDeleted
				res.Cleaned++
			}
		}
		res.Results = append(res.Results, result)
	}

	res.Message = fmt.Sprintf("Cleanup completed. Removed %d invalid assistants.", res.Cleaned)
	s.logger.Info("ASSISTANT", "Cleanup finished", map[string]interface{}{
		"checked": len(records),
		"cleaned": res.Cleaned,
	})
	return res, nil
}

func (s *assistantService) buildRequest(mode, tone, language, voiceID string) vapi.AssistantRequest {
	return vapi.AssistantRequest{
		Name: persona.DisplayName(mode),
		Model: vapi.Model{
			Provider: "openai",
			Model:    s.vapiCfg.ModelName,
			Messages: []vapi.Message{
				{Role: "system", Content: persona.BuildSystemPrompt(mode, tone, language)},
			},
		},
		Voice: vapi.Voice{Provider: "11labs", VoiceID: voiceID},
		Transcriber: &vapi.Transcriber{
			Provider: "deepgram",
			Model:    "nova-2",
			Language: persona.TranscriberLanguage(language),
		},
		FirstMessage:       persona.FirstMessage(mode, language),
		MaxDurationSeconds: s.maxCallSeconds,
		EndCallMessage:     endCallMessage,
		EndCallPhrases:     endCallPhrases,
		RecordingEnabled:   false,
		BackgroundSound:    backgroundSound,
	}
}

// createRemote tries the configured voice, then the backup voice when the
// provider rejects the request itself.
func (s *assistantService) createRemote(ctx context.Context, mode, tone, language string) (*vapi.Assistant, error) {
	remote, err := s.vapiClient.CreateAssistant(ctx, s.buildRequest(mode, tone, language, s.vapiCfg.VoiceID))
	if err != nil && s.shouldRetryWithBackupVoice(err) {
		s.logger.Warn("ASSISTANT", "Primary voice rejected, retrying with backup voice", map[string]interface{}{
			"mode":  mode,
			"error": err.Error(),
		})
		remote, err = s.vapiClient.CreateAssistant(ctx, s.buildRequest(mode, tone, language, s.vapiCfg.VoiceBackup))
	}
	if err != nil {
		s.logger.Error("ASSISTANT", "Vapi create assistant failed", map[string]interface{}{
			"mode":  mode,
			"error": err.Error(),
		})
		var apiErr *vapi.APIError
		if errors.As(err, &apiErr) {
			return nil, apperror.Upstream("Failed to create assistant: "+apiErr.Body, err)
		}
		return nil, apperror.Upstream("Failed to create assistant: "+err.Error(), err)
	}
	return remote, nil
}

func (s *assistantService) shouldRetryWithBackupVoice(err error) bool {
	if s.vapiCfg.VoiceBackup == "" || s.vapiCfg.VoiceBackup == s.vapiCfg.VoiceID {
		return false
	}
	var apiErr *vapi.APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusBadRequest || apiErr.StatusCode == http.StatusUnprocessableEntity
}

func (s *assistantService) queueOrphan(ctx context.Context, record *entity.VoiceAssistant) {
	if s.orphans == nil {
		return
	}
	msg := dto.OrphanedAssistantMessage{
		RecordId:        record.Id,
		UserId:          record.UserId,
		Mode:            record.Mode,
		VapiAssistantId: record.VapiAssistantId,
		Tone:            record.Tone,
		Language:        record.Language,
		CreatedAt:       record.CreatedAt,
	}
	if err := s.orphans.Publish(ctx, msg); err != nil {
		s.logger.Error("ASSISTANT", "Failed to queue orphaned assistant", map[string]interface{}{
			"vapi_assistant_id": record.VapiAssistantId,
			"error":             err.Error(),
		})
	}
}

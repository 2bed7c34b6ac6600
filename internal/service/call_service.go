package service

import (
	"context"
	"strings"
	"time"

	"ai-voice-assistant-be/internal/dto"
	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/persona"
	"ai-voice-assistant-be/internal/pkg/apperror"
	"ai-voice-assistant-be/internal/pkg/logger"
	"ai-voice-assistant-be/internal/pkg/mailer"
	"ai-voice-assistant-be/internal/repository/specification"
	"ai-voice-assistant-be/internal/repository/unitofwork"
	"ai-voice-assistant-be/pkg/events"
	"ai-voice-assistant-be/pkg/vapi"

	"github.com/google/uuid"
)

type ICallService interface {
	StartCall(ctx context.Context, authUser entity.AuthUser, req *dto.StartCallRequest) (*dto.StartCallResponse, error)
	EndCall(ctx context.Context, authUser entity.AuthUser, req *dto.EndCallRequest) (*dto.EndCallResponse, error)
}

type callService struct {
	uowFactory      unitofwork.RepositoryFactory
	quota           IQuotaService
	vapiClient      vapi.Client
	transcriptDelay time.Duration
	mailer          mailer.IEmailService
	events          events.Publisher
	logger          logger.ILogger
	now             func() time.Time
}

func NewCallService(
	uowFactory unitofwork.RepositoryFactory,
	quota IQuotaService,
	vapiClient vapi.Client,
	transcriptDelay time.Duration,
	emailService mailer.IEmailService,
	eventPublisher events.Publisher,
	logger logger.ILogger,
) ICallService {
	return &callService{
		uowFactory:      uowFactory,
		quota:           quota,
		vapiClient:      vapiClient,
		transcriptDelay: transcriptDelay,
		mailer:          emailService,
		events:          eventPublisher,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *callService) StartCall(ctx context.Context, authUser entity.AuthUser, req *dto.StartCallRequest) (*dto.StartCallResponse, error) {
	assistantID := strings.TrimSpace(req.AssistantId)
	mode := strings.TrimSpace(req.Mode)
	if assistantID == "" || mode == "" {
		return nil, apperror.Validation("assistantId and mode are required")
	}
	if !persona.Valid(mode) {
		return nil, apperror.Validation("Invalid mode")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := ensureProfile(ctx, uow, authUser)
	if err != nil {
		return nil, err
	}

	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	quota, err := s.quota.Reserve(ctx, uow, user)
	if err != nil {
		if apperror.Is(err, apperror.KindQuotaExceeded) {
			s.logger.Info("CALL", "Call rejected, quota exhausted", map[string]interface{}{
				"auth_user_id": authUser.Id,
			})
			publishEvent(ctx, s.events, s.logger, events.New(events.TypeQuotaExhausted, authUser.Id.String(), map[string]interface{}{
				"remaining": 0,
			}))
		}
		return nil, err
	}

	assistant, err := s.resolveAssistant(ctx, uow, user, assistantID, mode, req.Language)
	if err != nil {
		return nil, err
	}

	conversation := &entity.VoiceConversation{
		Id:          uuid.New(),
		UserId:      user.Id,
		UserAuthId:  authUser.Id,
		AssistantId: assistant.Id,
		Mode:        mode,
		Transcript:  []string{},
		StartedAt:   s.now().UTC(),
	}
	if err := uow.VoiceConversationRepository().Create(ctx, conversation); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	s.logger.Info("CALL", "Conversation started", map[string]interface{}{
		"conversation_id": conversation.Id,
		"mode":            mode,
		"remaining":       quota.Remaining,
	})
	publishEvent(ctx, s.events, s.logger, events.New(events.TypeCallStarted, authUser.Id.String(), map[string]interface{}{
		"conversation_id": conversation.Id.String(),
		"mode":            mode,
		"remaining":       quota.Remaining,
		"unlimited":       quota.Unlimited,
	}))

	return &dto.StartCallResponse{
		ConversationId: conversation.Id,
		StartTime:      conversation.StartedAt,
		RemainingCalls: quota.Remaining,
		Success:        true,
	}, nil
}

// resolveAssistant finds the local record for a Vapi assistant id, creating
// it when the client started a call with an assistant we never stored.
func (s *callService) resolveAssistant(ctx context.Context, uow unitofwork.UnitOfWork, user *entity.User, vapiID, mode, language string) (*entity.VoiceAssistant, error) {
	assistant, err := uow.VoiceAssistantRepository().FindOne(ctx,
		specification.ByVapiAssistantID{VapiAssistantID: vapiID},
		specification.UserOwnedBy{UserID: user.Id},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	if err != nil {
		return nil, err
	}
	if assistant != nil {
		return assistant, nil
	}

	language = persona.NormalizeLanguage(language)
	if !persona.ValidLanguage(language) {
		language = persona.LanguageEnglish
	}
	assistant = &entity.VoiceAssistant{
		Id:              uuid.New(),
		UserId:          user.Id,
		Mode:            mode,
		VapiAssistantId: vapiID,
		Tone:            persona.ToneFriendly,
		Language:        language,
		CreatedAt:       s.now(),
	}
	if err := uow.VoiceAssistantRepository().Create(ctx, assistant); err != nil {
		return nil, apperror.Internal("Failed to create assistant record", err)
	}
	return assistant, nil
}

func (s *callService) EndCall(ctx context.Context, authUser entity.AuthUser, req *dto.EndCallRequest) (*dto.EndCallResponse, error) {
	if req.Duration == nil {
		return nil, apperror.Validation("conversationId and duration are required")
	}
	conversationID, err := uuid.Parse(req.ConversationId)
	if err != nil {
		return nil, apperror.Validation("conversationId and duration are required")
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.VoiceConversationRepository()

	conversation, err := repo.FindOne(ctx,
		specification.ByID{ID: conversationID},
		specification.OwnedByAuthUser{AuthUserID: authUser.Id},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.NotFound("Conversation not found")
	}
	if conversation.IsEnded() {
		return endedResponse(conversation, "Conversation already ended"), nil
	}

	transcript := cleanTranscript(req.Transcript)
	source := dto.TranscriptSourceFallback
	var recordingURL *string

	vapiCallID := strings.TrimSpace(req.VapiCallId)
	if vapiCallID != "" {
		if call := s.fetchCall(ctx, vapiCallID); call != nil {
			if len(call.Utterances) > 0 {
				transcript = call.Utterances
				source = dto.TranscriptSourceVapi
			}
			if call.RecordingURL != "" {
				recordingURL = &call.RecordingURL
			}
		}
		conversation.VapiCallId = &vapiCallID
	}

	conversation.Transcript = transcript
	conversation.RecordingURL = recordingURL
	conversation.Finish(s.now().UTC(), *req.Duration)

	// The write must land even if the caller hung up during the fetch.
	writeCtx := context.WithoutCancel(ctx)
	finished, err := repo.Finish(writeCtx, conversation)
	if err != nil {
		return nil, err
	}
	if !finished {
		// Another path ended it first; report what is stored.
		stored, err := repo.FindOne(writeCtx, specification.ByID{ID: conversationID}, specification.OwnedByAuthUser{AuthUserID: authUser.Id})
		if err != nil {
			return nil, err
		}
		if stored == nil {
			return nil, apperror.NotFound("Conversation not found")
		}
		return endedResponse(stored, "Conversation already ended"), nil
	}

	s.logger.Info("CALL", "Conversation ended", map[string]interface{}{
		"conversation_id":   conversation.Id,
		"duration_seconds":  *conversation.DurationSeconds,
		"transcript_source": source,
		"utterances":        len(transcript),
	})
	publishEvent(writeCtx, s.events, s.logger, events.New(events.TypeCallEnded, authUser.Id.String(), map[string]interface{}{
		"conversation_id":   conversation.Id.String(),
		"mode":              conversation.Mode,
		"duration_seconds":  *conversation.DurationSeconds,
		"transcript_source": source,
	}))
	s.sendSummary(authUser, conversation)

	res := endedResponse(conversation, "Conversation ended and data stored successfully")
	res.TranscriptSource = source
	return res, nil
}

// fetchCall waits for Vapi to finalize the call record, then reads it.
// Any failure degrades to nil so the caller keeps the live transcript.
func (s *callService) fetchCall(ctx context.Context, callID string) *vapi.Call {
	if s.transcriptDelay > 0 {
		timer := time.NewTimer(s.transcriptDelay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
		}
	}

	call, err := s.vapiClient.GetCall(ctx, callID)
	if err != nil {
		s.logger.Warn("CALL", "Failed to fetch call from Vapi, using fallback transcript", map[string]interface{}{
			"vapi_call_id": callID,
			"error":        err.Error(),
		})
		return nil
	}
	return call
}

func (s *callService) sendSummary(authUser entity.AuthUser, conversation *entity.VoiceConversation) {
	if s.mailer == nil || authUser.Email == "" {
		return
	}
	summary := mailer.ConversationSummary{
		Name:            authUser.DisplayName(),
		Mode:            conversation.Mode,
		DurationSeconds: *conversation.DurationSeconds,
		Transcript:      conversation.Transcript,
	}
	go func() {
		if err := s.mailer.SendConversationSummary(authUser.Email, summary); err != nil {
			s.logger.Warn("CALL", "Failed to send conversation summary", map[string]interface{}{
				"conversation_id": conversation.Id,
				"error":           err.Error(),
			})
		}
	}()
}

func cleanTranscript(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func endedResponse(c *entity.VoiceConversation, message string) *dto.EndCallResponse {
	res := &dto.EndCallResponse{
		Success:          true,
		Transcript:       c.Transcript,
		VapiCallId:       c.VapiCallId,
		RecordingUrl:     c.RecordingURL,
		TranscriptSource: dto.TranscriptSourceFallback,
		Message:          message,
	}
	if res.Transcript == nil {
		res.Transcript = []string{}
	}
	if c.DurationSeconds != nil {
		res.DurationSeconds = *c.DurationSeconds
	}
	return res
}

package service

import (
	"context"
	"strings"

	"ai-voice-assistant-be/internal/dto"
	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/pkg/apperror"
	"ai-voice-assistant-be/internal/repository/specification"
	"ai-voice-assistant-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

const (
	defaultPageLimit = 10
	maxPageLimit     = 100
)

type IConversationService interface {
	List(ctx context.Context, authUser entity.AuthUser, query dto.ListConversationsQuery) (*dto.ConversationListResponse, error)
	Get(ctx context.Context, authUser entity.AuthUser, id uuid.UUID) (*dto.ConversationEnvelope, error)

	// FindOpen returns the caller's conversation if it has not ended yet.
	FindOpen(ctx context.Context, authUser entity.AuthUser, id uuid.UUID) (*entity.VoiceConversation, error)
}

type conversationService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewConversationService(uowFactory unitofwork.RepositoryFactory) IConversationService {
	return &conversationService{uowFactory: uowFactory}
}

func (s *conversationService) List(ctx context.Context, authUser entity.AuthUser, query dto.ListConversationsQuery) (*dto.ConversationListResponse, error) {
	page := query.Page
	if page < 1 {
		page = 1
	}
	limit := query.Limit
	if limit < 1 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	filters := []specification.Specification{specification.OwnedByAuthUser{AuthUserID: authUser.Id}}
	if mode := strings.TrimSpace(query.Mode); mode != "" {
		filters = append(filters, specification.ByMode{Mode: mode})
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.VoiceConversationRepository()

	total, err := repo.Count(ctx, filters...)
	if err != nil {
		return nil, err
	}

	specs := append(filters,
		specification.OrderBy{Field: "started_at", Desc: true},
		specification.Pagination{Limit: limit, Offset: (page - 1) * limit},
	)
	conversations, err := repo.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}

	counts, err := repo.CountByMode(ctx, authUser.Id)
	if err != nil {
		return nil, err
	}

	res := &dto.ConversationListResponse{
		Conversations: make([]dto.ConversationResponse, 0, len(conversations)),
		Pagination: dto.Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		},
		ModeCounts: counts,
	}
	for _, c := range conversations {
		item := toConversationResponse(c)
		item.VapiCallId = nil
		item.RecordingUrl = nil
		res.Conversations = append(res.Conversations, item)
	}
	return res, nil
}

func (s *conversationService) Get(ctx context.Context, authUser entity.AuthUser, id uuid.UUID) (*dto.ConversationEnvelope, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.VoiceConversationRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByAuthUser{AuthUserID: authUser.Id},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.NotFound("Conversation not found")
	}
	return &dto.ConversationEnvelope{Conversation: toConversationResponse(conversation)}, nil
}

func (s *conversationService) FindOpen(ctx context.Context, authUser entity.AuthUser, id uuid.UUID) (*entity.VoiceConversation, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	conversation, err := uow.VoiceConversationRepository().FindOne(ctx,
		specification.ByID{ID: id},
		specification.OwnedByAuthUser{AuthUserID: authUser.Id},
		specification.OpenConversation{},
	)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, apperror.NotFound("Conversation not found")
	}
	return conversation, nil
}

func toConversationResponse(c *entity.VoiceConversation) dto.ConversationResponse {
	transcript := c.Transcript
	if transcript == nil {
		transcript = []string{}
	}
	return dto.ConversationResponse{
		Id:              c.Id,
		Mode:            c.Mode,
		DurationSeconds: c.DurationSeconds,
		Transcript:      transcript,
		StartedAt:       c.StartedAt,
		EndedAt:         c.EndedAt,
		VapiCallId:      c.VapiCallId,
		RecordingUrl:    c.RecordingURL,
		UserAuthId:      c.UserAuthId,
	}
}

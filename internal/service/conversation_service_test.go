package service

import (
	"context"
	"testing"
	"time"

	"ai-voice-assistant-be/internal/dto"
	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedConversations(store *memStore, authID uuid.UUID, mode string, n int, base time.Time) []uuid.UUID {
	ids := make([]uuid.UUID, 0, n)
	for i := 0; i < n; i++ {
		c := entity.VoiceConversation{
			Id:         uuid.New(),
			UserAuthId: authID,
			Mode:       mode,
			Transcript: []string{"user: hi"},
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		store.conversations[c.Id] = c
		ids = append(ids, c.Id)
	}
	return ids
}

func TestListPaginatesNewestFirst(t *testing.T) {
	store := newMemStore()
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	ids := seedConversations(store, testAuthUser.Id, "Friend", 25, base)
	seedConversations(store, uuid.New(), "Friend", 4, base)
	svc := NewConversationService(&fakeFactory{store: store})

	first, err := svc.List(context.Background(), testAuthUser, dto.ListConversationsQuery{})
	require.NoError(t, err)
	assert.Len(t, first.Conversations, 10)
	assert.Equal(t, ids[24], first.Conversations[0].Id)
	assert.Equal(t, dto.Pagination{Page: 1, Limit: 10, Total: 25, TotalPages: 3}, first.Pagination)

	last, err := svc.List(context.Background(), testAuthUser, dto.ListConversationsQuery{Page: 3, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, last.Conversations, 5)
	assert.Equal(t, ids[0], last.Conversations[4].Id)
}

func TestListCapsLimitAndFiltersMode(t *testing.T) {
	store := newMemStore()
	base := time.Now().Add(-time.Hour)
	seedConversations(store, testAuthUser.Id, "Friend", 3, base)
	seedConversations(store, testAuthUser.Id, "Tutor", 2, base)
	svc := NewConversationService(&fakeFactory{store: store})

	res, err := svc.List(context.Background(), testAuthUser, dto.ListConversationsQuery{Limit: 5000, Mode: "Tutor"})

	require.NoError(t, err)
	assert.Equal(t, 100, res.Pagination.Limit)
	assert.Len(t, res.Conversations, 2)
	assert.EqualValues(t, 2, res.Pagination.Total)
	assert.Equal(t, map[string]int64{"Friend": 3, "Tutor": 2}, res.ModeCounts)
}

func TestGetIsOwnershipScoped(t *testing.T) {
	store := newMemStore()
	ids := seedConversations(store, testAuthUser.Id, "Friend", 1, time.Now())
	svc := NewConversationService(&fakeFactory{store: store})

	got, err := svc.Get(context.Background(), testAuthUser, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], got.Conversation.Id)

	_, err = svc.Get(context.Background(), entity.AuthUser{Id: uuid.New()}, ids[0])
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestFindOpenSkipsEndedConversations(t *testing.T) {
	store := newMemStore()
	ids := seedConversations(store, testAuthUser.Id, "Friend", 1, time.Now())
	svc := NewConversationService(&fakeFactory{store: store})

	open, err := svc.FindOpen(context.Background(), testAuthUser, ids[0])
	require.NoError(t, err)
	assert.Equal(t, ids[0], open.Id)

	ended := store.conversations[ids[0]]
	ended.Finish(time.Now(), 5)
	store.conversations[ids[0]] = ended

	_, err = svc.FindOpen(context.Background(), testAuthUser, ids[0])
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

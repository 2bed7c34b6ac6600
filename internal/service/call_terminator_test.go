package service

import (
	"context"
	"testing"
	"time"

	"ai-voice-assistant-be/internal/pkg/logger"
	"ai-voice-assistant-be/internal/session"
	"ai-voice-assistant-be/pkg/vapi"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionStopClosesConversation(t *testing.T) {
	f := newCallFixture(3)
	started := f.start(t)
	f.vapi.calls["call-7"] = &vapi.Call{ID: "call-7", Utterances: []string{"bot: Bye"}}

	orch := session.NewOrchestrator(
		session.Config{Ceiling: time.Minute, Tick: time.Second},
		NewCallTerminator(f.service),
		nil,
		logger.NewNopLogger(),
	)
	s, err := orch.Open(started.ConversationId, testAuthUser, started.StartTime)
	require.NoError(t, err)

	ctx := context.Background()
	s.Connect()
	require.NoError(t, s.HandleEvent(ctx, session.Event{Type: session.EventCallStart, CallID: "call-7"}))
	require.NoError(t, s.HandleEvent(ctx, session.Event{Type: session.EventTranscript, Role: "user", Text: "thanks"}))

	outcome, err := s.End(ctx, session.ReasonUser)

	require.NoError(t, err)
	assert.Equal(t, "vapi", outcome.TranscriptSource)
	assert.Equal(t, []string{"bot: Bye"}, outcome.Transcript)

	stored := f.store.conversationList()[0]
	require.NotNil(t, stored.EndedAt)
	assert.Equal(t, "call-7", *stored.VapiCallId)
}

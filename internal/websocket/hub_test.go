package websocket

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ai-voice-assistant-be/internal/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub(nil, "voice_session_events", logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)
	return hub
}

func attach(t *testing.T, hub *Hub, userID uuid.UUID, buffer int) *Client {
	t.Helper()
	c := &Client{Hub: hub, UserID: userID, Send: make(chan []byte, buffer)}
	require.True(t, hub.join(c))
	return c
}

func TestSendToUserReachesEveryTab(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	a := attach(t, hub, user, 4)
	b := attach(t, hub, user, 4)
	other := attach(t, hub, uuid.New(), 4)
	require.Eventually(t, func() bool { return hub.ConnectedClients(user) == 2 }, time.Second, 5*time.Millisecond)

	hub.SendToUser(user, map[string]interface{}{"type": "quota", "remaining": 2})

	for _, c := range []*Client{a, b} {
		select {
		case raw := <-c.Send:
			var frame map[string]interface{}
			require.NoError(t, json.Unmarshal(raw, &frame))
			assert.Equal(t, "quota", frame["type"])
		case <-time.After(time.Second):
			t.Fatal("frame not delivered")
		}
	}
	assert.Empty(t, other.Send)
}

func TestFullBufferDropsInsteadOfDisconnecting(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	c := attach(t, hub, user, 1)
	require.Eventually(t, func() bool { return hub.ConnectedClients(user) == 1 }, time.Second, 5*time.Millisecond)

	hub.SendToUser(user, "first")
	hub.SendToUser(user, "second")

	assert.Equal(t, 1, hub.ConnectedClients(user))
	assert.Equal(t, `"first"`, string(<-c.Send))
}

func TestUnregisterClosesSend(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	c := attach(t, hub, user, 1)

	hub.leave(c)

	require.Eventually(t, func() bool { return hub.ConnectedClients(user) == 0 }, time.Second, 5*time.Millisecond)
	_, open := <-c.Send
	assert.False(t, open)
}

func TestRelaySkipsOwnEcho(t *testing.T) {
	hub := startHub(t)
	user := uuid.New()
	c := attach(t, hub, user, 4)
	require.Eventually(t, func() bool { return hub.ConnectedClients(user) == 1 }, time.Second, 5*time.Millisecond)

	own, _ := json.Marshal(clusterMessage{Origin: hub.origin, TargetUserID: user.String(), Message: json.RawMessage(`{"n":1}`)})
	foreign, _ := json.Marshal(clusterMessage{Origin: "other-instance", TargetUserID: user.String(), Message: json.RawMessage(`{"n":2}`)})

	hub.relay(own)
	hub.relay(foreign)
	hub.relay([]byte("not json"))

	require.Len(t, c.Send, 1)
	assert.JSONEq(t, `{"n":2}`, string(<-c.Send))
}

func TestJoinAfterShutdownFails(t *testing.T) {
	hub := NewHub(nil, "voice_session_events", logger.NewNopLogger())
	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(finished)
	}()
	cancel()
	<-finished

	assert.False(t, hub.join(&Client{Hub: hub, UserID: uuid.New(), Send: make(chan []byte)}))
}

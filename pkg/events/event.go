package events

import (
	"context"
	"time"
)

const (
	TypeAssistantProvisioned = "ASSISTANT_PROVISIONED"
	TypeCallStarted          = "CALL_STARTED"
	TypeCallEnded            = "CALL_ENDED"
	TypeQuotaExhausted       = "QUOTA_EXHAUSTED"
	TypeOnboardingCompleted  = "ONBOARDING_COMPLETED"
)

// KeyAuthUserID is the payload key every event carries so consumers can route
// it back to the user's live connections.
const KeyAuthUserID = "auth_user_id"

// Event defines the contract for all system events.
type Event interface {
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// Publisher is what services depend on. The NATS publisher implements it.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func New(eventType, authUserID string, data map[string]interface{}) BaseEvent {
	if data == nil {
		data = make(map[string]interface{})
	}
	data[KeyAuthUserID] = authUserID
	return BaseEvent{Type: eventType, Data: data, OccurredAt: time.Now()}
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// AuthUserID returns the routing key set by New, or "".
func (e BaseEvent) AuthUserID() string {
	id, _ := e.Data[KeyAuthUserID].(string)
	return id
}

// Envelope is the wire form on the bus.
type Envelope struct {
	Type       string                 `json:"type"`
	OccurredAt time.Time              `json:"occurred_at"`
	Data       map[string]interface{} `json:"data"`
}

func ToEnvelope(e Event) Envelope {
	return Envelope{Type: e.EventType(), OccurredAt: e.Timestamp(), Data: e.Payload()}
}

func (env Envelope) Event() BaseEvent {
	return BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}
}

package service

import (
	"context"
	"time"

	"ai-voice-assistant-be/internal/pkg/logger"
	"ai-voice-assistant-be/pkg/events"
	pktNats "ai-voice-assistant-be/pkg/nats"

	"github.com/google/uuid"
)

const activityDurable = "activity-feed"

// UserNotifier pushes a JSON frame to every live connection of a user.
type UserNotifier interface {
	SendToUser(userID uuid.UUID, frame interface{})
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, subject, durableName string, handler pktNats.EventHandler) error
}

type ActivityFrame struct {
	Type       string                 `json:"type"`
	Event      string                 `json:"event"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt string                 `json:"occurred_at"`
}

type QuotaFrame struct {
	Type      string `json:"type"`
	Remaining int    `json:"remaining"`
	Unlimited bool   `json:"unlimited"`
}

// IActivityService relays domain events from the bus to the dashboard so the
// remaining-calls counter and history refresh without polling.
type IActivityService interface {
	Start(ctx context.Context) error
	Handle(ctx context.Context, event events.Event) error
}

type activityService struct {
	subscriber EventSubscriber
	notifier   UserNotifier
	logger     logger.ILogger
}

func NewActivityService(subscriber EventSubscriber, notifier UserNotifier, logger logger.ILogger) IActivityService {
	return &activityService{
		subscriber: subscriber,
		notifier:   notifier,
		logger:     logger,
	}
}

func (s *activityService) Start(ctx context.Context) error {
	if s.subscriber == nil {
		s.logger.Warn("ACTIVITY", "No event subscriber configured, activity feed disabled", nil)
		return nil
	}
	return s.subscriber.Subscribe(ctx, pktNats.SubjectPrefix+".>", activityDurable, s.Handle)
}

func (s *activityService) Handle(ctx context.Context, event events.Event) error {
	payload := event.Payload()
	rawID, _ := payload[events.KeyAuthUserID].(string)
	userID, err := uuid.Parse(rawID)
	if err != nil {
		// Not routable; acking is the only sane outcome.
		s.logger.Warn("ACTIVITY", "Dropping event without user", map[string]interface{}{"type": event.EventType()})
		return nil
	}

	data := make(map[string]interface{}, len(payload))
	for k, v := range payload {
		if k != events.KeyAuthUserID {
			data[k] = v
		}
	}

	s.notifier.SendToUser(userID, ActivityFrame{
		Type:       "activity",
		Event:      event.EventType(),
		Data:       data,
		OccurredAt: event.Timestamp().UTC().Format(time.RFC3339),
	})

	switch event.EventType() {
	case events.TypeCallStarted, events.TypeQuotaExhausted:
		unlimited, _ := payload["unlimited"].(bool)
		s.notifier.SendToUser(userID, QuotaFrame{
			Type:      "quota",
			Remaining: asInt(payload["remaining"]),
			Unlimited: unlimited,
		})
	}
	return nil
}

// asInt reads a JSON number that may have been decoded as float64.
func asInt(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

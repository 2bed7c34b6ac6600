package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-voice-assistant-be/internal/dto"
	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/pkg/logger"
	"ai-voice-assistant-be/internal/repository/unitofwork"
	"ai-voice-assistant-be/pkg/vapi"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// IReconcileService drains the orphaned-assistant topic. The assistant id in
// each message was already returned to a caller, so the remote assistant is
// never deleted here: the insert is retried with backoff and, once attempts
// run out, the drift is left to the cleanup route.
type IReconcileService interface {
	Consume(ctx context.Context) error
}

// RetryPolicy bounds the insert retries for one orphan.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration // doubled after every failed attempt
}

func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.Attempts <= 0 {
		p.Attempts = 5
	}
	if p.Backoff <= 0 {
		p.Backoff = time.Second
	}
	return p
}

type reconcileService struct {
	pubSub     *gochannel.GoChannel
	topicName  string
	uowFactory unitofwork.RepositoryFactory
	vapiClient vapi.Client
	retry      RetryPolicy
	logger     logger.ILogger
}

func NewReconcileService(
	pubSub *gochannel.GoChannel,
	topicName string,
	uowFactory unitofwork.RepositoryFactory,
	vapiClient vapi.Client,
	retry RetryPolicy,
	logger logger.ILogger,
) IReconcileService {
	return &reconcileService{
		pubSub:     pubSub,
		topicName:  topicName,
		uowFactory: uowFactory,
		vapiClient: vapiClient,
		retry:      retry.withDefaults(),
		logger:     logger,
	}
}

func (rs *reconcileService) Consume(ctx context.Context) error {
	messages, err := rs.pubSub.Subscribe(ctx, rs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			rs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (rs *reconcileService) processMessage(ctx context.Context, msg *message.Message) {
	// Retries happen in-process; redelivery would only repeat them.
	defer msg.Ack()

	var payload dto.OrphanedAssistantMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		rs.logger.Error("RECONCILE", "Failed to unmarshal orphan message", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	record := &entity.VoiceAssistant{
		Id:              payload.RecordId,
		UserId:          payload.UserId,
		Mode:            payload.Mode,
		VapiAssistantId: payload.VapiAssistantId,
		Tone:            payload.Tone,
		Language:        payload.Language,
		CreatedAt:       payload.CreatedAt,
	}

	backoff := rs.retry.Backoff
	var insertErr error
	for attempt := 1; attempt <= rs.retry.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				rs.logger.Warn("RECONCILE", "Stopped before orphan was stored", map[string]interface{}{
					"vapi_assistant_id": payload.VapiAssistantId,
				})
				return
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		// A remote assistant removed in the meantime needs no local record.
		if exists, err := rs.vapiClient.AssistantExists(ctx, payload.VapiAssistantId); err == nil && !exists {
			rs.logger.Info("RECONCILE", "Orphaned assistant no longer exists remotely", map[string]interface{}{
				"vapi_assistant_id": payload.VapiAssistantId,
			})
			return
		}

		uow := rs.uowFactory.NewUnitOfWork(ctx)
		insertErr = uow.VoiceAssistantRepository().Create(ctx, record)
		if insertErr == nil {
			rs.logger.Info("RECONCILE", "Stored orphaned assistant on retry", map[string]interface{}{
				"vapi_assistant_id": payload.VapiAssistantId,
				"attempt":           attempt,
			})
			return
		}
	}

	rs.logger.Error("RECONCILE", "Giving up on orphaned assistant, left for cleanup", map[string]interface{}{
		"vapi_assistant_id": payload.VapiAssistantId,
		"attempts":          rs.retry.Attempts,
		"error":             insertErr.Error(),
	})
}

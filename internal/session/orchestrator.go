// Package session runs live voice calls on the server: it tracks the call
// state relayed by the client, enforces the duration ceiling and closes the
// conversation exactly once however the call ends.
package session

import (
	"errors"
	"time"

	"ai-voice-assistant-be/internal/entity"
	"ai-voice-assistant-be/internal/pkg/logger"
	"ai-voice-assistant-be/internal/repository/memory"

	"github.com/google/uuid"
)

var ErrNotOwner = errors.New("session belongs to another user")

type Config struct {
	Ceiling          time.Duration
	Tick             time.Duration
	TerminateTimeout time.Duration
}

// DefaultCeiling applies when no positive ceiling is configured.
const DefaultCeiling = 180 * time.Second

// registryGrace keeps a session registered a little past its ceiling so a
// late socket reconnect still finds it.
const registryGrace = 5 * time.Minute

type Orchestrator struct {
	cfg        Config
	registry   *memory.SessionRepository[*Session]
	terminator Terminator
	notifier   Notifier
	logger     logger.ILogger
	now        func() time.Time
}

func NewOrchestrator(cfg Config, terminator Terminator, notifier Notifier, log logger.ILogger) *Orchestrator {
	if cfg.Ceiling <= 0 {
		cfg.Ceiling = DefaultCeiling
	}
	if cfg.Tick <= 0 {
		cfg.Tick = time.Second
	}
	if cfg.TerminateTimeout <= 0 {
		cfg.TerminateTimeout = 30 * time.Second
	}

	registry := memory.NewSessionRepository[*Session](cfg.Ceiling + registryGrace)
	registry.OnEvicted(func(_ string, s *Session) {
		s.halt()
	})

	return &Orchestrator{
		cfg:        cfg,
		registry:   registry,
		terminator: terminator,
		notifier:   notifier,
		logger:     log,
		now:        time.Now,
	}
}

// Open registers a session for the conversation, or returns the live one
// when the same user reconnects.
func (o *Orchestrator) Open(conversationID uuid.UUID, authUser entity.AuthUser, startedAt time.Time) (*Session, error) {
	s, created := o.registry.SaveIfAbsent(conversationID.String(), newSession(o, conversationID, authUser, startedAt))
	if s.AuthUser.Id != authUser.Id {
		return nil, ErrNotOwner
	}
	if created {
		o.logger.Info("Session", "Session opened", map[string]interface{}{
			"conversation_id": conversationID.String(),
			"user_id":         authUser.Id.String(),
		})
	}
	return s, nil
}

func (o *Orchestrator) Get(conversationID uuid.UUID) (*Session, bool) {
	return o.registry.Get(conversationID.String())
}

func (o *Orchestrator) Active() int {
	return o.registry.Count()
}

func (o *Orchestrator) remove(conversationID uuid.UUID) {
	o.registry.Delete(conversationID.String())
}

func (o *Orchestrator) ceilingSeconds() int {
	return int(o.cfg.Ceiling / time.Second)
}

package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"ai-voice-assistant-be/internal/entity"

	"github.com/google/uuid"
)

type State string

const (
	StateIdle       State = "idle"
	StateConnecting State = "connecting"
	StateConnected  State = "connected"
	StateSpeaking   State = "speaking"
	StateListening  State = "listening"
	StateEnded      State = "ended"
)

type EndReason string

const (
	ReasonUser    EndReason = "user"
	ReasonTimeout EndReason = "timeout"
	ReasonCallEnd EndReason = "call-end"
	ReasonError   EndReason = "error"
)

// Client event types relayed over the session socket.
const (
	EventCallStart   = "call-start"
	EventSpeechStart = "speech-start"
	EventSpeechEnd   = "speech-end"
	EventTranscript  = "transcript"
	EventCallEnd     = "call-end"
	EventError       = "error"
	EventStop        = "stop"
)

// Frame types pushed back to the user.
const (
	FrameState = "session_state"
	FrameTick  = "session_tick"
	FrameEnded = "session_ended"
	FrameError = "session_error"
)

var (
	ErrUnknownEvent = errors.New("unknown session event")
	ErrEnded        = errors.New("session already ended")
)

type Event struct {
	Type    string `json:"type"`
	CallID  string `json:"callId,omitempty"`
	Message string `json:"message,omitempty"`
	Text    string `json:"text,omitempty"`
	Role    string `json:"role,omitempty"`
}

// Termination is everything the server needs to close the conversation.
type Termination struct {
	ConversationID uuid.UUID
	AuthUser       entity.AuthUser
	Duration       float64
	CallID         string
	Transcript     []string
	Reason         EndReason
}

type Outcome struct {
	Transcript       []string `json:"transcript"`
	TranscriptSource string   `json:"transcriptSource"`
	RecordingURL     *string  `json:"recordingUrl,omitempty"`
	DurationSeconds  int      `json:"durationSeconds"`
}

type Terminator interface {
	Terminate(ctx context.Context, t Termination) (*Outcome, error)
}

type TerminatorFunc func(ctx context.Context, t Termination) (*Outcome, error)

func (f TerminatorFunc) Terminate(ctx context.Context, t Termination) (*Outcome, error) {
	return f(ctx, t)
}

type Notifier interface {
	SendToUser(userID uuid.UUID, frame interface{})
}

type Frame struct {
	Type           string    `json:"type"`
	ConversationID uuid.UUID `json:"conversationId"`
	State          State     `json:"state"`
	Elapsed        int       `json:"elapsed"`
	Remaining      int       `json:"remaining"`
	Reason         EndReason `json:"reason,omitempty"`
	Message        string    `json:"message,omitempty"`
	Outcome        *Outcome  `json:"outcome,omitempty"`
}

// Session drives one live call. All transitions happen under mu; the
// terminator runs outside it.
type Session struct {
	ID        uuid.UUID
	AuthUser  entity.AuthUser
	StartedAt time.Time

	orch *Orchestrator

	mu          sync.Mutex
	state       State
	callID      string
	transcript  []string
	connectedAt time.Time
	stopTick    chan struct{}

	done    chan struct{}
	outcome *Outcome
	endErr  error
}

func newSession(orch *Orchestrator, id uuid.UUID, authUser entity.AuthUser, startedAt time.Time) *Session {
	return &Session{
		ID:        id,
		AuthUser:  authUser,
		StartedAt: startedAt,
		orch:      orch,
		state:     StateIdle,
		done:      make(chan struct{}),
	}
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) Transcript() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.transcript...)
}

// Done is closed once the session has been terminated.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Connect marks the client as dialing the provider. Reconnecting sockets
// get the current state back unchanged.
func (s *Session) Connect() State {
	s.mu.Lock()
	if s.state == StateIdle {
		s.state = StateConnecting
	}
	state := s.state
	s.mu.Unlock()

	s.notify(Frame{Type: FrameState, State: state})
	return state
}

func (s *Session) HandleEvent(ctx context.Context, ev Event) error {
	switch ev.Type {
	case EventCallStart:
		return s.callStarted(ev.CallID)
	case EventSpeechStart:
		return s.speech(StateSpeaking)
	case EventSpeechEnd:
		return s.speech(StateListening)
	case EventTranscript:
		return s.appendTranscript(ev.Role, ev.Text)
	case EventCallEnd:
		_, err := s.End(ctx, ReasonCallEnd)
		return err
	case EventStop:
		_, err := s.End(ctx, ReasonUser)
		return err
	case EventError:
		return s.failed(ctx, ev.Message)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
}

func (s *Session) callStarted(callID string) error {
	s.mu.Lock()
	switch s.state {
	case StateEnded:
		s.mu.Unlock()
		return ErrEnded
	case StateIdle, StateConnecting:
	default:
		s.mu.Unlock()
		return nil
	}
	s.state = StateConnected
	if callID != "" {
		s.callID = callID
	}
	s.connectedAt = s.orch.now()
	stop := make(chan struct{})
	s.stopTick = stop
	connectedAt := s.connectedAt
	s.mu.Unlock()

	go s.tick(stop, connectedAt)

	s.orch.logger.Info("Session", "Call connected", map[string]interface{}{
		"conversation_id": s.ID.String(),
		"call_id":         callID,
	})
	s.notify(Frame{Type: FrameState, State: StateConnected, Remaining: s.orch.ceilingSeconds()})
	return nil
}

func (s *Session) speech(next State) error {
	s.mu.Lock()
	switch s.state {
	case StateEnded:
		s.mu.Unlock()
		return ErrEnded
	case StateConnected, StateSpeaking, StateListening:
	default:
		s.mu.Unlock()
		return nil
	}
	changed := s.state != next
	s.state = next
	s.mu.Unlock()

	if changed {
		s.notify(Frame{Type: FrameState, State: next})
	}
	return nil
}

func (s *Session) appendTranscript(role, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	line := text
	if role = strings.TrimSpace(role); role != "" {
		line = role + ": " + text
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateEnded {
		return ErrEnded
	}
	s.transcript = append(s.transcript, line)
	return nil
}

// failed handles a provider error. Before the call connects the session
// resets to idle so the user can retry; afterwards the call is ended.
func (s *Session) failed(ctx context.Context, message string) error {
	if message == "" {
		message = "Call failed"
	}

	s.mu.Lock()
	state := s.state
	if state == StateIdle || state == StateConnecting {
		s.state = StateIdle
	}
	s.mu.Unlock()

	switch state {
	case StateEnded:
		return ErrEnded
	case StateIdle, StateConnecting:
		s.orch.logger.Warn("Session", "Call failed before connecting", map[string]interface{}{
			"conversation_id": s.ID.String(),
			"message":         message,
		})
		s.notify(Frame{Type: FrameError, State: StateIdle, Message: message})
		return nil
	default:
		_, err := s.End(ctx, ReasonError)
		return err
	}
}

// End terminates the session once. Later callers wait for the first
// termination and get its outcome.
func (s *Session) End(_ context.Context, reason EndReason) (*Outcome, error) {
	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		<-s.done
		return s.outcome, s.endErr
	}
	s.state = StateEnded
	s.haltLocked()

	from := s.StartedAt
	if !s.connectedAt.IsZero() {
		from = s.connectedAt
	}
	duration := s.orch.now().Sub(from).Seconds()
	if duration < 0 {
		duration = 0
	}
	term := Termination{
		ConversationID: s.ID,
		AuthUser:       s.AuthUser,
		Duration:       duration,
		CallID:         s.callID,
		Transcript:     append([]string(nil), s.transcript...),
		Reason:         reason,
	}
	s.mu.Unlock()

	// The socket may already be gone; the conversation still has to close.
	termCtx, cancel := context.WithTimeout(context.Background(), s.orch.cfg.TerminateTimeout)
	defer cancel()
	outcome, err := s.orch.terminator.Terminate(termCtx, term)

	s.outcome = outcome
	s.endErr = err
	defer close(s.done)
	s.orch.remove(s.ID)

	if err != nil {
		s.orch.logger.Error("Session", "Failed to end conversation", map[string]interface{}{
			"conversation_id": s.ID.String(),
			"reason":          string(reason),
			"error":           err.Error(),
		})
		s.notify(Frame{Type: FrameError, State: StateEnded, Reason: reason, Message: "Failed to save conversation"})
		return nil, err
	}

	s.orch.logger.Info("Session", "Conversation ended", map[string]interface{}{
		"conversation_id": s.ID.String(),
		"reason":          string(reason),
		"duration":        duration,
	})
	s.notify(Frame{Type: FrameEnded, State: StateEnded, Reason: reason, Elapsed: int(duration), Outcome: outcome})
	return outcome, nil
}

// Detach retires the session without terminating the conversation, for
// when the client closes the call over HTTP itself.
func (s *Session) Detach() {
	s.mu.Lock()
	if s.state == StateEnded {
		s.mu.Unlock()
		return
	}
	s.state = StateEnded
	s.haltLocked()
	s.mu.Unlock()

	close(s.done)
	s.orch.remove(s.ID)
}

func (s *Session) tick(stop <-chan struct{}, connectedAt time.Time) {
	ticker := time.NewTicker(s.orch.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			elapsed := s.orch.now().Sub(connectedAt)
			if elapsed >= s.orch.cfg.Ceiling {
				s.End(context.Background(), ReasonTimeout)
				return
			}
			seconds := int(elapsed / time.Second)
			s.notify(Frame{
				Type:      FrameTick,
				State:     s.State(),
				Elapsed:   seconds,
				Remaining: s.orch.ceilingSeconds() - seconds,
			})
		}
	}
}

func (s *Session) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.haltLocked()
}

func (s *Session) haltLocked() {
	if s.stopTick != nil {
		close(s.stopTick)
		s.stopTick = nil
	}
}

func (s *Session) notify(frame Frame) {
	if s.orch.notifier == nil {
		return
	}
	frame.ConversationID = s.ID
	s.orch.notifier.SendToUser(s.AuthUser.Id, frame)
}

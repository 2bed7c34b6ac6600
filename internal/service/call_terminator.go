package service

import (
	"context"

	"ai-voice-assistant-be/internal/dto"
	"ai-voice-assistant-be/internal/session"
)

// NewCallTerminator closes server-driven sessions through the same path as
// the end-call endpoint.
func NewCallTerminator(calls ICallService) session.Terminator {
	return session.TerminatorFunc(func(ctx context.Context, t session.Termination) (*session.Outcome, error) {
		duration := t.Duration
		res, err := calls.EndCall(ctx, t.AuthUser, &dto.EndCallRequest{
			ConversationId: t.ConversationID.String(),
			Duration:       &duration,
			Transcript:     t.Transcript,
			VapiCallId:     t.CallID,
		})
		if err != nil {
			return nil, err
		}
		return &session.Outcome{
			Transcript:       res.Transcript,
			TranscriptSource: res.TranscriptSource,
			RecordingURL:     res.RecordingUrl,
			DurationSeconds:  res.DurationSeconds,
		}, nil
	})
}

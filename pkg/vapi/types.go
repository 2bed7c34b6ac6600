package vapi

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Model struct {
	Provider string    `json:"provider"`
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

type Voice struct {
	Provider string `json:"provider"`
	VoiceID  string `json:"voiceId"`
}

type Transcriber struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Language string `json:"language,omitempty"`
}

// AssistantRequest is the body of POST /assistant.
type AssistantRequest struct {
	Name               string       `json:"name"`
	Model              Model        `json:"model"`
	Voice              Voice        `json:"voice"`
	Transcriber        *Transcriber `json:"transcriber,omitempty"`
	FirstMessage       string       `json:"firstMessage,omitempty"`
	MaxDurationSeconds int          `json:"maxDurationSeconds,omitempty"`
	EndCallMessage     string       `json:"endCallMessage,omitempty"`
	EndCallPhrases     []string     `json:"endCallPhrases,omitempty"`
	RecordingEnabled   bool         `json:"recordingEnabled"`
	BackgroundSound    string       `json:"backgroundSound,omitempty"`
}

type Assistant struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// Call is the subset of GET /call/{id} the backend uses. Vapi has shipped
// the transcript under several shapes; UnmarshalJSON folds all of them into
// Utterances.
type Call struct {
	ID           string
	Status       string
	EndedReason  string
	RecordingURL string
	Utterances   []string
}

type rawCall struct {
	ID            string          `json:"id"`
	Status        string          `json:"status"`
	EndedReason   string          `json:"endedReason"`
	Transcript    json.RawMessage `json:"transcript"`
	Messages      json.RawMessage `json:"messages"`
	Conversation  json.RawMessage `json:"conversation"`
	RecordingURL  string          `json:"recordingUrl"`
	RecordingURL2 string          `json:"recording_url"`
	Artifact      *struct {
		Transcript   json.RawMessage `json:"transcript"`
		Messages     json.RawMessage `json:"messages"`
		RecordingURL string          `json:"recordingUrl"`
	} `json:"artifact"`
}

type rawUtterance struct {
	Role    string `json:"role"`
	Message string `json:"message"`
	Content string `json:"content"`
	Text    string `json:"text"`
}

func (c *Call) UnmarshalJSON(data []byte) error {
	var raw rawCall
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.ID = raw.ID
	c.Status = raw.Status
	c.EndedReason = raw.EndedReason

	switch {
	case raw.RecordingURL != "":
		c.RecordingURL = raw.RecordingURL
	case raw.RecordingURL2 != "":
		c.RecordingURL = raw.RecordingURL2
	case raw.Artifact != nil:
		c.RecordingURL = raw.Artifact.RecordingURL
	}

	candidates := []json.RawMessage{raw.Transcript, raw.Messages, raw.Conversation}
	if raw.Artifact != nil {
		candidates = append(candidates, raw.Artifact.Messages, raw.Artifact.Transcript)
	}

	// Arrays win over flat strings; the first non-empty shape is used.
	for _, candidate := range candidates {
		if lines := decodeUtteranceArray(candidate); len(lines) > 0 {
			c.Utterances = lines
			return nil
		}
	}
	for _, candidate := range candidates {
		if lines := decodeUtteranceText(candidate); len(lines) > 0 {
			c.Utterances = lines
			return nil
		}
	}
	return nil
}

func decodeUtteranceArray(data json.RawMessage) []string {
	if len(data) == 0 || data[0] != '[' {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		var text string
		if err := json.Unmarshal(item, &text); err == nil {
			if text = strings.TrimSpace(text); text != "" {
				lines = append(lines, text)
			}
			continue
		}

		var u rawUtterance
		if err := json.Unmarshal(item, &u); err != nil {
			continue
		}
		if u.Role == "system" {
			continue
		}
		body := firstNonEmpty(u.Message, u.Content, u.Text)
		if body == "" {
			continue
		}
		if u.Role != "" {
			body = fmt.Sprintf("%s: %s", u.Role, body)
		}
		lines = append(lines, body)
	}
	return lines
}

func decodeUtteranceText(data json.RawMessage) []string {
	if len(data) == 0 || data[0] != '"' {
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return nil
	}

	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

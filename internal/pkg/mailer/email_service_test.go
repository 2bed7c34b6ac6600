package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewEmailServiceDisabledWithoutHost(t *testing.T) {
	assert.Nil(t, NewEmailService("", 587, "", "", "Voice Assistant"))
	assert.NotNil(t, NewEmailService("smtp.example.com", 587, "bot@example.com", "pw", "Voice Assistant"))
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(ConversationSummary{
		Name:            "Ana <3",
		Mode:            "Life Coach",
		DurationSeconds: 125,
		Transcript:      []string{"bot: Hello!", "user: <b>hi</b>"},
	})

	assert.Contains(t, out, "Ana &lt;3")
	assert.Contains(t, out, "your life coach")
	assert.Contains(t, out, "2:05")
	assert.Contains(t, out, "user: &lt;b&gt;hi&lt;/b&gt;")

	empty := RenderSummary(ConversationSummary{Mode: "Tutor"})
	assert.Contains(t, empty, "No transcript was captured")
}

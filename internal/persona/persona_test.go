package persona

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValid(t *testing.T) {
	for _, mode := range []string{"Assistant", "Friend", "Life Coach", "Tutor", "Wellness Guide", "scheduling", "sales", "service"} {
		assert.True(t, Valid(mode), mode)
	}
	assert.False(t, Valid("Pirate"))
	assert.False(t, Valid(""))
}

func TestBuildSystemPromptComposesParts(t *testing.T) {
	prompt := BuildSystemPrompt(ModeSales, "Professional", "arabic")

	assert.True(t, strings.HasPrefix(prompt, basePrompts[ModeSales]))
	assert.Contains(t, prompt, "clear and formal")
	assert.Contains(t, prompt, "Arabic")
}

func TestBuildSystemPromptDefaults(t *testing.T) {
	prompt := BuildSystemPrompt(ModeFriend, "", "")

	assert.Contains(t, prompt, toneModifiers[ToneFriendly])
	assert.Contains(t, prompt, "Always respond in English.")
}

func TestFirstMessage(t *testing.T) {
	assert.Equal(t, "Hello! I'm your life coach. How can I help you today?", FirstMessage(ModeLifeCoach, "english"))
	assert.Equal(t, "Hello! I'm your tutor. How can I help you today?", FirstMessage(ModeTutor, "klingon"))
}

func TestTranscriberLanguage(t *testing.T) {
	assert.Equal(t, "ar", TranscriberLanguage("Arabic"))
	assert.Equal(t, "en", TranscriberLanguage(""))
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Scheduling Assistant", DisplayName(ModeScheduling))
	assert.Equal(t, "Friend Assistant", DisplayName(ModeFriend))
}

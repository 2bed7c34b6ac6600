// Package persona holds the prompt material sent to Vapi when an assistant
// is created: one base prompt per mode, tone modifiers and language
// instructions.
package persona

import (
	"fmt"
	"strings"
)

const (
	ModeAssistant  = "Assistant"
	ModeFriend     = "Friend"
	ModeLifeCoach  = "Life Coach"
	ModeTutor      = "Tutor"
	ModeWellness   = "Wellness Guide"
	ModeScheduling = "scheduling"
	ModeSales      = "sales"
	ModeService    = "service"
)

const (
	ToneProfessional = "professional"
	ToneCasual       = "casual"
	ToneFriendly     = "friendly"

	LanguageEnglish = "english"
	LanguageArabic  = "arabic"
)

var basePrompts = map[string]string{
	ModeAssistant: "You are a helpful AI assistant. Provide clear, accurate, and helpful responses to user questions. " +
		"Be professional, friendly, and concise. Focus on being useful and informative.",
	ModeFriend: "You are a supportive friend having a casual conversation. Be warm, empathetic, and encouraging. " +
		"Use a conversational tone and show genuine interest in what the user is sharing. Be positive and supportive.",
	ModeLifeCoach: "You are an experienced life coach helping someone work through challenges and achieve their goals. " +
		"Ask thoughtful questions, provide guidance, and help them gain clarity. Be motivational and solution-focused.",
	ModeTutor: "You are a knowledgeable tutor ready to help with learning and education. Explain concepts clearly, " +
		"provide examples, and adapt your teaching style to the user's level. Be patient and encouraging.",
	ModeWellness: "You are a wellness guide focused on mental health, mindfulness, and personal well-being. " +
		"Provide gentle guidance, suggest coping strategies, and create a safe space for emotional support. " +
		"Be compassionate and non-judgmental.",
	ModeScheduling: "You are a scheduling assistant. Help the user book, move and cancel appointments. " +
		"Confirm the date, time and time zone before finalizing anything and read the final booking back to the user.",
	ModeSales: "You are a sales assistant. Learn what the user needs, recommend a fitting product or plan, " +
		"and answer pricing questions honestly. Never pressure the user.",
	ModeService: "You are a customer service assistant. Listen to the user's problem, ask clarifying questions, " +
		"and walk them through a resolution step by step. Offer to escalate when you cannot solve it.",
}

var toneModifiers = map[string]string{
	ToneProfessional: "Keep your tone clear and formal.",
	ToneCasual:       "Keep your tone relaxed and friendly, like talking to a peer.",
	ToneFriendly:     "Keep your tone warm and supportive.",
}

type language struct {
	instruction  string
	transcriber  string
	firstMessage string
}

var languages = map[string]language{
	LanguageEnglish: {
		instruction:  "Always respond in English.",
		transcriber:  "en",
		firstMessage: "Hello! I'm your %s. How can I help you today?",
	},
	LanguageArabic: {
		instruction:  "Always respond in Modern Standard Arabic, even if the user mixes in other languages.",
		transcriber:  "ar",
		firstMessage: "مرحباً! أنا %s الخاص بك. كيف يمكنني مساعدتك اليوم؟",
	},
}

// OnboardingModes are provisioned together when onboarding carries a tone.
var OnboardingModes = []string{ModeScheduling, ModeSales, ModeService}

func Valid(mode string) bool {
	_, ok := basePrompts[mode]
	return ok
}

func ValidTone(tone string) bool {
	_, ok := toneModifiers[tone]
	return ok
}

func ValidLanguage(lang string) bool {
	_, ok := languages[lang]
	return ok
}

// NormalizeTone lowercases tone and falls back to friendly.
func NormalizeTone(tone string) string {
	tone = strings.ToLower(strings.TrimSpace(tone))
	if tone == "" {
		return ToneFriendly
	}
	return tone
}

// NormalizeLanguage lowercases lang and falls back to english.
func NormalizeLanguage(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if lang == "" {
		return LanguageEnglish
	}
	return lang
}

// BuildSystemPrompt composes base prompt, tone modifier and language
// instruction. Unknown tone or language fall back to the defaults.
func BuildSystemPrompt(mode, tone, lang string) string {
	modifier, ok := toneModifiers[NormalizeTone(tone)]
	if !ok {
		modifier = toneModifiers[ToneFriendly]
	}
	return strings.Join([]string{basePrompts[mode], modifier, lookupLanguage(lang).instruction}, " ")
}

func FirstMessage(mode, lang string) string {
	return fmt.Sprintf(lookupLanguage(lang).firstMessage, strings.ToLower(mode))
}

func TranscriberLanguage(lang string) string {
	return lookupLanguage(lang).transcriber
}

func DisplayName(mode string) string {
	if mode == "" {
		return "Assistant"
	}
	return strings.ToUpper(mode[:1]) + mode[1:] + " Assistant"
}

func lookupLanguage(lang string) language {
	if l, ok := languages[NormalizeLanguage(lang)]; ok {
		return l
	}
	return languages[LanguageEnglish]
}

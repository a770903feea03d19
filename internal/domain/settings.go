package domain

import "fmt"

type Language string

const (
	LanguageFR Language = "fr"
	LanguageEN Language = "en"
	LanguageAR Language = "ar"
)

type ThemePreference string

const (
	ThemeLight  ThemePreference = "light"
	ThemeDark   ThemePreference = "dark"
	ThemeSystem ThemePreference = "system"
)

type TTSProvider string

const (
	TTSBrowser    TTSProvider = "browser"
	TTSElevenLabs TTSProvider = "elevenlabs"
)

// DefaultVoiceID is the ElevenLabs voice used until the user picks another.
const DefaultVoiceID = "XB0fDUnXU5powFXDhCwa"

// DefaultAIModel is the chat completion model used until the user picks another.
const DefaultAIModel = "gpt-4o-mini"

// Settings are the user's preferences, kept on the device.
type Settings struct {
	Language             Language        `json:"language"`
	Theme                ThemePreference `json:"theme"`
	VoiceEnabled         bool            `json:"voiceEnabled"`
	NotificationsEnabled bool            `json:"notificationsEnabled"`
	AIModel              string          `json:"aiModel"`
	TTSProvider          TTSProvider     `json:"ttsProvider"`
	ElevenVoiceID        string          `json:"elevenVoiceId"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		Language:             LanguageFR,
		Theme:                ThemeSystem,
		VoiceEnabled:         false,
		NotificationsEnabled: true,
		AIModel:              DefaultAIModel,
		TTSProvider:          TTSBrowser,
		ElevenVoiceID:        DefaultVoiceID,
	}
}

// Validate checks the enumerated fields.
func (s Settings) Validate() error {
	switch s.Language {
	case LanguageFR, LanguageEN, LanguageAR:
	default:
		return fmt.Errorf("unsupported language %q", s.Language)
	}
	switch s.Theme {
	case ThemeLight, ThemeDark, ThemeSystem:
	default:
		return fmt.Errorf("unsupported theme %q", s.Theme)
	}
	switch s.TTSProvider {
	case TTSBrowser, TTSElevenLabs:
	default:
		return fmt.Errorf("unsupported tts provider %q", s.TTSProvider)
	}
	if s.AIModel == "" {
		return fmt.Errorf("ai model is required")
	}
	return nil
}

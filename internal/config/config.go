package config

import (
	"os"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v3"
	"github.com/go-ozzo/ozzo-validation/v3/is"
	"github.com/rs/zerolog/log"
)

// Mode is the verdict generation strategy, resolved from configuration
// once per request.
type Mode string

const (
	ModeMock    Mode = "mock"
	ModeWebhook Mode = "webhook"
	ModeVision  Mode = "vision"
)

type Config struct {
	Port          string
	Mode          string
	WebhookURL    string
	OpenAIKey     string
	OpenAIBaseURL string
	VisionModel   string
	GuestlistCode string
	MockOutcome   string
}

func FromEnv() Config {
	c := Config{}
	c.Port = getenv("PORT", "8080")
	c.Mode = getenv("BOUNCER_MODE", "mock")
	c.WebhookURL = os.Getenv("N8N_WEBHOOK_URL")
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	c.OpenAIBaseURL = os.Getenv("OPENAI_BASE_URL")
	c.VisionModel = getenv("VISION_MODEL", "gpt-4o-mini")
	c.GuestlistCode = os.Getenv("GUESTLIST_CODE")
	c.MockOutcome = os.Getenv("MOCK_OUTCOME")
	return c
}

// ResolveMode maps the configured mode string onto the closed mode set.
// Anything unrecognized or empty resolves to mock; a bad value must never
// fail a request.
func (c Config) ResolveMode() Mode {
	switch strings.ToLower(strings.TrimSpace(c.Mode)) {
	case "webhook", "n8n":
		return ModeWebhook
	case "vision", "openai":
		return ModeVision
	default:
		return ModeMock
	}
}

// Validate checks that the selected mode has what it needs. A missing
// delegate endpoint or credential is fatal at startup, not per request.
func (c Config) Validate() error {
	switch c.ResolveMode() {
	case ModeWebhook:
		return validation.ValidateStruct(
			&c,
			validation.Field(&c.Port, validation.Required),
			validation.Field(&c.WebhookURL, validation.Required, is.URL),
		)
	case ModeVision:
		return validation.ValidateStruct(
			&c,
			validation.Field(&c.Port, validation.Required),
			validation.Field(&c.OpenAIKey, validation.Required),
			validation.Field(&c.VisionModel, validation.Required),
		)
	default:
		return validation.ValidateStruct(
			&c,
			validation.Field(&c.Port, validation.Required),
		)
	}
}

// LogStartup reports once, at boot, which configuration is in effect.
// Keys and presence only, never secret values.
func (c Config) LogStartup() {
	log.Info().
		Str("mode", string(c.ResolveMode())).
		Bool("webhookURL", c.WebhookURL != "").
		Bool("openaiKey", c.OpenAIKey != "").
		Bool("guestlist", c.GuestlistCode != "").
		Str("mockOutcome", c.MockOutcome).
		Msg("configuration loaded")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

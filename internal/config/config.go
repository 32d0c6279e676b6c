package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port            int
	LogLevel        string
	PhoneNumber     string
	VapiAPIKey      string
	VapiBaseURL     string
	VapiTimeout     time.Duration
	AnthropicAPIKey string
	ExtractModel    string
	LLMTimeout      time.Duration
	ContentDir      string
	ProfilePath     string
	NatsURL         string
	NatsToken       string
}

func Load() Config {
	return Config{
		Port:            envInt("CHECKIN_PORT", 8760),
		LogLevel:        envStr("LOG_LEVEL", "info"),
		PhoneNumber:     envStr("PHONE_NUMBER", ""),
		VapiAPIKey:      envStr("VAPI_API_KEY", ""),
		VapiBaseURL:     envStr("VAPI_BASE_URL", "https://api.vapi.ai"),
		VapiTimeout:     envDuration("VAPI_TIMEOUT", 15*time.Second),
		AnthropicAPIKey: envStr("ANTHROPIC_API_KEY", ""),
		ExtractModel:    envStr("CHECKIN_EXTRACT_MODEL", "claude-3-5-haiku-20241022"),
		LLMTimeout:      envDuration("LLM_TIMEOUT", 20*time.Second),
		ContentDir:      envStr("CONTENT_DIR", "content"),
		ProfilePath:     envStr("CHECKIN_PROFILE", ""),
		NatsURL:         envStr("NATS_URL", ""),
		NatsToken:       envStr("NATS_TOKEN", ""),
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

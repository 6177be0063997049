package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	TelegramBotToken string
	OwnerID          int64

	// MTProto credentials shared by every linked session
	TelegramAppID   int32
	TelegramAppHash string
	SessionFiles    []string
	PrimarySession  string

	LLMProvider string
	LLMEndpoint string
	LLMToken    string
	LLMModel    string

	PostgreDSN string
	LogLevel   string

	// Daily auto-sender defaults; runtime state lives in the store
	DailyPeerID int64
	DailyTimes  string

	EnkaTimeoutSeconds int
	MetricsAddr        string
}

func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	appID, err := parseInt32(getEnvOrDefault("TG_APP_ID", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid TG_APP_ID: %w", err)
	}

	ownerID, err := strconv.ParseInt(getEnvOrDefault("OWNER_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid OWNER_ID: %w", err)
	}

	dailyPeer, err := strconv.ParseInt(getEnvOrDefault("DAILY_PEER_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid DAILY_PEER_ID: %w", err)
	}

	enkaTimeout, err := strconv.Atoi(getEnvOrDefault("ENKA_TIMEOUT_SECONDS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid ENKA_TIMEOUT_SECONDS: %w", err)
	}

	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		OwnerID:          ownerID,
		TelegramAppID:    appID,
		TelegramAppHash:  os.Getenv("TG_APP_HASH"),
		SessionFiles:     splitList(os.Getenv("TG_SESSIONS")),
		PrimarySession:   os.Getenv("TG_PRIMARY_SESSION"),
		LLMProvider:      os.Getenv("LLM_PROVIDER"),
		LLMEndpoint:      os.Getenv("LLM_ENDPOINT"),
		LLMToken:         os.Getenv("LLM_TOKEN"),
		LLMModel:         os.Getenv("LLM_MODEL"),
		PostgreDSN:       os.Getenv("POSTGRE_DSN"),
		LogLevel:         getEnvOrDefault("LOG_LEVEL", "info"),
		DailyPeerID:      dailyPeer,
		DailyTimes:       getEnvOrDefault("DAILY_TIMES", "10:00,22:00"),

		EnkaTimeoutSeconds: enkaTimeout,
		MetricsAddr:        os.Getenv("METRICS_ADDR"),
	}

	if cfg.PrimarySession == "" && len(cfg.SessionFiles) > 0 {
		cfg.PrimarySession = cfg.SessionFiles[0]
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	required := map[string]string{
		"TELEGRAM_BOT_TOKEN": c.TelegramBotToken,
		"TG_APP_HASH":        c.TelegramAppHash,
	}

	for key, value := range required {
		if value == "" {
			return fmt.Errorf("required environment variable %s is not set", key)
		}
	}

	if c.TelegramAppID == 0 {
		return fmt.Errorf("required environment variable TG_APP_ID is not set")
	}
	if c.OwnerID == 0 {
		return fmt.Errorf("required environment variable OWNER_ID is not set")
	}
	if len(c.SessionFiles) == 0 {
		return fmt.Errorf("required environment variable TG_SESSIONS is not set")
	}

	return nil
}

func (c *Config) HasLLMConfig() bool {
	if c.LLMProvider == "" || c.LLMToken == "" || c.LLMModel == "" {
		return false
	}
	// Gemini goes through the SDK and needs no endpoint.
	if strings.EqualFold(c.LLMProvider, "gemini") {
		return true
	}
	return c.LLMEndpoint != ""
}

func (c *Config) HasDatabaseConfig() bool {
	return c.PostgreDSN != ""
}

func (c *Config) HasMetricsConfig() bool {
	return c.MetricsAddr != ""
}

// getEnvOrDefault returns the environment variable value or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseInt32(raw string) (int32, error) {
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

package main

import (
	"log"

	"github.com/elisartix/herder/internal/config"
	"github.com/elisartix/herder/internal/database"
	"github.com/elisartix/herder/internal/logger"
	"github.com/elisartix/herder/internal/roster"
	"github.com/elisartix/herder/internal/telegram"
	"github.com/elisartix/herder/internal/userbot"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	if err := logger.InitLogger(cfg.LogLevel); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	logger.Info("herder is starting", map[string]interface{}{
		"log_level":    cfg.LogLevel,
		"sessions":     len(cfg.SessionFiles),
		"has_database": cfg.HasDatabaseConfig(),
		"has_llm":      cfg.HasLLMConfig(),
	})

	var store database.Store
	if cfg.HasDatabaseConfig() {
		db, err := database.NewDB(cfg.PostgreDSN)
		if err != nil {
			logger.Warn("Failed to initialize database, falling back to memory", map[string]interface{}{
				"error": err.Error(),
			})
			store = database.NewMemory()
		} else {
			logger.InfoMsg("Database initialized successfully")
			store = db
		}
	} else {
		logger.InfoMsg("No database configured, state will not survive restarts")
		store = database.NewMemory()
	}
	defer store.Close()

	clients := userbot.ConnectAll(cfg.TelegramAppID, cfg.TelegramAppHash, cfg.SessionFiles)
	if len(clients) == 0 {
		log.Fatalf("No sessions connected, nothing to coordinate")
	}
	defer func() {
		for _, c := range clients {
			c.Close()
		}
	}()

	sessions := make([]roster.Session, 0, len(clients))
	var primary roster.Session
	for _, c := range clients {
		sessions = append(sessions, c)
		if c.Name() == cfg.PrimarySession {
			primary = c
		}
	}
	if primary == nil {
		primary = sessions[0]
	}
	cache := roster.NewCache(sessions, primary)

	bot, err := telegram.NewBot(cfg, store, cache)
	if err != nil {
		logger.Error("Failed to create Telegram bot", map[string]interface{}{
			"error": err.Error(),
		})
		log.Fatalf("Failed to create Telegram bot: %v", err)
	}

	logger.InfoMsg("🐑 Roster connected, ready for commands")

	defer bot.Stop()
	if err := bot.Start(); err != nil {
		logger.Error("Bot error", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

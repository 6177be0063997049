package telegram

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/elisartix/herder/internal/config"
	"github.com/elisartix/herder/internal/consts"
	"github.com/elisartix/herder/internal/database"
	"github.com/elisartix/herder/internal/enka"
	"github.com/elisartix/herder/internal/llm"
	"github.com/elisartix/herder/internal/logger"
	"github.com/elisartix/herder/internal/metrics"
	"github.com/elisartix/herder/internal/roster"
	"github.com/elisartix/herder/internal/scheduler"
)

// Bot is the controller surface. It receives the owner's commands over the
// Bot API and drives the MTProto roster behind roster.Cache.
type Bot struct {
	api       *tgbotapi.BotAPI
	config    *config.Config
	store     database.Store
	cache     *roster.Cache
	guarantor *roster.Guarantor
	llmClient *llm.Client
	enka      *enka.Client
	uidBook   *enka.UIDBook
	daily     *scheduler.Daily
	collector *metrics.Collector

	// Rate limiting
	globalLimiter  *rate.Limiter
	chatLimiters   map[int64]*rate.Limiter
	chatLimitersMu sync.RWMutex

	cancel context.CancelFunc
}

func NewBot(cfg *config.Config, store database.Store, cache *roster.Cache) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	b := &Bot{
		api:           api,
		config:        cfg,
		store:         store,
		cache:         cache,
		llmClient:     llm.NewClient(cfg),
		enka:          enka.NewClient(time.Duration(cfg.EnkaTimeoutSeconds)*time.Second, "data"),
		uidBook:       enka.NewUIDBook(store),
		daily:         scheduler.NewDaily(store, cache, cfg.DailyPeerID),
		globalLimiter: rate.NewLimiter(rate.Limit(30), 30),
		chatLimiters:  make(map[int64]*rate.Limiter),
	}

	if cfg.HasMetricsConfig() {
		b.collector = metrics.NewCollector(nil)
		go metrics.Serve(cfg.MetricsAddr)
	}

	// Seed the schedule from config on first run; later edits live in the store.
	if times, err := b.daily.Times(); err == nil && len(times) == 0 && cfg.DailyTimes != "" {
		if _, err := b.daily.SetTimes(cfg.DailyTimes); err != nil {
			logger.Warn("Invalid DAILY_TIMES in config", map[string]interface{}{
				"value": cfg.DailyTimes,
				"error": err.Error(),
			})
		}
	}

	return b, nil
}

func (b *Bot) Start() error {
	logger.Info("Bot authorized and starting", map[string]interface{}{
		"username": b.api.Self.UserName,
		"owner_id": b.config.OwnerID,
	})

	ctx, cancel := context.WithCancel(context.Background())
	b.cancel = cancel

	if primary, ok := b.cache.Primary(ctx); ok {
		b.guarantor = roster.NewGuarantor(primary)
	} else {
		logger.WarnMsg("No primary session resolved, join escalation degraded")
		b.guarantor = roster.NewGuarantor(roster.Account{})
	}
	if b.collector != nil {
		b.collector.SetRosterSize(len(b.cache.Refresh(ctx, false)))
	}

	go b.daily.Run(ctx)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message"}

	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.Message == nil {
			continue
		}
		message := update.Message
		if message.From == nil || message.From.ID != b.config.OwnerID {
			logger.Debug("Ignoring message from non-owner", map[string]interface{}{
				"chat_id": message.Chat.ID,
			})
			continue
		}
		if message.Text == "" || message.Text[0] != '/' {
			continue
		}

		go b.dispatch(ctx, message)
	}

	return nil
}

func (b *Bot) dispatch(ctx context.Context, message *tgbotapi.Message) {
	command := commandName(message.Text)
	started := time.Now()
	err := b.handleCommand(ctx, message)
	status := "ok"
	if err != nil {
		status = "error"
		logger.Error("Command failed", map[string]interface{}{
			"command": command,
			"chat_id": message.Chat.ID,
			"error":   err.Error(),
		})
		b.sendErrorResponse(message.Chat.ID, err)
	}
	if b.collector != nil {
		b.collector.RecordCommand(command, status, time.Since(started))
	}
}

// Stop shuts the bot down and stops the scheduler.
func (b *Bot) Stop() {
	logger.InfoMsg("Stopping bot...")
	if b.cancel != nil {
		b.cancel()
	}
	b.api.StopReceivingUpdates()
	if b.llmClient != nil {
		b.llmClient.Close()
	}
	logger.InfoMsg("Bot stopped")
}

func (b *Bot) getChatRateLimiter(chatID int64) *rate.Limiter {
	b.chatLimitersMu.RLock()
	limiter, exists := b.chatLimiters[chatID]
	b.chatLimitersMu.RUnlock()

	if !exists {
		b.chatLimitersMu.Lock()
		if limiter, exists = b.chatLimiters[chatID]; !exists {
			limiter = rate.NewLimiter(rate.Limit(1), 3)
			b.chatLimiters[chatID] = limiter
		}
		b.chatLimitersMu.Unlock()
	}

	return limiter
}

// rateLimitedSend sends a message with rate limiting
func (b *Bot) rateLimitedSend(chatID int64, msg tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := b.globalLimiter.Wait(context.Background()); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("global rate limiter error: %w", err)
	}
	if err := b.getChatRateLimiter(chatID).Wait(context.Background()); err != nil {
		return tgbotapi.Message{}, fmt.Errorf("chat rate limiter error: %w", err)
	}
	return b.api.Send(msg)
}

func (b *Bot) sendResponse(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = consts.ParseModeHTML
	if _, err := b.rateLimitedSend(chatID, msg); err != nil {
		logger.Error("Failed to send message", map[string]interface{}{
			"error":   err.Error(),
			"chat_id": chatID,
		})
	}
}

func (b *Bot) sendPhoto(chatID int64, name string, png []byte, caption string) {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: name, Bytes: png})
	photo.Caption = caption
	if _, err := b.rateLimitedSend(chatID, photo); err != nil {
		logger.Error("Failed to send photo", map[string]interface{}{
			"error":   err.Error(),
			"chat_id": chatID,
		})
	}
}

func (b *Bot) deleteMessage(chatID int64, messageID int) {
	del := tgbotapi.NewDeleteMessage(chatID, messageID)
	if _, err := b.api.Request(del); err != nil {
		logger.Debug("Failed to delete message", map[string]interface{}{
			"error":      err.Error(),
			"chat_id":    chatID,
			"message_id": messageID,
		})
	}
}

func (b *Bot) sendErrorResponse(chatID int64, err error) {
	b.sendResponse(chatID, fmt.Sprintf("❌ %v", err))
}

// reply sends text unless silent was requested, in which case the triggering
// message is deleted instead.
func (b *Bot) reply(message *tgbotapi.Message, text string, silent bool) {
	if silent {
		b.deleteMessage(message.Chat.ID, message.MessageID)
		return
	}
	b.sendResponse(message.Chat.ID, text)
}

package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/elisartix/herder/internal/consts"
	"github.com/elisartix/herder/internal/logger"
)

const defaultSystemPrompt = "Answer briefly and in plain text. No markdown, no lists unless asked."

func (b *Bot) handleAskCommand(ctx context.Context, message *tgbotapi.Message) error {
	if b.llmClient == nil || !b.llmClient.Available() {
		return fmt.Errorf("LLM is not configured")
	}

	question := strings.Join(commandArgs(message.Text), " ")
	if question == "" && message.ReplyToMessage != nil {
		question = message.ReplyToMessage.Text
	}
	if question == "" {
		b.sendResponse(message.Chat.ID, consts.AskUsage)
		return nil
	}

	system, err := b.systemPrompt()
	if err != nil {
		logger.Warn("System prompt load failed, using default", map[string]interface{}{
			"error": err.Error(),
		})
		system = defaultSystemPrompt
	}

	answer, usage, err := b.llmClient.Chat(ctx, system, question)
	if err != nil {
		return fmt.Errorf("LLM request failed: %w", err)
	}
	if usage != nil {
		logger.Debug("LLM tokens used", map[string]interface{}{
			"total": usage.TotalTokens,
		})
	}

	b.sendResponse(message.Chat.ID, escapeHTML(answer))
	return nil
}

func (b *Bot) handleAskSysCommand(message *tgbotapi.Message) error {
	args := commandArgs(message.Text)

	if len(args) == 0 {
		prompt, err := b.systemPrompt()
		if err != nil {
			return err
		}
		b.sendResponse(message.Chat.ID, fmt.Sprintf("<b>System prompt:</b>\n%s", escapeHTML(prompt)))
		return nil
	}

	if len(args) == 1 && strings.EqualFold(args[0], "reset") {
		if err := b.store.Delete(consts.NSLLM, consts.KeySystemPrompt); err != nil {
			return err
		}
		b.sendResponse(message.Chat.ID, "✅ System prompt reset to default")
		return nil
	}

	prompt := strings.Join(args, " ")
	if err := b.store.Set(consts.NSLLM, consts.KeySystemPrompt, prompt); err != nil {
		return err
	}
	b.sendResponse(message.Chat.ID, "✅ System prompt saved")
	return nil
}

func (b *Bot) systemPrompt() (string, error) {
	prompt, err := b.store.Get(consts.NSLLM, consts.KeySystemPrompt, defaultSystemPrompt)
	if err != nil {
		return "", err
	}
	if prompt == "" {
		return defaultSystemPrompt, nil
	}
	return prompt, nil
}

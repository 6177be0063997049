package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/elisartix/herder/internal/consts"
	"github.com/elisartix/herder/internal/logger"
)

// Role commands act through the primary session because the Bot API cannot
// set arbitrary admin titles.

func (b *Bot) handleRoleCommand(ctx context.Context, message *tgbotapi.Message) error {
	args, silent := extractSilent(commandArgs(message.Text))
	if message.ReplyToMessage == nil || message.ReplyToMessage.From == nil || len(args) == 0 {
		b.reply(message, consts.RoleUsage, silent)
		return nil
	}
	if message.Chat.IsPrivate() {
		return fmt.Errorf("roles only work in groups")
	}

	title := strings.Join(args, " ")
	if runes := []rune(title); len(runes) > consts.MaxAdminTitleLen {
		title = string(runes[:consts.MaxAdminTitleLen])
	}
	target := message.ReplyToMessage.From.ID

	primary, ok := b.cache.Primary(ctx)
	if !ok {
		return fmt.Errorf("no primary session available")
	}
	if err := primary.Session.EditAdminTitle(ctx, message.Chat.ID, target, title); err != nil {
		return fmt.Errorf("set title: %w", err)
	}

	logger.Info("Admin title set", map[string]interface{}{
		"chat_id": message.Chat.ID,
		"user_id": target,
		"title":   title,
	})
	b.reply(message, fmt.Sprintf("✅ Title <b>%s</b> set", escapeHTML(title)), silent)
	return nil
}

func (b *Bot) handleUnroleCommand(ctx context.Context, message *tgbotapi.Message) error {
	_, silent := extractSilent(commandArgs(message.Text))
	if message.ReplyToMessage == nil || message.ReplyToMessage.From == nil {
		b.reply(message, consts.RoleUsage, silent)
		return nil
	}
	if message.Chat.IsPrivate() {
		return fmt.Errorf("roles only work in groups")
	}
	target := message.ReplyToMessage.From.ID

	primary, ok := b.cache.Primary(ctx)
	if !ok {
		return fmt.Errorf("no primary session available")
	}
	if err := primary.Session.ClearAdmin(ctx, message.Chat.ID, target); err != nil {
		return fmt.Errorf("clear title: %w", err)
	}

	b.reply(message, "✅ Title removed", silent)
	return nil
}

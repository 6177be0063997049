package telegram

import (
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/elisartix/herder/internal/consts"
	"github.com/elisartix/herder/internal/enka"
	"github.com/elisartix/herder/internal/logger"
)

func (b *Bot) handleEnUIDCommand(message *tgbotapi.Message) error {
	args := commandArgs(message.Text)
	switch len(args) {
	case 1:
		if err := b.uidBook.SetDefault(args[0]); err != nil {
			return err
		}
		b.sendResponse(message.Chat.ID, fmt.Sprintf("✅ Default uid set to <code>%s</code>", args[0]))
	case 2:
		if err := b.uidBook.SaveAlias(args[0], args[1]); err != nil {
			return err
		}
		b.sendResponse(message.Chat.ID, fmt.Sprintf("✅ Saved <b>%s</b> → <code>%s</code>", escapeHTML(strings.ToLower(args[0])), args[1]))
	default:
		aliases, err := b.uidBook.List()
		if err != nil {
			return err
		}
		if len(aliases) == 0 {
			b.sendResponse(message.Chat.ID, consts.EnuidUsage)
			return nil
		}
		b.sendResponse(message.Chat.ID, "<b>Saved uids:</b>\n"+escapeHTML(strings.Join(aliases, "\n")))
	}
	return nil
}

func (b *Bot) handleEnDelUIDCommand(message *tgbotapi.Message) error {
	args := commandArgs(message.Text)
	if len(args) != 1 {
		b.sendResponse(message.Chat.ID, consts.EnuidUsage)
		return nil
	}
	removed, err := b.uidBook.DeleteAlias(args[0])
	if err != nil {
		return err
	}
	if !removed {
		b.sendResponse(message.Chat.ID, fmt.Sprintf("❌ No alias <code>%s</code>", escapeHTML(args[0])))
		return nil
	}
	b.sendResponse(message.Chat.ID, fmt.Sprintf("✅ Removed <code>%s</code>", escapeHTML(args[0])))
	return nil
}

func (b *Bot) handleEnProfileCommand(message *tgbotapi.Message) error {
	profile, err := b.fetchProfile(message, strings.Join(commandArgs(message.Text), " "))
	if err != nil || profile == nil {
		return err
	}

	png, err := enka.RenderProfile(profile)
	if err != nil {
		return fmt.Errorf("render profile card: %w", err)
	}
	b.sendPhoto(message.Chat.ID, "profile.png", png, fmt.Sprintf("%s · AR %d", profile.Nickname, profile.Level))
	return nil
}

func (b *Bot) handleEnCharsCommand(message *tgbotapi.Message) error {
	profile, err := b.fetchProfile(message, strings.Join(commandArgs(message.Text), " "))
	if err != nil || profile == nil {
		return err
	}

	if len(profile.Characters) == 0 {
		b.sendResponse(message.Chat.ID, "ℹ️ The showcase is empty")
		return nil
	}
	lines := make([]string, 0, len(profile.Characters)+1)
	lines = append(lines, fmt.Sprintf("<b>%s's showcase:</b>", escapeHTML(profile.Nickname)))
	for _, ch := range profile.Characters {
		lines = append(lines, fmt.Sprintf("• %s — Lv. %d (<code>%d</code>)", escapeHTML(ch.Name), ch.Level, ch.AvatarID))
	}
	b.sendResponse(message.Chat.ID, strings.Join(lines, "\n"))
	return nil
}

func (b *Bot) handleEnCharCommand(message *tgbotapi.Message) error {
	args := commandArgs(message.Text)
	if len(args) == 0 {
		b.sendResponse(message.Chat.ID, consts.EncharUsage)
		return nil
	}

	// Anything past the character query that resolves as a uid or alias
	// selects the account; the rest is the query.
	uidArg := ""
	query := strings.Join(args, " ")
	if len(args) > 1 {
		if _, err := b.uidBook.Resolve(args[len(args)-1]); err == nil {
			uidArg = args[len(args)-1]
			query = strings.Join(args[:len(args)-1], " ")
		}
	}

	profile, err := b.fetchProfile(message, uidArg)
	if err != nil || profile == nil {
		return err
	}

	card, found := enka.PickCharacter(profile.Cards, query)
	if !found {
		b.sendResponse(message.Chat.ID, fmt.Sprintf("❌ No character matching <code>%s</code> in the showcase", escapeHTML(query)))
		return nil
	}

	png, err := enka.RenderCharacter(card)
	if err != nil {
		return fmt.Errorf("render character card: %w", err)
	}
	b.sendPhoto(message.Chat.ID, "character.png", png, fmt.Sprintf("%s · Lv. %d", card.Name, card.Level))
	return nil
}

// fetchProfile resolves the uid argument through the uid book, fetches and
// normalizes the showcase. API errors that have a clean user-facing meaning
// are reported directly and swallowed.
func (b *Bot) fetchProfile(message *tgbotapi.Message, uidArg string) (*enka.Profile, error) {
	uid, err := b.uidBook.Resolve(uidArg)
	if err != nil {
		b.sendResponse(message.Chat.ID, fmt.Sprintf("❌ %v", err))
		return nil, nil
	}

	raw, err := b.enka.FetchProfile(uid)
	if err != nil {
		if b.collector != nil {
			b.collector.RecordEnkaFetch("error")
		}
		switch {
		case errors.Is(err, enka.ErrBadUID), errors.Is(err, enka.ErrUnknownUID), errors.Is(err, enka.ErrRateLimited):
			b.sendResponse(message.Chat.ID, fmt.Sprintf("❌ %v", err))
			return nil, nil
		default:
			return nil, err
		}
	}
	if b.collector != nil {
		b.collector.RecordEnkaFetch("ok")
	}

	logger.Debug("Enka profile fetched", map[string]interface{}{
		"uid":        uid,
		"characters": len(raw.AvatarInfoList),
	})
	return b.enka.Normalize(uid, raw), nil
}

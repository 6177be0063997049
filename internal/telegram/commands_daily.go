package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/elisartix/herder/internal/consts"
)

func (b *Bot) handleDailyCommand(message *tgbotapi.Message) error {
	enabled, err := b.daily.Enabled()
	if err != nil {
		return err
	}
	times, err := b.daily.Times()
	if err != nil {
		return err
	}

	state := "off"
	if enabled {
		state = "on"
	}
	schedule := "not set"
	if len(times) > 0 {
		schedule = strings.Join(times, ", ")
	}
	b.sendResponse(message.Chat.ID, fmt.Sprintf("<b>Daily:</b> %s\n<b>Times:</b> %s", state, schedule))
	return nil
}

func (b *Bot) handleDailyToggleCommand(message *tgbotapi.Message, on bool) error {
	if err := b.daily.SetEnabled(on); err != nil {
		return err
	}
	if on {
		b.sendResponse(message.Chat.ID, "✅ Daily schedule enabled")
	} else {
		b.sendResponse(message.Chat.ID, "✅ Daily schedule disabled")
	}
	return nil
}

func (b *Bot) handleDailyTimesCommand(message *tgbotapi.Message) error {
	args := commandArgs(message.Text)
	if len(args) == 0 {
		b.sendResponse(message.Chat.ID, consts.DailyUsage)
		return nil
	}
	times, err := b.daily.SetTimes(strings.Join(args, ","))
	if err != nil {
		return err
	}
	b.sendResponse(message.Chat.ID, fmt.Sprintf("✅ Schedule set: %s", strings.Join(times, ", ")))
	return nil
}

func (b *Bot) handleDailySendCommand(ctx context.Context, message *tgbotapi.Message) error {
	if err := b.daily.Send(ctx); err != nil {
		if b.collector != nil {
			b.collector.RecordDailySend("error")
		}
		return err
	}
	if b.collector != nil {
		b.collector.RecordDailySend("ok")
	}
	b.sendResponse(message.Chat.ID, "✅ Daily pair sent")
	return nil
}

package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/elisartix/herder/internal/consts"
	"github.com/elisartix/herder/internal/logger"
	"github.com/elisartix/herder/internal/roster"
)

func (b *Bot) handleCommand(ctx context.Context, message *tgbotapi.Message) error {
	command := commandName(message.Text)

	switch command {
	case "start":
		return b.handleStartCommand(message)
	case "help":
		return b.handleHelpCommand(message)
	case "accounts":
		return b.handleAccountsCommand(ctx, message)
	case "say":
		return b.handleSayCommand(ctx, message)
	case "spam":
		return b.handleSpamCommand(ctx, message)
	case "join":
		return b.handleJoinCommand(ctx, message)
	case "report":
		return b.handleReportCommand(ctx, message)
	case "role":
		return b.handleRoleCommand(ctx, message)
	case "unrole":
		return b.handleUnroleCommand(ctx, message)
	case "ask":
		return b.handleAskCommand(ctx, message)
	case "asksys":
		return b.handleAskSysCommand(message)
	case "enuid":
		return b.handleEnUIDCommand(message)
	case "endeluid":
		return b.handleEnDelUIDCommand(message)
	case "enprofile":
		return b.handleEnProfileCommand(message)
	case "enchars":
		return b.handleEnCharsCommand(message)
	case "enchar":
		return b.handleEnCharCommand(message)
	case "daily":
		return b.handleDailyCommand(message)
	case "dailyon":
		return b.handleDailyToggleCommand(message, true)
	case "dailyoff":
		return b.handleDailyToggleCommand(message, false)
	case "dailytimes":
		return b.handleDailyTimesCommand(message)
	case "dailysend":
		return b.handleDailySendCommand(ctx, message)
	default:
		b.sendResponse(message.Chat.ID, "❓ Unknown command. Use /help to see the list.")
		return nil
	}
}

func (b *Bot) handleStartCommand(message *tgbotapi.Message) error {
	b.sendResponse(message.Chat.ID, "👋 Ready. Use /help to see what I can do.")
	return nil
}

func (b *Bot) handleHelpCommand(message *tgbotapi.Message) error {
	help := `<b>Accounts</b>
/accounts - list sessions
/say 1 text [count] - send as one account
/spam [account] text count - burst across accounts
/join [account] - pull accounts into this chat
/report [reason] - report the replied message

<b>Roles</b>
/role Title - admin title for the replied user
/unrole - remove it

<b>LLM</b>
/ask text - ask the model
/asksys [text|reset] - system prompt

<b>Genshin</b>
/enuid [alias] uid - save uid
/endeluid alias - forget alias
/enprofile [uid|alias] - account card
/enchars [uid|alias] - showcase list
/enchar Name [uid|alias] - build card

<b>Daily</b>
/daily, /dailyon, /dailyoff, /dailytimes 10:00,22:00, /dailysend

<i>Append -s to account commands to work silently.</i>`
	b.sendResponse(message.Chat.ID, help)
	return nil
}

func (b *Bot) handleAccountsCommand(ctx context.Context, message *tgbotapi.Message) error {
	_, silent := extractSilent(commandArgs(message.Text))

	accounts := b.cache.Refresh(ctx, true)
	if b.collector != nil {
		b.collector.SetRosterSize(len(accounts))
	}
	if len(accounts) == 0 {
		return fmt.Errorf("no usable sessions")
	}

	lines := make([]string, 0, len(accounts)+1)
	lines = append(lines, fmt.Sprintf("<b>Accounts (%d)</b>", len(accounts)))
	for i, acc := range accounts {
		lines = append(lines, formatAccountLine(i+1, acc))
	}
	b.reply(message, strings.Join(lines, "\n"), silent)
	return nil
}

func (b *Bot) handleSayCommand(ctx context.Context, message *tgbotapi.Message) error {
	args, silent := extractSilent(commandArgs(message.Text))
	if len(args) < 2 {
		b.reply(message, consts.SayUsage, silent)
		return nil
	}

	selector := args[0]
	rest, count := splitSayArgs(args[1:])
	text := strings.Join(rest, " ")

	accounts := b.cache.Refresh(ctx, false)
	idx, found := roster.Resolve(selector, accounts)
	if !found {
		b.reply(message, fmt.Sprintf("❌ Account <code>%s</code> not found", escapeHTML(selector)), silent)
		return nil
	}
	acc := accounts[idx]

	replyTo := int32(0)
	if message.ReplyToMessage != nil {
		replyTo = int32(message.ReplyToMessage.MessageID)
	}

	pace := roster.SendPace
	if count > 3 {
		pace = roster.RepeatPace
	}
	ok := 0
	for i := 0; i < count; i++ {
		if err := acc.Session.SendMessage(ctx, message.Chat.ID, text, replyTo); err != nil {
			logger.Warn("Say send failed", map[string]interface{}{
				"account": acc.ID,
				"error":   err.Error(),
			})
		} else {
			ok++
		}
		if i < count-1 {
			sleepFor(pace)
		}
	}
	if b.collector != nil {
		b.collector.RecordFanout("say", ok, count)
	}

	logger.Info("Say fan-out done", map[string]interface{}{
		"account": acc.ID,
		"count":   count,
		"ok":      ok,
		"chat_id": message.Chat.ID,
	})
	if silent {
		b.deleteMessage(message.Chat.ID, message.MessageID)
	}
	return nil
}

func (b *Bot) handleSpamCommand(ctx context.Context, message *tgbotapi.Message) error {
	args, silent := extractSilent(commandArgs(message.Text))
	args, count, hasCount := extractTrailingCount(args)
	if !hasCount || len(args) == 0 {
		b.reply(message, consts.SpamUsage, silent)
		return nil
	}

	accounts := b.cache.Refresh(ctx, false)
	if len(accounts) == 0 {
		return fmt.Errorf("no usable sessions")
	}

	// A leading token that resolves to an account narrows the senders.
	targets := accounts
	if len(args) > 1 {
		if idx, found := roster.Resolve(args[0], accounts); found {
			targets = accounts[idx : idx+1]
			args = args[1:]
		}
	}
	text := strings.Join(args, " ")

	replyTo := int32(0)
	if message.ReplyToMessage != nil {
		replyTo = int32(message.ReplyToMessage.MessageID)
	}

	roster.DispatchN(ctx, targets, func(ctx context.Context, a roster.Account) error {
		return a.Session.SendMessage(ctx, message.Chat.ID, text, replyTo)
	}, count)

	logger.Info("Spam burst done", map[string]interface{}{
		"senders": len(targets),
		"count":   count,
		"chat_id": message.Chat.ID,
	})
	if silent {
		b.deleteMessage(message.Chat.ID, message.MessageID)
	}
	return nil
}

func (b *Bot) handleJoinCommand(ctx context.Context, message *tgbotapi.Message) error {
	args, silent := extractSilent(commandArgs(message.Text))
	if len(args) > 1 {
		b.reply(message, consts.JoinUsage, silent)
		return nil
	}

	accounts := b.cache.Refresh(ctx, false)
	if len(accounts) == 0 {
		return fmt.Errorf("no usable sessions")
	}

	targets := accounts
	if len(args) > 0 {
		idx, found := roster.Resolve(args[0], accounts)
		if !found {
			b.reply(message, fmt.Sprintf("❌ Account <code>%s</code> not found", escapeHTML(args[0])), silent)
			return nil
		}
		targets = accounts[idx : idx+1]
	}

	chat := chatFromMessage(message)
	ok, total := roster.Broadcast(ctx, targets, func(ctx context.Context, a roster.Account) error {
		if !b.guarantor.EnsureMember(ctx, a, chat) {
			return fmt.Errorf("could not join")
		}
		return nil
	}, roster.JoinPace)
	if b.collector != nil {
		b.collector.RecordFanout("join", ok, total)
	}

	b.reply(message, fmt.Sprintf("✅ Joined %d/%d", ok, total), silent)
	return nil
}

func (b *Bot) handleReportCommand(ctx context.Context, message *tgbotapi.Message) error {
	args, silent := extractSilent(commandArgs(message.Text))
	if message.ReplyToMessage == nil {
		b.reply(message, consts.ReportUsage, silent)
		return nil
	}

	reasons := parseReasons(args)
	target := int32(message.ReplyToMessage.MessageID)
	chat := chatFromMessage(message)

	accounts := b.cache.Refresh(ctx, false)
	if len(accounts) == 0 {
		return fmt.Errorf("no usable sessions")
	}

	ok, total := roster.Broadcast(ctx, accounts, func(ctx context.Context, a roster.Account) error {
		b.guarantor.EnsureMember(ctx, a, chat)
		var lastErr error
		for _, reason := range reasons {
			if err := a.Session.ReportMessage(ctx, chat.ID, target, reason, ""); err != nil {
				lastErr = err
			}
		}
		return lastErr
	}, roster.ReportPace)
	if b.collector != nil {
		b.collector.RecordFanout("report", ok, total)
	}

	b.reply(message, fmt.Sprintf("🚩 Reported by %d/%d (%s)", ok, total, strings.Join(reasons, ", ")), silent)
	return nil
}

// parseReasons maps command arguments to report reasons. Unknown or missing
// arguments fall back to Spam plus Other.
func parseReasons(args []string) []string {
	known := map[string]string{
		"spam":        consts.ReasonSpam,
		"violence":    consts.ReasonViolence,
		"pornography": consts.ReasonPornography,
		"childabuse":  consts.ReasonChildAbuse,
		"copyright":   consts.ReasonCopyright,
		"other":       consts.ReasonOther,
	}
	var reasons []string
	for _, arg := range args {
		if reason, ok := known[strings.ToLower(arg)]; ok {
			reasons = append(reasons, reason)
		}
	}
	if len(reasons) == 0 {
		reasons = []string{consts.ReasonSpam, consts.ReasonOther}
	}
	return reasons
}

func chatFromMessage(message *tgbotapi.Message) roster.Chat {
	chat := roster.Chat{ID: message.Chat.ID}
	if message.Chat.UserName != "" {
		chat.Handle = message.Chat.UserName
	}
	return chat
}

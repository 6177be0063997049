package telegram

import (
	"html"
	"strconv"
	"strings"
	"time"

	"github.com/elisartix/herder/internal/roster"
)

// sleepFor is swapped out in tests.
var sleepFor = time.Sleep

// commandName extracts the bare command from a message text, dropping the
// bot-name suffix Telegram appends in groups.
func commandName(text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	cmd := strings.TrimPrefix(fields[0], "/")
	if i := strings.Index(cmd, "@"); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

// commandArgs returns the tokens after the command itself.
func commandArgs(text string) []string {
	fields := strings.Fields(text)
	if len(fields) <= 1 {
		return nil
	}
	return fields[1:]
}

// extractSilent strips a trailing "-s" or "s" token. The bare "s" form is
// only honored as a flag when other tokens precede it.
func extractSilent(args []string) ([]string, bool) {
	if len(args) == 0 {
		return args, false
	}
	last := strings.ToLower(args[len(args)-1])
	if last == "-s" {
		return args[:len(args)-1], true
	}
	if last == "s" && len(args) > 1 {
		return args[:len(args)-1], true
	}
	return args, false
}

// extractTrailingCount pops a trailing positive integer off the argument
// list. Returns the remaining args, the count and whether one was present.
func extractTrailingCount(args []string) ([]string, int, bool) {
	if len(args) == 0 {
		return args, 0, false
	}
	n, err := strconv.Atoi(args[len(args)-1])
	if err != nil || n <= 0 {
		return args, 0, false
	}
	return args[:len(args)-1], n, true
}

// splitSayArgs separates the repeat count from the message tokens. A lone
// number is the message itself, not a count.
func splitSayArgs(args []string) ([]string, int) {
	if len(args) > 1 {
		if rest, n, ok := extractTrailingCount(args); ok {
			return rest, n
		}
	}
	return args, 1
}

func escapeHTML(s string) string {
	return html.EscapeString(s)
}

// formatAccountLine renders one roster row for /accounts output.
func formatAccountLine(pos int, acc roster.Account) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(pos))
	sb.WriteString(". ")
	if acc.DisplayName != "" {
		sb.WriteString(escapeHTML(acc.DisplayName))
	} else {
		sb.WriteString("(no name)")
	}
	if acc.Handle != "" {
		sb.WriteString(" (@")
		sb.WriteString(escapeHTML(acc.Handle))
		sb.WriteString(")")
	}
	sb.WriteString(" — <code>")
	sb.WriteString(strconv.FormatInt(acc.ID, 10))
	sb.WriteString("</code>")
	if acc.Primary {
		sb.WriteString(" (main)")
	}
	return sb.String()
}

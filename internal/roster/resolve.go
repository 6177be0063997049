package roster

import (
	"strconv"
	"strings"
)

// Resolve maps a user-supplied selector to a roster position. Priority is
// fixed: a digit-only selector is a 1-based account number first, a numeric
// user id second; anything else is matched against handles case-insensitively
// with one leading @ stripped. Returns the zero-based index and whether a
// match was found.
func Resolve(selector string, accounts []Account) (int, bool) {
	if selector == "" {
		return 0, false
	}

	if isDigits(selector) {
		if pos, err := strconv.Atoi(selector); err == nil && pos >= 1 && pos <= len(accounts) {
			return pos - 1, true
		}
	}

	if isDigits(strings.TrimPrefix(selector, "-")) {
		if id, err := strconv.ParseInt(selector, 10, 64); err == nil {
			for i, acc := range accounts {
				if acc.ID == id {
					return i, true
				}
			}
		}
	}

	normalized := strings.ToLower(strings.TrimPrefix(selector, "@"))
	for i, acc := range accounts {
		if acc.Handle != "" && strings.ToLower(acc.Handle) == normalized {
			return i, true
		}
	}

	return 0, false
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

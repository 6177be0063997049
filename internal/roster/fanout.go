package roster

import (
	"context"
	"time"

	"github.com/elisartix/herder/internal/logger"
)

// Pacing between per-account calls. Telegram throttles flood-y clients hard,
// so every fan-out keeps a small gap between sessions.
const (
	SendPace   = 150 * time.Millisecond
	JoinPace   = 200 * time.Millisecond
	ReportPace = 250 * time.Millisecond
	RepeatPace = 350 * time.Millisecond

	roundPause = 100 * time.Millisecond
)

// Op is a single per-account action executed during a fan-out.
type Op func(ctx context.Context, acc Account) error

// sleep is swapped out in tests.
var sleep = time.Sleep

// Broadcast runs op once for every account, pausing pace between accounts
// when more than two are involved. Failures are logged and counted but never
// abort the sweep. Returns how many ops succeeded and how many ran.
func Broadcast(ctx context.Context, accounts []Account, op Op, pace time.Duration) (int, int) {
	ok := 0
	for i, acc := range accounts {
		if err := op(ctx, acc); err != nil {
			logger.Warn("fanout op failed", map[string]interface{}{
				"account": acc.ID,
				"handle":  acc.Handle,
				"error":   err.Error(),
			})
		} else {
			ok++
		}
		if len(accounts) > 2 && i < len(accounts)-1 {
			sleep(pace)
		}
	}
	return ok, len(accounts)
}

// DispatchN runs op n times, walking the roster round-robin so repeats are
// spread across sessions. Errors are swallowed; a burst should degrade, not
// stop. With more than three repetitions an extra pause lands after each
// complete round.
func DispatchN(ctx context.Context, accounts []Account, op Op, n int) {
	if len(accounts) == 0 || n <= 0 {
		return
	}
	for i := 0; i < n; i++ {
		acc := accounts[i%len(accounts)]
		if err := op(ctx, acc); err != nil {
			logger.Debug("dispatch op failed", map[string]interface{}{
				"account": acc.ID,
				"round":   i,
				"error":   err.Error(),
			})
		}
		if i == n-1 {
			break
		}
		if len(accounts) > 1 {
			sleep(SendPace)
		}
		if n > 3 && (i+1)%len(accounts) == 0 {
			sleep(roundPause)
		}
	}
}

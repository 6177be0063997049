package roster

import (
	"context"
	"sync"
	"time"

	"github.com/elisartix/herder/internal/logger"
)

// Roster snapshots stay valid for this long before a refresh re-queries the
// sessions. Account numbers shown to the user are positions within one
// snapshot and are only stable for its lifetime.
const freshFor = 60 * time.Second

// Cache builds and holds the current roster snapshot.
type Cache struct {
	mu        sync.Mutex
	sessions  []Session
	primary   Session
	accounts  []Account
	refreshed time.Time

	now func() time.Time
}

// NewCache creates a roster cache over the configured sessions. primary is
// the session the coordinator itself acts through and must be one of sessions.
func NewCache(sessions []Session, primary Session) *Cache {
	return &Cache{
		sessions: sessions,
		primary:  primary,
		now:      time.Now,
	}
}

// Primary returns the roster entry for the coordinator's own session, or
// false when the cache is empty or the primary session failed to respond.
func (c *Cache) Primary(ctx context.Context) (Account, bool) {
	for _, acc := range c.Refresh(ctx, false) {
		if acc.Primary {
			return acc, true
		}
	}
	return Account{}, false
}

// Refresh returns the cached roster when it is fresh, or rebuilds it by
// asking every session for its own identity. Sessions that fail to respond
// are skipped; a partial roster is valid.
func (c *Cache) Refresh(ctx context.Context, force bool) []Account {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !force && len(c.accounts) > 0 && c.now().Sub(c.refreshed) < freshFor {
		return c.accounts
	}

	accounts := make([]Account, 0, len(c.sessions))
	seen := make(map[int64]bool, len(c.sessions))

	for i, session := range c.sessions {
		identity, err := session.WhoAmI(ctx)
		if err != nil {
			logger.Warn("Session failed to identify itself, skipping", map[string]interface{}{
				"session_index": i,
				"error":         err.Error(),
			})
			continue
		}
		if seen[identity.ID] {
			logger.Warn("Duplicate account in session list, skipping", map[string]interface{}{
				"session_index": i,
				"user_id":       identity.ID,
			})
			continue
		}
		seen[identity.ID] = true

		accounts = append(accounts, Account{
			Session:     session,
			ID:          identity.ID,
			Handle:      identity.Username,
			DisplayName: identity.DisplayName,
			Primary:     session == c.primary,
		})
	}

	c.accounts = accounts
	c.refreshed = c.now()
	return c.accounts
}

package scheduler

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/elisartix/herder/internal/consts"
	"github.com/elisartix/herder/internal/database"
	"github.com/elisartix/herder/internal/logger"
	"github.com/elisartix/herder/internal/roster"
)

const (
	tickEvery = 20 * time.Second
	pairGap   = 1500 * time.Millisecond
	timestamp = "2006-01-02 15:04"
)

// Sender pushes the daily message pair through the primary session.
type Sender interface {
	Primary(ctx context.Context) (roster.Account, bool)
}

// Daily fires a fixed message pair in one chat at configured wall-clock
// minutes. Schedule and the fired mark live in the KV store so a restart
// inside an armed minute does not double-send.
type Daily struct {
	store  database.Store
	cache  Sender
	peerID int64
	texts  [2]string

	now   func() time.Time
	sleep func(time.Duration)
}

func NewDaily(store database.Store, cache Sender, peerID int64) *Daily {
	return &Daily{
		store:  store,
		cache:  cache,
		peerID: peerID,
		texts:  [2]string{"/daily", "🎰"},
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// Run ticks every 20 seconds until ctx is done. All failures inside a tick
// are logged and swallowed.
func (d *Daily) Run(ctx context.Context) {
	ticker := time.NewTicker(tickEvery)
	defer ticker.Stop()
	logger.InfoMsg("daily scheduler started")
	for {
		select {
		case <-ctx.Done():
			logger.InfoMsg("daily scheduler stopped")
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *Daily) tick(ctx context.Context) {
	enabled, err := d.Enabled()
	if err != nil || !enabled {
		return
	}
	times, err := d.Times()
	if err != nil || len(times) == 0 {
		return
	}

	now := d.now()
	minute := now.Format("15:04")
	armed := false
	for _, t := range times {
		if t == minute {
			armed = true
			break
		}
	}
	if !armed {
		return
	}

	mark := now.Format(timestamp)
	last, err := d.store.Get(consts.NSDaily, consts.KeyDailyLast, "")
	if err != nil {
		logger.Warn("daily last-mark read failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if last == mark {
		return
	}
	if err := d.store.Set(consts.NSDaily, consts.KeyDailyLast, mark); err != nil {
		logger.Warn("daily last-mark write failed", map[string]interface{}{"error": err.Error()})
		return
	}

	if err := d.Send(ctx); err != nil {
		logger.Error("daily send failed", map[string]interface{}{"error": err.Error()})
	} else {
		logger.Info("daily pair sent", map[string]interface{}{"at": mark, "peer": d.peerID})
	}
}

// Send pushes the message pair immediately through the primary session.
func (d *Daily) Send(ctx context.Context) error {
	if d.peerID == 0 {
		return fmt.Errorf("daily peer is not configured")
	}
	primary, ok := d.cache.Primary(ctx)
	if !ok {
		return fmt.Errorf("no primary session available")
	}
	if err := primary.Session.SendMessage(ctx, d.peerID, d.texts[0], 0); err != nil {
		return fmt.Errorf("send first daily message: %w", err)
	}
	d.sleep(pairGap)
	if err := primary.Session.SendMessage(ctx, d.peerID, d.texts[1], 0); err != nil {
		return fmt.Errorf("send second daily message: %w", err)
	}
	return nil
}

func (d *Daily) Enabled() (bool, error) {
	v, err := d.store.Get(consts.NSDaily, consts.KeyDailyEnabled, "false")
	if err != nil {
		return false, err
	}
	return v == "true", nil
}

func (d *Daily) SetEnabled(on bool) error {
	v := "false"
	if on {
		v = "true"
	}
	return d.store.Set(consts.NSDaily, consts.KeyDailyEnabled, v)
}

func (d *Daily) Times() ([]string, error) {
	var times []string
	if _, err := database.GetJSON(d.store, consts.NSDaily, consts.KeyDailyTimes, &times); err != nil {
		return nil, err
	}
	return times, nil
}

func (d *Daily) SetTimes(spec string) ([]string, error) {
	times, err := ParseTimes(spec)
	if err != nil {
		return nil, err
	}
	return times, database.SetJSON(d.store, consts.NSDaily, consts.KeyDailyTimes, times)
}

// ParseTimes validates a comma-separated HH:MM list, normalizing each entry
// to zero-padded form, deduplicating and sorting it.
func ParseTimes(spec string) ([]string, error) {
	parts := strings.Split(spec, ",")
	seen := make(map[string]bool)
	var times []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		t, err := time.Parse("15:04", p)
		if err != nil {
			return nil, fmt.Errorf("bad time %q, want HH:MM", p)
		}
		norm := t.Format("15:04")
		if seen[norm] {
			continue
		}
		seen[norm] = true
		times = append(times, norm)
	}
	if len(times) == 0 {
		return nil, fmt.Errorf("no valid times in %q", spec)
	}
	sort.Strings(times)
	return times, nil
}

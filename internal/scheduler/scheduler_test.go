package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elisartix/herder/internal/database"
	"github.com/elisartix/herder/internal/roster"
)

type recordingSession struct {
	sent []string
}

func (r *recordingSession) WhoAmI(ctx context.Context) (roster.Identity, error) {
	return roster.Identity{ID: 1}, nil
}

func (r *recordingSession) SendMessage(ctx context.Context, chatID int64, text string, replyTo int32) error {
	r.sent = append(r.sent, text)
	return nil
}

func (r *recordingSession) IsMember(ctx context.Context, chatID int64) (bool, error) { return true, nil }
func (r *recordingSession) JoinByHandle(ctx context.Context, handle string) error { return nil }
func (r *recordingSession) JoinByInviteHash(ctx context.Context, hash string) error { return nil }
func (r *recordingSession) ExportInviteLink(ctx context.Context, chatID int64) (string, error) {
	return "", nil
}
func (r *recordingSession) InviteUser(ctx context.Context, chatID, userID int64) error { return nil }
func (r *recordingSession) EditAdminTitle(ctx context.Context, chatID, userID int64, title string) error {
	return nil
}
func (r *recordingSession) ClearAdmin(ctx context.Context, chatID, userID int64) error { return nil }
func (r *recordingSession) ReportMessage(ctx context.Context, chatID int64, messageID int32, reason, comment string) error {
	return nil
}

type fixedPrimary struct {
	acc roster.Account
	ok  bool
}

func (f *fixedPrimary) Primary(ctx context.Context) (roster.Account, bool) { return f.acc, f.ok }

func newTestDaily(t *testing.T) (*Daily, *recordingSession) {
	t.Helper()
	sess := &recordingSession{}
	d := NewDaily(database.NewMemory(), &fixedPrimary{acc: roster.Account{Session: sess, ID: 1, Primary: true}, ok: true}, -100500)
	d.sleep = func(time.Duration) {}
	return d, sess
}

func TestParseTimes(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    []string
		wantErr bool
	}{
		{"single", "09:30", []string{"09:30"}, false},
		{"sorted", "22:00, 08:15", []string{"08:15", "22:00"}, false},
		{"dedup", "10:00,10:00", []string{"10:00"}, false},
		{"pads", "9:05", []string{"09:05"}, false},
		{"bad hour", "25:00", nil, true},
		{"garbage", "noon", nil, true},
		{"empty", " , ", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimes(tt.spec)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTickFiresOnceAMinute(t *testing.T) {
	d, sess := newTestDaily(t)
	require.NoError(t, d.SetEnabled(true))
	_, err := d.SetTimes("12:30")
	require.NoError(t, err)

	at := time.Date(2026, 8, 31, 12, 30, 5, 0, time.UTC)
	d.now = func() time.Time { return at }

	d.tick(context.Background())
	assert.Equal(t, []string{"/daily", "🎰"}, sess.sent)

	// Same minute again: the mark blocks a second send.
	at = at.Add(20 * time.Second)
	d.tick(context.Background())
	assert.Len(t, sess.sent, 2)

	// Next day, same wall time, fires again.
	at = at.Add(24 * time.Hour)
	d.tick(context.Background())
	assert.Len(t, sess.sent, 4)
}

func TestTickDisabled(t *testing.T) {
	d, sess := newTestDaily(t)
	_, err := d.SetTimes("12:30")
	require.NoError(t, err)
	d.now = func() time.Time { return time.Date(2026, 8, 31, 12, 30, 0, 0, time.UTC) }

	d.tick(context.Background())
	assert.Empty(t, sess.sent)
}

func TestTickOffSchedule(t *testing.T) {
	d, sess := newTestDaily(t)
	require.NoError(t, d.SetEnabled(true))
	_, err := d.SetTimes("12:30")
	require.NoError(t, err)
	d.now = func() time.Time { return time.Date(2026, 8, 31, 12, 31, 0, 0, time.UTC) }

	d.tick(context.Background())
	assert.Empty(t, sess.sent)
}

func TestSendWithoutPrimary(t *testing.T) {
	d := NewDaily(database.NewMemory(), &fixedPrimary{}, -100500)
	d.sleep = func(time.Duration) {}
	require.Error(t, d.Send(context.Background()))
}

func TestSendWithoutPeer(t *testing.T) {
	sess := &recordingSession{}
	d := NewDaily(database.NewMemory(), &fixedPrimary{acc: roster.Account{Session: sess}, ok: true}, 0)
	require.Error(t, d.Send(context.Background()))
}

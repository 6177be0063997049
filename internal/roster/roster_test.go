package roster

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type fakeSession struct {
	identity   Identity
	whoErr     error
	whoCalls   int
	member     bool
	memberErr  error
	joined     []string
	imported   []string
	inviteLink string
	exportErr  error
	invited    []int64
	inviteErr  error
	sent       []string
}

func (f *fakeSession) WhoAmI(ctx context.Context) (Identity, error) {
	f.whoCalls++
	if f.whoErr != nil {
		return Identity{}, f.whoErr
	}
	return f.identity, nil
}

func (f *fakeSession) SendMessage(ctx context.Context, chatID int64, text string, replyTo int32) error {
	f.sent = append(f.sent, text)
	return nil
}

func (f *fakeSession) IsMember(ctx context.Context, chatID int64) (bool, error) {
	return f.member, f.memberErr
}

func (f *fakeSession) JoinByHandle(ctx context.Context, handle string) error {
	f.joined = append(f.joined, handle)
	return nil
}

func (f *fakeSession) JoinByInviteHash(ctx context.Context, hash string) error {
	f.imported = append(f.imported, hash)
	return nil
}

func (f *fakeSession) ExportInviteLink(ctx context.Context, chatID int64) (string, error) {
	if f.exportErr != nil {
		return "", f.exportErr
	}
	return f.inviteLink, nil
}

func (f *fakeSession) InviteUser(ctx context.Context, chatID, userID int64) error {
	if f.inviteErr != nil {
		return f.inviteErr
	}
	f.invited = append(f.invited, userID)
	return nil
}

func (f *fakeSession) EditAdminTitle(ctx context.Context, chatID, userID int64, title string) error {
	return nil
}

func (f *fakeSession) ClearAdmin(ctx context.Context, chatID, userID int64) error {
	return nil
}

func (f *fakeSession) ReportMessage(ctx context.Context, chatID int64, messageID int32, reason, comment string) error {
	return nil
}

func testAccounts() []Account {
	return []Account{
		{ID: 111111, Handle: "first"},
		{ID: 222222, Handle: "asia"},
		{ID: 333333, Handle: ""},
	}
}

func TestResolve(t *testing.T) {
	accounts := testAccounts()
	tests := []struct {
		name     string
		selector string
		want     int
		found    bool
	}{
		{"position", "2", 1, true},
		{"position first", "1", 0, true},
		{"position out of range falls through to id", "4", 0, false},
		{"numeric id", "333333", 2, true},
		{"position wins over id", "3", 2, true},
		{"handle", "asia", 1, true},
		{"handle mixed case", "AsIa", 1, true},
		{"handle with at", "@asia", 1, true},
		{"unknown handle", "nobody", 0, false},
		{"unknown id", "999999", 0, false},
		{"empty", "", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := Resolve(tt.selector, accounts)
			assert.Equal(t, tt.found, found)
			if tt.found {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestResolvePositionBeatsID(t *testing.T) {
	// Account #1 carries the numeric id of account #2's position. A bare
	// digit selector must still mean the position.
	accounts := []Account{
		{ID: 2, Handle: "first"},
		{ID: 1, Handle: "second"},
	}
	got, found := Resolve("1", accounts)
	assert.True(t, found)
	assert.Equal(t, 0, got)
}

func stubSleep(t *testing.T) *[]time.Duration {
	t.Helper()
	var slept []time.Duration
	orig := sleep
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() { sleep = orig })
	return &slept
}

func TestBroadcastCountsFailures(t *testing.T) {
	stubSleep(t)
	var hit []int64
	op := func(ctx context.Context, acc Account) error {
		hit = append(hit, acc.ID)
		if acc.ID == 222222 {
			return errors.New("boom")
		}
		return nil
	}
	ok, total := Broadcast(context.Background(), testAccounts(), op, SendPace)
	assert.Equal(t, 2, ok)
	assert.Equal(t, 3, total)
	assert.Equal(t, []int64{111111, 222222, 333333}, hit)
}

func TestBroadcastPacing(t *testing.T) {
	slept := stubSleep(t)
	op := func(ctx context.Context, acc Account) error { return nil }

	Broadcast(context.Background(), testAccounts()[:2], op, ReportPace)
	assert.Empty(t, *slept, "two accounts should not pace")

	Broadcast(context.Background(), testAccounts(), op, ReportPace)
	assert.Equal(t, []time.Duration{ReportPace, ReportPace}, *slept)
}

func TestDispatchNRoundRobin(t *testing.T) {
	stubSleep(t)
	var order []int64
	op := func(ctx context.Context, acc Account) error {
		order = append(order, acc.ID)
		return errors.New("ignored")
	}
	DispatchN(context.Background(), testAccounts()[:2], op, 5)
	assert.Equal(t, []int64{111111, 222222, 111111, 222222, 111111}, order)
}

func TestDispatchNPacing(t *testing.T) {
	op := func(ctx context.Context, acc Account) error { return nil }

	slept := stubSleep(t)
	DispatchN(context.Background(), testAccounts()[:1], op, 2)
	assert.Empty(t, *slept, "single account should not pace")

	slept = stubSleep(t)
	DispatchN(context.Background(), testAccounts()[:2], op, 3)
	assert.Equal(t, []time.Duration{SendPace, SendPace}, *slept)

	slept = stubSleep(t)
	DispatchN(context.Background(), testAccounts()[:2], op, 5)
	assert.Equal(t,
		[]time.Duration{SendPace, SendPace, roundPause, SendPace, SendPace, roundPause},
		*slept, "long runs pause after each full round, never after the last send")
}

func TestDispatchNNoAccounts(t *testing.T) {
	stubSleep(t)
	called := false
	DispatchN(context.Background(), nil, func(ctx context.Context, acc Account) error {
		called = true
		return nil
	}, 3)
	assert.False(t, called)
}

func TestCacheFreshness(t *testing.T) {
	a := &fakeSession{identity: Identity{ID: 111111, Username: "first"}}
	b := &fakeSession{identity: Identity{ID: 222222, Username: "asia"}}
	c := NewCache([]Session{a, b}, a)

	base := time.Unix(1700000000, 0)
	clock := base
	c.now = func() time.Time { return clock }

	got := c.Refresh(context.Background(), false)
	assert.Len(t, got, 2)
	assert.Equal(t, 1, a.whoCalls)

	clock = base.Add(30 * time.Second)
	c.Refresh(context.Background(), false)
	assert.Equal(t, 1, a.whoCalls, "fresh roster should be served from cache")

	clock = base.Add(61 * time.Second)
	c.Refresh(context.Background(), false)
	assert.Equal(t, 2, a.whoCalls, "stale roster should re-query")

	c.Refresh(context.Background(), true)
	assert.Equal(t, 3, a.whoCalls, "force should always re-query")
}

func TestCacheSkipsBrokenSessions(t *testing.T) {
	a := &fakeSession{identity: Identity{ID: 111111, Username: "first"}}
	b := &fakeSession{whoErr: errors.New("unauthorized")}
	c := NewCache([]Session{a, b}, a)

	got := c.Refresh(context.Background(), true)
	assert.Len(t, got, 1)
	assert.Equal(t, int64(111111), got[0].ID)
	assert.True(t, got[0].Primary)
}

func TestEnsureMemberAlreadyIn(t *testing.T) {
	primary := &fakeSession{identity: Identity{ID: 1}}
	member := &fakeSession{member: true}
	g := NewGuarantor(Account{Session: primary, ID: 1, Primary: true})

	ok := g.EnsureMember(context.Background(), Account{Session: member, ID: 2}, Chat{ID: -100})
	assert.True(t, ok)
	assert.Empty(t, member.joined)
}

func TestEnsureMemberJoinsByHandle(t *testing.T) {
	primary := &fakeSession{}
	stray := &fakeSession{memberErr: errors.New("not a participant")}
	g := NewGuarantor(Account{Session: primary, ID: 1, Primary: true})

	ok := g.EnsureMember(context.Background(), Account{Session: stray, ID: 2}, Chat{ID: -100, Handle: "somechat"})
	assert.True(t, ok)
	assert.Equal(t, []string{"somechat"}, stray.joined)
}

func TestEnsureMemberFallsBackToInvite(t *testing.T) {
	primary := &fakeSession{inviteLink: "https://t.me/+abcDEF123"}
	stray := &fakeSession{}
	g := NewGuarantor(Account{Session: primary, ID: 1, Primary: true})

	// Private chat: no handle, so the primary exports an invite.
	ok := g.EnsureMember(context.Background(), Account{Session: stray, ID: 2}, Chat{ID: -100})
	assert.True(t, ok)
	assert.Equal(t, []string{"abcDEF123"}, stray.imported)
}

func TestEnsureMemberDirectInviteLast(t *testing.T) {
	primary := &fakeSession{exportErr: errors.New("no rights")}
	stray := &fakeSession{}
	g := NewGuarantor(Account{Session: primary, ID: 1, Primary: true})

	ok := g.EnsureMember(context.Background(), Account{Session: stray, ID: 42}, Chat{ID: -100})
	assert.True(t, ok)
	assert.Equal(t, []int64{42}, primary.invited)
}

func TestEnsureMemberAllFail(t *testing.T) {
	primary := &fakeSession{exportErr: errors.New("no rights"), inviteErr: errors.New("privacy")}
	stray := &fakeSession{}
	g := NewGuarantor(Account{Session: primary, ID: 1, Primary: true})

	ok := g.EnsureMember(context.Background(), Account{Session: stray, ID: 2}, Chat{ID: -100})
	assert.False(t, ok)
}

func TestInviteHash(t *testing.T) {
	tests := []struct {
		link string
		want string
	}{
		{"https://t.me/joinchat/AAAAAE1234", "AAAAAE1234"},
		{"https://t.me/+abcDEF123", "abcDEF123"},
		{"t.me/+abcDEF123", "abcDEF123"},
		{"+rawhash", "rawhash"},
		{"rawhash", "rawhash"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, InviteHash(tt.link), tt.link)
	}
}

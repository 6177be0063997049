package roster

import (
	"context"
	"strings"

	"github.com/elisartix/herder/internal/logger"
)

// Guarantor gets stray accounts into a chat before a fan-out touches it.
// The primary account is assumed to already sit in every chat the owner
// cares about and is used to mint invites for the rest.
type Guarantor struct {
	primary Account
}

func NewGuarantor(primary Account) *Guarantor {
	return &Guarantor{primary: primary}
}

type joinStrategy func(ctx context.Context, acc Account, chat Chat) (bool, error)

// EnsureMember tries, in order: the account is already in the chat, joining
// by the chat's public handle, importing an invite exported by the primary,
// and finally a direct invite from the primary. Every failure is swallowed
// so a locked-down chat degrades to a partial fan-out instead of an error.
func (g *Guarantor) EnsureMember(ctx context.Context, acc Account, chat Chat) bool {
	strategies := []joinStrategy{
		g.alreadyMember,
		g.joinByHandle,
		g.joinByInvite,
		g.inviteDirectly,
	}
	for _, try := range strategies {
		ok, err := try(ctx, acc, chat)
		if err != nil {
			logger.Debug("join strategy failed", map[string]interface{}{
				"account": acc.ID,
				"chat":    chat.ID,
				"error":   err.Error(),
			})
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

func (g *Guarantor) alreadyMember(ctx context.Context, acc Account, chat Chat) (bool, error) {
	return acc.Session.IsMember(ctx, chat.ID)
}

func (g *Guarantor) joinByHandle(ctx context.Context, acc Account, chat Chat) (bool, error) {
	if chat.Handle == "" {
		return false, nil
	}
	if err := acc.Session.JoinByHandle(ctx, chat.Handle); err != nil {
		return false, err
	}
	return true, nil
}

func (g *Guarantor) joinByInvite(ctx context.Context, acc Account, chat Chat) (bool, error) {
	if g.primary.Session == nil {
		return false, nil
	}
	link, err := g.primary.Session.ExportInviteLink(ctx, chat.ID)
	if err != nil {
		return false, err
	}
	hash := InviteHash(link)
	if hash == "" {
		return false, nil
	}
	if err := acc.Session.JoinByInviteHash(ctx, hash); err != nil {
		return false, err
	}
	return true, nil
}

func (g *Guarantor) inviteDirectly(ctx context.Context, acc Account, chat Chat) (bool, error) {
	if g.primary.Session == nil {
		return false, nil
	}
	if err := g.primary.Session.InviteUser(ctx, chat.ID, acc.ID); err != nil {
		return false, err
	}
	return true, nil
}

// InviteHash extracts the invite hash from a t.me invite link. Both the
// /joinchat/<hash> and /+<hash> forms are accepted; a bare hash passes
// through unchanged.
func InviteHash(link string) string {
	s := strings.TrimSpace(link)
	if s == "" {
		return ""
	}
	if i := strings.LastIndex(s, "/joinchat/"); i >= 0 {
		return s[i+len("/joinchat/"):]
	}
	if i := strings.LastIndex(s, "/+"); i >= 0 {
		return s[i+2:]
	}
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return strings.TrimPrefix(s[i+1:], "+")
	}
	return strings.TrimPrefix(s, "+")
}

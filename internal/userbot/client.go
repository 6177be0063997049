package userbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/amarnathcjd/gogram/telegram"

	"github.com/elisartix/herder/internal/logger"
	"github.com/elisartix/herder/internal/roster"
)

// Client wraps one authorized MTProto user session. All gogram specifics
// live here; the rest of the code only sees roster.Session.
type Client struct {
	tg   *telegram.Client
	name string
}

var _ roster.Session = (*Client)(nil)

// Connect opens the session stored at path. The session must already be
// authorized; there is no interactive login flow here.
func Connect(appID int32, appHash, path string) (*Client, error) {
	tg, err := telegram.NewClient(telegram.ClientConfig{
		AppID:    appID,
		AppHash:  appHash,
		Session:  path,
		LogLevel: telegram.LogError,
	})
	if err != nil {
		return nil, fmt.Errorf("init session %s: %w", path, err)
	}
	if err := tg.Connect(); err != nil {
		return nil, fmt.Errorf("connect session %s: %w", path, err)
	}
	return &Client{tg: tg, name: path}, nil
}

// ConnectAll opens every session file in order. A session that fails to
// connect is logged and skipped so one dead file does not take the whole
// roster down.
func ConnectAll(appID int32, appHash string, paths []string) []*Client {
	clients := make([]*Client, 0, len(paths))
	for _, p := range paths {
		c, err := Connect(appID, appHash, p)
		if err != nil {
			logger.Error("session connect failed", map[string]interface{}{
				"session": p,
				"error":   err.Error(),
			})
			continue
		}
		clients = append(clients, c)
	}
	return clients
}

func (c *Client) Name() string { return c.name }

func (c *Client) Close() {
	c.tg.Disconnect()
}

func (c *Client) WhoAmI(ctx context.Context) (roster.Identity, error) {
	me, err := c.tg.GetMe()
	if err != nil {
		return roster.Identity{}, fmt.Errorf("get self (%s): %w", c.name, err)
	}
	display := strings.TrimSpace(me.FirstName + " " + me.LastName)
	return roster.Identity{ID: me.ID, Username: me.Username, DisplayName: display}, nil
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, text string, replyTo int32) error {
	opts := &telegram.SendOptions{ParseMode: telegram.HTML}
	if replyTo != 0 {
		opts.ReplyID = replyTo
	}
	if _, err := c.tg.SendMessage(chatID, text, opts); err != nil {
		return fmt.Errorf("send to %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) IsMember(ctx context.Context, chatID int64) (bool, error) {
	me, err := c.tg.GetMe()
	if err != nil {
		return false, err
	}
	if _, err := c.tg.GetChatMember(chatID, me.ID); err != nil {
		if isNotParticipant(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *Client) JoinByHandle(ctx context.Context, handle string) error {
	if _, err := c.tg.JoinChannel(handle); err != nil {
		return fmt.Errorf("join @%s: %w", strings.TrimPrefix(handle, "@"), err)
	}
	return nil
}

func (c *Client) JoinByInviteHash(ctx context.Context, hash string) error {
	if _, err := c.tg.MessagesImportChatInvite(hash); err != nil {
		if strings.Contains(err.Error(), "USER_ALREADY_PARTICIPANT") {
			return nil
		}
		return fmt.Errorf("import invite: %w", err)
	}
	return nil
}

func (c *Client) ExportInviteLink(ctx context.Context, chatID int64) (string, error) {
	peer, err := c.tg.ResolvePeer(chatID)
	if err != nil {
		return "", err
	}
	invite, err := c.tg.MessagesExportChatInvite(&telegram.MessagesExportChatInviteParams{Peer: peer})
	if err != nil {
		return "", fmt.Errorf("export invite for %d: %w", chatID, err)
	}
	exported, ok := invite.(*telegram.ChatInviteExported)
	if !ok {
		return "", fmt.Errorf("export invite for %d: unexpected %T", chatID, invite)
	}
	return exported.Link, nil
}

func (c *Client) InviteUser(ctx context.Context, chatID, userID int64) error {
	channel, err := c.inputChannel(chatID)
	if err != nil {
		return err
	}
	user, err := c.inputUser(userID)
	if err != nil {
		return err
	}
	if _, err := c.tg.ChannelsInviteToChannel(channel, []telegram.InputUser{user}); err != nil {
		return fmt.Errorf("invite %d to %d: %w", userID, chatID, err)
	}
	return nil
}

func (c *Client) EditAdminTitle(ctx context.Context, chatID, userID int64, title string) error {
	channel, err := c.inputChannel(chatID)
	if err != nil {
		return err
	}
	user, err := c.inputUser(userID)
	if err != nil {
		return err
	}
	// A custom title only shows up for admins, so the target gets a
	// minimal right along with the rank.
	rights := &telegram.ChatAdminRights{Other: true}
	if _, err := c.tg.ChannelsEditAdmin(channel, user, rights, title); err != nil {
		return fmt.Errorf("edit admin title in %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) ClearAdmin(ctx context.Context, chatID, userID int64) error {
	channel, err := c.inputChannel(chatID)
	if err != nil {
		return err
	}
	user, err := c.inputUser(userID)
	if err != nil {
		return err
	}
	if _, err := c.tg.ChannelsEditAdmin(channel, user, &telegram.ChatAdminRights{}, ""); err != nil {
		return fmt.Errorf("clear admin in %d: %w", chatID, err)
	}
	return nil
}

func (c *Client) ReportMessage(ctx context.Context, chatID int64, messageID int32, reason, comment string) error {
	peer, err := c.tg.ResolvePeer(chatID)
	if err != nil {
		return err
	}
	option, message := reportPayload(reason, comment)
	if _, err := c.tg.MessagesReport(peer, []int32{messageID}, option, message); err != nil {
		return fmt.Errorf("report %d/%d: %w", chatID, messageID, err)
	}
	return nil
}

// reportPayload builds the arguments for the options-based report flow. The
// first request carries empty option bytes; the reason name travels in the
// free-text message when no comment was given.
func reportPayload(reason, comment string) ([]byte, string) {
	if comment != "" {
		return []byte{}, comment
	}
	return []byte{}, reason
}

func (c *Client) inputChannel(chatID int64) (telegram.InputChannel, error) {
	peer, err := c.tg.ResolvePeer(chatID)
	if err != nil {
		return nil, err
	}
	ch, ok := peer.(*telegram.InputPeerChannel)
	if !ok {
		return nil, fmt.Errorf("chat %d is not a channel or supergroup", chatID)
	}
	return &telegram.InputChannelObj{ChannelID: ch.ChannelID, AccessHash: ch.AccessHash}, nil
}

func (c *Client) inputUser(userID int64) (telegram.InputUser, error) {
	peer, err := c.tg.ResolvePeer(userID)
	if err != nil {
		return nil, err
	}
	u, ok := peer.(*telegram.InputPeerUser)
	if !ok {
		return nil, fmt.Errorf("peer %d is not a user", userID)
	}
	return &telegram.InputUserObj{UserID: u.UserID, AccessHash: u.AccessHash}, nil
}

func isNotParticipant(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "USER_NOT_PARTICIPANT") || strings.Contains(msg, "PARTICIPANT_ID_INVALID")
}

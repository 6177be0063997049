package roster

import "context"

// Identity describes the user behind one authenticated session.
type Identity struct {
	ID          int64
	Username    string
	DisplayName string
}

// Session is one authenticated connection to Telegram. The coordinator owns
// the roster's sessions exclusively; implementations live in internal/userbot.
type Session interface {
	// WhoAmI returns the identity of the logged-in user.
	WhoAmI(ctx context.Context) (Identity, error)

	// SendMessage sends text to a chat, optionally as a reply.
	SendMessage(ctx context.Context, chatID int64, text string, replyTo int32) error

	// IsMember reports whether this session can act in the chat.
	IsMember(ctx context.Context, chatID int64) (bool, error)

	// JoinByHandle joins a chat via its public @handle.
	JoinByHandle(ctx context.Context, handle string) error

	// JoinByInviteHash consumes an invite link hash.
	JoinByInviteHash(ctx context.Context, hash string) error

	// ExportInviteLink creates a fresh invite link for the chat.
	ExportInviteLink(ctx context.Context, chatID int64) (string, error)

	// InviteUser adds another user to the chat directly.
	InviteUser(ctx context.Context, chatID, userID int64) error

	// EditAdminTitle grants a rights-free admin entry with a custom title.
	EditAdminTitle(ctx context.Context, chatID, userID int64, title string) error

	// ClearAdmin removes a previously granted admin entry.
	ClearAdmin(ctx context.Context, chatID, userID int64) error

	// ReportMessage reports a message with the given reason code and comment.
	ReportMessage(ctx context.Context, chatID int64, messageID int32, reason, comment string) error
}

// Account is one roster entry: a session plus the identity it resolved to.
type Account struct {
	Session     Session
	ID          int64
	Handle      string
	DisplayName string
	Primary     bool
}

// Chat identifies the target of membership and fan-out operations.
type Chat struct {
	ID     int64
	Handle string
}

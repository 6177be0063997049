package consts

// Telegram message formatting
const (
	ParseModeHTML = "html"
)

// Store namespaces and keys
const (
	NSGenshin = "genshin"
	NSDaily   = "daily"
	NSLLM     = "llm"

	KeyUIDAliases = "saved_uids_v1"
	KeyDefaultUID = "default_uid_v1"

	KeyDailyEnabled = "enabled"
	KeyDailyTimes   = "times"
	KeyDailyLast    = "last_mark"

	KeySystemPrompt = "system_prompt"
)

// Report reasons accepted by /report
const (
	ReasonSpam        = "Spam"
	ReasonViolence    = "Violence"
	ReasonPornography = "Pornography"
	ReasonChildAbuse  = "ChildAbuse"
	ReasonCopyright   = "Copyright"
	ReasonOther       = "Other"
)

// Admin titles are capped by Telegram
const MaxAdminTitleLen = 16

// Usage strings shown when a command is called with bad arguments
const (
	SayUsage    = "<b>Usage:</b> <code>/say 1 text [count]</code>\n<i>Last argument is optional and sets how many times to repeat.</i>"
	SpamUsage   = "<b>Usage:</b> <code>/spam [account] text count [-s]</code>\n<i>Account optional (number/id/username). Without account -&gt; all.</i>"
	JoinUsage   = "<b>Usage:</b> <code>/join [account]</code> (current chat)\n<i>No args = all accounts. Account can be number, user id or username.</i>"
	ReportUsage = "<b>Usage:</b> <code>/report [Reason]</code> in reply to a message\n<i>Reasons: Spam, Violence, Pornography, ChildAbuse, Copyright, Other.</i>\n<i>No args = Spam and Other.</i>"
	RoleUsage   = "<b>Usage:</b> <code>/role Title</code> in reply to a user."
	AskUsage    = "<b>Usage:</b> <code>/ask text</code> or reply to a message."
	EnuidUsage  = "<b>Usage:</b> <code>/enuid 862278867</code> or <code>/enuid asia 862278867</code>"
	EncharUsage = "<b>Usage:</b> <code>/enchar Name [uid|alias]</code>"
	DailyUsage  = "<b>Usage:</b> <code>/dailytimes 10:00,22:00</code>"
)

package bot

import "time"

// Command names.
const (
	CmdStart  = "start"
	CmdHelp   = "help"
	CmdStatus = "status"
)

// Log field names.
const (
	LogFieldUserID  = "user_id"
	LogFieldChatID  = "chat_id"
	LogFieldCommand = "command"
)

const (
	updateTimeoutSeconds = 60

	// statusWindow is how far back /status reports acquisition history.
	statusWindow = 24 * time.Hour

	// Telegram allows about 30 messages per second per bot.
	sendRatePerSecond = 25
	sendBurst         = 5
)

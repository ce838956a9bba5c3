package bot

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
)

type commandHandler func(ctx context.Context, msg *tgbotapi.Message)

type commandRegistry struct {
	handlers map[string]commandHandler
}

func (b *Bot) newCommandRegistry() *commandRegistry {
	return &commandRegistry{handlers: map[string]commandHandler{
		CmdStart:  b.handleStart,
		CmdHelp:   b.handleHelp,
		CmdStatus: b.handleStatus,
	}}
}

func (r *commandRegistry) route(ctx context.Context, msg *tgbotapi.Message) bool {
	if handler, ok := r.handlers[msg.Command()]; ok {
		handler(ctx, msg)

		return true
	}

	return false
}

// handleCommand answers known commands. Unknown commands are ignored so the bot stays quiet in groups.
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	logger := b.logger.With().Str(LogFieldCommand, msg.Command()).Int64(LogFieldChatID, msg.Chat.ID).Logger()
	if msg.From != nil {
		logger = logger.With().Int64(LogFieldUserID, msg.From.ID).Logger()
	}

	if !b.newCommandRegistry().route(ctx, msg) {
		logger.Debug().Msg("ignoring unknown command")

		return
	}

	logger.Info().Msg("handled command")
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	b.reply(ctx, msg, startMessage(b.opts.Marker))
}

func (b *Bot) handleHelp(ctx context.Context, msg *tgbotapi.Message) {
	b.reply(ctx, msg, helpMessage(b.opts.Marker))
}

func (b *Bot) handleStatus(ctx context.Context, msg *tgbotapi.Message) {
	processed, err := b.deps.Processed.Len(ctx)
	if err != nil {
		b.logger.Warn().Err(err).Msg("failed to count processed messages")

		processed = -1
	}

	var history []historyLine

	if b.deps.History != nil {
		counts, err := b.deps.History.Summary(ctx, time.Now().Add(-statusWindow))
		if err != nil {
			b.logger.Warn().Err(err).Msg("failed to load acquisition summary")
		}

		for _, c := range counts {
			history = append(history, historyLine{outcome: string(c.Outcome), kind: string(c.FailureKind), count: c.Count})
		}
	}

	b.reply(ctx, msg, statusMessage(time.Since(b.started), processed, history))
}

func (b *Bot) reply(ctx context.Context, msg *tgbotapi.Message, text string) {
	if _, err := b.deps.Messenger.Reply(ctx, msg.Chat.ID, msg.MessageID, text); err != nil {
		b.logger.Error().Err(err).Int64(LogFieldChatID, msg.Chat.ID).Msg("failed to send command reply")
	}
}

func platformList() string {
	names := make([]string, 0, len(domain.SupportedPlatforms()))
	for _, p := range domain.SupportedPlatforms() {
		names = append(names, p.DisplayName())
	}

	return strings.Join(names, ", ")
}

func startMessage(marker string) string {
	return "\U0001F44B <b>Video Downloader Bot</b>\n\n" +
		"Send me a link to a video post and I will send the video back.\n\n" +
		"Supported platforms: " + platformList() + "\n\n" +
		"• In private chats every supported link is downloaded\n" +
		"• In groups TikTok links are downloaded automatically\n" +
		"• For other platforms in groups add <code>" + html.EscapeString(marker) + "</code> to your message\n\n" +
		"<i>Only messages sent after I joined the chat are processed.</i>"
}

func helpMessage(marker string) string {
	return "\U0001F527 <b>How to use</b>\n\n" +
		"1. Send a message with a link from:\n" +
		"• YouTube (youtube.com, youtu.be)\n" +
		"• Instagram (instagram.com)\n" +
		"• TikTok (tiktok.com, vm.tiktok.com)\n" +
		"• Facebook (facebook.com, fb.watch)\n" +
		"• Twitter/X (twitter.com, x.com, t.co)\n" +
		"• Threads (threads.net) - sent as a screenshot when there is no video\n\n" +
		"2. In groups, TikTok is automatic; other platforms need <code>" + html.EscapeString(marker) + "</code>\n\n" +
		"<b>Limitations</b>\n" +
		"• Maximum file size: 50MB\n" +
		"• Video content only\n\n" +
		"<b>Commands</b>\n" +
		"<code>/start</code> - Welcome message\n" +
		"<code>/help</code> - This message\n" +
		"<code>/status</code> - Bot status"
}

type historyLine struct {
	outcome string
	kind    string
	count   int
}

func statusMessage(uptime time.Duration, processed int, history []historyLine) string {
	var b strings.Builder

	b.WriteString("\U0001F4CA <b>Bot Status</b>\n\n")
	b.WriteString("✅ Bot is running\n")
	fmt.Fprintf(&b, "⏱️ Uptime: %s\n", uptime.Truncate(time.Second))

	if processed >= 0 {
		fmt.Fprintf(&b, "\U0001F4C1 Messages processed: %d\n", processed)
	} else {
		b.WriteString("\U0001F4C1 Messages processed: unavailable\n")
	}

	b.WriteString("\U0001F527 Supported platforms: " + platformList())

	if len(history) > 0 {
		b.WriteString("\n\n\U0001F4C8 <b>Last 24h</b>")

		for _, h := range history {
			label := h.outcome
			if h.kind != "" {
				label += " (" + h.kind + ")"
			}

			fmt.Fprintf(&b, "\n• %s: %d", html.EscapeString(label), h.count)
		}
	}

	return b.String()
}

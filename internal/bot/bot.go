package bot

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
	"github.com/victordov/telegram-video-downloader/internal/core/ports"
	"github.com/victordov/telegram-video-downloader/internal/platform/worker"
)

// MessageHandler receives every non-command message.
type MessageHandler interface {
	OnMessage(ctx context.Context, msg domain.InboundMessage)
}

// Deps are the collaborators of a Bot. History is optional.
type Deps struct {
	API       API
	Messenger ports.Messenger
	Handler   MessageHandler
	Processed ports.ProcessedMessageSet
	History   ports.AcquisitionLog
}

// Options tunes the update loop.
type Options struct {
	MaxConcurrentMessages int
	Marker                string
}

type Bot struct {
	deps    Deps
	opts    Options
	started time.Time
	logger  *zerolog.Logger
}

// NewAPI connects to the Bot API with token.
func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating bot API: %w", err)
	}

	return api, nil
}

func New(deps Deps, opts Options, logger *zerolog.Logger) *Bot {
	return &Bot{
		deps:    deps,
		opts:    opts,
		started: time.Now(),
		logger:  logger,
	}
}

// Run consumes updates until ctx is canceled, then waits for in-flight messages.
// Commands are answered inline. Other messages run on a bounded worker group.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = updateTimeoutSeconds

	updates := b.deps.API.GetUpdatesChan(u)
	group := worker.NewGroup("messages", b.opts.MaxConcurrentMessages, b.logger)

	defer group.Wait()

	b.logger.Info().Int("max_concurrent_messages", b.opts.MaxConcurrentMessages).Msg("bot started")

	for {
		select {
		case <-ctx.Done():
			b.deps.API.StopReceivingUpdates()

			return fmt.Errorf("bot run context canceled: %w", ctx.Err())
		case update, ok := <-updates:
			if !ok {
				return nil
			}

			if update.Message == nil {
				continue
			}

			if update.Message.IsCommand() {
				b.handleCommand(ctx, update.Message)

				continue
			}

			inbound, ok := toInbound(update.Message)
			if !ok {
				continue
			}

			if err := group.Go(ctx, func(ctx context.Context) {
				b.deps.Handler.OnMessage(ctx, inbound)
			}); err != nil {
				b.deps.API.StopReceivingUpdates()

				return err
			}
		}
	}
}

// toInbound converts a Bot API message. Captions stand in for text on media posts.
func toInbound(msg *tgbotapi.Message) (domain.InboundMessage, bool) {
	if msg.Chat == nil {
		return domain.InboundMessage{}, false
	}

	text := msg.Text
	if text == "" {
		text = msg.Caption
	}

	in := domain.InboundMessage{
		ID: domain.MessageID{ChatID: msg.Chat.ID, MessageID: msg.MessageID},
		Chat: domain.ChatContext{
			ChatID: msg.Chat.ID,
			Kind:   domain.ChatKindFromTelegram(msg.Chat.Type),
			Title:  msg.Chat.Title,
		},
		Text: text,
	}

	if msg.From != nil {
		in.FromUserID = msg.From.ID
	}

	return in, in.HasText()
}

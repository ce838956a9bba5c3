package bot

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"github.com/victordov/telegram-video-downloader/internal/core/ports"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

var (
	_ API             = (*tgbotapi.BotAPI)(nil)
	_ ports.Messenger = (*Messenger)(nil)
)

// Messenger sends HTML replies through the Bot API, throttled to stay under Telegram's send limit.
type Messenger struct {
	api     API
	limiter *rate.Limiter
}

// NewMessenger wraps api.
func NewMessenger(api API) *Messenger {
	return &Messenger{
		api:     api,
		limiter: rate.NewLimiter(sendRatePerSecond, sendBurst),
	}
}

func (m *Messenger) Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyToMessageID = replyTo
	msg.DisableWebPagePreview = true

	sent, err := m.send(ctx, msg)
	if err != nil {
		return 0, fmt.Errorf("reply to %d in chat %d: %w", replyTo, chatID, err)
	}

	return sent.MessageID, nil
}

func (m *Messenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true

	if _, err := m.send(ctx, edit); err != nil {
		return fmt.Errorf("edit message %d in chat %d: %w", messageID, chatID, err)
	}

	return nil
}

func (m *Messenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("delete message %d: %w", messageID, err)
	}

	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		return fmt.Errorf("delete message %d in chat %d: %w", messageID, chatID, err)
	}

	return nil
}

func (m *Messenger) SendMedia(ctx context.Context, chatID int64, replyTo int, media ports.OutboundMedia) error {
	var c tgbotapi.Chattable

	switch media.Kind {
	case ports.MediaPhoto:
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FilePath(media.Path))
		photo.Caption = media.Caption
		photo.ParseMode = tgbotapi.ModeHTML
		photo.ReplyToMessageID = replyTo
		c = photo
	default:
		video := tgbotapi.NewVideo(chatID, tgbotapi.FilePath(media.Path))
		video.Caption = media.Caption
		video.ParseMode = tgbotapi.ModeHTML
		video.ReplyToMessageID = replyTo
		video.SupportsStreaming = true
		c = video
	}

	if _, err := m.send(ctx, c); err != nil {
		return fmt.Errorf("send %s to chat %d: %w", media.Kind, chatID, err)
	}

	return nil
}

func (m *Messenger) send(ctx context.Context, c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return tgbotapi.Message{}, err
	}

	return m.api.Send(c)
}

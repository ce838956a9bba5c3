package ports

import "context"

// MediaKind selects how an artifact is delivered.
type MediaKind string

// Media kinds.
const (
	MediaVideo MediaKind = "video"
	MediaPhoto MediaKind = "photo"
)

// OutboundMedia is a local file delivered with an HTML caption.
type OutboundMedia struct {
	Kind    MediaKind
	Path    string
	Caption string
}

// Messenger sends chat responses. Text and captions are HTML formatted.
type Messenger interface {
	Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error)
	Edit(ctx context.Context, chatID int64, messageID int, text string) error
	Delete(ctx context.Context, chatID int64, messageID int) error
	SendMedia(ctx context.Context, chatID int64, replyTo int, media OutboundMedia) error
}

package domain

import (
	"strconv"
	"strings"
)

// ChatKind is the coarse chat category used by the admission rule.
type ChatKind string

// Chat kinds.
const (
	ChatKindPrivate ChatKind = "private"
	ChatKindGroup   ChatKind = "group"
)

// ChatKindFromTelegram maps a Telegram chat type onto a ChatKind.
// Anything that is not a one-to-one chat is treated as a group.
func ChatKindFromTelegram(chatType string) ChatKind {
	if chatType == "private" {
		return ChatKindPrivate
	}

	return ChatKindGroup
}

// ChatContext identifies the conversation a message arrived in.
type ChatContext struct {
	ChatID int64
	Kind   ChatKind
	Title  string
}

// MessageID is the identity of an inbound chat message.
// Telegram message ids are only unique within a chat, so the chat id is part of the key.
type MessageID struct {
	ChatID    int64
	MessageID int
}

// Key returns a stable string form of the identity, e.g. "-1001234:42".
func (m MessageID) Key() string {
	return strconv.FormatInt(m.ChatID, 10) + ":" + strconv.Itoa(m.MessageID)
}

// InboundMessage is a text message delivered by the messaging transport.
type InboundMessage struct {
	ID         MessageID
	Chat       ChatContext
	FromUserID int64
	Text       string
}

// HasText reports whether the message carries any non-blank text.
func (m InboundMessage) HasText() bool {
	return strings.TrimSpace(m.Text) != ""
}

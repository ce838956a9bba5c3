package mocks

import (
	"context"
	"sync"

	"github.com/victordov/telegram-video-downloader/internal/core/ports"
)

// Messenger operations recorded by the mock.
const (
	OpReply     = "reply"
	OpEdit      = "edit"
	OpDelete    = "delete"
	OpSendMedia = "send_media"
)

const firstMessageID = 1000

// MessengerCall is one recorded Messenger invocation.
type MessengerCall struct {
	Op        string
	ChatID    int64
	MessageID int
	ReplyTo   int
	Text      string
	Media     ports.OutboundMedia
}

// Messenger is a thread-safe implementation of ports.Messenger that records every call.
type Messenger struct {
	mu     sync.Mutex
	calls  []MessengerCall
	nextID int

	// ReplyFn allows overriding Reply behavior.
	ReplyFn func(ctx context.Context, chatID int64, replyTo int, text string) (int, error)

	// EditFn allows overriding Edit behavior.
	EditFn func(ctx context.Context, chatID int64, messageID int, text string) error

	// DeleteFn allows overriding Delete behavior.
	DeleteFn func(ctx context.Context, chatID int64, messageID int) error

	// SendMediaFn allows overriding SendMedia behavior.
	SendMediaFn func(ctx context.Context, chatID int64, replyTo int, media ports.OutboundMedia) error
}

// NewMessenger creates a new recording messenger.
func NewMessenger() *Messenger {
	return &Messenger{nextID: firstMessageID}
}

func (m *Messenger) record(c MessengerCall) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, c)
}

// Reply records the call and returns a fresh message id.
func (m *Messenger) Reply(ctx context.Context, chatID int64, replyTo int, text string) (int, error) {
	m.record(MessengerCall{Op: OpReply, ChatID: chatID, ReplyTo: replyTo, Text: text})

	if m.ReplyFn != nil {
		return m.ReplyFn(ctx, chatID, replyTo, text)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.nextID == 0 {
		m.nextID = firstMessageID
	}

	m.nextID++

	return m.nextID, nil
}

// Edit records the call.
func (m *Messenger) Edit(ctx context.Context, chatID int64, messageID int, text string) error {
	m.record(MessengerCall{Op: OpEdit, ChatID: chatID, MessageID: messageID, Text: text})

	if m.EditFn != nil {
		return m.EditFn(ctx, chatID, messageID, text)
	}

	return nil
}

// Delete records the call.
func (m *Messenger) Delete(ctx context.Context, chatID int64, messageID int) error {
	m.record(MessengerCall{Op: OpDelete, ChatID: chatID, MessageID: messageID})

	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, chatID, messageID)
	}

	return nil
}

// SendMedia records the call.
func (m *Messenger) SendMedia(ctx context.Context, chatID int64, replyTo int, media ports.OutboundMedia) error {
	m.record(MessengerCall{Op: OpSendMedia, ChatID: chatID, ReplyTo: replyTo, Media: media})

	if m.SendMediaFn != nil {
		return m.SendMediaFn(ctx, chatID, replyTo, media)
	}

	return nil
}

// Calls returns a copy of all recorded calls in order.
func (m *Messenger) Calls() []MessengerCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]MessengerCall(nil), m.calls...)
}

// Ops returns the recorded operation names in order.
func (m *Messenger) Ops() []string {
	calls := m.Calls()

	ops := make([]string, len(calls))
	for i, c := range calls {
		ops[i] = c.Op
	}

	return ops
}

// Package dispatch turns inbound chat messages into acquisitions and chat replies.
package dispatch

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
	"github.com/victordov/telegram-video-downloader/internal/core/links/linkextract"
	"github.com/victordov/telegram-video-downloader/internal/core/ports"
	"github.com/victordov/telegram-video-downloader/internal/platform/observability"
)

const (
	logFieldChatID    = "chat_id"
	logFieldMsgID     = "msg_id"
	logFieldURL       = "url"
	logFieldPlatform  = "platform"
	logFieldRequestID = "request_id"

	opReply     = "reply"
	opEdit      = "edit"
	opDelete    = "delete"
	opSendMedia = "send_media"

	// historyTimeout bounds the history write once the chat response is sent.
	historyTimeout = 5 * time.Second

	// deliveryTimeout bounds the final reply, edit or upload for one link.
	// It outlives cancellation of the message context so the placeholder is always resolved.
	deliveryTimeout = 2 * time.Minute
)

// Classifier maps a URL onto a platform.
type Classifier interface {
	Classify(rawURL string) domain.Platform
}

// Acquirer produces exactly one result per request.
type Acquirer interface {
	Acquire(ctx context.Context, req domain.AcquisitionRequest) domain.Result
}

// Deps are the collaborators of a Dispatcher. History is optional.
type Deps struct {
	Processed  ports.ProcessedMessageSet
	Classifier Classifier
	Acquirer   Acquirer
	Messenger  ports.Messenger
	History    ports.AcquisitionLog
}

// Dispatcher handles one message at a time per call and is safe for concurrent use.
type Dispatcher struct {
	deps   Deps
	marker string
	logger *zerolog.Logger
}

// New creates a Dispatcher. marker is the opt-in tag for non-tiktok links in groups.
func New(deps Deps, marker string, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{deps: deps, marker: marker, logger: logger}
}

// Marker returns the configured opt-in tag.
func (d *Dispatcher) Marker() string {
	return d.marker
}

// OnMessage processes msg. Messages without text and messages already seen are ignored.
// Admitted links are handled sequentially in the order they appear in the text.
func (d *Dispatcher) OnMessage(ctx context.Context, msg domain.InboundMessage) {
	if !msg.HasText() {
		return
	}

	logger := d.logger.With().Int64(logFieldChatID, msg.ID.ChatID).Int(logFieldMsgID, msg.ID.MessageID).Logger()

	observability.MessagesReceived.WithLabelValues(string(msg.Chat.Kind)).Inc()

	added, err := d.deps.Processed.MarkIfAbsent(ctx, msg.ID)
	if err != nil {
		observability.DedupErrors.Inc()
		logger.Error().Err(err).Msg("failed to mark message as processed, dropping")

		return
	}

	if !added {
		observability.MessagesDuplicate.Inc()
		logger.Debug().Msg("message already processed")

		return
	}

	for _, url := range linkextract.ExtractURLs(msg.Text) {
		platform := d.deps.Classifier.Classify(url)
		admitted := Admit(msg.Chat.Kind, platform, msg.Text, d.marker)

		observability.LinksDetected.WithLabelValues(string(platform), boolLabel(admitted)).Inc()

		if !admitted {
			logger.Debug().Str(logFieldURL, url).Str(logFieldPlatform, string(platform)).Msg("link not admitted")

			continue
		}

		if ctx.Err() != nil {
			return
		}

		d.handleURL(ctx, msg, url, platform, &logger)
	}
}

func (d *Dispatcher) handleURL(ctx context.Context, msg domain.InboundMessage, url string, platform domain.Platform, parent *zerolog.Logger) {
	logger := parent.With().
		Str(logFieldRequestID, uuid.NewString()).
		Str(logFieldURL, url).
		Str(logFieldPlatform, string(platform)).
		Logger()

	placeholderID := 0

	deliverCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("panic while handling link")
			d.resolvePlaceholder(deliverCtx, msg, placeholderID, TextInternalError, &logger)
		}
	}()

	logger.Info().Msg("processing link")

	id, err := d.deps.Messenger.Reply(ctx, msg.ID.ChatID, msg.ID.MessageID, PlaceholderText(platform))
	if err != nil {
		observability.DeliveryErrors.WithLabelValues(opReply).Inc()
		logger.Warn().Err(err).Msg("failed to send placeholder")
	} else {
		placeholderID = id
	}

	start := time.Now()
	res := d.deps.Acquirer.Acquire(ctx, domain.AcquisitionRequest{URL: url, Platform: platform})

	defer removeArtifact(res.Artifact, &logger)

	d.record(ctx, msg, url, platform, res, time.Since(start), &logger)

	if ctx.Err() != nil {
		logger.Info().Err(ctx.Err()).Msg("message context ended during acquisition, resolving placeholder")
	}

	if res.Outcome == domain.OutcomeFailure {
		d.resolvePlaceholder(deliverCtx, msg, placeholderID, FailureText(res.Failure), &logger)

		return
	}

	kind := ports.MediaVideo
	if res.IsScreenshot() {
		kind = ports.MediaPhoto
	}

	err = d.deps.Messenger.SendMedia(deliverCtx, msg.ID.ChatID, msg.ID.MessageID, ports.OutboundMedia{
		Kind:    kind,
		Path:    res.Artifact.Path,
		Caption: Caption(res.Artifact, res.IsScreenshot()),
	})
	if err != nil {
		observability.DeliveryErrors.WithLabelValues(opSendMedia).Inc()
		logger.Error().Err(err).Msg("failed to deliver artifact")
		d.resolvePlaceholder(deliverCtx, msg, placeholderID, TextInternalError, &logger)

		return
	}

	if placeholderID != 0 {
		if err := d.deps.Messenger.Delete(deliverCtx, msg.ID.ChatID, placeholderID); err != nil {
			observability.DeliveryErrors.WithLabelValues(opDelete).Inc()
			logger.Warn().Err(err).Msg("failed to delete placeholder")
		}
	}

	logger.Info().Str("outcome", string(res.Outcome)).Msg("link delivered")
}

// resolvePlaceholder turns the placeholder into text, or replies when there is none.
func (d *Dispatcher) resolvePlaceholder(ctx context.Context, msg domain.InboundMessage, placeholderID int, text string, logger *zerolog.Logger) {
	if placeholderID != 0 {
		if err := d.deps.Messenger.Edit(ctx, msg.ID.ChatID, placeholderID, text); err != nil {
			observability.DeliveryErrors.WithLabelValues(opEdit).Inc()
			logger.Warn().Err(err).Msg("failed to edit placeholder")
		}

		return
	}

	if _, err := d.deps.Messenger.Reply(ctx, msg.ID.ChatID, msg.ID.MessageID, text); err != nil {
		observability.DeliveryErrors.WithLabelValues(opReply).Inc()
		logger.Warn().Err(err).Msg("failed to send reply")
	}
}

func (d *Dispatcher) record(parent context.Context, msg domain.InboundMessage, url string, platform domain.Platform, res domain.Result, elapsed time.Duration, logger *zerolog.Logger) {
	if d.deps.History == nil {
		return
	}

	entry := ports.HistoryEntry{
		ChatID:      msg.ID.ChatID,
		MessageID:   msg.ID.MessageID,
		URL:         url,
		Platform:    platform,
		Outcome:     res.Outcome,
		FailureKind: res.FailureKind(),
		Elapsed:     elapsed,
		CreatedAt:   time.Now(),
	}

	if res.Artifact != nil {
		entry.Size = res.Artifact.Size
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(parent), historyTimeout)
	defer cancel()

	if err := d.deps.History.Record(ctx, entry); err != nil {
		logger.Warn().Err(err).Msg("failed to record acquisition history")
	}
}

func removeArtifact(a *domain.Artifact, logger *zerolog.Logger) {
	if a == nil || a.Path == "" {
		return
	}

	if err := os.Remove(a.Path); err != nil && !os.IsNotExist(err) {
		logger.Warn().Err(err).Str("path", a.Path).Msg("failed to remove artifact")
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}

	return "false"
}

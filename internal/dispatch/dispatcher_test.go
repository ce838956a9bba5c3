package dispatch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
	"github.com/victordov/telegram-video-downloader/internal/core/links/classify"
	"github.com/victordov/telegram-video-downloader/internal/core/ports"
	"github.com/victordov/telegram-video-downloader/internal/core/ports/mocks"
)

const (
	chatID     = int64(-100500)
	youtubeURL = "https://www.youtube.com/watch?v=dQw4w9WgXcQ"
	tiktokURL  = "https://vm.tiktok.com/ZMabc123"
	threadsURL = "https://www.threads.net/@user/post/C1a2B3c4D5e"
)

type mockAcquirer struct {
	mock.Mock
}

func (m *mockAcquirer) Acquire(ctx context.Context, req domain.AcquisitionRequest) domain.Result {
	args := m.Called(ctx, req)

	return args.Get(0).(domain.Result)
}

type fixture struct {
	processed *mocks.ProcessedMessageSet
	acquirer  *mockAcquirer
	messenger *mocks.Messenger
	history   *mocks.AcquisitionLog
	d         *Dispatcher
}

func newFixture() *fixture {
	logger := zerolog.Nop()
	f := &fixture{
		processed: mocks.NewProcessedMessageSet(),
		acquirer:  &mockAcquirer{},
		messenger: mocks.NewMessenger(),
		history:   &mocks.AcquisitionLog{},
	}

	f.d = New(Deps{
		Processed:  f.processed,
		Classifier: classify.NewDefault(),
		Acquirer:   f.acquirer,
		Messenger:  f.messenger,
		History:    f.history,
	}, marker, &logger)

	return f
}

func message(kind domain.ChatKind, msgID int, text string) domain.InboundMessage {
	return domain.InboundMessage{
		ID:   domain.MessageID{ChatID: chatID, MessageID: msgID},
		Chat: domain.ChatContext{ChatID: chatID, Kind: kind},
		Text: text,
	}
}

func tempArtifact(t *testing.T, name string, size int) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, make([]byte, size), 0o600))

	return path
}

func request(url string, platform domain.Platform) domain.AcquisitionRequest {
	return domain.AcquisitionRequest{URL: url, Platform: platform}
}

func TestOnMessagePrivateMediaDelivered(t *testing.T) {
	f := newFixture()
	path := tempArtifact(t, "Clip.mp4", 10)

	f.acquirer.On("Acquire", mock.Anything, request(youtubeURL, domain.PlatformYouTube)).
		Return(domain.MediaResult(domain.Artifact{Path: path, Title: "Clip", Platform: domain.PlatformYouTube, Duration: domain.UnknownDuration, Size: 10})).
		Once()

	f.d.OnMessage(context.Background(), message(domain.ChatKindPrivate, 1, "watch "+youtubeURL))

	f.acquirer.AssertExpectations(t)
	assert.Equal(t, []string{mocks.OpReply, mocks.OpSendMedia, mocks.OpDelete}, f.messenger.Ops())

	calls := f.messenger.Calls()
	assert.Equal(t, "🔄 Downloading video from YouTube...", calls[0].Text)
	assert.Equal(t, 1, calls[0].ReplyTo)
	assert.Equal(t, ports.MediaVideo, calls[1].Media.Kind)
	assert.Equal(t, path, calls[1].Media.Path)
	assert.Contains(t, calls[1].Media.Caption, "<b>Clip</b>")
	assert.Equal(t, 1001, calls[2].MessageID, "the placeholder is deleted")

	assert.NoFileExists(t, path)

	summary, err := f.history.Summary(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Equal(t, []ports.OutcomeCount{{Outcome: domain.OutcomeMedia, Count: 1}}, summary)
}

func TestOnMessageSnapshotDeliveredAsPhoto(t *testing.T) {
	f := newFixture()
	path := tempArtifact(t, "screenshot_1_abcdef12.png", 10)

	f.acquirer.On("Acquire", mock.Anything, request(threadsURL, domain.PlatformThreads)).
		Return(domain.SnapshotResult(domain.Artifact{Path: path, Title: "Post", Platform: domain.PlatformThreads, Size: 10}))

	f.d.OnMessage(context.Background(), message(domain.ChatKindPrivate, 2, threadsURL))

	calls := f.messenger.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, ports.MediaPhoto, calls[1].Media.Kind)
	assert.Contains(t, calls[1].Media.Caption, "📸")
	assert.NoFileExists(t, path)
}

func TestOnMessageFailureEditsPlaceholder(t *testing.T) {
	f := newFixture()

	f.acquirer.On("Acquire", mock.Anything, request(tiktokURL, domain.PlatformTikTok)).
		Return(domain.FailureResult(domain.Failure{Kind: domain.FailureNotAVideo}))

	f.d.OnMessage(context.Background(), message(domain.ChatKindGroup, 3, "lol "+tiktokURL))

	calls := f.messenger.Calls()
	require.Equal(t, []string{mocks.OpReply, mocks.OpEdit}, f.messenger.Ops())
	assert.Equal(t, 1001, calls[1].MessageID)
	assert.Equal(t, TextNotAVideo, calls[1].Text)
}

func TestOnMessageGroupAdmission(t *testing.T) {
	f := newFixture()

	f.d.OnMessage(context.Background(), message(domain.ChatKindGroup, 4, "no tag "+youtubeURL))

	assert.Empty(t, f.messenger.Calls())
	f.acquirer.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
	assert.True(t, f.processed.Contains(domain.MessageID{ChatID: chatID, MessageID: 4}), "message is marked even when nothing is admitted")
}

func TestOnMessageGroupWithMarker(t *testing.T) {
	f := newFixture()

	f.acquirer.On("Acquire", mock.Anything, request(youtubeURL, domain.PlatformYouTube)).
		Return(domain.FailureResult(domain.Failure{Kind: domain.FailureExtractionFailed}))

	f.d.OnMessage(context.Background(), message(domain.ChatKindGroup, 5, youtubeURL+" #Download"))

	f.acquirer.AssertNumberOfCalls(t, "Acquire", 1)
	assert.Equal(t, TextGenericFailure, f.messenger.Calls()[1].Text)
}

func TestOnMessageIgnoresEmptyText(t *testing.T) {
	f := newFixture()

	f.d.OnMessage(context.Background(), message(domain.ChatKindPrivate, 6, "   "))

	assert.Empty(t, f.messenger.Calls())
	assert.False(t, f.processed.Contains(domain.MessageID{ChatID: chatID, MessageID: 6}))
}

func TestOnMessageDuplicateIsNoop(t *testing.T) {
	f := newFixture()
	msg := message(domain.ChatKindPrivate, 7, youtubeURL)

	f.acquirer.On("Acquire", mock.Anything, mock.Anything).
		Return(domain.FailureResult(domain.Failure{Kind: domain.FailureExtractionFailed}))

	f.d.OnMessage(context.Background(), msg)
	f.d.OnMessage(context.Background(), msg)

	f.acquirer.AssertNumberOfCalls(t, "Acquire", 1)
	assert.Len(t, f.messenger.Calls(), 2)
}

func TestOnMessageSameIDDifferentChat(t *testing.T) {
	f := newFixture()

	f.acquirer.On("Acquire", mock.Anything, mock.Anything).
		Return(domain.FailureResult(domain.Failure{Kind: domain.FailureExtractionFailed}))

	msg := message(domain.ChatKindPrivate, 8, youtubeURL)
	f.d.OnMessage(context.Background(), msg)

	msg.ID.ChatID = 42
	msg.Chat.ChatID = 42
	f.d.OnMessage(context.Background(), msg)

	f.acquirer.AssertNumberOfCalls(t, "Acquire", 2)
}

func TestOnMessageConcurrentDuplicatesProcessedOnce(t *testing.T) {
	f := newFixture()

	var acquired atomic.Int32

	f.acquirer.On("Acquire", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { acquired.Add(1) }).
		Return(domain.FailureResult(domain.Failure{Kind: domain.FailureExtractionFailed}))

	msg := message(domain.ChatKindPrivate, 9, youtubeURL)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()
			f.d.OnMessage(context.Background(), msg)
		}()
	}

	wg.Wait()

	assert.Equal(t, int32(1), acquired.Load())
}

func TestOnMessageStoreErrorDropsMessage(t *testing.T) {
	f := newFixture()
	f.processed.MarkIfAbsentFn = func(context.Context, domain.MessageID) (bool, error) {
		return false, fmt.Errorf("redis down")
	}

	f.d.OnMessage(context.Background(), message(domain.ChatKindPrivate, 10, youtubeURL))

	assert.Empty(t, f.messenger.Calls())
	f.acquirer.AssertNotCalled(t, "Acquire", mock.Anything, mock.Anything)
}

func TestOnMessageURLsHandledSequentiallyInOrder(t *testing.T) {
	f := newFixture()

	var (
		mu    sync.Mutex
		order []string
	)

	f.acquirer.On("Acquire", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			mu.Lock()
			defer mu.Unlock()

			order = append(order, args.Get(1).(domain.AcquisitionRequest).URL)
		}).
		Return(domain.FailureResult(domain.Failure{Kind: domain.FailureExtractionFailed}))

	text := fmt.Sprintf("%s and %s and https://example.com/x and %s", tiktokURL, youtubeURL, threadsURL)
	f.d.OnMessage(context.Background(), message(domain.ChatKindPrivate, 11, text))

	assert.Equal(t, []string{tiktokURL, youtubeURL, threadsURL}, order)
	assert.Equal(t, []string{
		mocks.OpReply, mocks.OpEdit,
		mocks.OpReply, mocks.OpEdit,
		mocks.OpReply, mocks.OpEdit,
	}, f.messenger.Ops())
}

func TestOnMessagePanicBecomesGenericError(t *testing.T) {
	f := newFixture()

	f.acquirer.On("Acquire", mock.Anything, request(youtubeURL, domain.PlatformYouTube)).
		Run(func(mock.Arguments) { panic("kaboom") })
	f.acquirer.On("Acquire", mock.Anything, request(tiktokURL, domain.PlatformTikTok)).
		Return(domain.FailureResult(domain.Failure{Kind: domain.FailureAuthRequired}))

	f.d.OnMessage(context.Background(), message(domain.ChatKindPrivate, 12, youtubeURL+" "+tiktokURL))

	calls := f.messenger.Calls()
	require.Len(t, calls, 4)
	assert.Equal(t, TextInternalError, calls[1].Text)
	assert.Equal(t, TextAuthRequired, calls[3].Text, "a panic on one link does not stop the next")
}

func TestOnMessageDeliveryFailureStillRemovesArtifact(t *testing.T) {
	f := newFixture()
	path := tempArtifact(t, "Clip.mp4", 10)

	f.messenger.SendMediaFn = func(context.Context, int64, int, ports.OutboundMedia) error {
		return fmt.Errorf("request entity too large")
	}
	f.acquirer.On("Acquire", mock.Anything, mock.Anything).
		Return(domain.MediaResult(domain.Artifact{Path: path, Platform: domain.PlatformYouTube, Size: 10}))

	f.d.OnMessage(context.Background(), message(domain.ChatKindPrivate, 13, youtubeURL))

	assert.Equal(t, []string{mocks.OpReply, mocks.OpSendMedia, mocks.OpEdit}, f.messenger.Ops())
	assert.Equal(t, TextInternalError, f.messenger.Calls()[2].Text)
	assert.NoFileExists(t, path)
}

func TestOnMessagePlaceholderFailureFallsBackToReply(t *testing.T) {
	f := newFixture()

	var replies atomic.Int32

	f.messenger.ReplyFn = func(context.Context, int64, int, string) (int, error) {
		if replies.Add(1) == 1 {
			return 0, fmt.Errorf("flood wait")
		}

		return 77, nil
	}
	f.acquirer.On("Acquire", mock.Anything, mock.Anything).
		Return(domain.FailureResult(domain.Failure{Kind: domain.FailureSnapshotFailed}))

	f.d.OnMessage(context.Background(), message(domain.ChatKindPrivate, 14, threadsURL))

	calls := f.messenger.Calls()
	require.Equal(t, []string{mocks.OpReply, mocks.OpReply}, f.messenger.Ops())
	assert.Equal(t, TextSnapshotFailed, calls[1].Text)
}

func TestOnMessageWithoutHistory(t *testing.T) {
	f := newFixture()
	f.d.deps.History = nil

	f.acquirer.On("Acquire", mock.Anything, mock.Anything).
		Return(domain.FailureResult(domain.Failure{Kind: domain.FailureExtractionFailed}))

	assert.NotPanics(t, func() {
		f.d.OnMessage(context.Background(), message(domain.ChatKindPrivate, 15, youtubeURL))
	})
}

func TestHandleURLResolvesPlaceholderAfterCancel(t *testing.T) {
	f := newFixture()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var editCtxErr error

	f.messenger.EditFn = func(ctx context.Context, _ int64, _ int, _ string) error {
		editCtxErr = ctx.Err()

		return ctx.Err()
	}

	f.acquirer.On("Acquire", mock.Anything, request(youtubeURL, domain.PlatformYouTube)).
		Run(func(mock.Arguments) { cancel() }).
		Return(domain.FailureResult(domain.Failure{Kind: domain.FailureExtractionFailed})).
		Once()

	f.d.OnMessage(ctx, message(domain.ChatKindPrivate, 7, youtubeURL))

	require.Equal(t, []string{mocks.OpReply, mocks.OpEdit}, f.messenger.Ops())
	require.NoError(t, editCtxErr, "the final edit must not inherit the canceled message context")
	assert.Equal(t, TextGenericFailure, f.messenger.Calls()[1].Text)
}

func TestHandleURLDeliversMediaAfterCancel(t *testing.T) {
	f := newFixture()
	path := tempArtifact(t, "Clip.mp4", 10)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f.messenger.SendMediaFn = func(ctx context.Context, _ int64, _ int, _ ports.OutboundMedia) error {
		return ctx.Err()
	}

	f.acquirer.On("Acquire", mock.Anything, request(youtubeURL, domain.PlatformYouTube)).
		Run(func(mock.Arguments) { cancel() }).
		Return(domain.MediaResult(domain.Artifact{Path: path, Title: "Clip", Platform: domain.PlatformYouTube, Duration: domain.UnknownDuration, Size: 10})).
		Once()

	f.d.OnMessage(ctx, message(domain.ChatKindPrivate, 8, youtubeURL))

	assert.Equal(t, []string{mocks.OpReply, mocks.OpSendMedia, mocks.OpDelete}, f.messenger.Ops())
	assert.NoFileExists(t, path)
}

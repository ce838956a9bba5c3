package ytdlp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
	"github.com/victordov/telegram-video-downloader/internal/core/errors"
	"github.com/victordov/telegram-video-downloader/internal/core/ports"
	"github.com/victordov/telegram-video-downloader/internal/core/policy"
)

const fakeScript = `#!/bin/sh
case "$*" in
  *--dump-single-json*)
    echo '{"title":"Clip","duration":12.5,"filesize_approx":1048576,"_filename":"/work/Clip.mp4","extractor":"youtube"}'
    ;;
  *photo*)
    echo "WARNING: ignoring cookies" >&2
    echo "ERROR: [TikTok] 123: Unsupported URL: https://www.tiktok.com/@u/photo/123" >&2
    exit 1
    ;;
  *)
    echo "[progress]downloading|  50.0%|1.00MiB/s|00:01" >&2
    echo "[progress]finished|100.0%|1.00MiB/s|00:00" >&2
    echo "[hint]/work/Clip.mp4"
    echo "[file]/work/Clip.mp4"
    echo '[meta]{"title":"Clip","duration":3,"filesize":2048,"extractor":"youtube"}'
    ;;
esac
`

func newFakeClient(t *testing.T) *Client {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake extractor is a shell script")
	}

	dir := t.TempDir()
	bin := filepath.Join(dir, "yt-dlp")
	require.NoError(t, os.WriteFile(bin, []byte(fakeScript), 0o755))

	logger := zerolog.Nop()

	return New(Config{Binary: bin, WorkDir: dir}, &logger)
}

func testPolicy() policy.RetrievalPolicy {
	return policy.NewBuilder(0, "").Build(domain.PlatformYouTube)
}

func TestProbe(t *testing.T) {
	c := newFakeClient(t)

	meta, err := c.Probe(context.Background(), "https://youtu.be/dQw4w9WgXcQ", testPolicy())
	require.NoError(t, err)

	assert.Equal(t, "Clip", meta.Title)
	assert.Equal(t, 12500*time.Millisecond, meta.Duration)
	assert.Equal(t, int64(1048576), meta.EstimatedSize)
	assert.Equal(t, "/work/Clip.mp4", meta.Filename)
	assert.Equal(t, "youtube", meta.Extractor)
}

func TestFetch(t *testing.T) {
	c := newFakeClient(t)

	var updates []ports.Progress

	dl, err := c.Fetch(context.Background(), "https://youtu.be/dQw4w9WgXcQ", testPolicy(), func(p ports.Progress) {
		updates = append(updates, p)
	})
	require.NoError(t, err)

	assert.Equal(t, "/work/Clip.mp4", dl.Path)
	assert.Equal(t, "/work/Clip.mp4", dl.Hint)
	assert.Equal(t, "Clip", dl.Metadata.Title)
	assert.Equal(t, 3*time.Second, dl.Metadata.Duration)

	require.Len(t, updates, 2)
	assert.Equal(t, ports.ProgressDownloading, updates[0].Status)
	assert.Equal(t, "50.0%", updates[0].Percent)
	assert.Equal(t, ports.ProgressFinished, updates[1].Status)
}

func TestFetchErrorCarriesExtractorMessage(t *testing.T) {
	c := newFakeClient(t)

	_, err := c.Fetch(context.Background(), "https://www.tiktok.com/@u/photo/123", testPolicy(), nil)
	require.Error(t, err)

	var ytErr *Error
	require.True(t, errors.As(err, &ytErr))
	assert.Equal(t, "[TikTok] 123: Unsupported URL: https://www.tiktok.com/@u/photo/123", ytErr.Message)
	assert.True(t, errors.Is(err, errors.ErrExtractionFailed))
}

func TestMissingBinary(t *testing.T) {
	logger := zerolog.Nop()
	c := New(Config{Binary: filepath.Join(t.TempDir(), "nope")}, &logger)

	_, err := c.Probe(context.Background(), "https://youtu.be/dQw4w9WgXcQ", testPolicy())
	require.ErrorIs(t, err, errors.ErrExtractorUnavailable)
	require.ErrorIs(t, c.Ping(context.Background()), errors.ErrExtractorUnavailable)
}

func TestBaseArgs(t *testing.T) {
	logger := zerolog.Nop()
	c := New(Config{WorkDir: "/dl"}, &logger)

	args := strings.Join(c.baseArgs(testPolicy()), " ")

	assert.Contains(t, args, "-o "+filepath.Join("/dl", policy.DefaultOutputTemplate))
	assert.Contains(t, args, "--no-playlist")
	assert.Contains(t, args, "--no-write-subs")
	assert.Contains(t, args, "-f best[height<=720][filesize<52428800]/best[filesize<52428800]/best")
	assert.Contains(t, args, "--extractor-args youtube:player_client=android,web;player_skip=webpage,configs")
	assert.Contains(t, args, "--user-agent "+policy.DefaultUserAgent)
	assert.NotContains(t, args, "--extract-audio")
}

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name     string
		json     string
		size     int64
		duration time.Duration
		filename string
	}{
		{"exact size wins", `{"filesize":10,"filesize_approx":20,"duration":1}`, 10, time.Second, ""},
		{"approx size", `{"filesize_approx":20.7}`, 20, domain.UnknownDuration, ""},
		{"no size", `{"filesize":null,"duration":null}`, 0, domain.UnknownDuration, ""},
		{"filename preferred over legacy", `{"filename":"a.mp4","_filename":"b.mp4"}`, 0, domain.UnknownDuration, "a.mp4"},
		{"legacy filename", `{"_filename":"b.mp4"}`, 0, domain.UnknownDuration, "b.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, err := parseInfo([]byte(tt.json))
			require.NoError(t, err)
			assert.Equal(t, tt.size, meta.EstimatedSize)
			assert.Equal(t, tt.duration, meta.Duration)
			assert.Equal(t, tt.filename, meta.Filename)
		})
	}

	_, err := parseInfo([]byte("not json"))
	require.Error(t, err)
}

func TestParseProgress(t *testing.T) {
	p := parseProgress("error|  1.0%|N/A|Unknown")
	assert.Equal(t, ports.ProgressError, p.Status)
	assert.Equal(t, "1.0%", p.Percent)
	assert.Equal(t, "N/A", p.Speed)
	assert.Equal(t, "Unknown", p.ETA)

	p = parseProgress("finished")
	assert.Equal(t, ports.ProgressFinished, p.Status)
	assert.Empty(t, p.ETA)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "boom", errorMessage([]string{"ERROR: boom", "trailing"}, nil))
	assert.Equal(t, "trailing", errorMessage([]string{"trailing"}, nil))
	assert.Equal(t, "exit status 1", errorMessage(nil, fmt.Errorf("exit status 1")))
}

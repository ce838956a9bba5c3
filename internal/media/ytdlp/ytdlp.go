// Package ytdlp drives the yt-dlp binary as a ports.Extractor.
package ytdlp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/victordov/telegram-video-downloader/internal/core/errors"
	"github.com/victordov/telegram-video-downloader/internal/core/ports"
	"github.com/victordov/telegram-video-downloader/internal/core/policy"
)

const (
	defaultBinary = "yt-dlp"

	// Line prefixes emitted through --print and --progress-template.
	markerProgress = "[progress]"
	markerHint     = "[hint]"
	markerFile     = "[file]"
	markerMeta     = "[meta]"

	errorPrefix = "ERROR:"

	progressTemplate = "download:" + markerProgress +
		"%(progress.status)s|%(progress._percent_str)s|%(progress._speed_str)s|%(progress._eta_str)s"

	maxLineSize = 64 << 20

	logFieldURL = "url"
	logFieldOp  = "op"
)

var _ ports.Extractor = (*Client)(nil)

// Config configures the yt-dlp client.
type Config struct {
	// Binary is the yt-dlp executable name or path.
	Binary string

	// WorkDir receives downloaded files.
	WorkDir string
}

// Client runs one yt-dlp subprocess per call.
type Client struct {
	binary  string
	workDir string
	logger  *zerolog.Logger
}

// New creates a Client.
func New(cfg Config, logger *zerolog.Logger) *Client {
	binary := cfg.Binary
	if binary == "" {
		binary = defaultBinary
	}

	return &Client{binary: binary, workDir: cfg.WorkDir, logger: logger}
}

// Ping reports whether the yt-dlp binary can be found.
func (c *Client) Ping(context.Context) error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrExtractorUnavailable, err)
	}

	return nil
}

// Probe reads media metadata without downloading.
func (c *Client) Probe(ctx context.Context, url string, p policy.RetrievalPolicy) (*ports.Metadata, error) {
	args := append(c.baseArgs(p), "--dump-single-json", "--skip-download", "--", url)

	var out strings.Builder

	err := c.run(ctx, "probe", url, args, func(line string) {
		out.WriteString(line)
	})
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(out.String()) == "" {
		return nil, fmt.Errorf("probe %s: %w", url, errors.ErrEmptyResponse)
	}

	meta, err := parseInfo([]byte(out.String()))
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}

	return meta, nil
}

// Fetch downloads the media into the work dir and reports the final path.
func (c *Client) Fetch(ctx context.Context, url string, p policy.RetrievalPolicy, progress ports.ProgressFunc) (*ports.Download, error) {
	args := append(c.baseArgs(p),
		"--newline",
		"--progress",
		"--progress-template", progressTemplate,
		"--print", "before_dl:"+markerHint+"%(filename)s",
		"--print", "after_move:"+markerFile+"%(filepath)s",
		"--print", "after_move:"+markerMeta+"%(.{title,duration,filesize,filesize_approx,extractor})j",
		"--", url,
	)

	var (
		dl  = &ports.Download{}
		raw []byte
	)

	err := c.run(ctx, "fetch", url, args, func(line string) {
		switch {
		case strings.HasPrefix(line, markerProgress):
			if progress != nil {
				progress(parseProgress(strings.TrimPrefix(line, markerProgress)))
			}
		case strings.HasPrefix(line, markerHint):
			dl.Hint = strings.TrimSpace(strings.TrimPrefix(line, markerHint))
		case strings.HasPrefix(line, markerFile):
			dl.Path = strings.TrimSpace(strings.TrimPrefix(line, markerFile))
		case strings.HasPrefix(line, markerMeta):
			raw = []byte(strings.TrimPrefix(line, markerMeta))
		}
	})
	if err != nil {
		return nil, err
	}

	if len(raw) > 0 {
		if meta, perr := parseInfo(raw); perr == nil {
			dl.Metadata = *meta
		} else {
			c.logger.Warn().Err(perr).Str(logFieldURL, url).Msg("ignoring unreadable yt-dlp metadata")
		}
	} else {
		dl.Metadata = emptyMetadata()
	}

	if dl.Metadata.Filename == "" {
		dl.Metadata.Filename = dl.Hint
	}

	return dl, nil
}

func (c *Client) baseArgs(p policy.RetrievalPolicy) []string {
	template := p.OutputTemplate
	if template == "" {
		template = policy.DefaultOutputTemplate
	}

	args := []string{
		"--no-warnings",
		"--no-color",
		"-o", filepath.Join(c.workDir, template),
	}

	if p.NoPlaylist {
		args = append(args, "--no-playlist")
	}

	if p.Format != "" {
		args = append(args, "-f", p.Format)
	}

	if p.UserAgent != "" {
		args = append(args, "--user-agent", p.UserAgent)
	}

	if p.WriteSubtitles {
		args = append(args, "--write-subs")
	} else {
		args = append(args, "--no-write-subs")
	}

	if p.AudioOnly {
		args = append(args, "--extract-audio")
	}

	for _, ea := range p.ExtractorArgsString() {
		args = append(args, "--extractor-args", ea)
	}

	return args
}

// run starts yt-dlp and feeds stdout lines and stderr progress lines to onLine.
// onLine is never called concurrently.
func (c *Client) run(ctx context.Context, op, url string, args []string, onLine func(string)) error {
	cmd := exec.CommandContext(ctx, c.binary, args...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("yt-dlp stdout: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("yt-dlp stderr: %w", err)
	}

	c.logger.Debug().Str(logFieldOp, op).Str(logFieldURL, url).Strs("args", args).Msg("starting yt-dlp")

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start %s: %w", errors.ErrExtractorUnavailable, c.binary, err)
	}

	var (
		wg       sync.WaitGroup
		lineMu   sync.Mutex
		errLines []string
	)

	emit := func(line string) {
		lineMu.Lock()
		defer lineMu.Unlock()

		onLine(line)
	}

	wg.Add(2)

	go func() {
		defer wg.Done()
		scanLines(stdout, emit)
	}()

	go func() {
		defer wg.Done()
		scanLines(stderr, func(line string) {
			if strings.HasPrefix(line, markerProgress) {
				emit(line)

				return
			}

			errLines = append(errLines, line)
		})
	}()

	wg.Wait()

	waitErr := cmd.Wait()
	if waitErr == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("yt-dlp %s %s: %w", op, url, ctxErr)
	}

	return &Error{Message: errorMessage(errLines, waitErr), Err: waitErr}
}

func scanLines(r io.Reader, fn func(string)) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r"); line != "" {
			fn(line)
		}
	}
}

// Error is a non-zero yt-dlp exit.
type Error struct {
	// Message is the extractor's own error text.
	Message string
	Err     error
}

func (e *Error) Error() string {
	return "yt-dlp: " + e.Message
}

func (e *Error) Unwrap() []error {
	return []error{errors.ErrExtractionFailed, e.Err}
}

// errorMessage prefers the last "ERROR:" line, then the last stderr line.
func errorMessage(lines []string, fallback error) string {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.HasPrefix(lines[i], errorPrefix) {
			return strings.TrimSpace(strings.TrimPrefix(lines[i], errorPrefix))
		}
	}

	if len(lines) > 0 {
		return strings.TrimSpace(lines[len(lines)-1])
	}

	return fallback.Error()
}

type infoJSON struct {
	Title          string   `json:"title"`
	Duration       *float64 `json:"duration"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	Filename       string   `json:"filename"`
	LegacyFilename string   `json:"_filename"`
	Extractor      string   `json:"extractor"`
}

func parseInfo(data []byte) (*ports.Metadata, error) {
	var info infoJSON
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("decode yt-dlp info: %w", err)
	}

	meta := emptyMetadata()
	meta.Title = info.Title
	meta.Extractor = info.Extractor

	if info.Duration != nil && *info.Duration >= 0 {
		meta.Duration = secondsToDuration(*info.Duration)
	}

	switch {
	case info.Filesize != nil && *info.Filesize > 0:
		meta.EstimatedSize = int64(*info.Filesize)
	case info.FilesizeApprox != nil && *info.FilesizeApprox > 0:
		meta.EstimatedSize = int64(*info.FilesizeApprox)
	}

	meta.Filename = info.Filename
	if meta.Filename == "" {
		meta.Filename = info.LegacyFilename
	}

	return &meta, nil
}

func parseProgress(s string) ports.Progress {
	parts := strings.SplitN(s, "|", 4)
	for len(parts) < 4 {
		parts = append(parts, "")
	}

	return ports.Progress{
		Status:  ports.ProgressStatus(strings.TrimSpace(parts[0])),
		Percent: strings.TrimSpace(parts[1]),
		Speed:   strings.TrimSpace(parts[2]),
		ETA:     strings.TrimSpace(parts[3]),
	}
}

// Package snapshot captures still images of social posts in a headless Chrome.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/device"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/victordov/telegram-video-downloader/internal/core/errors"
	"github.com/victordov/telegram-video-downloader/internal/core/ports"
	"github.com/victordov/telegram-video-downloader/internal/platform/worker"
)

const (
	logFieldURL      = "url"
	logFieldStage    = "stage"
	logFieldSelector = "selector"
	logFieldProfile  = "profile"

	filePerm = 0o644

	// jsClick clicks the first node matching an XPath when a native click is refused.
	jsClick = `(function(xp){
	const n = document.evaluate(xp, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
	if (!n) { return false; }
	n.click();
	return true;
})(%s)`
)

var _ ports.Renderer = (*Renderer)(nil)

// Config configures the Renderer.
type Config struct {
	Enabled         bool
	ChromePath      string
	OutputDir       string
	PageLoadTimeout time.Duration
	Timeout         time.Duration
	StrategyTimeout time.Duration
	SettleDelay     time.Duration

	// Stages are dismissed after navigation. Nil means ThreadsStages.
	Stages []Stage
}

// Renderer launches one browser per Render call and always shuts it down.
type Renderer struct {
	cfg    Config
	logger *zerolog.Logger
}

// New creates a Renderer.
func New(cfg Config, logger *zerolog.Logger) *Renderer {
	if cfg.Stages == nil {
		cfg.Stages = ThreadsStages
	}

	return &Renderer{cfg: cfg, logger: logger}
}

// Render navigates to url under profile, dismisses overlays and saves a PNG.
func (r *Renderer) Render(ctx context.Context, url string, profile ports.DeviceProfile) (*ports.Rendering, error) {
	if !r.cfg.Enabled {
		return nil, errors.ErrRendererDisabled
	}

	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	logger := r.logger.With().Str(logFieldURL, url).Str(logFieldProfile, profile.Name).Logger()

	if err := chromedp.Run(tabCtx,
		network.Enable(),
		chromedp.Emulate(deviceInfo(profile)),
	); err != nil {
		return nil, fmt.Errorf("%w: start browser: %w", errors.ErrRenderFailed, err)
	}

	logger.Info().Msg("navigating")

	err := worker.RunWithTimeout(tabCtx, r.cfg.PageLoadTimeout, func(ctx context.Context) error {
		return chromedp.Run(ctx, chromedp.Navigate(url))
	})
	if err != nil {
		return nil, fmt.Errorf("%w: navigate: %w", errors.ErrRenderFailed, err)
	}

	Dismiss(tabCtx, chromePage{}, r.cfg.Stages, DismissOptions{
		StrategyTimeout: r.cfg.StrategyTimeout,
		SettleDelay:     r.cfg.SettleDelay,
	}, &logger)

	if err := worker.Wait(tabCtx, r.cfg.SettleDelay); err != nil {
		return nil, fmt.Errorf("%w: settle: %w", errors.ErrRenderFailed, err)
	}

	var (
		shot  []byte
		title string
	)

	if err := chromedp.Run(tabCtx,
		chromedp.CaptureScreenshot(&shot),
		chromedp.Title(&title),
	); err != nil {
		return nil, fmt.Errorf("%w: capture: %w", errors.ErrRenderFailed, err)
	}

	path := filepath.Join(r.cfg.OutputDir, FileName(time.Now()))
	if err := os.WriteFile(path, shot, filePerm); err != nil {
		return nil, fmt.Errorf("%w: write %s: %w", errors.ErrRenderFailed, path, err)
	}

	logger.Info().Str("path", path).Int("bytes", len(shot)).Msg("snapshot saved")

	return &ports.Rendering{Path: path, Title: title}, nil
}

func (r *Renderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Headless,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)

	if r.cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.cfg.ChromePath))
	}

	return opts
}

// FileName returns screenshot_<unix>_<8 hex>.png.
func FileName(now time.Time) string {
	return fmt.Sprintf("screenshot_%d_%s.png", now.Unix(), uuid.NewString()[:8])
}

func deviceInfo(p ports.DeviceProfile) device.Info {
	return device.Info{
		Name:      p.Name,
		UserAgent: p.UserAgent,
		Width:     p.Width,
		Height:    p.Height,
		Scale:     p.Scale,
		Mobile:    p.Mobile,
		Touch:     p.Touch,
	}
}

// chromePage drives the tab bound to the context it is called with.
type chromePage struct{}

func (chromePage) WaitClickable(ctx context.Context, xpath string) error {
	return chromedp.Run(ctx, chromedp.WaitVisible(xpath, chromedp.BySearch))
}

func (chromePage) Click(ctx context.Context, xpath string) error {
	err := chromedp.Run(ctx,
		chromedp.ScrollIntoView(xpath, chromedp.BySearch),
		chromedp.Click(xpath, chromedp.BySearch, chromedp.NodeVisible),
	)
	if err == nil {
		return nil
	}

	var clicked bool
	if jsErr := chromedp.Run(ctx, chromedp.Evaluate(fmt.Sprintf(jsClick, strconv.Quote(xpath)), &clicked)); jsErr != nil {
		return fmt.Errorf("click %s: %w (script fallback: %w)", xpath, err, jsErr)
	}

	if !clicked {
		return fmt.Errorf("click %s: %w", xpath, err)
	}

	return nil
}

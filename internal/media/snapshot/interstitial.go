package snapshot

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/victordov/telegram-video-downloader/internal/platform/worker"
)

// Stage is one blocking overlay and the ordered XPath selectors that may dismiss it.
type Stage struct {
	Name      string
	Selectors []string
}

const lowerCaseContinue = "contains(translate(text(), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), 'continue')"

// ThreadsStages are the overlays a mobile browser sees on a threads post:
// the "continue in browser" prompt, then the app-or-Safari chooser.
var ThreadsStages = []Stage{
	{
		Name: "continue_in_browser",
		Selectors: []string{
			"//button[text()='Continue in browser']",
			"//button[contains(translate(text(), 'ABCDEFGHIJKLMNOPQRSTUVWXYZ', 'abcdefghijklmnopqrstuvwxyz'), 'continue in browser')]",
			"//button[contains(text(), 'Continue')]",
			"//*[contains(text(), 'Continue in browser')]",
			"//*[" + lowerCaseContinue + "]",
			"//a[.//text()[contains(., 'Continue')]] | //button[.//text()[contains(., 'Continue')]]",
			"//*[contains(@class, 'continue') or contains(@id, 'continue') or contains(@class, 'browser') or contains(@id, 'browser')]",
		},
	},
	{
		Name: "safari_continue",
		Selectors: []string{
			"//button[text()='Continue']",
			"//button[contains(text(), 'Continue')]",
			"//*[contains(text(), 'Continue')]",
			"//*[" + lowerCaseContinue + "]",
			"//div[contains(text(), 'Safari')]/following::button",
			"//div[contains(text(), 'Safari')]/..//button",
			"//div[contains(@style, 'bottom') or contains(@class, 'bottom')]//button[last()]",
		},
	},
}

// Page is the subset of browser control used to dismiss overlays.
type Page interface {
	// WaitClickable blocks until an element matching xpath is visible.
	WaitClickable(ctx context.Context, xpath string) error

	// Click scrolls the element into view and clicks it.
	Click(ctx context.Context, xpath string) error
}

// DismissOptions tunes Dismiss timing.
type DismissOptions struct {
	StrategyTimeout time.Duration
	SettleDelay     time.Duration
}

// Dismiss walks stages in order. Within a stage the first selector that becomes
// clickable wins. A stage with no match ends the walk, since later overlays only
// appear after earlier ones are dismissed. It returns the number of stages dismissed.
// Failures are logged and never returned.
func Dismiss(ctx context.Context, page Page, stages []Stage, opts DismissOptions, logger *zerolog.Logger) int {
	dismissed := 0

	for _, stage := range stages {
		selector, ok := findClickable(ctx, page, stage, opts.StrategyTimeout, logger)
		if !ok {
			logger.Warn().Str(logFieldStage, stage.Name).Msg("no selector matched, continuing without dismissing overlay")

			return dismissed
		}

		err := worker.RunWithTimeout(ctx, opts.StrategyTimeout, func(ctx context.Context) error {
			return page.Click(ctx, selector)
		})
		if err != nil {
			logger.Warn().Err(err).Str(logFieldStage, stage.Name).Str(logFieldSelector, selector).Msg("overlay click failed")

			return dismissed
		}

		logger.Info().Str(logFieldStage, stage.Name).Str(logFieldSelector, selector).Msg("dismissed overlay")

		dismissed++

		if err := worker.Wait(ctx, opts.SettleDelay); err != nil {
			return dismissed
		}
	}

	return dismissed
}

func findClickable(ctx context.Context, page Page, stage Stage, timeout time.Duration, logger *zerolog.Logger) (string, bool) {
	for _, selector := range stage.Selectors {
		if ctx.Err() != nil {
			return "", false
		}

		err := worker.RunWithTimeout(ctx, timeout, func(ctx context.Context) error {
			return page.WaitClickable(ctx, selector)
		})
		if err == nil {
			return selector, true
		}

		logger.Debug().Str(logFieldStage, stage.Name).Str(logFieldSelector, selector).Msg("selector did not match")
	}

	return "", false
}

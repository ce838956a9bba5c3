// Package acquisition turns a link into exactly one media, snapshot or failure result.
//
// Acquire walks a fixed sequence: classify, probe, fetch, locate the file on
// disk and check its size. Extraction errors are routed by
// ClassifyExtractionError, and threads posts fall back to a rendered snapshot.
// Every branch, including timeouts and panics, ends in a domain.Result.
package acquisition

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/victordov/telegram-video-downloader/internal/core/domain"
	"github.com/victordov/telegram-video-downloader/internal/core/policy"
	"github.com/victordov/telegram-video-downloader/internal/core/ports"
	"github.com/victordov/telegram-video-downloader/internal/platform/observability"
	"github.com/victordov/telegram-video-downloader/internal/platform/worker"
)

// Classifier maps a URL onto a platform.
type Classifier interface {
	Classify(rawURL string) domain.Platform
}

// Options tunes concurrency and timeouts.
type Options struct {
	MaxConcurrent  int
	RPSPerPlatform float64
	Burst          int
	ProbeTimeout   time.Duration
	FetchTimeout   time.Duration

	// SnapshotProfile is the device the snapshot fallback renders with.
	// The zero value selects ports.MobileProfile.
	SnapshotProfile ports.DeviceProfile
}

// Pipeline is safe for concurrent use.
type Pipeline struct {
	classifier Classifier
	policies   *policy.Builder
	extractor  ports.Extractor
	renderer   ports.Renderer
	slots      *worker.Limiter
	limiters   *platformLimiters
	opts       Options
	logger     *zerolog.Logger
}

// New creates a Pipeline. renderer may be nil, in which case snapshot fallbacks fail.
func New(classifier Classifier, policies *policy.Builder, extractor ports.Extractor, renderer ports.Renderer, opts Options, logger *zerolog.Logger) *Pipeline {
	if opts.SnapshotProfile.Name == "" {
		opts.SnapshotProfile = ports.MobileProfile
	}

	return &Pipeline{
		classifier: classifier,
		policies:   policies,
		extractor:  extractor,
		renderer:   renderer,
		slots:      worker.NewLimiter(opts.MaxConcurrent),
		limiters:   newPlatformLimiters(opts.RPSPerPlatform, opts.Burst),
		opts:       opts,
		logger:     logger,
	}
}

// Acquire retrieves the media behind req.URL. It never returns an error and never panics.
// The caller owns the returned artifact file.
func (p *Pipeline) Acquire(ctx context.Context, req domain.AcquisitionRequest) (res domain.Result) {
	start := time.Now()

	platform := req.Platform
	if platform == "" {
		platform = p.classifier.Classify(req.URL)
	}

	logger := p.logger.With().Str(LogFieldURL, req.URL).Str(LogFieldPlatform, string(platform)).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("acquisition panicked")

			res = domain.FailureResult(domain.Failure{
				Kind:    domain.FailureExtractionFailed,
				Message: msgInternalError,
				Detail:  fmt.Sprint(r),
			})
		}

		p.observe(&logger, platform, res, time.Since(start))
	}()

	if !platform.IsKnown() {
		return domain.FailureResult(domain.Failure{Kind: domain.FailureUnsupportedURL, Message: msgUnsupportedURL})
	}

	err := p.slots.Do(ctx, func(ctx context.Context) error {
		observability.AcquisitionsInFlight.Inc()
		defer observability.AcquisitionsInFlight.Dec()

		res = p.acquire(ctx, req.URL, platform, &logger)

		return nil
	})
	if err != nil {
		return extractionFailure(err)
	}

	return res
}

func (p *Pipeline) acquire(ctx context.Context, url string, platform domain.Platform, logger *zerolog.Logger) domain.Result {
	if err := p.limiters.Wait(ctx, platform); err != nil {
		return extractionFailure(err)
	}

	pol := p.policies.Build(platform)

	var meta *ports.Metadata

	err := worker.RunWithTimeout(ctx, p.opts.ProbeTimeout, func(ctx context.Context) error {
		var err error
		meta, err = p.extractor.Probe(ctx, url, pol)

		return err
	})
	if err != nil {
		logger.Warn().Err(err).Msg("probe failed")

		return p.handleExtractionError(ctx, url, platform, err, logger)
	}

	if meta.EstimatedSize > pol.MaxFileSize {
		logger.Info().Int64(LogFieldSize, meta.EstimatedSize).Int64(LogFieldCeiling, pol.MaxFileSize).Msg("estimated size over ceiling, skipping download")

		return tooLarge(meta.EstimatedSize, pol.MaxFileSize)
	}

	var dl *ports.Download

	err = worker.RunWithTimeout(ctx, p.opts.FetchTimeout, func(ctx context.Context) error {
		var err error
		dl, err = p.extractor.Fetch(ctx, url, pol, progressLogger(logger))

		return err
	})
	if err != nil {
		logger.Warn().Err(err).Msg("fetch failed")

		return p.handleExtractionError(ctx, url, platform, err, logger)
	}

	hint := dl.Hint
	if hint == "" {
		hint = meta.Filename
	}

	path, err := ResolveArtifact(dl.Path, hint)
	if err != nil {
		logger.Error().Err(err).Str(LogFieldPath, hint).Msg("downloaded file not found")

		return domain.FailureResult(domain.Failure{
			Kind:    domain.FailureArtifactMissing,
			Message: msgArtifactMissing,
			Detail:  err.Error(),
		})
	}

	info, err := os.Stat(path)
	if err != nil {
		return domain.FailureResult(domain.Failure{
			Kind:    domain.FailureArtifactMissing,
			Message: msgArtifactMissing,
			Detail:  err.Error(),
		})
	}

	if info.Size() > pol.MaxFileSize {
		logger.Info().Int64(LogFieldSize, info.Size()).Int64(LogFieldCeiling, pol.MaxFileSize).Msg("downloaded file over ceiling, discarding")

		if rmErr := os.Remove(path); rmErr != nil {
			logger.Warn().Err(rmErr).Str(LogFieldPath, path).Msg("failed to remove oversized file")
		}

		return tooLarge(info.Size(), pol.MaxFileSize)
	}

	return domain.MediaResult(domain.Artifact{
		Path:     path,
		Title:    firstNonEmpty(dl.Metadata.Title, meta.Title),
		Platform: platform,
		Duration: pickDuration(dl.Metadata.Duration, meta.Duration),
		Size:     info.Size(),
	})
}

func (p *Pipeline) handleExtractionError(ctx context.Context, url string, platform domain.Platform, err error, logger *zerolog.Logger) domain.Result {
	switch ClassifyExtractionError(platform, err.Error()) {
	case RouteNotAVideo:
		return domain.FailureResult(domain.Failure{Kind: domain.FailureNotAVideo, Message: msgNotAVideo, Detail: err.Error()})
	case RouteAuthRequired:
		return domain.FailureResult(domain.Failure{Kind: domain.FailureAuthRequired, Message: msgAuthRequired, Detail: err.Error()})
	case RouteSnapshot:
		logger.Info().Msg("falling back to snapshot")

		return p.snapshot(ctx, url, platform, logger)
	default:
		return extractionFailure(err)
	}
}

// snapshot renders url with the configured device profile.
func (p *Pipeline) snapshot(ctx context.Context, url string, platform domain.Platform, logger *zerolog.Logger) (res domain.Result) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("snapshot panicked")
			observability.SnapshotFallbacks.WithLabelValues(snapshotResultPanic).Inc()

			res = snapshotFailure(fmt.Sprint(r))
		}
	}()

	if p.renderer == nil {
		observability.SnapshotFallbacks.WithLabelValues(snapshotResultFailure).Inc()

		return snapshotFailure("no renderer configured")
	}

	rendering, err := p.renderer.Render(ctx, url, p.opts.SnapshotProfile)
	if err != nil {
		logger.Warn().Err(err).Msg("snapshot failed")
		observability.SnapshotFallbacks.WithLabelValues(snapshotResultFailure).Inc()

		return snapshotFailure(err.Error())
	}

	info, err := os.Stat(rendering.Path)
	if err != nil {
		observability.SnapshotFallbacks.WithLabelValues(snapshotResultFailure).Inc()

		return snapshotFailure(err.Error())
	}

	observability.SnapshotFallbacks.WithLabelValues(snapshotResultSuccess).Inc()

	return domain.SnapshotResult(domain.Artifact{
		Path:     rendering.Path,
		Title:    rendering.Title,
		Platform: platform,
		Size:     info.Size(),
	})
}

func (p *Pipeline) observe(logger *zerolog.Logger, platform domain.Platform, res domain.Result, elapsed time.Duration) {
	observability.Acquisitions.WithLabelValues(string(platform), string(res.Outcome), string(res.FailureKind())).Inc()
	observability.AcquisitionDuration.WithLabelValues(string(platform)).Observe(elapsed.Seconds())

	if res.Artifact != nil {
		observability.ArtifactBytes.WithLabelValues(string(res.Outcome)).Observe(float64(res.Artifact.Size))
	}

	event := logger.Info()
	if res.Outcome == domain.OutcomeFailure {
		event = logger.Warn().Str("detail", res.Failure.Detail)
	}

	event.Str(LogFieldOutcome, string(res.Outcome)).
		Str(LogFieldKind, string(res.FailureKind())).
		Dur(LogFieldElapsed, elapsed).
		Msg("acquisition finished")
}

func progressLogger(logger *zerolog.Logger) ports.ProgressFunc {
	return func(pr ports.Progress) {
		logger.Debug().
			Str("status", string(pr.Status)).
			Str("percent", pr.Percent).
			Str("speed", pr.Speed).
			Str("eta", pr.ETA).
			Msg("download progress")
	}
}

func tooLarge(size, ceiling int64) domain.Result {
	return domain.FailureResult(domain.Failure{
		Kind:          domain.FailureTooLarge,
		Message:       msgTooLarge,
		EstimatedSize: size,
		Ceiling:       ceiling,
	})
}

func extractionFailure(err error) domain.Result {
	return domain.FailureResult(domain.Failure{
		Kind:    domain.FailureExtractionFailed,
		Message: msgExtractionFailed,
		Detail:  err.Error(),
	})
}

func snapshotFailure(detail string) domain.Result {
	return domain.FailureResult(domain.Failure{
		Kind:    domain.FailureSnapshotFailed,
		Message: msgSnapshotFailed,
		Detail:  detail,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}

// pickDuration prefers the post-download value and treats zero as unreported.
func pickDuration(fetched, probed time.Duration) time.Duration {
	if fetched > 0 {
		return fetched
	}

	if probed >= 0 {
		return probed
	}

	return domain.UnknownDuration
}

// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
//
// Acquisition failures (too large, not a video, ...) are not errors: they are
// reported as domain.Failure values. The sentinels here cover infrastructure.
package errors

import "errors"

// URL and classification errors.
var (
	// ErrUnsupportedURL indicates a URL that matches no known platform.
	ErrUnsupportedURL = errors.New("unsupported url")

	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")
)

// Extraction errors.
var (
	// ErrExtractorUnavailable indicates the extraction binary could not be located or started.
	ErrExtractorUnavailable = errors.New("extractor unavailable")

	// ErrExtractionFailed indicates the extractor exited with an error.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrArtifactNotFound indicates no downloaded file could be located on disk.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrEmptyResponse indicates the extractor produced no usable output.
	ErrEmptyResponse = errors.New("empty response")
)

// Rendering errors.
var (
	// ErrRenderFailed indicates the page could not be rendered or captured.
	ErrRenderFailed = errors.New("render failed")

	// ErrRendererDisabled indicates snapshot rendering is turned off.
	ErrRendererDisabled = errors.New("renderer disabled")
)

// Storage errors.
var (
	// ErrStoreUnavailable indicates the dedup or history store cannot be reached.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnknownDedupBackend indicates an unsupported DEDUP_BACKEND value.
	ErrUnknownDedupBackend = errors.New("unknown dedup backend")
)

// Configuration errors.
var (
	// ErrInvalidConfig indicates a configuration value failed validation.
	ErrInvalidConfig = errors.New("invalid config")
)

// Rate limiting errors.
var (
	// ErrRateLimited indicates rate limiting was triggered.
	ErrRateLimited = errors.New("rate limited")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

package acquisition

// Log field constants
const (
	LogFieldURL      = "url"
	LogFieldPlatform = "platform"
	LogFieldOutcome  = "outcome"
	LogFieldKind     = "kind"
	LogFieldPath     = "path"
	LogFieldSize     = "size"
	LogFieldCeiling  = "ceiling"
	LogFieldElapsed  = "elapsed"
)

// Snapshot fallback metric results
const (
	snapshotResultSuccess = "success"
	snapshotResultFailure = "failure"
	snapshotResultPanic   = "panic"
)

// Failure messages carried on domain.Failure for logs and history.
const (
	msgUnsupportedURL   = "no supported platform matches this link"
	msgTooLarge         = "media exceeds the size ceiling"
	msgNotAVideo        = "post is a photo, not a video"
	msgAuthRequired     = "post requires a logged-in follower"
	msgArtifactMissing  = "downloaded file could not be located"
	msgExtractionFailed = "extraction failed"
	msgSnapshotFailed   = "snapshot capture failed"
	msgInternalError    = "internal error"
)

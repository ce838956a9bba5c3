package domain

import "time"

// UnknownDuration marks media whose length could not be determined.
const UnknownDuration time.Duration = -1

// AcquisitionRequest asks the pipeline to retrieve the media behind one URL.
// An empty Platform means the pipeline classifies the URL itself.
type AcquisitionRequest struct {
	URL      string
	Platform Platform
}

// Outcome tags which variant of Result is populated.
type Outcome string

// Acquisition outcomes.
const (
	OutcomeMedia    Outcome = "media"
	OutcomeSnapshot Outcome = "snapshot"
	OutcomeFailure  Outcome = "failure"
)

// FailureKind enumerates the terminal failure classes of an acquisition.
type FailureKind string

// Failure kinds.
const (
	FailureUnsupportedURL   FailureKind = "unsupported_url"
	FailureTooLarge         FailureKind = "too_large"
	FailureNotAVideo        FailureKind = "not_a_video"
	FailureAuthRequired     FailureKind = "auth_required"
	FailureArtifactMissing  FailureKind = "artifact_missing"
	FailureExtractionFailed FailureKind = "extraction_failed"
	FailureSnapshotFailed   FailureKind = "snapshot_failed"
)

// Artifact is a file on local storage produced by an acquisition.
// The receiver of a Result owns Path and must remove it after use.
type Artifact struct {
	Path     string
	Title    string
	Platform Platform
	Duration time.Duration
	Size     int64
}

// HasDuration reports whether the artifact duration is known.
func (a *Artifact) HasDuration() bool {
	return a.Duration != UnknownDuration && a.Duration >= 0
}

// Failure describes why an acquisition did not produce an artifact.
type Failure struct {
	Kind    FailureKind
	Message string

	// EstimatedSize and Ceiling are set for FailureTooLarge.
	EstimatedSize int64
	Ceiling       int64

	// Detail carries the raw extractor or renderer message for operators.
	Detail string
}

// Result is the normalized outcome of one AcquisitionRequest.
// Exactly one of Artifact or Failure is set, matching Outcome.
type Result struct {
	Outcome  Outcome
	Artifact *Artifact
	Failure  *Failure
}

// MediaResult builds a media outcome.
func MediaResult(a Artifact) Result {
	return Result{Outcome: OutcomeMedia, Artifact: &a}
}

// SnapshotResult builds a snapshot outcome. Snapshots never carry a duration.
func SnapshotResult(a Artifact) Result {
	a.Duration = UnknownDuration

	return Result{Outcome: OutcomeSnapshot, Artifact: &a}
}

// FailureResult builds a failure outcome.
func FailureResult(f Failure) Result {
	return Result{Outcome: OutcomeFailure, Failure: &f}
}

// IsScreenshot reports whether the artifact is a page snapshot rather than video.
func (r Result) IsScreenshot() bool {
	return r.Outcome == OutcomeSnapshot
}

// FailureKind returns the failure kind, or an empty string for successful outcomes.
func (r Result) FailureKind() FailureKind {
	if r.Failure == nil {
		return ""
	}

	return r.Failure.Kind
}

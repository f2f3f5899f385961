package siren

import "errors"

// Sentinel errors for the failure modes the pipeline reports. Callers
// match them with errors.Is; wrapped variants carry the detail.
var (
	// ErrInvalidSpec is returned when a filter spec has bad cutoffs or
	// order, or when the designed filter is numerically unstable.
	// Rejected at construction, never clamped.
	ErrInvalidSpec = errors.New("invalid filter spec")

	// ErrEmptySignal is returned by the envelope stage for zero-sample input
	ErrEmptySignal = errors.New("empty signal")

	// ErrClipTooShort is returned when a clip has fewer samples than one
	// analysis frame
	ErrClipTooShort = errors.New("clip too short for one frame")

	// ErrNoDecisions is returned when a clip produced no running
	// decisions (shorter than the smoothing window's fill requirement)
	ErrNoDecisions = errors.New("no running decisions to aggregate")

	// ErrScorerUnavailable is returned by scorers that cannot currently
	// produce a probability. Propagated upward, never retried here.
	ErrScorerUnavailable = errors.New("scorer unavailable")
)

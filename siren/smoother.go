package siren

import (
	"fmt"

	"github.com/WuZhou5/Emergency-Vehicle-Detection/algorithms/common"
)

// SmootherState tracks whether the probability window has filled yet
type SmootherState int

const (
	// Filling means fewer than WindowSize scores have been pushed;
	// no decision is produced yet
	Filling SmootherState = iota
	// Steady means the window is full; every push from now on evicts
	// the oldest score and emits a running decision
	Steady
)

func (s SmootherState) String() string {
	if s == Steady {
		return "steady"
	}
	return "filling"
}

// Smoother turns a sequence of per-frame probabilities into a stream of
// stable running decisions by averaging over a fixed-size sliding window
// of the last N scores. A single frame's spurious score cannot flip the
// verdict on its own; N trades first-decision latency against stability.
//
// One Smoother serves one clip's evaluation. Not safe for concurrent use.
type Smoother struct {
	windowSize int
	threshold  float64

	window []float64 // FIFO of the most recent scores, len <= windowSize
	state  SmootherState
}

// NewSmoother creates a smoother with the given window size N and
// decision threshold in [0, 1].
func NewSmoother(windowSize int, threshold float64) (*Smoother, error) {
	if windowSize < 1 {
		return nil, fmt.Errorf("window size must be >= 1: %d", windowSize)
	}
	if threshold < 0 || threshold > 1 {
		return nil, fmt.Errorf("threshold must be in [0, 1]: %f", threshold)
	}

	return &Smoother{
		windowSize: windowSize,
		threshold:  threshold,
		window:     make([]float64, 0, windowSize),
		state:      Filling,
	}, nil
}

// Push appends a probability to the window. While the window is still
// filling it returns ok=false and no decision. From the push that fills
// the window onward, every push evicts the oldest score as needed and
// returns the running decision for the current window mean.
//
// The label is siren only for mean strictly greater than the threshold;
// a mean exactly equal to the threshold classifies as non-siren.
func (s *Smoother) Push(probability float64) (RunningDecision, bool, error) {
	if probability < 0 || probability > 1 {
		return RunningDecision{}, false, fmt.Errorf("probability out of range [0, 1]: %f", probability)
	}

	if len(s.window) == s.windowSize {
		// Evict the oldest entry (FIFO)
		copy(s.window, s.window[1:])
		s.window[len(s.window)-1] = probability
	} else {
		s.window = append(s.window, probability)
	}

	if len(s.window) < s.windowSize {
		return RunningDecision{}, false, nil
	}

	// Transition to Steady is permanent for the life of the stream
	s.state = Steady

	mean := common.Mean(s.window)
	label := NonSiren
	if mean > s.threshold {
		label = Siren
	}

	return RunningDecision{Label: label, Mean: mean}, true, nil
}

// State reports whether the window has filled yet
func (s *Smoother) State() SmootherState {
	return s.state
}

// Len returns the number of scores currently in the window
func (s *Smoother) Len() int {
	return len(s.window)
}

// WindowSize returns the configured window capacity N
func (s *Smoother) WindowSize() int {
	return s.windowSize
}

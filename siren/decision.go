package siren

// Label is the binary verdict for a frame window or a whole clip
type Label int

const (
	NonSiren Label = iota
	Siren
)

func (l Label) String() string {
	switch l {
	case Siren:
		return "siren"
	case NonSiren:
		return "non-siren"
	default:
		return "unknown"
	}
}

// RunningDecision is one smoothed verdict emitted per scored frame once
// the probability window is full. Mean is the sliding-window mean that
// produced the label. Immutable after creation.
type RunningDecision struct {
	Label Label   `json:"label"`
	Mean  float64 `json:"mean"`
}

// Decision is the clip-level verdict: the majority label over all
// running decisions plus the vote fraction that produced it.
type Decision struct {
	Label       Label   `json:"label"`
	Probability float64 `json:"probability"`
}

package siren

import (
	"errors"
	"math"
	"testing"
)

func runs(labels ...Label) []RunningDecision {
	decisions := make([]RunningDecision, len(labels))
	for i, l := range labels {
		decisions[i] = RunningDecision{Label: l}
	}
	return decisions
}

func TestAggregate_EmptyDecisions(t *testing.T) {
	if _, err := Aggregate(nil); !errors.Is(err, ErrNoDecisions) {
		t.Fatalf("err = %v, want ErrNoDecisions", err)
	}
}

func TestAggregate_MajorityVote(t *testing.T) {
	cases := []struct {
		name      string
		decisions []RunningDecision
		wantLabel Label
		wantProb  float64
	}{
		{"all siren", runs(Siren, Siren, Siren), Siren, 1.0},
		{"all non-siren", runs(NonSiren, NonSiren), NonSiren, 0.0},
		{"siren majority", runs(Siren, Siren, NonSiren), Siren, 2.0 / 3.0},
		{"non-siren majority", runs(Siren, NonSiren, NonSiren), NonSiren, 1.0 / 3.0},
		{"single siren", runs(Siren), Siren, 1.0},
		{"single non-siren", runs(NonSiren), NonSiren, 0.0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d, err := Aggregate(tc.decisions)
			if err != nil {
				t.Fatalf("Aggregate failed: %v", err)
			}
			if d.Label != tc.wantLabel {
				t.Errorf("label = %v, want %v", d.Label, tc.wantLabel)
			}
			if math.Abs(d.Probability-tc.wantProb) > 1e-12 {
				t.Errorf("probability = %f, want %f", d.Probability, tc.wantProb)
			}
		})
	}
}

func TestAggregate_TieClassifiesAsNonSiren(t *testing.T) {
	d, err := Aggregate(runs(Siren, NonSiren, Siren, NonSiren))
	if err != nil {
		t.Fatalf("Aggregate failed: %v", err)
	}
	if d.Probability != 0.5 {
		t.Fatalf("probability = %f, want 0.5", d.Probability)
	}
	if d.Label != NonSiren {
		t.Errorf("tied vote classified as %v, want non-siren", d.Label)
	}
}

package siren

// Aggregate reduces a clip's running decisions to one clip-level
// decision by strict majority vote: the clip is labeled siren only if
// more than half of the running decisions were siren. A tie at exactly
// one half resolves to non-siren, mirroring the smoother's tie-break.
//
// Returns ErrNoDecisions for an empty sequence (the clip was shorter
// than the smoothing window's fill requirement).
func Aggregate(decisions []RunningDecision) (Decision, error) {
	if len(decisions) == 0 {
		return Decision{}, ErrNoDecisions
	}

	votes := 0
	for _, d := range decisions {
		if d.Label == Siren {
			votes++
		}
	}

	fraction := float64(votes) / float64(len(decisions))
	label := NonSiren
	if fraction > 0.5 {
		label = Siren
	}

	return Decision{Label: label, Probability: fraction}, nil
}

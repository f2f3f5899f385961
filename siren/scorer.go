package siren

import "context"

// Scorer maps one feature vector to a probability of siren presence in
// [0, 1]. The pipeline is agnostic to the implementation: a trained
// model, a prototype lookup, a remote service, or a test stub.
//
// Scorers report transient failure as ErrScorerUnavailable (possibly
// wrapped); the pipeline propagates it without retrying, since frame
// order and window state must stay consistent.
type Scorer interface {
	Score(ctx context.Context, v FeatureVector) (float64, error)
}

// BatchScorer is an optional extension for scorers with significant
// per-call overhead (remote or batched model backends). When a scorer
// implements it, the pipeline scores a clip's frames in one call.
// The returned slice must be in frame order and the same length as the
// input.
type BatchScorer interface {
	Scorer
	ScoreBatch(ctx context.Context, vs []FeatureVector) ([]float64, error)
}

// ScorerFunc adapts a plain function to the Scorer interface
type ScorerFunc func(ctx context.Context, v FeatureVector) (float64, error)

// Score calls the wrapped function
func (f ScorerFunc) Score(ctx context.Context, v FeatureVector) (float64, error) {
	return f(ctx, v)
}

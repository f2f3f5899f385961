package siren

import (
	"context"
	"fmt"

	"github.com/WuZhou5/Emergency-Vehicle-Detection/algorithms/temporal"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/logging"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/siren/config"
)

// Result is one clip's evaluation: the final decision plus the full
// per-frame running-decision trace for diagnostics.
type Result struct {
	Decision Decision          `json:"decision"`
	Trace    []RunningDecision `json:"trace,omitempty"`
	Frames   int               `json:"frames"`
}

// Pipeline evaluates one clip at a time: raw samples are band-limited,
// reduced to an amplitude envelope, framed into feature vectors, scored
// frame by frame, smoothed over a sliding probability window, and
// aggregated to a clip-level decision. Each stage hands immutable data
// to the next, so cancelling between frames leaves nothing in an
// invalid state.
//
// A Pipeline owns mutable per-clip state (filter recursion buffers,
// extractor flux state), so one instance evaluates one clip at a time.
// Independent clips are embarrassingly parallel: construct one Pipeline
// per worker.
type Pipeline struct {
	cfg         *config.Config
	conditioner *Conditioner
	envelope    *temporal.Envelope
	framer      *Framer
	scorer      Scorer
	logger      logging.Logger
}

// NewPipeline wires the stages from configuration with a feature
// extraction strategy and a scorer. The extractor's dimensionality must
// match the configured feature dimension.
func NewPipeline(cfg *config.Config, extractor FeatureExtractor, scorer Scorer) (*Pipeline, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if extractor == nil {
		return nil, fmt.Errorf("feature extractor is required")
	}
	if scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if extractor.Dim() != cfg.FeatureDim {
		return nil, fmt.Errorf("extractor %q produces %d features, config expects %d",
			extractor.Name(), extractor.Dim(), cfg.FeatureDim)
	}
	if cfg.Frame.HopSec > cfg.Frame.DurationSec {
		logging.Warn("hop longer than frame, frames will not overlap", logging.Fields{
			"frame_sec": cfg.Frame.DurationSec,
			"hop_sec":   cfg.Frame.HopSec,
		})
	}

	conditioner, err := NewConditioner(FilterSpec{
		LowHz:      cfg.Filter.LowHz,
		HighHz:     cfg.Filter.HighHz,
		SampleRate: cfg.SampleRate,
		Order:      cfg.Filter.Order,
	})
	if err != nil {
		return nil, err
	}

	framer, err := NewFramer(cfg.Frame.DurationSec, cfg.Frame.HopSec, extractor)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:         cfg,
		conditioner: conditioner,
		envelope:    temporal.NewEnvelope(),
		framer:      framer,
		scorer:      scorer,
		logger: logging.WithFields(logging.Fields{
			"component": "pipeline",
		}),
	}, nil
}

// EvaluateClip runs the full pipeline on one clip and returns the
// clip-level decision with the running-decision trace. The context is
// checked between frames; cancellation aborts the clip cleanly.
func (p *Pipeline) EvaluateClip(ctx context.Context, clip SampleBuffer) (*Result, error) {
	if clip.Len() == 0 {
		return nil, ErrEmptySignal
	}

	conditioned, err := p.conditioner.Condition(clip)
	if err != nil {
		return nil, err
	}

	envSamples, err := p.envelope.Compute(conditioned.Samples)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmptySignal, err)
	}
	envelope := NewSampleBuffer(envSamples, conditioned.SampleRate)

	features, err := p.framer.Frame(envelope)
	if err != nil {
		return nil, err
	}

	scores, err := p.scoreFrames(ctx, features)
	if err != nil {
		return nil, err
	}

	smoother, err := NewSmoother(p.cfg.Smoothing.WindowSize, p.cfg.Smoothing.Threshold)
	if err != nil {
		return nil, err
	}

	trace := make([]RunningDecision, 0, len(scores))
	for i, score := range scores {
		decision, ok, err := smoother.Push(score)
		if err != nil {
			return nil, fmt.Errorf("frame %d: %w", i, err)
		}
		if ok {
			trace = append(trace, decision)
		}
	}

	final, err := Aggregate(trace)
	if err != nil {
		return nil, err
	}

	p.logger.Debug("clip evaluated", logging.Fields{
		"frames":    len(features),
		"decisions": len(trace),
		"label":     final.Label.String(),
		"vote":      final.Probability,
	})

	return &Result{
		Decision: final,
		Trace:    trace,
		Frames:   len(features),
	}, nil
}

// scoreFrames obtains one probability per frame, batching when the
// scorer supports it. Scorer failures propagate unretried: retrying out
// of order would corrupt the smoothing window.
func (p *Pipeline) scoreFrames(ctx context.Context, features FeatureWindow) ([]float64, error) {
	if batch, ok := p.scorer.(BatchScorer); ok {
		scores, err := batch.ScoreBatch(ctx, features)
		if err != nil {
			return nil, fmt.Errorf("batch scoring: %w", err)
		}
		if len(scores) != len(features) {
			return nil, fmt.Errorf("batch scorer returned %d scores for %d frames", len(scores), len(features))
		}
		return scores, nil
	}

	scores := make([]float64, len(features))
	for i, v := range features {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score, err := p.scorer.Score(ctx, v)
		if err != nil {
			return nil, fmt.Errorf("scoring frame %d: %w", i, err)
		}
		scores[i] = score
	}
	return scores, nil
}

// Config returns the pipeline's configuration
func (p *Pipeline) Config() *config.Config {
	return p.cfg
}

// Conditioner exposes the band-limiting stage, mainly so callers can
// inspect the designed filter's frequency response.
func (p *Pipeline) Conditioner() *Conditioner {
	return p.conditioner
}

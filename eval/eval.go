// Package eval scores a labeled clip corpus through the detection
// pipeline and reports classification metrics.
package eval

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/WuZhou5/Emergency-Vehicle-Detection/logging"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/siren"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/siren/config"
)

// Metrics collects the confusion counts for the binary task
type Metrics struct {
	TotalSiren      int `json:"total_siren"`
	CorrectSiren    int `json:"correct_siren"`
	TotalNonSiren   int `json:"total_non_siren"`
	CorrectNonSiren int `json:"correct_non_siren"`
	Skipped         int `json:"skipped"` // Clips too short to produce a decision
}

// Accuracy is the fraction of correctly labeled clips
func (m *Metrics) Accuracy() float64 {
	total := m.TotalSiren + m.TotalNonSiren
	if total == 0 {
		return 0
	}
	return float64(m.CorrectSiren+m.CorrectNonSiren) / float64(total)
}

// Precision is the fraction of siren calls that were sirens
func (m *Metrics) Precision() float64 {
	falsePositives := m.TotalNonSiren - m.CorrectNonSiren
	denom := m.CorrectSiren + falsePositives
	if denom == 0 {
		return 0
	}
	return float64(m.CorrectSiren) / float64(denom)
}

// Recall is the fraction of sirens that were caught
func (m *Metrics) Recall() float64 {
	if m.TotalSiren == 0 {
		return 0
	}
	return float64(m.CorrectSiren) / float64(m.TotalSiren)
}

// LabeledClip pairs a decoded clip with its ground truth
type LabeledClip struct {
	Name   string
	Buffer siren.SampleBuffer
	Truth  siren.Label
}

// DecodeFunc turns a file path into a sample buffer at the pipeline's rate
type DecodeFunc func(ctx context.Context, path string) (siren.SampleBuffer, error)

// PipelineFactory builds one pipeline instance per worker; pipelines
// hold per-clip mutable state and must not be shared across goroutines
type PipelineFactory func() (*siren.Pipeline, error)

// Evaluator runs labeled clips through the pipeline concurrently
type Evaluator struct {
	factory PipelineFactory
	workers int
	logger  logging.Logger
}

// NewEvaluator creates an evaluator with the given per-worker pipeline
// factory and worker count
func NewEvaluator(factory PipelineFactory, cfg config.EvalConfig) (*Evaluator, error) {
	if factory == nil {
		return nil, fmt.Errorf("pipeline factory is required")
	}
	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	return &Evaluator{
		factory: factory,
		workers: workers,
		logger: logging.WithFields(logging.Fields{
			"component": "evaluator",
			"workers":   workers,
		}),
	}, nil
}

// EvaluateClips classifies the given clips and accumulates metrics.
// Clips shorter than the smoothing window's fill requirement are
// counted as skipped, not guessed.
func (e *Evaluator) EvaluateClips(ctx context.Context, clips []LabeledClip) (*Metrics, error) {
	var mu sync.Mutex
	metrics := &Metrics{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, clip := range clips {
		clip := clip
		g.Go(func() error {
			pipeline, err := e.factory()
			if err != nil {
				return err
			}

			result, err := pipeline.EvaluateClip(ctx, clip.Buffer)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				if isSkippable(err) {
					e.logger.Warn("clip skipped", logging.Fields{
						"clip":   clip.Name,
						"reason": err.Error(),
					})
					metrics.Skipped++
					return nil
				}
				return fmt.Errorf("evaluating %s: %w", clip.Name, err)
			}

			switch clip.Truth {
			case siren.Siren:
				metrics.TotalSiren++
				if result.Decision.Label == siren.Siren {
					metrics.CorrectSiren++
				}
			case siren.NonSiren:
				metrics.TotalNonSiren++
				if result.Decision.Label == siren.NonSiren {
					metrics.CorrectNonSiren++
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	e.logger.Info("evaluation finished", logging.Fields{
		"accuracy":  metrics.Accuracy(),
		"precision": metrics.Precision(),
		"recall":    metrics.Recall(),
		"skipped":   metrics.Skipped,
	})

	return metrics, nil
}

// EvaluateDirs walks a siren directory and a non-siren directory of
// .wav clips, decodes each, and classifies the corpus
func (e *Evaluator) EvaluateDirs(ctx context.Context, sirenDir, nonSirenDir string, decode DecodeFunc) (*Metrics, error) {
	if decode == nil {
		return nil, fmt.Errorf("decode function is required")
	}

	clips, err := e.loadDir(ctx, sirenDir, siren.Siren, decode)
	if err != nil {
		return nil, err
	}
	nonSirenClips, err := e.loadDir(ctx, nonSirenDir, siren.NonSiren, decode)
	if err != nil {
		return nil, err
	}
	clips = append(clips, nonSirenClips...)

	if len(clips) == 0 {
		return nil, fmt.Errorf("no clips found under %s or %s", sirenDir, nonSirenDir)
	}

	return e.EvaluateClips(ctx, clips)
}

func (e *Evaluator) loadDir(ctx context.Context, dir string, truth siren.Label, decode DecodeFunc) ([]LabeledClip, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.wav"))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", dir, err)
	}

	clips := make([]LabeledClip, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buf, err := decode(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		clips = append(clips, LabeledClip{
			Name:   filepath.Base(path),
			Buffer: buf,
			Truth:  truth,
		})
	}

	e.logger.Debug("directory loaded", logging.Fields{
		"dir":   dir,
		"clips": len(clips),
		"truth": truth.String(),
	})
	return clips, nil
}

// isSkippable reports whether the error means the clip was simply too
// short for the pipeline rather than a real failure
func isSkippable(err error) bool {
	return errors.Is(err, siren.ErrClipTooShort) ||
		errors.Is(err, siren.ErrNoDecisions) ||
		errors.Is(err, siren.ErrEmptySignal)
}

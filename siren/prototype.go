package siren

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/WuZhou5/Emergency-Vehicle-Detection/algorithms/common"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/logging"
)

// Prototype is one labeled reference feature vector
type Prototype struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"` // "siren" or "non-siren"
	Features []float64 `json:"features"`
}

// PrototypeScorer is a distance-weighted nearest-prototype scorer: the
// probability of siren is the share of total neighbor weight carried by
// siren-labeled prototypes among the k nearest, with weight
// 1/(distance + eps). It stands in for a trained model behind the same
// Scorer interface and doubles as a deterministic reference scorer.
//
// Safe for concurrent use; prototypes are read-only after construction.
type PrototypeScorer struct {
	mu         sync.RWMutex
	prototypes []Prototype
	k          int
	dim        int
	logger     logging.Logger
}

const distanceEpsilon = 1e-9

// NewPrototypeScorer creates a scorer over the given prototypes using
// the k nearest neighbors. All prototypes must share one dimensionality.
func NewPrototypeScorer(prototypes []Prototype, k int) (*PrototypeScorer, error) {
	if k <= 0 {
		return nil, fmt.Errorf("invalid neighbour count: %d", k)
	}
	if len(prototypes) == 0 {
		return nil, fmt.Errorf("%w: no prototypes", ErrScorerUnavailable)
	}

	dim := len(prototypes[0].Features)
	for _, p := range prototypes {
		if len(p.Features) != dim {
			return nil, fmt.Errorf("prototype %q has %d features, expected %d", p.ID, len(p.Features), dim)
		}
		if p.Label != "siren" && p.Label != "non-siren" {
			return nil, fmt.Errorf("prototype %q has unknown label %q", p.ID, p.Label)
		}
	}

	// Normalize stored prototypes to unit length so distances compare
	// feature shape, not magnitude
	normalized := make([]Prototype, len(prototypes))
	for i, p := range prototypes {
		normalized[i] = Prototype{
			ID:       p.ID,
			Label:    p.Label,
			Features: common.UnitNormalize(p.Features),
		}
	}

	return &PrototypeScorer{
		prototypes: normalized,
		k:          k,
		dim:        dim,
		logger: logging.WithFields(logging.Fields{
			"component":  "prototype_scorer",
			"prototypes": len(prototypes),
			"k":          k,
		}),
	}, nil
}

// LoadPrototypeScorer reads a JSON array of prototypes from path
func LoadPrototypeScorer(path string, k int) (*PrototypeScorer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading prototypes: %w", err)
	}

	var prototypes []Prototype
	if err := json.Unmarshal(data, &prototypes); err != nil {
		return nil, fmt.Errorf("parsing prototypes %s: %w", path, err)
	}

	return NewPrototypeScorer(prototypes, k)
}

// Score returns the distance-weighted siren probability for one vector
func (s *PrototypeScorer) Score(ctx context.Context, v FeatureVector) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(v) != s.dim {
		return 0, fmt.Errorf("feature vector has %d dims, prototypes have %d", len(v), s.dim)
	}

	query := common.UnitNormalize(v)

	type pair struct {
		distance float64
		siren    bool
	}
	pairs := make([]pair, len(s.prototypes))
	for i, p := range s.prototypes {
		pairs[i] = pair{
			distance: common.EuclideanDistance(query, p.Features),
			siren:    p.Label == "siren",
		}
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].distance < pairs[j].distance })

	k := min(s.k, len(pairs))
	sirenWeight, totalWeight := 0.0, 0.0
	for _, p := range pairs[:k] {
		w := 1.0 / (p.distance + distanceEpsilon)
		totalWeight += w
		if p.siren {
			sirenWeight += w
		}
	}

	if totalWeight == 0 {
		return 0, fmt.Errorf("%w: degenerate neighbour weights", ErrScorerUnavailable)
	}

	return sirenWeight / totalWeight, nil
}

// AddPrototype appends a labeled prototype at runtime, letting the
// reference scorer grow without rebuilding
func (s *PrototypeScorer) AddPrototype(p Prototype) error {
	if len(p.Features) != s.dim {
		return fmt.Errorf("prototype %q has %d features, expected %d", p.ID, len(p.Features), s.dim)
	}
	if p.Label != "siren" && p.Label != "non-siren" {
		return fmt.Errorf("prototype %q has unknown label %q", p.ID, p.Label)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prototypes = append(s.prototypes, Prototype{
		ID:       p.ID,
		Label:    p.Label,
		Features: common.UnitNormalize(p.Features),
	})
	s.logger.Debug("prototype added", logging.Fields{"id": p.ID, "label": p.Label})
	return nil
}

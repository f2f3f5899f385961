package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultFeatureDim is the dimensionality of the default short-term
// feature set used end to end. One consistent value everywhere; the
// framer rejects extractors that disagree instead of truncating.
const DefaultFeatureDim = 34

// FilterConfig configures the band-limiting stage
type FilterConfig struct {
	LowHz  float64 `json:"low_hz" yaml:"low_hz"`
	HighHz float64 `json:"high_hz" yaml:"high_hz"`
	Order  int     `json:"order" yaml:"order"`
}

// FrameConfig configures the short-term framing stage
type FrameConfig struct {
	DurationSec float64 `json:"duration_sec" yaml:"duration_sec"`
	HopSec      float64 `json:"hop_sec" yaml:"hop_sec"`
}

// SmoothingConfig configures the sliding-window decision stage
type SmoothingConfig struct {
	WindowSize int     `json:"window_size" yaml:"window_size"`
	Threshold  float64 `json:"threshold" yaml:"threshold"`
}

// ScorerConfig configures the built-in reference scorer
type ScorerConfig struct {
	PrototypePath string `json:"prototype_path" yaml:"prototype_path"`
	Neighbors     int    `json:"neighbors" yaml:"neighbors"`
}

// EvalConfig configures dataset evaluation
type EvalConfig struct {
	Workers int `json:"workers" yaml:"workers"`
}

// Config is the full pipeline configuration
type Config struct {
	SampleRate int             `json:"sample_rate" yaml:"sample_rate"`
	Filter     FilterConfig    `json:"filter" yaml:"filter"`
	Frame      FrameConfig     `json:"frame" yaml:"frame"`
	Smoothing  SmoothingConfig `json:"smoothing" yaml:"smoothing"`
	FeatureDim int             `json:"feature_dim" yaml:"feature_dim"`
	Scorer     ScorerConfig    `json:"scorer" yaml:"scorer"`
	Eval       EvalConfig      `json:"eval" yaml:"eval"`
}

// DefaultConfig returns the domain's standard operating point: sirens
// sweep through 500-1500 Hz, clips resampled to 8 kHz, 5th-order filter,
// 100 ms frames with 50 ms hop, a 10-score smoothing window at
// threshold 0.5.
func DefaultConfig() *Config {
	return &Config{
		SampleRate: 8000,
		Filter: FilterConfig{
			LowHz:  500,
			HighHz: 1500,
			Order:  5,
		},
		Frame: FrameConfig{
			DurationSec: 0.10,
			HopSec:      0.05,
		},
		Smoothing: SmoothingConfig{
			WindowSize: 10,
			Threshold:  0.5,
		},
		FeatureDim: DefaultFeatureDim,
		Scorer: ScorerConfig{
			PrototypePath: "prototypes.json",
			Neighbors:     5,
		},
		Eval: EvalConfig{
			Workers: 4,
		},
	}
}

// Load reads a YAML config file over the defaults: absent fields keep
// their default values.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

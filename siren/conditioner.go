package siren

import (
	"fmt"

	"github.com/WuZhou5/Emergency-Vehicle-Detection/algorithms/filters"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/logging"
)

// FilterSpec describes the band-limiting stage. Immutable once handed to
// a Conditioner.
type FilterSpec struct {
	LowHz      float64 `json:"low_hz" yaml:"low_hz"`
	HighHz     float64 `json:"high_hz" yaml:"high_hz"`
	SampleRate int     `json:"sample_rate" yaml:"sample_rate"`
	Order      int     `json:"order" yaml:"order"`
}

// Validate checks the spec against the Nyquist constraint
// 0 < low < high < sampleRate/2 and order >= 1.
func (s FilterSpec) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidSpec, s.SampleRate)
	}
	if s.Order < 1 {
		return fmt.Errorf("%w: order must be >= 1, got %d", ErrInvalidSpec, s.Order)
	}
	nyquist := float64(s.SampleRate) / 2.0
	if s.LowHz <= 0 || s.LowHz >= nyquist {
		return fmt.Errorf("%w: low cutoff %.1f Hz outside (0, %.1f)", ErrInvalidSpec, s.LowHz, nyquist)
	}
	if s.HighHz <= 0 || s.HighHz >= nyquist {
		return fmt.Errorf("%w: high cutoff %.1f Hz outside (0, %.1f)", ErrInvalidSpec, s.HighHz, nyquist)
	}
	if s.LowHz >= s.HighHz {
		return fmt.Errorf("%w: low cutoff %.1f Hz >= high cutoff %.1f Hz", ErrInvalidSpec, s.LowHz, s.HighHz)
	}
	return nil
}

// Conditioner band-limits raw sample buffers to the spec's frequency
// range. It owns one filter instance and its recursion state, so a
// Conditioner serves one clip (or one continuous stream) at a time.
type Conditioner struct {
	spec   FilterSpec
	filter *filters.ButterworthBandpass
	logger logging.Logger
}

// NewConditioner validates the spec, designs the filter, and verifies
// numerical stability. Any design failure is reported as ErrInvalidSpec.
func NewConditioner(spec FilterSpec) (*Conditioner, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	filter, err := filters.NewButterworthBandpass(spec.SampleRate, spec.LowHz, spec.HighHz, spec.Order)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSpec, err)
	}

	logger := logging.WithFields(logging.Fields{
		"component": "conditioner",
		"low_hz":    spec.LowHz,
		"high_hz":   spec.HighHz,
		"rate":      spec.SampleRate,
		"order":     spec.Order,
	})
	logger.Debug("bandpass filter designed")

	return &Conditioner{
		spec:   spec,
		filter: filter,
		logger: logger,
	}, nil
}

// Condition applies the bandpass filter causally to a whole clip,
// resetting the filter state first. Returns a new buffer at the same rate.
func (c *Conditioner) Condition(buf SampleBuffer) (SampleBuffer, error) {
	if buf.SampleRate != c.spec.SampleRate {
		return SampleBuffer{}, fmt.Errorf("%w: buffer rate %d does not match spec rate %d",
			ErrInvalidSpec, buf.SampleRate, c.spec.SampleRate)
	}

	c.filter.Reset()
	out := c.filter.ProcessBuffer(buf.Samples)
	return NewSampleBuffer(out, buf.SampleRate), nil
}

// ConditionBlock filters one block of a longer recording, carrying the
// recursion state from previous blocks. Feeding contiguous blocks
// produces byte-identical output to one Condition call on the joined
// signal. Call Reset between independent streams.
func (c *Conditioner) ConditionBlock(block []float64) []float64 {
	return c.filter.ProcessBuffer(block)
}

// Reset clears the carried filter state
func (c *Conditioner) Reset() {
	c.filter.Reset()
}

// Spec returns the conditioner's filter spec
func (c *Conditioner) Spec() FilterSpec {
	return c.spec
}

// FrequencyResponse reports the designed filter's magnitude response at
// a frequency in Hz. Useful for verifying passband/stopband behavior.
func (c *Conditioner) FrequencyResponse(freq float64) float64 {
	mag, _ := c.filter.FrequencyResponse(freq)
	return mag
}

package siren

import "time"

// SampleBuffer is an ordered sequence of float64 samples at a fixed
// sample rate. Stages never mutate a buffer they were handed; every
// transformation returns a new buffer.
type SampleBuffer struct {
	Samples    []float64
	SampleRate int
}

// NewSampleBuffer wraps samples at the given rate
func NewSampleBuffer(samples []float64, sampleRate int) SampleBuffer {
	return SampleBuffer{Samples: samples, SampleRate: sampleRate}
}

// Len returns the number of samples
func (b SampleBuffer) Len() int {
	return len(b.Samples)
}

// Duration returns the buffer's length in time
func (b SampleBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

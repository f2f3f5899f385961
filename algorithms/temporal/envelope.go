package temporal

import (
	"fmt"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// Envelope provides amplitude envelope extraction via the analytic signal
type Envelope struct {
	// No state needed - stateless calculation
}

// NewEnvelope creates a new envelope extractor
func NewEnvelope() *Envelope {
	return &Envelope{}
}

// Compute returns the instantaneous amplitude envelope of the signal:
// the magnitude of the analytic signal obtained through the Hilbert
// transform. The output has the same length as the input and every
// value is >= 0.
//
// The transform operates on the whole finite sequence, so this stage is
// non-causal. For very long recordings use ComputeBlocked, which trades
// exactness near block seams for bounded memory.
func (e *Envelope) Compute(signal []float64) ([]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}

	analytic := analyticSignal(signal)

	envelope := make([]float64, len(signal))
	for i, v := range analytic {
		envelope[i] = cmplx.Abs(v)
	}
	return envelope, nil
}

// analyticSignal computes x + j*H(x) through the frequency domain:
// double the positive frequencies, zero the negative ones, keep DC and
// Nyquist untouched, then invert.
func analyticSignal(signal []float64) []complex128 {
	n := len(signal)
	spectrum := fft.FFTReal(signal)

	half := n / 2
	for i := 1; i < half; i++ {
		spectrum[i] *= 2
	}
	if n%2 == 0 {
		// Nyquist bin stays as-is for even lengths
		for i := half + 1; i < n; i++ {
			spectrum[i] = 0
		}
	} else {
		if half >= 1 {
			spectrum[half] *= 2
		}
		for i := half + 1; i < n; i++ {
			spectrum[i] = 0
		}
	}

	return fft.IFFT(spectrum)
}

// ComputeBlocked computes the envelope in overlapping blocks of blockSize
// samples with a discard margin of margin samples on each side. Only the
// central blockSize samples of each transformed block are kept, so the
// edge artifacts the finite-length transform introduces stay inside the
// discarded margins. Results near the very start and end of the signal,
// and at seams when margin is too small for the band of interest, can
// differ slightly from Compute on the whole signal.
func (e *Envelope) ComputeBlocked(signal []float64, blockSize, margin int) ([]float64, error) {
	if len(signal) == 0 {
		return nil, fmt.Errorf("empty signal")
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("block size must be positive: %d", blockSize)
	}
	if margin < 0 {
		return nil, fmt.Errorf("margin must be non-negative: %d", margin)
	}
	if len(signal) <= blockSize+2*margin {
		return e.Compute(signal)
	}

	envelope := make([]float64, len(signal))

	for start := 0; start < len(signal); start += blockSize {
		end := min(start+blockSize, len(signal))

		// Extend the block by the margin on both sides, clamped to
		// the signal bounds
		extStart := max(start-margin, 0)
		extEnd := min(end+margin, len(signal))

		analytic := analyticSignal(signal[extStart:extEnd])
		for i := start; i < end; i++ {
			envelope[i] = cmplx.Abs(analytic[i-extStart])
		}
	}

	return envelope, nil
}

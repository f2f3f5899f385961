package filters

import (
	"fmt"
	"math"
	"math/cmplx"
)

// ButterworthBandpass implements an order-N digital Butterworth bandpass
// filter applied as a causal recursive (IIR) difference equation.
//
// The design follows the classic analog-prototype route: Butterworth
// lowpass prototype poles, lowpass-to-bandpass transformation, then the
// bilinear transform with frequency pre-warping. The resulting transfer
// function H(z) = B(z)/A(z) has 2*order poles.
//
// Application uses the direct form II transposed structure, so output
// sample i depends only on input samples <= i and the carried state.
// Processing a long signal in blocks with the same filter instance is
// byte-identical to processing it in one call.
type ButterworthBandpass struct {
	sampleRate int
	lowCut     float64 // Low cutoff in Hz
	highCut    float64 // High cutoff in Hz
	order      int

	// Transfer function coefficients, a[0] normalized to 1
	b []float64 // Numerator, length 2*order+1
	a []float64 // Denominator, length 2*order+1

	poles []complex128 // Digital poles, kept for stability reporting

	// Delay line for direct form II transposed, length 2*order
	state []float64
}

// NewButterworthBandpass designs a bandpass filter with the given cutoffs.
//
// Parameters:
//   - sampleRate: Sample rate in Hz
//   - lowCut: Low cutoff frequency in Hz
//   - highCut: High cutoff frequency in Hz
//   - order: Prototype order (the digital filter has 2*order poles)
//
// The cutoffs are normalized against Nyquist and must satisfy
// 0 < low < high < sampleRate/2. Design fails if the resulting digital
// filter is unstable (any pole on or outside the unit circle).
func NewButterworthBandpass(sampleRate int, lowCut, highCut float64, order int) (*ButterworthBandpass, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive: %d", sampleRate)
	}
	if order < 1 {
		return nil, fmt.Errorf("filter order must be >= 1: %d", order)
	}

	nyquist := float64(sampleRate) / 2.0
	low := lowCut / nyquist
	high := highCut / nyquist

	if low <= 0 || low >= 1 {
		return nil, fmt.Errorf("low cutoff %.1f Hz outside (0, %.1f) Hz", lowCut, nyquist)
	}
	if high <= 0 || high >= 1 {
		return nil, fmt.Errorf("high cutoff %.1f Hz outside (0, %.1f) Hz", highCut, nyquist)
	}
	if low >= high {
		return nil, fmt.Errorf("low cutoff %.1f Hz must be below high cutoff %.1f Hz", lowCut, highCut)
	}

	bf := &ButterworthBandpass{
		sampleRate: sampleRate,
		lowCut:     lowCut,
		highCut:    highCut,
		order:      order,
	}

	if err := bf.design(low, high); err != nil {
		return nil, err
	}

	bf.state = make([]float64, 2*order)
	return bf, nil
}

// design computes B(z) and A(z) for normalized cutoffs in (0, 1)
func (bf *ButterworthBandpass) design(low, high float64) error {
	// Pre-warp the band edges for the bilinear transform, working at
	// an intermediate rate of fs = 2 so cutoffs stay normalized.
	const fs = 2.0
	warpedLow := 2.0 * fs * math.Tan(math.Pi*low/fs)
	warpedHigh := 2.0 * fs * math.Tan(math.Pi*high/fs)

	bw := warpedHigh - warpedLow
	wo := math.Sqrt(warpedLow * warpedHigh) // Geometric center frequency

	// Analog Butterworth lowpass prototype: order poles evenly spaced on
	// the left half of the unit circle, no zeros, unit gain.
	prototype := make([]complex128, bf.order)
	for k := 0; k < bf.order; k++ {
		theta := math.Pi * float64(2*k+1+bf.order) / float64(2*bf.order)
		prototype[k] = cmplx.Exp(complex(0, theta))
	}

	// Lowpass-to-bandpass transformation. Each prototype pole p maps to a
	// conjugate pair; order zeros appear at s = 0.
	analogPoles := make([]complex128, 0, 2*bf.order)
	for _, p := range prototype {
		scaled := p * complex(bw/2.0, 0)
		discr := cmplx.Sqrt(scaled*scaled - complex(wo*wo, 0))
		analogPoles = append(analogPoles, scaled+discr, scaled-discr)
	}
	analogGain := math.Pow(bw, float64(bf.order))

	// Bilinear transform: s -> 2*fs*(z-1)/(z+1)
	fs2 := 2.0 * fs
	digitalPoles := make([]complex128, len(analogPoles))
	gainNum := complex(1, 0)
	gainDen := complex(1, 0)
	for i, p := range analogPoles {
		digitalPoles[i] = (complex(fs2, 0) + p) / (complex(fs2, 0) - p)
		gainDen *= complex(fs2, 0) - p
	}

	// Analog zeros at s = 0 map to z = 1; the remaining order zeros of the
	// degree deficit land at z = -1.
	digitalZeros := make([]complex128, 0, 2*bf.order)
	for n := 0; n < bf.order; n++ {
		digitalZeros = append(digitalZeros, complex(1, 0))
		gainNum *= complex(fs2, 0) // fs2 - 0
	}
	for n := 0; n < bf.order; n++ {
		digitalZeros = append(digitalZeros, complex(-1, 0))
	}

	gain := analogGain * real(gainNum/gainDen)

	// Expand pole/zero form into polynomial coefficients
	bf.b = polynomialFromRoots(digitalZeros)
	bf.a = polynomialFromRoots(digitalPoles)
	for i := range bf.b {
		bf.b[i] *= gain
	}
	bf.poles = digitalPoles

	// Stability check on the designed poles, not the requested inputs.
	// High orders with very narrow normalized bands can push poles onto
	// or outside the unit circle through rounding.
	for _, p := range digitalPoles {
		if cmplx.Abs(p) >= 1.0 {
			return fmt.Errorf("designed filter is unstable: pole magnitude %.6f >= 1", cmplx.Abs(p))
		}
	}

	return nil
}

// polynomialFromRoots expands prod(x - r_i) and returns the real
// coefficients in descending power order
func polynomialFromRoots(roots []complex128) []float64 {
	coeffs := make([]complex128, 1, len(roots)+1)
	coeffs[0] = complex(1, 0)

	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}

	// Roots come in conjugate pairs; imaginary parts cancel to rounding noise
	out := make([]float64, len(coeffs))
	for i, c := range coeffs {
		out[i] = real(c)
	}
	return out
}

// Process applies the filter to a single sample using the direct form II
// transposed difference equation:
//
//	y[n] = b0*x[n] + z0[n-1]
//	zi[n] = b(i+1)*x[n] + z(i+1)[n-1] - a(i+1)*y[n]
func (bf *ButterworthBandpass) Process(input float64) float64 {
	output := bf.b[0]*input + bf.state[0]
	n := len(bf.state)
	for i := 0; i < n-1; i++ {
		bf.state[i] = bf.b[i+1]*input + bf.state[i+1] - bf.a[i+1]*output
	}
	bf.state[n-1] = bf.b[n]*input - bf.a[n]*output
	return output
}

// ProcessBuffer applies the filter to an entire buffer of samples.
// State carries across calls, so consecutive calls on contiguous blocks
// produce the same output as one call on the concatenated signal.
func (bf *ButterworthBandpass) ProcessBuffer(input []float64) []float64 {
	output := make([]float64, len(input))
	for i, sample := range input {
		output[i] = bf.Process(sample)
	}
	return output
}

// Reset clears the filter's internal state (delay line).
// Call this between independent clips.
func (bf *ButterworthBandpass) Reset() {
	for i := range bf.state {
		bf.state[i] = 0.0
	}
}

// Coefficients returns copies of the numerator and denominator
// coefficients in descending power order, a[0] == 1.
func (bf *ButterworthBandpass) Coefficients() (b, a []float64) {
	b = make([]float64, len(bf.b))
	a = make([]float64, len(bf.a))
	copy(b, bf.b)
	copy(a, bf.a)
	return b, a
}

// PoleMagnitudes returns the magnitudes of the digital poles.
// All values are < 1 for any successfully constructed filter.
func (bf *ButterworthBandpass) PoleMagnitudes() []float64 {
	mags := make([]float64, len(bf.poles))
	for i, p := range bf.poles {
		mags[i] = cmplx.Abs(p)
	}
	return mags
}

// FrequencyResponse computes the magnitude and phase response at the
// given frequency in Hz by evaluating H(e^jw) = B(e^jw)/A(e^jw).
func (bf *ButterworthBandpass) FrequencyResponse(frequency float64) (magnitude, phase float64) {
	w := 2.0 * math.Pi * frequency / float64(bf.sampleRate)
	ejw := cmplx.Exp(complex(0, -w))

	num := complex(0, 0)
	den := complex(0, 0)
	zPow := complex(1, 0)
	for i := range bf.b {
		num += complex(bf.b[i], 0) * zPow
		den += complex(bf.a[i], 0) * zPow
		zPow *= ejw
	}

	h := num / den
	return cmplx.Abs(h), cmplx.Phase(h)
}

// Parameters returns the filter's design parameters.
func (bf *ButterworthBandpass) Parameters() (sampleRate int, lowCut, highCut float64, order int) {
	return bf.sampleRate, bf.lowCut, bf.highCut, bf.order
}

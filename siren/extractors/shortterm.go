// Package extractors provides short-term feature extraction strategies
// for the framing stage.
package extractors

import (
	"fmt"
	"math"

	"github.com/WuZhou5/Emergency-Vehicle-Detection/algorithms/common"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/algorithms/spectral"
	"github.com/WuZhou5/Emergency-Vehicle-Detection/algorithms/windowing"
)

const (
	numMFCC          = 13
	numMelFilters    = 26
	numChroma        = 12
	numEntropyBlocks = 10
	rolloffCoverage  = 0.90
	eps              = 1e-10
)

// ShortTermDim is the dimensionality of the short-term feature set:
// zero-crossing rate, energy, energy entropy, spectral centroid, spread,
// entropy, flux and rolloff (8), 13 MFCCs, a 12-bin chroma vector and
// the chroma deviation.
const ShortTermDim = 8 + numMFCC + numChroma + 1

// ShortTerm computes the 34-dimensional short-term descriptor per frame.
// Spectral flux is computed against the previous frame's spectrum, so
// the extractor carries state across the frames of one clip; Reset
// clears it between clips. One instance serves one clip at a time.
type ShortTerm struct {
	fft *spectral.FFT

	// Lazily built for the first frame length/rate seen
	frameLen   int
	sampleRate int
	window     *windowing.Hamming
	melBank    [][]float64 // numMelFilters x spectrum bins
	dct        [][]float64 // numMFCC x numMelFilters
	chromaBin  []int       // spectrum bin -> pitch class, -1 to skip

	prevMagNorm []float64 // previous frame's sum-normalized magnitude
}

// NewShortTerm creates a short-term feature extractor
func NewShortTerm() *ShortTerm {
	return &ShortTerm{fft: spectral.NewFFT()}
}

// Name identifies the extractor in logs
func (e *ShortTerm) Name() string { return "short-term-34" }

// Dim returns the feature vector length
func (e *ShortTerm) Dim() int { return ShortTermDim }

// Reset clears the cross-frame flux state before a new clip
func (e *ShortTerm) Reset() {
	e.prevMagNorm = nil
}

// Extract computes the descriptor for one frame
func (e *ShortTerm) Extract(frame []float64, sampleRate int) ([]float64, error) {
	if len(frame) < 2 {
		return nil, fmt.Errorf("frame too short: %d samples", len(frame))
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	e.ensureInitialized(len(frame), sampleRate)

	features := make([]float64, 0, ShortTermDim)

	// Time-domain features on the raw frame
	features = append(features,
		zeroCrossingRate(frame),
		frameEnergy(frame),
		energyEntropy(frame, numEntropyBlocks),
	)

	// Single-sided magnitude spectrum of the windowed frame
	mag := e.fft.Magnitude(e.window.Apply(frame))

	centroid, spread := spectralCentroidSpread(mag, sampleRate)
	features = append(features, centroid, spread)
	features = append(features, spectralEntropy(mag, numEntropyBlocks))

	magNorm := sumNormalize(mag)
	features = append(features, spectralFlux(magNorm, e.prevMagNorm))
	features = append(features, spectralRolloff(mag, rolloffCoverage))

	features = append(features, e.mfcc(mag)...)

	chroma := e.chroma(mag)
	features = append(features, chroma...)
	features = append(features, common.StandardDeviation(chroma))

	e.prevMagNorm = magNorm

	return features, nil
}

// ensureInitialized (re)builds the window, mel filter bank, DCT matrix
// and chroma bin map when the frame geometry changes
func (e *ShortTerm) ensureInitialized(frameLen, sampleRate int) {
	if e.frameLen == frameLen && e.sampleRate == sampleRate {
		return
	}

	e.frameLen = frameLen
	e.sampleRate = sampleRate
	e.window = windowing.NewHamming(frameLen, true)

	bins := frameLen/2 + 1
	e.melBank = melFilterBank(sampleRate, frameLen, bins, numMelFilters)
	e.dct = dctMatrix(numMFCC, numMelFilters)
	e.chromaBin = chromaBinMap(sampleRate, frameLen, bins)
	e.prevMagNorm = nil
}

// mfcc maps the magnitude spectrum through the mel filter bank, takes
// logs, and applies the DCT, keeping the first numMFCC coefficients
func (e *ShortTerm) mfcc(mag []float64) []float64 {
	filterEnergies := make([]float64, numMelFilters)
	for f, filter := range e.melBank {
		sum := 0.0
		for k, w := range filter {
			sum += w * mag[k] * mag[k]
		}
		filterEnergies[f] = math.Log(sum + eps)
	}

	coeffs := make([]float64, numMFCC)
	for c := 0; c < numMFCC; c++ {
		sum := 0.0
		for f := 0; f < numMelFilters; f++ {
			sum += e.dct[c][f] * filterEnergies[f]
		}
		coeffs[c] = sum
	}
	return coeffs
}

// chroma folds the bin energies onto the 12 pitch classes, normalized
// by total spectral energy
func (e *ShortTerm) chroma(mag []float64) []float64 {
	chroma := make([]float64, numChroma)
	total := 0.0
	for k, class := range e.chromaBin {
		energy := mag[k] * mag[k]
		total += energy
		if class >= 0 {
			chroma[class] += energy
		}
	}
	if total > eps {
		for i := range chroma {
			chroma[i] /= total
		}
	}
	return chroma
}

// zeroCrossingRate is the fraction of adjacent sample pairs whose signs differ
func zeroCrossingRate(frame []float64) float64 {
	crossings := 0
	for i := 1; i < len(frame); i++ {
		if (frame[i] >= 0) != (frame[i-1] >= 0) {
			crossings++
		}
	}
	return float64(crossings) / float64(len(frame)-1)
}

// frameEnergy is the mean squared amplitude
func frameEnergy(frame []float64) float64 {
	sum := 0.0
	for _, v := range frame {
		sum += v * v
	}
	return sum / float64(len(frame))
}

// energyEntropy measures how evenly the frame's energy spreads across
// numBlocks sub-frames; an abrupt transient concentrates energy and
// lowers the entropy
func energyEntropy(frame []float64, numBlocks int) float64 {
	total := 0.0
	for _, v := range frame {
		total += v * v
	}
	if total < eps {
		return 0
	}

	blockLen := len(frame) / numBlocks
	if blockLen == 0 {
		blockLen = 1
		numBlocks = len(frame)
	}

	entropy := 0.0
	for b := 0; b < numBlocks; b++ {
		start := b * blockLen
		end := min(start+blockLen, len(frame))
		blockEnergy := 0.0
		for _, v := range frame[start:end] {
			blockEnergy += v * v
		}
		p := blockEnergy / total
		if p > eps {
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// spectralCentroidSpread returns the centroid and spread of the
// magnitude spectrum, both normalized by Nyquist into [0, 1]
func spectralCentroidSpread(mag []float64, sampleRate int) (centroid, spread float64) {
	nyquist := float64(sampleRate) / 2.0
	binWidth := nyquist / float64(len(mag)-1)

	sum, weighted := 0.0, 0.0
	for k, m := range mag {
		f := float64(k) * binWidth
		sum += m
		weighted += f * m
	}
	if sum < eps {
		return 0, 0
	}

	c := weighted / sum
	varSum := 0.0
	for k, m := range mag {
		f := float64(k) * binWidth
		varSum += (f - c) * (f - c) * m
	}

	return c / nyquist, math.Sqrt(varSum/sum) / nyquist
}

// spectralEntropy measures the flatness of the power spectrum over
// numBlocks bands
func spectralEntropy(mag []float64, numBlocks int) float64 {
	total := 0.0
	power := make([]float64, len(mag))
	for k, m := range mag {
		power[k] = m * m
		total += power[k]
	}
	if total < eps {
		return 0
	}

	blockLen := len(power) / numBlocks
	if blockLen == 0 {
		blockLen = 1
		numBlocks = len(power)
	}

	entropy := 0.0
	for b := 0; b < numBlocks; b++ {
		start := b * blockLen
		end := min(start+blockLen, len(power))
		blockPower := 0.0
		for _, p := range power[start:end] {
			blockPower += p
		}
		p := blockPower / total
		if p > eps {
			entropy -= p * math.Log2(p)
		}
	}
	return entropy
}

// spectralFlux is the squared difference between consecutive
// sum-normalized spectra; zero for the first frame of a clip
func spectralFlux(magNorm, prevMagNorm []float64) float64 {
	if prevMagNorm == nil || len(prevMagNorm) != len(magNorm) {
		return 0
	}
	flux := 0.0
	for k := range magNorm {
		d := magNorm[k] - prevMagNorm[k]
		flux += d * d
	}
	return flux
}

// spectralRolloff is the fraction of the spectrum below which
// `coverage` of the total spectral energy is contained
func spectralRolloff(mag []float64, coverage float64) float64 {
	total := 0.0
	for _, m := range mag {
		total += m * m
	}
	if total < eps {
		return 0
	}

	target := coverage * total
	cumulative := 0.0
	for k, m := range mag {
		cumulative += m * m
		if cumulative >= target {
			return float64(k) / float64(len(mag))
		}
	}
	return 1.0
}

func sumNormalize(mag []float64) []float64 {
	sum := 0.0
	for _, m := range mag {
		sum += m
	}
	out := make([]float64, len(mag))
	if sum < eps {
		return out
	}
	for k, m := range mag {
		out[k] = m / sum
	}
	return out
}

func hzToMel(f float64) float64 {
	return 2595.0 * math.Log10(1.0+f/700.0)
}

func melToHz(m float64) float64 {
	return 700.0 * (math.Pow(10.0, m/2595.0) - 1.0)
}

// melFilterBank builds numFilters triangular filters over the
// single-sided spectrum bins, spaced evenly on the mel scale from 0 Hz
// to Nyquist
func melFilterBank(sampleRate, frameLen, bins, numFilters int) [][]float64 {
	nyquist := float64(sampleRate) / 2.0
	melMax := hzToMel(nyquist)

	// Filter edge frequencies: numFilters+2 points on the mel scale
	edges := make([]float64, numFilters+2)
	for i := range edges {
		edges[i] = melToHz(melMax * float64(i) / float64(numFilters+1))
	}

	binFreq := func(k int) float64 {
		return float64(k) * float64(sampleRate) / float64(frameLen)
	}

	bank := make([][]float64, numFilters)
	for f := 0; f < numFilters; f++ {
		filter := make([]float64, bins)
		lo, center, hi := edges[f], edges[f+1], edges[f+2]
		for k := 0; k < bins; k++ {
			freq := binFreq(k)
			switch {
			case freq >= lo && freq <= center && center > lo:
				filter[k] = (freq - lo) / (center - lo)
			case freq > center && freq <= hi && hi > center:
				filter[k] = (hi - freq) / (hi - center)
			}
		}
		bank[f] = filter
	}
	return bank
}

// dctMatrix builds the orthonormal DCT-II matrix rows used to
// decorrelate the log filter-bank energies
func dctMatrix(numCoeffs, numFilters int) [][]float64 {
	m := make([][]float64, numCoeffs)
	scale0 := math.Sqrt(1.0 / float64(numFilters))
	scale := math.Sqrt(2.0 / float64(numFilters))
	for c := 0; c < numCoeffs; c++ {
		row := make([]float64, numFilters)
		for f := 0; f < numFilters; f++ {
			row[f] = math.Cos(math.Pi * float64(c) * (float64(f) + 0.5) / float64(numFilters))
			if c == 0 {
				row[f] *= scale0
			} else {
				row[f] *= scale
			}
		}
		m[c] = row
	}
	return m
}

// chromaBinMap assigns each spectrum bin to one of the 12 pitch
// classes, relative to A0 at 27.5 Hz; DC and sub-audio bins map to -1
func chromaBinMap(sampleRate, frameLen, bins int) []int {
	const a0 = 27.5
	mapping := make([]int, bins)
	for k := 0; k < bins; k++ {
		freq := float64(k) * float64(sampleRate) / float64(frameLen)
		if freq < a0 {
			mapping[k] = -1
			continue
		}
		semitone := int(math.Round(12.0 * math.Log2(freq/a0)))
		mapping[k] = ((semitone % 12) + 12) % 12
	}
	return mapping
}

package siren

import (
	"fmt"

	"github.com/WuZhou5/Emergency-Vehicle-Detection/logging"
)

// FeatureVector is one frame's fixed-length feature descriptor.
// Immutable once produced.
type FeatureVector []float64

// FeatureWindow is the ordered per-frame feature vectors of one clip
type FeatureWindow []FeatureVector

// FeatureExtractor computes one feature vector from one analysis frame.
// Implementations may keep state across frames of a clip (e.g. spectral
// flux needs the previous spectrum); Reset is called before each clip.
type FeatureExtractor interface {
	// Reset clears any cross-frame state before a new clip
	Reset()
	// Extract computes the features of one frame of samples
	Extract(frame []float64, sampleRate int) ([]float64, error)
	// Dim is the length of every vector Extract returns
	Dim() int
	// Name identifies the extractor in logs
	Name() string
}

// Framer slices an envelope into overlapping fixed-duration frames and
// produces one feature vector per frame through a pluggable extractor.
//
// Frames advance by the hop; a trailing partial frame shorter than the
// full frame length is dropped, never zero-padded. For a clip of L
// samples with frame length F and hop H the yield is (L-F)/H + 1 frames.
type Framer struct {
	frameDuration float64 // seconds
	hopDuration   float64 // seconds
	extractor     FeatureExtractor
	logger        logging.Logger
}

// NewFramer creates a framer with the given frame and hop durations in
// seconds and a feature extraction strategy.
func NewFramer(frameDuration, hopDuration float64, extractor FeatureExtractor) (*Framer, error) {
	if frameDuration <= 0 {
		return nil, fmt.Errorf("frame duration must be positive: %f", frameDuration)
	}
	if hopDuration <= 0 {
		return nil, fmt.Errorf("hop duration must be positive: %f", hopDuration)
	}
	if extractor == nil {
		return nil, fmt.Errorf("feature extractor is required")
	}

	return &Framer{
		frameDuration: frameDuration,
		hopDuration:   hopDuration,
		extractor:     extractor,
		logger: logging.WithFields(logging.Fields{
			"component": "framer",
			"extractor": extractor.Name(),
		}),
	}, nil
}

// Frame partitions the envelope and extracts one vector per frame.
// Returns ErrClipTooShort when the envelope holds fewer samples than one
// frame. Every vector's length is checked against the extractor's
// declared dimensionality; a mismatch is an error, never truncated.
func (f *Framer) Frame(envelope SampleBuffer) (FeatureWindow, error) {
	frameLen := int(f.frameDuration * float64(envelope.SampleRate))
	hopLen := int(f.hopDuration * float64(envelope.SampleRate))
	if frameLen <= 0 || hopLen <= 0 {
		return nil, fmt.Errorf("frame/hop too short for sample rate %d", envelope.SampleRate)
	}

	if envelope.Len() < frameLen {
		return nil, fmt.Errorf("%w: %d samples, frame needs %d", ErrClipTooShort, envelope.Len(), frameLen)
	}

	numFrames := (envelope.Len()-frameLen)/hopLen + 1
	window := make(FeatureWindow, 0, numFrames)

	f.extractor.Reset()
	dim := f.extractor.Dim()

	for i := 0; i < numFrames; i++ {
		start := i * hopLen
		frame := envelope.Samples[start : start+frameLen]

		features, err := f.extractor.Extract(frame, envelope.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("extracting frame %d: %w", i, err)
		}
		if len(features) != dim {
			return nil, fmt.Errorf("extractor %q returned %d features for frame %d, declared %d",
				f.extractor.Name(), len(features), i, dim)
		}

		window = append(window, FeatureVector(features))
	}

	f.logger.Debug("clip framed", logging.Fields{
		"frames":    len(window),
		"frame_len": frameLen,
		"hop_len":   hopLen,
	})

	return window, nil
}

// FrameLength returns the frame length in samples at the given rate
func (f *Framer) FrameLength(sampleRate int) int {
	return int(f.frameDuration * float64(sampleRate))
}

// HopLength returns the hop length in samples at the given rate
func (f *Framer) HopLength(sampleRate int) int {
	return int(f.hopDuration * float64(sampleRate))
}

package siren

import (
	"errors"
	"strings"
	"testing"
)

// stubExtractor returns a fixed-size vector whose first element is the
// frame's first sample, and counts Reset calls.
type stubExtractor struct {
	dim    int
	resets int
	badDim bool
}

func (s *stubExtractor) Reset() { s.resets++ }

func (s *stubExtractor) Extract(frame []float64, sampleRate int) ([]float64, error) {
	dim := s.dim
	if s.badDim {
		dim++
	}
	features := make([]float64, dim)
	if len(frame) > 0 {
		features[0] = frame[0]
	}
	return features, nil
}

func (s *stubExtractor) Dim() int     { return s.dim }
func (s *stubExtractor) Name() string { return "stub" }

func newTestFramer(t *testing.T, frameDur, hopDur float64, ex FeatureExtractor) *Framer {
	t.Helper()
	fr, err := NewFramer(frameDur, hopDur, ex)
	if err != nil {
		t.Fatalf("NewFramer failed: %v", err)
	}
	return fr
}

func TestNewFramer_RejectsBadParameters(t *testing.T) {
	ex := &stubExtractor{dim: 3}
	if _, err := NewFramer(0, 0.05, ex); err == nil {
		t.Error("expected error for zero frame duration")
	}
	if _, err := NewFramer(0.1, -0.05, ex); err == nil {
		t.Error("expected error for negative hop duration")
	}
	if _, err := NewFramer(0.1, 0.05, nil); err == nil {
		t.Error("expected error for nil extractor")
	}
}

func TestFramer_FrameCount(t *testing.T) {
	// frame 100 ms, hop 50 ms at 8 kHz: 800 and 400 samples
	cases := []struct {
		name       string
		samples    int
		wantFrames int
	}{
		{"exactly one frame", 800, 1},
		{"one frame plus partial hop", 1100, 1},
		{"two frames", 1200, 2},
		{"two seconds", 16000, 39},
		{"partial tail dropped", 16399, 39},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ex := &stubExtractor{dim: 3}
			fr := newTestFramer(t, 0.10, 0.05, ex)

			window, err := fr.Frame(NewSampleBuffer(make([]float64, tc.samples), 8000))
			if err != nil {
				t.Fatalf("Frame failed: %v", err)
			}
			if len(window) != tc.wantFrames {
				t.Errorf("got %d frames, want %d", len(window), tc.wantFrames)
			}
			if ex.resets != 1 {
				t.Errorf("extractor reset %d times, want 1", ex.resets)
			}
		})
	}
}

func TestFramer_ClipTooShort(t *testing.T) {
	fr := newTestFramer(t, 0.10, 0.05, &stubExtractor{dim: 3})

	_, err := fr.Frame(NewSampleBuffer(make([]float64, 799), 8000))
	if !errors.Is(err, ErrClipTooShort) {
		t.Fatalf("err = %v, want ErrClipTooShort", err)
	}
}

func TestFramer_FramesAdvanceByHop(t *testing.T) {
	ex := &stubExtractor{dim: 2}
	fr := newTestFramer(t, 0.10, 0.05, ex)

	samples := make([]float64, 2000)
	for i := range samples {
		samples[i] = float64(i)
	}

	window, err := fr.Frame(NewSampleBuffer(samples, 8000))
	if err != nil {
		t.Fatalf("Frame failed: %v", err)
	}

	// The stub copies the frame's first sample into features[0]
	for i, fv := range window {
		if want := float64(i * 400); fv[0] != want {
			t.Errorf("frame %d starts at sample %g, want %g", i, fv[0], want)
		}
	}
}

func TestFramer_DimensionMismatchIsAnError(t *testing.T) {
	fr := newTestFramer(t, 0.10, 0.05, &stubExtractor{dim: 3, badDim: true})

	_, err := fr.Frame(NewSampleBuffer(make([]float64, 1600), 8000))
	if err == nil {
		t.Fatal("expected error for dimension mismatch")
	}
	if !strings.Contains(err.Error(), "declared") {
		t.Errorf("err = %v, want dimensionality mismatch", err)
	}
}

package siren

import (
	"errors"
	"math"
	"testing"
)

func defaultSpec() FilterSpec {
	return FilterSpec{LowHz: 500, HighHz: 1500, SampleRate: 8000, Order: 5}
}

func newTestConditioner(t *testing.T) *Conditioner {
	t.Helper()
	c, err := NewConditioner(defaultSpec())
	if err != nil {
		t.Fatalf("NewConditioner failed: %v", err)
	}
	return c
}

func toneBuffer(freq float64, sampleRate, n int) SampleBuffer {
	samples := make([]float64, n)
	for i := range samples {
		samples[i] = math.Sin(2 * math.Pi * freq * float64(i) / float64(sampleRate))
	}
	return NewSampleBuffer(samples, sampleRate)
}

func bufferRMS(buf SampleBuffer) float64 {
	sum := 0.0
	for _, v := range buf.Samples {
		sum += v * v
	}
	return math.Sqrt(sum / float64(buf.Len()))
}

func TestFilterSpec_Validate(t *testing.T) {
	cases := []struct {
		name string
		spec FilterSpec
	}{
		{"zero sample rate", FilterSpec{LowHz: 500, HighHz: 1500, SampleRate: 0, Order: 5}},
		{"zero order", FilterSpec{LowHz: 500, HighHz: 1500, SampleRate: 8000, Order: 0}},
		{"low above high", FilterSpec{LowHz: 1500, HighHz: 500, SampleRate: 8000, Order: 5}},
		{"low equals high", FilterSpec{LowHz: 1000, HighHz: 1000, SampleRate: 8000, Order: 5}},
		{"low at zero", FilterSpec{LowHz: 0, HighHz: 1500, SampleRate: 8000, Order: 5}},
		{"high at nyquist", FilterSpec{LowHz: 500, HighHz: 4000, SampleRate: 8000, Order: 5}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.spec.Validate()
			if !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("err = %v, want ErrInvalidSpec", err)
			}
			if _, err := NewConditioner(tc.spec); !errors.Is(err, ErrInvalidSpec) {
				t.Errorf("NewConditioner err = %v, want ErrInvalidSpec", err)
			}
		})
	}

	if err := defaultSpec().Validate(); err != nil {
		t.Errorf("default spec rejected: %v", err)
	}
}

func TestConditioner_RejectsRateMismatch(t *testing.T) {
	c := newTestConditioner(t)

	_, err := c.Condition(toneBuffer(1000, 16000, 1600))
	if !errors.Is(err, ErrInvalidSpec) {
		t.Fatalf("err = %v, want ErrInvalidSpec", err)
	}
}

func TestConditioner_PreservesLengthAndRate(t *testing.T) {
	c := newTestConditioner(t)

	in := toneBuffer(1000, 8000, 4000)
	out, err := c.Condition(in)
	if err != nil {
		t.Fatalf("Condition failed: %v", err)
	}
	if out.Len() != in.Len() {
		t.Errorf("length changed: %d -> %d", in.Len(), out.Len())
	}
	if out.SampleRate != in.SampleRate {
		t.Errorf("sample rate changed: %d -> %d", in.SampleRate, out.SampleRate)
	}
}

func TestConditioner_PassbandVersusStopband(t *testing.T) {
	c := newTestConditioner(t)

	inBand, err := c.Condition(toneBuffer(1000, 8000, 16000))
	if err != nil {
		t.Fatalf("Condition failed: %v", err)
	}
	outOfBand, err := c.Condition(toneBuffer(3000, 8000, 16000))
	if err != nil {
		t.Fatalf("Condition failed: %v", err)
	}

	// Measure after the filter transient has settled
	settled := func(buf SampleBuffer) SampleBuffer {
		return NewSampleBuffer(buf.Samples[4000:], buf.SampleRate)
	}
	ratio := 20 * math.Log10(bufferRMS(settled(inBand))/bufferRMS(settled(outOfBand)))
	if ratio < 20 {
		t.Errorf("in-band vs out-of-band level difference = %.1f dB, want >= 20 dB", ratio)
	}

	if mag := c.FrequencyResponse(1000); mag < 0.7 {
		t.Errorf("passband response at 1000 Hz = %f, want >= 0.7", mag)
	}
	if mag := c.FrequencyResponse(3000); mag > 0.1 {
		t.Errorf("stopband response at 3000 Hz = %f, want <= 0.1", mag)
	}
}

func TestConditioner_BlockStreamingMatchesWholeClip(t *testing.T) {
	whole := newTestConditioner(t)
	in := toneBuffer(900, 8000, 6000)

	expected, err := whole.Condition(in)
	if err != nil {
		t.Fatalf("Condition failed: %v", err)
	}

	streamed := newTestConditioner(t)
	var got []float64
	for start := 0; start < in.Len(); start += 1000 {
		end := min(start+1000, in.Len())
		got = append(got, streamed.ConditionBlock(in.Samples[start:end])...)
	}

	for i := range got {
		if got[i] != expected.Samples[i] {
			t.Fatalf("block streaming diverged at sample %d: %g vs %g", i, got[i], expected.Samples[i])
		}
	}
}

func TestConditioner_ConditionResetsStateBetweenClips(t *testing.T) {
	c := newTestConditioner(t)
	in := toneBuffer(1000, 8000, 2000)

	first, err := c.Condition(in)
	if err != nil {
		t.Fatalf("Condition failed: %v", err)
	}
	second, err := c.Condition(in)
	if err != nil {
		t.Fatalf("Condition failed: %v", err)
	}

	for i := range first.Samples {
		if first.Samples[i] != second.Samples[i] {
			t.Fatalf("repeated Condition diverged at sample %d", i)
		}
	}
}

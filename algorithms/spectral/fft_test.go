package spectral

import (
	"math"
	"math/cmplx"
	"testing"
)

func TestFFT_MagnitudeOfPureTone(t *testing.T) {
	f := NewFFT()

	// 64 cycles over 512 samples: all energy in bin 64
	n := 512
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(2 * math.Pi * 64 * float64(i) / float64(n))
	}

	mag := f.Magnitude(signal)
	if len(mag) != n/2+1 {
		t.Fatalf("got %d bins, want %d", len(mag), n/2+1)
	}

	// A unit sine concentrates n/2 of magnitude in its bin
	if math.Abs(mag[64]-float64(n)/2) > 1e-6 {
		t.Errorf("tone bin magnitude = %f, want %f", mag[64], float64(n)/2)
	}
	for k, m := range mag {
		if k != 64 && m > 1e-6 {
			t.Errorf("leakage %g in bin %d for an integer-cycle tone", m, k)
		}
	}
}

func TestFFT_RoundTrip(t *testing.T) {
	f := NewFFT()

	signal := []float64{0.5, -1.25, 2, 0, 3.75, -0.5, 1, 1} // arbitrary
	back := f.ComputeInverse(f.Compute(signal))

	if len(back) != len(signal) {
		t.Fatalf("round trip changed length: %d -> %d", len(signal), len(back))
	}
	for i, v := range back {
		if math.Abs(real(v)-signal[i]) > 1e-9 || math.Abs(imag(v)) > 1e-9 {
			t.Errorf("round trip sample %d = %v, want %g", i, v, signal[i])
		}
	}
}

func TestFFT_NonPowerOfTwoLength(t *testing.T) {
	f := NewFFT()

	signal := make([]float64, 800)
	for i := range signal {
		signal[i] = math.Cos(2 * math.Pi * 100 * float64(i) / 800)
	}

	mag := f.Magnitude(signal)
	if len(mag) != 401 {
		t.Fatalf("got %d bins, want 401", len(mag))
	}
	for k, m := range mag {
		if math.IsNaN(m) || m < 0 {
			t.Errorf("bin %d = %g", k, m)
		}
	}
}

func TestFFT_EmptyInput(t *testing.T) {
	f := NewFFT()

	if got := f.Compute(nil); len(got) != 0 {
		t.Errorf("Compute(nil) returned %d values", len(got))
	}
	if got := f.Magnitude(nil); len(got) != 0 {
		t.Errorf("Magnitude(nil) returned %d values", len(got))
	}
	if got := f.ComputeInverse([]complex128{}); len(got) != 0 {
		t.Errorf("ComputeInverse(empty) returned %d values", len(got))
	}
}

func TestFFT_ParsevalEnergyConservation(t *testing.T) {
	f := NewFFT()

	n := 256
	signal := make([]float64, n)
	for i := range signal {
		signal[i] = math.Sin(0.1*float64(i)) + 0.3*math.Cos(0.7*float64(i))
	}

	timeEnergy := 0.0
	for _, v := range signal {
		timeEnergy += v * v
	}
	freqEnergy := 0.0
	for _, c := range f.Compute(signal) {
		m := cmplx.Abs(c)
		freqEnergy += m * m
	}
	freqEnergy /= float64(n)

	if math.Abs(timeEnergy-freqEnergy) > 1e-6*timeEnergy {
		t.Errorf("Parseval mismatch: time %f vs freq %f", timeEnergy, freqEnergy)
	}
}

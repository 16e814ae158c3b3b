package dsp

import (
	"math"
	"testing"
)

func rms(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(x)))
}

func sine(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func TestHighpassAttenuatesLowFrequencies(t *testing.T) {
	const rate = 8000.0
	low := sine(20, rate, 8000)
	high := sine(1000, rate, 8000)

	NewHighpass(100, rate, math.Sqrt2/2).ProcessBuffer(low)
	NewHighpass(100, rate, math.Sqrt2/2).ProcessBuffer(high)

	if rms(low[4000:]) > 0.1 {
		t.Fatalf("20 Hz not attenuated: rms %g", rms(low[4000:]))
	}
	if rms(high[4000:]) < 0.5 {
		t.Fatalf("1 kHz should pass: rms %g", rms(high[4000:]))
	}
}

func TestLowpassAttenuatesHighFrequencies(t *testing.T) {
	const rate = 8000.0
	low := sine(50, rate, 8000)
	high := sine(3000, rate, 8000)

	NewLowpass(200, rate, math.Sqrt2/2).ProcessBuffer(low)
	NewLowpass(200, rate, math.Sqrt2/2).ProcessBuffer(high)

	if rms(low[4000:]) < 0.5 {
		t.Fatalf("50 Hz should pass: rms %g", rms(low[4000:]))
	}
	if rms(high[4000:]) > 0.1 {
		t.Fatalf("3 kHz not attenuated: rms %g", rms(high[4000:]))
	}
}

func TestBiquadReset(t *testing.T) {
	f := NewLowpass(500, 8000, 0.707)
	first := f.Process(1.0)
	f.Process(0.5)
	f.Reset()
	if got := f.Process(1.0); got != first {
		t.Fatalf("Reset did not clear state: %g vs %g", got, first)
	}
}

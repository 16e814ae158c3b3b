package image

import (
	"context"
	"math"
	"testing"

	"github.com/cwbudde/rirgen/kernel"
	"github.com/cwbudde/rirgen/scenario"
)

func testParams() kernel.Params {
	return kernel.Params{
		SoundSpeed: 340,
		SampleRate: 8000,
		NumSamples: 2000,
		Mic:        scenario.Vec3{X: 2, Y: 1.5, Z: 1},
		Source:     scenario.Vec3{X: 3, Y: 2.5, Z: 2},
		Room:       scenario.Vec3{X: 5, Y: 4, Z: 3},
		Reflection: [6]float64{0.7, 0.7, 0.7, 0.7, 0.7, 0.7},
		MicKind:    kernel.MicOmnidirectional,
		Order:      10,
		Dimension:  3,
	}
}

func TestSimulateOutputWellFormed(t *testing.T) {
	p := testParams()
	out, err := New().Simulate(context.Background(), p)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if err := kernel.CheckOutput(p, out); err != nil {
		t.Fatalf("defective output: %v", err)
	}

	energy := 0.0
	for _, v := range out {
		energy += v * v
	}
	if energy <= 1e-12 {
		t.Fatal("expected non-zero energy")
	}
}

func TestSimulateDirectPathDelay(t *testing.T) {
	// With fully absorbing walls only the direct path remains; its peak
	// must land at dist/c in samples.
	p := testParams()
	p.Reflection = [6]float64{}

	out, err := New().Simulate(context.Background(), p)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}

	peakIdx := 0
	peak := 0.0
	for i, v := range out {
		if a := math.Abs(v); a > peak {
			peak = a
			peakIdx = i
		}
	}

	dist := p.Source.Dist(p.Mic)
	want := dist / p.SoundSpeed * float64(p.SampleRate)
	if math.Abs(float64(peakIdx)-want) > 2 {
		t.Fatalf("direct path peak at sample %d, want ~%.1f", peakIdx, want)
	}
}

func TestSimulateOrderZeroMatchesDirectOnly(t *testing.T) {
	direct := testParams()
	direct.Reflection = [6]float64{}

	order0 := testParams()
	order0.Order = 0

	a, err := New().Simulate(context.Background(), direct)
	if err != nil {
		t.Fatalf("Simulate direct: %v", err)
	}
	b, err := New().Simulate(context.Background(), order0)
	if err != nil {
		t.Fatalf("Simulate order 0: %v", err)
	}
	for i := range a {
		if math.Abs(a[i]-b[i]) > 1e-9 {
			t.Fatalf("order 0 differs from direct-only at sample %d: %g vs %g", i, a[i], b[i])
		}
	}
}

func TestSimulateReflectiveWallsAddEnergy(t *testing.T) {
	low := testParams()
	low.Reflection = [6]float64{0.3, 0.3, 0.3, 0.3, 0.3, 0.3}
	high := testParams()
	high.Reflection = [6]float64{0.9, 0.9, 0.9, 0.9, 0.9, 0.9}

	outLow, err := New().Simulate(context.Background(), low)
	if err != nil {
		t.Fatalf("Simulate low: %v", err)
	}
	outHigh, err := New().Simulate(context.Background(), high)
	if err != nil {
		t.Fatalf("Simulate high: %v", err)
	}

	tail := func(out []float64) float64 {
		e := 0.0
		for _, v := range out[len(out)/2:] {
			e += v * v
		}
		return e
	}
	if tail(outHigh) <= tail(outLow) {
		t.Fatalf("reflective room tail energy %g not above absorptive %g", tail(outHigh), tail(outLow))
	}
}

func TestSimulateDeterministic(t *testing.T) {
	p := testParams()
	a, err := New().Simulate(context.Background(), p)
	if err != nil {
		t.Fatalf("first Simulate: %v", err)
	}
	b, err := New().Simulate(context.Background(), p)
	if err != nil {
		t.Fatalf("second Simulate: %v", err)
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("non-deterministic output at sample %d", i)
		}
	}
}

func TestSimulateHighPassRemovesDC(t *testing.T) {
	p := testParams()
	plain, err := New().Simulate(context.Background(), p)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	p.HighPass = true
	filtered, err := New().Simulate(context.Background(), p)
	if err != nil {
		t.Fatalf("Simulate highpass: %v", err)
	}

	sum := func(out []float64) float64 {
		s := 0.0
		for _, v := range out {
			s += v
		}
		return math.Abs(s)
	}
	if sum(filtered) >= sum(plain) {
		t.Fatalf("highpass did not reduce DC: %g vs %g", sum(filtered), sum(plain))
	}
}

func TestSimulateUnsupportedMic(t *testing.T) {
	p := testParams()
	p.MicKind = "cardioid"
	if _, err := New().Simulate(context.Background(), p); err == nil {
		t.Fatal("expected error for unsupported directivity")
	}
}

func TestSimulateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New().Simulate(ctx, testParams()); err == nil {
		t.Fatal("expected context error")
	}
}

// Package kernel defines the acoustic propagation kernel boundary: the
// full parameter record for one impulse response simulation and the
// interface the generation loop delegates to.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/rirgen/scenario"
)

// Errors reported for defective kernel output.
var (
	ErrLengthMismatch = errors.New("kernel: output length mismatch")
	ErrNonFinite      = errors.New("kernel: non-finite sample in output")
)

// MicType selects the receiver directivity pattern.
type MicType string

const (
	// MicOmnidirectional is the only directivity used by the corpus recipe.
	MicOmnidirectional MicType = "omnidirectional"
)

// Params is the complete input record for one simulation. Every field is
// required; Validate rejects records that would make the simulation
// meaningless rather than letting the kernel produce garbage.
type Params struct {
	SoundSpeed float64 // meters per second
	SampleRate int     // Hz
	NumSamples int     // output length, SampleRate * duration

	Mic    scenario.Vec3 // receiver position, meters
	Source scenario.Vec3 // source position, meters
	Room   scenario.Vec3 // room dimensions, meters

	Reflection [6]float64 // per-wall amplitude reflection coefficients

	MicKind     MicType
	Order       int     // maximum reflection order; -1 means unlimited
	Dimension   int     // spatial dimensionality, 2 or 3
	Orientation float64 // receiver azimuth, radians
	HighPass    bool    // enable the output high-pass stage
}

// Validate checks the record for internal consistency.
func (p Params) Validate() error {
	if p.SoundSpeed <= 0 {
		return fmt.Errorf("sound speed must be > 0, got %g", p.SoundSpeed)
	}
	if p.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0, got %d", p.SampleRate)
	}
	if p.NumSamples <= 0 {
		return fmt.Errorf("sample count must be > 0, got %d", p.NumSamples)
	}
	if p.Room.X <= 0 || p.Room.Y <= 0 || p.Room.Z <= 0 {
		return fmt.Errorf("room dimensions must be > 0, got %v", p.Room)
	}
	if p.Dimension != 2 && p.Dimension != 3 {
		return fmt.Errorf("dimension must be 2 or 3, got %d", p.Dimension)
	}
	if p.Order < -1 {
		return fmt.Errorf("reflection order must be >= -1, got %d", p.Order)
	}
	for i, r := range p.Reflection {
		if r < 0 || r > 1 {
			return fmt.Errorf("reflection[%d] outside [0,1]: %g", i, r)
		}
	}
	return nil
}

// Kernel computes one room impulse response from a parameter record.
// Implementations must be deterministic: identical parameters yield
// identical output, so callers never retry a failed simulation.
type Kernel interface {
	Simulate(ctx context.Context, p Params) ([]float64, error)
}

// CheckOutput verifies a kernel's waveform against the parameter record:
// exact length and every sample finite. Defects are reported as errors,
// never repaired.
func CheckOutput(p Params, out []float64) error {
	if len(out) != p.NumSamples {
		return fmt.Errorf("%w: want %d samples, got %d", ErrLengthMismatch, p.NumSamples, len(out))
	}
	for i, v := range out {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: sample %d = %g", ErrNonFinite, i, v)
		}
	}
	return nil
}

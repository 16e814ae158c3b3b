// Package scenario samples room acoustic scenarios: rectangular room
// geometry with homogeneous wall absorption, a fixed receiver position,
// and source positions drawn around the receiver.
package scenario

import (
	"fmt"
	"math"
	"math/rand"
)

// Vec3 is a position or offset in room coordinates, in meters.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 {
	return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z}
}

// Dist returns the Euclidean distance between v and w.
func (v Vec3) Dist(w Vec3) float64 {
	dx := v.X - w.X
	dy := v.Y - w.Y
	dz := v.Z - w.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// Bounds holds the sampling ranges for room geometry and absorption.
// Floor dimensions are configurable per run; height and absorption ranges
// are fixed properties of the corpus recipe.
type Bounds struct {
	FloorLower float64 // lower bound for x and y, meters
	FloorUpper float64 // upper bound for x and y, meters

	HeightLower float64
	HeightUpper float64

	AbsorptionLower float64
	AbsorptionUpper float64
}

// DefaultBounds returns the corpus sampling ranges for the given floor
// dimension interval: height in [2,5] m, absorption in [0.2,0.8].
func DefaultBounds(floorLower, floorUpper float64) Bounds {
	return Bounds{
		FloorLower:      floorLower,
		FloorUpper:      floorUpper,
		HeightLower:     2.0,
		HeightUpper:     5.0,
		AbsorptionLower: 0.2,
		AbsorptionUpper: 0.8,
	}
}

// Validate checks that every range is ordered and positive where required.
func (b Bounds) Validate() error {
	if b.FloorLower <= 0 {
		return fmt.Errorf("floor lower bound must be > 0, got %g", b.FloorLower)
	}
	if b.FloorUpper < b.FloorLower {
		return fmt.Errorf("floor bounds inverted: [%g, %g]", b.FloorLower, b.FloorUpper)
	}
	if b.HeightLower <= 0 {
		return fmt.Errorf("height lower bound must be > 0, got %g", b.HeightLower)
	}
	if b.HeightUpper < b.HeightLower {
		return fmt.Errorf("height bounds inverted: [%g, %g]", b.HeightLower, b.HeightUpper)
	}
	if b.AbsorptionLower < 0 || b.AbsorptionUpper > 1 {
		return fmt.Errorf("absorption bounds outside [0,1]: [%g, %g]", b.AbsorptionLower, b.AbsorptionUpper)
	}
	if b.AbsorptionUpper < b.AbsorptionLower {
		return fmt.Errorf("absorption bounds inverted: [%g, %g]", b.AbsorptionLower, b.AbsorptionUpper)
	}
	return nil
}

// Room is one sampled room configuration. It is immutable once sampled;
// all impulse responses generated in the room share it.
type Room struct {
	Index      int     // 1-based room ordinal within the run
	Dim        Vec3    // room dimensions, meters, rounded to 2 decimals
	Absorption float64 // homogeneous wall absorption, rounded to 2 decimals
	Reflection float64 // sqrt(1 - Absorption), derived from the rounded value
	Mic        Vec3    // receiver position, uniform inside the room box
}

// Name returns the zero-padded display name, e.g. "Room007".
func (r Room) Name() string {
	return fmt.Sprintf("Room%03d", r.Index)
}

// Walls returns the per-wall reflection coefficient vector. All six walls
// share the homogeneous material.
func (r Room) Walls() [6]float64 {
	return [6]float64{
		r.Reflection, r.Reflection, r.Reflection,
		r.Reflection, r.Reflection, r.Reflection,
	}
}

// SampleRoom draws one room configuration. Dimensions and absorption are
// rounded to 2 decimals before the reflection coefficient is derived and
// before the receiver is placed; the rounded values are the ones used
// everywhere downstream, including metadata output.
func SampleRoom(rng *rand.Rand, index int, b Bounds) Room {
	dim := Vec3{
		X: round2(uniform(rng, b.FloorLower, b.FloorUpper)),
		Y: round2(uniform(rng, b.FloorLower, b.FloorUpper)),
		Z: round2(uniform(rng, b.HeightLower, b.HeightUpper)),
	}
	absorption := round2(uniform(rng, b.AbsorptionLower, b.AbsorptionUpper))

	return Room{
		Index:      index,
		Dim:        dim,
		Absorption: absorption,
		Reflection: math.Sqrt(1.0 - absorption),
		Mic: Vec3{
			X: rng.Float64() * dim.X,
			Y: rng.Float64() * dim.Y,
			Z: rng.Float64() * dim.Z,
		},
	}
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func round2(v float64) float64 {
	return math.Round(v*100.0) / 100.0
}

package scenario

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrResampleBudget is returned when source sampling rejects more candidate
// positions than the configured budget allows. The reference behavior loops
// forever; here exhaustion is surfaced so an unlucky receiver/bound
// combination cannot hang a run.
var ErrResampleBudget = errors.New("scenario: source resample budget exhausted")

// DefaultMaxResamples is the default rejection budget per source position.
const DefaultMaxResamples = 10000

// SourceSampler draws source positions around a fixed receiver. Candidates
// are uniform by volume inside a sphere of radius MaxDistance centered on
// the receiver; candidates outside the room box are rejected and redrawn.
type SourceSampler struct {
	MaxDistance  float64 // speaker-microphone distance bound, meters
	MaxResamples int     // rejection budget; 0 means DefaultMaxResamples
}

// Sample draws one accepted source position inside the room box [0,dim]
// per axis. It returns the position and the number of rejected candidates.
func (s SourceSampler) Sample(rng *rand.Rand, mic Vec3, dim Vec3) (Vec3, int, error) {
	budget := s.MaxResamples
	if budget <= 0 {
		budget = DefaultMaxResamples
	}

	for tries := 0; tries <= budget; tries++ {
		src := mic.Add(sphereOffset(rng, s.MaxDistance))
		if inBox(src, dim) {
			return src, tries, nil
		}
	}
	return Vec3{}, budget, fmt.Errorf("%w: %d candidates rejected (mic %v, room %v, max distance %g)",
		ErrResampleBudget, budget, mic, dim, s.MaxDistance)
}

// sphereOffset draws an offset uniform by volume inside a sphere of the
// given radius. Elevation uses asin(2u-1) so density is uniform per unit
// surface area, and the cube-root radius transform compensates for the
// r^2 volume element.
func sphereOffset(rng *rand.Rand, radius float64) Vec3 {
	elevation := math.Asin(2.0*rng.Float64() - 1.0)
	azimuth := 2.0 * math.Pi * rng.Float64()
	r := radius * math.Cbrt(rng.Float64())

	cosEl := math.Cos(elevation)
	return Vec3{
		X: r * cosEl * math.Cos(azimuth),
		Y: r * cosEl * math.Sin(azimuth),
		Z: r * math.Sin(elevation),
	}
}

func inBox(p Vec3, dim Vec3) bool {
	return p.X >= 0 && p.X <= dim.X &&
		p.Y >= 0 && p.Y <= dim.Y &&
		p.Z >= 0 && p.Z <= dim.Z
}

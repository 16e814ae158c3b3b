// Package image implements the image-source acoustic propagation kernel
// for rectangular rooms (Allen & Berkley). Reflections are modeled as
// mirror-image sources; each image contributes a fractional-delay
// windowed-sinc tap scaled by spherical spreading and the per-wall
// reflection coefficients along its path.
package image

import (
	"context"
	"fmt"
	"math"

	"github.com/cwbudde/rirgen/dsp"
	"github.com/cwbudde/rirgen/kernel"
)

// Tap window width in milliseconds. Each image source contributes a
// Hann-windowed sinc of this width centered at its fractional delay.
const tapWindowMs = 4.0

// Kernel is a deterministic image-source simulator. The zero value is
// ready to use.
type Kernel struct{}

// New returns an image-source kernel.
func New() *Kernel {
	return &Kernel{}
}

// Simulate computes one room impulse response. The context is checked
// between image lattice slabs so a cancelled run stops promptly even at
// high reflection orders.
func (k *Kernel) Simulate(ctx context.Context, p kernel.Params) ([]float64, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.MicKind != kernel.MicOmnidirectional {
		return nil, fmt.Errorf("image: unsupported microphone directivity %q", p.MicKind)
	}

	// Work in units of cTs so distances are directly sample delays.
	cTs := p.SoundSpeed / float64(p.SampleRate)
	sx, sy, sz := p.Source.X/cTs, p.Source.Y/cTs, p.Source.Z/cTs
	rx, ry, rz := p.Mic.X/cTs, p.Mic.Y/cTs, p.Mic.Z/cTs
	lx, ly, lz := p.Room.X/cTs, p.Room.Y/cTs, p.Room.Z/cTs

	beta := p.Reflection
	if p.Dimension == 2 {
		// Planar simulation: floor and ceiling do not reflect.
		beta[4] = 0
		beta[5] = 0
	}

	tw := 2 * int(math.Round(tapWindowMs/1000.0*float64(p.SampleRate)))
	out := make([]float64, p.NumSamples)

	// Image lattice extent: images farther than the response length
	// cannot contribute.
	n1 := int(math.Ceil(float64(p.NumSamples) / (2.0 * lx)))
	n2 := int(math.Ceil(float64(p.NumSamples) / (2.0 * ly)))
	n3 := int(math.Ceil(float64(p.NumSamples) / (2.0 * lz)))
	if p.Order >= 0 {
		// |2m-q| <= order bounds the lattice index directly.
		nMax := p.Order/2 + 1
		n1 = min(n1, nMax)
		n2 = min(n2, nMax)
		n3 = min(n3, nMax)
	}

	for mx := -n1; mx <= n1; mx++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for my := -n2; my <= n2; my++ {
			for mz := -n3; mz <= n3; mz++ {
				rmx := 2.0 * float64(mx) * lx
				rmy := 2.0 * float64(my) * ly
				rmz := 2.0 * float64(mz) * lz

				for q := 0; q <= 1; q++ {
					dx := float64(1-2*q)*sx - rx + rmx
					gx := pow(beta[0], abs(mx-q)) * pow(beta[1], abs(mx))
					for j := 0; j <= 1; j++ {
						dy := float64(1-2*j)*sy - ry + rmy
						gy := pow(beta[2], abs(my-j)) * pow(beta[3], abs(my))
						for s := 0; s <= 1; s++ {
							dz := float64(1-2*s)*sz - rz + rmz
							gz := pow(beta[4], abs(mz-s)) * pow(beta[5], abs(mz))

							if p.Order >= 0 && abs(2*mx-q)+abs(2*my-j)+abs(2*mz-s) > p.Order {
								continue
							}

							dist := math.Sqrt(dx*dx + dy*dy + dz*dz)
							if int(math.Floor(dist)) >= p.NumSamples {
								continue
							}

							gain := gx * gy * gz / (4.0 * math.Pi * dist * cTs)
							addTap(out, dist, gain, tw)
						}
					}
				}
			}
		}
	}

	if p.HighPass {
		// Remove sub-audio energy the image sum accumulates at DC.
		hp := dsp.NewHighpass(100.0, float64(p.SampleRate), math.Sqrt2/2.0)
		hp.ProcessBuffer(out)
	}
	return out, nil
}

// addTap accumulates a Hann-windowed sinc of width tw samples centered at
// the fractional delay dist (in samples), scaled by gain.
func addTap(out []float64, dist, gain float64, tw int) {
	fdist := math.Floor(dist)
	frac := dist - fdist
	start := int(fdist) - tw/2 + 1

	for n := 0; n < tw; n++ {
		idx := start + n
		if idx < 0 || idx >= len(out) {
			continue
		}
		t := float64(n-tw/2+1) - frac
		w := 0.5 * (1.0 + math.Cos(2.0*math.Pi*t/float64(tw)))
		out[idx] += gain * w * sinc(math.Pi*t)
	}
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1.0
	}
	return math.Sin(x) / x
}

// pow computes b^e for small non-negative integer exponents. The image
// loops spend most of their time here; math.Pow is much slower for the
// tiny exponents reflection orders produce.
func pow(b float64, e int) float64 {
	v := 1.0
	for i := 0; i < e; i++ {
		v *= b
	}
	return v
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

package corpus

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	dspir "github.com/cwbudde/algo-dsp/measure/ir"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/rirgen/internal/wavio"
	"github.com/cwbudde/rirgen/kernel"
	"github.com/cwbudde/rirgen/scenario"
)

// Fixed kernel parameters of the corpus recipe. Everything else varies
// per room or per RIR.
const (
	SoundSpeed      = 340.0 // meters per second
	ReflectionOrder = 10
	spatialDim      = 3
)

// Generator runs one corpus generation pass: NumRooms rooms, RIRPerRoom
// impulse responses each, manifests and waveforms written as it goes.
type Generator struct {
	cfg  Config
	kern kernel.Kernel
	log  zerolog.Logger
}

// New validates the configuration and returns a generator that delegates
// simulation to kern.
func New(cfg Config, kern kernel.Kernel, log zerolog.Logger) (*Generator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if kern == nil {
		return nil, errors.New("corpus: nil kernel")
	}
	return &Generator{cfg: cfg, kern: kern, log: log}, nil
}

// Run generates the corpus. Rooms are processed in order; RIRs within a
// room run on up to cfg.Workers goroutines, each with its own RNG derived
// from (seed, room, rir) so output content does not depend on the worker
// count. Manifests are flushed on every exit path.
func (g *Generator) Run(ctx context.Context) (err error) {
	m, err := OpenManifest(g.cfg.OutDir)
	if err != nil {
		return fmt.Errorf("corpus: open manifests: %w", err)
	}
	defer func() {
		if cerr := m.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("corpus: close manifests: %w", cerr)
		}
	}()

	master := rand.New(rand.NewSource(g.cfg.Seed))
	bounds := g.cfg.Bounds()

	for i := 1; i <= g.cfg.NumRooms; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		room := scenario.SampleRoom(master, i, bounds)
		g.log.Info().
			Str("room", room.Name()).
			Float64("x", room.Dim.X).
			Float64("y", room.Dim.Y).
			Float64("z", room.Dim.Z).
			Float64("absorption", room.Absorption).
			Msg("sampled room")

		if err := m.AppendRoom(room); err != nil {
			return fmt.Errorf("corpus: %s: %w", room.Name(), err)
		}
		if err := g.generateRoom(ctx, room, m); err != nil {
			return fmt.Errorf("corpus: %s: %w", room.Name(), err)
		}
	}

	g.log.Info().
		Int("rooms", m.Rooms()).
		Int("rirs", m.RIRs()).
		Msg("corpus complete")
	return nil
}

// rirResult carries one finished RIR from its worker back to the ordered
// manifest write.
type rirResult struct {
	skipped   bool
	source    scenario.Vec3
	resamples int
	rt60      float64
	c50       float64
}

func (g *Generator) generateRoom(ctx context.Context, room scenario.Room, m *Manifest) error {
	sampler := scenario.SourceSampler{
		MaxDistance:  g.cfg.MaxDistance,
		MaxResamples: g.cfg.MaxResamples,
	}
	results := make([]rirResult, g.cfg.RIRPerRoom)

	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(g.cfg.Workers)

	for idx := 1; idx <= g.cfg.RIRPerRoom; idx++ {
		grp.Go(func() error {
			id := RIRID(g.cfg.Prefix, room.Index, idx)
			rng := rand.New(rand.NewSource(taskSeed(g.cfg.Seed, room.Index, idx)))

			src, resamples, err := sampler.Sample(rng, room.Mic, room.Dim)
			if err != nil {
				if g.cfg.SkipUnreachable && errors.Is(err, scenario.ErrResampleBudget) {
					g.log.Warn().Str("rir", id).Msg("source position unreachable, skipping")
					results[idx-1] = rirResult{skipped: true}
					return nil
				}
				return fmt.Errorf("%s: %w", id, err)
			}

			p := g.kernelParams(room, src)
			wave, err := g.kern.Simulate(gctx, p)
			if err != nil {
				return fmt.Errorf("%s: kernel (mic %v, src %v): %w", id, p.Mic, p.Source, err)
			}
			if err := kernel.CheckOutput(p, wave); err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}
			if err := wavio.WriteMono(WavePath(g.cfg.OutDir, room, idx), wave, g.cfg.SampleRate, g.cfg.BitDepth); err != nil {
				return fmt.Errorf("%s: %w", id, err)
			}

			res := rirResult{source: src, resamples: resamples}
			if g.cfg.Metrics {
				if metrics, merr := dspir.NewAnalyzer(float64(g.cfg.SampleRate)).Analyze(wave); merr == nil {
					res.rt60 = metrics.RT60
					res.c50 = metrics.C50
				}
			}
			results[idx-1] = res

			g.log.Debug().
				Str("rir", id).
				Int("resamples", resamples).
				Float64("smd", src.Dist(room.Mic)).
				Msg("generated rir")
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return err
	}

	// Manifest rows go out in rir-index order regardless of worker
	// interleaving.
	var rt60Sum float64
	var analyzed int
	for idx := 1; idx <= g.cfg.RIRPerRoom; idx++ {
		res := results[idx-1]
		if res.skipped {
			continue
		}
		rec := NewRIRRecord(g.cfg.Prefix, room, idx, WavePath(g.cfg.OutDir, room, idx))
		if err := m.AppendRIR(rec); err != nil {
			return err
		}
		if g.cfg.Metrics && res.rt60 > 0 {
			rt60Sum += res.rt60
			analyzed++
			g.log.Debug().
				Str("rir", rec.RIRID).
				Float64("rt60", res.rt60).
				Float64("c50", res.c50).
				Msg("rir metrics")
		}
	}
	if g.cfg.Metrics && analyzed > 0 {
		g.log.Info().
			Str("room", room.Name()).
			Float64("rt60_mean", rt60Sum/float64(analyzed)).
			Int("analyzed", analyzed).
			Msg("room metrics")
	}
	return nil
}

func (g *Generator) kernelParams(room scenario.Room, src scenario.Vec3) kernel.Params {
	return kernel.Params{
		SoundSpeed:  SoundSpeed,
		SampleRate:  g.cfg.SampleRate,
		NumSamples:  g.cfg.NumSamples(),
		Mic:         room.Mic,
		Source:      src,
		Room:        room.Dim,
		Reflection:  room.Walls(),
		MicKind:     kernel.MicOmnidirectional,
		Order:       ReflectionOrder,
		Dimension:   spatialDim,
		Orientation: 0,
		HighPass:    false,
	}
}

// taskSeed derives a per-RIR RNG seed from the run seed and the room/rir
// indices (splitmix64 finalizer), so the sampled content is identical for
// any worker count.
func taskSeed(seed int64, roomIndex, rirIndex int) int64 {
	h := uint64(seed) + uint64(roomIndex)*0x9e3779b97f4a7c15 + uint64(rirIndex)
	h ^= h >> 30
	h *= 0xbf58476d1ce4e5b9
	h ^= h >> 27
	h *= 0x94d049bb133111eb
	h ^= h >> 31
	return int64(h)
}

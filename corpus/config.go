// Package corpus drives synthetic RIR corpus generation: it samples room
// scenarios, invokes the propagation kernel, and persists waveforms and
// manifests with stable identifiers.
package corpus

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/cwbudde/rirgen/scenario"
)

// Config holds one generation run. Fields carry env tags so a profile can
// be overridden from the environment, and validate tags enforced before
// any room is sampled.
type Config struct {
	OutDir string `env:"RIRGEN_OUT_DIR" validate:"required"`

	SampleRate int    `env:"RIRGEN_SAMPLE_RATE" validate:"gt=0"`
	BitDepth   int    `env:"RIRGEN_BIT_DEPTH" validate:"oneof=16 24 32"`
	NumRooms   int    `env:"RIRGEN_NUM_ROOMS" validate:"gt=0"`
	RIRPerRoom int    `env:"RIRGEN_RIR_PER_ROOM" validate:"gt=0"`
	Prefix     string `env:"RIRGEN_PREFIX"`

	FloorLower float64 `env:"RIRGEN_ROOM_LOWER_BOUND" validate:"gt=0"`
	FloorUpper float64 `env:"RIRGEN_ROOM_UPPER_BOUND" validate:"gtefield=FloorLower"`
	Duration   float64 `env:"RIRGEN_RIR_DURATION" validate:"gt=0"` // seconds

	MaxDistance  float64 `env:"RIRGEN_MAX_DISTANCE" validate:"gt=0"` // SMD bound, meters
	MaxResamples int     `env:"RIRGEN_MAX_RESAMPLES" validate:"gte=0"`

	Seed    int64 `env:"RIRGEN_SEED"`
	Workers int   `env:"RIRGEN_WORKERS" validate:"gte=1"`

	// Metrics enables per-RIR ISO 3382 analysis (RT60, C50), logged and
	// summarized per room.
	Metrics bool `env:"RIRGEN_METRICS"`

	// SkipUnreachable turns source-sampling exhaustion into a logged skip
	// instead of aborting the run.
	SkipUnreachable bool `env:"RIRGEN_SKIP_UNREACHABLE"`
}

// NumSamples returns the waveform length for one RIR.
func (c Config) NumSamples() int {
	return int(float64(c.SampleRate) * c.Duration)
}

// Bounds returns the room sampling bounds for this run.
func (c Config) Bounds() scenario.Bounds {
	return scenario.DefaultBounds(c.FloorLower, c.FloorUpper)
}

var validate = validator.New()

// Validate checks the run configuration, failing fast before any room is
// sampled.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("corpus: invalid config: %w", err)
	}
	if err := c.Bounds().Validate(); err != nil {
		return fmt.Errorf("corpus: invalid config: %w", err)
	}
	if c.NumSamples() < 1 {
		return fmt.Errorf("corpus: invalid config: %d Hz over %g s yields no samples", c.SampleRate, c.Duration)
	}
	return nil
}

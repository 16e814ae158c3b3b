// Package profile holds the built-in corpus generation profiles and
// loads profile files that override them.
package profile

import (
	"context"
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/sethvargo/go-envconfig"

	"github.com/cwbudde/rirgen/corpus"
	"github.com/cwbudde/rirgen/scenario"
)

// Medium returns the "medium room" recipe: 8 kHz, 1 s responses, floor
// dimensions in [10,30] m.
func Medium() corpus.Config {
	return corpus.Config{
		SampleRate:   8000,
		BitDepth:     16,
		NumRooms:     200,
		RIRPerRoom:   100,
		Prefix:       "medium-",
		FloorLower:   10,
		FloorUpper:   30,
		Duration:     1.0,
		MaxDistance:  5.0,
		MaxResamples: scenario.DefaultMaxResamples,
		Seed:         1,
		Workers:      1,
	}
}

// Large returns the "large room" recipe: same sampling ranges as Medium
// but 2 s responses for the longer reverberation tail.
func Large() corpus.Config {
	cfg := Medium()
	cfg.Prefix = "large-"
	cfg.Duration = 2.0
	return cfg
}

// Named returns a built-in profile by name.
func Named(name string) (corpus.Config, error) {
	switch name {
	case "medium":
		return Medium(), nil
	case "large":
		return Large(), nil
	default:
		return corpus.Config{}, fmt.Errorf("profile: unknown profile %q", name)
	}
}

// File is the TOML schema for profile files. Absent fields keep the base
// profile's value.
type File struct {
	SamplingRate   *int     `toml:"sampling_rate"`
	OutputBit      *int     `toml:"output_bit"`
	NumRoom        *int     `toml:"num_room"`
	RIRPerRoom     *int     `toml:"rir_per_room"`
	Prefix         *string  `toml:"prefix"`
	RoomLowerBound *float64 `toml:"room_lower_bound"`
	RoomUpperBound *float64 `toml:"room_upper_bound"`
	RIRDuration    *float64 `toml:"rir_duration"`
	MaxDistance    *float64 `toml:"max_distance"`
	MaxResamples   *int     `toml:"max_resamples"`
	Seed           *int64   `toml:"seed"`
	Workers        *int     `toml:"workers"`
}

// LoadFile applies a TOML profile file on top of a base profile.
func LoadFile(path string, base corpus.Config) (corpus.Config, error) {
	var f File
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return corpus.Config{}, fmt.Errorf("profile: %s: %w", path, err)
	}
	return Apply(base, f), nil
}

// Apply overlays the set fields of f onto cfg.
func Apply(cfg corpus.Config, f File) corpus.Config {
	if f.SamplingRate != nil {
		cfg.SampleRate = *f.SamplingRate
	}
	if f.OutputBit != nil {
		cfg.BitDepth = *f.OutputBit
	}
	if f.NumRoom != nil {
		cfg.NumRooms = *f.NumRoom
	}
	if f.RIRPerRoom != nil {
		cfg.RIRPerRoom = *f.RIRPerRoom
	}
	if f.Prefix != nil {
		cfg.Prefix = *f.Prefix
	}
	if f.RoomLowerBound != nil {
		cfg.FloorLower = *f.RoomLowerBound
	}
	if f.RoomUpperBound != nil {
		cfg.FloorUpper = *f.RoomUpperBound
	}
	if f.RIRDuration != nil {
		cfg.Duration = *f.RIRDuration
	}
	if f.MaxDistance != nil {
		cfg.MaxDistance = *f.MaxDistance
	}
	if f.MaxResamples != nil {
		cfg.MaxResamples = *f.MaxResamples
	}
	if f.Seed != nil {
		cfg.Seed = *f.Seed
	}
	if f.Workers != nil {
		cfg.Workers = *f.Workers
	}
	return cfg
}

// ApplyEnv overlays RIRGEN_* environment variables onto cfg.
func ApplyEnv(ctx context.Context, cfg *corpus.Config) error {
	if err := envconfig.Process(ctx, cfg); err != nil {
		return fmt.Errorf("profile: environment: %w", err)
	}
	return nil
}

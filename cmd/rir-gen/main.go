// Command rir-gen generates a corpus of synthetic room impulse responses:
// randomized rooms, a fixed receiver per room, and many sources sampled
// around it, each simulated with the image-source kernel and written as a
// WAV file alongside room_info/rir_list manifests.
//
// Usage:
//
//	rir-gen [flags] <output-dir>
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/cwbudde/rirgen/corpus"
	"github.com/cwbudde/rirgen/internal/storage"
	"github.com/cwbudde/rirgen/kernel/image"
	"github.com/cwbudde/rirgen/profile"
)

func main() {
	profileName := flag.String("profile", "medium", "Built-in profile: medium or large")
	profileFile := flag.String("profile-file", "", "TOML profile file applied on top of the built-in profile")

	samplingRate := flag.Int("sampling-rate", 0, "Output sample rate in Hz")
	outputBit := flag.Int("output-bit", 0, "Bits per waveform sample (16, 24 or 32)")
	numRoom := flag.Int("num-room", 0, "Number of rooms to sample")
	rirPerRoom := flag.Int("rir-per-room", 0, "Impulse responses per room")
	prefix := flag.String("prefix", "", "Identifier prefix distinguishing RIR sets")
	roomLower := flag.Float64("room-lower-bound", 0, "Lower bound for floor dimensions in meters")
	roomUpper := flag.Float64("room-upper-bound", 0, "Upper bound for floor dimensions in meters")
	rirDuration := flag.Float64("rir-duration", 0, "Impulse response length in seconds")
	maxDistance := flag.Float64("max-distance", 0, "Speaker-microphone distance bound in meters")
	maxResamples := flag.Int("max-resamples", 0, "Source rejection budget per RIR")
	seed := flag.Int64("seed", 0, "Random seed")
	workers := flag.Int("workers", 0, "Parallel RIR workers per room")
	metrics := flag.Bool("metrics", false, "Compute RT60/C50 metrics per RIR")
	skipUnreachable := flag.Bool("skip-unreachable", false, "Skip RIRs whose source sampling exhausts the budget instead of aborting")

	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn or error")
	logFormat := flag.String("log-format", "console", "Log format: console or json")

	s3Bucket := flag.String("s3-bucket", "", "Upload the finished corpus to this S3 bucket")
	s3Region := flag.String("s3-region", "", "S3 region")
	s3Prefix := flag.String("s3-prefix", "", "S3 key prefix")
	s3Endpoint := flag.String("s3-endpoint", "", "Custom S3-compatible endpoint")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: rir-gen [flags] <output-dir>")
		flag.PrintDefaults()
		os.Exit(2)
	}

	log, err := newLogger(*logLevel, *logFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rir-gen error: %v\n", err)
		os.Exit(1)
	}

	cfg, err := profile.Named(*profileName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rir-gen error: %v\n", err)
		os.Exit(1)
	}
	if *profileFile != "" {
		if cfg, err = profile.LoadFile(*profileFile, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "rir-gen error: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := profile.ApplyEnv(ctx, &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "rir-gen error: %v\n", err)
		os.Exit(1)
	}

	// Flags given on the command line win over profile and environment.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "sampling-rate":
			cfg.SampleRate = *samplingRate
		case "output-bit":
			cfg.BitDepth = *outputBit
		case "num-room":
			cfg.NumRooms = *numRoom
		case "rir-per-room":
			cfg.RIRPerRoom = *rirPerRoom
		case "prefix":
			cfg.Prefix = *prefix
		case "room-lower-bound":
			cfg.FloorLower = *roomLower
		case "room-upper-bound":
			cfg.FloorUpper = *roomUpper
		case "rir-duration":
			cfg.Duration = *rirDuration
		case "max-distance":
			cfg.MaxDistance = *maxDistance
		case "max-resamples":
			cfg.MaxResamples = *maxResamples
		case "seed":
			cfg.Seed = *seed
		case "workers":
			cfg.Workers = *workers
		case "metrics":
			cfg.Metrics = *metrics
		case "skip-unreachable":
			cfg.SkipUnreachable = *skipUnreachable
		}
	})
	cfg.OutDir = flag.Arg(0)

	gen, err := corpus.New(cfg, image.New(), log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "rir-gen error: %v\n", err)
		os.Exit(1)
	}
	if err := gen.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "rir-gen error: %v\n", err)
		os.Exit(1)
	}

	if *s3Bucket != "" {
		up, err := storage.NewUploader(ctx, storage.S3Config{
			Bucket:    *s3Bucket,
			Region:    *s3Region,
			KeyPrefix: *s3Prefix,
			Endpoint:  *s3Endpoint,
		}, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rir-gen error: %v\n", err)
			os.Exit(1)
		}
		n, err := up.UploadDir(ctx, cfg.OutDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "rir-gen error: %v\n", err)
			os.Exit(1)
		}
		log.Info().Int("files", n).Str("bucket", *s3Bucket).Msg("corpus uploaded")
	}
}

func newLogger(level, format string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	var log zerolog.Logger
	switch format {
	case "json":
		log = zerolog.New(os.Stderr)
	case "console":
		log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	default:
		return zerolog.Logger{}, fmt.Errorf("invalid log format %q", format)
	}
	return log.Level(lvl).With().Timestamp().Logger(), nil
}

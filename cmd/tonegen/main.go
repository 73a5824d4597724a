package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/liuscraft/tonegen/internal/config"
	"github.com/liuscraft/tonegen/internal/logging"
	"github.com/liuscraft/tonegen/internal/playback"
	"github.com/liuscraft/tonegen/internal/tone"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "Path to the JSON config file (optional)")
	output := flag.String("o", "", "Output WAV path (overrides config)")
	play := flag.Bool("play", false, "Play the generated tone on the output device")
	verify := flag.Bool("verify", false, "Decode the written file and check its header")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if path := strings.TrimSpace(*output); path != "" {
		cfg.Output.Path = path
	}
	if *play {
		cfg.Playback.Enable = true
	}
	if *verify {
		cfg.Output.Verify = true
	}

	if err := logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()
	logging.SetRunID(logging.NewRunID())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	assembler := tone.NewAssembler(
		tone.NewCycleSynthesizer(cfg.Tone.SampleRate, cfg.Tone.BitDepth),
		tone.NewRIFFHeaderBuilder(cfg.Tone.Channels, cfg.Tone.BitDepth),
		cfg.Tone.BitDepth,
	)

	track, err := assembler.Assemble(ctx, tone.Params{
		Seconds:    cfg.Tone.Seconds,
		Frequency:  cfg.Tone.Frequency,
		Amplitude:  cfg.Tone.Amplitude,
		SampleRate: cfg.Tone.SampleRate,
	})
	if err != nil {
		logging.Fatalf("assemble tone failed: %v", err)
	}

	if err := tone.WriteFile(cfg.Output.Path, track); err != nil {
		logging.Fatalf("write %s failed: %v", cfg.Output.Path, err)
	}

	if cfg.Output.Verify {
		verifyFile(cfg.Output.Path, track)
	}

	if cfg.Playback.Enable {
		player := playback.NewPlayer(playback.Config{
			DeviceName:      cfg.Playback.DeviceName,
			HighLatency:     cfg.Playback.HighLatency,
			FramesPerBuffer: cfg.Playback.FramesPerBuffer,
		}, nil)
		if err := player.Play(ctx, track.Samples); err != nil && ctx.Err() == nil {
			logging.Fatalf("playback failed: %v", err)
		}
	}
}

func verifyFile(path string, track *tone.Track) {
	f, err := os.Open(path)
	if err != nil {
		logging.Fatalf("open %s for verification failed: %v", path, err)
	}
	defer f.Close()

	info, err := tone.Inspect(f)
	if err != nil {
		logging.Fatalf("verify %s failed: %v", path, err)
	}
	if info.DeclaredSamples != track.DeclaredSamples {
		logging.Fatalf("verify %s: header declares %d samples, expected %d", path, info.DeclaredSamples, track.DeclaredSamples)
	}
	logging.Infof("verified %s: %d Hz, %d ch, %d bit, %s", path, info.SampleRate, info.Channels, info.BitDepth, info.Duration)
}

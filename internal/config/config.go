package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

const DefaultPath = "config/tonegen.json"

// FixedSampleRate 是唯一支持的采样率
const FixedSampleRate = 44100

type AppConfig struct {
	Logging  LoggingConfig  `json:"logging"`
	Tone     ToneConfig     `json:"tone"`
	Output   OutputConfig   `json:"output"`
	Playback PlaybackConfig `json:"playback"`
}

type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	Output string `json:"output"`
}

type ToneConfig struct {
	Seconds    int     `json:"seconds"`
	Frequency  float64 `json:"frequency"`
	Amplitude  float64 `json:"amplitude"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	BitDepth   int     `json:"bit_depth"`
}

type OutputConfig struct {
	Path   string `json:"path"`
	Verify bool   `json:"verify"`
}

type PlaybackConfig struct {
	Enable          bool   `json:"enable"`
	DeviceName      string `json:"device_name"`
	HighLatency     bool   `json:"high_latency"`
	FramesPerBuffer int    `json:"frames_per_buffer"`
}

func DefaultConfig() *AppConfig {
	return &AppConfig{
		Logging: LoggingConfig{
			Output: "stdout",
		},
		Tone: ToneConfig{
			Seconds:    20,
			Frequency:  20,
			Amplitude:  1,
			SampleRate: FixedSampleRate,
			Channels:   1,
			BitDepth:   16,
		},
		Output: OutputConfig{
			Path: "tones/20.wav",
		},
		Playback: PlaybackConfig{
			FramesPerBuffer: 1024,
		},
	}
}

// Load 读取配置文件，文件不存在时使用默认配置
func Load(path string) (*AppConfig, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = DefaultPath
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.ApplyEnv()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ApplyEnv()
	return cfg, cfg.Validate()
}

func (c *AppConfig) ApplyEnv() {
	if level := strings.TrimSpace(os.Getenv("LOG_LEVEL")); level != "" {
		c.Logging.Level = level
	}
	if format := strings.TrimSpace(os.Getenv("LOG_FORMAT")); format != "" {
		c.Logging.Format = format
	}
	if output := strings.TrimSpace(os.Getenv("LOG_OUTPUT")); output != "" {
		c.Logging.Output = output
	}
	if path := strings.TrimSpace(os.Getenv("TONEGEN_OUTPUT")); path != "" {
		c.Output.Path = path
	}
}

func (c *AppConfig) Validate() error {
	if c.Tone.Seconds <= 0 {
		return errors.New("tone.seconds must be positive")
	}
	if c.Tone.Frequency <= 0 {
		return errors.New("tone.frequency must be positive")
	}
	if c.Tone.Amplitude < 0 || c.Tone.Amplitude > 1 {
		return fmt.Errorf("tone.amplitude must be within [0, 1], got %v", c.Tone.Amplitude)
	}
	if c.Tone.SampleRate != FixedSampleRate {
		return fmt.Errorf("tone.sample_rate must be %d, got %d", FixedSampleRate, c.Tone.SampleRate)
	}
	if c.Tone.Frequency*2 >= float64(c.Tone.SampleRate) {
		return fmt.Errorf("tone.frequency %v must be below half the sample rate", c.Tone.Frequency)
	}
	if c.Tone.Channels != 1 {
		return fmt.Errorf("tone.channels must be 1, got %d", c.Tone.Channels)
	}
	switch c.Tone.BitDepth {
	case 8, 16:
	default:
		return fmt.Errorf("tone.bit_depth must be 8 or 16, got %d", c.Tone.BitDepth)
	}

	if strings.TrimSpace(c.Output.Path) == "" {
		return errors.New("output.path is required")
	}

	if c.Playback.FramesPerBuffer <= 0 {
		return errors.New("playback.frames_per_buffer must be positive")
	}

	return nil
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/logdeck/logdeck/capture"
	"github.com/logdeck/logdeck/level"
	"github.com/logdeck/logdeck/registry"
	"github.com/logdeck/logdeck/sink"
)

// Dump configures an optional log file sink.
type Dump struct {
	Path            string
	Separator       string
	TimestampFormat string
	TimestampOff    bool
	Level           sink.LevelOutput
	HideTarget      bool
	HideFile        bool
	HideLine        bool
}

// Config is the capture pipeline configuration.
type Config struct {
	DefaultLevel   level.Level
	HotBufferDepth int
	BufferDepth    int
	DrainInterval  time.Duration
	Targets        []registry.Directive
	Dump           *Dump
	// DemoRate is the synthetic event rate for the demo binary, in events
	// per second. Zero leaves the demo default in place.
	DemoRate int
}

const defaultConfigPath = "~/.config/logdeck/config.toml"

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DefaultLevel:   registry.DefaultLevel,
		HotBufferDepth: capture.DefaultHotDepth,
		BufferDepth:    capture.DefaultDepth,
		DrainInterval:  capture.DefaultInterval,
	}
}

// Load locates and parses a logdeck config, falling back to defaults when
// the file is missing. Every field is optional.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return parse(cfg, bytes)
}

func parse(cfg Config, bytes []byte) (Config, error) {
	var raw struct {
		DefaultLevel   string            `toml:"default_level"`
		HotBufferDepth int               `toml:"hot_buffer_depth"`
		BufferDepth    int               `toml:"buffer_depth"`
		DrainInterval  string            `toml:"drain_interval"`
		Targets        map[string]string `toml:"targets"`
		Dump           *struct {
			Path            string `toml:"path"`
			Separator       string `toml:"separator"`
			TimestampFormat string `toml:"timestamp_format"`
			TimestampOff    bool   `toml:"timestamp_off"`
			Level           string `toml:"level"`
			HideTarget      bool   `toml:"hide_target"`
			HideFile        bool   `toml:"hide_file"`
			HideLine        bool   `toml:"hide_line"`
		} `toml:"dump"`
		Demo struct {
			Rate int `toml:"rate"`
		} `toml:"demo"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if s := strings.TrimSpace(raw.DefaultLevel); s != "" {
		lv, err := level.Parse(s)
		if err != nil {
			return Config{}, fmt.Errorf("default_level: %w", err)
		}
		cfg.DefaultLevel = lv
	}
	if raw.HotBufferDepth > 0 {
		cfg.HotBufferDepth = raw.HotBufferDepth
	}
	if raw.BufferDepth > 0 {
		cfg.BufferDepth = raw.BufferDepth
	}
	if s := strings.TrimSpace(raw.DrainInterval); s != "" {
		d, err := time.ParseDuration(s)
		if err != nil {
			return Config{}, fmt.Errorf("drain_interval: %w", err)
		}
		if d > 0 {
			cfg.DrainInterval = d
		}
	}
	if raw.Demo.Rate > 0 {
		cfg.DemoRate = raw.Demo.Rate
	}
	for target, spec := range raw.Targets {
		lv, err := level.Parse(strings.TrimSpace(spec))
		if err != nil {
			return Config{}, fmt.Errorf("targets.%s: %w", target, err)
		}
		cfg.Targets = append(cfg.Targets, registry.Directive{Target: target, Level: lv})
	}

	if raw.Dump != nil && strings.TrimSpace(raw.Dump.Path) != "" {
		d := Dump{
			Path:            mustExpand(strings.TrimSpace(raw.Dump.Path)),
			Separator:       raw.Dump.Separator,
			TimestampFormat: raw.Dump.TimestampFormat,
			TimestampOff:    raw.Dump.TimestampOff,
			HideTarget:      raw.Dump.HideTarget,
			HideFile:        raw.Dump.HideFile,
			HideLine:        raw.Dump.HideLine,
		}
		switch strings.ToLower(strings.TrimSpace(raw.Dump.Level)) {
		case "", "long":
			d.Level = sink.LevelLong
		case "abbrev", "short":
			d.Level = sink.LevelAbbrev
		case "off", "none":
			d.Level = sink.LevelNone
		default:
			return Config{}, fmt.Errorf("dump.level: unknown value %q", raw.Dump.Level)
		}
		cfg.Dump = &d
	}
	return cfg, nil
}

// Apply builds an engine from the configuration and attaches the dump sink
// when one is configured. The caller owns Start and Close.
func (c Config) Apply() (*capture.Engine, *sink.File, error) {
	e := capture.New(capture.Options{
		HotDepth: c.HotBufferDepth,
		Depth:    c.BufferDepth,
		Interval: c.DrainInterval,
	})
	e.Registry().SetDefaultLevel(c.DefaultLevel)
	for _, d := range c.Targets {
		e.Registry().SetCaptureLevel(d.Target, d.Level)
	}

	var f *sink.File
	if c.Dump != nil {
		var err error
		f, err = sink.NewFile(c.Dump.Path, sink.FileOptions{
			Separator:       firstRune(c.Dump.Separator),
			TimestampFormat: c.Dump.TimestampFormat,
			TimestampOff:    c.Dump.TimestampOff,
			Level:           c.Dump.Level,
			HideTarget:      c.Dump.HideTarget,
			HideFile:        c.Dump.HideFile,
			HideLine:        c.Dump.HideLine,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("open dump file: %w", err)
		}
		e.AddSink(f)
	}
	return e, f, nil
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

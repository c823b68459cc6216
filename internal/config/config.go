// Package config loads metabin.toml.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"metabin/internal/hexpat"
	"metabin/internal/trace"
	"metabin/internal/typecode"
)

// FileName is the name looked up by Find.
const FileName = "metabin.toml"

// Config is the decoded metabin.toml.
type Config struct {
	Path string `toml:"-"`

	Target TargetConfig `toml:"target"`
	Emit   EmitConfig   `toml:"emit"`
	Trace  TraceConfig  `toml:"trace"`
}

type TargetConfig struct {
	Name      string `toml:"name"`
	ByteOrder string `toml:"byte_order"`
	SizeWidth int    `toml:"size_width"`
}

type EmitConfig struct {
	Indent int  `toml:"indent"`
	Tabs   bool `toml:"tabs"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Output string `toml:"output"`
	Format string `toml:"format"`
	Mode   string `toml:"mode"`
}

// Default returns the configuration used when no metabin.toml exists.
func Default() Config {
	def := typecode.Default()
	return Config{
		Target: TargetConfig{Name: def.Name, ByteOrder: "little", SizeWidth: def.SizeWidth},
		Emit:   EmitConfig{Indent: 4},
		Trace:  TraceConfig{Level: "off", Output: "-", Format: "auto", Mode: "stream"},
	}
}

// Find walks up from startDir looking for metabin.toml.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Load decodes path on top of Default and validates the result.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return Config{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if md.IsDefined("target", "size_width") && cfg.Target.SizeWidth != 4 && cfg.Target.SizeWidth != 8 {
		return Config{}, fmt.Errorf("%s: [target].size_width must be 4 or 8", path)
	}
	cfg.Path = path
	if _, err := cfg.TargetSpec(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if _, err := cfg.TraceSpec(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Discover loads the nearest metabin.toml above startDir, or returns
// Default when there is none.
func Discover(startDir string) (Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return Config{}, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// TargetSpec converts the [target] table.
func (c Config) TargetSpec() (typecode.Target, error) {
	order, err := typecode.ParseByteOrder(c.Target.ByteOrder)
	if err != nil {
		return typecode.Target{}, err
	}
	t := typecode.Target{Name: c.Target.Name, ByteOrder: order, SizeWidth: c.Target.SizeWidth}
	if t.Name == "" {
		t.Name = "custom"
	}
	return t, t.Validate()
}

// EmitOptions converts the [emit] table.
func (c Config) EmitOptions() hexpat.Options {
	return hexpat.Options{IndentWidth: c.Emit.Indent, UseTabs: c.Emit.Tabs}
}

// TraceSpec converts the [trace] table.
func (c Config) TraceSpec() (trace.Config, error) {
	level, err := trace.ParseLevel(orDefault(c.Trace.Level, "off"))
	if err != nil {
		return trace.Config{}, err
	}
	mode, err := trace.ParseMode(orDefault(c.Trace.Mode, "stream"))
	if err != nil {
		return trace.Config{}, err
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, err
	}
	return trace.Config{Level: level, Mode: mode, Format: format, OutputPath: c.Trace.Output}, nil
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}

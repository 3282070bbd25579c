// Package config loads shady.toml, the per-project settings for output,
// building and tracing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"shady/internal/build"
	"shady/internal/glsl"
	"shady/internal/ir"
	"shady/internal/trace"
)

// FileName is the name searched for by Find.
const FileName = "shady.toml"

// ErrUnknownKey is wrapped by Load when the file sets keys shady does not
// read.
var ErrUnknownKey = errors.New("unknown configuration key")

// Config is the decoded shady.toml.
type Config struct {
	Output OutputConfig `toml:"output"`
	Build  BuildConfig  `toml:"build"`
	Trace  TraceConfig  `toml:"trace"`

	// Path is the file the values came from; empty for defaults.
	Path string `toml:"-"`
}

type OutputConfig struct {
	Version   int    `toml:"version"`
	Profile   string `toml:"profile"`
	Indent    int    `toml:"indent"`
	Tabs      bool   `toml:"tabs"`
	Precision string `toml:"precision"`
	// Dir is where demo writes .glsl files; empty prints to stdout.
	Dir string `toml:"dir"`
}

type BuildConfig struct {
	Storage string `toml:"storage"`
	// Jobs bounds parallel rendering; 0 means GOMAXPROCS.
	Jobs int `toml:"jobs"`
}

type TraceConfig struct {
	Level  string `toml:"level"`
	Mode   string `toml:"mode"`
	Format string `toml:"format"`
	Output string `toml:"output"`
}

// Default returns the settings used when no file is found.
func Default() *Config {
	return &Config{
		Output: OutputConfig{Profile: "core", Indent: 4},
		Build:  BuildConfig{Storage: "packed"},
		Trace:  TraceConfig{Level: "off", Mode: "stream", Format: "auto", Output: "-"},
	}
}

// Find walks up from startDir to locate shady.toml.
func Find(startDir string) (path string, ok bool, err error) {
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

// Discover loads the nearest shady.toml above startDir, or the defaults.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil || !ok {
		if err != nil {
			return nil, err
		}
		return Default(), nil
	}
	return Load(path)
}

// Load decodes path over the defaults and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%s: %w: %s", path, ErrUnknownKey, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every enumerated setting.
func (c *Config) Validate() error {
	if _, err := c.GLSL(); err != nil {
		return err
	}
	if _, err := ir.ParseStorageMode(c.Build.Storage); err != nil {
		return fmt.Errorf("[build].storage: %w", err)
	}
	if c.Build.Jobs < 0 {
		return fmt.Errorf("[build].jobs must not be negative, got %d", c.Build.Jobs)
	}
	if _, err := c.Tracer(); err != nil {
		return err
	}
	return nil
}

// GLSL converts the [output] section into generator options.
func (c *Config) GLSL() (glsl.Options, error) {
	profile, err := glsl.ParseProfile(c.Output.Profile)
	if err != nil {
		return glsl.Options{}, fmt.Errorf("[output].profile: %w", err)
	}
	if c.Output.Indent < 0 {
		return glsl.Options{}, fmt.Errorf("[output].indent must not be negative, got %d", c.Output.Indent)
	}
	opts := glsl.Options{
		Version:     c.Output.Version,
		Profile:     profile,
		IndentWidth: c.Output.Indent,
		UseTabs:     c.Output.Tabs,
		Precision:   c.Output.Precision,
	}
	if err := opts.Validate(); err != nil {
		return glsl.Options{}, fmt.Errorf("[output]: %w", err)
	}
	return opts, nil
}

// Session converts the [build] section into session options.
func (c *Config) Session() (build.Options, error) {
	mode, err := ir.ParseStorageMode(c.Build.Storage)
	if err != nil {
		return build.Options{}, fmt.Errorf("[build].storage: %w", err)
	}
	return build.Options{Storage: mode}, nil
}

// Tracer converts the [trace] section into a tracer configuration.
func (c *Config) Tracer() (trace.Config, error) {
	level, err := trace.ParseLevel(c.Trace.Level)
	if err != nil {
		return trace.Config{}, fmt.Errorf("[trace].level: %w", err)
	}
	mode, err := trace.ParseMode(c.Trace.Mode)
	if err != nil {
		return trace.Config{}, fmt.Errorf("[trace].mode: %w", err)
	}
	format, err := trace.ParseFormat(c.Trace.Format)
	if err != nil {
		return trace.Config{}, fmt.Errorf("[trace].format: %w", err)
	}
	return trace.Config{Level: level, Mode: mode, Format: format, OutputPath: c.Trace.Output}, nil
}

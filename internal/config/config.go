// Package config provides unified configuration management for devcyclesim.
// Configuration is loaded from multiple sources with the following precedence:
// embedded defaults → global file → env vars → local file → CLI flags
package config

import (
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/alexander-akhmetov/devcyclesim/internal/dirs"
	"github.com/alexander-akhmetov/devcyclesim/internal/domain"
	"github.com/alexander-akhmetov/devcyclesim/internal/scenario"
)

//go:embed defaults/config.yaml
var defaultsFS embed.FS

// Output formats accepted by output_format and --output-format.
var OutputFormats = []string{"text", "json", "csv", "markdown"}

// ErrInvalidConfig reports a value that loaded but cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all configuration settings for devcyclesim.
// Fields ending in *Set track whether that field was explicitly set in config.
// This allows distinguishing explicit 0 from "not set", so a local file can
// override a global one with a zero value.
type Config struct {
	SimulationDays int    `yaml:"simulation_days"`
	Seed           uint64 `yaml:"seed"`
	OutputFormat   string `yaml:"output_format"`
	LogsDir        string `yaml:"logs_dir"` // default: dirs.LogsDir()

	// Keyed by phase key (spec, dev, test, rollout). Merged per key.
	Capacities map[string]int            `yaml:"capacities"`
	Generator  map[string]scenario.Range `yaml:"generator"`

	// Templates are loaded separately, not from YAML.
	Templates *Templates `yaml:"-"`

	SimulationDaysSet bool `yaml:"-"`
	SeedSet           bool `yaml:"-"`

	configDir string
	localDir  string
	sources   []string // ordered list of sources that contributed to this config
}

// Sources lists, in order, every layer that contributed to this config.
func (c *Config) Sources() []string {
	return c.sources
}

// LocalDir returns the local project config directory if one was detected.
func (c *Config) LocalDir() string {
	return c.localDir
}

// ConfigDir returns the global config directory.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// ResolvedLogsDir returns LogsDir, or the state directory default.
func (c *Config) ResolvedLogsDir() string {
	if c.LogsDir != "" {
		return c.LogsDir
	}
	return dirs.LogsDir()
}

// Load loads all configuration from the default locations.
// It auto-detects .devcyclesim/ in the current working directory for local overrides.
func Load() (*Config, error) {
	var localDir string
	if cwd, err := os.Getwd(); err == nil {
		candidate := dirs.LocalConfigDir(cwd)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			localDir = candidate
		}
	}
	return LoadWithDirs(dirs.ConfigDir(), localDir)
}

// LoadWithDirs loads configuration with explicit global and local directories.
// Local config overrides global config per-field. If localDir is empty, only
// global config is used.
func LoadWithDirs(globalDir, localDir string) (*Config, error) {
	if err := InstallDefaults(globalDir); err != nil {
		return nil, fmt.Errorf("install defaults: %w", err)
	}

	cfg, err := loadEmbedded()
	if err != nil {
		return nil, fmt.Errorf("load embedded defaults: %w", err)
	}
	cfg.sources = append(cfg.sources, "embedded")

	globalPath := filepath.Join(globalDir, "config.yaml")
	if globalCfg, err := loadFile(globalPath); err == nil {
		cfg.mergeFrom(globalCfg)
		cfg.sources = append(cfg.sources, globalPath)
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("load global config: %w", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if localDir != "" {
		localPath := filepath.Join(localDir, "config.yaml")
		if localCfg, err := loadFile(localPath); err == nil {
			cfg.mergeFrom(localCfg)
			cfg.sources = append(cfg.sources, localPath)
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("load local config: %w", err)
		}
	}

	cfg.configDir = globalDir
	cfg.localDir = localDir

	templates, err := LoadTemplates(globalDir, localDir)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	cfg.Templates = templates

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// InstallDefaults creates the config directory and installs default config if not exists.
func InstallDefaults(configDir string) error {
	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	templatesDir := filepath.Join(configDir, "templates")
	if err := os.MkdirAll(templatesDir, 0o700); err != nil {
		return fmt.Errorf("create templates dir: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		data, err := defaultsFS.ReadFile("defaults/config.yaml")
		if err != nil {
			return fmt.Errorf("read embedded config: %w", err)
		}
		if err := os.WriteFile(configPath, data, 0o600); err != nil {
			return fmt.Errorf("write config file: %w", err)
		}
	}

	return nil
}

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.SimulationDays <= 0 {
		return fmt.Errorf("%w: simulation_days must be positive, got %d", ErrInvalidConfig, c.SimulationDays)
	}
	if !validFormat(c.OutputFormat) {
		return fmt.Errorf("%w: unknown output_format %q", ErrInvalidConfig, c.OutputFormat)
	}
	for key := range c.Capacities {
		if _, err := domain.ParsePhase(key); err != nil {
			return fmt.Errorf("%w: capacities: %w", ErrInvalidConfig, err)
		}
	}
	for key := range c.Generator {
		if _, err := domain.ParsePhase(key); err != nil {
			return fmt.Errorf("%w: generator: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}

func validFormat(format string) bool {
	for _, f := range OutputFormats {
		if f == format {
			return true
		}
	}
	return false
}

func loadEmbedded() (*Config, error) {
	data, err := defaultsFS.ReadFile("defaults/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("read embedded defaults: %w", err)
	}
	return parseConfig(data)
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // user's config file
	if err != nil {
		return nil, err
	}
	return parseConfigWithTracking(data)
}

func parseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// parseConfigWithTracking parses YAML config and tracks which fields were set.
func parseConfigWithTracking(data []byte) (*Config, error) {
	cfg, err := parseConfig(data)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	if _, ok := raw["simulation_days"]; ok {
		cfg.SimulationDaysSet = true
	}
	if _, ok := raw["seed"]; ok {
		cfg.SeedSet = true
	}

	return cfg, nil
}

// applyEnv applies environment variables to the config.
// Env vars sit between global and local config in precedence.
func (c *Config) applyEnv() error {
	if v := os.Getenv("DEVCYCLESIM_DAYS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: DEVCYCLESIM_DAYS=%q", ErrInvalidConfig, v)
		}
		c.SimulationDays = n
		c.SimulationDaysSet = true
		c.sources = append(c.sources, "env:DEVCYCLESIM_DAYS")
	}

	if v := os.Getenv("DEVCYCLESIM_SEED"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: DEVCYCLESIM_SEED=%q", ErrInvalidConfig, v)
		}
		c.Seed = n
		c.SeedSet = true
		c.sources = append(c.sources, "env:DEVCYCLESIM_SEED")
	}

	if v := os.Getenv("DEVCYCLESIM_FORMAT"); v != "" {
		c.OutputFormat = v
		c.sources = append(c.sources, "env:DEVCYCLESIM_FORMAT")
	}

	if v := os.Getenv("DEVCYCLESIM_LOGS_DIR"); v != "" {
		c.LogsDir = v
		c.sources = append(c.sources, "env:DEVCYCLESIM_LOGS_DIR")
	}

	if v := os.Getenv("DEVCYCLESIM_CAPACITIES"); v != "" {
		caps, err := scenario.ParseCapacities(v)
		if err != nil {
			return fmt.Errorf("DEVCYCLESIM_CAPACITIES: %w", err)
		}
		if c.Capacities == nil {
			c.Capacities = make(map[string]int, domain.PhaseCount)
		}
		for _, phase := range domain.Phases {
			c.Capacities[phase.Key()] = caps[phase]
		}
		c.sources = append(c.sources, "env:DEVCYCLESIM_CAPACITIES")
	}

	return nil
}

// mergeFrom merges non-empty/set values from src into c.
func (c *Config) mergeFrom(src *Config) {
	if src.SimulationDaysSet {
		c.SimulationDays = src.SimulationDays
		c.SimulationDaysSet = true
	}
	if src.SeedSet {
		c.Seed = src.Seed
		c.SeedSet = true
	}
	if src.OutputFormat != "" {
		c.OutputFormat = src.OutputFormat
	}
	if src.LogsDir != "" {
		c.LogsDir = src.LogsDir
	}

	if len(src.Capacities) > 0 && c.Capacities == nil {
		c.Capacities = make(map[string]int, len(src.Capacities))
	}
	for key, n := range src.Capacities {
		c.Capacities[key] = n
	}

	if len(src.Generator) > 0 && c.Generator == nil {
		c.Generator = make(map[string]scenario.Range, len(src.Generator))
	}
	for key, r := range src.Generator {
		c.Generator[key] = r
	}
}

// Flags carries command line overrides. Zero values do not override,
// except Seed which is applied when SeedSet is true.
type Flags struct {
	Days       int
	Seed       uint64
	SeedSet    bool
	Format     string
	LogsDir    string
	Capacities string // "spec,dev,test,rollout"
}

// ApplyCLIFlags applies CLI flag overrides to the config.
// CLI flags have the highest precedence.
func (c *Config) ApplyCLIFlags(f Flags) error {
	if f.Days != 0 {
		c.SimulationDays = f.Days
		c.SimulationDaysSet = true
		c.sources = append(c.sources, "cli:duration")
	}
	if f.SeedSet {
		c.Seed = f.Seed
		c.SeedSet = true
		c.sources = append(c.sources, "cli:seed")
	}
	if f.Format != "" {
		c.OutputFormat = f.Format
		c.sources = append(c.sources, "cli:output-format")
	}
	if f.LogsDir != "" {
		c.LogsDir = f.LogsDir
		c.sources = append(c.sources, "cli:logs-dir")
	}
	if f.Capacities != "" {
		caps, err := scenario.ParseCapacities(f.Capacities)
		if err != nil {
			return fmt.Errorf("--capacities: %w", err)
		}
		if c.Capacities == nil {
			c.Capacities = make(map[string]int, domain.PhaseCount)
		}
		for _, phase := range domain.Phases {
			c.Capacities[phase.Key()] = caps[phase]
		}
		c.sources = append(c.sources, "cli:capacities")
	}
	return c.Validate()
}

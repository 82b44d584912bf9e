// Package config loads flowc settings from a YAML file and FLOWC_ environment
// variables through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/roach88/flowc/internal/compiler"
)

// EnvPrefix is the prefix of environment overrides, e.g. FLOWC_LOG_LEVEL.
const EnvPrefix = "FLOWC"

// Config is the full flowc configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Compiler CompilerConfig `mapstructure:"compiler"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Batch    BatchConfig    `mapstructure:"batch"`
}

// LogConfig controls the process logger.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// CompilerConfig tunes the compiler.
type CompilerConfig struct {
	MaxIterations  int `mapstructure:"max_iterations" validate:"min=1"`
	MaxConcurrency int `mapstructure:"max_concurrency" validate:"min=1"`

	// ModelTiers replaces whole tiers of the built-in table. Tiers left out
	// keep their defaults.
	ModelTiers map[string]compiler.ModelSpec `mapstructure:"model_tiers" validate:"dive,keys,oneof=fast balanced accurate,endkeys"`

	// SourcePlugins and DeliveryPlugins add to or override the built-in
	// plugin bindings, keyed by source type and delivery method.
	SourcePlugins   map[string]string `mapstructure:"source_plugins" validate:"dive,required"`
	DeliveryPlugins map[string]string `mapstructure:"delivery_plugins" validate:"dive,required"`
}

// MetricsConfig selects where compilation records go.
type MetricsConfig struct {
	Capacity int `mapstructure:"capacity" validate:"min=1"`

	// DBPath enables the SQLite archive when set.
	DBPath string `mapstructure:"db_path"`
	// Textfile, when set, receives Prometheus text exposition after a batch.
	Textfile string `mapstructure:"textfile"`
}

// BatchConfig tunes the batch command.
type BatchConfig struct {
	Concurrency int `mapstructure:"concurrency" validate:"min=1,max=64"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level: "info",
		},
		Compiler: CompilerConfig{
			MaxIterations:  compiler.DefaultMaxIterations,
			MaxConcurrency: compiler.DefaultMaxConcurrency,
		},
		Metrics: MetricsConfig{
			Capacity: 1000,
		},
		Batch: BatchConfig{
			Concurrency: 4,
		},
	}
}

// SetDefaults registers default values with v.
func SetDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("log.level", defaults.Log.Level)
	v.SetDefault("log.json", defaults.Log.JSON)

	v.SetDefault("compiler.max_iterations", defaults.Compiler.MaxIterations)
	v.SetDefault("compiler.max_concurrency", defaults.Compiler.MaxConcurrency)

	v.SetDefault("metrics.capacity", defaults.Metrics.Capacity)
	v.SetDefault("metrics.db_path", defaults.Metrics.DBPath)
	v.SetDefault("metrics.textfile", defaults.Metrics.Textfile)

	v.SetDefault("batch.concurrency", defaults.Batch.Concurrency)
}

// NewViper returns a viper instance with defaults and FLOWC_ env overrides.
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads path (if non-empty) into v, then unmarshals and validates.
// With an empty path the default file is read when it exists.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		if def := ConfigFile(); fileExists(def) {
			path = def
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ModelTiers returns the built-in tier table with configured tiers applied.
func (c *Config) ModelTiers() map[string]compiler.ModelSpec {
	tiers := compiler.DefaultModelTiers()
	for name, spec := range c.Compiler.ModelTiers {
		tiers[name] = spec
	}
	return tiers
}

// Plugins returns the built-in plugin registry with configured bindings
// registered on top.
func (c *Config) Plugins() *compiler.StaticPluginResolver {
	r := compiler.NewStaticPluginResolver()
	for sourceType, plugin := range c.Compiler.SourcePlugins {
		r.RegisterSource(sourceType, plugin)
	}
	for method, plugin := range c.Compiler.DeliveryPlugins {
		r.RegisterDelivery(method, plugin)
	}
	return r
}

// ConfigDir returns the path to the user's config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "flowc")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".flowc"
	}
	return filepath.Join(home, ".config", "flowc")
}

// ConfigFile returns the path to the default config file.
func ConfigFile() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, os.ErrNotExist)
}

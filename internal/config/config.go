// Package config holds the application settings: engine location, output
// and catalog paths. Settings come from defaults, an optional
// bridgepsci.toml, a .env file and BRIDGEPSCI_* environment variables, in
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

// DefaultFile is read from the working directory when no file is named.
const DefaultFile = "bridgepsci.toml"

// Environment variables.
const (
	EnvOpenSees    = "BRIDGEPSCI_OPENSEES"
	EnvOutput      = "BRIDGEPSCI_OUTPUT"
	EnvWorkDir     = "BRIDGEPSCI_WORKDIR"
	EnvKeepWorkDir = "BRIDGEPSCI_KEEP_WORKDIR"
	EnvCatalog     = "BRIDGEPSCI_CATALOG"
	EnvTimeout     = "BRIDGEPSCI_TIMEOUT"
)

// Config is the application configuration.
type Config struct {
	Engine  EngineConfig  `toml:"engine"`
	Output  OutputConfig  `toml:"output"`
	Catalog CatalogConfig `toml:"catalog"`
}

// EngineConfig locates and bounds the finite-element engine.
type EngineConfig struct {
	Binary      string `toml:"binary"`
	WorkDir     string `toml:"work_dir"`
	KeepWorkDir bool   `toml:"keep_work_dir"`
	// Timeout bounds each engine run, as a Go duration ("45m"). Empty or
	// "0" means no limit.
	Timeout string `toml:"timeout"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Dir        string `toml:"dir"`
	Plot       bool   `toml:"plot"`
	PlotFormat string `toml:"plot_format"`
}

// CatalogConfig names the run catalog database; empty disables it.
type CatalogConfig struct {
	Path string `toml:"path"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			Binary:  "OpenSees",
			Timeout: "2h",
		},
		Output: OutputConfig{
			Dir:        "out",
			PlotFormat: "png",
		},
	}
}

// Load builds the configuration. file is read when it exists; a missing
// file is an error only when it was named explicitly. envFile, or .env when
// empty, is loaded into the environment without replacing variables that
// are already set.
func Load(file, envFile string) (*Config, error) {
	cfg := Default()

	explicit := file != ""
	if !explicit {
		file = DefaultFile
	}
	data, err := os.ReadFile(file)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", file, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, err
	}

	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", envFile, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if _, err := cfg.EngineTimeout(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Engine.Binary = getEnv(EnvOpenSees, c.Engine.Binary)
	c.Engine.WorkDir = getEnv(EnvWorkDir, c.Engine.WorkDir)
	c.Engine.Timeout = getEnv(EnvTimeout, c.Engine.Timeout)
	c.Output.Dir = getEnv(EnvOutput, c.Output.Dir)
	c.Catalog.Path = getEnv(EnvCatalog, c.Catalog.Path)
	if v := os.Getenv(EnvKeepWorkDir); v != "" {
		keep, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvKeepWorkDir, err)
		}
		c.Engine.KeepWorkDir = keep
	}
	return nil
}

// EngineTimeout parses Engine.Timeout; zero means no limit.
func (c *Config) EngineTimeout() (time.Duration, error) {
	if c.Engine.Timeout == "" || c.Engine.Timeout == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.Engine.Timeout)
	if err != nil {
		return 0, fmt.Errorf("engine timeout: %w", err)
	}
	if d < 0 {
		return 0, fmt.Errorf("engine timeout %s is negative", d)
	}
	return d, nil
}

// PlotExt is the plot file extension, with its leading dot.
func (c *Config) PlotExt() string {
	if c.Output.PlotFormat == "" {
		return ".png"
	}
	return "." + c.Output.PlotFormat
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Package config holds application configuration, layered as
// defaults < config file < environment < flags.
package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultPillars is the canonical pillar set used when the config
// file does not define one. The product never fixed canonical pillar
// identifiers, so they are configuration rather than code.
var DefaultPillars = []string{"Growth", "Vertical", "Cleanup"}

// Config holds all application configuration.
type Config struct {
	Host      string `json:"host"`
	Port      int    `json:"port"`
	NoBrowser bool   `json:"no_browser"`
	DataDir   string `json:"data_dir"`
	DBPath    string `json:"-"`

	// GeminiAPIKey enables the AI coach. Env only, never written
	// to the config file.
	GeminiAPIKey string `json:"-"`

	// Pillars is the canonical pillar set; stored labels are
	// normalized against it at the save boundary.
	Pillars []string `json:"pillars,omitempty"`

	// QuarterTargets maps pillar to target hours per quarter,
	// driving the progress bars.
	QuarterTargets map[string]float64 `json:"quarter_targets,omitempty"`

	WriteTimeout time.Duration `json:"-"`
}

// Default returns a Config with default values.
func Default() (Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf(
			"determining home directory: %w", err,
		)
	}
	dataDir := filepath.Join(home, ".northstar")
	return Config{
		Host:         "127.0.0.1",
		Port:         8844,
		DataDir:      dataDir,
		DBPath:       filepath.Join(dataDir, "northstar.db"),
		Pillars:      append([]string(nil), DefaultPillars...),
		WriteTimeout: 30 * time.Second,
	}, nil
}

// Load builds a Config by layering: defaults < config file < env <
// flags. The provided FlagSet must already be parsed by the caller.
// Only flags that were explicitly set override the lower layers.
func Load(fs *flag.FlagSet) (Config, error) {
	cfg, err := Default()
	if err != nil {
		return cfg, err
	}

	// The data dir decides where the config file lives, so that
	// one env var is applied before the file layer. loadEnv later
	// re-applies it, which is a no-op.
	if v := os.Getenv("NORTHSTAR_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}

	if err := cfg.loadFile(); err != nil {
		return cfg, fmt.Errorf("loading config file: %w", err)
	}
	cfg.loadEnv()
	cfg.DBPath = filepath.Join(cfg.DataDir, "northstar.db")
	applyFlags(&cfg, fs)
	return cfg, nil
}

// ConfigPath returns the path of the JSON config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.DataDir, "config.json")
}

// fileConfig is the subset of Config read from the config file.
type fileConfig struct {
	Host           string             `json:"host"`
	Port           int                `json:"port"`
	Pillars        []string           `json:"pillars"`
	QuarterTargets map[string]float64 `json:"quarter_targets"`
}

func (c *Config) loadFile() error {
	data, err := os.ReadFile(c.ConfigPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var file fileConfig
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if file.Host != "" {
		c.Host = file.Host
	}
	if file.Port != 0 {
		c.Port = file.Port
	}
	if len(file.Pillars) > 0 {
		c.Pillars = file.Pillars
	}
	if len(file.QuarterTargets) > 0 {
		c.QuarterTargets = file.QuarterTargets
	}
	return nil
}

func (c *Config) loadEnv() {
	if v := os.Getenv("NORTHSTAR_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.GeminiAPIKey = v
	}
}

// ReloadTargets re-reads pillars and quarter targets from the config
// file, for live reload while the server runs. Other fields are left
// untouched.
func (c *Config) ReloadTargets() error {
	data, err := os.ReadFile(c.ConfigPath())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var file fileConfig
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}
	if len(file.Pillars) > 0 {
		c.Pillars = file.Pillars
	}
	if len(file.QuarterTargets) > 0 {
		c.QuarterTargets = file.QuarterTargets
	}
	return nil
}

// RegisterServeFlags registers serve-command flags on fs. The caller
// must call fs.Parse before passing fs to Load.
func RegisterServeFlags(fs *flag.FlagSet) {
	fs.String("host", "127.0.0.1", "Host to bind to")
	fs.Int("port", 8844, "Port to listen on")
	fs.Bool(
		"no-browser", false,
		"Don't open browser on startup",
	)
}

// applyFlags copies explicitly-set flags from fs into cfg.
func applyFlags(cfg *Config, fs *flag.FlagSet) {
	if fs == nil {
		return
	}
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "host":
			cfg.Host = f.Value.String()
		case "port":
			// flag already validated the int; ignore parse error
			cfg.Port, _ = strconv.Atoi(f.Value.String())
		case "no-browser":
			cfg.NoBrowser = f.Value.String() == "true"
		}
	})
}

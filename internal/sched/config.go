package sched

import (
	"os"

	yaml "github.com/goccy/go-yaml"
)

// Config mirrors config.yml
type Config struct {
	TickMS       int    `yaml:"tick_ms"`       // 5 (by default)
	StatusBuffer int    `yaml:"status_buffer"` // 256 (by default)
	LogLevel     string `yaml:"log_level"`     // "info" (by default)
	LogFormat    string `yaml:"log_format"`    // "text" or "json"
}

// If the config file is not found, we use default values
func defaultConfig() Config {
	return Config{
		TickMS:       5,
		StatusBuffer: 256,
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.TickMS <= 0 {
		cfg.TickMS = 5
	}
	if cfg.StatusBuffer <= 0 {
		cfg.StatusBuffer = 256
	}

	return cfg
}

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config mirrors the command-line flags for file-based configuration.
// Flags set explicitly on the command line take precedence over the file.
type Config struct {
	IntervalMS   int    `yaml:"interval_ms"`
	Count        int    `yaml:"count"`
	Smaps        bool   `yaml:"smaps"`
	MaxSnapshots int    `yaml:"max_snapshots"`
	Compact      bool   `yaml:"compact"`
	SkipKernel   bool   `yaml:"skip_kernel"`
	Output       string `yaml:"output"`
	ProcRoot     string `yaml:"proc_root"`
	LogLevel     string `yaml:"log_level"`
}

func defaultConfig() Config {
	return Config{
		IntervalMS: 1000,
		Count:      1,
		LogLevel:   "warn",
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

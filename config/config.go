package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds crawler configuration.
type Config struct {
	Platform     string
	Keyword      string
	Pages        int
	MinDelay     time.Duration
	MaxDelay     time.Duration
	Timeout      time.Duration
	Parallelism  int
	OutputFile   string
	OutputFormat string // csv, json, or dual
	UserAgent    string
	MetricsAddr  string
	Verbose      bool
}

// DefaultConfig returns conservative defaults matching the upstream
// search endpoints' tolerance.
func DefaultConfig() *Config {
	return &Config{
		Platform:     "taobao",
		Keyword:      "手机",
		Pages:        5,
		MinDelay:     1 * time.Second,
		MaxDelay:     3 * time.Second,
		Timeout:      10 * time.Second,
		Parallelism:  1,
		OutputFile:   "output/products.csv",
		OutputFormat: "csv",
		UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36",
		MetricsAddr:  "",
		Verbose:      false,
	}
}

// Validate ensures all configuration values are coherent.
func (c *Config) Validate() error {
	if c.Platform == "" {
		return fmt.Errorf("platform cannot be empty")
	}
	if c.Keyword == "" {
		return fmt.Errorf("keyword cannot be empty")
	}
	if c.Pages < 0 {
		return fmt.Errorf("pages cannot be negative")
	}
	if c.MinDelay < 0 {
		return fmt.Errorf("min delay cannot be negative")
	}
	if c.MaxDelay < 0 {
		return fmt.Errorf("max delay cannot be negative")
	}
	if c.MinDelay > c.MaxDelay {
		return fmt.Errorf("min delay (%s) cannot exceed max delay (%s)", c.MinDelay, c.MaxDelay)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.Parallelism <= 0 {
		return fmt.Errorf("parallelism must be positive")
	}
	if c.OutputFile == "" {
		return fmt.Errorf("output file cannot be empty")
	}
	if c.OutputFormat != "csv" && c.OutputFormat != "json" && c.OutputFormat != "dual" {
		return fmt.Errorf("output format must be csv, json, or dual")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("user agent cannot be empty")
	}
	return nil
}

// EnvString reads a string environment variable, reporting whether it was set.
func EnvString(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return "", false
	}
	return value, true
}

// EnvInt reads an integer environment variable, reporting whether it was set.
func EnvInt(key string) (int, bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return 0, false, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, false, fmt.Errorf("parse %s: %w", key, err)
	}
	return parsed, true, nil
}

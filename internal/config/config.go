/*
Package config
File: config.go
Description:
    Runtime settings for the server and the terminal client.

    Layers, lowest priority first:
    1. Default()
    2. An optional YAML file (clicker.yaml)
    3. An optional .env file
    4. The process environment (CLICKER_* variables)
*/

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds every tunable the binaries read at startup.
type Config struct {
	ListenAddr       string  `yaml:"listen_addr"`       // HTTP/WebSocket bind address
	CatalogPath      string  `yaml:"catalog_path"`      // Upgrade catalog file; empty uses the built-in one
	TickRate         int     `yaml:"tick_rate"`         // Logic ticks per second
	BroadcastRate    int     `yaml:"broadcast_rate"`    // State pushes per second to WebSocket clients
	RenderFPS        int     `yaml:"render_fps"`        // Terminal redraws per second
	Debug            bool    `yaml:"debug"`             // Enables the currency backdoor endpoint
	Audio            bool    `yaml:"audio"`             // Terminal sound effects
	LogFile          string  `yaml:"log_file"`          // Terminal client log destination; empty discards
	CompactThreshold float64 `yaml:"compact_threshold"` // Amounts at or above this are shown with k/M/B suffixes
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		ListenAddr:       ":8081",
		TickRate:         60,
		BroadcastRate:    20,
		RenderFPS:        60,
		Audio:            true,
		CompactThreshold: 1_000_000,
	}
}

// Env keys understood by Load.
const (
	EnvListenAddr       = "CLICKER_LISTEN_ADDR"
	EnvCatalogPath      = "CLICKER_CATALOG"
	EnvTickRate         = "CLICKER_TICK_RATE"
	EnvBroadcastRate    = "CLICKER_BROADCAST_RATE"
	EnvRenderFPS        = "CLICKER_RENDER_FPS"
	EnvDebug            = "CLICKER_DEBUG"
	EnvAudio            = "CLICKER_AUDIO"
	EnvLogFile          = "CLICKER_LOG_FILE"
	EnvCompactThreshold = "CLICKER_COMPACT_THRESHOLD"
)

// Load builds a Config from the layers described in the file header.
// Missing files are skipped; unreadable or invalid ones are errors.
func Load(yamlPath, envPath string) (Config, error) {
	cfg := Default()

	if yamlPath != "" {
		data, err := os.ReadFile(yamlPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("config: read %s: %w", yamlPath, err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("config: parse %s: %w", yamlPath, err)
			}
		}
	}

	dotenv := map[string]string{}
	if envPath != "" {
		vars, err := godotenv.Read(envPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("config: read %s: %w", envPath, err)
		default:
			dotenv = vars
		}
	}

	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}
	if err := cfg.applyEnv(lookup); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvListenAddr); ok {
		c.ListenAddr = v
	}
	if v, ok := lookup(EnvCatalogPath); ok {
		c.CatalogPath = v
	}
	if v, ok := lookup(EnvLogFile); ok {
		c.LogFile = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{EnvTickRate, &c.TickRate},
		{EnvBroadcastRate, &c.BroadcastRate},
		{EnvRenderFPS, &c.RenderFPS},
	}
	for _, f := range ints {
		v, ok := lookup(f.key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", f.key, err)
		}
		*f.dst = n
	}

	bools := []struct {
		key string
		dst *bool
	}{
		{EnvDebug, &c.Debug},
		{EnvAudio, &c.Audio},
	}
	for _, f := range bools {
		v, ok := lookup(f.key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("config: %s: %w", f.key, err)
		}
		*f.dst = b
	}

	if v, ok := lookup(EnvCompactThreshold); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvCompactThreshold, err)
		}
		c.CompactThreshold = f
	}
	return nil
}

// Validate rejects settings the loops cannot run with.
func (c Config) Validate() error {
	switch {
	case c.ListenAddr == "":
		return errors.New("config: listen_addr is empty")
	case c.TickRate <= 0 || c.TickRate > 1000:
		return fmt.Errorf("config: tick_rate %d out of range 1..1000", c.TickRate)
	case c.BroadcastRate <= 0 || c.BroadcastRate > c.TickRate:
		return fmt.Errorf("config: broadcast_rate %d out of range 1..%d", c.BroadcastRate, c.TickRate)
	case c.RenderFPS <= 0 || c.RenderFPS > 240:
		return fmt.Errorf("config: render_fps %d out of range 1..240", c.RenderFPS)
	case c.CompactThreshold < 0:
		return errors.New("config: compact_threshold must not be negative")
	}
	return nil
}

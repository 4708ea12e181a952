// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultCatalogEndpoint is the published video list.
const DefaultCatalogEndpoint = "https://raw.githubusercontent.com/cvillanueva/VideoPlayerDemo/refs/heads/main/videos.json"

// Config is the root configuration structure.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	Catalog  CatalogConfig  `toml:"catalog"`
	Cache    CacheConfig    `toml:"cache"`
	Download DownloadConfig `toml:"download"`
	Events   EventsConfig   `toml:"events"`
	Log      LogConfig      `toml:"log"`
}

type StorageConfig struct {
	Dir string `toml:"dir"`
}

type DatabaseConfig struct {
	Path string `toml:"path"`
}

type CatalogConfig struct {
	Endpoint string        `toml:"endpoint"`
	Timeout  time.Duration `toml:"timeout"`
}

type CacheConfig struct {
	MaxEntries int           `toml:"max_entries"`
	MaxBytes   int64         `toml:"max_bytes"`
	TTL        time.Duration `toml:"ttl"`
}

type DownloadConfig struct {
	RateLimit int   `toml:"rate_limit"` // bytes per second, 0 = unlimited
	ChunkSize int   `toml:"chunk_size"`
	History   *bool `toml:"history"`
}

// HistoryEnabled reports whether transfers are recorded. Defaults to true.
func (d DownloadConfig) HistoryEnabled() bool {
	return d.History == nil || *d.History
}

type EventsConfig struct {
	Persist   bool          `toml:"persist"`
	Retention time.Duration `toml:"retention"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Load reads, parses, and validates the configuration file.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, reporting
// only unresolved environment variables.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}
	if len(missing) > 0 {
		return nil, &ConfigError{Path: path, Missing: missing}
	}
	return cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, missing, nil
}

func (c *Config) applyDefaults() {
	if c.Storage.Dir == "" {
		c.Storage.Dir = defaultStorageDir()
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/vidstash.db"
	}
	if c.Catalog.Endpoint == "" {
		c.Catalog.Endpoint = DefaultCatalogEndpoint
	}
	if c.Catalog.Timeout == 0 {
		c.Catalog.Timeout = 30 * time.Second
	}
	if c.Cache.MaxEntries == 0 {
		c.Cache.MaxEntries = 256
	}
	if c.Cache.MaxBytes == 0 {
		c.Cache.MaxBytes = 16 << 20
	}
	if c.Cache.TTL == 0 {
		c.Cache.TTL = 24 * time.Hour
	}
	if c.Download.ChunkSize == 0 {
		c.Download.ChunkSize = 32 * 1024
	}
	if c.Events.Retention == 0 {
		c.Events.Retention = 7 * 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func defaultStorageDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "./data/videos"
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "vidstash", "videos")
}

// envVarPattern matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::([-?])([^}]*))?\}`)

// substituteEnvVars replaces variable references with environment values.
// Unresolved references are left in place and reported in missing; a
// ${VAR:?message} reference reports "VAR: message".
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	out := envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]
		value, ok := os.LookupEnv(name)

		switch op {
		case "-":
			if !ok || value == "" {
				return arg
			}
			return value
		case "?":
			if !ok || value == "" {
				missing = append(missing, name+": "+strings.TrimSpace(arg))
				return match
			}
			return value
		default:
			if !ok {
				missing = append(missing, name)
				return match
			}
			return value
		}
	})
	return out, missing
}

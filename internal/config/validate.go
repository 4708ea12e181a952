// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if c.Storage.Dir == "" {
		errs = append(errs, "storage.dir: required")
	}
	if c.Database.Path == "" {
		errs = append(errs, "database.path: required")
	}

	if u, err := url.Parse(c.Catalog.Endpoint); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("catalog.endpoint: must be an http(s) URL, got %q", c.Catalog.Endpoint))
	}
	if c.Catalog.Timeout < 0 {
		errs = append(errs, fmt.Sprintf("catalog.timeout: must not be negative, got %s", c.Catalog.Timeout))
	}

	if c.Cache.MaxEntries < 0 {
		errs = append(errs, fmt.Sprintf("cache.max_entries: must not be negative, got %d", c.Cache.MaxEntries))
	}
	if c.Cache.MaxBytes < 0 {
		errs = append(errs, fmt.Sprintf("cache.max_bytes: must not be negative, got %d", c.Cache.MaxBytes))
	}
	if c.Cache.TTL < 0 {
		errs = append(errs, fmt.Sprintf("cache.ttl: must not be negative, got %s", c.Cache.TTL))
	}

	if c.Download.RateLimit < 0 {
		errs = append(errs, fmt.Sprintf("download.rate_limit: must not be negative, got %d", c.Download.RateLimit))
	}
	if c.Download.ChunkSize < 0 {
		errs = append(errs, fmt.Sprintf("download.chunk_size: must not be negative, got %d", c.Download.ChunkSize))
	}

	if c.Events.Retention < 0 {
		errs = append(errs, fmt.Sprintf("events.retention: must not be negative, got %s", c.Events.Retention))
	}

	if !validLogLevels[c.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	return errs
}

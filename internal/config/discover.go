package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// EnvConfig names the environment variable that overrides discovery.
const EnvConfig = "VIDSTASH_CONFIG"

const fileName = "config.toml"

// DefaultPath is the per-user config location, where init writes.
func DefaultPath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".", fileName)
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "vidstash", fileName)
}

// candidates lists where Discover looks, most specific first: the working
// directory, the user's config dir, each $XDG_CONFIG_DIRS entry, then
// /etc/vidstash.
func candidates() []string {
	paths := []string{filepath.Join(".", fileName), DefaultPath()}

	if dirs := os.Getenv("XDG_CONFIG_DIRS"); dirs != "" {
		for _, d := range filepath.SplitList(dirs) {
			if d != "" {
				paths = append(paths, filepath.Join(d, "vidstash", fileName))
			}
		}
	}
	return append(paths, filepath.Join("/etc", "vidstash", fileName))
}

// Discover returns the config file to load. $VIDSTASH_CONFIG wins when set
// and must name an existing file. Directories are never returned.
func Discover() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		if !isFile(p) {
			return "", fmt.Errorf("%s=%s: %w", EnvConfig, p, ErrNotFound)
		}
		return p, nil
	}

	paths := candidates()
	for _, p := range paths {
		if isFile(p) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w (looked in %s)", ErrNotFound, strings.Join(paths, ", "))
}

func isFile(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.Mode().IsRegular()
}

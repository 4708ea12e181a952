package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "")

	path := DefaultPath()
	assert.Contains(t, path, ".config/vidstash/config.toml")
}

func TestDefaultPath_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	path := DefaultPath()
	assert.Equal(t, "/custom/config/vidstash/config.toml", path)
}

func TestDiscover_VIDSTASH_CONFIG(t *testing.T) {
	tmp := t.TempDir()
	cfgPath := filepath.Join(tmp, "custom.toml")
	err := os.WriteFile(cfgPath, []byte("[storage]"), 0644)
	require.NoError(t, err, "failed to create test config")

	t.Setenv("VIDSTASH_CONFIG", cfgPath)

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, cfgPath, path)
}

func TestDiscover_VIDSTASH_CONFIG_NotFound(t *testing.T) {
	t.Setenv("VIDSTASH_CONFIG", "/nonexistent/config.toml")

	_, err := Discover()
	require.Error(t, err, "expected error for missing VIDSTASH_CONFIG")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "VIDSTASH_CONFIG")
}

func TestDiscover_XDGConfigDirs(t *testing.T) {
	t.Setenv("VIDSTASH_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent/xdg")
	chdir(t, t.TempDir())

	system := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(system, "vidstash"), 0755))
	want := filepath.Join(system, "vidstash", "config.toml")
	require.NoError(t, os.WriteFile(want, []byte("[storage]"), 0644))
	t.Setenv("XDG_CONFIG_DIRS", "/nonexistent/a"+string(os.PathListSeparator)+system)

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, want, path)
}

func TestDiscover_SkipsDirectories(t *testing.T) {
	t.Setenv("VIDSTASH_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent/xdg")
	t.Setenv("XDG_CONFIG_DIRS", "")
	tmp := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(tmp, "config.toml"), 0755))
	chdir(t, tmp)

	_, err := Discover()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscover_CurrentDir(t *testing.T) {
	t.Setenv("VIDSTASH_CONFIG", "")

	tmp := t.TempDir()
	err := os.WriteFile(filepath.Join(tmp, "config.toml"), []byte("[storage]"), 0644)
	require.NoError(t, err, "failed to create test config")
	chdir(t, tmp)

	path, err := Discover()
	require.NoError(t, err)
	assert.Equal(t, "config.toml", filepath.Base(path))
}

func TestDiscover_NotFound(t *testing.T) {
	t.Setenv("VIDSTASH_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent/xdg")
	t.Setenv("XDG_CONFIG_DIRS", "")
	chdir(t, t.TempDir())

	_, err := Discover()
	require.Error(t, err, "expected error when no config found")
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "config not found")
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}

package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigError_Empty(t *testing.T) {
	e := &ConfigError{Path: "/etc/vidstash/config.toml"}
	assert.False(t, e.HasErrors())
	assert.Empty(t, e.Error())
	assert.Empty(t, e.Problems())
}

func TestConfigError_SingleProblem(t *testing.T) {
	e := &ConfigError{Path: "/etc/vidstash/config.toml", Missing: []string{"VIDSTASH_VIDEOS"}}
	assert.Equal(t, "config /etc/vidstash/config.toml: unset environment variable VIDSTASH_VIDEOS", e.Error())
}

func TestConfigError_ManyProblems(t *testing.T) {
	e := &ConfigError{
		Path:    "/etc/vidstash/config.toml",
		Missing: []string{"VIDSTASH_VIDEOS: set the video dir"},
		Errors:  []string{"log.level: must be one of debug, info, warn, error", "cache.ttl: must not be negative"},
	}

	assert.True(t, e.HasErrors())
	assert.Equal(t, []string{
		"unset environment variable VIDSTASH_VIDEOS: set the video dir",
		"log.level: must be one of debug, info, warn, error",
		"cache.ttl: must not be negative",
	}, e.Problems())

	msg := e.Error()
	assert.Contains(t, msg, "config /etc/vidstash/config.toml: 3 problems:")
	assert.Contains(t, msg, "\n  - cache.ttl: must not be negative")
}

func TestConfigError_WithoutPath(t *testing.T) {
	e := &ConfigError{Errors: []string{"storage.dir: required"}}
	assert.Equal(t, "config: storage.dir: required", e.Error())
}

func TestConfigError_IsInvalid(t *testing.T) {
	var err error = &ConfigError{Errors: []string{"log.level: invalid"}}
	wrapped := errors.Join(errors.New("startup"), err)
	assert.ErrorIs(t, wrapped, ErrInvalid)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
}

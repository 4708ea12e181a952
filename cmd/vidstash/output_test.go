package main

import (
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vmunix/vidstash/internal/events"
)

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLogLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "?", formatBytes(-1))
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "2.0 KiB", formatBytes(2048))
}

func TestFormatTimeAgo(t *testing.T) {
	assert.Equal(t, "never", formatTimeAgo(time.Time{}))
	assert.Equal(t, "1 hour ago", formatTimeAgo(time.Now().Add(-time.Hour)))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "a long...", truncate("a long title", 9))
	assert.Equal(t, "ab", truncate("abcdef", 2))
}

func TestEventDetail(t *testing.T) {
	registry := events.DefaultRegistry()

	raw := func(e events.Event) events.RawEvent {
		data, err := json.Marshal(e)
		require.NoError(t, err)
		return events.RawEvent{EventType: e.EventType(), Payload: string(data)}
	}

	assert.Equal(t, "50% (1.0 KiB)",
		eventDetail(registry, raw(events.NewDownloadProgressed("1", "t", 0.5, 1024, 2048))))
	assert.Equal(t, "download: Server error 404",
		eventDetail(registry, raw(events.NewDownloadFailed(events.OpDownload, "1", "t", "Server error 404"))))
	assert.Equal(t, "clip.mp4",
		eventDetail(registry, raw(events.NewAssetDeleted("1", "clip.mp4"))))
	assert.Equal(t, "-", eventDetail(registry, events.RawEvent{EventType: "unknown"}))
}

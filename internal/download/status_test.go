package download

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionTo_ValidTransitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusDownloading, StatusCompleted},
		{StatusDownloading, StatusFailed},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.True(t, tt.from.CanTransitionTo(tt.to),
				"%s should be able to transition to %s", tt.from, tt.to)
		})
	}
}

func TestCanTransitionTo_InvalidTransitions(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
	}{
		{StatusCompleted, StatusDownloading},
		{StatusCompleted, StatusFailed},
		{StatusFailed, StatusDownloading},
		{StatusFailed, StatusCompleted},
		{StatusDownloading, StatusDownloading},
		{Status("unknown"), StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.False(t, tt.from.CanTransitionTo(tt.to),
				"%s should not be able to transition to %s", tt.from, tt.to)
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusDownloading.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
}

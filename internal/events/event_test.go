package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBaseEvent_ImplementsEvent(t *testing.T) {
	now := time.Now()
	e := BaseEvent{
		Type:      "test.event",
		Entity:    "asset",
		ID:        "42",
		Timestamp: now,
	}

	assert.Equal(t, "test.event", e.EventType())
	assert.Equal(t, "asset", e.EntityType())
	assert.Equal(t, "42", e.EntityID())
	assert.Equal(t, now, e.OccurredAt())
}

func TestNewBaseEvent(t *testing.T) {
	e := NewBaseEvent(EventDownloadProgressed, EntityAsset, "123")

	assert.Equal(t, "download.progressed", e.EventType())
	assert.Equal(t, "asset", e.EntityType())
	assert.Equal(t, "123", e.EntityID())
	assert.False(t, e.OccurredAt().IsZero())
}

// Package events provides the broadcast bus download progress and failures
// are published on, plus optional SQLite persistence of published events.
package events

import "time"

// Event is the base interface all events implement.
type Event interface {
	EventType() string
	EntityType() string // "asset"
	EntityID() string   // asset identifier, may be empty
	OccurredAt() time.Time
}

// BaseEvent provides common fields for all events.
type BaseEvent struct {
	Type      string    `json:"type"`
	Entity    string    `json:"entity_type"`
	ID        string    `json:"entity_id"`
	Timestamp time.Time `json:"occurred_at"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EntityType() string    { return e.Entity }
func (e BaseEvent) EntityID() string      { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent creates a BaseEvent with the current timestamp.
func NewBaseEvent(eventType, entityType, entityID string) BaseEvent {
	return BaseEvent{
		Type:      eventType,
		Entity:    entityType,
		ID:        entityID,
		Timestamp: time.Now(),
	}
}

// Transient is implemented by events that are superseded by a later event
// of the same sequence, such as intermediate progress.
type Transient interface {
	Transient() bool
}

// IsTransient reports whether e may be dropped or left unpersisted.
func IsTransient(e Event) bool {
	t, ok := e.(Transient)
	return ok && t.Transient()
}

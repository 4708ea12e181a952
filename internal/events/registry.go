package events

import (
	"encoding/json"
	"fmt"
)

// Registry decodes persisted events back into their concrete types.
type Registry struct {
	decoders map[string]func(payload []byte) (Event, error)
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[string]func([]byte) (Event, error))}
}

// Register maps eventType to the concrete type *T.
func Register[T any, PT interface {
	*T
	Event
}](r *Registry, eventType string) {
	r.decoders[eventType] = func(payload []byte) (Event, error) {
		e := PT(new(T))
		if err := json.Unmarshal(payload, e); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Unmarshal decodes a persisted event.
func (r *Registry) Unmarshal(raw RawEvent) (Event, error) {
	decode, ok := r.decoders[raw.EventType]
	if !ok {
		return nil, fmt.Errorf("unknown event type: %s", raw.EventType)
	}
	e, err := decode([]byte(raw.Payload))
	if err != nil {
		return nil, fmt.Errorf("unmarshal event payload: %w", err)
	}
	return e, nil
}

// DefaultRegistry knows every event the download manager publishes.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	Register[DownloadProgressed](r, EventDownloadProgressed)
	Register[DownloadFailed](r, EventDownloadFailed)
	Register[AssetDeleted](r, EventAssetDeleted)
	return r
}

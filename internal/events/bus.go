package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultDeliveryWait bounds how long Publish waits for buffer space before
// dropping an event that must not be missed.
const DefaultDeliveryWait = 2 * time.Second

// Bus is the central event bus for pub/sub.
//
// Events from one publisher reach each subscriber in publish order.
// Transient events (see Transient) are best-effort: they are dropped once a
// subscriber's buffer is three quarters full. The remaining quarter is kept
// for every other event, which waits up to the delivery wait for space
// rather than being dropped.
type Bus struct {
	mu           sync.RWMutex
	subscribers  map[string][]chan Event // eventType -> channels
	allSubs      []chan Event            // subscribers to all events
	log          *EventLog               // SQLite persistence (may be nil)
	logger       *slog.Logger
	deliveryWait time.Duration
	closed       bool
}

// BusOption configures a Bus.
type BusOption func(*Bus)

// WithDeliveryWait sets how long a non-transient event may wait for a full
// subscriber.
func WithDeliveryWait(d time.Duration) BusOption {
	return func(b *Bus) {
		if d > 0 {
			b.deliveryWait = d
		}
	}
}

// NewBus creates a new event bus.
// The EventLog is optional - pass nil to disable persistence. Only
// non-transient events are persisted.
func NewBus(log *EventLog, logger *slog.Logger, opts ...BusOption) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	b := &Bus{
		subscribers:  make(map[string][]chan Event),
		log:          log,
		logger:       logger,
		deliveryWait: DefaultDeliveryWait,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Publish sends an event to all subscribers and optionally persists it.
func (b *Bus) Publish(ctx context.Context, e Event) error {
	transient := IsTransient(e)

	if b.log != nil && !transient {
		if _, err := b.log.Append(ctx, e); err != nil {
			b.logger.Error("failed to persist event", "type", e.EventType(), "error", err)
			// Continue - event delivery is more important than persistence
		}
	}

	// Deliver under the read lock so Close and Unsubscribe cannot close a
	// channel mid-send.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return nil
	}

	for _, ch := range b.subscribers[e.EventType()] {
		b.deliver(ctx, ch, e, transient)
	}
	for _, ch := range b.allSubs {
		b.deliver(ctx, ch, e, transient)
	}

	return nil
}

// deliver sends e to one subscriber. Transient events never block and
// leave a reserve of the buffer free.
func (b *Bus) deliver(ctx context.Context, ch chan Event, e Event, transient bool) {
	if transient {
		if len(ch) >= cap(ch)-reserve(cap(ch)) {
			b.logger.Debug("subscriber busy, dropping transient event",
				"type", e.EventType(), "entity_id", e.EntityID())
			return
		}
		select {
		case ch <- e:
		default:
		}
		return
	}

	select {
	case ch <- e:
		return
	default:
	}

	timer := time.NewTimer(b.deliveryWait)
	defer timer.Stop()
	select {
	case ch <- e:
	case <-ctx.Done():
		b.logger.Warn("subscriber channel full, dropping event",
			"type", e.EventType(), "entity_id", e.EntityID(), "error", ctx.Err())
	case <-timer.C:
		b.logger.Warn("subscriber channel full, dropping event",
			"type", e.EventType(), "entity_id", e.EntityID(), "waited", b.deliveryWait)
	}
}

// reserve is the part of a buffer transient events may not use.
func reserve(capacity int) int {
	if capacity < 4 {
		return 0
	}
	return capacity / 4
}

// Subscribe returns a channel for events of a specific type.
func (b *Bus) Subscribe(eventType string, bufferSize int) <-chan Event {
	return b.SubscribeTypes(bufferSize, eventType)
}

// SubscribeTypes returns one channel carrying events of any of the given
// types, in publish order across types.
func (b *Bus) SubscribeTypes(bufferSize int, eventTypes ...string) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	for _, t := range eventTypes {
		b.subscribers[t] = append(b.subscribers[t], ch)
	}
	return ch
}

// SubscribeAll returns a channel for all events.
func (b *Bus) SubscribeAll(bufferSize int) <-chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.allSubs = append(b.allSubs, ch)
	return ch
}

// Unsubscribe removes a subscription channel.
func (b *Bus) Unsubscribe(ch <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var found chan Event

	// Remove from type-specific subscribers
	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub == ch {
				b.subscribers[eventType] = append(subs[:i:i], subs[i+1:]...)
				found = sub
				break
			}
		}
	}

	// Remove from all-event subscribers
	for i, sub := range b.allSubs {
		if sub == ch {
			b.allSubs = append(b.allSubs[:i:i], b.allSubs[i+1:]...)
			found = sub
			break
		}
	}

	if found != nil {
		close(found)
	}
}

// Close shuts down the bus and closes all subscriber channels.
func (b *Bus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	// A multi-type subscription appears under several types; close it once.
	done := make(map[chan Event]bool)
	for _, subs := range b.subscribers {
		for _, ch := range subs {
			if !done[ch] {
				close(ch)
				done[ch] = true
			}
		}
	}
	b.subscribers = nil

	for _, ch := range b.allSubs {
		close(ch)
	}
	b.allSubs = nil

	return nil
}

// Progress returns the progress stream: DownloadProgressed events.
func (b *Bus) Progress(bufferSize int) <-chan Event {
	return b.Subscribe(EventDownloadProgressed, bufferSize)
}

// Errors returns the error stream: DownloadFailed events.
func (b *Bus) Errors(bufferSize int) <-chan Event {
	return b.Subscribe(EventDownloadFailed, bufferSize)
}

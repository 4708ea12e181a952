package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/vmunix/vidstash/internal/asset"
	"github.com/vmunix/vidstash/pkg/title"
)

// ErrLoadFailed is returned by Load when the catalog could not be shown.
var ErrLoadFailed = errors.New("catalog load failed")

// LoadingState of the catalog list.
type LoadingState string

const (
	NotLoaded LoadingState = "not_loaded"
	Loaded    LoadingState = "loaded"
	Failed    LoadingState = "failed"
)

// View is an immutable copy of the list state.
type View struct {
	State   LoadingState
	Videos  asset.List
	Message string // set when State is Failed
	Offline bool   // videos came from the response cache
}

// List is the catalog view-model.
type List struct {
	backend Backend
	log     *slog.Logger

	mu      sync.RWMutex
	state   LoadingState
	videos  asset.List
	message string
	offline bool
}

// NewList creates a catalog list in the NotLoaded state.
func NewList(backend Backend, logger *slog.Logger) *List {
	if logger == nil {
		logger = slog.Default()
	}
	return &List{
		backend: backend,
		log:     logger.With("component", "catalog"),
		state:   NotLoaded,
	}
}

// Load fetches the catalog.
// A 200 with videos moves to Loaded. A 200 whose body did not decode leaves
// the list unchanged. Any other status or a transport failure moves to
// Failed, unless the backend has a cached copy to fall back on.
func (l *List) Load(ctx context.Context) error {
	result, err := l.backend.Videos(ctx)
	if err != nil {
		if l.loadOffline(ctx) {
			l.log.Warn("catalog unreachable, using cached copy", "error", err)
			return nil
		}
		l.fail(err.Error())
		return fmt.Errorf("%w: %w", ErrLoadFailed, err)
	}

	if result.StatusCode != 200 {
		l.fail(result.Message())
		return fmt.Errorf("%w: %s (%d)", ErrLoadFailed, result.Message(), result.StatusCode)
	}
	if result.Payload == nil {
		l.log.Warn("catalog response had no usable payload")
		return nil
	}

	l.mu.Lock()
	l.state = Loaded
	l.videos = *result.Payload
	l.message = ""
	l.offline = false
	l.mu.Unlock()

	l.log.Debug("catalog loaded", "videos", len(*result.Payload))
	return nil
}

func (l *List) loadOffline(ctx context.Context) bool {
	src, ok := l.backend.(OfflineSource)
	if !ok {
		return false
	}
	result, ok := src.CachedVideos(ctx)
	if !ok || result.Payload == nil {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = Loaded
	l.videos = *result.Payload
	l.message = ""
	l.offline = true
	return true
}

func (l *List) fail(message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = Failed
	l.message = message
}

// Snapshot returns the current state.
func (l *List) Snapshot() View {
	l.mu.RLock()
	defer l.mu.RUnlock()
	videos := make(asset.List, len(l.videos))
	copy(videos, l.videos)
	return View{State: l.state, Videos: videos, Message: l.message, Offline: l.offline}
}

// Find returns the loaded video with the given ID.
func (l *List) Find(id string) (asset.Descriptor, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.videos.Find(id)
}

// Search ranks loaded videos by title similarity to query, best first.
// Titles containing every word of the query rank highest.
func (l *List) Search(query string) asset.List {
	l.mu.RLock()
	videos := l.videos
	l.mu.RUnlock()

	titles := make([]string, len(videos))
	for i, v := range videos {
		titles[i] = v.Title
	}

	var out asset.List
	for _, m := range title.Rank(query, titles, title.ConfidenceLow) {
		out = append(out, videos[m.Index])
	}
	return out
}

// Package player holds the per-video view-model: download state, progress
// percentage, alerts and the playback source.
package player

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sync"

	"github.com/vmunix/vidstash/internal/asset"
	"github.com/vmunix/vidstash/internal/catalog"
	"github.com/vmunix/vidstash/internal/events"
)

// Alert titles.
const (
	AlertDownloadFailed = "The video could not be downloaded"
	AlertDeleteFailed   = "The video could not be deleted"
)

// subscriptionBuffer is the session's event buffer. Intermediate progress
// beyond it is dropped; completion and failures are not.
const subscriptionBuffer = 256

// ErrNoVideo is returned by operations that need SetVideo first.
var ErrNoVideo = errors.New("no video selected")

// Storage answers where a video's local copy lives. *asset.Store satisfies it.
type Storage interface {
	Exists(d asset.Descriptor) bool
	PathFor(d asset.Descriptor) (string, error)
}

// Deleter removes local copies. *download.Manager satisfies it.
type Deleter interface {
	DeleteAsset(ctx context.Context, d asset.Descriptor) error
}

// Alert is a user-facing error.
type Alert struct {
	Title   string
	Message string
}

// View is an immutable copy of the session state.
type View struct {
	Video   *asset.Descriptor
	State   asset.DownloadState
	Percent int // 0-99 while downloading; reset to 0 on completion
	Alert   *Alert
}

// Session is the view-model for one player screen. Events are applied
// one at a time, in publish order, by Start.
type Session struct {
	backend catalog.Backend
	storage Storage
	deleter Deleter
	sub     <-chan events.Event
	log     *slog.Logger

	mu      sync.Mutex
	video   *asset.Descriptor
	state   asset.DownloadState
	percent int
	alert   *Alert
}

// NewSession subscribes to the backend's events immediately so nothing
// published before Start is missed.
func NewSession(backend catalog.Backend, storage Storage, deleter Deleter, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	sub := backend.Events().SubscribeTypes(subscriptionBuffer,
		events.EventDownloadProgressed,
		events.EventDownloadFailed,
		events.EventAssetDeleted,
	)
	return &Session{
		backend: backend,
		storage: storage,
		deleter: deleter,
		sub:     sub,
		log:     logger.With("component", "player"),
		state:   asset.NotDownloaded,
	}
}

// Name returns the component name for logging.
func (s *Session) Name() string { return "player" }

// Start applies events until ctx is canceled or the bus closes.
func (s *Session) Start(ctx context.Context) error {
	defer s.backend.Events().Unsubscribe(s.sub)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case e, ok := <-s.sub:
			if !ok {
				return nil
			}
			s.Apply(e)
		}
	}
}

// SetVideo selects the video and derives its state from the store.
func (s *Session) SetVideo(d asset.Descriptor) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.video = &d
	s.percent = 0
	s.state = s.storedState(d)
}

func (s *Session) storedState(d asset.Descriptor) asset.DownloadState {
	if s.storage.Exists(d) {
		return asset.Downloaded
	}
	return asset.NotDownloaded
}

// Source returns the playback location: the local file when downloaded,
// otherwise the remote URL.
func (s *Session) Source() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.video == nil {
		return "", ErrNoVideo
	}
	if s.state != asset.Downloaded {
		return s.video.VideoURL, nil
	}
	p, err := s.storage.PathFor(*s.video)
	if err != nil {
		return "", err
	}
	return "file://" + p, nil
}

// Download requests a background download of the selected video.
func (s *Session) Download() error {
	s.mu.Lock()
	if s.video == nil {
		s.mu.Unlock()
		return ErrNoVideo
	}
	if !s.state.CanTransitionTo(asset.Downloading) {
		s.mu.Unlock()
		return nil
	}
	d := *s.video
	s.setState(asset.Downloading)
	s.mu.Unlock()

	// Outside the lock: a failing backend may publish synchronously.
	s.backend.StartDownload(d)
	return nil
}

// Delete removes the local copy of the selected video. A failure is also
// reported as an alert once its event is applied.
func (s *Session) Delete(ctx context.Context) error {
	s.mu.Lock()
	if s.video == nil {
		s.mu.Unlock()
		return ErrNoVideo
	}
	d := *s.video
	s.mu.Unlock()

	err := s.deleter.DeleteAsset(ctx, d)
	if errors.Is(err, asset.ErrNotFound) {
		err = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.video != nil && s.video.ID == d.ID {
		s.setState(s.storedState(d))
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", d.ID, err)
	}
	return nil
}

// Apply updates the session from one event. Events for other videos are
// ignored.
func (s *Session) Apply(e events.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.video == nil {
		return
	}
	id := s.video.ID

	switch ev := e.(type) {
	case *events.DownloadProgressed:
		if ev.EntityID() != id {
			return
		}
		s.percent = int(math.Floor(ev.Fraction * 100))
		if s.percent >= 100 {
			s.setState(asset.Downloaded)
			s.percent = 0
		} else {
			// Picks up a transfer started before this session.
			s.setState(asset.Downloading)
		}

	case *events.DownloadFailed:
		// Failures not tied to an asset still belong to this screen.
		if ev.EntityID() != "" && ev.EntityID() != id {
			return
		}
		if ev.Op == events.OpDelete {
			s.setState(s.storedState(*s.video))
			s.alert = &Alert{Title: AlertDeleteFailed, Message: ev.Message}
		} else {
			s.setState(asset.NotDownloaded)
			s.percent = 0
			s.alert = &Alert{Title: AlertDownloadFailed, Message: ev.Message}
		}
		s.log.Debug("alert raised", "asset_id", id, "op", ev.Op, "message", ev.Message)

	case *events.AssetDeleted:
		if ev.EntityID() != id {
			return
		}
		s.setState(asset.NotDownloaded)
		s.percent = 0
	}
}

// setState moves to target if the transition table allows it.
// Callers hold s.mu.
func (s *Session) setState(target asset.DownloadState) {
	if s.state == target {
		return
	}
	if !s.state.CanTransitionTo(target) {
		s.log.Debug("state change ignored", "from", s.state, "to", target)
		return
	}
	s.state = target
}

// DismissAlert clears the current alert.
func (s *Session) DismissAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.alert = nil
}

// Snapshot returns the current state.
func (s *Session) Snapshot() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := View{State: s.state, Percent: s.percent}
	if s.video != nil {
		d := *s.video
		v.Video = &d
	}
	if s.alert != nil {
		a := *s.alert
		v.Alert = &a
	}
	return v
}

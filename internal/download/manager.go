package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/vmunix/vidstash/internal/asset"
	"github.com/vmunix/vidstash/internal/events"
	"github.com/vmunix/vidstash/internal/fetch"
)

// DefaultChunkSize is the read size used while streaming a transfer.
const DefaultChunkSize = 32 * 1024

// Storage is the slice of the asset store the manager needs.
// *asset.Store satisfies it.
type Storage interface {
	Exists(d asset.Descriptor) bool
	PathFor(d asset.Descriptor) (string, error)
	CreateTemp() (*os.File, error)
	Finalize(tmpPath string, d asset.Descriptor) error
	Delete(d asset.Descriptor) error
}

// Publisher delivers events to observers. *events.Bus satisfies it.
type Publisher interface {
	Publish(ctx context.Context, e events.Event) error
}

// Option configures a Manager.
type Option func(*Manager)

// WithHistory records every transfer in the given store.
func WithHistory(s *Store) Option {
	return func(m *Manager) { m.history = s }
}

// WithRateLimit caps transfer bandwidth in bytes per second. Zero disables it.
func WithRateLimit(bytesPerSec int) Option {
	return func(m *Manager) { m.rateLimit = bytesPerSec }
}

// WithChunkSize sets the streaming read size.
func WithChunkSize(n int) Option {
	return func(m *Manager) {
		if n > 0 {
			m.chunkSize = n
		}
	}
}

// WithLogger sets the manager's logger.
func WithLogger(log *slog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// transfer is the single active slot.
type transfer struct {
	id    string
	asset asset.Descriptor
	name  string
}

// Manager owns at most one background transfer at a time. Requests made
// while a transfer is active are ignored.
type Manager struct {
	doer      fetch.Doer
	storage   Storage
	bus       Publisher
	history   *Store
	rateLimit int
	chunkSize int
	log       *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	active *transfer
	closed bool
}

// NewManager creates a download manager.
func NewManager(doer fetch.Doer, storage Storage, bus Publisher, opts ...Option) *Manager {
	ctx, cancel := context.WithCancel(context.Background())
	m := &Manager{
		doer:      doer,
		storage:   storage,
		bus:       bus,
		chunkSize: DefaultChunkSize,
		log:       slog.Default(),
		ctx:       ctx,
		cancel:    cancel,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "download")
	return m
}

// StartDownload begins fetching d in the background and returns immediately.
// It reports whether a transfer was started. Nothing happens if the asset is
// already stored or another transfer is active. An unusable video URL is
// reported on the error stream.
func (m *Manager) StartDownload(d asset.Descriptor) bool {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return false
	}
	if m.active != nil {
		m.log.Debug("download ignored", "asset_id", d.ID, "active", m.active.asset.ID, "error", ErrBusy)
		m.mu.Unlock()
		return false
	}

	name, err := d.FileName()
	if err != nil {
		m.mu.Unlock()
		m.log.Warn("download rejected", "asset_id", d.ID, "url", d.VideoURL, "error", err)
		// Publishing may wait on a slow subscriber; never under the lock.
		m.publish(events.NewDownloadFailed(events.OpDownload, d.ID, "", err.Error()))
		return false
	}
	defer m.mu.Unlock()

	if m.storage.Exists(d) {
		m.log.Debug("download skipped, already stored", "asset_id", d.ID, "file", name)
		return false
	}

	t := &transfer{id: uuid.NewString(), asset: d, name: name}
	m.active = t
	m.wg.Add(1)
	go m.run(t)

	m.log.Info("download started", "asset_id", d.ID, "transfer_id", t.id, "file", name)
	return true
}

// Active returns the ID of the asset currently transferring.
func (m *Manager) Active() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return "", false
	}
	return m.active.asset.ID, true
}

// State derives the asset's download state from the active slot and the
// store.
func (m *Manager) State(d asset.Descriptor) asset.DownloadState {
	m.mu.Lock()
	active := m.active != nil && m.active.asset.ID == d.ID
	m.mu.Unlock()

	if active {
		return asset.Downloading
	}
	if m.storage.Exists(d) {
		return asset.Downloaded
	}
	return asset.NotDownloaded
}

// DeleteAsset removes the stored copy of d.
// Returns asset.ErrNotFound without publishing if nothing is stored. Other
// failures are also published on the error stream.
func (m *Manager) DeleteAsset(ctx context.Context, d asset.Descriptor) error {
	name, err := d.FileName()
	if err != nil {
		return err
	}
	if !m.storage.Exists(d) {
		return fmt.Errorf("delete %s: %w", d.ID, asset.ErrNotFound)
	}

	if err := m.storage.Delete(d); err != nil {
		m.log.Error("delete failed", "asset_id", d.ID, "file", name, "error", err)
		m.publishCtx(ctx, events.NewDownloadFailed(events.OpDelete, d.ID, "", err.Error()))
		return err
	}

	m.log.Info("asset deleted", "asset_id", d.ID, "file", name)
	m.publishCtx(ctx, events.NewAssetDeleted(d.ID, name))
	return nil
}

// Wait blocks until the active transfer, if any, has finished.
func (m *Manager) Wait() {
	m.wg.Wait()
}

// Close aborts any active transfer and waits for it to finish.
// Subsequent StartDownload calls are ignored.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()
	return nil
}

func (m *Manager) run(t *transfer) {
	defer m.wg.Done()

	rec := &Transfer{
		ID:            t.id,
		AssetID:       t.asset.ID,
		URL:           t.asset.VideoURL,
		FileName:      t.name,
		BytesExpected: -1,
	}
	recorded := false
	if m.history != nil {
		if err := m.history.Add(rec); err != nil {
			m.log.Warn("record transfer failed", "transfer_id", t.id, "error", err)
		} else {
			recorded = true
		}
	}

	written, expected, err := m.transfer(t)
	rec.BytesWritten = written
	rec.BytesExpected = expected

	// Free the slot before observers hear the outcome so a follow-up
	// request made in response is not ignored.
	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()

	if err != nil {
		m.log.Error("download failed", "asset_id", t.asset.ID, "transfer_id", t.id, "error", err)
		rec.Error = err.Error()
		m.publish(events.NewDownloadFailed(events.OpDownload, t.asset.ID, t.id, err.Error()))
		if recorded {
			m.record(rec, StatusFailed)
		}
		return
	}

	m.log.Info("download completed", "asset_id", t.asset.ID, "transfer_id", t.id, "bytes", written)
	m.publish(events.NewDownloadProgressed(t.asset.ID, t.id, 1.0, written, expected))
	if recorded {
		m.record(rec, StatusCompleted)
	}
}

// transfer streams the asset into a temporary file and moves it into place.
func (m *Manager) transfer(t *transfer) (written, expected int64, err error) {
	req, err := http.NewRequestWithContext(m.ctx, http.MethodGet, t.asset.VideoURL, nil)
	if err != nil {
		return 0, -1, fmt.Errorf("%w: %v", asset.ErrInvalidURL, err)
	}

	resp, err := m.doer.Do(req)
	if err != nil {
		return 0, -1, &fetch.TransportError{URL: t.asset.VideoURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, -1, &StatusError{Code: resp.StatusCode}
	}

	expected = resp.ContentLength
	if expected < 0 {
		expected = -1
	}

	tmp, err := m.storage.CreateTemp()
	if err != nil {
		return 0, expected, err
	}
	tmpPath := tmp.Name()

	written, err = m.stream(t, tmp, resp.Body, expected)
	if cerr := tmp.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("%w: close temp file: %v", asset.ErrStorage, cerr)
	}
	if err != nil {
		_ = os.Remove(tmpPath)
		return written, expected, err
	}

	if err := m.storage.Finalize(tmpPath, t.asset); err != nil {
		return written, expected, err
	}
	return written, expected, nil
}

// stream copies body into w, publishing progress as the permille step
// advances.
func (m *Manager) stream(t *transfer, w io.Writer, body io.Reader, expected int64) (int64, error) {
	reader := newRateLimitedReader(m.ctx, body, newLimiter(m.rateLimit, m.chunkSize))
	p := newProgress(expected)
	buf := make([]byte, m.chunkSize)

	m.publish(events.NewDownloadProgressed(t.asset.ID, t.id, 0, 0, expected))

	for {
		n, rerr := reader.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return p.written, fmt.Errorf("%w: write temp file: %v", asset.ErrStorage, werr)
			}
			if p.add(n) {
				m.publish(events.NewDownloadProgressed(t.asset.ID, t.id, p.fraction(), p.written, expected))
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			if m.ctx.Err() != nil {
				return p.written, fmt.Errorf("download aborted: %w", m.ctx.Err())
			}
			return p.written, &fetch.TransportError{URL: t.asset.VideoURL, Err: rerr}
		}
	}

	if expected >= 0 && p.written < expected {
		return p.written, fmt.Errorf("%w: received %d of %d bytes", ErrIncomplete, p.written, expected)
	}
	return p.written, nil
}

func (m *Manager) record(rec *Transfer, to Status) {
	if err := m.history.Transition(rec, to); err != nil {
		m.log.Warn("record transfer outcome failed", "transfer_id", rec.ID, "error", err)
	}
}

func (m *Manager) publish(e events.Event) {
	m.publishCtx(context.WithoutCancel(m.ctx), e)
}

func (m *Manager) publishCtx(ctx context.Context, e events.Event) {
	if m.bus == nil {
		return
	}
	if err := m.bus.Publish(ctx, e); err != nil {
		m.log.Warn("publish failed", "type", e.EventType(), "error", err)
	}
}

// Package catalog lists the available videos and hands download requests to
// a backend.
package catalog

import (
	"context"

	"github.com/vmunix/vidstash/internal/asset"
	"github.com/vmunix/vidstash/internal/download"
	"github.com/vmunix/vidstash/internal/events"
	"github.com/vmunix/vidstash/internal/fetch"
)

// Backend is what the view-models need from the outside world.
type Backend interface {
	// Videos fetches the catalog. HTTP-level failures are reported through
	// the result's status code; only transport failures return an error.
	Videos(ctx context.Context) (*fetch.Result[asset.List], error)

	// StartDownload requests a background download. Outcomes arrive on
	// Events.
	StartDownload(d asset.Descriptor)

	// Events is the bus progress and errors are published on.
	Events() *events.Bus
}

// OfflineSource is implemented by backends that can serve the last
// successful catalog without the network.
type OfflineSource interface {
	CachedVideos(ctx context.Context) (*fetch.Result[asset.List], bool)
}

// Remote fetches the catalog over HTTP and downloads through a Manager.
type Remote struct {
	client   *fetch.Client
	endpoint fetch.Endpoint
	manager  *download.Manager
	bus      *events.Bus
}

// NewRemote creates a network-backed catalog.
func NewRemote(client *fetch.Client, endpoint fetch.Endpoint, manager *download.Manager, bus *events.Bus) *Remote {
	return &Remote{client: client, endpoint: endpoint, manager: manager, bus: bus}
}

func (r *Remote) Videos(ctx context.Context) (*fetch.Result[asset.List], error) {
	return fetch.Get[asset.List](ctx, r.client, r.endpoint)
}

func (r *Remote) CachedVideos(ctx context.Context) (*fetch.Result[asset.List], bool) {
	return fetch.Cached[asset.List](ctx, r.client, r.endpoint)
}

func (r *Remote) StartDownload(d asset.Descriptor) {
	r.manager.StartDownload(d)
}

func (r *Remote) Events() *events.Bus {
	return r.bus
}

// Stub serves a fixed result. With DownloadError set, every download
// request fails with that message.
type Stub struct {
	Result        *fetch.Result[asset.List]
	Err           error
	DownloadError string

	bus *events.Bus
}

// NewStub creates a stub backend publishing on bus.
func NewStub(bus *events.Bus, result *fetch.Result[asset.List]) *Stub {
	return &Stub{Result: result, bus: bus}
}

func (s *Stub) Videos(ctx context.Context) (*fetch.Result[asset.List], error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Result, nil
}

func (s *Stub) StartDownload(d asset.Descriptor) {
	if s.DownloadError == "" {
		return
	}
	e := events.NewDownloadFailed(events.OpDownload, d.ID, "", s.DownloadError)
	_ = s.bus.Publish(context.Background(), e)
}

func (s *Stub) Events() *events.Bus {
	return s.bus
}

package fetch

import (
	"context"
	"net/http"

	"github.com/vmunix/vidstash/internal/respcache"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mock_fetch.go -package=mocks

// Doer issues HTTP requests. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Cache stores raw response bodies for offline reads.
// *respcache.Cache satisfies it.
type Cache interface {
	Store(ctx context.Context, key string, body []byte, meta respcache.Metadata) error
	Lookup(ctx context.Context, key string) (*respcache.Entry, bool)
}

package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vmunix/vidstash/internal/asset"
	"github.com/vmunix/vidstash/internal/catalog"
	"github.com/vmunix/vidstash/internal/config"
	"github.com/vmunix/vidstash/internal/download"
	"github.com/vmunix/vidstash/internal/events"
	"github.com/vmunix/vidstash/internal/fetch"
	"github.com/vmunix/vidstash/internal/migrations"
	"github.com/vmunix/vidstash/internal/respcache"
	"github.com/vmunix/vidstash/internal/server"
)

// app holds everything a command needs, wired from config.
type app struct {
	cfg      *config.Config
	log      *slog.Logger
	db       *sql.DB
	eventLog *events.EventLog
	bus      *events.Bus
	assets   *asset.Store
	cache    *respcache.Cache
	client   *fetch.Client
	history  *download.Store
	manager  *download.Manager
	remote   *catalog.Remote
	runner   *server.Runner
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// loadConfig reads the config named by --config, or the discovered one.
// Without either, defaults are used.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		found, err := config.Discover()
		if errors.Is(err, config.ErrNotFound) {
			return config.Default(), nil
		}
		if err != nil {
			return nil, err
		}
		path = found
	}
	return config.Load(path)
}

func openApp(stderr io.Writer) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	level := parseLogLevel(cfg.Log.Level)
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer keeps SQLite from reporting SQLITE_BUSY between the
	// transfer goroutine and the event log.
	db.SetMaxOpenConns(1)
	if err := migrations.Apply(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	assets, err := asset.NewStore(cfg.Storage.Dir)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &app{cfg: cfg, log: logger, db: db, assets: assets}

	a.eventLog = events.NewEventLog(db)
	var persist *events.EventLog
	if cfg.Events.Persist {
		persist = a.eventLog
	}
	a.bus = events.NewBus(persist, logger.With("component", "bus"))

	a.cache = respcache.New(db,
		respcache.WithMaxEntries(cfg.Cache.MaxEntries),
		respcache.WithMaxBytes(cfg.Cache.MaxBytes),
		respcache.WithTTL(cfg.Cache.TTL),
	)

	httpClient := &http.Client{Timeout: cfg.Catalog.Timeout}
	a.client = fetch.NewClient(a.cache, fetch.WithHTTPClient(httpClient), fetch.WithLogger(logger))

	opts := []download.Option{
		download.WithLogger(logger),
		download.WithRateLimit(cfg.Download.RateLimit),
		download.WithChunkSize(cfg.Download.ChunkSize),
	}
	if cfg.Download.HistoryEnabled() {
		a.history = download.NewStore(db)
		opts = append(opts, download.WithHistory(a.history))
	}
	// Transfers have no overall timeout; only the catalog request does.
	a.manager = download.NewManager(&http.Client{}, assets, a.bus, opts...)

	a.remote = catalog.NewRemote(a.client, fetch.Endpoint(cfg.Catalog.Endpoint), a.manager, a.bus)

	a.runner = server.NewRunner(server.Config{
		EventRetention: cfg.Events.Retention,
		Cache:          a.cache,
		Events:         a.eventLog,
		Assets:         assets,
	}, logger)

	return a, nil
}

func (a *app) Close() error {
	_ = a.manager.Close()
	_ = a.bus.Close()
	return a.db.Close()
}

// loadCatalog fetches the catalog, falling back to the cached copy offline.
func (a *app) loadCatalog(ctx context.Context) (*catalog.List, error) {
	list := catalog.NewList(a.remote, a.log)
	if err := list.Load(ctx); err != nil {
		return nil, err
	}
	if list.Snapshot().State != catalog.Loaded {
		return nil, fmt.Errorf("%w: response had no videos", catalog.ErrLoadFailed)
	}
	return list, nil
}

// findVideo loads the catalog and looks up one video by ID.
func (a *app) findVideo(ctx context.Context, id string) (asset.Descriptor, error) {
	list, err := a.loadCatalog(ctx)
	if err != nil {
		return asset.Descriptor{}, err
	}
	d, ok := list.Find(id)
	if !ok {
		return asset.Descriptor{}, fmt.Errorf("video %q not in catalog", id)
	}
	return d, nil
}

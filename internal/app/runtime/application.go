// Package runtime wires configuration, the backend client, stores, and
// services into one application object.
package runtime

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/breez-edu/breez/internal/app/services/catalog"
	"github.com/breez-edu/breez/internal/app/services/dashboard"
	"github.com/breez-edu/breez/internal/app/services/download"
	"github.com/breez-edu/breez/internal/app/services/economy"
	"github.com/breez-edu/breez/internal/app/services/upload"
	"github.com/breez-edu/breez/internal/authstate"
	"github.com/breez-edu/breez/internal/config"
	"github.com/breez-edu/breez/internal/kvstore"
	"github.com/breez-edu/breez/internal/storage"
	"github.com/breez-edu/breez/internal/storage/memory"
	supastore "github.com/breez-edu/breez/internal/storage/supabase"
	"github.com/breez-edu/breez/pkg/logger"
	"github.com/breez-edu/breez/supabase/client"
)

// Stores bundles the persistence interfaces the services consume.
type Stores struct {
	Profiles     storage.ProfileStore
	Categories   storage.CategoryStore
	Resources    storage.ResourceStore
	Downloads    storage.DownloadStore
	Transactions storage.TransactionStore
	Standings    storage.LeaderboardStore
	Achievements storage.AchievementStore
	Settings     storage.SettingsStore
}

// Application owns the wired service graph. Without backend configuration
// it degrades to in-memory stores so local development and tests still
// have a working object graph; auth operations then fail fast.
type Application struct {
	cfg *config.Config
	log *logger.Logger

	client   *client.Client
	realtime *client.RealtimeClient

	Auth      *authstate.Cache
	Catalog   *catalog.Service
	Economy   *economy.Service
	Watcher   *economy.Watcher
	Upload    *upload.Service
	Download  *download.Service
	Dashboard *dashboard.Service
}

// NewApplication loads configuration and wires the default graph.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig wires the graph from an explicit configuration.
func NewWithConfig(cfg *config.Config) (*Application, error) {
	log := logger.New(cfg.Logging)

	app := &Application{cfg: cfg, log: log}

	var (
		stores  Stores
		backend authstate.Backend
		objects upload.ObjectStore
		opener  download.Opener
	)

	if cfg.Supabase.Configured() {
		c, err := client.New(client.Config{URL: cfg.Supabase.URL, APIKey: cfg.Supabase.AnonKey})
		if err != nil {
			return nil, fmt.Errorf("supabase client: %w", err)
		}
		app.client = c
		app.realtime = client.NewRealtimeClient(cfg.Supabase.URL, cfg.Supabase.AnonKey)

		repo := supastore.NewRepository(c)
		stores = Stores{
			Profiles:     repo,
			Categories:   repo,
			Resources:    repo,
			Downloads:    repo,
			Transactions: repo,
			Standings:    repo,
			Achievements: repo,
			Settings:     repo,
		}
		backend = authstate.NewGoTrueBackend(c)

		bucket := c.Storage().From(cfg.Supabase.Bucket)
		objects = upload.NewBucketObjects(bucket)
		app.Watcher = economy.NewWatcher(app.realtime, log.WithField("component", "watcher"))
	} else {
		log.Warn("supabase not configured; using in-memory stores")
		mem := memory.New()
		stores = Stores{
			Profiles:     mem,
			Categories:   mem,
			Resources:    mem,
			Downloads:    mem,
			Transactions: mem,
			Standings:    mem,
			Achievements: mem,
			Settings:     mem,
		}
	}

	local, err := openLocalCache(log)
	if err != nil {
		log.WithError(err).Warn("local cache unavailable; warm start disabled")
	}

	app.Auth = authstate.New(cfg.Supabase, backend, local, log.WithField("component", "authstate"))
	app.Catalog = catalog.New(stores.Categories, stores.Resources, log.WithField("component", "catalog"))
	app.Economy = economy.New(stores.Profiles, stores.Transactions, stores.Standings,
		stores.Achievements, stores.Settings, log.WithField("component", "economy"))
	app.Upload = upload.New(stores.Categories, stores.Resources, objects, log.WithField("component", "upload"))
	app.Download = download.New(stores.Profiles, stores.Downloads, urlResolver(objects), opener, nil,
		log.WithField("component", "download"))
	app.Dashboard = dashboard.New(stores.Profiles, stores.Resources, stores.Downloads,
		stores.Transactions, log.WithField("component", "dashboard"))
	return app, nil
}

// Start restores the auth state and, when configured, connects the
// realtime feed.
func (a *Application) Start(ctx context.Context) error {
	if err := a.Auth.Start(ctx); err != nil && a.cfg.Supabase.Configured() {
		return fmt.Errorf("start auth: %w", err)
	}
	if a.realtime != nil {
		if err := a.realtime.Connect(ctx); err != nil {
			// Live updates are an enhancement; queries still work.
			a.log.WithError(err).Warn("realtime connect failed")
		}
	}
	a.log.Info("application started")
	return nil
}

// Close releases the auth subscription and the realtime connection.
func (a *Application) Close(ctx context.Context) {
	if a.Watcher != nil {
		a.Watcher.Close(ctx)
	}
	if a.realtime != nil {
		if err := a.realtime.Disconnect(); err != nil {
			a.log.WithError(err).Warn("realtime disconnect")
		}
	}
	a.Auth.Close()
	a.log.Info("application stopped")
}

// urlResolver adapts the object store to the download service surface.
// A nil store resolves nothing.
func urlResolver(objects upload.ObjectStore) download.URLResolver {
	if objects == nil {
		return nil
	}
	return objects
}

func openLocalCache(log *logger.Logger) (kvstore.Store, error) {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "breez", "state.json")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	store, err := kvstore.OpenFile(path)
	if err != nil {
		return nil, err
	}
	log.WithField("path", path).Debug("local cache opened")
	return store, nil
}

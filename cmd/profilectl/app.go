package main

import (
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/janisto/profile-sync/internal/cache"
	"github.com/janisto/profile-sync/internal/platform/config"
	applog "github.com/janisto/profile-sync/internal/platform/logging"
	"github.com/janisto/profile-sync/internal/profileapi"
	"github.com/janisto/profile-sync/internal/state"
)

// app is the client wiring shared by every command.
type app struct {
	container *state.Container
	cache     *cache.ProfileCache
	store     cache.Store
	logger    *zap.Logger
}

func openApp(cfg config.Client) (*app, error) {
	if err := applog.Init(applog.Options{Level: cfg.LogLevel, OutputPaths: []string{"stderr"}}); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger := applog.Logger().With(zap.String("component", "profilectl"))

	var store cache.Store
	if cfg.CachePath == config.CacheInMemory {
		store = cache.NewMemoryStore()
	} else {
		sqlite, err := cache.OpenSQLite(cfg.CachePath)
		if err != nil {
			return nil, fmt.Errorf("open profile cache: %w", err)
		}
		store = sqlite
	}

	client := profileapi.NewClient(
		&http.Client{Timeout: cfg.HTTPTimeout},
		profileapi.WithBaseURL(cfg.APIURL),
		profileapi.WithUserAgent("profilectl"),
	)
	return &app{
		container: state.New(client, state.WithLogger(logger)),
		cache:     cache.NewProfileCache(store),
		store:     store,
		logger:    logger,
	}, nil
}

// Close stops in-flight requests and releases the cache.
func (a *app) Close() error {
	if a == nil {
		return nil
	}
	a.container.Close()
	if err := a.store.Close(); err != nil {
		return fmt.Errorf("close profile cache: %w", err)
	}
	return nil
}

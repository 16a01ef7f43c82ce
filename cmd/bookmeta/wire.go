package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/use-agent/bookmeta/api/handler"
	"github.com/use-agent/bookmeta/cache"
	"github.com/use-agent/bookmeta/catalog"
	"github.com/use-agent/bookmeta/config"
	"github.com/use-agent/bookmeta/engine"
	"github.com/use-agent/bookmeta/scraper"
)

// app holds everything built from the configuration. close releases the
// browser and cache connections.
type app struct {
	client *catalog.Client
	stats  handler.PoolStatsFunc
	close  func()
}

func buildApp(ctx context.Context, cfg *config.Config) (*app, error) {
	var closers []func()
	a := &app{}
	a.close = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// Covers are always plain downloads.
	httpEngine := engine.NewHTTPEngine(cfg.Fetch.Proxy)

	var pages engine.Engine
	switch cfg.Fetch.Mode {
	case config.FetchModeHTTP, "":
		pages = httpEngine
	case config.FetchModeBrowser:
		eph := scraper.NewEphemeral(cfg.Browser, cfg.Fetch.Proxy)
		pages = engine.NewRodEngine(config.FetchModeBrowser, eph.Fetch)
	case config.FetchModeSharedBrowser:
		b, err := scraper.NewBrowser(cfg.Browser, cfg.Fetch.Proxy)
		if err != nil {
			return nil, fmt.Errorf("start shared browser: %w", err)
		}
		closers = append(closers, b.Close)
		pages = engine.NewRodEngine(config.FetchModeSharedBrowser, b.Fetch)
		a.stats = b.Stats
	default:
		return nil, fmt.Errorf("unknown fetch mode %q", cfg.Fetch.Mode)
	}

	var store cache.Store
	switch {
	case cfg.Cache.RedisURL != "":
		r, err := cache.NewRedis(ctx, cfg.Cache.RedisURL, cfg.Cache.TTL)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		closers = append(closers, func() { _ = r.Close() })
		store = r
		slog.Info("cache: redis", "ttl", cfg.Cache.TTL)
	case cfg.Cache.MaxEntries > 0:
		m := cache.NewMemory(cfg.Cache.MaxEntries, cfg.Cache.TTL)
		closers = append(closers, m.Close)
		store = m
		slog.Info("cache: memory", "max_entries", cfg.Cache.MaxEntries, "ttl", cfg.Cache.TTL)
	default:
		slog.Info("cache: disabled")
	}

	a.client = catalog.NewClient(pages, httpEngine, store, cfg.Catalog, cfg.Fetch.Timeout)
	return a, nil
}

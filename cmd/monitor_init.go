package main

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/rmtwatch/rmtwatch/internal/analyzer"
	"github.com/rmtwatch/rmtwatch/internal/monitor"
	"github.com/rmtwatch/rmtwatch/internal/store"
	anthropicpkg "github.com/rmtwatch/rmtwatch/pkg/anthropic"
	"github.com/rmtwatch/rmtwatch/pkg/places"
	"github.com/rmtwatch/rmtwatch/pkg/registry"
)

// monitorEnv holds the initialized store, clients, and monitor needed by the
// run/export/leaderboard commands.
type monitorEnv struct {
	Store   store.Store
	Monitor *monitor.Monitor
}

// Close releases resources held by the monitor environment.
func (me *monitorEnv) Close() {
	if me.Store != nil {
		_ = me.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		path := cfg.Store.Path
		if path == "" {
			path = "rmtwatch.db"
		}
		return store.NewSQLite(path)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initMonitor sets up the store, all API clients, and builds the Monitor.
// Callers should defer env.Close().
func initMonitor(ctx context.Context) (*monitorEnv, error) {
	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	if cfg.Places.Key == "" {
		_ = st.Close()
		return nil, eris.New("places API key is required (RMTWATCH_PLACES_KEY)")
	}
	if cfg.Anthropic.Key == "" {
		_ = st.Close()
		return nil, eris.New("anthropic API key is required (RMTWATCH_ANTHROPIC_KEY)")
	}

	registryClient := registry.NewClient(cfg.Registry.BaseURL)
	placesClient := places.NewClient(cfg.Places.Key,
		places.WithBaseURL(cfg.Places.BaseURL),
		places.WithRegion(cfg.Places.Region),
		places.WithIncludedTypes(cfg.Places.IncludedTypes),
		places.WithLimits(cfg.Places.ResultsPerQuery, cfg.Places.MinBeforeFallback, cfg.Places.MaxPerLocation),
	)
	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	an := analyzer.New(anthropicClient, cfg.Anthropic.Model, cfg.Anthropic.MaxTokens)

	m := monitor.New(monitor.Config{
		Keywords:                   cfg.Monitor.Keywords,
		NameThreshold:              cfg.Monitor.NameThreshold,
		LocationThreshold:          cfg.Monitor.LocationThreshold,
		MaxProfessionalsPerKeyword: cfg.Monitor.MaxProfessionalsPerKeyword,
		IncrementalProfessionalCap: cfg.Monitor.IncrementalProfessionalCap,
		AnalysisBacklogCap:         cfg.Monitor.AnalysisBacklogCap,
		MinReviewLength:            cfg.Monitor.MinReviewLength,
		APIDelay:                   time.Duration(cfg.Monitor.APIDelayMS) * time.Millisecond,
	}, st, registryClient, placesClient, an)

	return &monitorEnv{Store: st, Monitor: m}, nil
}

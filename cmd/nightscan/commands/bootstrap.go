package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/quantoak/nightscan/internal/beta"
	"github.com/quantoak/nightscan/internal/ensemble"
	"github.com/quantoak/nightscan/internal/external/newswire"
	"github.com/quantoak/nightscan/internal/external/stooq"
	"github.com/quantoak/nightscan/internal/external/yahoo"
	"github.com/quantoak/nightscan/internal/fetcher"
	"github.com/quantoak/nightscan/internal/opportunity"
	"github.com/quantoak/nightscan/internal/pipeline"
	"github.com/quantoak/nightscan/internal/regime"
	"github.com/quantoak/nightscan/internal/report"
	"github.com/quantoak/nightscan/internal/scanner"
	"github.com/quantoak/nightscan/internal/sentiment"
	"github.com/quantoak/nightscan/internal/store"
	"github.com/quantoak/nightscan/internal/universe"
	"github.com/quantoak/nightscan/pkg/config"
	"github.com/quantoak/nightscan/pkg/database"
	"github.com/quantoak/nightscan/pkg/httputil"
	"github.com/quantoak/nightscan/pkg/logger"
	"github.com/quantoak/nightscan/pkg/ratelimit"
	"github.com/quantoak/nightscan/pkg/redis"
)

// app bundles everything a command needs after wiring.
type app struct {
	cfg          *config.Config
	uni          *universe.Config
	log          *logger.Logger
	orchestrator *pipeline.Orchestrator
	writer       *report.Writer
	cycles       *store.Store // nil when persistence is disabled
	closers      []func()
}

func (a *app) close() {
	for _, fn := range a.closers {
		fn()
	}
}

// buildApp loads config, the universe file, and wires the full pipeline.
// Shared across the scan and schedule commands.
func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	strategyPath := cfg.StrategyPath
	if strategyFile != "" {
		strategyPath = strategyFile
	}
	uni, raw, err := universe.Load(strategyPath)
	if err != nil {
		return nil, fmt.Errorf("load universe %s: %w", strategyPath, err)
	}
	hash, err := universe.Hash(uni)
	if err != nil {
		return nil, fmt.Errorf("hash universe: %w", err)
	}
	log.WithFields(map[string]interface{}{
		"strategy": uni.Meta.StrategyID,
		"symbols":  len(uni.Symbols()),
		"bytes":    len(raw),
		"hash":     hash[:12],
	}).Info("Universe loaded")

	a := &app{cfg: cfg, uni: uni, log: log}

	// Shared rate budget: single source of truth across workers and providers.
	budget := ratelimit.New(cfg.Fetcher.CallsPerMinute, cfg.Fetcher.CallsPerDay)

	yahooHTTP := httputil.New(log, cfg.Yahoo.Timeout).
		WithRetry(cfg.Fetcher.ProviderRetries, time.Second).
		WithBudget(budget)
	stooqHTTP := httputil.New(log, cfg.Stooq.Timeout).
		WithRetry(cfg.Fetcher.ProviderRetries, time.Second).
		WithBudget(budget)
	// The newswire is a separate upstream with its own capacity; it does not
	// consume the market-data budget.
	newsHTTP := httputil.New(log, cfg.Newswire.Timeout).
		WithRetry(cfg.Fetcher.ProviderRetries, time.Second)

	redisClient, err := redis.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	a.closers = append(a.closers, func() { redisClient.Close() })

	var shared *redis.Cache
	if redisClient.Enabled() {
		shared = redis.NewCache(redisClient, "nightscan")
		log.Info("Shared cache tier enabled")
	}

	f := fetcher.New(cfg.Fetcher.CacheTTL, shared, log)
	f.Register(yahoo.NewClient(yahooHTTP, cfg.Yahoo.BaseURL, log), fetcher.YahooSymbol)
	f.Register(stooq.NewClient(stooqHTTP, cfg.Stooq.BaseURL, log), fetcher.StooqSymbol)

	feed := newswire.NewClient(newsHTTP, cfg.Newswire.BaseURL, log)

	writer, err := report.NewWriter(cfg.ReportDir, log)
	if err != nil {
		return nil, err
	}
	a.writer = writer

	var cycleStore pipeline.CycleStore
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		a.closers = append(a.closers, db.Close)

		a.cycles = store.New(db, log)
		if err := a.cycles.Migrate(context.Background()); err != nil {
			return nil, err
		}
		cycleStore = a.cycles
		log.Info("Cycle history persistence enabled")
	}

	opts := pipeline.DefaultOptions()
	if cfg.Pipeline.Workers > 0 {
		opts.Workers = cfg.Pipeline.Workers
	}

	a.orchestrator = pipeline.New(
		uni,
		opts,
		f,
		scanner.New(uni, log),
		sentiment.New(feed, log),
		regime.New(f, uni.Regime.Indices, log),
		ensemble.New(ensemble.NewStore(cfg.ModelStoreDir, log), uni.Ensemble, log),
		opportunity.New(uni.Scoring, log),
		beta.New(f, uni.Beta, log),
		writer,
		cycleStore,
		log,
	)

	return a, nil
}

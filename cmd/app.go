package cmd

import (
	"context"
	"fmt"
	"time"

	"catalog-sync/core/config"
	"catalog-sync/core/database"
	"catalog-sync/core/logger"
	"catalog-sync/core/storage"
	"catalog-sync/feature/catalog"
	"catalog-sync/feature/history"
	"catalog-sync/feature/integrity"
	"catalog-sync/feature/integrity/checks"
	"catalog-sync/feature/pricing"
	"catalog-sync/feature/snapshot"
	"catalog-sync/feature/storefront"
	"catalog-sync/feature/supplier"

	"go.uber.org/zap"
)

// app bundles the collaborators shared by the commands.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	history *history.Store
	archive *snapshot.Archive
	storage storage.Client
}

// newApp loads the configuration, builds the logger and connects the
// optional history database and snapshot archive.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	l, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, logger: l}

	if cfg.Database.Enabled {
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		store := history.NewStore(db, l)
		if err := store.Prepare(cfg.Database.AutoMigrate); err != nil {
			return nil, err
		}
		a.history = store
		l.Info("Run history enabled", zap.String("driver", cfg.Database.Driver))
	}

	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, err
		}
		a.storage = client
		a.archive = snapshot.NewArchive(client, cfg.Storage.Bucket, cfg.Storage.RetentionRuns, l)
		l.Info("Snapshot archive enabled", zap.String("bucket", cfg.Storage.Bucket))
	}

	return a, nil
}

// observers returns the enabled run observers.
func (a *app) observers() []catalog.RunObserver {
	var obs []catalog.RunObserver
	if a.history != nil {
		obs = append(obs, a.history)
	}
	if a.archive != nil {
		obs = append(obs, a.archive)
	}
	return obs
}

// integrity builds the setup checks over the enabled collaborators.
func (a *app) integrity() *integrity.Feature {
	var schema checks.SchemaInspector
	if a.history != nil {
		schema = a.history
	}
	var pinger checks.Pinger
	if store, err := storefront.NewClient(a.cfg.Storefront); err == nil {
		pinger = store
	}
	return integrity.NewFeature(a.storage, a.cfg.Storage.Bucket, schema, pinger, a.logger)
}

// source returns the live supplier crawler, or a replay of an archived run.
func (a *app) source(replayRunID string) (catalog.Source, error) {
	if replayRunID == "" {
		return supplier.NewCrawler(a.cfg.Source.Config, a.logger)
	}
	if a.archive == nil {
		return nil, fmt.Errorf("replay needs the snapshot archive (storage.enabled)")
	}
	return snapshot.NewReplaySource(a.archive, replayRunID), nil
}

// orchestrator wires a run over source.
func (a *app) orchestrator(source catalog.Source, sync catalog.Config, dryRun bool) (*catalog.Orchestrator, error) {
	pricer, err := pricing.NewFromConfig(a.cfg.Pricing)
	if err != nil {
		return nil, err
	}

	store, err := storefront.NewClient(a.cfg.Storefront)
	if err != nil {
		return nil, err
	}

	mc, err := sync.MutatorConfig()
	if err != nil {
		return nil, err
	}

	mutator := catalog.NewMutator(store, pricer, mc)
	opts := sync.Options(dryRun, storefront.IsRetryable)

	return catalog.NewOrchestrator(source, store, mutator, a.logger, opts, a.observers()...), nil
}

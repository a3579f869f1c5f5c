package catalog

import (
	"errors"
	"fmt"
	"time"

	"catalog-sync/core/reconcile"
)

// MaxConcurrency is the largest accepted worker count.
const MaxConcurrency = 16

// Config holds the sync policy.
type Config struct {
	// StockIfAvailable is the stock written for in-stock products.
	StockIfAvailable int `mapstructure:"stock_if_available" default:"10"`
	// Retries is the number of extra attempts for a failed product action.
	Retries int `mapstructure:"retries" default:"0"`
	// RetryBackoff is the delay before the first retry.
	RetryBackoff time.Duration `mapstructure:"retry_backoff" default:"1s"`
	// Concurrency is the number of parallel product writers per category.
	Concurrency int `mapstructure:"concurrency" default:"1"`
	// CallTimeout bounds each storefront write.
	CallTimeout time.Duration `mapstructure:"call_timeout" default:"30s"`
	// UpdateMedia is the update media policy: never, always or changed.
	UpdateMedia string `mapstructure:"update_media" default:"never"`
	// CrossCategoryMatch updates products found under another category instead of creating them.
	CrossCategoryMatch bool `mapstructure:"cross_category_match" default:"true"`
	// ArchiveUnresolved archives store-wide orphans for categories missing in the store.
	ArchiveUnresolved bool `mapstructure:"archive_unresolved" default:"false"`
	// SnapshotTTL bounds reuse of a storefront listing within a run. Zero reuses it for the run.
	SnapshotTTL time.Duration `mapstructure:"snapshot_ttl" default:"0s"`
}

// Validate checks the policy values.
func (c Config) Validate() error {
	var errs []error
	if c.StockIfAvailable <= 0 {
		errs = append(errs, fmt.Errorf("stock_if_available must be positive, got %d", c.StockIfAvailable))
	}
	if c.Retries < 0 {
		errs = append(errs, fmt.Errorf("retries must not be negative, got %d", c.Retries))
	}
	if c.Concurrency < 1 || c.Concurrency > MaxConcurrency {
		errs = append(errs, fmt.Errorf("concurrency must be between 1 and %d, got %d", MaxConcurrency, c.Concurrency))
	}
	if _, err := ParseMediaPolicy(c.UpdateMedia); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// MutatorConfig returns the write policy.
func (c Config) MutatorConfig() (MutatorConfig, error) {
	media, err := ParseMediaPolicy(c.UpdateMedia)
	if err != nil {
		return MutatorConfig{}, err
	}
	return MutatorConfig{StockIfAvailable: c.StockIfAvailable, Media: media}, nil
}

// Options returns the orchestrator options. shouldRetry classifies errors
// worth another attempt.
func (c Config) Options(dryRun bool, shouldRetry func(error) bool) Options {
	return Options{
		Apply: reconcile.ApplyOptions{
			DryRun:       dryRun,
			Concurrency:  c.Concurrency,
			Retries:      c.Retries,
			RetryBackoff: c.RetryBackoff,
			ShouldRetry:  shouldRetry,
			CallTimeout:  c.CallTimeout,
		},
		CrossCategoryMatch: c.CrossCategoryMatch,
		ArchiveUnresolved:  c.ArchiveUnresolved,
		SnapshotTTL:        c.SnapshotTTL,
	}
}

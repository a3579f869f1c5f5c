package catalog

import (
	"context"

	"catalog-sync/feature/storefront"
)

// Source yields product records from the supplier.
// Implementations hold one session and are not safe for concurrent use.
type Source interface {
	// Login opens the supplier session. An error aborts the run.
	Login(ctx context.Context) error

	// ScrapeCategory returns the category name and products listed at url.
	// A malformed product is skipped, not reported as an error.
	ScrapeCategory(ctx context.Context, url string) (string, []ProductRecord, error)

	// Close releases the session.
	Close() error
}

// Storefront is the subset of the store API the reconciliation needs.
type Storefront interface {
	FindCategoryID(ctx context.Context, name string) (int64, error)
	ListProducts(ctx context.Context, categoryID int64) (map[string]storefront.Product, error)
	FindBySKU(ctx context.Context, sku string) (*storefront.Product, bool, error)
	CreateProduct(ctx context.Context, payload storefront.ProductPayload) (*storefront.Product, error)
	UpdateProduct(ctx context.Context, id int64, payload storefront.ProductPayload) (*storefront.Product, error)
}

// RunObserver is notified as a run progresses. Errors are logged by the
// orchestrator and never fail the run.
type RunObserver interface {
	RunStarted(ctx context.Context, run *RunSummary) error
	CategoryScraped(ctx context.Context, runID string, res *CategorySyncResult, records []ProductRecord) error
	CategoryFinished(ctx context.Context, runID string, res *CategorySyncResult) error
	RunFinished(ctx context.Context, run *RunSummary) error
}

// NopObserver implements RunObserver with no-ops. Embed it to observe a subset of events.
type NopObserver struct{}

func (NopObserver) RunStarted(context.Context, *RunSummary) error { return nil }

func (NopObserver) CategoryScraped(context.Context, string, *CategorySyncResult, []ProductRecord) error {
	return nil
}

func (NopObserver) CategoryFinished(context.Context, string, *CategorySyncResult) error { return nil }

func (NopObserver) RunFinished(context.Context, *RunSummary) error { return nil }

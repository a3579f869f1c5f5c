package catalog

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"catalog-sync/core/reconcile"
	"catalog-sync/feature/storefront"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// storeScope is the snapshot scope of the whole store.
const storeScope = ""

// Options controls a run.
type Options struct {
	// Apply is passed to the sync driver for every category.
	Apply reconcile.ApplyOptions

	// CrossCategoryMatch updates products that already exist under another
	// category instead of creating duplicates.
	CrossCategoryMatch bool

	// ArchiveUnresolved archives orphans of the store-wide listing when the
	// category could not be resolved.
	ArchiveUnresolved bool

	// SnapshotTTL bounds how long a listing is reused within a run. Zero reuses
	// it for the whole run.
	SnapshotTTL time.Duration
}

// Orchestrator runs the reconciliation over a list of category URLs.
type Orchestrator struct {
	source    Source
	store     Storefront
	mutator   *Mutator
	observers []RunObserver
	logger    *zap.Logger
	opts      Options
}

// NewOrchestrator creates an orchestrator.
func NewOrchestrator(source Source, store Storefront, mutator *Mutator, logger *zap.Logger, opts Options, observers ...RunObserver) *Orchestrator {
	return &Orchestrator{
		source:    source,
		store:     store,
		mutator:   mutator,
		observers: observers,
		logger:    logger,
		opts:      opts,
	}
}

// Run logs into the source and reconciles every URL in order.
// It returns an error wrapping ErrLoginFailed when the login fails; every
// other failure is reported in the summary.
func (o *Orchestrator) Run(ctx context.Context, urls []string) (*RunSummary, error) {
	summary := &RunSummary{
		ID:        uuid.NewString(),
		DryRun:    o.opts.Apply.DryRun,
		StartedAt: time.Now(),
	}
	log := o.logger.With(zap.String("run_id", summary.ID))
	log.Info("Starting sync run", zap.Int("categories", len(urls)), zap.Bool("dry_run", summary.DryRun))
	o.notify(log, "run_started", func(obs RunObserver) error { return obs.RunStarted(ctx, summary) })

	if err := o.source.Login(ctx); err != nil {
		summary.LoginFailed = true
		summary.FinishedAt = time.Now()
		log.Error("Supplier login failed", zap.Error(err))
		o.notify(log, "run_finished", func(obs RunObserver) error { return obs.RunFinished(ctx, summary) })
		return summary, fmt.Errorf("%w: %v", ErrLoginFailed, err)
	}

	snapshots := reconcile.NewSnapshotCache(o.loadScope, o.opts.SnapshotTTL)
	mutator := o.mutator.WithWriteHook(func(p storefront.Product) {
		snapshots.Put(storeScope, p.SKU, p)
		for _, c := range p.Categories {
			snapshots.Put(scopeOf(c.ID), p.SKU, p)
		}
	})

	for _, url := range urls {
		res := o.syncCategory(ctx, log, summary.ID, url, snapshots, mutator)
		summary.Add(res)
		o.notify(log, "category_finished", func(obs RunObserver) error { return obs.CategoryFinished(ctx, summary.ID, &res) })
	}

	summary.FinishedAt = time.Now()
	log.Info("Sync run finished",
		zap.Int("categories", len(summary.Categories)),
		zap.Int("skipped", summary.Skipped),
		zap.Int("scraped", summary.Scraped),
		zap.Int("created", summary.Created),
		zap.Int("updated", summary.Updated),
		zap.Int("archived", summary.Archived),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.FinishedAt.Sub(summary.StartedAt)),
	)
	o.notify(log, "run_finished", func(obs RunObserver) error { return obs.RunFinished(ctx, summary) })

	return summary, nil
}

func (o *Orchestrator) syncCategory(ctx context.Context, log *zap.Logger, runID, url string, snapshots *reconcile.SnapshotCache[storefront.Product], mutator *Mutator) (res CategorySyncResult) {
	res = CategorySyncResult{URL: url, StartedAt: time.Now()}
	log = log.With(zap.String("category_url", url))
	defer func() { res.FinishedAt = time.Now() }()

	if err := ctx.Err(); err != nil {
		res.fail(CategoryFailed, err)
		log.Warn("Category not processed", zap.Error(err))
		return res
	}

	name, scraped, err := o.source.ScrapeCategory(ctx, url)
	if err != nil {
		res.fail(CategoryFailed, fmt.Errorf("scraping category: %w", err))
		log.Error("Failed to scrape category", zap.Error(err))
		return res
	}

	records, dropped := Sanitize(scraped)
	res.CategoryName = name
	res.Scraped = len(scraped)
	res.Dropped = dropped
	log = log.With(zap.String("category", name))
	if dropped > 0 {
		log.Warn("Dropped records without SKU", zap.Int("dropped", dropped))
	}

	o.notify(log, "category_scraped", func(obs RunObserver) error { return obs.CategoryScraped(ctx, runID, &res, records) })

	if len(records) == 0 {
		res.fail(CategorySkipped, ErrNoRecords)
		log.Warn("Skipping category without products")
		return res
	}

	scope := storeScope
	id, err := o.store.FindCategoryID(ctx, name)
	switch {
	case err == nil:
		res.CategoryID = &id
		scope = scopeOf(id)
		for i := range records {
			records[i].CategoryIDs = []int64{id}
		}
	case errors.Is(err, storefront.ErrCategoryNotFound):
		log.Warn("Category not found in store, matching against the whole store")
	default:
		res.fail(CategoryFailed, fmt.Errorf("resolving category %q: %w", name, err))
		log.Error("Failed to resolve category", zap.Error(err))
		return res
	}

	existing, err := snapshots.Get(ctx, scope)
	if err != nil {
		res.fail(CategoryFailed, fmt.Errorf("listing existing products: %w", err))
		log.Error("Failed to list existing products", zap.Error(err))
		return res
	}

	plan := reconcile.Diff(records, existing, ProductRecord.Key)

	if res.CategoryID != nil && o.opts.CrossCategoryMatch {
		index, err := snapshots.Get(ctx, storeScope)
		if err != nil {
			log.Warn("Store-wide listing failed, skipping cross-category match", zap.Error(err))
		} else {
			res.Promoted = plan.Promote(index)
		}
	}
	if res.CategoryID == nil && !o.opts.ArchiveUnresolved {
		res.ArchivesSuppressed = plan.DropArchives()
	}

	summary := plan.Summary()
	res.Duplicates = summary.Duplicates
	log.Info("Planned category sync",
		zap.Int("creates", summary.Creates),
		zap.Int("updates", summary.Updates),
		zap.Int("archives", summary.Archives),
		zap.Int("existing", summary.Existing),
		zap.Int("duplicates", summary.Duplicates),
		zap.Int("promoted", res.Promoted),
	)

	var mu sync.Mutex
	applyOpts := o.opts.Apply
	onOutcome := applyOpts.OnOutcome
	applyOpts.OnOutcome = func(out reconcile.Outcome) {
		if !out.OK() {
			log.Warn("Item sync failed",
				zap.String("sku", out.Key),
				zap.String("action", string(out.Type)),
				zap.Int("attempts", out.Attempts),
				zap.Error(out.Err),
			)
			mu.Lock()
			res.Failures = append(res.Failures, ItemFailure{
				SKU:      out.Key,
				Action:   string(out.Type),
				Attempts: out.Attempts,
				Error:    out.Err.Error(),
			})
			mu.Unlock()
		}
		if onOutcome != nil {
			onOutcome(out)
		}
	}

	result := reconcile.Apply(ctx, plan.Actions(), mutator, applyOpts)
	res.Created = result.Created
	res.Updated = result.Updated
	res.Archived = result.Archived
	res.Failed = result.Failed
	res.Status = CategoryOK

	log.Info("Category synced",
		zap.Int("scraped", res.Scraped),
		zap.Int("created", res.Created),
		zap.Int("updated", res.Updated),
		zap.Int("archived", res.Archived),
		zap.Int("failed", res.Failed),
		zap.Bool("degraded", res.Degraded()),
	)
	return res
}

func (o *Orchestrator) loadScope(ctx context.Context, scope string) (map[string]storefront.Product, error) {
	var id int64
	if scope != storeScope {
		parsed, err := strconv.ParseInt(scope, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid snapshot scope %q: %w", scope, err)
		}
		id = parsed
	}
	return o.store.ListProducts(ctx, id)
}

func (o *Orchestrator) notify(log *zap.Logger, event string, fn func(RunObserver) error) {
	for _, obs := range o.observers {
		if err := fn(obs); err != nil {
			log.Warn("Run observer failed", zap.String("event", event), zap.Error(err))
		}
	}
}

func (r *CategorySyncResult) fail(status CategoryStatus, err error) {
	r.Status = status
	r.Error = err.Error()
}

func scopeOf(categoryID int64) string {
	return strconv.FormatInt(categoryID, 10)
}

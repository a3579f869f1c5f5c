package catalog_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"catalog-sync/core/reconcile"
	"catalog-sync/feature/catalog"
	catalogmocks "catalog-sync/feature/catalog/mocks"
	"catalog-sync/feature/storefront"
	"catalog-sync/feature/storefront/mocks"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingObserver struct {
	mu       sync.Mutex
	events   []string
	scraped  map[string]int
	finished *catalog.RunSummary
	err      error
}

func (r *recordingObserver) add(event string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return r.err
}

func (r *recordingObserver) RunStarted(ctx context.Context, run *catalog.RunSummary) error {
	return r.add("run_started")
}

func (r *recordingObserver) CategoryScraped(ctx context.Context, runID string, res *catalog.CategorySyncResult, records []catalog.ProductRecord) error {
	r.mu.Lock()
	if r.scraped == nil {
		r.scraped = make(map[string]int)
	}
	r.scraped[res.URL] = len(records)
	r.mu.Unlock()
	return r.add("category_scraped")
}

func (r *recordingObserver) CategoryFinished(ctx context.Context, runID string, res *catalog.CategorySyncResult) error {
	return r.add("category_finished:" + string(res.Status))
}

func (r *recordingObserver) RunFinished(ctx context.Context, run *catalog.RunSummary) error {
	r.mu.Lock()
	r.finished = run
	r.mu.Unlock()
	return r.add("run_finished")
}

func rec(sku string, net int64, inStock bool) catalog.ProductRecord {
	return catalog.ProductRecord{SKU: sku, Name: "Product " + sku, NetPrice: decimal.NewFromInt(net), InStock: inStock}
}

func newOrchestrator(t *testing.T, source catalog.Source, store catalog.Storefront, opts catalog.Options, observers ...catalog.RunObserver) *catalog.Orchestrator {
	t.Helper()
	m := catalog.NewMutator(store, newPricer(t), catalog.MutatorConfig{StockIfAvailable: 10})
	return catalog.NewOrchestrator(source, store, m, zap.NewNop(), opts, observers...)
}

func skuIs(sku string) interface{} {
	return mock.MatchedBy(func(p storefront.ProductPayload) bool { return p.SKU == sku })
}

func TestOrchestrator_LoginFailureIsFatal(t *testing.T) {
	source := new(catalogmocks.Source)
	store := new(mocks.Storefront)
	obs := &recordingObserver{}

	source.On("Login", mock.Anything).Return(errors.New("bad credentials"))

	summary, err := newOrchestrator(t, source, store, catalog.Options{}, obs).Run(context.Background(), []string{"https://supplier/cat/1"})

	require.Error(t, err)
	assert.ErrorIs(t, err, catalog.ErrLoginFailed)
	assert.Contains(t, err.Error(), "bad credentials")
	require.NotNil(t, summary)
	assert.True(t, summary.LoginFailed)
	assert.Empty(t, summary.Categories)
	assert.Equal(t, []string{"run_started", "run_finished"}, obs.events)
	source.AssertNotCalled(t, "ScrapeCategory", mock.Anything, mock.Anything)
}

func TestOrchestrator_ReconcilesResolvedCategory(t *testing.T) {
	source := new(catalogmocks.Source)
	store := new(mocks.Storefront)
	obs := &recordingObserver{}
	url := "https://supplier/cat/notebooks"

	source.On("Login", mock.Anything).Return(nil)
	source.On("ScrapeCategory", mock.Anything, url).Return("Notebooks", []catalog.ProductRecord{
		rec("A", 100, true),
		rec("B", 50, false),
		{SKU: "", Name: "broken"},
	}, nil)

	store.On("FindCategoryID", mock.Anything, "Notebooks").Return(int64(7), nil)
	store.On("ListProducts", mock.Anything, int64(7)).Return(map[string]storefront.Product{
		"B": {ID: 2, SKU: "B", Status: storefront.StatusPublish},
		"C": {ID: 3, SKU: "C", Status: storefront.StatusPublish, StockQuantity: new(int)},
	}, nil).Once()

	store.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p storefront.ProductPayload) bool {
		return p.SKU == "A" && p.RegularPrice == "159" && len(p.Categories) == 1 && p.Categories[0].ID == 7
	})).Return(&storefront.Product{ID: 1, SKU: "A"}, nil).Once()
	store.On("UpdateProduct", mock.Anything, int64(2), mock.MatchedBy(func(p storefront.ProductPayload) bool {
		return p.Status == storefront.StatusDraft && *p.StockQuantity == 0 && p.Categories == nil
	})).Return(&storefront.Product{ID: 2, SKU: "B"}, nil).Once()
	store.On("UpdateProduct", mock.Anything, int64(3), catalog.ArchivePayload()).Return(&storefront.Product{ID: 3, SKU: "C"}, nil).Once()

	summary, err := newOrchestrator(t, source, store, catalog.Options{}, obs).Run(context.Background(), []string{url})
	require.NoError(t, err)

	require.Len(t, summary.Categories, 1)
	res := summary.Categories[0]
	assert.Equal(t, catalog.CategoryOK, res.Status)
	assert.Equal(t, "Notebooks", res.CategoryName)
	require.NotNil(t, res.CategoryID)
	assert.Equal(t, int64(7), *res.CategoryID)
	assert.Equal(t, 3, res.Scraped)
	assert.Equal(t, 1, res.Dropped)
	assert.Equal(t, 1, res.Created)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Archived)
	assert.Equal(t, 0, res.Failed)
	assert.False(t, res.FinishedAt.IsZero())

	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Archived)
	assert.NotEmpty(t, summary.ID)

	assert.Equal(t, []string{"run_started", "category_scraped", "category_finished:ok", "run_finished"}, obs.events)
	assert.Equal(t, 2, obs.scraped[url])
	assert.Same(t, summary, obs.finished)

	store.AssertExpectations(t)
}

func TestOrchestrator_CategoryFailuresDoNotAbort(t *testing.T) {
	source := new(catalogmocks.Source)
	store := new(mocks.Storefront)

	source.On("Login", mock.Anything).Return(nil)
	source.On("ScrapeCategory", mock.Anything, "u1").Return("", nil, errors.New("timeout"))
	source.On("ScrapeCategory", mock.Anything, "u2").Return("Empty", []catalog.ProductRecord{}, nil)
	source.On("ScrapeCategory", mock.Anything, "u3").Return("Broken", []catalog.ProductRecord{rec("X", 1, true)}, nil)
	source.On("ScrapeCategory", mock.Anything, "u4").Return("Mice", []catalog.ProductRecord{rec("M", 10, true)}, nil)

	store.On("FindCategoryID", mock.Anything, "Broken").Return(int64(0), errors.New("store down"))
	store.On("FindCategoryID", mock.Anything, "Mice").Return(int64(4), nil)
	store.On("ListProducts", mock.Anything, int64(4)).Return(map[string]storefront.Product{}, nil)
	store.On("CreateProduct", mock.Anything, skuIs("M")).Return(&storefront.Product{ID: 1, SKU: "M"}, nil)

	summary, err := newOrchestrator(t, source, store, catalog.Options{}).Run(context.Background(), []string{"u1", "u2", "u3", "u4"})
	require.NoError(t, err)

	require.Len(t, summary.Categories, 4)
	assert.Equal(t, catalog.CategoryFailed, summary.Categories[0].Status)
	assert.Contains(t, summary.Categories[0].Error, "timeout")
	assert.Equal(t, catalog.CategorySkipped, summary.Categories[1].Status)
	assert.Equal(t, catalog.ErrNoRecords.Error(), summary.Categories[1].Error)
	assert.Equal(t, catalog.CategoryFailed, summary.Categories[2].Status)
	assert.Contains(t, summary.Categories[2].Error, "store down")
	assert.Equal(t, catalog.CategoryOK, summary.Categories[3].Status)

	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 1, summary.Created)
	store.AssertNotCalled(t, "ListProducts", mock.Anything, int64(0))
}

func TestOrchestrator_UnresolvedCategoryUsesWholeStore(t *testing.T) {
	setup := func() (*catalogmocks.Source, *mocks.Storefront) {
		source := new(catalogmocks.Source)
		store := new(mocks.Storefront)

		source.On("Login", mock.Anything).Return(nil)
		source.On("ScrapeCategory", mock.Anything, "u1").Return("Gadgets", []catalog.ProductRecord{rec("A", 10, true), rec("B", 10, true)}, nil)

		store.On("FindCategoryID", mock.Anything, "Gadgets").Return(int64(0), storefront.ErrCategoryNotFound)
		store.On("ListProducts", mock.Anything, int64(0)).Return(map[string]storefront.Product{
			"B":     {ID: 2, SKU: "B"},
			"OTHER": {ID: 9, SKU: "OTHER", Status: storefront.StatusPublish},
		}, nil)
		store.On("CreateProduct", mock.Anything, mock.MatchedBy(func(p storefront.ProductPayload) bool {
			return p.SKU == "A" && p.Categories == nil
		})).Return(&storefront.Product{ID: 1, SKU: "A"}, nil)
		store.On("UpdateProduct", mock.Anything, int64(2), mock.Anything).Return(&storefront.Product{ID: 2, SKU: "B"}, nil)
		return source, store
	}

	t.Run("ArchivesSuppressed", func(t *testing.T) {
		source, store := setup()
		summary, err := newOrchestrator(t, source, store, catalog.Options{}).Run(context.Background(), []string{"u1"})
		require.NoError(t, err)

		res := summary.Categories[0]
		assert.Equal(t, catalog.CategoryOK, res.Status)
		assert.Nil(t, res.CategoryID)
		assert.True(t, res.Degraded())
		assert.Equal(t, 1, res.Created)
		assert.Equal(t, 1, res.Updated)
		assert.Equal(t, 0, res.Archived)
		assert.Equal(t, 1, res.ArchivesSuppressed)
		store.AssertNotCalled(t, "UpdateProduct", mock.Anything, int64(9), mock.Anything)
	})

	t.Run("ArchiveUnresolved", func(t *testing.T) {
		source, store := setup()
		store.On("UpdateProduct", mock.Anything, int64(9), catalog.ArchivePayload()).Return(&storefront.Product{ID: 9, SKU: "OTHER"}, nil)

		summary, err := newOrchestrator(t, source, store, catalog.Options{ArchiveUnresolved: true}).Run(context.Background(), []string{"u1"})
		require.NoError(t, err)

		res := summary.Categories[0]
		assert.Equal(t, 1, res.Archived)
		assert.Equal(t, 0, res.ArchivesSuppressed)
	})
}

func TestOrchestrator_CrossCategoryMatch(t *testing.T) {
	source := new(catalogmocks.Source)
	store := new(mocks.Storefront)

	source.On("Login", mock.Anything).Return(nil)
	source.On("ScrapeCategory", mock.Anything, "u1").Return("Notebooks", []catalog.ProductRecord{rec("A", 10, true), rec("N", 10, true)}, nil)

	store.On("FindCategoryID", mock.Anything, "Notebooks").Return(int64(7), nil)
	store.On("ListProducts", mock.Anything, int64(7)).Return(map[string]storefront.Product{}, nil)
	store.On("ListProducts", mock.Anything, int64(0)).Return(map[string]storefront.Product{
		"A": {ID: 1, SKU: "A", Categories: []storefront.CategoryRef{{ID: 3}}},
	}, nil).Once()
	store.On("UpdateProduct", mock.Anything, int64(1), mock.Anything).Return(&storefront.Product{ID: 1, SKU: "A"}, nil).Once()
	store.On("CreateProduct", mock.Anything, skuIs("N")).Return(&storefront.Product{ID: 2, SKU: "N"}, nil).Once()

	summary, err := newOrchestrator(t, source, store, catalog.Options{CrossCategoryMatch: true}).Run(context.Background(), []string{"u1"})
	require.NoError(t, err)

	res := summary.Categories[0]
	assert.Equal(t, 1, res.Promoted)
	assert.Equal(t, 1, res.Updated)
	assert.Equal(t, 1, res.Created)
	store.AssertNotCalled(t, "CreateProduct", mock.Anything, skuIs("A"))
	store.AssertExpectations(t)
}

func TestOrchestrator_WritesVisibleToLaterCategories(t *testing.T) {
	source := new(catalogmocks.Source)
	store := new(mocks.Storefront)

	source.On("Login", mock.Anything).Return(nil)
	source.On("ScrapeCategory", mock.Anything, "u1").Return("Unknown 1", []catalog.ProductRecord{rec("A", 10, true)}, nil)
	source.On("ScrapeCategory", mock.Anything, "u2").Return("Unknown 2", []catalog.ProductRecord{rec("A", 12, true)}, nil)

	store.On("FindCategoryID", mock.Anything, mock.Anything).Return(int64(0), storefront.ErrCategoryNotFound)
	store.On("ListProducts", mock.Anything, int64(0)).Return(map[string]storefront.Product{}, nil).Once()
	store.On("CreateProduct", mock.Anything, skuIs("A")).Return(&storefront.Product{ID: 1, SKU: "A"}, nil).Once()
	store.On("UpdateProduct", mock.Anything, int64(1), mock.Anything).Return(&storefront.Product{ID: 1, SKU: "A"}, nil).Once()

	summary, err := newOrchestrator(t, source, store, catalog.Options{}).Run(context.Background(), []string{"u1", "u2"})
	require.NoError(t, err)

	assert.Equal(t, 1, summary.Categories[0].Created)
	assert.Equal(t, 1, summary.Categories[1].Updated)
	assert.Equal(t, 0, summary.Categories[1].Created)
	store.AssertExpectations(t)
}

func TestOrchestrator_ItemFailuresAreIsolated(t *testing.T) {
	source := new(catalogmocks.Source)
	store := new(mocks.Storefront)

	records := []catalog.ProductRecord{rec("S1", 1, true), rec("S2", 1, true), rec("S3", 1, true), rec("S4", 1, true), rec("S5", 1, true)}
	source.On("Login", mock.Anything).Return(nil)
	source.On("ScrapeCategory", mock.Anything, "u1").Return("Cat", records, nil)

	store.On("FindCategoryID", mock.Anything, "Cat").Return(int64(1), nil)
	store.On("ListProducts", mock.Anything, int64(1)).Return(map[string]storefront.Product{}, nil)
	store.On("CreateProduct", mock.Anything, skuIs("S2")).Return(nil, &storefront.StatusError{StatusCode: 400, Status: "400 Bad Request"})
	store.On("CreateProduct", mock.Anything, mock.Anything).Return(&storefront.Product{ID: 1}, nil)

	opts := catalog.Options{Apply: reconcile.ApplyOptions{Retries: 2, ShouldRetry: storefront.IsRetryable}}
	summary, err := newOrchestrator(t, source, store, opts).Run(context.Background(), []string{"u1"})
	require.NoError(t, err)

	res := summary.Categories[0]
	assert.Equal(t, 4, res.Created)
	assert.Equal(t, 1, res.Failed)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "S2", res.Failures[0].SKU)
	assert.Equal(t, "create", res.Failures[0].Action)
	assert.Equal(t, 1, res.Failures[0].Attempts)
	store.AssertNumberOfCalls(t, "CreateProduct", 5)
}

func TestOrchestrator_DryRun(t *testing.T) {
	source := new(catalogmocks.Source)
	store := new(mocks.Storefront)

	source.On("Login", mock.Anything).Return(nil)
	source.On("ScrapeCategory", mock.Anything, "u1").Return("Cat", []catalog.ProductRecord{rec("A", 1, true), rec("B", 1, true)}, nil)
	store.On("FindCategoryID", mock.Anything, "Cat").Return(int64(1), nil)
	store.On("ListProducts", mock.Anything, int64(1)).Return(map[string]storefront.Product{
		"B": {ID: 2, SKU: "B"},
		"C": {ID: 3, SKU: "C"},
	}, nil)

	opts := catalog.Options{Apply: reconcile.ApplyOptions{DryRun: true}}
	summary, err := newOrchestrator(t, source, store, opts).Run(context.Background(), []string{"u1"})
	require.NoError(t, err)

	assert.True(t, summary.DryRun)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Archived)
	store.AssertNotCalled(t, "CreateProduct", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "UpdateProduct", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrchestrator_ObserverErrorsAreIgnored(t *testing.T) {
	source := new(catalogmocks.Source)
	store := new(mocks.Storefront)
	obs := &recordingObserver{err: errors.New("db unavailable")}

	source.On("Login", mock.Anything).Return(nil)
	source.On("ScrapeCategory", mock.Anything, "u1").Return("Cat", []catalog.ProductRecord{}, nil)

	summary, err := newOrchestrator(t, source, store, catalog.Options{}, obs, catalog.NopObserver{}).Run(context.Background(), []string{"u1"})
	require.NoError(t, err)
	assert.Len(t, summary.Categories, 1)
	assert.Len(t, obs.events, 4)
}

func TestOrchestrator_CancelledContext(t *testing.T) {
	source := new(catalogmocks.Source)
	store := new(mocks.Storefront)

	ctx, cancel := context.WithCancel(context.Background())
	source.On("Login", mock.Anything).Return(nil).Run(func(mock.Arguments) { cancel() })

	summary, err := newOrchestrator(t, source, store, catalog.Options{}).Run(ctx, []string{"u1", "u2"})
	require.NoError(t, err)

	require.Len(t, summary.Categories, 2)
	for _, res := range summary.Categories {
		assert.Equal(t, catalog.CategoryFailed, res.Status)
		assert.Equal(t, context.Canceled.Error(), res.Error)
	}
	source.AssertNotCalled(t, "ScrapeCategory", mock.Anything, mock.Anything)
}

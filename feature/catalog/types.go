package catalog

import (
	"errors"
	"strings"
	"time"

	"catalog-sync/core/utils"

	"github.com/shopspring/decimal"
)

var (
	// ErrLoginFailed is returned by Run when the supplier rejects the login.
	ErrLoginFailed = errors.New("supplier login failed")

	// ErrNoRecords marks a category whose scrape produced no usable record.
	ErrNoRecords = errors.New("no products scraped")
)

// DefaultMPN is the manufacturer part number used when the supplier shows none.
const DefaultMPN = "N/A"

// ProductRecord is one product as scraped from the supplier.
type ProductRecord struct {
	SKU                    string          `json:"sku"`
	Name                   string          `json:"name"`
	ManufacturerPartNumber string          `json:"mpn"`
	NetPrice               decimal.Decimal `json:"net_price"`
	InStock                bool            `json:"in_stock"`
	ImageURL               string          `json:"image_url,omitempty"`
	Description            string          `json:"description,omitempty"`
	SourceURL              string          `json:"source_url,omitempty"`

	// CategoryIDs is set by the orchestrator once the category is resolved.
	CategoryIDs []int64 `json:"category_ids,omitempty"`
}

// Key returns the join key of the record.
func (r ProductRecord) Key() string {
	return r.SKU
}

// Sanitize normalises scraped records and drops those without a SKU.
// It returns the kept records and the number dropped.
func Sanitize(records []ProductRecord) ([]ProductRecord, int) {
	kept := make([]ProductRecord, 0, len(records))
	for _, r := range records {
		r.SKU = strings.TrimSpace(r.SKU)
		if r.SKU == "" {
			continue
		}
		r.Name = utils.CollapseSpaces(r.Name)
		r.ManufacturerPartNumber = strings.TrimSpace(r.ManufacturerPartNumber)
		if r.ManufacturerPartNumber == "" {
			r.ManufacturerPartNumber = DefaultMPN
		}
		if r.NetPrice.IsNegative() {
			r.NetPrice = decimal.Zero
		}
		kept = append(kept, r)
	}
	return kept, len(records) - len(kept)
}

// CategoryStatus is the final state of one category in a run.
type CategoryStatus string

const (
	CategoryOK      CategoryStatus = "ok"
	CategorySkipped CategoryStatus = "skipped"
	CategoryFailed  CategoryStatus = "failed"
)

// ItemFailure describes one product action that failed.
type ItemFailure struct {
	SKU      string `json:"sku"`
	Action   string `json:"action"`
	Attempts int    `json:"attempts"`
	Error    string `json:"error"`
}

// CategorySyncResult is the outcome of processing one category URL.
type CategorySyncResult struct {
	URL          string         `json:"url"`
	CategoryName string         `json:"category_name"`
	CategoryID   *int64         `json:"category_id"`
	Status       CategoryStatus `json:"status"`
	Error        string         `json:"error,omitempty"`

	Scraped  int `json:"scraped"`
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`

	// Dropped counts records without a SKU, Duplicates records superseded by a
	// later one with the same SKU.
	Dropped    int `json:"dropped"`
	Duplicates int `json:"duplicates"`

	// Promoted counts creates turned into updates because the SKU already
	// exists in another category of the store.
	Promoted int `json:"promoted"`

	// ArchivesSuppressed counts orphans left alone because the category was
	// not resolved.
	ArchivesSuppressed int `json:"archives_suppressed"`

	Failures   []ItemFailure `json:"failures,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
}

// Degraded reports whether the category was processed without a storefront category.
func (r CategorySyncResult) Degraded() bool {
	return r.Status == CategoryOK && r.CategoryID == nil
}

// RunSummary aggregates every category of one run.
type RunSummary struct {
	ID          string               `json:"id"`
	DryRun      bool                 `json:"dry_run"`
	LoginFailed bool                 `json:"login_failed"`
	StartedAt   time.Time            `json:"started_at"`
	FinishedAt  time.Time            `json:"finished_at"`
	Categories  []CategorySyncResult `json:"categories"`

	Scraped  int `json:"scraped"`
	Created  int `json:"created"`
	Updated  int `json:"updated"`
	Archived int `json:"archived"`
	Failed   int `json:"failed"`

	// Skipped counts categories that were skipped or failed.
	Skipped int `json:"skipped"`
}

// Add folds a category result into the run totals.
func (s *RunSummary) Add(res CategorySyncResult) {
	s.Categories = append(s.Categories, res)
	s.Scraped += res.Scraped
	s.Created += res.Created
	s.Updated += res.Updated
	s.Archived += res.Archived
	s.Failed += res.Failed
	if res.Status != CategoryOK {
		s.Skipped++
	}
}

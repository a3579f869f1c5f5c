package history

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"catalog-sync/core/database"
	"catalog-sync/feature/catalog"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrRunNotFound is returned by Get for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// MaxListLimit caps the number of runs List returns.
const MaxListLimit = 200

// Store persists runs and their category results. It observes runs through
// catalog.RunObserver.
type Store struct {
	catalog.NopObserver

	db     *gorm.DB
	logger *zap.Logger
}

var _ catalog.RunObserver = (*Store)(nil)

// NewStore creates a store on db.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Prepare migrates the tables, or only verifies them when autoMigrate is off.
func (s *Store) Prepare(autoMigrate bool) error {
	if autoMigrate {
		if err := s.db.AutoMigrate(&Run{}, &CategoryResult{}); err != nil {
			return fmt.Errorf("migrating history tables: %w", err)
		}
		return nil
	}
	return s.Verify()
}

// Verify checks that the history tables have every column the store writes.
func (s *Store) Verify() error {
	missing, err := s.MissingColumns()
	if err != nil {
		return err
	}
	for _, table := range Tables() {
		if cols := missing[table]; len(cols) > 0 {
			return fmt.Errorf("table %s is missing columns: %s", table, strings.Join(cols, ", "))
		}
	}
	return nil
}

// Tables returns the history table names.
func Tables() []string {
	return []string{Run{}.TableName(), CategoryResult{}.TableName()}
}

// MissingColumns returns, per history table, the columns the database lacks.
// Tables without gaps map to an empty list.
func (s *Store) MissingColumns() (map[string][]string, error) {
	result := make(map[string][]string)
	for _, model := range []any{&Run{}, &CategoryResult{}} {
		stmt := &gorm.Statement{DB: s.db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("parsing history model: %w", err)
		}

		missing, err := database.MissingColumns(s.db, stmt.Schema.Table, stmt.Schema.DBNames...)
		if err != nil {
			return nil, err
		}
		result[stmt.Schema.Table] = missing
	}
	return result, nil
}

// RunStarted records a run as running.
func (s *Store) RunStarted(ctx context.Context, run *catalog.RunSummary) error {
	row := Run{
		ID:        run.ID,
		Status:    StatusRunning,
		DryRun:    run.DryRun,
		StartedAt: run.StartedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("recording run start: %w", err)
	}
	return nil
}

// CategoryFinished records the result of one category.
func (s *Store) CategoryFinished(ctx context.Context, runID string, res *catalog.CategorySyncResult) error {
	row := CategoryResult{
		RunID:              runID,
		URL:                res.URL,
		CategoryName:       res.CategoryName,
		CategoryID:         res.CategoryID,
		Status:             string(res.Status),
		Error:              res.Error,
		Scraped:            res.Scraped,
		Created:            res.Created,
		Updated:            res.Updated,
		Archived:           res.Archived,
		Failed:             res.Failed,
		Dropped:            res.Dropped,
		Duplicates:         res.Duplicates,
		Promoted:           res.Promoted,
		ArchivesSuppressed: res.ArchivesSuppressed,
		StartedAt:          res.StartedAt.UTC(),
		FinishedAt:         res.FinishedAt.UTC(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("recording category %s: %w", res.URL, err)
	}
	return nil
}

// RunFinished stores the run totals and final state.
func (s *Store) RunFinished(ctx context.Context, run *catalog.RunSummary) error {
	status := StatusFinished
	if run.LoginFailed {
		status = StatusLoginFailed
	}
	finished := run.FinishedAt.UTC()

	result := s.db.WithContext(ctx).Model(&Run{}).Where("id = ?", run.ID).Updates(map[string]any{
		"status":      status,
		"finished_at": finished,
		"scraped":     run.Scraped,
		"created":     run.Created,
		"updated":     run.Updated,
		"archived":    run.Archived,
		"failed":      run.Failed,
		"skipped":     run.Skipped,
	})
	if result.Error != nil {
		return fmt.Errorf("recording run end: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("recording run end: %w: %s", ErrRunNotFound, run.ID)
	}
	return nil
}

// List returns the most recent runs without their categories.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 || limit > MaxListLimit {
		limit = MaxListLimit
	}

	var runs []Run
	err := s.db.WithContext(ctx).Order("started_at DESC").Limit(limit).Find(&runs).Error
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	return runs, nil
}

// Get returns one run with its category results in processing order.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	var run Run
	err := s.db.WithContext(ctx).
		Preload("Categories", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&run, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading run %s: %w", id, err)
	}
	return &run, nil
}

// Latest returns the most recent run, or ErrRunNotFound when there is none.
func (s *Store) Latest(ctx context.Context) (*Run, error) {
	runs, err := s.List(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, ErrRunNotFound
	}
	return s.Get(ctx, runs[0].ID)
}


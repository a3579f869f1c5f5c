package integrity

import (
	"context"
	"errors"

	"catalog-sync/core/storage"
	"catalog-sync/feature/integrity/checks"

	"go.uber.org/zap"
)

// ErrStorageDisabled is returned by storage checks when no archive is configured.
var ErrStorageDisabled = errors.New("snapshot archive is disabled")

// Service runs the setup checks. Nil collaborators disable their checks.
type Service struct {
	client storage.Client
	bucket string
	schema checks.SchemaInspector
	store  checks.Pinger
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(client storage.Client, bucket string, schema checks.SchemaInspector, store checks.Pinger, logger *zap.Logger) *Service {
	return &Service{
		client: client,
		bucket: bucket,
		schema: schema,
		store:  store,
		logger: logger,
	}
}

// CheckStructure returns the archive folders missing from the bucket.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	return checks.CheckStructure(ctx, s.client, s.bucket)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.client == nil {
		return ErrStorageDisabled
	}
	return checks.FixStructure(ctx, s.client, s.bucket, s.logger, missing)
}

// CheckDatabase verifies the run history schema.
func (s *Service) CheckDatabase() (*checks.DatabaseReport, error) {
	return checks.CheckDatabase(s.schema)
}

// CheckStorefront probes the storefront API.
func (s *Service) CheckStorefront(ctx context.Context) (checks.StorefrontReport, error) {
	if s.store == nil {
		return checks.StorefrontReport{}, errors.New("storefront is not configured")
	}
	return checks.CheckStorefront(ctx, s.store), nil
}

// CheckAll runs every check and collects the results by name.
func (s *Service) CheckAll(ctx context.Context) map[string]any {
	report := make(map[string]any)

	if missing, err := s.CheckStructure(ctx); err != nil {
		report["storage"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["storage"] = map[string]any{"status": "ok", "missing": missing}
	}

	if db, err := s.CheckDatabase(); err != nil {
		report["database"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["database"] = db
	}

	if sf, err := s.CheckStorefront(ctx); err != nil {
		report["storefront"] = map[string]any{"status": "error", "error": err.Error()}
	} else {
		report["storefront"] = sf
	}

	return report
}

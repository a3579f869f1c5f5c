package integrity

import (
	"catalog-sync/core/storage"
	"catalog-sync/feature/integrity/checks"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the integrity feature.
func NewFeature(client storage.Client, bucket string, schema checks.SchemaInspector, store checks.Pinger, logger *zap.Logger) *Feature {
	svc := NewService(client, bucket, schema, store, logger)
	return &Feature{service: svc, handler: NewHandler(svc)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "integrity"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}

// Service returns the underlying service.
func (f *Feature) Service() *Service {
	return f.service
}

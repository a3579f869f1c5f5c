package integrity

import (
	"catalog-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for integrity checks.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the integrity routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/integrity")
	group.Get("/", h.HandleIntegrityCheck)
	group.Get("/storage", h.HandleStorageCheck)
	group.Get("/database", h.HandleDatabaseCheck)
	group.Get("/storefront", h.HandleStorefrontCheck)
}

// HandleIntegrityCheck runs every check.
// @Summary Run All Integrity Checks
// @Description Checks the archive bucket, the history schema and the storefront API.
// @Tags integrity
// @Produce json
// @Success 200 {object} map[string]interface{} "Combined Report"
// @Router /integrity [get]
func (h *Handler) HandleIntegrityCheck(c *fiber.Ctx) error {
	logger.WithRayID(h.service.logger, c).Info("Triggering all integrity checks")
	return c.JSON(h.service.CheckAll(c.Context()))
}

// HandleStorageCheck checks and optionally fixes the archive layout.
// @Summary Check Archive Storage
// @Description Checks that the snapshot bucket has the snapshots and reports folders. Optionally creates them.
// @Tags integrity
// @Produce json
// @Param fix query boolean false "Create missing folders"
// @Success 200 {object} map[string]interface{} "Storage Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/storage [get]
func (h *Handler) HandleStorageCheck(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)
	fix := c.QueryBool("fix", false)

	missing, err := h.service.CheckStructure(c.Context())
	if err != nil {
		l.Error("Storage check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	if len(missing) > 0 {
		l.Warn("Missing folders detected", zap.Strings("missing", missing))

		if fix {
			if err := h.service.FixStructure(c.Context(), missing); err != nil {
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error":   "Failed to fix structure",
					"details": err.Error(),
					"missing": missing,
				})
			}
			return c.JSON(fiber.Map{
				"status": "fixed",
				"fixed":  missing,
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":  "checked",
		"missing": missing,
	})
}

// HandleDatabaseCheck verifies the history schema.
// @Summary Check History Schema
// @Description Verifies that the run history tables have every column the sync writes.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.DatabaseReport "Database Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/database [get]
func (h *Handler) HandleDatabaseCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckDatabase()
	if err != nil {
		logger.WithRayID(h.service.logger, c).Error("Database check failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

// HandleStorefrontCheck probes the storefront API.
// @Summary Check Storefront
// @Description Probes the WooCommerce REST API with the configured credentials.
// @Tags integrity
// @Produce json
// @Success 200 {object} checks.StorefrontReport "Storefront Report"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /integrity/storefront [get]
func (h *Handler) HandleStorefrontCheck(c *fiber.Ctx) error {
	report, err := h.service.CheckStorefront(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

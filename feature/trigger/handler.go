package trigger

import (
	"errors"

	"catalog-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler exposes the trigger over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes registers the sync routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/sync")
	group.Post("/", h.HandleStartSync)
	group.Get("/status", h.HandleStatus)
}

// HandleStartSync starts a sync run in the background.
// @Summary Start Sync
// @Description Start a full sync run in the background. Only one run executes at a time.
// @Tags sync
// @Produce json
// @Success 202 {object} trigger.Status "Run started"
// @Failure 409 {object} map[string]string "Run already in progress"
// @Failure 503 {object} map[string]string "Shutting down"
// @Router /sync [post]
func (h *Handler) HandleStartSync(c *fiber.Ctx) error {
	l := logger.WithRayID(h.service.logger, c)

	err := h.service.Start()
	if errors.Is(err, ErrRunInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		l.Warn("Sync not started", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	l.Info("Sync run triggered")
	return c.Status(fiber.StatusAccepted).JSON(h.service.Status())
}

// HandleStatus reports whether a run is executing and how the last one ended.
// @Summary Sync Status
// @Description Get the state of the background sync and the summary of the last run.
// @Tags sync
// @Produce json
// @Success 200 {object} trigger.Status "Status"
// @Router /sync/status [get]
func (h *Handler) HandleStatus(c *fiber.Ctx) error {
	return c.JSON(h.service.Status())
}

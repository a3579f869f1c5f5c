package history

import (
	"errors"

	"catalog-sync/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves the run history over HTTP.
type Handler struct {
	store  *Store
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(store *Store, logger *zap.Logger) *Handler {
	return &Handler{store: store, logger: logger}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/runs")
	group.Get("/", h.HandleListRuns)
	group.Get("/latest", h.HandleLatestRun)
	group.Get("/:id", h.HandleGetRun)
}

// HandleListRuns lists the most recent runs.
// @Summary List Runs
// @Description List the most recent sync runs, newest first.
// @Tags runs
// @Produce json
// @Param limit query int false "Maximum number of runs (default 20, max 200)"
// @Success 200 {array} history.Run "Runs"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /runs [get]
func (h *Handler) HandleListRuns(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	runs, err := h.store.List(c.Context(), c.QueryInt("limit", 20))
	if err != nil {
		l.Error("Listing runs failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(runs)
}

// HandleGetRun returns one run with its category results.
// @Summary Get Run
// @Description Get a sync run with the result of every category.
// @Tags runs
// @Produce json
// @Param id path string true "Run ID"
// @Success 200 {object} history.Run "Run"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /runs/{id} [get]
func (h *Handler) HandleGetRun(c *fiber.Ctx) error {
	run, err := h.store.Get(c.Context(), c.Params("id"))
	return h.respond(c, run, err)
}

// HandleLatestRun returns the most recent run.
// @Summary Latest Run
// @Description Get the most recent sync run with its category results.
// @Tags runs
// @Produce json
// @Success 200 {object} history.Run "Run"
// @Failure 404 {object} map[string]string "Not Found"
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /runs/latest [get]
func (h *Handler) HandleLatestRun(c *fiber.Ctx) error {
	run, err := h.store.Latest(c.Context())
	return h.respond(c, run, err)
}

func (h *Handler) respond(c *fiber.Ctx, run *Run, err error) error {
	if errors.Is(err, ErrRunNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Loading run failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(run)
}

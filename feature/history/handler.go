package history

import (
	"errors"

	"mod-builder/core/apperr"
	"mod-builder/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler serves stored job records.
type Handler struct {
	repo   *Repository
	logger *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(repo *Repository, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, logger: logger}
}

// RegisterRoutes registers the history routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/history")
	group.Get("/", h.HandleList)
	group.Get("/:id", h.HandleGet)
}

// HandleList lists recent jobs.
// @Summary List Job History
// @Tags history
// @Produce json
// @Param limit query int false "Maximum records"
// @Success 200 {array} JobRecord
// @Failure 500 {object} map[string]string "Internal Server Error"
// @Router /history [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	recs, err := h.repo.List(c.Context(), c.QueryInt("limit", 50))
	if err != nil {
		logger.WithRayID(h.logger, c).Error("History query failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(recs)
}

// HandleGet returns one stored job.
// @Summary Get Job History
// @Tags history
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} JobRecord
// @Failure 404 {object} map[string]string "Unknown job"
// @Router /history/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	rec, err := h.repo.Get(c.Context(), c.Params("id"))
	if errors.Is(err, apperr.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rec)
}

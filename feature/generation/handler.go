package generation

import (
	"errors"

	"mod-builder/core/apperr"
	"mod-builder/core/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for generation jobs.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterRoutes registers the job and flag routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	jobs := app.Group("/jobs")
	jobs.Post("/", h.HandleSubmit)
	jobs.Get("/", h.HandleList)
	jobs.Post("/validate", h.HandleValidate)
	jobs.Get("/:id", h.HandleGet)
	jobs.Delete("/:id", h.HandleCancel)

	app.Get("/flags", h.HandleFlags)
	app.Post("/flags/reload", h.HandleReloadFlags)
}

// HandleSubmit starts a generation job.
// @Summary Submit Job
// @Description Validates a generation job and runs it in the background.
// @Tags jobs
// @Accept json
// @Produce json
// @Param job body Job true "Job definition"
// @Success 202 {object} Status
// @Failure 400 {object} map[string]string "Invalid job"
// @Router /jobs [post]
func (h *Handler) HandleSubmit(c *fiber.Ctx) error {
	l := logger.WithRayID(h.logger, c)

	var job Job
	if err := c.BodyParser(&job); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid job body"})
	}
	status, err := h.service.Submit(job)
	if err != nil {
		l.Warn("Job rejected", zap.Error(err))
		return h.fail(c, err)
	}
	l.Info("Job accepted", zap.String("job_id", status.ID))
	return c.Status(fiber.StatusAccepted).JSON(status)
}

// HandleList lists known jobs.
// @Summary List Jobs
// @Tags jobs
// @Produce json
// @Success 200 {array} Status
// @Router /jobs [get]
func (h *Handler) HandleList(c *fiber.Ctx) error {
	return c.JSON(h.service.List())
}

// HandleGet returns one job.
// @Summary Get Job
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 200 {object} Status
// @Failure 404 {object} map[string]string "Unknown job"
// @Router /jobs/{id} [get]
func (h *Handler) HandleGet(c *fiber.Ctx) error {
	status, err := h.service.Get(c.Params("id"))
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(status)
}

// HandleCancel cancels a running job.
// @Summary Cancel Job
// @Description Requests cancellation. A job already installing runs to completion.
// @Tags jobs
// @Produce json
// @Param id path string true "Job ID"
// @Success 202 {object} map[string]string
// @Failure 404 {object} map[string]string "Unknown job"
// @Router /jobs/{id} [delete]
func (h *Handler) HandleCancel(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.service.Cancel(id); err != nil {
		return h.fail(c, err)
	}
	logger.WithRayID(h.logger, c).Info("Job cancellation requested", zap.String("job_id", id))
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "cancelling", "id": id})
}

// HandleValidate dry-runs a manifest against a target text.
// @Summary Validate Patch
// @Description Reports which manifest entries would apply to the target without writing.
// @Tags jobs
// @Accept json
// @Produce json
// @Param request body PlanRequest true "Target and manifest"
// @Success 200 {object} kv.Report
// @Failure 400 {object} map[string]string "Invalid request"
// @Router /jobs/validate [post]
func (h *Handler) HandleValidate(c *fiber.Ctx) error {
	var req PlanRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	report, err := h.service.Plan(req)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(report)
}

// HandleFlags returns the current feature flags.
// @Summary Get Flags
// @Tags flags
// @Produce json
// @Success 200 {object} flags.Flags
// @Router /flags [get]
func (h *Handler) HandleFlags(c *fiber.Ctx) error {
	return c.JSON(h.service.Flags(c.Context()))
}

// HandleReloadFlags reloads feature flags from their source.
// @Summary Reload Flags
// @Tags flags
// @Produce json
// @Success 200 {object} flags.Flags
// @Router /flags/reload [post]
func (h *Handler) HandleReloadFlags(c *fiber.Ctx) error {
	return c.JSON(h.service.ReloadFlags(c.Context()))
}

func (h *Handler) fail(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, apperr.ErrValidation):
		code = fiber.StatusBadRequest
	case errors.Is(err, apperr.ErrNotFound):
		code = fiber.StatusNotFound
	}
	return c.Status(code).JSON(fiber.Map{"error": err.Error()})
}

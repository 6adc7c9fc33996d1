package handler

import (
	"errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica/rubrica-api/internal/service"
	"github.com/rubrica/rubrica-api/internal/utils"
)

// ExportHandler serves CSV downloads of assignment and course grades.
type ExportHandler struct {
	service service.ExportService
	logger  zerolog.Logger
}

// NewExportHandler constructs the handler.
func NewExportHandler(service service.ExportService, logger zerolog.Logger) *ExportHandler {
	return &ExportHandler{
		service: service,
		logger:  logger.With().Str("component", "export_handler").Logger(),
	}
}

// Register attaches export endpoints to the router group.
func (h *ExportHandler) Register(router fiber.Router) {
	router.Get("/assignments/:rubricId", h.assignment)
	router.Get("/course", h.course)
}

func (h *ExportHandler) assignment(c *fiber.Ctx) error {
	data, fileName, err := h.service.AssignmentCSV(c.Context(), c.Params("rubricId"))
	if err != nil {
		if errors.Is(err, service.ErrRubricNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "rubric not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("rubric_id", c.Params("rubricId")).Msg("failed to export assignment grades")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export assignment grades")
	}

	return sendCSV(c, fileName, data)
}

func (h *ExportHandler) course(c *fiber.Ctx) error {
	data, fileName, err := h.service.CourseCSV(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export course grades")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export course grades")
	}

	return sendCSV(c, fileName, data)
}

func sendCSV(c *fiber.Ctx, fileName string, data []byte) error {
	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", fileName))
	return c.Send(data)
}

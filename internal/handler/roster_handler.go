package handler

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica/rubrica-api/internal/dto"
	"github.com/rubrica/rubrica-api/internal/models"
	"github.com/rubrica/rubrica-api/internal/service"
	"github.com/rubrica/rubrica-api/internal/utils"
)

// RosterHandler wires roster import, export, and listing endpoints.
type RosterHandler struct {
	service service.RosterService
	logger  zerolog.Logger
}

// NewRosterHandler constructs the handler.
func NewRosterHandler(service service.RosterService, logger zerolog.Logger) *RosterHandler {
	return &RosterHandler{
		service: service,
		logger:  logger.With().Str("component", "roster_handler").Logger(),
	}
}

// Register attaches roster endpoints to the router group.
func (h *RosterHandler) Register(router fiber.Router) {
	router.Get("/", h.list)
	router.Post("/import", h.importText)
	router.Post("/import-file", h.importFile)
	router.Get("/export", h.exportCSV)
	router.Delete("/:id", h.remove)
}

func (h *RosterHandler) list(c *fiber.Ctx) error {
	assignees, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list roster")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list roster")
	}

	return utils.SendSuccess(c, "roster retrieved", assignees)
}

func (h *RosterHandler) importText(c *fiber.Ctx) error {
	var payload dto.RosterImportRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	result, err := h.service.Import(c.Context(), payload)
	if err != nil {
		if isValidationError(err) {
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to import roster")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to import roster")
	}

	return utils.SendSuccessWithWarnings(c, "roster imported", result.Created, result.Errors)
}

func (h *RosterHandler) importFile(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "roster file is required")
	}

	mode := c.FormValue("mode", models.AssignmentTypeIndividual)

	file, err := fileHeader.Open()
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read roster file")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "unable to read roster file")
	}

	result, err := h.service.ImportFile(c.Context(), data, mode)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnsupportedRosterFile):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to import roster file")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to import roster file")
		}
	}

	return utils.SendSuccessWithWarnings(c, "roster imported", result.Created, result.Errors)
}

func (h *RosterHandler) exportCSV(c *fiber.Ctx) error {
	csvText, err := h.service.ExportCSV(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to export roster")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to export roster")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="roster.csv"`)
	return c.SendString(csvText)
}

func (h *RosterHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrAssigneeNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "assignee not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("assignee_id", c.Params("id")).Msg("failed to delete assignee")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete assignee")
	}

	return utils.SendSuccess(c, "assignee deleted", nil)
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica/rubrica-api/internal/dto"
	"github.com/rubrica/rubrica-api/internal/service"
	"github.com/rubrica/rubrica-api/internal/utils"
)

// RubricHandler wires rubric CRUD and AI drafting endpoints.
type RubricHandler struct {
	service service.RubricService
	logger  zerolog.Logger
}

// NewRubricHandler constructs the handler.
func NewRubricHandler(service service.RubricService, logger zerolog.Logger) *RubricHandler {
	return &RubricHandler{
		service: service,
		logger:  logger.With().Str("component", "rubric_handler").Logger(),
	}
}

// Register attaches rubric endpoints to the router group. aiLimiter guards
// the drafting endpoint; pass nil to register it unguarded.
func (h *RubricHandler) Register(router fiber.Router, aiLimiter fiber.Handler) {
	router.Get("/", h.list)
	router.Post("/", h.create)
	if aiLimiter != nil {
		router.Post("/draft", aiLimiter, h.draft)
	} else {
		router.Post("/draft", h.draft)
	}
	router.Get("/:id", h.get)
	router.Put("/:id", h.update)
	router.Delete("/:id", h.remove)
}

func (h *RubricHandler) list(c *fiber.Ctx) error {
	rubrics, err := h.service.List(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list rubrics")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list rubrics")
	}

	return utils.SendSuccess(c, "rubrics retrieved", rubrics)
}

func (h *RubricHandler) get(c *fiber.Ctx) error {
	rubric, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrRubricNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "rubric not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("rubric_id", c.Params("id")).Msg("failed to load rubric")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load rubric")
	}

	return utils.SendSuccess(c, "rubric retrieved", rubric)
}

func (h *RubricHandler) create(c *fiber.Ctx) error {
	var payload dto.RubricCreateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	rubric, err := h.service.Create(c.Context(), payload)
	if err != nil {
		switch {
		case isValidationError(err), errors.Is(err, service.ErrCriterionWithoutLevels):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to create rubric")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to create rubric")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "rubric created", rubric)
}

func (h *RubricHandler) update(c *fiber.Ctx) error {
	var payload dto.RubricUpdateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	rubric, err := h.service.Update(c.Context(), c.Params("id"), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRubricNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "rubric not found")
		case isValidationError(err), errors.Is(err, service.ErrCriterionWithoutLevels):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Str("rubric_id", c.Params("id")).Msg("failed to update rubric")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to update rubric")
		}
	}

	return utils.SendSuccess(c, "rubric updated", rubric)
}

func (h *RubricHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrRubricNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "rubric not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("rubric_id", c.Params("id")).Msg("failed to delete rubric")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete rubric")
	}

	return utils.SendSuccess(c, "rubric deleted", nil)
}

func (h *RubricHandler) draft(c *fiber.Ctx) error {
	var payload dto.RubricDraftRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	rubric, err := h.service.Draft(c.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDrafterUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "rubric drafting is not configured")
		case isValidationError(err), errors.Is(err, service.ErrCriterionWithoutLevels):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to draft rubric")
			return utils.SendError(c, fiber.StatusBadGateway, "failed to draft rubric")
		}
	}

	return utils.SendSuccessWithStatus(c, fiber.StatusCreated, "rubric drafted", rubric)
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica/rubrica-api/internal/dto"
	"github.com/rubrica/rubrica-api/internal/service"
	"github.com/rubrica/rubrica-api/internal/utils"
)

// GradingHandler wires assessment read/write, peer evaluation, and
// auto-grading endpoints.
type GradingHandler struct {
	service service.GradingService
	logger  zerolog.Logger
}

// NewGradingHandler constructs the handler.
func NewGradingHandler(service service.GradingService, logger zerolog.Logger) *GradingHandler {
	return &GradingHandler{
		service: service,
		logger:  logger.With().Str("component", "grading_handler").Logger(),
	}
}

// Register attaches grading endpoints to the router group. aiLimiter guards
// the auto-grade endpoint; pass nil to register it unguarded.
func (h *GradingHandler) Register(router fiber.Router, aiLimiter fiber.Handler) {
	router.Get("/:rubricId/assessments/:assigneeId", h.get)
	router.Put("/:rubricId/assessments/:assigneeId", h.save)
	router.Post("/:rubricId/assessments/:assigneeId/peer-evaluations", h.peerEvaluate)
	if aiLimiter != nil {
		router.Post("/:rubricId/assessments/:assigneeId/auto-grade", aiLimiter, h.autoGrade)
	} else {
		router.Post("/:rubricId/assessments/:assigneeId/auto-grade", h.autoGrade)
	}
}

func (h *GradingHandler) get(c *fiber.Ctx) error {
	assessment, err := h.service.GetAssessment(c.Context(), c.Params("rubricId"), c.Params("assigneeId"))
	if err != nil {
		return h.mapError(c, err, "failed to load assessment")
	}

	return utils.SendSuccess(c, "assessment retrieved", assessment)
}

func (h *GradingHandler) save(c *fiber.Ctx) error {
	var payload dto.GradeSaveRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assessment, err := h.service.SaveGrades(c.Context(), c.Params("rubricId"), c.Params("assigneeId"), payload)
	if err != nil {
		return h.mapError(c, err, "failed to save grades")
	}

	requestLogger(h.logger, c).Info().
		Str("user_id", userIDFromContext(c)).
		Str("user_role", userRoleFromContext(c)).
		Str("rubric_id", c.Params("rubricId")).
		Str("assignee_id", c.Params("assigneeId")).
		Msg("grades saved")

	return utils.SendSuccess(c, "grades saved", assessment)
}

func (h *GradingHandler) peerEvaluate(c *fiber.Ctx) error {
	var payload dto.PeerEvaluationRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assessment, err := h.service.SubmitPeerEvaluation(c.Context(), c.Params("rubricId"), c.Params("assigneeId"), payload)
	if err != nil {
		return h.mapError(c, err, "failed to record peer evaluation")
	}

	return utils.SendSuccess(c, "peer evaluation recorded", assessment)
}

func (h *GradingHandler) autoGrade(c *fiber.Ctx) error {
	var payload dto.AutoGradeRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	assessment, err := h.service.AutoGrade(c.Context(), c.Params("rubricId"), c.Params("assigneeId"), payload)
	if err != nil {
		if errors.Is(err, service.ErrAutoGraderUnavailable) {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "auto-grading is not configured")
		}
		return h.mapError(c, err, "failed to auto-grade submission")
	}

	requestLogger(h.logger, c).Info().
		Str("user_id", userIDFromContext(c)).
		Str("rubric_id", c.Params("rubricId")).
		Str("assignee_id", c.Params("assigneeId")).
		Msg("submission auto-graded")

	return utils.SendSuccess(c, "submission auto-graded", assessment)
}

func (h *GradingHandler) mapError(c *fiber.Ctx, err error, fallback string) error {
	switch {
	case errors.Is(err, service.ErrRubricNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "rubric not found")
	case errors.Is(err, service.ErrAssigneeNotFound):
		return utils.SendError(c, fiber.StatusNotFound, "assignee not found")
	case errors.Is(err, service.ErrAssessmentLocked):
		return utils.SendError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, service.ErrPeerEvalNotApplicable):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	case isValidationError(err):
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	default:
		requestLogger(h.logger, c).Error().Err(err).
			Str("rubric_id", c.Params("rubricId")).
			Str("assignee_id", c.Params("assigneeId")).
			Msg(fallback)
		return utils.SendError(c, fiber.StatusInternalServerError, fallback)
	}
}

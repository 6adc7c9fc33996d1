package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/rubrica/rubrica-api/internal/service"
	"github.com/rubrica/rubrica-api/internal/utils"
)

// SummaryHandler serves the aggregated course summary.
type SummaryHandler struct {
	service service.SummaryService
	logger  zerolog.Logger
}

// NewSummaryHandler constructs the handler.
func NewSummaryHandler(service service.SummaryService, logger zerolog.Logger) *SummaryHandler {
	return &SummaryHandler{
		service: service,
		logger:  logger.With().Str("component", "summary_handler").Logger(),
	}
}

// Register attaches the summary endpoint to the router group.
func (h *SummaryHandler) Register(router fiber.Router) {
	router.Get("/", h.summary)
}

func (h *SummaryHandler) summary(c *fiber.Ctx) error {
	summaries, err := h.service.CourseSummary(c.Context())
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to build course summary")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to build course summary")
	}

	return utils.SendSuccess(c, "course summary retrieved", summaries)
}

package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/hirelens-labs/screener-api/internal/dto"
	"github.com/hirelens-labs/screener-api/internal/service"
	"github.com/hirelens-labs/screener-api/internal/utils"
)

// ScreeningHandler exposes answer evaluation and candidate ranking endpoints.
type ScreeningHandler struct {
	service service.EvaluationService
	logger  zerolog.Logger
}

// NewScreeningHandler constructs a screening handler.
func NewScreeningHandler(service service.EvaluationService, logger zerolog.Logger) *ScreeningHandler {
	return &ScreeningHandler{
		service: service,
		logger:  logger.With().Str("component", "screening_handler").Logger(),
	}
}

// Register wires screening routes.
func (h *ScreeningHandler) Register(router fiber.Router) {
	router.Post("/evaluate-answer", h.evaluateAnswer)
	router.Post("/rank-candidates", h.rankCandidates)
}

func (h *ScreeningHandler) evaluateAnswer(c *fiber.Ctx) error {
	var payload dto.EvaluateRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response := h.service.Evaluate(c.UserContext(), payload.Text)
	return utils.SendSuccess(c, "answer evaluated", response)
}

func (h *ScreeningHandler) rankCandidates(c *fiber.Ctx) error {
	var payload dto.RankRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	response, err := h.service.Rank(c.UserContext(), payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyBatch):
			return utils.SendError(c, fiber.StatusBadRequest, "no candidates provided")
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("failed to rank candidates")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to rank candidates")
		}
	}

	return utils.SendSuccess(c, "candidates ranked", response)
}

package handler

import (
	"quiz-results/internal/dto"
	"quiz-results/internal/logger"
	"quiz-results/internal/middleware"
	"quiz-results/internal/service"
	"quiz-results/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AttemptHandler handles quiz submissions.
type AttemptHandler struct {
	service   service.AttemptService
	validator *validation.Validator
}

// NewAttemptHandler creates a new AttemptHandler instance
func NewAttemptHandler(service service.AttemptService) *AttemptHandler {
	return &AttemptHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// SubmitAttempt godoc
// @Summary Submit a quiz attempt
// @Description Grades the answers in question order, records them in the answer cache and stores the result
// @Tags attempts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Param attempt body dto.SubmitAttemptRequest true "Answers"
// @Success 201 {object} dto.SubmitAttemptResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId}/attempts [post]
func (h *AttemptHandler) SubmitAttempt(c *fiber.Ctx) error {
	quizID := c.Params("quizId")

	var req dto.SubmitAttemptRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if errs := h.validator.ValidateSubmitAttemptRequest(req.Answers); len(errs) > 0 {
		return errs
	}

	actor := middleware.ActorFrom(c)
	feedback, err := h.service.SubmitAttempt(c.Context(), actor, quizID, req.Answers)
	if err != nil {
		return err
	}

	logger.Get().Info("Quiz attempt submitted",
		zap.String("quizID", quizID),
		zap.String("userID", actor.UserID),
		zap.Int("graded", len(feedback)),
	)
	return c.Status(fiber.StatusCreated).JSON(dto.SubmitAttemptResponse{
		QuizID:   quizID,
		Feedback: feedback,
	})
}

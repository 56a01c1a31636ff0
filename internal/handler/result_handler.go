package handler

import (
	"quiz-results/internal/dto"
	"quiz-results/internal/middleware"
	"quiz-results/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ExportQueryParam selects an optional answer export ("json" or "csv").
const ExportQueryParam = "export"

// ResultHandler serves the aggregated statistics.
type ResultHandler struct {
	service service.AggregationService
}

func NewResultHandler(service service.AggregationService) *ResultHandler {
	return &ResultHandler{service: service}
}

// UserScoreInCompany godoc
// @Summary User score in a company
// @Description Mean of the user's per-quiz averages in the company. Only the user themself may ask.
// @Tags results
// @Security ApiKeyAuth
// @Produce json
// @Param companyId path string true "Company ID"
// @Param userId path string true "User ID"
// @Param export query string false "Export format (json, csv)"
// @Success 200 {object} dto.ScoreResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /companies/{companyId}/users/{userId}/score [get]
func (h *ResultHandler) UserScoreInCompany(c *fiber.Ctx) error {
	companyID, userID := c.Params("companyId"), c.Params("userId")
	report, err := h.service.UserScoreInCompany(c.Context(), middleware.ActorFrom(c), companyID, userID, c.Query(ExportQueryParam))
	if err != nil {
		return err
	}
	return c.JSON(dto.ScoreResponse{
		UserID:    userID,
		CompanyID: companyID,
		Score:     dto.RoundedScore(report.Score),
		Export:    dto.ToExportSummaryResponse(report.Export),
	})
}

// UserScoreAcrossCompanies godoc
// @Summary User score across companies
// @Tags results
// @Security ApiKeyAuth
// @Produce json
// @Param userId path string true "User ID"
// @Param export query string false "Export format (json, csv)"
// @Success 200 {object} dto.ScoreResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /users/{userId}/score [get]
func (h *ResultHandler) UserScoreAcrossCompanies(c *fiber.Ctx) error {
	userID := c.Params("userId")
	report, err := h.service.UserScoreAcrossCompanies(c.Context(), middleware.ActorFrom(c), userID, c.Query(ExportQueryParam))
	if err != nil {
		return err
	}
	return c.JSON(dto.ScoreResponse{
		UserID: userID,
		Score:  dto.RoundedScore(report.Score),
		Export: dto.ToExportSummaryResponse(report.Export),
	})
}

// CompanyLeaderboard godoc
// @Summary Company leaderboard
// @Description Requires admin or owner role in the company
// @Tags results
// @Security ApiKeyAuth
// @Produce json
// @Param companyId path string true "Company ID"
// @Param export query string false "Export format (json, csv)"
// @Success 200 {object} dto.LeaderboardResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /companies/{companyId}/leaderboard [get]
func (h *ResultHandler) CompanyLeaderboard(c *fiber.Ctx) error {
	report, err := h.service.CompanyLeaderboard(c.Context(), middleware.ActorFrom(c), c.Params("companyId"), c.Query(ExportQueryParam))
	if err != nil {
		return err
	}
	return c.JSON(toLeaderboardResponse(report))
}

// GlobalLeaderboard godoc
// @Summary Global leaderboard
// @Tags results
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.LeaderboardResponse
// @Router /leaderboard [get]
func (h *ResultHandler) GlobalLeaderboard(c *fiber.Ctx) error {
	report, err := h.service.GlobalLeaderboard(c.Context(), middleware.ActorFrom(c))
	if err != nil {
		return err
	}
	return c.JSON(toLeaderboardResponse(report))
}

// QuizLeaderboard godoc
// @Summary Quiz leaderboard
// @Description Requires admin or owner role in the quiz's company
// @Tags results
// @Security ApiKeyAuth
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Param export query string false "Export format (json, csv)"
// @Success 200 {object} dto.LeaderboardResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId}/leaderboard [get]
func (h *ResultHandler) QuizLeaderboard(c *fiber.Ctx) error {
	report, err := h.service.QuizLeaderboard(c.Context(), middleware.ActorFrom(c), c.Params("quizId"), c.Query(ExportQueryParam))
	if err != nil {
		return err
	}
	return c.JSON(toLeaderboardResponse(report))
}

// UserScoresOverTime godoc
// @Summary Score history of a user
// @Description Company id to quiz id to results, most recent first
// @Tags results
// @Security ApiKeyAuth
// @Produce json
// @Param userId path string true "User ID"
// @Param export query string false "Export format (json, csv)"
// @Success 200 {object} dto.UserTimelineResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /users/{userId}/scores [get]
func (h *ResultHandler) UserScoresOverTime(c *fiber.Ctx) error {
	userID := c.Params("userId")
	report, err := h.service.UserScoresOverTime(c.Context(), middleware.ActorFrom(c), userID, c.Query(ExportQueryParam))
	if err != nil {
		return err
	}
	return c.JSON(dto.UserTimelineResponse{
		UserID:    userID,
		Companies: dto.ToUserTimeline(report.Timeline),
		Export:    dto.ToExportSummaryResponse(report.Export),
	})
}

// UserCompletedQuizzes godoc
// @Summary Quizzes completed by a user
// @Tags results
// @Security ApiKeyAuth
// @Produce json
// @Param userId path string true "User ID"
// @Param export query string false "Export format (json, csv)"
// @Success 200 {object} dto.CompletedQuizzesResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /users/{userId}/completed-quizzes [get]
func (h *ResultHandler) UserCompletedQuizzes(c *fiber.Ctx) error {
	userID := c.Params("userId")
	report, err := h.service.UserCompletedQuizzes(c.Context(), middleware.ActorFrom(c), userID, c.Query(ExportQueryParam))
	if err != nil {
		return err
	}
	return c.JSON(dto.CompletedQuizzesResponse{
		UserID:  userID,
		Quizzes: dto.ToCompletedQuizItems(report.Quizzes),
		Export:  dto.ToExportSummaryResponse(report.Export),
	})
}

// CompanyScoresOverTime godoc
// @Summary Score history of a company
// @Description Requires admin or owner role. user_id narrows the result to one member.
// @Tags results
// @Security ApiKeyAuth
// @Produce json
// @Param companyId path string true "Company ID"
// @Param user_id query string false "Only this user"
// @Param export query string false "Export format (json, csv)"
// @Success 200 {object} dto.CompanyTimelineResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /companies/{companyId}/scores [get]
func (h *ResultHandler) CompanyScoresOverTime(c *fiber.Ctx) error {
	companyID := c.Params("companyId")
	report, err := h.service.CompanyScoresOverTime(c.Context(), middleware.ActorFrom(c), companyID, c.Query("user_id"), c.Query(ExportQueryParam))
	if err != nil {
		return err
	}
	return c.JSON(dto.CompanyTimelineResponse{
		CompanyID: companyID,
		Users:     dto.ToCompanyTimeline(report.Series),
		Export:    dto.ToExportSummaryResponse(report.Export),
	})
}

// CompanyLastAttemptTimes godoc
// @Summary Last attempt per user and quiz in a company
// @Tags results
// @Security ApiKeyAuth
// @Produce json
// @Param companyId path string true "Company ID"
// @Param export query string false "Export format (json, csv)"
// @Success 200 {object} dto.LastAttemptsResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /companies/{companyId}/last-attempts [get]
func (h *ResultHandler) CompanyLastAttemptTimes(c *fiber.Ctx) error {
	companyID := c.Params("companyId")
	report, err := h.service.CompanyLastAttemptTimes(c.Context(), middleware.ActorFrom(c), companyID, c.Query(ExportQueryParam))
	if err != nil {
		return err
	}
	return c.JSON(dto.LastAttemptsResponse{
		CompanyID: companyID,
		Attempts:  dto.ToLastAttemptItems(report.Attempts),
		Export:    dto.ToExportSummaryResponse(report.Export),
	})
}

// LookupAnswer godoc
// @Summary Read one cached answer
// @Description Entries expire 48 hours after the attempt
// @Tags results
// @Security ApiKeyAuth
// @Produce json
// @Param quizId path string true "Quiz ID"
// @Param userId path string true "User ID"
// @Param questionId path string true "Question ID"
// @Success 200 {object} dto.AnswerLookupResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Failure 503 {object} middleware.ErrorResponse
// @Router /quizzes/{quizId}/users/{userId}/answers/{questionId} [get]
func (h *ResultHandler) LookupAnswer(c *fiber.Ctx) error {
	entry, err := h.service.LookupAnswer(c.Context(), middleware.ActorFrom(c),
		c.Params("quizId"), c.Params("userId"), c.Params("questionId"))
	if err != nil {
		return err
	}
	return c.JSON(dto.ToAnswerLookupResponse(entry))
}

func toLeaderboardResponse(report *service.LeaderboardReport) dto.LeaderboardResponse {
	return dto.LeaderboardResponse{
		Entries: dto.ToLeaderboardEntries(report.Entries),
		Export:  dto.ToExportSummaryResponse(report.Export),
	}
}

package handler

import (
	"quiz-results/internal/middleware"

	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes mounts the attempt and result endpoints under router.
// protected authenticates the caller, normally middleware.Protected.
func RegisterRoutes(router fiber.Router, protected fiber.Handler, attempts *AttemptHandler, results *ResultHandler) {
	vm := middleware.NewValidationMiddleware()

	api := router.Group("", protected)

	quizzes := api.Group("/quizzes/:quizId", vm.ValidateIDParams("quizId"))
	quizzes.Post("/attempts", attempts.SubmitAttempt)
	quizzes.Get("/leaderboard", results.QuizLeaderboard)
	quizzes.Get("/users/:userId/answers/:questionId",
		vm.ValidateUserParam("userId"), vm.ValidateIDParams("questionId"), results.LookupAnswer)

	companies := api.Group("/companies/:companyId", vm.ValidateIDParams("companyId"))
	companies.Get("/leaderboard", results.CompanyLeaderboard)
	companies.Get("/scores", results.CompanyScoresOverTime)
	companies.Get("/last-attempts", results.CompanyLastAttemptTimes)
	companies.Get("/users/:userId/score", vm.ValidateUserParam("userId"), results.UserScoreInCompany)

	users := api.Group("/users/:userId", vm.ValidateUserParam("userId"))
	users.Get("/score", results.UserScoreAcrossCompanies)
	users.Get("/scores", results.UserScoresOverTime)
	users.Get("/completed-quizzes", results.UserCompletedQuizzes)

	api.Get("/leaderboard", results.GlobalLeaderboard)
}

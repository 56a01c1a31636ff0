package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"quiz-results/internal/domain"
	"quiz-results/internal/dto"
	"quiz-results/internal/handler"
	"quiz-results/internal/middleware"
	"quiz-results/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testQuizID     = "01HZX3K8J6Q4R2T9V5W7Y1A3B5"
	testCompanyID  = "01HZX3K8J6Q4R2T9V5W7Y1A3C7"
	testQuestionID = "01HZX3K8J6Q4R2T9V5W7Y1A3D9"
	testUserID     = "user-1"
)

// --- Manual Mocks ---

type MockAttemptService struct {
	SubmitAttemptFunc func(ctx context.Context, actor domain.Actor, quizID string, answers []string) ([]string, error)
}

func (m *MockAttemptService) SubmitAttempt(ctx context.Context, actor domain.Actor, quizID string, answers []string) ([]string, error) {
	if m.SubmitAttemptFunc != nil {
		return m.SubmitAttemptFunc(ctx, actor, quizID, answers)
	}
	panic("MockAttemptService.SubmitAttemptFunc not implemented")
}

type MockAggregationService struct {
	UserScoreInCompanyFunc       func(actor domain.Actor, companyID, userID, exportFormat string) (*service.ScoreReport, error)
	UserScoreAcrossCompaniesFunc func(actor domain.Actor, userID, exportFormat string) (*service.ScoreReport, error)
	CompanyLeaderboardFunc       func(actor domain.Actor, companyID, exportFormat string) (*service.LeaderboardReport, error)
	GlobalLeaderboardFunc        func(actor domain.Actor) (*service.LeaderboardReport, error)
	QuizLeaderboardFunc          func(actor domain.Actor, quizID, exportFormat string) (*service.LeaderboardReport, error)
	UserScoresOverTimeFunc       func(actor domain.Actor, userID, exportFormat string) (*service.UserTimelineReport, error)
	UserCompletedQuizzesFunc     func(actor domain.Actor, userID, exportFormat string) (*service.CompletedQuizzesReport, error)
	CompanyScoresOverTimeFunc    func(actor domain.Actor, companyID, userID, exportFormat string) (*service.CompanyTimelineReport, error)
	CompanyLastAttemptTimesFunc  func(actor domain.Actor, companyID, exportFormat string) (*service.LastAttemptsReport, error)
	LookupAnswerFunc             func(actor domain.Actor, quizID, userID, questionID string) (*domain.AnswerCacheEntry, error)
}

func (m *MockAggregationService) UserScoreInCompany(_ context.Context, actor domain.Actor, companyID, userID, exportFormat string) (*service.ScoreReport, error) {
	if m.UserScoreInCompanyFunc != nil {
		return m.UserScoreInCompanyFunc(actor, companyID, userID, exportFormat)
	}
	panic("MockAggregationService.UserScoreInCompanyFunc not implemented")
}

func (m *MockAggregationService) UserScoreAcrossCompanies(_ context.Context, actor domain.Actor, userID, exportFormat string) (*service.ScoreReport, error) {
	if m.UserScoreAcrossCompaniesFunc != nil {
		return m.UserScoreAcrossCompaniesFunc(actor, userID, exportFormat)
	}
	panic("MockAggregationService.UserScoreAcrossCompaniesFunc not implemented")
}

func (m *MockAggregationService) CompanyLeaderboard(_ context.Context, actor domain.Actor, companyID, exportFormat string) (*service.LeaderboardReport, error) {
	if m.CompanyLeaderboardFunc != nil {
		return m.CompanyLeaderboardFunc(actor, companyID, exportFormat)
	}
	panic("MockAggregationService.CompanyLeaderboardFunc not implemented")
}

func (m *MockAggregationService) GlobalLeaderboard(_ context.Context, actor domain.Actor) (*service.LeaderboardReport, error) {
	if m.GlobalLeaderboardFunc != nil {
		return m.GlobalLeaderboardFunc(actor)
	}
	panic("MockAggregationService.GlobalLeaderboardFunc not implemented")
}

func (m *MockAggregationService) QuizLeaderboard(_ context.Context, actor domain.Actor, quizID, exportFormat string) (*service.LeaderboardReport, error) {
	if m.QuizLeaderboardFunc != nil {
		return m.QuizLeaderboardFunc(actor, quizID, exportFormat)
	}
	panic("MockAggregationService.QuizLeaderboardFunc not implemented")
}

func (m *MockAggregationService) UserScoresOverTime(_ context.Context, actor domain.Actor, userID, exportFormat string) (*service.UserTimelineReport, error) {
	if m.UserScoresOverTimeFunc != nil {
		return m.UserScoresOverTimeFunc(actor, userID, exportFormat)
	}
	panic("MockAggregationService.UserScoresOverTimeFunc not implemented")
}

func (m *MockAggregationService) UserCompletedQuizzes(_ context.Context, actor domain.Actor, userID, exportFormat string) (*service.CompletedQuizzesReport, error) {
	if m.UserCompletedQuizzesFunc != nil {
		return m.UserCompletedQuizzesFunc(actor, userID, exportFormat)
	}
	panic("MockAggregationService.UserCompletedQuizzesFunc not implemented")
}

func (m *MockAggregationService) CompanyScoresOverTime(_ context.Context, actor domain.Actor, companyID, userID, exportFormat string) (*service.CompanyTimelineReport, error) {
	if m.CompanyScoresOverTimeFunc != nil {
		return m.CompanyScoresOverTimeFunc(actor, companyID, userID, exportFormat)
	}
	panic("MockAggregationService.CompanyScoresOverTimeFunc not implemented")
}

func (m *MockAggregationService) CompanyLastAttemptTimes(_ context.Context, actor domain.Actor, companyID, exportFormat string) (*service.LastAttemptsReport, error) {
	if m.CompanyLastAttemptTimesFunc != nil {
		return m.CompanyLastAttemptTimesFunc(actor, companyID, exportFormat)
	}
	panic("MockAggregationService.CompanyLastAttemptTimesFunc not implemented")
}

func (m *MockAggregationService) LookupAnswer(_ context.Context, actor domain.Actor, quizID, userID, questionID string) (*domain.AnswerCacheEntry, error) {
	if m.LookupAnswerFunc != nil {
		return m.LookupAnswerFunc(actor, quizID, userID, questionID)
	}
	panic("MockAggregationService.LookupAnswerFunc not implemented")
}

var (
	_ service.AttemptService     = (*MockAttemptService)(nil)
	_ service.AggregationService = (*MockAggregationService)(nil)
)

// fakeAuth stands in for middleware.Protected and authenticates every caller as testUserID.
func fakeAuth(c *fiber.Ctx) error {
	c.Locals(middleware.UserIDKey, testUserID)
	return c.Next()
}

func setupApp(attempts *MockAttemptService, results *MockAggregationService) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: middleware.ErrorHandler()})
	handler.RegisterRoutes(app.Group("/api"), fakeAuth,
		handler.NewAttemptHandler(attempts), handler.NewResultHandler(results))
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string, body interface{}) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func floatPtr(f float64) *float64 { return &f }

func TestSubmitAttempt(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		mockSvc := &MockAttemptService{
			SubmitAttemptFunc: func(ctx context.Context, actor domain.Actor, quizID string, answers []string) ([]string, error) {
				assert.Equal(t, testUserID, actor.UserID)
				assert.Equal(t, testQuizID, quizID)
				assert.Equal(t, []string{"a", "c"}, answers)
				return []string{"Question 1: Correct!", "Question 2: Incorrect. Correct answer(s) is/are 'b'"}, nil
			},
		}
		app := setupApp(mockSvc, &MockAggregationService{})

		resp, body := doRequest(t, app, "POST", "/api/quizzes/"+testQuizID+"/attempts",
			dto.SubmitAttemptRequest{Answers: []string{"a", "c"}})
		assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

		var out dto.SubmitAttemptResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, testQuizID, out.QuizID)
		assert.Len(t, out.Feedback, 2)
	})

	t.Run("Invalid quiz id", func(t *testing.T) {
		app := setupApp(&MockAttemptService{}, &MockAggregationService{})
		resp, _ := doRequest(t, app, "POST", "/api/quizzes/not-a-ulid/attempts",
			dto.SubmitAttemptRequest{Answers: []string{"a"}})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("Malformed body", func(t *testing.T) {
		app := setupApp(&MockAttemptService{}, &MockAggregationService{})
		req := httptest.NewRequest("POST", "/api/quizzes/"+testQuizID+"/attempts", bytes.NewReader([]byte("{")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	serviceErrors := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"Empty answers", domain.NewEmptyAnswerError(), fiber.StatusBadRequest, "EMPTY_ANSWER"},
		{"Not a member", domain.NewPermissionDeniedError("denied"), fiber.StatusForbidden, "PERMISSION_DENIED"},
		{"Quiz missing", domain.NewQuizNotFoundError(testQuizID), fiber.StatusNotFound, "QUIZ_NOT_FOUND"},
		{"Persistence", domain.NewAttemptPersistenceError(errors.New("ORA-00001")), fiber.StatusInternalServerError, "ATTEMPT_PERSISTENCE_FAILED"},
	}
	for _, tc := range serviceErrors {
		t.Run(tc.name, func(t *testing.T) {
			mockSvc := &MockAttemptService{
				SubmitAttemptFunc: func(ctx context.Context, actor domain.Actor, quizID string, answers []string) ([]string, error) {
					return nil, tc.err
				},
			}
			app := setupApp(mockSvc, &MockAggregationService{})
			resp, body := doRequest(t, app, "POST", "/api/quizzes/"+testQuizID+"/attempts",
				dto.SubmitAttemptRequest{Answers: []string{}})
			assert.Equal(t, tc.status, resp.StatusCode)

			var out middleware.ErrorResponse
			require.NoError(t, json.Unmarshal(body, &out))
			assert.Equal(t, tc.code, out.Code)
		})
	}
}

func TestUserScoreInCompany(t *testing.T) {
	mockSvc := &MockAggregationService{
		UserScoreInCompanyFunc: func(actor domain.Actor, companyID, userID, exportFormat string) (*service.ScoreReport, error) {
			assert.Equal(t, testCompanyID, companyID)
			assert.Equal(t, testUserID, userID)
			assert.Equal(t, "csv", exportFormat)
			return &service.ScoreReport{
				Score:  floatPtr(2.0 / 3.0),
				Export: &domain.ExportSummary{Format: "csv", File: "results/user_score_company_results.csv", Records: 2},
			}, nil
		},
	}
	app := setupApp(&MockAttemptService{}, mockSvc)

	resp, body := doRequest(t, app, "GET", "/api/companies/"+testCompanyID+"/users/"+testUserID+"/score?export=csv", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out dto.ScoreResponse
	require.NoError(t, json.Unmarshal(body, &out))
	require.NotNil(t, out.Score)
	assert.Equal(t, 0.67, *out.Score)
	require.NotNil(t, out.Export)
	assert.Equal(t, 2, out.Export.Records)
}

func TestUserScoreAcrossCompanies_NoResults(t *testing.T) {
	mockSvc := &MockAggregationService{
		UserScoreAcrossCompaniesFunc: func(actor domain.Actor, userID, exportFormat string) (*service.ScoreReport, error) {
			assert.Empty(t, exportFormat)
			return &service.ScoreReport{}, nil
		},
	}
	app := setupApp(&MockAttemptService{}, mockSvc)

	resp, body := doRequest(t, app, "GET", "/api/users/"+testUserID+"/score", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"user_id":"user-1","score":null}`, string(body))
}

func TestUserScoreAcrossCompanies_NotSelf(t *testing.T) {
	mockSvc := &MockAggregationService{
		UserScoreAcrossCompaniesFunc: func(actor domain.Actor, userID, exportFormat string) (*service.ScoreReport, error) {
			return nil, domain.NewNotSelfError()
		},
	}
	app := setupApp(&MockAttemptService{}, mockSvc)

	resp, _ := doRequest(t, app, "GET", "/api/users/someone-else/score", nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestLeaderboards(t *testing.T) {
	entries := []domain.UserScore{{UserID: "u2", Score: 0.8333}, {UserID: "u1", Score: 0.5}}
	mockSvc := &MockAggregationService{
		CompanyLeaderboardFunc: func(actor domain.Actor, companyID, exportFormat string) (*service.LeaderboardReport, error) {
			return &service.LeaderboardReport{Entries: entries}, nil
		},
		GlobalLeaderboardFunc: func(actor domain.Actor) (*service.LeaderboardReport, error) {
			return &service.LeaderboardReport{Entries: []domain.UserScore{}}, nil
		},
		QuizLeaderboardFunc: func(actor domain.Actor, quizID, exportFormat string) (*service.LeaderboardReport, error) {
			return nil, domain.NewQuizNotFoundError(quizID)
		},
	}
	app := setupApp(&MockAttemptService{}, mockSvc)

	resp, body := doRequest(t, app, "GET", "/api/companies/"+testCompanyID+"/leaderboard", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var out dto.LeaderboardResponse
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, []dto.LeaderboardEntry{{UserID: "u2", Score: 0.83}, {UserID: "u1", Score: 0.5}}, out.Entries)

	resp, body = doRequest(t, app, "GET", "/api/leaderboard", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"entries":[]}`, string(body))

	resp, _ = doRequest(t, app, "GET", "/api/quizzes/"+testQuizID+"/leaderboard", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestTimelines(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	mockSvc := &MockAggregationService{
		UserScoresOverTimeFunc: func(actor domain.Actor, userID, exportFormat string) (*service.UserTimelineReport, error) {
			return &service.UserTimelineReport{Timeline: domain.UserTimeline{
				"C1": {"Q1": {{Score: 0.666666, At: at}}},
			}}, nil
		},
		CompanyScoresOverTimeFunc: func(actor domain.Actor, companyID, userID, exportFormat string) (*service.CompanyTimelineReport, error) {
			assert.Equal(t, "u9", userID)
			return &service.CompanyTimelineReport{Series: map[string][]domain.ScorePoint{
				"u9": {{Score: 1, At: at}},
			}}, nil
		},
	}
	app := setupApp(&MockAttemptService{}, mockSvc)

	resp, body := doRequest(t, app, "GET", "/api/users/"+testUserID+"/scores", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var userOut dto.UserTimelineResponse
	require.NoError(t, json.Unmarshal(body, &userOut))
	require.Len(t, userOut.Companies["C1"]["Q1"], 1)
	assert.Equal(t, 0.67, userOut.Companies["C1"]["Q1"][0].Score)
	assert.True(t, at.Equal(userOut.Companies["C1"]["Q1"][0].At))

	resp, body = doRequest(t, app, "GET", "/api/companies/"+testCompanyID+"/scores?user_id=u9", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var companyOut dto.CompanyTimelineResponse
	require.NoError(t, json.Unmarshal(body, &companyOut))
	assert.Equal(t, testCompanyID, companyOut.CompanyID)
	assert.Len(t, companyOut.Users["u9"], 1)
}

func TestCompletedAndLastAttempts(t *testing.T) {
	at := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	mockSvc := &MockAggregationService{
		UserCompletedQuizzesFunc: func(actor domain.Actor, userID, exportFormat string) (*service.CompletedQuizzesReport, error) {
			return &service.CompletedQuizzesReport{Quizzes: []domain.CompletedQuiz{{QuizID: "Q1", CompanyID: "C1", LastCompletedAt: at}}}, nil
		},
		CompanyLastAttemptTimesFunc: func(actor domain.Actor, companyID, exportFormat string) (*service.LastAttemptsReport, error) {
			return &service.LastAttemptsReport{
				Attempts: []domain.LastAttempt{
					{UserID: "u2", QuizID: "Q1", LastAttemptAt: at},
					{UserID: "u1", QuizID: "Q2", LastAttemptAt: at},
				},
				Export: &domain.ExportSummary{Format: "json", Errors: []*domain.DomainError{domain.NewExportFailedError("missing", nil)}},
			}, nil
		},
	}
	app := setupApp(&MockAttemptService{}, mockSvc)

	resp, body := doRequest(t, app, "GET", "/api/users/"+testUserID+"/completed-quizzes", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var completed dto.CompletedQuizzesResponse
	require.NoError(t, json.Unmarshal(body, &completed))
	require.Len(t, completed.Quizzes, 1)
	assert.Equal(t, "Q1", completed.Quizzes[0].QuizID)

	resp, body = doRequest(t, app, "GET", "/api/companies/"+testCompanyID+"/last-attempts?export=json", nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	var last dto.LastAttemptsResponse
	require.NoError(t, json.Unmarshal(body, &last))
	require.Len(t, last.Attempts, 2)
	assert.Equal(t, "u1", last.Attempts[0].UserID)
	require.NotNil(t, last.Export)
	assert.Len(t, last.Export.Errors, 1)
}

func TestLookupAnswer(t *testing.T) {
	target := "/api/quizzes/" + testQuizID + "/users/" + testUserID + "/answers/" + testQuestionID

	t.Run("Hit", func(t *testing.T) {
		mockSvc := &MockAggregationService{
			LookupAnswerFunc: func(actor domain.Actor, quizID, userID, questionID string) (*domain.AnswerCacheEntry, error) {
				assert.Equal(t, testQuestionID, questionID)
				return &domain.AnswerCacheEntry{UserID: userID, CompanyID: "C1", QuizID: quizID, QuestionID: questionID, UserAnswer: "a", IsCorrect: true}, nil
			},
		}
		app := setupApp(&MockAttemptService{}, mockSvc)
		resp, body := doRequest(t, app, "GET", target, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		var out dto.AnswerLookupResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.True(t, out.IsCorrect)
		assert.Equal(t, "a", out.UserAnswer)
	})

	t.Run("Miss", func(t *testing.T) {
		mockSvc := &MockAggregationService{
			LookupAnswerFunc: func(actor domain.Actor, quizID, userID, questionID string) (*domain.AnswerCacheEntry, error) {
				return nil, domain.NewNotFoundError("answer not cached")
			},
		}
		app := setupApp(&MockAttemptService{}, mockSvc)
		resp, _ := doRequest(t, app, "GET", target, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})

	t.Run("Cache down", func(t *testing.T) {
		mockSvc := &MockAggregationService{
			LookupAnswerFunc: func(actor domain.Actor, quizID, userID, questionID string) (*domain.AnswerCacheEntry, error) {
				return nil, domain.NewDependencyError("answer cache unavailable", errors.New("dial tcp"))
			},
		}
		app := setupApp(&MockAttemptService{}, mockSvc)
		resp, _ := doRequest(t, app, "GET", target, nil)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	})
}

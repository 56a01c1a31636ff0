package dto

import (
	"sort"
	"time"

	"quiz-results/internal/domain"
	"quiz-results/internal/util"
)

// SubmitAttemptRequest is the body of POST /quizzes/{quizId}/attempts.
// @Description Answers in question order; a single answer may hold comma separated alternatives
type SubmitAttemptRequest struct {
	Answers []string `json:"answers"`
}

// SubmitAttemptResponse carries one feedback line per graded question.
type SubmitAttemptResponse struct {
	QuizID   string   `json:"quiz_id"`
	Feedback []string `json:"feedback"`
}

// ExportSummaryResponse reports the outcome of an optional cache export.
type ExportSummaryResponse struct {
	Format  string                `json:"format"`
	File    string                `json:"file,omitempty"`
	Records int                   `json:"records"`
	Errors  []*domain.DomainError `json:"errors,omitempty"`
}

// ScoreResponse is a single rounded score. Score is null when the user has no results.
type ScoreResponse struct {
	UserID    string                 `json:"user_id"`
	CompanyID string                 `json:"company_id,omitempty"`
	Score     *float64               `json:"score"`
	Export    *ExportSummaryResponse `json:"export,omitempty"`
}

// LeaderboardEntry is one ranked user.
type LeaderboardEntry struct {
	UserID string  `json:"user_id"`
	Score  float64 `json:"score"`
}

// LeaderboardResponse lists users by descending score.
type LeaderboardResponse struct {
	Entries []LeaderboardEntry     `json:"entries"`
	Export  *ExportSummaryResponse `json:"export,omitempty"`
}

// ScorePointResponse is one result on a timeline.
type ScorePointResponse struct {
	Score float64   `json:"score"`
	At    time.Time `json:"at"`
}

// UserTimelineResponse maps company id to quiz id to points, newest first.
type UserTimelineResponse struct {
	UserID    string                                     `json:"user_id"`
	Companies map[string]map[string][]ScorePointResponse `json:"companies"`
	Export    *ExportSummaryResponse                     `json:"export,omitempty"`
}

// CompanyTimelineResponse maps user id to that user's points, newest first.
type CompanyTimelineResponse struct {
	CompanyID string                          `json:"company_id"`
	Users     map[string][]ScorePointResponse `json:"users"`
	Export    *ExportSummaryResponse          `json:"export,omitempty"`
}

type CompletedQuizItem struct {
	QuizID          string    `json:"quiz_id"`
	CompanyID       string    `json:"company_id"`
	LastCompletedAt time.Time `json:"last_completed_at"`
}

type CompletedQuizzesResponse struct {
	UserID  string                 `json:"user_id"`
	Quizzes []CompletedQuizItem    `json:"quizzes"`
	Export  *ExportSummaryResponse `json:"export,omitempty"`
}

type LastAttemptItem struct {
	UserID        string    `json:"user_id"`
	QuizID        string    `json:"quiz_id"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
}

type LastAttemptsResponse struct {
	CompanyID string                 `json:"company_id"`
	Attempts  []LastAttemptItem      `json:"attempts"`
	Export    *ExportSummaryResponse `json:"export,omitempty"`
}

// AnswerLookupResponse is a single answer cache entry.
type AnswerLookupResponse struct {
	UserID     string `json:"user_id"`
	CompanyID  string `json:"company_id"`
	QuizID     string `json:"quiz_id"`
	QuestionID string `json:"question_id"`
	UserAnswer string `json:"user_answer"`
	IsCorrect  bool   `json:"is_correct"`
}

// RoundedScore rounds a score for presentation, keeping nil as nil.
func RoundedScore(score *float64) *float64 {
	if score == nil {
		return nil
	}
	v := util.Round2(*score)
	return &v
}

// ToLeaderboardEntries rounds scores. Order is kept.
func ToLeaderboardEntries(scores []domain.UserScore) []LeaderboardEntry {
	entries := make([]LeaderboardEntry, 0, len(scores))
	for _, s := range scores {
		entries = append(entries, LeaderboardEntry{UserID: s.UserID, Score: util.Round2(s.Score)})
	}
	return entries
}

func ToScorePoints(points []domain.ScorePoint) []ScorePointResponse {
	out := make([]ScorePointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, ScorePointResponse{Score: util.Round2(p.Score), At: p.At})
	}
	return out
}

func ToUserTimeline(timeline domain.UserTimeline) map[string]map[string][]ScorePointResponse {
	out := make(map[string]map[string][]ScorePointResponse, len(timeline))
	for companyID, quizzes := range timeline {
		byQuiz := make(map[string][]ScorePointResponse, len(quizzes))
		for quizID, points := range quizzes {
			byQuiz[quizID] = ToScorePoints(points)
		}
		out[companyID] = byQuiz
	}
	return out
}

func ToCompanyTimeline(series map[string][]domain.ScorePoint) map[string][]ScorePointResponse {
	out := make(map[string][]ScorePointResponse, len(series))
	for userID, points := range series {
		out[userID] = ToScorePoints(points)
	}
	return out
}

func ToCompletedQuizItems(quizzes []domain.CompletedQuiz) []CompletedQuizItem {
	out := make([]CompletedQuizItem, 0, len(quizzes))
	for _, q := range quizzes {
		out = append(out, CompletedQuizItem{QuizID: q.QuizID, CompanyID: q.CompanyID, LastCompletedAt: q.LastCompletedAt})
	}
	return out
}

// ToLastAttemptItems sorts by user then quiz so responses are stable.
func ToLastAttemptItems(attempts []domain.LastAttempt) []LastAttemptItem {
	out := make([]LastAttemptItem, 0, len(attempts))
	for _, a := range attempts {
		out = append(out, LastAttemptItem{UserID: a.UserID, QuizID: a.QuizID, LastAttemptAt: a.LastAttemptAt})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UserID != out[j].UserID {
			return out[i].UserID < out[j].UserID
		}
		return out[i].QuizID < out[j].QuizID
	})
	return out
}

func ToAnswerLookupResponse(e *domain.AnswerCacheEntry) AnswerLookupResponse {
	return AnswerLookupResponse{
		UserID:     e.UserID,
		CompanyID:  e.CompanyID,
		QuizID:     e.QuizID,
		QuestionID: e.QuestionID,
		UserAnswer: e.UserAnswer,
		IsCorrect:  e.IsCorrect,
	}
}

func ToExportSummaryResponse(s *domain.ExportSummary) *ExportSummaryResponse {
	if s == nil {
		return nil
	}
	return &ExportSummaryResponse{Format: s.Format, File: s.File, Records: s.Records, Errors: s.Errors}
}

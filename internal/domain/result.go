package domain

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Result is the persisted outcome of a quiz attempt.
// RightCount is fractional only under the averaging merge policies.
type Result struct {
	ID         string
	UserID     string
	CompanyID  string
	QuizID     string
	RightCount float64
	TotalCount int
	CreatedAt  time.Time
}

// Score returns RightCount/TotalCount, or 0 for a result without questions.
func (r *Result) Score() float64 {
	if r.TotalCount <= 0 {
		return 0
	}
	return r.RightCount / float64(r.TotalCount)
}

// AttemptScore is the raw tally of a single graded attempt.
type AttemptScore struct {
	Right int
	Total int
}

// ResultMergePolicy decides how a new attempt is folded into stored results.
type ResultMergePolicy string

const (
	// MergeAppendHistory stores every attempt as its own row.
	MergeAppendHistory ResultMergePolicy = "append_history"
	// MergeRunningAverage keeps one row per user and quiz with right = (old + new) / 2.
	MergeRunningAverage ResultMergePolicy = "running_average"
	// MergeAverageOverTotal keeps one row per user and quiz with right = (old + new) / total.
	MergeAverageOverTotal ResultMergePolicy = "average_over_total"
)

// ParseResultMergePolicy parses a configured policy name. Empty means append_history.
func ParseResultMergePolicy(s string) (ResultMergePolicy, error) {
	switch p := ResultMergePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return MergeAppendHistory, nil
	case MergeAppendHistory, MergeRunningAverage, MergeAverageOverTotal:
		return p, nil
	default:
		return "", fmt.Errorf("unknown result merge policy %q", s)
	}
}

// AppendsHistory reports whether every attempt inserts a new row.
func (p ResultMergePolicy) AppendsHistory() bool {
	return p == MergeAppendHistory || p == ""
}

// Merge folds attempt into existing and returns the updated row.
// It must only be called for policies that do not append history.
func (p ResultMergePolicy) Merge(existing *Result, attempt AttemptScore, now time.Time) *Result {
	merged := *existing
	switch p {
	case MergeRunningAverage:
		merged.RightCount = (existing.RightCount + float64(attempt.Right)) / 2
	case MergeAverageOverTotal:
		merged.RightCount = (existing.RightCount + float64(attempt.Right)) / float64(attempt.Total)
	default:
		merged.RightCount = float64(attempt.Right)
	}
	merged.TotalCount = attempt.Total
	merged.CreatedAt = now
	return &merged
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	UserID string
}

// Role is the membership level required by an operation.
type Role string

const (
	RoleMember       Role = "member"
	RoleAdminOrOwner Role = "admin"
)

// ParseRole parses a configured role name. Empty means admin-or-owner.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "admin", "owner", "admin_or_owner":
		return RoleAdminOrOwner, nil
	case "member":
		return RoleMember, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

// UserScore is a single leaderboard row.
type UserScore struct {
	UserID string
	Score  float64
}

// QuizAverage is avg(right/total) of one user over one quiz.
type QuizAverage struct {
	UserID    string
	CompanyID string
	QuizID    string
	Average   float64
}

// ScorePoint is one result row on a timeline.
type ScorePoint struct {
	Score float64
	At    time.Time
}

// UserTimeline maps company id to quiz id to points, newest first.
type UserTimeline map[string]map[string][]ScorePoint

// CompletedQuiz is the last completion of a quiz by a user.
type CompletedQuiz struct {
	QuizID          string
	CompanyID       string
	LastCompletedAt time.Time
}

// LastAttempt is the last attempt time of a user on a quiz.
type LastAttempt struct {
	UserID        string
	QuizID        string
	LastAttemptAt time.Time
}

// UserQuizRef identifies the answers touched by an aggregation.
type UserQuizRef struct {
	UserID string
	QuizID string
}

// ResultRepository persists results and runs the grouped score queries.
type ResultRepository interface {
	Insert(ctx context.Context, result *Result) error
	// LockQuizResults serializes result merges for one quiz until the
	// surrounding transaction ends.
	LockQuizResults(ctx context.Context, quizID string) error
	// FindForUpdate locks and returns the row for user and quiz, or nil when absent.
	FindForUpdate(ctx context.Context, userID, quizID string) (*Result, error)
	Update(ctx context.Context, result *Result) error
	LastAttemptAt(ctx context.Context, userID, quizID string) (*time.Time, error)

	QuizAveragesForUserInCompany(ctx context.Context, companyID, userID string) ([]QuizAverage, error)
	QuizAveragesForUser(ctx context.Context, userID string) ([]QuizAverage, error)
	QuizAveragesForCompany(ctx context.Context, companyID string) ([]QuizAverage, error)
	UserAveragesForQuiz(ctx context.Context, quizID string) ([]UserScore, error)
	GlobalUserRatios(ctx context.Context) ([]UserScore, error)

	ListByUser(ctx context.Context, userID string) ([]*Result, error)
	ListByCompany(ctx context.Context, companyID, userID string) ([]*Result, error)
	CompletedQuizzes(ctx context.Context, userID string) ([]CompletedQuiz, error)
	LastAttemptsForCompany(ctx context.Context, companyID string) ([]LastAttempt, error)
}

// QuizCatalog is the read side of the quiz store used by scoring.
type QuizCatalog interface {
	GetQuiz(ctx context.Context, quizID string) (*Quiz, error)
	// QuestionsForQuiz returns questions in creation order.
	QuestionsForQuiz(ctx context.Context, quizID string) ([]*Question, error)
	QuestionIDsForQuiz(ctx context.Context, quizID string) ([]string, error)
	CompanyOfQuiz(ctx context.Context, quizID string) (string, error)
}

// MembershipOracle answers company membership questions.
type MembershipOracle interface {
	IsMember(ctx context.Context, userID, companyID string) (bool, error)
	IsAdminOrOwner(ctx context.Context, userID, companyID string) (bool, error)
	OwnerOf(ctx context.Context, companyID string) (string, error)
}

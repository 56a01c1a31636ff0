package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"quiz-results/internal/domain"
	"quiz-results/internal/repository/models"
	"quiz-results/internal/util"

	"github.com/jmoiron/sqlx"
)

const resultColumns = `id "ID", user_id "USER_ID", company_id "COMPANY_ID", quiz_id "QUIZ_ID",
	right_count "RIGHT_COUNT", total_count "TOTAL_COUNT", created_at "CREATED_AT"`

const quizAverageSelect = `SELECT user_id "USER_ID", company_id "COMPANY_ID", quiz_id "QUIZ_ID",
	AVG(right_count / total_count) "AVERAGE_SCORE"
	FROM quiz_results`

// sqlxResultRepository implements domain.ResultRepository using sqlx.
type sqlxResultRepository struct {
	db *sqlx.DB
}

// NewSQLXResultRepository creates a new instance of sqlxResultRepository.
func NewSQLXResultRepository(db *sqlx.DB) domain.ResultRepository {
	return &sqlxResultRepository{db: db}
}

func toDomainResult(m *models.QuizResult) *domain.Result {
	if m == nil {
		return nil
	}
	return &domain.Result{
		ID:         m.ID,
		UserID:     m.UserID,
		CompanyID:  m.CompanyID,
		QuizID:     m.QuizID,
		RightCount: m.RightCount,
		TotalCount: m.TotalCount,
		CreatedAt:  m.CreatedAt,
	}
}

func fromDomainResult(r *domain.Result) *models.QuizResult {
	if r == nil {
		return nil
	}
	return &models.QuizResult{
		ID:         r.ID,
		UserID:     r.UserID,
		CompanyID:  r.CompanyID,
		QuizID:     r.QuizID,
		RightCount: r.RightCount,
		TotalCount: r.TotalCount,
		CreatedAt:  r.CreatedAt,
	}
}

func toDomainQuizAverages(rows []models.QuizAverageRow) []domain.QuizAverage {
	out := make([]domain.QuizAverage, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.QuizAverage{
			UserID:    row.UserID,
			CompanyID: row.CompanyID,
			QuizID:    row.QuizID,
			Average:   row.Average,
		})
	}
	return out
}

// Insert stores a new result. A missing ID or timestamp is filled in.
func (r *sqlxResultRepository) Insert(ctx context.Context, result *domain.Result) error {
	if result.ID == "" {
		result.ID = util.NewULID()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	m := fromDomainResult(result)

	query := `INSERT INTO quiz_results (id, user_id, company_id, quiz_id, right_count, total_count, created_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		m.ID, m.UserID, m.CompanyID, m.QuizID, m.RightCount, m.TotalCount, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert quiz result: %w", err)
	}
	return nil
}

// LockQuizResults takes the quiz row lock. Two first attempts on an empty
// pair would otherwise both miss in FindForUpdate and insert twice.
func (r *sqlxResultRepository) LockQuizResults(ctx context.Context, quizID string) error {
	var id string
	query := `SELECT id FROM quizzes WHERE id = :1 FOR UPDATE`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &id, query, quizID); err != nil {
		return fmt.Errorf("failed to lock quiz %s for result merge: %w", quizID, err)
	}
	return nil
}

// FindForUpdate locks every row of the pair and returns the most recent one.
func (r *sqlxResultRepository) FindForUpdate(ctx context.Context, userID, quizID string) (*domain.Result, error) {
	var rows []models.QuizResult
	query := `SELECT ` + resultColumns + ` FROM quiz_results
	          WHERE user_id = :1 AND quiz_id = :2
	          ORDER BY created_at DESC
	          FOR UPDATE`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID, quizID); err != nil {
		return nil, fmt.Errorf("failed to lock quiz result for user %s quiz %s: %w", userID, quizID, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return toDomainResult(&rows[0]), nil
}

func (r *sqlxResultRepository) Update(ctx context.Context, result *domain.Result) error {
	query := `UPDATE quiz_results SET right_count = :1, total_count = :2, created_at = :3 WHERE id = :4`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		result.RightCount, result.TotalCount, result.CreatedAt, result.ID)
	if err != nil {
		return fmt.Errorf("failed to update quiz result %s: %w", result.ID, err)
	}
	return nil
}

func (r *sqlxResultRepository) LastAttemptAt(ctx context.Context, userID, quizID string) (*time.Time, error) {
	var last sql.NullTime
	query := `SELECT MAX(created_at) FROM quiz_results WHERE user_id = :1 AND quiz_id = :2`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &last, query, userID, quizID); err != nil {
		return nil, fmt.Errorf("failed to get last attempt for user %s quiz %s: %w", userID, quizID, err)
	}
	return util.NullTimeToPtr(last), nil
}

func (r *sqlxResultRepository) selectQuizAverages(ctx context.Context, query string, args ...interface{}) ([]domain.QuizAverage, error) {
	var rows []models.QuizAverageRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return toDomainQuizAverages(rows), nil
}

func (r *sqlxResultRepository) QuizAveragesForUserInCompany(ctx context.Context, companyID, userID string) ([]domain.QuizAverage, error) {
	query := quizAverageSelect + `
	WHERE company_id = :1 AND user_id = :2
	GROUP BY user_id, company_id, quiz_id
	ORDER BY quiz_id`
	avgs, err := r.selectQuizAverages(ctx, query, companyID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz averages for user %s in company %s: %w", userID, companyID, err)
	}
	return avgs, nil
}

func (r *sqlxResultRepository) QuizAveragesForUser(ctx context.Context, userID string) ([]domain.QuizAverage, error) {
	query := quizAverageSelect + `
	WHERE user_id = :1
	GROUP BY user_id, company_id, quiz_id
	ORDER BY company_id, quiz_id`
	avgs, err := r.selectQuizAverages(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz averages for user %s: %w", userID, err)
	}
	return avgs, nil
}

func (r *sqlxResultRepository) QuizAveragesForCompany(ctx context.Context, companyID string) ([]domain.QuizAverage, error) {
	query := quizAverageSelect + `
	WHERE company_id = :1
	GROUP BY user_id, company_id, quiz_id
	ORDER BY user_id, quiz_id`
	avgs, err := r.selectQuizAverages(ctx, query, companyID)
	if err != nil {
		return nil, fmt.Errorf("failed to get quiz averages for company %s: %w", companyID, err)
	}
	return avgs, nil
}

func (r *sqlxResultRepository) UserAveragesForQuiz(ctx context.Context, quizID string) ([]domain.UserScore, error) {
	var rows []models.UserScoreRow
	query := `SELECT user_id "USER_ID", AVG(right_count / total_count) "SCORE"
	          FROM quiz_results
	          WHERE quiz_id = :1
	          GROUP BY user_id`
	if err := r.db.SelectContext(ctx, &rows, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to get user averages for quiz %s: %w", quizID, err)
	}
	return toDomainUserScores(rows), nil
}

// GlobalUserRatios returns sum(right_count)/sum(total_count) per user.
func (r *sqlxResultRepository) GlobalUserRatios(ctx context.Context) ([]domain.UserScore, error) {
	var rows []models.UserScoreRow
	query := `SELECT user_id "USER_ID", SUM(right_count) / SUM(total_count) "SCORE"
	          FROM quiz_results
	          GROUP BY user_id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to get global user ratios: %w", err)
	}
	return toDomainUserScores(rows), nil
}

func (r *sqlxResultRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Result, error) {
	var rows []models.QuizResult
	query := `SELECT ` + resultColumns + ` FROM quiz_results
	          WHERE user_id = :1
	          ORDER BY created_at DESC, id DESC`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list results for user %s: %w", userID, err)
	}
	return toDomainResults(rows), nil
}

// ListByCompany lists a company's results, optionally restricted to one user.
func (r *sqlxResultRepository) ListByCompany(ctx context.Context, companyID, userID string) ([]*domain.Result, error) {
	var rows []models.QuizResult
	var err error
	if userID == "" {
		query := `SELECT ` + resultColumns + ` FROM quiz_results
		          WHERE company_id = :1
		          ORDER BY user_id, created_at DESC, id DESC`
		err = r.db.SelectContext(ctx, &rows, query, companyID)
	} else {
		query := `SELECT ` + resultColumns + ` FROM quiz_results
		          WHERE company_id = :1 AND user_id = :2
		          ORDER BY user_id, created_at DESC, id DESC`
		err = r.db.SelectContext(ctx, &rows, query, companyID, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list results for company %s: %w", companyID, err)
	}
	return toDomainResults(rows), nil
}

func (r *sqlxResultRepository) CompletedQuizzes(ctx context.Context, userID string) ([]domain.CompletedQuiz, error) {
	var rows []models.LastTimeRow
	query := `SELECT user_id "USER_ID", company_id "COMPANY_ID", quiz_id "QUIZ_ID", MAX(created_at) "LAST_AT"
	          FROM quiz_results
	          WHERE user_id = :1
	          GROUP BY user_id, company_id, quiz_id
	          ORDER BY MAX(created_at) DESC`
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get completed quizzes for user %s: %w", userID, err)
	}
	out := make([]domain.CompletedQuiz, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CompletedQuiz{QuizID: row.QuizID, CompanyID: row.CompanyID, LastCompletedAt: row.LastAt})
	}
	return out, nil
}

func (r *sqlxResultRepository) LastAttemptsForCompany(ctx context.Context, companyID string) ([]domain.LastAttempt, error) {
	var rows []models.LastTimeRow
	query := `SELECT user_id "USER_ID", company_id "COMPANY_ID", quiz_id "QUIZ_ID", MAX(created_at) "LAST_AT"
	          FROM quiz_results
	          WHERE company_id = :1
	          GROUP BY user_id, company_id, quiz_id
	          ORDER BY user_id, quiz_id`
	if err := r.db.SelectContext(ctx, &rows, query, companyID); err != nil {
		return nil, fmt.Errorf("failed to get last attempts for company %s: %w", companyID, err)
	}
	out := make([]domain.LastAttempt, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.LastAttempt{UserID: row.UserID, QuizID: row.QuizID, LastAttemptAt: row.LastAt})
	}
	return out, nil
}

func toDomainResults(rows []models.QuizResult) []*domain.Result {
	out := make([]*domain.Result, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainResult(&rows[i]))
	}
	return out
}

func toDomainUserScores(rows []models.UserScoreRow) []domain.UserScore {
	out := make([]domain.UserScore, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.UserScore{UserID: row.UserID, Score: row.Score})
	}
	return out
}

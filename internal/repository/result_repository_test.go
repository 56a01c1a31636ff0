package repository

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"quiz-results/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupResultTestDB creates a new sqlx.DB instance and sqlmock for result repository testing.
func setupResultTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	sqlxDB := sqlx.NewDb(mockDB, "sqlmock")
	t.Cleanup(func() { sqlxDB.Close() })
	return sqlxDB, mock
}

var resultRowColumns = []string{"ID", "USER_ID", "COMPANY_ID", "QUIZ_ID", "RIGHT_COUNT", "TOTAL_COUNT", "CREATED_AT"}

func TestResultRepository_Insert(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)
	now := time.Now().Truncate(time.Second)

	result := &domain.Result{UserID: "U1", CompanyID: "C1", QuizID: "Q1", RightCount: 1, TotalCount: 2, CreatedAt: now}

	mock.ExpectExec(`INSERT INTO quiz_results`).
		WithArgs(sqlmock.AnyArg(), "U1", "C1", "Q1", float64(1), 2, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Insert(context.Background(), result)
	assert.NoError(t, err)
	assert.Len(t, result.ID, 26)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_Insert_LongUserID(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)
	userID := strings.Repeat("g", 64)

	mock.ExpectExec(`INSERT INTO quiz_results`).
		WithArgs(sqlmock.AnyArg(), userID, "C1", "Q1", float64(2), 2, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`(?s)FROM quiz_results\s+WHERE user_id = :1 AND quiz_id = :2.*FOR UPDATE`).
		WithArgs(userID, "Q1").
		WillReturnRows(sqlmock.NewRows(resultRowColumns).AddRow("R1", userID, "C1", "Q1", 2.0, 2, time.Now()))

	ctx := context.Background()
	require.NoError(t, repo.Insert(ctx, &domain.Result{UserID: userID, CompanyID: "C1", QuizID: "Q1", RightCount: 2, TotalCount: 2}))
	found, err := repo.FindForUpdate(ctx, userID, "Q1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, userID, found.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_Insert_Error(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)

	mock.ExpectExec(`INSERT INTO quiz_results`).WillReturnError(errors.New("ORA-02290: check constraint violated"))

	err := repo.Insert(context.Background(), &domain.Result{ID: "R1", UserID: "U1", QuizID: "Q1", TotalCount: 0})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert quiz result")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_LockQuizResults(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SELECT id FROM quizzes WHERE id = :1 FOR UPDATE`).WithArgs("Q1").
		WillReturnRows(sqlmock.NewRows([]string{"ID"}).AddRow("Q1"))
	require.NoError(t, repo.LockQuizResults(ctx, "Q1"))

	mock.ExpectQuery(`SELECT id FROM quizzes`).WithArgs("Q2").
		WillReturnRows(sqlmock.NewRows([]string{"ID"}))
	err := repo.LockQuizResults(ctx, "Q2")
	assert.ErrorContains(t, err, "failed to lock quiz Q2")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_FindForUpdate(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)
	tm := NewTransactionManagerAdapter(db)
	now := time.Now().Truncate(time.Second)

	mock.ExpectBegin()
	mock.ExpectQuery(`(?s)SELECT .* FROM quiz_results\s+WHERE user_id = :1 AND quiz_id = :2\s+ORDER BY created_at DESC\s+FOR UPDATE`).
		WithArgs("U1", "Q1").
		WillReturnRows(sqlmock.NewRows(resultRowColumns).
			AddRow("R2", "U1", "C1", "Q1", 2.0, 2, now).
			AddRow("R1", "U1", "C1", "Q1", 1.0, 2, now.Add(-time.Hour)))
	mock.ExpectCommit()

	var found *domain.Result
	err := tm.WithTransaction(context.Background(), func(ctx context.Context) error {
		var err error
		found, err = repo.FindForUpdate(ctx, "U1", "Q1")
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "R2", found.ID)
	assert.Equal(t, 2, found.TotalCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_FindForUpdate_None(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)

	mock.ExpectQuery(`FOR UPDATE`).WithArgs("U1", "Q1").WillReturnRows(sqlmock.NewRows(resultRowColumns))

	found, err := repo.FindForUpdate(context.Background(), "U1", "Q1")
	assert.NoError(t, err)
	assert.Nil(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_Update(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)
	now := time.Now()

	mock.ExpectExec(`UPDATE quiz_results SET right_count = :1, total_count = :2, created_at = :3 WHERE id = :4`).
		WithArgs(1.5, 2, now, "R1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Update(context.Background(), &domain.Result{ID: "R1", RightCount: 1.5, TotalCount: 2, CreatedAt: now})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_LastAttemptAt(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)
	now := time.Now().Truncate(time.Second)

	mock.ExpectQuery(`SELECT MAX\(created_at\) FROM quiz_results`).WithArgs("U1", "Q1").
		WillReturnRows(sqlmock.NewRows([]string{"MAX"}).AddRow(now))
	last, err := repo.LastAttemptAt(context.Background(), "U1", "Q1")
	require.NoError(t, err)
	require.NotNil(t, last)
	assert.Equal(t, now, *last)

	mock.ExpectQuery(`SELECT MAX\(created_at\) FROM quiz_results`).WithArgs("U2", "Q1").
		WillReturnRows(sqlmock.NewRows([]string{"MAX"}).AddRow(nil))
	last, err = repo.LastAttemptAt(context.Background(), "U2", "Q1")
	require.NoError(t, err)
	assert.Nil(t, last)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_QuizAverages(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)
	ctx := context.Background()
	cols := []string{"USER_ID", "COMPANY_ID", "QUIZ_ID", "AVERAGE_SCORE"}

	mock.ExpectQuery(`(?s)AVG\(right_count / total_count\).*WHERE company_id = :1 AND user_id = :2\s+GROUP BY user_id, company_id, quiz_id`).
		WithArgs("C1", "U1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("U1", "C1", "Q1", 0.5).AddRow("U1", "C1", "Q2", 1.0))
	avgs, err := repo.QuizAveragesForUserInCompany(ctx, "C1", "U1")
	require.NoError(t, err)
	assert.Equal(t, []domain.QuizAverage{
		{UserID: "U1", CompanyID: "C1", QuizID: "Q1", Average: 0.5},
		{UserID: "U1", CompanyID: "C1", QuizID: "Q2", Average: 1.0},
	}, avgs)

	mock.ExpectQuery(`WHERE user_id = :1\s+GROUP BY user_id, company_id, quiz_id`).WithArgs("U1").
		WillReturnRows(sqlmock.NewRows(cols))
	avgs, err = repo.QuizAveragesForUser(ctx, "U1")
	require.NoError(t, err)
	assert.Empty(t, avgs)

	mock.ExpectQuery(`WHERE company_id = :1\s+GROUP BY user_id, company_id, quiz_id`).WithArgs("C1").
		WillReturnError(errors.New("ORA-00942"))
	_, err = repo.QuizAveragesForCompany(ctx, "C1")
	assert.ErrorContains(t, err, "company C1")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_UserScores(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)
	ctx := context.Background()

	mock.ExpectQuery(`SUM\(right_count\) / SUM\(total_count\)`).
		WillReturnRows(sqlmock.NewRows([]string{"USER_ID", "SCORE"}).AddRow("U1", 0.75))
	scores, err := repo.GlobalUserRatios(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.UserScore{{UserID: "U1", Score: 0.75}}, scores)

	mock.ExpectQuery(`WHERE quiz_id = :1\s+GROUP BY user_id`).WithArgs("Q1").
		WillReturnRows(sqlmock.NewRows([]string{"USER_ID", "SCORE"}).AddRow("U1", 0.5).AddRow("U2", 1.0))
	scores, err = repo.UserAveragesForQuiz(ctx, "Q1")
	require.NoError(t, err)
	assert.Len(t, scores, 2)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_Lists(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)

	mock.ExpectQuery(`WHERE user_id = :1\s+ORDER BY created_at DESC, id DESC`).WithArgs("U1").
		WillReturnRows(sqlmock.NewRows(resultRowColumns).AddRow("R1", "U1", "C1", "Q1", 1.0, 2, now))
	results, err := repo.ListByUser(ctx, "U1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.InDelta(t, 0.5, results[0].Score(), 1e-9)

	mock.ExpectQuery(`WHERE company_id = :1\s+ORDER BY`).WithArgs("C1").
		WillReturnRows(sqlmock.NewRows(resultRowColumns))
	results, err = repo.ListByCompany(ctx, "C1", "")
	require.NoError(t, err)
	assert.Empty(t, results)

	mock.ExpectQuery(`WHERE company_id = :1 AND user_id = :2`).WithArgs("C1", "U1").
		WillReturnRows(sqlmock.NewRows(resultRowColumns).AddRow("R1", "U1", "C1", "Q1", 1.0, 2, now))
	results, err = repo.ListByCompany(ctx, "C1", "U1")
	require.NoError(t, err)
	assert.Len(t, results, 1)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepository_LastTimes(t *testing.T) {
	db, mock := setupResultTestDB(t)
	repo := NewSQLXResultRepository(db)
	ctx := context.Background()
	now := time.Now().Truncate(time.Second)
	cols := []string{"USER_ID", "COMPANY_ID", "QUIZ_ID", "LAST_AT"}

	mock.ExpectQuery(`(?s)MAX\(created_at\) "LAST_AT".*WHERE user_id = :1`).WithArgs("U1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("U1", "C1", "Q1", now))
	completed, err := repo.CompletedQuizzes(ctx, "U1")
	require.NoError(t, err)
	assert.Equal(t, []domain.CompletedQuiz{{QuizID: "Q1", CompanyID: "C1", LastCompletedAt: now}}, completed)

	mock.ExpectQuery(`(?s)MAX\(created_at\) "LAST_AT".*WHERE company_id = :1`).WithArgs("C1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("U1", "C1", "Q1", now).AddRow("U2", "C1", "Q1", now))
	last, err := repo.LastAttemptsForCompany(ctx, "C1")
	require.NoError(t, err)
	assert.Len(t, last, 2)
	assert.Equal(t, "U2", last[1].UserID)

	assert.NoError(t, mock.ExpectationsWereMet())
}

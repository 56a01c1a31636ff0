package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quiz-results/internal/domain"
	"quiz-results/internal/repository/models"
	"quiz-results/internal/util"

	"github.com/jmoiron/sqlx"
)

const quizColumns = `id "ID", name "NAME", title "TITLE", description "DESCRIPTION", frequency "FREQUENCY",
	retake_after_minutes "RETAKE_AFTER_MINUTES", company_id "COMPANY_ID", created_by "CREATED_BY",
	updated_by "UPDATED_BY", created_at "CREATED_AT", updated_at "UPDATED_AT"`

const questionColumns = `id "ID", text "TEXT", answers "ANSWERS", correct_answers "CORRECT_ANSWERS",
	quiz_id "QUIZ_ID", company_id "COMPANY_ID", created_by "CREATED_BY", updated_by "UPDATED_BY",
	created_at "CREATED_AT", updated_at "UPDATED_AT"`

// QuizCatalogRepository reads quizzes and questions for scoring and writes
// them for seeding.
type QuizCatalogRepository struct {
	db *sqlx.DB
}

// NewQuizCatalogRepository creates a new catalog repository.
func NewQuizCatalogRepository(db *sqlx.DB) *QuizCatalogRepository {
	return &QuizCatalogRepository{db: db}
}

var (
	_ domain.QuizCatalog   = (*QuizCatalogRepository)(nil)
	_ domain.CatalogWriter = (*QuizCatalogRepository)(nil)
)

func toDomainQuiz(m *models.Quiz) *domain.Quiz {
	if m == nil {
		return nil
	}
	return &domain.Quiz{
		ID:          m.ID,
		Name:        m.Name,
		Title:       m.Title.String,
		Description: m.Description.String,
		Frequency:   util.NullTimeToPtr(m.Frequency),
		RetakeAfter: time.Duration(m.RetakeAfterMinutes) * time.Minute,
		CompanyID:   m.CompanyID,
		CreatedBy:   m.CreatedBy.String,
		UpdatedBy:   m.UpdatedBy.String,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toDomainQuestion(m *models.Question) *domain.Question {
	if m == nil {
		return nil
	}
	return &domain.Question{
		ID:               m.ID,
		Text:             m.Text,
		CandidateAnswers: []string(m.Answers),
		CorrectAnswers:   []string(m.CorrectAnswers),
		QuizID:           m.QuizID,
		CompanyID:        m.CompanyID,
		CreatedBy:        m.CreatedBy.String,
		UpdatedBy:        m.UpdatedBy.String,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

// GetQuiz returns nil, nil when the quiz does not exist.
func (r *QuizCatalogRepository) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	var m models.Quiz
	query := `SELECT ` + quizColumns + ` FROM quizzes WHERE id = :1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz %s: %w", quizID, err)
	}
	return toDomainQuiz(&m), nil
}

// QuestionsForQuiz returns the quiz questions in creation order.
func (r *QuizCatalogRepository) QuestionsForQuiz(ctx context.Context, quizID string) ([]*domain.Question, error) {
	var rows []models.Question
	query := `SELECT ` + questionColumns + ` FROM questions WHERE quiz_id = :1 ORDER BY created_at, id`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to get questions for quiz %s: %w", quizID, err)
	}
	out := make([]*domain.Question, 0, len(rows))
	for i := range rows {
		out = append(out, toDomainQuestion(&rows[i]))
	}
	return out, nil
}

func (r *QuizCatalogRepository) QuestionIDsForQuiz(ctx context.Context, quizID string) ([]string, error) {
	var ids []string
	query := `SELECT id FROM questions WHERE quiz_id = :1 ORDER BY created_at, id`
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &ids, query, quizID); err != nil {
		return nil, fmt.Errorf("failed to get question ids for quiz %s: %w", quizID, err)
	}
	return ids, nil
}

// CompanyOfQuiz returns "" when the quiz does not exist.
func (r *QuizCatalogRepository) CompanyOfQuiz(ctx context.Context, quizID string) (string, error) {
	var companyID string
	query := `SELECT company_id FROM quizzes WHERE id = :1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &companyID, query, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get company of quiz %s: %w", quizID, err)
	}
	return companyID, nil
}

func (r *QuizCatalogRepository) CreateCompany(ctx context.Context, company *domain.Company) error {
	if company.ID == "" {
		company.ID = util.NewULID()
	}
	now := time.Now()
	query := `INSERT INTO companies (id, name, owner_id, created_at, updated_at) VALUES (:1, :2, :3, :4, :5)`
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, company.ID, company.Name, company.OwnerID, now, now); err != nil {
		return fmt.Errorf("failed to create company %s: %w", company.Name, err)
	}
	return nil
}

func (r *QuizCatalogRepository) AddMember(ctx context.Context, member *domain.CompanyMember) error {
	if err := member.Validate(); err != nil {
		return err
	}
	query := `INSERT INTO company_members (company_id, user_id, role, created_at) VALUES (:1, :2, :3, :4)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, member.CompanyID, member.UserID, string(member.Role), time.Now())
	if err != nil {
		return fmt.Errorf("failed to add member %s to company %s: %w", member.UserID, member.CompanyID, err)
	}
	return nil
}

func (r *QuizCatalogRepository) CreateQuiz(ctx context.Context, quiz *domain.Quiz) error {
	if err := quiz.Validate(); err != nil {
		return err
	}
	if quiz.ID == "" {
		quiz.ID = util.NewULID()
	}
	now := time.Now()
	if quiz.CreatedAt.IsZero() {
		quiz.CreatedAt = now
	}
	quiz.UpdatedAt = now

	query := `INSERT INTO quizzes (id, name, title, description, frequency, retake_after_minutes, company_id,
	          created_by, updated_by, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10, :11)`
	_, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		quiz.ID,
		quiz.Name,
		util.StringToNullString(quiz.Title),
		util.StringToNullString(quiz.Description),
		util.TimePtrToNullTime(quiz.Frequency),
		int64(quiz.RetakeAfter/time.Minute),
		quiz.CompanyID,
		util.StringToNullString(quiz.CreatedBy),
		util.StringToNullString(quiz.UpdatedBy),
		quiz.CreatedAt,
		quiz.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create quiz %s: %w", quiz.Name, err)
	}
	return nil
}

func (r *QuizCatalogRepository) CreateQuestion(ctx context.Context, question *domain.Question) error {
	if err := question.Validate(); err != nil {
		return err
	}
	if question.ID == "" {
		question.ID = util.NewULID()
	}
	now := time.Now()
	if question.CreatedAt.IsZero() {
		question.CreatedAt = now
	}
	question.UpdatedAt = now

	answers, err := models.StringSlice(question.CandidateAnswers).Value()
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	correct, err := models.StringSlice(question.CorrectAnswers).Value()
	if err != nil {
		return fmt.Errorf("failed to encode correct answers: %w", err)
	}

	query := `INSERT INTO questions (id, text, answers, correct_answers, quiz_id, company_id,
	          created_by, updated_by, created_at, updated_at)
	          VALUES (:1, :2, :3, :4, :5, :6, :7, :8, :9, :10)`
	_, err = GetExecutor(ctx, r.db).ExecContext(ctx, query,
		question.ID,
		question.Text,
		answers,
		correct,
		question.QuizID,
		question.CompanyID,
		util.StringToNullString(question.CreatedBy),
		util.StringToNullString(question.UpdatedBy),
		question.CreatedAt,
		question.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create question for quiz %s: %w", question.QuizID, err)
	}
	return nil
}

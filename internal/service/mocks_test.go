package service

import (
	"context"
	"time"

	"quiz-results/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuizCatalog ---
type MockQuizCatalog struct {
	mock.Mock
}

func (m *MockQuizCatalog) GetQuiz(ctx context.Context, quizID string) (*domain.Quiz, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Quiz), args.Error(1)
}

func (m *MockQuizCatalog) QuestionsForQuiz(ctx context.Context, quizID string) ([]*domain.Question, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Question), args.Error(1)
}

func (m *MockQuizCatalog) QuestionIDsForQuiz(ctx context.Context, quizID string) ([]string, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockQuizCatalog) CompanyOfQuiz(ctx context.Context, quizID string) (string, error) {
	args := m.Called(ctx, quizID)
	return args.String(0), args.Error(1)
}

// --- MockResultRepository ---
type MockResultRepository struct {
	mock.Mock
}

func (m *MockResultRepository) Insert(ctx context.Context, result *domain.Result) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) LockQuizResults(ctx context.Context, quizID string) error {
	args := m.Called(ctx, quizID)
	return args.Error(0)
}

func (m *MockResultRepository) FindForUpdate(ctx context.Context, userID, quizID string) (*domain.Result, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Result), args.Error(1)
}

func (m *MockResultRepository) Update(ctx context.Context, result *domain.Result) error {
	args := m.Called(ctx, result)
	return args.Error(0)
}

func (m *MockResultRepository) LastAttemptAt(ctx context.Context, userID, quizID string) (*time.Time, error) {
	args := m.Called(ctx, userID, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}

func (m *MockResultRepository) QuizAveragesForUserInCompany(ctx context.Context, companyID, userID string) ([]domain.QuizAverage, error) {
	args := m.Called(ctx, companyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QuizAverage), args.Error(1)
}

func (m *MockResultRepository) QuizAveragesForUser(ctx context.Context, userID string) ([]domain.QuizAverage, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QuizAverage), args.Error(1)
}

func (m *MockResultRepository) QuizAveragesForCompany(ctx context.Context, companyID string) ([]domain.QuizAverage, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QuizAverage), args.Error(1)
}

func (m *MockResultRepository) UserAveragesForQuiz(ctx context.Context, quizID string) ([]domain.UserScore, error) {
	args := m.Called(ctx, quizID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserScore), args.Error(1)
}

func (m *MockResultRepository) GlobalUserRatios(ctx context.Context) ([]domain.UserScore, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.UserScore), args.Error(1)
}

func (m *MockResultRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Result, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Result), args.Error(1)
}

func (m *MockResultRepository) ListByCompany(ctx context.Context, companyID, userID string) ([]*domain.Result, error) {
	args := m.Called(ctx, companyID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Result), args.Error(1)
}

func (m *MockResultRepository) CompletedQuizzes(ctx context.Context, userID string) ([]domain.CompletedQuiz, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CompletedQuiz), args.Error(1)
}

func (m *MockResultRepository) LastAttemptsForCompany(ctx context.Context, companyID string) ([]domain.LastAttempt, error) {
	args := m.Called(ctx, companyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LastAttempt), args.Error(1)
}

// --- MockMembershipOracle ---
type MockMembershipOracle struct {
	mock.Mock
}

func (m *MockMembershipOracle) IsMember(ctx context.Context, userID, companyID string) (bool, error) {
	args := m.Called(ctx, userID, companyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipOracle) IsAdminOrOwner(ctx context.Context, userID, companyID string) (bool, error) {
	args := m.Called(ctx, userID, companyID)
	return args.Bool(0), args.Error(1)
}

func (m *MockMembershipOracle) OwnerOf(ctx context.Context, companyID string) (string, error) {
	args := m.Called(ctx, companyID)
	return args.String(0), args.Error(1)
}

// --- MockTransactionManager ---
// Runs fn inline and records whether it returned an error.
type MockTransactionManager struct {
	Calls      int
	RolledBack bool
}

func (m *MockTransactionManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Calls++
	if err := fn(ctx); err != nil {
		m.RolledBack = true
		return err
	}
	return nil
}

// --- MockAnswerCacheService ---
type MockAnswerCacheService struct {
	mock.Mock
	disabled bool
}

func (m *MockAnswerCacheService) Enabled() bool {
	return !m.disabled
}

func (m *MockAnswerCacheService) Record(ctx context.Context, entry domain.AnswerCacheEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAnswerCacheService) Lookup(ctx context.Context, quizID, userID, questionID string) (*domain.AnswerCacheEntry, error) {
	args := m.Called(ctx, quizID, userID, questionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AnswerCacheEntry), args.Error(1)
}

// --- MockExporter ---
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) Append(ctx context.Context, name string, format domain.ExportFormat, entries []domain.AnswerCacheEntry) (string, error) {
	args := m.Called(ctx, name, format, entries)
	return args.String(0), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

var (
	_ domain.QuizCatalog        = (*MockQuizCatalog)(nil)
	_ domain.ResultRepository   = (*MockResultRepository)(nil)
	_ domain.MembershipOracle   = (*MockMembershipOracle)(nil)
	_ domain.TransactionManager = (*MockTransactionManager)(nil)
	_ AnswerCacheService        = (*MockAnswerCacheService)(nil)
	_ domain.Exporter           = (*MockExporter)(nil)
	_ domain.Cache              = (*MockCache)(nil)
)

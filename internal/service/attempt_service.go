package service

import (
	"context"
	"fmt"
	"time"

	"quiz-results/internal/domain"
	"quiz-results/internal/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// AttemptService grades quiz submissions and persists their results.
type AttemptService interface {
	// SubmitAttempt grades answers against the quiz questions in creation
	// order and returns one feedback line per graded pair.
	SubmitAttempt(ctx context.Context, actor domain.Actor, quizID string, answers []string) ([]string, error)
}

// AttemptConfig tunes the scoring pipeline.
type AttemptConfig struct {
	SubmitRole            domain.Role
	MergePolicy           domain.ResultMergePolicy
	StrictLength          bool
	CacheWriteConcurrency int
}

type attemptService struct {
	catalog     domain.QuizCatalog
	results     domain.ResultRepository
	auth        *Authorizer
	answerCache AnswerCacheService
	txManager   domain.TransactionManager
	cfg         AttemptConfig
	now         func() time.Time
}

// NewAttemptService creates a new instance of attemptService.
func NewAttemptService(
	catalog domain.QuizCatalog,
	results domain.ResultRepository,
	auth *Authorizer,
	answerCache AnswerCacheService,
	txManager domain.TransactionManager,
	cfg AttemptConfig,
) AttemptService {
	if cfg.CacheWriteConcurrency <= 0 {
		cfg.CacheWriteConcurrency = 8
	}
	if cfg.SubmitRole == "" {
		cfg.SubmitRole = domain.RoleAdminOrOwner
	}
	if cfg.MergePolicy == "" {
		cfg.MergePolicy = domain.MergeAppendHistory
	}
	return &attemptService{
		catalog:     catalog,
		results:     results,
		auth:        auth,
		answerCache: answerCache,
		txManager:   txManager,
		cfg:         cfg,
		now:         time.Now,
	}
}

func (s *attemptService) SubmitAttempt(ctx context.Context, actor domain.Actor, quizID string, answers []string) ([]string, error) {
	log := logger.Get().With(zap.String("op", "SubmitAttempt"), zap.String("quizID", quizID), zap.String("userID", actor.UserID))

	quiz, err := s.catalog.GetQuiz(ctx, quizID)
	if err != nil {
		log.Error("Failed to load quiz", zap.Error(err))
		return nil, domain.NewInternalError("failed to load quiz", err)
	}
	if quiz == nil {
		return nil, domain.NewQuizNotFoundError(quizID)
	}

	if err := s.auth.RequireRole(ctx, actor, quiz.CompanyID, s.cfg.SubmitRole); err != nil {
		return nil, err
	}

	if len(answers) == 0 {
		return nil, domain.NewEmptyAnswerError()
	}

	questions, err := s.catalog.QuestionsForQuiz(ctx, quizID)
	if err != nil {
		log.Error("Failed to load questions", zap.Error(err))
		return nil, domain.NewInternalError("failed to load quiz questions", err)
	}
	if len(questions) < domain.MinQuestionsPerQuiz {
		return nil, domain.NewInsufficientQuestionsError(quizID, len(questions))
	}

	now := s.now()
	var lastAttempt *time.Time
	if quiz.RetakeAfter > 0 {
		lastAttempt, err = s.results.LastAttemptAt(ctx, actor.UserID, quizID)
		if err != nil {
			log.Error("Failed to load last attempt", zap.Error(err))
			return nil, domain.NewInternalError("failed to load last attempt", err)
		}
	}
	if err := quiz.CheckAvailability(now, lastAttempt); err != nil {
		return nil, err
	}

	graded, err := domain.GradeAttempt(questions, answers, s.cfg.StrictLength)
	if err != nil {
		return nil, err
	}

	s.recordAnswers(ctx, actor.UserID, quiz, graded)

	score := domain.AttemptScore{Right: domain.CountCorrect(graded), Total: len(graded)}
	if err := s.persist(ctx, actor.UserID, quiz, score, now); err != nil {
		log.Error("Failed to persist result", zap.Error(err))
		return nil, domain.NewAttemptPersistenceError(err).WithContext("quizID", quizID)
	}

	log.Info("Quiz attempt scored",
		zap.Int("right", score.Right),
		zap.Int("total", score.Total),
		zap.String("policy", string(s.cfg.MergePolicy)))

	feedback := make([]string, 0, len(graded))
	for _, g := range graded {
		feedback = append(feedback, g.Feedback)
	}
	return feedback, nil
}

// recordAnswers writes one cache entry per graded pair and waits for all of
// them. Failures are logged and dropped.
func (s *attemptService) recordAnswers(ctx context.Context, userID string, quiz *domain.Quiz, graded []domain.GradedAnswer) {
	if s.answerCache == nil || !s.answerCache.Enabled() {
		return
	}

	var g errgroup.Group
	g.SetLimit(s.cfg.CacheWriteConcurrency)
	for _, ga := range graded {
		entry := domain.AnswerCacheEntry{
			UserID:     userID,
			CompanyID:  quiz.CompanyID,
			QuizID:     quiz.ID,
			QuestionID: ga.Question.ID,
			UserAnswer: ga.UserAnswer,
			IsCorrect:  ga.IsCorrect,
		}
		g.Go(func() error {
			if err := s.answerCache.Record(ctx, entry); err != nil {
				logger.Get().Warn("Answer cache write dropped",
					zap.String("quizID", entry.QuizID),
					zap.String("questionID", entry.QuestionID),
					zap.Error(err))
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *attemptService) persist(ctx context.Context, userID string, quiz *domain.Quiz, score domain.AttemptScore, now time.Time) error {
	return s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if !s.cfg.MergePolicy.AppendsHistory() {
			if err := s.results.LockQuizResults(txCtx, quiz.ID); err != nil {
				return err
			}
			existing, err := s.results.FindForUpdate(txCtx, userID, quiz.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				merged := s.cfg.MergePolicy.Merge(existing, score, now)
				if err := s.results.Update(txCtx, merged); err != nil {
					return fmt.Errorf("update result %s: %w", merged.ID, err)
				}
				return nil
			}
		}

		result := &domain.Result{
			UserID:     userID,
			CompanyID:  quiz.CompanyID,
			QuizID:     quiz.ID,
			RightCount: float64(score.Right),
			TotalCount: score.Total,
			CreatedAt:  now,
		}
		return s.results.Insert(txCtx, result)
	})
}

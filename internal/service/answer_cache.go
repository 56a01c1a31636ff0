package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"quiz-results/internal/cache"
	"quiz-results/internal/domain"
	"quiz-results/internal/logger"

	"go.uber.org/zap"
)

// ErrAnswerCacheDisabled is returned by Lookup when no cache is configured.
var ErrAnswerCacheDisabled = errors.New("answer cache is disabled")

// AnswerCacheService stores per-question grading outcomes under the
// quiz_pass key scheme. The cache is never authoritative.
type AnswerCacheService interface {
	Record(ctx context.Context, entry domain.AnswerCacheEntry) error
	// Lookup returns nil, nil on a miss.
	Lookup(ctx context.Context, quizID, userID, questionID string) (*domain.AnswerCacheEntry, error)
	Enabled() bool
}

type answerCacheServiceImpl struct {
	cache     domain.Cache
	ttl       time.Duration
	opTimeout time.Duration
}

// NewAnswerCacheService creates a new instance of answerCacheServiceImpl.
// With a nil cache Record is a no-op and Lookup fails with ErrAnswerCacheDisabled.
func NewAnswerCacheService(cache domain.Cache, ttl, opTimeout time.Duration) AnswerCacheService {
	return &answerCacheServiceImpl{
		cache:     cache,
		ttl:       ttl,
		opTimeout: opTimeout,
	}
}

func (s *answerCacheServiceImpl) Enabled() bool {
	return s.cache != nil
}

func (s *answerCacheServiceImpl) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func (s *answerCacheServiceImpl) Record(ctx context.Context, entry domain.AnswerCacheEntry) error {
	if s.cache == nil {
		logger.Get().Debug("AnswerCacheService: Cache not available, skipping cache write.", zap.String("quizID", entry.QuizID))
		return nil
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal answer cache entry: %w", err)
	}

	key := cache.QuizPassKey(entry.QuizID, entry.UserID, entry.QuestionID)
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.cache.Set(callCtx, key, string(payload), s.ttl); err != nil {
		logger.Get().Warn("AnswerCacheService: Failed to cache answer",
			zap.Error(err),
			zap.String("key", key))
		return err
	}
	return nil
}

func (s *answerCacheServiceImpl) Lookup(ctx context.Context, quizID, userID, questionID string) (*domain.AnswerCacheEntry, error) {
	if s.cache == nil {
		return nil, ErrAnswerCacheDisabled
	}

	key := cache.QuizPassKey(quizID, userID, questionID)
	callCtx, cancel := s.withTimeout(ctx)
	defer cancel()

	raw, err := s.cache.Get(callCtx, key)
	if err != nil {
		if errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Debug("AnswerCacheService: Cache miss", zap.String("key", key))
			return nil, nil
		}
		return nil, err
	}

	var entry domain.AnswerCacheEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil, fmt.Errorf("decode answer cache entry %s: %w", key, err)
	}
	return &entry, nil
}

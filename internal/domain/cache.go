package domain

import (
	"context"
	"time"
)

// CacheError represents an error originating from the cache.
type CacheError string

func (e CacheError) Error() string {
	return string(e)
}

// ErrCacheMiss is returned when a key is not found in the cache.
const ErrCacheMiss = CacheError("cache: key not found")

// Cache defines the interface (port) for caching operations.
// Implementations of this interface will be the adapters (e.g., RedisCacheAdapter).
type Cache interface {
	// Get retrieves an item from the cache.
	// It returns ErrCacheMiss if the key is not found.
	Get(ctx context.Context, key string) (string, error)

	// Set adds an item to the cache, overwriting an existing item if one exists.
	// If expiration is 0, the item is cached indefinitely.
	Set(ctx context.Context, key string, value string, expiration time.Duration) error

	// Ping checks the health of the cache service.
	Ping(ctx context.Context) error
}

// AnswerCacheEntry is the per-question outcome recorded while grading an attempt.
// The JSON layout is read by export tooling and must stay stable.
type AnswerCacheEntry struct {
	UserID     string `json:"user_id"`
	CompanyID  string `json:"company_id"`
	QuizID     string `json:"quiz_id"`
	QuestionID string `json:"question_id"`
	UserAnswer string `json:"user_answer"`
	IsCorrect  bool   `json:"is_correct"`
}

// AnswerCacheEntryFields lists the CSV column order for exported entries.
var AnswerCacheEntryFields = []string{"user_id", "company_id", "quiz_id", "question_id", "user_answer", "is_correct"}

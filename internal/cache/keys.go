package cache

import "fmt"

const (
	// QuizPassPrefix is shared with export tooling and must not change.
	QuizPassPrefix = "quiz_pass"
)

// QuizPassKey is the answer cache key for one question of one user's attempt:
// quiz_pass:{quiz_id}:{user_id}:question_{question_id}
func QuizPassKey(quizID, userID, questionID string) string {
	return fmt.Sprintf("%s:%s:%s:question_%s", QuizPassPrefix, quizID, userID, questionID)
}

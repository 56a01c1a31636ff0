package domain

import (
	"fmt"
	"strings"
	"time"
)

const (
	// MinQuestionsPerQuiz is the number of questions a quiz needs before it can be attempted.
	MinQuestionsPerQuiz = 2
	// MinAnswersPerQuestion is the number of candidate answers a question needs at creation.
	MinAnswersPerQuestion = 2
)

// Quiz represents a company quiz
type Quiz struct {
	ID          string
	Name        string
	Title       string
	Description string
	// Frequency is the availability deadline; attempts after it are rejected.
	Frequency *time.Time
	// RetakeAfter is the minimum gap between two attempts of the same user.
	RetakeAfter time.Duration
	CompanyID   string
	CreatedBy   string
	UpdatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Validate validates the quiz
func (q *Quiz) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(q.Name) == "" {
		errs = append(errs, NewMissingFieldError("name"))
	}
	if strings.TrimSpace(q.CompanyID) == "" {
		errs = append(errs, NewMissingFieldError("company_id"))
	}
	if q.RetakeAfter < 0 {
		errs = append(errs, NewInvalidFormatError("retake_after", q.RetakeAfter.String()))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// CheckAvailability returns a QuizUnavailable error when the quiz cannot be
// attempted at now. lastAttempt is the user's previous attempt time, if any.
func (q *Quiz) CheckAvailability(now time.Time, lastAttempt *time.Time) error {
	if q.Frequency != nil && now.After(*q.Frequency) {
		return NewQuizUnavailableError(
			fmt.Sprintf("quiz %s closed at %s", q.ID, q.Frequency.UTC().Format(time.RFC3339)))
	}
	if q.RetakeAfter > 0 && lastAttempt != nil {
		next := lastAttempt.Add(q.RetakeAfter)
		if now.Before(next) {
			return NewQuizUnavailableError(
				fmt.Sprintf("quiz %s can be retaken after %s", q.ID, next.UTC().Format(time.RFC3339)))
		}
	}
	return nil
}

// Question belongs to a quiz. CompanyID is denormalized from the quiz.
type Question struct {
	ID               string
	Text             string
	CandidateAnswers []string
	CorrectAnswers   []string
	QuizID           string
	CompanyID        string
	CreatedBy        string
	UpdatedBy        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Validate validates the question
func (q *Question) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(q.Text) == "" {
		errs = append(errs, NewMissingFieldError("text"))
	}
	if len(q.CandidateAnswers) < MinAnswersPerQuestion {
		errs = append(errs, NewOutOfRangeError("answers", len(q.CandidateAnswers), MinAnswersPerQuestion, 100))
	}
	if len(q.CorrectAnswers) == 0 {
		errs = append(errs, NewMissingFieldError("correct_answers"))
	}
	if strings.TrimSpace(q.QuizID) == "" {
		errs = append(errs, NewMissingFieldError("quiz_id"))
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

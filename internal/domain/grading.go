package domain

import (
	"fmt"
	"strings"
)

// AnswerSeparator splits a submitted answer into candidate tokens.
const AnswerSeparator = ","

// GradedAnswer is the outcome of one question/answer pairing.
type GradedAnswer struct {
	Position   int
	Question   *Question
	UserAnswer string
	IsCorrect  bool
	Feedback   string
}

// IsAnswerCorrect reports whether any comma separated token of submitted
// matches any correct answer, ignoring case and surrounding whitespace.
func IsAnswerCorrect(submitted string, correctAnswers []string) bool {
	correct := make(map[string]struct{}, len(correctAnswers))
	for _, c := range correctAnswers {
		correct[normalizeToken(c)] = struct{}{}
	}
	for _, token := range strings.Split(submitted, AnswerSeparator) {
		if _, ok := correct[normalizeToken(token)]; ok {
			return true
		}
	}
	return false
}

// FeedbackFor renders the per-question feedback line. position is zero based.
func FeedbackFor(position int, isCorrect bool, correctAnswers []string) string {
	if isCorrect {
		return fmt.Sprintf("Question %d: Correct!", position+1)
	}
	folded := make([]string, 0, len(correctAnswers))
	for _, c := range correctAnswers {
		folded = append(folded, strings.ToLower(c))
	}
	return fmt.Sprintf("Question %d: Incorrect. Correct answer(s) is/are '%s'", position+1, strings.Join(folded, "; "))
}

// GradeAttempt pairs answers with questions positionally. Pairs beyond the
// shorter of the two slices are ignored unless strict is set, in which case a
// length mismatch is a validation error.
func GradeAttempt(questions []*Question, answers []string, strict bool) ([]GradedAnswer, error) {
	if strict && len(questions) != len(answers) {
		return nil, NewInvalidInputError(
			fmt.Sprintf("expected %d answers, got %d", len(questions), len(answers)))
	}

	n := len(questions)
	if len(answers) < n {
		n = len(answers)
	}

	graded := make([]GradedAnswer, 0, n)
	for i := 0; i < n; i++ {
		q := questions[i]
		ok := IsAnswerCorrect(answers[i], q.CorrectAnswers)
		graded = append(graded, GradedAnswer{
			Position:   i,
			Question:   q,
			UserAnswer: answers[i],
			IsCorrect:  ok,
			Feedback:   FeedbackFor(i, ok, q.CorrectAnswers),
		})
	}
	return graded, nil
}

// CountCorrect returns the number of correct pairings.
func CountCorrect(graded []GradedAnswer) int {
	right := 0
	for _, g := range graded {
		if g.IsCorrect {
			right++
		}
	}
	return right
}

func normalizeToken(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

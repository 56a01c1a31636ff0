package validation

import (
	"regexp"
	"strings"

	"quiz-results/internal/domain"
)

const (
	MaxUserIDLength = 64
	maxAnswers      = 200
	maxAnswerLength = 2000
)

var (
	// ULID is 26 characters of Crockford's Base32.
	validULID   = regexp.MustCompile(`^[0-9A-HJKMNP-TV-Z]{26}$`)
	validUserID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
)

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateIDs checks that every value is a ULID. names and values are parallel.
func (v *Validator) ValidateIDs(names, values []string) domain.ValidationErrors {
	var errors domain.ValidationErrors
	for i, name := range names {
		value := values[i]
		if strings.TrimSpace(value) == "" {
			errors = append(errors, domain.NewMissingFieldError(name))
		} else if !isValidULID(value) {
			errors = append(errors, domain.NewInvalidFormatError(name, value))
		}
	}
	return errors
}

// ValidateUserID checks an id issued by the identity service. These are not
// required to be ULIDs.
func (v *Validator) ValidateUserID(field, userID string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if strings.TrimSpace(userID) == "" {
		errors = append(errors, domain.NewMissingFieldError(field))
		return errors
	}
	if len(userID) > MaxUserIDLength {
		errors = append(errors, domain.NewOutOfRangeError(field, len(userID), 1, MaxUserIDLength))
	} else if !validUserID.MatchString(userID) {
		errors = append(errors, domain.NewInvalidFormatError(field, userID))
	}
	return errors
}

// ValidateSubmitAttemptRequest bounds the size of a submission. An empty
// answer list is left to the scorer, which reports it as EMPTY_ANSWER.
func (v *Validator) ValidateSubmitAttemptRequest(answers []string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	if len(answers) > maxAnswers {
		errors = append(errors, domain.NewOutOfRangeError("answers", len(answers), 0, maxAnswers))
	}
	for _, a := range answers {
		if len(a) > maxAnswerLength {
			errors = append(errors, domain.NewOutOfRangeError("answers", len(a), 0, maxAnswerLength))
			break
		}
	}
	return errors
}

func isValidULID(s string) bool {
	return validULID.MatchString(s)
}

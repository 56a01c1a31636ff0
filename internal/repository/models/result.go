package models

import "time"

// QuizResult is a row of the QUIZ_RESULTS table.
type QuizResult struct {
	ID         string    `db:"ID"`
	UserID     string    `db:"USER_ID"`
	CompanyID  string    `db:"COMPANY_ID"`
	QuizID     string    `db:"QUIZ_ID"`
	RightCount float64   `db:"RIGHT_COUNT"`
	TotalCount int       `db:"TOTAL_COUNT"`
	CreatedAt  time.Time `db:"CREATED_AT"`
}

// QuizAverageRow is one group of avg(right_count/total_count).
type QuizAverageRow struct {
	UserID    string  `db:"USER_ID"`
	CompanyID string  `db:"COMPANY_ID"`
	QuizID    string  `db:"QUIZ_ID"`
	Average   float64 `db:"AVERAGE_SCORE"`
}

// UserScoreRow is one per-user score.
type UserScoreRow struct {
	UserID string  `db:"USER_ID"`
	Score  float64 `db:"SCORE"`
}

// LastTimeRow is a max(created_at) grouped by user and quiz.
type LastTimeRow struct {
	UserID    string    `db:"USER_ID"`
	CompanyID string    `db:"COMPANY_ID"`
	QuizID    string    `db:"QUIZ_ID"`
	LastAt    time.Time `db:"LAST_AT"`
}

package models

import (
	"database/sql"
	"time"
)

// Quiz is a row of the QUIZZES table.
type Quiz struct {
	ID                 string         `db:"ID"`
	Name               string         `db:"NAME"`
	Title              sql.NullString `db:"TITLE"`
	Description        sql.NullString `db:"DESCRIPTION"`
	Frequency          sql.NullTime   `db:"FREQUENCY"`
	RetakeAfterMinutes int64          `db:"RETAKE_AFTER_MINUTES"`
	CompanyID          string         `db:"COMPANY_ID"`
	CreatedBy          sql.NullString `db:"CREATED_BY"`
	UpdatedBy          sql.NullString `db:"UPDATED_BY"`
	CreatedAt          time.Time      `db:"CREATED_AT"`
	UpdatedAt          time.Time      `db:"UPDATED_AT"`
}

// Question is a row of the QUESTIONS table.
type Question struct {
	ID             string         `db:"ID"`
	Text           string         `db:"TEXT"`
	Answers        StringSlice    `db:"ANSWERS"`
	CorrectAnswers StringSlice    `db:"CORRECT_ANSWERS"`
	QuizID         string         `db:"QUIZ_ID"`
	CompanyID      string         `db:"COMPANY_ID"`
	CreatedBy      sql.NullString `db:"CREATED_BY"`
	UpdatedBy      sql.NullString `db:"UPDATED_BY"`
	CreatedAt      time.Time      `db:"CREATED_AT"`
	UpdatedAt      time.Time      `db:"UPDATED_AT"`
}

// Company is a row of the COMPANIES table.
type Company struct {
	ID        string    `db:"ID"`
	Name      string    `db:"NAME"`
	OwnerID   string    `db:"OWNER_ID"`
	CreatedAt time.Time `db:"CREATED_AT"`
	UpdatedAt time.Time `db:"UPDATED_AT"`
}

// CompanyMember is a row of the COMPANY_MEMBERS table.
type CompanyMember struct {
	CompanyID string    `db:"COMPANY_ID"`
	UserID    string    `db:"USER_ID"`
	Role      string    `db:"ROLE"`
	CreatedAt time.Time `db:"CREATED_AT"`
}

package models

import "time"

// Student represents a student profile bound 1:1 to a user account.
type Student struct {
	ID        string    `db:"id" json:"id"`
	RollNo    string    `db:"roll_no" json:"roll_no"`
	Name      string    `db:"name" json:"name"`
	ClassID   *string   `db:"class_id" json:"class_id,omitempty"`
	Year      int       `db:"year" json:"year"`
	UserID    string    `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// StudentProfile is the student's own view joined with the account email.
type StudentProfile struct {
	ID      string  `db:"id" json:"id"`
	RollNo  string  `db:"roll_no" json:"roll_no"`
	Name    string  `db:"name" json:"name"`
	ClassID *string `db:"class_id" json:"class_id,omitempty"`
	Year    int     `db:"year" json:"year"`
	Email   string  `db:"email" json:"email"`
}

// StudentSummary is the roster listing shape.
type StudentSummary struct {
	ID     string `db:"id" json:"id"`
	Name   string `db:"name" json:"name"`
	RollNo string `db:"roll_no" json:"roll_no"`
}

package models

// Subject is a named discipline referenced by classes and marks.
type Subject struct {
	ID   string `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// CreateSubjectRequest registers a new subject.
type CreateSubjectRequest struct {
	Name string `json:"name" validate:"required"`
}

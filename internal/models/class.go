package models

// Class is owned by exactly one teacher and references one subject.
type Class struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	SubjectID string `db:"subject_id" json:"subject_id"`
	TeacherID string `db:"teacher_id" json:"teacher_id"`
	Year      int    `db:"year" json:"year"`
}

// CreateClassRequest opens a new class for the calling teacher.
type CreateClassRequest struct {
	Name      string `json:"name" validate:"required"`
	SubjectID string `json:"subject_id" validate:"required,uuid"`
	Year      int    `json:"year" validate:"required,min=1"`
}

// ClassDetail joins subject and teacher names for listings.
type ClassDetail struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	Year        int    `db:"year" json:"year"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
}

package models

import "time"

// EnrollmentStatus is the lifecycle state of a class enrollment request.
type EnrollmentStatus string

const (
	EnrollmentStatusPending  EnrollmentStatus = "pending"
	EnrollmentStatusApproved EnrollmentStatus = "approved"
	EnrollmentStatusRejected EnrollmentStatus = "rejected"
)

// Valid reports whether the status is a supported value.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case EnrollmentStatusPending, EnrollmentStatusApproved, EnrollmentStatusRejected:
		return true
	default:
		return false
	}
}

// Enrollment ties a student to a class with a workflow status. At most one
// row per (class, student) may be pending or approved at any time; rejected
// rows remain as history and may be followed by a fresh pending row.
type Enrollment struct {
	ID        string           `db:"id" json:"id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Status    EnrollmentStatus `db:"status" json:"status"`
	CreatedAt time.Time        `db:"created_at" json:"created_at"`
}

// EnrollmentRequestDetail is a pending request with roster context, as shown
// to the approving teacher or HOD.
type EnrollmentRequestDetail struct {
	ID          string           `db:"id" json:"id"`
	ClassID     string           `db:"class_id" json:"class_id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	Status      EnrollmentStatus `db:"status" json:"status"`
	ClassName   string           `db:"class_name" json:"class_name"`
	StudentName string           `db:"student_name" json:"student_name"`
	RollNo      string           `db:"roll_no" json:"roll_no"`
}

// EnrollRequest is a student's request to join a class.
type EnrollRequest struct {
	ClassID string `json:"class_id" validate:"required,uuid"`
}

// EnrolledClass is the student-facing view of an enrollment.
type EnrolledClass struct {
	ClassID     string           `db:"class_id" json:"class_id"`
	ClassName   string           `db:"class_name" json:"class_name"`
	Year        int              `db:"year" json:"year"`
	SubjectName string           `db:"subject_name" json:"subject_name"`
	TeacherName string           `db:"teacher_name" json:"teacher_name"`
	Status      EnrollmentStatus `db:"status" json:"status"`
}

package models

import "time"

// AttendanceStatus represents the status for attendance records. Only
// present and absent are supported; the legacy "late" value seen in some
// clients is rejected.
type AttendanceStatus string

const (
	AttendanceStatusPresent AttendanceStatus = "present"
	AttendanceStatusAbsent  AttendanceStatus = "absent"
)

// Valid returns true when the status is a supported value.
func (s AttendanceStatus) Valid() bool {
	return s == AttendanceStatusPresent || s == AttendanceStatusAbsent
}

// Attendance is one presence record keyed by (class, student, date).
// Re-submission for the same key overwrites the status.
type Attendance struct {
	ID        string           `db:"id" json:"id"`
	ClassID   string           `db:"class_id" json:"class_id"`
	StudentID string           `db:"student_id" json:"student_id"`
	Date      time.Time        `db:"date" json:"date"`
	Status    AttendanceStatus `db:"status" json:"status"`
}

// AttendanceEntry is one student's status inside a batch submission.
type AttendanceEntry struct {
	StudentID string           `json:"student_id" validate:"required,uuid"`
	Status    AttendanceStatus `json:"status" validate:"required"`
}

// AttendanceBatchRequest submits a whole class-day roster at once.
type AttendanceBatchRequest struct {
	ClassID string            `json:"class_id" validate:"required,uuid"`
	Date    string            `json:"date" validate:"required"`
	Records []AttendanceEntry `json:"records" validate:"required,min=1,dive"`
}

// AttendanceSingleRequest records or corrects one student's status.
type AttendanceSingleRequest struct {
	ClassID   string           `json:"class_id" validate:"required,uuid"`
	StudentID string           `json:"student_id" validate:"required,uuid"`
	Date      string           `json:"date" validate:"required"`
	Status    AttendanceStatus `json:"status" validate:"required"`
}

// AttendanceRow is a class-day listing row with roster context.
type AttendanceRow struct {
	ID          string           `db:"id" json:"id"`
	StudentID   string           `db:"student_id" json:"student_id"`
	StudentName string           `db:"student_name" json:"student_name"`
	RollNo      string           `db:"roll_no" json:"roll_no"`
	Status      AttendanceStatus `db:"status" json:"status"`
	Date        time.Time        `db:"date" json:"date"`
}

// AttendanceDay is a student's own attendance entry.
type AttendanceDay struct {
	ID      string           `db:"id" json:"id"`
	ClassID string           `db:"class_id" json:"class_id"`
	Date    time.Time        `db:"date" json:"date"`
	Status  AttendanceStatus `db:"status" json:"status"`
}

// AttendanceSummaryRow aggregates one student's sessions within a class.
// Rate is 100*present/total rounded to one decimal, 0 when total is 0.
type AttendanceSummaryRow struct {
	StudentID    string  `db:"student_id" json:"student_id"`
	StudentName  string  `db:"student_name" json:"student_name"`
	RollNo       string  `db:"roll_no" json:"roll_no"`
	PresentCount int     `db:"present_count" json:"present_count"`
	AbsentCount  int     `db:"absent_count" json:"absent_count"`
	TotalCount   int     `db:"total_count" json:"total_sessions"`
	Rate         float64 `db:"rate" json:"rate"`
}

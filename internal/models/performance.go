package models

// SubjectPerformance pairs a subject's score percentage with its attendance
// percentage for the per-subject breakdown. Subjects without attendance rows
// report 0.
type SubjectPerformance struct {
	Name          string  `db:"name" json:"name"`
	AvgScore      float64 `db:"avg_score" json:"avg_score"`
	AttendancePct float64 `json:"attendance_pct"`
}

// MyPerformance is the student's own summary. AvgScore is the overall score
// percentage rounded to one decimal; AttendancePct is an integer percentage.
// Rank counts peers with a strictly higher score percentage plus one, within
// the pool of students sharing at least one approved class.
type MyPerformance struct {
	AvgScore      float64              `json:"avg_score"`
	AttendancePct int                  `json:"attendance_pct"`
	SubjectCount  int                  `json:"subject_count"`
	Rank          int                  `json:"rank"`
	TotalStudents int                  `json:"total_students"`
	Subjects      []SubjectPerformance `json:"subjects"`
}

// ClassPerformanceRow is one approved student in the teacher/HOD class view.
// Rank is the 1-based position after sorting by score desc, roll_no asc.
type ClassPerformanceRow struct {
	StudentID     string  `db:"student_id" json:"student_id"`
	Name          string  `db:"name" json:"name"`
	RollNo        string  `db:"roll_no" json:"roll_no"`
	AvgScore      float64 `db:"avg_score" json:"avg_score"`
	AttendancePct float64 `db:"attendance_pct" json:"attendance_pct"`
	Rank          int     `json:"rank"`
}

// DepartmentClassPerformance is the HOD per-class rollup.
type DepartmentClassPerformance struct {
	ClassID       string  `db:"class_id" json:"class_id"`
	ClassName     string  `db:"class_name" json:"class_name"`
	Year          int     `db:"year" json:"year"`
	StudentCount  int     `db:"student_count" json:"student_count"`
	AvgScore      float64 `db:"avg_score" json:"avg_score"`
	AvgAttendance float64 `db:"avg_attendance" json:"avg_attendance"`
}

// TrendPoint is a score percentage grouped by exam type.
type TrendPoint struct {
	Exam       string  `db:"exam" json:"exam"`
	Percentage float64 `db:"percentage" json:"percentage"`
}

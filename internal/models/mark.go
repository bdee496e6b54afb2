package models

// Exam types with a fixed trend precedence; anything else sorts after final.
const (
	ExamTypeInternal = "internal"
	ExamTypeMidterm  = "midterm"
	ExamTypeFinal    = "final"
)

// Mark is a per-exam score record. Invariant: 0 <= Score <= TotalMarks and
// TotalMarks > 0. ClassID is optional; when set, the mark's subject must
// match the class's subject.
type Mark struct {
	ID         string  `db:"id" json:"id"`
	StudentID  string  `db:"student_id" json:"student_id"`
	SubjectID  string  `db:"subject_id" json:"subject_id"`
	TeacherID  string  `db:"teacher_id" json:"teacher_id"`
	ClassID    *string `db:"class_id" json:"class_id,omitempty"`
	Score      float64 `db:"score" json:"score"`
	TotalMarks float64 `db:"total_marks" json:"total_marks"`
	ExamType   string  `db:"exam_type" json:"exam_type"`
	Year       int     `db:"year" json:"year"`
}

// CreateMarkRequest submits one exam score. ClassID optionally ties the
// mark to a class; the class's subject must then match SubjectID.
type CreateMarkRequest struct {
	StudentID  string  `json:"student_id" validate:"required,uuid"`
	SubjectID  string  `json:"subject_id" validate:"required,uuid"`
	ClassID    string  `json:"class_id" validate:"omitempty,uuid"`
	Score      float64 `json:"score" validate:"min=0"`
	TotalMarks float64 `json:"total_marks" validate:"required,gt=0"`
	ExamType   string  `json:"exam_type" validate:"required"`
	Year       int     `json:"year" validate:"required,min=1"`
}

// UpdateMarkRequest corrects a score. TotalMarks is optional; when omitted
// the stored total still bounds the new score.
type UpdateMarkRequest struct {
	Score      float64  `json:"score" validate:"min=0"`
	TotalMarks *float64 `json:"total_marks" validate:"omitempty,gt=0"`
}

// MarkDetail joins roster and subject context for teacher-facing listings.
type MarkDetail struct {
	ID          string  `db:"id" json:"id"`
	StudentID   string  `db:"student_id" json:"student_id"`
	StudentName string  `db:"student_name" json:"student_name"`
	RollNo      string  `db:"roll_no" json:"roll_no"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	Score       float64 `db:"score" json:"score"`
	TotalMarks  float64 `db:"total_marks" json:"total_marks"`
	ExamType    string  `db:"exam_type" json:"exam_type"`
	Year        int     `db:"year" json:"year"`
}

// StudentMark is the student-facing view of a mark.
type StudentMark struct {
	ID          string  `db:"id" json:"id"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	TeacherName string  `db:"teacher_name" json:"teacher_name"`
	Score       float64 `db:"score" json:"score"`
	TotalMarks  float64 `db:"total_marks" json:"total_marks"`
	ExamType    string  `db:"exam_type" json:"exam_type"`
	Year        int     `db:"year" json:"year"`
}

// SubjectDifficultyRow ranks subjects by average score ascending.
type SubjectDifficultyRow struct {
	SubjectID   string  `db:"subject_id" json:"subject_id"`
	SubjectName string  `db:"subject_name" json:"subject_name"`
	AvgScore    float64 `db:"avg_score" json:"avg_score"`
}

package model

import "time"

type ExamType string

const (
	ExamMidterm ExamType = "midterm"
	ExamFinal   ExamType = "final"
)

// ExamSubmission keeps at most one row per (course, student, type); a
// resubmission overwrites the previous score, so the stored row is always
// the latest.
// swagger:model ExamSubmission
type ExamSubmission struct {
	BaseModel
	CourseID    string    `gorm:"size:36;index:idx_exam_unique,unique;not null" json:"courseId"`
	StudentID   uint      `gorm:"index:idx_exam_unique,unique;not null" json:"studentId"`
	Type        ExamType  `gorm:"size:10;index:idx_exam_unique,unique;not null" json:"type"`
	Score       float64   `gorm:"not null" json:"score"`
	SubmittedAt time.Time `json:"submittedAt"`
}

func (ExamSubmission) TableName() string {
	return "exam_submissions"
}

// WeekSubmission records one week's activity. Quiz and assignment scores
// are optional; absence defaults to zero.
// swagger:model WeekSubmission
type WeekSubmission struct {
	BaseModel
	CourseWeekID     uint      `gorm:"index:idx_week_student,unique;not null" json:"courseWeekId"`
	StudentID        uint      `gorm:"index:idx_week_student,unique;not null" json:"studentId"`
	QuizScore        *float64  `json:"quizScore"`
	AssignmentScore  *float64  `json:"assignmentScore"`
	AbsenceCountWeek float64   `gorm:"default:0" json:"absenceCountWeek"`
	SubmittedAt      time.Time `json:"submittedAt"`
}

func (WeekSubmission) TableName() string {
	return "week_submissions"
}

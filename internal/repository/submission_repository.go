package repository

import (
	"course_risk_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

// UpsertExam keeps one row per (course, student, type): resubmitting
// overwrites the score so the stored value is always the latest.
func (r *SubmissionRepository) UpsertExam(submission *model.ExamSubmission) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "course_id"}, {Name: "student_id"}, {Name: "type"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"score", "submitted_at"}),
	}).Create(submission).Error
}

func (r *SubmissionRepository) ListExams(courseID string, studentID uint) ([]*model.ExamSubmission, error) {
	var exams []*model.ExamSubmission
	err := r.DB.Where("course_id = ? AND student_id = ?", courseID, studentID).
		Order("type asc").Find(&exams).Error
	return exams, err
}

// ExamRecords maps stored exam rows to the in-memory records the feature
// builder consumes.
func (r *SubmissionRepository) ExamRecords(courseID string, studentID uint) ([]model.ExamRecord, error) {
	exams, err := r.ListExams(courseID, studentID)
	if err != nil {
		return nil, err
	}
	records := make([]model.ExamRecord, 0, len(exams))
	for _, exam := range exams {
		records = append(records, model.ExamRecord{Type: exam.Type, Score: exam.Score})
	}
	return records, nil
}

// UpsertWeek keeps one row per (week, student); a resubmission replaces all
// three tracked values.
func (r *SubmissionRepository) UpsertWeek(submission *model.WeekSubmission) error {
	return r.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "course_week_id"}, {Name: "student_id"},
		},
		DoUpdates: clause.AssignmentColumns([]string{"quiz_score", "assignment_score", "absence_count_week", "submitted_at"}),
	}).Create(submission).Error
}

type weekSubmissionRow struct {
	model.WeekSubmission
	WeekNumber int
}

// ListWeekSubmissions joins submissions with their seeded week numbers,
// ordered chronologically.
func (r *SubmissionRepository) ListWeekSubmissions(courseID string, studentID uint) ([]*model.WeekView, error) {
	var rows []weekSubmissionRow
	err := r.DB.Model(&model.WeekSubmission{}).
		Select("week_submissions.*, course_weeks.week_number").
		Joins("JOIN course_weeks ON course_weeks.id = week_submissions.course_week_id").
		Where("course_weeks.course_id = ? AND week_submissions.student_id = ?", courseID, studentID).
		Order("course_weeks.week_number asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	views := make([]*model.WeekView, 0, len(rows))
	for i := range rows {
		row := rows[i]
		submittedAt := row.SubmittedAt
		views = append(views, &model.WeekView{
			WeekNumber:       row.WeekNumber,
			QuizScore:        row.QuizScore,
			AssignmentScore:  row.AssignmentScore,
			AbsenceCountWeek: row.AbsenceCountWeek,
			SubmittedAt:      &submittedAt,
		})
	}
	return views, nil
}

// WeekRecords maps stored weekly rows to the in-memory records the feature
// builder consumes.
func (r *SubmissionRepository) WeekRecords(courseID string, studentID uint) ([]model.WeekRecord, error) {
	views, err := r.ListWeekSubmissions(courseID, studentID)
	if err != nil {
		return nil, err
	}
	records := make([]model.WeekRecord, 0, len(views))
	for _, view := range views {
		records = append(records, model.WeekRecord{
			WeekNumber:       view.WeekNumber,
			QuizScore:        view.QuizScore,
			AssignmentScore:  view.AssignmentScore,
			AbsenceCountWeek: view.AbsenceCountWeek,
		})
	}
	return records, nil
}

package repository

import (
	"course_risk_backend/internal/model"

	"gorm.io/gorm"
)

type CourseRepository struct {
	DB *gorm.DB
}

func NewCourseRepository(db *gorm.DB) *CourseRepository {
	return &CourseRepository{DB: db}
}

func (r *CourseRepository) Create(course *model.Course) error {
	return r.DB.Create(course).Error
}

func (r *CourseRepository) FindByID(id string) (*model.Course, error) {
	var course model.Course
	err := r.DB.Where("id = ?", id).First(&course).Error
	return &course, err
}

func (r *CourseRepository) FindByStudent(studentID uint) ([]*model.Course, error) {
	var courses []*model.Course
	err := r.DB.Where("student_id = ?", studentID).Order("created_at desc").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) FindAll() ([]*model.Course, error) {
	var courses []*model.Course
	err := r.DB.Order("created_at desc").Find(&courses).Error
	return courses, err
}

func (r *CourseRepository) Save(course *model.Course) error {
	return r.DB.Save(course).Error
}

func (r *CourseRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Course{}).Error
}

// ReplaceWeights swaps the full weight set in one transaction; there is no
// per-component patch.
func (r *CourseRepository) ReplaceWeights(courseID string, weights model.ComponentWeights) error {
	tx := r.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}

	if err := tx.Where("course_id = ?", courseID).Delete(&model.CourseWeight{}).Error; err != nil {
		tx.Rollback()
		return err
	}

	for _, component := range model.AllComponents {
		row := model.CourseWeight{
			CourseID:      courseID,
			ComponentName: component,
			WeightPercent: weights[component],
		}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit().Error
}

func (r *CourseRepository) GetWeights(courseID string) (model.ComponentWeights, error) {
	var rows []*model.CourseWeight
	if err := r.DB.Where("course_id = ?", courseID).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	weights := model.ComponentWeights{}
	for _, component := range model.AllComponents {
		weights[component] = 0
	}
	for _, row := range rows {
		weights[row.ComponentName] = row.WeightPercent
	}
	return weights, nil
}

// SeedWeeks creates the fixed week slots for a new course.
func (r *CourseRepository) SeedWeeks(courseID string, totalWeeks int) error {
	tx := r.DB.Begin()
	if tx.Error != nil {
		return tx.Error
	}
	for week := 1; week <= totalWeeks; week++ {
		row := model.CourseWeek{CourseID: courseID, WeekNumber: week}
		if err := tx.Create(&row).Error; err != nil {
			tx.Rollback()
			return err
		}
	}
	return tx.Commit().Error
}

func (r *CourseRepository) FindWeek(courseID string, weekNumber int) (*model.CourseWeek, error) {
	var week model.CourseWeek
	err := r.DB.Where("course_id = ? AND week_number = ?", courseID, weekNumber).First(&week).Error
	return &week, err
}

func (r *CourseRepository) ListWeeks(courseID string) ([]*model.CourseWeek, error) {
	var weeks []*model.CourseWeek
	err := r.DB.Where("course_id = ?", courseID).Order("week_number asc").Find(&weeks).Error
	return weeks, err
}

func (r *CourseRepository) CountWeeks(courseID string) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CourseWeek{}).Where("course_id = ?", courseID).Count(&count).Error
	return count, err
}

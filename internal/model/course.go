package model

// Course is owned by a single student; risk is always evaluated per
// (course, student) pair.
// swagger:model Course
type Course struct {
	UUIDBase
	StudentID uint   `gorm:"index;not null" json:"studentId"`
	Title     string `gorm:"size:200;not null" json:"title"`
}

func (Course) TableName() string {
	return "courses"
}

// CourseWeek is one of the fixed-length week slots seeded at course
// creation.
// swagger:model CourseWeek
type CourseWeek struct {
	BaseModel
	CourseID   string `gorm:"size:36;index:idx_course_week,unique;not null" json:"courseId"`
	WeekNumber int    `gorm:"index:idx_course_week,unique;not null" json:"weekNumber"`
}

func (CourseWeek) TableName() string {
	return "course_weeks"
}

// CourseWeight stores one component's weight percentage. The full set is
// replaced wholesale on every syllabus update; there is no partial patch.
// swagger:model CourseWeight
type CourseWeight struct {
	BaseModel
	CourseID      string          `gorm:"size:36;index:idx_course_component,unique;not null" json:"courseId"`
	ComponentName CourseComponent `gorm:"size:20;index:idx_course_component,unique;not null" json:"componentName"`
	WeightPercent float64         `gorm:"not null" json:"weightPercent"`
}

func (CourseWeight) TableName() string {
	return "course_weights"
}

// SyllabusFile is an archived upload. The file is stored as-is for audit;
// weights are configured through the manual syllabus endpoint.
// swagger:model SyllabusFile
type SyllabusFile struct {
	BaseModel
	CourseID string `gorm:"size:36;index;not null" json:"courseId"`
	FileName string `gorm:"size:255;not null" json:"fileName"`
	URL      string `gorm:"size:500;not null" json:"url"`
	Size     int64  `json:"size"`
}

func (SyllabusFile) TableName() string {
	return "syllabus_files"
}

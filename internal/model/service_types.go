package model

import "time"

// CourseCard is the course summary shown in listings: identity plus the
// latest ephemeral risk evaluation.
type CourseCard struct {
	ID              string        `json:"id"`
	StudentID       uint          `json:"studentId"`
	Title           string        `json:"title"`
	CreatedAt       time.Time     `json:"createdAt"`
	WeightedPercent float64       `json:"weightedPercent"`
	ProbabilityFail float64       `json:"probabilityFail"`
	Bucket          RiskBucket    `json:"bucket"`
	TotalAbsences   int           `json:"totalAbsences"`
	AbsenceStatus   AbsenceStatus `json:"absenceStatus"`
}

// RiskReport is the full per-course evaluation returned to students and
// admins.
type RiskReport struct {
	CourseID             string           `json:"courseId"`
	StudentID            uint             `json:"studentId"`
	Title                string           `json:"title"`
	WeightedPercent      float64          `json:"weightedPercent"`
	RemainingWeight      float64          `json:"remainingWeight"`
	MaxAchievablePercent float64          `json:"maxAchievablePercent"`
	CanStillPass         bool             `json:"canStillPass"`
	TotalAbsences        int              `json:"totalAbsences"`
	AbsenceStatus        AbsenceStatus    `json:"absenceStatus"`
	ProbabilityFail      float64          `json:"probabilityFail"`
	Bucket               RiskBucket       `json:"bucket"`
	IsAutoFail           bool             `json:"isAutoFail"`
	Reasons              []string         `json:"reasons"`
	Suggestions          []SuggestionItem `json:"suggestions,omitempty"`
	CreatedAt            time.Time        `json:"createdAt"`
}

// WeekView merges a seeded week with the student's submission, if any.
type WeekView struct {
	WeekNumber       int        `json:"weekNumber"`
	QuizScore        *float64   `json:"quizScore"`
	AssignmentScore  *float64   `json:"assignmentScore"`
	AbsenceCountWeek float64    `json:"absenceCountWeek"`
	SubmittedAt      *time.Time `json:"submittedAt"`
}

// WhatIfResult compares a simulated evaluation against its baseline.
type WhatIfResult struct {
	CourseID            string           `json:"courseId"`
	StudentID           uint             `json:"studentId"`
	BaselineProbability float64          `json:"baselineProbability"`
	NewProbability      float64          `json:"newProbability"`
	Delta               float64          `json:"delta"`
	Bucket              RiskBucket       `json:"bucket"`
	IsAutoFail          bool             `json:"isAutoFail"`
	Reasons             []string         `json:"reasons"`
	ChangedFeatures     []OverrideChange `json:"changedFeatures"`
	NewWeightedPercent  float64          `json:"newWeightedPercent"`
}

// AdminStudentsQuery filters the admin risk listing.
type AdminStudentsQuery struct {
	CourseID     string
	Bucket       RiskBucket
	HighRiskOnly bool
	Sort         string
	Page         int
	Limit        int
}

// AdminStudentRow is one row of the admin dashboard table.
type AdminStudentRow struct {
	StudentID       uint       `json:"studentId"`
	StudentName     string     `json:"studentName"`
	StudentEmail    string     `json:"studentEmail"`
	CourseID        string     `json:"courseId"`
	CourseTitle     string     `json:"courseTitle"`
	WeightedPercent float64    `json:"weightedPercent"`
	ProbabilityFail float64    `json:"probabilityFail"`
	Bucket          RiskBucket `json:"bucket"`
	TotalAbsences   int        `json:"totalAbsences"`
	CanStillPass    bool       `json:"canStillPass"`
}

// AdminStudentDetail is a student profile with per-course risk reports.
type AdminStudentDetail struct {
	ID       uint          `json:"id"`
	FullName string        `json:"fullName"`
	Email    string        `json:"email"`
	Role     UserRole      `json:"role"`
	Courses  []*RiskReport `json:"courses"`
}

package model

// RiskPrediction is a persisted snapshot of one evaluation, written only by
// the explicit predict operation; plain risk reads stay ephemeral.
// swagger:model RiskPrediction
type RiskPrediction struct {
	BaseModel
	CourseID        string       `gorm:"size:36;index;not null" json:"courseId"`
	StudentID       uint         `gorm:"index;not null" json:"studentId"`
	ProbabilityFail float64      `gorm:"not null" json:"probabilityFail"`
	Bucket          RiskBucket   `gorm:"size:10;not null" json:"bucket"`
	IsAutoFail      bool         `json:"isAutoFail"`
	Reasons         []string     `gorm:"serializer:json" json:"reasons"`
	Features        RiskFeatures `gorm:"serializer:json" json:"features"`
}

func (RiskPrediction) TableName() string {
	return "risk_predictions"
}

// WhatIfSimulation is an optionally saved what-if run; overrides are kept
// for audit, never folded back into the baseline.
// swagger:model WhatIfSimulation
type WhatIfSimulation struct {
	BaseModel
	CourseID            string   `gorm:"size:36;index;not null" json:"courseId"`
	StudentID           uint     `gorm:"index;not null" json:"studentId"`
	BaselineProbability float64  `json:"baselineProbability"`
	NewProbability      float64  `json:"newProbability"`
	Delta               float64  `json:"delta"`
	Overrides           Override `gorm:"serializer:json" json:"overrides"`
}

func (WhatIfSimulation) TableName() string {
	return "whatif_simulations"
}

// Suggestion stores the remediation items generated alongside a persisted
// prediction.
// swagger:model Suggestion
type Suggestion struct {
	BaseModel
	CourseID  string           `gorm:"size:36;index;not null" json:"courseId"`
	StudentID uint             `gorm:"index;not null" json:"studentId"`
	Items     []SuggestionItem `gorm:"serializer:json" json:"items"`
}

func (Suggestion) TableName() string {
	return "suggestions"
}

// swagger:model SuggestionItem
type SuggestionItem struct {
	Title          string   `json:"title"`
	Why            string   `json:"why"`
	Actions        []string `json:"actions"`
	ExpectedImpact string   `json:"expectedImpact,omitempty"`
}

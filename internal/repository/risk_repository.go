package repository

import (
	"course_risk_backend/internal/model"

	"gorm.io/gorm"
)

type RiskRepository struct {
	DB *gorm.DB
}

func NewRiskRepository(db *gorm.DB) *RiskRepository {
	return &RiskRepository{DB: db}
}

func (r *RiskRepository) SavePrediction(prediction *model.RiskPrediction) error {
	return r.DB.Create(prediction).Error
}

func (r *RiskRepository) LatestPrediction(courseID string, studentID uint) (*model.RiskPrediction, error) {
	var prediction model.RiskPrediction
	err := r.DB.Where("course_id = ? AND student_id = ?", courseID, studentID).
		Order("created_at desc").First(&prediction).Error
	return &prediction, err
}

func (r *RiskRepository) SaveSuggestion(suggestion *model.Suggestion) error {
	return r.DB.Create(suggestion).Error
}

func (r *RiskRepository) LatestSuggestion(courseID string, studentID uint) (*model.Suggestion, error) {
	var suggestion model.Suggestion
	err := r.DB.Where("course_id = ? AND student_id = ?", courseID, studentID).
		Order("created_at desc").First(&suggestion).Error
	return &suggestion, err
}

func (r *RiskRepository) SaveWhatIf(simulation *model.WhatIfSimulation) error {
	return r.DB.Create(simulation).Error
}

func (r *RiskRepository) SaveSyllabusFile(file *model.SyllabusFile) error {
	return r.DB.Create(file).Error
}

func (r *RiskRepository) ListSyllabusFiles(courseID string) ([]*model.SyllabusFile, error) {
	var files []*model.SyllabusFile
	err := r.DB.Where("course_id = ?", courseID).Order("created_at desc").Find(&files).Error
	return files, err
}

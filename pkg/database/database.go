package database

import (
	"course_risk_backend/internal/config"
	"course_risk_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig, autoMigrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if autoMigrate {
		err = db.AutoMigrate(
			&model.User{},
			&model.Course{},
			&model.CourseWeek{},
			&model.CourseWeight{},
			&model.SyllabusFile{},
			&model.ExamSubmission{},
			&model.WeekSubmission{},
			&model.RiskPrediction{},
			&model.WhatIfSimulation{},
			&model.Suggestion{},
		)
		if err != nil {
			return nil, err
		}
		log.Println("Database migration completed")
	}

	return db, nil
}

package repository

import (
	"course_risk_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type UserRepository struct {
	DB *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Create(user *model.User) error {
	return r.DB.Create(user).Error
}

func (r *UserRepository) FindByEmail(email string) (*model.User, error) {
	var user model.User
	err := r.DB.Where("email = ?", email).First(&user).Error
	return &user, err
}

func (r *UserRepository) FindByID(id uint) (*model.User, error) {
	var user model.User
	err := r.DB.First(&user, id).Error
	return &user, err
}

func (r *UserRepository) FindStudents() ([]*model.User, error) {
	var users []*model.User
	err := r.DB.Where("role = ? AND disabled = ?", model.Student, false).
		Order("full_name asc").Find(&users).Error
	return users, err
}

func (r *UserRepository) UpdateLastLogin(id uint) error {
	now := time.Now()
	return r.DB.Model(&model.User{}).Where("id = ?", id).Updates(map[string]interface{}{
		"last_login": now,
		"last_seen":  now,
	}).Error
}

func (r *UserRepository) UpdateLastSeen(id uint) error {
	return r.DB.Model(&model.User{}).Where("id = ?", id).Update("last_seen", time.Now()).Error
}

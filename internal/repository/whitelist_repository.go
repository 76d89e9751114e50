package repository

import (
	"exam_prep_backend/internal/model"

	"gorm.io/gorm"
)

type WhitelistRepository struct {
	DB *gorm.DB
}

func NewWhitelistRepository(db *gorm.DB) *WhitelistRepository {
	return &WhitelistRepository{DB: db}
}

func (r *WhitelistRepository) Create(entry *model.WhitelistEmail) error {
	return r.DB.Create(entry).Error
}

func (r *WhitelistRepository) DeleteByEmail(email string) error {
	return r.DB.Where("email = ?", email).Delete(&model.WhitelistEmail{}).Error
}

func (r *WhitelistRepository) Contains(email string) (bool, error) {
	var count int64
	err := r.DB.Model(&model.WhitelistEmail{}).Where("email = ?", email).Count(&count).Error
	return count > 0, err
}

func (r *WhitelistRepository) List(page, limit int) ([]model.WhitelistEmail, int64, error) {
	var entries []model.WhitelistEmail
	var total int64
	if err := r.DB.Model(&model.WhitelistEmail{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.DB.Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

package repository

import (
	"github.com/gatherhub/moderation-service/internal/models"
	"github.com/gatherhub/moderation-service/internal/services"
	"gorm.io/gorm"
)

type blockedReporterRepository struct {
	db *gorm.DB
}

func NewBlockedReporterRepository(db *gorm.DB) services.BlockedReporterRepository {
	return &blockedReporterRepository{db: db}
}

func (r *blockedReporterRepository) IsBlocked(emailHash string) (bool, error) {
	var count int64
	err := r.db.Model(&models.BlockedReporter{}).
		Where("email_hash = ?", emailHash).
		Count(&count).Error
	return count > 0, err
}

func (r *blockedReporterRepository) Create(block *models.BlockedReporter) error {
	return r.db.Create(block).Error
}

func (r *blockedReporterRepository) DeleteByHash(emailHash string) (int64, error) {
	res := r.db.Where("email_hash = ?", emailHash).Delete(&models.BlockedReporter{})
	return res.RowsAffected, res.Error
}

func (r *blockedReporterRepository) List(page, limit int) ([]models.BlockedReporter, int64, error) {
	var total int64
	if err := r.db.Model(&models.BlockedReporter{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var blocks []models.BlockedReporter
	err := r.db.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&blocks).Error
	if err != nil {
		return nil, 0, err
	}
	return blocks, total, nil
}

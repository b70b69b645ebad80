package repository

import (
	"github.com/gatherhub/moderation-service/internal/models"
	"github.com/gatherhub/moderation-service/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type escalationRepository struct {
	db *gorm.DB
}

func NewEscalationRepository(db *gorm.DB) services.EscalationRepository {
	return &escalationRepository{db: db}
}

func (r *escalationRepository) Create(esc *models.ReportEscalation) error {
	return r.db.Create(esc).Error
}

func (r *escalationRepository) ListByReport(reportID uuid.UUID) ([]models.ReportEscalation, error) {
	var escalations []models.ReportEscalation
	err := r.db.
		Where("report_id = ?", reportID).
		Order("created_at ASC").
		Find(&escalations).Error
	if err != nil {
		return nil, err
	}
	return escalations, nil
}

func (r *escalationRepository) HasReminder(reportID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.Model(&models.ReportEscalation{}).
		Where("report_id = ? AND decision = ?", reportID, models.DecisionReminderSent).
		Count(&count).Error
	return count > 0, err
}

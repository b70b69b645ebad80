package repository

import (
	"github.com/gatherhub/moderation-service/internal/models"
	"github.com/gatherhub/moderation-service/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type eventReporterRepository struct {
	db *gorm.DB
}

func NewEventReporterRepository(db *gorm.DB) services.EventReporterRepository {
	return &eventReporterRepository{db: db}
}

func (r *eventReporterRepository) Exists(eventID uuid.UUID, reporterIdentifier string) (bool, error) {
	var count int64
	err := r.db.Model(&models.EventReporter{}).
		Where("event_id = ? AND reporter_identifier = ?", eventID, reporterIdentifier).
		Count(&count).Error
	return count > 0, err
}

// Create relies on the composite unique index; with TranslateError enabled a
// losing racer gets gorm.ErrDuplicatedKey.
func (r *eventReporterRepository) Create(pair *models.EventReporter) error {
	return r.db.Create(pair).Error
}

package repository

import (
	"fmt"
	"time"

	"github.com/gatherhub/moderation-service/internal/dto"
	"github.com/gatherhub/moderation-service/internal/models"
	"github.com/gatherhub/moderation-service/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) services.ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) Create(report *models.Report) error {
	return r.db.Create(report).Error
}

func (r *reportRepository) Save(report *models.Report) error {
	return r.db.Save(report).Error
}

func (r *reportRepository) Delete(id uuid.UUID) error {
	return r.db.Delete(&models.Report{}, "id = ?", id).Error
}

func (r *reportRepository) FindByID(id uuid.UUID) (*models.Report, error) {
	var report models.Report
	if err := r.db.First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) List(filter *dto.ReportFilter) ([]models.Report, int64, error) {
	query := r.db.Model(&models.Report{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.EventID != "" {
		query = query.Where("event_id = ?", filter.EventID)
	}
	if filter.CalendarID != "" {
		query = query.Where("calendar_id = ?", filter.CalendarID)
	}
	if filter.Source != "" {
		query = query.Where("reporter_type = ?", filter.Source)
	}
	if filter.EscalationType != "" {
		query = query.Where("escalation_type = ?", filter.EscalationType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// SortBy/SortOrder are whitelisted by the filter's Validate.
	order := fmt.Sprintf("%s %s", filter.SortBy, filter.SortOrder)
	offset := (filter.Page - 1) * filter.Limit

	var reports []models.Report
	if err := query.Order(order).Limit(filter.Limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

func (r *reportRepository) CountByEmailHashSince(emailHash string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Report{}).
		Where("reporter_email_hash = ? AND created_at > ?", emailHash, since).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) CountByEventSince(eventID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Report{}).
		Where("event_id = ? AND created_at > ?", eventID, since).
		Count(&count).Error
	return count, err
}

func (r *reportRepository) CountByInstanceSince(instance string, since time.Time) (int64, error) {
	var count int64
	err := r.db.Model(&models.Report{}).
		Where("forwarded_from_instance = ? AND created_at > ?", instance, since).
		Count(&count).Error
	return count, err
}

// ConsumeVerificationToken is the consume-once boundary: one conditional
// UPDATE whose predicates check token, status and expiry together, with a
// RETURNING clause handing back the updated row. Zero affected rows means
// the token was invalid, expired or already consumed.
func (r *reportRepository) ConsumeVerificationToken(token string, now time.Time) (*models.Report, error) {
	var updated []models.Report
	res := r.db.Model(&updated).
		Clauses(clause.Returning{}).
		Where("verification_token = ? AND status = ? AND verification_expiration > ?",
			token, models.StatusPendingVerification, now).
		Updates(map[string]interface{}{
			"status":                  models.StatusSubmitted,
			"verification_token":      nil,
			"verification_expiration": nil,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 || len(updated) == 0 {
		return nil, nil
	}
	return &updated[0], nil
}

func (r *reportRepository) FindOverdue(cutoff time.Time, adminReports bool) ([]models.Report, error) {
	query := r.db.
		Where("status = ? AND escalation_type IS NULL AND created_at < ?",
			models.StatusSubmitted, cutoff)
	if adminReports {
		query = query.Where("reporter_type = ?", models.ReporterAdministrator)
	} else {
		query = query.Where("reporter_type <> ?", models.ReporterAdministrator)
	}

	var reports []models.Report
	if err := query.Order("created_at ASC").Find(&reports).Error; err != nil {
		return nil, err
	}
	return reports, nil
}

func (r *reportRepository) FindInReminderWindow(createdAfter, createdBefore time.Time) ([]models.Report, error) {
	var reports []models.Report
	err := r.db.
		Where("status = ? AND escalation_type IS NULL AND reporter_type <> ?",
			models.StatusSubmitted, models.ReporterAdministrator).
		Where("created_at > ? AND created_at <= ?", createdAfter, createdBefore).
		Order("created_at ASC").
		Find(&reports).Error
	if err != nil {
		return nil, err
	}
	return reports, nil
}

package services

import (
	"time"

	"github.com/gatherhub/moderation-service/internal/dto"
	"github.com/gatherhub/moderation-service/internal/models"
	"github.com/google/uuid"
)

// ReportRepository owns persistence of the Report aggregate. FindByID and the
// finders return gorm.ErrRecordNotFound untranslated; the service maps it.
type ReportRepository interface {
	Create(report *models.Report) error
	Save(report *models.Report) error
	Delete(id uuid.UUID) error
	FindByID(id uuid.UUID) (*models.Report, error)
	List(filter *dto.ReportFilter) ([]models.Report, int64, error)

	// CountByEmailHashSince backs the anonymous rate limit.
	CountByEmailHashSince(emailHash string, since time.Time) (int64, error)
	// CountByEventSince / CountByInstanceSince back the abuse-signal flags.
	CountByEventSince(eventID uuid.UUID, since time.Time) (int64, error)
	CountByInstanceSince(instance string, since time.Time) (int64, error)

	// ConsumeVerificationToken atomically transitions
	// pending_verification -> submitted and clears both token fields, only
	// when the token matches, the status still pends and the expiration is
	// in the future. Returns the updated row, or nil when zero rows matched
	// (invalid, expired, or already consumed — indistinguishable by design).
	ConsumeVerificationToken(token string, now time.Time) (*models.Report, error)

	// FindOverdue returns submitted, not-yet-escalated reports created
	// before cutoff; adminReports selects administrator-filed reports
	// instead of excluding them.
	FindOverdue(cutoff time.Time, adminReports bool) ([]models.Report, error)
	// FindInReminderWindow returns submitted, non-admin, not-yet-escalated
	// reports with createdAfter < created_at <= createdBefore.
	FindInReminderWindow(createdAfter, createdBefore time.Time) ([]models.Report, error)
}

// EventReporterRepository owns the (event, reporter) dedup ledger. Create
// must surface a unique-constraint violation as gorm.ErrDuplicatedKey.
type EventReporterRepository interface {
	Exists(eventID uuid.UUID, reporterIdentifier string) (bool, error)
	Create(pair *models.EventReporter) error
}

// EscalationRepository owns the append-only transition audit trail.
type EscalationRepository interface {
	Create(esc *models.ReportEscalation) error
	ListByReport(reportID uuid.UUID) ([]models.ReportEscalation, error)
	HasReminder(reportID uuid.UUID) (bool, error)
}

type BlockedReporterRepository interface {
	IsBlocked(emailHash string) (bool, error)
	Create(block *models.BlockedReporter) error
	DeleteByHash(emailHash string) (int64, error)
	List(page, limit int) ([]models.BlockedReporter, int64, error)
}

type SettingRepository interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// EventInfo is the slice of platform event data this subsystem needs.
type EventInfo struct {
	ID         uuid.UUID
	CalendarID uuid.UUID
	Title      string
}

// EventDirectory resolves events on the hosting platform; its implementation
// lives outside this subsystem.
type EventDirectory interface {
	GetEvent(eventID uuid.UUID) (*EventInfo, error)
}

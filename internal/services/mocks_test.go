package services

import (
	"errors"
	"time"

	"github.com/gatherhub/moderation-service/internal/dto"
	"github.com/gatherhub/moderation-service/internal/models"
	"github.com/gatherhub/moderation-service/internal/notify"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// In-memory repository doubles. Behavior mirrors the GORM implementations
// closely enough for the services to be exercised without a database; the
// err hooks let individual tests inject storage failures.

type memReportRepo struct {
	reports map[uuid.UUID]*models.Report
	deleted []uuid.UUID

	createErr error
	saveErr   map[uuid.UUID]error
}

func newMemReportRepo() *memReportRepo {
	return &memReportRepo{
		reports: make(map[uuid.UUID]*models.Report),
		saveErr: make(map[uuid.UUID]error),
	}
}

func (m *memReportRepo) Create(report *models.Report) error {
	if m.createErr != nil {
		return m.createErr
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	cp := *report
	m.reports[report.ID] = &cp
	return nil
}

func (m *memReportRepo) Save(report *models.Report) error {
	if err := m.saveErr[report.ID]; err != nil {
		return err
	}
	cp := *report
	m.reports[report.ID] = &cp
	return nil
}

func (m *memReportRepo) Delete(id uuid.UUID) error {
	delete(m.reports, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *memReportRepo) FindByID(id uuid.UUID) (*models.Report, error) {
	report, ok := m.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *report
	return &cp, nil
}

func (m *memReportRepo) List(filter *dto.ReportFilter) ([]models.Report, int64, error) {
	var out []models.Report
	for _, r := range m.reports {
		if filter.Status != "" && r.Status != filter.Status {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		out = append(out, *r)
	}
	return out, int64(len(out)), nil
}

func (m *memReportRepo) CountByEmailHashSince(emailHash string, since time.Time) (int64, error) {
	var count int64
	for _, r := range m.reports {
		if r.ReporterEmailHash != nil && *r.ReporterEmailHash == emailHash && r.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (m *memReportRepo) CountByEventSince(eventID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	for _, r := range m.reports {
		if r.EventID == eventID && r.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (m *memReportRepo) CountByInstanceSince(instance string, since time.Time) (int64, error) {
	var count int64
	for _, r := range m.reports {
		if r.ForwardedFromInstance != nil && *r.ForwardedFromInstance == instance && r.CreatedAt.After(since) {
			count++
		}
	}
	return count, nil
}

func (m *memReportRepo) ConsumeVerificationToken(token string, now time.Time) (*models.Report, error) {
	for _, r := range m.reports {
		if r.VerificationToken == nil || *r.VerificationToken != token {
			continue
		}
		if r.Status != models.StatusPendingVerification {
			continue
		}
		if r.VerificationExpiration == nil || !r.VerificationExpiration.After(now) {
			continue
		}
		r.Status = models.StatusSubmitted
		r.VerificationToken = nil
		r.VerificationExpiration = nil
		cp := *r
		return &cp, nil
	}
	return nil, nil
}

func (m *memReportRepo) FindOverdue(cutoff time.Time, adminReports bool) ([]models.Report, error) {
	var out []models.Report
	for _, r := range m.reports {
		if r.Status != models.StatusSubmitted || r.EscalationType != nil {
			continue
		}
		if !r.CreatedAt.Before(cutoff) {
			continue
		}
		isAdmin := r.ReporterType == models.ReporterAdministrator
		if isAdmin != adminReports {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (m *memReportRepo) FindInReminderWindow(createdAfter, createdBefore time.Time) ([]models.Report, error) {
	var out []models.Report
	for _, r := range m.reports {
		if r.Status != models.StatusSubmitted || r.EscalationType != nil {
			continue
		}
		if r.ReporterType == models.ReporterAdministrator {
			continue
		}
		if !r.CreatedAt.After(createdAfter) || r.CreatedAt.After(createdBefore) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

type memEventReporterRepo struct {
	pairs     map[string]bool
	createErr error
}

func newMemEventReporterRepo() *memEventReporterRepo {
	return &memEventReporterRepo{pairs: make(map[string]bool)}
}

func pairKey(eventID uuid.UUID, identifier string) string {
	return eventID.String() + "|" + identifier
}

func (m *memEventReporterRepo) Exists(eventID uuid.UUID, reporterIdentifier string) (bool, error) {
	return m.pairs[pairKey(eventID, reporterIdentifier)], nil
}

func (m *memEventReporterRepo) Create(pair *models.EventReporter) error {
	if m.createErr != nil {
		return m.createErr
	}
	key := pairKey(pair.EventID, pair.ReporterIdentifier)
	if m.pairs[key] {
		return gorm.ErrDuplicatedKey
	}
	m.pairs[key] = true
	return nil
}

type memEscalationRepo struct {
	rows      []models.ReportEscalation
	createErr error
}

func (m *memEscalationRepo) Create(esc *models.ReportEscalation) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.rows = append(m.rows, *esc)
	return nil
}

func (m *memEscalationRepo) ListByReport(reportID uuid.UUID) ([]models.ReportEscalation, error) {
	var out []models.ReportEscalation
	for _, row := range m.rows {
		if row.ReportID == reportID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *memEscalationRepo) HasReminder(reportID uuid.UUID) (bool, error) {
	for _, row := range m.rows {
		if row.ReportID == reportID && row.Decision == models.DecisionReminderSent {
			return true, nil
		}
	}
	return false, nil
}

type memBlockedRepo struct {
	blocks map[string]models.BlockedReporter
}

func newMemBlockedRepo() *memBlockedRepo {
	return &memBlockedRepo{blocks: make(map[string]models.BlockedReporter)}
}

func (m *memBlockedRepo) IsBlocked(emailHash string) (bool, error) {
	_, ok := m.blocks[emailHash]
	return ok, nil
}

func (m *memBlockedRepo) Create(block *models.BlockedReporter) error {
	if _, ok := m.blocks[block.EmailHash]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.blocks[block.EmailHash] = *block
	return nil
}

func (m *memBlockedRepo) DeleteByHash(emailHash string) (int64, error) {
	if _, ok := m.blocks[emailHash]; !ok {
		return 0, nil
	}
	delete(m.blocks, emailHash)
	return 1, nil
}

func (m *memBlockedRepo) List(page, limit int) ([]models.BlockedReporter, int64, error) {
	var out []models.BlockedReporter
	for _, b := range m.blocks {
		out = append(out, b)
	}
	return out, int64(len(out)), nil
}

type memSettingRepo struct {
	values map[string]string
	getErr error
	setErr error
}

func newMemSettingRepo() *memSettingRepo {
	return &memSettingRepo{values: make(map[string]string)}
}

func (m *memSettingRepo) Get(key string) (string, bool, error) {
	if m.getErr != nil {
		return "", false, m.getErr
	}
	val, ok := m.values[key]
	return val, ok, nil
}

func (m *memSettingRepo) Set(key, value string) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.values[key] = value
	return nil
}

type stubEventDirectory struct {
	events map[uuid.UUID]*EventInfo
}

func newStubEventDirectory() *stubEventDirectory {
	return &stubEventDirectory{events: make(map[uuid.UUID]*EventInfo)}
}

func (s *stubEventDirectory) GetEvent(eventID uuid.UUID) (*EventInfo, error) {
	info, ok := s.events[eventID]
	if !ok {
		return nil, errors.New("event lookup failed: 404")
	}
	return info, nil
}

type captureNotifier struct {
	events []notify.Event
}

func (c *captureNotifier) Publish(evt notify.Event) {
	c.events = append(c.events, evt)
}

func (c *captureNotifier) named(name notify.EventName) []notify.Event {
	var out []notify.Event
	for _, evt := range c.events {
		if evt.Name == name {
			out = append(out, evt)
		}
	}
	return out
}

package scheduler

import (
	"errors"
	"testing"
	"time"

	"github.com/gatherhub/moderation-service/internal/config"
	"github.com/gatherhub/moderation-service/internal/dto"
	"github.com/gatherhub/moderation-service/internal/models"
	"github.com/gatherhub/moderation-service/internal/notify"
	"github.com/gatherhub/moderation-service/internal/reporter"
	"github.com/gatherhub/moderation-service/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var tickNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// fakeReportStore is an in-memory services.ReportRepository covering what the
// scheduler and engine touch.
type fakeReportStore struct {
	reports map[uuid.UUID]*models.Report
	saveErr map[uuid.UUID]error
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{
		reports: make(map[uuid.UUID]*models.Report),
		saveErr: make(map[uuid.UUID]error),
	}
}

func (f *fakeReportStore) Create(report *models.Report) error {
	cp := *report
	f.reports[report.ID] = &cp
	return nil
}

func (f *fakeReportStore) Save(report *models.Report) error {
	if err := f.saveErr[report.ID]; err != nil {
		return err
	}
	cp := *report
	f.reports[report.ID] = &cp
	return nil
}

func (f *fakeReportStore) Delete(id uuid.UUID) error {
	delete(f.reports, id)
	return nil
}

func (f *fakeReportStore) FindByID(id uuid.UUID) (*models.Report, error) {
	report, ok := f.reports[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *report
	return &cp, nil
}

func (f *fakeReportStore) List(filter *dto.ReportFilter) ([]models.Report, int64, error) {
	return nil, 0, nil
}

func (f *fakeReportStore) CountByEmailHashSince(string, time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeReportStore) CountByEventSince(uuid.UUID, time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeReportStore) CountByInstanceSince(string, time.Time) (int64, error) {
	return 0, nil
}

func (f *fakeReportStore) ConsumeVerificationToken(string, time.Time) (*models.Report, error) {
	return nil, nil
}

func (f *fakeReportStore) FindOverdue(cutoff time.Time, adminReports bool) ([]models.Report, error) {
	var out []models.Report
	for _, r := range f.reports {
		if r.Status != models.StatusSubmitted || r.EscalationType != nil {
			continue
		}
		if !r.CreatedAt.Before(cutoff) {
			continue
		}
		if (r.ReporterType == models.ReporterAdministrator) != adminReports {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeReportStore) FindInReminderWindow(createdAfter, createdBefore time.Time) ([]models.Report, error) {
	var out []models.Report
	for _, r := range f.reports {
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

type fakeEventReporterStore struct{}

func (fakeEventReporterStore) Exists(uuid.UUID, string) (bool, error) { return false, nil }
func (fakeEventReporterStore) Create(*models.EventReporter) error     { return nil }

type fakeEscalationStore struct {
	rows []models.ReportEscalation
}

func (f *fakeEscalationStore) Create(esc *models.ReportEscalation) error {
	f.rows = append(f.rows, *esc)
	return nil
}

func (f *fakeEscalationStore) ListByReport(reportID uuid.UUID) ([]models.ReportEscalation, error) {
	var out []models.ReportEscalation
	for _, row := range f.rows {
		if row.ReportID == reportID {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeEscalationStore) HasReminder(reportID uuid.UUID) (bool, error) {
	for _, row := range f.rows {
		if row.ReportID == reportID && row.Decision == models.DecisionReminderSent {
			return true, nil
		}
	}
	return false, nil
}

type fakeBlockedStore struct{}

func (fakeBlockedStore) IsBlocked(string) (bool, error)       { return false, nil }
func (fakeBlockedStore) Create(*models.BlockedReporter) error { return nil }
func (fakeBlockedStore) DeleteByHash(string) (int64, error)   { return 0, nil }
func (fakeBlockedStore) List(int, int) ([]models.BlockedReporter, int64, error) {
	return nil, 0, nil
}

type fakeSettingStore struct {
	values map[string]string
	getErr error
}

func (f *fakeSettingStore) Get(key string) (string, bool, error) {
	if f.getErr != nil {
		return "", false, f.getErr
	}
	val, ok := f.values[key]
	return val, ok, nil
}

func (f *fakeSettingStore) Set(key, value string) error {
	f.values[key] = value
	return nil
}

type fakeDirectory struct{}

func (fakeDirectory) GetEvent(uuid.UUID) (*services.EventInfo, error) {
	return nil, errors.New("not found")
}

type nopNotifier struct{}

func (nopNotifier) Publish(notify.Event) {}

type schedFixture struct {
	sched       *EscalationScheduler
	reports     *fakeReportStore
	escalations *fakeEscalationStore
	settings    *fakeSettingStore
}

func newSchedFixture(t *testing.T) *schedFixture {
	t.Helper()

	reports := newFakeReportStore()
	escalations := &fakeEscalationStore{}
	settingStore := &fakeSettingStore{values: make(map[string]string)}

	cfg := &config.Config{
		EmailHashSecret: "scheduler-test-secret",
		RateLimitWindow: time.Hour,
		RateLimitMax:    5,
		VerificationTTL: 24 * time.Hour,
	}
	engine := services.NewModerationService(
		reports, fakeEventReporterStore{}, escalations, fakeBlockedStore{},
		fakeDirectory{}, services.NewSignalService(reports), nopNotifier{},
		reporter.NewHasher(cfg.EmailHashSecret), cfg,
	)
	settingsService := services.NewSettingsService(settingStore)

	sched := NewEscalationScheduler(engine, settingsService, reports, 15*time.Minute)
	sched.now = func() time.Time { return tickNow }

	return &schedFixture{
		sched:       sched,
		reports:     reports,
		escalations: escalations,
		settings:    settingStore,
	}
}

func (f *schedFixture) seedReport(t *testing.T, reporterType string, age time.Duration) uuid.UUID {
	t.Helper()
	id := uuid.New()
	report := &models.Report{
		ID:           id,
		EventID:      uuid.New(),
		CalendarID:   uuid.New(),
		Category:     models.CategorySpam,
		Description:  "seeded",
		ReporterType: reporterType,
		Status:       models.StatusSubmitted,
		CreatedAt:    tickNow.Add(-age),
	}
	if reporterType == models.ReporterAdministrator {
		adminID := uuid.New()
		report.AdminID = &adminID
		report.ReporterAccountID = &adminID
	}
	require.NoError(t, f.reports.Create(report))
	return id
}

func (f *schedFixture) status(t *testing.T, id uuid.UUID) *models.Report {
	t.Helper()
	report, err := f.reports.FindByID(id)
	require.NoError(t, err)
	return report
}

func TestTickAutoEscalatesOverdueReports(t *testing.T) {
	f := newSchedFixture(t)
	overdue := f.seedReport(t, models.ReporterAuthenticated, 73*time.Hour)
	recent := f.seedReport(t, models.ReporterAuthenticated, 71*time.Hour)

	f.sched.tick()

	escalated := f.status(t, overdue)
	assert.Equal(t, models.StatusEscalated, escalated.Status)
	require.NotNil(t, escalated.EscalationType)
	assert.Equal(t, models.EscalationAutomatic, *escalated.EscalationType)

	rows, _ := f.escalations.ListByReport(overdue)
	require.Len(t, rows, 1)
	assert.Equal(t, models.DecisionAutoEscalation, rows[0].Decision)
	assert.Equal(t, models.RoleSystem, rows[0].ReviewerRole)

	// 71h old sits inside the reminder window (60h..72h), so it gets a
	// reminder but keeps its status.
	assert.Equal(t, models.StatusSubmitted, f.status(t, recent).Status)
	recentRows, _ := f.escalations.ListByReport(recent)
	require.Len(t, recentRows, 1)
	assert.Equal(t, models.DecisionReminderSent, recentRows[0].Decision)
}

func TestTickUsesShorterAdminDeadline(t *testing.T) {
	f := newSchedFixture(t)
	adminReport := f.seedReport(t, models.ReporterAdministrator, 25*time.Hour)
	memberReport := f.seedReport(t, models.ReporterAuthenticated, 25*time.Hour)

	f.sched.tick()

	assert.Equal(t, models.StatusEscalated, f.status(t, adminReport).Status)
	// Non-admin reports at 25h are neither overdue (72h) nor in the
	// reminder window (starts at 60h).
	assert.Equal(t, models.StatusSubmitted, f.status(t, memberReport).Status)
	rows, _ := f.escalations.ListByReport(memberReport)
	assert.Empty(t, rows)
}

func TestTickHonorsUpdatedSettings(t *testing.T) {
	f := newSchedFixture(t)
	f.settings.values[services.SettingAutoEscalationHours] = "4"
	f.settings.values[services.SettingReminderBeforeEscalationHours] = "1"

	report := f.seedReport(t, models.ReporterAuthenticated, 5*time.Hour)

	f.sched.tick()

	assert.Equal(t, models.StatusEscalated, f.status(t, report).Status)
}

func TestReminderSentOncePerReport(t *testing.T) {
	f := newSchedFixture(t)
	report := f.seedReport(t, models.ReporterAuthenticated, 61*time.Hour)

	f.sched.tick()
	f.sched.tick()

	assert.Equal(t, models.StatusSubmitted, f.status(t, report).Status)
	rows, _ := f.escalations.ListByReport(report)
	require.Len(t, rows, 1)
	assert.Equal(t, models.DecisionReminderSent, rows[0].Decision)
}

func TestReminderSkippedWhenWindowMisconfigured(t *testing.T) {
	f := newSchedFixture(t)
	// Stored values bypass UpdateModerationSettings validation; the
	// scheduler must still cope with reminder >= auto.
	f.settings.values[services.SettingAutoEscalationHours] = "12"
	f.settings.values[services.SettingReminderBeforeEscalationHours] = "24"

	report := f.seedReport(t, models.ReporterAuthenticated, 6*time.Hour)

	f.sched.tick()

	rows, _ := f.escalations.ListByReport(report)
	assert.Empty(t, rows)
}

func TestTickSkippedOnSettingsFailure(t *testing.T) {
	f := newSchedFixture(t)
	report := f.seedReport(t, models.ReporterAuthenticated, 100*time.Hour)
	f.settings.getErr = errors.New("connection refused")

	f.sched.tick()

	assert.Equal(t, models.StatusSubmitted, f.status(t, report).Status)

	// The next tick recovers once settings are readable again.
	f.settings.getErr = nil
	f.sched.tick()
	assert.Equal(t, models.StatusEscalated, f.status(t, report).Status)
}

func TestTickContinuesPastFailingReport(t *testing.T) {
	f := newSchedFixture(t)
	failing := f.seedReport(t, models.ReporterAuthenticated, 80*time.Hour)
	healthy := f.seedReport(t, models.ReporterAuthenticated, 80*time.Hour)
	f.reports.saveErr[failing] = errors.New("deadlock detected")

	f.sched.tick()

	assert.Equal(t, models.StatusSubmitted, f.status(t, failing).Status)
	assert.Equal(t, models.StatusEscalated, f.status(t, healthy).Status)
}

func TestStartStopLifecycle(t *testing.T) {
	f := newSchedFixture(t)

	assert.False(t, f.sched.IsRunning())

	f.sched.Start()
	assert.True(t, f.sched.IsRunning())
	f.sched.Start() // no-op on a running scheduler
	assert.True(t, f.sched.IsRunning())

	f.sched.Stop()
	assert.False(t, f.sched.IsRunning())
	f.sched.Stop() // safe on a stopped scheduler

	f.sched.Start()
	assert.True(t, f.sched.IsRunning())
	f.sched.Stop()
}

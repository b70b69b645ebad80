package scheduler

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gatherhub/moderation-service/internal/services"
)

// Audit notes recorded on system-driven escalations.
const (
	autoEscalationNote  = "auto-escalated: owner did not act before the deadline"
	adminEscalationNote = "auto-escalated: administrator report not actioned by owner"
)

// EscalationScheduler drives submitted reports past their deadline through
// the moderation engine. It is a single periodic task: one goroutine runs the
// tick loop, so ticks never overlap. All writes go through the engine; the
// scheduler itself only reads.
type EscalationScheduler struct {
	engine   *services.ModerationService
	settings *services.SettingsService
	reports  services.ReportRepository

	interval time.Duration
	now      func() time.Time

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

func NewEscalationScheduler(
	engine *services.ModerationService,
	settings *services.SettingsService,
	reports services.ReportRepository,
	interval time.Duration,
) *EscalationScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &EscalationScheduler{
		engine:   engine,
		settings: settings,
		reports:  reports,
		interval: interval,
		now:      time.Now,
	}
}

// Start launches the tick loop. Calling Start on a running scheduler is a
// no-op.
func (s *EscalationScheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.done = make(chan struct{})

	go func(done chan struct{}) {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.tick()
			case <-done:
				return
			}
		}
	}(s.done)

	slog.Info("escalation scheduler started", "interval", s.interval.String())
}

// Stop halts the tick loop without leaking the timer. Safe to call on a
// stopped scheduler.
func (s *EscalationScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.done)
	slog.Info("escalation scheduler stopped")
}

func (s *EscalationScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// tick runs the three passes. Settings are re-read every tick so the
// duration knobs are live-reconfigurable; a settings failure skips the whole
// tick and the next one retries independently.
func (s *EscalationScheduler) tick() {
	ticksTotal.Inc()

	settings, err := s.settings.ModerationSettings()
	if err != nil {
		slog.Error("scheduler: failed to load moderation settings", "error", err)
		return
	}

	now := s.now()
	s.autoEscalationPass(now, settings)
	s.adminEscalationPass(now, settings)
	s.reminderPass(now, settings)
}

// autoEscalationPass escalates non-admin submitted reports older than the
// auto-escalation deadline.
func (s *EscalationScheduler) autoEscalationPass(now time.Time, settings *services.ModerationSettings) {
	cutoff := now.Add(-time.Duration(settings.AutoEscalationHours) * time.Hour)
	reports, err := s.reports.FindOverdue(cutoff, false)
	if err != nil {
		slog.Error("scheduler: overdue query failed", "error", err)
		return
	}

	for i := range reports {
		report := &reports[i]
		if err := s.engine.AutoEscalate(report, autoEscalationNote); err != nil {
			failuresTotal.Inc()
			slog.Error("scheduler: auto-escalation failed",
				"report_id", report.ID.String(), "error", err)
			continue
		}
		autoEscalationsTotal.Inc()
		slog.Info("report auto-escalated", "report_id", report.ID.String())
	}
}

// adminEscalationPass re-escalates administrator-filed reports the owner
// failed to act on within the (shorter) admin deadline.
func (s *EscalationScheduler) adminEscalationPass(now time.Time, settings *services.ModerationSettings) {
	cutoff := now.Add(-time.Duration(settings.AdminReportEscalationHours) * time.Hour)
	reports, err := s.reports.FindOverdue(cutoff, true)
	if err != nil {
		slog.Error("scheduler: admin overdue query failed", "error", err)
		return
	}

	for i := range reports {
		report := &reports[i]
		if err := s.engine.AutoEscalate(report, adminEscalationNote); err != nil {
			failuresTotal.Inc()
			slog.Error("scheduler: admin re-escalation failed",
				"report_id", report.ID.String(), "error", err)
			continue
		}
		adminReescalationsTotal.Inc()
		slog.Info("admin report re-escalated", "report_id", report.ID.String())
	}
}

// reminderPass emits at most one owner reminder per report while its age sits
// inside [autoEscalationHours - reminderBeforeHours, autoEscalationHours).
func (s *EscalationScheduler) reminderPass(now time.Time, settings *services.ModerationSettings) {
	if settings.ReminderBeforeEscalationHours >= settings.AutoEscalationHours {
		// Misconfigured window; auto-escalation alone applies.
		return
	}

	createdAfter := now.Add(-time.Duration(settings.AutoEscalationHours) * time.Hour)
	createdBefore := now.Add(-time.Duration(settings.AutoEscalationHours-settings.ReminderBeforeEscalationHours) * time.Hour)

	reports, err := s.reports.FindInReminderWindow(createdAfter, createdBefore)
	if err != nil {
		slog.Error("scheduler: reminder query failed", "error", err)
		return
	}

	for i := range reports {
		report := &reports[i]
		sent, err := s.engine.SendEscalationReminder(report)
		if err != nil {
			failuresTotal.Inc()
			slog.Error("scheduler: reminder failed",
				"report_id", report.ID.String(), "error", err)
			continue
		}
		if sent {
			remindersTotal.Inc()
			slog.Info("escalation reminder sent", "report_id", report.ID.String())
		}
	}
}

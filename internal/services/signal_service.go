package services

import (
	"log/slog"
	"time"

	"github.com/gatherhub/moderation-service/internal/models"
)

// Detection thresholds: counts within the lookback window that flip the
// corresponding signal flag.
const (
	signalLookback          = 24 * time.Hour
	floodingThreshold       = 5
	eventTargetThreshold    = 10
	instanceVolumeThreshold = 10
)

// SignalService computes the derived abuse-pattern flags persisted on a
// report at creation time. Detection is best-effort: a failed count leaves
// the flag false and logs the error.
type SignalService struct {
	reports ReportRepository
	now     func() time.Time
}

func NewSignalService(reports ReportRepository) *SignalService {
	return &SignalService{reports: reports, now: time.Now}
}

// Evaluate sets the pattern flags on report before it is persisted.
func (s *SignalService) Evaluate(report *models.Report) {
	since := s.now().Add(-signalLookback)

	if report.ReporterEmailHash != nil {
		count, err := s.reports.CountByEmailHashSince(*report.ReporterEmailHash, since)
		if err != nil {
			slog.Error("source flooding check failed", "error", err)
		} else if count >= floodingThreshold {
			report.HasSourceFloodingPattern = true
		}
	}

	count, err := s.reports.CountByEventSince(report.EventID, since)
	if err != nil {
		slog.Error("event targeting check failed", "event_id", report.EventID.String(), "error", err)
	} else if count >= eventTargetThreshold {
		report.HasEventTargetingPattern = true
	}

	if report.ForwardedFromInstance != nil {
		count, err := s.reports.CountByInstanceSince(*report.ForwardedFromInstance, since)
		if err != nil {
			slog.Error("instance pattern check failed", "instance", *report.ForwardedFromInstance, "error", err)
		} else if count >= instanceVolumeThreshold {
			report.HasInstancePattern = true
		}
	}
}

package notify

import (
	"log/slog"

	"github.com/gatherhub/moderation-service/internal/models"
)

// EventName is the closed set of domain events this service emits.
type EventName string

const (
	EventReportCreated       EventName = "reportCreated"
	EventReportVerified      EventName = "reportVerified"
	EventReportResolved      EventName = "reportResolved"
	EventReportEscalated     EventName = "reportEscalated"
	EventReportDismissed     EventName = "reportDismissed"
	EventReportOverridden    EventName = "reportOverridden"
	EventReportAutoEscalated EventName = "report.auto_escalated"
	EventEscalationReminder  EventName = "report.escalation_reminder"
)

// Event carries the full updated report plus transition-specific context
// (reviewer id, escalation reason, reporter email for verification mails).
type Event struct {
	Name    EventName
	Report  *models.Report
	Context map[string]interface{}
}

// Notifier is the fire-and-forget event sink. Implementations must not block
// the caller and must not fail report processing.
type Notifier interface {
	Publish(evt Event)
}

// Fanout publishes to every wrapped notifier in order.
type Fanout []Notifier

func (f Fanout) Publish(evt Event) {
	for _, n := range f {
		n.Publish(evt)
	}
}

// SlogNotifier logs every event; the default sink when no delivery
// integration is configured.
type SlogNotifier struct{}

func (SlogNotifier) Publish(evt Event) {
	slog.Info("moderation event",
		"event", string(evt.Name),
		"report_id", evt.Report.ID.String(),
		"status", evt.Report.Status,
	)
}

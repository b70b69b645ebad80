package models

import (
	"time"

	"github.com/google/uuid"
)

// Report lifecycle statuses. Resolved and dismissed are terminal.
const (
	StatusPendingVerification = "pending_verification"
	StatusSubmitted           = "submitted"
	StatusEscalated           = "escalated"
	StatusResolved            = "resolved"
	StatusDismissed           = "dismissed"
)

// Report categories (closed set).
const (
	CategorySpam          = "spam"
	CategoryHarassment    = "harassment"
	CategoryInappropriate = "inappropriate"
	CategoryMisleading    = "misleading"
	CategoryOther         = "other"
)

// Reporter types.
const (
	ReporterAnonymous     = "anonymous"
	ReporterAuthenticated = "authenticated"
	ReporterAdministrator = "administrator"
)

// Escalation types.
const (
	EscalationManual    = "manual"
	EscalationAutomatic = "automatic"
)

// Admin report priorities.
const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Report is an abuse/spam report filed against a calendar event.
type Report struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventID    uuid.UUID `gorm:"type:uuid;not null;index" json:"event_id"`
	CalendarID uuid.UUID `gorm:"type:uuid;not null;index" json:"calendar_id"`

	Category    string `gorm:"not null;size:50" json:"category"`
	Description string `gorm:"not null;size:2000" json:"description"`

	// Exactly one reporter shape is active, keyed by ReporterType:
	// anonymous -> ReporterEmailHash, authenticated -> ReporterAccountID,
	// administrator -> ReporterAccountID + AdminID.
	ReporterType      string     `gorm:"not null;size:20;index" json:"reporter_type"`
	ReporterEmailHash *string    `gorm:"size:64;index" json:"-"`
	ReporterAccountID *uuid.UUID `gorm:"type:uuid" json:"reporter_account_id,omitempty"`

	AdminID       *uuid.UUID `gorm:"type:uuid" json:"admin_id,omitempty"`
	AdminPriority *string    `gorm:"size:10" json:"admin_priority,omitempty"`
	AdminDeadline *time.Time `json:"admin_deadline,omitempty"`
	AdminNotes    string     `gorm:"size:2000" json:"admin_notes,omitempty"`

	// Token fields are non-null only while Status is pending_verification.
	VerificationToken      *string    `gorm:"size:64;index" json:"-"`
	VerificationExpiration *time.Time `json:"-"`

	Status         string  `gorm:"not null;default:'pending_verification';size:30;index" json:"status"`
	EscalationType *string `gorm:"size:20;index" json:"escalation_type,omitempty"`

	OwnerNotes        string     `gorm:"size:2000" json:"owner_notes,omitempty"`
	ReviewerID        *uuid.UUID `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	ReviewerNotes     string     `gorm:"size:2000" json:"reviewer_notes,omitempty"`
	ReviewerTimestamp *time.Time `json:"reviewer_timestamp,omitempty"`

	HasSourceFloodingPattern bool `gorm:"not null;default:false" json:"has_source_flooding_pattern"`
	HasEventTargetingPattern bool `gorm:"not null;default:false" json:"has_event_targeting_pattern"`
	HasInstancePattern       bool `gorm:"not null;default:false" json:"has_instance_pattern"`

	// Federation metadata, passed through unchanged.
	ForwardedFromInstance *string `gorm:"size:255;index" json:"forwarded_from_instance,omitempty"`
	ForwardedReportID     *string `gorm:"size:255" json:"forwarded_report_id,omitempty"`
	ForwardStatus         *string `gorm:"size:50" json:"forward_status,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsTerminal reports whether no further lifecycle transition is permitted
// (admin override excepted).
func (r *Report) IsTerminal() bool {
	return r.Status == StatusResolved || r.Status == StatusDismissed
}

// ReporterIdentifier is the dedup key for the (event, reporter) pair: the
// email hash for anonymous reporters, the account id otherwise.
func (r *Report) ReporterIdentifier() string {
	if r.ReporterType == ReporterAnonymous && r.ReporterEmailHash != nil {
		return *r.ReporterEmailHash
	}
	if r.ReporterAccountID != nil {
		return r.ReporterAccountID.String()
	}
	return ""
}

// ValidCategory reports whether c is in the closed category set.
func ValidCategory(c string) bool {
	switch c {
	case CategorySpam, CategoryHarassment, CategoryInappropriate, CategoryMisleading, CategoryOther:
		return true
	}
	return false
}

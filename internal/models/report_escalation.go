package models

import (
	"time"

	"github.com/google/uuid"
)

// Reviewer roles recorded on escalation audit rows.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleSystem = "system"
)

// Decision tags recorded on escalation audit rows.
const (
	DecisionResolved       = "resolved"
	DecisionDismissed      = "dismissed"
	DecisionEscalated      = "escalated"
	DecisionOverride       = "override"
	DecisionAutoEscalation = "auto_escalation"
	DecisionReminderSent   = "reminder_sent"
	DecisionVerified       = "verified"
)

// ReportEscalation is the append-only audit trail: one row per status
// transition (and per reminder emission), never updated or deleted.
// If schedulers ever run multi-instance, reminder dedup needs a partial
// unique index on (report_id, decision) where decision = 'reminder_sent'.
type ReportEscalation struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReportID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"report_id"`
	FromStatus   string     `gorm:"not null;size:30" json:"from_status"`
	ToStatus     string     `gorm:"not null;size:30" json:"to_status"`
	ReviewerID   *uuid.UUID `gorm:"type:uuid" json:"reviewer_id,omitempty"`
	ReviewerRole string     `gorm:"not null;size:10" json:"reviewer_role"`
	Decision     string     `gorm:"not null;size:30;index" json:"decision"`
	Notes        string     `gorm:"size:2000" json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

package models

import (
	"time"

	"github.com/google/uuid"
)

// EventReporter is the dedup ledger: one row per (event, reporter) pair.
// The composite unique index is the storage-layer guarantee that at most one
// report per pair survives a concurrent double-submit.
type EventReporter struct {
	ID                 uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EventID            uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_event_reporter" json:"event_id"`
	ReporterIdentifier string    `gorm:"not null;size:128;uniqueIndex:idx_event_reporter" json:"reporter_identifier"`
	ReportID           uuid.UUID `gorm:"type:uuid;not null;index" json:"report_id"`
	CreatedAt          time.Time `json:"created_at"`
}

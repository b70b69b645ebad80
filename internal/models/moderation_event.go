package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ModerationEvent is the persisted form of an emitted domain event, written
// asynchronously by the notify outbox for audit and downstream consumers.
type ModerationEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name      string         `gorm:"not null;size:50;index" json:"name"`
	ReportID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"report_id"`
	Payload   datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"payload"`
	CreatedAt time.Time      `gorm:"index" json:"created_at"`
}

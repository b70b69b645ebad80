package models

import (
	"time"

	"github.com/google/uuid"
)

// BlockedReporter blocks future anonymous submissions for a hashed email.
type BlockedReporter struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EmailHash string    `gorm:"not null;size:64;uniqueIndex" json:"email_hash"`
	BlockedBy uuid.UUID `gorm:"type:uuid;not null" json:"blocked_by"`
	Reason    string    `gorm:"size:500" json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

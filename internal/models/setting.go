package models

import (
	"time"

	"github.com/google/uuid"
)

// Setting is a string key/value pair for live-reconfigurable moderation knobs.
type Setting struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Key       string    `gorm:"not null;size:100;uniqueIndex" json:"key"`
	Value     string    `gorm:"not null;size:500" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

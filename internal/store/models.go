package store

import (
	"time"

	"gorm.io/gorm"
)

// Run is the persisted summary of one settlement run.
type Run struct {
	gorm.Model     `json:"-"`
	RunID          string    `gorm:"uniqueIndex" json:"run_id"`
	EventCount     int       `json:"event_count"`
	SettledCount   int       `json:"settled_count"`
	PostponedCount int       `json:"postponed_count"`
	FailedCount    int       `json:"failed_count"`
	DurationMs     int64     `json:"duration_ms"`
	Result         string    `gorm:"type:text" json:"-"` // raw result JSON
	CreatedAt      time.Time `json:"created_at"`
}

// RunEvent records the disposition of a single event within a run.
type RunEvent struct {
	gorm.Model  `json:"-"`
	RunID       string `gorm:"index" json:"run_id"`
	EventID     string `json:"event_id"`
	Disposition string `json:"disposition"` // settled, postponed, failed
	Error       string `json:"error,omitempty"`
}

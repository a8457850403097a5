package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Статусы прогона загрузки.
const (
	RunStatusCompleted = "completed"
	RunStatusPartial   = "partial"
	RunStatusFailed    = "failed"
)

// IngestRun — журнал прогонов пайплайна.
type IngestRun struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	StartedAt        time.Time      `gorm:"not null;index" json:"started_at"`
	FinishedAt       *time.Time     `json:"finished_at,omitempty"`
	Status           string         `gorm:"type:varchar(20);not null" json:"status"`
	RecordsCollected int            `json:"records_collected"`
	WindowsFetched   int            `json:"windows_fetched"`
	ArchivePath      string         `gorm:"type:text" json:"archive_path"`
	Params           datatypes.JSON `json:"params"`
	Error            string         `gorm:"type:text" json:"error,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime" json:"-"`
}

package assetcleanup

import (
	"time"

	"github.com/gofrs/uuid"
)

const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// MaxAttempts is how often a delete is retried before the row is parked as failed.
const MaxAttempts = 5

// AssetCleanup is a queued delete for an asset whose first delete attempt failed.
type AssetCleanup struct {
	ID          uuid.UUID  `gorm:"primary_key;type:char(36)"`
	Path        string     `gorm:"type:varchar(512);not null"`
	Status      string     `gorm:"type:varchar(20);not null;index"` // pending, done, failed
	Attempts    int        `gorm:"not null;default:0"`
	LastError   string     `gorm:"type:text"`
	CreatedAt   time.Time  `gorm:"autoCreateTime"`
	ProcessedAt *time.Time `gorm:"index"`
}

func (AssetCleanup) TableName() string { return "asset_cleanups" }

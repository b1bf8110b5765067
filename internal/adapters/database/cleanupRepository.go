package database

import (
	"context"
	"time"

	"postfeed/internal/core/assetcleanup"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// CleanupRepositoryDatabase stores queued asset deletes.
type CleanupRepositoryDatabase struct {
	db *gorm.DB
}

func NewCleanupRepositoryDatabase(db *gorm.DB) *CleanupRepositoryDatabase {
	return &CleanupRepositoryDatabase{db: db}
}

func (repo *CleanupRepositoryDatabase) Create(ctx context.Context, c *assetcleanup.AssetCleanup) (*assetcleanup.AssetCleanup, error) {
	if err := repo.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// GetPending returns the oldest pending deletes first.
func (repo *CleanupRepositoryDatabase) GetPending(ctx context.Context, limit int64) ([]*assetcleanup.AssetCleanup, error) {
	var jobs []*assetcleanup.AssetCleanup
	if err := repo.db.WithContext(ctx).
		Where("status = ?", assetcleanup.StatusPending).
		Order("created_at ASC").
		Limit(int(limit)).
		Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (repo *CleanupRepositoryDatabase) MarkDone(ctx context.Context, id uuid.UUID) error {
	now := time.Now()
	return repo.db.WithContext(ctx).Model(&assetcleanup.AssetCleanup{}).
		Where("id = ?", id).
		Updates(map[string]any{"status": assetcleanup.StatusDone, "processed_at": &now}).Error
}

// MarkAttempt records a failed retry. status is pending to try again, failed to give up.
func (repo *CleanupRepositoryDatabase) MarkAttempt(ctx context.Context, id uuid.UUID, attempts int, lastErr string, status string) error {
	updates := map[string]any{
		"attempts":   attempts,
		"last_error": lastErr,
		"status":     status,
	}
	if status == assetcleanup.StatusFailed {
		now := time.Now()
		updates["processed_at"] = &now
	}
	return repo.db.WithContext(ctx).Model(&assetcleanup.AssetCleanup{}).
		Where("id = ?", id).
		Updates(updates).Error
}

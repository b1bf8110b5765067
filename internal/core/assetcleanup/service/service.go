package cleanupapp

import (
	"context"

	"postfeed/internal/config"
	"postfeed/internal/core/assetcleanup"
	"postfeed/internal/metrics"
	assetPort "postfeed/internal/ports/asset"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// CleanupService deletes assets that lost their post. A delete that fails is
// logged and queued for the cleanup worker instead of reaching the caller.
type CleanupService struct {
	Store             assetPort.Store
	CleanupRepository assetPort.CleanupRepository
}

func NewCleanupService(store assetPort.Store, repo assetPort.CleanupRepository) *CleanupService {
	return &CleanupService{
		Store:             store,
		CleanupRepository: repo,
	}
}

// Discard deletes path now, or queues it if that fails.
func (s *CleanupService) Discard(ctx context.Context, path string) {
	if path == "" {
		return
	}
	err := s.Store.Delete(ctx, path)
	if err == nil {
		config.Logger.Debug("🧹 Asset deleted", zap.String("path", path))
		return
	}

	metrics.AssetCleanupFailures.Inc()
	config.Logger.Warn("⚠️ Could not delete asset, queueing retry", zap.String("path", path), zap.Error(err))

	if s.CleanupRepository == nil {
		return
	}
	job := &assetcleanup.AssetCleanup{
		ID:        uuid.Must(uuid.NewV4()),
		Path:      path,
		Status:    assetcleanup.StatusPending,
		Attempts:  1,
		LastError: err.Error(),
	}
	if _, err := s.CleanupRepository.Create(ctx, job); err != nil {
		config.Logger.Error("❌ Could not queue asset cleanup", zap.String("path", path), zap.Error(err))
	}
}

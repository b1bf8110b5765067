package workers

import (
	"context"
	"time"

	"postfeed/internal/core/assetcleanup"
	"postfeed/internal/metrics"
	assetPort "postfeed/internal/ports/asset"

	"github.com/gofrs/uuid"
	"go.uber.org/zap"
)

// CleanupWorker retries asset deletes that failed while a post was updated or
// deleted. A row is given up on after assetcleanup.MaxAttempts.
type CleanupWorker struct {
	Store       assetPort.Store
	CleanupRepo assetPort.CleanupRepository
	BatchSize   int
	Interval    time.Duration
	Logger      *zap.Logger
}

func NewCleanupWorker(
	store assetPort.Store,
	cleanupRepo assetPort.CleanupRepository,
	batchSize int,
	interval time.Duration,
	logger *zap.Logger,
) *CleanupWorker {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &CleanupWorker{
		Store:       store,
		CleanupRepo: cleanupRepo,
		BatchSize:   batchSize,
		Interval:    interval,
		Logger:      logger,
	}
}

// Run drains the queue every Interval until ctx is canceled.
func (w *CleanupWorker) Run(ctx context.Context) {
	w.Logger.Info("🚀 CleanupWorker started", zap.Duration("interval", w.Interval))
	ticker := time.NewTicker(w.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.Logger.Info("🛑 Cleanup worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce processes one batch of pending deletes and reports how many were handled.
func (w *CleanupWorker) RunOnce(ctx context.Context) int {
	pending, err := w.CleanupRepo.GetPending(ctx, int64(w.BatchSize))
	if err != nil {
		w.Logger.Error("❌ Error fetching pending cleanups", zap.Error(err))
		return 0
	}
	for _, job := range pending {
		if ctx.Err() != nil {
			break
		}
		w.processCleanup(ctx, job)
	}
	return len(pending)
}

func (w *CleanupWorker) processCleanup(ctx context.Context, job *assetcleanup.AssetCleanup) {
	if job == nil || job.ID == uuid.Nil {
		w.Logger.Error("❌ Invalid AssetCleanup record", zap.Any("record", job))
		return
	}

	err := w.Store.Delete(ctx, job.Path)
	if err == nil {
		metrics.AssetCleanupRetries.WithLabelValues("done").Inc()
		if err := w.CleanupRepo.MarkDone(ctx, job.ID); err != nil {
			w.Logger.Warn("⚠️ Could not mark cleanup done", zap.String("id", job.ID.String()), zap.Error(err))
			return
		}
		w.Logger.Info("✅ Asset deleted on retry", zap.String("path", job.Path), zap.Int("attempts", job.Attempts+1))
		return
	}

	attempts := job.Attempts + 1
	status := assetcleanup.StatusPending
	if attempts >= assetcleanup.MaxAttempts {
		status = assetcleanup.StatusFailed
		metrics.AssetCleanupRetries.WithLabelValues("failed").Inc()
		w.Logger.Error("❌ Giving up on asset delete", zap.String("path", job.Path), zap.Int("attempts", attempts), zap.Error(err))
	} else {
		metrics.AssetCleanupRetries.WithLabelValues("retry").Inc()
		w.Logger.Warn("⚠️ Asset delete failed again", zap.String("path", job.Path), zap.Int("attempts", attempts), zap.Error(err))
	}

	if err := w.CleanupRepo.MarkAttempt(ctx, job.ID, attempts, err.Error(), status); err != nil {
		w.Logger.Warn("⚠️ Could not record cleanup attempt", zap.String("id", job.ID.String()), zap.Error(err))
	}
}

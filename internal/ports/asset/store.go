package asset

import (
	"context"
	"io"

	"postfeed/internal/core/assetcleanup"

	"github.com/gofrs/uuid"
)

// Store holds uploaded images addressed by path.
type Store interface {
	Save(ctx context.Context, originalName string, r io.Reader) (string, error)
	Delete(ctx context.Context, path string) error
}

// Discarder removes an asset that is no longer referenced. It never fails
// the caller; failures are its own business.
type Discarder interface {
	Discard(ctx context.Context, path string)
}

// CleanupRepository queues deletes that have to be retried.
type CleanupRepository interface {
	Create(ctx context.Context, c *assetcleanup.AssetCleanup) (*assetcleanup.AssetCleanup, error)
	GetPending(ctx context.Context, limit int64) ([]*assetcleanup.AssetCleanup, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkAttempt(ctx context.Context, id uuid.UUID, attempts int, lastErr string, status string) error
}

package workers

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"postfeed/internal/core/assetcleanup"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type flakyStore struct {
	mu      sync.Mutex
	broken  map[string]bool
	deleted []string
}

func (s *flakyStore) Save(context.Context, string, io.Reader) (string, error) {
	return "", errors.New("not used")
}

func (s *flakyStore) Delete(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.broken[path] {
		return errors.New("permission denied")
	}
	s.deleted = append(s.deleted, path)
	return nil
}

type memQueue struct {
	mu   sync.Mutex
	jobs []*assetcleanup.AssetCleanup
}

func (q *memQueue) add(path string, attempts int) *assetcleanup.AssetCleanup {
	job := &assetcleanup.AssetCleanup{
		ID:       uuid.Must(uuid.NewV4()),
		Path:     path,
		Status:   assetcleanup.StatusPending,
		Attempts: attempts,
	}
	q.mu.Lock()
	q.jobs = append(q.jobs, job)
	q.mu.Unlock()
	return job
}

func (q *memQueue) Create(_ context.Context, c *assetcleanup.AssetCleanup) (*assetcleanup.AssetCleanup, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.jobs = append(q.jobs, c)
	return c, nil
}

func (q *memQueue) GetPending(_ context.Context, limit int64) ([]*assetcleanup.AssetCleanup, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	var out []*assetcleanup.AssetCleanup
	for _, j := range q.jobs {
		if j.Status == assetcleanup.StatusPending && int64(len(out)) < limit {
			cp := *j
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (q *memQueue) find(id uuid.UUID) *assetcleanup.AssetCleanup {
	for _, j := range q.jobs {
		if j.ID == id {
			return j
		}
	}
	return nil
}

func (q *memQueue) MarkDone(_ context.Context, id uuid.UUID) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.find(id).Status = assetcleanup.StatusDone
	return nil
}

func (q *memQueue) MarkAttempt(_ context.Context, id uuid.UUID, attempts int, lastErr string, status string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	j := q.find(id)
	j.Attempts, j.LastError, j.Status = attempts, lastErr, status
	return nil
}

func (q *memQueue) status(id uuid.UUID) (string, int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	j := q.find(id)
	return j.Status, j.Attempts
}

func TestCleanupWorker_RunOnce(t *testing.T) {
	store := &flakyStore{broken: map[string]bool{"images/locked.png": true}}
	queue := &memQueue{}
	ok := queue.add("images/ok.png", 1)
	locked := queue.add("images/locked.png", 1)

	w := NewCleanupWorker(store, queue, 10, time.Minute, zaptest.NewLogger(t))
	assert.Equal(t, 2, w.RunOnce(context.Background()))

	status, _ := queue.status(ok.ID)
	assert.Equal(t, assetcleanup.StatusDone, status)
	assert.Equal(t, []string{"images/ok.png"}, store.deleted)

	status, attempts := queue.status(locked.ID)
	assert.Equal(t, assetcleanup.StatusPending, status)
	assert.Equal(t, 2, attempts)
}

func TestCleanupWorker_GivesUpAfterMaxAttempts(t *testing.T) {
	store := &flakyStore{broken: map[string]bool{"images/locked.png": true}}
	queue := &memQueue{}
	job := queue.add("images/locked.png", 1)

	w := NewCleanupWorker(store, queue, 10, time.Minute, zap.NewNop())
	for i := 0; i < assetcleanup.MaxAttempts; i++ {
		w.RunOnce(context.Background())
	}

	status, attempts := queue.status(job.ID)
	assert.Equal(t, assetcleanup.StatusFailed, status)
	assert.Equal(t, assetcleanup.MaxAttempts, attempts)
	assert.Zero(t, w.RunOnce(context.Background()), "failed rows are not picked up again")
}

func TestCleanupWorker_BatchSize(t *testing.T) {
	store := &flakyStore{}
	queue := &memQueue{}
	for _, p := range []string{"a", "b", "c"} {
		queue.add(p, 1)
	}

	w := NewCleanupWorker(store, queue, 2, time.Minute, zap.NewNop())
	assert.Equal(t, 2, w.RunOnce(context.Background()))
	assert.Equal(t, 1, w.RunOnce(context.Background()))
	assert.Equal(t, []string{"a", "b", "c"}, store.deleted)
}

func TestCleanupWorker_RunStopsOnCancel(t *testing.T) {
	store := &flakyStore{}
	queue := &memQueue{}
	queue.add("images/a.png", 1)

	w := NewCleanupWorker(store, queue, 10, 10*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.deleted) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}

func TestNewCleanupWorker_Defaults(t *testing.T) {
	w := NewCleanupWorker(&flakyStore{}, &memQueue{}, 0, 0, zap.NewNop())
	assert.Equal(t, 100, w.BatchSize)
	assert.Equal(t, 30*time.Second, w.Interval)
}

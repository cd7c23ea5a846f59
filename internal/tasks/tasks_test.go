package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gatedStore records writes and blocks each one until release is closed.
type gatedStore struct {
	mu      sync.Mutex
	writes  map[string][]models.UserRecord
	started chan string
	release chan struct{}
	err     error
}

func newGatedStore() *gatedStore {
	return &gatedStore{
		writes:  make(map[string][]models.UserRecord),
		started: make(chan string, 32),
		release: make(chan struct{}),
	}
}

func (s *gatedStore) Set(ctx context.Context, path string, value models.UserRecord) error {
	s.started <- path

	select {
	case <-s.release:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.writes[path] = append(s.writes[path], value)
	return nil
}

func (s *gatedStore) recorded(path string) []models.UserRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.UserRecord(nil), s.writes[path]...)
}

func liked(ids ...int) models.UserRecord {
	return models.UserRecord{Liked: ids, Schedules: []models.ScheduleEntry{}}
}

func waitStarted(t *testing.T, s *gatedStore) string {
	t.Helper()
	select {
	case path := <-s.started:
		return path
	case <-time.After(2 * time.Second):
		t.Fatal("write never started")
		return ""
	}
}

func TestWriteQueue(t *testing.T) {
	ctx := context.Background()

	t.Run("coalesces snapshots queued behind an in-flight write", func(t *testing.T) {
		store := newGatedStore()
		q := NewWriteQueue(store, WriteQueueOpts{})

		q.Enqueue("users/u1", liked(1))
		waitStarted(t, store)

		q.Enqueue("users/u1", liked(1, 2))
		q.Enqueue("users/u1", liked(1, 2, 3))
		close(store.release)

		require.NoError(t, q.Flush(ctx))

		writes := store.recorded("users/u1")
		require.Len(t, writes, 2)
		assert.Equal(t, []int{1}, writes[0].Liked)
		assert.Equal(t, []int{1, 2, 3}, writes[1].Liked)

		stats := q.Stats()
		assert.Equal(t, 3, stats.Enqueued)
		assert.Equal(t, 2, stats.Written)
		assert.Equal(t, 1, stats.Coalesced)
		assert.Zero(t, stats.Failed)
	})

	t.Run("different paths write concurrently", func(t *testing.T) {
		store := newGatedStore()
		q := NewWriteQueue(store, WriteQueueOpts{})

		q.Enqueue("users/a", liked(1))
		q.Enqueue("users/b", liked(2))

		started := []string{waitStarted(t, store), waitStarted(t, store)}
		assert.ElementsMatch(t, []string{"users/a", "users/b"}, started)

		close(store.release)
		require.NoError(t, q.Flush(ctx))
		assert.Len(t, store.recorded("users/a"), 1)
		assert.Len(t, store.recorded("users/b"), 1)
	})

	t.Run("flush on an idle queue returns immediately", func(t *testing.T) {
		q := NewWriteQueue(newGatedStore(), WriteQueueOpts{})
		require.NoError(t, q.Flush(ctx))
	})

	t.Run("flush honors context", func(t *testing.T) {
		store := newGatedStore()
		q := NewWriteQueue(store, WriteQueueOpts{})

		q.Enqueue("users/u1", liked(1))
		waitStarted(t, store)

		short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
		defer cancel()

		err := q.Flush(short)
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrTimeout)

		close(store.release)
		require.NoError(t, q.Flush(ctx))
	})

	t.Run("failures are counted and reported as store errors", func(t *testing.T) {
		store := newGatedStore()
		store.err = errors.New("disk full")
		close(store.release)

		progress := make(chan WriteUpdate, 8)
		q := NewWriteQueue(store, WriteQueueOpts{Progress: progress})

		q.Enqueue("users/u1", liked(1))
		require.NoError(t, q.Flush(ctx))

		stats := q.Stats()
		assert.Equal(t, 1, stats.Failed)
		assert.Zero(t, stats.Written)

		var failed *WriteUpdate
		for len(progress) > 0 {
			u := <-progress
			if u.Phase == WriteFailed {
				failed = &u
			}
		}
		require.NotNil(t, failed)
		assert.ErrorIs(t, failed.Err, shared.ErrStore)
		assert.Contains(t, failed.Message(), "users/u1")
	})

	t.Run("closed queue drops snapshots", func(t *testing.T) {
		store := newGatedStore()
		close(store.release)
		q := NewWriteQueue(store, WriteQueueOpts{})

		q.Enqueue("users/u1", liked(1))
		require.NoError(t, q.Close(ctx))

		q.Enqueue("users/u1", liked(1, 2))
		require.NoError(t, q.Flush(ctx))

		assert.Len(t, store.recorded("users/u1"), 1)
		assert.Equal(t, 1, q.Stats().Dropped)
	})

	t.Run("rate limited queue still drains", func(t *testing.T) {
		store := newGatedStore()
		close(store.release)
		q := NewWriteQueue(store, WriteQueueOpts{RateLimit: 1000})

		for i := range 5 {
			q.Enqueue("users/u1", liked(i))
			require.NoError(t, q.Flush(ctx))
		}
		assert.Len(t, store.recorded("users/u1"), 5)
	})
}

func TestPhase(t *testing.T) {
	tests := []struct {
		phase Phase
		want  string
	}{
		{WriteStarted, "write_started"},
		{WriteDone, "write_done"},
		{WriteFailed, "write_failed"},
		{WriteCoalesced, "write_coalesced"},
		{Phase(99), ""},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.phase.String(); got != tt.want {
				t.Errorf("Phase.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

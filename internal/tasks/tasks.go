package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tripmate/internal/models"
	"github.com/desertthunder/tripmate/internal/shared"
	"golang.org/x/time/rate"
)

// Setter persists a document snapshot at a path.
type Setter interface {
	Set(ctx context.Context, path string, value models.UserRecord) error
}

// WriteQueueOpts contains configuration for a [WriteQueue].
type WriteQueueOpts struct {
	RateLimit float64            // Writes per second across all paths (0 = unlimited)
	Logger    *log.Logger        // Defaults to the package-level charm logger
	Progress  chan<- WriteUpdate // Optional, written to without blocking
}

// WriteQueue serializes and coalesces document writes per path.
type WriteQueue struct {
	store    Setter
	limiter  *rate.Limiter
	logger   *log.Logger
	progress chan<- WriteUpdate

	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	inflight map[string]bool
	pending  map[string]models.UserRecord
	idle     chan struct{}
	closed   bool
	stats    Stats
}

// NewWriteQueue creates a queue that writes to store.
//
// Writes run under a context owned by the queue, so a caller's request context ending does not abort them.
func NewWriteQueue(store Setter, opts WriteQueueOpts) *WriteQueue {
	ctx, cancel := context.WithCancel(context.Background())

	q := &WriteQueue{
		store:    store,
		logger:   opts.Logger,
		progress: opts.Progress,
		ctx:      ctx,
		cancel:   cancel,
		inflight: make(map[string]bool),
		pending:  make(map[string]models.UserRecord),
		idle:     make(chan struct{}),
	}
	close(q.idle)

	if q.logger == nil {
		q.logger = log.Default()
	}
	if opts.RateLimit > 0 {
		q.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}
	return q
}

// Enqueue hands off a snapshot for path and returns without waiting for the write.
func (q *WriteQueue) Enqueue(path string, record models.UserRecord) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		q.stats.Dropped++
		q.logger.Warn("dropping document write", "path", path, "err", shared.ErrQueueClosed)
		return
	}
	q.stats.Enqueued++

	if q.inflight[path] {
		if _, ok := q.pending[path]; ok {
			q.stats.Coalesced++
			q.sendProgress(WriteUpdate{Phase: WriteCoalesced, Path: path})
		}
		q.pending[path] = record
		return
	}

	if len(q.inflight) == 0 {
		q.idle = make(chan struct{})
	}
	q.inflight[path] = true
	go q.drain(path, record)
}

// drain writes record, then keeps writing whatever newer snapshot was queued for path meanwhile.
func (q *WriteQueue) drain(path string, record models.UserRecord) {
	for {
		q.write(path, record)

		q.mu.Lock()
		next, ok := q.pending[path]
		if ok {
			delete(q.pending, path)
			q.mu.Unlock()
			record = next
			continue
		}

		delete(q.inflight, path)
		if len(q.inflight) == 0 {
			close(q.idle)
		}
		q.mu.Unlock()
		return
	}
}

func (q *WriteQueue) write(path string, record models.UserRecord) {
	q.sendProgress(WriteUpdate{Phase: WriteStarted, Path: path})

	err := q.wait()
	if err == nil {
		err = q.store.Set(q.ctx, path, record)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if err != nil {
		if !errors.Is(err, shared.ErrStore) {
			err = fmt.Errorf("%w: %v", shared.ErrStore, err)
		}
		q.stats.Failed++
		q.logger.Error("document write failed", "path", path, "err", err)
		q.sendProgress(WriteUpdate{Phase: WriteFailed, Path: path, Err: err})
		return
	}

	q.stats.Written++
	q.logger.Debug("document written", "path", path, "liked", len(record.Liked), "schedules", len(record.Schedules))
	q.sendProgress(WriteUpdate{Phase: WriteDone, Path: path})
}

func (q *WriteQueue) wait() error {
	if q.limiter == nil {
		return nil
	}
	return q.limiter.Wait(q.ctx)
}

// Flush blocks until no writes are in flight or queued, or ctx ends.
func (q *WriteQueue) Flush(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: pending document writes: %v", shared.ErrTimeout, ctx.Err())
	}
}

// Close stops accepting snapshots, flushes, and cancels any write still running when ctx ends.
func (q *WriteQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	defer q.cancel()
	return q.Flush(ctx)
}

// Stats returns a copy of the queue counters.
func (q *WriteQueue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.stats
}

// sendProgress sends an update without blocking.
func (q *WriteQueue) sendProgress(update WriteUpdate) {
	if q.progress == nil {
		return
	}
	select {
	case q.progress <- update:
	default:
	}
}

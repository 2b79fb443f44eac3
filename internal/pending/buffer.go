// Package pending bridges probe results to the store across store outages.
package pending

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/hamed0406/statuspage/internal/domain"
	"github.com/hamed0406/statuspage/internal/metrics"
)

// Writer is the store write the buffer protects.
type Writer interface {
	InsertResult(ctx context.Context, r domain.NewProbeResult) error
}

// Buffer holds probe results that could not be written, oldest first. It lives
// in memory only: entries still queued when the process exits are lost.
//
// The mutex is held across store writes on both paths, so Submit and Drain
// never interleave.
type Buffer struct {
	mu      sync.Mutex
	queue   []domain.NewProbeResult
	store   Writer
	log     *zap.Logger
	metrics *metrics.Collectors
}

func New(store Writer, log *zap.Logger, m *metrics.Collectors) *Buffer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Buffer{store: store, log: log, metrics: m}
}

// Submit writes r to the store and queues it when the write fails. It never
// returns an error.
func (b *Buffer) Submit(ctx context.Context, r domain.NewProbeResult) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err := b.store.InsertResult(ctx, r); err != nil {
		b.queue = append(b.queue, r)
		b.metrics.PendingWrite("buffered")
		b.metrics.SetPending(len(b.queue))
		b.log.Warn("pending_enqueued",
			zap.String("project_id", string(r.ProjectID)),
			zap.Int("status_code", r.StatusCode),
			zap.Int("depth", len(b.queue)),
			zap.Error(err),
		)
		return
	}
	b.metrics.PendingWrite("direct")
}

// Drain writes up to limit queued entries, oldest first, and stops at the first
// failure. An entry leaves the queue only once the store accepted it. It
// returns the number of entries written.
func (b *Buffer) Drain(ctx context.Context, limit int) int {
	if limit < 1 {
		limit = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	written := 0
	for written < limit && len(b.queue) > 0 {
		head := b.queue[0]
		if err := b.store.InsertResult(ctx, head); err != nil {
			b.metrics.PendingWrite("drain_failed")
			b.log.Warn("pending_drain_error",
				zap.String("project_id", string(head.ProjectID)),
				zap.Int("depth", len(b.queue)),
				zap.Error(err),
			)
			break
		}
		b.queue[0] = domain.NewProbeResult{}
		b.queue = b.queue[1:]
		written++
		b.metrics.PendingWrite("drained")
	}
	if written > 0 {
		b.metrics.SetPending(len(b.queue))
		b.log.Info("pending_drained", zap.Int("written", written), zap.Int("depth", len(b.queue)))
	}
	return written
}

func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.queue)
}

// Snapshot returns a copy of the queued entries, oldest first.
func (b *Buffer) Snapshot() []domain.NewProbeResult {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]domain.NewProbeResult, len(b.queue))
	copy(out, b.queue)
	return out
}

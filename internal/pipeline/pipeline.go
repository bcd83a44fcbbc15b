// Package pipeline streams dashboard activity to an external sink. History
// items are queued as they are recorded and loaded in batches, flushed when a
// batch fills or the flush interval passes.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/resqwatch-dashboard-service/internal/domain"
	"github.com/couchcryptid/resqwatch-dashboard-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

const (
	initialBackoff = 200 * time.Millisecond
	maxBackoff     = 5 * time.Second

	// finalFlushTimeout bounds the flush of queued events on shutdown.
	finalFlushTimeout = 5 * time.Second
)

// BatchLoader writes multiple activity events to the destination.
type BatchLoader interface {
	LoadBatch(ctx context.Context, events []domain.ActivityEvent) error
}

// Options tune batching.
type Options struct {
	BatchSize     int
	FlushInterval time.Duration
	// Buffer is the number of queued events held while a load is in flight.
	// Defaults to ten batches.
	Buffer int
}

// Publisher batches activity events into a BatchLoader.
type Publisher struct {
	loader  BatchLoader
	events  chan domain.ActivityEvent
	opts    Options
	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *observability.Metrics

	running atomic.Bool
	healthy atomic.Bool
}

// New creates a Publisher. Call Run to start loading.
func New(loader BatchLoader, opts Options, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Publisher {
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	if opts.Buffer < 1 {
		opts.Buffer = opts.BatchSize * 10
	}
	p := &Publisher{
		loader:  loader,
		events:  make(chan domain.ActivityEvent, opts.Buffer),
		opts:    opts,
		clock:   clock,
		logger:  logger,
		metrics: metrics,
	}
	p.healthy.Store(true)
	return p
}

// Enqueue queues a history item without blocking. It is dropped when the
// queue is full. Enqueue has the signature of a history.Listener.
func (p *Publisher) Enqueue(item domain.HistoryItem) {
	select {
	case p.events <- domain.NewActivityEvent(item):
	default:
		p.metrics.ActivityDropped.Inc()
		p.logger.Warn("activity queue full, dropping event", "id", item.ID, "type", item.Type)
	}
}

// CheckReadiness returns nil while Run is active and the last load succeeded.
func (p *Publisher) CheckReadiness(_ context.Context) error {
	if !p.running.Load() {
		return errors.New("activity publisher is not running")
	}
	if !p.healthy.Load() {
		return errors.New("activity publisher cannot reach its sink")
	}
	return nil
}

// Run loads queued events until ctx is cancelled, then flushes what is left.
func (p *Publisher) Run(ctx context.Context) error {
	p.logger.Info("activity publisher started", "batch_size", p.opts.BatchSize, "flush_interval", p.opts.FlushInterval)
	p.running.Store(true)
	p.metrics.PublisherRunning.Set(1)
	defer func() {
		p.running.Store(false)
		p.metrics.PublisherRunning.Set(0)
	}()

	ticker := p.clock.NewTicker(p.opts.FlushInterval)
	defer ticker.Stop()

	backoff := initialBackoff
	batch := make([]domain.ActivityEvent, 0, p.opts.BatchSize)

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("activity publisher stopping", "reason", ctx.Err())
			p.drain(batch)
			return nil
		case ev := <-p.events:
			batch = append(batch, ev)
			if len(batch) < p.opts.BatchSize {
				continue
			}
		case <-ticker.Chan():
			if len(batch) == 0 {
				continue
			}
		}

		var ok bool
		batch, ok = p.flush(ctx, batch)
		for !ok {
			if !p.sleep(ctx, backoff) {
				p.drain(batch)
				return nil
			}
			backoff = nextBackoff(backoff, maxBackoff)
			batch, ok = p.flush(ctx, batch)
		}
		backoff = initialBackoff
	}
}

// flush loads batch. On success it returns an empty slice reusing the
// backing array; on failure the batch is kept for the next attempt.
func (p *Publisher) flush(ctx context.Context, batch []domain.ActivityEvent) ([]domain.ActivityEvent, bool) {
	start := p.clock.Now()
	if err := p.loader.LoadBatch(ctx, batch); err != nil {
		if ctx.Err() != nil {
			return batch, false
		}
		p.healthy.Store(false)
		p.metrics.ActivityPublishErrors.Inc()
		p.logger.Error("load activity batch failed", "error", err, "batch_size", len(batch))
		return p.trim(batch), false
	}

	p.healthy.Store(true)
	p.metrics.ActivityPublished.Add(float64(len(batch)))
	p.metrics.ActivityBatchSize.Observe(float64(len(batch)))
	p.metrics.ActivityPublishDuration.Observe(p.clock.Since(start).Seconds())
	return batch[:0], true
}

// trim drops the oldest events once a failing batch has grown past the
// queue capacity, so a long sink outage cannot grow memory without bound.
func (p *Publisher) trim(batch []domain.ActivityEvent) []domain.ActivityEvent {
	over := len(batch) - p.opts.Buffer
	if over <= 0 {
		return batch
	}
	p.metrics.ActivityDropped.Add(float64(over))
	p.logger.Warn("activity backlog full, dropping oldest events", "dropped", over)
	return append(batch[:0], batch[over:]...)
}

// drain loads the pending batch plus anything still queued.
func (p *Publisher) drain(batch []domain.ActivityEvent) {
	for drained := false; !drained; {
		select {
		case ev := <-p.events:
			batch = append(batch, ev)
		default:
			drained = true
		}
	}
	if len(batch) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), finalFlushTimeout)
	defer cancel()
	if err := p.loader.LoadBatch(ctx, batch); err != nil {
		p.metrics.ActivityPublishErrors.Inc()
		p.metrics.ActivityDropped.Add(float64(len(batch)))
		p.logger.Error("final activity flush failed", "error", err, "batch_size", len(batch))
		return
	}
	p.metrics.ActivityPublished.Add(float64(len(batch)))
	p.metrics.ActivityBatchSize.Observe(float64(len(batch)))
}

// sleep waits for d on the publisher clock. Returns false if ctx ends first.
func (p *Publisher) sleep(ctx context.Context, d time.Duration) bool {
	timer := p.clock.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.Chan():
		return true
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// ErrNotRunning is returned when a job is offered to a stopped queue.
var ErrNotRunning = errors.New("queue not running")

// Job is a unit of background work. Payload is optional; export jobs carry
// only the persisted record id.
type Job struct {
	ID       string
	Type     string
	Payload  interface{}
	Attempt  int
	Enqueued time.Time
}

// Handler processes a job. A returned error schedules a retry.
type Handler func(context.Context, Job) error

// QueueConfig configures the worker pool.
type QueueConfig struct {
	Workers    int
	BufferSize int
	MaxRetries int
	RetryDelay time.Duration
	Logger     *zap.Logger
	// OnExhausted runs once a job has failed MaxRetries+1 times.
	OnExhausted func(Job, error)
}

// Stats counts job outcomes since the queue was built.
type Stats struct {
	Processed uint64
	Failed    uint64
	Retried   uint64
	Exhausted uint64
	Pending   int
}

// Queue dispatches jobs to a fixed set of goroutines with linear retry backoff.
type Queue struct {
	name    string
	handler Handler
	cfg     QueueConfig
	logger  *zap.Logger
	jobs    chan Job

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool

	processed atomic.Uint64
	failed    atomic.Uint64
	retried   atomic.Uint64
	exhausted atomic.Uint64
}

// NewQueue builds a stopped queue. Call Start before Enqueue.
func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{
		name:    name,
		handler: handler,
		cfg:     cfg,
		logger:  logger.With(zap.String("queue", name)),
		jobs:    make(chan Job, cfg.BufferSize),
	}
}

// Start launches the workers. Later calls are no-ops.
func (q *Queue) Start(ctx context.Context) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.started {
		return
	}
	q.ctx, q.cancel = context.WithCancel(ctx)
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go q.work()
	}
	q.started = true
	q.logger.Info("queue started", zap.Int("workers", q.cfg.Workers))
}

// Stop cancels the workers and waits for in-flight handlers to return.
// Buffered jobs are abandoned; their persisted records stay queued.
func (q *Queue) Stop() {
	q.mu.Lock()
	if !q.started {
		q.mu.Unlock()
		return
	}
	q.started = false
	q.cancel()
	q.mu.Unlock()

	q.wg.Wait()
	q.logger.Info("queue stopped", zap.Int("abandoned", len(q.jobs)))
}

// Started reports whether workers are running.
func (q *Queue) Started() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.started
}

// Stats returns outcome counters and the current buffer depth.
func (q *Queue) Stats() Stats {
	return Stats{
		Processed: q.processed.Load(),
		Failed:    q.failed.Load(),
		Retried:   q.retried.Load(),
		Exhausted: q.exhausted.Load(),
		Pending:   len(q.jobs),
	}
}

// Enqueue offers a job, blocking while the buffer is full.
func (q *Queue) Enqueue(job Job) error {
	q.mu.Lock()
	ctx, started := q.ctx, q.started
	q.mu.Unlock()
	if !started {
		return fmt.Errorf("%s: %w", q.name, ErrNotRunning)
	}
	if job.Enqueued.IsZero() {
		job.Enqueued = time.Now().UTC()
	}
	select {
	case q.jobs <- job:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", q.name, ErrNotRunning)
	}
}

func (q *Queue) work() {
	defer q.wg.Done()
	for {
		select {
		case <-q.ctx.Done():
			return
		case job := <-q.jobs:
			err := q.invoke(job)
			if err == nil {
				q.processed.Add(1)
				continue
			}
			q.failed.Add(1)
			q.retry(job, err)
		}
	}
}

func (q *Queue) invoke(job Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job %s panicked: %v", job.ID, r)
		}
	}()
	return q.handler(q.ctx, job)
}

func (q *Queue) retry(job Job, cause error) {
	job.Attempt++
	fields := []zap.Field{zap.String("job_id", job.ID), zap.String("type", job.Type), zap.Int("attempt", job.Attempt), zap.Error(cause)}
	if job.Attempt > q.cfg.MaxRetries {
		q.exhausted.Add(1)
		q.logger.Error("job exhausted retries", fields...)
		if q.cfg.OnExhausted != nil {
			q.cfg.OnExhausted(job, cause)
		}
		return
	}
	q.retried.Add(1)
	q.logger.Warn("job failed, retrying", fields...)

	delay := q.cfg.RetryDelay * time.Duration(job.Attempt)
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-q.ctx.Done():
		case <-timer.C:
			if err := q.Enqueue(job); err != nil {
				q.logger.Error("failed to requeue job", zap.String("job_id", job.ID), zap.Error(err))
			}
		}
	}()
}

package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Job is one queued solve request.
type Job struct {
	ID       string
	Payload  any
	Enqueued time.Time
}

// Handler processes a job. Solve jobs are never retried: a failing model is a
// defect of its inputs, not a transient condition.
type Handler func(context.Context, Job) error

type QueueConfig struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
}

// Queue is an in-memory dispatcher backed by a goroutine worker pool.
type Queue struct {
	name    string
	handler Handler
	logger  *zap.Logger

	jobs   chan Job
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.Mutex
	started bool
}

func NewQueue(name string, handler Handler, cfg QueueConfig) *Queue {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 4
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	queue := &Queue{
		name:    name,
		handler: handler,
		logger:  cfg.Logger,
		jobs:    make(chan Job, cfg.BufferSize),
		ctx:     ctx,
		cancel:  cancel,
	}

	queue.mu.Lock()
	defer queue.mu.Unlock()
	for i := 0; i < cfg.Workers; i++ {
		queue.wg.Add(1)
		go queue.work()
	}
	queue.started = true

	return queue
}

// Enqueue hands a job to the pool without blocking; a full buffer is an error
// the caller reports back instead of queueing unboundedly.
func (queue *Queue) Enqueue(job Job) error {
	job.Enqueued = time.Now()

	queue.mu.Lock()
	defer queue.mu.Unlock()
	if !queue.started {
		return fmt.Errorf("queue %q is stopped", queue.name)
	}

	select {
	case queue.jobs <- job:
		return nil
	default:
		return fmt.Errorf("queue %q is full", queue.name)
	}
}

// Stop cancels the workers and waits for in-flight jobs to finish.
func (queue *Queue) Stop() {
	queue.mu.Lock()
	if !queue.started {
		queue.mu.Unlock()
		return
	}
	queue.started = false
	queue.mu.Unlock()

	queue.cancel()
	close(queue.jobs)
	queue.wg.Wait()
}

func (queue *Queue) work() {
	defer queue.wg.Done()
	for job := range queue.jobs {
		started := time.Now()
		if err := queue.handler(queue.ctx, job); err != nil {
			queue.logger.Warn("job failed",
				zap.String("queue", queue.name),
				zap.String("job_id", job.ID),
				zap.Error(err),
			)
			continue
		}
		queue.logger.Info("job finished",
			zap.String("queue", queue.name),
			zap.String("job_id", job.ID),
			zap.Duration("took", time.Since(started)),
		)
	}
}

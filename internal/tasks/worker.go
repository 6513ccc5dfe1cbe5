package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Outcomes reported to an Observer.
const (
	OutcomeDone  = "done"
	OutcomeRetry = "retry"
	OutcomeDead  = "dead"
)

// DefaultLease bounds how long a claimed task may stay running.
const DefaultLease = 5 * time.Minute

// Observer is told the outcome of every processed task.
type Observer func(taskType, outcome string)

// PoolOptions tunes a WorkerPool. Zero values fall back to defaults.
type PoolOptions struct {
	Workers      int
	PollInterval time.Duration
	Backoff      func(attempt int) time.Duration
	Observer     Observer
	// Lease is how long a task may stay running before another worker
	// claims it again.
	Lease time.Duration
}

type WorkerPool struct {
	repo     *Repository
	handlers map[string]Handler
	logger   *slog.Logger
	opts     PoolOptions
	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

func NewWorkerPool(repo *Repository, handlers map[string]Handler, logger *slog.Logger, opts PoolOptions) *WorkerPool {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 500 * time.Millisecond
	}
	if opts.Lease <= 0 {
		opts.Lease = DefaultLease
	}
	if opts.Backoff == nil {
		opts.Backoff = BackoffDuration
	}
	if opts.Observer == nil {
		opts.Observer = func(string, string) {}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{repo: repo, handlers: handlers, logger: logger, opts: opts, stop: make(chan struct{})}
}

// Start launches the worker goroutines
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Stop signals workers to stop and waits for them. It is safe to call twice.
func (p *WorkerPool) Stop() {
	p.stopOnce.Do(func() { close(p.stop) })
	p.wg.Wait()
}

// wait pauses for d and reports false when the pool is shutting down.
func (p *WorkerPool) wait(ctx context.Context, d time.Duration) bool {
	select {
	case <-p.stop:
		return false
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

func (p *WorkerPool) worker(ctx context.Context, id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.stop:
			p.logger.Info("worker stopping", "id", id)
			return
		case <-ctx.Done():
			p.logger.Info("context canceled, worker exiting", "id", id)
			return
		default:
		}

		task, err := p.repo.Claim(ctx, p.opts.Lease)
		if err != nil {
			p.logger.Error("claim task", "err", err)
			if !p.wait(ctx, time.Second) {
				return
			}
			continue
		}
		if task == nil {
			if !p.wait(ctx, p.opts.PollInterval) {
				return
			}
			continue
		}
		p.process(ctx, task)
	}
}

func (p *WorkerPool) process(ctx context.Context, task *Task) {
	// bookkeeping must land even when the pool context is cancelled mid-task
	store := context.WithoutCancel(ctx)

	h, ok := p.handlers[task.Type]
	if !ok {
		task.LastError = "no handler"
		p.deadLetter(store, task)
		return
	}

	err := p.run(ctx, h, task)
	if err == nil {
		task.Status = StatusDone
		if upErr := p.repo.UpdateTask(store, task); upErr != nil {
			p.logger.Error("mark task done", "task_id", task.ID, "err", upErr)
		}
		p.opts.Observer(task.Type, OutcomeDone)
		return
	}

	if ctx.Err() != nil {
		// shutdown interrupted the handler; the task is not at fault
		if relErr := p.repo.Release(store, task); relErr != nil {
			p.logger.Error("release task", "task_id", task.ID, "err", relErr)
			return
		}
		p.logger.Info("task released on shutdown", "task_id", task.ID, "type", task.Type)
		return
	}

	task.Attempts++
	task.LastError = err.Error()
	if task.Attempts >= task.MaxAttempts {
		p.deadLetter(store, task)
		return
	}

	next := time.Now().Add(p.opts.Backoff(task.Attempts))
	task.Status = StatusRetry
	task.NextTryAt = &next
	if upErr := p.repo.UpdateTask(store, task); upErr != nil {
		p.logger.Error("schedule retry", "task_id", task.ID, "err", upErr)
	}
	p.logger.Warn("task failed, retry scheduled",
		"task_id", task.ID,
		"type", task.Type,
		"attempts", task.Attempts,
		"err", err,
	)
	p.opts.Observer(task.Type, OutcomeRetry)
}

// run invokes h and converts a panic into an error.
func (p *WorkerPool) run(ctx context.Context, h Handler, task *Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return h(ctx, task)
}

func (p *WorkerPool) deadLetter(ctx context.Context, task *Task) {
	if err := p.repo.MoveToDeadLetter(ctx, task); err != nil {
		p.logger.Error("move to dead letter", "task_id", task.ID, "err", err)
		return
	}
	p.logger.Error("task moved to dead letter",
		"task_id", task.ID,
		"type", task.Type,
		"attempts", task.Attempts,
		"last_error", task.LastError,
	)
	p.opts.Observer(task.Type, OutcomeDead)
}

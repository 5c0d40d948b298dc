// Package ioworker runs file and decode work on a single background
// goroutine so the UI loop never blocks on disk. Jobs are keyed;
// submitting a new job under a key cancels the one already queued or
// running for it, so only the latest request per key produces a result.
package ioworker

import (
	"context"
	"log/slog"
	"sync"
)

// Job is the unit of background work. Run should honor ctx so a
// superseded job stops promptly.
type Job func(ctx context.Context) (any, error)

// Result is delivered on the worker's result channel for every job that
// was not cancelled before or during its run.
type Result struct {
	Key   string
	Value any
	Err   error
}

type queued struct {
	key string
	ctx context.Context
	run Job
}

// Worker owns one background goroutine and a results channel the UI
// drains. Close it when done; Submit after Close panics.
type Worker struct {
	logger  *slog.Logger
	jobs    chan queued
	results chan Result
	done    chan struct{}

	root context.Context
	stop context.CancelFunc

	mu       sync.Mutex
	inflight map[string]context.CancelFunc
}

// New starts the worker goroutine. queueSize bounds how many jobs may
// wait; Submit blocks once it is full.
func New(queueSize int, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	if queueSize < 1 {
		queueSize = 64
	}
	root, stop := context.WithCancel(context.Background())
	w := &Worker{
		logger:   logger,
		jobs:     make(chan queued, queueSize),
		results:  make(chan Result, queueSize),
		done:     make(chan struct{}),
		root:     root,
		stop:     stop,
		inflight: make(map[string]context.CancelFunc),
	}
	go w.run()
	return w
}

// Results returns the channel job outcomes arrive on. It is closed when
// the worker shuts down.
func (w *Worker) Results() <-chan Result { return w.results }

// Submit queues fn under key, cancelling any earlier job with the same
// key that has not finished.
func (w *Worker) Submit(key string, fn Job) {
	ctx, cancel := context.WithCancel(w.root)

	w.mu.Lock()
	if prev, ok := w.inflight[key]; ok {
		prev()
	}
	w.inflight[key] = cancel
	w.mu.Unlock()

	w.jobs <- queued{key: key, ctx: ctx, run: fn}
}

// Cancel drops the queued or running job for key, if any.
func (w *Worker) Cancel(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if cancel, ok := w.inflight[key]; ok {
		cancel()
		delete(w.inflight, key)
	}
}

// Close cancels everything, waits for the goroutine to drain, and
// closes the results channel.
func (w *Worker) Close() {
	w.stop()
	close(w.jobs)
	<-w.done
}

func (w *Worker) run() {
	defer close(w.done)
	defer close(w.results)
	for q := range w.jobs {
		if q.ctx.Err() != nil {
			continue
		}
		value, err := q.run(q.ctx)

		// A job superseded mid-run reports a cancelled context; its
		// result is stale and is dropped rather than delivered.
		if q.ctx.Err() != nil {
			continue
		}
		w.finish(q.key, q.ctx)
		if err != nil {
			w.logger.Warn("background job failed", "key", q.key, "error", err)
		}
		w.results <- Result{Key: q.key, Value: value, Err: err}
	}
}

// finish clears the inflight entry for key unless a newer submission
// already replaced it.
func (w *Worker) finish(key string, ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.inflight[key]; ok && ctx.Err() == nil {
		delete(w.inflight, key)
	}
}

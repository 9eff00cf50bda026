// Package loop runs tasks one at a time on a single goroutine.
//
// The storefront state is shared by HTTP handlers, timers and the
// connectivity prober. Every mutation of that state is submitted to one
// [Loop], so a store change and all of its listeners finish before the next
// task starts. Listeners that write to the store do so directly on the loop
// goroutine; they must not call [Loop.Do], which would wait on itself.
package loop

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"github.com/google/uuid"
)

// DefaultQueueSize is the number of tasks that can wait before [Loop.Post]
// starts rejecting work.
const DefaultQueueSize = 256

// ErrStopped is returned by [Loop.Do] once the loop has stopped.
var ErrStopped = errors.New("loop: stopped")

// PanicError is returned by [Loop.Do] when the task panicked.
type PanicError struct {
	CorrelationID string
	Value         any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panic (correlation_id: %s)", e.CorrelationID)
}

type task struct {
	fn   func()
	done chan error
}

// Loop is a single-goroutine task runner. All methods are safe for
// concurrent use.
type Loop struct {
	tasks  chan task
	logger *slog.Logger
	quit   chan struct{}
	wg     sync.WaitGroup

	mu       sync.Mutex
	started  bool
	stopped  bool
	quitOnce sync.Once
}

// Option configures a [Loop].
type Option func(*Loop)

// WithQueueSize sets the task buffer. Values below 1 are ignored.
func WithQueueSize(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.tasks = make(chan task, n)
		}
	}
}

// New creates a stopped loop. Call [Loop.Start] before submitting work.
func New(logger *slog.Logger, opts ...Option) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	l := &Loop{
		tasks:  make(chan task, DefaultQueueSize),
		logger: logger,
		quit:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Start launches the loop goroutine. It runs until [Loop.Stop] is called or
// ctx is cancelled. Start is idempotent, and a no-op after Stop.
func (l *Loop) Start(ctx context.Context) {
	l.mu.Lock()
	if l.started || l.stopped {
		l.mu.Unlock()
		return
	}
	l.started = true
	if ctx == nil {
		ctx = context.Background()
	}
	l.wg.Add(1)
	l.mu.Unlock()

	go func() {
		defer l.wg.Done()
		for {
			// stop wins over queued work
			select {
			case <-l.quit:
				l.drain()
				return
			default:
			}

			select {
			case <-ctx.Done():
				l.markStopped()
				l.drain()
				return
			case <-l.quit:
				l.drain()
				return
			case t := <-l.tasks:
				l.run(t)
			}
		}
	}()
}

// Stop ends the loop and waits for the running task to finish. Tasks still
// queued are rejected with [ErrStopped]. Stop is idempotent.
func (l *Loop) Stop() {
	l.markStopped()
	l.wg.Wait()
	l.drain()
}

func (l *Loop) markStopped() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()
	l.quitOnce.Do(func() { close(l.quit) })
}

// drain rejects whatever is left in the queue.
func (l *Loop) drain() {
	for {
		select {
		case t := <-l.tasks:
			if t.done != nil {
				t.done <- ErrStopped
			}
		default:
			return
		}
	}
}

// Do runs fn on the loop and waits for it. It returns ctx.Err() if ctx ends
// first (fn may still run later), [ErrStopped] if the loop is not running,
// and a [*PanicError] if fn panicked.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	if !l.running() {
		return ErrStopped
	}
	t := task{fn: fn, done: make(chan error, 1)}

	select {
	case l.tasks <- t:
	case <-l.quit:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-t.done:
		return err
	case <-l.quit:
		select {
		case err := <-t.done:
			return err
		default:
			return ErrStopped
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Post queues fn without waiting. It reports false when the loop is not
// running or the queue is full.
func (l *Loop) Post(fn func()) bool {
	if !l.running() {
		return false
	}
	select {
	case l.tasks <- task{fn: fn}:
		return true
	default:
		l.logger.Warn("loop queue full, task dropped")
		return false
	}
}

func (l *Loop) running() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.started && !l.stopped
}

func (l *Loop) run(t task) {
	err := l.invokeSafe(t.fn)
	if t.done != nil {
		t.done <- err
	}
}

func (l *Loop) invokeSafe(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			correlationID := uuid.NewString()
			l.logger.Error("loop task panicked",
				"correlation_id", correlationID,
				"panic", fmt.Sprintf("%v", r),
				"stack", string(debug.Stack()),
			)
			err = &PanicError{CorrelationID: correlationID, Value: r}
		}
	}()
	fn()
	return nil
}

package domain

import (
	"context"
	"sync"
)

// TaskQueue serializes the asynchronous operations of one queue. Callers
// block in Queuing until every earlier task has resolved, run their task,
// and must call Resolve on every exit path (normally via defer).
//
// Resolve-class tasks are operations spawned by a new play request. They
// are flagged so that a concurrent play request can detect an in-flight
// resolution and wait behind it instead of creating a duplicate queue.
type TaskQueue struct {
	mu      sync.Mutex
	waiters []*taskWaiter
	running bool
	resolve bool // the running task is resolve-class
}

type taskWaiter struct {
	ready   chan struct{}
	resolve bool
}

// NewTaskQueue creates an empty task queue.
func NewTaskQueue() *TaskQueue {
	return &TaskQueue{}
}

// Queuing enqueues the caller and blocks until it is at the head of the
// queue. It returns ctx.Err() if the context is cancelled while waiting;
// in that case the caller must not run its task and must not Resolve.
func (q *TaskQueue) Queuing(ctx context.Context, isResolve bool) error {
	q.mu.Lock()
	if !q.running {
		q.running = true
		q.resolve = isResolve
		q.mu.Unlock()
		return nil
	}

	w := &taskWaiter{ready: make(chan struct{}), resolve: isResolve}
	q.waiters = append(q.waiters, w)
	q.mu.Unlock()

	select {
	case <-w.ready:
		return nil
	case <-ctx.Done():
		q.mu.Lock()
		defer q.mu.Unlock()
		select {
		case <-w.ready:
			// Promoted to head while cancelling: pass the slot on so
			// later waiters are not deadlocked.
			q.resolveLocked()
		default:
			q.removeLocked(w)
		}
		return ctx.Err()
	}
}

// Resolve completes the running task and wakes the next waiter, if any.
// Calling Resolve with no running task is a no-op.
func (q *TaskQueue) Resolve() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.resolveLocked()
}

func (q *TaskQueue) resolveLocked() {
	if !q.running {
		return
	}
	if len(q.waiters) == 0 {
		q.running = false
		q.resolve = false
		return
	}
	next := q.waiters[0]
	q.waiters = q.waiters[1:]
	q.resolve = next.resolve
	close(next.ready)
}

func (q *TaskQueue) removeLocked(w *taskWaiter) {
	for i, other := range q.waiters {
		if other == w {
			q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
			return
		}
	}
}

// HasResolveTask reports whether a resolve-class task is queued or running.
func (q *TaskQueue) HasResolveTask() bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.running && q.resolve {
		return true
	}
	for _, w := range q.waiters {
		if w.resolve {
			return true
		}
	}
	return false
}

// Pending returns the number of tasks waiting behind the running one.
func (q *TaskQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}

package services

import (
	"context"
	"errors"
	"sync"
)

var errQueueClosed = errors.New("cart session closed")

type job struct {
	ctx  context.Context
	run  func(ctx context.Context) error
	done chan error
}

// serialQueue runs submitted jobs one at a time, in submission order, on a
// single worker goroutine.
type serialQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []job
	closed  bool
}

func newSerialQueue() *serialQueue {
	q := &serialQueue{}
	q.cond = sync.NewCond(&q.mu)
	go q.loop()
	return q
}

// Submit enqueues fn and waits for its result. If ctx ends first the caller
// gets ctx.Err(); fn still runs in its turn, with a context that carries the
// caller's values but is never cancelled, and its result is discarded.
func (q *serialQueue) Submit(ctx context.Context, fn func(ctx context.Context) error) error {
	j := job{ctx: context.WithoutCancel(ctx), run: fn, done: make(chan error, 1)}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errQueueClosed
	}
	q.pending = append(q.pending, j)
	q.cond.Signal()
	q.mu.Unlock()

	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs; jobs already queued still run.
func (q *serialQueue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
}

func (q *serialQueue) loop() {
	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}
		next := q.pending[0]
		q.pending[0] = job{}
		q.pending = q.pending[1:]
		q.mu.Unlock()

		next.done <- next.run(next.ctx)
	}
}

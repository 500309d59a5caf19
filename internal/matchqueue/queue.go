// Package matchqueue re-implements original_source/src/matcher.hpp:
// a tiered FIFO waiting queue with one worker per tier, using a
// condition-variable-style wait/signal rather than a boolean flag so
// cancellations between signal and wake are handled by re-checking the
// predicate in a loop.
package matchqueue

import (
	"container/list"
	"sync"
)

// Queue is the Go analogue of match_queue<T> in the original: a
// mutex-protected FIFO of uint64 uids with a sync.Cond standing in for
// std::condition_variable.
type Queue struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items *list.List
}

// NewQueue returns an empty queue.
func NewQueue() *Queue {
	q := &Queue{items: list.New()}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Size returns the number of waiters currently queued.
func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.Len()
}

// Push enqueues uid and wakes any worker blocked in WaitUntilAtLeast.
func (q *Queue) Push(uid uint64) {
	q.mu.Lock()
	q.items.PushBack(uid)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// Pop removes and returns the front uid. ok is false if the queue was
// empty — callers must treat this as a racy-cancel signal, not an
// error, per spec.md §4.4 step 2/3.
func (q *Queue) Pop() (uid uint64, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	front := q.items.Front()
	if front == nil {
		return 0, false
	}
	q.items.Remove(front)
	return front.Value.(uint64), true
}

// Remove erases the first occurrence of uid, if present. A miss is
// not an error: it means the worker already popped uid, and del is
// treated as an idempotent best-effort cancel (spec.md §4.4).
func (q *Queue) Remove(uid uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for e := q.items.Front(); e != nil; e = e.Next() {
		if e.Value.(uint64) == uid {
			q.items.Remove(e)
			return
		}
	}
}

// WaitUntilAtLeast blocks until the queue holds at least n items.
// Spurious wakeups are benign: the loop re-checks the predicate,
// mirroring original_source/src/matcher.hpp's
// `while (queue.size() < 2) { queue.wait(); }`.
func (q *Queue) WaitUntilAtLeast(n int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.items.Len() < n {
		q.cond.Wait()
	}
}

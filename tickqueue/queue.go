// Package tickqueue provides a sorted queue of pending wakes keyed by
// absolute tick, a reference implementation of the delay adapter's
// WakeScheduler contract for hosts, simulations and tests.
//
// The queue runs in task context and is mutex-guarded; it is not meant to be
// driven from an interrupt handler.
package tickqueue

import "sync"

// waiter is one registered wake, kept in a list sorted by tick. Waiters with
// equal ticks fire in registration order.
type waiter struct {
	tick uint64
	wake func()
	next *waiter
}

// Queue is a sorted singly linked list of pending wakes.
type Queue struct {
	mu   sync.Mutex
	head *waiter
}

// New returns an empty queue.
func New() *Queue {
	return &Queue{}
}

// NotifyAt registers wake to fire on the first Dispatch whose now is at
// least tick. The returned cancel unlinks the registration; calling it
// after the wake fired, or more than once, is a no-op.
func (q *Queue) NotifyAt(tick uint64, wake func()) (cancel func()) {
	w := &waiter{tick: tick, wake: wake}

	q.mu.Lock()
	q.insert(w)
	q.mu.Unlock()

	return func() { q.remove(w) }
}

func (q *Queue) insert(w *waiter) {
	if q.head == nil || w.tick < q.head.tick {
		w.next = q.head
		q.head = w
		return
	}
	cur := q.head
	for cur.next != nil && cur.next.tick <= w.tick {
		cur = cur.next
	}
	w.next = cur.next
	cur.next = w
}

func (q *Queue) remove(w *waiter) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == w {
		q.head = w.next
		w.next = nil
		return
	}
	for cur := q.head; cur != nil; cur = cur.next {
		if cur.next == w {
			cur.next = w.next
			w.next = nil
			return
		}
	}
}

// Next reports the earliest pending tick. ok is false when the queue is
// empty.
func (q *Queue) Next() (tick uint64, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head == nil {
		return 0, false
	}
	return q.head.tick, true
}

// Dispatch fires every wake whose tick is at or before now and returns how
// many fired. Wakes run outside the lock so they may re-register.
func (q *Queue) Dispatch(now uint64) int {
	q.mu.Lock()
	var due []func()
	for q.head != nil && q.head.tick <= now {
		w := q.head
		q.head = w.next
		w.next = nil
		due = append(due, w.wake)
	}
	q.mu.Unlock()

	for _, wake := range due {
		wake()
	}
	return len(due)
}

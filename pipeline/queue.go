// Package pipeline implements the bounded-buffer producer/consumer layer
// (C6): one packet reader feeding N per-worker FIFO queues that the
// scanners in package scanner drain concurrently.
package pipeline

import (
	"context"
	"sync"

	"github.com/coregx/acscan/acerr"
)

// Packet is a payload handed from the reader to exactly one scanner (spec
// §3 "Packet"): the bytes to scan plus the original on-wire size, which is
// tracked only for throughput reporting.
type Packet struct {
	Payload []byte
	OrigLen int
}

// Queue is a bounded single-producer-single-consumer FIFO (spec §5
// "Shared-resource policy": "Queues are single-producer-single-consumer
// per queue; they need only the standard bounded-FIFO discipline
// (mutex+condvars, or lock-free ring)"). Push blocks while the queue is
// full; Pop blocks while it is empty and not yet closed.
type Queue struct {
	mu       sync.Mutex
	notEmpty *sync.Cond
	notFull  *sync.Cond
	items    []*Packet
	capacity int
	closed   bool
}

// NewQueue allocates a queue with room for capacity packets.
func NewQueue(capacity int) *Queue {
	q := &Queue{capacity: capacity}
	q.notEmpty = sync.NewCond(&q.mu)
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// Push enqueues p, blocking while the queue is full. It returns
// acerr.ErrQueueClosed if the queue has already been closed.
func (q *Queue) Push(p *Packet) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) >= q.capacity && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		return acerr.ErrQueueClosed
	}
	q.items = append(q.items, p)
	q.notEmpty.Signal()
	return nil
}

// Pop dequeues the next packet, blocking while the queue is empty and not
// yet closed. ok is false once the queue is drained and closed — the
// scanner's signal to stop (spec §4.5: "runs until its input queue is
// drained and the producer has signaled end-of-input").
func (q *Queue) Pop() (p *Packet, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && !q.closed {
		q.notEmpty.Wait()
	}
	if len(q.items) == 0 {
		return nil, false
	}
	p, q.items = q.items[0], q.items[1:]
	q.notFull.Signal()
	return p, true
}

// PopContext is Pop, but also returns ok=false if ctx is canceled before a
// packet becomes available — the scanner's way to "detect and exit
// cleanly" when an external collaborator aborts by canceling its context
// (spec §5 "Cancellation and timeouts").
func (q *Queue) PopContext(ctx context.Context) (*Packet, bool) {
	type result struct {
		p  *Packet
		ok bool
	}
	done := make(chan result, 1)
	go func() {
		p, ok := q.Pop()
		done <- result{p, ok}
	}()
	select {
	case r := <-done:
		return r.p, r.ok
	case <-ctx.Done():
		return nil, false
	}
}

// Close signals end-of-input: no more Push calls will succeed, and any
// blocked or future Pop drains the remaining items before reporting ok=false.
func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.notEmpty.Broadcast()
	q.notFull.Broadcast()
}

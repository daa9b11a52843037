package feedclient

import (
	"sync"

	"github.com/Mithilyaganti/Trade-Pulse-Tracker/pkg/wire"
)

// queue is an unbounded FIFO of records awaiting delivery. Push never
// blocks; memory is the only bound.
type queue struct {
	mu    sync.Mutex
	items []wire.Record
}

// push appends a record and returns the resulting depth.
func (q *queue) push(record wire.Record) int {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, record)
	return len(q.items)
}

// pop removes the oldest record. The second return is false when the queue
// is empty.
func (q *queue) pop() (wire.Record, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == 0 {
		return wire.Record{}, false
	}

	record := q.items[0]
	q.items = q.items[1:]
	return record, true
}

// depth returns the number of queued records.
func (q *queue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

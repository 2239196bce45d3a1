package publisher

import (
	"sync"

	"verdict/internal/audit"
)

// RingBuffer is a bounded, thread-safe buffer of decision records awaiting
// publish. When full, the oldest records are dropped to make room: the
// durable copy already exists in the store, so losing an async publish is
// acceptable while blocking the decision path is not.
type RingBuffer struct {
	mu       sync.Mutex
	records  []audit.DecisionRecord
	head     int // next write position
	tail     int // next read position
	count    int
	capacity int

	dropped int64
}

// NewRingBuffer creates a ring buffer with the given capacity.
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity <= 0 {
		capacity = 10000 // default
	}
	return &RingBuffer{
		records:  make([]audit.DecisionRecord, capacity),
		capacity: capacity,
	}
}

// Enqueue adds a record, dropping the oldest if necessary. Reports whether
// the record was stored without a drop.
func (b *RingBuffer) Enqueue(record audit.DecisionRecord) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	clean := true
	if b.count >= b.capacity {
		b.tail = (b.tail + 1) % b.capacity
		b.count--
		b.dropped++
		clean = false
	}

	b.records[b.head] = record
	b.head = (b.head + 1) % b.capacity
	b.count++
	return clean
}

// DequeueBatch removes up to n records from the buffer, oldest first.
func (b *RingBuffer) DequeueBatch(n int) []audit.DecisionRecord {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.count == 0 {
		return nil
	}
	if n > b.count {
		n = b.count
	}

	result := make([]audit.DecisionRecord, n)
	for i := 0; i < n; i++ {
		result[i] = b.records[b.tail]
		b.tail = (b.tail + 1) % b.capacity
	}
	b.count -= n
	return result
}

// Len returns the current number of buffered records.
func (b *RingBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Dropped returns the total number of dropped records.
func (b *RingBuffer) Dropped() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

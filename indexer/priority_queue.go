package indexer

import (
	"container/heap"
	"sync"
)

// LogEventQueue priority queue of LogEvent ordered by (block number, log index)
type LogEventQueue struct {
	items []*LogEvent
	mu    sync.RWMutex
}

// NewLogEventQueue creates a new priority queue
func NewLogEventQueue() *LogEventQueue {
	q := &LogEventQueue{
		items: make([]*LogEvent, 0),
	}
	heap.Init(q)
	return q
}

// Len returns the number of items in the queue
func (q *LogEventQueue) Len() int {
	return len(q.items)
}

// Less earlier block first, then lower log index
func (q *LogEventQueue) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if a.Log.BlockNumber != b.Log.BlockNumber {
		return a.Log.BlockNumber < b.Log.BlockNumber
	}
	return a.Log.Index < b.Log.Index
}

// Swap swaps two items in the queue
func (q *LogEventQueue) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
}

// Push adds an item to the queue
func (q *LogEventQueue) Push(x interface{}) {
	q.items = append(q.items, x.(*LogEvent))
}

// Pop removes and returns the last item; use PopEvent
func (q *LogEventQueue) Pop() interface{} {
	old := q.items
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	q.items = old[0 : n-1]
	return item
}

// PushEvent adds an event to the queue (thread-safe)
func (q *LogEventQueue) PushEvent(event *LogEvent) {
	q.mu.Lock()
	defer q.mu.Unlock()
	heap.Push(q, event)
}

// PopEvent removes and returns the earliest event (thread-safe)
func (q *LogEventQueue) PopEvent() *LogEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.Len() == 0 {
		return nil
	}
	return heap.Pop(q).(*LogEvent)
}

// Peek returns the earliest event without removing it (thread-safe)
func (q *LogEventQueue) Peek() *LogEvent {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.Len() == 0 {
		return nil
	}
	return q.items[0]
}

// Size returns the number of items in the queue (thread-safe)
func (q *LogEventQueue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.Len()
}

// Drain pops every event in order
func (q *LogEventQueue) Drain() []*LogEvent {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*LogEvent, 0, q.Len())
	for q.Len() > 0 {
		out = append(out, heap.Pop(q).(*LogEvent))
	}
	return out
}

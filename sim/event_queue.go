package sim

import (
	"container/heap"
	"fmt"
)

// eventHeap implements heap.Interface with deterministic ordering.
// Order by: time → insertion sequence.
type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	// Primary: time (earlier first)
	if h[i].Time != h[j].Time {
		return h[i].Time < h[j].Time
	}
	// Secondary: insertion order (FIFO among equal-time events)
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) {
	*h = append(*h, x.(Event))
}

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[0 : n-1]
	return item
}

// EventQueue is the time-ordered priority queue of pending events.
// Equal-time events are released in scheduling order, so a run's event
// sequence depends only on the seed and configuration.
type EventQueue struct {
	events  eventHeap
	nextSeq uint64
}

// NewEventQueue creates an empty EventQueue.
func NewEventQueue() *EventQueue {
	q := &EventQueue{events: make(eventHeap, 0)}
	heap.Init(&q.events)
	return q
}

// Schedule inserts an event for the given time, kind, job and station.
func (q *EventQueue) Schedule(time float64, kind EventKind, jobID, stationID int) Event {
	ev := Event{Time: time, Kind: kind, JobID: jobID, StationID: stationID, seq: q.nextSeq}
	q.nextSeq++
	heap.Push(&q.events, ev)
	return ev
}

// PopNext removes and returns the earliest event.
// Popping an empty queue is a programming error and panics; callers check IsEmpty first.
func (q *EventQueue) PopNext() Event {
	if len(q.events) == 0 {
		panic("EventQueue.PopNext: queue is empty")
	}
	return heap.Pop(&q.events).(Event)
}

// Peek returns the earliest event without removing it.
func (q *EventQueue) Peek() (Event, bool) {
	if len(q.events) == 0 {
		return Event{}, false
	}
	return q.events[0], true
}

// IsEmpty reports whether no events are pending.
func (q *EventQueue) IsEmpty() bool {
	return len(q.events) == 0
}

// Len returns the number of pending events.
func (q *EventQueue) Len() int {
	return len(q.events)
}

func (q *EventQueue) String() string {
	return fmt.Sprintf("EventQueue(len=%d)", len(q.events))
}

// Package schedule is a time-ordered queue of session events.
//
// Events never fire on their own: the owner pops the due ones on each tick.
// Events scheduled for the same instant come out in the order they were pushed.
package schedule

import (
	"container/heap"
	"time"
)

type Kind int

const (
	CountdownStep Kind = iota
	GateTimer
	ObstacleTimer
	ClearRedFlash
	ClearGreenFlash
	HideCorrectAnswer
)

func (k Kind) String() string {
	switch k {
	case CountdownStep:
		return "countdown_step"
	case GateTimer:
		return "gate_timer"
	case ObstacleTimer:
		return "obstacle_timer"
	case ClearRedFlash:
		return "clear_red_flash"
	case ClearGreenFlash:
		return "clear_green_flash"
	case HideCorrectAnswer:
		return "hide_correct_answer"
	default:
		return "unknown"
	}
}

// Event fires at At. Epoch ties it to one phase run of its session.
type Event struct {
	At    time.Time
	Kind  Kind
	Epoch uint64
	seq   uint64
}

type Queue struct {
	items eventHeap
	seq   uint64
}

func New() *Queue {
	return &Queue{}
}

func (q *Queue) Push(e Event) {
	q.seq++
	e.seq = q.seq
	heap.Push(&q.items, e)
}

func (q *Queue) Len() int { return len(q.items) }

// Next returns the earliest event without removing it.
func (q *Queue) Next() (Event, bool) {
	if len(q.items) == 0 {
		return Event{}, false
	}
	return q.items[0], true
}

// PopDue removes and returns the earliest event at or before now.
func (q *Queue) PopDue(now time.Time) (Event, bool) {
	if len(q.items) == 0 || q.items[0].At.After(now) {
		return Event{}, false
	}
	return heap.Pop(&q.items).(Event), true
}

// NextOf returns when the earliest event of kind fires.
func (q *Queue) NextOf(kind Kind, epoch uint64) (time.Time, bool) {
	var at time.Time
	found := false
	for _, e := range q.items {
		if e.Kind == kind && e.Epoch == epoch && (!found || e.At.Before(at)) {
			at, found = e.At, true
		}
	}
	return at, found
}

// Cancel drops every event of kind and reports how many were removed.
func (q *Queue) Cancel(kind Kind) int {
	kept := q.items[:0]
	for _, e := range q.items {
		if e.Kind != kind {
			kept = append(kept, e)
		}
	}
	n := len(q.items) - len(kept)
	q.items = kept
	heap.Init(&q.items)
	return n
}

func (q *Queue) Clear() {
	q.items = nil
}

type eventHeap []Event

func (h eventHeap) Len() int { return len(h) }

func (h eventHeap) Less(i, j int) bool {
	if !h[i].At.Equal(h[j].At) {
		return h[i].At.Before(h[j].At)
	}
	return h[i].seq < h[j].seq
}

func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *eventHeap) Push(x any) { *h = append(*h, x.(Event)) }

func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

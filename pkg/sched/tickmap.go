package sched

import (
	"container/heap"
	"errors"
	"fmt"
	"slices"

	"github.com/matzehuels/redwire/pkg/redstone"
)

// ErrPastTick is returned by [TickMap.Push] when an update is scheduled at
// or before the most recently popped tick. A tick is processed at most once.
var ErrPastTick = errors.New("tick is in the past")

// Update is a pending continuation: line Line has progressed up to Tail and
// is waiting to be processed at some tick.
type Update struct {
	Line redstone.LineID
	Tail redstone.Tail
}

// String renders the update as "(A, 'R0C')", the form used in dumps.
func (u Update) String() string {
	return fmt.Sprintf("(%s, '%s')", u.Line.Name(), u.Tail.String())
}

// Entry is one tick of a [TickMap] together with its queue.
type Entry struct {
	Tick    int
	Updates []Update
}

// TickMap is an ordered map from tick to a FIFO queue of updates.
//
// Keys are kept in a min-heap so the earliest tick can be selected in
// O(log n). Queue order within a tick is insertion order. Once a tick has
// been popped, only later ticks may be scheduled.
//
// A TickMap is owned by a single run and is not safe for concurrent use.
type TickMap struct {
	queues map[int][]Update
	keys   tickHeap
	floor  int
	popped bool
}

// NewTickMap returns an empty tick map.
func NewTickMap() *TickMap {
	return &TickMap{queues: make(map[int][]Update)}
}

// Push appends u to the queue at tick, creating the tick if needed.
func (m *TickMap) Push(tick int, u Update) error {
	if tick < 0 || (m.popped && tick <= m.floor) {
		return fmt.Errorf("%w: %d (current %d)", ErrPastTick, tick, m.floor)
	}
	q, ok := m.queues[tick]
	if !ok {
		heap.Push(&m.keys, tick)
	}
	m.queues[tick] = append(q, u)
	return nil
}

// PopMin removes the earliest tick and returns it with its queue.
// ok is false when the map is empty.
func (m *TickMap) PopMin() (tick int, queue []Update, ok bool) {
	if len(m.keys) == 0 {
		return 0, nil, false
	}
	tick = heap.Pop(&m.keys).(int)
	queue = m.queues[tick]
	delete(m.queues, tick)
	m.floor = tick
	m.popped = true
	return tick, queue, true
}

// Peek returns the earliest tick without removing it.
func (m *TickMap) Peek() (int, bool) {
	if len(m.keys) == 0 {
		return 0, false
	}
	return m.keys[0], true
}

// Len returns the number of ticks with a queue.
func (m *TickMap) Len() int { return len(m.keys) }

// Empty reports whether no tick is pending.
func (m *TickMap) Empty() bool { return len(m.keys) == 0 }

// Queue returns a copy of the queue at tick, or nil.
func (m *TickMap) Queue(tick int) []Update {
	return slices.Clone(m.queues[tick])
}

// Entries returns every pending tick with a copy of its queue, in ascending
// tick order.
func (m *TickMap) Entries() []Entry {
	ticks := slices.Clone([]int(m.keys))
	slices.Sort(ticks)
	out := make([]Entry, len(ticks))
	for i, t := range ticks {
		out[i] = Entry{Tick: t, Updates: slices.Clone(m.queues[t])}
	}
	return out
}

// tickHeap is a min-heap of tick keys for container/heap.
type tickHeap []int

func (h tickHeap) Len() int           { return len(h) }
func (h tickHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h tickHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *tickHeap) Push(x any) { *h = append(*h, x.(int)) }

func (h *tickHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

package sched

import (
	"errors"
	"testing"

	"github.com/matzehuels/redwire/pkg/redstone"
)

func upd(id int) Update { return Update{Line: redstone.LineID(id)} }

func TestTickMapOrdering(t *testing.T) {
	m := NewTickMap()
	for _, tick := range []int{8, 2, 6, 2, 4} {
		if err := m.Push(tick, upd(tick)); err != nil {
			t.Fatalf("Push(%d): %v", tick, err)
		}
	}
	if m.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", m.Len())
	}
	if tick, ok := m.Peek(); !ok || tick != 2 {
		t.Errorf("Peek() = %d, %v; want 2, true", tick, ok)
	}

	var got []int
	for !m.Empty() {
		tick, _, ok := m.PopMin()
		if !ok {
			t.Fatal("PopMin() on non-empty map returned !ok")
		}
		got = append(got, tick)
	}
	want := []int{2, 4, 6, 8}
	if len(got) != len(want) {
		t.Fatalf("popped %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("popped %v, want %v", got, want)
		}
	}

	if _, _, ok := m.PopMin(); ok {
		t.Error("PopMin() on empty map should return !ok")
	}
	if _, ok := m.Peek(); ok {
		t.Error("Peek() on empty map should return !ok")
	}
}

func TestTickMapQueuePreservesInsertionOrder(t *testing.T) {
	m := NewTickMap()
	for _, id := range []int{3, 1, 2} {
		_ = m.Push(4, upd(id))
	}
	_, q, _ := m.PopMin()
	if len(q) != 3 || q[0].Line != 3 || q[1].Line != 1 || q[2].Line != 2 {
		t.Errorf("queue = %v, want lines in order 3,1,2", q)
	}
}

func TestTickMapRejectsPastTicks(t *testing.T) {
	m := NewTickMap()
	_ = m.Push(4, upd(0))
	_ = m.Push(6, upd(1))
	m.PopMin()

	tests := []struct {
		tick    int
		wantErr bool
	}{
		{tick: 2, wantErr: true},
		{tick: 4, wantErr: true},
		{tick: -1, wantErr: true},
		{tick: 6, wantErr: false},
		{tick: 10, wantErr: false},
	}
	for _, tt := range tests {
		err := m.Push(tt.tick, upd(9))
		if got := errors.Is(err, ErrPastTick); got != tt.wantErr {
			t.Errorf("Push(%d) error = %v, wantErr %v", tt.tick, err, tt.wantErr)
		}
	}
}

func TestTickMapEntriesSortedCopies(t *testing.T) {
	m := NewTickMap()
	_ = m.Push(10, upd(0))
	_ = m.Push(2, upd(1))
	_ = m.Push(6, upd(2))

	entries := m.Entries()
	if len(entries) != 3 {
		t.Fatalf("len(Entries()) = %d, want 3", len(entries))
	}
	for i, want := range []int{2, 6, 10} {
		if entries[i].Tick != want {
			t.Errorf("entries[%d].Tick = %d, want %d", i, entries[i].Tick, want)
		}
	}

	entries[0].Updates[0].Line = 42
	if q := m.Queue(2); q[0].Line != 1 {
		t.Error("Entries() must return copies of the queues")
	}
	if m.Queue(3) != nil {
		t.Error("Queue() of a missing tick should be nil")
	}
}

func TestUpdateString(t *testing.T) {
	l := redstone.Parse("R0C")
	u := Update{Line: 1, Tail: l.Tail()}
	if got := u.String(); got != "(B, 'R0C')" {
		t.Errorf("String() = %q", got)
	}
}

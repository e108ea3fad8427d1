package sched

import (
	"fmt"

	"github.com/matzehuels/redwire/pkg/redstone"
)

// State is the state of a simulation run.
type State int

const (
	// Running means at least one tick is still pending.
	Running State = iota
	// Completed means every line finished, with an empty tail, in the same
	// final tick.
	Completed
	// Malformed means the run ended in a state inconsistent with completion.
	Malformed
)

var stateNames = map[State]string{
	Running:   "running",
	Completed: "completed",
	Malformed: "malformed",
}

// String returns the lowercase state name.
func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ParseState converts a name produced by [State.String] back into a State.
func ParseState(name string) (State, error) {
	for s, n := range stateNames {
		if n == name {
			return s, nil
		}
	}
	return Running, fmt.Errorf("unknown state %q", name)
}

// Warning records an update that was dropped because its next slot could not
// be parsed as an element.
type Warning struct {
	Line      redstone.LineID
	Tick      int
	Remaining string
}

// String renders the warning as a human-readable diagnostic line.
func (w Warning) String() string {
	return fmt.Sprintf("invalid element in line '%s' at tick %d: %s", w.Line.Name(), w.Tick, w.Remaining)
}

// Arrival records a line whose tail was empty when processed at Tick.
type Arrival struct {
	Line redstone.LineID
	Tick int
}

// Scheduled is an update re-inserted into the tick map after consuming
// Element.
type Scheduled struct {
	Update  Update
	Element redstone.Element
	At      int
}

// Step describes what happened during one processed tick.
type Step struct {
	Tick      int
	Processed []Update
	Scheduled []Scheduled
	Arrived   []redstone.LineID
	Dropped   []Warning
	Pending   int // ticks still in the map after this step
}

// Result is the outcome of a run.
type Result struct {
	State State

	// Order is the completion order. It is set only when State is Completed.
	Order []redstone.LineID

	// FinalTick is the last tick processed, or 0 if no tick was processed.
	FinalTick int

	// Final holds the updates resident at FinalTick when the run ended.
	Final []Update

	// Residual is what a malformed run dumps: a single entry holding the
	// arrivals of FinalTick, or nothing when no update arrived there.
	Residual []Entry

	// Warnings lists every dropped update in processing order.
	Warnings []Warning

	// Arrivals lists every arrival of every line in processing order.
	Arrivals []Arrival

	// Lines is the number of simulated lines.
	Lines int

	// Ticks is the number of ticks processed.
	Ticks int
}

// Completed reports whether the run reached the Completed state.
func (r *Result) Completed() bool { return r.State == Completed }

// OrderString returns the completion order as "A,B,C", or "" when the run
// did not complete.
func (r *Result) OrderString() string { return redstone.JoinNames(r.Order) }

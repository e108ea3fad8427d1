package sched

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/redwire/pkg/redstone"
)

// Observer receives a [Step] after each processed tick.
type Observer func(Step)

// Option configures a [Scheduler].
type Option func(*Scheduler)

// WithLogger sets the logger used for warnings and per-tick debug output.
func WithLogger(l *log.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithObserver registers fn to be called after every processed tick.
func WithObserver(fn Observer) Option {
	return func(s *Scheduler) { s.observer = fn }
}

// Scheduler runs the tick simulation over a fixed set of lines.
//
// Each call to [Scheduler.Run] builds a fresh [TickMap]; nothing carries over
// between runs. A Scheduler is not safe for concurrent use, but separate
// Schedulers may run in parallel.
type Scheduler struct {
	lines    []redstone.Line
	logger   *log.Logger
	observer Observer
}

// New creates a scheduler for lines. The slice is referenced, not copied;
// callers must not modify it while a run is in progress.
func New(lines []redstone.Line, opts ...Option) *Scheduler {
	s := &Scheduler{
		lines:  lines,
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Simulate is shorthand for New(lines, opts...).Run(ctx).
func Simulate(ctx context.Context, lines []redstone.Line, opts ...Option) (*Result, error) {
	return New(lines, opts...).Run(ctx)
}

// Run simulates every line until the tick map is empty and classifies the
// outcome.
//
// Every line is queued at tick 0 in input order. Each iteration removes the
// earliest tick and walks its queue in order: an update with an empty tail
// arrives at that tick, an update whose next slot is unparseable is dropped
// with a warning, and any other update consumes one element and is appended
// to the queue at tick+Ticks(). Since every element advances by at least two
// ticks the loop always terminates.
//
// The run is Completed when the updates that arrived at the final tick cover
// every line and all have empty tails. A non-nil error is returned only if
// ctx is cancelled or the tick map rejects an update.
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	tm := NewTickMap()
	for i := range s.lines {
		l := &s.lines[i]
		if err := tm.Push(0, Update{Line: l.ID, Tail: l.Tail()}); err != nil {
			return nil, fmt.Errorf("seed line %s: %w", l.ID.Name(), err)
		}
	}

	res := &Result{State: Running, Lines: len(s.lines)}
	for !tm.Empty() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		tick, queue, _ := tm.PopMin()
		step := Step{Tick: tick, Processed: queue}
		var arrived []Update

		for _, u := range queue {
			switch {
			case u.Tail.Empty():
				arrived = append(arrived, u)
				step.Arrived = append(step.Arrived, u.Line)
				res.Arrivals = append(res.Arrivals, Arrival{Line: u.Line, Tick: tick})

			case u.Tail.Blocked():
				w := Warning{Line: u.Line, Tick: tick, Remaining: u.Tail.String()}
				s.logger.Warn("invalid element",
					"line", u.Line.Name(),
					"tick", tick,
					"remaining", w.Remaining)
				step.Dropped = append(step.Dropped, w)
				res.Warnings = append(res.Warnings, w)

			default:
				e, next, _ := u.Tail.Next()
				at := tick + e.Ticks()
				nu := Update{Line: u.Line, Tail: next}
				if err := tm.Push(at, nu); err != nil {
					return nil, fmt.Errorf("schedule line %s: %w", u.Line.Name(), err)
				}
				step.Scheduled = append(step.Scheduled, Scheduled{Update: nu, Element: e, At: at})
			}
		}

		res.FinalTick = tick
		res.Final = arrived
		res.Ticks++
		step.Pending = tm.Len()

		s.logger.Debug("processed tick",
			"tick", tick,
			"queued", len(queue),
			"scheduled", len(step.Scheduled),
			"arrived", len(step.Arrived),
			"pending", step.Pending)

		if s.observer != nil {
			s.observer(step)
		}
	}

	s.finish(res)
	return res, nil
}

// finish applies the terminal check and fills the outcome fields. The loop
// only stops once the map is drained, so the final tick's arrivals are all
// that is left to dump.
func (s *Scheduler) finish(res *Result) {
	if len(res.Final) > 0 {
		res.Residual = []Entry{{Tick: res.FinalTick, Updates: res.Final}}
	}

	if converged(res.Final, len(s.lines)) {
		res.State = Completed
		res.Order = make([]redstone.LineID, len(res.Final))
		for i, u := range res.Final {
			res.Order[i] = u.Line
		}
		return
	}

	res.State = Malformed
	s.logger.Warn("final tick does not contain all lines or has non-empty tails",
		"final_tick", res.FinalTick,
		"arrived", len(res.Final),
		"lines", len(s.lines))
}

func converged(final []Update, lines int) bool {
	if len(final) != lines {
		return false
	}
	for _, u := range final {
		if !u.Tail.Empty() {
			return false
		}
	}
	return true
}

// Package report converts simulation results into serializable reports and
// encodes them for humans and machines.
//
// A [Report] is a self-contained, JSON- and YAML-friendly snapshot of a run:
// the input lines, the outcome, the completion order, every warning, the
// residual tick map and the arrival history. Reports are what the pipeline
// caches, what the HTTP API returns and what the run store persists.
//
// # Formats
//
//   - text: the calculator output. A completed run prints its order
//     ("A,B,C") to the primary writer; a malformed run prints warnings and
//     the tick map dump to the diagnostic writer.
//   - json: indented JSON of the full report.
//   - yaml: YAML of the full report.
package report

import (
	"github.com/matzehuels/redwire/pkg/redstone"
	"github.com/matzehuels/redwire/pkg/sched"
)

// Format names accepted by [Write].
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Formats lists the supported formats in display order.
var Formats = []string{FormatText, FormatJSON, FormatYAML}

// Report is the serializable outcome of one simulation run.
type Report struct {
	InputHash string     `json:"input_hash,omitempty" yaml:"input_hash,omitempty"`
	Lines     []Line     `json:"lines" yaml:"lines"`
	State     string     `json:"state" yaml:"state"`
	Order     []string   `json:"order,omitempty" yaml:"order,omitempty"`
	FinalTick int        `json:"final_tick" yaml:"final_tick"`
	Ticks     int        `json:"ticks" yaml:"ticks"`
	Warnings  []Warning  `json:"warnings,omitempty" yaml:"warnings,omitempty"`
	Residual  []TickDump `json:"residual,omitempty" yaml:"residual,omitempty"`
	Arrivals  []Arrival  `json:"arrivals,omitempty" yaml:"arrivals,omitempty"`
}

// Line describes one input line.
type Line struct {
	Name     string `json:"name" yaml:"name"`
	Source   string `json:"source" yaml:"source"`
	Elements int    `json:"elements" yaml:"elements"`
	Ticks    int    `json:"ticks" yaml:"ticks"`
	Rest     string `json:"rest,omitempty" yaml:"rest,omitempty"`
}

// Warning is a dropped update.
type Warning struct {
	Line      string `json:"line" yaml:"line"`
	Tick      int    `json:"tick" yaml:"tick"`
	Remaining string `json:"remaining" yaml:"remaining"`
}

// TickDump is one tick of the residual tick map.
type TickDump struct {
	Tick    int       `json:"tick" yaml:"tick"`
	Updates []Pending `json:"updates" yaml:"updates"`
}

// Pending is one queued update in a dump.
type Pending struct {
	Line      string `json:"line" yaml:"line"`
	Remaining string `json:"remaining" yaml:"remaining"`
}

// Arrival records a line reaching the end of its elements at Tick.
type Arrival struct {
	Line string `json:"line" yaml:"line"`
	Tick int    `json:"tick" yaml:"tick"`
}

// New builds a report from parsed lines and the result of simulating them.
func New(lines []redstone.Line, res *sched.Result) *Report {
	r := &Report{
		Lines:     make([]Line, len(lines)),
		State:     res.State.String(),
		FinalTick: res.FinalTick,
		Ticks:     res.Ticks,
	}

	for i := range lines {
		l := &lines[i]
		r.Lines[i] = Line{
			Name:     l.ID.Name(),
			Source:   l.Source(),
			Elements: l.Len(),
			Ticks:    l.Ticks(),
			Rest:     l.Rest(),
		}
	}
	for _, id := range res.Order {
		r.Order = append(r.Order, id.Name())
	}
	for _, w := range res.Warnings {
		r.Warnings = append(r.Warnings, Warning{Line: w.Line.Name(), Tick: w.Tick, Remaining: w.Remaining})
	}
	for _, e := range res.Residual {
		d := TickDump{Tick: e.Tick, Updates: make([]Pending, len(e.Updates))}
		for j, u := range e.Updates {
			d.Updates[j] = Pending{Line: u.Line.Name(), Remaining: u.Tail.String()}
		}
		r.Residual = append(r.Residual, d)
	}
	for _, a := range res.Arrivals {
		r.Arrivals = append(r.Arrivals, Arrival{Line: a.Line.Name(), Tick: a.Tick})
	}
	return r
}

// Completed reports whether the run completed.
func (r *Report) Completed() bool {
	return r.State == sched.Completed.String()
}

// ArrivalTick returns the last tick at which the named line arrived, or -1
// if it never did.
func (r *Report) ArrivalTick(name string) int {
	tick := -1
	for _, a := range r.Arrivals {
		if a.Line == name {
			tick = a.Tick
		}
	}
	return tick
}

// Package timeline renders simulation runs as tick timelines.
//
// # Overview
//
// Every line of a run becomes one horizontal chain of checkpoints: the start
// at tick 0, then one node per consumed element at the tick the element
// delivers the signal. Checkpoints that fall on the same tick share a column,
// so lines that arrive together line up vertically.
//
// Arrivals at the final tick are filled green, earlier arrivals yellow, and a
// line that stopped at unparseable text ends in a red node labelled with that
// text.
//
// # Usage
//
// Convert a report to DOT, then render to SVG:
//
//	dot := timeline.ToDOT(rep, timeline.Options{})
//	svg, err := timeline.RenderSVG(ctx, dot)
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no external Graphviz install is needed.
package timeline

// Package render groups the visual outputs of redwire.
//
// The [timeline] subpackage draws a run as per-line chains of checkpoints
// aligned on ticks, using Graphviz.
//
//	dot := timeline.ToDOT(rep, timeline.Options{})
//	svg, err := timeline.RenderSVG(ctx, dot)
//
// [timeline]: github.com/matzehuels/redwire/pkg/render/timeline
package render

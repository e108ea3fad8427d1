package timeline

import (
	"bytes"
	"context"
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/redwire/pkg/errors"
	"github.com/matzehuels/redwire/pkg/redstone"
	"github.com/matzehuels/redwire/pkg/report"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
)

// Formats lists the supported output formats.
var Formats = []string{FormatDOT, FormatSVG}

// Options configures timeline rendering.
type Options struct {
	// Detailed adds the tick advancement to every edge label ("R1 +4").
	// When false, edges show only the element token.
	Detailed bool
}

// Checkpoint is the position of a line after consuming Index elements.
type Checkpoint struct {
	Index int
	Tick  int
	Via   redstone.Element // element consumed to get here; zero for Index 0
}

// Track is the full progression of one line.
type Track struct {
	Name        string
	Checkpoints []Checkpoint
	Blocked     string // unparseable remainder, "" if the line arrived
	Arrived     bool
	Final       bool // arrived at the run's final tick
}

// Tracks computes the per-line progression of a report. Lines advance
// independently, so each track follows from its source text alone.
func Tracks(r *report.Report) []Track {
	tracks := make([]Track, 0, len(r.Lines))
	for _, rl := range r.Lines {
		l := redstone.Parse(rl.Source)
		t := Track{Name: rl.Name, Blocked: l.Rest()}
		t.Checkpoints = append(t.Checkpoints, Checkpoint{})

		tick := 0
		for i, e := range l.Elements() {
			tick += e.Ticks()
			t.Checkpoints = append(t.Checkpoints, Checkpoint{Index: i + 1, Tick: tick, Via: e})
		}
		if t.Blocked == "" {
			t.Arrived = true
			t.Final = tick == r.FinalTick
		}
		tracks = append(tracks, t)
	}
	return tracks
}

// ToDOT converts a report to Graphviz DOT. The result can be rendered with
// [RenderSVG] or saved for external Graphviz tools.
func ToDOT(r *report.Report, opts Options) string {
	tracks := Tracks(r)

	var buf bytes.Buffer
	buf.WriteString("digraph timeline {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  edge [fontsize=12];\n")
	fmt.Fprintf(&buf, "  label=%q;\n", fmt.Sprintf("%s at tick %d", r.State, r.FinalTick))
	buf.WriteString("  labelloc=t;\n")
	buf.WriteString("\n")

	byTick := map[int][]string{}
	for _, t := range tracks {
		last := len(t.Checkpoints) - 1
		for i, cp := range t.Checkpoints {
			id := nodeID(t.Name, cp.Index)
			byTick[cp.Tick] = append(byTick[cp.Tick], id)
			fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(nodeAttrs(t, cp, i == last), ", "))
		}
		if t.Blocked != "" {
			fmt.Fprintf(&buf, "  %q [label=%q, fillcolor=lightcoral];\n", blockedID(t.Name), t.Blocked)
		}
	}

	buf.WriteString("\n")
	for _, t := range tracks {
		for i := 1; i < len(t.Checkpoints); i++ {
			cp := t.Checkpoints[i]
			fmt.Fprintf(&buf, "  %q -> %q [label=%q];\n",
				nodeID(t.Name, t.Checkpoints[i-1].Index), nodeID(t.Name, cp.Index), edgeLabel(cp.Via, opts))
		}
		if t.Blocked != "" {
			last := t.Checkpoints[len(t.Checkpoints)-1]
			fmt.Fprintf(&buf, "  %q -> %q [style=dashed];\n", nodeID(t.Name, last.Index), blockedID(t.Name))
		}
	}

	buf.WriteString("\n")
	for _, tick := range slices.Sorted(maps.Keys(byTick)) {
		ids := byTick[tick]
		if len(ids) < 2 {
			continue
		}
		quoted := make([]string, len(ids))
		for i, id := range ids {
			quoted[i] = strconv.Quote(id)
		}
		fmt.Fprintf(&buf, "  { rank=same; %s; }\n", strings.Join(quoted, "; "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeID(name string, index int) string {
	return fmt.Sprintf("%s@%d", name, index)
}

func blockedID(name string) string {
	return name + "!"
}

func nodeAttrs(t Track, cp Checkpoint, last bool) []string {
	label := fmt.Sprintf("t=%d", cp.Tick)
	if cp.Index == 0 {
		label = t.Name + "\n" + label
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch {
	case last && t.Final:
		attrs = append(attrs, "fillcolor=palegreen", "penwidth=2")
	case last && t.Arrived:
		attrs = append(attrs, "fillcolor=khaki")
	case cp.Index == 0:
		attrs = append(attrs, "fillcolor=lightgrey")
	}
	return attrs
}

func edgeLabel(e redstone.Element, opts Options) string {
	if opts.Detailed {
		return fmt.Sprintf("%s +%d", e, e.Ticks())
	}
	return e.String()
}

// Render produces the timeline of r in the given format.
func Render(ctx context.Context, r *report.Report, format string, opts Options) ([]byte, error) {
	dot := ToDOT(r, opts)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return RenderSVG(ctx, dot)
	default:
		return nil, errors.ValidateFormat(format, Formats)
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	newSvg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)

	return svgTagRe.ReplaceAll(svg, []byte(newSvg))
}

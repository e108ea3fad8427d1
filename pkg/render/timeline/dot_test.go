package timeline

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/redwire/pkg/errors"
	"github.com/matzehuels/redwire/pkg/redstone"
	"github.com/matzehuels/redwire/pkg/report"
	"github.com/matzehuels/redwire/pkg/sched"
)

func simulate(t *testing.T, texts ...string) *report.Report {
	t.Helper()
	lines := redstone.ParseAll(texts)
	res, err := sched.Simulate(context.Background(), lines)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	return report.New(lines, res)
}

func TestTracks(t *testing.T) {
	r := simulate(t, "R1C", "C", "R0X")
	tracks := Tracks(r)
	if len(tracks) != 3 {
		t.Fatalf("got %d tracks, want 3", len(tracks))
	}

	a := tracks[0]
	if a.Name != "A" || !a.Arrived || a.Blocked != "" {
		t.Errorf("track A = %+v", a)
	}
	var ticks []int
	for _, cp := range a.Checkpoints {
		ticks = append(ticks, cp.Tick)
	}
	if got := ticks; len(got) != 3 || got[0] != 0 || got[1] != 4 || got[2] != 6 {
		t.Errorf("track A ticks = %v, want [0 4 6]", got)
	}
	if !a.Final {
		t.Error("A arrives at the final tick 6")
	}

	b := tracks[1]
	if !b.Arrived || b.Final {
		t.Errorf("B arrives early at tick 2: %+v", b)
	}

	c := tracks[2]
	if c.Arrived || c.Blocked != "X" {
		t.Errorf("C should be blocked on X: %+v", c)
	}
}

func TestToDOT(t *testing.T) {
	r := simulate(t, "R0C", "R0C")
	dot := ToDOT(r, Options{})

	for _, want := range []string{
		"digraph timeline {",
		"rankdir=LR;",
		`label="completed at tick 4";`,
		`"A@0" [label="A\nt=0", fillcolor=lightgrey];`,
		`"A@2" [label="t=4", fillcolor=palegreen, penwidth=2];`,
		`"A@0" -> "A@1" [label="R0"];`,
		`"B@1" -> "B@2" [label="C"];`,
		`{ rank=same; "A@2"; "B@2"; }`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
	if strings.Contains(dot, "lightcoral") {
		t.Error("completed run should have no blocked nodes")
	}
}

func TestToDOTBlocked(t *testing.T) {
	r := simulate(t, "R0X", "R0")
	dot := ToDOT(r, Options{Detailed: true})

	for _, want := range []string{
		`label="malformed at tick 2";`,
		`"A!" [label="X", fillcolor=lightcoral];`,
		`"A@1" -> "A!" [style=dashed];`,
		`"A@0" -> "A@1" [label="R0 +2"];`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("DOT missing %q\n%s", want, dot)
		}
	}
}

func TestToDOTDeterministic(t *testing.T) {
	r := simulate(t, "R3", "CCCC", "R1R1", "C")
	first := ToDOT(r, Options{})
	for range 5 {
		if got := ToDOT(r, Options{}); got != first {
			t.Fatal("ToDOT output should be deterministic")
		}
	}
}

func TestRenderDOT(t *testing.T) {
	r := simulate(t, "C", "C")
	data, err := Render(context.Background(), r, FormatDOT, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != ToDOT(r, Options{}) {
		t.Error("Render(dot) should return ToDOT output")
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	r := simulate(t, "C")
	_, err := Render(context.Background(), r, "png", Options{})
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("Render(png) error = %v, want INVALID_FORMAT", err)
	}
}

func TestRenderSVG(t *testing.T) {
	r := simulate(t, "R0C", "C")
	svg, err := Render(context.Background(), r, FormatSVG, Options{})
	if err != nil {
		t.Fatalf("Render(svg): %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("output should contain an svg element")
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.50 200.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	want := `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.50 200.00" width="100" height="200"><g/></svg>`
	if out != want {
		t.Errorf("normalizeViewBox =\n%s\nwant\n%s", out, want)
	}

	plain := []byte("<svg><g/></svg>")
	if string(normalizeViewBox(plain)) != string(plain) {
		t.Error("svg without viewBox should be unchanged")
	}
}

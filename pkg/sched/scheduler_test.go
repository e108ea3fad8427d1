package sched

import (
	"bytes"
	"context"
	"errors"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/redwire/pkg/redstone"
)

func simulate(t *testing.T, inputs ...string) *Result {
	t.Helper()
	res, err := Simulate(context.Background(), redstone.ParseAll(inputs))
	if err != nil {
		t.Fatalf("Simulate(%q): %v", inputs, err)
	}
	return res
}

func TestScenarios(t *testing.T) {
	tests := []struct {
		name      string
		inputs    []string
		wantState State
		wantOrder string
		wantFinal int
	}{
		{
			name:      "two comparators",
			inputs:    []string{"C", "C"},
			wantState: Completed,
			wantOrder: "A,B",
			wantFinal: 2,
		},
		{
			name:      "lines finish on different ticks",
			inputs:    []string{"R0C", "C"},
			wantState: Malformed,
			wantFinal: 4,
		},
		{
			name:      "identical lines",
			inputs:    []string{"R0C", "R0C"},
			wantState: Completed,
			wantOrder: "A,B",
			wantFinal: 4,
		},
		{
			name:      "invalid token",
			inputs:    []string{"X"},
			wantState: Malformed,
			wantFinal: 0,
		},
		{
			name:      "same total delay with different shapes",
			inputs:    []string{"R3", "CCCC", "R1R1"},
			wantState: Completed,
			wantOrder: "A,C,B",
			wantFinal: 8,
		},
		{
			name:      "sub-tick order follows the previous tick",
			inputs:    []string{"R1C", "CR1"},
			wantState: Completed,
			wantOrder: "B,A",
			wantFinal: 6,
		},
		{
			name:      "invalid remainder after valid prefix",
			inputs:    []string{"R0X", "R0"},
			wantState: Malformed,
			wantFinal: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := simulate(t, tt.inputs...)
			if res.State != tt.wantState {
				t.Fatalf("State = %s, want %s", res.State, tt.wantState)
			}
			if got := res.OrderString(); got != tt.wantOrder {
				t.Errorf("Order = %q, want %q", got, tt.wantOrder)
			}
			if res.FinalTick != tt.wantFinal {
				t.Errorf("FinalTick = %d, want %d", res.FinalTick, tt.wantFinal)
			}
		})
	}
}

func TestMalformedResidualDump(t *testing.T) {
	res := simulate(t, "R0C", "C")

	if len(res.Residual) != 1 {
		t.Fatalf("Residual = %v, want one entry", res.Residual)
	}
	e := res.Residual[0]
	if e.Tick != 4 || len(e.Updates) != 1 || e.Updates[0].Line != 0 {
		t.Errorf("Residual[0] = %+v, want tick 4 holding line A", e)
	}

	wantArrivals := []Arrival{{Line: 1, Tick: 2}, {Line: 0, Tick: 4}}
	if !slices.Equal(res.Arrivals, wantArrivals) {
		t.Errorf("Arrivals = %v, want %v", res.Arrivals, wantArrivals)
	}
}

func TestInvalidTokenWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.WarnLevel})

	res, err := Simulate(context.Background(), redstone.ParseAll([]string{"X"}), WithLogger(logger))
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Warnings) != 1 {
		t.Fatalf("Warnings = %v, want one", res.Warnings)
	}
	w := res.Warnings[0]
	if w.Line != 0 || w.Tick != 0 || w.Remaining != "X" {
		t.Errorf("warning = %+v", w)
	}
	if !strings.Contains(w.String(), "line 'A' at tick 0: X") {
		t.Errorf("warning text = %q", w.String())
	}
	if len(res.Residual) != 0 {
		t.Errorf("Residual = %v, want empty dump", res.Residual)
	}
	if len(res.Final) != 0 {
		t.Errorf("Final = %v, want no arrivals", res.Final)
	}
	if !strings.Contains(buf.String(), "invalid element") {
		t.Errorf("expected a logged warning, got %q", buf.String())
	}
}

func TestInvalidLineDoesNotBlockOthers(t *testing.T) {
	res := simulate(t, "C", "R0R9", "C")

	if res.State != Malformed {
		t.Fatalf("State = %s, want malformed", res.State)
	}
	if len(res.Warnings) != 1 || res.Warnings[0].Line != 1 || res.Warnings[0].Tick != 2 {
		t.Errorf("Warnings = %v, want line B at tick 2", res.Warnings)
	}
	if len(res.Final) != 2 || res.Final[0].Line != 0 || res.Final[1].Line != 2 {
		t.Errorf("Final = %v, want A and C", res.Final)
	}
}

func TestEmptyInput(t *testing.T) {
	res := simulate(t)
	if res.State != Completed || len(res.Order) != 0 || res.Ticks != 0 {
		t.Errorf("empty run = %+v, want completed with no order", res)
	}
}

// P1: repeated runs give identical output.
func TestDeterminism(t *testing.T) {
	inputs := []string{"R1CR0", "CCR1", "R0R0R1", "R3"}
	first := simulate(t, inputs...)
	for i := 0; i < 20; i++ {
		again := simulate(t, inputs...)
		if again.State != first.State || !slices.Equal(again.Order, first.Order) ||
			!slices.Equal(again.Arrivals, first.Arrivals) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

// P2: updates merged into the same tick keep their insertion order.
func TestTiePreservingMerge(t *testing.T) {
	// At tick 0 the queue is A, B, C. B reaches tick 4 first (R1), then A and
	// C each take two comparators; at tick 2 the queue is A, C so tick 4 is
	// B, A, C.
	var steps []Step
	lines := redstone.ParseAll([]string{"CC", "R1", "CC"})
	res, err := Simulate(context.Background(), lines, WithObserver(func(s Step) { steps = append(steps, s) }))
	if err != nil {
		t.Fatal(err)
	}

	if got := res.OrderString(); got != "B,A,C" {
		t.Errorf("Order = %q, want B,A,C", got)
	}
	if len(steps) != 3 {
		t.Fatalf("steps = %d, want 3", len(steps))
	}
	var at4 []redstone.LineID
	for _, u := range steps[2].Processed {
		at4 = append(at4, u.Line)
	}
	if !slices.Equal(at4, []redstone.LineID{1, 0, 2}) {
		t.Errorf("tick 4 queue = %v, want [B A C]", at4)
	}
}

// P3: every consumed element moves its line at least two ticks forward.
func TestProgress(t *testing.T) {
	lines := redstone.ParseAll([]string{"R3R2R1R0C", "CCCCC", "R0R3"})
	_, err := Simulate(context.Background(), lines, WithObserver(func(s Step) {
		for _, sc := range s.Scheduled {
			if sc.At < s.Tick+2 {
				t.Errorf("line %s scheduled at %d from tick %d", sc.Update.Line, sc.At, s.Tick)
			}
			if sc.At-s.Tick != sc.Element.Ticks() {
				t.Errorf("advance %d does not match %s", sc.At-s.Tick, sc.Element)
			}
		}
	}))
	if err != nil {
		t.Fatal(err)
	}
}

// P4: completed iff every line, simulated alone, ends on the same tick.
func TestCompletionInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tokens := []string{"R0", "R1", "R2", "R3", "C"}

	for i := 0; i < 300; i++ {
		n := 1 + rng.Intn(4)
		inputs := make([]string, n)
		for j := range inputs {
			var b strings.Builder
			for k := 0; k < 1+rng.Intn(4); k++ {
				b.WriteString(tokens[rng.Intn(len(tokens))])
			}
			inputs[j] = b.String()
		}

		ends := make(map[int]bool)
		for _, in := range inputs {
			solo := simulate(t, in)
			ends[solo.FinalTick] = true
		}

		res := simulate(t, inputs...)
		if got, want := res.State == Completed, len(ends) == 1; got != want {
			t.Fatalf("%q: completed = %v, want %v (solo end ticks %v)", inputs, got, want, ends)
		}
	}
}

func TestObserverSeesEveryTick(t *testing.T) {
	var ticks []int
	lines := redstone.ParseAll([]string{"R0C", "C"})
	res, err := Simulate(context.Background(), lines, WithObserver(func(s Step) { ticks = append(ticks, s.Tick) }))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(ticks, []int{0, 2, 4}) {
		t.Errorf("ticks = %v, want [0 2 4]", ticks)
	}
	if res.Ticks != 3 {
		t.Errorf("Ticks = %d, want 3", res.Ticks)
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Simulate(ctx, redstone.ParseAll([]string{"C"}))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunIsRepeatable(t *testing.T) {
	s := New(redstone.ParseAll([]string{"R0C", "R0C"}))
	a, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if a.OrderString() != b.OrderString() || a.Ticks != b.Ticks {
		t.Errorf("second run differs: %+v vs %+v", b, a)
	}
}

func TestManyLinesUseExtendedNames(t *testing.T) {
	inputs := make([]string, 28)
	for i := range inputs {
		inputs[i] = "C"
	}
	res := simulate(t, inputs...)
	if !res.Completed() {
		t.Fatalf("State = %s", res.State)
	}
	names := strings.Split(res.OrderString(), ",")
	if names[25] != "Z" || names[26] != "AA" || names[27] != "AB" {
		t.Errorf("names = %v", names[24:])
	}
}

func TestStateString(t *testing.T) {
	for _, s := range []State{Running, Completed, Malformed} {
		got, err := ParseState(s.String())
		if err != nil || got != s {
			t.Errorf("ParseState(%q) = %v, %v", s.String(), got, err)
		}
	}
	if _, err := ParseState("bogus"); err == nil {
		t.Error("ParseState(bogus) should fail")
	}
	if State(9).String() != "State(9)" {
		t.Errorf("unknown state = %q", State(9).String())
	}
}

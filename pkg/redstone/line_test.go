package redstone

import (
	"errors"
	"slices"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []Element
		rest  string
	}{
		{name: "empty", input: "", want: nil},
		{name: "single comparator", input: "C", want: []Element{Comparator()}},
		{name: "all repeaters", input: "R0R1R2R3", want: []Element{Repeater(0), Repeater(1), Repeater(2), Repeater(3)}},
		{name: "mixed", input: "R0CR3C", want: []Element{Repeater(0), Comparator(), Repeater(3), Comparator()}},
		{name: "invalid first token", input: "X", want: nil, rest: "X"},
		{name: "delay out of range", input: "CR4C", want: []Element{Comparator()}, rest: "R4C"},
		{name: "dangling repeater", input: "R1R", want: []Element{Repeater(1)}, rest: "R"},
		{name: "lowercase is not a token", input: "Cc", want: []Element{Comparator()}, rest: "c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Parse(tt.input)
			if got := l.Elements(); !slices.Equal(got, tt.want) {
				t.Errorf("Elements() = %v, want %v", got, tt.want)
			}
			if l.Rest() != tt.rest {
				t.Errorf("Rest() = %q, want %q", l.Rest(), tt.rest)
			}
			if l.Valid() != (tt.rest == "") {
				t.Errorf("Valid() = %v, want %v", l.Valid(), tt.rest == "")
			}
			if l.Source() != tt.input {
				t.Errorf("Source() = %q, want %q", l.Source(), tt.input)
			}
		})
	}
}

func TestParseAll(t *testing.T) {
	lines := ParseAll([]string{"C", "", "  R0C \n", "\t", "X"})
	if len(lines) != 3 {
		t.Fatalf("len = %d, want 3", len(lines))
	}
	for i, l := range lines {
		if l.ID != LineID(i) {
			t.Errorf("lines[%d].ID = %d, want %d", i, l.ID, i)
		}
	}
	if lines[1].Source() != "R0C" {
		t.Errorf("whitespace not trimmed: %q", lines[1].Source())
	}
	if lines[2].Valid() {
		t.Error("lines[2] should carry an unparsed remainder")
	}
}

func TestElementTicks(t *testing.T) {
	tests := []struct {
		elem Element
		want int
	}{
		{Repeater(0), 2},
		{Repeater(1), 4},
		{Repeater(2), 6},
		{Repeater(3), 8},
		{Comparator(), 2},
	}
	for _, tt := range tests {
		if got := tt.elem.Ticks(); got != tt.want {
			t.Errorf("%s.Ticks() = %d, want %d", tt.elem, got, tt.want)
		}
	}
}

func TestRepeaterPanicsOutOfRange(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Repeater(4) should panic")
		}
	}()
	_ = Repeater(4)
}

func TestLineTicks(t *testing.T) {
	l := Parse("R0CR3")
	if got := l.Ticks(); got != 12 {
		t.Errorf("Ticks() = %d, want 12", got)
	}
}

func TestTailWalk(t *testing.T) {
	l := Parse("R1CX")
	tail := l.Tail()

	if tail.Empty() || tail.Blocked() {
		t.Fatal("fresh tail should be neither empty nor blocked")
	}
	if tail.String() != "R1CX" {
		t.Errorf("String() = %q, want %q", tail.String(), "R1CX")
	}

	e, tail, ok := tail.Next()
	if !ok || e != Repeater(1) {
		t.Fatalf("Next() = %v, %v; want R1, true", e, ok)
	}
	e, tail, ok = tail.Next()
	if !ok || e != Comparator() {
		t.Fatalf("Next() = %v, %v; want C, true", e, ok)
	}

	if !tail.Blocked() {
		t.Error("tail should be blocked on the unparsed remainder")
	}
	if tail.Empty() {
		t.Error("blocked tail is not empty")
	}
	if tail.String() != "X" {
		t.Errorf("String() = %q, want %q", tail.String(), "X")
	}
	if _, _, ok := tail.Next(); ok {
		t.Error("Next() on a blocked tail should fail")
	}
}

func TestTailsAreIndependent(t *testing.T) {
	l := Parse("R0R1R2")
	a := l.Tail()
	b := l.Tail()

	_, a, _ = a.Next()
	_, a, _ = a.Next()

	if b.Pos() != 0 {
		t.Errorf("b.Pos() = %d, want 0", b.Pos())
	}
	if a.Pos() != 2 || a.Remaining() != 1 {
		t.Errorf("a at %d with %d remaining, want 2 with 1", a.Pos(), a.Remaining())
	}
	if a.Line() != b.Line() {
		t.Error("tails should share the line")
	}
}

func TestTailEmpty(t *testing.T) {
	l := Parse("C")
	_, tail, _ := l.Tail().Next()
	if !tail.Empty() {
		t.Error("tail should be empty after consuming the only element")
	}
	if tail.Blocked() {
		t.Error("empty tail is not blocked")
	}

	var zero Tail
	if !zero.Empty() || zero.String() != "" || zero.Remaining() != 0 {
		t.Error("zero tail should be empty")
	}
}

func TestLineIDName(t *testing.T) {
	tests := []struct {
		id   LineID
		want string
	}{
		{0, "A"},
		{1, "B"},
		{25, "Z"},
		{26, "AA"},
		{27, "AB"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
		{-1, "?"},
	}
	for _, tt := range tests {
		if got := tt.id.Name(); got != tt.want {
			t.Errorf("LineID(%d).Name() = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestParseLineIDRoundTrip(t *testing.T) {
	for id := LineID(0); id < 2000; id++ {
		got, err := ParseLineID(id.Name())
		if err != nil {
			t.Fatalf("ParseLineID(%q): %v", id.Name(), err)
		}
		if got != id {
			t.Fatalf("ParseLineID(%q) = %d, want %d", id.Name(), got, id)
		}
	}
}

func TestParseLineIDInvalid(t *testing.T) {
	for _, name := range []string{"", "a", "A1", "ÄB", "AAAAAAAAAAAAA"} {
		if _, err := ParseLineID(name); !errors.Is(err, ErrInvalidName) {
			t.Errorf("ParseLineID(%q) error = %v, want ErrInvalidName", name, err)
		}
	}
}

func TestJoinNames(t *testing.T) {
	if got := JoinNames([]LineID{0, 2, 26}); got != "A,C,AA" {
		t.Errorf("JoinNames = %q, want %q", got, "A,C,AA")
	}
	if got := JoinNames(nil); got != "" {
		t.Errorf("JoinNames(nil) = %q, want empty", got)
	}
}

package redstone

import (
	"slices"
	"strings"
)

// Line is an immutable, tokenized delay line.
//
// The zero value is an empty line with ID 0. Lines are normally created with
// [Parse] or [ParseAll] and then only read; nothing in this module mutates a
// line after parsing.
type Line struct {
	ID LineID

	source string
	elems  []Element
	rest   string
}

// Parse tokenizes text into a line. Tokens are consumed left to right; at the
// first position that is neither "R" followed by a digit in 0..MaxDelay nor
// "C", parsing stops and the remaining text is kept as [Line.Rest].
//
// Parse never fails. Malformed input is carried on the line and reported
// when a simulation reaches it.
func Parse(text string) Line {
	l := Line{source: text}
	i := 0
	for i < len(text) {
		switch {
		case text[i] == 'C':
			l.elems = append(l.elems, Comparator())
			i++
		case text[i] == 'R' && i+1 < len(text) && isDelayDigit(text[i+1]):
			l.elems = append(l.elems, Repeater(int(text[i+1]-'0')))
			i += 2
		default:
			l.rest = text[i:]
			return l
		}
	}
	return l
}

func isDelayDigit(b byte) bool {
	return b >= '0' && b <= '0'+MaxDelay
}

// ParseAll parses a batch of input lines. Surrounding whitespace is trimmed,
// blank lines are skipped, and the remaining lines get identifiers in input
// order starting at 0.
func ParseAll(texts []string) []Line {
	lines := make([]Line, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		l := Parse(t)
		l.ID = LineID(len(lines))
		lines = append(lines, l)
	}
	return lines
}

// Source returns the text the line was parsed from.
func (l *Line) Source() string { return l.source }

// Len returns the number of parsed elements.
func (l *Line) Len() int { return len(l.elems) }

// Element returns the i-th element. It panics if i is out of range.
func (l *Line) Element(i int) Element { return l.elems[i] }

// Elements returns a copy of the parsed elements.
func (l *Line) Elements() []Element { return slices.Clone(l.elems) }

// Rest returns the unparsed suffix of the source, or "" if the whole source
// was tokenized.
func (l *Line) Rest() string { return l.rest }

// Valid reports whether the entire source was tokenized.
func (l *Line) Valid() bool { return l.rest == "" }

// Ticks returns the total delay of all parsed elements.
func (l *Line) Ticks() int {
	total := 0
	for _, e := range l.elems {
		total += e.Ticks()
	}
	return total
}

// Tail returns a view of the whole line.
func (l *Line) Tail() Tail { return Tail{line: l} }

// String returns the canonical token text followed by any unparsed remainder.
func (l *Line) String() string { return l.Tail().String() }

// Tail is the unconsumed suffix of a line, held as an index into the line's
// elements. Tails are values; advancing returns a new tail and leaves the
// receiver unchanged.
type Tail struct {
	line *Line
	pos  int
}

// Line returns the line the tail belongs to.
func (t Tail) Line() *Line { return t.line }

// Pos returns the index of the next element to consume.
func (t Tail) Pos() int { return t.pos }

// Remaining returns the number of parsed elements not yet consumed.
func (t Tail) Remaining() int {
	if t.line == nil {
		return 0
	}
	return len(t.line.elems) - t.pos
}

// Empty reports whether nothing is left: every element has been consumed and
// the line had no unparsed remainder.
func (t Tail) Empty() bool {
	return t.line == nil || (t.pos >= len(t.line.elems) && t.line.rest == "")
}

// Blocked reports whether the next slot is unparseable text, i.e. all parsed
// elements are consumed but the line still has a remainder.
func (t Tail) Blocked() bool {
	return t.line != nil && t.pos >= len(t.line.elems) && t.line.rest != ""
}

// Next consumes one element. It returns the element and the shortened tail.
// ok is false when the tail is empty or blocked.
func (t Tail) Next() (e Element, next Tail, ok bool) {
	if t.line == nil || t.pos >= len(t.line.elems) {
		return Element{}, t, false
	}
	return t.line.elems[t.pos], Tail{line: t.line, pos: t.pos + 1}, true
}

// String returns the remaining tokens followed by any unparsed remainder.
func (t Tail) String() string {
	if t.line == nil {
		return ""
	}
	var b strings.Builder
	for _, e := range t.line.elems[t.pos:] {
		b.WriteString(e.String())
	}
	b.WriteString(t.line.rest)
	return b.String()
}

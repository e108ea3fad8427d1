package redstone

import (
	"fmt"
	"strconv"
)

// Kind distinguishes the element types a line can contain.
type Kind int

const (
	// KindRepeater is a repeater with a configurable delay.
	KindRepeater Kind = iota
	// KindComparator is a comparator with a fixed delay.
	KindComparator
)

// String returns the lowercase kind name.
func (k Kind) String() string {
	switch k {
	case KindRepeater:
		return "repeater"
	case KindComparator:
		return "comparator"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

const (
	// MaxDelay is the highest delay setting a repeater accepts.
	MaxDelay = 3

	// ComparatorTicks is the fixed advancement of a comparator.
	ComparatorTicks = 2
)

// Element is one delay element of a line. The zero value is a repeater with
// delay 0.
type Element struct {
	Kind  Kind
	Delay int // repeater delay in [0, MaxDelay]; always 0 for comparators
}

// Repeater returns a repeater element. It panics if delay is out of range,
// since elements are only ever built from validated tokens.
func Repeater(delay int) Element {
	if delay < 0 || delay > MaxDelay {
		panic(fmt.Sprintf("redstone: repeater delay %d out of range", delay))
	}
	return Element{Kind: KindRepeater, Delay: delay}
}

// Comparator returns a comparator element.
func Comparator() Element {
	return Element{Kind: KindComparator}
}

// Ticks returns how many ticks the element holds a signal for.
// The result is always a positive even number.
func (e Element) Ticks() int {
	if e.Kind == KindComparator {
		return ComparatorTicks
	}
	return (1 + e.Delay) * 2
}

// String returns the element's token, e.g. "R2" or "C".
func (e Element) String() string {
	if e.Kind == KindComparator {
		return "C"
	}
	return "R" + strconv.Itoa(e.Delay)
}

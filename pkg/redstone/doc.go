// Package redstone parses textual descriptions of redstone delay lines.
//
// A line is a chain of delay elements written as a compact token string:
//
//	R0..R3  repeater with a delay setting of 0 to 3
//	C       comparator
//
// A repeater with delay n holds the signal for (1+n)*2 ticks; a comparator
// always holds it for 2 ticks. For example "R0C" is a one-tick repeater
// followed by a comparator, for 4 ticks in total.
//
// # Parsing
//
// [Parse] tokenizes a line once, left to right, with no backtracking. When it
// reaches a position that is neither a repeater with a valid delay nor a
// comparator it stops and keeps the unparsed text on [Line.Rest]. That text
// is not rejected here: the scheduler reports it when a line's progress
// actually reaches it.
//
// # Tails
//
// A [Tail] is a view of the unconsumed part of a [Line], stored as an index
// into the line's element slice. Advancing a tail never copies the line, and
// any number of tails can walk the same line independently.
//
// # Identifiers
//
// Lines are named by input position using bijective base-26 letters: the
// first line is A, the 26th is Z, the 27th is AA, then AB and so on.
package redstone

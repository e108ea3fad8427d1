package redstone

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidName is returned by [ParseLineID] for strings that are not
// uppercase base-26 line names.
var ErrInvalidName = errors.New("invalid line name")

// LineID identifies a line by its zero-based input position.
type LineID int

// Name returns the letter name of the identifier: 0 is "A", 25 is "Z",
// 26 is "AA", 27 is "AB", 701 is "ZZ" and 702 is "AAA". Negative IDs have
// no name and render as "?".
func (id LineID) Name() string {
	if id < 0 {
		return "?"
	}
	var buf [16]byte
	i := len(buf)
	n := int(id) + 1
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:])
}

// String implements fmt.Stringer using [LineID.Name].
func (id LineID) String() string { return id.Name() }

// ParseLineID converts a letter name back into an identifier.
func ParseLineID(name string) (LineID, error) {
	if name == "" || len(name) > 12 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	n := 0
	for _, r := range name {
		if r < 'A' || r > 'Z' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidName, name)
		}
		n = n*26 + int(r-'A') + 1
	}
	return LineID(n - 1), nil
}

// JoinNames renders identifiers as a comma-separated list of names, the
// format of a calculator result line.
func JoinNames(ids []LineID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = id.Name()
	}
	return strings.Join(names, ",")
}

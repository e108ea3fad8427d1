package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// maxInputLine bounds a single scanned input line.
const maxInputLine = 1 << 20

// ReadLines reads every line from r. Lines are returned as read, including
// blank ones; [redstone.ParseAll] trims and skips them.
func ReadLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxInputLine)

	var lines []string
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}

// ReadFile reads input lines from path, or from stdin when path is "" or "-".
func ReadFile(path string) ([]string, error) {
	if path == "" || path == "-" {
		return ReadLines(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadLines(f)
}

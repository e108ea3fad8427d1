package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/redwire/pkg/errors"
)

// Write encodes r in the given format. For [FormatText] the result line and
// the diagnostics both go to w; use [WriteText] to split them.
func Write(w io.Writer, r *Report, format string) error {
	switch format {
	case FormatText, "":
		return WriteText(w, w, r)
	case FormatJSON:
		return WriteJSON(w, r)
	case FormatYAML:
		return WriteYAML(w, r)
	default:
		return errors.ValidateFormat(format, Formats)
	}
}

// WriteText writes the calculator output. A completed run writes its order
// as a single comma-separated line to out. Any other run writes one line per
// warning, a summary warning and the residual tick map, sorted by tick, to
// diag; nothing is written to out.
func WriteText(out, diag io.Writer, r *Report) error {
	if r.Completed() {
		_, err := fmt.Fprintln(out, strings.Join(r.Order, ","))
		return err
	}
	return WriteDiagnostics(diag, r)
}

// WriteDiagnostics writes the warnings and the residual tick map dump.
func WriteDiagnostics(w io.Writer, r *Report) error {
	var b strings.Builder
	for _, warn := range r.Warnings {
		fmt.Fprintf(&b, "Warning: invalid element in line '%s' at tick %d: %s\n", warn.Line, warn.Tick, warn.Remaining)
	}
	b.WriteString("Warning: Final tick does not contain all line-names or has non-empty tails.\n")
	b.WriteString("Final tick map:\n")
	for _, d := range r.Residual {
		fmt.Fprintf(&b, "Tick %d: %s\n", d.Tick, formatUpdates(d.Updates))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func formatUpdates(updates []Pending) string {
	parts := make([]string, len(updates))
	for i, u := range updates {
		parts[i] = fmt.Sprintf("('%s', '%s')", u.Line, u.Remaining)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// WriteJSON encodes r as indented JSON.
func WriteJSON(w io.Writer, r *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes r as YAML.
func WriteYAML(w io.Writer, r *Report) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// Marshal returns the compact JSON form used for caching and storage.
func Marshal(r *Report) ([]byte, error) {
	return json.Marshal(r)
}

// Unmarshal decodes a report produced by [Marshal] or [WriteJSON].
func Unmarshal(data []byte) (*Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &r, nil
}

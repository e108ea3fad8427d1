package errors

import "strings"

// Input limits applied by the HTTP API when none are configured.
const (
	DefaultMaxLines      = 1024
	DefaultMaxLineLength = 4096
)

// LineLimits bounds the size of a simulation request. Zero fields are
// unlimited.
type LineLimits struct {
	MaxLines      int  // Maximum number of non-blank lines
	MaxLineLength int  // Maximum length of a single line in bytes
	RequireLines  bool // Reject input without any non-blank line
}

// DefaultLineLimits returns the limits used by the HTTP API.
func DefaultLineLimits() LineLimits {
	return LineLimits{
		MaxLines:      DefaultMaxLines,
		MaxLineLength: DefaultMaxLineLength,
		RequireLines:  true,
	}
}

// ValidateLines checks raw input lines against limits before they are
// parsed.
//
// Content is never rejected here: text that is neither a repeater nor a
// comparator is parsed up to that point and reported by the simulation as a
// warning.
func ValidateLines(lines []string, limits LineLimits) error {
	count := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		count++

		if limits.MaxLineLength > 0 && len(trimmed) > limits.MaxLineLength {
			return New(ErrCodeInvalidInput, "line %d too long (max %d characters)", i+1, limits.MaxLineLength)
		}
	}

	if count == 0 && limits.RequireLines {
		return New(ErrCodeInvalidInput, "no input lines")
	}
	if limits.MaxLines > 0 && count > limits.MaxLines {
		return New(ErrCodeInvalidInput, "too many lines: %d (max %d)", count, limits.MaxLines)
	}
	return nil
}

// ValidateFormat checks an output format name against the supported set.
func ValidateFormat(format string, valid []string) error {
	for _, v := range valid {
		if format == v {
			return nil
		}
	}
	return New(ErrCodeInvalidFormat, "invalid format: %q (must be one of: %s)", format, strings.Join(valid, ", "))
}

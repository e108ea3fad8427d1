package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("run finished") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("run finished") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("run finished") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	newProgress(newLogger(&buf, log.InfoLevel)).done("Rendered timeline")

	out := buf.String()
	if !strings.Contains(out, "Rendered timeline (") || !strings.Contains(out, "s)") {
		t.Errorf("progress output = %q, want message with elapsed time", out)
	}
}

func TestLoggerContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("loggerFromContext should fall back to the default logger")
	}

	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)
	ctx := withLogger(context.Background(), custom)
	if got := loggerFromContext(ctx); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
}

func TestVerboseFlagEnablesDebug(t *testing.T) {
	isolate(t)

	_, stderr, err := run(t, "C\nC\n", "-v", "calc", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(stderr, "run finished") {
		t.Errorf("verbose run should log at debug level:\n%s", stderr)
	}
}

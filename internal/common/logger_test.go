package common

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"gputrace/internal/gfx"
)

func TestSeverityString(t *testing.T) {
	tests := []struct {
		severity Severity
		expected string
	}{
		{SeverityDebug, "DEBUG"},
		{SeverityInfo, "INFO"},
		{SeverityWarning, "WARNING"},
		{SeverityError, "ERROR"},
		{Severity(42), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			got := tt.severity.String()
			if got != tt.expected {
				t.Errorf("Severity.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in   string
		want Severity
	}{
		{"debug", SeverityDebug},
		{"trace", SeverityDebug},
		{"info", SeverityInfo},
		{"warn", SeverityWarning},
		{"error", SeverityError},
		{"fatal", SeverityError},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if err != nil {
			t.Fatalf("ParseSeverity(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("ParseSeverity(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, err := ParseSeverity("loud"); err == nil {
		t.Error("ParseSeverity(loud) expected error")
	}
}

func TestZeroLogger_Log(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZeroLogger(&buf, SeverityDebug)

	tests := []struct {
		name     string
		severity Severity
		message  string
		level    string
	}{
		{"Debug", SeverityDebug, "debug message", `"level":"debug"`},
		{"Info", SeverityInfo, "info message", `"level":"info"`},
		{"Warning", SeverityWarning, "warning message", `"level":"warn"`},
		{"Error", SeverityError, "error message", `"level":"error"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			logger.Log(tt.severity, tt.message)

			output := buf.String()
			if !strings.Contains(output, tt.message) {
				t.Errorf("Log output should contain %q, got: %s", tt.message, output)
			}
			if !strings.Contains(output, tt.level) {
				t.Errorf("Log output should contain %s, got: %s", tt.level, output)
			}
		})
	}
}

func TestZeroLogger_MinLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZeroLogger(&buf, SeverityWarning)

	logger.Debug("hidden debug")
	logger.Info("hidden info")
	if buf.Len() != 0 {
		t.Errorf("expected no output below min level, got: %s", buf.String())
	}

	logger.Warning("shown")
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("expected warning output, got: %s", buf.String())
	}
}

func TestZeroLogger_ErrorAndLogf(t *testing.T) {
	var buf bytes.Buffer
	logger := NewZeroLogger(&buf, SeverityDebug)

	logger.Error(nil)
	if buf.Len() != 0 {
		t.Errorf("Error(nil) should not log, got: %s", buf.String())
	}

	logger.Error(errors.New("decode failed"))
	if !strings.Contains(buf.String(), "decode failed") {
		t.Errorf("Error output missing message: %s", buf.String())
	}

	buf.Reset()
	logger.Logf(SeverityInfo, "packet %d of %d", 3, 7)
	if !strings.Contains(buf.String(), "packet 3 of 7") {
		t.Errorf("Logf output missing formatted message: %s", buf.String())
	}
}

func TestNoOpLogger(t *testing.T) {
	var l Logger = NewNoOpLogger()
	l.Log(SeverityError, "x")
	l.Logf(SeverityError, "%d", 1)
	l.Error(errors.New("x"))
	l.Debug("x")
	l.Info("x")
	l.Warning("x")
}

func TestErrorLogger(t *testing.T) {
	var buf bytes.Buffer
	el := NewErrorLogger(NewZeroLogger(&buf, SeverityDebug))
	if el.LastError() != nil {
		t.Fatal("fresh logger has an error")
	}

	el.Error(nil)
	el.Error(NewErrorMsg(gfx.ErrSevError, gfx.ErrInvalidFieldSpec, "width 0"))
	el.Error(fmt.Errorf("wrapped: %w", NewError(gfx.ErrSevError, gfx.ErrInvalidFieldSpec)))
	el.Error(errors.New("plain"))
	el.Info("still forwarded")

	if got := len(el.Errors()); got != 3 {
		t.Errorf("Errors() has %d entries, want 3", got)
	}
	if got := el.Count(gfx.ErrInvalidFieldSpec); got != 2 {
		t.Errorf("Count(InvalidFieldSpec) = %d, want 2", got)
	}
	if el.LastError().Error() != "plain" {
		t.Errorf("LastError() = %v", el.LastError())
	}
	if !strings.Contains(buf.String(), "width 0") || !strings.Contains(buf.String(), "still forwarded") {
		t.Errorf("output not forwarded: %s", buf.String())
	}

	if NewErrorLogger(nil).Logger == nil {
		t.Error("nil next not replaced")
	}
	if el.Zerolog() == nil {
		t.Error("Zerolog() lost the wrapped zerolog logger")
	}
	if NewErrorLogger(nil).Zerolog() != nil {
		t.Error("Zerolog() on a no-op logger is not nil")
	}
}

package log

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelString(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestParseLevel(t *testing.T) {
	if ParseLevel("debug") != LevelDebug {
		t.Error("ParseLevel(debug) != LevelDebug")
	}
	if ParseLevel("ERROR") != LevelError {
		t.Error("ParseLevel(ERROR) != LevelError")
	}
	if ParseLevel("bogus") != LevelInfo {
		t.Error("ParseLevel(bogus) should default to LevelInfo")
	}
}

func TestSimpleLoggerFiltersLevels(t *testing.T) {
	var buf bytes.Buffer
	l := NewSimpleLogger(&buf, LevelWarn)

	l.Debug("dropped")
	l.Info("dropped too")
	l.Warn("kept")
	l.Error("kept too")

	out := buf.String()
	if strings.Contains(out, "dropped") {
		t.Errorf("sub-level messages were logged: %q", out)
	}
	if !strings.Contains(out, "WARN kept") || !strings.Contains(out, "ERROR kept too") {
		t.Errorf("expected warn/error messages, got: %q", out)
	}
}

func TestSimpleLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := NewSimpleLogger(&buf, LevelDebug)

	l.Info("packing", String("file", "a.txt"), Int("chunks", 3), Bool("ok", true))

	out := buf.String()
	for _, want := range []string{"file=a.txt", "chunks=3", "ok=true"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
}

func TestWithFieldsPersists(t *testing.T) {
	var buf bytes.Buffer
	l := NewSimpleLogger(&buf, LevelDebug).WithFields(String("group", "a1b2"))

	l.Info("chunk written", Int("idx", 0))

	out := buf.String()
	if !strings.Contains(out, "group=a1b2") || !strings.Contains(out, "idx=0") {
		t.Errorf("expected persistent and call fields, got: %q", out)
	}
}

func TestDefaultLoggerIsNull(t *testing.T) {
	SetLogger(nil)
	// Should be a no-op, not a panic.
	Debug("nothing")
	Info("nothing")
	Warn("nothing")
	Error("nothing")
}

func TestSetAndGetLogger(t *testing.T) {
	var buf bytes.Buffer
	SetLogger(NewSimpleLogger(&buf, LevelInfo))
	defer SetLogger(nil)

	Info("hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Errorf("package-level Info did not reach configured logger: %q", buf.String())
	}
}

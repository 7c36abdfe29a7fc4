package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestStdLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelWarn)

	l.Info("hidden %d", 1)
	l.Warn("shown %d", 2)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "WARN shown 2") {
		t.Fatalf("missing warn line: %q", out)
	}
}

func TestStdLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, LevelDebug).WithField("user", "alice").WithFields(map[string]interface{}{"attempt": 2})

	l.Error("failed")

	if !strings.Contains(buf.String(), "ERROR failed attempt=2 user=alice") {
		t.Fatalf("unexpected line %q", buf.String())
	}
	fields := l.Fields()
	fields["user"] = "mallory"
	if l.Fields()["user"] != "alice" {
		t.Fatal("Fields must return a copy")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{"debug": LevelDebug, "INFO": LevelInfo, "warning": LevelWarn, "error": LevelError, "": LevelInfo}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

// Package logging provides a runtime.Logger for processes running outside Nakama.
package logging

import (
	"fmt"
	"io"
	"log"
	"sort"
	"strings"

	"github.com/heroiclabs/nakama-common/runtime"
)

// Level orders log severities.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = map[Level]string{
	LevelDebug: "DEBUG",
	LevelInfo:  "INFO",
	LevelWarn:  "WARN",
	LevelError: "ERROR",
}

// ParseLevel accepts debug, info, warn or error. Unknown values fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// StdLogger writes printf-style messages with sorted key=value fields.
type StdLogger struct {
	out    *log.Logger
	min    Level
	fields map[string]interface{}
}

// New returns a logger writing to w at min level and above.
func New(w io.Writer, min Level) *StdLogger {
	return &StdLogger{
		out: log.New(w, "", log.LstdFlags|log.LUTC),
		min: min,
	}
}

func (l *StdLogger) Debug(format string, v ...interface{}) { l.log(LevelDebug, format, v...) }
func (l *StdLogger) Info(format string, v ...interface{})  { l.log(LevelInfo, format, v...) }
func (l *StdLogger) Warn(format string, v ...interface{})  { l.log(LevelWarn, format, v...) }
func (l *StdLogger) Error(format string, v ...interface{}) { l.log(LevelError, format, v...) }

// WithField returns a child logger carrying key.
func (l *StdLogger) WithField(key string, v interface{}) runtime.Logger {
	return l.WithFields(map[string]interface{}{key: v})
}

// WithFields returns a child logger carrying fields on top of the parent's.
func (l *StdLogger) WithFields(fields map[string]interface{}) runtime.Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	for k, v := range l.fields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &StdLogger{out: l.out, min: l.min, fields: merged}
}

// Fields returns a copy of the attached fields.
func (l *StdLogger) Fields() map[string]interface{} {
	out := make(map[string]interface{}, len(l.fields))
	for k, v := range l.fields {
		out[k] = v
	}
	return out
}

func (l *StdLogger) log(level Level, format string, v ...interface{}) {
	if level < l.min {
		return
	}
	var b strings.Builder
	b.WriteString(levelNames[level])
	b.WriteByte(' ')
	fmt.Fprintf(&b, format, v...)

	keys := make([]string, 0, len(l.fields))
	for k := range l.fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, l.fields[k])
	}
	l.out.Print(b.String())
}

var _ runtime.Logger = (*StdLogger)(nil)

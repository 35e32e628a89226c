// pattern: Functional Core

package logging

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"
)

// LogEntry is a decoded log line.
type LogEntry struct {
	Timestamp time.Time
	Level     string // DEBUG, INFO, WARN, ERROR
	Scope     string // e.g. "registry", "tmux"
	Message   string
	Fields    map[string]any
}

// String renders the entry on one line with fields in key order.
func (e LogEntry) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s [%s] %s", e.Timestamp.Format("15:04:05"), e.Level, e.Scope, e.Message)
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		fmt.Fprintf(&sb, " %s=%v", k, e.Fields[k])
	}
	return sb.String()
}

// IsProblem reports whether the entry is a warning or an error.
func (e LogEntry) IsProblem() bool {
	return e.Level == "WARN" || e.Level == "ERROR"
}

// ParseLevel normalizes a log level string to uppercase.
// Returns "INFO" for unknown levels.
func ParseLevel(level string) string {
	switch strings.ToLower(level) {
	case "debug":
		return "DEBUG"
	case "warn", "warning":
		return "WARN"
	case "error":
		return "ERROR"
	default:
		return "INFO"
	}
}

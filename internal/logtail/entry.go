package logtail

import (
	"fmt"
	"sort"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Entry is one structured line of shelf's JSON log.
type Entry struct {
	Time    time.Time
	Level   string
	Logger  string
	Message string
	Fields  map[string]any
}

// Keys the encoder reserves for Entry's own fields.
var reservedKeys = map[string]bool{
	"ts": true, "level": true, "logger": true, "msg": true, "caller": true, "stacktrace": true,
}

// Parse decodes a JSON log line. Lines that are not JSON objects come back
// with ok=false.
func Parse(line string) (Entry, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "{") {
		return Entry{}, false
	}
	var raw map[string]any
	if err := json.UnmarshalFromString(line, &raw); err != nil {
		return Entry{}, false
	}
	entry := Entry{
		Level:   stringField(raw, "level"),
		Logger:  stringField(raw, "logger"),
		Message: stringField(raw, "msg"),
	}
	if ts := stringField(raw, "ts"); ts != "" {
		if t, err := time.Parse("2006-01-02T15:04:05.000Z0700", ts); err == nil {
			entry.Time = t
		} else if t, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			entry.Time = t
		}
	}
	for key, value := range raw {
		if reservedKeys[key] {
			continue
		}
		if entry.Fields == nil {
			entry.Fields = make(map[string]any)
		}
		entry.Fields[key] = value
	}
	return entry, true
}

// Format renders an entry as a single readable line:
//
//	2024-10-10 14:32:15 WARN [resolver] current status fetch failed – book_id=3 error=...
//
// Fields are sorted by key.
func Format(e Entry) string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.In(time.Local).Format("2006-01-02 15:04:05"))
		b.WriteString(" ")
	}
	level := strings.ToUpper(strings.TrimSpace(e.Level))
	if level == "" {
		level = "INFO"
	}
	b.WriteString(level)
	if logger := strings.TrimSpace(e.Logger); logger != "" {
		b.WriteString(" [")
		b.WriteString(logger)
		b.WriteString("]")
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		b.WriteString(" ")
		b.WriteString(msg)
	}
	if len(e.Fields) == 0 {
		return b.String()
	}
	keys := make([]string, 0, len(e.Fields))
	for key := range e.Fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	b.WriteString(" –")
	for _, key := range keys {
		fmt.Fprintf(&b, " %s=%v", key, formatValue(e.Fields[key]))
	}
	return b.String()
}

// FormatLines parses and formats every line, passing non-JSON lines through.
func FormatLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if entry, ok := Parse(line); ok {
			out = append(out, Format(entry))
			continue
		}
		out = append(out, line)
	}
	return out
}

func formatValue(v any) any {
	switch value := v.(type) {
	case float64:
		if value == float64(int64(value)) {
			return int64(value)
		}
	case []any, map[string]any:
		if s, err := json.MarshalToString(value); err == nil {
			return s
		}
	}
	return v
}

func stringField(raw map[string]any, key string) string {
	s, _ := raw[key].(string)
	return s
}

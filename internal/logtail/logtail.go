package logtail

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Read returns at most maxLines from the end of the file at path. A
// non-positive maxLines returns every line.
func Read(path string, maxLines int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if maxLines <= 0 {
		var lines []string
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read log: %w", err)
		}
		return lines, nil
	}

	ring := make([]string, maxLines)
	count := 0
	idx := 0
	for scanner.Scan() {
		ring[idx] = scanner.Text()
		idx = (idx + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	if count == maxLines {
		for i := 0; i < count; i++ {
			lines[i] = ring[(idx+i)%maxLines]
		}
	} else {
		copy(lines, ring[:count])
	}
	return lines, nil
}

// Entry is one structured log record written by slog's JSON handler.
type Entry struct {
	Time    time.Time
	Level   slog.Level
	Message string
	Attrs   map[string]any
	// Raw holds the original line when it was not valid JSON.
	Raw string
}

// Parse decodes a JSON log line. Lines that are not JSON objects come back
// as an INFO entry carrying Raw.
func Parse(line string) Entry {
	line = strings.TrimSpace(line)
	var fields map[string]any
	if err := json.Unmarshal([]byte(line), &fields); err != nil || fields == nil {
		return Entry{Level: slog.LevelInfo, Raw: line}
	}

	e := Entry{Level: slog.LevelInfo, Attrs: map[string]any{}}
	for k, v := range fields {
		switch k {
		case slog.TimeKey:
			if s, ok := v.(string); ok {
				e.Time, _ = time.Parse(time.RFC3339Nano, s)
			}
		case slog.LevelKey:
			if s, ok := v.(string); ok {
				var lvl slog.Level
				if lvl.UnmarshalText([]byte(s)) == nil {
					e.Level = lvl
				}
			}
		case slog.MessageKey:
			e.Message, _ = v.(string)
		default:
			e.Attrs[k] = v
		}
	}
	return e
}

// ReadEntries returns the last maxEntries records of the log at path.
func ReadEntries(path string, maxEntries int) ([]Entry, error) {
	lines, err := Read(path, maxEntries)
	if err != nil {
		return nil, err
	}
	lines = lo.Filter(lines, func(l string, _ int) bool { return strings.TrimSpace(l) != "" })
	return lo.Map(lines, func(l string, _ int) Entry { return Parse(l) }), nil
}

// AtLeast keeps entries at or above min.
func AtLeast(entries []Entry, min slog.Level) []Entry {
	return lo.Filter(entries, func(e Entry, _ int) bool { return e.Level >= min })
}

// Format renders an entry on one line: time, level, message, then the
// remaining attributes sorted by key.
func (e Entry) Format() string {
	if e.Raw != "" {
		return e.Raw
	}
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s %s", e.Level.String(), e.Message)

	keys := lo.Keys(e.Attrs)
	slices.Sort(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, formatValue(e.Attrs[k]))
	}
	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		if strings.ContainsAny(val, " \t") {
			return fmt.Sprintf("%q", val)
		}
		return val
	case float64:
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%g", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}

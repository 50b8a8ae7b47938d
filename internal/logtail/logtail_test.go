package logtail

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestRead(t *testing.T) {
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "test.log")

	var content strings.Builder
	var expectedAll []string
	for i := 1; i <= 10; i++ {
		line := fmt.Sprintf("Line %d", i)
		content.WriteString(line + "\n")
		expectedAll = append(expectedAll, line)
	}

	if err := os.WriteFile(logPath, []byte(content.String()), 0644); err != nil {
		t.Fatalf("failed to create test log file: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{name: "read all (0)", maxLines: 0, expected: expectedAll},
		{name: "read all (negative)", maxLines: -1, expected: expectedAll},
		{name: "read partial (5)", maxLines: 5, expected: expectedAll[5:]},
		{name: "read exactly all (10)", maxLines: 10, expected: expectedAll},
		{name: "read more than exists (20)", maxLines: 20, expected: expectedAll},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("Read = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "nope.log"), 5)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if got != nil {
		t.Fatalf("Read = %v, want nil", got)
	}
}

func TestParse_SlogJSON(t *testing.T) {
	line := `{"time":"2025-03-01T10:11:12.5Z","level":"WARN","msg":"description request failed","component":"describe","subject":"pano_456","retries":3}`
	e := Parse(line)

	if e.Level != slog.LevelWarn {
		t.Fatalf("Level = %v, want WARN", e.Level)
	}
	if e.Message != "description request failed" {
		t.Fatalf("Message = %q", e.Message)
	}
	want := time.Date(2025, 3, 1, 10, 11, 12, 500000000, time.UTC)
	if !e.Time.Equal(want) {
		t.Fatalf("Time = %v, want %v", e.Time, want)
	}
	if e.Attrs["subject"] != "pano_456" || e.Attrs["retries"] != float64(3) {
		t.Fatalf("Attrs = %v", e.Attrs)
	}
	if _, ok := e.Attrs["msg"]; ok {
		t.Fatal("msg should not be kept as an attribute")
	}

	formatted := e.Format()
	if !strings.HasSuffix(formatted, "WARN  description request failed component=describe retries=3 subject=pano_456") {
		t.Fatalf("Format = %q", formatted)
	}
}

func TestParse_PlainLine(t *testing.T) {
	e := Parse("  panic: something  ")
	if e.Raw != "panic: something" || e.Level != slog.LevelInfo {
		t.Fatalf("Parse = %+v", e)
	}
	if e.Format() != "panic: something" {
		t.Fatalf("Format = %q", e.Format())
	}
}

func TestFormatValue(t *testing.T) {
	cases := map[string]any{
		"plain":    "plain",
		`"a b"`:    "a b",
		"2":        float64(2),
		"2.5":      2.5,
		"true":     true,
		"map[a:1]": map[string]any{"a": 1},
		"<nil>":    nil,
	}
	for want, in := range cases {
		if got := formatValue(in); got != want {
			t.Errorf("formatValue(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestReadEntriesAndAtLeast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "streetlens.log")
	lines := []string{
		`{"time":"2025-03-01T10:00:00Z","level":"DEBUG","msg":"dispatching"}`,
		``,
		`{"time":"2025-03-01T10:00:01Z","level":"INFO","msg":"retrying"}`,
		`{"time":"2025-03-01T10:00:02Z","level":"ERROR","msg":"boom"}`,
	}
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	entries, err := ReadEntries(path, 0)
	if err != nil {
		t.Fatalf("ReadEntries returned error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}

	filtered := AtLeast(entries, slog.LevelInfo)
	if len(filtered) != 2 || filtered[0].Message != "retrying" || filtered[1].Level != slog.LevelError {
		t.Fatalf("AtLeast = %+v", filtered)
	}

	last, err := ReadEntries(path, 1)
	if err != nil {
		t.Fatalf("ReadEntries returned error: %v", err)
	}
	if len(last) != 1 || last[0].Message != "boom" {
		t.Fatalf("ReadEntries(1) = %+v", last)
	}
}

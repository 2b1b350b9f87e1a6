package logtail

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestRead(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ferry.log")

	var content strings.Builder
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&content, "Line %d\n", i)
	}
	if err := os.WriteFile(logPath, []byte(content.String()), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	tests := []struct {
		name     string
		maxLines int
		expected []string
	}{
		{"zero", 0, nil},
		{"last three", 3, []string{"Line 8", "Line 9", "Line 10"}},
		{"exact", 10, []string{"Line 1", "Line 2", "Line 3", "Line 4", "Line 5", "Line 6", "Line 7", "Line 8", "Line 9", "Line 10"}},
		{"more than file", 15, []string{"Line 1", "Line 2", "Line 3", "Line 4", "Line 5", "Line 6", "Line 7", "Line 8", "Line 9", "Line 10"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Read(logPath, tt.maxLines)
			if err != nil {
				t.Fatalf("Read returned error: %v", err)
			}
			if !reflect.DeepEqual(got, tt.expected) {
				t.Fatalf("Read(%d) = %v, want %v", tt.maxLines, got, tt.expected)
			}
		})
	}
}

func TestRead_MissingFile(t *testing.T) {
	got, err := Read(filepath.Join(t.TempDir(), "missing.log"), 5)
	if err != nil || got != nil {
		t.Fatalf("Read missing = %v, %v; want nil, nil", got, err)
	}
}

func TestParse(t *testing.T) {
	e := Parse("2024/03/05 10:11:12 api request failed: GET /items: boom")
	if e.Time.IsZero() || e.Time.Year() != 2024 || e.Time.Second() != 12 {
		t.Fatalf("Parse time = %v, want 2024-03-05 10:11:12", e.Time)
	}
	if e.Message != "api request failed: GET /items: boom" {
		t.Fatalf("Parse message = %q", e.Message)
	}
	if !e.Failed() {
		t.Fatalf("Failed() = false, want true")
	}

	plain := Parse("no timestamp here")
	if !plain.Time.IsZero() || plain.Message != "no timestamp here" || plain.Failed() {
		t.Fatalf("Parse plain = %#v", plain)
	}
}

func TestTail_SkipsBlankLines(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "ferry.log")
	body := "2024/01/01 00:00:01 poll failed: items: down\n\n2024/01/01 00:00:03 api request failed: GET /files: x\n"
	if err := os.WriteFile(logPath, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	entries, err := Tail(logPath, 10)
	if err != nil {
		t.Fatalf("Tail returned error: %v", err)
	}
	if len(entries) != 2 || !strings.HasPrefix(entries[1].Message, "api request failed") {
		t.Fatalf("Tail = %#v, want 2 entries", entries)
	}
}

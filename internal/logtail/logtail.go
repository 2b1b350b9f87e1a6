package logtail

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
)

// stdLayout matches log.LstdFlags output ("2006/01/02 15:04:05 ").
const stdLayout = "2006/01/02 15:04:05"

// Entry is one diagnostics log line.
type Entry struct {
	Time    time.Time // zero when the line carries no timestamp
	Message string
}

// Failed reports whether the entry records a failed API call or poll.
func (e Entry) Failed() bool {
	return strings.Contains(e.Message, "failed")
}

// Read returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Read(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		if count < maxLines {
			count++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	start := 0
	if count == maxLines {
		start = next
	}
	for i := range count {
		lines[i] = ring[(start+i)%maxLines]
	}
	return lines, nil
}

// Tail reads the last maxLines of a diagnostics log and parses each line.
func Tail(path string, maxLines int) ([]Entry, error) {
	lines, err := Read(path, maxLines)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		entries = append(entries, Parse(line))
	}
	return entries, nil
}

// Parse splits a log.LstdFlags-formatted line into timestamp and message.
// Lines without a leading timestamp are kept whole.
func Parse(line string) Entry {
	if len(line) > len(stdLayout) && line[len(stdLayout)] == ' ' {
		if ts, err := time.ParseInLocation(stdLayout, line[:len(stdLayout)], time.Local); err == nil {
			return Entry{Time: ts, Message: line[len(stdLayout)+1:]}
		}
	}
	return Entry{Message: line}
}

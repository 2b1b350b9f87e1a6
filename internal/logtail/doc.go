// Package logtail reads the tail of ferry's diagnostics log.
//
// Failed API calls and poll failures are appended to <log_dir>/ferry.log in
// log.LstdFlags format. The UI's diagnostics view calls Tail on every tick to
// show the most recent entries.
//
// Read uses a ring buffer so memory stays O(maxLines) regardless of file
// size, and returns lines in chronological order. A missing file is not an
// error; it simply yields no lines.
package logtail

package parser

import (
	"regexp"
	"strings"
)

const (
	// CronMarker identifies the host's scheduled-task entry point in a backtrace.
	CronMarker = "admin/cli/cron.php"

	// DMLMarker identifies frames inside the host's database abstraction layer.
	DMLMarker = "lib/dml"
)

var (
	bulletPrefixRegex = regexp.MustCompile(`^\*\s*`)
	lineOfPathRegex   = regexp.MustCompile(`^(line\s+\d+\s+of\s+[^:]+):.*$`)
)

// IsCron reports whether the backtrace was captured during a CRON run.
func IsCron(backtrace string) bool {
	if backtrace == "" {
		return false
	}
	return strings.Contains(backtrace, CronMarker)
}

// OriginLine extracts the frame that best explains where a statement came from.
//
// It looks for the first line outside the database layer at index i and uses
// the line at i+1, but only when a line at i+2 also exists; otherwise it
// falls back to the first line. This lookahead is kept exactly as the log
// viewers have always shown it.
func OriginLine(backtrace string) string {
	if backtrace == "" {
		return "-"
	}

	var lines []string
	for _, l := range lineBreakRegex.Split(backtrace, -1) {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return "-"
	}

	idx := 0
	for i, l := range lines {
		if !strings.Contains(l, DMLMarker) {
			idx = i
			break
		}
	}

	candidate := lines[0]
	if idx+2 < len(lines) {
		candidate = lines[idx+1]
	}

	candidate = bulletPrefixRegex.ReplaceAllString(candidate, "")
	candidate = lineOfPathRegex.ReplaceAllString(candidate, "$1")
	return candidate
}

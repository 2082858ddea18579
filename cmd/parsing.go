package cmd

import (
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const (
	// DateTimeFormat is the expected format for the --now flag.
	DateTimeFormat = "2006-01-02 15:04:05"
)

// parseNow parses the --now flag in loc. An empty string means the
// current time.
func parseNow(s string, loc *time.Location) (time.Time, error) {
	if s == "" {
		return time.Now().In(loc), nil
	}
	t, err := time.ParseInLocation(DateTimeFormat, s, loc)
	if err != nil {
		return time.Time{}, errors.Errorf("invalid --now datetime format. Expected: %s, Got: %s", DateTimeFormat, s)
	}
	return t, nil
}

// loadLocation resolves the configured timezone. Empty and "Local" mean the
// system zone.
func loadLocation(name string) (*time.Location, error) {
	if name == "" || strings.EqualFold(name, "local") {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid timezone %q", name)
	}
	return loc, nil
}

// parseID parses a log entry id argument.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.Errorf("invalid log entry id %q", s)
	}
	return id, nil
}

// parseIDs parses every id argument, keeping the first occurrence of
// duplicates.
func parseIDs(args []string) ([]int64, error) {
	seen := make(map[int64]bool, len(args))
	ids := make([]int64, 0, len(args))
	for _, a := range args {
		id, err := parseID(a)
		if err != nil {
			return nil, err
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids, nil
}

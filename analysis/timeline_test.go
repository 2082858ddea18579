package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var timelineNow = time.Date(2026, 10, 17, 15, 30, 0, 0, time.UTC)

func at(day, hour, min, sec int) int64 {
	return time.Date(2026, 10, day, hour, min, sec, 0, time.UTC).Unix()
}

func TestTimelinePeriod(t *testing.T) {
	from, to := TimelinePeriod(timelineNow, time.UTC)
	assert.Equal(t, time.Date(2026, 10, 11, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC), to)
}

func TestBuildTimeline(t *testing.T) {
	executions := []Execution{
		{ID: 1, TimeLogged: at(17, 12, 0, 0), ExecTime: 6.5},
		{ID: 2, TimeLogged: at(17, 6, 0, 0), ExecTime: 4000},
		{ID: 3, TimeLogged: at(12, 0, 0, 0), ExecTime: 100},
		{ID: 4, TimeLogged: at(10, 23, 59, 59), ExecTime: 9}, // before the period
	}

	tl := BuildTimeline(timelineNow, time.UTC, executions)
	require.Len(t, tl.Days, 2)

	today := tl.Days[0]
	assert.Equal(t, "2026-10-17", today.Day)
	assert.Equal(t, "17 October 2026", today.Label)
	require.Len(t, today.Segments, 2)
	assert.Equal(t, Segment{Left: 25, Width: 280, Title: "06:00:00 • 4000.000s"}, today.Segments[0])
	assert.Equal(t, Segment{Left: 50, Width: 3, Title: "12:00:00 • 6.500s"}, today.Segments[1])

	older := tl.Days[1]
	assert.Equal(t, "2026-10-12", older.Day)
	assert.Equal(t, []Segment{{Left: 0, Width: 10, Title: "00:00:00 • 100.000s"}}, older.Segments)

	assert.Equal(t, 3, tl.TotalCount)
	assert.InDelta(t, 4106.5, tl.TotalSeconds, 1e-9)
	assert.Equal(t, "1 hour 8 minutes 26 seconds", tl.TotalTime)
	assert.Equal(t, 3, tl.Stats.Count)
	assert.Equal(t, 100*time.Second, tl.Stats.Median)
	assert.Equal(t, 0, tl.Distribution["<= 5s"])
	assert.Equal(t, 1, tl.Distribution["5s - 20s"])
	assert.Equal(t, 2, tl.Distribution["> 60s"])
}

func TestBuildTimelineEmpty(t *testing.T) {
	tl := BuildTimeline(timelineNow, time.UTC, nil)
	assert.Empty(t, tl.Days)
	assert.Equal(t, 0, tl.TotalCount)
	assert.Equal(t, "0 seconds", tl.TotalTime)
}

func TestBuildTimelineUsesLocation(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*3600)
	// 01:00 UTC on the 17th is still the 16th in UTC-3.
	tl := BuildTimeline(timelineNow, loc, []Execution{{TimeLogged: at(17, 1, 0, 0), ExecTime: 1}})
	require.Len(t, tl.Days, 1)
	assert.Equal(t, "2026-10-16", tl.Days[0].Day)
	assert.Equal(t, "22:00:00 • 1.000s", tl.Days[0].Segments[0].Title)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0 seconds"},
		{1, "1 second"},
		{59, "59 seconds"},
		{60, "1 minute 0 seconds"},
		{3600, "1 hour 0 minutes 0 seconds"},
		{90061, "1 day 1 hour 1 minute 1 second"},
		{2 * 86400, "2 days 0 hours 0 minutes 0 seconds"},
		{-5, "0 seconds"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatDuration(tt.seconds), "%d", tt.seconds)
	}
}

func TestCalculateDurationStats(t *testing.T) {
	stats := CalculateDurationStats([]time.Duration{4 * time.Second, time.Second, 3 * time.Second, 2 * time.Second})
	assert.Equal(t, DurationStats{
		Count:  4,
		Min:    time.Second,
		Max:    4 * time.Second,
		Avg:    2500 * time.Millisecond,
		Median: 2500 * time.Millisecond,
	}, stats)
	assert.Equal(t, DurationStats{}, CalculateDurationStats(nil))
}

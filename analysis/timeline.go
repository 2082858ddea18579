package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

const (
	secondsPerDay = 86400

	// Timeline bar scale: 0.1 px per second of execution, bounded.
	TimelineSecPx    = 0.1
	timelineMinWidth = 3
	timelineMaxWidth = 280
	timelineDays     = 7
)

// Execution is one occurrence of a SQL text, as fed to the timeline.
type Execution struct {
	ID         int64   `db:"id" json:"id"`
	TimeLogged int64   `db:"timelogged" json:"timelogged"`
	ExecTime   float64 `db:"exectime" json:"exectime"`
}

// Segment is a single execution drawn on its day line.
type Segment struct {
	Left  float64 `json:"left"`  // percent of the day elapsed
	Width int     `json:"width"` // pixels
	Title string  `json:"title"`
}

// Day is a calendar day bucket of the timeline.
type Day struct {
	Day      string    `json:"day"` // YYYY-MM-DD
	Label    string    `json:"label"`
	Segments []Segment `json:"segments"`
}

// Timeline is the seven-day execution view of one SQL text.
type Timeline struct {
	Days         []Day          `json:"days"` // newest first, empty days omitted
	TotalCount   int            `json:"totalcount"`
	TotalSeconds float64        `json:"totalseconds"`
	TotalTime    string         `json:"totaltime"`
	SecPx        float64        `json:"secpx"`
	Stats        DurationStats  `json:"stats"`
	Distribution map[string]int `json:"distribution"`
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// dayStarts returns the midnights of the last seven days, oldest first.
func dayStarts(now time.Time, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}
	today := midnight(now, loc)
	starts := make([]time.Time, 0, timelineDays)
	for i := timelineDays - 1; i >= 0; i-- {
		starts = append(starts, today.AddDate(0, 0, -i))
	}
	return starts
}

// TimelinePeriod returns the half-open range [from, to) covered by the
// timeline: six days before today's midnight up to tomorrow's midnight.
func TimelinePeriod(now time.Time, loc *time.Location) (from, to time.Time) {
	starts := dayStarts(now, loc)
	return starts[0], starts[len(starts)-1].AddDate(0, 0, 1)
}

// BuildTimeline buckets executions into the seven day lines ending today.
// Executions outside the period are ignored.
func BuildTimeline(now time.Time, loc *time.Location, executions []Execution) Timeline {
	if loc == nil {
		loc = time.Local
	}
	starts := dayStarts(now, loc)
	buckets := make(map[int64]*Day, len(starts))
	for _, s := range starts {
		buckets[s.Unix()] = &Day{
			Day:   s.Format("2006-01-02"),
			Label: s.Format("2 January 2006"),
		}
	}

	tl := Timeline{SecPx: TimelineSecPx}
	var durations []time.Duration
	for _, e := range executions {
		logged := time.Unix(e.TimeLogged, 0).In(loc)
		start := midnight(logged, loc)
		b, ok := buckets[start.Unix()]
		if !ok {
			continue
		}

		sec := e.TimeLogged - start.Unix()
		if sec < 0 {
			sec = 0
		}
		if sec > secondsPerDay-1 {
			sec = secondsPerDay - 1
		}

		width := int(math.Round(e.ExecTime * TimelineSecPx))
		if width < timelineMinWidth {
			width = timelineMinWidth
		}
		if width > timelineMaxWidth {
			width = timelineMaxWidth
		}

		b.Segments = append(b.Segments, Segment{
			Left:  float64(sec) / secondsPerDay * 100,
			Width: width,
			Title: fmt.Sprintf("%s • %.3fs", logged.Format("15:04:05"), e.ExecTime),
		})
		tl.TotalCount++
		tl.TotalSeconds += e.ExecTime
		durations = append(durations, time.Duration(e.ExecTime*float64(time.Second)))
	}

	for i := len(starts) - 1; i >= 0; i-- {
		b := buckets[starts[i].Unix()]
		if len(b.Segments) == 0 {
			continue
		}
		sort.SliceStable(b.Segments, func(x, y int) bool {
			return b.Segments[x].Left < b.Segments[y].Left
		})
		tl.Days = append(tl.Days, *b)
	}

	tl.TotalTime = FormatDuration(int64(tl.TotalSeconds))
	tl.Stats = CalculateDurationStats(durations)
	tl.Distribution = CalculateDurationDistribution(durations)
	return tl
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}

// FormatDuration renders whole seconds as "2 days 3 hours 0 minutes 5 seconds".
// Larger units only appear once they, or a larger one, are non-zero.
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	days := seconds / secondsPerDay
	seconds -= days * secondsPerDay
	hours := seconds / 3600
	seconds -= hours * 3600
	minutes := seconds / 60
	seconds -= minutes * 60

	var parts []string
	if days > 0 {
		parts = append(parts, plural(days, "day"))
	}
	if hours > 0 || days > 0 {
		parts = append(parts, plural(hours, "hour"))
	}
	if minutes > 0 || hours > 0 || days > 0 {
		parts = append(parts, plural(minutes, "minute"))
	}
	parts = append(parts, plural(seconds, "second"))
	return strings.Join(parts, " ")
}

package output

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/Alain-L/slowq/analysis"
)

const histogramWidth = 40

// stripWidth is the number of cells of a day strip; one cell is 30 minutes.
const stripWidth = 48

// hourOfDayLabels are the six 4-hour buckets of computeHourOfDayHistogram.
var hourOfDayLabels = []string{
	"00:00 - 04:00",
	"04:00 - 08:00",
	"08:00 - 12:00",
	"12:00 - 16:00",
	"16:00 - 20:00",
	"20:00 - 24:00",
}

// scaleFor returns the factor that keeps the longest bar within histogramWidth.
func scaleFor(data map[string]int) int {
	maxValue := 0
	for _, v := range data {
		if v > maxValue {
			maxValue = v
		}
	}
	scaleFactor := int(math.Ceil(float64(maxValue) / float64(histogramWidth)))
	if scaleFactor < 1 {
		scaleFactor = 1
	}
	return scaleFactor
}

// computeHourOfDayHistogram counts the timeline executions per 4-hour bucket
// of the day, all days combined.
//
// Returns:
//   - histogram: map of time range labels to execution count
//   - unit: "exec"
//   - scaleFactor: for proportional display (max bar width = 40 chars)
func computeHourOfDayHistogram(t analysis.Timeline) (map[string]int, string, int) {
	if t.TotalCount == 0 {
		return nil, "", 0
	}

	histogram := make(map[string]int, len(hourOfDayLabels))
	for _, label := range hourOfDayLabels {
		histogram[label] = 0
	}
	for _, day := range t.Days {
		for _, seg := range day.Segments {
			i := int(seg.Left / 100 * float64(len(hourOfDayLabels)))
			if i >= len(hourOfDayLabels) {
				i = len(hourOfDayLabels) - 1
			}
			if i < 0 {
				i = 0
			}
			histogram[hourOfDayLabels[i]]++
		}
	}
	return histogram, "exec", scaleFor(histogram)
}

// computeDurationHistogram returns the execution time distribution of the
// timeline over analysis.DistributionBuckets.
func computeDurationHistogram(t analysis.Timeline) (map[string]int, string, int) {
	if t.TotalCount == 0 {
		return nil, "", 0
	}
	histogram := make(map[string]int, len(analysis.DistributionBuckets))
	for _, label := range analysis.DistributionBuckets {
		histogram[label] = t.Distribution[label]
	}
	return histogram, "exec", scaleFor(histogram)
}

// timelineStrip draws one day as stripWidth half-hour cells, marking the
// cells in which the query started at least once.
func timelineStrip(day analysis.Day) string {
	cells := make([]rune, stripWidth)
	for i := range cells {
		cells[i] = '·'
	}
	for _, seg := range day.Segments {
		i := int(seg.Left / 100 * stripWidth)
		if i >= stripWidth {
			i = stripWidth - 1
		}
		if i < 0 {
			i = 0
		}
		cells[i] = '■'
	}
	return string(cells)
}

// stripAxis is the hour ruler printed under the day strips.
func stripAxis() string {
	var b strings.Builder
	for h := 0; h < 24; h += 6 {
		label := fmt.Sprintf("%02dh", h)
		b.WriteString(label)
		b.WriteString(strings.Repeat(" ", 12-len(label)))
	}
	return strings.TrimRight(b.String(), " ")
}

// histogramLines renders the bars of a histogram in label order.
func histogramLines(data map[string]int, unit string, scaleFactor int, labels []string) []string {
	if scaleFactor <= 0 {
		scaleFactor = 1
	}
	width := 0
	for _, label := range labels {
		if len(label) > width {
			width = len(label)
		}
	}

	lines := make([]string, 0, len(labels))
	for _, label := range labels {
		v := data[label]
		barLen := v / scaleFactor
		if v > 0 && barLen == 0 {
			barLen = 1
		}
		valueStr := fmt.Sprintf("%d %s", v, unit)
		if v == 0 {
			valueStr = "-"
		}
		lines = append(lines, fmt.Sprintf("%*s | %s %s", width, label, strings.Repeat("■", barLen), valueStr))
	}
	return lines
}

// printHistogram writes a titled histogram in plain text.
func printHistogram(w io.Writer, data map[string]int, title, unit string, scaleFactor int, labels []string) {
	bold, reset := styles(w)
	fmt.Fprintln(w, bold+title+reset)
	fmt.Fprintln(w)
	if len(data) == 0 {
		fmt.Fprintln(w, "  (No data available)")
		return
	}
	for _, line := range histogramLines(data, unit, scaleFactor, labels) {
		fmt.Fprintln(w, "  "+line)
	}
}

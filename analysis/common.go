package analysis

import (
	"sort"
	"time"
)

// DurationStats contains statistical information about a set of execution times.
type DurationStats struct {
	Count  int           `json:"count"`
	Min    time.Duration `json:"min"`
	Max    time.Duration `json:"max"`
	Avg    time.Duration `json:"avg"`
	Median time.Duration `json:"median"`
}

// CalculateDurationStats computes min, max, avg, and median for a set of durations.
func CalculateDurationStats(durations []time.Duration) DurationStats {
	if len(durations) == 0 {
		return DurationStats{}
	}

	min := durations[0]
	max := durations[0]
	var sum time.Duration

	for _, d := range durations {
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
		sum += d
	}

	return DurationStats{
		Count:  len(durations),
		Min:    min,
		Max:    max,
		Avg:    sum / time.Duration(len(durations)),
		Median: CalculateMedian(durations),
	}
}

// CalculateMedian calculates the median duration from a slice of durations.
func CalculateMedian(durations []time.Duration) time.Duration {
	if len(durations) == 0 {
		return 0
	}

	sorted := make([]time.Duration, len(durations))
	copy(sorted, durations)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i] < sorted[j]
	})

	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// SlowThresholds are the execution-time limits, in seconds, the performance
// check reports on.
var SlowThresholds = []int{5, 20, 40, 60}

// DistributionBuckets lists the labels of CalculateDurationDistribution in
// display order.
var DistributionBuckets = []string{"<= 5s", "5s - 20s", "20s - 40s", "40s - 60s", "> 60s"}

// CalculateDurationDistribution groups durations into the slow thresholds.
func CalculateDurationDistribution(durations []time.Duration) map[string]int {
	dist := make(map[string]int, len(DistributionBuckets))
	for _, b := range DistributionBuckets {
		dist[b] = 0
	}

	for _, d := range durations {
		switch {
		case d <= 5*time.Second:
			dist["<= 5s"]++
		case d <= 20*time.Second:
			dist["5s - 20s"]++
		case d <= 40*time.Second:
			dist["20s - 40s"]++
		case d <= 60*time.Second:
			dist["40s - 60s"]++
		default:
			dist["> 60s"]++
		}
	}

	return dist
}

// Package aggregate holds the pure summaries computed over an event window.
// Inputs are expected newest-first; none of the functions mutate them.
package aggregate

import (
	"math"
	"slices"
	"time"

	events "site-analytics-service/internal/events/core/domain"
	"site-analytics-service/internal/metrics/core/domain"
)

func Count(evs []events.Event, f events.EventFilter) int64 {
	var n int64
	for _, e := range evs {
		if f.Matches(e) {
			n++
		}
	}
	return n
}

// TopN groups evs by field and returns at most n entries, highest count first.
// Equal counts keep the order in which the values were first seen.
func TopN(evs []events.Event, field domain.Field, n int, excludeEmpty bool) []domain.ValueCount {
	if n <= 0 {
		return []domain.ValueCount{}
	}

	index := make(map[string]int)
	counts := make([]domain.ValueCount, 0)
	for _, e := range evs {
		v := field.Value(e)
		if excludeEmpty && v == "" {
			continue
		}
		i, ok := index[v]
		if !ok {
			i = len(counts)
			index[v] = i
			counts = append(counts, domain.ValueCount{Value: v})
		}
		counts[i].Count++
	}

	slices.SortStableFunc(counts, func(a, b domain.ValueCount) int {
		switch {
		case a.Count > b.Count:
			return -1
		case a.Count < b.Count:
			return 1
		}
		return 0
	})

	if len(counts) > n {
		counts = counts[:n]
	}
	return counts
}

// DailyTimeline counts events per calendar date in loc, oldest date first.
// Dates without events are absent.
func DailyTimeline(evs []events.Event, loc *time.Location) []domain.DayCount {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[string]int64)
	for _, e := range evs {
		byDay[e.Timestamp.In(loc).Format(time.DateOnly)]++
	}

	days := make([]string, 0, len(byDay))
	for d := range byDay {
		days = append(days, d)
	}
	slices.Sort(days)

	out := make([]domain.DayCount, 0, len(days))
	for _, d := range days {
		out = append(out, domain.DayCount{Date: d, Count: byDay[d]})
	}
	return out
}

// AverageNumeric is the mean of additional_data[key] over evs, rounded to two
// decimals. Events where the key is missing or not a number are skipped.
// It returns 0 when nothing qualifies.
func AverageNumeric(evs []events.Event, key string) float64 {
	var (
		sum float64
		n   int
	)
	for _, e := range evs {
		v, ok := e.AdditionalData.Float(key)
		if !ok {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0
	}
	return Round2(sum / float64(n))
}

func UniqueCount(evs []events.Event, field domain.Field, excludeEmpty bool) int64 {
	seen := make(map[string]struct{})
	for _, e := range evs {
		v := field.Value(e)
		if excludeEmpty && v == "" {
			continue
		}
		seen[v] = struct{}{}
	}
	return int64(len(seen))
}

func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Package aggregate derives dashboard statistics from an alert snapshot.
// Everything is recomputed per call; no state is kept between requests.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"github.com/telhawk-systems/telhawk-copilot/internal/models"
)

// Severity thresholds on rule.level.
const (
	HighLevel   = 10
	MediumLevel = 7
)

// TopN is the number of descriptions reported on the dashboard.
const TopN = 5

// BucketLayout formats hour bucket labels.
const BucketLayout = "2006-01-02 15:00"

// Categorize maps a rule level to a severity category. Alerts without a
// numeric level are Low.
func Categorize(alert models.Alert) models.Category {
	level, ok := alert.Level()
	if !ok {
		return models.CategoryLow
	}
	switch {
	case level >= HighLevel:
		return models.CategoryHigh
	case level >= MediumLevel:
		return models.CategoryMedium
	default:
		return models.CategoryLow
	}
}

// TopDescriptions returns the n most frequent descriptions. Ties keep the
// order in which descriptions were first seen.
func TopDescriptions(descriptions []string, n int) []models.TopEntry {
	counts := make(map[string]int, len(descriptions))
	var order []string
	for _, d := range descriptions {
		if _, seen := counts[d]; !seen {
			order = append(order, d)
		}
		counts[d]++
	}

	entries := make([]models.TopEntry, len(order))
	for i, d := range order {
		entries[i] = models.TopEntry{Description: d, Count: counts[d]}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Count > entries[j].Count
	})

	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}

// timestampLayouts cover the ISO-8601 shapes seen in alert feeds, including
// Wazuh's numeric offset without a colon.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999-0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO-8601 timestamp, keeping its own offset.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// HourBucket truncates a timestamp to its hour label. The label is in the
// timestamp's own offset, not converted to UTC.
func HourBucket(s string) (string, bool) {
	t, ok := ParseTimestamp(s)
	if !ok {
		return "", false
	}
	return t.Format(BucketLayout), true
}

// HourlySeries counts alerts per hour, sorted by label. Alerts without a
// parsable timestamp are left out.
func HourlySeries(alerts []models.Alert) models.TimeSeries {
	counts := make(map[string]int)
	for _, a := range alerts {
		ts, ok := a.Timestamp()
		if !ok {
			continue
		}
		if bucket, ok := HourBucket(ts); ok {
			counts[bucket]++
		}
	}

	series := models.TimeSeries{
		Labels: make([]string, 0, len(counts)),
		Data:   make([]int, 0, len(counts)),
	}
	for label := range counts {
		series.Labels = append(series.Labels, label)
	}
	sort.Strings(series.Labels)
	for _, label := range series.Labels {
		series.Data = append(series.Data, counts[label])
	}
	return series
}

// Summarize builds the dashboard payload: every alert with its category,
// the top descriptions and the hourly series.
func Summarize(alerts []models.Alert) models.AlertsResponse {
	categorized := make([]models.Alert, len(alerts))
	descriptions := make([]string, len(alerts))
	for i, a := range alerts {
		categorized[i] = a.WithCategory(Categorize(a))
		descriptions[i] = a.Description()
	}

	return models.AlertsResponse{
		Alerts:     categorized,
		Top5Alerts: TopDescriptions(descriptions, TopN),
		TimeSeries: HourlySeries(alerts),
	}
}

// CategoryCounts tallies alerts per category for CLI summaries.
func CategoryCounts(alerts []models.Alert) map[models.Category]int {
	counts := map[models.Category]int{
		models.CategoryHigh:   0,
		models.CategoryMedium: 0,
		models.CategoryLow:    0,
	}
	for _, a := range alerts {
		counts[Categorize(a)]++
	}
	return counts
}

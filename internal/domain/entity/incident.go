// Package entity defines the core domain types of the status dashboard:
// feed entries, incidents, the per-day aggregation and the chart series
// derived from them. All values are created fresh for every evaluation.
package entity

import "time"

// DisplayDateLayout formats an incident's date as "MMM DD, YYYY".
const DisplayDateLayout = "Jan 02, 2006"

// TimePlaceholder stands in for a start or end time that could not be extracted.
const TimePlaceholder = "N/A"

// RawEntry is one item of the upstream status feed before filtering.
type RawEntry struct {
	Title     string
	Updated   string
	UpdatedAt time.Time
	Content   string
}

// Validate reports the first missing element of the entry. An empty title
// is allowed: the feed parser cannot tell it from an absent one, and the
// entry still counts towards the status.
func (e RawEntry) Validate() error {
	switch {
	case e.Updated == "":
		return &ValidationError{Field: "updated", Message: "required"}
	case e.UpdatedAt.IsZero():
		return &ValidationError{Field: "updated", Message: "invalid timestamp " + e.Updated}
	}
	return nil
}

// Incident is a retained feed entry with its display date and time range.
type Incident struct {
	Title      string    `json:"title"`
	UpdatedRaw string    `json:"updated"`
	Updated    time.Time `json:"updated_at"`
	Date       string    `json:"date"`
	TimeRange  string    `json:"time_range"`
}

// Status is the derived health of the upstream service.
type Status string

const (
	StatusOperational Status = "OPERATIONAL"
	StatusIssues      Status = "ISSUES"
)

// Label returns the human readable banner text for the status.
func (s Status) Label() string {
	if s == StatusIssues {
		return "Experiencing issues ⚠️"
	}
	return "All Systems Operational"
}

// Color returns the CSS class used to paint the status banner.
func (s Status) Color() string {
	if s == StatusIssues {
		return "bg-red-500"
	}
	return "bg-green-500"
}

// DateCount is a single (date, count) pair.
type DateCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// DateCounts maps display dates to incident counts and remembers the order
// in which each date was first seen. The zero value is ready to use.
type DateCounts struct {
	order  []string
	counts map[string]int
}

// Add increments the count for date, appending it to the key order on first sight.
func (d *DateCounts) Add(date string) {
	if d.counts == nil {
		d.counts = make(map[string]int)
	}
	if _, ok := d.counts[date]; !ok {
		d.order = append(d.order, date)
	}
	d.counts[date]++
}

// Get returns the count for date (zero if absent).
func (d DateCounts) Get(date string) int {
	return d.counts[date]
}

// Keys returns the dates in first-seen order.
func (d DateCounts) Keys() []string {
	keys := make([]string, len(d.order))
	copy(keys, d.order)
	return keys
}

// Len returns the number of distinct dates.
func (d DateCounts) Len() int {
	return len(d.order)
}

// Total returns the sum of all counts.
func (d DateCounts) Total() int {
	total := 0
	for _, c := range d.counts {
		total += c
	}
	return total
}

// Entries returns the pairs in first-seen order.
func (d DateCounts) Entries() []DateCount {
	entries := make([]DateCount, 0, len(d.order))
	for _, date := range d.order {
		entries = append(entries, DateCount{Date: date, Count: d.counts[date]})
	}
	return entries
}

// AggregationResult is the per-evaluation summary of the retained incidents.
type AggregationResult struct {
	CountByDate   DateCounts
	CurrentStatus Status
}

package incident

import (
	"fmt"
	"strings"
	"time"

	"ghstatus-dashboard/internal/domain/entity"

	"github.com/mmcdole/gofeed/atom"
)

// SkippedEntry records a feed entry that could not be turned into an incident.
type SkippedEntry struct {
	Index int
	Err   error
}

// ParseResult is the outcome of parsing one feed document.
type ParseResult struct {
	Incidents   []entity.Incident
	Skipped     []SkippedEntry
	WindowStart time.Time
	Entries     int
}

// WindowStart returns the first instant of the month before now, in loc.
// Incidents must be strictly after it to be retained.
func WindowStart(now time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	n := now.In(loc)
	return time.Date(n.Year(), n.Month()-1, 1, 0, 0, 0, 0, loc)
}

// ReadEntries decodes an Atom document into raw entries, in document order.
// Entries missing a required element come back as SkippedEntry values instead.
func ReadEntries(raw string) ([]entity.RawEntry, []SkippedEntry, error) {
	fp := &atom.Parser{}
	feed, err := fp.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidFeedFormat, err)
	}

	entries := make([]entity.RawEntry, 0, len(feed.Entries))
	var skipped []SkippedEntry
	for i, e := range feed.Entries {
		if e == nil {
			continue
		}
		entry := entity.RawEntry{
			Title:   e.Title,
			Updated: e.Updated,
		}
		if e.UpdatedParsed != nil {
			entry.UpdatedAt = *e.UpdatedParsed
		}
		if err := entry.Validate(); err != nil {
			skipped = append(skipped, SkippedEntry{Index: i, Err: err})
			continue
		}
		if e.Content == nil {
			skipped = append(skipped, SkippedEntry{Index: i, Err: &entity.ValidationError{Field: "content", Message: "required"}})
			continue
		}
		entry.Content = e.Content.Value
		entries = append(entries, entry)
	}

	return entries, skipped, nil
}

// ParseFeed parses the raw feed text and returns the incidents updated
// strictly after WindowStart(now, loc), in feed order. Dates are formatted
// in loc (UTC when nil).
func ParseFeed(raw string, now time.Time, loc *time.Location) (ParseResult, error) {
	if loc == nil {
		loc = time.UTC
	}

	entries, skipped, err := ReadEntries(raw)
	if err != nil {
		return ParseResult{}, err
	}

	windowStart := WindowStart(now, loc)
	incidents := make([]entity.Incident, 0, len(entries))
	for _, e := range entries {
		if !e.UpdatedAt.After(windowStart) {
			continue
		}
		incidents = append(incidents, NewIncident(e, loc))
	}

	return ParseResult{
		Incidents:   incidents,
		Skipped:     skipped,
		WindowStart: windowStart,
		Entries:     len(entries) + len(skipped),
	}, nil
}

// NewIncident derives an incident from a validated raw entry.
func NewIncident(e entity.RawEntry, loc *time.Location) entity.Incident {
	if loc == nil {
		loc = time.UTC
	}
	return entity.Incident{
		Title:      e.Title,
		UpdatedRaw: e.Updated,
		Updated:    e.UpdatedAt,
		Date:       e.UpdatedAt.In(loc).Format(entity.DisplayDateLayout),
		TimeRange:  ExtractTimeRange(e.Content),
	}
}

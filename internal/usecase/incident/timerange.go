package incident

import (
	"regexp"

	"ghstatus-dashboard/internal/domain/entity"
)

var (
	// timeToken matches a bare clock time at the start of the input.
	timeToken = regexp.MustCompile(`^\d{1,2}:\d{2}`)

	// markedTime finds the first time marker later on the same line.
	// Line terminators are the ones a JavaScript "." refuses to cross.
	// Re-rendered HTML (xml:base feeds) switches the attribute to double quotes.
	markedTime = regexp.MustCompile(`^[^\n\r\x{2028}\x{2029}]*?data-var=['"]time['"]>(\d{1,2}:\d{2})`)
)

// timeMatch is one (primary, secondary) capture pair.
type timeMatch struct {
	primary   string
	secondary string
}

// findTimeMatches scans content left to right for bare time tokens that are
// followed on the same line by a data-var='time' marker. The marker check does
// not consume input, so the marked token itself can start the next match.
func findTimeMatches(content string) []timeMatch {
	var matches []timeMatch
	for i := 0; i < len(content); {
		loc := timeToken.FindStringIndex(content[i:])
		if loc == nil {
			i++
			continue
		}
		end := i + loc[1]
		marker := markedTime.FindStringSubmatch(content[end:])
		if marker == nil {
			i++
			continue
		}
		matches = append(matches, timeMatch{primary: content[i:end], secondary: marker[1]})
		i = end
	}
	return matches
}

// ExtractTimeRange returns "<start> - <end>" scraped from an entry's content.
//
// The end time is the first match's bare token. The start time is the second
// match's marked token, or the first match's marked token when there is only
// one match. Anything missing is "N/A".
func ExtractTimeRange(content string) string {
	start, end := entity.TimePlaceholder, entity.TimePlaceholder

	matches := findTimeMatches(content)
	if len(matches) > 0 {
		end = matches[0].primary
	}
	switch {
	case len(matches) > 1:
		start = matches[1].secondary
	case len(matches) == 1:
		start = matches[0].secondary
	}

	return start + " - " + end
}

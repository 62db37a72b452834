package incident

import (
	"fmt"
	"html"
	"strings"
	"time"
)

// evalTime is the fixed evaluation instant used across the package tests.
// Early in a month so that "40 days ago" lands before the window start.
var evalTime = time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

type feedEntry struct {
	title   string
	updated string
	content string
	// omit lists elements to leave out: "title", "updated", "content"
	omit []string
}

func (e feedEntry) has(elem string) bool {
	for _, o := range e.omit {
		if o == elem {
			return false
		}
	}
	return true
}

// atomFeed renders a minimal githubstatus-shaped Atom document.
// Content is HTML-escaped the way the upstream feed ships it.
func atomFeed(entries ...feedEntry) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>
<feed xml:lang="en-US" xmlns="http://www.w3.org/2005/Atom">
  <id>tag:www.githubstatus.com,2005:/history</id>
  <title>GitHub Status - Incident History</title>
  <updated>2024-03-05T11:00:00Z</updated>
`)
	for i, e := range entries {
		b.WriteString("  <entry>\n")
		fmt.Fprintf(&b, "    <id>tag:www.githubstatus.com,2005:Incident/%d</id>\n", i+1)
		if e.has("title") {
			fmt.Fprintf(&b, "    <title>%s</title>\n", html.EscapeString(e.title))
		}
		if e.has("updated") {
			fmt.Fprintf(&b, "    <updated>%s</updated>\n", e.updated)
		}
		if e.has("content") {
			fmt.Fprintf(&b, "    <content type=\"html\">%s</content>\n", html.EscapeString(e.content))
		}
		b.WriteString("  </entry>\n")
	}
	b.WriteString("</feed>\n")
	return b.String()
}

// statusContent renders statuspage-style update markup for the given times,
// newest first.
func statusContent(times ...string) string {
	var b strings.Builder
	for _, t := range times {
		fmt.Fprintf(&b, "<p><small>Mar <var data-var='date'>5</var>, <var data-var='time'>%s</var> UTC</small><br><strong>Update</strong> - We are investigating.</p>", t)
	}
	return b.String()
}

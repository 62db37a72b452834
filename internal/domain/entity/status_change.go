package entity

import "time"

// StatusChange describes a transition of the derived status between two checks.
type StatusChange struct {
	Previous   Status
	Current    Status
	DetectedAt time.Time
	// Latest is the most recently updated retained incident, when there is one.
	Latest *Incident
	// Incidents is the number of incidents retained in the window at DetectedAt.
	Incidents int
}

// Degraded reports whether the change is from operational to issues.
func (c StatusChange) Degraded() bool {
	return c.Current == StatusIssues
}

// Summary is a one-line, channel-agnostic description of the change.
func (c StatusChange) Summary() string {
	if c.Degraded() {
		return "GitHub is experiencing issues ⚠️"
	}
	return "GitHub recovered: " + c.Current.Label()
}

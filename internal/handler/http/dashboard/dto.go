// Package dashboard serves the status page and its JSON twin.
package dashboard

import (
	"time"

	"ghstatus-dashboard/internal/domain/entity"
	"ghstatus-dashboard/internal/usecase/incident"
)

// DTO is the JSON body of GET /api/dashboard.
type DTO struct {
	Status         entity.Status      `json:"status"`
	StatusLabel    string             `json:"status_label"`
	StatusColor    string             `json:"status_color"`
	EvaluatedAt    time.Time          `json:"evaluated_at"`
	WindowStart    time.Time          `json:"window_start"`
	Incidents      []entity.Incident  `json:"incidents"`
	CountsByDate   []entity.DateCount `json:"counts_by_date"`
	Chart          entity.ChartSeries `json:"chart"`
	SkippedEntries int                `json:"skipped_entries,omitempty"`
	Error          string             `json:"error,omitempty"`
}

// errorMessage is what clients see for any load failure; the cause is logged.
const errorMessage = "status feed unavailable"

// NewDTO converts a dashboard to its JSON shape; slices are never null.
func NewDTO(d incident.Dashboard) DTO {
	status := d.Status()
	out := DTO{
		Status:         status,
		StatusLabel:    status.Label(),
		StatusColor:    status.Color(),
		EvaluatedAt:    d.EvaluatedAt,
		WindowStart:    d.WindowStart,
		Incidents:      d.Incidents,
		CountsByDate:   d.Aggregation.CountByDate.Entries(),
		Chart:          d.Chart,
		SkippedEntries: d.SkippedEntries,
	}
	if out.Incidents == nil {
		out.Incidents = []entity.Incident{}
	}
	if out.Chart.Labels == nil {
		out.Chart.Labels = []string{}
	}
	if out.Chart.Dataset.Points == nil {
		out.Chart.Dataset.Points = []entity.ChartPoint{}
	}
	if out.Chart.Tooltips == nil {
		out.Chart.Tooltips = []string{}
	}
	if out.Chart.Dataset.Label == "" {
		out.Chart.Dataset.Label = entity.ChartDatasetLabel
	}
	if d.Err != nil {
		out.Error = errorMessage
	}
	return out
}

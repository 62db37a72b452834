package incident

import "ghstatus-dashboard/internal/domain/entity"

// BuildChartSeries emits one point per incident (not per date) whose y value
// is that date's total, plus the tooltip for each point at the same index.
func BuildChartSeries(incidents []entity.Incident, counts entity.DateCounts) entity.ChartSeries {
	series := entity.ChartSeries{
		Labels: counts.Keys(),
		Dataset: entity.ChartDataset{
			Label:  entity.ChartDatasetLabel,
			Points: make([]entity.ChartPoint, 0, len(incidents)),
		},
		Tooltips: make([]string, 0, len(incidents)),
	}

	for _, inc := range incidents {
		series.Dataset.Points = append(series.Dataset.Points, entity.ChartPoint{
			X: inc.Date,
			Y: counts.Get(inc.Date),
		})
		series.Tooltips = append(series.Tooltips, inc.TimeRange+", "+inc.Title)
	}

	return series
}

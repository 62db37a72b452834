package entity

import "fmt"

// ChartDatasetLabel is the legend label of the single bar dataset.
const ChartDatasetLabel = "Count"

// ChartPoint is one bar-chart data point.
type ChartPoint struct {
	X string `json:"x"`
	Y int    `json:"y"`
}

// ChartDataset is a labelled sequence of points.
type ChartDataset struct {
	Label  string       `json:"label"`
	Points []ChartPoint `json:"data"`
}

// ChartSeries is the chart-ready description consumed by the renderer.
// Points[i] and Tooltips[i] both describe the i-th incident; callers must not
// reorder one without the other.
type ChartSeries struct {
	Labels   []string     `json:"labels"`
	Dataset  ChartDataset `json:"dataset"`
	Tooltips []string     `json:"tooltips"`
}

// Len returns the number of points.
func (s ChartSeries) Len() int {
	return len(s.Dataset.Points)
}

// TooltipLabel returns the tooltip text for the point at index.
func (s ChartSeries) TooltipLabel(index int) (string, error) {
	if index < 0 || index >= len(s.Tooltips) {
		return "", fmt.Errorf("%w: %d (points: %d)", ErrPointOutOfRange, index, len(s.Tooltips))
	}
	return s.Tooltips[index], nil
}

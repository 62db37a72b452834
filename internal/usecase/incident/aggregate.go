package incident

import (
	"time"

	"ghstatus-dashboard/internal/domain/entity"
)

// IssueWindow is how recent an update must be to flag the service as having issues.
const IssueWindow = time.Hour

// Aggregate counts incidents per display date and derives the current status.
// The status is ISSUES when any incident was updated strictly after
// evaluationTime - IssueWindow.
func Aggregate(incidents []entity.Incident, evaluationTime time.Time) entity.AggregationResult {
	result := entity.AggregationResult{CurrentStatus: entity.StatusOperational}
	threshold := evaluationTime.Add(-IssueWindow)

	for _, inc := range incidents {
		result.CountByDate.Add(inc.Date)
		if inc.Updated.After(threshold) {
			result.CurrentStatus = entity.StatusIssues
		}
	}

	return result
}

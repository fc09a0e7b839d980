package domain

import "slices"

// PipelineSummary aggregates deal values on an opportunities board.
type PipelineSummary struct {
	OpenValue      float64
	ClosedWonValue float64
	OpenCount      int
}

// SummarizePipeline totals open deals (items outside closedColumnIDs) and the won column.
func SummarizePipeline(b Board, closedColumnIDs []string, wonColumnID string) PipelineSummary {
	var out PipelineSummary
	for _, column := range b.Columns {
		closed := slices.Contains(closedColumnIDs, column.ID)
		for _, item := range column.Items {
			if column.ID == wonColumnID {
				out.ClosedWonValue += item.Amount()
			}
			if closed {
				continue
			}
			out.OpenValue += item.Amount()
			out.OpenCount++
		}
	}
	return out
}

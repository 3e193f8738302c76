package analyzer

import (
	"sort"

	"trendrank/pkg/model"
)

// Rank selects the topN gainers and losers from one period's change
// records and computes the aggregate statistics. Sorting is stable, so
// ties keep the input (fetch) order. The input slice is not modified;
// ranking the same collection twice yields identical output. An empty
// input yields empty lists and zero statistics, not an error.
func Rank(records []model.ChangeRecord, topN int) (gainers, losers []model.ChangeRecord, stats model.Statistics) {
	gainers = []model.ChangeRecord{}
	losers = []model.ChangeRecord{}
	if len(records) == 0 {
		return gainers, losers, stats
	}

	sorted := make([]model.ChangeRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PeriodChange > sorted[j].PeriodChange
	})

	n := topN
	if n > len(sorted) {
		n = len(sorted)
	}
	gainers = append(gainers, sorted[:n]...)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PeriodChange < sorted[j].PeriodChange
	})
	losers = append(losers, sorted[:n]...)

	stats = statistics(records)
	return gainers, losers, stats
}

func statistics(records []model.ChangeRecord) model.Statistics {
	var stats model.Statistics
	stats.TotalStocks = len(records)

	changes := make([]float64, len(records))
	var sum float64
	for i, r := range records {
		changes[i] = r.PeriodChange
		sum += r.PeriodChange
		if r.PeriodChange > 0 {
			stats.UpCount++
		} else if r.PeriodChange < 0 {
			stats.DownCount++
		}
	}

	n := len(changes)
	stats.AvgChange = round2(sum / float64(n))
	stats.MedianChange = round2(median(changes))
	stats.UpRatio = round2(float64(stats.UpCount) / float64(n) * 100)
	return stats
}

// median sorts a private copy; even-length input averages the middle pair
func median(values []float64) float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

package analyzer

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"trendrank/internal/provider"
	"trendrank/pkg/model"
)

// ErrInsufficientHistory means the bar series is too short for the
// requested period; the caller skips the symbol.
var ErrInsufficientHistory = errors.New("insufficient history")

// historyBufferDays pads the requested calendar range so that weekends
// and holidays still leave at least period+1 trading days.
const historyBufferDays = 10

// PeriodChange computes the percent change of one symbol over period
// trading days, ending at the most recent bar. The series is sorted
// ascending by date before indexing from the end, and must contain at
// least period+1 bars: change is measured from the close period bars
// before the last one, so a series of exactly period bars is rejected.
func PeriodChange(ctx context.Context, p provider.Provider, symbol string, period int, now time.Time) (float64, error) {
	start := now.AddDate(0, 0, -(period + historyBufferDays))

	bars, err := p.DailyBars(ctx, symbol, start, now)
	if err != nil {
		return 0, err
	}

	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Date < bars[j].Date // ISO dates sort lexically
	})

	if len(bars) < period+1 {
		return 0, ErrInsufficientHistory
	}

	startPrice := bars[len(bars)-1-period].Close
	endPrice := bars[len(bars)-1].Close
	if startPrice <= 0 {
		return 0, ErrInsufficientHistory
	}

	return round2((endPrice - startPrice) / startPrice * 100), nil
}

// changeRecord builds the ranking entry for one symbol, with market cap
// normalized to 亿元
func changeRecord(q model.Quote, periodChange float64) model.ChangeRecord {
	return model.ChangeRecord{
		Symbol:       q.Symbol,
		Name:         q.Name,
		Price:        q.Price,
		PeriodChange: periodChange,
		TodayChange:  q.ChangePct,
		Turnover:     q.Turnover,
		MarketCap:    round2(q.MarketCap / 1e8),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

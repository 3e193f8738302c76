package analyzer

import "trendrank/pkg/model"

// Daily limit band proximity thresholds, in percent. 9.9 rather than 10
// so rounding on the wire does not hide limit moves.
const (
	limitUpThreshold   = 9.9
	limitDownThreshold = -9.9
)

// Overview computes universe-wide breadth statistics from the filtered
// snapshot alone; no history is needed.
func Overview(quotes []model.Quote) model.MarketOverview {
	var o model.MarketOverview
	o.TotalStocks = len(quotes)
	if len(quotes) == 0 {
		return o
	}

	var changeSum, amountSum float64
	for _, q := range quotes {
		switch {
		case q.ChangePct > 0:
			o.UpStocks++
		case q.ChangePct < 0:
			o.DownStocks++
		default:
			o.FlatStocks++
		}
		if q.ChangePct >= limitUpThreshold {
			o.LimitUp++
		}
		if q.ChangePct <= limitDownThreshold {
			o.LimitDown++
		}
		changeSum += q.ChangePct
		amountSum += q.Amount
	}

	o.AvgChange = round2(changeSum / float64(len(quotes)))
	o.TotalAmount = round2(amountSum / 1e8)
	return o
}

package model

// Quote represents one row of the full-universe snapshot
type Quote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"` // today's percent change
	Volume    int64   `json:"volume"`
	Amount    float64 `json:"amount"`     // traded amount in yuan
	Turnover  float64 `json:"turnover"`   // turnover rate in percent
	MarketCap float64 `json:"market_cap"` // total market cap in yuan
	PE        float64 `json:"pe"`
	PB        float64 `json:"pb"`
}

// Bar represents one daily candle (forward-adjusted OHLCV data)
type Bar struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Open     float64 `json:"open"`
	High     float64 `json:"high"`
	Low      float64 `json:"low"`
	Close    float64 `json:"close"`
	Volume   int64   `json:"volume"`
	Amount   float64 `json:"amount"`
	Turnover float64 `json:"turnover"`
}

// IndexQuote represents a major index level for the CLI banner
type IndexQuote struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ChangePct float64 `json:"change_pct"`
}

// ChangeRecord is one symbol's percent change over a ranking period.
// MarketCap is normalized to 亿元 (1e8 yuan).
type ChangeRecord struct {
	Symbol       string  `json:"symbol"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	PeriodChange float64 `json:"period_change"`
	TodayChange  float64 `json:"today_change"`
	Turnover     float64 `json:"turnover"`
	MarketCap    float64 `json:"market_cap"`
}

// Statistics aggregates the change records of one period
type Statistics struct {
	TotalStocks  int     `json:"total_stocks"`
	AvgChange    float64 `json:"avg_change"`
	MedianChange float64 `json:"median_change"`
	UpCount      int     `json:"up_count"`
	DownCount    int     `json:"down_count"`
	UpRatio      float64 `json:"up_ratio"` // percent of records with change > 0
}

// PeriodResult holds the ranking for one period length
type PeriodResult struct {
	PeriodDays int            `json:"period_days"`
	Gainers    []ChangeRecord `json:"gainers"`
	Losers     []ChangeRecord `json:"losers"`
	Statistics Statistics     `json:"statistics"`
}

// MarketOverview holds universe-wide breadth statistics from the snapshot.
// TotalAmount is in 亿元 (1e8 yuan).
type MarketOverview struct {
	TotalStocks int     `json:"total_stocks"`
	UpStocks    int     `json:"up_stocks"`
	DownStocks  int     `json:"down_stocks"`
	FlatStocks  int     `json:"flat_stocks"`
	LimitUp     int     `json:"limit_up"`
	LimitDown   int     `json:"limit_down"`
	AvgChange   float64 `json:"avg_change"`
	TotalAmount float64 `json:"total_amount"`
}

// AnalysisResult is the unit of persistence: one run's full output.
// Periods is keyed by label such as "5d". AnalysisDate is the calendar
// day the run describes; archive files are keyed by it, so a same-day
// rerun overwrites the previous artifact.
type AnalysisResult struct {
	UpdateTime     string                  `json:"update_time"`   // 2006-01-02 15:04:05
	AnalysisDate   string                  `json:"analysis_date"` // 2006-01-02
	Periods        map[string]PeriodResult `json:"periods"`
	MarketOverview MarketOverview          `json:"market_overview"`
}

// HasPeriods reports whether any period produced records
func (r *AnalysisResult) HasPeriods() bool {
	if r == nil {
		return false
	}
	for _, p := range r.Periods {
		if len(p.Gainers) > 0 || len(p.Losers) > 0 {
			return true
		}
	}
	return false
}

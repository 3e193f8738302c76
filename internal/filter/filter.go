// Package filter removes snapshot rows that would distort the ranking:
// missing prices, special-designation names, penny stocks, halted
// symbols and first-day moves outside the normal limit band.
package filter

import (
	"context"
	"strings"

	"trendrank/internal/config"
	"trendrank/internal/trace"
	"trendrank/pkg/model"
)

// Special-designation and delisting markers in A-share names. "ST" also
// covers "*ST"; "退" flags delisting or delisted symbols.
var specialNameMarkers = []string{"ST", "退", "*"}

// Criterion is a single pass/fail rule over one quote
type Criterion func(model.Quote) bool

// And combines criteria conjunctively
func And(cs ...Criterion) Criterion {
	return func(q model.Quote) bool {
		for _, c := range cs {
			if c == nil {
				continue
			}
			if !c(q) {
				return false
			}
		}
		return true
	}
}

// PricePresent excludes rows whose price field is missing or non-positive
func PricePresent(q model.Quote) bool {
	return q.Price > 0
}

// NoSpecialDesignation excludes ST / delisting-marked names
func NoSpecialDesignation(q model.Quote) bool {
	name := strings.ToUpper(q.Name)
	for _, marker := range specialNameMarkers {
		if strings.Contains(name, marker) {
			return false
		}
	}
	return true
}

// MinPrice excludes rows priced below the floor
func MinPrice(min float64) Criterion {
	return func(q model.Quote) bool { return q.Price >= min }
}

// Traded excludes halted symbols (zero volume)
func Traded(q model.Quote) bool {
	return q.Volume > 0
}

// DailyChangeWithin excludes rows at or beyond the bound on |today
// change|. The interval is open: a row at exactly the bound is dropped,
// since first-day listings trade without the normal limit band.
func DailyChangeWithin(bound float64) Criterion {
	return func(q model.Quote) bool {
		return q.ChangePct > -bound && q.ChangePct < bound
	}
}

// Filter applies the configured universe rules to a snapshot
type Filter struct {
	criterion Criterion
}

// New builds a filter from the configured thresholds
func New(cfg config.FilterConfig) *Filter {
	criteria := []Criterion{PricePresent}
	if cfg.ExcludeSpecial {
		criteria = append(criteria, NoSpecialDesignation)
	}
	criteria = append(criteria,
		MinPrice(cfg.MinPrice),
		Traded,
		DailyChangeWithin(cfg.MaxDailyChange),
	)
	return &Filter{criterion: And(criteria...)}
}

// Apply returns the rows passing every rule, preserving snapshot order
func (f *Filter) Apply(ctx context.Context, quotes []model.Quote) []model.Quote {
	kept := make([]model.Quote, 0, len(quotes))
	for _, q := range quotes {
		if f.criterion(q) {
			kept = append(kept, q)
		}
	}
	trace.Logf(ctx, "filter: kept %d of %d symbols", len(kept), len(quotes))
	return kept
}

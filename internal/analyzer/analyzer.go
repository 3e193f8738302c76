// Package analyzer computes the multi-period gainers/losers ranking:
// filter the universe, derive per-symbol percent change from daily
// history, rank, and aggregate breadth statistics.
package analyzer

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"trendrank/internal/config"
	"trendrank/internal/filter"
	"trendrank/internal/provider"
	"trendrank/internal/trace"
	"trendrank/pkg/model"
)

// ProgressCallback is called after each processed symbol
type ProgressCallback func(done, total int)

// Analyzer orchestrates one analysis run. Exhaustive mode walks every
// filtered symbol per period; Sampled mode draws a fixed-size seeded
// subset, trading ranking completeness for bounded runtime.
type Analyzer struct {
	provider provider.Provider
	filter   *filter.Filter
	cfg      config.AnalysisConfig
	progress ProgressCallback
	now      func() time.Time
}

// New creates an analyzer
func New(p provider.Provider, f *filter.Filter, cfg config.AnalysisConfig) *Analyzer {
	return &Analyzer{
		provider: p,
		filter:   f,
		cfg:      cfg,
		now:      config.ChinaNow,
	}
}

// SetProgressCallback sets the progress callback function
func (a *Analyzer) SetProgressCallback(fn ProgressCallback) {
	a.progress = fn
}

// SetClock overrides the run timestamp source (tests)
func (a *Analyzer) SetClock(now func() time.Time) {
	a.now = now
}

// Exhaustive analyzes every filtered symbol per period
func (a *Analyzer) Exhaustive(ctx context.Context) (*model.AnalysisResult, error) {
	return a.run(ctx, func(universe []model.Quote, _ int) []model.Quote {
		return universe
	})
}

// Sampled analyzes a pseudorandom subset per period. The generator is
// reseeded for each period's draw, so an identical filtered universe
// yields an identical subset run after run.
func (a *Analyzer) Sampled(ctx context.Context) (*model.AnalysisResult, error) {
	return a.run(ctx, func(universe []model.Quote, _ int) []model.Quote {
		return sample(universe, a.cfg.SampleSize, a.cfg.SampleSeed)
	})
}

// run executes the shared pipeline: snapshot, filter, per-period change
// collection, ranking, overview
func (a *Analyzer) run(ctx context.Context, pick func([]model.Quote, int) []model.Quote) (*model.AnalysisResult, error) {
	now := a.now()
	result := &model.AnalysisResult{
		UpdateTime:   now.Format("2006-01-02 15:04:05"),
		AnalysisDate: now.Format("2006-01-02"),
		Periods:      make(map[string]model.PeriodResult),
	}

	snapshot, err := a.provider.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching snapshot: %w", err)
	}
	universe := a.filter.Apply(ctx, snapshot)
	result.MarketOverview = Overview(universe)

	for _, period := range a.cfg.Periods {
		chosen := pick(universe, period)
		trace.Logf(ctx, "analyzer: period %dd, computing changes for %d symbols", period, len(chosen))

		records := a.collectChanges(ctx, chosen, period, now)
		gainers, losers, stats := Rank(records, a.cfg.TopN)

		result.Periods[fmt.Sprintf("%dd", period)] = model.PeriodResult{
			PeriodDays: period,
			Gainers:    gainers,
			Losers:     losers,
			Statistics: stats,
		}
	}

	return result, nil
}

// collectChanges fetches history sequentially and keeps whatever
// succeeds. A failed or short-history symbol is skipped, never surfaced
// as a partial entry; only context cancellation stops the loop.
func (a *Analyzer) collectChanges(ctx context.Context, quotes []model.Quote, period int, now time.Time) []model.ChangeRecord {
	records := make([]model.ChangeRecord, 0, len(quotes))
	skipped := 0

	for i, q := range quotes {
		if ctx.Err() != nil {
			break
		}

		change, err := PeriodChange(ctx, a.provider, q.Symbol, period, now)
		if err != nil {
			skipped++
		} else {
			records = append(records, changeRecord(q, change))
		}

		if a.progress != nil {
			a.progress(i+1, len(quotes))
		}
	}

	if skipped > 0 {
		trace.Logf(ctx, "analyzer: period %dd, skipped %d of %d symbols", period, skipped, len(quotes))
	}
	return records
}

// sample draws min(size, len(universe)) quotes without replacement using
// a fixed seed
func sample(universe []model.Quote, size int, seed int64) []model.Quote {
	if size >= len(universe) {
		return universe
	}
	rng := rand.New(rand.NewSource(seed))
	picked := make([]model.Quote, 0, size)
	for _, idx := range rng.Perm(len(universe))[:size] {
		picked = append(picked, universe[idx])
	}
	return picked
}

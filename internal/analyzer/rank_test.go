package analyzer

import (
	"testing"

	"trendrank/pkg/model"
)

func recordsWithChanges(changes ...float64) []model.ChangeRecord {
	records := make([]model.ChangeRecord, len(changes))
	for i, c := range changes {
		records[i] = model.ChangeRecord{
			Symbol:       string(rune('A' + i)),
			PeriodChange: c,
		}
	}
	return records
}

func TestRankSelectsTopAndBottom(t *testing.T) {
	records := recordsWithChanges(5, -3, 0, 10, -7)

	gainers, losers, stats := Rank(records, 2)

	if len(gainers) != 2 || gainers[0].PeriodChange != 10 || gainers[1].PeriodChange != 5 {
		t.Errorf("Expected gainers [10 5], got %v", gainers)
	}
	if len(losers) != 2 || losers[0].PeriodChange != -7 || losers[1].PeriodChange != -3 {
		t.Errorf("Expected losers [-7 -3], got %v", losers)
	}

	if stats.TotalStocks != 5 {
		t.Errorf("Expected 5 stocks, got %d", stats.TotalStocks)
	}
	if stats.UpCount != 2 || stats.DownCount != 2 {
		t.Errorf("Expected up=2 down=2, got up=%d down=%d", stats.UpCount, stats.DownCount)
	}
	if stats.UpRatio != 40.00 {
		t.Errorf("Expected up_ratio 40.00, got %f", stats.UpRatio)
	}
	if stats.AvgChange != 1.00 {
		t.Errorf("Expected avg 1.00, got %f", stats.AvgChange)
	}
	if stats.MedianChange != 0 {
		t.Errorf("Expected median 0, got %f", stats.MedianChange)
	}
}

func TestRankTopNLargerThanInput(t *testing.T) {
	gainers, losers, _ := Rank(recordsWithChanges(1, 2), 50)

	if len(gainers) != 2 || len(losers) != 2 {
		t.Errorf("Expected both lists capped at input size, got %d/%d", len(gainers), len(losers))
	}
}

func TestRankTiesKeepFetchOrder(t *testing.T) {
	records := []model.ChangeRecord{
		{Symbol: "first", PeriodChange: 3},
		{Symbol: "second", PeriodChange: 3},
		{Symbol: "third", PeriodChange: 3},
	}

	gainers, losers, _ := Rank(records, 3)

	for i, want := range []string{"first", "second", "third"} {
		if gainers[i].Symbol != want {
			t.Errorf("gainers[%d] = %s, want %s (stable tie-break)", i, gainers[i].Symbol, want)
		}
		if losers[i].Symbol != want {
			t.Errorf("losers[%d] = %s, want %s (stable tie-break)", i, losers[i].Symbol, want)
		}
	}
}

func TestRankIsIdempotent(t *testing.T) {
	records := recordsWithChanges(5, -3, 0, 10, -7)

	g1, l1, s1 := Rank(records, 2)
	g2, l2, s2 := Rank(records, 2)

	// Input order must survive the first call
	wantOrder := []float64{5, -3, 0, 10, -7}
	for i, r := range records {
		if r.PeriodChange != wantOrder[i] {
			t.Fatalf("Rank mutated its input at %d: %v", i, records)
		}
	}

	if s1 != s2 {
		t.Errorf("Statistics differ across runs: %+v vs %+v", s1, s2)
	}
	for i := range g1 {
		if g1[i] != g2[i] {
			t.Errorf("Gainers differ at %d: %+v vs %+v", i, g1[i], g2[i])
		}
	}
	for i := range l1 {
		if l1[i] != l2[i] {
			t.Errorf("Losers differ at %d: %+v vs %+v", i, l1[i], l2[i])
		}
	}
}

func TestRankEmptyInput(t *testing.T) {
	gainers, losers, stats := Rank(nil, 50)

	if gainers == nil || len(gainers) != 0 {
		t.Errorf("Expected empty gainers slice, got %v", gainers)
	}
	if losers == nil || len(losers) != 0 {
		t.Errorf("Expected empty losers slice, got %v", losers)
	}
	if stats != (model.Statistics{}) {
		t.Errorf("Expected zero statistics, got %+v", stats)
	}
}

func TestMedianEvenLength(t *testing.T) {
	_, _, stats := Rank(recordsWithChanges(1, 2, 3, 4), 2)

	if stats.MedianChange != 2.5 {
		t.Errorf("Expected median 2.5, got %f", stats.MedianChange)
	}
}

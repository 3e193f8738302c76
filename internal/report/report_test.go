package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"trendrank/internal/config"
	"trendrank/pkg/model"
)

func newTestGenerator(t *testing.T) (*Generator, string, string) {
	t.Helper()
	frontend := t.TempDir()
	archive := t.TempDir()
	g := NewGenerator(config.ReportConfig{
		FrontendDir: frontend,
		ArchiveDir:  archive,
		KeepDays:    30,
	})
	return g, frontend, archive
}

func sampleResult(date string) *model.AnalysisResult {
	return &model.AnalysisResult{
		UpdateTime:   date + " 15:30:00",
		AnalysisDate: date,
		Periods: map[string]model.PeriodResult{
			"5d": {
				PeriodDays: 5,
				Gainers: []model.ChangeRecord{
					{Symbol: "600519", Name: "贵州茅台", Price: 1700.5, PeriodChange: 5.5},
				},
				Losers:     []model.ChangeRecord{},
				Statistics: model.Statistics{TotalStocks: 1, UpCount: 1, UpRatio: 100},
			},
		},
		MarketOverview: model.MarketOverview{TotalStocks: 1, UpStocks: 1},
	}
}

func TestGenerateWritesThreeFiles(t *testing.T) {
	g, frontend, archive := newTestGenerator(t)

	if err := g.Generate(context.Background(), sampleResult("2024-01-15")); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	for _, path := range []string{
		filepath.Join(frontend, "latest.json"),
		filepath.Join(frontend, "data_2024-01-15.json"),
		filepath.Join(archive, "analysis_2024-01-15.json"),
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("Expected %s to exist: %v", path, err)
		}
	}

	// Round-trips and keeps CJK readable
	data, err := os.ReadFile(filepath.Join(frontend, "latest.json"))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "贵州茅台") {
		t.Error("Expected unescaped UTF-8 name in output")
	}

	var decoded model.AnalysisResult
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}
	if decoded.AnalysisDate != "2024-01-15" {
		t.Errorf("Unexpected analysis_date: %s", decoded.AnalysisDate)
	}
	if decoded.Periods["5d"].Gainers[0].Symbol != "600519" {
		t.Errorf("Unexpected gainer: %+v", decoded.Periods["5d"].Gainers)
	}
}

func TestGenerateSameDayOverwrites(t *testing.T) {
	g, frontend, _ := newTestGenerator(t)
	ctx := context.Background()

	if err := g.Generate(ctx, sampleResult("2024-01-15")); err != nil {
		t.Fatal(err)
	}

	second := sampleResult("2024-01-15")
	second.UpdateTime = "2024-01-15 16:00:00"
	if err := g.Generate(ctx, second); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(frontend)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 { // latest.json + one dated file
		t.Errorf("Expected 2 files after same-day rerun, got %d", len(entries))
	}

	data, _ := os.ReadFile(filepath.Join(frontend, "data_2024-01-15.json"))
	if !strings.Contains(string(data), "16:00:00") {
		t.Error("Second run should overwrite the dated archive")
	}
}

func TestCleanOldHistory(t *testing.T) {
	g, frontend, archive := newTestGenerator(t)
	g.SetClock(func() time.Time {
		return time.Date(2024, 2, 14, 12, 0, 0, 0, time.UTC)
	})

	// keep_days=30 against run date 2024-02-14: cutoff is 2024-01-15.
	// Strictly older files go, the boundary date stays.
	fixtures := map[string]bool{ // name -> expect removed
		"data_2024-01-14.json": true,
		"data_2024-01-15.json": false,
		"data_2024-02-01.json": false,
		"data_2023-12-01.json": true,
		"latest.json":          false,
		"data_garbage.json":    false,
		"notes.txt":            false,
	}
	for name := range fixtures {
		if err := os.WriteFile(filepath.Join(frontend, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(archive, "analysis_2024-01-01.json"), []byte("{}"), 0644); err != nil {
		t.Fatal(err)
	}

	removed := g.CleanOldHistory(context.Background(), 30)
	if removed != 3 { // two frontend + one archive
		t.Errorf("Expected 3 removals, got %d", removed)
	}

	for name, wantRemoved := range fixtures {
		_, err := os.Stat(filepath.Join(frontend, name))
		gone := os.IsNotExist(err)
		if gone != wantRemoved {
			t.Errorf("%s: removed=%v, want %v", name, gone, wantRemoved)
		}
	}
	if _, err := os.Stat(filepath.Join(archive, "analysis_2024-01-01.json")); !os.IsNotExist(err) {
		t.Error("Old internal archive should have been removed")
	}
}

func TestCleanOldHistoryMissingDirIsNotFatal(t *testing.T) {
	g := NewGenerator(config.ReportConfig{
		FrontendDir: "/nonexistent/frontend",
		ArchiveDir:  "/nonexistent/archive",
	})

	if removed := g.CleanOldHistory(context.Background(), 30); removed != 0 {
		t.Errorf("Expected 0 removals, got %d", removed)
	}
}

func TestAvailableDates(t *testing.T) {
	g, frontend, _ := newTestGenerator(t)

	for _, name := range []string{
		"data_2024-01-10.json",
		"data_2024-01-12.json",
		"data_2024-01-11.json",
		"latest.json",
		"data_bogus.json",
	} {
		if err := os.WriteFile(filepath.Join(frontend, name), []byte("{}"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	dates := g.AvailableDates()
	want := []string{"2024-01-12", "2024-01-11", "2024-01-10"}
	if len(dates) != len(want) {
		t.Fatalf("Expected %d dates, got %v", len(want), dates)
	}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("dates[%d] = %s, want %s", i, dates[i], want[i])
		}
	}
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/olekukonko/tablewriter"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"trendrank/internal/analyzer"
	"trendrank/internal/config"
	"trendrank/internal/filter"
	"trendrank/internal/provider"
	"trendrank/internal/report"
	"trendrank/internal/trace"
	"trendrank/pkg/model"
)

var (
	cfgFile string
	mode    string
	force   bool
	clean   bool
	format  string
	verbose bool
)

// tableRows caps how many gainers/losers are printed per period; the
// full top-N lives in the JSON artifacts.
const tableRows = 10

func main() {
	rootCmd := &cobra.Command{
		Use:   "trendrank",
		Short: "A-share gainers/losers ranking over 5/10/20-day windows",
		Long: `Trendrank computes short-horizon price-change rankings for the A-share
universe from a real-time snapshot plus per-symbol daily history, and
writes dated JSON artifacts for a static front end.

Modes:
  full   - compute period changes for every filtered symbol (slow, exhaustive)
  quick  - compute changes for a fixed-size seeded sample (bounded runtime)

Examples:
  trendrank --mode quick
  trendrank --mode full --force --clean`,
		RunE: run,
	}

	rootCmd.Flags().StringVar(&cfgFile, "config", "config.yaml", "config file path")
	rootCmd.Flags().StringVar(&mode, "mode", "quick", "analysis mode: full, quick")
	rootCmd.Flags().BoolVar(&force, "force", false, "run even if today is not a trading day")
	rootCmd.Flags().BoolVar(&clean, "clean", false, "prune old dated archives after a successful run")
	rootCmd.Flags().StringVar(&format, "format", "table", "output format: table, json")
	rootCmd.Flags().BoolVar(&verbose, "verbose", false, "show index banner and extra detail")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if mode != "full" && mode != "quick" {
		return fmt.Errorf("unknown mode %q (expected full or quick)", mode)
	}

	ctx := trace.WithRunID(context.Background(), trace.NewRunID())
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted. Stopping analysis...")
		cancel()
	}()

	now := config.ChinaNow()
	if !force && !config.IsTradingDay(now) {
		fmt.Println("Today is not a trading day, skipping update (use --force to run anyway)")
		return nil
	}

	p := provider.NewEastmoneyProvider(cfg.Provider.RateLimit, cfg.Provider.Timeout)

	if verbose {
		printIndexBanner(ctx, p)
	}

	a := analyzer.New(p, filter.New(cfg.Filter), cfg.Analysis)
	a.SetProgressCallback(newProgressFunc())

	fmt.Printf("Running %s analysis for periods %v...\n", mode, cfg.Analysis.Periods)

	var result *model.AnalysisResult
	if mode == "full" {
		result, err = a.Exhaustive(ctx)
	} else {
		result, err = a.Sampled(ctx)
	}
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}
	if !result.HasPeriods() {
		return fmt.Errorf("analysis produced no ranked symbols")
	}

	gen := report.NewGenerator(cfg.Report)
	if err := gen.Generate(ctx, result); err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	if clean {
		removed := gen.CleanOldHistory(ctx, cfg.Report.KeepDays)
		fmt.Printf("Retention: removed %d archives older than %d days\n", removed, cfg.Report.KeepDays)
	}

	if format == "json" {
		return outputJSON(result)
	}
	outputTables(result, cfg.Analysis.Periods)
	fmt.Printf("\nDone. Updated %s\n", result.UpdateTime)
	return nil
}

// newProgressFunc returns a callback that keeps one bar per period; a
// fresh period starts a fresh bar.
func newProgressFunc() analyzer.ProgressCallback {
	var bar *progressbar.ProgressBar
	barTotal := -1

	return func(done, total int) {
		if bar == nil || total != barTotal || done == 1 {
			if bar != nil {
				bar.Finish()
				fmt.Println()
			}
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetWidth(40),
				progressbar.OptionSetDescription("Fetching history"),
				progressbar.OptionSetTheme(progressbar.Theme{
					Saucer:        "[green]█[reset]",
					SaucerHead:    "[green]█[reset]",
					SaucerPadding: "░",
					BarStart:      "[",
					BarEnd:        "]",
				}),
			)
			barTotal = total
		}
		bar.Set(done)
		if done == total {
			bar.Finish()
			fmt.Println()
			bar = nil
		}
	}
}

func printIndexBanner(ctx context.Context, p provider.Provider) {
	indexes, err := p.IndexQuotes(ctx)
	if err != nil {
		fmt.Printf("(index quotes unavailable: %v)\n", err)
		return
	}
	for _, idx := range indexes {
		fmt.Printf("%s %.2f (%+.2f%%)\n", idx.Name, idx.Price, idx.ChangePct)
	}
	fmt.Println()
}

func outputTables(result *model.AnalysisResult, periods []int) {
	o := result.MarketOverview
	fmt.Printf("\nMarket overview (%s): %d stocks, %d up / %d down / %d flat, "+
		"limit-up %d, limit-down %d, avg %+.2f%%, amount %.2f 亿\n",
		result.AnalysisDate, o.TotalStocks, o.UpStocks, o.DownStocks, o.FlatStocks,
		o.LimitUp, o.LimitDown, o.AvgChange, o.TotalAmount)

	for _, days := range periods {
		period, ok := result.Periods[fmt.Sprintf("%dd", days)]
		if !ok {
			continue
		}
		s := period.Statistics
		fmt.Printf("\n=== %d-day ranking (%d symbols, avg %+.2f%%, median %+.2f%%, up ratio %.2f%%) ===\n",
			days, s.TotalStocks, s.AvgChange, s.MedianChange, s.UpRatio)

		printRecords("Top gainers", period.Gainers)
		printRecords("Top losers", period.Losers)
	}
}

func printRecords(title string, records []model.ChangeRecord) {
	if len(records) == 0 {
		fmt.Printf("%s: none\n", title)
		return
	}

	fmt.Printf("%s:\n", title)
	table := tablewriter.NewTable(os.Stdout,
		tablewriter.WithHeader([]string{"Symbol", "Name", "Price", "Change", "Today", "Cap(亿)"}),
	)

	n := len(records)
	if n > tableRows {
		n = tableRows
	}
	for _, r := range records[:n] {
		table.Append([]string{
			r.Symbol,
			r.Name,
			fmt.Sprintf("%.2f", r.Price),
			fmt.Sprintf("%+.2f%%", r.PeriodChange),
			fmt.Sprintf("%+.2f%%", r.TodayChange),
			fmt.Sprintf("%.2f", r.MarketCap),
		})
	}
	table.Render()
}

func outputJSON(result *model.AnalysisResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// Package report persists analysis results as dated JSON artifacts for
// the static front end and prunes old archives.
package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"trendrank/internal/config"
	"trendrank/internal/trace"
	"trendrank/pkg/model"
)

const (
	latestFile     = "latest.json"
	frontendPrefix = "data_"
	archivePrefix  = "analysis_"
	dateLayout     = "2006-01-02"
)

// Generator writes one AnalysisResult to the well-known latest path and
// two date-stamped archive paths. Archives are keyed by analysis date,
// so a same-day rerun overwrites its own files.
type Generator struct {
	frontendDir string
	archiveDir  string
	now         func() time.Time
}

// NewGenerator creates a generator writing under the configured dirs
func NewGenerator(cfg config.ReportConfig) *Generator {
	return &Generator{
		frontendDir: cfg.FrontendDir,
		archiveDir:  cfg.ArchiveDir,
		now:         config.ChinaNow,
	}
}

// SetClock overrides the retention clock (tests)
func (g *Generator) SetClock(now func() time.Time) {
	g.now = now
}

// Generate writes latest.json plus the two dated archives. Any write
// failure surfaces to the caller as a generation failure.
func (g *Generator) Generate(ctx context.Context, result *model.AnalysisResult) error {
	if err := os.MkdirAll(g.frontendDir, 0755); err != nil {
		return fmt.Errorf("creating frontend dir: %w", err)
	}
	if err := os.MkdirAll(g.archiveDir, 0755); err != nil {
		return fmt.Errorf("creating archive dir: %w", err)
	}

	data, err := encode(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	date := result.AnalysisDate
	paths := []string{
		filepath.Join(g.frontendDir, latestFile),
		filepath.Join(g.frontendDir, frontendPrefix+date+".json"),
		filepath.Join(g.archiveDir, archivePrefix+date+".json"),
	}
	for _, path := range paths {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}

	trace.Logf(ctx, "report: wrote %d files for %s", len(paths), date)
	return nil
}

// encode marshals without HTML escaping so CJK names stay readable
func encode(result *model.AnalysisResult) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// CleanOldHistory deletes dated archives strictly older than
// today - keepDays; the boundary date itself is retained. Filenames
// that do not parse are logged and skipped, never fatal. Returns the
// number of files removed.
func (g *Generator) CleanOldHistory(ctx context.Context, keepDays int) int {
	cutoff := g.now().AddDate(0, 0, -keepDays)
	cutoffDate := time.Date(cutoff.Year(), cutoff.Month(), cutoff.Day(), 0, 0, 0, 0, time.UTC)

	removed := 0
	removed += g.cleanDir(ctx, g.frontendDir, frontendPrefix, cutoffDate)
	removed += g.cleanDir(ctx, g.archiveDir, archivePrefix, cutoffDate)
	return removed
}

func (g *Generator) cleanDir(ctx context.Context, dir, prefix string, cutoff time.Time) int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		trace.Logf(ctx, "report: cannot read %s: %v", dir, err)
		return 0
	}

	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		date, ok := parseArchiveDate(name, prefix)
		if !ok {
			if strings.HasPrefix(name, prefix) {
				trace.Logf(ctx, "report: skipping unparseable archive name %s", name)
			}
			continue
		}
		if !date.Before(cutoff) {
			continue
		}
		path := filepath.Join(dir, name)
		if err := os.Remove(path); err != nil {
			trace.Logf(ctx, "report: failed to remove %s: %v", path, err)
			continue
		}
		trace.Logf(ctx, "report: removed old archive %s", name)
		removed++
	}
	return removed
}

// parseArchiveDate extracts the date from names like data_2024-01-15.json
func parseArchiveDate(name, prefix string) (time.Time, bool) {
	if !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
		return time.Time{}, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json")
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// AvailableDates returns the dates of front-end archives, newest first
func (g *Generator) AvailableDates() []string {
	entries, err := os.ReadDir(g.frontendDir)
	if err != nil {
		return nil
	}

	var dates []string
	for _, entry := range entries {
		if date, ok := parseArchiveDate(entry.Name(), frontendPrefix); ok {
			dates = append(dates, date.Format(dateLayout))
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}

// Package dataset loads the immutable reference dataset and derives the
// aggregates every forecast evaluation reads.
package dataset

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/talentreach/forecast-cli/internal/config"
	"github.com/talentreach/forecast-cli/internal/fetcher"
	"github.com/talentreach/forecast-cli/internal/model"
)

// fallback date layouts tried after the configured one. Exported datasets
// come out of spreadsheets with inconsistent date formatting.
var fallbackDateLayouts = []string{
	"2006-01-02",
	"1/2/2006",
	"01/02/2006",
	"2006-01-02 15:04:05",
}

// Load fetches the configured reference dataset, parses it, and builds
// the derived aggregates. Called once at startup; the result is treated
// as read-only afterwards.
func Load(ctx context.Context, cfg config.DatasetConfig) (*Reference, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second

	rc, err := fetcher.Open(ctx, cfg.Source, timeout)
	if err != nil {
		return nil, eris.Wrap(err, "dataset: open source")
	}
	defer rc.Close()

	var table *fetcher.Table
	switch format := fetcher.FormatFor(cfg.Source, cfg.Format); format {
	case "csv":
		table, err = fetcher.ReadCSV(rc)
	case "xlsx":
		table, err = fetcher.ReadXLSX(rc, cfg.Sheet)
	default:
		return nil, eris.Errorf("dataset: unsupported format %q", format)
	}
	if err != nil {
		return nil, eris.Wrap(err, "dataset: parse source")
	}

	records, err := parseRecords(table, cfg)
	if err != nil {
		return nil, err
	}

	ref, err := Build(records)
	if err != nil {
		return nil, err
	}

	zap.L().Info("dataset: reference loaded",
		zap.String("source", cfg.Source),
		zap.Int("records", len(records)),
		zap.Int("valid_days", len(ref.Daily())),
		zap.String("reference_month", ref.ReferenceMonth().String()),
		zap.Float64("mean_cpas", ref.MeanCPAS()),
	)

	return ref, nil
}

func parseRecords(table *fetcher.Table, cfg config.DatasetConfig) ([]model.HistoricalRecord, error) {
	dateIdx := table.Column(cfg.DateColumn)
	spendIdx := table.Column(cfg.SpendColumn)
	startIdx := table.Column(cfg.ApplyStartColumn)
	if dateIdx < 0 || spendIdx < 0 || startIdx < 0 {
		return nil, eris.Errorf("dataset: required columns %q, %q, %q not all present in header %v",
			cfg.DateColumn, cfg.SpendColumn, cfg.ApplyStartColumn, table.Header)
	}
	jobIdx := -1
	if cfg.JobRefColumn != "" {
		jobIdx = table.Column(cfg.JobRefColumn)
	}

	records := make([]model.HistoricalRecord, 0, len(table.Rows))
	skipped := 0
	for _, row := range table.Rows {
		if dateIdx >= len(row) || spendIdx >= len(row) || startIdx >= len(row) {
			skipped++
			continue
		}

		date, err := parseDate(row[dateIdx], cfg.DateFormat)
		if err != nil {
			skipped++
			continue
		}

		spend, err := parseFloat(row[spendIdx])
		if err != nil || spend < 0 {
			skipped++
			continue
		}

		starts, err := parseInt(row[startIdx])
		if err != nil || starts < 0 {
			skipped++
			continue
		}

		rec := model.HistoricalRecord{Date: date, Spend: spend, ApplyStarts: starts}
		if jobIdx >= 0 && jobIdx < len(row) {
			rec.JobRef = row[jobIdx]
		}
		records = append(records, rec)
	}

	if skipped > 0 {
		zap.L().Warn("dataset: skipped unparseable rows", zap.Int("skipped", skipped))
	}
	if len(records) == 0 {
		return nil, eris.New("dataset: no parseable rows")
	}
	return records, nil
}

func parseDate(s, layout string) (time.Time, error) {
	if layout != "" {
		if d, err := time.Parse(layout, s); err == nil {
			return d, nil
		}
	}
	for _, l := range fallbackDateLayouts {
		if d, err := time.Parse(l, s); err == nil {
			return d, nil
		}
	}
	return time.Time{}, eris.Errorf("dataset: unparseable date %q", s)
}

func parseFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimPrefix(strings.TrimSpace(s), "$"), ",", "")
	if s == "" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" {
		return 0, nil
	}
	// Some exports write counts as floats ("12.0").
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// Package pipeline runs one provider end to end: enumerate indicators,
// download each series with pacing, reshape into the wide panel, and write
// the CSV and workbook outputs. Failures are accounted per indicator and
// never abort the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/AscendedCode/ecuador-macro/internal/exporter"
	"github.com/AscendedCode/ecuador-macro/internal/fetch"
	"github.com/AscendedCode/ecuador-macro/internal/panel"
	"github.com/AscendedCode/ecuador-macro/internal/provider"
)

const labelPreviewLen = 60

// Failure records one indicator that could not be downloaded.
type Failure struct {
	Code   string
	Label  string
	Reason string
}

// Result summarizes one provider run.
type Result struct {
	Provider  string
	Total     int
	Data      int
	Empty     int
	Failed    int
	PanelRows int
	Failures  []Failure
	Elapsed   time.Duration
}

// Pipeline extracts every indicator of one source into an output
// directory.
type Pipeline struct {
	source   provider.Source
	pacer    fetch.Pacer
	country  string
	csv      *exporter.CSVWriter
	workbook *exporter.WorkbookWriter
	logger   *slog.Logger
	progress io.Writer
}

// New creates a pipeline writing into outDir. progress receives the
// human-readable per-indicator lines; pass io.Discard to silence them.
func New(source provider.Source, pacer fetch.Pacer, country, outDir string, logger *slog.Logger, progress io.Writer) *Pipeline {
	if pacer == nil {
		pacer = fetch.NopPacer{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if progress == nil {
		progress = io.Discard
	}
	return &Pipeline{
		source:   source,
		pacer:    pacer,
		country:  country,
		csv:      exporter.NewCSVWriter(outDir, logger),
		workbook: exporter.NewWorkbookWriter(outDir, logger),
		logger:   logger,
		progress: progress,
	}
}

// Run executes the pipeline. The returned Result is valid even when err is
// non-nil; a context error mid-run reports what was completed so far.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{Provider: p.source.Name()}
	defer func() { result.Elapsed = time.Since(start) }()

	fmt.Fprintf(p.progress, "Fetching indicator list...\n")
	indicators, err := p.source.Indicators(ctx)
	if err != nil {
		return result, fmt.Errorf("enumerate indicators: %w", err)
	}
	result.Total = len(indicators)
	fmt.Fprintf(p.progress, "Found %d indicators.\n\n", len(indicators))

	codes := sortedByLabel(indicators)

	data := make(map[string]provider.Series)
	coverage := make(map[string]string)
	var metadata []provider.Metadata

	for i, code := range codes {
		label := indicators[code]
		fmt.Fprintf(p.progress, "[%d/%d] %s: %s... ", i+1, len(codes), code, preview(label))

		series, err := p.source.Series(ctx, code)
		switch {
		case err != nil:
			result.Failed++
			result.Failures = append(result.Failures, Failure{
				Code:   code,
				Label:  label,
				Reason: err.Error(),
			})
			fmt.Fprintf(p.progress, "FAILED: %s\n", err.Error())
		case len(series) == 0:
			result.Empty++
			fmt.Fprintf(p.progress, "no data for %s\n", p.country)
		default:
			result.Data++
			data[code] = series
			coverage[code] = series.Coverage()
			metadata = append(metadata, p.source.Describe(ctx, code, label, series))
			fmt.Fprintf(p.progress, "OK (%d periods)\n", len(series))

			if err := p.csv.WriteSeriesCSV(exporter.Slug(label)+".csv", series.Periods(), series); err != nil {
				return result, fmt.Errorf("write series csv for %s: %w", code, err)
			}
		}

		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := p.pacer.Pace(ctx); err != nil {
			return result, err
		}
	}

	fmt.Fprintf(p.progress, "\nResults: %d with data, %d empty, %d failed\n",
		result.Data, result.Empty, result.Failed)

	if err := p.writeTables(data, indicators, coverage, metadata, result); err != nil {
		return result, err
	}

	p.logger.Info("provider pipeline complete",
		slog.String("provider", result.Provider),
		slog.Int("data", result.Data),
		slog.Int("empty", result.Empty),
		slog.Int("failed", result.Failed),
		slog.Int("panel_rows", result.PanelRows))

	return result, nil
}

// writeTables builds and writes the wide panel, the metadata CSV, and the
// combined workbook.
func (p *Pipeline) writeTables(data map[string]provider.Series, labels map[string]string, coverage map[string]string, metadata []provider.Metadata, result *Result) error {
	wide := panel.Build(data, labels)
	result.PanelRows = len(wide.Rows)

	prefix := strings.ToLower(p.country)
	if wide.Empty() {
		fmt.Fprintf(p.progress, "No data retrieved.\n")
	} else {
		name := fmt.Sprintf("%s_%s_all_indicators.csv", prefix, p.source.Name())
		if err := p.csv.WriteSimpleCSV(name, wide.Headers, wide.Rows); err != nil {
			return fmt.Errorf("write panel: %w", err)
		}
		fmt.Fprintf(p.progress, "Wrote %d rows x %d indicators.\n", len(wide.Rows), len(wide.Headers)-1)
	}

	metaHeaders, metaRows := panel.MetadataTable(metadata, coverage)
	if len(metaHeaders) > 0 {
		if err := p.csv.WriteSimpleCSV("indicator_metadata.csv", metaHeaders, metaRows); err != nil {
			return fmt.Errorf("write metadata: %w", err)
		}
	}

	var sheets []exporter.Sheet
	if !wide.Empty() {
		sheets = append(sheets, exporter.Sheet{Name: "Panel", Headers: wide.Headers, Records: wide.Rows})
	}
	sheets = append(sheets, exporter.Sheet{Name: "Metadata", Headers: metaHeaders, Records: metaRows})

	workbookName := fmt.Sprintf("%s_%s.xlsx", prefix, p.source.Name())
	if err := p.workbook.WriteWorkbook(workbookName, sheets); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// sortedByLabel returns the indicator codes ordered by label, then code,
// matching the panel's column order.
func sortedByLabel(indicators map[string]string) []string {
	codes := make([]string, 0, len(indicators))
	for code := range indicators {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if indicators[codes[i]] != indicators[codes[j]] {
			return indicators[codes[i]] < indicators[codes[j]]
		}
		return codes[i] < codes[j]
	})
	return codes
}

// preview truncates a label for the progress line.
func preview(label string) string {
	if len(label) <= labelPreviewLen {
		return label
	}
	return label[:labelPreviewLen]
}

package pipeline

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AscendedCode/ecuador-macro/internal/fetch"
	"github.com/AscendedCode/ecuador-macro/internal/provider"
)

// mockSource is a scripted provider.Source.
type mockSource struct {
	name       string
	indicators map[string]string
	series     map[string]provider.Series
	failures   map[string]error
	enumErr    error
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Indicators(context.Context) (map[string]string, error) {
	if m.enumErr != nil {
		return nil, m.enumErr
	}
	return m.indicators, nil
}

func (m *mockSource) Series(_ context.Context, code string) (provider.Series, error) {
	if err, ok := m.failures[code]; ok {
		return nil, err
	}
	return m.series[code], nil
}

func (m *mockSource) Describe(_ context.Context, code, label string, _ provider.Series) provider.Metadata {
	return provider.Metadata{Code: code, Label: label}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return records
}

// The crawl-and-reshape scenario: A has three observations, B is empty,
// C has two with one period overlapping A.
func TestRun_EndToEnd(t *testing.T) {
	src := &mockSource{
		name: "mock",
		indicators: map[string]string{
			"A": "Alpha",
			"B": "Beta",
			"C": "Gamma",
		},
		series: map[string]provider.Series{
			"A": {"2001": 1.0, "2002": 2.0, "2003": 3.0},
			"B": {},
			"C": {"2003": 30.0, "2004": 40.0},
		},
	}

	dir := t.TempDir()
	var progress bytes.Buffer
	p := New(src, fetch.NopPacer{}, "ECU", dir, slog.Default(), &progress)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Data)
	assert.Equal(t, 1, result.Empty)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, 4, result.PanelRows) // union of {2001..2004}

	// Panel: columns for A and C only, overlap row populated for both.
	records := readCSV(t, filepath.Join(dir, "ecu_mock_all_indicators.csv"))
	require.Len(t, records, 5)
	assert.Equal(t, []string{"Year", "Alpha [A]", "Gamma [C]"}, records[0])
	assert.Equal(t, []string{"2003", "3", "30"}, records[3])
	assert.Equal(t, []string{"2001", "1", ""}, records[1])
	assert.Equal(t, []string{"2004", "", "40"}, records[4])

	// Metadata excludes the empty indicator and carries coverage spans.
	meta := readCSV(t, filepath.Join(dir, "indicator_metadata.csv"))
	require.Len(t, meta, 3)
	assert.Equal(t, []string{"code", "label", "years_available"}, meta[0])
	assert.Equal(t, []string{"A", "Alpha", "2001-2003"}, meta[1])
	assert.Equal(t, []string{"C", "Gamma", "2003-2004"}, meta[2])

	// Per-series CSV row count equals the non-null observation count.
	alpha := readCSV(t, filepath.Join(dir, "alpha.csv"))
	assert.Len(t, alpha, 4) // header + 3
	_, err = os.Stat(filepath.Join(dir, "beta.csv"))
	assert.True(t, os.IsNotExist(err), "empty series must not produce a file")

	// Workbook written alongside.
	_, err = os.Stat(filepath.Join(dir, "ecu_mock.xlsx"))
	assert.NoError(t, err)

	// Progress stream shows each outcome as it happens.
	out := progress.String()
	assert.Contains(t, out, "A: Alpha... OK (3 periods)")
	assert.Contains(t, out, "B: Beta... no data for ECU")
	assert.Contains(t, out, "Results: 2 with data, 1 empty, 0 failed")
}

func TestRun_FailedIndicatorIsAccountedNotFatal(t *testing.T) {
	src := &mockSource{
		name:       "mock",
		indicators: map[string]string{"GOOD": "Good", "BAD": "Bad"},
		series:     map[string]provider.Series{"GOOD": {"2020": 1}},
		failures:   map[string]error{"BAD": errors.New("server error")},
	}

	dir := t.TempDir()
	p := New(src, fetch.NopPacer{}, "ECU", dir, slog.Default(), nil)

	result, err := p.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Data)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Failures, 1)
	assert.Equal(t, "BAD", result.Failures[0].Code)
	assert.Equal(t, "server error", result.Failures[0].Reason)

	// The failed indicator is excluded from the panel.
	records := readCSV(t, filepath.Join(dir, "ecu_mock_all_indicators.csv"))
	assert.Equal(t, []string{"Year", "Good [GOOD]"}, records[0])
}

func TestRun_EnumerationFailure(t *testing.T) {
	src := &mockSource{name: "mock", enumErr: errors.New("catalog unavailable")}

	p := New(src, fetch.NopPacer{}, "ECU", t.TempDir(), slog.Default(), nil)

	result, err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "catalog unavailable")
	assert.Equal(t, 0, result.Total)
}

func TestRun_NoDataWritesNoPanel(t *testing.T) {
	src := &mockSource{
		name:       "mock",
		indicators: map[string]string{"A": "Alpha"},
		series:     map[string]provider.Series{"A": {}},
	}

	dir := t.TempDir()
	p := New(src, fetch.NopPacer{}, "ECU", dir, slog.Default(), nil)

	result, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Empty)
	assert.Zero(t, result.PanelRows)

	_, err = os.Stat(filepath.Join(dir, "ecu_mock_all_indicators.csv"))
	assert.True(t, os.IsNotExist(err))
}

func TestRun_ContextCancelledMidLoop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	src := &mockSource{
		name:       "mock",
		indicators: map[string]string{"A": "Alpha", "B": "Beta"},
		series:     map[string]provider.Series{"A": {"2020": 1}, "B": {"2020": 2}},
	}

	p := New(src, cancelAfterFirst{cancel}, "ECU", t.TempDir(), slog.Default(), nil)

	result, err := p.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, result.Data) // first indicator completed
}

// cancelAfterFirst cancels the run's context on its first Pace call.
type cancelAfterFirst struct {
	cancel context.CancelFunc
}

func (c cancelAfterFirst) Pace(ctx context.Context) error {
	c.cancel()
	return ctx.Err()
}

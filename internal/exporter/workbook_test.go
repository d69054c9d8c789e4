package exporter

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	dir := t.TempDir()
	w := NewWorkbookWriter(dir, slog.Default())

	err := w.WriteWorkbook("provider.xlsx", []Sheet{
		{
			Name:    "Panel",
			Headers: []string{"Year", "GDP [X]"},
			Records: [][]string{{"2020", "99.5"}, {"2021", ""}},
		},
		{
			Name:    "Metadata",
			Headers: []string{"code", "label", "years_available"},
			Records: [][]string{{"X", "GDP", "2020-2021"}},
		},
	})
	require.NoError(t, err)

	f, err := excelize.OpenFile(filepath.Join(dir, "provider.xlsx"))
	require.NoError(t, err)
	defer f.Close()

	assert.ElementsMatch(t, []string{"Panel", "Metadata"}, f.GetSheetList())

	rows, err := f.GetRows("Panel")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Year", "GDP [X]"}, rows[0])
	assert.Equal(t, "99.5", rows[1][1])

	metaRows, err := f.GetRows("Metadata")
	require.NoError(t, err)
	assert.Equal(t, "2020-2021", metaRows[1][2])
}

func TestWriteWorkbook_NothingToWrite(t *testing.T) {
	dir := t.TempDir()
	w := NewWorkbookWriter(dir, slog.Default())

	err := w.WriteWorkbook("empty.xlsx", []Sheet{{Name: "Panel"}})
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "empty.xlsx"))
	assert.True(t, os.IsNotExist(err))
}

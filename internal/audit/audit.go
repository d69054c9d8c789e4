// Package audit scans the output directories after a run and renders the
// final summary table: per provider, file and data-row counts plus status
// and elapsed time, with grand totals.
package audit

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DirStats summarizes the CSV contents of one directory.
type DirStats struct {
	Files int
	Rows  int
}

// CountCSVs counts the CSV files directly inside dir and their total data
// rows (line count minus header). A missing directory or unreadable file
// contributes nothing.
func CountCSVs(dir string) DirStats {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return DirStats{}
	}

	stats := DirStats{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".csv") {
			continue
		}
		rows, err := countDataRows(filepath.Join(dir, entry.Name()))
		if err != nil {
			continue
		}
		stats.Files++
		stats.Rows += rows
	}
	return stats
}

// countDataRows returns the file's line count minus the header line.
func countDataRows(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	lines := 0
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		lines++
	}
	if err := scanner.Err(); err != nil {
		return 0, err
	}
	if lines == 0 {
		return 0, nil
	}
	return lines - 1, nil
}

// Entry is one provider's line in the summary table.
type Entry struct {
	Name    string
	Status  string
	Stats   DirStats
	Elapsed time.Duration
}

// PrintSummary renders the aligned audit table with a grand-total row.
func PrintSummary(w io.Writer, entries []Entry) {
	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 70))
	fmt.Fprintf(w, "  FINAL AUDIT SUMMARY\n")
	fmt.Fprintf(w, "%s\n\n", strings.Repeat("=", 70))

	totalFiles := 0
	totalRows := 0
	for _, entry := range entries {
		fmt.Fprintf(w, "  %-25s  %-10s  %4d files  %9s rows  (%.0fs)\n",
			entry.Name, entry.Status, entry.Stats.Files,
			groupThousands(entry.Stats.Rows), entry.Elapsed.Seconds())
		totalFiles += entry.Stats.Files
		totalRows += entry.Stats.Rows
	}

	fmt.Fprintf(w, "\n  %-25s  %-10s  %4d files  %9s rows\n",
		"TOTAL", "", totalFiles, groupThousands(totalRows))
}

// groupThousands formats n with comma separators.
func groupThousands(n int) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

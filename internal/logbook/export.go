package logbook

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ghaggin/part11/internal/model"
)

const (
	exportTitle     = "LibreClinica Part 11 Compliance Test Log"
	separatorLength = 60
)

// ExportFilename returns the download name for an export generated at t.
func ExportFilename(t time.Time) string {
	return fmt.Sprintf("part11-test-log-%s.txt", t.UTC().Format("2006-01-02"))
}

// Export writes the log in display order. Output only varies with the log
// contents, generatedAt and apiURL.
func (l *Logbook) Export(w io.Writer, generatedAt time.Time, apiURL string) error {
	return WriteExport(w, l.Entries(), generatedAt, apiURL)
}

func WriteExport(w io.Writer, entries []model.LogEntry, generatedAt time.Time, apiURL string) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintln(bw, exportTitle)
	fmt.Fprintf(bw, "Generated: %s\n", generatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	fmt.Fprintf(bw, "API URL: %s\n", apiURL)
	fmt.Fprintln(bw, strings.Repeat("=", separatorLength))
	fmt.Fprintln(bw)

	for _, e := range entries {
		fmt.Fprintf(bw, "[%s] [%s] %s\n", e.Time, e.Severity.Label(), e.Message)
	}

	return bw.Flush()
}

// internal/reporting/csv_reporter.go
package reporting

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/icesdict/dictscraper/internal/schema"
)

// CSVReporter renders the output table as RFC 4180 CSV: a header row
// followed by one row per variable, in traversal order. Multi-line field
// values (the portal's Value lists) rely on standard CSV quoting.
type CSVReporter struct {
	writer io.WriteCloser
}

// NewCSVReporter creates a CSV reporter that owns the given writer.
func NewCSVReporter(w io.WriteCloser) *CSVReporter {
	return &CSVReporter{writer: w}
}

// Write emits the header and all records. The same records always produce
// byte-identical output.
func (r *CSVReporter) Write(records []schema.VariableRecord) error {
	w := csv.NewWriter(r.writer)

	if err := w.Write(schema.Columns()); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, record := range records {
		if err := w.Write(record.Row()); err != nil {
			return fmt.Errorf("failed to write CSV row for %q: %w", record.Name, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output: %w", err)
	}
	return nil
}

// Close releases the underlying writer.
func (r *CSVReporter) Close() error {
	return r.writer.Close()
}

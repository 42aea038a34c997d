// internal/reporting/reporter_test.go
package reporting_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/icesdict/dictscraper/internal/reporting"
	"github.com/icesdict/dictscraper/internal/schema"
)

// sampleRecords builds a small output table with awkward field content:
// embedded newlines (from <br> flattening), commas and quotes all need CSV
// quoting to round-trip.
func sampleRecords() []schema.VariableRecord {
	return []schema.VariableRecord{
		{
			Name:        "ADMDATE",
			Description: "Date of admission",
			Type:        "Num",
			Details: schema.VariableDetails{
				Label:       "Admission date",
				TypeLength:  "Num 8",
				AvailableIn: "1988 - current",
				Format:      "YYYYMMDD",
			},
		},
		{
			Name:        "DISP",
			Description: "Discharge disposition, per CIHI",
			Type:        "Char",
			Details: schema.VariableDetails{
				Label: `Discharge "disposition"`,
				Value: "01 = Transferred\n02 = Discharged",
			},
		},
	}
}

func TestNew_CSV_File(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "output.csv")

	r, err := reporting.New("csv", tmpFile)
	require.NoError(t, err)
	require.NotNil(t, r)

	// File should exist already (created by os.Create in New).
	_, err = os.Stat(tmpFile)
	assert.NoError(t, err, "Output file should have been created")

	require.NoError(t, r.Write(sampleRecords()))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	// Header + one line per record, plus one extra physical line for the
	// embedded newline in the quoted Value field.
	assert.Equal(t, strings.Join(schema.Columns(), ","), lines[0])
	assert.Contains(t, string(data), `"01 = Transferred`)
}

func TestCSVReporter_RowCount(t *testing.T) {
	// Header + N rows: records without embedded newlines produce exactly
	// N+1 physical lines.
	records := []schema.VariableRecord{
		{Name: "A"}, {Name: "B"}, {Name: "C"},
	}

	tmpFile := filepath.Join(t.TempDir(), "rows.csv")
	r, err := reporting.New("csv", tmpFile)
	require.NoError(t, err)
	require.NoError(t, r.Write(records))
	require.NoError(t, r.Close())

	data, err := os.ReadFile(tmpFile)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	require.Len(t, lines, len(records)+1)
	assert.True(t, strings.HasPrefix(lines[1], "A,"))
	assert.True(t, strings.HasPrefix(lines[3], "C,"))
}

func TestCSVReporter_Deterministic(t *testing.T) {
	// The same records written twice must produce byte-identical files.
	write := func(path string) []byte {
		r, err := reporting.New("csv", path)
		require.NoError(t, err)
		require.NoError(t, r.Write(sampleRecords()))
		require.NoError(t, r.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		return data
	}

	dir := t.TempDir()
	first := write(filepath.Join(dir, "first.csv"))
	second := write(filepath.Join(dir, "second.csv"))
	assert.Equal(t, first, second)
}

func TestNew_Stdout(t *testing.T) {
	// Both the empty path and the literal "stdout" select standard output;
	// Close must be a no-op for it.
	for _, path := range []string{"", "stdout"} {
		r, err := reporting.New("csv", path)
		require.NoError(t, err)
		assert.NotNil(t, r)
		assert.NoError(t, r.Close())
	}
}

func TestNew_UnsupportedFormat(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "output.xml")

	r, err := reporting.New("xml", tmpFile)
	assert.Error(t, err)
	assert.Nil(t, r)
	assert.Contains(t, err.Error(), "unsupported output format: xml")

	// The file handle must have been closed by the cleanup path.
	info, err := os.Stat(tmpFile)
	require.NoError(t, err, "File should still exist after failure")
	assert.Equal(t, int64(0), info.Size(), "File should be empty as initialization failed")
}

func TestNew_FileCreationFailure(t *testing.T) {
	// Using a directory path as the output file forces os.Create to fail.
	invalidPath := t.TempDir()

	r, err := reporting.New("csv", invalidPath)
	assert.Error(t, err)
	assert.Nil(t, r)
	assert.Contains(t, err.Error(), "failed to create output file")
}

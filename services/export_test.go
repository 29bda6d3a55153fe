package services

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

var (
	reportHeader  = []string{"Resource", "Department", "Hours"}
	reportRecords = [][]string{
		{"Priya Nair", "Engineering", "152.00"},
		{"Tom Okafor", "Design, UX", "88.50"},
	}
)

func TestRenderCSV_RoundTrip(t *testing.T) {
	data, err := renderCSV(reportHeader, reportRecords)
	require.NoError(t, err)

	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, reportHeader, rows[0])
	assert.Equal(t, reportRecords[0], rows[1])
	// field with a comma survives quoting
	assert.Equal(t, "Design, UX", rows[2][1])
}

func TestRenderXLSX_RoundTrip(t *testing.T) {
	data, err := renderXLSX("utilization", reportHeader, reportRecords)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.NotContains(t, f.GetSheetList(), "Sheet1")

	rows, err := f.GetRows("utilization")
	require.NoError(t, err)

	require.Len(t, rows, 3)
	assert.Equal(t, reportHeader, rows[0])
	assert.Equal(t, reportRecords[0], rows[1])
	assert.Equal(t, reportRecords[1], rows[2])
}

func TestRenderHTML_EscapesValues(t *testing.T) {
	data, err := renderHTML("timesheets", []string{"Notes"}, [][]string{{"<script>alert(1)</script>"}})
	require.NoError(t, err)

	html := string(data)
	assert.Contains(t, html, "<h1>timesheets</h1>")
	assert.Contains(t, html, "<th>Notes</th>")
	assert.NotContains(t, html, "<script>alert(1)</script>")
}

func TestParseExportRange(t *testing.T) {
	from, to, err := parseExportRange("2026-05-01", "2026-06-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC), from)
	assert.Equal(t, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC), to)

	// no range given defaults to the current calendar month
	from, to, err = parseExportRange("", "")
	require.NoError(t, err)
	now := time.Now()
	assert.Equal(t, time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()), from)
	assert.Equal(t, from.AddDate(0, 1, 0), to)

	_, _, err = parseExportRange("2026-06-01", "2026-05-01")
	assert.Error(t, err)

	_, _, err = parseExportRange("not-a-date", "")
	assert.Error(t, err)
}

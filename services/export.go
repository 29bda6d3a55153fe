package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"html/template"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/rizwana27/psa/db"
	"github.com/rizwana27/psa/internal/analytics"
)

// ExportService renders timesheet, invoice and utilization reports as
// CSV, HTML or XLSX files.
type ExportService struct {
	PG        *sql.DB
	Analytics *AnalyticsService

	timesheets *TimesheetService
	invoices   *InvoiceService
}

// ExportResult is a rendered report ready to stream to the caller
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

func NewExportService(pg *sql.DB, analyticsService *AnalyticsService) *ExportService {
	return &ExportService{
		PG:         pg,
		Analytics:  analyticsService,
		timesheets: NewTimesheetService(pg),
		invoices:   NewInvoiceService(pg),
	}
}

// Export renders the requested report in the requested format
func (s *ExportService) Export(ctx context.Context, req db.ExportRequest) (ExportResult, error) {
	from, to, err := parseExportRange(req.From, req.To)
	if err != nil {
		return ExportResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var header []string
	var records [][]string

	switch req.Report {
	case "timesheets":
		header, records, err = s.timesheetRecords(from, to)
	case "invoices":
		header, records, err = s.invoiceRecords()
	case "utilization":
		header, records, err = s.utilizationRecords(ctx, from, to)
	default:
		return ExportResult{}, fmt.Errorf("%w: unknown report %q", ErrInvalidInput, req.Report)
	}
	if err != nil {
		return ExportResult{}, err
	}

	name := fmt.Sprintf("%s-%s", req.Report, time.Now().Format("2006-01-02"))

	switch req.Format {
	case db.ExportFormatCSV:
		data, err := renderCSV(header, records)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{Filename: name + ".csv", ContentType: "text/csv", Data: data}, nil
	case db.ExportFormatHTML:
		data, err := renderHTML(req.Report, header, records)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{Filename: name + ".html", ContentType: "text/html", Data: data}, nil
	case db.ExportFormatXLSX:
		data, err := renderXLSX(req.Report, header, records)
		if err != nil {
			return ExportResult{}, err
		}
		return ExportResult{
			Filename:    name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Data:        data,
		}, nil
	default:
		return ExportResult{}, fmt.Errorf("%w: unknown format %q", ErrInvalidInput, req.Format)
	}
}

// parseExportRange defaults to the current calendar month when no range
// is given.
func parseExportRange(fromStr, toStr string) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	to := from.AddDate(0, 1, 0)

	if fromStr != "" {
		parsed, err := time.Parse("2006-01-02", fromStr)
		if err != nil {
			return from, to, fmt.Errorf("invalid from date: %v", err)
		}
		from = parsed
	}
	if toStr != "" {
		parsed, err := time.Parse("2006-01-02", toStr)
		if err != nil {
			return from, to, fmt.Errorf("invalid to date: %v", err)
		}
		to = parsed
	}
	if !to.After(from) {
		return from, to, fmt.Errorf("to date must be after from date")
	}

	return from, to, nil
}

func (s *ExportService) timesheetRecords(from, to time.Time) ([]string, [][]string, error) {
	entries, err := s.timesheets.ListEntries(map[string]interface{}{
		"from": from,
		"to":   to,
	})
	if err != nil {
		return nil, nil, err
	}

	header := []string{"Date", "Resource", "Project", "Hours", "Billable", "Status", "Notes"}
	records := make([][]string, 0, len(entries))
	for _, e := range entries {
		records = append(records, []string{
			e.Date.Format("2006-01-02"),
			e.ResourceName,
			e.ProjectName,
			strconv.FormatFloat(e.Hours, 'f', 2, 64),
			strconv.FormatBool(e.Billable),
			e.Status,
			e.Notes,
		})
	}

	return header, records, nil
}

func (s *ExportService) invoiceRecords() ([]string, [][]string, error) {
	invoices, err := s.invoices.ListInvoices(map[string]interface{}{})
	if err != nil {
		return nil, nil, err
	}

	header := []string{"Invoice Number", "Client", "Project", "Amount", "Status", "Due Date", "Paid At"}
	records := make([][]string, 0, len(invoices))
	for _, inv := range invoices {
		dueDate := ""
		if inv.DueDate != nil {
			dueDate = inv.DueDate.Format("2006-01-02")
		}
		paidAt := ""
		if inv.PaidAt != nil {
			paidAt = inv.PaidAt.Format("2006-01-02")
		}
		records = append(records, []string{
			inv.InvoiceNumber,
			inv.ClientName,
			inv.ProjectName,
			strconv.FormatFloat(inv.Amount, 'f', 2, 64),
			inv.Status,
			dueDate,
			paidAt,
		})
	}

	return header, records, nil
}

func (s *ExportService) utilizationRecords(ctx context.Context, from, to time.Time) ([]string, [][]string, error) {
	report, err := s.Analytics.GetUtilization(ctx, from, to)
	if err != nil {
		return nil, nil, err
	}

	header := []string{"Resource", "Department", "Total Hours", "Billable Hours", "Expected Hours", "Utilization %", "Allocation %", "Flags"}
	records := make([][]string, 0, len(report.PerResource))
	for _, m := range report.PerResource {
		records = append(records, []string{
			m.ResourceName,
			m.Department,
			strconv.FormatFloat(m.TotalHours, 'f', 2, 64),
			strconv.FormatFloat(m.BillableHours, 'f', 2, 64),
			strconv.FormatFloat(m.ExpectedHours, 'f', 2, 64),
			strconv.Itoa(m.UtilizationPct),
			strconv.Itoa(m.AllocationPct),
			utilizationFlags(m),
		})
	}

	return header, records, nil
}

func utilizationFlags(m analytics.UtilizationMetric) string {
	switch {
	case m.IsOverUtilized:
		return "over-utilized"
	case m.IsUnderUtilized:
		return "under-utilized"
	default:
		return ""
	}
}

func renderCSV(header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}

	return buf.Bytes(), nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 6px 10px; text-align: left; }
th { background: #f4f4f4; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
<p>Generated {{.Generated}}</p>
<table>
<tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr>
{{range .Records}}<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{end}}</table>
</body>
</html>
`))

func renderHTML(title string, header []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	err := reportTemplate.Execute(&buf, map[string]interface{}{
		"Title":     title,
		"Generated": time.Now().Format(time.RFC1123),
		"Header":    header,
		"Records":   records,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render HTML report: %w", err)
	}

	return buf.Bytes(), nil
}

func renderXLSX(sheet string, header []string, records [][]string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, name := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("failed to write header: %w", err)
		}
	}

	for rowIdx, record := range records {
		for col, value := range record {
			cell, _ := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, fmt.Errorf("failed to write row: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to serialize workbook: %w", err)
	}

	return buf.Bytes(), nil
}

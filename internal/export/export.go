// Package export renders leads as CSV files and Excel workbooks.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/octobees/leads-scraper/internal/entity"
	"github.com/octobees/leads-scraper/internal/service/scoring"
)

// Content types of the rendered files.
const (
	ContentTypeCSV   = "text/csv"
	ContentTypeExcel = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

const leadsSheet = "Leads"

// Column is one exported column and its Excel width.
type Column struct {
	Header string
	Width  float64
}

// LeadColumns are the columns of a lead export, in order.
var LeadColumns = []Column{
	{"Company", 25},
	{"Website", 30},
	{"LinkedIn", 30},
	{"Email", 30},
	{"Phone", 15},
	{"Industry", 20},
	{"Business Type", 15},
	{"Employee Count", 15},
	{"Revenue", 15},
	{"Year Founded", 12},
	{"BBB Rating", 12},
	{"Street", 30},
	{"City", 20},
	{"State", 10},
	{"Zip Code", 10},
	{"Country", 15},
	{"Products/Services", 40},
	{"Description", 50},
	{"Status", 12},
	{"Notes", 30},
	{"Created At", 20},
	{"Updated At", 20},
	{"Lead Score", 12},
}

// Filename returns "<prefix>-YYYY-MM-DD.<ext>" for the given day.
func Filename(prefix, ext string, now time.Time) string {
	return fmt.Sprintf("%s-%s.%s", prefix, now.UTC().Format(time.DateOnly), ext)
}

// LeadRow flattens a lead into the LeadColumns order.
func LeadRow(lead entity.Lead) []string {
	return []string{
		lead.Company,
		lead.Website,
		lead.LinkedIn,
		lead.Email,
		lead.Phone,
		lead.Industry,
		lead.BusinessType,
		lead.EmployeeCount,
		lead.Revenue,
		lead.YearFounded,
		lead.BBBRating,
		lead.Street,
		lead.City,
		lead.State,
		lead.ZipCode,
		lead.Country,
		strings.Join(lead.ProductsServices, "; "),
		lead.Description,
		lead.Status,
		lead.Notes,
		formatTime(lead.CreatedAt),
		formatTime(lead.UpdatedAt),
		strconv.Itoa(scoring.ScoreLead(lead)),
	}
}

// WriteCSV writes a header row followed by one row per lead.
func WriteCSV(w io.Writer, leads []entity.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers(LeadColumns)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, lead := range leads {
		if err := cw.Write(LeadRow(lead)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteExcel writes a single "Leads" sheet workbook.
func WriteExcel(w io.Writer, leads []entity.Lead) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", leadsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	rows := make([][]any, 0, len(leads))
	for _, lead := range leads {
		row := LeadRow(lead)
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		// numeric score so spreadsheet sorting works
		cells[len(cells)-1] = scoring.ScoreLead(lead)
		rows = append(rows, cells)
	}
	if err := writeTable(f, leadsSheet, LeadColumns, rows); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// writeTable fills sheet with a bold header row, column widths and the data rows.
func writeTable(f *excelize.File, sheet string, columns []Column, rows [][]any) error {
	header := make([]any, len(columns))
	for i, col := range columns {
		header[i] = col.Header
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, name, name, col.Width); err != nil {
			return fmt.Errorf("set column width: %w", err)
		}
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(columns), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

func headers(columns []Column) []string {
	out := make([]string, len(columns))
	for i, col := range columns {
		out[i] = col.Header
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

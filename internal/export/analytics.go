package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/octobees/leads-scraper/internal/entity"
	"github.com/octobees/leads-scraper/internal/service/scoring"
)

const unknownLabel = "Unknown"

// Breakdown counts leads sharing one label.
type Breakdown struct {
	Label      string
	Count      int
	Percentage string
}

// Analytics summarises a set of leads.
type Analytics struct {
	Total          int
	New            int
	Contacted      int
	Qualified      int
	Converted      int
	ConversionRate string
	Industries     []Breakdown
	Locations      []Breakdown
}

var (
	metricColumns    = []Column{{"Metric", 25}, {"Value", 20}}
	industryColumns  = []Column{{"Industry", 25}, {"Count", 15}, {"Percentage", 15}}
	locationColumns  = []Column{{"Location", 30}, {"Count", 15}, {"Percentage", 15}}
	analyticsColumns = []Column{
		{"Company", 25}, {"Industry", 20}, {"City", 20}, {"State", 10}, {"Status", 12},
		{"Created Date", 20}, {"Last Updated", 20}, {"Lead Score", 12},
	}
)

// Analyze counts statuses and groups leads by industry and by "city, state".
// Breakdowns keep the order in which labels first appear.
func Analyze(leads []entity.Lead) Analytics {
	a := Analytics{Total: len(leads)}
	industries := newCounter()
	locations := newCounter()
	for _, lead := range leads {
		switch lead.Status {
		case entity.LeadStatusNew:
			a.New++
		case entity.LeadStatusContacted:
			a.Contacted++
		case entity.LeadStatusQualified:
			a.Qualified++
		case entity.LeadStatusConverted:
			a.Converted++
		}
		industries.add(orUnknown(lead.Industry))
		locations.add(orUnknown(lead.City) + ", " + orUnknown(lead.State))
	}
	a.ConversionRate = percentage(a.Converted, a.Total)
	a.Industries = industries.breakdown(a.Total)
	a.Locations = locations.breakdown(a.Total)
	return a
}

// WriteAnalyticsExcel writes the Overview, Industry Breakdown and Geographic Breakdown sheets.
func WriteAnalyticsExcel(w io.Writer, leads []entity.Lead) error {
	a := Analyze(leads)
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", "Overview"); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	overview := [][]any{
		{"Total Leads", a.Total},
		{"New Leads", a.New},
		{"Contacted Leads", a.Contacted},
		{"Qualified Leads", a.Qualified},
		{"Converted Leads", a.Converted},
		{"Conversion Rate", a.ConversionRate},
	}
	if err := writeTable(f, "Overview", metricColumns, overview); err != nil {
		return err
	}

	sheets := []struct {
		name    string
		columns []Column
		rows    []Breakdown
	}{
		{"Industry Breakdown", industryColumns, a.Industries},
		{"Geographic Breakdown", locationColumns, a.Locations},
	}
	for _, s := range sheets {
		if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		rows := make([][]any, 0, len(s.rows))
		for _, b := range s.rows {
			rows = append(rows, []any{b.Label, b.Count, b.Percentage})
		}
		if err := writeTable(f, s.name, s.columns, rows); err != nil {
			return err
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteAnalyticsCSV writes one row per lead.
func WriteAnalyticsCSV(w io.Writer, leads []entity.Lead) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(headers(analyticsColumns)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, lead := range leads {
		row := []string{
			lead.Company, lead.Industry, lead.City, lead.State, lead.Status,
			formatTime(lead.CreatedAt), formatTime(lead.UpdatedAt),
			strconv.Itoa(scoring.ScoreLead(lead)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

type counter struct {
	order  []string
	counts map[string]int
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(label string) {
	if _, ok := c.counts[label]; !ok {
		c.order = append(c.order, label)
	}
	c.counts[label]++
}

func (c *counter) breakdown(total int) []Breakdown {
	out := make([]Breakdown, 0, len(c.order))
	for _, label := range c.order {
		n := c.counts[label]
		out = append(out, Breakdown{Label: label, Count: n, Percentage: percentage(n, total)})
	}
	return out
}

func percentage(n, total int) string {
	if total == 0 {
		return "0.00%"
	}
	return fmt.Sprintf("%.2f%%", float64(n)/float64(total)*100)
}

func orUnknown(v string) string {
	if v == "" {
		return unknownLabel
	}
	return v
}

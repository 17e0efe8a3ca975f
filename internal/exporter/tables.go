package exporter

import (
	"fmt"
	"io"

	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

// SummaryTable is one exportable summary table with a stable name used for
// file naming and the per-table API route.
type SummaryTable struct {
	Name    string     `json:"name"`
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// CategoryTable renders a categorical distribution for export.
func CategoryTable(name string, counts []domain.CategoryCount) SummaryTable {
	rows := make([][]string, 0, len(counts))
	for _, c := range counts {
		rows = append(rows, []string{c.Category, formatInt(c.Count)})
	}
	return SummaryTable{Name: name, Headers: []string{"category", "count"}, Rows: rows}
}

// GroupMeanTable renders grouped averages for export.
func GroupMeanTable(name string, means []domain.GroupMean) SummaryTable {
	rows := make([][]string, 0, len(means))
	for _, m := range means {
		rows = append(rows, []string{m.Category, formatFloat(m.Mean), formatInt(m.Count)})
	}
	return SummaryTable{Name: name, Headers: []string{"category", "mean", "count"}, Rows: rows}
}

// CrossCountTable renders a long-form pivot for export.
func CrossCountTable(name string, cells []domain.CrossCount) SummaryTable {
	rows := make([][]string, 0, len(cells))
	for _, c := range cells {
		rows = append(rows, []string{c.Row, c.Column, formatInt(c.Count)})
	}
	return SummaryTable{Name: name, Headers: []string{"row", "column", "count"}, Rows: rows}
}

// SummaryTables flattens a dataset summary into its exportable tables, in a
// fixed order matching the dashboard tabs.
func SummaryTables(summary domain.DatasetSummary) []SummaryTable {
	return []SummaryTable{
		CategoryTable("gender_distribution", summary.Gender),
		CategoryTable("race_distribution", summary.Race),
		CategoryTable("religion_distribution", summary.Religion),
		CategoryTable("nutrition_status_distribution", summary.NutritionStatus),
		CategoryTable("income_category_distribution", summary.IncomeCategory),
		GroupMeanTable("bmi_by_gender", summary.BMIByGender),
		GroupMeanTable("bmi_by_district", summary.BMIByDistrict),
		CrossCountTable("nutrition_by_district", summary.NutritionByDistrict),
		CrossCountTable("income_by_nutrition", summary.IncomeByNutrition),
	}
}

// WriteTable streams one summary table as CSV.
func WriteTable(w io.Writer, table SummaryTable, bom bool) error {
	sw, err := NewStreamWriter(w, table.Headers, bom)
	if err != nil {
		return err
	}
	for i, row := range table.Rows {
		if err := sw.WriteRecord(row); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", table.Name, i, err)
		}
	}
	return sw.Close()
}

// WriteSummaryFiles exports every summary table to the summaries directory,
// one CSV per table, named after the table.
func (w *CSVWriter) WriteSummaryFiles(summary domain.DatasetSummary) error {
	for _, table := range SummaryTables(summary) {
		if err := w.WriteSimpleCSV("summaries/"+table.Name+".csv", table.Headers, table.Rows); err != nil {
			return fmt.Errorf("failed to export summary %s: %w", table.Name, err)
		}
	}
	return nil
}

package exporter

import (
	"fmt"
	"io"

	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

// recordHeaders is the fixed column order of a cleaned-record export. The
// snake_case names round-trip through the dataset loader's header aliases, so
// an exported file can be re-imported as a CSV source.
var recordHeaders = []string{
	"gender",
	"race",
	"religion",
	"age_months",
	"weight_kg",
	"height_cm",
	"father_salary_raw",
	"mother_salary_raw",
	"guardian_salary_raw",
	"father_salary",
	"mother_salary",
	"guardian_salary",
	"avg_parental_income",
	"bmi",
	"income_category",
	"nutrition_status",
	"district",
	"parliament_zone",
	"state_constituency",
}

// RecordHeaders returns the export column order for cleaned records.
func RecordHeaders() []string {
	headers := make([]string, len(recordHeaders))
	copy(headers, recordHeaders)
	return headers
}

// recordRow renders one cleaned record in the recordHeaders order.
func recordRow(r domain.Record) []string {
	return []string{
		r.Gender,
		r.Race,
		r.Religion,
		formatOptionalFloat(r.AgeMonths),
		formatOptionalFloat(r.WeightKG),
		formatOptionalFloat(r.HeightCM),
		r.FatherSalaryRaw,
		r.MotherSalaryRaw,
		r.GuardianSalaryRaw,
		formatOptionalFloat(r.FatherSalary),
		formatOptionalFloat(r.MotherSalary),
		formatOptionalFloat(r.GuardianSalary),
		formatOptionalFloat(r.AvgParentalIncome),
		formatOptionalFloat(r.BMI),
		r.IncomeCategory,
		r.NutritionStatus,
		r.District,
		r.ParliamentZone,
		r.StateConstituency,
	}
}

// WriteRecords streams cleaned records as CSV to any writer. With bom set,
// the output carries the UTF-8 byte-order mark for Excel.
func WriteRecords(w io.Writer, records []domain.Record, bom bool) error {
	sw, err := NewStreamWriter(w, recordHeaders, bom)
	if err != nil {
		return err
	}
	for i, r := range records {
		if err := sw.WriteRecord(recordRow(r)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return sw.Close()
}

// WriteRecordsFile exports cleaned records to a file in the reports layout.
func (w *CSVWriter) WriteRecordsFile(filePath string, records []domain.Record) error {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, recordRow(r))
	}
	return w.WriteSimpleCSV(filePath, RecordHeaders(), rows)
}

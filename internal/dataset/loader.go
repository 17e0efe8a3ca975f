package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

// DefaultSheetName is the worksheet the source workbook keeps its records on.
const DefaultSheetName = "Sheet1"

// LoadOptions controls workbook and CSV loading.
type LoadOptions struct {
	// SheetName is the preferred worksheet. When empty or not found, the
	// loader scans every sheet for one with a recognizable header row.
	SheetName string
}

// headerAliases maps each canonical field to the header spellings that select
// it. The Malay headers come from the source workbook; the snake_case forms
// let the cleaned CSV round-trip through the same loader.
var headerAliases = map[string][]string{
	"gender":             {"jantina", "gender"},
	"race":               {"bangsa", "race"},
	"religion":           {"agama", "religion"},
	"age_months":         {"umur (bulan)", "umur_bulan", "age (months)", "age_months"},
	"weight_kg":          {"berat (kg)", "berat_kg", "weight (kg)", "weight_kg"},
	"height_cm":          {"tinggi (cm)", "tinggi_cm", "height (cm)", "height_cm"},
	"father_salary":      {"gaji bapa", "gaji_bapa", "father salary", "father_salary", "father_salary_raw"},
	"mother_salary":      {"gaji ibu", "gaji_ibu", "mother salary", "mother_salary", "mother_salary_raw"},
	"guardian_salary":    {"gaji penjaga", "gaji_penjaga", "guardian salary", "guardian_salary", "guardian_salary_raw"},
	"income_category":    {"pendapatan keluarga", "pendapatan_keluarga", "income category", "income_category", "household income"},
	"nutrition_status":   {"status pemakanan", "status_pemakanan", "nutrition status", "nutrition_status"},
	"district":           {"daerah", "district"},
	"parliament_zone":    {"parlimen", "parliament", "parliament_zone"},
	"state_constituency": {"dun", "state constituency", "state_constituency"},
}

// requiredColumns must all be present for a sheet to count as the dataset.
// Every other column is optional; a missing column reads as missing values,
// which the cleaning pipeline resolves to sentinels.
var requiredColumns = []string{"gender", "district", "weight_kg", "height_cm"}

// minHeaderMatches is how many known headers a row needs before it is
// considered the header row.
const minHeaderMatches = 4

// LoadWorkbook reads raw records from an Excel workbook on disk.
func LoadWorkbook(path string, opts LoadOptions) ([]domain.RawRecord, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()
	return workbookRecords(f, opts)
}

// LoadWorkbookFrom reads raw records from workbook bytes, for sources fetched
// over the network.
func LoadWorkbookFrom(r io.Reader, opts LoadOptions) ([]domain.RawRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook stream: %w", err)
	}
	defer f.Close()
	return workbookRecords(f, opts)
}

// LoadCSV reads raw records from a CSV file on disk, accepting the same
// header variants as the workbook loader.
func LoadCSV(path string) ([]domain.RawRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv %s: %w", path, err)
	}
	defer f.Close()
	records, err := LoadCSVFrom(f)
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	return records, nil
}

// LoadCSVFrom reads raw records from CSV data.
func LoadCSVFrom(r io.Reader) ([]domain.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(rows) > 0 && len(rows[0]) > 0 {
		rows[0][0] = strings.TrimPrefix(rows[0][0], "\uFEFF")
	}
	return recordsFromRows(rows)
}

func workbookRecords(f *excelize.File, opts LoadOptions) ([]domain.RawRecord, error) {
	sheet := opts.SheetName
	if sheet == "" {
		sheet = DefaultSheetName
	}

	var lastErr error
	if rows, err := f.GetRows(sheet); err == nil {
		records, rerr := recordsFromRows(rows)
		if rerr == nil {
			return records, nil
		}
		lastErr = rerr
	}

	// Preferred sheet missing or unrecognizable: scan the rest.
	for _, name := range f.GetSheetList() {
		if name == sheet {
			continue
		}
		rows, err := f.GetRows(name)
		if err != nil {
			lastErr = err
			continue
		}
		records, err := recordsFromRows(rows)
		if err == nil {
			return records, nil
		}
		lastErr = err
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("no sheet with a recognizable header row")
	}
	return nil, fmt.Errorf("locate dataset sheet: %w", lastErr)
}

// recordsFromRows finds the header row, maps columns, and extracts every data
// row below it. Ragged rows and unknown columns are tolerated; a missing
// required column fails the whole load.
func recordsFromRows(rows [][]string) ([]domain.RawRecord, error) {
	headerRow, columns := findHeader(rows)
	if headerRow < 0 {
		return nil, fmt.Errorf("no header row found")
	}

	for _, col := range requiredColumns {
		if _, ok := columns[col]; !ok {
			return nil, fmt.Errorf("required column %q not found", col)
		}
	}

	records := make([]domain.RawRecord, 0, len(rows)-headerRow-1)
	for _, row := range rows[headerRow+1:] {
		if rowEmpty(row, columns) {
			continue
		}
		records = append(records, domain.RawRecord{
			Gender:            cell(row, columns, "gender"),
			Race:              cell(row, columns, "race"),
			Religion:          cell(row, columns, "religion"),
			AgeMonths:         cell(row, columns, "age_months"),
			WeightKG:          cell(row, columns, "weight_kg"),
			HeightCM:          cell(row, columns, "height_cm"),
			FatherSalary:      cell(row, columns, "father_salary"),
			MotherSalary:      cell(row, columns, "mother_salary"),
			GuardianSalary:    cell(row, columns, "guardian_salary"),
			IncomeCategory:    cell(row, columns, "income_category"),
			NutritionStatus:   cell(row, columns, "nutrition_status"),
			District:          cell(row, columns, "district"),
			ParliamentZone:    cell(row, columns, "parliament_zone"),
			StateConstituency: cell(row, columns, "state_constituency"),
		})
	}
	return records, nil
}

// findHeader scans for the first row matching enough known headers and maps
// canonical field names to column positions. The first matching column wins
// when a header repeats.
func findHeader(rows [][]string) (int, map[string]int) {
	for i, row := range rows {
		columns := make(map[string]int)
		for j, header := range row {
			folded := foldToken(header)
			if folded == "" {
				continue
			}
			for field, aliases := range headerAliases {
				if _, taken := columns[field]; taken {
					continue
				}
				for _, alias := range aliases {
					if folded == alias {
						columns[field] = j
						break
					}
				}
			}
		}
		if len(columns) >= minHeaderMatches {
			return i, columns
		}
	}
	return -1, nil
}

func cell(row []string, columns map[string]int, field string) string {
	idx, ok := columns[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func rowEmpty(row []string, columns map[string]int) bool {
	for _, idx := range columns {
		if idx < len(row) && strings.TrimSpace(row[idx]) != "" {
			return false
		}
	}
	return true
}

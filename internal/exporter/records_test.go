package exporter

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

func sampleRecords() []domain.Record {
	return []domain.Record{
		{
			Gender:            "LELAKI",
			Race:              "MELAYU",
			Religion:          "ISLAM",
			AgeMonths:         domain.Float(48),
			WeightKG:          domain.Float(15),
			HeightCM:          domain.Float(100),
			FatherSalaryRaw:   "RM1000",
			FatherSalary:      domain.Float(1000),
			MotherSalary:      domain.Float(2000),
			AvgParentalIncome: domain.Float(1500),
			BMI:               domain.Float(15),
			IncomeCategory:    "RM1000-RM3999",
			NutritionStatus:   "Normal",
			District:          "Kota Bharu",
			ParliamentZone:    "KETEREH",
			StateConstituency: "KADOK",
		},
		{
			Gender:          "PEREMPUAN",
			IncomeCategory:  "No Information",
			NutritionStatus: "No Data",
			District:        "No Information",
		},
	}
}

func TestWriteRecords(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, sampleRecords(), true))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, utf8BOM), "expected UTF-8 BOM prefix")

	reader := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(out, utf8BOM)))
	rows, err := reader.ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, RecordHeaders(), rows[0])

	first := rows[1]
	assert.Equal(t, "LELAKI", first[0])
	assert.Equal(t, "15", first[indexOf(t, rows[0], "bmi")])
	assert.Equal(t, "1500", first[indexOf(t, rows[0], "avg_parental_income")])

	// Absent numerics export as empty cells, never zero.
	second := rows[2]
	bmiIdx := indexOf(t, rows[0], "bmi")
	assert.Empty(t, second[bmiIdx])
	assert.Equal(t, "No Data", second[indexOf(t, rows[0], "nutrition_status")])
}

func TestWriteRecordsNoBOM(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteRecords(&buf, nil, false))
	assert.False(t, bytes.HasPrefix(buf.Bytes(), utf8BOM))
	assert.Equal(t, strings.Join(RecordHeaders(), ","), strings.TrimSpace(buf.String()))
}

func TestWriteRecordsFile(t *testing.T) {
	paths := testPaths(t)
	w := NewCSVWriter(paths)

	require.NoError(t, w.WriteRecordsFile("cleaned_records.csv", sampleRecords()))

	rows := readCSVFile(t, paths.GetReportPath("cleaned_records.csv"))
	require.Len(t, rows, 3)
	assert.Equal(t, RecordHeaders(), rows[0])
}

func indexOf(t *testing.T, headers []string, name string) int {
	t.Helper()
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	t.Fatalf("header %q not found", name)
	return -1
}

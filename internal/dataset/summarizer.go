package dataset

import (
	"context"
	"log/slog"
	"sort"

	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

// Summarizer is the single source of truth for every summary table the
// dashboard shows. All aggregation goes through the typed helpers below so
// the tables share one deterministic ordering policy instead of the ad-hoc
// count-then-rename shape the source dashboards repeated.
type Summarizer struct {
	logger *slog.Logger
}

// NewSummarizer creates a summarizer with the given logger.
func NewSummarizer(logger *slog.Logger) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Summarizer{logger: logger}
}

// CountBy aggregates records into (category, count) pairs ordered by
// descending count; ties keep the order categories first appear in the
// records. Records whose key is empty are skipped, the way null rows drop out
// of a value count.
func CountBy(records []domain.Record, key func(domain.Record) string) []domain.CategoryCount {
	counts := make(map[string]int)
	var order []string
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
	}

	result := make([]domain.CategoryCount, 0, len(order))
	for _, k := range order {
		result = append(result, domain.CategoryCount{Category: k, Count: counts[k]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

// MeanBy averages an optional numeric field per category, rounded to two
// decimals, ordered by ascending category. Absent values are skipped and
// categories where every value is absent are omitted, never reported as NaN.
func MeanBy(records []domain.Record, key func(domain.Record) string, value func(domain.Record) *float64) []domain.GroupMean {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		v, ok := domain.FloatValue(value(r))
		if !ok {
			continue
		}
		sums[k] += v
		counts[k]++
	}

	result := make([]domain.GroupMean, 0, len(sums))
	for k, sum := range sums {
		result = append(result, domain.GroupMean{
			Category: k,
			Mean:     round2(sum / float64(counts[k])),
			Count:    counts[k],
		})
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Category < result[j].Category
	})
	return result
}

// CrossCountBy counts record pairs of (row, column) categories in long form,
// ordered by row then column ascending. Pairs with an empty key are skipped.
func CrossCountBy(records []domain.Record, rowKey, colKey func(domain.Record) string) []domain.CrossCount {
	type pair struct{ row, col string }
	counts := make(map[pair]int)
	for _, r := range records {
		p := pair{row: rowKey(r), col: colKey(r)}
		if p.row == "" || p.col == "" {
			continue
		}
		counts[p]++
	}

	result := make([]domain.CrossCount, 0, len(counts))
	for p, n := range counts {
		result = append(result, domain.CrossCount{Row: p.row, Column: p.col, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Row != result[j].Row {
			return result[i].Row < result[j].Row
		}
		return result[i].Column < result[j].Column
	})
	return result
}

// KPIs computes the headline metrics of a selection: record total, distinct
// districts, mean BMI over present values, and how many records lack a BMI.
func KPIs(records []domain.Record) domain.DatasetKPIs {
	kpis := domain.DatasetKPIs{TotalChildren: len(records)}

	districts := make(map[string]struct{})
	var bmiSum float64
	var bmiCount int
	for _, r := range records {
		if r.District != "" {
			districts[r.District] = struct{}{}
		}
		if v, ok := domain.FloatValue(r.BMI); ok {
			bmiSum += v
			bmiCount++
		} else {
			kpis.MissingBMI++
		}
	}
	kpis.UniqueDistricts = len(districts)
	if bmiCount > 0 {
		kpis.AverageBMI = domain.Float(round2(bmiSum / float64(bmiCount)))
	}
	return kpis
}

// FilterOptions lists the distinct values of each filterable field in
// first-seen order, for the dashboard's multi-select controls.
func FilterOptions(records []domain.Record) domain.FilterOptions {
	return domain.FilterOptions{
		Genders:   distinct(records, func(r domain.Record) string { return r.Gender }),
		Races:     distinct(records, func(r domain.Record) string { return r.Race }),
		Districts: distinct(records, func(r domain.Record) string { return r.District }),
	}
}

func distinct(records []domain.Record, key func(domain.Record) string) []string {
	seen := make(map[string]struct{})
	var values []string
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		values = append(values, k)
	}
	return values
}

// Summarize builds every summary table from one selection of records.
func (s *Summarizer) Summarize(ctx context.Context, records []domain.Record) domain.DatasetSummary {
	s.logger.DebugContext(ctx, "generating dataset summary tables",
		slog.Int("record_count", len(records)))

	summary := domain.DatasetSummary{
		Gender:          CountBy(records, func(r domain.Record) string { return r.Gender }),
		Race:            CountBy(records, func(r domain.Record) string { return r.Race }),
		Religion:        CountBy(records, func(r domain.Record) string { return r.Religion }),
		NutritionStatus: CountBy(records, func(r domain.Record) string { return r.NutritionStatus }),
		IncomeCategory:  CountBy(records, func(r domain.Record) string { return r.IncomeCategory }),
		BMIByGender: MeanBy(records,
			func(r domain.Record) string { return r.Gender },
			func(r domain.Record) *float64 { return r.BMI }),
		BMIByDistrict: MeanBy(records,
			func(r domain.Record) string { return r.District },
			func(r domain.Record) *float64 { return r.BMI }),
		NutritionByDistrict: CrossCountBy(records,
			func(r domain.Record) string { return r.District },
			func(r domain.Record) string { return r.NutritionStatus }),
		IncomeByNutrition: CrossCountBy(records,
			func(r domain.Record) string { return r.IncomeCategory },
			func(r domain.Record) string { return r.NutritionStatus }),
	}

	// District averages read best highest-first, matching the original
	// ranking chart. Equal means keep ascending district order.
	sort.SliceStable(summary.BMIByDistrict, func(i, j int) bool {
		return summary.BMIByDistrict[i].Mean > summary.BMIByDistrict[j].Mean
	})

	return summary
}

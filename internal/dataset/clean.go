package dataset

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

// CaseMode selects how NormalizeTextCase renders a text field.
type CaseMode string

const (
	// CaseTitle capitalizes each word, used for district names.
	CaseTitle CaseMode = "title"
	// CaseUpper uppercases the whole value, used for zone and constituency codes.
	CaseUpper CaseMode = "upper"
)

// CleanConfig controls the cleaning pipeline. The defaults reproduce the
// behavior of the source dashboards; deployments override tokens and labels
// through configuration rather than code.
type CleanConfig struct {
	// MissingTokens are input values that mean "no data". Matching is
	// case-insensitive and ignores surrounding or repeated whitespace.
	MissingTokens []string
	// CurrencyPrefix is stripped from salary text before numeric parsing.
	CurrencyPrefix string
	// TextSentinel labels missing geographic fields after cleaning. It is
	// rendered in the target case mode, so cleaning stays a fixed point.
	TextSentinel string
	// IncomeFill and NutritionFill label missing categorical fields.
	IncomeFill    string
	NutritionFill string
}

// DefaultCleanConfig returns the pipeline configuration matching the original
// dataset: Malay and English sentinel tokens, RM currency, English fill labels.
func DefaultCleanConfig() CleanConfig {
	return CleanConfig{
		MissingTokens: []string{
			"invalid data",
			"maklumat salah",
			"error/no data",
			"error/tiada data",
			"error",
			"-",
			" ",
		},
		CurrencyPrefix: "RM",
		TextSentinel:   "No Information",
		IncomeFill:     "No Information",
		NutritionFill:  "No Data",
	}
}

// Cleaner maps raw records to cleaned records. All methods are pure: the same
// input always yields the same output, no call mutates its receiver or its
// arguments, and malformed field values degrade to absent instead of failing.
type Cleaner struct {
	cfg    CleanConfig
	tokens map[string]struct{}
}

// NewCleaner builds a Cleaner for the given configuration. A zero-value token
// list falls back to the defaults.
func NewCleaner(cfg CleanConfig) *Cleaner {
	if len(cfg.MissingTokens) == 0 {
		cfg.MissingTokens = DefaultCleanConfig().MissingTokens
	}
	if cfg.CurrencyPrefix == "" {
		cfg.CurrencyPrefix = DefaultCleanConfig().CurrencyPrefix
	}
	if cfg.TextSentinel == "" {
		cfg.TextSentinel = DefaultCleanConfig().TextSentinel
	}
	if cfg.IncomeFill == "" {
		cfg.IncomeFill = DefaultCleanConfig().IncomeFill
	}
	if cfg.NutritionFill == "" {
		cfg.NutritionFill = DefaultCleanConfig().NutritionFill
	}

	tokens := make(map[string]struct{}, len(cfg.MissingTokens))
	for _, t := range cfg.MissingTokens {
		tokens[foldToken(t)] = struct{}{}
	}
	return &Cleaner{cfg: cfg, tokens: tokens}
}

// NormalizeMissing reports whether value carries data. Missing values (blank
// or matching a sentinel token) return ok=false; anything else passes through
// unchanged with ok=true.
func (c *Cleaner) NormalizeMissing(value string) (string, bool) {
	folded := foldToken(value)
	if folded == "" {
		return "", false
	}
	if _, missing := c.tokens[folded]; missing {
		return "", false
	}
	return value, true
}

// ParseSalary converts free-form salary text to a numeric value. The currency
// prefix and thousands separators are stripped; a single "A-B" range becomes
// the midpoint of its endpoints; a plain number is returned as-is. Anything
// else, including negative or non-finite results, is absent. Never fails.
func (c *Cleaner) ParseSalary(text string) *float64 {
	v, ok := c.NormalizeMissing(text)
	if !ok {
		return nil
	}
	v = stripAllCaseInsensitive(v, c.cfg.CurrencyPrefix)
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimSpace(v)

	if strings.Count(v, "-") == 1 {
		parts := strings.SplitN(v, "-", 2)
		low, okLow := parseNonNegative(parts[0])
		high, okHigh := parseNonNegative(parts[1])
		if !okLow || !okHigh {
			return nil
		}
		return domain.Float((low + high) / 2)
	}

	f, ok := parseNonNegative(v)
	if !ok {
		return nil
	}
	return domain.Float(f)
}

// ComputeBMI derives body-mass index from weight in kilograms and height in
// centimeters, rounded to two decimals. Both inputs must be present and
// strictly positive; otherwise the result is absent. BMI is never zero or
// negative and division by a non-positive height is never attempted.
func ComputeBMI(weightKG, heightCM *float64) *float64 {
	w, wok := domain.FloatValue(weightKG)
	h, hok := domain.FloatValue(heightCM)
	if !wok || !hok || h <= 0 || w <= 0 {
		return nil
	}
	meters := h / 100
	return domain.Float(round2(w / (meters * meters)))
}

// NormalizeTextCase trims and re-cases a text field. Missing input becomes the
// configured sentinel label rendered in the same mode, never an empty string.
func (c *Cleaner) NormalizeTextCase(text string, mode CaseMode) string {
	v, ok := c.NormalizeMissing(text)
	if !ok {
		v = c.cfg.TextSentinel
	}
	v = strings.TrimSpace(v)
	switch mode {
	case CaseUpper:
		return strings.ToUpper(v)
	default:
		return cases.Title(language.Und).String(v)
	}
}

// DeriveAvgParentalIncome averages the father and mother salaries over the
// values that are present. A single present value is returned alone; the
// result is absent only when both inputs are absent. An absent value is never
// treated as zero.
func DeriveAvgParentalIncome(father, mother *float64) *float64 {
	var sum float64
	var n int
	if f, ok := domain.FloatValue(father); ok {
		sum += f
		n++
	}
	if m, ok := domain.FloatValue(mother); ok {
		sum += m
		n++
	}
	if n == 0 {
		return nil
	}
	return domain.Float(sum / float64(n))
}

// Clean maps one raw record to a cleaned record. Operations run in a fixed
// order: missing-token normalization, numeric and salary parsing, BMI, text
// casing, derived income, categorical fills. The raw record is not modified
// and no per-field anomaly can fail the call.
func (c *Cleaner) Clean(raw domain.RawRecord) domain.Record {
	rec := domain.Record{
		Gender:   c.cleanCategory(raw.Gender),
		Race:     c.cleanCategory(raw.Race),
		Religion: c.cleanCategory(raw.Religion),

		AgeMonths: c.parseNumber(raw.AgeMonths),
		WeightKG:  c.parseNumber(raw.WeightKG),
		HeightCM:  c.parseNumber(raw.HeightCM),

		FatherSalaryRaw:   c.cleanRawText(raw.FatherSalary),
		MotherSalaryRaw:   c.cleanRawText(raw.MotherSalary),
		GuardianSalaryRaw: c.cleanRawText(raw.GuardianSalary),

		FatherSalary:   c.ParseSalary(raw.FatherSalary),
		MotherSalary:   c.ParseSalary(raw.MotherSalary),
		GuardianSalary: c.ParseSalary(raw.GuardianSalary),
	}

	rec.BMI = ComputeBMI(rec.WeightKG, rec.HeightCM)

	rec.District = c.NormalizeTextCase(raw.District, CaseTitle)
	rec.ParliamentZone = c.NormalizeTextCase(raw.ParliamentZone, CaseUpper)
	rec.StateConstituency = c.NormalizeTextCase(raw.StateConstituency, CaseUpper)

	rec.AvgParentalIncome = DeriveAvgParentalIncome(rec.FatherSalary, rec.MotherSalary)

	rec.IncomeCategory = c.cleanCategoryWithFill(raw.IncomeCategory, c.cfg.IncomeFill)
	rec.NutritionStatus = c.cleanCategoryWithFill(raw.NutritionStatus, c.cfg.NutritionFill)

	return rec
}

// CleanStats summarizes one cleaning run for logging and metrics.
type CleanStats struct {
	Records        int
	AbsentBMI      int
	AbsentSalaries int
	FilledIncome   int
	FilledStatus   int
}

// CleanAll cleans every record and reports aggregate statistics about absent
// and filled fields.
func (c *Cleaner) CleanAll(raws []domain.RawRecord) ([]domain.Record, CleanStats) {
	records := make([]domain.Record, 0, len(raws))
	stats := CleanStats{Records: len(raws)}

	for _, raw := range raws {
		rec := c.Clean(raw)
		if rec.BMI == nil {
			stats.AbsentBMI++
		}
		for _, s := range []*float64{rec.FatherSalary, rec.MotherSalary, rec.GuardianSalary} {
			if s == nil {
				stats.AbsentSalaries++
			}
		}
		if _, ok := c.NormalizeMissing(raw.IncomeCategory); !ok {
			stats.FilledIncome++
		}
		if _, ok := c.NormalizeMissing(raw.NutritionStatus); !ok {
			stats.FilledStatus++
		}
		records = append(records, rec)
	}

	return records, stats
}

// cleanCategory trims a categorical value; missing becomes the empty string.
// Distribution tables skip empty categories the same way the source dropped
// null rows from value counts.
func (c *Cleaner) cleanCategory(text string) string {
	v, ok := c.NormalizeMissing(text)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// cleanCategoryWithFill trims a categorical value; missing becomes fill.
func (c *Cleaner) cleanCategoryWithFill(text, fill string) string {
	if v := c.cleanCategory(text); v != "" {
		return v
	}
	return fill
}

// cleanRawText preserves the original free-form cell for display, blanked
// when it is a sentinel token.
func (c *Cleaner) cleanRawText(text string) string {
	v, ok := c.NormalizeMissing(text)
	if !ok {
		return ""
	}
	return strings.TrimSpace(v)
}

// parseNumber parses an optional numeric cell. Missing tokens and malformed
// or non-finite text are absent.
func (c *Cleaner) parseNumber(text string) *float64 {
	v, ok := c.NormalizeMissing(text)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return domain.Float(f)
}

// foldToken canonicalizes a value for sentinel comparison: lower-cased with
// whitespace runs collapsed.
func foldToken(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// stripAllCaseInsensitive removes every occurrence of token from s, ignoring
// case.
func stripAllCaseInsensitive(s, token string) string {
	if token == "" {
		return s
	}
	var b strings.Builder
	upper := strings.ToUpper(s)
	upperToken := strings.ToUpper(token)
	for i := 0; i < len(s); {
		if strings.HasPrefix(upper[i:], upperToken) {
			i += len(upperToken)
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

func parseNonNegative(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, false
	}
	return f, true
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

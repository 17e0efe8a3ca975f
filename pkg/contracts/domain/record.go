package domain

// RawRecord is one subject row exactly as read from the source workbook or CSV,
// before any cleaning. Every field is the raw cell text; numeric parsing,
// sentinel handling, and case normalization happen in the cleaning pipeline.
type RawRecord struct {
	Gender            string `json:"gender"`
	Race              string `json:"race"`
	Religion          string `json:"religion"`
	AgeMonths         string `json:"age_months"`
	WeightKG          string `json:"weight_kg"`
	HeightCM          string `json:"height_cm"`
	FatherSalary      string `json:"father_salary"`
	MotherSalary      string `json:"mother_salary"`
	GuardianSalary    string `json:"guardian_salary"`
	IncomeCategory    string `json:"income_category"`
	NutritionStatus   string `json:"nutrition_status"`
	District          string `json:"district"`
	ParliamentZone    string `json:"parliament_zone"`
	StateConstituency string `json:"state_constituency"`
}

// Record is one cleaned subject row with derived fields. Optional numerics are
// pointers; nil means the value is absent, which is distinct from zero.
// Geographic and categorical text fields are never empty after cleaning:
// missing values carry a sentinel label instead.
type Record struct {
	Gender            string   `json:"gender"`
	Race              string   `json:"race"`
	Religion          string   `json:"religion"`
	AgeMonths         *float64 `json:"age_months,omitempty"`
	WeightKG          *float64 `json:"weight_kg,omitempty"`
	HeightCM          *float64 `json:"height_cm,omitempty"`
	FatherSalaryRaw   string   `json:"father_salary_raw,omitempty"`
	MotherSalaryRaw   string   `json:"mother_salary_raw,omitempty"`
	GuardianSalaryRaw string   `json:"guardian_salary_raw,omitempty"`
	IncomeCategory    string   `json:"income_category"`
	NutritionStatus   string   `json:"nutrition_status"`
	District          string   `json:"district"`
	ParliamentZone    string   `json:"parliament_zone"`
	StateConstituency string   `json:"state_constituency"`

	// Derived during cleaning.
	BMI               *float64 `json:"bmi,omitempty"`
	FatherSalary      *float64 `json:"father_salary,omitempty"`
	MotherSalary      *float64 `json:"mother_salary,omitempty"`
	GuardianSalary    *float64 `json:"guardian_salary,omitempty"`
	AvgParentalIncome *float64 `json:"avg_parental_income,omitempty"`
}

// RecordFilter selects records by categorical membership, mirroring the
// dashboard's multi-select filters. An empty slice places no constraint on
// that field.
type RecordFilter struct {
	Genders   []string `json:"genders,omitempty"`
	Races     []string `json:"races,omitempty"`
	Districts []string `json:"districts,omitempty"`
}

// IsEmpty reports whether the filter constrains nothing.
func (f RecordFilter) IsEmpty() bool {
	return len(f.Genders) == 0 && len(f.Races) == 0 && len(f.Districts) == 0
}

// Matches reports whether the record passes every populated constraint.
func (f RecordFilter) Matches(r Record) bool {
	return matchesAny(r.Gender, f.Genders) &&
		matchesAny(r.Race, f.Races) &&
		matchesAny(r.District, f.Districts)
}

func matchesAny(value string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}

// FilterOptions lists the distinct values available for each filterable field,
// in first-seen dataset order.
type FilterOptions struct {
	Genders   []string `json:"genders"`
	Races     []string `json:"races"`
	Districts []string `json:"districts"`
}

// Float returns a pointer to v, for building optional numeric fields.
func Float(v float64) *float64 {
	return &v
}

// FloatValue dereferences p, returning 0 and false when p is nil.
func FloatValue(p *float64) (float64, bool) {
	if p == nil {
		return 0, false
	}
	return *p, true
}

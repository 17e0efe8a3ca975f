package domain

// CategoryCount is the single typed shape for categorical distributions,
// replacing the ad-hoc value-counts tables of the source dashboards. Ordering
// is always descending by count with ties broken by first appearance in the
// dataset, so repeated aggregation of the same snapshot is deterministic.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// GroupMean is a per-group average over an optional numeric field. Count is
// the number of records that contributed a present value; groups where every
// value is absent are omitted entirely rather than reported as NaN.
type GroupMean struct {
	Category string  `json:"category"`
	Mean     float64 `json:"mean"`
	Count    int     `json:"count"`
}

// CrossCount is one cell of a two-way categorical pivot in long form,
// for example nutrition status counts per district.
type CrossCount struct {
	Row    string `json:"row"`
	Column string `json:"column"`
	Count  int    `json:"count"`
}

// DatasetKPIs are the headline metrics of a (possibly filtered) snapshot.
// AverageBMI is nil when no record in the selection has a BMI.
type DatasetKPIs struct {
	TotalChildren   int      `json:"total_children"`
	UniqueDistricts int      `json:"unique_districts"`
	AverageBMI      *float64 `json:"average_bmi,omitempty"`
	MissingBMI      int      `json:"missing_bmi"`
}

// DatasetSummary bundles every summary table the dashboard renders from one
// snapshot selection.
type DatasetSummary struct {
	Gender              []CategoryCount `json:"gender"`
	Race                []CategoryCount `json:"race"`
	Religion            []CategoryCount `json:"religion"`
	NutritionStatus     []CategoryCount `json:"nutrition_status"`
	IncomeCategory      []CategoryCount `json:"income_category"`
	BMIByGender         []GroupMean     `json:"bmi_by_gender"`
	BMIByDistrict       []GroupMean     `json:"bmi_by_district"`
	NutritionByDistrict []CrossCount    `json:"nutrition_by_district"`
	IncomeByNutrition   []CrossCount    `json:"income_by_nutrition"`
}

// Package dataset implements the data core of the FSN dashboard: loading the
// raw child-records workbook, the cleaning/derivation pipeline, and the typed
// summary aggregations the API serves.
//
// # Pipeline
//
// Cleaning is a total, pure function from raw record to cleaned record:
//
//	cleaner := dataset.NewCleaner(dataset.DefaultCleanConfig())
//	records, stats := cleaner.CleanAll(raws)
//
// Per-field order inside Clean: missing-token normalization, numeric and
// salary parsing, BMI derivation, text case normalization, average parental
// income, categorical fills. No malformed field value can fail a record; the
// value degrades to absent or a sentinel label instead. Cleaning an already
// cleaned record changes nothing, so cached and re-exported snapshots are
// stable.
//
// # Loading
//
// LoadWorkbook and LoadCSV accept both the original Malay headers and the
// snake_case headers of the exported cleaned CSV. Only whole-source failures
// (unreadable file, no recognizable header, missing required columns) are
// errors; cell-level anomalies never are.
//
// # Summaries
//
// CountBy, MeanBy, and CrossCountBy are the only aggregation primitives, each
// with a fixed deterministic ordering. Summarize composes them into the full
// table set the dashboard renders.
package dataset

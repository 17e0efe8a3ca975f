// Package exporter provides CSV export functionality for the FSN analytics
// backend.
//
// This package contains three main components:
//
// CSVWriter: Core CSV writing functionality with support for headers,
// streaming, and UTF-8 BOM for Excel compatibility, resolving relative
// paths into the reports layout.
//
// Record export: streams cleaned records in a fixed column order that
// round-trips through the dataset loader, so an exported file can be
// re-imported as a CSV source.
//
// Summary tables: flattens a dataset summary into named (headers, rows)
// tables for per-table CSV files and downloads.
//
// Example usage:
//
//	// Stream cleaned records to an HTTP response
//	err := exporter.WriteRecords(w, records, true)
//
//	// Export every summary table to the summaries directory
//	writer := exporter.NewCSVWriter(paths)
//	err = writer.WriteSummaryFiles(summary)
package exporter

// Package config provides centralized configuration management for the FSN
// analytics backend. It handles loading configuration from multiple sources,
// validation, and provides a type-safe API for accessing configuration values
// throughout the application.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//  1. Environment variables (highest priority)
//  2. Configuration file (YAML)
//  3. Built-in defaults (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern FSN_* for namespacing:
//
//	FSN_SERVER_PORT=8080
//	FSN_DATASET_SOURCE=local
//	FSN_DATASET_PATH=data/umk_anak.xlsx
//	FSN_FEEDBACK_DB_PATH=data/feedback.db
//	FSN_LOGGING_LEVEL=info
//
// # Validation
//
// All configuration is validated at load time with validator/v10 struct tags
// plus cross-field checks, ensuring:
//
//   - Required fields are present for the selected dataset source
//   - Values are within acceptable ranges
//   - URLs are properly formatted
//
// # Path Management
//
// The package provides centralized path management through the Paths type,
// which handles all file system paths relative to the executable location,
// so the web server and the processor CLI agree on the layout wherever they
// are launched from:
//
//	paths, err := config.GetPaths()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	workbook := paths.DatasetFile
//	summaryCSV := paths.GetSummaryCSVPath("gender_distribution")
//
// PathsConfig fields override individual directories; empty fields fall back
// to the standard layout.
//
// # Usage
//
// Load configuration at application startup:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
package config

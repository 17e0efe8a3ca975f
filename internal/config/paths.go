package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Paths contains all the application paths
// This is the single source of truth for ALL file paths in the application
type Paths struct {
	ExecutableDir string
	DataDir       string
	ReportsDir    string
	SummariesDir  string
	CacheDir      string
	LogsDir       string

	// Well-known data files (inside the data directory)
	DatasetFile string
	FeedbackDB  string

	// Well-known report files
	CleanedCSV   string
	KPIsJSON     string
	SummaryIndex string
}

// GetPaths returns the application paths relative to the executable location
// All paths are ALWAYS relative to the executable directory, never the current working directory
func GetPaths() (*Paths, error) {
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %v", err)
	}

	// Resolve symlinks to get the actual executable location
	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	// Get the directory containing the executable
	exeDir := filepath.Dir(exe)

	// All paths are relative to the executable directory so the web server
	// and the processor CLI agree on the layout:
	// dist/
	//   ├── data/
	//   │   ├── umk_anak.xlsx  (source workbook for the local source)
	//   │   ├── feedback.db    (sqlite feedback store)
	//   │   ├── reports/       (generated CSV/JSON reports)
	//   │   │   └── summaries/ (per-table summary CSVs)
	//   │   └── cache/         (downloaded source files)
	//   └── logs/              (application logs)

	dataDir := filepath.Join(exeDir, "data")
	reportsDir := filepath.Join(dataDir, "reports")
	summariesDir := filepath.Join(reportsDir, "summaries")

	paths := &Paths{
		ExecutableDir: exeDir,
		DataDir:       dataDir,
		ReportsDir:    reportsDir,
		SummariesDir:  summariesDir,
		CacheDir:      filepath.Join(dataDir, "cache"),
		LogsDir:       filepath.Join(exeDir, "logs"),

		DatasetFile: filepath.Join(dataDir, "umk_anak.xlsx"),
		FeedbackDB:  filepath.Join(dataDir, "feedback.db"),

		CleanedCSV:   filepath.Join(reportsDir, "cleaned_records.csv"),
		KPIsJSON:     filepath.Join(reportsDir, "kpis.json"),
		SummaryIndex: filepath.Join(summariesDir, "summaries.json"),
	}

	return paths, nil
}

// EnsureDirectories creates all required directories if they don't exist
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.DataDir,
		p.ReportsDir,
		p.SummariesDir,
		p.CacheDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}

		if logger != nil {
			logger.Debug("Ensured directory exists",
				slog.String("directory", dir))
		}
	}

	return nil
}

// GetRelativePath returns a path relative to the executable directory
func (p *Paths) GetRelativePath(subpath string) string {
	return filepath.Join(p.ExecutableDir, subpath)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// GetReportPath returns the path for a report file
func (p *Paths) GetReportPath(filename string) string {
	return filepath.Join(p.ReportsDir, filename)
}

// GetSummaryCSVPath returns the path for a per-table summary CSV
// (e.g. gender_distribution.csv)
func (p *Paths) GetSummaryCSVPath(table string) string {
	return filepath.Join(p.SummariesDir, table+".csv")
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// GetCachePath returns the path for a cached source download
func (p *Paths) GetCachePath(filename string) string {
	return filepath.Join(p.CacheDir, filename)
}

// GetDatasetPath returns the workbook path for the local dataset source
func (p *Paths) GetDatasetPath() string {
	path := p.DatasetFile
	logger := slog.Default()
	if logger != nil {
		logger.Debug("Dataset path resolved",
			slog.String("path", path),
			slog.Bool("exists", FileExists(path)))
	}
	return path
}

// GetFeedbackDBPath returns the sqlite feedback store path
func (p *Paths) GetFeedbackDBPath() string {
	path := p.FeedbackDB
	logger := slog.Default()
	if logger != nil {
		logger.Debug("Feedback db path resolved",
			slog.String("path", path),
			slog.Bool("exists", FileExists(path)))
	}
	return path
}

// LogPathResolution logs detailed path resolution information for debugging
func (p *Paths) LogPathResolution() {
	logger := slog.Default()
	if logger == nil {
		return
	}

	logger.Info("Path resolution summary",
		slog.Group("directories",
			slog.String("executable", p.ExecutableDir),
			slog.String("data", p.DataDir),
			slog.String("reports", p.ReportsDir),
			slog.String("summaries", p.SummariesDir),
			slog.String("cache", p.CacheDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("data_files",
			slog.String("dataset", p.DatasetFile),
			slog.String("feedback_db", p.FeedbackDB),
		),
		slog.Group("report_files",
			slog.String("cleaned_csv", p.CleanedCSV),
			slog.String("kpis_json", p.KPIsJSON),
			slog.String("summary_index", p.SummaryIndex),
		))
}

// ValidateRequiredFiles checks that the local dataset source exists and
// returns detailed error information. Only meaningful for the local source;
// http and drive sources fetch on demand.
func (p *Paths) ValidateRequiredFiles() error {
	requiredFiles := map[string]string{
		"Dataset workbook": p.DatasetFile,
	}

	var missingFiles []string
	for name, path := range requiredFiles {
		if !FileExists(path) {
			missingFiles = append(missingFiles, fmt.Sprintf("%s (%s)", name, path))
		}
	}

	if len(missingFiles) > 0 {
		return fmt.Errorf("required files missing: %s", strings.Join(missingFiles, ", "))
	}

	return nil
}

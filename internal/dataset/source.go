package dataset

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/s22a0058-ai/FYP/internal/config"
	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

// Source obtains the raw dataset. Implementations differ only in where the
// bytes come from; header mapping and row extraction are shared. Any failure
// is a whole-source failure: a Source never returns partial records.
type Source interface {
	// Fetch loads every raw record from the source.
	Fetch(ctx context.Context) ([]domain.RawRecord, error)
	// Describe identifies the source for logs and health checks.
	Describe() string
}

// NewSource builds the Source selected by the dataset configuration.
func NewSource(cfg config.DatasetConfig, logger *slog.Logger) (Source, error) {
	if logger == nil {
		logger = slog.Default()
	}
	opts := LoadOptions{SheetName: cfg.SheetName}

	switch cfg.Source {
	case config.SourceLocal:
		return &LocalSource{Path: cfg.Path, Options: opts}, nil
	case config.SourceHTTP:
		return &HTTPSource{
			URL:     cfg.URL,
			Options: opts,
			Client:  &http.Client{Timeout: config.DefaultHTTPTimeout},
			logger:  logger.With(slog.String("component", "dataset.http_source")),
		}, nil
	case config.SourceDrive:
		return &DriveSource{
			FileID:  cfg.DriveFileID,
			APIKey:  cfg.DriveAPIKey,
			Options: opts,
			logger:  logger.With(slog.String("component", "dataset.drive_source")),
		}, nil
	default:
		return nil, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}
}

// LocalSource reads a workbook or CSV file from disk.
type LocalSource struct {
	Path    string
	Options LoadOptions
}

// Fetch loads the file, dispatching on the extension.
func (s *LocalSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(s.Path), ".csv") {
		return LoadCSV(s.Path)
	}
	return LoadWorkbook(s.Path, s.Options)
}

func (s *LocalSource) Describe() string {
	return "local:" + s.Path
}

// HTTPSource downloads the dataset from a plain HTTP(S) URL.
type HTTPSource struct {
	URL     string
	Options LoadOptions
	Client  *http.Client
	logger  *slog.Logger
}

// Fetch downloads the file and parses it as a workbook, falling back to CSV
// when the bytes are not an Excel archive.
func (s *HTTPSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	data, err := s.download(ctx)
	if err != nil {
		return nil, err
	}
	return parseFetched(data, s.URL, s.Options)
}

func (s *HTTPSource) download(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("build dataset request: %w", err)
	}

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: config.DefaultHTTPTimeout}
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download dataset %s: %w", s.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download dataset %s: unexpected status %d", s.URL, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read dataset body: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "dataset downloaded",
			slog.String("url", s.URL),
			slog.Int("bytes", len(data)))
	}
	return data, nil
}

func (s *HTTPSource) Describe() string {
	return "http:" + s.URL
}

// DriveSource downloads the dataset file from Google Drive using an API key.
// This replaces the hard-coded Drive share URL of the original dashboards
// with configured credentials.
type DriveSource struct {
	FileID  string
	APIKey  string
	Options LoadOptions
	logger  *slog.Logger

	// newService is swappable for tests.
	newService func(ctx context.Context) (*drive.Service, error)
}

// Fetch downloads the Drive file content and parses it.
func (s *DriveSource) Fetch(ctx context.Context) ([]domain.RawRecord, error) {
	newService := s.newService
	if newService == nil {
		newService = func(ctx context.Context) (*drive.Service, error) {
			return drive.NewService(ctx, option.WithAPIKey(s.APIKey))
		}
	}

	svc, err := newService(ctx)
	if err != nil {
		return nil, fmt.Errorf("create drive client: %w", err)
	}

	resp, err := svc.Files.Get(s.FileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("download drive file %s: %w", s.FileID, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read drive file body: %w", err)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "dataset downloaded from drive",
			slog.String("file_id", s.FileID),
			slog.Int("bytes", len(data)))
	}
	return parseFetched(data, s.FileID, s.Options)
}

func (s *DriveSource) Describe() string {
	return "drive:" + s.FileID
}

// parseFetched parses downloaded bytes, preferring the workbook format and
// falling back to CSV; xlsx files always start with the zip magic.
func parseFetched(data []byte, name string, opts LoadOptions) ([]domain.RawRecord, error) {
	if bytes.HasPrefix(data, []byte("PK")) {
		return LoadWorkbookFrom(bytes.NewReader(data), opts)
	}
	records, err := LoadCSVFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse fetched dataset %s: %w", name, err)
	}
	return records, nil
}

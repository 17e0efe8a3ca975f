package http

import (
	"context"
	"io"

	"github.com/s22a0058-ai/FYP/internal/exporter"
	"github.com/s22a0058-ai/FYP/internal/services"
	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

// DatasetServiceInterface defines the dataset operations the handlers need.
type DatasetServiceInterface interface {
	Records(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error)
	KPIs(ctx context.Context, filter domain.RecordFilter) (domain.DatasetKPIs, error)
	Summaries(ctx context.Context, filter domain.RecordFilter) (domain.DatasetSummary, error)
	SummaryTable(ctx context.Context, name string, filter domain.RecordFilter) (exporter.SummaryTable, error)
	FilterOptions(ctx context.Context) (domain.FilterOptions, error)
	Refresh(ctx context.Context) (*services.Snapshot, error)
	ExportCSV(ctx context.Context, w io.Writer, filter domain.RecordFilter, bom bool) (int, error)
}

// FeedbackServiceInterface defines the feedback operations the handlers need.
type FeedbackServiceInterface interface {
	Submit(ctx context.Context, rating int, comment string) (domain.FeedbackEntry, error)
	List(ctx context.Context) ([]domain.FeedbackEntry, error)
	Summary(ctx context.Context) (domain.FeedbackSummary, error)
}

// HealthServiceInterface defines the probe operations the handlers need.
type HealthServiceInterface interface {
	Liveness(ctx context.Context) services.HealthStatus
	Readiness(ctx context.Context) services.HealthStatus
	Stats(ctx context.Context) services.SystemStats
}

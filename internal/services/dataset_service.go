package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/s22a0058-ai/FYP/internal/config"
	"github.com/s22a0058-ai/FYP/internal/dataset"
	"github.com/s22a0058-ai/FYP/internal/exporter"
	"github.com/s22a0058-ai/FYP/internal/infrastructure"
	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
	"github.com/s22a0058-ai/FYP/pkg/contracts/events"
)

const snapshotCacheKey = "dataset:snapshot"

// Snapshot is one cleaned copy of the dataset together with its load metadata.
// Snapshots are immutable once built; every read path serves from the same
// snapshot until the TTL expires or a refresh replaces it.
type Snapshot struct {
	Records  []domain.Record
	Stats    dataset.CleanStats
	Source   string
	LoadedAt time.Time
	Duration time.Duration
}

// Publisher delivers an event to connected dashboard clients.
type Publisher func(events.Envelope)

// DatasetService owns the load-clean-serve cycle: it fetches raw rows from the
// configured source, runs the cleaning pipeline, caches the resulting snapshot,
// and answers every dataset query from that snapshot.
type DatasetService struct {
	cfg        *config.Config
	source     dataset.Source
	cleaner    *dataset.Cleaner
	summarizer *dataset.Summarizer
	cache      *gocache.Cache
	group      singleflight.Group
	logger     *slog.Logger
	metrics    *infrastructure.BusinessMetrics
	publish    Publisher
}

// NewDatasetService creates a dataset service for the configured source.
func NewDatasetService(cfg *config.Config, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) (*DatasetService, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "dataset_service"))

	source, err := dataset.NewSource(cfg.Dataset, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create dataset source: %w", err)
	}

	cleaner := dataset.NewCleaner(dataset.CleanConfig{
		MissingTokens:  cfg.Dataset.MissingTokens,
		CurrencyPrefix: cfg.Dataset.CurrencyPrefix,
		TextSentinel:   cfg.Dataset.TextSentinel,
		IncomeFill:     cfg.Dataset.IncomeFill,
		NutritionFill:  cfg.Dataset.NutritionFill,
	})

	ttl := cfg.Dataset.CacheTTL
	if ttl <= 0 {
		ttl = config.DatasetCacheTTL
	}

	logger.Info("dataset service initialized",
		slog.String("source", source.Describe()),
		slog.Duration("cache_ttl", ttl))

	return &DatasetService{
		cfg:        cfg,
		source:     source,
		cleaner:    cleaner,
		summarizer: dataset.NewSummarizer(logger),
		cache:      gocache.New(ttl, 2*ttl),
		logger:     logger,
		metrics:    metrics,
	}, nil
}

// SetPublisher wires the event broadcast used after refreshes. The service
// works without one; events are simply dropped.
func (s *DatasetService) SetPublisher(p Publisher) {
	s.publish = p
}

// Snapshot returns the current cleaned snapshot, loading it on first use or
// after expiry. Concurrent callers share a single load.
func (s *DatasetService) Snapshot(ctx context.Context) (*Snapshot, error) {
	if cached, found := s.cache.Get(snapshotCacheKey); found {
		infrastructure.RecordCacheAccess(ctx, s.metrics, true)
		return cached.(*Snapshot), nil
	}
	infrastructure.RecordCacheAccess(ctx, s.metrics, false)

	v, err, _ := s.group.Do(snapshotCacheKey, func() (interface{}, error) {
		// Re-check under the flight: a concurrent load may have
		// populated the cache while we waited.
		if cached, found := s.cache.Get(snapshotCacheKey); found {
			return cached.(*Snapshot), nil
		}
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Refresh discards the cached snapshot and loads a fresh one, broadcasting a
// refresh event on success.
func (s *DatasetService) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := s.group.Do("dataset:refresh", func() (interface{}, error) {
		s.cache.Delete(snapshotCacheKey)
		return s.load(ctx)
	})
	if err != nil {
		return nil, err
	}

	snap := v.(*Snapshot)
	if s.publish != nil {
		s.publish(events.NewEnvelope(events.MessageTypeDatasetRefreshed, events.DatasetRefreshedData{
			RecordCount:  len(snap.Records),
			Source:       snap.Source,
			LoadDuration: snap.Duration.String(),
		}))
	}
	return snap, nil
}

func (s *DatasetService) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()

	raws, err := s.source.Fetch(ctx)
	duration := time.Since(start)
	if err != nil {
		infrastructure.RecordDatasetLoadMetrics(ctx, s.metrics, s.source.Describe(), 0, 0, duration, err)
		s.logger.Error("dataset load failed",
			slog.String("source", s.source.Describe()),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	records, stats := s.cleaner.CleanAll(raws)
	if len(records) == 0 {
		infrastructure.RecordDatasetLoadMetrics(ctx, s.metrics, s.source.Describe(), 0, 0, duration, ErrEmptyDataset)
		return nil, ErrEmptyDataset
	}

	snap := &Snapshot{
		Records:  records,
		Stats:    stats,
		Source:   s.source.Describe(),
		LoadedAt: time.Now(),
		Duration: duration,
	}
	s.cache.SetDefault(snapshotCacheKey, snap)

	infrastructure.RecordDatasetLoadMetrics(ctx, s.metrics, snap.Source,
		int64(stats.Records), int64(stats.AbsentBMI+stats.AbsentSalaries), duration, nil)
	s.logger.Info("dataset loaded",
		slog.String("source", snap.Source),
		slog.Int("records", stats.Records),
		slog.Int("absent_bmi", stats.AbsentBMI),
		slog.Duration("duration", duration))

	return snap, nil
}

// Records returns the cleaned records passing the filter.
func (s *DatasetService) Records(ctx context.Context, filter domain.RecordFilter) ([]domain.Record, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return filterRecords(snap.Records, filter), nil
}

// KPIs computes the headline metrics over the filtered snapshot.
func (s *DatasetService) KPIs(ctx context.Context, filter domain.RecordFilter) (domain.DatasetKPIs, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return domain.DatasetKPIs{}, err
	}
	return dataset.KPIs(filterRecords(snap.Records, filter)), nil
}

// Summaries computes every summary table over the filtered snapshot.
func (s *DatasetService) Summaries(ctx context.Context, filter domain.RecordFilter) (domain.DatasetSummary, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return domain.DatasetSummary{}, err
	}
	return s.summarizer.Summarize(ctx, filterRecords(snap.Records, filter)), nil
}

// SummaryTable computes a single named summary table over the filtered
// snapshot. Unknown names return ErrSummaryNotFound.
func (s *DatasetService) SummaryTable(ctx context.Context, name string, filter domain.RecordFilter) (exporter.SummaryTable, error) {
	summary, err := s.Summaries(ctx, filter)
	if err != nil {
		return exporter.SummaryTable{}, err
	}
	for _, table := range exporter.SummaryTables(summary) {
		if table.Name == name {
			return table, nil
		}
	}
	return exporter.SummaryTable{}, fmt.Errorf("%w: %s", ErrSummaryNotFound, name)
}

// FilterOptions lists the distinct values available for each filter field.
func (s *DatasetService) FilterOptions(ctx context.Context) (domain.FilterOptions, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return domain.FilterOptions{}, err
	}
	return dataset.FilterOptions(snap.Records), nil
}

// ExportCSV streams the filtered records as CSV and returns the row count.
func (s *DatasetService) ExportCSV(ctx context.Context, w io.Writer, filter domain.RecordFilter, bom bool) (int, error) {
	start := time.Now()
	records, err := s.Records(ctx, filter)
	if err != nil {
		infrastructure.RecordExportMetrics(ctx, s.metrics, "csv", 0, time.Since(start), err)
		return 0, err
	}

	err = exporter.WriteRecords(w, records, bom)
	infrastructure.RecordExportMetrics(ctx, s.metrics, "csv", int64(len(records)), time.Since(start), err)
	if err != nil {
		return 0, fmt.Errorf("failed to export records: %w", err)
	}
	return len(records), nil
}

// Healthy reports whether a snapshot can be served right now.
func (s *DatasetService) Healthy(ctx context.Context) error {
	_, err := s.Snapshot(ctx)
	return err
}

func filterRecords(records []domain.Record, filter domain.RecordFilter) []domain.Record {
	if filter.IsEmpty() {
		return records
	}
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if filter.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

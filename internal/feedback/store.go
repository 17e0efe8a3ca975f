package feedback

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

// Store persists usability feedback. Entries are append-only: nothing updates
// or deletes a submitted entry, and the sentiment column is written once at
// ingest.
type Store interface {
	Save(ctx context.Context, entry domain.FeedbackEntry) error
	List(ctx context.Context) ([]domain.FeedbackEntry, error)
	Comments(ctx context.Context) ([]string, error)
	CountBySentiment(ctx context.Context) ([]domain.SentimentCount, error)
	Stats(ctx context.Context) (total int, averageRating float64, err error)
	Close() error
}

// SQLiteStore implements Store on a local sqlite database. Timestamps are
// stored as RFC3339 strings so the table stays readable by the spreadsheet
// tooling that consumed the original feedback file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteStore opens (creating if needed) the feedback database at dbPath
// and ensures the schema exists.
func NewSQLiteStore(dbPath string, logger *slog.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create feedback db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open feedback db: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS feedback (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		timestamp TEXT NOT NULL,
		rating INTEGER NOT NULL,
		feedback TEXT NOT NULL DEFAULT '',
		sentiment TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_timestamp ON feedback(timestamp);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create feedback schema: %w", err)
	}

	logger.Info("feedback store ready", slog.String("db_path", dbPath))
	return &SQLiteStore{db: db, logger: logger}, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Save appends one entry.
func (s *SQLiteStore) Save(ctx context.Context, entry domain.FeedbackEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO feedback(id, timestamp, rating, feedback, sentiment)
		VALUES(?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Timestamp.UTC().Format(time.RFC3339),
		entry.Rating,
		entry.Comment,
		string(entry.Sentiment),
	)
	if err != nil {
		return fmt.Errorf("insert feedback entry: %w", err)
	}
	return nil
}

// List returns every entry, newest first.
func (s *SQLiteStore) List(ctx context.Context) ([]domain.FeedbackEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, timestamp, rating, feedback, sentiment
		FROM feedback
		ORDER BY timestamp DESC, seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("query feedback entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.FeedbackEntry
	for rows.Next() {
		var entry domain.FeedbackEntry
		var ts, sentiment string
		if err := rows.Scan(&entry.ID, &ts, &entry.Rating, &entry.Comment, &sentiment); err != nil {
			return nil, fmt.Errorf("scan feedback row: %w", err)
		}
		entry.Timestamp, err = time.Parse(time.RFC3339, ts)
		if err != nil {
			return nil, fmt.Errorf("parse feedback timestamp %q: %w", ts, err)
		}
		entry.Sentiment = domain.Sentiment(sentiment)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback rows: %w", err)
	}
	return entries, nil
}

// Comments returns the non-empty comment texts in submission order, the
// corpus order keyword counting ties break on.
func (s *SQLiteStore) Comments(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT feedback FROM feedback
		WHERE TRIM(feedback) != ''
		ORDER BY seq ASC`)
	if err != nil {
		return nil, fmt.Errorf("query feedback comments: %w", err)
	}
	defer rows.Close()

	var comments []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("scan comment row: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comment rows: %w", err)
	}
	return comments, nil
}

// CountBySentiment returns the sentiment distribution, largest first with
// ties in label order.
func (s *SQLiteStore) CountBySentiment(ctx context.Context) ([]domain.SentimentCount, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT sentiment, COUNT(*) AS n
		FROM feedback
		GROUP BY sentiment
		ORDER BY n DESC, sentiment ASC`)
	if err != nil {
		return nil, fmt.Errorf("query sentiment counts: %w", err)
	}
	defer rows.Close()

	var counts []domain.SentimentCount
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, fmt.Errorf("scan sentiment count: %w", err)
		}
		counts = append(counts, domain.SentimentCount{Sentiment: domain.Sentiment(label), Count: n})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentiment counts: %w", err)
	}
	return counts, nil
}

// Stats returns the entry total and mean rating (0 when empty).
func (s *SQLiteStore) Stats(ctx context.Context) (int, float64, error) {
	var total int
	var avg sql.NullFloat64
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(rating) FROM feedback`).Scan(&total, &avg)
	if err != nil {
		return 0, 0, fmt.Errorf("query feedback stats: %w", err)
	}
	return total, avg.Float64, nil
}

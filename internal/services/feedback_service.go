package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/s22a0058-ai/FYP/internal/config"
	"github.com/s22a0058-ai/FYP/internal/feedback"
	"github.com/s22a0058-ai/FYP/internal/infrastructure"
	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
	"github.com/s22a0058-ai/FYP/pkg/contracts/events"
)

// FeedbackService ingests usability feedback, labels it with sentiment at
// submission time, and aggregates the stored corpus for the admin views.
type FeedbackService struct {
	cfg        config.FeedbackConfig
	store      feedback.Store
	classifier *feedback.Classifier
	validate   *validator.Validate
	logger     *slog.Logger
	metrics    *infrastructure.BusinessMetrics
	publish    Publisher
}

// NewFeedbackService wires the feedback pipeline around an opened store.
func NewFeedbackService(cfg *config.Config, store feedback.Store, logger *slog.Logger, metrics *infrastructure.BusinessMetrics) *FeedbackService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedbackService{
		cfg:        cfg.Feedback,
		store:      store,
		classifier: feedback.NewClassifier(nil, nil),
		validate:   validator.New(),
		logger:     logger.With(slog.String("component", "feedback_service")),
		metrics:    metrics,
	}
}

// SetPublisher wires the event broadcast used after submissions.
func (s *FeedbackService) SetPublisher(p Publisher) {
	s.publish = p
}

// Submit validates, classifies, and persists one feedback entry. The returned
// entry carries the assigned ID, timestamp, and sentiment label.
func (s *FeedbackService) Submit(ctx context.Context, rating int, comment string) (domain.FeedbackEntry, error) {
	entry := domain.FeedbackEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now().UTC(),
		Rating:    rating,
		Comment:   strings.TrimSpace(comment),
	}
	if err := s.validate.Struct(entry); err != nil {
		return domain.FeedbackEntry{}, fmt.Errorf("%w: rating must be between %d and %d",
			ErrInvalidFeedback, config.FeedbackRatingMin, config.FeedbackRatingMax)
	}

	entry.Sentiment = s.classifier.Classify(entry.Comment)

	if err := s.store.Save(ctx, entry); err != nil {
		return domain.FeedbackEntry{}, fmt.Errorf("failed to save feedback: %w", err)
	}

	infrastructure.RecordFeedbackMetrics(ctx, s.metrics, string(entry.Sentiment), entry.Rating)
	s.logger.Info("feedback submitted",
		slog.String("id", entry.ID),
		slog.Int("rating", entry.Rating),
		slog.String("sentiment", string(entry.Sentiment)))

	if s.publish != nil {
		s.publish(events.NewEnvelope(events.MessageTypeFeedbackCreated, events.FeedbackCreatedData{
			Rating:    entry.Rating,
			Sentiment: string(entry.Sentiment),
		}))
	}
	return entry, nil
}

// List returns every stored entry, newest first.
func (s *FeedbackService) List(ctx context.Context) ([]domain.FeedbackEntry, error) {
	entries, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return entries, nil
}

// Summary aggregates the feedback corpus: totals, rating average, sentiment
// distribution, and top comment keywords.
func (s *FeedbackService) Summary(ctx context.Context) (domain.FeedbackSummary, error) {
	total, avg, err := s.store.Stats(ctx)
	if err != nil {
		return domain.FeedbackSummary{}, fmt.Errorf("failed to read feedback stats: %w", err)
	}

	sentiments, err := s.store.CountBySentiment(ctx)
	if err != nil {
		return domain.FeedbackSummary{}, fmt.Errorf("failed to count sentiments: %w", err)
	}

	comments, err := s.store.Comments(ctx)
	if err != nil {
		return domain.FeedbackSummary{}, fmt.Errorf("failed to read comments: %w", err)
	}

	stopwords := s.cfg.Stopwords
	if len(stopwords) == 0 {
		stopwords = feedback.DefaultStopwords
	}
	minLength := s.cfg.MinKeywordLength
	if minLength <= 0 {
		minLength = config.DefaultMinKeywordLength
	}
	topN := s.cfg.TopKeywords
	if topN <= 0 {
		topN = config.DefaultTopKeywords
	}

	return domain.FeedbackSummary{
		Total:         total,
		AverageRating: avg,
		Sentiments:    sentiments,
		TopKeywords:   feedback.TopKeywords(comments, stopwords, minLength, topN),
	}, nil
}

// Healthy reports whether the feedback store answers queries.
func (s *FeedbackService) Healthy(ctx context.Context) error {
	if _, _, err := s.store.Stats(ctx); err != nil {
		return fmt.Errorf("feedback store unavailable: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s22a0058-ai/FYP/internal/config"
	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
	"github.com/s22a0058-ai/FYP/pkg/contracts/events"
)

// fakeStore is an in-memory feedback.Store for service tests.
type fakeStore struct {
	entries []domain.FeedbackEntry
	saveErr error
	listErr error
}

func (f *fakeStore) Save(ctx context.Context, entry domain.FeedbackEntry) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeStore) List(ctx context.Context) ([]domain.FeedbackEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]domain.FeedbackEntry, len(f.entries))
	copy(out, f.entries)
	return out, nil
}

func (f *fakeStore) Comments(ctx context.Context) ([]string, error) {
	var comments []string
	for _, e := range f.entries {
		if e.Comment != "" {
			comments = append(comments, e.Comment)
		}
	}
	return comments, nil
}

func (f *fakeStore) CountBySentiment(ctx context.Context) ([]domain.SentimentCount, error) {
	counts := map[domain.Sentiment]int{}
	for _, e := range f.entries {
		counts[e.Sentiment]++
	}
	var out []domain.SentimentCount
	for s, n := range counts {
		out = append(out, domain.SentimentCount{Sentiment: s, Count: n})
	}
	return out, nil
}

func (f *fakeStore) Stats(ctx context.Context) (int, float64, error) {
	if f.listErr != nil {
		return 0, 0, f.listErr
	}
	if len(f.entries) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, e := range f.entries {
		sum += e.Rating
	}
	return len(f.entries), float64(sum) / float64(len(f.entries)), nil
}

func (f *fakeStore) Close() error { return nil }

func newTestFeedbackService(t *testing.T, store *fakeStore) *FeedbackService {
	t.Helper()
	cfg := config.Default()
	return NewFeedbackService(cfg, store, testLogger(t), nil)
}

func TestFeedbackServiceSubmit(t *testing.T) {
	store := &fakeStore{}
	svc := newTestFeedbackService(t, store)

	entry, err := svc.Submit(context.Background(), 5, "  very easy to use  ")
	require.NoError(t, err)
	assert.NotEmpty(t, entry.ID)
	assert.False(t, entry.Timestamp.IsZero())
	assert.Equal(t, "very easy to use", entry.Comment)
	assert.Equal(t, domain.SentimentPositive, entry.Sentiment)
	require.Len(t, store.entries, 1)
}

func TestFeedbackServiceSubmitInvalidRating(t *testing.T) {
	svc := newTestFeedbackService(t, &fakeStore{})

	for _, rating := range []int{0, -1, 6} {
		_, err := svc.Submit(context.Background(), rating, "fine")
		require.ErrorIs(t, err, ErrInvalidFeedback, "rating %d", rating)
	}
}

func TestFeedbackServiceSubmitStoreError(t *testing.T) {
	svc := newTestFeedbackService(t, &fakeStore{saveErr: errors.New("disk full")})

	_, err := svc.Submit(context.Background(), 3, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestFeedbackServiceSubmitPublishesEvent(t *testing.T) {
	svc := newTestFeedbackService(t, &fakeStore{})

	var published []events.Envelope
	svc.SetPublisher(func(e events.Envelope) { published = append(published, e) })

	_, err := svc.Submit(context.Background(), 2, "too slow")
	require.NoError(t, err)

	require.Len(t, published, 1)
	assert.Equal(t, events.MessageTypeFeedbackCreated, published[0].Type)
	data, ok := published[0].Data.(events.FeedbackCreatedData)
	require.True(t, ok)
	assert.Equal(t, string(domain.SentimentNegative), data.Sentiment)
}

func TestFeedbackServiceList(t *testing.T) {
	store := &fakeStore{}
	svc := newTestFeedbackService(t, store)

	_, err := svc.Submit(context.Background(), 4, "helpful charts")
	require.NoError(t, err)

	entries, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 4, entries[0].Rating)
}

func TestFeedbackServiceSummary(t *testing.T) {
	store := &fakeStore{}
	svc := newTestFeedbackService(t, store)

	_, err := svc.Submit(context.Background(), 5, "great dashboard, very clear")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), 2, "charts load slow")
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), 3, "")
	require.NoError(t, err)

	summary, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.Total)
	assert.InDelta(t, 10.0/3.0, summary.AverageRating, 0.001)

	total := 0
	for _, s := range summary.Sentiments {
		total += s.Count
	}
	assert.Equal(t, 3, total)
	assert.NotEmpty(t, summary.TopKeywords)
}

func TestFeedbackServiceHealthy(t *testing.T) {
	svc := newTestFeedbackService(t, &fakeStore{})
	assert.NoError(t, svc.Healthy(context.Background()))

	broken := newTestFeedbackService(t, &fakeStore{listErr: errors.New("db locked")})
	assert.Error(t, broken.Healthy(context.Background()))
}

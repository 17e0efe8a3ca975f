package feedback

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier(nil, nil)

	tests := []struct {
		name    string
		comment string
		want    domain.Sentiment
	}{
		{name: "positive keyword", comment: "Really helpful dashboard", want: domain.SentimentPositive},
		{name: "negative keyword", comment: "very bad experience", want: domain.SentimentNegative},
		{name: "positive wins over negative", comment: "This is good but confusing", want: domain.SentimentPositive},
		{name: "empty comment", comment: "", want: domain.SentimentNeutral},
		{name: "whitespace only comment", comment: "   ", want: domain.SentimentNeutral},
		{name: "no keywords", comment: "The charts render quickly", want: domain.SentimentNeutral},
		{name: "case insensitive match", comment: "GREAT tool", want: domain.SentimentPositive},
		{name: "keyword inside a longer word", comment: "the layout is clearly arranged", want: domain.SentimentPositive},
		{name: "not good still contains good", comment: "not good", want: domain.SentimentPositive},
		{name: "slow is negative", comment: "loading feels slow today", want: domain.SentimentNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.comment))
		})
	}
}

func TestClassifier_CustomKeywords(t *testing.T) {
	c := NewClassifier([]string{"Cantik"}, []string{"buruk"})

	assert.Equal(t, domain.SentimentPositive, c.Classify("paparan cantik"))
	assert.Equal(t, domain.SentimentNegative, c.Classify("sangat buruk"))
	assert.Equal(t, domain.SentimentNeutral, c.Classify("very bad"))
}

func TestTopKeywords(t *testing.T) {
	got := TopKeywords([]string{"great app great"}, []string{"the"}, 3, 1)

	require.Len(t, got, 1)
	assert.Equal(t, domain.KeywordCount{Word: "great", Count: 2}, got[0])
}

func TestTopKeywords_FiltersStopwordsAndShortTokens(t *testing.T) {
	comments := []string{"the dashboard is easy to use", "use the dashboard"}

	got := TopKeywords(comments, DefaultStopwords, 3, 10)

	require.Len(t, got, 3)
	assert.Equal(t, domain.KeywordCount{Word: "dashboard", Count: 2}, got[0])
	assert.Equal(t, domain.KeywordCount{Word: "use", Count: 2}, got[1])
	assert.Equal(t, domain.KeywordCount{Word: "easy", Count: 1}, got[2])
}

func TestTopKeywords_TiesKeepCorpusOrder(t *testing.T) {
	got := TopKeywords([]string{"charts filters charts filters tables"}, nil, 3, 10)

	require.Len(t, got, 3)
	assert.Equal(t, "charts", got[0].Word)
	assert.Equal(t, "filters", got[1].Word)
	assert.Equal(t, "tables", got[2].Word)
}

func TestTopKeywords_MinLengthCountsRunes(t *testing.T) {
	got := TopKeywords([]string{"好用 ok baik"}, nil, 2, 10)

	words := make([]string, 0, len(got))
	for _, kc := range got {
		words = append(words, kc.Word)
	}
	assert.ElementsMatch(t, []string{"好用", "ok", "baik"}, words)
}

func TestTopKeywords_TopNZeroReturnsAll(t *testing.T) {
	got := TopKeywords([]string{"alpha beta gamma"}, nil, 1, 0)
	assert.Len(t, got, 3)
}

func TestTopKeywords_EmptyCorpus(t *testing.T) {
	assert.Empty(t, TopKeywords(nil, DefaultStopwords, 3, 10))
}

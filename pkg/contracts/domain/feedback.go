package domain

import (
	"time"
)

// Sentiment is the coarse label assigned to a feedback comment.
type Sentiment string

const (
	SentimentPositive Sentiment = "POSITIVE"
	SentimentNegative Sentiment = "NEGATIVE"
	SentimentNeutral  Sentiment = "NEUTRAL"
)

// FeedbackEntry is one usability feedback submission. Entries are append-only;
// the sentiment label is assigned once at ingest and never recomputed.
type FeedbackEntry struct {
	ID        string    `json:"id" db:"id"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
	Rating    int       `json:"rating" db:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" db:"feedback"`
	Sentiment Sentiment `json:"sentiment,omitempty" db:"sentiment"`
}

// SentimentCount pairs a sentiment label with its occurrence count.
type SentimentCount struct {
	Sentiment Sentiment `json:"sentiment"`
	Count     int       `json:"count"`
}

// KeywordCount pairs a keyword with its occurrence count across the feedback
// corpus.
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// FeedbackSummary aggregates the feedback corpus: sentiment distribution,
// top keywords, and the overall rating average.
type FeedbackSummary struct {
	Total         int              `json:"total"`
	AverageRating float64          `json:"average_rating"`
	Sentiments    []SentimentCount `json:"sentiments"`
	TopKeywords   []KeywordCount   `json:"top_keywords"`
}

// Package feedback holds the usability-feedback side of the dashboard: the
// rule-based sentiment classifier, keyword frequency counting, and the
// append-only sqlite store behind them.
package feedback

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/s22a0058-ai/FYP/pkg/contracts/domain"
)

// DefaultPositiveKeywords and DefaultNegativeKeywords are the fixed rule sets
// of the usability-feedback classifier. The positive set is checked first: a
// comment containing keywords from both sets classifies POSITIVE. That
// precedence is a deliberate, preserved policy, not an accident of iteration
// order.
var (
	DefaultPositiveKeywords = []string{"good", "nice", "easy", "helpful", "clear", "great"}
	DefaultNegativeKeywords = []string{"bad", "difficult", "confusing", "slow", "not good"}
)

// DefaultStopwords are dropped from keyword frequency counts.
var DefaultStopwords = []string{
	"the", "and", "is", "to", "a", "of", "in", "it", "for", "i",
	"this", "that", "was", "my", "with", "on", "so", "but", "be", "app",
}

// Classifier assigns coarse sentiment labels to free-text comments by
// case-insensitive substring matching against its keyword sets.
type Classifier struct {
	positive []string
	negative []string
}

// NewClassifier builds a classifier; nil keyword slices fall back to the
// defaults.
func NewClassifier(positive, negative []string) *Classifier {
	if positive == nil {
		positive = DefaultPositiveKeywords
	}
	if negative == nil {
		negative = DefaultNegativeKeywords
	}
	return &Classifier{positive: lowerAll(positive), negative: lowerAll(negative)}
}

// Classify labels one comment. Blank comments are NEUTRAL; otherwise the
// positive keywords are checked before the negative ones.
func (c *Classifier) Classify(comment string) domain.Sentiment {
	lower := strings.ToLower(strings.TrimSpace(comment))
	if lower == "" {
		return domain.SentimentNeutral
	}
	for _, kw := range c.positive {
		if strings.Contains(lower, kw) {
			return domain.SentimentPositive
		}
	}
	for _, kw := range c.negative {
		if strings.Contains(lower, kw) {
			return domain.SentimentNegative
		}
	}
	return domain.SentimentNeutral
}

// TopKeywords counts word frequency across a comment corpus. Comments are
// lower-cased and split on whitespace; stopwords and tokens shorter than
// minLength runes are dropped. The result is ordered by descending count with
// ties keeping first-seen corpus order, truncated to topN entries (topN <= 0
// returns everything).
func TopKeywords(comments []string, stopwords []string, minLength, topN int) []domain.KeywordCount {
	stop := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stop[strings.ToLower(w)] = struct{}{}
	}

	counts := make(map[string]int)
	var order []string
	for _, comment := range comments {
		for _, token := range strings.Fields(strings.ToLower(comment)) {
			if _, skip := stop[token]; skip {
				continue
			}
			if utf8.RuneCountInString(token) < minLength {
				continue
			}
			if _, seen := counts[token]; !seen {
				order = append(order, token)
			}
			counts[token]++
		}
	}

	result := make([]domain.KeywordCount, 0, len(order))
	for _, token := range order {
		result = append(result, domain.KeywordCount{Word: token, Count: counts[token]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	if topN > 0 && len(result) > topN {
		result = result[:topN]
	}
	return result
}

func lowerAll(words []string) []string {
	out := make([]string, len(words))
	for i, w := range words {
		out[i] = strings.ToLower(w)
	}
	return out
}

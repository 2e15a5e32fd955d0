// Package sentiment scores free text with interchangeable backends that map
// onto one positive/neutral/negative label scheme.
//
// Backends:
//
//   - lexicon: valence lexicon with booster, negation, capitalization and
//     punctuation rules, normalized to a compound score in [-1, 1].
//   - polarity: adjective lexicon averaging polarity and subjectivity.
//   - stars: remote 1-5 star classifier reached over HTTP.
//
// Each text is scored independently.
package sentiment

import (
	"context"
	"fmt"
)

// Label is the shared three-way sentiment label.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Result is the score of one text.
type Result struct {
	Text  string
	Score float64
	Label Label
	// Subjectivity in [0, 1]; only the polarity backend sets it.
	Subjectivity float64
	// Stars is the predicted rating; only the stars backend sets it.
	Stars int
}

// Backend scores a single text.
type Backend interface {
	Name() string
	Analyze(ctx context.Context, text string) (Result, error)
}

// AnalyzeAll scores texts in order, stopping at the first error or when ctx
// is cancelled.
func AnalyzeAll(ctx context.Context, b Backend, texts []string) ([]Result, error) {
	out := make([]Result, 0, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		r, err := b.Analyze(ctx, t)
		if err != nil {
			return out, fmt.Errorf("%s: row %d: %w", b.Name(), i+1, err)
		}
		out = append(out, r)
	}
	return out, nil
}

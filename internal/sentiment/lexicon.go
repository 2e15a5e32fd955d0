package sentiment

import (
	"context"
	"strings"
	"sync"

	"github.com/jonreiter/govader"
	"golang.org/x/text/unicode/norm"
)

var (
	analyzerOnce sync.Once
	analyzer     *govader.SentimentIntensityAnalyzer
)

// sharedAnalyzer builds the valence analyzer once; loading its lexicon is the
// expensive part and scoring only reads it.
func sharedAnalyzer() *govader.SentimentIntensityAnalyzer {
	analyzerOnce.Do(func() { analyzer = govader.NewSentimentIntensityAnalyzer() })
	return analyzer
}

// Lexicon is the rule-based valence backend. It is safe for concurrent use.
type Lexicon struct {
	a *govader.SentimentIntensityAnalyzer
}

// NewLexicon returns the lexicon backend.
func NewLexicon() *Lexicon {
	return &Lexicon{a: sharedAnalyzer()}
}

func (l *Lexicon) Name() string { return BackendLexicon }

func (l *Lexicon) Analyze(_ context.Context, text string) (Result, error) {
	c := l.Compound(text)
	return Result{Text: text, Score: c, Label: LexiconLabel(c)}, nil
}

// LexiconLabel maps a compound score to a label: >= 0.05 positive,
// <= -0.05 negative, otherwise neutral.
func LexiconLabel(compound float64) Label {
	switch {
	case compound >= 0.05:
		return Positive
	case compound <= -0.05:
		return Negative
	default:
		return Neutral
	}
}

// Compound scores text in [-1, 1]. Curly apostrophes are folded first so
// contracted negations match the lexicon.
func (l *Lexicon) Compound(text string) float64 {
	text = apostrophes.Replace(norm.NFC.String(text))
	if strings.TrimSpace(text) == "" {
		return 0
	}
	return l.a.PolarityScores(text).Compound
}

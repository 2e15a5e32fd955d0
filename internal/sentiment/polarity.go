package sentiment

import (
	"context"
	"math"
	"strings"
	"sync"
)

type polarityEntry struct {
	polarity     float64
	subjectivity float64
	intensity    float64
}

var (
	polarityOnce  sync.Once
	polarityWords map[string]polarityEntry
)

func loadPolarity() map[string]polarityEntry {
	polarityOnce.Do(func() {
		polarityWords = make(map[string]polarityEntry, 128)
		parseTSV(polarityTSV, func(f []string) {
			if len(f) < 4 {
				return
			}
			p, ok1 := parseFloat(f[1])
			s, ok2 := parseFloat(f[2])
			in, ok3 := parseFloat(f[3])
			if ok1 && ok2 && ok3 {
				polarityWords[strings.TrimSpace(f[0])] = polarityEntry{polarity: p, subjectivity: s, intensity: in}
			}
		})
	})
	return polarityWords
}

// Polarity averages word polarity and subjectivity. A preceding negation
// flips and halves polarity; a preceding intensifier scales both.
type Polarity struct {
	words map[string]polarityEntry
}

// NewPolarity returns the polarity backend over the embedded word list.
func NewPolarity() *Polarity {
	return &Polarity{words: loadPolarity()}
}

func (p *Polarity) Name() string { return BackendPolarity }

func (p *Polarity) Analyze(_ context.Context, text string) (Result, error) {
	pol, subj := p.Scores(text)
	return Result{Text: text, Score: pol, Label: PolarityLabel(pol), Subjectivity: subj}, nil
}

// PolarityLabel maps polarity to a label: > 0 positive, < 0 negative,
// exactly 0 neutral.
func PolarityLabel(polarity float64) Label {
	switch {
	case polarity > 0:
		return Positive
	case polarity < 0:
		return Negative
	default:
		return Neutral
	}
}

func (e polarityEntry) modifier() bool {
	return e.polarity == 0 && e.intensity != 1
}

// Scores returns polarity in [-1, 1] and subjectivity in [0, 1].
func (p *Polarity) Scores(text string) (polarity, subjectivity float64) {
	toks := tokenize(text)
	n := 0
	for i, t := range toks {
		e, ok := p.words[t.lower]
		if !ok || e.modifier() {
			continue
		}
		pol, subj := e.polarity, e.subjectivity
		if i > 0 {
			if m, ok := p.words[toks[i-1].lower]; ok && m.modifier() {
				pol *= m.intensity
				subj *= m.intensity
			}
		}
		for j := 1; j <= 2 && i-j >= 0; j++ {
			if isNegation(toks[i-j].lower) {
				pol *= -0.5
				break
			}
		}
		polarity += math.Max(-1, math.Min(1, pol))
		subjectivity += math.Max(0, math.Min(1, subj))
		n++
	}
	if n == 0 {
		return 0, 0
	}
	return polarity / float64(n), subjectivity / float64(n)
}

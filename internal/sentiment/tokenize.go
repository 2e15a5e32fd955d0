package sentiment

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

type token struct {
	lower string
}

var apostrophes = strings.NewReplacer("’", "'", "‘", "'", "`", "'")

// tokenize splits on whitespace, composes to NFC, folds curly apostrophes and
// strips edge punctuation. Single-rune tokens are dropped.
func tokenize(text string) []token {
	text = apostrophes.Replace(norm.NFC.String(text))
	lower := cases.Lower(language.Und)
	var out []token
	for _, f := range strings.Fields(text) {
		w := strings.TrimFunc(f, func(r rune) bool { return unicode.IsPunct(r) || unicode.IsSymbol(r) })
		if len([]rune(w)) <= 1 {
			continue
		}
		out = append(out, token{lower: lower.String(w)})
	}
	return out
}

var negations = map[string]bool{
	"not": true, "no": true, "never": true, "none": true, "nobody": true,
	"nothing": true, "neither": true, "nor": true, "nowhere": true,
	"cannot": true, "without": true, "aint": true, "isnt": true, "wasnt": true,
	"dont": true, "doesnt": true, "didnt": true, "cant": true, "couldnt": true,
	"wont": true, "wouldnt": true, "shouldnt": true, "hasnt": true,
	"havent": true, "hadnt": true, "arent": true, "werent": true,
}

func isNegation(w string) bool {
	return negations[w] || strings.HasSuffix(w, "n't")
}

// parseTSV calls fn with the fields of every non-comment line.
func parseTSV(raw string, fn func(fields []string)) {
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] == '#' {
			continue
		}
		fn(strings.Split(line, "\t"))
	}
}

func parseFloat(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f, err == nil
}

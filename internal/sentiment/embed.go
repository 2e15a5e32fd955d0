package sentiment

import _ "embed"

// polarityTSV holds word<TAB>polarity<TAB>subjectivity<TAB>intensity rows.
//
//go:embed data/polarity.tsv
var polarityTSV string

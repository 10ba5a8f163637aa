package automaton

// MatchType classifies how a pattern occurrence relates to word boundaries.
// Values are bit flags so callers can mask groups of types when aggregating
// evidence (e.g. matchType & (MatchFullWord|MatchFilteredWord)).
type MatchType int

const (
	MatchSubstring    MatchType = 1 << iota // inside a larger word
	MatchPrefix                             // word-start aligned only
	MatchSuffix                             // word-end aligned only
	MatchFullWord                           // standalone token
	MatchFilteredWord                       // extracted by a WordFilter
)

// WordType classifies the character composition of a matched token.
type WordType int

const (
	WordAny   WordType = 0
	WordAlpha WordType = 1 << (iota - 1)
	WordDigit
	WordAlnum
)

// matchWeights maps each match type to its fixed confidence weight.
// Downstream scoring depends on these exact values; they are not tunable
// per scan.
var matchWeights = map[MatchType]float64{
	MatchFullWord:     1.0,
	MatchPrefix:       0.6,
	MatchSuffix:       0.6,
	MatchSubstring:    0.2,
	MatchFilteredWord: 0.7,
}

// Weight returns the confidence weight assigned to a match type.
func (t MatchType) Weight() float64 {
	return matchWeights[t]
}

func (t MatchType) String() string {
	switch t {
	case MatchSubstring:
		return "substring"
	case MatchPrefix:
		return "prefix"
	case MatchSuffix:
		return "suffix"
	case MatchFullWord:
		return "full_word"
	case MatchFilteredWord:
		return "filtered_word"
	}
	return "unknown"
}

func (w WordType) String() string {
	switch w {
	case WordAlpha:
		return "alpha"
	case WordDigit:
		return "digit"
	case WordAlnum:
		return "alphanumeric"
	}
	return "any"
}

// Match is a single pattern or filtered-word occurrence. Start and End are
// half-open code-point offsets into the exact string passed to Search;
// Length is in code points.
type Match struct {
	Keyword     string    `json:"keyword"`
	Start       int       `json:"start"`
	End         int       `json:"end"`
	Length      int       `json:"length"`
	IsWordStart bool      `json:"is_word_start"`
	IsWordEnd   bool      `json:"is_word_end"`
	Type        MatchType `json:"match_type"`
	WordType    WordType  `json:"word_type"`
	Weight      float64   `json:"weight"`

	// FilterLabels is set only on MatchFilteredWord results and carries the
	// labels of every filter the word satisfied.
	FilterLabels []string `json:"filter_labels,omitempty"`
}

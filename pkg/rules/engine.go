// Package rules provides a mechanical regex execution engine plus the
// built-in credential/PII rule registry. The engine compiles its rule list
// once at construction and then only runs what it was given: it never
// decides which rules apply — that is a caller responsibility.
package rules

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Rule is one regex rule: a stable id, the pattern source, whether matching
// is case-sensitive, an optional entity type tag and a confidence attached
// verbatim to every match. Immutable after engine construction.
type Rule struct {
	ID            string  `yaml:"id" json:"id"`
	Pattern       string  `yaml:"pattern" json:"pattern"`
	CaseSensitive bool    `yaml:"case_sensitive" json:"case_sensitive"`
	EntityType    string  `yaml:"entity_type" json:"entity_type,omitempty"`
	Confidence    float64 `yaml:"confidence" json:"confidence"`
}

// Match is one regex hit. Start and End are half-open code-point offsets
// into the scanned string.
type Match struct {
	RuleID     string  `json:"rule_id"`
	EntityType string  `json:"entity_type"`
	Start      int     `json:"start"`
	End        int     `json:"end"`
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

type compiledRule struct {
	rule Rule
	re   *regexp.Regexp
}

// Engine holds compiled rules. Build once, then Run from any number of
// goroutines.
type Engine struct {
	rules []compiledRule
}

// NewEngine compiles every rule up front. A malformed pattern is a
// configuration error and fails construction immediately. Rules without an
// explicit confidence default to 1.0.
func NewEngine(ruleList []Rule) (*Engine, error) {
	compiled := make([]compiledRule, 0, len(ruleList))
	for _, r := range ruleList {
		expr := r.Pattern
		if !r.CaseSensitive {
			expr = "(?i)" + expr
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("rules: compile rule %q: %w", r.ID, err)
		}
		if r.Confidence == 0 {
			r.Confidence = 1.0
		}
		compiled = append(compiled, compiledRule{rule: r, re: re})
	}
	return &Engine{rules: compiled}, nil
}

// RuleCount returns the number of compiled rules.
func (e *Engine) RuleCount() int {
	return len(e.rules)
}

// Run executes every rule against text with native non-overlapping match
// semantics, returning matches grouped in rule-declaration order. Entity
// type defaults to "UNKNOWN". Absence of matches is a normal empty result.
func (e *Engine) Run(text string) []Match {
	var results []Match
	var byteToRune []int // built lazily on the first hit

	for _, cr := range e.rules {
		locs := cr.re.FindAllStringIndex(text, -1)
		if len(locs) == 0 {
			continue
		}
		if byteToRune == nil {
			byteToRune = runeOffsets(text)
		}

		entity := cr.rule.EntityType
		if entity == "" {
			entity = "UNKNOWN"
		}
		for _, loc := range locs {
			results = append(results, Match{
				RuleID:     cr.rule.ID,
				EntityType: entity,
				Start:      byteToRune[loc[0]],
				End:        byteToRune[loc[1]],
				Text:       text[loc[0]:loc[1]],
				Confidence: cr.rule.Confidence,
			})
		}
	}
	return results
}

// runeOffsets maps every byte offset of text (plus the end sentinel) to the
// code-point offset it falls in, so regexp byte spans convert to the
// code-point spans the rest of the engine speaks.
func runeOffsets(text string) []int {
	offsets := make([]int, len(text)+1)
	r := 0
	for i := 0; i < len(text); {
		_, size := utf8.DecodeRuneInString(text[i:])
		for k := 0; k < size; k++ {
			offsets[i+k] = r
		}
		i += size
		r++
	}
	offsets[len(text)] = r
	return offsets
}

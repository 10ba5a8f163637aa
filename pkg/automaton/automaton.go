// Package automaton implements multi-pattern string matching with an
// Aho-Corasick automaton. Patterns are inserted into a trie, failure links
// are built once, and text is scanned in a single left-to-right pass that
// reports every pattern occurrence with word-boundary classification and a
// fixed confidence weight. The same pass can extract words matching caller
// supplied WordFilter criteria.
//
// Build once, scan many: after Build the automaton is immutable and safe for
// concurrent use from any number of goroutines.
package automaton

import (
	"errors"
	"sort"
	"unicode"
	"unicode/utf8"
)

// ErrAutomatonBuilt is returned by AddPattern once Build has run. Adding
// patterns to a built automaton is programmer misuse, not a runtime
// condition to recover from.
var ErrAutomatonBuilt = errors.New("automaton: cannot add patterns after build")

// Automaton is a trie of literal patterns augmented with failure links.
// The zero state is the root. All offsets produced during scanning are
// code-point offsets.
type Automaton struct {
	transitions []map[rune]int
	outputs     [][]string
	fail        []int
	patternLen  map[string]int // rune length per pattern
	built       bool
}

// New returns an empty automaton.
func New() *Automaton {
	return &Automaton{
		transitions: []map[rune]int{{}},
		outputs:     [][]string{nil},
		fail:        []int{0},
		patternLen:  make(map[string]int),
	}
}

// AddPattern inserts a literal pattern into the trie, creating states as
// needed. Inserting the same pattern twice is a no-op (same terminal state).
// The empty pattern is ignored.
func (a *Automaton) AddPattern(pattern string) error {
	if a.built {
		return ErrAutomatonBuilt
	}
	if pattern == "" {
		return nil
	}

	state := 0
	for _, ch := range pattern {
		next, ok := a.transitions[state][ch]
		if !ok {
			next = len(a.transitions)
			a.transitions[state][ch] = next
			a.transitions = append(a.transitions, map[rune]int{})
			a.outputs = append(a.outputs, nil)
			a.fail = append(a.fail, 0)
		}
		state = next
	}
	a.outputs[state] = appendOutput(a.outputs[state], pattern)
	a.patternLen[pattern] = utf8.RuneCountInString(pattern)
	return nil
}

// Build assigns failure links breadth-first and merges output sets along
// them, so a state reports every pattern ending at its position including
// those reachable only via suffix links. Idempotent; a no-op on an empty
// pattern set.
func (a *Automaton) Build() {
	if a.built {
		return
	}

	queue := make([]int, 0, len(a.transitions))
	for _, next := range a.transitions[0] {
		a.fail[next] = 0
		queue = append(queue, next)
	}

	for len(queue) > 0 {
		state := queue[0]
		queue = queue[1:]

		for ch, next := range a.transitions[state] {
			queue = append(queue, next)

			// Walk the failure chain until a state with a ch-transition
			// exists, or the root.
			failState := a.fail[state]
			for failState > 0 {
				if _, ok := a.transitions[failState][ch]; ok {
					break
				}
				failState = a.fail[failState]
			}
			a.fail[next] = a.transitions[failState][ch] // zero when absent

			for _, p := range a.outputs[a.fail[next]] {
				a.outputs[next] = appendOutput(a.outputs[next], p)
			}
		}
	}

	a.built = true
}

// PatternCount returns the number of distinct patterns inserted.
func (a *Automaton) PatternCount() int {
	return len(a.patternLen)
}

// Search scans text in one pass and returns every pattern occurrence,
// boundary-classified and weighted. When filters are supplied, contiguous
// runs of word characters (alphanumerics, plus any special characters a
// filter's MustContain strings require) are additionally checked against
// the filters at each run boundary, emitting MatchFilteredWord results.
//
// Search builds the automaton if Build was not called explicitly. Scanning
// never fails; malformed or empty input yields an empty result.
func (a *Automaton) Search(text string, filters []WordFilter) []Match {
	if !a.built {
		a.Build()
	}

	runes := []rune(text)
	state := 0
	var results []Match

	// Characters like '@' or '.' become word characters when a filter's
	// MustContain references them, so tokens such as email addresses
	// survive run tracking intact.
	allowedSpecial := specialRunes(filters)
	wordStart := -1

	for i, ch := range runes {
		for state > 0 {
			if _, ok := a.transitions[state][ch]; ok {
				break
			}
			state = a.fail[state]
		}
		state = a.transitions[state][ch] // zero on total failure

		for _, pattern := range a.outputs[state] {
			length := a.patternLen[pattern]
			start := i - length + 1
			end := i + 1
			isWordStart := start == 0 || !isWordRune(runes[start-1])
			isWordEnd := end == len(runes) || !isWordRune(runes[end])

			var matchType MatchType
			switch {
			case isWordStart && isWordEnd:
				matchType = MatchFullWord
			case isWordStart:
				matchType = MatchPrefix
			case isWordEnd:
				matchType = MatchSuffix
			default:
				matchType = MatchSubstring
			}

			results = append(results, Match{
				Keyword:     pattern,
				Start:       start,
				End:         end,
				Length:      length,
				IsWordStart: isWordStart,
				IsWordEnd:   isWordEnd,
				Type:        matchType,
				WordType:    classifyWord(pattern),
				Weight:      matchType.Weight(),
			})
		}

		if len(filters) > 0 {
			isWordChar := isWordRune(ch)
			if !isWordChar {
				_, isWordChar = allowedSpecial[ch]
			}
			if isWordChar {
				if wordStart == -1 {
					wordStart = i
				}
			} else if wordStart != -1 {
				results = appendFilteredWord(results, runes, wordStart, i, filters)
				wordStart = -1
			}
		}
	}

	// Trailing word reaching the end of the text.
	if len(filters) > 0 && wordStart != -1 {
		results = appendFilteredWord(results, runes, wordStart, len(runes), filters)
	}

	return results
}

// SearchNormalized runs Search and reduces the results to a non-overlapping
// cover: matches are ordered by start ascending then length descending, and
// a match is kept only if it begins at or after the end of the last kept
// match. Earliest-then-longest wins.
func (a *Automaton) SearchNormalized(text string, filters []WordFilter) []Match {
	matches := a.Search(text, filters)
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Start != matches[j].Start {
			return matches[i].Start < matches[j].Start
		}
		return matches[i].Length > matches[j].Length
	})

	kept := make([]Match, 0, len(matches))
	lastEnd := -1
	for _, m := range matches {
		if m.Start >= lastEnd {
			kept = append(kept, m)
			lastEnd = m.End
		}
	}
	return kept
}

// isWordRune reports whether r counts as a word character for boundary
// classification. Only letters and digits qualify; connectors such as '_'
// intentionally do not, and match weighting downstream depends on that.
func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// classifyWord tags a token by its character composition.
func classifyWord(s string) WordType {
	alpha, digit := true, true
	for _, r := range s {
		isLetter := unicode.IsLetter(r)
		isDigit := unicode.IsDigit(r)
		if !isLetter {
			alpha = false
		}
		if !isDigit {
			digit = false
		}
		if !isLetter && !isDigit {
			return WordAny
		}
	}
	switch {
	case alpha:
		return WordAlpha
	case digit:
		return WordDigit
	}
	return WordAlnum
}

func appendOutput(outputs []string, pattern string) []string {
	for _, p := range outputs {
		if p == pattern {
			return outputs
		}
	}
	return append(outputs, pattern)
}

package automaton

import (
	"strings"
	"unicode"
)

// CharType constrains the character composition a WordFilter accepts.
type CharType string

const (
	CharAny   CharType = "any"
	CharAlpha CharType = "alpha"
	CharDigit CharType = "digit"
	CharAlnum CharType = "alphanumeric"
)

// WordFilter describes a word-extraction criterion evaluated at word-run
// boundaries during Search. All set constraints must hold for the filter to
// match (AND); a word is emitted when at least one labeled filter matches
// (OR across filters). Length fields are in code points; nil means
// unconstrained.
type WordFilter struct {
	ExactLength *int
	MinLength   *int
	MaxLength   *int
	WordType    CharType
	Label       string
	MustContain []string

	// MinOccurrences / MaxOccurrences bound how many times each keyed
	// substring may appear in the word (non-overlapping count).
	MinOccurrences map[string]int
	MaxOccurrences map[string]int
}

// matches reports whether the word satisfies every constraint of the filter.
// Character-type facts are computed once by the caller and shared across
// filters.
func (wf *WordFilter) matches(word string, length int, isAlpha, isDigit, isAlnum bool) bool {
	if wf.ExactLength != nil && length != *wf.ExactLength {
		return false
	}
	if wf.MinLength != nil && length < *wf.MinLength {
		return false
	}
	if wf.MaxLength != nil && length > *wf.MaxLength {
		return false
	}

	switch wf.WordType {
	case CharAlpha:
		if !isAlpha {
			return false
		}
	case CharDigit:
		if !isDigit {
			return false
		}
	case CharAlnum:
		if !isAlnum {
			return false
		}
	}

	for _, sub := range wf.MustContain {
		if !strings.Contains(word, sub) {
			return false
		}
	}
	for sub, min := range wf.MinOccurrences {
		if strings.Count(word, sub) < min {
			return false
		}
	}
	for sub, max := range wf.MaxOccurrences {
		if strings.Count(word, sub) > max {
			return false
		}
	}
	return true
}

// appendFilteredWord validates the word runes[start:end] against the filters
// and appends a single MatchFilteredWord carrying the labels of every filter
// that matched. Unlabeled filters never produce a match on their own.
func appendFilteredWord(results []Match, runes []rune, start, end int, filters []WordFilter) []Match {
	word := string(runes[start:end])
	length := end - start

	isAlpha, isDigit, isAlnum := wordFacts(runes[start:end])

	var labels []string
	for i := range filters {
		wf := &filters[i]
		if !wf.matches(word, length, isAlpha, isDigit, isAlnum) {
			continue
		}
		if wf.Label != "" {
			labels = append(labels, wf.Label)
		}
	}
	if len(labels) == 0 {
		return results
	}

	wordType := WordAny
	switch {
	case isAlpha:
		wordType = WordAlpha
	case isDigit:
		wordType = WordDigit
	case isAlnum:
		wordType = WordAlnum
	}

	return append(results, Match{
		Keyword:      word,
		Start:        start,
		End:          end,
		Length:       length,
		IsWordStart:  true,
		IsWordEnd:    true,
		Type:         MatchFilteredWord,
		WordType:     wordType,
		Weight:       MatchFilteredWord.Weight(),
		FilterLabels: labels,
	})
}

// wordFacts computes character-composition facts for a word in one pass.
func wordFacts(word []rune) (isAlpha, isDigit, isAlnum bool) {
	if len(word) == 0 {
		return false, false, false
	}
	isAlpha, isDigit, isAlnum = true, true, true
	for _, r := range word {
		letter := unicode.IsLetter(r)
		digit := unicode.IsDigit(r)
		if !letter {
			isAlpha = false
		}
		if !digit {
			isDigit = false
		}
		if !letter && !digit {
			isAlnum = false
		}
	}
	return isAlpha, isDigit, isAlnum
}

// specialRunes collects the non-alphanumeric characters referenced by any
// filter's MustContain strings so Search can treat them as word characters.
func specialRunes(filters []WordFilter) map[rune]struct{} {
	var allowed map[rune]struct{}
	for i := range filters {
		for _, sub := range filters[i].MustContain {
			for _, r := range sub {
				if isWordRune(r) {
					continue
				}
				if allowed == nil {
					allowed = make(map[rune]struct{})
				}
				allowed[r] = struct{}{}
			}
		}
	}
	return allowed
}

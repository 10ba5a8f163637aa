package normalize

import "math"

// Span is a half-open [Start,End) range of code-point offsets.
type Span struct {
	Start int
	End   int
}

// ShannonEntropy returns the entropy of the string's code-point distribution
// in bits per character. High entropy suggests encoded or random data rather
// than natural language. Empty input yields 0.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}

	freq := make(map[rune]int)
	n := 0
	for _, r := range s {
		freq[r]++
		n++
	}

	entropy := 0.0
	for _, count := range freq {
		p := float64(count) / float64(n)
		entropy -= p * math.Log2(p)
	}
	return entropy
}

// isBase64Rune reports whether r belongs to the standard Base64 alphabet
// (including padding).
func isBase64Rune(r rune) bool {
	switch {
	case r >= 'A' && r <= 'Z':
		return true
	case r >= 'a' && r <= 'z':
		return true
	case r >= '0' && r <= '9':
		return true
	}
	return r == '+' || r == '/' || r == '='
}

// FindBase64Spans scans text for maximal runs of Base64-alphabet characters
// of at least minLen code points. This is a lexical O(n) pass; it does not
// attempt to decode. Any non-Base64 character breaks a run.
func FindBase64Spans(text string, minLen int) []Span {
	var spans []Span
	start := -1
	i := 0

	for _, r := range text {
		if isBase64Rune(r) {
			if start == -1 {
				start = i
			}
		} else {
			if start != -1 && i-start >= minLen {
				spans = append(spans, Span{Start: start, End: i})
			}
			start = -1
		}
		i++
	}

	if start != -1 && i-start >= minLen {
		spans = append(spans, Span{Start: start, End: i})
	}
	return spans
}

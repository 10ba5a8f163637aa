package normalize

import (
	"math"
	"reflect"
	"testing"
)

func TestShannonEntropy(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  float64
	}{
		{"empty", "", 0},
		{"single repeated char", "aaaaaaaa", 0},
		{"sixteen distinct chars", "abcdefghijklmnop", 4.0},
		{"two chars evenly", "abab", 1.0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ShannonEntropy(tc.input)
			if math.Abs(got-tc.want) > 1e-9 {
				t.Errorf("ShannonEntropy(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestFindBase64Spans(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		minLen int
		want   []Span
	}{
		{"single run with padding chars", "abc==def", 3, []Span{{0, 8}}},
		{"run broken by non-base64 char", "abcd!efgh", 4, []Span{{0, 4}, {5, 9}}},
		{"below min length", "ab cd ef", 3, nil},
		{"trailing run to end of text", "!!!YWJjZGVm", 6, []Span{{3, 11}}},
		{"empty input", "", 1, nil},
		{"plus and slash are alphabet", "a+/b=c!x", 6, []Span{{0, 6}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FindBase64Spans(tc.input, tc.minLen)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("FindBase64Spans(%q, %d) = %v, want %v", tc.input, tc.minLen, got, tc.want)
			}
		})
	}
}

func TestFindBase64SpansCodePointOffsets(t *testing.T) {
	// Multibyte prefix: spans count code points, not bytes.
	spans := FindBase64Spans("日本語 YWJjZGVm", 8)
	want := []Span{{4, 12}}
	if !reflect.DeepEqual(spans, want) {
		t.Errorf("spans = %v, want %v", spans, want)
	}
}

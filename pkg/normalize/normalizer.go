// Package normalize unmasks obfuscated or encoded text ahead of content
// scanning. The pipeline applies only deterministic, rule-based transforms:
// Unicode compatibility normalization against homoglyph tricks, percent
// decoding, entropy-gated Base64 substring decoding, bounded whole-text
// Base64 decoding, and optional separator/whitespace/case folding.
//
// Normalization is lossy for literal identifiers (file_name.txt becomes
// "file name txt" with separators enabled), so callers should scan both the
// original and the normalized text and merge the results.
package normalize

import (
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Compiled once at package load, shared across all calls.
var (
	reSeparators = regexp.MustCompile(`[_\-#]+`)
	reWhitespace = regexp.MustCompile(`\s+`)
)

// printableThreshold is the minimum fraction of printable characters a
// decoded candidate must contain to be accepted. Anything below this is
// treated as binary and left encoded.
const printableThreshold = 0.9

// Options configures the pipeline. Decoding happens before any case folding
// because Base64 is case-sensitive; the stage order itself is fixed and not
// configurable.
type Options struct {
	// MaxDecodeDepth bounds the whole-text recursive Base64 decode.
	MaxDecodeDepth int

	// EnableBase64 is the master switch for both Base64 stages.
	EnableBase64 bool

	// EnableURLDecode decodes percent-escaped sequences.
	EnableURLDecode bool

	// EnableUnicodeNorm applies NFKC compatibility composition.
	EnableUnicodeNorm bool

	// CollapseWhitespace folds whitespace runs to single spaces and trims.
	CollapseWhitespace bool

	// Lowercase folds case as the final stage.
	Lowercase bool

	// EnableSubstringBase64 decodes Base64-looking substrings in place.
	// Ignored unless EnableBase64 is also set.
	EnableSubstringBase64 bool

	// MinBase64SubstringLen is the minimum run length considered a
	// substring decode candidate.
	MinBase64SubstringLen int

	// Base64EntropyThreshold rejects candidate runs whose Shannon entropy
	// (bits/char) falls below it, filtering out natural-language runs.
	Base64EntropyThreshold float64

	// MaxBase64Substrings caps how many candidate runs one call examines.
	MaxBase64Substrings int

	// EnableSeparatorNorm collapses runs of '_', '-' and '#' to a space.
	EnableSeparatorNorm bool
}

// DefaultOptions returns the production defaults.
func DefaultOptions() Options {
	return Options{
		MaxDecodeDepth:         2,
		EnableBase64:           true,
		EnableURLDecode:        true,
		EnableUnicodeNorm:      true,
		CollapseWhitespace:     true,
		Lowercase:              false,
		EnableSubstringBase64:  true,
		MinBase64SubstringLen:  8,
		Base64EntropyThreshold: 2.5,
		MaxBase64Substrings:    10,
		EnableSeparatorNorm:    false,
	}
}

// Result is the normalized text plus the ordered names of the stages that
// actually changed it. A stage that left the text untouched is not recorded.
type Result struct {
	Text  string   `json:"text"`
	Steps []string `json:"steps"`
}

// Normalizer applies the transform pipeline. It holds configuration only;
// Normalize is pure and safe for unlimited concurrent use.
type Normalizer struct {
	opts Options
}

// New returns a Normalizer with the given options.
func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// NewDefault returns a Normalizer with DefaultOptions.
func NewDefault() *Normalizer {
	return New(DefaultOptions())
}

// Normalize runs the pipeline over text. The stage order is a correctness
// contract: decoding stages run before separator, whitespace and case
// folding. Same input and options always produce the same Result.
func (n *Normalizer) Normalize(text string) Result {
	var steps []string
	out := text

	// Unicode compatibility composition folds fullwidth forms, ligatures
	// and other visual variants onto their canonical characters.
	if n.opts.EnableUnicodeNorm {
		if next := norm.NFKC.String(out); next != out {
			steps = append(steps, "unicode_nfkc")
			out = next
		}
	}

	// Percent decoding. Each valid %XX sequence decodes independently and
	// malformed escapes pass through verbatim, so a stray '%' elsewhere in
	// the input cannot shield encoded sequences from decoding.
	if n.opts.EnableURLDecode {
		if next := percentDecode(out); next != out {
			steps = append(steps, "url_decode")
			out = next
		}
	}

	// Substring pass before the whole-text pass, per the pipeline
	// contract. After substrings are rewritten the whole-text decode
	// usually fails validation and no-ops; that ordering is intentional.
	if n.opts.EnableBase64 && n.opts.EnableSubstringBase64 {
		var subSteps []string
		out, subSteps = n.decodeBase64Substrings(out)
		steps = append(steps, subSteps...)
	}

	if n.opts.EnableBase64 {
		var b64Steps []string
		out, b64Steps = n.recursiveBase64Decode(out)
		steps = append(steps, b64Steps...)
	}

	if n.opts.EnableSeparatorNorm {
		if next := reSeparators.ReplaceAllString(out, " "); next != out {
			steps = append(steps, "normalize_separators")
			out = next
		}
	}

	if n.opts.CollapseWhitespace {
		if next := strings.TrimSpace(reWhitespace.ReplaceAllString(out, " ")); next != out {
			steps = append(steps, "collapse_whitespace")
			out = next
		}
	}

	// Last: lowercasing would corrupt any Base64 still undecoded above.
	if n.opts.Lowercase {
		if next := strings.ToLower(out); next != out {
			steps = append(steps, "lowercase")
			out = next
		}
	}

	return Result{Text: out, Steps: steps}
}

// decodeBase64Substrings rewrites high-entropy Base64-looking runs in place,
// left to right, leaving everything else untouched. Each accepted run
// records one step entry.
func (n *Normalizer) decodeBase64Substrings(text string) (string, []string) {
	var steps []string

	spans := FindBase64Spans(text, n.opts.MinBase64SubstringLen)
	if len(spans) == 0 {
		return text, steps
	}
	// Hard cap against pathological inputs.
	if len(spans) > n.opts.MaxBase64Substrings {
		spans = spans[:n.opts.MaxBase64Substrings]
	}

	runes := []rune(text)
	var b strings.Builder
	last := 0
	modified := false

	for _, sp := range spans {
		candidate := string(runes[sp.Start:sp.End])

		// Entropy gate: natural-language runs stay as they are.
		if ShannonEntropy(candidate) < n.opts.Base64EntropyThreshold {
			continue
		}
		decoded, ok := safeBase64Decode(candidate)
		if !ok || decoded == "" {
			continue
		}
		if !isMostlyPrintable(decoded) {
			continue
		}

		b.WriteString(string(runes[last:sp.Start]))
		b.WriteString(decoded)
		last = sp.End
		modified = true
		steps = append(steps, "base64_substring_decode")
	}

	if !modified {
		return text, steps
	}
	b.WriteString(string(runes[last:]))
	return b.String(), steps
}

// recursiveBase64Decode repeatedly decodes the entire text, accepting each
// layer only while the decode is valid and mostly printable. It stops
// silently on the first failure, keeping the best progress so far.
func (n *Normalizer) recursiveBase64Decode(text string) (string, []string) {
	var steps []string
	out := text

	for depth := 0; depth < n.opts.MaxDecodeDepth; depth++ {
		candidate, ok := safeBase64Decode(out)
		if !ok {
			break
		}
		if !isMostlyPrintable(candidate) {
			break
		}
		out = candidate
		steps = append(steps, fmt.Sprintf("base64_decode_depth_%d", depth+1))
	}

	return out, steps
}

// percentDecode resolves every valid %XX escape in s and copies anything
// else, including malformed escapes, through unchanged. '+' is a literal,
// not a space.
func percentDecode(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && i+2 < len(s) {
			hi, ok1 := unhex(s[i+1])
			lo, ok2 := unhex(s[i+2])
			if ok1 && ok2 {
				b.WriteByte(hi<<4 | lo)
				i += 2
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// safeBase64Decode attempts a standard-alphabet decode. Whitespace is
// stripped first since encoded payloads are often pretty-printed; the length
// must then be a multiple of four. Invalid UTF-8 in the decoded bytes is
// dropped rather than failing the decode.
func safeBase64Decode(text string) (string, bool) {
	compact := stripWhitespace(text)
	if compact == "" || len(compact)%4 != 0 {
		return "", false
	}

	raw, err := base64.StdEncoding.DecodeString(compact)
	if err != nil {
		return "", false
	}
	return strings.ToValidUTF8(string(raw), ""), true
}

// isMostlyPrintable reports whether at least printableThreshold of the
// characters are printable, distinguishing readable text from binary blobs.
func isMostlyPrintable(text string) bool {
	if text == "" {
		return false
	}

	total, printable := 0, 0
	for _, r := range text {
		total++
		if unicode.IsPrint(r) {
			printable++
		}
	}
	return float64(printable)/float64(total) >= printableThreshold
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// Package scanner wires the normalizer, the pattern automaton and the regex
// engine into the dual-scan protocol: every input is scanned as-is and again
// after normalization, and both evidence sets are returned side by side.
// Normalization is lossy for literal identifiers while it exposes obfuscated
// keywords, so neither pass alone is sufficient.
//
// A Scanner is built once from configuration and is then read-only; Scan is
// safe to call concurrently.
package scanner

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bondsec/bastion/pkg/automaton"
	"github.com/bondsec/bastion/pkg/normalize"
	"github.com/bondsec/bastion/pkg/rules"
)

// Config is everything a Scanner needs: literal patterns and word filters
// for the automaton, regex rules for the engine, and normalizer options.
type Config struct {
	Patterns    []string
	WordFilters []automaton.WordFilter
	Rules       []rules.Rule
	Normalizer  normalize.Options
}

// Evidence is the combined match output of one pass over one text form.
type Evidence struct {
	Matches     []automaton.Match `json:"matches"`
	RuleMatches []rules.Match     `json:"rule_matches"`
}

// Report carries the evidence from both passes. Offsets in Original refer
// to the input string, offsets in Normalized to NormalizedText; they are
// deliberately not unified because the policy stage needs both views.
type Report struct {
	ScanID             string   `json:"scan_id"`
	Original           Evidence `json:"original"`
	Normalized         Evidence `json:"normalized"`
	NormalizedText     string   `json:"normalized_text"`
	NormalizationSteps []string `json:"normalization_steps"`
	LatencyMs          float64  `json:"latency_ms"`
}

// TotalMatches counts all match evidence across both passes.
func (r *Report) TotalMatches() int {
	return len(r.Original.Matches) + len(r.Original.RuleMatches) +
		len(r.Normalized.Matches) + len(r.Normalized.RuleMatches)
}

// Scanner is the build-once scan pipeline.
type Scanner struct {
	auto    *automaton.Automaton
	engine  *rules.Engine
	norm    *normalize.Normalizer
	filters []automaton.WordFilter
}

// New constructs a Scanner from cfg. Pattern and rule compilation failures
// are configuration errors and fail construction.
func New(cfg Config) (*Scanner, error) {
	auto := automaton.New()
	for _, p := range cfg.Patterns {
		if err := auto.AddPattern(p); err != nil {
			return nil, fmt.Errorf("scanner: add pattern %q: %w", p, err)
		}
	}
	auto.Build()

	engine, err := rules.NewEngine(cfg.Rules)
	if err != nil {
		return nil, fmt.Errorf("scanner: %w", err)
	}

	return &Scanner{
		auto:    auto,
		engine:  engine,
		norm:    normalize.New(cfg.Normalizer),
		filters: cfg.WordFilters,
	}, nil
}

// Scan normalizes text, runs the automaton and the regex engine over both
// the original and the normalized form, and returns the merged report. The
// normalized pass uses the non-overlapping automaton cover since decoded
// text tends to stack overlapping hits.
func (s *Scanner) Scan(text string) *Report {
	start := time.Now()

	res := s.norm.Normalize(text)
	report := &Report{
		ScanID:             uuid.NewString(),
		NormalizedText:     res.Text,
		NormalizationSteps: res.Steps,
	}

	report.Original = Evidence{
		Matches:     s.auto.Search(text, s.filters),
		RuleMatches: s.engine.Run(text),
	}
	report.Normalized = Evidence{
		Matches:     s.auto.SearchNormalized(res.Text, s.filters),
		RuleMatches: s.engine.Run(res.Text),
	}

	report.LatencyMs = float64(time.Since(start).Microseconds()) / 1000.0
	return report
}

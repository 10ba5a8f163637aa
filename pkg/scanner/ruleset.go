package scanner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bondsec/bastion/pkg/automaton"
	"github.com/bondsec/bastion/pkg/normalize"
	"github.com/bondsec/bastion/pkg/rules"
)

// WordFilterSpec is the YAML shape of a word filter. Pointer fields
// distinguish "unset" from zero so a filter can constrain only length,
// only type, or both.
type WordFilterSpec struct {
	ExactLength    *int           `yaml:"exact_length"`
	MinLength      *int           `yaml:"min_length"`
	MaxLength      *int           `yaml:"max_length"`
	WordType       string         `yaml:"word_type"`
	Label          string         `yaml:"label"`
	MustContain    []string       `yaml:"must_contain"`
	MinOccurrences map[string]int `yaml:"min_occurrences"`
	MaxOccurrences map[string]int `yaml:"max_occurrences"`
}

// NormalizerSpec mirrors normalize.Options with pointer fields so omitted
// keys keep their defaults.
type NormalizerSpec struct {
	EnableUnicodeNorm      *bool    `yaml:"enable_unicode_norm"`
	EnableURLDecode        *bool    `yaml:"enable_url_decode"`
	EnableBase64           *bool    `yaml:"enable_base64"`
	EnableSubstringBase64  *bool    `yaml:"enable_substring_base64"`
	EnableSeparatorNorm    *bool    `yaml:"enable_separator_norm"`
	CollapseWhitespace     *bool    `yaml:"collapse_whitespace"`
	Lowercase              *bool    `yaml:"lowercase"`
	MaxDecodeDepth         *int     `yaml:"max_decode_depth"`
	MinBase64SubstringLen  *int     `yaml:"min_base64_substring_len"`
	Base64EntropyThreshold *float64 `yaml:"base64_entropy_threshold"`
	MaxBase64Substrings    *int     `yaml:"max_base64_substrings"`
}

// Ruleset is the on-disk configuration document for a Scanner.
type Ruleset struct {
	Patterns       []string         `yaml:"patterns"`
	WordFilters    []WordFilterSpec `yaml:"word_filters"`
	Rules          []rules.Rule     `yaml:"rules"`
	IncludeBuiltin []string         `yaml:"include_builtin"`
	Normalizer     *NormalizerSpec  `yaml:"normalizer"`
}

// LoadRuleset reads and parses a YAML ruleset file.
func LoadRuleset(path string) (*Ruleset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ruleset: read %s: %w", path, err)
	}
	return ParseRuleset(data)
}

// ParseRuleset parses YAML ruleset bytes.
func ParseRuleset(data []byte) (*Ruleset, error) {
	var rs Ruleset
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("ruleset: parse yaml: %w", err)
	}
	return &rs, nil
}

// Config validates the ruleset and converts it into a scanner Config,
// expanding include_builtin categories into concrete rules.
func (rs *Ruleset) Config() (Config, error) {
	cfg := Config{
		Patterns:   rs.Patterns,
		Normalizer: normalize.DefaultOptions(),
	}

	for i, spec := range rs.WordFilters {
		wf, err := spec.toFilter()
		if err != nil {
			return Config{}, fmt.Errorf("ruleset: word_filters[%d]: %w", i, err)
		}
		cfg.WordFilters = append(cfg.WordFilters, wf)
	}

	cfg.Rules = append(cfg.Rules, rs.Rules...)
	for _, cat := range rs.IncludeBuiltin {
		builtin := rules.BuiltinByCategory(rules.Category(cat))
		if len(builtin) == 0 {
			return Config{}, fmt.Errorf("ruleset: unknown builtin category %q", cat)
		}
		cfg.Rules = append(cfg.Rules, builtin...)
	}

	if rs.Normalizer != nil {
		rs.Normalizer.apply(&cfg.Normalizer)
	}
	return cfg, nil
}

func (spec WordFilterSpec) toFilter() (automaton.WordFilter, error) {
	wf := automaton.WordFilter{
		ExactLength:    spec.ExactLength,
		MinLength:      spec.MinLength,
		MaxLength:      spec.MaxLength,
		Label:          spec.Label,
		MustContain:    spec.MustContain,
		MinOccurrences: spec.MinOccurrences,
		MaxOccurrences: spec.MaxOccurrences,
	}
	switch spec.WordType {
	case "", string(automaton.CharAny):
		wf.WordType = automaton.CharAny
	case string(automaton.CharAlpha):
		wf.WordType = automaton.CharAlpha
	case string(automaton.CharDigit):
		wf.WordType = automaton.CharDigit
	case string(automaton.CharAlnum):
		wf.WordType = automaton.CharAlnum
	default:
		return automaton.WordFilter{}, fmt.Errorf("unknown word_type %q", spec.WordType)
	}
	return wf, nil
}

func (spec *NormalizerSpec) apply(opts *normalize.Options) {
	if spec.EnableUnicodeNorm != nil {
		opts.EnableUnicodeNorm = *spec.EnableUnicodeNorm
	}
	if spec.EnableURLDecode != nil {
		opts.EnableURLDecode = *spec.EnableURLDecode
	}
	if spec.EnableBase64 != nil {
		opts.EnableBase64 = *spec.EnableBase64
	}
	if spec.EnableSubstringBase64 != nil {
		opts.EnableSubstringBase64 = *spec.EnableSubstringBase64
	}
	if spec.EnableSeparatorNorm != nil {
		opts.EnableSeparatorNorm = *spec.EnableSeparatorNorm
	}
	if spec.CollapseWhitespace != nil {
		opts.CollapseWhitespace = *spec.CollapseWhitespace
	}
	if spec.Lowercase != nil {
		opts.Lowercase = *spec.Lowercase
	}
	if spec.MaxDecodeDepth != nil {
		opts.MaxDecodeDepth = *spec.MaxDecodeDepth
	}
	if spec.MinBase64SubstringLen != nil {
		opts.MinBase64SubstringLen = *spec.MinBase64SubstringLen
	}
	if spec.Base64EntropyThreshold != nil {
		opts.Base64EntropyThreshold = *spec.Base64EntropyThreshold
	}
	if spec.MaxBase64Substrings != nil {
		opts.MaxBase64Substrings = *spec.MaxBase64Substrings
	}
}

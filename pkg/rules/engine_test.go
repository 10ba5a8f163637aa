package rules

import (
	"strings"
	"testing"
)

func TestRunSingleRule(t *testing.T) {
	engine, err := NewEngine([]Rule{
		{ID: "us_phone", Pattern: `\d{3}-\d{3}-\d{4}`, EntityType: "PHONE", Confidence: 0.75},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	matches := engine.Run("call 555-123-4567 now")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}

	m := matches[0]
	if m.Text != "555-123-4567" {
		t.Errorf("Text = %q, want %q", m.Text, "555-123-4567")
	}
	if m.Start != 5 || m.End != 17 {
		t.Errorf("span = [%d,%d), want [5,17)", m.Start, m.End)
	}
	if m.RuleID != "us_phone" || m.EntityType != "PHONE" || m.Confidence != 0.75 {
		t.Errorf("metadata = %+v, want rule id/entity/confidence carried through", m)
	}
}

func TestMalformedPatternFailsConstruction(t *testing.T) {
	_, err := NewEngine([]Rule{{ID: "bad", Pattern: `([unclosed`}})
	if err == nil {
		t.Fatal("NewEngine accepted a malformed pattern")
	}
	if !strings.Contains(err.Error(), "bad") {
		t.Errorf("error %q should name the offending rule", err)
	}
}

func TestCaseSensitivity(t *testing.T) {
	engine, err := NewEngine([]Rule{
		{ID: "strict", Pattern: `AKIA[0-9A-Z]{16}`, CaseSensitive: true},
		{ID: "loose", Pattern: `secret`},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	matches := engine.Run("akiaABCDEFGHIJKLMNOP and SECRET stuff")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1: %+v", len(matches), matches)
	}
	if matches[0].RuleID != "loose" || matches[0].Text != "SECRET" {
		t.Errorf("match = %+v, want case-insensitive hit on %q", matches[0], "SECRET")
	}
}

func TestRuleDeclarationOrder(t *testing.T) {
	engine, err := NewEngine([]Rule{
		{ID: "second_word", Pattern: `beta`},
		{ID: "first_word", Pattern: `alpha`},
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	// "alpha" appears first in the text, but results group by rule order.
	matches := engine.Run("alpha then beta")
	if len(matches) != 2 {
		t.Fatalf("got %d matches, want 2", len(matches))
	}
	if matches[0].RuleID != "second_word" || matches[1].RuleID != "first_word" {
		t.Errorf("order = [%s %s], want declaration order", matches[0].RuleID, matches[1].RuleID)
	}
}

func TestEntityTypeDefaultsToUnknown(t *testing.T) {
	engine, err := NewEngine([]Rule{{ID: "x", Pattern: `hit`}})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	matches := engine.Run("one hit")
	if len(matches) != 1 || matches[0].EntityType != "UNKNOWN" {
		t.Errorf("matches = %+v, want entity type UNKNOWN", matches)
	}
	if matches[0].Confidence != 1.0 {
		t.Errorf("confidence = %v, want default 1.0", matches[0].Confidence)
	}
}

func TestCodePointOffsets(t *testing.T) {
	engine, err := NewEngine([]Rule{{ID: "phone", Pattern: `\d{3}-\d{3}-\d{4}`}})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	// Two multibyte runes precede the match; offsets count code points.
	matches := engine.Run("ほん 555-123-4567")
	if len(matches) != 1 {
		t.Fatalf("got %d matches, want 1", len(matches))
	}
	if matches[0].Start != 3 || matches[0].End != 15 {
		t.Errorf("span = [%d,%d), want [3,15)", matches[0].Start, matches[0].End)
	}
}

func TestNonOverlappingSemantics(t *testing.T) {
	engine, err := NewEngine([]Rule{{ID: "aa", Pattern: `aa`}})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}

	matches := engine.Run("aaaa")
	if len(matches) != 2 {
		t.Errorf("got %d matches, want 2 non-overlapping: %+v", len(matches), matches)
	}
}

func TestEmptyInputs(t *testing.T) {
	engine, err := NewEngine(nil)
	if err != nil {
		t.Fatalf("NewEngine(nil): %v", err)
	}
	if matches := engine.Run("anything"); len(matches) != 0 {
		t.Errorf("empty engine returned matches: %+v", matches)
	}

	engine, err = NewEngine([]Rule{{ID: "x", Pattern: `hit`}})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	if matches := engine.Run(""); len(matches) != 0 {
		t.Errorf("empty text returned matches: %+v", matches)
	}
}

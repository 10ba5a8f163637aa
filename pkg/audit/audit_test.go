package audit

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRecordAndLoadHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	events := []Event{
		{ScanID: "a", Source: "http", InputBytes: 10, MatchCount: 1},
		{ScanID: "b", Source: "cli", InputBytes: 20, RuleMatchCount: 2},
	}
	for _, ev := range events {
		if err := l.Record(ev); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	got, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	// Newest first.
	if got[0].ScanID != "b" || got[1].ScanID != "a" {
		t.Errorf("order = %q, %q; want b, a", got[0].ScanID, got[1].ScanID)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("zero timestamp not filled in")
	}
	if got[0].EventID == "" || got[0].EventID == got[1].EventID {
		t.Errorf("event ids not unique: %q, %q", got[0].EventID, got[1].EventID)
	}
}

func TestRecordKeepsExplicitTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := l.Record(Event{ScanID: "x", Timestamp: ts}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	l.Close()

	got, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if !got[0].Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got[0].Timestamp, ts)
	}
}

func TestOpenAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	for _, id := range []string{"first", "second"} {
		l, err := Open(path)
		if err != nil {
			t.Fatalf("Open: %v", err)
		}
		if err := l.Record(Event{ScanID: id}); err != nil {
			t.Fatalf("Record: %v", err)
		}
		l.Close()
	}

	got, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("events = %d, want 2", len(got))
	}
}

func TestLoadHistoryStopsAtTornWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	l, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l.Record(Event{ScanID: "ok"}); err != nil {
		t.Fatalf("Record: %v", err)
	}
	l.Close()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		t.Fatal(err)
	}
	f.WriteString(`{"scan_id": "torn`)
	f.Close()

	got, err := LoadHistory(path)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if len(got) != 1 || got[0].ScanID != "ok" {
		t.Errorf("events = %+v, want the one intact record", got)
	}
}

func TestLoadHistoryMissingFile(t *testing.T) {
	_, err := LoadHistory(filepath.Join(t.TempDir(), "nope.jsonl"))
	if err == nil || !strings.Contains(err.Error(), "nope.jsonl") {
		t.Errorf("err = %v, want open error naming the file", err)
	}
}

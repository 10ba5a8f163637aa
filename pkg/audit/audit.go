// Package audit appends one JSON line per scan to an append-only log file.
// Records carry match counts and metadata only, never the scanned text, so
// the log is safe to ship to central collection.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is a single audit record.
type Event struct {
	EventID            string    `json:"event_id"`
	Timestamp          time.Time `json:"timestamp"`
	ScanID             string    `json:"scan_id"`
	Source             string    `json:"source"`
	InputBytes         int       `json:"input_bytes"`
	MatchCount         int       `json:"match_count"`
	RuleMatchCount     int       `json:"rule_match_count"`
	NormalizationSteps []string  `json:"normalization_steps,omitempty"`
	LatencyMs          float64   `json:"latency_ms"`
}

// Logger writes events to a JSONL file. It is safe for concurrent use.
type Logger struct {
	mu  sync.Mutex
	f   *os.File
	enc *json.Encoder
}

// Open creates or appends to the log file at path. Permissions are
// owner-only since the log reveals scan traffic.
func Open(path string) (*Logger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	return &Logger{f: f, enc: json.NewEncoder(f)}, nil
}

// Record appends one event. A zero Timestamp and empty EventID are filled in.
func (l *Logger) Record(ev Event) error {
	if ev.EventID == "" {
		ev.EventID = uuid.NewString()
	}
	if ev.Timestamp.IsZero() {
		ev.Timestamp = time.Now().UTC()
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.enc.Encode(ev); err != nil {
		return fmt.Errorf("audit: write record: %w", err)
	}
	return nil
}

// Close flushes and closes the underlying file.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.f.Close()
}

// LoadHistory reads all events from a log file, newest first. Reading stops
// at the first undecodable record so a torn final write cannot poison replay.
func LoadHistory(path string) ([]Event, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("audit: open %s: %w", path, err)
	}
	defer f.Close()

	var events []Event
	dec := json.NewDecoder(f)
	for dec.More() {
		var ev Event
		if err := dec.Decode(&ev); err != nil {
			break
		}
		events = append(events, ev)
	}

	for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
		events[i], events[j] = events[j], events[i]
	}
	return events, nil
}

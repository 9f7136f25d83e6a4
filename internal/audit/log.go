// Package audit keeps an append-only JSON Lines trail of what SecretShields
// did: masks, restores and how exposures were resolved. Records carry
// pattern ids, counts and exposure ids only, never secret text.
package audit

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/secretshields/secretshields/internal/types"
)

// Action is what happened.
type Action string

const (
	ActionMasked         Action = "masked"
	ActionRestored       Action = "restored"
	ActionRestoreExpired Action = "restore_expired"
	ActionRotated        Action = "rotated"
	ActionDismissed      Action = "dismissed"
	ActionCleared        Action = "cleared"
)

// Record is one line of the trail.
type Record struct {
	Timestamp      time.Time      `json:"timestamp"`
	ID             string         `json:"id"`
	Action         Action         `json:"action"`
	Source         string         `json:"source,omitempty"`
	Secrets        int            `json:"secrets,omitempty"`
	Patterns       []string       `json:"patterns,omitempty"`
	SeverityCounts map[string]int `json:"severity_counts,omitempty"`
	ExposureIDs    []string       `json:"exposure_ids,omitempty"`
}

// FromDetections summarises dets for a record.
func FromDetections(action Action, source string, dets []types.Detection) Record {
	r := Record{Action: action, Source: source, Secrets: len(dets)}
	seen := map[string]bool{}
	for _, d := range dets {
		if r.SeverityCounts == nil {
			r.SeverityCounts = make(map[string]int)
		}
		r.SeverityCounts[string(d.Severity)]++
		if !seen[d.PatternID] {
			seen[d.PatternID] = true
			r.Patterns = append(r.Patterns, d.PatternID)
		}
	}
	sort.Strings(r.Patterns)
	return r
}

// Log appends records to a file.
type Log struct {
	path string
	mu   sync.Mutex
	now  func() time.Time
}

// DefaultPath is ~/.secretshields/audit.jsonl.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".secretshields", "audit.jsonl")
	}
	return filepath.Join(home, ".secretshields", "audit.jsonl")
}

func NewLog(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Path returns the file the log writes to.
func (a *Log) Path() string { return a.path }

// Record appends r, filling in its timestamp and id when unset.
func (a *Log) Record(r Record) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = a.now()
	}
	if r.ID == "" {
		r.ID = fmt.Sprintf("act_%d_%s", r.Timestamp.UnixMilli(), uuid.NewString()[:8])
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if err := os.MkdirAll(filepath.Dir(a.path), 0o700); err != nil {
		return fmt.Errorf("failed to create audit dir: %w", err)
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()
	if err := json.NewEncoder(f).Encode(r); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// LoadHistory returns every readable record, newest first. A missing file
// is an empty history; malformed lines are skipped.
func (a *Log) LoadHistory() ([]Record, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	f, err := os.Open(a.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Clear removes the trail.
func (a *Log) Clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if err := os.Remove(a.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to clear audit log: %w", err)
	}
	return nil
}

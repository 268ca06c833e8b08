package auction

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/kilianp07/haulage/core/model"
)

// Record is one resolved auction.
type Record struct {
	Timestamp time.Time     `json:"timestamp"`
	Task      model.Task    `json:"task"`
	Winner    int           `json:"winner"`
	Bids      map[int]int64 `json:"bids"`
	// Marginal is the agent's own cost estimate, when it bid.
	Marginal float64 `json:"marginal,omitempty"`
}

// Query filters history records. Zero values match everything.
type Query struct {
	Start  time.Time
	End    time.Time
	Winner *int
}

// HistoryStore appends auction records to a JSONL file.
type HistoryStore struct {
	path string
	mu   sync.Mutex
}

// NewHistoryStore creates the file if needed.
func NewHistoryStore(path string) (*HistoryStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &HistoryStore{path: path}, nil
}

// Append writes one record.
func (s *HistoryStore) Append(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	return json.NewEncoder(f).Encode(rec)
}

// Query returns the records matching q in file order. Malformed lines are
// skipped.
func (s *HistoryStore) Query(_ context.Context, q Query) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []Record
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && r.Timestamp.After(q.End) {
			continue
		}
		if q.Winner != nil && r.Winner != *q.Winner {
			continue
		}
		res = append(res, r)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *HistoryStore) Close() error { return nil }

package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
	"github.com/cbsthiago-dev/progbunker-application/core/schedule"
)

// JSONLHistory stores delivery records in a JSONL file.
type JSONLHistory struct {
	path string
	mu   sync.Mutex
}

func NewJSONLHistory(path string) (*JSONLHistory, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, err
	}
	if cerr := f.Close(); cerr != nil {
		return nil, cerr
	}
	return &JSONLHistory{path: path}, nil
}

func (s *JSONLHistory) Append(ctx context.Context, rec model.DeliveryRecord) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	enc := json.NewEncoder(f)
	return enc.Encode(rec)
}

func (s *JSONLHistory) Query(ctx context.Context, q schedule.HistoryQuery) ([]model.DeliveryRecord, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	var res []model.DeliveryRecord
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var r model.DeliveryRecord
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			continue
		}
		if matchHistory(r, q) {
			res = append(res, r)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

func (s *JSONLHistory) Close() error { return nil }

func matchHistory(r model.DeliveryRecord, q schedule.HistoryQuery) bool {
	if q.Ship != "" && r.Ship != q.Ship {
		return false
	}
	if q.BargeID != "" && r.BargeID != q.BargeID {
		return false
	}
	if !q.From.IsZero() && r.CompletedAt.Before(q.From) {
		return false
	}
	if !q.To.IsZero() && r.CompletedAt.After(q.To) {
		return false
	}
	return true
}

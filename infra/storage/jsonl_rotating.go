package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
	"github.com/cbsthiago-dev/progbunker-application/core/schedule"
)

// RotatingJSONLHistory stores delivery records in a JSONL file with
// automatic rotation.
type RotatingJSONLHistory struct {
	logger *lumberjack.Logger
	path   string
}

// NewRotatingJSONLHistory creates a store with rotation options in
// megabytes and days.
func NewRotatingJSONLHistory(path string, maxSizeMB, maxBackups, maxAgeDays int) (*RotatingJSONLHistory, error) {
	lj := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    maxSizeMB,
		MaxBackups: maxBackups,
		MaxAge:     maxAgeDays,
		Compress:   false,
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	return &RotatingJSONLHistory{logger: lj, path: path}, nil
}

// Append writes the record and triggers rotation if needed.
func (s *RotatingJSONLHistory) Append(ctx context.Context, rec model.DeliveryRecord) error {
	_ = ctx
	enc := json.NewEncoder(s.logger)
	return enc.Encode(rec)
}

// Query reads all history files including rotated ones.
func (s *RotatingJSONLHistory) Query(ctx context.Context, q schedule.HistoryQuery) ([]model.DeliveryRecord, error) {
	_ = ctx
	files, err := filepath.Glob(s.path + "*")
	if err != nil {
		return nil, err
	}
	var res []model.DeliveryRecord
	for _, f := range files {
		file, err := os.Open(f)
		if err != nil {
			continue
		}
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			var r model.DeliveryRecord
			if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
				continue
			}
			if matchHistory(r, q) {
				res = append(res, r)
			}
		}
		_ = file.Close()
	}
	return res, nil
}

// Close closes the underlying writer.
func (s *RotatingJSONLHistory) Close() error {
	return s.logger.Close()
}

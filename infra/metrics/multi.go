package metrics

import (
	"errors"

	coremetrics "github.com/cbsthiago-dev/progbunker-application/core/metrics"
)

// MultiSink fans records out to several sinks, joining their errors.
type MultiSink struct {
	sinks []coremetrics.Sink
}

// NewMultiSink combines the given sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{sinks: sinks}
}

func (m *MultiSink) RecordPlan(rec coremetrics.PlanRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordPlan(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m *MultiSink) RecordCommit(rec coremetrics.CommitRecord) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.RecordCommit(rec); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

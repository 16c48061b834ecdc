package metrics

import "time"

// PlanRecord captures the outcome of one planning run.
type PlanRecord struct {
	RunID       string
	Deliveries  int
	Recharges   int
	Unscheduled int
	Elapsed     time.Duration
	PlannedAt   time.Time
}

// CommitRecord captures one applied schedule.
type CommitRecord struct {
	RunID       string
	Events      int
	CommittedAt time.Time
}

// Sink records scheduling outcomes for observability purposes.
type Sink interface {
	RecordPlan(rec PlanRecord) error
	RecordCommit(rec CommitRecord) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordPlan(PlanRecord) error     { return nil }
func (NopSink) RecordCommit(CommitRecord) error { return nil }

// Config defines the metrics sink settings.
type Config struct {
	PrometheusEnabled bool   `json:"prometheus_enabled"`
	PrometheusPort    string `json:"prometheus_port"`
	InfluxEnabled     bool   `json:"influx_enabled"`
	InfluxURL         string `json:"influx_url"`
	InfluxToken       string `json:"influx_token"`
	InfluxOrg         string `json:"influx_org"`
	InfluxBucket      string `json:"influx_bucket"`
}

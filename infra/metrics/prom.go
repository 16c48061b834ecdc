package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	coremetrics "github.com/cbsthiago-dev/progbunker-application/core/metrics"
)

// PromSink records scheduling outcomes as Prometheus metrics.
type PromSink struct {
	events      *prometheus.CounterVec
	unscheduled prometheus.Counter
	duration    prometheus.Histogram
	commits     prometheus.Counter
}

// NewPromSink registers the scheduling metrics on the provided
// registerer. If reg is nil the default registerer is used; collectors
// already registered are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bunker_schedule_events_total",
		Help: "Total number of scheduled events by kind",
	}, []string{"kind"})
	unscheduled := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bunker_unscheduled_requests_total",
		Help: "Requests left unscheduled by planning runs",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "bunker_plan_duration_seconds",
		Help:    "Wall time of planning runs",
		Buckets: prometheus.DefBuckets,
	})
	commits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bunker_schedule_commits_total",
		Help: "Schedules applied to the fleet state",
	})

	for _, c := range []prometheus.Collector{events, unscheduled, duration, commits} {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch existing := are.ExistingCollector.(type) {
			case *prometheus.CounterVec:
				events = existing
			}
		}
	}
	return &PromSink{events: events, unscheduled: unscheduled, duration: duration, commits: commits}, nil
}

// RecordPlan increments the planning counters.
func (s *PromSink) RecordPlan(rec coremetrics.PlanRecord) error {
	s.events.WithLabelValues("delivery").Add(float64(rec.Deliveries))
	s.events.WithLabelValues("recharge").Add(float64(rec.Recharges))
	s.unscheduled.Add(float64(rec.Unscheduled))
	s.duration.Observe(rec.Elapsed.Seconds())
	return nil
}

// RecordCommit increments the commit counter.
func (s *PromSink) RecordCommit(coremetrics.CommitRecord) error {
	s.commits.Inc()
	return nil
}

// StartPromServer exposes /metrics until the context is cancelled.
func StartPromServer(ctx context.Context, port string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

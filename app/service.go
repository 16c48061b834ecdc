package app

import (
	"context"
	"fmt"
	"time"

	"github.com/cbsthiago-dev/progbunker-application/config"
	"github.com/cbsthiago-dev/progbunker-application/core/dispatch"
	coremetrics "github.com/cbsthiago-dev/progbunker-application/core/metrics"
	"github.com/cbsthiago-dev/progbunker-application/core/model"
	corenotify "github.com/cbsthiago-dev/progbunker-application/core/notify"
	"github.com/cbsthiago-dev/progbunker-application/core/report"
	"github.com/cbsthiago-dev/progbunker-application/core/schedule"
	"github.com/cbsthiago-dev/progbunker-application/infra/logger"
	"github.com/cbsthiago-dev/progbunker-application/infra/metrics"
	"github.com/cbsthiago-dev/progbunker-application/infra/notify"
	"github.com/cbsthiago-dev/progbunker-application/infra/storage"
	"github.com/cbsthiago-dev/progbunker-application/internal/eventbus"
)

// Service wires the planning engine to its persistence, notification and
// observability backends.
type Service struct {
	engine   *dispatch.Engine
	emitter  *schedule.Emitter
	states   schedule.StateStore
	history  schedule.HistoryStore
	notifier corenotify.Notifier
	sink     coremetrics.Sink
	bus      eventbus.EventBus
	log      logger.Logger

	promEnabled bool
	promPort    string
}

// PlanOutcome bundles everything one planning run produces.
type PlanOutcome struct {
	Result  dispatch.Result
	Events  []model.ScheduleEvent
	Summary report.Summary
	Elapsed time.Duration
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	var sinks []coremetrics.Sink
	if cfg.Metrics.PrometheusEnabled {
		sink, err := metrics.NewPromSink(nil)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sinks = append(sinks, metrics.NewInfluxSinkWithFallback(cfg.Metrics))
	}
	var sink coremetrics.Sink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	states, history, err := openStores(cfg.Storage)
	if err != nil {
		return nil, err
	}

	var notifier corenotify.Notifier = corenotify.Nop{}
	if cfg.MQTT.Enabled {
		notifier, err = notify.NewPahoNotifier(cfg.MQTT)
		if err != nil {
			return nil, fmt.Errorf("mqtt notifier: %w", err)
		}
	}

	return &Service{
		engine:      dispatch.NewEngine(logger.New("engine")),
		emitter:     schedule.NewEmitter(logger.New("emitter")),
		states:      states,
		history:     history,
		notifier:    notifier,
		sink:        sink,
		bus:         eventbus.New(),
		log:         logg,
		promEnabled: cfg.Metrics.PrometheusEnabled,
		promPort:    cfg.Metrics.PrometheusPort,
	}, nil
}

func openStores(cfg config.StorageConfig) (schedule.StateStore, schedule.HistoryStore, error) {
	switch cfg.Backend {
	case "jsonl":
		states, err := storage.NewFileStateStore(cfg.StatePath)
		if err != nil {
			return nil, nil, fmt.Errorf("state store: %w", err)
		}
		history, err := storage.NewJSONLHistory(cfg.HistoryPath)
		if err != nil {
			return nil, nil, fmt.Errorf("history store: %w", err)
		}
		return states, history, nil
	case "jsonl_rotating":
		states, err := storage.NewFileStateStore(cfg.StatePath)
		if err != nil {
			return nil, nil, fmt.Errorf("state store: %w", err)
		}
		history, err := storage.NewRotatingJSONLHistory(cfg.HistoryPath, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
		if err != nil {
			return nil, nil, fmt.Errorf("history store: %w", err)
		}
		return states, history, nil
	case "postgres":
		store, err := storage.OpenPostgres(cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("postgres store: %w", err)
		}
		return store, store, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %s", cfg.Backend)
	}
}

// Plan computes and finalizes a schedule for the snapshot.
func (s *Service) Plan(in dispatch.Input) (*PlanOutcome, error) {
	started := time.Now()
	res, err := s.engine.Plan(in)
	if err != nil {
		return nil, err
	}
	events, err := s.emitter.Finalize(res, in)
	if err != nil {
		return nil, err
	}
	elapsed := time.Since(started)

	deliveries, recharges := 0, 0
	for _, ev := range events {
		switch ev.Kind {
		case model.EventDelivery:
			deliveries++
		case model.EventRecharge:
			recharges++
		}
	}
	if err := s.sink.RecordPlan(coremetrics.PlanRecord{
		RunID:       res.RunID,
		Deliveries:  deliveries,
		Recharges:   recharges,
		Unscheduled: len(res.Unscheduled),
		Elapsed:     elapsed,
		PlannedAt:   started,
	}); err != nil {
		s.log.Warnf("record plan metrics: %v", err)
	}

	return &PlanOutcome{
		Result:  res,
		Events:  events,
		Summary: report.Build(events, res.Unscheduled),
		Elapsed: elapsed,
	}, nil
}

// Commit applies a finalized schedule: the new fleet states are saved,
// the delivery records appended, the crews notified and the commit
// published on the bus. A schedule must be committed at most once.
func (s *Service) Commit(ctx context.Context, runID string, in dispatch.Input, events []model.ScheduleEvent) error {
	next, records, err := schedule.Apply(in.Fleet, in.States, events)
	if err != nil {
		return err
	}
	if err := s.states.Save(ctx, next); err != nil {
		return fmt.Errorf("save states: %w", err)
	}
	for _, rec := range records {
		if err := s.history.Append(ctx, rec); err != nil {
			return fmt.Errorf("append history: %w", err)
		}
	}
	s.bus.Publish(schedule.CommitEvent{RunID: runID, Events: events, Records: records})
	if err := s.notifier.NotifyCommit(ctx, runID, events); err != nil {
		return err
	}
	if err := s.sink.RecordCommit(coremetrics.CommitRecord{
		RunID:       runID,
		Events:      len(events),
		CommittedAt: time.Now(),
	}); err != nil {
		s.log.Warnf("record commit metrics: %v", err)
	}
	s.log.Infof("schedule %s committed: %d events, %d records", runID, len(events), len(records))
	return nil
}

// LoadStates reads the persisted fleet states.
func (s *Service) LoadStates(ctx context.Context) ([]model.BargeState, error) {
	return s.states.Load(ctx)
}

// History queries the delivery history.
func (s *Service) History(ctx context.Context, q schedule.HistoryQuery) ([]model.DeliveryRecord, error) {
	return s.history.Query(ctx, q)
}

// Subscribe returns a channel receiving committed schedules.
func (s *Service) Subscribe() <-chan schedule.CommitEvent {
	return s.bus.Subscribe()
}

// Run blocks until the context is cancelled, serving the metrics
// endpoint when enabled.
func (s *Service) Run(ctx context.Context) error {
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	<-ctx.Done()
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.notifier.Close()
	s.bus.Close()
	return s.history.Close()
}

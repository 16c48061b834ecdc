package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/cbsthiago-dev/progbunker-application/core/ledger"
	"github.com/cbsthiago-dev/progbunker-application/core/logger"
	"github.com/cbsthiago-dev/progbunker-application/core/model"
	"github.com/cbsthiago-dev/progbunker-application/core/priority"
	"github.com/cbsthiago-dev/progbunker-application/core/servicetime"
)

// Result is the outcome of one planning run. Events are globally ordered
// by scheduled start; Unscheduled lists the ships left unserved.
type Result struct {
	RunID       string
	Start       time.Time
	Events      []model.ScheduleEvent
	Unscheduled []string
}

// Engine computes schedules from immutable input snapshots. Engines are
// stateless between runs; independent what-if runs may share one Engine.
type Engine struct {
	log logger.Logger
}

// NewEngine creates an Engine. A nil logger disables logging.
func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{log: log}
}

// timeline is the engine's working view of one barge.
type timeline struct {
	barge    model.Barge
	location model.Location
	freeAt   time.Time
}

// Plan validates the snapshot and constructs a schedule. Infeasible
// requests are not errors: they are omitted from the events and listed
// in Result.Unscheduled.
func (e *Engine) Plan(in Input) (Result, error) {
	if err := in.Validate(); err != nil {
		return Result{}, err
	}
	res := Result{RunID: uuid.NewString(), Start: in.Start}
	pending := in.confirmed()
	if len(in.Fleet) == 0 || len(pending) == 0 {
		e.log.Infof("nothing to plan: %d barges, %d confirmed requests", len(in.Fleet), len(pending))
		return res, nil
	}

	locs := in.locationIndex()
	led, err := ledger.New(in.Fleet, in.States)
	if err != nil {
		return Result{}, &ValidationError{Err: err}
	}

	states := make(map[string]model.BargeState, len(in.States))
	for _, st := range in.States {
		states[st.BargeID] = st
	}
	timelines := make([]*timeline, 0, len(in.Fleet))
	for _, b := range in.Fleet {
		st := states[b.ID]
		timelines = append(timelines, &timeline{
			barge:    b,
			location: locs[st.LocationID],
			freeAt:   servicetime.InitialRelease(b, st, in.Start),
		})
	}

	rules := in.Rules
	if len(rules) == 0 {
		rules = priority.Default()
	}

	// shipFree tracks, per ship, when its latest scheduled delivery
	// fully ends. A later delivery for the same ship may not start
	// before that instant.
	shipFree := make(map[string]time.Time)

	for len(pending) > 0 {
		order := rules.Rank(pending)
		r := pending[order[0]]
		pending = append(pending[:order[0]], pending[order[0]+1:]...)

		placed, err := e.assign(r, timelines, locs, led, shipFree, &res.Events)
		if err != nil {
			return Result{}, err
		}
		if !placed {
			e.log.Infof("request %s: no feasible barge within window, left unscheduled", r.Ship)
			res.Unscheduled = append(res.Unscheduled, r.Ship)
		}
		led.FlagMandatoryRecharges(minPendingQuantities(pending))
	}

	model.SortEvents(res.Events)
	e.log.Infof("planning run %s complete: %d events, %d unscheduled", res.RunID, len(res.Events), len(res.Unscheduled))
	return res, nil
}

// assign tries a hybrid single-barge visit first, then the split
// fallback for multi-product requests. All-or-nothing: on failure no
// tentative state changes survive.
func (e *Engine) assign(
	r model.RefuelingRequest,
	timelines []*timeline,
	locs map[string]model.Location,
	led *ledger.Ledger,
	shipFree map[string]time.Time,
	events *[]model.ScheduleEvent,
) (bool, error) {
	notBefore := shipFree[r.Ship]

	best, err := e.bestVisit(timelines, r.Demands, r, locs, led, notBefore, nil)
	if err != nil {
		return false, err
	}
	if best != nil {
		if err := e.apply(best, led, shipFree, events); err != nil {
			return false, err
		}
		return true, nil
	}
	if len(r.Demands) < 2 {
		return false, nil
	}

	// Split fallback: products in declaration order, one barge each.
	// The second delivery may not start before the first has ended.
	first, err := e.bestVisit(timelines, r.Demands[:1], r, locs, led, notBefore, nil)
	if err != nil || first == nil {
		return false, err
	}
	second, err := e.bestVisit(timelines, r.Demands[1:], r, locs, led, first.finish, first.tl)
	if err != nil || second == nil {
		return false, err
	}
	if err := e.apply(first, led, shipFree, events); err != nil {
		return false, err
	}
	if err := e.apply(second, led, shipFree, events); err != nil {
		return false, err
	}
	return true, nil
}

// apply commits a planned visit: ledger reservations and refills, the
// barge's availability and position, the ship's busy horizon.
func (e *Engine) apply(
	p *visitPlan,
	led *ledger.Ledger,
	shipFree map[string]time.Time,
	events *[]model.ScheduleEvent,
) error {
	for _, ev := range p.events {
		switch ev.Kind {
		case model.EventRecharge:
			if _, err := led.Refill(ev.BargeID, ev.Product); err != nil {
				return err
			}
		case model.EventDelivery:
			if err := led.Reserve(ev.BargeID, ev.Product, ev.Quantity); err != nil {
				return err
			}
		}
		*events = append(*events, ev)
	}
	p.tl.freeAt = p.finish
	p.tl.location = p.dest
	if p.ship != "" && p.finish.After(shipFree[p.ship]) {
		shipFree[p.ship] = p.finish
	}
	e.log.Debugw("visit placed", map[string]any{
		"barge":  p.tl.barge.ID,
		"ship":   p.ship,
		"start":  p.firstStart,
		"finish": p.finish,
		"events": len(p.events),
		"idle":   p.idle.String(),
	})
	return nil
}

// minPendingQuantities returns, per product, the smallest quantity any
// still-unserved request asks for. It drives the mandatory-recharge rule.
func minPendingQuantities(pending []model.RefuelingRequest) map[string]float64 {
	m := make(map[string]float64)
	for _, r := range pending {
		for _, d := range r.Demands {
			if cur, ok := m[d.Product]; !ok || d.Quantity < cur {
				m[d.Product] = d.Quantity
			}
		}
	}
	return m
}

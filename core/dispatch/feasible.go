package dispatch

import (
	"time"

	"github.com/google/uuid"

	"github.com/cbsthiago-dev/progbunker-application/core/geo"
	"github.com/cbsthiago-dev/progbunker-application/core/ledger"
	"github.com/cbsthiago-dev/progbunker-application/core/model"
	"github.com/cbsthiago-dev/progbunker-application/core/servicetime"
)

// visitPlan is a fully costed candidate assignment of one or two product
// lines to a single barge, including any recharge visits it requires.
// Nothing is committed until apply runs.
type visitPlan struct {
	tl         *timeline
	ship       string
	dest       model.Location
	events     []model.ScheduleEvent
	firstStart time.Time     // start of the first delivery
	idle       time.Duration // wait between arrival and first delivery
	finish     time.Time     // end of the last delivery
}

// bestVisit evaluates every barge (except the excluded one) for the given
// product lines and returns the feasible plan with the earliest delivery
// start. Ties are broken by the smallest idle time, then by fleet roster
// order.
func (e *Engine) bestVisit(
	timelines []*timeline,
	demands []model.ProductDemand,
	r model.RefuelingRequest,
	locs map[string]model.Location,
	led *ledger.Ledger,
	notBefore time.Time,
	exclude *timeline,
) (*visitPlan, error) {
	var best *visitPlan
	for _, tl := range timelines {
		if tl == exclude {
			continue
		}
		p, err := e.planVisit(tl, demands, r, locs, led, notBefore)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		if best == nil ||
			p.firstStart.Before(best.firstStart) ||
			(p.firstStart.Equal(best.firstStart) && p.idle < best.idle) {
			best = p
		}
	}
	return best, nil
}

// planVisit checks whether the barge can serve the product lines at the
// request's location within its window and, if so, costs the full visit.
// Capacity, window and ship-overlap violations short-circuit before any
// travel time is computed. A nil plan means infeasible.
func (e *Engine) planVisit(
	tl *timeline,
	demands []model.ProductDemand,
	r model.RefuelingRequest,
	locs map[string]model.Location,
	led *ledger.Ledger,
	notBefore time.Time,
) (*visitPlan, error) {
	products := make([]string, len(demands))
	for i, d := range demands {
		products[i] = d.Product
	}
	if !tl.barge.Carries(products...) {
		return nil, nil
	}
	var refills []string
	for _, d := range demands {
		if led.CanDeliver(tl.barge.ID, d.Product, d.Quantity) {
			continue
		}
		if !led.CanDeliverAfterRecharge(tl.barge.ID, d.Product, d.Quantity) {
			return nil, nil
		}
		refills = append(refills, d.Product)
	}
	if tl.freeAt.After(r.WindowEnd) || notBefore.After(r.WindowEnd) {
		return nil, nil
	}

	t := tl.freeAt
	loc := tl.location
	var events []model.ScheduleEvent
	if len(refills) > 0 {
		terminal := locs[model.TerminalID]
		tt, err := geo.TravelTime(loc, terminal, tl.barge.SpeedKnots)
		if err != nil {
			return nil, err
		}
		t = t.Add(tt)
		loc = terminal
		for _, p := range refills {
			capacity, _ := led.Capacity(tl.barge.ID, p)
			dur := servicetime.RechargeDuration(capacity, led.Remaining(tl.barge.ID, p))
			events = append(events, model.ScheduleEvent{
				ID:         uuid.NewString(),
				Kind:       model.EventRecharge,
				BargeID:    tl.barge.ID,
				Product:    p,
				LocationID: model.TerminalID,
				Start:      t,
				Duration:   dur,
			})
			t = t.Add(dur)
		}
	}

	dest := locs[r.LocationID]
	tt, err := geo.TravelTime(loc, dest, tl.barge.SpeedKnots)
	if err != nil {
		return nil, err
	}
	arrival := t.Add(tt)
	start := arrival
	if start.Before(r.WindowStart) {
		start = r.WindowStart
	}
	if start.Before(notBefore) {
		start = notBefore
	}
	if start.After(r.WindowEnd) {
		return nil, nil
	}

	plan := &visitPlan{
		tl:         tl,
		ship:       r.Ship,
		dest:       dest,
		firstStart: start,
		idle:       start.Sub(arrival),
	}
	// A barge pumps one product at a time: sequential deliveries, each
	// with its own buffers, each starting inside the window.
	for i, d := range demands {
		if i > 0 && start.After(r.WindowEnd) {
			return nil, nil
		}
		dur := servicetime.DeliveryDuration(d.Quantity)
		plan.events = append(plan.events, model.ScheduleEvent{
			ID:         uuid.NewString(),
			Kind:       model.EventDelivery,
			Ship:       r.Ship,
			BargeID:    tl.barge.ID,
			Product:    d.Product,
			Quantity:   d.Quantity,
			LocationID: r.LocationID,
			Start:      start,
			Duration:   dur,
		})
		start = start.Add(dur)
	}
	plan.finish = start
	plan.events = append(events, plan.events...)
	return plan, nil
}

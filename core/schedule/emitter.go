// Package schedule finalizes, checks and applies computed schedules.
// The engine decides events; this package orders them, proves the
// invariants hold, and turns an accepted schedule into new barge states
// plus immutable history records.
package schedule

import (
	"fmt"
	"sort"

	"github.com/cbsthiago-dev/progbunker-application/core/dispatch"
	"github.com/cbsthiago-dev/progbunker-application/core/geo"
	"github.com/cbsthiago-dev/progbunker-application/core/logger"
	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

// Emitter validates and serializes engine results for the caller.
type Emitter struct {
	log logger.Logger
}

// NewEmitter creates an Emitter. A nil logger disables logging.
func NewEmitter(log logger.Logger) *Emitter {
	if log == nil {
		log = logger.Nop{}
	}
	return &Emitter{log: log}
}

// Finalize orders the result's events by scheduled start (stable, so
// ties keep engine emission order) and verifies every schedule
// invariant against the input snapshot. A violation means an engine bug
// and fails the run.
func (em *Emitter) Finalize(res dispatch.Result, in dispatch.Input) ([]model.ScheduleEvent, error) {
	events := make([]model.ScheduleEvent, len(res.Events))
	copy(events, res.Events)
	model.SortEvents(events)
	if err := Validate(events, in); err != nil {
		return nil, fmt.Errorf("schedule %s failed validation: %w", res.RunID, err)
	}
	em.log.Infof("schedule %s finalized: %d events", res.RunID, len(events))
	return events, nil
}

// Validate checks the invariants of a sorted event sequence:
// per-barge non-overlap including travel, per-ship delivery exclusivity,
// ledger bounds, and window containment.
func Validate(events []model.ScheduleEvent, in dispatch.Input) error {
	locs := make(map[string]model.Location, len(in.Locations))
	for _, l := range in.Locations {
		locs[l.ID] = l
	}
	barges := make(map[string]model.Barge, len(in.Fleet))
	for _, b := range in.Fleet {
		barges[b.ID] = b
	}

	if err := validateBargeTimelines(events, barges, locs); err != nil {
		return err
	}
	if err := validateShipExclusivity(events); err != nil {
		return err
	}
	if err := validateLedgerBounds(events, barges, in.States); err != nil {
		return err
	}
	return validateWindows(events, in.Requests)
}

func validateBargeTimelines(events []model.ScheduleEvent, barges map[string]model.Barge, locs map[string]model.Location) error {
	last := make(map[string]model.ScheduleEvent)
	for _, ev := range events {
		b, ok := barges[ev.BargeID]
		if !ok {
			return fmt.Errorf("event %s references unknown barge %s", ev.ID, ev.BargeID)
		}
		loc, ok := locs[ev.LocationID]
		if !ok {
			return fmt.Errorf("event %s references unknown location %s", ev.ID, ev.LocationID)
		}
		if prev, ok := last[ev.BargeID]; ok {
			travel, err := geo.TravelTime(locs[prev.LocationID], loc, b.SpeedKnots)
			if err != nil {
				return err
			}
			if ev.Start.Before(prev.End().Add(travel)) {
				return fmt.Errorf("barge %s: event at %v starts before %v + travel %v",
					ev.BargeID, ev.Start, prev.End(), travel)
			}
		}
		last[ev.BargeID] = ev
	}
	return nil
}

func validateShipExclusivity(events []model.ScheduleEvent) error {
	byShip := make(map[string][]model.ScheduleEvent)
	for _, ev := range events {
		if ev.Kind == model.EventDelivery {
			byShip[ev.Ship] = append(byShip[ev.Ship], ev)
		}
	}
	for ship, dels := range byShip {
		sort.SliceStable(dels, func(i, j int) bool { return dels[i].Start.Before(dels[j].Start) })
		for i := 1; i < len(dels); i++ {
			if dels[i].Start.Before(dels[i-1].End()) {
				return fmt.Errorf("ship %s double-booked at %v", ship, dels[i].Start)
			}
		}
	}
	return nil
}

func validateLedgerBounds(events []model.ScheduleEvent, barges map[string]model.Barge, states []model.BargeState) error {
	volumes := make(map[string]map[string]float64, len(states))
	for _, st := range states {
		cp := make(map[string]float64, len(st.Volumes))
		for p, v := range st.Volumes {
			cp[p] = v
		}
		volumes[st.BargeID] = cp
	}
	for _, ev := range events {
		b := barges[ev.BargeID]
		tank, ok := b.Tank(ev.Product)
		if !ok {
			return fmt.Errorf("barge %s delivers product %s it does not carry", ev.BargeID, ev.Product)
		}
		vols := volumes[ev.BargeID]
		if vols == nil {
			vols = make(map[string]float64)
			volumes[ev.BargeID] = vols
		}
		switch ev.Kind {
		case model.EventRecharge:
			vols[ev.Product] = tank.Capacity
		case model.EventDelivery:
			vols[ev.Product] -= ev.Quantity
			if vols[ev.Product] < 0 {
				return fmt.Errorf("barge %s: %s volume negative after delivery to %s", ev.BargeID, ev.Product, ev.Ship)
			}
		}
		if vols[ev.Product] > tank.Capacity {
			return fmt.Errorf("barge %s: %s volume exceeds capacity %.1f", ev.BargeID, ev.Product, tank.Capacity)
		}
	}
	return nil
}

func validateWindows(events []model.ScheduleEvent, requests []model.RefuelingRequest) error {
	for _, ev := range events {
		if ev.Kind != model.EventDelivery {
			continue
		}
		matched := false
		for _, r := range requests {
			if !r.Confirmed || r.Ship != ev.Ship || r.LocationID != ev.LocationID {
				continue
			}
			for _, d := range r.Demands {
				if d.Product != ev.Product || d.Quantity != ev.Quantity {
					continue
				}
				if !ev.Start.Before(r.WindowStart) && !ev.Start.After(r.WindowEnd) {
					matched = true
				}
			}
		}
		if !matched {
			return fmt.Errorf("delivery to %s at %v has no matching request window", ev.Ship, ev.Start)
		}
	}
	return nil
}

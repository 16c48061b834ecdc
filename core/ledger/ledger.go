// Package ledger tracks each barge's remaining per-product volume while
// a schedule is being constructed. The ledger is a private working copy;
// the caller-owned BargeState is only touched by the commit step.
package ledger

import (
	"fmt"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

type entry struct {
	capacity float64
	volume   float64
	recharge bool // barred from deliveries until a terminal visit
}

// Ledger holds tentative volumes and mandatory-recharge flags per barge
// and product.
type Ledger struct {
	entries map[string]map[string]*entry
}

// New builds a ledger from the fleet definitions and current states.
// Products without a tracked volume start empty.
func New(fleet []model.Barge, states []model.BargeState) (*Ledger, error) {
	byBarge := make(map[string]model.BargeState, len(states))
	for _, st := range states {
		byBarge[st.BargeID] = st
	}
	l := &Ledger{entries: make(map[string]map[string]*entry, len(fleet))}
	for _, b := range fleet {
		st, ok := byBarge[b.ID]
		if !ok {
			return nil, fmt.Errorf("no state for barge %s", b.ID)
		}
		tanks := make(map[string]*entry, len(b.Tanks))
		for _, t := range b.Tanks {
			v := st.Volumes[t.Product]
			if v < 0 || v > t.Capacity {
				return nil, fmt.Errorf("barge %s: volume %.1f for %s outside [0, %.1f]", b.ID, v, t.Product, t.Capacity)
			}
			tanks[t.Product] = &entry{capacity: t.Capacity, volume: v}
		}
		l.entries[b.ID] = tanks
	}
	return l, nil
}

// Remaining returns the tracked volume for the barge and product, zero if
// the barge has no such tank.
func (l *Ledger) Remaining(bargeID, product string) float64 {
	if e := l.lookup(bargeID, product); e != nil {
		return e.volume
	}
	return 0
}

// Capacity returns the tank capacity for the barge and product.
func (l *Ledger) Capacity(bargeID, product string) (float64, bool) {
	if e := l.lookup(bargeID, product); e != nil {
		return e.capacity, true
	}
	return 0, false
}

// CanDeliver reports whether the barge holds enough of the product right
// now, with no recharge bar raised.
func (l *Ledger) CanDeliver(bargeID, product string, qty float64) bool {
	e := l.lookup(bargeID, product)
	return e != nil && !e.recharge && e.volume >= qty
}

// CanDeliverAfterRecharge reports whether a full tank would cover the
// quantity, i.e. whether inserting a terminal visit makes the delivery
// possible at all.
func (l *Ledger) CanDeliverAfterRecharge(bargeID, product string, qty float64) bool {
	e := l.lookup(bargeID, product)
	return e != nil && e.capacity >= qty
}

// NeedsRecharge reports whether the barge is barred from further
// deliveries of the product until it visits the terminal.
func (l *Ledger) NeedsRecharge(bargeID, product string) bool {
	e := l.lookup(bargeID, product)
	return e != nil && e.recharge
}

// Reserve decrements the tracked volume for a tentatively committed
// delivery.
func (l *Ledger) Reserve(bargeID, product string, qty float64) error {
	e := l.lookup(bargeID, product)
	if e == nil {
		return fmt.Errorf("barge %s carries no %s", bargeID, product)
	}
	if qty > e.volume {
		return fmt.Errorf("barge %s: reserving %.1f %s exceeds remaining %.1f", bargeID, qty, product, e.volume)
	}
	e.volume -= qty
	return nil
}

// Refill tops the tank to capacity after a recharge visit and lifts the
// recharge bar. It returns the volume before the refill, which decides
// the recharge duration.
func (l *Ledger) Refill(bargeID, product string) (float64, error) {
	e := l.lookup(bargeID, product)
	if e == nil {
		return 0, fmt.Errorf("barge %s carries no %s", bargeID, product)
	}
	before := e.volume
	e.volume = e.capacity
	e.recharge = false
	return before, nil
}

// FlagMandatoryRecharges re-evaluates the mandatory-recharge rule: a
// barge whose remaining volume for a product drops below the smallest
// still-pending requested quantity for that product is barred from
// further deliveries of it until it recharges. Products absent from
// minPending clear nothing; existing bars stay until a refill.
func (l *Ledger) FlagMandatoryRecharges(minPending map[string]float64) {
	for _, tanks := range l.entries {
		for product, e := range tanks {
			min, ok := minPending[product]
			if ok && e.volume < min {
				e.recharge = true
			}
		}
	}
}

func (l *Ledger) lookup(bargeID, product string) *entry {
	if tanks, ok := l.entries[bargeID]; ok {
		return tanks[product]
	}
	return nil
}

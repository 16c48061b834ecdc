package dispatch

import (
	"time"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
	"github.com/cbsthiago-dev/progbunker-application/core/priority"
)

// Input is the immutable snapshot one planning run consumes. The engine
// never mutates it; tentative state lives in private working copies.
type Input struct {
	Locations []model.Location
	Fleet     []model.Barge
	States    []model.BargeState
	// Products is the optional product catalog. When empty it defaults
	// to the union of fleet tank products and requested products.
	Products []string
	Requests []model.RefuelingRequest
	Rules    priority.RuleSet
	Start    time.Time
}

// Validate applies the fail-fast input checks. Any failure is wrapped in
// a ValidationError and surfaced before planning begins.
func (in Input) Validate() error {
	if in.Start.IsZero() {
		return invalidf("simulation start instant is required")
	}
	if len(in.Locations) == 0 {
		return invalidf("at least one location is required")
	}
	locs := make(map[string]model.Location, len(in.Locations))
	for _, l := range in.Locations {
		if err := l.Validate(); err != nil {
			return &ValidationError{Err: err}
		}
		if _, dup := locs[l.ID]; dup {
			return invalidf("duplicate location %s", l.ID)
		}
		locs[l.ID] = l
	}
	if _, ok := locs[model.TerminalID]; !ok {
		return invalidf("reserved location %s is missing", model.TerminalID)
	}

	catalog := make(map[string]bool, len(in.Products))
	for _, p := range in.Products {
		catalog[p] = true
	}

	barges := make(map[string]model.Barge, len(in.Fleet))
	for _, b := range in.Fleet {
		if err := b.Validate(); err != nil {
			return &ValidationError{Err: err}
		}
		if _, dup := barges[b.ID]; dup {
			return invalidf("duplicate barge %s", b.ID)
		}
		barges[b.ID] = b
		for _, t := range b.Tanks {
			if len(catalog) > 0 && !catalog[t.Product] {
				return invalidf("barge %s: unknown product %s", b.ID, t.Product)
			}
		}
	}

	seen := make(map[string]bool, len(in.States))
	for _, st := range in.States {
		b, ok := barges[st.BargeID]
		if !ok {
			return invalidf("state references unknown barge %s", st.BargeID)
		}
		if seen[st.BargeID] {
			return invalidf("duplicate state for barge %s", st.BargeID)
		}
		seen[st.BargeID] = true
		if err := st.Validate(b); err != nil {
			return &ValidationError{Err: err}
		}
		if _, ok := locs[st.LocationID]; !ok {
			return invalidf("barge %s: unknown location %s", st.BargeID, st.LocationID)
		}
	}
	for id := range barges {
		if !seen[id] {
			return invalidf("no state for barge %s", id)
		}
	}

	for _, r := range in.Requests {
		if err := r.Validate(); err != nil {
			return &ValidationError{Err: err}
		}
		if _, ok := locs[r.LocationID]; !ok {
			return invalidf("request %s: unknown location %s", r.Ship, r.LocationID)
		}
		for _, d := range r.Demands {
			if len(catalog) > 0 && !catalog[d.Product] {
				return invalidf("request %s: unknown product %s", r.Ship, d.Product)
			}
		}
	}
	return nil
}

// locationIndex returns locations keyed by id. Valid only after Validate.
func (in Input) locationIndex() map[string]model.Location {
	locs := make(map[string]model.Location, len(in.Locations))
	for _, l := range in.Locations {
		locs[l.ID] = l
	}
	return locs
}

// confirmed returns the schedulable subset of the requests.
func (in Input) confirmed() []model.RefuelingRequest {
	out := make([]model.RefuelingRequest, 0, len(in.Requests))
	for _, r := range in.Requests {
		if r.Confirmed {
			out = append(out, r)
		}
	}
	return out
}

package model

import (
	"fmt"
	"time"
)

// ProductDemand is one product line of a refueling request.
type ProductDemand struct {
	Product  string
	Quantity float64 // metric tons
}

// RefuelingRequest is a ship's bunkering order. Only confirmed requests
// are eligible for scheduling. Immutable input.
type RefuelingRequest struct {
	Ship         string
	LocationID   string
	Demands      []ProductDemand // one or two product lines
	WindowStart  time.Time
	WindowEnd    time.Time
	ContractDate time.Time
	Confirmed    bool
}

// Products returns the requested product identifiers in declaration order.
func (r RefuelingRequest) Products() []string {
	out := make([]string, len(r.Demands))
	for i, d := range r.Demands {
		out[i] = d.Product
	}
	return out
}

// TotalQuantity returns the summed quantity across all product lines.
func (r RefuelingRequest) TotalQuantity() float64 {
	var total float64
	for _, d := range r.Demands {
		total += d.Quantity
	}
	return total
}

// Validate checks the request shape. Feasibility is not checked here;
// an unservable but well-formed request is simply left unscheduled.
func (r RefuelingRequest) Validate() error {
	if r.Ship == "" {
		return fmt.Errorf("request ship name is required")
	}
	if r.LocationID == "" {
		return fmt.Errorf("request %s: location is required", r.Ship)
	}
	if len(r.Demands) == 0 || len(r.Demands) > 2 {
		return fmt.Errorf("request %s: expected one or two product lines, got %d", r.Ship, len(r.Demands))
	}
	seen := make(map[string]bool, len(r.Demands))
	for _, d := range r.Demands {
		if d.Product == "" {
			return fmt.Errorf("request %s: product is required", r.Ship)
		}
		if d.Quantity <= 0 {
			return fmt.Errorf("request %s: quantity for %s must be positive", r.Ship, d.Product)
		}
		if seen[d.Product] {
			return fmt.Errorf("request %s: duplicate product line %s", r.Ship, d.Product)
		}
		seen[d.Product] = true
	}
	if r.WindowStart.IsZero() || r.WindowEnd.IsZero() {
		return fmt.Errorf("request %s: service window is required", r.Ship)
	}
	if r.WindowEnd.Before(r.WindowStart) {
		return fmt.Errorf("request %s: window end precedes window start", r.Ship)
	}
	return nil
}

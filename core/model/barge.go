package model

import "fmt"

// Tank is a product compartment on a barge.
type Tank struct {
	Product  string
	Capacity float64 // metric tons
}

// Barge describes a bunkering barge of the fleet. The definition is
// immutable during a scheduling run; the mutable side lives in BargeState.
type Barge struct {
	ID         string
	Name       string
	SpeedKnots float64
	Tanks      []Tank
}

// Tank returns the compartment holding the given product.
func (b Barge) Tank(product string) (Tank, bool) {
	for _, t := range b.Tanks {
		if t.Product == product {
			return t, true
		}
	}
	return Tank{}, false
}

// Carries reports whether the barge has a tank for every listed product.
func (b Barge) Carries(products ...string) bool {
	for _, p := range products {
		if _, ok := b.Tank(p); !ok {
			return false
		}
	}
	return true
}

// IsHybrid reports whether the barge carries more than one product type.
func (b Barge) IsHybrid() bool { return len(b.Tanks) > 1 }

// Validate checks that the barge definition is sound.
func (b Barge) Validate() error {
	if b.ID == "" {
		return fmt.Errorf("barge id is required")
	}
	if b.SpeedKnots <= 0 {
		return fmt.Errorf("barge %s: sailing speed must be positive", b.ID)
	}
	if len(b.Tanks) == 0 {
		return fmt.Errorf("barge %s: at least one tank is required", b.ID)
	}
	seen := make(map[string]bool, len(b.Tanks))
	for _, t := range b.Tanks {
		if t.Product == "" {
			return fmt.Errorf("barge %s: tank product is required", b.ID)
		}
		if t.Capacity <= 0 {
			return fmt.Errorf("barge %s: tank %s capacity must be positive", b.ID, t.Product)
		}
		if seen[t.Product] {
			return fmt.Errorf("barge %s: duplicate tank for product %s", b.ID, t.Product)
		}
		seen[t.Product] = true
	}
	return nil
}

// BargeState is the mutable side of a barge: tracked per-product volumes
// and current position. The engine plans on private copies; only the
// commit step mutates the caller-owned value.
type BargeState struct {
	BargeID    string
	Volumes    map[string]float64
	LocationID string
}

// Clone returns a deep copy safe for speculative planning runs.
func (s BargeState) Clone() BargeState {
	cp := BargeState{BargeID: s.BargeID, LocationID: s.LocationID}
	cp.Volumes = make(map[string]float64, len(s.Volumes))
	for p, v := range s.Volumes {
		cp.Volumes[p] = v
	}
	return cp
}

// Validate checks the state against its barge definition: every tracked
// volume must belong to a tank and stay within [0, capacity].
func (s BargeState) Validate(b Barge) error {
	if s.BargeID != b.ID {
		return fmt.Errorf("state %s does not belong to barge %s", s.BargeID, b.ID)
	}
	if s.LocationID == "" {
		return fmt.Errorf("barge %s: current location is required", b.ID)
	}
	for p, v := range s.Volumes {
		t, ok := b.Tank(p)
		if !ok {
			return fmt.Errorf("barge %s: volume tracked for unknown product %s", b.ID, p)
		}
		if v < 0 || v > t.Capacity {
			return fmt.Errorf("barge %s: volume %.1f for %s outside [0, %.1f]", b.ID, v, p, t.Capacity)
		}
	}
	return nil
}

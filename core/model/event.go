package model

import (
	"sort"
	"time"
)

// EventKind distinguishes the schedule event variants.
type EventKind int

const (
	// EventDelivery is a product delivery alongside a ship.
	EventDelivery EventKind = iota
	// EventRecharge is a tank refill at the terminal. Ship is empty and
	// quantity is zero for these events.
	EventRecharge
)

// String returns a human-readable representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case EventDelivery:
		return "delivery"
	case EventRecharge:
		return "recharge"
	default:
		return "unknown"
	}
}

// ScheduleEvent is one entry of a computed schedule. The scheduled start
// marks the beginning of the initial buffer; the barge is busy until
// Start + Duration.
type ScheduleEvent struct {
	ID         string        `json:"id"`
	Kind       EventKind     `json:"kind"`
	Ship       string        `json:"ship,omitempty"`
	BargeID    string        `json:"barge_id"`
	Product    string        `json:"product"`
	Quantity   float64       `json:"quantity"`
	LocationID string        `json:"location_id"`
	Start      time.Time     `json:"scheduled_start"`
	Duration   time.Duration `json:"duration"`
}

// End returns the instant the barge becomes free again.
func (e ScheduleEvent) End() time.Time { return e.Start.Add(e.Duration) }

// SortEvents orders events by scheduled start. The sort is stable so ties
// keep the engine's emission order.
func SortEvents(events []ScheduleEvent) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
}

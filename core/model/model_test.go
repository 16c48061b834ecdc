package model

import (
	"testing"
	"time"
)

func validBarge() Barge {
	return Barge{
		ID:         "barge-a",
		SpeedKnots: 8,
		Tanks:      []Tank{{Product: "VLSFO", Capacity: 1000}, {Product: "MGO", Capacity: 400}},
	}
}

func TestBargeValidate(t *testing.T) {
	if err := validBarge().Validate(); err != nil {
		t.Fatalf("valid barge rejected: %v", err)
	}

	b := validBarge()
	b.SpeedKnots = 0
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for zero speed")
	}

	b = validBarge()
	b.Tanks = append(b.Tanks, Tank{Product: "VLSFO", Capacity: 100})
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for duplicate tank")
	}

	b = validBarge()
	b.Tanks = nil
	if err := b.Validate(); err == nil {
		t.Fatal("expected error for no tanks")
	}
}

func TestBargeHelpers(t *testing.T) {
	b := validBarge()
	if !b.IsHybrid() {
		t.Fatal("two-tank barge must be hybrid")
	}
	if !b.Carries("VLSFO", "MGO") || b.Carries("LNG") {
		t.Fatal("Carries mismatch")
	}
	tank, ok := b.Tank("MGO")
	if !ok || tank.Capacity != 400 {
		t.Fatalf("Tank lookup failed: %+v", tank)
	}
}

func TestBargeStateValidate(t *testing.T) {
	b := validBarge()
	st := BargeState{BargeID: "barge-a", LocationID: TerminalID, Volumes: map[string]float64{"VLSFO": 500}}
	if err := st.Validate(b); err != nil {
		t.Fatalf("valid state rejected: %v", err)
	}

	st.Volumes["VLSFO"] = 1500
	if err := st.Validate(b); err == nil {
		t.Fatal("expected error for volume above capacity")
	}

	st.Volumes = map[string]float64{"LNG": 10}
	if err := st.Validate(b); err == nil {
		t.Fatal("expected error for unknown product volume")
	}
}

func TestRequestValidate(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	r := RefuelingRequest{
		Ship:        "mv-anna",
		LocationID:  "anchorage-1",
		Demands:     []ProductDemand{{Product: "VLSFO", Quantity: 500}},
		WindowStart: start,
		WindowEnd:   start.Add(24 * time.Hour),
	}
	if err := r.Validate(); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}

	bad := r
	bad.Demands = []ProductDemand{
		{Product: "VLSFO", Quantity: 500},
		{Product: "VLSFO", Quantity: 100},
	}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for duplicate product line")
	}

	bad = r
	bad.Demands = []ProductDemand{
		{Product: "VLSFO", Quantity: 1},
		{Product: "MGO", Quantity: 1},
		{Product: "LNG", Quantity: 1},
	}
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for three product lines")
	}

	bad = r
	bad.WindowEnd = start.Add(-time.Hour)
	if err := bad.Validate(); err == nil {
		t.Fatal("expected error for inverted window")
	}
}

func TestSortEventsIsStable(t *testing.T) {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	events := []ScheduleEvent{
		{ID: "b", Start: start.Add(time.Hour)},
		{ID: "a", Start: start},
		{ID: "c", Start: start.Add(time.Hour)},
	}
	SortEvents(events)
	if events[0].ID != "a" || events[1].ID != "b" || events[2].ID != "c" {
		t.Fatalf("unexpected order: %v %v %v", events[0].ID, events[1].ID, events[2].ID)
	}
}

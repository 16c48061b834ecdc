package dispatch

import (
	"testing"
	"time"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

var (
	terminal  = model.Location{ID: model.TerminalID, Name: "Loading pier", Lat: 1.2700, Lon: 103.7500}
	anchorage = model.Location{ID: "anchorage-1", Name: "Eastern anchorage", Lat: 1.3367, Lon: 103.7500}
)

func testStart() time.Time {
	return time.Date(2025, 3, 10, 6, 0, 0, 0, time.UTC)
}

func baseInput(fleet []model.Barge, states []model.BargeState, reqs []model.RefuelingRequest) Input {
	return Input{
		Locations: []model.Location{terminal, anchorage},
		Fleet:     fleet,
		States:    states,
		Requests:  reqs,
		Start:     testStart(),
	}
}

func deliveries(events []model.ScheduleEvent) []model.ScheduleEvent {
	var out []model.ScheduleEvent
	for _, ev := range events {
		if ev.Kind == model.EventDelivery {
			out = append(out, ev)
		}
	}
	return out
}

func TestPlanEmptyInputs(t *testing.T) {
	e := NewEngine(nil)
	in := baseInput(nil, nil, nil)
	res, err := e.Plan(in)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(res.Events) != 0 || len(res.Unscheduled) != 0 {
		t.Fatalf("expected empty schedule, got %d events", len(res.Events))
	}

	// Fleet present but no confirmed request.
	in = baseInput(
		[]model.Barge{{ID: "b1", SpeedKnots: 8, Tanks: []model.Tank{{Product: "MGO", Capacity: 800}}}},
		[]model.BargeState{{BargeID: "b1", LocationID: "anchorage-1", Volumes: map[string]float64{"MGO": 400}}},
		[]model.RefuelingRequest{{
			Ship: "unconfirmed", LocationID: "anchorage-1",
			Demands:     []model.ProductDemand{{Product: "MGO", Quantity: 100}},
			WindowStart: testStart(), WindowEnd: testStart().Add(24 * time.Hour),
		}},
	)
	res, err = e.Plan(in)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(res.Events) != 0 {
		t.Fatalf("unconfirmed request must not be scheduled, got %d events", len(res.Events))
	}
}

func TestPlanValidationFailures(t *testing.T) {
	e := NewEngine(nil)
	in := baseInput(
		[]model.Barge{{ID: "b1", SpeedKnots: 8, Tanks: []model.Tank{{Product: "MGO", Capacity: 800}}}},
		[]model.BargeState{{BargeID: "b1", LocationID: "anchorage-1", Volumes: map[string]float64{"MGO": 400}}},
		[]model.RefuelingRequest{{
			Ship: "mv-ghost", LocationID: "nowhere",
			Demands:     []model.ProductDemand{{Product: "MGO", Quantity: 100}},
			WindowStart: testStart(), WindowEnd: testStart().Add(24 * time.Hour),
			Confirmed:   true,
		}},
	)
	_, err := e.Plan(in)
	if err == nil {
		t.Fatal("expected validation error for unknown location")
	}
	if !IsValidation(err) {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	in.Requests[0].LocationID = "anchorage-1"
	in.Requests[0].Demands[0].Quantity = -5
	if _, err := e.Plan(in); err == nil || !IsValidation(err) {
		t.Fatalf("expected validation error for non-positive quantity, got %v", err)
	}
}

// A barge short of product gets a terminal recharge inserted before the
// delivery, and the delivery start reflects release + recharge + travel.
func TestPlanInsertsRechargeBeforeDelivery(t *testing.T) {
	fleet := []model.Barge{
		{ID: "barge-a", SpeedKnots: 8, Tanks: []model.Tank{{Product: "VLSFO", Capacity: 2000}}},
		{ID: "barge-b", SpeedKnots: 8, Tanks: []model.Tank{{Product: "MGO", Capacity: 800}}},
	}
	states := []model.BargeState{
		{BargeID: "barge-a", LocationID: model.TerminalID, Volumes: map[string]float64{"VLSFO": 1500}},
		{BargeID: "barge-b", LocationID: model.TerminalID, Volumes: map[string]float64{"MGO": 50}},
	}
	start := testStart()
	reqs := []model.RefuelingRequest{{
		Ship: "mv-kestrel", LocationID: "anchorage-1",
		Demands:     []model.ProductDemand{{Product: "MGO", Quantity: 200}},
		WindowStart: start.Add(3 * time.Hour), WindowEnd: start.Add(48 * time.Hour),
		Confirmed:   true,
	}}

	res, err := NewEngine(nil).Plan(baseInput(fleet, states, reqs))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(res.Unscheduled) != 0 {
		t.Fatalf("expected request scheduled, unscheduled=%v", res.Unscheduled)
	}
	if len(res.Events) != 2 {
		t.Fatalf("expected recharge + delivery, got %d events", len(res.Events))
	}

	recharge, delivery := res.Events[0], res.Events[1]
	if recharge.Kind != model.EventRecharge || recharge.BargeID != "barge-b" || recharge.Product != "MGO" {
		t.Fatalf("unexpected first event %+v", recharge)
	}
	if recharge.LocationID != model.TerminalID || recharge.Quantity != 0 || recharge.Ship != "" {
		t.Fatalf("recharge event must be a zero-quantity terminal visit, got %+v", recharge)
	}
	// barge-b is mid-loading at start: (800-50)/400 h + 2 h final buffer.
	wantRecharge := start.Add(3*time.Hour + 52*time.Minute + 30*time.Second)
	if !recharge.Start.Equal(wantRecharge) {
		t.Fatalf("recharge start = %v, want %v", recharge.Start, wantRecharge)
	}
	if delivery.Kind != model.EventDelivery || delivery.BargeID != "barge-b" {
		t.Fatalf("unexpected second event %+v", delivery)
	}
	// Recharge takes 1.5 + 750/400 + 2 h, the terminal-anchorage leg
	// rounds to half an hour: delivery starts 9.75 h after simulation start.
	wantDelivery := start.Add(9*time.Hour + 45*time.Minute)
	if !delivery.Start.Equal(wantDelivery) {
		t.Fatalf("delivery start = %v, want %v", delivery.Start, wantDelivery)
	}
}

// A hybrid barge carrying both products serves a multi-product request in
// one visit with two sequential, non-overlapping deliveries.
func TestPlanHybridSingleBarge(t *testing.T) {
	fleet := []model.Barge{{
		ID: "barge-c", SpeedKnots: 8,
		Tanks: []model.Tank{{Product: "VLSFO", Capacity: 1000}, {Product: "MGO", Capacity: 400}},
	}}
	states := []model.BargeState{{
		BargeID: "barge-c", LocationID: "anchorage-1",
		Volumes: map[string]float64{"VLSFO": 750, "MGO": 300},
	}}
	start := testStart()
	reqs := []model.RefuelingRequest{{
		Ship: "mv-albatross", LocationID: "anchorage-1",
		Demands:     []model.ProductDemand{{Product: "VLSFO", Quantity: 100}, {Product: "MGO", Quantity: 50}},
		WindowStart: start, WindowEnd: start.Add(24 * time.Hour),
		Confirmed:   true,
	}}

	res, err := NewEngine(nil).Plan(baseInput(fleet, states, reqs))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	dels := deliveries(res.Events)
	if len(res.Events) != 2 || len(dels) != 2 {
		t.Fatalf("expected exactly two deliveries, got %+v", res.Events)
	}
	if dels[0].BargeID != "barge-c" || dels[1].BargeID != "barge-c" {
		t.Fatal("expected a single hybrid barge for both products")
	}
	if dels[0].Product != "VLSFO" || dels[1].Product != "MGO" {
		t.Fatalf("expected declaration order, got %s then %s", dels[0].Product, dels[1].Product)
	}
	if !dels[1].Start.Equal(dels[0].End()) {
		t.Fatalf("second delivery must start when the first ends: %v vs %v", dels[1].Start, dels[0].End())
	}
}

// With no hybrid barge available, a multi-product request splits across
// two specialized barges; the second product may not start before the
// first has fully ended at the ship.
func TestPlanSplitFallback(t *testing.T) {
	fleet := []model.Barge{
		{ID: "barge-v", SpeedKnots: 8, Tanks: []model.Tank{{Product: "VLSFO", Capacity: 1500}}},
		{ID: "barge-m", SpeedKnots: 8, Tanks: []model.Tank{{Product: "MGO", Capacity: 600}}},
	}
	states := []model.BargeState{
		{BargeID: "barge-v", LocationID: "anchorage-1", Volumes: map[string]float64{"VLSFO": 1200}},
		{BargeID: "barge-m", LocationID: "anchorage-1", Volumes: map[string]float64{"MGO": 500}},
	}
	start := testStart()
	reqs := []model.RefuelingRequest{{
		Ship: "mv-cormorant", LocationID: "anchorage-1",
		Demands:     []model.ProductDemand{{Product: "VLSFO", Quantity: 300}, {Product: "MGO", Quantity: 100}},
		WindowStart: start, WindowEnd: start.Add(24 * time.Hour),
		Confirmed:   true,
	}}

	res, err := NewEngine(nil).Plan(baseInput(fleet, states, reqs))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	dels := deliveries(res.Events)
	if len(dels) != 2 {
		t.Fatalf("expected two deliveries, got %+v", res.Events)
	}
	if dels[0].BargeID == dels[1].BargeID {
		t.Fatal("expected two different barges in the split fallback")
	}
	if dels[1].Start.Before(dels[0].End()) {
		t.Fatalf("ship double-booked: %v overlaps %v", dels[1].Start, dels[0].End())
	}
}

// All-or-nothing: when the second product of a split has no feasible
// barge, nothing of the request is scheduled.
func TestPlanSplitAllOrNothing(t *testing.T) {
	fleet := []model.Barge{
		{ID: "barge-v", SpeedKnots: 8, Tanks: []model.Tank{{Product: "VLSFO", Capacity: 1500}}},
	}
	states := []model.BargeState{
		{BargeID: "barge-v", LocationID: "anchorage-1", Volumes: map[string]float64{"VLSFO": 1200}},
	}
	start := testStart()
	reqs := []model.RefuelingRequest{{
		Ship: "mv-petrel", LocationID: "anchorage-1",
		Demands:     []model.ProductDemand{{Product: "VLSFO", Quantity: 300}, {Product: "MGO", Quantity: 100}},
		WindowStart: start, WindowEnd: start.Add(24 * time.Hour),
		Confirmed:   true,
	}}

	res, err := NewEngine(nil).Plan(baseInput(fleet, states, reqs))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(res.Events) != 0 {
		t.Fatalf("expected no events for a half-servable request, got %+v", res.Events)
	}
	if len(res.Unscheduled) != 1 || res.Unscheduled[0] != "mv-petrel" {
		t.Fatalf("expected mv-petrel unscheduled, got %v", res.Unscheduled)
	}
}

// A request whose window closes before any barge can arrive is left
// unscheduled without failing the run.
func TestPlanWindowInfeasible(t *testing.T) {
	fleet := []model.Barge{
		{ID: "barge-b", SpeedKnots: 8, Tanks: []model.Tank{{Product: "MGO", Capacity: 800}}},
	}
	states := []model.BargeState{
		{BargeID: "barge-b", LocationID: model.TerminalID, Volumes: map[string]float64{"MGO": 600}},
	}
	start := testStart()
	reqs := []model.RefuelingRequest{{
		Ship: "mv-swift", LocationID: "anchorage-1",
		Demands:     []model.ProductDemand{{Product: "MGO", Quantity: 100}},
		WindowStart: start, WindowEnd: start.Add(30 * time.Minute),
		Confirmed:   true,
	}}

	res, err := NewEngine(nil).Plan(baseInput(fleet, states, reqs))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(res.Events) != 0 || len(res.Unscheduled) != 1 {
		t.Fatalf("expected unscheduled request, got events=%v unscheduled=%v", res.Events, res.Unscheduled)
	}
}

// Mandatory-recharge rule: once remaining volume drops below the smallest
// pending quantity, the next delivery of that product is preceded by a
// terminal recharge.
func TestPlanMandatoryRechargeBetweenDeliveries(t *testing.T) {
	fleet := []model.Barge{
		{ID: "barge-v", SpeedKnots: 8, Tanks: []model.Tank{{Product: "VLSFO", Capacity: 1000}}},
	}
	states := []model.BargeState{
		{BargeID: "barge-v", LocationID: "anchorage-1", Volumes: map[string]float64{"VLSFO": 300}},
	}
	start := testStart()
	window := func() (time.Time, time.Time) { return start, start.Add(72 * time.Hour) }
	ws, we := window()
	reqs := []model.RefuelingRequest{
		{Ship: "mv-one", LocationID: "anchorage-1", Confirmed: true,
			Demands:     []model.ProductDemand{{Product: "VLSFO", Quantity: 250}},
			WindowStart: ws, WindowEnd: we, ContractDate: start},
		{Ship: "mv-two", LocationID: "anchorage-1", Confirmed: true,
			Demands:     []model.ProductDemand{{Product: "VLSFO", Quantity: 250}},
			WindowStart: ws, WindowEnd: we, ContractDate: start.Add(time.Hour)},
	}

	res, err := NewEngine(nil).Plan(baseInput(fleet, states, reqs))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(res.Unscheduled) != 0 {
		t.Fatalf("expected both requests served, unscheduled=%v", res.Unscheduled)
	}
	if len(res.Events) != 3 {
		t.Fatalf("expected delivery, recharge, delivery; got %+v", res.Events)
	}
	if res.Events[0].Kind != model.EventDelivery || res.Events[0].Ship != "mv-one" {
		t.Fatalf("unexpected first event %+v", res.Events[0])
	}
	if res.Events[1].Kind != model.EventRecharge {
		t.Fatalf("expected recharge before the second delivery, got %+v", res.Events[1])
	}
	if res.Events[2].Kind != model.EventDelivery || res.Events[2].Ship != "mv-two" {
		t.Fatalf("unexpected last event %+v", res.Events[2])
	}
	// 50 t remain after the first delivery; the refill must restore a
	// full tank before 250 t more go out.
	if res.Events[1].Start.Before(res.Events[0].End()) {
		t.Fatal("recharge overlaps the previous delivery")
	}
}

// Per-barge ordering: consecutive events of one barge never overlap, and
// the emitted sequence is globally sorted by scheduled start.
func TestPlanEventOrdering(t *testing.T) {
	fleet := []model.Barge{
		{ID: "barge-v", SpeedKnots: 8, Tanks: []model.Tank{{Product: "VLSFO", Capacity: 2000}}},
		{ID: "barge-m", SpeedKnots: 8, Tanks: []model.Tank{{Product: "MGO", Capacity: 800}}},
	}
	states := []model.BargeState{
		{BargeID: "barge-v", LocationID: model.TerminalID, Volumes: map[string]float64{"VLSFO": 2000}},
		{BargeID: "barge-m", LocationID: model.TerminalID, Volumes: map[string]float64{"MGO": 800}},
	}
	start := testStart()
	reqs := []model.RefuelingRequest{
		{Ship: "mv-a", LocationID: "anchorage-1", Confirmed: true,
			Demands:     []model.ProductDemand{{Product: "VLSFO", Quantity: 400}},
			WindowStart: start, WindowEnd: start.Add(48 * time.Hour), ContractDate: start},
		{Ship: "mv-b", LocationID: "anchorage-1", Confirmed: true,
			Demands:     []model.ProductDemand{{Product: "MGO", Quantity: 150}},
			WindowStart: start, WindowEnd: start.Add(48 * time.Hour), ContractDate: start},
		{Ship: "mv-c", LocationID: "anchorage-1", Confirmed: true,
			Demands:     []model.ProductDemand{{Product: "VLSFO", Quantity: 300}},
			WindowStart: start, WindowEnd: start.Add(48 * time.Hour), ContractDate: start.Add(time.Hour)},
	}

	res, err := NewEngine(nil).Plan(baseInput(fleet, states, reqs))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	for i := 1; i < len(res.Events); i++ {
		if res.Events[i].Start.Before(res.Events[i-1].Start) {
			t.Fatalf("events not sorted by start: %v before %v", res.Events[i].Start, res.Events[i-1].Start)
		}
	}
	last := make(map[string]time.Time)
	for _, ev := range res.Events {
		if prev, ok := last[ev.BargeID]; ok && ev.Start.Before(prev) {
			t.Fatalf("barge %s events overlap", ev.BargeID)
		}
		last[ev.BargeID] = ev.End()
	}
}

// Window containment: every delivery starts inside its request's window,
// even when the barge arrives early and has to wait.
func TestPlanWaitsForWindowStart(t *testing.T) {
	fleet := []model.Barge{
		{ID: "barge-m", SpeedKnots: 8, Tanks: []model.Tank{{Product: "MGO", Capacity: 800}}},
	}
	states := []model.BargeState{
		{BargeID: "barge-m", LocationID: "anchorage-1", Volumes: map[string]float64{"MGO": 500}},
	}
	start := testStart()
	ws := start.Add(6 * time.Hour)
	reqs := []model.RefuelingRequest{{
		Ship: "mv-laggard", LocationID: "anchorage-1", Confirmed: true,
		Demands:     []model.ProductDemand{{Product: "MGO", Quantity: 100}},
		WindowStart: ws, WindowEnd: ws.Add(12 * time.Hour),
	}}

	res, err := NewEngine(nil).Plan(baseInput(fleet, states, reqs))
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	dels := deliveries(res.Events)
	if len(dels) != 1 {
		t.Fatalf("expected one delivery, got %+v", res.Events)
	}
	if !dels[0].Start.Equal(ws) {
		t.Fatalf("delivery must wait for the window start, got %v", dels[0].Start)
	}
}

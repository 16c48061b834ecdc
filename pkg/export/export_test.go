package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

func sampleEvents() []model.ScheduleEvent {
	start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return []model.ScheduleEvent{
		{ID: "ev-1", Kind: model.EventRecharge, BargeID: "barge-a", Product: "VLSFO", Quantity: 700, LocationID: model.TerminalID, Start: start, Duration: 5 * time.Hour},
		{ID: "ev-2", Kind: model.EventDelivery, Ship: "mv-anna", BargeID: "barge-a", Product: "VLSFO", Quantity: 500, LocationID: "anchorage-1", Start: start.Add(6 * time.Hour), Duration: 3 * time.Hour},
	}
}

func TestJSONRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, sampleEvents()); err != nil {
		t.Fatalf("write: %v", err)
	}
	events, err := ReadJSON(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(events) != 2 || events[1].Ship != "mv-anna" {
		t.Fatalf("round trip mismatch: %+v", events)
	}
	if !events[0].Start.Equal(sampleEvents()[0].Start) {
		t.Fatalf("start mismatch: %v", events[0].Start)
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleEvents()); err != nil {
		t.Fatalf("write: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id,kind,ship") {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if !strings.Contains(lines[2], "mv-anna") || !strings.Contains(lines[2], "delivery") {
		t.Fatalf("unexpected row: %s", lines[2])
	}
}

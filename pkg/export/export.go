package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

// WriteJSON writes the schedule to w in JSON format.
func WriteJSON(w io.Writer, events []model.ScheduleEvent) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(events)
}

// ReadJSON reads a schedule previously written with WriteJSON.
func ReadJSON(r io.Reader) ([]model.ScheduleEvent, error) {
	var events []model.ScheduleEvent
	if err := json.NewDecoder(r).Decode(&events); err != nil {
		return nil, err
	}
	return events, nil
}

// WriteCSV writes the schedule to w in CSV format.
func WriteCSV(w io.Writer, events []model.ScheduleEvent) error {
	cw := csv.NewWriter(w)
	header := []string{"id", "kind", "ship", "barge_id", "product", "quantity", "location_id", "scheduled_start", "duration_hours"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, e := range events {
		rec := []string{
			e.ID,
			e.Kind.String(),
			e.Ship,
			e.BargeID,
			e.Product,
			strconv.FormatFloat(e.Quantity, 'f', -1, 64),
			e.LocationID,
			e.Start.Format(time.RFC3339),
			strconv.FormatFloat(e.Duration.Hours(), 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

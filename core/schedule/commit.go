package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

// StateStore owns the persisted barge states. Save must replace the
// whole set in one shot so a commit is all-or-nothing.
type StateStore interface {
	Load(ctx context.Context) ([]model.BargeState, error)
	Save(ctx context.Context, states []model.BargeState) error
}

// HistoryQuery filters the operation history.
type HistoryQuery struct {
	Ship    string
	BargeID string
	From    time.Time
	To      time.Time
}

// HistoryStore is the append-only operation history.
type HistoryStore interface {
	Append(ctx context.Context, rec model.DeliveryRecord) error
	Query(ctx context.Context, q HistoryQuery) ([]model.DeliveryRecord, error)
	Close() error
}

// CommitEvent is published after a schedule has been applied.
type CommitEvent struct {
	RunID   string
	Events  []model.ScheduleEvent
	Records []model.DeliveryRecord
}

// Apply replays a finalized schedule onto the given states and returns
// the updated states plus the history records to append. The inputs are
// not mutated. Applying the same schedule twice double-applies volume
// changes; callers must discard a schedule after committing it.
func Apply(fleet []model.Barge, states []model.BargeState, events []model.ScheduleEvent) ([]model.BargeState, []model.DeliveryRecord, error) {
	barges := make(map[string]model.Barge, len(fleet))
	for _, b := range fleet {
		barges[b.ID] = b
	}
	next := make([]model.BargeState, len(states))
	index := make(map[string]*model.BargeState, len(states))
	for i, st := range states {
		next[i] = st.Clone()
		index[st.BargeID] = &next[i]
	}

	var records []model.DeliveryRecord
	for _, ev := range events {
		st, ok := index[ev.BargeID]
		if !ok {
			return nil, nil, fmt.Errorf("apply: no state for barge %s", ev.BargeID)
		}
		b := barges[ev.BargeID]
		switch ev.Kind {
		case model.EventDelivery:
			v := st.Volumes[ev.Product] - ev.Quantity
			if v < 0 {
				v = 0
			}
			st.Volumes[ev.Product] = v
			st.LocationID = ev.LocationID
			records = append(records, model.DeliveryRecord{
				ID:          uuid.NewString(),
				Ship:        ev.Ship,
				BargeID:     ev.BargeID,
				Product:     ev.Product,
				Quantity:    ev.Quantity,
				CompletedAt: ev.Start,
			})
		case model.EventRecharge:
			tank, ok := b.Tank(ev.Product)
			if !ok {
				return nil, nil, fmt.Errorf("apply: barge %s has no %s tank", ev.BargeID, ev.Product)
			}
			st.Volumes[ev.Product] = tank.Capacity
			st.LocationID = model.TerminalID
		default:
			return nil, nil, fmt.Errorf("apply: unknown event kind %d", ev.Kind)
		}
	}
	return next, records, nil
}

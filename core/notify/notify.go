package notify

import (
	"context"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

// Order is the payload delivered to a barge crew after a schedule has
// been committed. Events only contains the events assigned to that
// barge, in start order.
type Order struct {
	OrderID string                `json:"order_id"`
	RunID   string                `json:"run_id"`
	BargeID string                `json:"barge_id"`
	Events  []model.ScheduleEvent `json:"events"`
	SentAt  int64                 `json:"sent_at"`
}

// Notifier delivers committed schedules to the barge crews.
type Notifier interface {
	// NotifyCommit publishes one order per barge appearing in events.
	NotifyCommit(ctx context.Context, runID string, events []model.ScheduleEvent) error
	Close()
}

// Nop is a Notifier that does nothing.
type Nop struct{}

func (Nop) NotifyCommit(context.Context, string, []model.ScheduleEvent) error { return nil }
func (Nop) Close()                                                            {}

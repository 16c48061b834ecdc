package notify

import (
	"context"
	"fmt"
	"sync"

	"github.com/cbsthiago-dev/progbunker-application/core/model"
)

// MockNotifier records orders in memory. Used in tests.
type MockNotifier struct {
	mu      sync.Mutex
	Orders  map[string][]model.ScheduleEvent
	FailIDs map[string]bool
}

// NewMockNotifier creates a new MockNotifier.
func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		Orders:  make(map[string][]model.ScheduleEvent),
		FailIDs: make(map[string]bool),
	}
}

// NotifyCommit records the per-barge orders or returns an error if a
// barge is configured to fail.
func (m *MockNotifier) NotifyCommit(_ context.Context, _ string, events []model.ScheduleEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ev := range events {
		if m.FailIDs[ev.BargeID] {
			return fmt.Errorf("publish failed for %s", ev.BargeID)
		}
		m.Orders[ev.BargeID] = append(m.Orders[ev.BargeID], ev)
	}
	return nil
}

func (m *MockNotifier) Close() {}

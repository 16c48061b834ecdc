package model

import "time"

// DeliveryRecord is an immutable operation-history entry appended when a
// delivery event is committed.
type DeliveryRecord struct {
	ID          string    `json:"id"`
	Ship        string    `json:"ship"`
	BargeID     string    `json:"barge_id"`
	Product     string    `json:"product"`
	Quantity    float64   `json:"quantity"`
	CompletedAt time.Time `json:"completed_at"`
}

package dto

import "time"

// Record event actions published on the in-process bus.
const (
	RecordActionCreated  = "created"
	RecordActionUpdated  = "updated"
	RecordActionArchived = "archived"
)

// RecordEventPayload is the audit event emitted after a successful document
// store mutation. Consumed by the audit consumer, serialized as JSON.
type RecordEventPayload struct {
	EventID    string    `json:"event_id"`
	Kind       string    `json:"kind"` // "link" or "task"
	Action     string    `json:"action"`
	RecordID   string    `json:"record_id"`
	Title      string    `json:"title,omitempty"`
	ChatID     int64     `json:"chat_id"`
	UserID     int64     `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

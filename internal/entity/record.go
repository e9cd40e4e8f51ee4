package entity

import "time"

// TaskStatus is the lifecycle state of a task record.
type TaskStatus string

const (
	TaskStatusPending TaskStatus = "Pending"
	TaskStatusDone    TaskStatus = "Done"
)

// TaskPriority levels as stored in the document store's select property.
type TaskPriority string

const (
	PriorityHigh   TaskPriority = "High"
	PriorityMedium TaskPriority = "Medium"
	PriorityLow    TaskPriority = "Low"
)

// ParsePriority maps a wire string to a priority, defaulting to Medium.
func ParsePriority(s string) TaskPriority {
	switch TaskPriority(s) {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return TaskPriority(s)
	}
	return PriorityMedium
}

// LinkRecord is the engine's transient view of a saved link.
// The document store owns the data; this struct never outlives one invocation.
type LinkRecord struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	URL            string    `json:"url"`
	Category       string    `json:"category"`
	CreatedAt      time.Time `json:"created_at"`
	SequenceNumber int       `json:"sequence_number,omitempty"`
}

// TaskRecord is the engine's transient view of a task.
type TaskRecord struct {
	ID             string       `json:"id"`
	Title          string       `json:"title"`
	Status         TaskStatus   `json:"status"`
	Priority       TaskPriority `json:"priority"`
	CreatedAt      time.Time    `json:"created_at"`
	SequenceNumber int          `json:"sequence_number,omitempty"`
}

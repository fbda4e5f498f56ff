package activity

import "time"

// LogEntry is one recorded mutation.
type LogEntry struct {
	ID         int64          `json:"id"`
	ActorID    int64          `json:"actorId"`
	Action     string         `json:"action"`
	Entity     string         `json:"entity"`
	EntityID   string         `json:"entityId"`
	Meta       map[string]any `json:"meta,omitempty"`
	OccurredAt time.Time      `json:"occurredAt"`
}

// ListRequest filters the log listing.
type ListRequest struct {
	ActorID  int64
	Entity   string
	EntityID string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

package notifications

import "time"

// Notification is one entry in a staff member's feed.
type Notification struct {
	ID          int64     `json:"id"`
	RecipientID int64     `json:"recipientId"`
	Kind        string    `json:"kind"`
	Title       string    `json:"title"`
	Body        string    `json:"body"`
	Entity      *string   `json:"entity,omitempty"`
	EntityID    *int64    `json:"entityId,omitempty"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Recipient is a deliverable staff member resolved from the user directory.
type Recipient struct {
	ID    int64
	Email string
}

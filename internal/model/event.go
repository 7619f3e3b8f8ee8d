package model

import (
	"time"

	"github.com/google/uuid"
)

// Event is the slice of the events table the notifier reads. The web
// application owns the full entity; only identity and time fields matter here.
type Event struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	DateTime    time.Time `json:"date_time"`
}

// User is the recipient view of the users table.
type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Phone string    `json:"phone,omitempty"`
}

// Participant is one user's registration for an event.
type Participant struct {
	ID        uuid.UUID `json:"id"`
	EventID   uuid.UUID `json:"event_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

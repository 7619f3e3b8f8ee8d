package model

import (
	"time"

	"github.com/google/uuid"
)

// Status is the delivery state of a notification record.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing" // claimed by a running dispatch batch
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// Type identifies what triggered a notification.
type Type string

const (
	TypeEventCreated   Type = "event_created"
	TypeEventUpdated   Type = "event_updated"
	TypeEventCancelled Type = "event_cancelled"
	TypeReminder24h    Type = "reminder_24h"
	TypeReminder1h     Type = "reminder_1h"
)

// Channel is the delivery medium of a notification.
type Channel string

const (
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
	ChannelPush  Channel = "push"
	ChannelInApp Channel = "in_app"
)

// NotificationRecord is one scheduled notification for a (event, user, type)
// triple. Rows are created by the scheduler and mutated only by the
// dispatcher; deleting the parent event or user cascades to the record.
type NotificationRecord struct {
	ID           uuid.UUID  `json:"id"`
	EventID      uuid.UUID  `json:"event_id"`
	UserID       uuid.UUID  `json:"user_id"`
	Type         Type       `json:"type"`
	Status       Status     `json:"status"`
	Channel      Channel    `json:"channel"`
	ScheduledAt  time.Time  `json:"scheduled_at"`
	SentAt       *time.Time `json:"sent_at,omitempty"`
	ErrorMessage string     `json:"error_message,omitempty"`
	RetryCount   int        `json:"retry_count"`
	Message      string     `json:"message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// IsSent reports whether the record was delivered.
func (n NotificationRecord) IsSent() bool { return n.Status == StatusSent }

// IsPending reports whether the record is still awaiting dispatch.
func (n NotificationRecord) IsPending() bool { return n.Status == StatusPending }

// IsFailed reports whether the last delivery attempt failed.
func (n NotificationRecord) IsFailed() bool { return n.Status == StatusFailed }

package dto

// ScheduleRequest schedules a single notification by hand.
type ScheduleRequest struct {
	EventID     string `json:"event_id" validate:"required,uuid"`
	UserID      string `json:"user_id" validate:"required,uuid"`
	Type        string `json:"type" validate:"required,oneof=event_created event_updated event_cancelled reminder_24h reminder_1h"`
	ScheduledAt string `json:"scheduled_at" validate:"required"`
	Channel     string `json:"channel" validate:"omitempty,oneof=email sms push in_app"`
}

// RegisterParticipantRequest registers a user for an event.
type RegisterParticipantRequest struct {
	EventID string `json:"event_id" validate:"required,uuid"`
	UserID  string `json:"user_id" validate:"required,uuid"`
}

// EventUpdatedRequest reports which event fields the web application changed.
type EventUpdatedRequest struct {
	ChangedFields []string `json:"changed_fields" validate:"required,min=1"`
}

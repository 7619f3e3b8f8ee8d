package scheduler

import (
	"fmt"

	"github.com/musehub/event-notifier/internal/model"
)

const eventTimeLayout = "2006-01-02 15:04"

// renderMessage produces the body text stored on the record at scheduling
// time, so the dispatcher only has to deliver it.
func renderMessage(typ model.Type, ev model.Event) string {
	when := ev.DateTime.Format(eventTimeLayout)

	switch typ {
	case model.TypeEventCreated:
		return fmt.Sprintf(
			"You are registered for %q on %s at %s. See you there!",
			ev.Title, when, ev.Location,
		)
	case model.TypeReminder24h:
		return fmt.Sprintf(
			"Reminder: %q starts tomorrow, %s at %s.",
			ev.Title, when, ev.Location,
		)
	case model.TypeReminder1h:
		return fmt.Sprintf(
			"Reminder: %q starts in one hour, %s at %s.",
			ev.Title, when, ev.Location,
		)
	case model.TypeEventUpdated:
		return fmt.Sprintf(
			"The event %q has been updated. It now takes place on %s at %s.",
			ev.Title, when, ev.Location,
		)
	case model.TypeEventCancelled:
		return fmt.Sprintf("The event %q on %s has been cancelled.", ev.Title, when)
	default:
		return fmt.Sprintf("Update for event %q on %s.", ev.Title, when)
	}
}

package domainevent

import (
	"context"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/zlog"

	"github.com/musehub/event-notifier/internal/model"
	"github.com/musehub/event-notifier/internal/rabbitmq/queue"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/rabbitmq/handlers/domainevent/mock.go -package=mocks

type schedulerService interface {
	OnParticipantRegistered(ctx context.Context, p model.Participant) ([]model.NotificationRecord, error)
	OnEventUpdated(ctx context.Context, eventID uuid.UUID, changedFields []string) (int, error)
}

// Handler bridges consumed domain-event messages to the scheduler.
type Handler struct {
	scheduler schedulerService
}

func NewHandler(scheduler schedulerService) *Handler {
	return &Handler{scheduler: scheduler}
}

// HandleMessage routes one domain event. Errors are logged, not returned:
// the scheduler treats unresolvable entities as non-fatal and anything else
// is surfaced through observability rather than requeue loops.
func (h *Handler) HandleMessage(ctx context.Context, msg queue.DomainEventMessage) {
	switch msg.Kind {
	case queue.KindParticipantRegistered:
		recs, err := h.scheduler.OnParticipantRegistered(ctx, model.Participant{
			ID:      msg.ParticipantID,
			EventID: msg.EventID,
			UserID:  msg.UserID,
		})
		if err != nil {
			zlog.Logger.Error().Err(err).
				Str("event_id", msg.EventID.String()).
				Str("user_id", msg.UserID.String()).
				Msg("failed to schedule registration notifications")
			return
		}

		zlog.Logger.Info().
			Str("event_id", msg.EventID.String()).
			Int("scheduled", len(recs)).
			Msg("handled participant registration")

	case queue.KindEventUpdated:
		n, err := h.scheduler.OnEventUpdated(ctx, msg.EventID, msg.ChangedFields)
		if err != nil {
			zlog.Logger.Error().Err(err).
				Str("event_id", msg.EventID.String()).
				Msg("failed to schedule event update notifications")
			return
		}

		zlog.Logger.Info().
			Str("event_id", msg.EventID.String()).
			Int("scheduled", n).
			Msg("handled event update")

	default:
		zlog.Logger.Warn().Str("kind", msg.Kind).Msg("unknown domain event kind")
	}
}

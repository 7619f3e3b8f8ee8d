package participant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/musehub/event-notifier/internal/api/dto"
	"github.com/musehub/event-notifier/internal/api/respond"
	"github.com/musehub/event-notifier/internal/model"
	"github.com/musehub/event-notifier/internal/repository/event"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/participant/mock.go -package=mocks

type registrationService interface {
	RegisterParticipant(ctx context.Context, eventID, userID uuid.UUID) (model.Participant, []model.NotificationRecord, error)
}

type Handler struct {
	service   registrationService
	validator *validator.Validate
}

func NewHandler(s registrationService, v *validator.Validate) *Handler {
	return &Handler{service: s, validator: v}
}

// registrationResponse pairs the created participant with the notification
// set that committed alongside it.
type registrationResponse struct {
	Participant   model.Participant          `json:"participant"`
	Notifications []model.NotificationRecord `json:"notifications"`
}

// Register creates a participant and its notification set in one transaction.
func (h *Handler) Register(c *ginext.Context) {
	var req dto.RegisterParticipantRequest

	if err := json.NewDecoder(c.Request.Body).Decode(&req); err != nil {
		zlog.Logger.Error().Err(err).Msg("failed to decode request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid request body"))
		return
	}

	if err := h.validator.Struct(req); err != nil {
		zlog.Logger.Warn().Err(err).Msg("failed to validate request body")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("validation error: %s", err.Error()))
		return
	}

	eventID, _ := uuid.Parse(req.EventID)
	userID, _ := uuid.Parse(req.UserID)

	p, recs, err := h.service.RegisterParticipant(c.Request.Context(), eventID, userID)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) || errors.Is(err, event.ErrUserNotFound) {
			respond.Fail(c.Writer, http.StatusNotFound, err)
			return
		}

		zlog.Logger.Error().Err(err).
			Str("event_id", req.EventID).
			Str("user_id", req.UserID).
			Msg("failed to register participant")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.Created(c.Writer, registrationResponse{Participant: p, Notifications: recs})
}

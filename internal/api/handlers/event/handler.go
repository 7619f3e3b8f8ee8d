package event

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/musehub/event-notifier/internal/api/dto"
	"github.com/musehub/event-notifier/internal/api/respond"
)

type updateService interface {
	OnEventUpdated(ctx context.Context, eventID uuid.UUID, changedFields []string) (int, error)
}

type Handler struct {
	service   updateService
	validator *validator.Validate
}

func NewHandler(s updateService, v *validator.Validate) *Handler {
	return &Handler{service: s, validator: v}
}

// Updated is invoked by the web application after an event mutation, with
// the list of changed fields. Unimportant changes schedule nothing.
func (h *Handler) Updated(c *ginext.Context) {
	idStr := c.Param("id")
	eventID, err := uuid.Parse(idStr)
	if err != nil || eventID == uuid.Nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid event id"))
		return
	}

	var req dto.EventUpdatedRequest

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

	n, err := h.service.OnEventUpdated(c.Request.Context(), eventID, req.ChangedFields)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("event_id", idStr).Msg("failed to handle event update")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, map[string]int{"scheduled": n})
}

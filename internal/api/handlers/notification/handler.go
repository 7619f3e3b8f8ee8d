package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/musehub/event-notifier/internal/api/dto"
	"github.com/musehub/event-notifier/internal/api/respond"
	"github.com/musehub/event-notifier/internal/model"
	"github.com/musehub/event-notifier/internal/repository/event"
	"github.com/musehub/event-notifier/internal/repository/notification"
	"github.com/musehub/event-notifier/internal/service/dispatcher"
)

//go:generate mockgen -source=handler.go -destination=../../../mocks/api/handlers/notification/mock.go -package=mocks

type schedulerService interface {
	ScheduleByID(ctx context.Context, eventID, userID uuid.UUID, typ model.Type, scheduledAt time.Time, channel model.Channel) (model.NotificationRecord, error)
	Status(ctx context.Context, id uuid.UUID) (model.Status, error)
	ListForEvent(ctx context.Context, eventID uuid.UUID) ([]model.NotificationRecord, error)
}

type dispatchService interface {
	RunDue(ctx context.Context, now time.Time) (dispatcher.Summary, error)
	RetryFailed(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	scheduler schedulerService
	dispatch  dispatchService
	validator *validator.Validate
}

func NewHandler(scheduler schedulerService, dispatch dispatchService, v *validator.Validate) *Handler {
	return &Handler{scheduler: scheduler, dispatch: dispatch, validator: v}
}

// Schedule creates one pending notification by hand.
func (h *Handler) Schedule(c *ginext.Context) {
	var req dto.ScheduleRequest

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

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid scheduled_at, want RFC3339"))
		return
	}

	rec, err := h.scheduler.ScheduleByID(
		c.Request.Context(),
		eventID, userID,
		model.Type(req.Type), scheduledAt, model.Channel(req.Channel),
	)
	if err != nil {
		if errors.Is(err, event.ErrEventNotFound) || errors.Is(err, event.ErrUserNotFound) {
			respond.Fail(c.Writer, http.StatusNotFound, err)
			return
		}

		zlog.Logger.Error().Err(err).Msg("failed to schedule notification")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.Created(c.Writer, rec)
}

// GetStatus returns the delivery status of one record.
func (h *Handler) GetStatus(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	status, err := h.scheduler.Status(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("notification not found"))
			return
		}

		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to get notification status")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, status)
}

// Retry resets a failed record to pending.
func (h *Handler) Retry(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	if err := h.dispatch.RetryFailed(c.Request.Context(), id); err != nil {
		if errors.Is(err, notification.ErrNotificationNotFound) {
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("no failed notification with that id"))
			return
		}

		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to reset notification")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, "notification requeued")
}

// ListForEvent lists every record created for an event.
func (h *Handler) ListForEvent(c *ginext.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	recs, err := h.scheduler.ListForEvent(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, notification.ErrNoNotificationsFound) {
			respond.Fail(c.Writer, http.StatusNotFound, fmt.Errorf("no notifications for event"))
			return
		}

		zlog.Logger.Error().Err(err).Str("event_id", id.String()).Msg("failed to list notifications")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, recs)
}

// RunDispatch triggers one dispatch batch and returns its summary.
func (h *Handler) RunDispatch(c *ginext.Context) {
	summary, err := h.dispatch.RunDue(c.Request.Context(), time.Now())
	if err != nil {
		zlog.Logger.Error().Err(err).Msg("dispatch batch failed")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("dispatch failed"))
		return
	}

	respond.OK(c.Writer, summary)
}

func parseID(c *ginext.Context) (uuid.UUID, bool) {
	idStr := c.Param("id")
	id, err := uuid.Parse(idStr)
	if err != nil || id == uuid.Nil {
		zlog.Logger.Warn().Str("id", idStr).Msg("invalid id")
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return uuid.Nil, false
	}

	return id, true
}

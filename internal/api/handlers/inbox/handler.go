package inbox

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/wb-go/wbf/ginext"
	"github.com/wb-go/wbf/zlog"

	"github.com/musehub/event-notifier/internal/api/respond"
	"github.com/musehub/event-notifier/internal/repository/inbox"
)

type inboxStore interface {
	ListUnread(ctx context.Context, userID uuid.UUID) ([]inbox.Entry, error)
	CountUnread(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}

type Handler struct {
	store inboxStore
}

func NewHandler(store inboxStore) *Handler {
	return &Handler{store: store}
}

// ListUnread returns a user's unread in-app notifications and their count.
func (h *Handler) ListUnread(c *ginext.Context) {
	userID, err := uuid.Parse(c.Param("userID"))
	if err != nil || userID == uuid.Nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid user id"))
		return
	}

	entries, err := h.store.ListUnread(c.Request.Context(), userID)
	if err != nil {
		zlog.Logger.Error().Err(err).Str("user_id", userID.String()).Msg("failed to list inbox")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, map[string]interface{}{
		"count":   len(entries),
		"entries": entries,
	})
}

// MarkRead marks one inbox entry as read.
func (h *Handler) MarkRead(c *ginext.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		respond.Fail(c.Writer, http.StatusBadRequest, fmt.Errorf("invalid id"))
		return
	}

	if err := h.store.MarkRead(c.Request.Context(), id); err != nil {
		zlog.Logger.Error().Err(err).Str("id", id.String()).Msg("failed to mark inbox entry read")
		respond.Fail(c.Writer, http.StatusInternalServerError, fmt.Errorf("internal server error"))
		return
	}

	respond.OK(c.Writer, "marked read")
}

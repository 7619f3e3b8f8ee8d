package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/musehub/event-notifier/internal/api/handlers/event"
	"github.com/musehub/event-notifier/internal/api/handlers/inbox"
	"github.com/musehub/event-notifier/internal/api/handlers/notification"
	"github.com/musehub/event-notifier/internal/api/handlers/participant"
)

func New(
	notifHandler *notification.Handler,
	participantHandler *participant.Handler,
	eventHandler *event.Handler,
	inboxHandler *inbox.Handler,
) *ginext.Engine {
	e := ginext.New()
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	api := e.Group("/api")

	notify := api.Group("/notify")
	notify.POST("/", notifHandler.Schedule)
	notify.GET("/:id", notifHandler.GetStatus)
	notify.POST("/:id/retry", notifHandler.Retry)

	api.POST("/participants", participantHandler.Register)
	api.POST("/events/:id/updated", eventHandler.Updated)
	api.GET("/events/:id/notifications", notifHandler.ListForEvent)
	api.POST("/dispatch/run", notifHandler.RunDispatch)

	api.GET("/inbox/:userID", inboxHandler.ListUnread)
	api.POST("/inbox/:id/read", inboxHandler.MarkRead)

	return e
}

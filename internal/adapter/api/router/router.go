package router

import (
	"github.com/labstack/echo/v4"

	"dealsplit/internal/adapter/api/handler"
	"dealsplit/internal/adapter/api/middleware"
)

type Handlers struct {
	Health       *handler.HealthHandler
	User         *handler.UserHandler
	Request      *handler.RequestHandler
	Chat         *handler.ChatHandler
	Attachment   *handler.AttachmentHandler
	Notification *handler.NotificationHandler
	WebSocket    *handler.WebSocketHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	SetupHealthRouter(e, h.Health)
	SetupUserRouter(e, h.User, authMiddleware)
	SetupRequestRouter(e, h.Request, authMiddleware)
	SetupChatRouter(e, h.Chat, h.Attachment, authMiddleware)
	SetupNotificationRouter(e, h.Notification, authMiddleware)
	SetupWebSocketRouter(e, h.WebSocket)
}

package router

import (
	"github.com/labstack/echo/v4"

	"dealsplit/internal/adapter/api/handler"
	"dealsplit/internal/adapter/api/middleware"
)

func SetupNotificationRouter(e *echo.Echo, notificationHandler *handler.NotificationHandler, authMiddleware *middleware.AuthMiddleware) {
	group := e.Group("/v1/notifications")
	group.Use(authMiddleware.Authenticate)

	group.POST("/session", notificationHandler.StartSession)
	group.DELETE("/session", notificationHandler.EndSession)

	group.GET("", notificationHandler.List)
	group.PUT("/read-all", notificationHandler.MarkAllRead)
	group.PUT("/:id/read", notificationHandler.MarkRead)
	group.DELETE("/:id", notificationHandler.Dismiss)
	group.POST("/:id/reply", notificationHandler.Reply)
}

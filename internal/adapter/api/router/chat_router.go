package router

import (
	"github.com/labstack/echo/v4"

	"dealsplit/internal/adapter/api/handler"
	"dealsplit/internal/adapter/api/middleware"
)

// SetupChatRouter wires chat room, message and attachment routes.
func SetupChatRouter(e *echo.Echo, chatHandler *handler.ChatHandler, attachmentHandler *handler.AttachmentHandler, authMiddleware *middleware.AuthMiddleware) {
	chatGroup := e.Group("/v1/chats")
	chatGroup.Use(authMiddleware.Authenticate)

	chatGroup.POST("", chatHandler.OpenRoom)
	chatGroup.GET("", chatHandler.ListRooms)
	chatGroup.GET("/:id", chatHandler.GetRoom)
	chatGroup.PUT("/:id/read", chatHandler.MarkRoomAsRead)

	chatGroup.GET("/:id/messages", chatHandler.ListMessages)
	chatGroup.POST("/:id/messages", chatHandler.SendMessage)

	chatGroup.POST("/:id/attachments", attachmentHandler.Upload)
}

package handler

import (
	"github.com/labstack/echo/v4"

	"dealsplit/internal/usecase"
	"dealsplit/pkg/response"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

type replyRequest struct {
	RoomID    string `json:"room_id"`
	Text      string `json:"text" validate:"required"`
	ClientKey string `json:"client_key"`
}

// StartSession seeds the caller's notification session from recent chat
// history and returns the initial list.
func (h *NotificationHandler) StartSession(c echo.Context) error {
	userID := c.Get("uid").(string)

	notifications, err := h.notificationUseCase.StartSession(c.Request().Context(), userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"notifications": notifications,
	})
}

func (h *NotificationHandler) EndSession(c echo.Context) error {
	userID := c.Get("uid").(string)

	h.notificationUseCase.EndSession(userID)

	return response.Success(c, map[string]bool{"ended": true})
}

func (h *NotificationHandler) List(c echo.Context) error {
	userID := c.Get("uid").(string)

	notifications, unread, err := h.notificationUseCase.List(userID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"notifications": notifications,
		"unread_count":  unread,
	})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.notificationUseCase.MarkRead(userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"read": true})
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.notificationUseCase.MarkAllRead(userID); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"read": true})
}

func (h *NotificationHandler) Dismiss(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.notificationUseCase.Dismiss(userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"dismissed": true})
}

func (h *NotificationHandler) Reply(c echo.Context) error {
	var req replyRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.notificationUseCase.Reply(c.Request().Context(), userID, c.Param("id"), usecase.ReplyInput{
		RoomID:    req.RoomID,
		Text:      req.Text,
		ClientKey: req.ClientKey,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

package handler

import (
	"github.com/labstack/echo/v4"

	"dealsplit/internal/usecase"
	"dealsplit/pkg/response"
	"dealsplit/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type openRoomRequest struct {
	RequestID string `json:"request_id" validate:"required"`
}

type sendMessageRequest struct {
	Text           string `json:"text"`
	ClientKey      string `json:"client_key"`
	AttachmentURL  string `json:"attachment_url" validate:"omitempty,url"`
	AttachmentType string `json:"attachment_type"`
	AttachmentName string `json:"attachment_name"`
}

// OpenRoom gets or creates the chat room between the caller and the
// owner of a request.
func (h *ChatHandler) OpenRoom(c echo.Context) error {
	var req openRoomRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	room, err := h.chatUseCase.OpenRoom(c.Request().Context(), userID, usecase.OpenRoomInput{
		RequestID: req.RequestID,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, room)
}

func (h *ChatHandler) ListRooms(c echo.Context) error {
	page, pageSize, offset := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("pageSize"))

	userID := c.Get("uid").(string)

	rooms, total, err := h.chatUseCase.ListRooms(c.Request().Context(), userID, pageSize, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, rooms, total, page, pageSize)
}

func (h *ChatHandler) GetRoom(c echo.Context) error {
	userID := c.Get("uid").(string)

	room, err := h.chatUseCase.GetRoom(c.Request().Context(), userID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, room)
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	page, pageSize, offset := utils.ParsePagination(c.QueryParam("page"), c.QueryParam("pageSize"))

	userID := c.Get("uid").(string)

	messages, total, err := h.chatUseCase.ListMessages(c.Request().Context(), userID, c.Param("id"), pageSize, offset)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Paginated(c, messages, total, page, pageSize)
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	userID := c.Get("uid").(string)

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), userID, c.Param("id"), usecase.SendMessageInput{
		Text:           req.Text,
		ClientKey:      req.ClientKey,
		AttachmentURL:  req.AttachmentURL,
		AttachmentType: req.AttachmentType,
		AttachmentName: req.AttachmentName,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) MarkRoomAsRead(c echo.Context) error {
	userID := c.Get("uid").(string)

	if err := h.chatUseCase.MarkRead(c.Request().Context(), userID, c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]bool{"read": true})
}

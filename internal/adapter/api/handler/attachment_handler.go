package handler

import (
	"github.com/labstack/echo/v4"

	"dealsplit/internal/usecase"
	"dealsplit/pkg/errors"
	"dealsplit/pkg/response"
)

type AttachmentHandler struct {
	attachmentUseCase *usecase.AttachmentUseCase
}

func NewAttachmentHandler(attachmentUseCase *usecase.AttachmentUseCase) *AttachmentHandler {
	return &AttachmentHandler{
		attachmentUseCase: attachmentUseCase,
	}
}

// Upload accepts a multipart "file" field and stores it under the room's
// attachment prefix.
func (h *AttachmentHandler) Upload(c echo.Context) error {
	userID := c.Get("uid").(string)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return response.Error(c, errors.BadRequest("file field is required", err))
	}

	if fileHeader.Size > usecase.MaxAttachmentSize {
		return response.Error(c, errors.BadRequest("File exceeds the 50MB limit", nil))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return response.Error(c, errors.Internal("Failed to read uploaded file", err))
	}
	defer file.Close()

	result, err := h.attachmentUseCase.Upload(c.Request().Context(), userID, usecase.UploadAttachmentInput{
		RoomID:      c.Param("id"),
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		File:        file,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, result)
}

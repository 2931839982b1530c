package usecase

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"path"
	"strings"
	"time"

	"dealsplit/internal/domain/repository"
	"dealsplit/internal/domain/service"
	"dealsplit/pkg/errors"
)

// MaxAttachmentSize is the hard cap on chat uploads.
const MaxAttachmentSize = 50 * 1024 * 1024

var allowedAttachmentPrefixes = []string{
	"image/",
	"video/",
	"audio/",
}

var allowedAttachmentTypes = map[string]bool{
	"application/pdf":    true,
	"application/msword": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain":                   true,
	"application/zip":              true,
	"application/x-rar-compressed": true,
}

type AttachmentUseCase struct {
	chatRepo    repository.ChatRepository
	fileService service.FileUploadService
}

func NewAttachmentUseCase(chatRepo repository.ChatRepository, fileService service.FileUploadService) *AttachmentUseCase {
	return &AttachmentUseCase{
		chatRepo:    chatRepo,
		fileService: fileService,
	}
}

type UploadAttachmentInput struct {
	RoomID      string
	FileName    string
	ContentType string
	Size        int64
	File        io.Reader
}

type UploadAttachmentResult struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Type        string `json:"type"`
	FileName    string `json:"file_name"`
}

// Upload validates and stores one chat attachment, returning its public
// URL. It does not create a message; callers attach the URL to a send.
func (uc *AttachmentUseCase) Upload(ctx context.Context, userID string, input UploadAttachmentInput) (*UploadAttachmentResult, error) {
	room, err := uc.chatRepo.GetRoom(ctx, input.RoomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant of this chat room", nil)
	}

	if input.Size > MaxAttachmentSize {
		return nil, errors.BadRequest("File exceeds the 50MB limit", nil)
	}
	if !attachmentTypeAllowed(input.ContentType) {
		return nil, errors.BadRequest(fmt.Sprintf("File type %s is not allowed", input.ContentType), nil)
	}

	objectPath := attachmentObjectPath(input.RoomID, input.FileName)
	url, err := uc.fileService.UploadFile(ctx, input.File, input.ContentType, objectPath)
	if err != nil {
		return nil, errors.Internal("Failed to upload attachment", err)
	}

	return &UploadAttachmentResult{
		URL:         url,
		ContentType: input.ContentType,
		Type:        attachmentCategory(input.ContentType),
		FileName:    input.FileName,
	}, nil
}

// attachmentCategory maps a MIME type onto the coarse kind clients use
// to pick a preview widget.
func attachmentCategory(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return "image"
	case strings.HasPrefix(contentType, "video/"):
		return "video"
	case strings.HasPrefix(contentType, "audio/"):
		return "audio"
	case contentType == "application/pdf",
		contentType == "application/msword",
		contentType == "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		contentType == "text/plain":
		return "document"
	default:
		return "other"
	}
}

func attachmentTypeAllowed(contentType string) bool {
	for _, prefix := range allowedAttachmentPrefixes {
		if strings.HasPrefix(contentType, prefix) {
			return true
		}
	}
	return allowedAttachmentTypes[contentType]
}

func attachmentObjectPath(roomID, fileName string) string {
	ext := path.Ext(fileName)
	return fmt.Sprintf("chat-attachments/%s/%d-%d%s", roomID, time.Now().UnixMilli(), rand.Intn(1_000_000), ext)
}

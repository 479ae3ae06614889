package handler

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/dto"
	"github.com/tpo-cell/backend/internal/middleware"
	"github.com/tpo-cell/backend/internal/repository"
)

// ObjectStore is the part of storage.MinIOClient uploads need.
type ObjectStore interface {
	PresignPut(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	PresignGet(ctx context.Context, objectKey string, expiry time.Duration) (string, error)
	ObjectExists(ctx context.Context, objectKey string) (bool, error)
	DeleteObject(ctx context.Context, objectKey string) error
	PublicURL(objectKey string) string
}

const presignExpiry = 15 * time.Minute

type UploadHandler struct {
	store       ObjectStore
	studentRepo *repository.StudentRepository
	alumniRepo  *repository.AlumniRepository
	eventRepo   *repository.EventRepository

	mu      sync.Mutex
	pending map[string]*PendingUpload
}

type PendingUpload struct {
	ID         string
	UserID     uuid.UUID
	UploadType string
	ObjectKey  string
	OwnerID    uuid.UUID
	ExpiresAt  time.Time
	Confirmed  bool
}

var imageTypes = []string{"image/jpeg", "image/png", "image/webp"}
var documentTypes = []string{"application/pdf", "image/jpeg", "image/png"}

var uploadLimits = map[string]int64{
	"photo":            2 * 1024 * 1024,
	"offer_letter":     10 * 1024 * 1024,
	"id_card":          5 * 1024 * 1024,
	"alumni_id_card":   5 * 1024 * 1024,
	"event_attachment": 20 * 1024 * 1024,
}

var allowedTypes = map[string][]string{
	"photo":            imageTypes,
	"offer_letter":     documentTypes,
	"id_card":          documentTypes,
	"alumni_id_card":   documentTypes,
	"event_attachment": append([]string{"application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, documentTypes...),
}

var uploadPrefixes = map[string]string{
	"photo":            "students/photos",
	"offer_letter":     "students/offer-letters",
	"id_card":          "students/id-cards",
	"alumni_id_card":   "alumni/id-cards",
	"event_attachment": "events/attachments",
}

func NewUploadHandler(
	store ObjectStore,
	studentRepo *repository.StudentRepository,
	alumniRepo *repository.AlumniRepository,
	eventRepo *repository.EventRepository,
) *UploadHandler {
	return &UploadHandler{
		store:       store,
		studentRepo: studentRepo,
		alumniRepo:  alumniRepo,
		eventRepo:   eventRepo,
		pending:     make(map[string]*PendingUpload),
	}
}

func (h *UploadHandler) Presign(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("UNAUTHORIZED", "Not authenticated"))
	}

	var req dto.PresignRequest
	if resp := bindJSON(c, &req); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	maxSize := uploadLimits[req.UploadType]
	if req.FileSize > maxSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("FILE_TOO_LARGE", "File exceeds the size limit",
			dto.ErrorDetail{Field: "file_size", Message: fmt.Sprintf("%s must be at most %dMB", req.UploadType, maxSize/(1024*1024))},
		))
	}

	allowed := allowedTypes[req.UploadType]
	if !slices.Contains(allowed, req.ContentType) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_CONTENT_TYPE", "File type not allowed",
			dto.ErrorDetail{Field: "content_type", Message: "Allowed types: " + strings.Join(allowed, ", ")},
		))
	}

	ownerID, resp := h.resolveOwner(req)
	if resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}
	if err := h.ownerExists(req.UploadType, ownerID); err != nil {
		return lookupError(c, err, "OWNER_NOT_FOUND", ownerKind(req.UploadType))
	}

	objectKey := fmt.Sprintf("%s/%s/%s%s", uploadPrefixes[req.UploadType], ownerID, uuid.New(), strings.ToLower(filepath.Ext(req.Filename)))

	presignedURL, err := h.store.PresignPut(c.UserContext(), objectKey, presignExpiry)
	if err != nil {
		return internalError(c, "Failed to generate presigned URL")
	}

	uploadID := uuid.New().String()
	h.mu.Lock()
	h.pruneLocked(time.Now())
	h.pending[uploadID] = &PendingUpload{
		ID:         uploadID,
		UserID:     *userID,
		UploadType: req.UploadType,
		ObjectKey:  objectKey,
		OwnerID:    ownerID,
		ExpiresAt:  time.Now().Add(presignExpiry),
	}
	h.mu.Unlock()

	return c.JSON(dto.SuccessResponse(dto.PresignResponse{
		UploadID:     uploadID,
		PresignedURL: presignedURL,
		ObjectKey:    objectKey,
		ExpiresIn:    int(presignExpiry.Seconds()),
		Method:       "PUT",
		Headers:      map[string]string{"Content-Type": req.ContentType},
	}, ""))
}

func (h *UploadHandler) Confirm(c *fiber.Ctx) error {
	userID := middleware.GetUserID(c)
	if userID == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse("UNAUTHORIZED", "Not authenticated"))
	}

	var req dto.ConfirmUploadRequest
	if resp := bindJSON(c, &req); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	h.mu.Lock()
	pending, ok := h.pending[req.UploadID]
	h.mu.Unlock()
	if !ok || pending.ExpiresAt.Before(time.Now()) || pending.ObjectKey != req.ObjectKey {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse("UPLOAD_NOT_FOUND", "Upload not found or expired"))
	}
	if pending.Confirmed {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("UPLOAD_ALREADY_CONFIRMED", "Upload was already confirmed"))
	}
	if pending.UserID != *userID {
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse("FORBIDDEN", "Upload belongs to another user"))
	}

	exists, err := h.store.ObjectExists(c.UserContext(), pending.ObjectKey)
	if err != nil || !exists {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("OBJECT_NOT_FOUND", "File not found in storage, upload it before confirming"))
	}

	publicURL := h.store.PublicURL(pending.ObjectKey)
	if err := h.attach(pending.UploadType, pending.OwnerID, publicURL); err != nil {
		return lookupError(c, err, "OWNER_NOT_FOUND", ownerKind(pending.UploadType))
	}

	h.mu.Lock()
	pending.Confirmed = true
	h.mu.Unlock()

	ownerID := pending.OwnerID
	return c.JSON(dto.SuccessResponse(dto.ConfirmUploadResponse{
		Type:      pending.UploadType,
		URL:       publicURL,
		ObjectKey: pending.ObjectKey,
		OwnerID:   &ownerID,
	}, "Upload confirmed"))
}

func (h *UploadHandler) PresignView(c *fiber.Ctx) error {
	objectKey := c.Query("object_key")
	if objectKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("VALIDATION_ERROR", "object_key is required"))
	}

	url, err := h.store.PresignGet(c.UserContext(), objectKey, time.Hour)
	if err != nil {
		return internalError(c, "Failed to generate presigned URL")
	}
	return c.JSON(dto.SuccessResponse(dto.PresignViewResponse{URL: url, ExpiresIn: 3600}, ""))
}

func (h *UploadHandler) Delete(c *fiber.Ctx) error {
	objectKey := c.Params("*")
	if objectKey == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("VALIDATION_ERROR", "Invalid object key"))
	}

	if err := h.store.DeleteObject(c.UserContext(), objectKey); err != nil {
		return internalError(c, "Failed to delete file")
	}
	return c.JSON(dto.SuccessResponse(nil, "File deleted"))
}

func (h *UploadHandler) pruneLocked(now time.Time) {
	for id, p := range h.pending {
		if p.ExpiresAt.Before(now) {
			delete(h.pending, id)
		}
	}
}

func ownerKind(uploadType string) string {
	switch uploadType {
	case "alumni_id_card":
		return "alumni"
	case "event_attachment":
		return "event"
	default:
		return "student"
	}
}

func (h *UploadHandler) resolveOwner(req dto.PresignRequest) (uuid.UUID, *dto.Response) {
	var id *uuid.UUID
	var field string
	switch ownerKind(req.UploadType) {
	case "alumni":
		id, field = req.AlumniID, "alumni_id"
	case "event":
		id, field = req.EventID, "event_id"
	default:
		id, field = req.StudentID, "student_id"
	}
	if id == nil {
		resp := dto.ErrorResponse("VALIDATION_ERROR", field+" is required",
			dto.ErrorDetail{Field: field, Message: field + " is required"},
		)
		return uuid.Nil, &resp
	}
	return *id, nil
}

func (h *UploadHandler) ownerExists(uploadType string, id uuid.UUID) error {
	var err error
	switch ownerKind(uploadType) {
	case "alumni":
		_, err = h.alumniRepo.FindByID(id)
	case "event":
		_, err = h.eventRepo.FindByID(id)
	default:
		_, err = h.studentRepo.FindByID(id)
	}
	return err
}

// attach stores url on the field the upload type targets.
func (h *UploadHandler) attach(uploadType string, ownerID uuid.UUID, url string) error {
	switch uploadType {
	case "alumni_id_card":
		alumni, err := h.alumniRepo.FindByID(ownerID)
		if err != nil {
			return err
		}
		alumni.IDCardURL = &url
		return h.alumniRepo.Update(alumni)
	case "event_attachment":
		event, err := h.eventRepo.FindByID(ownerID)
		if err != nil {
			return err
		}
		event.AttachmentURL = &url
		return h.eventRepo.Update(event)
	}

	student, err := h.studentRepo.FindByID(ownerID)
	if err != nil {
		return err
	}
	switch uploadType {
	case "photo":
		student.PhotoURL = &url
	case "offer_letter":
		student.OfferLetterURL = &url
	case "id_card":
		student.IDCardURL = &url
	}
	return h.studentRepo.Update(student)
}

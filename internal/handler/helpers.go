package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/tpo-cell/backend/internal/dto"
	"gorm.io/gorm"
)

const maxPageSize = 100

func pagination(c *fiber.Ctx) (page, limit int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	limit, _ = strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 20
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return page, limit
}

func queryInt(c *fiber.Ctx, key string) *int {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &n
}

func queryBool(c *fiber.Ctx, key string) *bool {
	raw := c.Query(key)
	if raw == "" {
		return nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &b
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Params(name))
	return id, err == nil
}

func invalidID(c *fiber.Ctx, name string) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("VALIDATION_ERROR", "Invalid "+name))
}

// bindJSON parses and validates the body into req. A non-nil response is
// the 400 to send back.
func bindJSON(c *fiber.Ctx, req interface{}) *dto.Response {
	if err := c.BodyParser(req); err != nil {
		resp := dto.ErrorResponse("VALIDATION_ERROR", "Invalid request body")
		return &resp
	}
	if details := dto.Validate(req); details != nil {
		resp := dto.ErrorResponse("VALIDATION_ERROR", "Invalid request body", details...)
		return &resp
	}
	return nil
}

func lookupError(c *fiber.Ctx, err error, code, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse(code, what+" not found"))
	}
	return internalError(c, "Failed to load "+what)
}

func internalError(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse("INTERNAL_ERROR", message))
}

func conflict(c *fiber.Ctx, code, message string) error {
	return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse(code, message))
}

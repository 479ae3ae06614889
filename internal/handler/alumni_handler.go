package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tpo-cell/backend/internal/domain"
	"github.com/tpo-cell/backend/internal/dto"
	"github.com/tpo-cell/backend/internal/repository"
)

type AlumniHandler struct {
	alumniRepo *repository.AlumniRepository
}

func NewAlumniHandler(alumniRepo *repository.AlumniRepository) *AlumniHandler {
	return &AlumniHandler{alumniRepo: alumniRepo}
}

func (h *AlumniHandler) List(c *fiber.Ctx) error {
	page, limit := pagination(c)
	filter := repository.AlumniFilter{
		Search:        c.Query("search"),
		PassOutYear:   queryInt(c, "pass_out_year"),
		CurrentStatus: c.Query("current_status"),
	}

	alumni, total, err := h.alumniRepo.List(filter, page, limit)
	if err != nil {
		return internalError(c, "Failed to list alumni")
	}
	return c.JSON(dto.SuccessWithMeta(alumni, dto.NewMeta(page, limit, total)))
}

func (h *AlumniHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	alumni, err := h.alumniRepo.FindByID(id)
	if err != nil {
		return lookupError(c, err, "ALUMNI_NOT_FOUND", "alumni")
	}
	return c.JSON(dto.SuccessResponse(alumni, ""))
}

func (h *AlumniHandler) Create(c *fiber.Ctx) error {
	var req dto.AlumniRequest
	if resp := bindJSON(c, &req); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	exists, err := h.alumniRepo.RollNumberExists(req.RollNumber, nil)
	if err != nil {
		return internalError(c, "Failed to check roll number")
	}
	if exists {
		return conflict(c, "ROLL_NUMBER_EXISTS", "An alumni record with this roll number already exists")
	}

	var alumni domain.Alumni
	req.Apply(&alumni)
	if err := h.alumniRepo.Create(&alumni); err != nil {
		return internalError(c, "Failed to create alumni")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(alumni, "Alumni created"))
}

func (h *AlumniHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	var req dto.AlumniRequest
	if resp := bindJSON(c, &req); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	alumni, err := h.alumniRepo.FindByID(id)
	if err != nil {
		return lookupError(c, err, "ALUMNI_NOT_FOUND", "alumni")
	}

	exists, err := h.alumniRepo.RollNumberExists(req.RollNumber, &id)
	if err != nil {
		return internalError(c, "Failed to check roll number")
	}
	if exists {
		return conflict(c, "ROLL_NUMBER_EXISTS", "An alumni record with this roll number already exists")
	}

	req.Apply(alumni)
	if err := h.alumniRepo.Update(alumni); err != nil {
		return internalError(c, "Failed to update alumni")
	}
	return c.JSON(dto.SuccessResponse(alumni, "Alumni updated"))
}

func (h *AlumniHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	if _, err := h.alumniRepo.FindByID(id); err != nil {
		return lookupError(c, err, "ALUMNI_NOT_FOUND", "alumni")
	}
	if err := h.alumniRepo.Delete(id); err != nil {
		return internalError(c, "Failed to delete alumni")
	}
	return c.JSON(dto.SuccessResponse(nil, "Alumni deleted"))
}

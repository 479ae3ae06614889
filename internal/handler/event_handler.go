package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/tpo-cell/backend/internal/domain"
	"github.com/tpo-cell/backend/internal/dto"
	"github.com/tpo-cell/backend/internal/repository"
)

type EventHandler struct {
	eventRepo      *repository.EventRepository
	attendanceRepo *repository.AttendanceRepository
}

func NewEventHandler(eventRepo *repository.EventRepository, attendanceRepo *repository.AttendanceRepository) *EventHandler {
	return &EventHandler{
		eventRepo:      eventRepo,
		attendanceRepo: attendanceRepo,
	}
}

func (h *EventHandler) List(c *fiber.Ctx) error {
	page, limit := pagination(c)

	events, total, err := h.eventRepo.List(c.Query("search"), c.Query("company"), page, limit)
	if err != nil {
		return internalError(c, "Failed to list events")
	}
	return c.JSON(dto.SuccessWithMeta(events, dto.NewMeta(page, limit, total)))
}

func (h *EventHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	event, err := h.eventRepo.FindByID(id)
	if err != nil {
		return lookupError(c, err, "EVENT_NOT_FOUND", "event")
	}
	count, err := h.attendanceRepo.CountByEvent(id)
	if err != nil {
		return internalError(c, "Failed to count attendance")
	}
	return c.JSON(dto.SuccessResponse(dto.EventDetailDTO{Event: *event, AttendanceCount: count}, ""))
}

func (h *EventHandler) Create(c *fiber.Ctx) error {
	var req dto.EventRequest
	if resp := bindJSON(c, &req); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	var event domain.Event
	req.Apply(&event)
	if err := h.eventRepo.Create(&event); err != nil {
		return internalError(c, "Failed to create event")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(event, "Event created"))
}

func (h *EventHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	var req dto.EventRequest
	if resp := bindJSON(c, &req); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	event, err := h.eventRepo.FindByID(id)
	if err != nil {
		return lookupError(c, err, "EVENT_NOT_FOUND", "event")
	}

	req.Apply(event)
	if err := h.eventRepo.Update(event); err != nil {
		return internalError(c, "Failed to update event")
	}
	return c.JSON(dto.SuccessResponse(event, "Event updated"))
}

func (h *EventHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	if _, err := h.eventRepo.FindByID(id); err != nil {
		return lookupError(c, err, "EVENT_NOT_FOUND", "event")
	}
	if err := h.eventRepo.Delete(id); err != nil {
		return internalError(c, "Failed to delete event")
	}
	return c.JSON(dto.SuccessResponse(nil, "Event deleted"))
}

// Attendance

func (h *EventHandler) ListAttendance(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}
	if _, err := h.eventRepo.FindByID(id); err != nil {
		return lookupError(c, err, "EVENT_NOT_FOUND", "event")
	}

	attendance, err := h.attendanceRepo.ListByEvent(id)
	if err != nil {
		return internalError(c, "Failed to list attendance")
	}
	return c.JSON(dto.SuccessResponse(attendance, ""))
}

// MarkAttendance records a student at the event; marking twice updates the entry.
func (h *EventHandler) MarkAttendance(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	var req dto.AttendanceRequest
	if resp := bindJSON(c, &req); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	if _, err := h.eventRepo.FindByID(id); err != nil {
		return lookupError(c, err, "EVENT_NOT_FOUND", "event")
	}

	attendance := &domain.Attendance{
		EventID:     id,
		RollNumber:  req.RollNumber,
		StudentName: req.StudentName,
		Branch:      req.Branch,
		Year:        req.Year,
	}
	if err := h.attendanceRepo.Upsert(attendance); err != nil {
		return internalError(c, "Failed to record attendance")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(attendance, "Attendance recorded"))
}

func (h *EventHandler) DeleteAttendance(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	if err := h.attendanceRepo.Delete(id); err != nil {
		return lookupError(c, err, "ATTENDANCE_NOT_FOUND", "attendance")
	}
	return c.JSON(dto.SuccessResponse(nil, "Attendance deleted"))
}

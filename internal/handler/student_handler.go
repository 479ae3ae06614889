package handler

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/tpo-cell/backend/internal/domain"
	"github.com/tpo-cell/backend/internal/dto"
	"github.com/tpo-cell/backend/internal/repository"
	"github.com/tpo-cell/backend/internal/service"
)

type StudentHandler struct {
	studentRepo *repository.StudentRepository
	exporter    *service.ExportService
}

func NewStudentHandler(studentRepo *repository.StudentRepository, exporter *service.ExportService) *StudentHandler {
	return &StudentHandler{
		studentRepo: studentRepo,
		exporter:    exporter,
	}
}

func (h *StudentHandler) List(c *fiber.Ctx) error {
	page, limit := pagination(c)
	filter := repository.StudentFilter{
		Search:   c.Query("search"),
		Branch:   c.Query("branch"),
		Year:     queryInt(c, "year"),
		Batch:    c.Query("batch"),
		Selected: queryBool(c, "selected"),
	}

	students, total, err := h.studentRepo.List(filter, page, limit)
	if err != nil {
		return internalError(c, "Failed to list students")
	}

	return c.JSON(dto.SuccessWithMeta(students, dto.NewMeta(page, limit, total)))
}

func (h *StudentHandler) Get(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	student, err := h.studentRepo.FindByID(id)
	if err != nil {
		return lookupError(c, err, "STUDENT_NOT_FOUND", "student")
	}
	return c.JSON(dto.SuccessResponse(student, ""))
}

func (h *StudentHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateStudentRequest
	if resp := bindJSON(c, &req); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	exists, err := h.studentRepo.RollNumberExists(req.RollNumber, nil)
	if err != nil {
		return internalError(c, "Failed to check roll number")
	}
	if exists {
		return conflict(c, "ROLL_NUMBER_EXISTS", "A student with this roll number already exists")
	}

	student := req.Model()
	if err := h.studentRepo.Create(student); err != nil {
		return internalError(c, "Failed to create student")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(student, "Student created"))
}

func (h *StudentHandler) Update(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	var req dto.UpdateStudentRequest
	if resp := bindJSON(c, &req); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	student, err := h.studentRepo.FindByID(id)
	if err != nil {
		return lookupError(c, err, "STUDENT_NOT_FOUND", "student")
	}

	req.Apply(student)
	if err := h.studentRepo.Update(student); err != nil {
		return internalError(c, "Failed to update student")
	}
	return c.JSON(dto.SuccessResponse(student, "Student updated"))
}

func (h *StudentHandler) Delete(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	if _, err := h.studentRepo.FindByID(id); err != nil {
		return lookupError(c, err, "STUDENT_NOT_FOUND", "student")
	}
	if err := h.studentRepo.Delete(id); err != nil {
		return internalError(c, "Failed to delete student")
	}
	return c.JSON(dto.SuccessResponse(nil, "Student deleted"))
}

// Drives

func (h *StudentHandler) ListDrives(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}
	if _, err := h.studentRepo.FindByID(id); err != nil {
		return lookupError(c, err, "STUDENT_NOT_FOUND", "student")
	}

	drives, err := h.studentRepo.ListDrives(id)
	if err != nil {
		return internalError(c, "Failed to list drives")
	}
	return c.JSON(dto.SuccessResponse(drives, ""))
}

func (h *StudentHandler) CreateDrive(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}

	var req dto.CreateDriveRequest
	if resp := bindJSON(c, &req); resp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(resp)
	}

	if _, err := h.studentRepo.FindByID(id); err != nil {
		return lookupError(c, err, "STUDENT_NOT_FOUND", "student")
	}

	drives := []domain.Drive{req.Model()}
	drives[0].StudentID = id
	if err := h.studentRepo.CreateDrives(drives); err != nil {
		return internalError(c, "Failed to create drive")
	}
	return c.Status(fiber.StatusCreated).JSON(dto.SuccessResponse(drives[0], "Drive recorded"))
}

func (h *StudentHandler) DeleteDrive(c *fiber.Ctx) error {
	id, ok := paramID(c, "id")
	if !ok {
		return invalidID(c, "id")
	}
	driveID, ok := paramID(c, "drive_id")
	if !ok {
		return invalidID(c, "drive_id")
	}

	if err := h.studentRepo.DeleteDrive(id, driveID); err != nil {
		return lookupError(c, err, "DRIVE_NOT_FOUND", "drive")
	}
	return c.JSON(dto.SuccessResponse(nil, "Drive deleted"))
}

// Export streams every student in the students import layout, XLSX by
// default or CSV with ?format=csv.
func (h *StudentHandler) Export(c *fiber.Ctx) error {
	var buf bytes.Buffer
	stamp := time.Now().Format("20060102")

	if c.Query("format") == "csv" {
		if err := h.exporter.WriteStudentsCSV(c.UserContext(), &buf); err != nil {
			return internalError(c, "Failed to export students")
		}
		c.Set("Content-Type", "text/csv")
		c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=students_%s.csv", stamp))
		return c.Send(buf.Bytes())
	}

	if err := h.exporter.WriteStudentsXLSX(c.UserContext(), &buf); err != nil {
		return internalError(c, "Failed to export students")
	}
	c.Set("Content-Type", xlsxContentType)
	c.Set("Content-Disposition", fmt.Sprintf("attachment; filename=students_%s.xlsx", stamp))
	return c.Send(buf.Bytes())
}

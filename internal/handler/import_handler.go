package handler

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"mime"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/tpo-cell/backend/internal/dto"
	"github.com/tpo-cell/backend/internal/importer"
	"github.com/tpo-cell/backend/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Content types browsers and spreadsheet tools send for .csv files.
var genericCSVTypes = map[string]bool{
	"":                         true,
	"application/octet-stream": true,
	"application/vnd.ms-excel": true,
	"application/csv":          true,
	"text/plain":               true,
}

type ImportHandler struct {
	importService *service.ImportService
	maxFileSize   int64
}

func NewImportHandler(importService *service.ImportService, maxFileSize int64) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		maxFileSize:   maxFileSize,
	}
}

// Kinds lists the supported import types and their columns.
func (h *ImportHandler) Kinds(c *fiber.Ctx) error {
	kinds := make([]dto.ImportKindDTO, 0, len(importer.Kinds))
	for _, k := range importer.Kinds {
		schema, err := importer.SchemaFor(k)
		if err != nil {
			continue
		}
		kinds = append(kinds, dto.ImportKindDTO{
			Type:     string(k),
			Required: schema.Required,
			Optional: schema.Optional,
		})
	}
	return c.JSON(dto.SuccessResponse(kinds, ""))
}

// Import handles POST /import/:type with a multipart "file" field.
func (h *ImportHandler) Import(c *fiber.Ctx) error {
	kind, err := importer.ParseKind(c.Params("type"))
	if err != nil {
		return invalidImportType(c)
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_FILE", "File not found in request"))
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("FILE_TOO_LARGE",
			fmt.Sprintf("File must be at most %dMB", h.maxFileSize/(1024*1024)),
		))
	}

	if !isCSVUpload(file) {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_FILE_TYPE", "File must be a CSV"))
	}

	f, err := file.Open()
	if err != nil {
		return internalError(c, "Failed to open file")
	}
	defer f.Close()

	result, err := h.importService.Import(c.UserContext(), service.ImportRequest{
		Kind:    kind,
		Reader:  f,
		DryRun:  c.FormValue("dry_run") == "true",
		EventID: c.FormValue("event_id", c.Query("event_id")),
	})
	if err != nil {
		if errors.Is(err, importer.ErrEmptyFile) || errors.Is(err, importer.ErrNoHeader) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("EMPTY_FILE", result.Message))
		}
		log.Printf("[Import] %s upload %q failed: %v", kind, file.Filename, err)
		return internalError(c, "Failed to import file")
	}

	return c.JSON(dto.SuccessResponse(result, result.Message))
}

// DownloadTemplate serves the CSV skeleton for a type, or XLSX with
// ?format=xlsx.
func (h *ImportHandler) DownloadTemplate(c *fiber.Ctx) error {
	kind, err := importer.ParseKind(c.Params("type"))
	if err != nil {
		return invalidImportType(c)
	}

	if c.Query("format") == "xlsx" {
		var buf bytes.Buffer
		if err := importer.WriteTemplateXLSX(&buf, kind); err != nil {
			return internalError(c, "Failed to build template")
		}
		c.Set("Content-Type", xlsxContentType)
		c.Set("Content-Disposition", "attachment; filename="+importer.TemplateFilename(kind, "xlsx"))
		return c.Send(buf.Bytes())
	}

	template, err := importer.Template(kind)
	if err != nil {
		return invalidImportType(c)
	}
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename="+importer.TemplateFilename(kind, "csv"))
	return c.SendString(template)
}

func invalidImportType(c *fiber.Ctx) error {
	names := make([]string, len(importer.Kinds))
	for i, k := range importer.Kinds {
		names[i] = string(k)
	}
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse("INVALID_IMPORT_TYPE",
		"Import type must be one of: "+strings.Join(names, ", "),
	))
}

// isCSVUpload accepts text/csv outright, and a .csv filename when the
// client only sent a generic type.
func isCSVUpload(file *multipart.FileHeader) bool {
	mediaType, _, err := mime.ParseMediaType(file.Header.Get("Content-Type"))
	if err != nil {
		mediaType = ""
	}
	mediaType = strings.ToLower(mediaType)
	if mediaType == "text/csv" {
		return true
	}
	isCSVName := strings.EqualFold(filepath.Ext(file.Filename), ".csv")
	return isCSVName && genericCSVTypes[mediaType]
}

package controllers

import (
	"bytes"

	"absensi_go/services"
	"absensi_go/services/websocket"

	"github.com/gofiber/fiber/v2"
)

// StudentImportController handles roster import from XLSX and the template
// download operators fill in.
type StudentImportController struct {
	Service *services.ImportService
	Hub     *websocket.Hub
}

func NewStudentImportController(importSvc *services.ImportService, hub *websocket.Hub) *StudentImportController {
	return &StudentImportController{Service: importSvc, Hub: hub}
}

// POST /api/students/import
// Multipart form with file field: file
func (ic *StudentImportController) Import(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "cannot open file"})
	}
	defer file.Close()

	result, err := ic.Service.ImportStudents(c.Context(), file)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if result.Imported > 0 {
		ic.Hub.Broadcast(websocket.Event{Type: "roster_updated"})
	}
	return c.JSON(result)
}

// GET /api/students/template
func (ic *StudentImportController) DownloadTemplate(c *fiber.Ctx) error {
	f, err := ic.Service.TemplateWorkbook()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to build template"})
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to write template"})
	}

	c.Set(fiber.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="Template_Siswa.xlsx"`)
	return c.Send(buf.Bytes())
}

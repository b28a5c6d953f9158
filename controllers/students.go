package controllers

import (
	"absensi_go/models"
	"absensi_go/services"
	"absensi_go/services/websocket"

	"github.com/gofiber/fiber/v2"
)

type StudentController struct {
	Sync *services.SyncService
	Hub  *websocket.Hub
}

func NewStudentController(sync *services.SyncService, hub *websocket.Hub) *StudentController {
	return &StudentController{Sync: sync, Hub: hub}
}

// GetStudents returns the roster, optionally filtered by class
func (sc *StudentController) GetStudents(c *fiber.Ctx) error {
	students := sc.Sync.LoadStudents(c.Context())

	if class := c.Query("class"); class != "" && class != services.FilterAll {
		filtered := make([]models.Student, 0, len(students))
		for _, s := range students {
			if s.ClassName == class {
				filtered = append(filtered, s)
			}
		}
		students = filtered
	}
	models.SortStudents(students)

	return c.JSON(fiber.Map{
		"students": students,
		"total":    len(students),
	})
}

// GetClasses returns the distinct class labels of the roster, for filter UIs
func (sc *StudentController) GetClasses(c *fiber.Ctx) error {
	students := sc.Sync.LoadStudents(c.Context())
	seen := make(map[string]bool)
	classes := make([]string, 0)
	models.SortStudents(students)
	for _, s := range students {
		if s.ClassName != "" && !seen[s.ClassName] {
			seen[s.ClassName] = true
			classes = append(classes, s.ClassName)
		}
	}
	return c.JSON(fiber.Map{"classes": classes})
}

// UpsertStudent creates or replaces one roster entry by NIS
func (sc *StudentController) UpsertStudent(c *fiber.Ctx) error {
	var student models.Student
	if err := c.BodyParser(&student); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(student); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	students := sc.Sync.LoadStudents(c.Context())
	replaced := false
	for i := range students {
		if students[i].ID == student.ID {
			students[i] = student
			replaced = true
			break
		}
	}
	if !replaced {
		students = append(students, student)
	}
	models.SortStudents(students)

	if err := sc.Sync.SaveStudents(c.Context(), students); err != nil {
		// already durable locally; flag the degraded sync to the caller
		sc.Hub.Broadcast(websocket.Event{Type: "roster_updated"})
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"student": student,
			"warning": "Saved locally, remote sync failed",
		})
	}

	sc.Hub.Broadcast(websocket.Event{Type: "roster_updated"})
	status := fiber.StatusOK
	if !replaced {
		status = fiber.StatusCreated
	}
	return c.Status(status).JSON(fiber.Map{"student": student})
}

// SaveRoster replaces the whole student roster in one call
func (sc *StudentController) SaveRoster(c *fiber.Ctx) error {
	var body struct {
		Students []models.Student `json:"students"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	for _, s := range body.Students {
		if err := validate.Struct(s); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
	}
	models.SortStudents(body.Students)

	if err := sc.Sync.SaveStudents(c.Context(), body.Students); err != nil {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"total":   len(body.Students),
			"warning": "Saved locally, remote sync failed",
		})
	}
	sc.Hub.Broadcast(websocket.Event{Type: "roster_updated"})
	return c.JSON(fiber.Map{"total": len(body.Students)})
}

// DeleteStudent removes one roster entry by NIS
func (sc *StudentController) DeleteStudent(c *fiber.Ctx) error {
	id := c.Params("id")
	students := sc.Sync.LoadStudents(c.Context())
	kept := make([]models.Student, 0, len(students))
	for _, s := range students {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(students) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	if err := sc.Sync.SaveStudents(c.Context(), kept); err != nil {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"warning": "Deleted locally, remote sync failed"})
	}
	sc.Hub.Broadcast(websocket.Event{Type: "roster_updated"})
	return c.JSON(fiber.Map{"message": "Student deleted"})
}

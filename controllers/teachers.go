package controllers

import (
	"absensi_go/models"
	"absensi_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type TeacherController struct {
	Sync *services.SyncService
}

func NewTeacherController(sync *services.SyncService) *TeacherController {
	return &TeacherController{Sync: sync}
}

// GetTeachers returns the staff roster
func (tc *TeacherController) GetTeachers(c *fiber.Ctx) error {
	teachers := tc.Sync.LoadTeachers(c.Context())
	return c.JSON(fiber.Map{
		"teachers": teachers,
		"total":    len(teachers),
	})
}

// CreateTeacher appends a staff entry with a generated id and resaves the
// full list
func (tc *TeacherController) CreateTeacher(c *fiber.Ctx) error {
	var teacher models.Teacher
	if err := c.BodyParser(&teacher); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(teacher); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	teacher.ID = "t_" + uuid.NewString()
	teachers := append(tc.Sync.LoadTeachers(c.Context()), teacher)

	if err := tc.Sync.SaveTeachers(c.Context(), teachers); err != nil {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"teacher": teacher,
			"warning": "Saved locally, remote sync failed",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"teacher": teacher})
}

// DeleteTeacher removes one staff entry
func (tc *TeacherController) DeleteTeacher(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := tc.Sync.DeleteTeacher(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete teacher"})
	}
	return c.JSON(fiber.Map{"message": "Teacher deleted"})
}

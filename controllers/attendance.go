package controllers

import (
	"errors"
	"fmt"

	"absensi_go/middleware"
	"absensi_go/models"
	"absensi_go/services"
	"absensi_go/services/websocket"

	"github.com/gofiber/fiber/v2"
)

type AttendanceController struct {
	Sync *services.SyncService
	Hub  *websocket.Hub
}

func NewAttendanceController(sync *services.SyncService, hub *websocket.Hub) *AttendanceController {
	return &AttendanceController{Sync: sync, Hub: hub}
}

// GetAttendance returns the attendance log, newest first. Parents only see
// their own child's records.
func (ac *AttendanceController) GetAttendance(c *fiber.Ctx) error {
	records := ac.Sync.LoadAttendance(c.Context())

	if claims, ok := middleware.GetClaims(c); ok && claims.Role == models.RoleParent {
		own := make([]models.AttendanceRecord, 0)
		for _, r := range records {
			if r.StudentID == claims.StudentID {
				own = append(own, r)
			}
		}
		records = own
	}

	return c.JSON(fiber.Map{
		"records": records,
		"total":   len(records),
	})
}

type createAttendanceRequest struct {
	StudentID string                  `json:"studentId" validate:"required"`
	Status    models.AttendanceStatus `json:"status"`
}

// CreateAttendance records presence for one student today. The operator name
// comes from the session, matching what the record keeps for audit. Duplicate
// same-day records are rejected without mutation.
func (ac *AttendanceController) CreateAttendance(c *fiber.Ctx) error {
	var req createAttendanceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if req.Status == "" {
		req.Status = models.StatusPresent
	}
	if !req.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Status must be PRESENT or HAID"})
	}

	var student *models.Student
	for _, s := range ac.Sync.LoadStudents(c.Context()) {
		if s.ID == req.StudentID {
			st := s
			student = &st
			break
		}
	}
	if student == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Student not found"})
	}

	operator := "System"
	if claims, ok := middleware.GetClaims(c); ok {
		operator = claims.Username
	}

	record, err := ac.Sync.CreateAttendance(c.Context(), *student, operator, req.Status)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateAttendance) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": fmt.Sprintf("%s sudah absen hari ini", student.Name),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to record attendance"})
	}

	ac.Hub.Broadcast(websocket.Event{Type: "attendance_created", Data: record})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"record": record})
}

// DeleteAttendance removes one record (no-op when the id is unknown)
func (ac *AttendanceController) DeleteAttendance(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := ac.Sync.DeleteAttendance(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete record"})
	}
	ac.Hub.Broadcast(websocket.Event{Type: "attendance_deleted", Data: fiber.Map{"id": id}})
	return c.JSON(fiber.Map{"message": "Record deleted"})
}

type updateStatusRequest struct {
	Status models.AttendanceStatus `json:"status" validate:"required,oneof=PRESENT HAID"`
}

// UpdateAttendanceStatus toggles a record between PRESENT and HAID
func (ac *AttendanceController) UpdateAttendanceStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	var req updateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := ac.Sync.UpdateAttendanceStatus(c.Context(), id, req.Status); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	ac.Hub.Broadcast(websocket.Event{Type: "attendance_updated", Data: fiber.Map{"id": id, "status": req.Status}})
	return c.JSON(fiber.Map{"message": "Status updated"})
}

package controllers

import (
	"time"

	"absensi_go/models"
	"absensi_go/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type SettingsController struct {
	Sync *services.SyncService
}

func NewSettingsController(sync *services.SyncService) *SettingsController {
	return &SettingsController{Sync: sync}
}

// GetConfig returns the school configuration singleton
func (sc *SettingsController) GetConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"config": sc.Sync.LoadSchoolConfig(c.Context())})
}

// SaveConfig replaces the school configuration
func (sc *SettingsController) SaveConfig(c *fiber.Ctx) error {
	var cfg models.SchoolConfig
	if err := c.BodyParser(&cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(cfg); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}

	if err := sc.Sync.SaveSchoolConfig(c.Context(), cfg); err != nil {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"config":  cfg,
			"warning": "Saved locally, remote sync failed",
		})
	}
	return c.JSON(fiber.Map{"config": cfg})
}

// GetHolidays returns the manual holiday list, newest first
func (sc *SettingsController) GetHolidays(c *fiber.Ctx) error {
	holidays := sc.Sync.LoadHolidays(c.Context())
	return c.JSON(fiber.Map{
		"holidays": holidays,
		"total":    len(holidays),
	})
}

// CreateHoliday adds one holiday with a generated id
func (sc *SettingsController) CreateHoliday(c *fiber.Ctx) error {
	var holiday models.Holiday
	if err := c.BodyParser(&holiday); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validate.Struct(holiday); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	if _, err := time.Parse(models.DateLayout, holiday.Date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Date must be YYYY-MM-DD"})
	}

	holiday.ID = uuid.NewString()
	holidays := append(sc.Sync.LoadHolidays(c.Context()), holiday)

	if err := sc.Sync.SaveHolidays(c.Context(), holidays); err != nil {
		return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
			"holiday": holiday,
			"warning": "Saved locally, remote sync failed",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"holiday": holiday})
}

// DeleteHoliday removes one holiday
func (sc *SettingsController) DeleteHoliday(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := sc.Sync.DeleteHoliday(c.Context(), id); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to delete holiday"})
	}
	return c.JSON(fiber.Map{"message": "Holiday deleted"})
}

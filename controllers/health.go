package controllers

import (
	"absensi_go/config"
	"absensi_go/services"

	"github.com/gofiber/fiber/v2"
)

type HealthController struct {
	Sync *services.SyncService
}

func NewHealthController(sync *services.SyncService) *HealthController {
	return &HealthController{Sync: sync}
}

// Health reports service status plus whether the remote leg is configured,
// so clients can surface an offline-mode banner.
func (hc *HealthController) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":      "ok",
		"service":     config.AppConfig.SchoolName + " Attendance API",
		"environment": config.AppConfig.AppEnv,
		"remoteSync":  hc.Sync.RemoteConfigured(),
	})
}

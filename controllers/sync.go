package controllers

import (
	"absensi_go/services"

	"github.com/gofiber/fiber/v2"
)

// SyncController exposes the manual "refresh database" action: a full
// remote-to-cache refresh of every dataset.
type SyncController struct {
	Scheduler *services.ResyncScheduler
	Sync      *services.SyncService
}

func NewSyncController(scheduler *services.ResyncScheduler, sync *services.SyncService) *SyncController {
	return &SyncController{Scheduler: scheduler, Sync: sync}
}

// Refresh re-runs the load path for every dataset and reports the counts
func (sc *SyncController) Refresh(c *fiber.Ctx) error {
	if !sc.Sync.RemoteConfigured() {
		return c.JSON(fiber.Map{
			"message":    "No remote backend configured, local data is authoritative",
			"remoteSync": false,
		})
	}

	students := sc.Sync.LoadStudents(c.Context())
	teachers := sc.Sync.LoadTeachers(c.Context())
	records := sc.Sync.LoadAttendance(c.Context())
	holidays := sc.Sync.LoadHolidays(c.Context())
	sc.Sync.LoadSchoolConfig(c.Context())

	return c.JSON(fiber.Map{
		"message":    "Datasets refreshed",
		"remoteSync": true,
		"students":   len(students),
		"teachers":   len(teachers),
		"attendance": len(records),
		"holidays":   len(holidays),
	})
}

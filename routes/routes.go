package routes

import (
	"absensi_go/controllers"
	"absensi_go/middleware"
	"absensi_go/services"
	"absensi_go/services/websocket"

	"github.com/gofiber/fiber/v2"
)

// Deps carries the shared service context the controllers are built around.
type Deps struct {
	Sync      *services.SyncService
	Import    *services.ImportService
	Scheduler *services.ResyncScheduler
	Hub       *websocket.Hub
}

// SetupRoutes configures all application routes
func SetupRoutes(app *fiber.App, deps Deps) {
	authController := controllers.NewAuthController(deps.Sync)
	studentController := controllers.NewStudentController(deps.Sync, deps.Hub)
	importController := controllers.NewStudentImportController(deps.Import, deps.Hub)
	teacherController := controllers.NewTeacherController(deps.Sync)
	attendanceController := controllers.NewAttendanceController(deps.Sync, deps.Hub)
	reportController := controllers.NewReportController(deps.Sync)
	settingsController := controllers.NewSettingsController(deps.Sync)
	syncController := controllers.NewSyncController(deps.Scheduler, deps.Sync)
	healthController := controllers.NewHealthController(deps.Sync)
	wsController := controllers.NewWebSocketController(deps.Hub)

	app.Get("/health", healthController.Health)

	api := app.Group("/api")

	// Authentication routes (no middleware)
	auth := api.Group("/auth")
	auth.Post("/login", authController.Login)

	// Protected routes (require authentication)
	protected := api.Group("/", middleware.JWTMiddleware())

	protected.Post("/auth/logout", authController.Logout)
	protected.Get("/auth/profile", authController.GetProfile)

	// Roster management (admin only for mutation)
	students := protected.Group("/students")
	students.Get("/", middleware.RequireStaff(), studentController.GetStudents)
	students.Get("/classes", middleware.RequireStaff(), studentController.GetClasses)
	students.Get("/template", middleware.RequireAdmin(), importController.DownloadTemplate)
	students.Post("/import", middleware.RequireAdmin(), importController.Import)
	students.Put("/", middleware.RequireAdmin(), studentController.SaveRoster)
	students.Post("/", middleware.RequireAdmin(), studentController.UpsertStudent)
	students.Delete("/:id", middleware.RequireAdmin(), studentController.DeleteStudent)

	teachers := protected.Group("/teachers")
	teachers.Get("/", middleware.RequireStaff(), teacherController.GetTeachers)
	teachers.Post("/", middleware.RequireAdmin(), teacherController.CreateTeacher)
	teachers.Delete("/:id", middleware.RequireAdmin(), teacherController.DeleteTeacher)

	// Attendance recording (teachers record, admins manage)
	attendance := protected.Group("/attendance")
	attendance.Get("/", attendanceController.GetAttendance)
	attendance.Post("/", middleware.RequireStaff(), attendanceController.CreateAttendance)
	attendance.Patch("/:id/status", middleware.RequireStaff(), attendanceController.UpdateAttendanceStatus)
	attendance.Delete("/:id", middleware.RequireStaff(), attendanceController.DeleteAttendance)

	// Reports (parents see only their own child, enforced in the controller)
	reports := protected.Group("/reports")
	reports.Get("/daily", reportController.GetDaily)
	reports.Get("/range", reportController.GetRange)
	reports.Get("/monthly", reportController.GetMonthly)
	reports.Get("/semester", reportController.GetSemester)

	protected.Get("/dashboard", middleware.RequireStaff(), reportController.GetDashboard)

	// School settings (admin only)
	settings := protected.Group("/settings", middleware.RequireAdmin())
	settings.Get("/config", settingsController.GetConfig)
	settings.Put("/config", settingsController.SaveConfig)
	settings.Get("/holidays", settingsController.GetHolidays)
	settings.Post("/holidays", settingsController.CreateHoliday)
	settings.Delete("/holidays/:id", settingsController.DeleteHoliday)

	// Manual full resync
	protected.Post("/sync", middleware.RequireStaff(), syncController.Refresh)

	// Live attendance feed
	app.Get("/ws/stats", wsController.Stats)
	app.Use("/ws", wsController.Upgrade)
	app.Get("/ws", wsController.Serve())
}

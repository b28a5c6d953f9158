package controllers

import (
	"absensi_go/middleware"
	"absensi_go/models"
	"absensi_go/services"

	"github.com/gofiber/fiber/v2"
)

type ReportController struct {
	Sync *services.SyncService
}

func NewReportController(sync *services.SyncService) *ReportController {
	return &ReportController{Sync: sync}
}

// reportFilter builds the shared filter spec from query params, forcing the
// single-student restriction for PARENT sessions.
func reportFilter(c *fiber.Ctx) services.Filter {
	filter := services.Filter{
		Class:     c.Query("class", services.FilterAll),
		StudentID: c.Query("student"),
		Status:    c.Query("status", services.FilterAll),
	}
	if claims, ok := middleware.GetClaims(c); ok && claims.Role == models.RoleParent {
		filter.Class = services.FilterAll
		filter.StudentID = claims.StudentID
	}
	return filter
}

// GetDaily returns the roll call for one date (default today)
func (rc *ReportController) GetDaily(c *fiber.Ctx) error {
	date := c.Query("date", models.Today())
	students := rc.Sync.LoadStudents(c.Context())
	records := rc.Sync.LoadAttendance(c.Context())
	holidays := rc.Sync.LoadHolidays(c.Context())

	rows := services.DailyReport(date, students, records, reportFilter(c))
	return c.JSON(fiber.Map{
		"date":      date,
		"dayStatus": services.HolidayStatus(date, holidays),
		"rows":      rows,
		"total":     len(rows),
	})
}

// GetRange returns the per-day matrix for an inclusive date range
func (rc *ReportController) GetRange(c *fiber.Ctx) error {
	start := c.Query("start")
	end := c.Query("end")
	if start == "" || end == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "start and end dates are required"})
	}

	students := rc.Sync.LoadStudents(c.Context())
	records := rc.Sync.LoadAttendance(c.Context())
	holidays := rc.Sync.LoadHolidays(c.Context())

	days, rows := services.RangeMatrix(start, end, students, records, holidays, reportFilter(c))
	if days == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid date range"})
	}
	return c.JSON(fiber.Map{
		"days":  days,
		"rows":  rows,
		"total": len(rows),
	})
}

// GetMonthly returns per-student totals for one month ("YYYY-MM")
func (rc *ReportController) GetMonthly(c *fiber.Ctx) error {
	month := c.Query("month")
	if month == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "month is required (YYYY-MM)"})
	}

	students := rc.Sync.LoadStudents(c.Context())
	records := rc.Sync.LoadAttendance(c.Context())

	rows := services.MonthlyReport(month, students, records, reportFilter(c))
	return c.JSON(fiber.Map{
		"month": month,
		"rows":  rows,
		"total": len(rows),
	})
}

// GetSemester returns the all-time leaderboard
func (rc *ReportController) GetSemester(c *fiber.Ctx) error {
	records := rc.Sync.LoadAttendance(c.Context())
	cfg := rc.Sync.LoadSchoolConfig(c.Context())

	studentID := c.Query("student")
	if claims, ok := middleware.GetClaims(c); ok && claims.Role == models.RoleParent {
		studentID = claims.StudentID
	}

	entries := services.SemesterLeaderboard(records, studentID)
	return c.JSON(fiber.Map{
		"academicYear": cfg.AcademicYear,
		"semester":     cfg.Semester,
		"entries":      entries,
		"total":        len(entries),
	})
}

// GetDashboard summarizes today: present/haid/absent counts and per-class
// breakdown
func (rc *ReportController) GetDashboard(c *fiber.Ctx) error {
	date := models.Today()
	students := rc.Sync.LoadStudents(c.Context())
	records := rc.Sync.LoadAttendance(c.Context())
	holidays := rc.Sync.LoadHolidays(c.Context())
	cfg := rc.Sync.LoadSchoolConfig(c.Context())

	rows := services.DailyReport(date, students, records, services.Filter{})

	present, haid, absent := 0, 0, 0
	perClass := make(map[string]*fiber.Map)
	classOrder := make([]string, 0)
	for _, row := range rows {
		entry, ok := perClass[row.ClassName]
		if !ok {
			entry = &fiber.Map{"class": row.ClassName, "present": 0, "haid": 0, "absent": 0, "total": 0}
			perClass[row.ClassName] = entry
			classOrder = append(classOrder, row.ClassName)
		}
		bump := func(key string) { (*entry)[key] = (*entry)[key].(int) + 1 }
		bump("total")
		switch row.Status {
		case models.StatusPresent:
			present++
			bump("present")
		case models.StatusHaid:
			haid++
			bump("haid")
		default:
			absent++
			bump("absent")
		}
	}

	classes := make([]fiber.Map, 0, len(classOrder))
	for _, name := range classOrder {
		classes = append(classes, *perClass[name])
	}

	return c.JSON(fiber.Map{
		"date":         date,
		"dayStatus":    services.HolidayStatus(date, holidays),
		"config":       cfg,
		"totalStudents": len(students),
		"present":      present,
		"haid":         haid,
		"absent":       absent,
		"classes":      classes,
	})
}

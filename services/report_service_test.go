package services

import (
	"testing"

	"absensi_go/models"
)

var reportStudents = []models.Student{
	{ID: "9001", Name: "BUDI SANTOSO", ClassName: "IX B", Gender: "L"},
	{ID: "9002", Name: "SITI AMINAH", ClassName: "IX A", Gender: "P"},
	{ID: "9003", Name: "AGUS WIJAYA", ClassName: "IX A", Gender: "L"},
}

func record(id, studentID, date string, status models.AttendanceStatus) models.AttendanceRecord {
	var student models.Student
	for _, s := range reportStudents {
		if s.ID == studentID {
			student = s
			break
		}
	}
	return models.AttendanceRecord{
		ID:          id,
		StudentID:   studentID,
		StudentName: student.Name,
		ClassName:   student.ClassName,
		Date:        date,
		Status:      status,
	}
}

func TestHolidayStatus(t *testing.T) {
	holidays := []models.Holiday{
		{ID: "h1", Date: "2025-08-17", Description: "HUT RI"},
		{ID: "h2", Date: "2025-01-05", Description: "Libur Khusus"},
	}

	tests := []struct {
		name      string
		date      string
		isHoliday bool
		reason    string
	}{
		{name: "weekday", date: "2025-01-06", isHoliday: false, reason: ""},
		{name: "sunday", date: "2025-01-12", isHoliday: true, reason: "Hari Minggu"},
		{name: "manual holiday", date: "2025-08-17", isHoliday: true, reason: "HUT RI"},
		{name: "manual description wins on sunday", date: "2025-01-05", isHoliday: true, reason: "Libur Khusus"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := HolidayStatus(tc.date, holidays)
			if got.IsHoliday != tc.isHoliday || got.Reason != tc.reason {
				t.Fatalf("expected {%v %q}, got {%v %q}", tc.isHoliday, tc.reason, got.IsHoliday, got.Reason)
			}
		})
	}
}

func TestPresenceFor(t *testing.T) {
	records := []models.AttendanceRecord{
		record("r1", "9001", "2025-01-06", models.StatusPresent),
		record("r2", "9002", "2025-01-06", models.StatusHaid),
	}

	if got := PresenceFor("9001", "2025-01-06", records); got != models.StatusPresent {
		t.Fatalf("expected PRESENT, got %s", got)
	}
	if got := PresenceFor("9002", "2025-01-06", records); got != models.StatusHaid {
		t.Fatalf("expected HAID, got %s", got)
	}
	if got := PresenceFor("9003", "2025-01-06", records); got != models.StatusAbsent {
		t.Fatalf("no record means ABSENT, got %s", got)
	}
	if got := PresenceFor("9001", "2025-01-07", records); got != models.StatusAbsent {
		t.Fatalf("record on another day must not count, got %s", got)
	}
}

func TestDailyReport(t *testing.T) {
	records := []models.AttendanceRecord{
		record("r1", "9001", "2025-01-06", models.StatusPresent),
		record("r2", "9002", "2025-01-06", models.StatusHaid),
	}

	t.Run("absence inferred for unrecorded students", func(t *testing.T) {
		rows := DailyReport("2025-01-06", reportStudents, records, Filter{})
		if len(rows) != 3 {
			t.Fatalf("expected a row per student, got %d", len(rows))
		}
		// sorted class then name: AGUS (IX A), SITI (IX A), BUDI (IX B)
		if rows[0].ID != "9003" || rows[1].ID != "9002" || rows[2].ID != "9001" {
			t.Fatalf("unexpected order: %s %s %s", rows[0].ID, rows[1].ID, rows[2].ID)
		}
		if rows[0].Status != models.StatusAbsent || rows[0].Time != "-" || rows[0].Operator != "-" {
			t.Fatalf("absent row not inferred: %+v", rows[0])
		}
		if !rows[1].IsHaid || rows[1].Status != models.StatusHaid {
			t.Fatalf("haid row wrong: %+v", rows[1])
		}
	})

	t.Run("class filter", func(t *testing.T) {
		rows := DailyReport("2025-01-06", reportStudents, records, Filter{Class: "IX A"})
		if len(rows) != 2 {
			t.Fatalf("expected 2 rows for IX A, got %d", len(rows))
		}
	})

	t.Run("status filter keeps matching rows only", func(t *testing.T) {
		rows := DailyReport("2025-01-06", reportStudents, records, Filter{Status: string(models.StatusAbsent)})
		if len(rows) != 1 || rows[0].ID != "9003" {
			t.Fatalf("expected only the absent student, got %+v", rows)
		}
	})

	t.Run("ALL sentinel disables filters", func(t *testing.T) {
		rows := DailyReport("2025-01-06", reportStudents, records, Filter{Class: FilterAll, Status: FilterAll})
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
	})
}

func TestRangeMatrix(t *testing.T) {
	// Monday 2025-01-06 through Sunday 2025-01-12
	records := []models.AttendanceRecord{
		record("r1", "9001", "2025-01-06", models.StatusPresent),
		record("r2", "9001", "2025-01-07", models.StatusPresent),
		record("r3", "9002", "2025-01-06", models.StatusHaid),
	}

	t.Run("enumerates every day", func(t *testing.T) {
		days, rows := RangeMatrix("2025-01-06", "2025-01-12", reportStudents, records, nil, Filter{})
		if len(days) != 7 {
			t.Fatalf("expected 7 days, got %d", len(days))
		}
		if len(rows) != 3 {
			t.Fatalf("expected 3 rows, got %d", len(rows))
		}
		for _, row := range rows {
			if len(row.Cells) != 7 {
				t.Fatalf("expected 7 cells per row, got %d", len(row.Cells))
			}
		}
	})

	t.Run("sunday marked holiday", func(t *testing.T) {
		_, rows := RangeMatrix("2025-01-06", "2025-01-12", reportStudents, records, nil, Filter{StudentID: "9001"})
		last := rows[0].Cells[6]
		if last.Date != "2025-01-12" || !last.IsHoliday || last.Reason != "Hari Minggu" {
			t.Fatalf("expected implicit sunday holiday, got %+v", last)
		}
	})

	t.Run("counts split present and haid", func(t *testing.T) {
		_, rows := RangeMatrix("2025-01-06", "2025-01-12", reportStudents, records, nil, Filter{StudentID: "9001"})
		if rows[0].PresentCount != 2 || rows[0].HaidCount != 0 {
			t.Fatalf("expected 2 present, got %+v", rows[0])
		}
		_, rows = RangeMatrix("2025-01-06", "2025-01-12", reportStudents, records, nil, Filter{StudentID: "9002"})
		if rows[0].PresentCount != 0 || rows[0].HaidCount != 1 {
			t.Fatalf("expected 1 haid, got %+v", rows[0])
		}
	})

	t.Run("absent filter keeps any real absence", func(t *testing.T) {
		// 9001 attended twice but missed the other weekdays, so the
		// at-least-one-absence clause keeps every student here.
		_, rows := RangeMatrix("2025-01-06", "2025-01-12", reportStudents, records, nil, Filter{Status: string(models.StatusAbsent)})
		if len(rows) != 3 {
			t.Fatalf("expected all 3 rows kept, got %d", len(rows))
		}

		// with full weekday attendance the student drops out
		full := records
		for _, d := range []string{"2025-01-08", "2025-01-09", "2025-01-10", "2025-01-11"} {
			full = append(full, record("rf"+d, "9001", d, models.StatusPresent))
		}
		_, rows = RangeMatrix("2025-01-06", "2025-01-12", reportStudents, full, nil, Filter{Status: string(models.StatusAbsent), StudentID: "9001"})
		if len(rows) != 0 {
			t.Fatalf("fully present student must be dropped, got %+v", rows)
		}
	})

	t.Run("holiday day is not an absence", func(t *testing.T) {
		holidays := []models.Holiday{{ID: "h1", Date: "2025-01-07", Description: "Libur"}}
		single := []models.AttendanceRecord{record("r1", "9001", "2025-01-06", models.StatusPresent)}
		_, rows := RangeMatrix("2025-01-06", "2025-01-07", reportStudents, single, holidays, Filter{Status: string(models.StatusAbsent), StudentID: "9001"})
		if len(rows) != 0 {
			t.Fatalf("holiday gap must not count as absence, got %+v", rows)
		}
	})

	t.Run("invalid range yields nil", func(t *testing.T) {
		days, rows := RangeMatrix("bogus", "2025-01-12", reportStudents, records, nil, Filter{})
		if days != nil || rows != nil {
			t.Fatalf("expected nil for invalid range")
		}
	})
}

func TestMonthlyReport(t *testing.T) {
	records := []models.AttendanceRecord{
		record("r1", "9001", "2025-01-06", models.StatusPresent),
		record("r2", "9001", "2025-01-07", models.StatusPresent),
		record("r3", "9002", "2025-01-08", models.StatusHaid),
		record("r4", "9001", "2025-02-03", models.StatusPresent), // other month
	}

	t.Run("totals scoped to month prefix", func(t *testing.T) {
		rows := MonthlyReport("2025-01", reportStudents, records, Filter{StudentID: "9001"})
		if len(rows) != 1 || rows[0].PresentCount != 2 || rows[0].HaidCount != 0 {
			t.Fatalf("expected 2 present in january, got %+v", rows)
		}
	})

	t.Run("absent keeps only fully absent students", func(t *testing.T) {
		rows := MonthlyReport("2025-01", reportStudents, records, Filter{Status: string(models.StatusAbsent)})
		if len(rows) != 1 || rows[0].ID != "9003" {
			t.Fatalf("expected only the zero-record student, got %+v", rows)
		}
	})

	t.Run("quantifiers diverge between range and monthly views", func(t *testing.T) {
		// 9001 has records in january but also gaps: the range view's
		// absent clause keeps the row, the monthly one drops it.
		_, matrix := RangeMatrix("2025-01-06", "2025-01-10", reportStudents, records, nil, Filter{Status: string(models.StatusAbsent), StudentID: "9001"})
		if len(matrix) != 1 {
			t.Fatalf("range view should keep the partially absent student, got %d rows", len(matrix))
		}
		monthly := MonthlyReport("2025-01", reportStudents, records, Filter{Status: string(models.StatusAbsent), StudentID: "9001"})
		if len(monthly) != 0 {
			t.Fatalf("monthly view should drop the partially present student, got %+v", monthly)
		}
	})
}

func TestSemesterLeaderboard(t *testing.T) {
	var records []models.AttendanceRecord
	add := func(studentID string, n int, month string) {
		for i := 0; i < n; i++ {
			records = append(records, record("", studentID, month, models.StatusPresent))
		}
	}
	// encounter order: A then B then C
	add("9003", 3, "2025-01-06") // A
	add("9001", 5, "2025-01-06") // B
	add("9002", 5, "2025-01-06") // C

	t.Run("count descending with stable ties", func(t *testing.T) {
		entries := SemesterLeaderboard(records, "")
		if len(entries) != 3 {
			t.Fatalf("expected 3 entries, got %d", len(entries))
		}
		if entries[0].ID != "9001" || entries[1].ID != "9002" || entries[2].ID != "9003" {
			t.Fatalf("unexpected order: %s %s %s", entries[0].ID, entries[1].ID, entries[2].ID)
		}
		if entries[0].Count != 5 || entries[2].Count != 3 {
			t.Fatalf("unexpected counts: %+v", entries)
		}
	})

	t.Run("students without records are omitted", func(t *testing.T) {
		entries := SemesterLeaderboard(records[:3], "")
		if len(entries) != 1 || entries[0].ID != "9003" {
			t.Fatalf("expected only the recorded student, got %+v", entries)
		}
	})

	t.Run("student filter", func(t *testing.T) {
		entries := SemesterLeaderboard(records, "9002")
		if len(entries) != 1 || entries[0].ID != "9002" || entries[0].Count != 5 {
			t.Fatalf("expected 9002 only, got %+v", entries)
		}
	})

	t.Run("empty log", func(t *testing.T) {
		if entries := SemesterLeaderboard(nil, ""); len(entries) != 0 {
			t.Fatalf("expected empty leaderboard, got %+v", entries)
		}
	})
}

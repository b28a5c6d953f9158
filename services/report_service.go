package services

import (
	"sort"
	"strings"
	"time"

	"absensi_go/models"
)

// The report engine is a family of pure functions over already-loaded
// collections. No I/O, no shared state: callers hand in the snapshots the
// sync layer gave them.

// FilterAll is the sentinel disabling a filter clause.
const FilterAll = "ALL"

// Filter is the composable filter spec shared by all report views. Class and
// StudentID clauses are evaluated uniformly here; the status clause is
// view-specific because its meaning differs per view (see the view funcs).
type Filter struct {
	Class     string // class label, or ALL
	StudentID string // single-student restriction, or empty
	Status    string // ALL, PRESENT, HAID or ABSENT
}

func (f Filter) matchesClass(s models.Student) bool {
	return f.Class == "" || f.Class == FilterAll || s.ClassName == f.Class
}

func (f Filter) matchesStudent(s models.Student) bool {
	return f.StudentID == "" || s.ID == f.StudentID
}

func (f Filter) status() string {
	if f.Status == "" {
		return FilterAll
	}
	return f.Status
}

// DayStatus flags a calendar date as a holiday. Sundays are implicit
// holidays; the manual list supplies the rest. The manual description wins
// over the fixed Sunday label.
type DayStatus struct {
	IsHoliday bool   `json:"isHoliday"`
	Reason    string `json:"holidayReason"`
}

// HolidayStatus computes the DayStatus for a date string.
func HolidayStatus(date string, holidays []models.Holiday) DayStatus {
	var manual *models.Holiday
	for i := range holidays {
		if holidays[i].Date == date {
			manual = &holidays[i]
			break
		}
	}
	isSunday := false
	if t, err := time.Parse(models.DateLayout, date); err == nil {
		isSunday = t.Weekday() == time.Sunday
	}
	status := DayStatus{IsHoliday: isSunday || manual != nil}
	switch {
	case manual != nil:
		status.Reason = manual.Description
	case isSunday:
		status.Reason = "Hari Minggu"
	}
	return status
}

// PresenceFor derives the status of a (student, date) pair from the sparse
// log. Absence is the gap: no record means ABSENT.
func PresenceFor(studentID, date string, records []models.AttendanceRecord) models.AttendanceStatus {
	if r := recordFor(studentID, date, records); r != nil {
		return r.Status
	}
	return models.StatusAbsent
}

func recordFor(studentID, date string, records []models.AttendanceRecord) *models.AttendanceRecord {
	for i := range records {
		if records[i].StudentID == studentID && records[i].Date == date {
			return &records[i]
		}
	}
	return nil
}

// DailyRow is one roster line in the daily roll call.
type DailyRow struct {
	models.Student
	RecordID  string                  `json:"recordId,omitempty"`
	IsPresent bool                    `json:"isPresent"`
	IsHaid    bool                    `json:"isHaid"`
	Status    models.AttendanceStatus `json:"status"`
	Time      string                  `json:"time"`     // HH:mm or "-"
	Operator  string                  `json:"operator"` // or "-"
}

// DailyReport builds the roll call for one date. Every student yields a row
// (absence inferred); filters apply class, then student, then status.
func DailyReport(date string, students []models.Student, records []models.AttendanceRecord, filter Filter) []DailyRow {
	rows := make([]DailyRow, 0, len(students))
	for _, student := range students {
		if !filter.matchesClass(student) || !filter.matchesStudent(student) {
			continue
		}
		row := DailyRow{Student: student, Status: models.StatusAbsent, Time: "-", Operator: "-"}
		if r := recordFor(student.ID, date, records); r != nil {
			row.RecordID = r.ID
			row.IsPresent = true
			row.IsHaid = r.Status == models.StatusHaid
			row.Status = r.Status
			row.Time = r.Time().Format("15:04")
			row.Operator = r.OperatorName
		}
		if st := filter.status(); st != FilterAll && string(row.Status) != st {
			continue
		}
		rows = append(rows, row)
	}
	sortRowsByClassThenName(rows, func(r DailyRow) (string, string) { return r.ClassName, r.Name })
	return rows
}

// MatrixCell is one day for one student in the range matrix.
type MatrixCell struct {
	Date      string `json:"date"`
	IsPresent bool   `json:"isPresent"`
	IsHaid    bool   `json:"isHaid"`
	RecordID  string `json:"recordId,omitempty"`
	IsHoliday bool   `json:"isHoliday"`
	Reason    string `json:"holidayReason,omitempty"`
}

// MatrixRow is one student across the whole range.
type MatrixRow struct {
	models.Student
	Cells        []MatrixCell `json:"attendanceMap"`
	PresentCount int          `json:"presentCount"`
	HaidCount    int          `json:"haidCount"`
}

// RangeMatrix enumerates every day in [startDate, endDate] per student. The
// status filter is applied to whole rows after accumulation; its ABSENT
// clause keeps rows with at least one real absence (a non-holiday day without
// a record), which deliberately differs from the monthly all-month predicate.
func RangeMatrix(startDate, endDate string, students []models.Student, records []models.AttendanceRecord, holidays []models.Holiday, filter Filter) ([]string, []MatrixRow) {
	days, err := daysBetween(startDate, endDate)
	if err != nil {
		return nil, nil
	}

	rows := make([]MatrixRow, 0, len(students))
	for _, student := range students {
		if !filter.matchesClass(student) || !filter.matchesStudent(student) {
			continue
		}
		row := MatrixRow{Student: student, Cells: make([]MatrixCell, 0, len(days))}
		for _, day := range days {
			dayStatus := HolidayStatus(day, holidays)
			cell := MatrixCell{Date: day, IsHoliday: dayStatus.IsHoliday, Reason: dayStatus.Reason}
			if r := recordFor(student.ID, day, records); r != nil {
				cell.IsPresent = true
				cell.IsHaid = r.Status == models.StatusHaid
				cell.RecordID = r.ID
				if cell.IsHaid {
					row.HaidCount++
				} else {
					row.PresentCount++
				}
			}
			row.Cells = append(row.Cells, cell)
		}
		rows = append(rows, row)
	}
	sortRowsByClassThenName(rows, func(r MatrixRow) (string, string) { return r.ClassName, r.Name })

	switch filter.status() {
	case string(models.StatusPresent):
		rows = keepMatrixRows(rows, func(r MatrixRow) bool { return r.PresentCount > 0 })
	case string(models.StatusHaid):
		rows = keepMatrixRows(rows, func(r MatrixRow) bool { return r.HaidCount > 0 })
	case string(models.StatusAbsent):
		rows = keepMatrixRows(rows, func(r MatrixRow) bool {
			for _, c := range r.Cells {
				if !c.IsHoliday && !c.IsPresent {
					return true
				}
			}
			return false
		})
	}
	return days, rows
}

// MonthlyRow is one student's totals for a month.
type MonthlyRow struct {
	models.Student
	PresentCount int `json:"presentCount"`
	HaidCount    int `json:"haidCount"`
}

// MonthlyReport totals records whose date carries the yearMonth ("YYYY-MM")
// prefix. Its ABSENT clause keeps only students fully absent for the month
// (zero present and zero haid) - the opposite quantifier to RangeMatrix.
func MonthlyReport(yearMonth string, students []models.Student, records []models.AttendanceRecord, filter Filter) []MonthlyRow {
	rows := make([]MonthlyRow, 0, len(students))
	for _, student := range students {
		if !filter.matchesClass(student) || !filter.matchesStudent(student) {
			continue
		}
		row := MonthlyRow{Student: student}
		for _, r := range records {
			if r.StudentID != student.ID || !strings.HasPrefix(r.Date, yearMonth) {
				continue
			}
			if r.Status == models.StatusHaid {
				row.HaidCount++
			} else {
				row.PresentCount++
			}
		}
		rows = append(rows, row)
	}
	sortRowsByClassThenName(rows, func(r MonthlyRow) (string, string) { return r.ClassName, r.Name })

	switch filter.status() {
	case string(models.StatusPresent):
		rows = keepMonthlyRows(rows, func(r MonthlyRow) bool { return r.PresentCount > 0 })
	case string(models.StatusHaid):
		rows = keepMonthlyRows(rows, func(r MonthlyRow) bool { return r.HaidCount > 0 })
	case string(models.StatusAbsent):
		rows = keepMonthlyRows(rows, func(r MonthlyRow) bool { return r.PresentCount+r.HaidCount == 0 })
	}
	return rows
}

// LeaderboardEntry is one student's all-time attendance count.
type LeaderboardEntry struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ClassName string `json:"className"`
	Count     int    `json:"count"`
}

// SemesterLeaderboard folds the whole log into one counter per student,
// ordered by count descending with encounter order preserved for ties.
// Students who never appear in the log are omitted: the fold walks records,
// not the roster.
func SemesterLeaderboard(records []models.AttendanceRecord, studentID string) []LeaderboardEntry {
	index := make(map[string]int)
	entries := make([]LeaderboardEntry, 0)
	for _, r := range records {
		i, ok := index[r.StudentID]
		if !ok {
			i = len(entries)
			index[r.StudentID] = i
			entries = append(entries, LeaderboardEntry{
				ID:        r.StudentID,
				Name:      r.StudentName,
				ClassName: r.ClassName,
			})
		}
		if r.Status == models.StatusPresent || r.Status == models.StatusHaid {
			entries[i].Count++
		}
	}

	if studentID != "" {
		kept := entries[:0]
		for _, e := range entries {
			if e.ID == studentID {
				kept = append(kept, e)
			}
		}
		entries = kept
	}

	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Count > entries[j].Count })
	return entries
}

// --- helpers ---

func daysBetween(start, end string) ([]string, error) {
	from, err := time.Parse(models.DateLayout, start)
	if err != nil {
		return nil, err
	}
	to, err := time.Parse(models.DateLayout, end)
	if err != nil {
		return nil, err
	}
	var days []string
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(models.DateLayout))
	}
	return days, nil
}

func sortRowsByClassThenName[T any](rows []T, key func(T) (class, name string)) {
	sort.Slice(rows, func(i, j int) bool {
		ci, ni := key(rows[i])
		cj, nj := key(rows[j])
		if ci != cj {
			return ci < cj
		}
		return ni < nj
	})
}

func keepMatrixRows(rows []MatrixRow, keep func(MatrixRow) bool) []MatrixRow {
	out := rows[:0]
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func keepMonthlyRows(rows []MonthlyRow, keep func(MonthlyRow) bool) []MonthlyRow {
	out := rows[:0]
	for _, r := range rows {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

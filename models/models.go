package models

import (
	"sort"
	"strings"
	"time"
)

// AttendanceStatus is the stored status of an attendance record.
// ABSENT is never stored: it is the inferred state for any (student, date)
// pair that has no record.
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "PRESENT"
	StatusHaid    AttendanceStatus = "HAID"
	StatusAbsent  AttendanceStatus = "ABSENT"
)

// Valid returns true when the status is one of the two storable values.
func (s AttendanceStatus) Valid() bool {
	return s == StatusPresent || s == StatusHaid
}

// SyncStatus tags each attendance record with the outcome of its remote leg,
// so "not yet synced" is explicit instead of being inferred from the id shape.
type SyncStatus string

const (
	SyncLocal  SyncStatus = "local"
	SyncSynced SyncStatus = "synced"
	SyncFailed SyncStatus = "sync_failed"
)

// Semester is the active academic term.
type Semester string

const (
	SemesterGanjil Semester = "GANJIL"
	SemesterGenap  Semester = "GENAP"
)

// UserRole identifies who is logged in.
type UserRole string

const (
	RoleTeacher UserRole = "TEACHER"
	RoleAdmin   UserRole = "ADMIN"
	RoleParent  UserRole = "PARENT"
)

// DatasetKind names a unit of cache/remote synchronization. Each kind maps to
// one local cache key and (session excepted) one remote collection.
type DatasetKind string

const (
	DatasetStudents   DatasetKind = "students"
	DatasetTeachers   DatasetKind = "teachers"
	DatasetAttendance DatasetKind = "attendance"
	DatasetConfig     DatasetKind = "config"
	DatasetHolidays   DatasetKind = "holidays"
	DatasetSession    DatasetKind = "session"
)

// Student is one roster entry. The NIS (student number) is the document id in
// the remote store, so students are always upserted, never re-created.
type Student struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name" validate:"required"`
	ClassName   string `json:"className" validate:"required"`
	Gender      string `json:"gender" validate:"oneof=L P"`
	ParentPhone string `json:"parentPhone,omitempty"`
}

// Teacher is one staff roster entry. IDs are generated ("t_" + uuid).
type Teacher struct {
	ID   string `json:"id"`
	Name string `json:"name" validate:"required"`
}

// AttendanceRecord is one presence event. StudentName and ClassName are
// denormalized at record-creation time and never re-derived from the roster.
type AttendanceRecord struct {
	ID           string           `json:"id"`
	StudentID    string           `json:"studentId"`
	StudentName  string           `json:"studentName"`
	ClassName    string           `json:"className"`
	Date         string           `json:"date"`      // YYYY-MM-DD, local calendar
	Timestamp    int64            `json:"timestamp"` // unix millis
	OperatorName string           `json:"operatorName"`
	Status       AttendanceStatus `json:"status"`
	SyncStatus   SyncStatus       `json:"syncStatus,omitempty"`
}

// LocalIDPrefix marks attendance ids minted locally while the remote store has
// not assigned a durable one yet.
const LocalIDPrefix = "local_"

// Time returns the record's creation instant.
func (r AttendanceRecord) Time() time.Time {
	return time.UnixMilli(r.Timestamp)
}

// SchoolConfig is a singleton dataset stored under a fixed document id.
type SchoolConfig struct {
	AcademicYear string   `json:"academicYear" validate:"required"`
	Semester     Semester `json:"semester" validate:"oneof=GANJIL GENAP"`
}

// Holiday annotates report views. Sundays are implicit holidays regardless of
// this list.
type Holiday struct {
	ID          string `json:"id"`
	Date        string `json:"date" validate:"required"` // YYYY-MM-DD
	Description string `json:"description"`
}

// AuthSession lives only in the local cache, never in the remote store.
// Absence of the cache entry means unauthenticated. PARENT sessions carry a
// snapshot of the student they are scoped to.
type AuthSession struct {
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	Student  *Student `json:"studentData,omitempty"`
}

// DateLayout is the calendar-day string form used everywhere.
const DateLayout = "2006-01-02"

// Today returns the recording device's local calendar date.
func Today() string {
	return time.Now().Format(DateLayout)
}

// SortStudents orders a roster by class label then name, the display order
// shared by the student list and every report view.
func SortStudents(students []Student) {
	sort.Slice(students, func(i, j int) bool {
		if students[i].ClassName != students[j].ClassName {
			return students[i].ClassName < students[j].ClassName
		}
		return students[i].Name < students[j].Name
	})
}

// SortHolidaysDesc keeps the holiday list newest-first.
func SortHolidaysDesc(holidays []Holiday) {
	sort.Slice(holidays, func(i, j int) bool { return holidays[i].Date > holidays[j].Date })
}

// NormalizeGender maps free-form spreadsheet input to the two stored codes.
func NormalizeGender(raw string) string {
	if strings.HasPrefix(strings.ToUpper(strings.TrimSpace(raw)), "P") {
		return "P"
	}
	return "L"
}

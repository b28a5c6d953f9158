package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"absensi_go/database"
	"absensi_go/database/seeders"
	"absensi_go/models"
	"absensi_go/storage"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// ErrDuplicateAttendance is returned when a student already has a record for
// today. The caller surfaces it to the operator; nothing is mutated.
var ErrDuplicateAttendance = fmt.Errorf("student already has an attendance record for today")

// SyncService reconciles the local cache with the remote document store.
//
// Read path: remote wins when reachable (and non-empty for roster datasets);
// otherwise the cache; otherwise bundled defaults. Write path: the cache is
// written first and unconditionally, the remote leg is best-effort. A failed
// remote write is logged and dropped - the next full save of the collection
// overwrites it.
type SyncService struct {
	local  storage.LocalStore
	remote database.DocumentStore // nil when no remote backend is configured
}

// NewSyncService builds a coordinator around an explicit storage context.
// Pass a nil remote to run cache-only.
func NewSyncService(local storage.LocalStore, remote database.DocumentStore) *SyncService {
	return &SyncService{local: local, remote: remote}
}

// RemoteConfigured reports whether a remote backend is attached.
func (s *SyncService) RemoteConfigured() bool {
	return s.remote != nil
}

// --- read path ---

// LoadStudents returns the roster: remote first, then cache, then the bundled
// default roster. An empty remote roster is treated the same as an
// unreachable one, so a misconfigured backend can never blank the school.
func (s *SyncService) LoadStudents(ctx context.Context) []models.Student {
	return loadCollection(ctx, s, models.DatasetStudents, database.CollStudents, "", true, seeders.DefaultStudents(),
		func(st *models.Student, id string) { st.ID = id })
}

// LoadTeachers returns the staff roster with the same fallback chain as
// LoadStudents.
func (s *SyncService) LoadTeachers(ctx context.Context) []models.Teacher {
	return loadCollection(ctx, s, models.DatasetTeachers, database.CollTeachers, "", true, seeders.DefaultTeachers(),
		func(t *models.Teacher, id string) { t.ID = id })
}

// LoadAttendance returns the attendance log, newest first. The default is the
// empty log. Records fetched from the remote store carry no id or sync tag in
// their payload; both are restored here, and living in the store means synced.
func (s *SyncService) LoadAttendance(ctx context.Context) []models.AttendanceRecord {
	return loadCollection(ctx, s, models.DatasetAttendance, database.CollAttendance, "timestamp", false, []models.AttendanceRecord{},
		func(r *models.AttendanceRecord, id string) {
			r.ID = id
			r.SyncStatus = models.SyncSynced
		})
}

// LoadHolidays returns the manual holiday list, date-descending.
func (s *SyncService) LoadHolidays(ctx context.Context) []models.Holiday {
	holidays := loadCollection(ctx, s, models.DatasetHolidays, database.CollHolidays, "", false, []models.Holiday{},
		func(h *models.Holiday, id string) { h.ID = id })
	models.SortHolidaysDesc(holidays)
	return holidays
}

// LoadSchoolConfig returns the singleton config document, falling back to the
// cached copy and then the fixed default.
func (s *SyncService) LoadSchoolConfig(ctx context.Context) models.SchoolConfig {
	if s.remote != nil {
		raw, err := s.remote.Get(ctx, database.CollConfig, database.ConfigDocID)
		if err == nil {
			var cfg models.SchoolConfig
			if jsonErr := json.Unmarshal(raw, &cfg); jsonErr == nil {
				s.writeCache(ctx, models.DatasetConfig, cfg)
				return cfg
			}
		} else {
			logrus.WithFields(logrus.Fields{
				"dataset": models.DatasetConfig,
				"error":   err.Error(),
			}).Warn("Remote fetch failed, falling back to cache")
		}
	}

	var cfg models.SchoolConfig
	if s.readCache(ctx, models.DatasetConfig, &cfg) {
		return cfg
	}
	return seeders.DefaultConfig()
}

// loadCollection implements the shared read-path policy for the list-shaped
// datasets. emptyIsMissing marks the roster datasets whose empty remote
// result falls through to defaults (the anti-empty-state guard). attach
// re-applies the store-assigned document id to each decoded item.
func loadCollection[T any](ctx context.Context, s *SyncService, kind models.DatasetKind, collection, orderByDesc string, emptyIsMissing bool, defaults []T, attach func(*T, string)) []T {
	if s.remote != nil {
		docs, err := s.remote.ListAll(ctx, collection, orderByDesc)
		if err == nil {
			items := make([]T, 0, len(docs))
			for _, doc := range docs {
				var item T
				if jsonErr := json.Unmarshal(doc.Data, &item); jsonErr != nil {
					logrus.WithFields(logrus.Fields{
						"dataset": kind,
						"error":   jsonErr.Error(),
					}).Warn("Skipping malformed remote document")
					continue
				}
				attach(&item, doc.ID)
				items = append(items, item)
			}
			if len(items) > 0 || !emptyIsMissing {
				s.writeCache(ctx, kind, items)
				return items
			}
			logrus.WithField("dataset", kind).Warn("Remote returned empty roster, keeping local data")
		} else {
			logrus.WithFields(logrus.Fields{
				"dataset": kind,
				"error":   err.Error(),
			}).Warn("Remote fetch failed, falling back to cache")
		}
	}

	var items []T
	if s.readCache(ctx, kind, &items) && (len(items) > 0 || !emptyIsMissing) {
		return items
	}
	return defaults
}

// --- write path ---

// SaveStudents persists the whole roster: cache immediately, then one upsert
// per student keyed by NIS. Returns an error only when the cache write fails
// or the remote leg fails with a backend configured.
func (s *SyncService) SaveStudents(ctx context.Context, students []models.Student) error {
	if err := s.writeCache(ctx, models.DatasetStudents, students); err != nil {
		return err
	}
	if s.remote == nil {
		logrus.Warn("No remote backend configured, students saved locally only")
		return nil
	}
	for _, student := range students {
		if err := s.remote.Upsert(ctx, database.CollStudents, student.ID, student); err != nil {
			logrus.WithFields(logrus.Fields{
				"dataset": models.DatasetStudents,
				"id":      student.ID,
				"error":   err.Error(),
			}).Error("Remote save failed")
			return fmt.Errorf("remote save students: %w", err)
		}
	}
	return nil
}

// SaveTeachers persists the whole staff roster, same contract as SaveStudents.
func (s *SyncService) SaveTeachers(ctx context.Context, teachers []models.Teacher) error {
	if err := s.writeCache(ctx, models.DatasetTeachers, teachers); err != nil {
		return err
	}
	if s.remote == nil {
		return nil
	}
	for _, teacher := range teachers {
		if err := s.remote.Upsert(ctx, database.CollTeachers, teacher.ID, teacher); err != nil {
			logrus.WithFields(logrus.Fields{
				"dataset": models.DatasetTeachers,
				"id":      teacher.ID,
				"error":   err.Error(),
			}).Error("Remote save failed")
			return fmt.Errorf("remote save teachers: %w", err)
		}
	}
	return nil
}

// DeleteTeacher removes one staff entry from the cached roster and mirrors
// the delete to the remote collection best-effort.
func (s *SyncService) DeleteTeacher(ctx context.Context, id string) error {
	var teachers []models.Teacher
	s.readCache(ctx, models.DatasetTeachers, &teachers)
	kept := teachers[:0]
	for _, t := range teachers {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if err := s.writeCache(ctx, models.DatasetTeachers, kept); err != nil {
		return err
	}
	if s.remote != nil {
		if err := s.remote.Delete(ctx, database.CollTeachers, id); err != nil {
			logrus.WithFields(logrus.Fields{"id": id, "error": err.Error()}).Error("Remote teacher delete failed")
		}
	}
	return nil
}

// SaveHolidays persists the holiday list (kept date-descending).
func (s *SyncService) SaveHolidays(ctx context.Context, holidays []models.Holiday) error {
	models.SortHolidaysDesc(holidays)
	if err := s.writeCache(ctx, models.DatasetHolidays, holidays); err != nil {
		return err
	}
	if s.remote == nil {
		return nil
	}
	for _, holiday := range holidays {
		if err := s.remote.Upsert(ctx, database.CollHolidays, holiday.ID, holiday); err != nil {
			logrus.WithFields(logrus.Fields{
				"dataset": models.DatasetHolidays,
				"id":      holiday.ID,
				"error":   err.Error(),
			}).Error("Remote save failed")
			return fmt.Errorf("remote save holidays: %w", err)
		}
	}
	return nil
}

// DeleteHoliday removes one holiday from cache and, best-effort, from the
// remote store.
func (s *SyncService) DeleteHoliday(ctx context.Context, id string) error {
	holidays := s.cachedHolidays(ctx)
	kept := holidays[:0]
	for _, h := range holidays {
		if h.ID != id {
			kept = append(kept, h)
		}
	}
	if err := s.writeCache(ctx, models.DatasetHolidays, kept); err != nil {
		return err
	}
	if s.remote != nil {
		if err := s.remote.Delete(ctx, database.CollHolidays, id); err != nil {
			logrus.WithFields(logrus.Fields{"id": id, "error": err.Error()}).Error("Remote holiday delete failed")
		}
	}
	return nil
}

// SaveSchoolConfig persists the singleton config document.
func (s *SyncService) SaveSchoolConfig(ctx context.Context, cfg models.SchoolConfig) error {
	if err := s.writeCache(ctx, models.DatasetConfig, cfg); err != nil {
		return err
	}
	if s.remote == nil {
		return nil
	}
	if err := s.remote.Upsert(ctx, database.CollConfig, database.ConfigDocID, cfg); err != nil {
		logrus.WithField("error", err.Error()).Error("Remote config save failed")
		return fmt.Errorf("remote save config: %w", err)
	}
	return nil
}

// --- attendance operations ---

// CreateAttendance records presence for a student today. The record is placed
// in the cache under a temporary local id before the remote leg runs; local
// durability takes priority over remote confirmation, so a failed remote
// submit still reports success and merely tags the record sync_failed.
func (s *SyncService) CreateAttendance(ctx context.Context, student models.Student, operatorName string, status models.AttendanceStatus) (models.AttendanceRecord, error) {
	if !status.Valid() {
		status = models.StatusPresent
	}
	today := models.Today()

	records := s.cachedAttendance(ctx)
	for _, r := range records {
		if r.StudentID == student.ID && r.Date == today {
			return models.AttendanceRecord{}, ErrDuplicateAttendance
		}
	}

	operator := operatorName
	if operator == "" {
		operator = "System"
	}
	record := models.AttendanceRecord{
		ID:           models.LocalIDPrefix + uuid.NewString(),
		StudentID:    student.ID,
		StudentName:  student.Name,
		ClassName:    student.ClassName,
		Date:         today,
		Timestamp:    time.Now().UnixMilli(),
		OperatorName: operator,
		Status:       status,
		SyncStatus:   models.SyncLocal,
	}

	// Newest record goes first; the cache write must land before any remote
	// attempt so the operator's view is correct immediately.
	updated := append([]models.AttendanceRecord{record}, records...)
	if err := s.writeCache(ctx, models.DatasetAttendance, updated); err != nil {
		return models.AttendanceRecord{}, err
	}

	if s.remote == nil {
		return record, nil
	}

	// The remote store assigns the durable id, so the temporary one is
	// stripped from the submitted payload.
	submit := record
	submit.ID = ""
	submit.SyncStatus = ""
	remoteID, err := s.remote.Add(ctx, database.CollAttendance, submit)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"student": student.ID,
			"date":    today,
			"error":   err.Error(),
		}).Error("Attendance sync failed, record kept locally")
		record.SyncStatus = models.SyncFailed
		s.patchAttendance(ctx, record.ID, func(r *models.AttendanceRecord) {
			r.SyncStatus = models.SyncFailed
		})
		return record, nil
	}

	// Patch the cached entry in place: temporary id out, store id in.
	oldID := record.ID
	record.ID = remoteID
	record.SyncStatus = models.SyncSynced
	s.patchAttendance(ctx, oldID, func(r *models.AttendanceRecord) {
		r.ID = remoteID
		r.SyncStatus = models.SyncSynced
	})
	return record, nil
}

// DeleteAttendance drops a record from the cache (a no-op filter when the id
// is absent) and best-effort mirrors the delete to the remote store.
func (s *SyncService) DeleteAttendance(ctx context.Context, id string) error {
	records := s.cachedAttendance(ctx)
	kept := records[:0]
	for _, r := range records {
		if r.ID != id {
			kept = append(kept, r)
		}
	}
	if err := s.writeCache(ctx, models.DatasetAttendance, kept); err != nil {
		return err
	}
	if s.remote != nil {
		if err := s.remote.Delete(ctx, database.CollAttendance, id); err != nil {
			logrus.WithFields(logrus.Fields{"id": id, "error": err.Error()}).Error("Remote attendance delete failed")
		}
	}
	return nil
}

// UpdateAttendanceStatus toggles a record between PRESENT and HAID in the
// cache, then best-effort patches the remote document.
func (s *SyncService) UpdateAttendanceStatus(ctx context.Context, id string, newStatus models.AttendanceStatus) error {
	if !newStatus.Valid() {
		return fmt.Errorf("invalid attendance status %q", newStatus)
	}
	found := s.patchAttendance(ctx, id, func(r *models.AttendanceRecord) {
		r.Status = newStatus
	})
	if !found {
		// same contract as delete: missing ids are a silent no-op
		return nil
	}
	if s.remote != nil {
		err := s.remote.UpdateFields(ctx, database.CollAttendance, id, map[string]interface{}{
			"status": newStatus,
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{"id": id, "error": err.Error()}).Error("Remote attendance update failed")
		}
	}
	return nil
}

// --- session (cache only, never remote) ---

// SaveSession persists the login session in the local cache.
func (s *SyncService) SaveSession(ctx context.Context, session models.AuthSession) error {
	return s.writeCache(ctx, models.DatasetSession, session)
}

// LoadSession returns the cached session; ok is false when unauthenticated.
func (s *SyncService) LoadSession(ctx context.Context) (models.AuthSession, bool) {
	var session models.AuthSession
	if !s.readCache(ctx, models.DatasetSession, &session) {
		return models.AuthSession{}, false
	}
	return session, true
}

// ClearSession logs out by removing the cache entry.
func (s *SyncService) ClearSession(ctx context.Context) error {
	return s.local.Remove(ctx, string(models.DatasetSession))
}

// --- cache plumbing ---

func (s *SyncService) cachedAttendance(ctx context.Context) []models.AttendanceRecord {
	var records []models.AttendanceRecord
	s.readCache(ctx, models.DatasetAttendance, &records)
	return records
}

func (s *SyncService) cachedHolidays(ctx context.Context) []models.Holiday {
	var holidays []models.Holiday
	s.readCache(ctx, models.DatasetHolidays, &holidays)
	return holidays
}

// patchAttendance mutates one cached record in place and rewrites the cache.
func (s *SyncService) patchAttendance(ctx context.Context, id string, mutate func(*models.AttendanceRecord)) bool {
	records := s.cachedAttendance(ctx)
	found := false
	for i := range records {
		if records[i].ID == id {
			mutate(&records[i])
			found = true
			break
		}
	}
	if found {
		if err := s.writeCache(ctx, models.DatasetAttendance, records); err != nil {
			return false
		}
	}
	return found
}

func (s *SyncService) readCache(ctx context.Context, kind models.DatasetKind, out interface{}) bool {
	raw, ok, err := s.local.Get(ctx, string(kind))
	if err != nil {
		logrus.WithFields(logrus.Fields{"dataset": kind, "error": err.Error()}).Warn("Cache read failed")
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		// Malformed cached JSON falls through to defaults rather than
		// propagating partial corruption.
		logrus.WithFields(logrus.Fields{"dataset": kind, "error": err.Error()}).Warn("Cache entry malformed, ignoring")
		return false
	}
	return true
}

func (s *SyncService) writeCache(ctx context.Context, kind models.DatasetKind, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	if err := s.local.Set(ctx, string(kind), string(raw)); err != nil {
		logrus.WithFields(logrus.Fields{"dataset": kind, "error": err.Error()}).Error("Cache write failed")
		return fmt.Errorf("cache %s: %w", kind, err)
	}
	return nil
}

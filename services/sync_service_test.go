package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"absensi_go/database"
	"absensi_go/models"
	"absensi_go/storage"
)

// fakeDocumentStore is an in-memory DocumentStore for exercising the sync
// layer without MySQL.
type fakeDocumentStore struct {
	docs    map[string]map[string]json.RawMessage // collection -> id -> payload
	nextID  int
	failAll bool
}

func newFakeDocumentStore() *fakeDocumentStore {
	return &fakeDocumentStore{docs: make(map[string]map[string]json.RawMessage)}
}

func (f *fakeDocumentStore) put(collection, id string, payload interface{}) {
	raw, _ := json.Marshal(payload)
	if f.docs[collection] == nil {
		f.docs[collection] = make(map[string]json.RawMessage)
	}
	f.docs[collection][id] = raw
}

func (f *fakeDocumentStore) ListAll(_ context.Context, collection, _ string) ([]database.StoredDocument, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unreachable")
	}
	out := make([]database.StoredDocument, 0, len(f.docs[collection]))
	for id, raw := range f.docs[collection] {
		out = append(out, database.StoredDocument{ID: id, Data: raw})
	}
	return out, nil
}

func (f *fakeDocumentStore) Get(_ context.Context, collection, id string) (json.RawMessage, error) {
	if f.failAll {
		return nil, fmt.Errorf("store unreachable")
	}
	raw, ok := f.docs[collection][id]
	if !ok {
		return nil, fmt.Errorf("document %s/%s not found", collection, id)
	}
	return raw, nil
}

func (f *fakeDocumentStore) Add(_ context.Context, collection string, payload interface{}) (string, error) {
	if f.failAll {
		return "", fmt.Errorf("store unreachable")
	}
	f.nextID++
	id := fmt.Sprintf("doc_%d", f.nextID)
	f.put(collection, id, payload)
	return id, nil
}

func (f *fakeDocumentStore) Upsert(_ context.Context, collection, id string, payload interface{}) error {
	if f.failAll {
		return fmt.Errorf("store unreachable")
	}
	f.put(collection, id, payload)
	return nil
}

func (f *fakeDocumentStore) UpdateFields(_ context.Context, collection, id string, fields map[string]interface{}) error {
	if f.failAll {
		return fmt.Errorf("store unreachable")
	}
	raw, ok := f.docs[collection][id]
	if !ok {
		return fmt.Errorf("document %s/%s not found", collection, id)
	}
	var current map[string]interface{}
	if err := json.Unmarshal(raw, &current); err != nil {
		return err
	}
	for k, v := range fields {
		current[k] = v
	}
	f.put(collection, id, current)
	return nil
}

func (f *fakeDocumentStore) Delete(_ context.Context, collection, id string) error {
	if f.failAll {
		return fmt.Errorf("store unreachable")
	}
	delete(f.docs[collection], id)
	return nil
}

func TestLoadStudentsFallbackChain(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults when cache empty and no remote", func(t *testing.T) {
		s := NewSyncService(storage.NewMemoryStore(), nil)
		students := s.LoadStudents(ctx)
		if len(students) == 0 {
			t.Fatalf("expected default roster, got none")
		}
	})

	t.Run("remote wins and populates cache", func(t *testing.T) {
		remote := newFakeDocumentStore()
		remote.put(database.CollStudents, "9001", models.Student{ID: "9001", Name: "BUDI", ClassName: "IX B", Gender: "L"})
		local := storage.NewMemoryStore()
		s := NewSyncService(local, remote)

		students := s.LoadStudents(ctx)
		if len(students) != 1 || students[0].ID != "9001" {
			t.Fatalf("expected remote roster, got %+v", students)
		}

		// a second load with the remote now down must serve the cached copy
		remote.failAll = true
		students = s.LoadStudents(ctx)
		if len(students) != 1 || students[0].ID != "9001" {
			t.Fatalf("expected cached roster after remote failure, got %+v", students)
		}
	})

	t.Run("empty remote roster keeps local data", func(t *testing.T) {
		local := storage.NewMemoryStore()
		cached := []models.Student{{ID: "9002", Name: "SITI", ClassName: "IX A", Gender: "P"}}
		raw, _ := json.Marshal(cached)
		if err := local.Set(ctx, string(models.DatasetStudents), string(raw)); err != nil {
			t.Fatalf("seed cache: %v", err)
		}
		s := NewSyncService(local, newFakeDocumentStore())

		students := s.LoadStudents(ctx)
		if len(students) != 1 || students[0].ID != "9002" {
			t.Fatalf("empty remote roster must not blank the cache, got %+v", students)
		}
	})

	t.Run("malformed cache entry falls through to defaults", func(t *testing.T) {
		local := storage.NewMemoryStore()
		if err := local.Set(ctx, string(models.DatasetStudents), "{not json"); err != nil {
			t.Fatalf("seed cache: %v", err)
		}
		s := NewSyncService(local, nil)
		if students := s.LoadStudents(ctx); len(students) == 0 {
			t.Fatalf("expected default roster for corrupt cache")
		}
	})
}

func TestLoadAttendanceDefaultsEmpty(t *testing.T) {
	ctx := context.Background()
	s := NewSyncService(storage.NewMemoryStore(), nil)
	if records := s.LoadAttendance(ctx); len(records) != 0 {
		t.Fatalf("expected empty log, got %d records", len(records))
	}
}

func TestLoadSchoolConfigFallback(t *testing.T) {
	ctx := context.Background()

	s := NewSyncService(storage.NewMemoryStore(), nil)
	cfg := s.LoadSchoolConfig(ctx)
	if cfg.AcademicYear == "" || cfg.Semester == "" {
		t.Fatalf("expected default config, got %+v", cfg)
	}

	remote := newFakeDocumentStore()
	remote.put(database.CollConfig, database.ConfigDocID, models.SchoolConfig{AcademicYear: "2026/2027", Semester: models.SemesterGenap})
	s = NewSyncService(storage.NewMemoryStore(), remote)
	cfg = s.LoadSchoolConfig(ctx)
	if cfg.AcademicYear != "2026/2027" || cfg.Semester != models.SemesterGenap {
		t.Fatalf("expected remote config, got %+v", cfg)
	}
}

func TestSaveStudentsUpsertsByNIS(t *testing.T) {
	ctx := context.Background()
	remote := newFakeDocumentStore()
	s := NewSyncService(storage.NewMemoryStore(), remote)

	roster := []models.Student{
		{ID: "9001", Name: "BUDI", ClassName: "IX B", Gender: "L"},
		{ID: "9002", Name: "SITI", ClassName: "IX A", Gender: "P"},
	}
	if err := s.SaveStudents(ctx, roster); err != nil {
		t.Fatalf("save: %v", err)
	}
	if len(remote.docs[database.CollStudents]) != 2 {
		t.Fatalf("expected 2 remote documents, got %d", len(remote.docs[database.CollStudents]))
	}

	// saving the same roster again must not duplicate documents
	if err := s.SaveStudents(ctx, roster); err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(remote.docs[database.CollStudents]) != 2 {
		t.Fatalf("upsert duplicated documents: %d", len(remote.docs[database.CollStudents]))
	}
}

func TestSaveStudentsNoRemote(t *testing.T) {
	s := NewSyncService(storage.NewMemoryStore(), nil)
	roster := []models.Student{{ID: "9001", Name: "BUDI", ClassName: "IX B", Gender: "L"}}
	if err := s.SaveStudents(context.Background(), roster); err != nil {
		t.Fatalf("cache-only save must succeed: %v", err)
	}
	if got := s.LoadStudents(context.Background()); len(got) != 1 || got[0].ID != "9001" {
		t.Fatalf("expected cached roster, got %+v", got)
	}
}

func TestCreateAttendance(t *testing.T) {
	ctx := context.Background()
	student := models.Student{ID: "9001", Name: "BUDI", ClassName: "IX B", Gender: "L"}

	t.Run("remote id replaces temporary id", func(t *testing.T) {
		remote := newFakeDocumentStore()
		s := NewSyncService(storage.NewMemoryStore(), remote)

		record, err := s.CreateAttendance(ctx, student, "Pak Guru", models.StatusPresent)
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if strings.HasPrefix(record.ID, models.LocalIDPrefix) {
			t.Fatalf("expected durable id, got %s", record.ID)
		}
		if record.SyncStatus != models.SyncSynced {
			t.Fatalf("expected synced, got %s", record.SyncStatus)
		}

		cached := s.LoadAttendance(ctx)
		if len(cached) != 1 || cached[0].ID != record.ID {
			t.Fatalf("cache not patched with remote id: %+v", cached)
		}
		if cached[0].OperatorName != "Pak Guru" {
			t.Fatalf("operator not recorded: %+v", cached[0])
		}
	})

	t.Run("ids survive a remote reload", func(t *testing.T) {
		remote := newFakeDocumentStore()
		s := NewSyncService(storage.NewMemoryStore(), remote)

		record, err := s.CreateAttendance(ctx, student, "Pak Guru", models.StatusPresent)
		if err != nil {
			t.Fatalf("create: %v", err)
		}

		// cold load on an empty cache must restore the store-assigned id
		fresh := NewSyncService(storage.NewMemoryStore(), remote)
		records := fresh.LoadAttendance(ctx)
		if len(records) != 1 || records[0].ID != record.ID {
			t.Fatalf("id lost on remote reload: %+v", records)
		}
		if records[0].SyncStatus != models.SyncSynced {
			t.Fatalf("expected synced after reload, got %q", records[0].SyncStatus)
		}

		// the restored id must still address the record
		if err := fresh.DeleteAttendance(ctx, records[0].ID); err != nil {
			t.Fatalf("delete by restored id: %v", err)
		}
		if left := fresh.LoadAttendance(ctx); len(left) != 0 {
			t.Fatalf("expected empty log after delete, got %+v", left)
		}
	})

	t.Run("duplicate same day rejected", func(t *testing.T) {
		s := NewSyncService(storage.NewMemoryStore(), nil)
		if _, err := s.CreateAttendance(ctx, student, "Pak Guru", models.StatusPresent); err != nil {
			t.Fatalf("first create: %v", err)
		}
		if _, err := s.CreateAttendance(ctx, student, "Pak Guru", models.StatusHaid); err != ErrDuplicateAttendance {
			t.Fatalf("expected ErrDuplicateAttendance, got %v", err)
		}
		if records := s.LoadAttendance(ctx); len(records) != 1 {
			t.Fatalf("duplicate mutated the log: %d records", len(records))
		}
	})

	t.Run("remote failure keeps local record", func(t *testing.T) {
		remote := newFakeDocumentStore()
		remote.failAll = true
		s := NewSyncService(storage.NewMemoryStore(), remote)

		record, err := s.CreateAttendance(ctx, student, "Pak Guru", models.StatusPresent)
		if err != nil {
			t.Fatalf("local durability takes priority, got error: %v", err)
		}
		if !strings.HasPrefix(record.ID, models.LocalIDPrefix) {
			t.Fatalf("expected temporary id, got %s", record.ID)
		}
		if record.SyncStatus != models.SyncFailed {
			t.Fatalf("expected sync_failed, got %s", record.SyncStatus)
		}

		// record must survive a reload while the remote is still down
		cached := s.LoadAttendance(ctx)
		if len(cached) != 1 || cached[0].SyncStatus != models.SyncFailed {
			t.Fatalf("failed record lost from cache: %+v", cached)
		}
	})

	t.Run("invalid status defaults to present", func(t *testing.T) {
		s := NewSyncService(storage.NewMemoryStore(), nil)
		record, err := s.CreateAttendance(ctx, student, "", "BOGUS")
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if record.Status != models.StatusPresent {
			t.Fatalf("expected PRESENT, got %s", record.Status)
		}
		if record.OperatorName != "System" {
			t.Fatalf("expected System operator, got %s", record.OperatorName)
		}
	})
}

func TestDeleteAttendance(t *testing.T) {
	ctx := context.Background()
	student := models.Student{ID: "9001", Name: "BUDI", ClassName: "IX B", Gender: "L"}
	remote := newFakeDocumentStore()
	s := NewSyncService(storage.NewMemoryStore(), remote)

	record, err := s.CreateAttendance(ctx, student, "Pak Guru", models.StatusPresent)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.DeleteAttendance(ctx, "no-such-id"); err != nil {
		t.Fatalf("missing id must be a no-op, got %v", err)
	}
	if records := s.LoadAttendance(ctx); len(records) != 1 {
		t.Fatalf("no-op delete mutated the log")
	}

	if err := s.DeleteAttendance(ctx, record.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if records := s.LoadAttendance(ctx); len(records) != 0 {
		t.Fatalf("record not deleted: %+v", records)
	}
	if len(remote.docs[database.CollAttendance]) != 0 {
		t.Fatalf("remote document not deleted")
	}
}

func TestUpdateAttendanceStatus(t *testing.T) {
	ctx := context.Background()
	student := models.Student{ID: "9001", Name: "BUDI", ClassName: "IX B", Gender: "P"}
	remote := newFakeDocumentStore()
	s := NewSyncService(storage.NewMemoryStore(), remote)

	record, err := s.CreateAttendance(ctx, student, "Pak Guru", models.StatusPresent)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := s.UpdateAttendanceStatus(ctx, record.ID, models.StatusHaid); err != nil {
		t.Fatalf("update: %v", err)
	}
	cached := s.LoadAttendance(ctx)
	if len(cached) != 1 || cached[0].Status != models.StatusHaid {
		t.Fatalf("status not updated: %+v", cached)
	}

	var stored models.AttendanceRecord
	raw, errGet := remote.Get(ctx, database.CollAttendance, record.ID)
	if errGet != nil {
		t.Fatalf("remote get: %v", errGet)
	}
	if err := json.Unmarshal(raw, &stored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if stored.Status != models.StatusHaid {
		t.Fatalf("remote document not patched: %+v", stored)
	}

	if err := s.UpdateAttendanceStatus(ctx, "no-such-id", models.StatusPresent); err != nil {
		t.Fatalf("missing id must be a no-op, got %v", err)
	}
	if err := s.UpdateAttendanceStatus(ctx, record.ID, "BOGUS"); err == nil {
		t.Fatalf("expected error for invalid status")
	}
}

func TestSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewSyncService(storage.NewMemoryStore(), nil)

	if _, ok := s.LoadSession(ctx); ok {
		t.Fatalf("expected no session initially")
	}

	session := models.AuthSession{
		Username: "9001",
		Role:     models.RoleParent,
		Student:  &models.Student{ID: "9001", Name: "BUDI", ClassName: "IX B", Gender: "L"},
	}
	if err := s.SaveSession(ctx, session); err != nil {
		t.Fatalf("save session: %v", err)
	}
	got, ok := s.LoadSession(ctx)
	if !ok || got.Username != "9001" || got.Role != models.RoleParent {
		t.Fatalf("session round trip failed: %+v", got)
	}
	if got.Student == nil || got.Student.ID != "9001" {
		t.Fatalf("student snapshot lost: %+v", got.Student)
	}

	if err := s.ClearSession(ctx); err != nil {
		t.Fatalf("clear session: %v", err)
	}
	if _, ok := s.LoadSession(ctx); ok {
		t.Fatalf("expected session cleared")
	}
}

func TestDeleteTeacher(t *testing.T) {
	ctx := context.Background()
	remote := newFakeDocumentStore()
	s := NewSyncService(storage.NewMemoryStore(), remote)

	teachers := []models.Teacher{{ID: "t_1", Name: "Bu Ani"}, {ID: "t_2", Name: "Pak Budi"}}
	if err := s.SaveTeachers(ctx, teachers); err != nil {
		t.Fatalf("save teachers: %v", err)
	}
	if err := s.DeleteTeacher(ctx, "t_1"); err != nil {
		t.Fatalf("delete teacher: %v", err)
	}
	got := s.LoadTeachers(ctx)
	if len(got) != 1 || got[0].ID != "t_2" {
		t.Fatalf("expected t_2 only, got %+v", got)
	}
}

func TestHolidaysSortedDescending(t *testing.T) {
	ctx := context.Background()
	s := NewSyncService(storage.NewMemoryStore(), nil)

	holidays := []models.Holiday{
		{ID: "h1", Date: "2025-01-01", Description: "Tahun Baru"},
		{ID: "h2", Date: "2025-08-17", Description: "HUT RI"},
	}
	if err := s.SaveHolidays(ctx, holidays); err != nil {
		t.Fatalf("save holidays: %v", err)
	}
	got := s.LoadHolidays(ctx)
	if len(got) != 2 || got[0].ID != "h2" {
		t.Fatalf("expected date-descending order, got %+v", got)
	}
}

package database

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Collection names in the remote document store.
const (
	CollStudents   = "students"
	CollTeachers   = "teachers"
	CollAttendance = "attendance"
	CollConfig     = "config"
	CollHolidays   = "holidays"
)

// ConfigDocID is the fixed id of the singleton school config document.
const ConfigDocID = "school"

// StoredDocument pairs a payload with its store-assigned document id. The id
// lives outside the payload (records are submitted without one), so readers
// re-attach it after decoding.
type StoredDocument struct {
	ID   string
	Data json.RawMessage
}

// DocumentStore is the remote store contract the sync layer talks to. The
// store is an opaque (collection, id) -> JSON document map; ordering is the
// only query capability the app needs.
type DocumentStore interface {
	// ListAll returns every document in a collection. orderByDesc orders by
	// a numeric payload field, newest first; empty means unspecified order.
	ListAll(ctx context.Context, collection, orderByDesc string) ([]StoredDocument, error)
	Get(ctx context.Context, collection, id string) (json.RawMessage, error)
	// Add stores a document under a store-generated id and returns that id.
	Add(ctx context.Context, collection string, payload interface{}) (string, error)
	Upsert(ctx context.Context, collection, id string, payload interface{}) error
	UpdateFields(ctx context.Context, collection, id string, fields map[string]interface{}) error
	Delete(ctx context.Context, collection, id string) error
}

// Document is one row of the documents table. Every collection shares the
// table; (collection, doc_id) is the address.
type Document struct {
	ID         uint           `gorm:"primaryKey"`
	Collection string         `gorm:"size:50;not null;uniqueIndex:idx_coll_doc,priority:1;index"`
	DocID      string         `gorm:"size:100;not null;uniqueIndex:idx_coll_doc,priority:2"`
	Payload    JSON           `gorm:"type:json"`
	OrderKey   int64          `gorm:"index"` // denormalized timestamp for ordered listing
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index"`
}

// JSON field type for GORM
type JSON []byte

func (j JSON) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append((*j)[0:0], v...)
	case string:
		*j = append((*j)[0:0], v...)
	}
	return nil
}

// GormDocumentStore implements DocumentStore over the shared documents table.
type GormDocumentStore struct {
	db *gorm.DB
}

// NewGormDocumentStore wraps a gorm handle. Callers that have no remote
// backend pass a nil DocumentStore to the sync layer instead.
func NewGormDocumentStore(db *gorm.DB) *GormDocumentStore {
	return &GormDocumentStore{db: db}
}

func (s *GormDocumentStore) ListAll(ctx context.Context, collection, orderByDesc string) ([]StoredDocument, error) {
	var docs []Document
	q := s.db.WithContext(ctx).Where("collection = ?", collection)
	if orderByDesc != "" {
		q = q.Order("order_key DESC")
	}
	if err := q.Find(&docs).Error; err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	out := make([]StoredDocument, 0, len(docs))
	for _, d := range docs {
		out = append(out, StoredDocument{ID: d.DocID, Data: json.RawMessage(d.Payload)})
	}
	return out, nil
}

func (s *GormDocumentStore) Get(ctx context.Context, collection, id string) (json.RawMessage, error) {
	var doc Document
	if err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		First(&doc).Error; err != nil {
		return nil, fmt.Errorf("get %s/%s: %w", collection, id, err)
	}
	return json.RawMessage(doc.Payload), nil
}

func (s *GormDocumentStore) Add(ctx context.Context, collection string, payload interface{}) (string, error) {
	id := uuid.NewString()
	if err := s.write(ctx, collection, id, payload); err != nil {
		return "", err
	}
	return id, nil
}

func (s *GormDocumentStore) Upsert(ctx context.Context, collection, id string, payload interface{}) error {
	return s.write(ctx, collection, id, payload)
}

func (s *GormDocumentStore) write(ctx context.Context, collection, id string, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s/%s: %w", collection, id, err)
	}
	doc := Document{
		Collection: collection,
		DocID:      id,
		Payload:    JSON(raw),
		OrderKey:   extractOrderKey(raw),
	}
	err = s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "doc_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "order_key", "updated_at"}),
	}).Create(&doc).Error
	if err != nil {
		return fmt.Errorf("upsert %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *GormDocumentStore) UpdateFields(ctx context.Context, collection, id string, fields map[string]interface{}) error {
	raw, err := s.Get(ctx, collection, id)
	if err != nil {
		return err
	}
	var current map[string]interface{}
	if err := json.Unmarshal(raw, &current); err != nil {
		return fmt.Errorf("patch %s/%s: %w", collection, id, err)
	}
	for k, v := range fields {
		current[k] = v
	}
	return s.write(ctx, collection, id, current)
}

func (s *GormDocumentStore) Delete(ctx context.Context, collection, id string) error {
	err := s.db.WithContext(ctx).
		Where("collection = ? AND doc_id = ?", collection, id).
		Delete(&Document{}).Error
	if err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

// extractOrderKey pulls the timestamp field out of a payload so attendance
// listings can be ordered newest-first without parsing every document.
func extractOrderKey(raw []byte) int64 {
	var probe struct {
		Timestamp int64 `json:"timestamp"`
	}
	_ = json.Unmarshal(raw, &probe)
	return probe.Timestamp
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fiffu/ligawatch/lib/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Document is the single-row table backing SQLiteBackend. The Store keeps
// its opaque one-key document shape; SQLite only makes it survive restarts
// when no KV service is configured.
type Document struct {
	Key       string `gorm:"primaryKey"`
	Value     string
	UpdatedAt time.Time
}

// SQLiteBackend persists the document in a local SQLite file via gorm.
type SQLiteBackend struct {
	db *gorm.DB
}

func NewSQLiteBackend(path string) (*SQLiteBackend, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("sqlite open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&Document{}); err != nil {
		return nil, fmt.Errorf("sqlite migrate: %w", err)
	}
	return &SQLiteBackend{db: db}, nil
}

func (b *SQLiteBackend) Read(ctx context.Context) (*models.Store, error) {
	var row Document
	tx := b.db.WithContext(ctx).Where("key = ?", DocumentKey).First(&row)
	if err := tx.Error; errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNoDocument
	} else if err != nil {
		return nil, fmt.Errorf("sqlite read: %w", err)
	}

	doc := models.NewStore()
	if err := json.Unmarshal([]byte(row.Value), doc); err != nil {
		return nil, fmt.Errorf("sqlite read: decode document: %w", err)
	}
	doc.Normalize()
	return doc, nil
}

func (b *SQLiteBackend) Write(ctx context.Context, doc *models.Store) error {
	value, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("sqlite write: encode document: %w", err)
	}
	row := Document{Key: DocumentKey, Value: string(value), UpdatedAt: time.Now().UTC()}
	tx := b.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&row)
	if err := tx.Error; err != nil {
		return fmt.Errorf("sqlite write: %w", err)
	}
	return nil
}

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	model "worktracker.com/worktracker/internal/models"
)

const documentRowID = 1

// documentRow holds the serialized document; Version drives optimistic locking.
type documentRow struct {
	ID          uint      `gorm:"primaryKey"`
	Version     uint64    `gorm:"not null;default:1"`
	Body        string    `gorm:"type:text;not null"`
	LastUpdated time.Time `gorm:"not null"`
}

func (documentRow) TableName() string {
	return "documents"
}

// SQLiteStore keeps the document in a single row so that concurrent processes sharing the
// database file get a real compare-and-swap on the version column.
type SQLiteStore struct {
	db *gorm.DB
}

func NewSQLiteStore(db *gorm.DB) (*SQLiteStore, error) {
	if err := db.AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Read(ctx context.Context) (*model.Document, error) {
	var row documentRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", documentRowID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.NewDocument(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("select document: %w", err)
	}

	doc := model.NewDocument()
	if err := json.Unmarshal([]byte(row.Body), doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc.Normalize()
	doc.Version = row.Version
	return doc, nil
}

func (s *SQLiteStore) Write(ctx context.Context, doc *model.Document, expected uint64) error {
	if expected == AnyVersion {
		return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var current documentRow
			err := tx.Select("version").First(&current, "id = ?", documentRowID).Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("select document version: %w", err)
			}
			return s.write(tx, doc, current.Version)
		})
	}
	return s.write(s.db.WithContext(ctx), doc, expected)
}

func (s *SQLiteStore) write(db *gorm.DB, doc *model.Document, expected uint64) error {
	next := *doc
	next.Version = expected + 1
	next.Normalize()

	body, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if expected == 0 {
		row := documentRow{
			ID:          documentRowID,
			Version:     next.Version,
			Body:        string(body),
			LastUpdated: next.LastUpdated,
		}
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return fmt.Errorf("insert document: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrOptimisticLock
		}
		doc.Version = next.Version
		return nil
	}

	res := db.Model(&documentRow{}).
		Where("id = ? AND version = ?", documentRowID, expected).
		Updates(map[string]interface{}{
			"body":         string(body),
			"last_updated": next.LastUpdated,
			"version":      gorm.Expr("version + 1"),
		})

	if res.Error != nil {
		return fmt.Errorf("update document: %w", res.Error)
	}

	if res.RowsAffected == 0 {
		return ErrOptimisticLock
	}

	doc.Version = next.Version
	return nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

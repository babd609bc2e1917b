// Package postgres stores named collections in a single Postgres table
// through gorm, one jsonb row per collection.
package postgres

import (
	"alcyxob/gymhub/internal/store"
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

type collectionRow struct {
	Name      string         `gorm:"primaryKey;size:128"`
	Data      datatypes.JSON `gorm:"type:jsonb;not null"`
	Version   int64          `gorm:"not null"`
	UpdatedAt time.Time
}

func (collectionRow) TableName() string {
	return "collections"
}

// Open connects to Postgres and migrates the collections table.
func Open(dsn string, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := db.AutoMigrate(&collectionRow{}); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return db, nil
}

type gormCollectionStore struct {
	db *gorm.DB
}

// NewCollectionStore creates a collection store over an opened gorm connection.
func NewCollectionStore(db *gorm.DB) store.CollectionStore {
	return &gormCollectionStore{db: db}
}

func (s *gormCollectionStore) Get(ctx context.Context, name string) (store.Collection, error) {
	var row collectionRow
	err := s.db.WithContext(ctx).Where("name = ?", name).Take(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return store.Collection{}, nil
		}
		return store.Collection{}, err
	}
	return store.Collection{Data: []byte(row.Data), Version: row.Version}, nil
}

func (s *gormCollectionStore) Save(ctx context.Context, name string, c store.Collection) (store.Collection, error) {
	now := time.Now().UTC()
	next := c.Version + 1

	if c.Version == 0 {
		row := collectionRow{Name: name, Data: datatypes.JSON(c.Data), Version: next, UpdatedAt: now}
		result := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if result.Error != nil {
			return store.Collection{}, result.Error
		}
		if result.RowsAffected == 0 {
			return store.Collection{}, store.ErrVersionConflict
		}
		return store.Collection{Data: c.Data, Version: next}, nil
	}

	result := s.db.WithContext(ctx).
		Model(&collectionRow{}).
		Where("name = ? AND version = ?", name, c.Version).
		Updates(map[string]interface{}{
			"data":       datatypes.JSON(c.Data),
			"version":    next,
			"updated_at": now,
		})
	if result.Error != nil {
		return store.Collection{}, result.Error
	}
	if result.RowsAffected == 0 {
		return store.Collection{}, store.ErrVersionConflict
	}
	return store.Collection{Data: c.Data, Version: next}, nil
}

func (s *gormCollectionStore) Names(ctx context.Context) ([]string, error) {
	var names []string
	err := s.db.WithContext(ctx).Model(&collectionRow{}).Order("name").Pluck("name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

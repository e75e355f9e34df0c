// Package gormstore implements the record store on a single GORM-managed
// table. The same repository serves postgres in production and sqlite in
// local development; the dialector is chosen by the caller.
package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/lead-rotation/internal/storage"
	"gorm.io/gorm"
)

// recordRow is the persistence shape of one logical record.
type recordRow struct {
	Key       string    `gorm:"column:key;primaryKey"`
	Data      []byte    `gorm:"column:data;not null"`
	Version   int64     `gorm:"column:version;not null;default:0"`
	UpdatedAt time.Time `gorm:"column:updated_at;not null"`
}

func (recordRow) TableName() string {
	return "records"
}

type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates the records table. The sqlite driver has no goose
// migration path, so the server runs this on boot for non-postgres drivers.
func (s *Store) AutoMigrate() error {
	return s.db.AutoMigrate(&recordRow{})
}

func (s *Store) Get(ctx context.Context, key string) (storage.Record, error) {
	var row recordRow
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return storage.Record{}, storage.ErrNotFound
		}
		return storage.Record{}, err
	}
	return storage.Record{Data: row.Data, Version: row.Version}, nil
}

func (s *Store) Set(ctx context.Context, key string, data []byte) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&recordRow{}).
			Where("key = ?", key).
			Updates(map[string]interface{}{
				"data":       data,
				"version":    gorm.Expr("version + 1"),
				"updated_at": time.Now(),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return tx.Create(&recordRow{Key: key, Data: data, Version: 1, UpdatedAt: time.Now()}).Error
		}
		return nil
	})
}

// SetVersioned performs the compare-and-swap: the update only lands when
// the stored version still matches what the caller read.
func (s *Store) SetVersioned(ctx context.Context, key string, data []byte, expectedVersion int64) error {
	if expectedVersion == 0 {
		err := s.db.WithContext(ctx).Create(&recordRow{
			Key:       key,
			Data:      data,
			Version:   1,
			UpdatedAt: time.Now(),
		}).Error
		if err != nil && errors.Is(err, gorm.ErrDuplicatedKey) {
			return storage.ErrVersionConflict
		}
		return err
	}

	res := s.db.WithContext(ctx).Model(&recordRow{}).
		Where("key = ? AND version = ?", key, expectedVersion).
		Updates(map[string]interface{}{
			"data":       data,
			"version":    expectedVersion + 1,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return storage.ErrVersionConflict
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).Where("key = ?", key).Delete(&recordRow{}).Error
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

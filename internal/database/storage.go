// storage.go
//
// Record store and permission service for the RealE-Market real estate CRM
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of crmdb.
// crmdb is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// crmdb is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with crmdb.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/localnerve/crmdb/internal/kv"
	"github.com/localnerve/crmdb/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
	"gorm.io/hints"
)

// Storage is a kv.Storage over the storage_entries table. Put runs in one
// transaction and checks each entry's version, so concurrent service
// instances sharing a database cannot overwrite each other's writes.
type Storage struct {
	db *gorm.DB
}

// NewStorage wraps db. Closing the storage closes db.
func NewStorage(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

func (s *Storage) quiet(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Session(&gorm.Session{Logger: s.db.Logger.LogMode(logger.Silent)})
}

func (s *Storage) Get(ctx context.Context, key string) (kv.Entry, error) {
	var row models.StorageEntry
	err := s.quiet(ctx).
		Clauses(hints.Comment("select", "crmdb:kv-get")).
		Where("entry_key = ?", key).
		First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return kv.Entry{}, kv.ErrNotFound
		}
		return kv.Entry{}, err
	}
	return kv.Entry{
		Key:       row.EntryKey,
		Value:     []byte(row.EntryValue.JSON),
		Version:   row.EntryVersion,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func (s *Storage) Put(ctx context.Context, entries []kv.Entry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for _, e := range entries {
			value := models.JSON{JSON: datatypes.JSON(e.Value)}

			if e.Version == 0 {
				// Lock and check the key is new
				var existing []models.StorageEntry
				if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
					Where("entry_key = ?", e.Key).
					Limit(1).
					Find(&existing).Error; err != nil {
					return err
				}
				if len(existing) > 0 {
					return fmt.Errorf("%w: %s already exists", kv.ErrVersion, e.Key)
				}
				row := models.StorageEntry{
					EntryKey:     e.Key,
					EntryValue:   value,
					EntryVersion: 1,
					CreatedAt:    now,
					UpdatedAt:    now,
				}
				if err := tx.Create(&row).Error; err != nil {
					if errors.Is(err, gorm.ErrDuplicatedKey) {
						return fmt.Errorf("%w: %s already exists", kv.ErrVersion, e.Key)
					}
					return err
				}
				continue
			}

			result := tx.Model(&models.StorageEntry{}).
				Where("entry_key = ? AND entry_version = ?", e.Key, e.Version).
				Updates(map[string]interface{}{
					"entry_value":   value,
					"entry_version": e.Version + 1,
					"updated_at":    now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return fmt.Errorf("%w: %s changed since version %d", kv.ErrVersion, e.Key, e.Version)
			}
		}
		return nil
	})
}

func (s *Storage) Delete(ctx context.Context, key string) error {
	return s.db.WithContext(ctx).
		Where("entry_key = ?", key).
		Delete(&models.StorageEntry{}).Error
}

func (s *Storage) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	err := s.quiet(ctx).
		Model(&models.StorageEntry{}).
		Order("entry_key").
		Pluck("entry_key", &keys).Error
	return keys, err
}

func (s *Storage) Close() error {
	return Close(s.db)
}

// Ping checks the database is reachable
func (s *Storage) Ping() error {
	return Ping(s.db)
}

package models

import (
	"time"
)

// StorageEntry is one key of the key-value persistence medium. Each record
// store collection or singleton is written as a single JSON document.
type StorageEntry struct {
	EntryKey     string `gorm:"primaryKey;size:255"`
	EntryValue   JSON
	EntryVersion uint64 `gorm:"not null;default:0"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName overrides the table name for StorageEntry
func (StorageEntry) TableName() string {
	return "storage_entries"
}

// backup.go
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

// Package backup writes export documents of the record store to a sink: a
// local directory or an S3-compatible bucket.
package backup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/localnerve/crmdb/internal/store"
)

// Driver identifies a sink implementation
type Driver string

const (
	// DriverFilesystem writes backups to a local directory
	DriverFilesystem Driver = "fs"
	// DriverS3 writes backups to an S3 / MinIO bucket
	DriverS3 Driver = "s3"
)

// Prefix starts every backup file name
const Prefix = "crm_backup_"

var (
	// ErrNotFound is returned by Read for a backup that does not exist
	ErrNotFound = errors.New("backup not found")
	// ErrInvalidName is returned for a name that is not a backup file name
	ErrInvalidName = errors.New("invalid backup name")
)

var namePattern = regexp.MustCompile(`^crm_backup_\d{4}-\d{2}-\d{2}(_\d{6})?\.json$`)

// Info describes a stored backup
type Info struct {
	Name       string    `json:"name"`
	Size       int64     `json:"size"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Sink stores backup documents by name
type Sink interface {
	Write(ctx context.Context, name string, data []byte) (Info, error)
	Read(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context) ([]Info, error)
	Driver() Driver
}

// FileName is the backup name for a given day
func FileName(now time.Time) string {
	return Prefix + now.UTC().Format("2006-01-02") + ".json"
}

// ValidName reports whether name is a backup file name
func ValidName(name string) bool {
	return namePattern.MatchString(name)
}

// Run exports s and writes the document to sink under today's name.
// A second backup on the same day replaces the first.
func Run(ctx context.Context, s *store.Store, sink Sink, now time.Time) (Info, error) {
	doc := s.Export(now)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Info{}, fmt.Errorf("encode backup: %w", err)
	}
	info, err := sink.Write(ctx, FileName(now), data)
	if err != nil {
		return Info{}, fmt.Errorf("write backup: %w", err)
	}
	return info, nil
}

// Restore reads the named backup and imports it into s
func Restore(ctx context.Context, s *store.Store, sink Sink, name string) error {
	if !ValidName(name) {
		return ErrInvalidName
	}
	data, err := sink.Read(ctx, name)
	if err != nil {
		return err
	}
	var doc store.ExportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidImport, err)
	}
	return s.Import(ctx, doc)
}

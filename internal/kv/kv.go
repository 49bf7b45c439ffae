// kv.go
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

// Package kv defines the key-value persistence medium the record store
// mirrors its collections to. Each key holds one JSON document and a version
// counter used for compare-and-swap writes.
package kv

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get when the key has never been written.
	ErrNotFound = errors.New("kv: key not found")
	// ErrVersion is returned by Put when an entry's expected version does not
	// match the stored version.
	ErrVersion = errors.New("kv: version mismatch")
)

// Entry is a single stored value.
//
// On Put, Version is the version the writer last observed (0 means the key
// must not exist yet). The stored version after a successful Put is
// Version+1.
type Entry struct {
	Key       string
	Value     []byte
	Version   uint64
	UpdatedAt time.Time
}

// Storage is the persistence medium behind the record store.
type Storage interface {
	// Get returns the entry stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) (Entry, error)
	// Put writes every entry atomically. If any entry fails its version check
	// nothing is written and ErrVersion is returned.
	Put(ctx context.Context, entries []Entry) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Keys lists every stored key in lexical order.
	Keys(ctx context.Context) ([]string, error)
	// Close releases any resources held by the backend.
	Close() error
}

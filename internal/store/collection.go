// collection.go
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

package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidRecord wraps a request body that does not decode into the
// collection's element type
var ErrInvalidRecord = errors.New("invalid record")

// Record is implemented by every collection element
type Record[T any] interface {
	RecordKey() string
	WithKey(key string) T
}

// entity is one persisted key of the store
type entity interface {
	Name() string
	decode(data []byte) (any, error)
	zero() any
	count(v any) int
}

// Dynamic is the untyped face of a collection, used by routes that name the
// collection in the URL
type Dynamic interface {
	Name() string
	Values(s *Store) any
	Value(s *Store, key string) (any, bool)
	AddJSON(ctx context.Context, s *Store, body []byte) (any, error)
	UpdateJSON(ctx context.Context, s *Store, key string, body []byte) (any, Result, error)
	Delete(ctx context.Context, s *Store, key string) (Result, error)
	ReplaceJSON(ctx context.Context, s *Store, body []byte) (any, error)
}

// Collection is a named, ordered list of records persisted under one key.
// Every mutation builds a new slice; published slices are never modified.
type Collection[T Record[T]] struct {
	name     string
	defaults func(T) T
}

// NewCollection declares a collection stored under name
func NewCollection[T Record[T]](name string) *Collection[T] {
	return &Collection[T]{name: name}
}

// WithDefaults sets the function applied to every new record before it is
// appended. It fills zero-valued fields only.
func (c *Collection[T]) WithDefaults(fn func(T) T) *Collection[T] {
	c.defaults = fn
	return c
}

// Name is the collection's storage key
func (c *Collection[T]) Name() string { return c.name }

func (c *Collection[T]) decode(data []byte) (any, error) {
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, err
	}
	if items == nil {
		return nil, errNull
	}
	return items, nil
}

func (c *Collection[T]) zero() any { return []T{} }

func (c *Collection[T]) count(v any) int { return len(c.items(v)) }

func (c *Collection[T]) items(v any) []T {
	items, _ := v.([]T)
	return items
}

func (c *Collection[T]) index(items []T, key string) int {
	if key == "" {
		return -1
	}
	for i, item := range items {
		if item.RecordKey() == key {
			return i
		}
	}
	return -1
}

func clone[T any](items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	return out
}

// List returns the records in insertion order
func (c *Collection[T]) List(s *Store) []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(c.items(s.state[c.name]))
}

// Get returns the record with key
func (c *Collection[T]) Get(s *Store, key string) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := c.items(s.state[c.name])
	if i := c.index(items, key); i >= 0 {
		return items[i], true
	}
	var zero T
	return zero, false
}

// Add assigns a fresh key, applies defaults, appends and persists
func (c *Collection[T]) Add(ctx context.Context, s *Store, item T) (T, error) {
	var added T
	err := s.Update(ctx, func(tx *Tx) error {
		added = c.AddIn(tx, item)
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return added, nil
}

// Update replaces the record with the same key, keeping its position
func (c *Collection[T]) Update(ctx context.Context, s *Store, item T) (Result, error) {
	var res Result
	err := s.Update(ctx, func(tx *Tx) error {
		res = c.UpdateIn(tx, item)
		return nil
	})
	return res, err
}

// Delete removes the record with key. Deleting a missing key changes nothing.
func (c *Collection[T]) Delete(ctx context.Context, s *Store, key string) (Result, error) {
	var res Result
	err := s.Update(ctx, func(tx *Tx) error {
		res = c.DeleteIn(tx, key)
		return nil
	})
	return res, err
}

// Replace swaps the whole list. Records without a key are given one.
func (c *Collection[T]) Replace(ctx context.Context, s *Store, items []T) ([]T, error) {
	var replaced []T
	err := s.Update(ctx, func(tx *Tx) error {
		replaced = c.ReplaceIn(tx, items)
		return nil
	})
	return replaced, err
}

// Prepend adds a record at the front. Used for newest-first logs.
func (c *Collection[T]) Prepend(ctx context.Context, s *Store, item T) (T, error) {
	var added T
	err := s.Update(ctx, func(tx *Tx) error {
		added = c.PrependIn(tx, item)
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return added, nil
}

// ListIn returns the records as staged in tx
func (c *Collection[T]) ListIn(tx *Tx) []T {
	return clone(c.items(tx.load(c)))
}

// GetIn returns the record with key as staged in tx
func (c *Collection[T]) GetIn(tx *Tx, key string) (T, bool) {
	items := c.items(tx.load(c))
	if i := c.index(items, key); i >= 0 {
		return items[i], true
	}
	var zero T
	return zero, false
}

// AddIn stages an append in tx and returns the stored record
func (c *Collection[T]) AddIn(tx *Tx, item T) T {
	cur := c.items(tx.load(c))
	item = item.WithKey(c.freshKey(tx, cur))
	if c.defaults != nil {
		item = c.defaults(item)
	}
	next := make([]T, 0, len(cur)+1)
	next = append(next, cur...)
	next = append(next, item)
	tx.stage(c, next, "add")
	return item
}

// UpdateIn stages a replacement in tx
func (c *Collection[T]) UpdateIn(tx *Tx, item T) Result {
	cur := c.items(tx.load(c))
	i := c.index(cur, item.RecordKey())
	if i < 0 {
		tx.note(c, "update", NotFound)
		return NotFound
	}
	next := clone(cur)
	next[i] = item
	tx.stage(c, next, "update")
	return Applied
}

// DeleteIn stages a removal in tx
func (c *Collection[T]) DeleteIn(tx *Tx, key string) Result {
	cur := c.items(tx.load(c))
	i := c.index(cur, key)
	if i < 0 {
		tx.note(c, "delete", NotFound)
		return NotFound
	}
	next := make([]T, 0, len(cur)-1)
	next = append(next, cur[:i]...)
	next = append(next, cur[i+1:]...)
	tx.stage(c, next, "delete")
	return Applied
}

// ReplaceIn stages a whole-list replacement in tx
func (c *Collection[T]) ReplaceIn(tx *Tx, items []T) []T {
	next := make([]T, 0, len(items))
	for _, item := range items {
		if item.RecordKey() == "" {
			item = item.WithKey(c.freshKey(tx, next))
		}
		next = append(next, item)
	}
	tx.stage(c, next, "replace")
	return clone(next)
}

// PrependIn stages a newest-first insert in tx
func (c *Collection[T]) PrependIn(tx *Tx, item T) T {
	cur := c.items(tx.load(c))
	item = item.WithKey(c.freshKey(tx, cur))
	next := make([]T, 0, len(cur)+1)
	next = append(next, item)
	next = append(next, cur...)
	tx.stage(c, next, "prepend")
	return item
}

// freshKey skips generated keys that an imported record already uses
func (c *Collection[T]) freshKey(tx *Tx, items []T) string {
	key := tx.s.keys.next()
	for c.index(items, key) >= 0 {
		key = tx.s.keys.next()
	}
	return key
}

func (c *Collection[T]) decodeRecord(body []byte) (T, error) {
	var item T
	if err := json.Unmarshal(body, &item); err != nil {
		return item, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return item, nil
}

// Values returns List as an untyped value
func (c *Collection[T]) Values(s *Store) any { return c.List(s) }

// Value returns Get as an untyped value
func (c *Collection[T]) Value(s *Store, key string) (any, bool) {
	return c.Get(s, key)
}

// AddJSON decodes body into a record and adds it
func (c *Collection[T]) AddJSON(ctx context.Context, s *Store, body []byte) (any, error) {
	item, err := c.decodeRecord(body)
	if err != nil {
		return nil, err
	}
	return c.Add(ctx, s, item)
}

// UpdateJSON decodes body into a record, forces its key, and updates
func (c *Collection[T]) UpdateJSON(ctx context.Context, s *Store, key string, body []byte) (any, Result, error) {
	item, err := c.decodeRecord(body)
	if err != nil {
		return nil, NotFound, err
	}
	item = item.WithKey(key)
	res, err := c.Update(ctx, s, item)
	return item, res, err
}

// ReplaceJSON decodes body into a list and replaces the collection
func (c *Collection[T]) ReplaceJSON(ctx context.Context, s *Store, body []byte) (any, error) {
	var items []T
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecord, err)
	}
	return c.Replace(ctx, s, items)
}

// Singleton is a single persisted record such as the app settings
type Singleton[T any] struct {
	name string
}

// NewSingleton declares a singleton stored under name
func NewSingleton[T any](name string) *Singleton[T] {
	return &Singleton[T]{name: name}
}

type cloner[T any] interface {
	Clone() T
}

// Name is the singleton's storage key
func (g *Singleton[T]) Name() string { return g.name }

func (g *Singleton[T]) decode(data []byte) (any, error) {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil, errNull
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

func (g *Singleton[T]) zero() any {
	var v T
	return v
}

func (g *Singleton[T]) count(any) int { return -1 }

func (g *Singleton[T]) value(v any) T {
	out, _ := v.(T)
	if c, ok := any(out).(cloner[T]); ok {
		return c.Clone()
	}
	return out
}

// Get returns the current value
func (g *Singleton[T]) Get(s *Store) T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return g.value(s.state[g.name])
}

// Set replaces the value and persists it
func (g *Singleton[T]) Set(ctx context.Context, s *Store, v T) error {
	return s.Update(ctx, func(tx *Tx) error {
		g.SetIn(tx, v)
		return nil
	})
}

// GetIn returns the value as staged in tx
func (g *Singleton[T]) GetIn(tx *Tx) T {
	return g.value(tx.load(g))
}

// SetIn stages a replacement in tx
func (g *Singleton[T]) SetIn(tx *Tx, v T) {
	if c, ok := any(v).(cloner[T]); ok {
		v = c.Clone()
	}
	tx.stage(g, v, "set")
}

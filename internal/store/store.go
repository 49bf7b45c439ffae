// store.go
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
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/localnerve/crmdb/internal/kv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// Options configures a Store
type Options struct {
	Logger     *logrus.Logger
	Registerer prometheus.Registerer
	// Defaults returns the seed document for a key that storage lacks
	Defaults func(name string) ([]byte, bool)
	Now      func() time.Time
}

// Store holds every CRM collection and singleton in memory and mirrors them
// to a kv.Storage. Reads return copies; writes go through Update.
type Store struct {
	mu       sync.RWMutex
	storage  kv.Storage
	logger   *logrus.Logger
	metrics  *Metrics
	defaults func(string) ([]byte, bool)
	keys     *keyGen
	state    map[string]any
	versions map[string]uint64
	closed   bool
}

// New creates an empty store over storage. Call Hydrate before use.
func New(storage kv.Storage, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = logrus.New()
	}
	defaults := opts.Defaults
	if defaults == nil {
		defaults = func(string) ([]byte, bool) { return nil, false }
	}
	return &Store{
		storage:  storage,
		logger:   logger,
		metrics:  NewMetrics(opts.Registerer),
		defaults: defaults,
		keys:     newKeyGen(opts.Now),
		state:    make(map[string]any),
		versions: make(map[string]uint64),
	}
}

// Update runs fn against a transaction and commits everything it staged in
// one storage write. If fn fails or the write fails, memory is unchanged.
// fn must use the *In methods; calling List or Get on the store from inside
// fn deadlocks.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	tx := &Tx{s: s, staged: make(map[string]any)}
	if err := fn(tx); err != nil {
		s.metrics.observe(tx.ops, "error")
		return err
	}
	if len(tx.staged) == 0 {
		s.metrics.observe(tx.ops, "")
		return nil
	}

	entries := make([]kv.Entry, 0, len(tx.order))
	for _, name := range tx.order {
		data, err := json.Marshal(tx.staged[name])
		if err != nil {
			s.metrics.observe(tx.ops, "error")
			return fmt.Errorf("encode %s: %w", name, err)
		}
		entries = append(entries, kv.Entry{Key: name, Value: data, Version: s.versions[name]})
	}

	if err := s.storage.Put(ctx, entries); err != nil {
		keys := strings.Join(tx.order, ",")
		if errors.Is(err, kv.ErrVersion) {
			s.metrics.observe(tx.ops, "conflict")
			s.logger.WithFields(logrus.Fields{"keys": keys}).Warn("Store write conflict, another writer changed these keys")
			return fmt.Errorf("%w: %s", ErrConflict, keys)
		}
		s.metrics.observe(tx.ops, "error")
		for _, name := range tx.order {
			s.metrics.PersistErrors.WithLabelValues(name).Inc()
		}
		s.logger.WithFields(logrus.Fields{"keys": keys, "error": err}).Error("Store write failed")
		return fmt.Errorf("persist %s: %w", keys, err)
	}

	for _, name := range tx.order {
		s.state[name] = tx.staged[name]
		s.versions[name]++
		s.gauge(name)
	}
	s.metrics.observe(tx.ops, "")
	return nil
}

// Hydrate loads every key from storage. Missing keys take the seed dataset,
// corrupt keys take the seed dataset with a warning, and seeded values are
// written back so storage matches memory.
func (s *Store) Hydrate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	state := make(map[string]any, len(schema))
	versions := make(map[string]uint64, len(schema))
	var seeds []kv.Entry

	for _, e := range schema {
		name := e.Name()
		entry, err := s.storage.Get(ctx, name)
		switch {
		case errors.Is(err, kv.ErrNotFound):
			v, data, err := s.fallback(e)
			if err != nil {
				return err
			}
			state[name] = v
			seeds = append(seeds, kv.Entry{Key: name, Value: data})
		case err != nil:
			return fmt.Errorf("hydrate %s: %w", name, err)
		default:
			versions[name] = entry.Version
			v, derr := e.decode(entry.Value)
			if derr == nil {
				state[name] = v
				continue
			}
			s.logger.WithFields(logrus.Fields{
				"key":   name,
				"error": derr,
			}).Warn("Corrupt persisted value, falling back to defaults")
			v, data, err := s.fallback(e)
			if err != nil {
				return err
			}
			state[name] = v
			seeds = append(seeds, kv.Entry{Key: name, Value: data, Version: entry.Version})
		}
	}

	if len(seeds) > 0 {
		if err := s.storage.Put(ctx, seeds); err != nil {
			if errors.Is(err, kv.ErrVersion) {
				return fmt.Errorf("%w: seeding defaults", ErrConflict)
			}
			return fmt.Errorf("seed defaults: %w", err)
		}
		for _, seed := range seeds {
			versions[seed.Key] = seed.Version + 1
		}
		s.logger.WithField("count", len(seeds)).Info("Seeded default datasets")
	}

	s.state = state
	s.versions = versions
	for _, e := range schema {
		s.gauge(e.Name())
	}
	return nil
}

// Reload discards memory and hydrates again. Use after ErrConflict.
func (s *Store) Reload(ctx context.Context) error {
	return s.Hydrate(ctx)
}

// Close releases the storage. The store rejects writes afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.storage.Close()
}

// Version returns the storage version last seen for name
func (s *Store) Version(name string) uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.versions[name]
}

// fallback decodes the seed dataset for e, re-encoding it so the stored
// form matches what a later write would produce
func (s *Store) fallback(e entity) (any, []byte, error) {
	v := e.zero()
	if raw, ok := s.defaults(e.Name()); ok {
		decoded, err := e.decode(raw)
		if err != nil {
			return nil, nil, fmt.Errorf("decode default %s: %w", e.Name(), err)
		}
		v = decoded
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, nil, fmt.Errorf("encode default %s: %w", e.Name(), err)
	}
	return v, data, nil
}

func (s *Store) gauge(name string) {
	e, ok := byName[name]
	if !ok {
		return
	}
	if n := e.count(s.state[name]); n >= 0 {
		s.metrics.Records.WithLabelValues(name).Set(float64(n))
	}
}

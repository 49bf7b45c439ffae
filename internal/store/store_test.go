// store_test.go
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
	"io"
	"testing"
	"time"

	"github.com/localnerve/crmdb/data"
	"github.com/localnerve/crmdb/internal/kv"
	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/permissions"
	"github.com/localnerve/crmdb/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func newTestStore(t *testing.T, storage kv.Storage) *Store {
	t.Helper()
	s := New(storage, Options{
		Logger:     quietLogger(),
		Registerer: prometheus.NewRegistry(),
		Defaults:   data.Demo,
	})
	require.NoError(t, s.Hydrate(context.Background()))
	return s
}

func storedJSON(t *testing.T, storage kv.Storage, key string) string {
	t.Helper()
	entry, err := storage.Get(context.Background(), key)
	require.NoError(t, err)
	return string(entry.Value)
}

func memoryJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return string(b)
}

func TestHydrate_SeedsDefaultsAndWritesBack(t *testing.T) {
	mem := kv.NewMemory()
	s := newTestStore(t, mem)

	assert.Len(t, Properties.List(s), 8)
	assert.Len(t, Tasks.List(s), 5)
	assert.Empty(t, ViewedProperties.List(s))
	assert.Equal(t, "RealE-Market", AppSettings.Get(s).CompanyName)
	assert.Equal(t, "Administrator", UserProfile.Get(s).Role)

	keys, err := mem.Keys(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, Names(), keys)

	assert.JSONEq(t, memoryJSON(t, Tasks.List(s)), storedJSON(t, mem, "tasks"))
	assert.Equal(t, uint64(1), s.Version("tasks"))
}

func TestHydrate_AreasFallback(t *testing.T) {
	want := []models.MasterItem{{Key: "1", Name: "Downtown"}, {Key: "2", Name: "Suburbs"}}

	t.Run("absent", func(t *testing.T) {
		s := newTestStore(t, kv.NewMemory())
		assert.Equal(t, want, Areas.List(s))
	})

	t.Run("corrupt", func(t *testing.T) {
		mem := kv.NewMemory()
		mem.Set("areas", []byte(`[{"key":"1","name":`))

		logger, hook := test.NewNullLogger()
		s := New(mem, Options{Logger: logger, Defaults: data.Demo})
		require.NoError(t, s.Hydrate(context.Background()))

		assert.Equal(t, want, Areas.List(s))
		var warned bool
		for _, entry := range hook.AllEntries() {
			if entry.Level == logrus.WarnLevel && entry.Data["key"] == "areas" {
				warned = true
			}
		}
		assert.True(t, warned, "expected a corrupt-value warning for areas")

		assert.JSONEq(t, memoryJSON(t, want), storedJSON(t, mem, "areas"))
		assert.Equal(t, uint64(2), s.Version("areas"))
	})

	t.Run("null", func(t *testing.T) {
		mem := kv.NewMemory()
		mem.Set("areas", []byte(`null`))
		s := newTestStore(t, mem)
		assert.Equal(t, want, Areas.List(s))
	})
}

func TestHydrate_KeepsPersistedValues(t *testing.T) {
	mem := kv.NewMemory()
	mem.Set("tasks", []byte(`[{"key":"9","title":"Legacy","dueDate":"15-02-2026","status":"Pending"}]`))

	s := newTestStore(t, mem)

	tasks := Tasks.List(s)
	require.Len(t, tasks, 1)
	assert.Equal(t, types.NewDate(2026, time.February, 15), tasks[0].DueDate)
}

func TestAdd_AppendsWithFreshKey(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()
	before := Properties.List(s)

	added, err := Properties.Add(ctx, s, models.Property{Title: "Garden Flat", Price: 3200000, Area: "Suburbs"})
	require.NoError(t, err)

	after := Properties.List(s)
	require.Len(t, after, len(before)+1)
	assert.NotEmpty(t, added.Key)
	for _, p := range before {
		assert.NotEqual(t, p.Key, added.Key)
	}

	last := after[len(after)-1]
	assert.Equal(t, added, last)
	assert.Equal(t, "Garden Flat", last.Title)
	assert.Equal(t, types.FlexFloat64(3200000), last.Price)
	assert.Equal(t, "Suburbs", last.Area)
}

func TestAdd_TaskScenario(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())

	added, err := Tasks.Add(context.Background(), s, models.Task{
		Title:    "Call John",
		DueDate:  types.NewDate(2026, time.February, 15),
		Priority: "High",
		Assignee: "Admin",
	})
	require.NoError(t, err)

	got, ok := Tasks.Get(s, added.Key)
	require.True(t, ok)
	assert.NotEmpty(t, got.Key)
	assert.Equal(t, "Call John", got.Title)
	assert.Equal(t, "2026-02-15", got.DueDate.String())
	assert.Equal(t, "High", got.Priority)
	assert.Equal(t, "Admin", got.Assignee)
	assert.Equal(t, models.TaskStatusPending, got.Status)
}

func TestAdd_KeysUniqueWithinMillisecond(t *testing.T) {
	fixed := time.UnixMilli(1767225600000)
	s := New(kv.NewMemory(), Options{Logger: quietLogger(), Now: func() time.Time { return fixed }})
	require.NoError(t, s.Hydrate(context.Background()))

	seen := make(map[string]bool)
	for i := 0; i < 5; i++ {
		added, err := Contacts.Add(context.Background(), s, models.Contact{Name: "Dup"})
		require.NoError(t, err)
		assert.False(t, seen[added.Key], "duplicate key %s", added.Key)
		seen[added.Key] = true
	}
}

func TestDelete(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()

	res, err := Inquiries.Delete(ctx, s, "2")
	require.NoError(t, err)
	assert.Equal(t, Applied, res)
	for _, inq := range Inquiries.List(s) {
		assert.NotEqual(t, "2", inq.Key)
	}

	before := Inquiries.List(s)
	version := s.Version("inquiries")
	res, err = Inquiries.Delete(ctx, s, "2")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res)
	assert.Equal(t, before, Inquiries.List(s))
	assert.Equal(t, version, s.Version("inquiries"), "a no-op delete must not write")
}

func TestDelete_NonexistentKeepsSizeThree(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()

	_, err := Tasks.Replace(ctx, s, Tasks.List(s)[:3])
	require.NoError(t, err)
	before := Tasks.List(s)
	require.Len(t, before, 3)

	res, err := Tasks.Delete(ctx, s, "nonexistent-key")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res)
	assert.Equal(t, before, Tasks.List(s))
}

func TestUpdate_ReplacesInPlace(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()
	before := Deals.List(s)

	changed := before[1]
	changed.Stage = models.DealStageNegotiation
	changed.Value = 50000
	changed.Agent = ""

	res, err := Deals.Update(ctx, s, changed)
	require.NoError(t, err)
	assert.Equal(t, Applied, res)

	after := Deals.List(s)
	require.Len(t, after, len(before))
	for i := range before {
		if i == 1 {
			assert.Equal(t, changed, after[i])
			continue
		}
		assert.Equal(t, before[i], after[i])
	}

	res, err = Deals.Update(ctx, s, models.Deal{Key: "missing", Title: "Ghost"})
	require.NoError(t, err)
	assert.Equal(t, NotFound, res)
	assert.Equal(t, after, Deals.List(s))
}

func TestRoundTrip(t *testing.T) {
	mem := kv.NewMemory()
	s := newTestStore(t, mem)
	ctx := context.Background()

	_, err := Projects.Add(ctx, s, models.Project{
		Name:           "Lakeside",
		TotalUnits:     80,
		PossessionDate: types.NewDate(2027, time.March, 1),
		Coordinates:    &models.GeoPoint{Lat: 19.07, Lng: 72.87},
	})
	require.NoError(t, err)

	b, err := json.Marshal(Projects.List(s))
	require.NoError(t, err)
	var decoded []models.Project
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, Projects.List(s), decoded)

	reopened := newTestStore(t, mem)
	assert.Equal(t, Projects.List(s), Projects.List(reopened))
	assert.Equal(t, Permissions.Get(s), Permissions.Get(reopened))
}

func TestPrepend_NewestFirst(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()

	first, err := ViewedProperties.Prepend(ctx, s, models.ViewLog{SubjectID: "1"})
	require.NoError(t, err)
	second, err := ViewedProperties.Prepend(ctx, s, models.ViewLog{SubjectID: "2"})
	require.NoError(t, err)

	logs := ViewedProperties.List(s)
	require.Len(t, logs, 2)
	assert.Equal(t, second.Key, logs[0].Key)
	assert.Equal(t, first.Key, logs[1].Key)
}

func TestPersistFailure_LeavesMemoryUnchanged(t *testing.T) {
	mem := kv.NewMemory()
	s := newTestStore(t, mem)
	before := Tasks.List(s)
	stored := storedJSON(t, mem, "tasks")

	mem.FailPut = errors.New("quota exceeded")
	_, err := Tasks.Add(context.Background(), s, models.Task{Title: "Lost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")

	assert.Equal(t, before, Tasks.List(s))
	assert.Equal(t, stored, storedJSON(t, mem, "tasks"))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.PersistErrors.WithLabelValues("tasks")))
}

func TestConflict_DetectedAndRecoveredByReload(t *testing.T) {
	mem := kv.NewMemory()
	a := newTestStore(t, mem)
	b := newTestStore(t, mem)
	ctx := context.Background()

	_, err := Loans.Add(ctx, a, models.Loan{Name: "First"})
	require.NoError(t, err)

	_, err = Loans.Add(ctx, b, models.Loan{Name: "Second"})
	require.ErrorIs(t, err, ErrConflict)
	assert.Len(t, Loans.List(b), 3)

	require.NoError(t, b.Reload(ctx))
	assert.Len(t, Loans.List(b), 4)
	_, err = Loans.Add(ctx, b, models.Loan{Name: "Second"})
	require.NoError(t, err)
	assert.Len(t, Loans.List(b), 5)
}

func TestUpdate_TransactionIsAtomic(t *testing.T) {
	mem := kv.NewMemory()
	s := newTestStore(t, mem)
	ctx := context.Background()
	deals := Deals.List(s)
	inquiries := Inquiries.List(s)

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx *Tx) error {
		Deals.AddIn(tx, models.Deal{Title: "Half"})
		Inquiries.DeleteIn(tx, "1")
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, deals, Deals.List(s))
	assert.Equal(t, inquiries, Inquiries.List(s))

	mem.FailPut = errors.New("disk full")
	err = s.Update(ctx, func(tx *Tx) error {
		Deals.AddIn(tx, models.Deal{Title: "Half"})
		Inquiries.DeleteIn(tx, "1")
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, deals, Deals.List(s))
	assert.Equal(t, inquiries, Inquiries.List(s))

	mem.FailPut = nil
	err = s.Update(ctx, func(tx *Tx) error {
		Deals.AddIn(tx, models.Deal{Title: "Whole"})
		staged := Deals.ListIn(tx)
		assert.Len(t, staged, len(deals)+1)
		Inquiries.DeleteIn(tx, "1")
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, Deals.List(s), len(deals)+1)
	assert.Len(t, Inquiries.List(s), len(inquiries)-1)
	assert.Equal(t, uint64(2), s.Version("deals"))
	assert.Equal(t, uint64(2), s.Version("inquiries"))
}

func TestSingleton_GetReturnsCopy(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()

	m := Permissions.Get(s)
	m["Sales"][permissions.Users] = permissions.Grant{View: true}
	assert.False(t, Permissions.Get(s).Lookup("Sales", permissions.Users).View)

	require.NoError(t, Permissions.Set(ctx, s, m))
	assert.True(t, Permissions.Get(s).Lookup("Sales", permissions.Users).View)
}

func TestExportImport(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()
	now := time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

	doc := s.Export(now)
	assert.Equal(t, ExportVersion, doc.Version)
	assert.Equal(t, now, doc.ExportedAt)
	require.NotNil(t, doc.Data)
	assert.Len(t, doc.Data.Properties, 8)
	assert.Len(t, doc.Data.MasterLists.Areas, 2)

	b, err := json.Marshal(doc)
	require.NoError(t, err)

	_, err = Properties.Delete(ctx, s, "1")
	require.NoError(t, err)
	_, err = Areas.Replace(ctx, s, nil)
	require.NoError(t, err)
	loans := Loans.List(s)

	var restored ExportDocument
	require.NoError(t, json.Unmarshal(b, &restored))
	require.NoError(t, s.Import(ctx, restored))

	assert.Len(t, Properties.List(s), 8)
	assert.Len(t, Areas.List(s), 2)
	assert.Equal(t, loans, Loans.List(s))

	err = s.Import(ctx, ExportDocument{Version: "1.0"})
	assert.ErrorIs(t, err, ErrInvalidImport)
}

func TestImport_PartialSections(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	contacts := Contacts.List(s)

	var doc ExportDocument
	require.NoError(t, json.Unmarshal([]byte(`{"version":"1.0","data":{"tasks":[{"title":"Only task"}]}}`), &doc))
	require.NoError(t, s.Import(context.Background(), doc))

	tasks := Tasks.List(s)
	require.Len(t, tasks, 1)
	assert.NotEmpty(t, tasks[0].Key)
	assert.Equal(t, contacts, Contacts.List(s))
}

func TestDynamic(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()

	c, ok := Lookup("loans")
	require.True(t, ok)
	_, ok = Lookup("permissions")
	assert.False(t, ok)

	added, err := c.AddJSON(ctx, s, []byte(`{"name":"Priya","amount":"2500000","bank":"Axis"}`))
	require.NoError(t, err)
	loan := added.(models.Loan)
	assert.Equal(t, types.FlexFloat64(2500000), loan.Amount)

	_, res, err := c.UpdateJSON(ctx, s, loan.Key, []byte(`{"name":"Priya","amount":2600000,"status":"Approved"}`))
	require.NoError(t, err)
	assert.Equal(t, Applied, res)
	got, ok := Loans.Get(s, loan.Key)
	require.True(t, ok)
	assert.Equal(t, "Approved", got.Status)

	_, err = c.AddJSON(ctx, s, []byte(`{"amount":"lots"}`))
	assert.ErrorIs(t, err, ErrInvalidRecord)

	list, ok := MasterList("sources")
	require.True(t, ok)
	assert.Len(t, list.List(s), 3)
}

func TestMetrics(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	ctx := context.Background()

	_, err := Tasks.Add(ctx, s, models.Task{Title: "Count me"})
	require.NoError(t, err)
	_, err = Tasks.Delete(ctx, s, "nope")
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.Mutations.WithLabelValues("tasks", "add", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.metrics.Mutations.WithLabelValues("tasks", "delete", "notfound")))
	assert.Equal(t, 6.0, testutil.ToFloat64(s.metrics.Records.WithLabelValues("tasks")))
}

func TestClose(t *testing.T) {
	s := newTestStore(t, kv.NewMemory())
	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	_, err := Tasks.Add(context.Background(), s, models.Task{Title: "Late"})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestKeyGen_Monotonic(t *testing.T) {
	g := newKeyGen(func() time.Time { return time.UnixMilli(1000) })
	assert.Equal(t, "1000", g.next())
	assert.Equal(t, "1001", g.next())
	assert.Equal(t, "1002", g.next())
}

func TestToggleTask(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, kv.NewMemory())

	task, err := Tasks.Add(ctx, s, models.Task{Title: "Call back"})
	require.NoError(t, err)
	require.Equal(t, models.TaskStatusPending, task.Status)

	toggled, res, err := ToggleTask(ctx, s, task.Key)
	require.NoError(t, err)
	assert.Equal(t, Applied, res)
	assert.Equal(t, models.TaskStatusCompleted, toggled.Status)

	got, ok := Tasks.Get(s, task.Key)
	require.True(t, ok)
	assert.Equal(t, models.TaskStatusCompleted, got.Status)

	toggled, res, err = ToggleTask(ctx, s, task.Key)
	require.NoError(t, err)
	assert.Equal(t, Applied, res)
	assert.Equal(t, models.TaskStatusPending, toggled.Status)

	before := s.Version(Tasks.Name())
	_, res, err = ToggleTask(ctx, s, "missing")
	require.NoError(t, err)
	assert.Equal(t, NotFound, res)
	assert.Equal(t, before, s.Version(Tasks.Name()))
}

func TestRecordNames(t *testing.T) {
	names := RecordNames()
	assert.Len(t, names, 11)
	assert.Equal(t, "bookings", names[0])
	assert.NotContains(t, names, "subUsers")
	for _, name := range names {
		_, ok := Lookup(name)
		assert.True(t, ok, name)
	}
}

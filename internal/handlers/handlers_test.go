// handlers_test.go
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

package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/data"
	"github.com/localnerve/crmdb/internal/backup"
	"github.com/localnerve/crmdb/internal/config"
	"github.com/localnerve/crmdb/internal/handlers"
	"github.com/localnerve/crmdb/internal/kv"
	"github.com/localnerve/crmdb/internal/middleware"
	"github.com/localnerve/crmdb/internal/permissions"
	"github.com/localnerve/crmdb/internal/services"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var fixedNow = time.Date(2026, time.February, 1, 9, 0, 0, 0, time.UTC)

type testEnv struct {
	app   *fiber.App
	store *store.Store
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// setupTestApp builds the full route tree over a demo-seeded memory store
func setupTestApp(t *testing.T, sink backup.Sink) *testEnv {
	t.Helper()
	ctx := context.Background()
	logger := quietLogger()
	now := func() time.Time { return fixedNow }

	s := store.New(kv.NewMemory(), store.Options{
		Logger:     logger,
		Registerer: prometheus.NewRegistry(),
		Defaults:   data.Demo,
		Now:        now,
	})
	require.NoError(t, s.Hydrate(ctx))

	auth := services.NewAuth(s, services.AuthConfig{
		Secret:         "test-secret",
		TTL:            time.Hour,
		BypassUsername: "admin",
		BypassPassword: "admin",
		Cost:           bcrypt.MinCost,
		Logger:         logger,
		Now:            now,
	})
	require.NoError(t, auth.EnsurePasswordHashes(ctx))

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	api := app.Group("/api", middleware.VersionMiddleware())
	handlers.Register(api, handlers.Deps{
		Config:    &config.Config{StorageDriver: "memory"},
		Store:     s,
		Evaluator: permissions.NewEvaluator("", ""),
		Auth:      auth,
		Sink:      sink,
		Logger:    logger,
		Clock:     now,
	})
	app.Use(handlers.NotFound)

	return &testEnv{app: app, store: s}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func (e *testEnv) login(t *testing.T, username, password string) string {
	t.Helper()
	resp := e.do(t, http.MethodPost, "/api/auth/login", "", handlers.LoginInput{Username: username, Password: password})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var res services.LoginResult
	parseJSON(t, resp, &res)
	require.NotEmpty(t, res.Token)
	return res.Token
}

func parseJSON(t *testing.T, resp *http.Response, target any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(target))
}

func errorType(t *testing.T, resp *http.Response) string {
	t.Helper()
	var body map[string]any
	parseJSON(t, resp, &body)
	assert.Equal(t, false, body["ok"])
	kind, _ := body["type"].(string)
	return kind
}

func TestHealth(t *testing.T) {
	env := setupTestApp(t, nil)

	resp := env.do(t, http.MethodGet, "/api/health", "", nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "1.0.0", resp.Header.Get("X-Api-Version"))

	var result services.HealthCheckResult
	parseJSON(t, resp, &result)
	assert.Equal(t, "healthy", result.Status)
	assert.Equal(t, "disabled", result.Backups)
}

func TestUnsupportedVersion(t *testing.T) {
	env := setupTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("X-Api-Version", "2.0")
	resp, err := env.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "api.version", errorType(t, resp))
}

func TestNotFound(t *testing.T) {
	env := setupTestApp(t, nil)

	resp := env.do(t, http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestLogin(t *testing.T) {
	env := setupTestApp(t, nil)

	t.Run("bad credentials", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/auth/login", "", handlers.LoginInput{Username: "sales@example.com", Password: "nope"})
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "auth.credentials", errorType(t, resp))
	})

	t.Run("missing fields", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/auth/login", "", handlers.LoginInput{Username: "sales@example.com"})
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	})

	t.Run("no token", func(t *testing.T) {
		resp := env.do(t, http.MethodGet, "/api/data/properties", "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "auth.token", errorType(t, resp))
	})

	t.Run("logout revokes token", func(t *testing.T) {
		token := env.login(t, "sales@example.com", "sales")
		resp := env.do(t, http.MethodGet, "/api/profile", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var profile map[string]any
		parseJSON(t, resp, &profile)
		assert.Equal(t, "Sales User", profile["name"])

		resp = env.do(t, http.MethodPost, "/api/auth/logout", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)

		resp = env.do(t, http.MethodGet, "/api/profile", token, nil)
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	})
}

func TestSessions(t *testing.T) {
	env := setupTestApp(t, nil)
	first := env.login(t, "manager@example.com", "manager")
	second := env.login(t, "manager@example.com", "manager")

	resp := env.do(t, http.MethodGet, "/api/auth/sessions", second, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var sessions []map[string]any
	parseJSON(t, resp, &sessions)
	require.Len(t, sessions, 2)

	key, _ := sessions[0]["key"].(string)
	resp = env.do(t, http.MethodDelete, "/api/auth/sessions/"+key, second, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/profile", first, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/auth/sessions/"+key, second, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "data.notfound", errorType(t, resp))
}

func TestSessions_OtherUsers(t *testing.T) {
	env := setupTestApp(t, nil)
	admin := env.login(t, "admin@example.com", "admin")
	sales := env.login(t, "sales@example.com", "sales")
	manager := env.login(t, "manager@example.com", "manager")

	sessionKey := func(token, userID string) string {
		t.Helper()
		resp := env.do(t, http.MethodGet, "/api/auth/sessions", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var sessions []map[string]any
		parseJSON(t, resp, &sessions)
		for _, sess := range sessions {
			if sess["userId"] == userID {
				key, _ := sess["key"].(string)
				return key
			}
		}
		return ""
	}

	resp := env.do(t, http.MethodGet, "/api/auth/sessions", sales, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var own []map[string]any
	parseJSON(t, resp, &own)
	require.Len(t, own, 1, "Sales lacks Users view")
	assert.Equal(t, "3", own[0]["userId"])

	adminKey := sessionKey(admin, "1")
	require.NotEmpty(t, adminKey)
	assert.Equal(t, adminKey, sessionKey(manager, "1"), "Manager has Users view")

	resp = env.do(t, http.MethodDelete, "/api/auth/sessions/"+adminKey, sales, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp = env.do(t, http.MethodDelete, "/api/auth/sessions/"+adminKey, manager, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode, "Manager lacks Users delete")

	resp = env.do(t, http.MethodGet, "/api/profile", admin, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, "/api/auth/sessions/"+sessionKey(admin, "3"), admin, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/profile", sales, nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRecords(t *testing.T) {
	env := setupTestApp(t, nil)
	token := env.login(t, "manager@example.com", "manager")

	resp := env.do(t, http.MethodPost, "/api/data/properties", token, map[string]any{"title": "Lake House", "price": "7500000"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var created map[string]any
	parseJSON(t, resp, &created)
	key, _ := created["key"].(string)
	require.NotEmpty(t, key)
	assert.Equal(t, 7500000.0, created["price"])

	resp = env.do(t, http.MethodGet, "/api/data/properties/"+key, token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/views/viewedProperties", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var views []map[string]any
	parseJSON(t, resp, &views)
	require.Len(t, views, 1)
	assert.Equal(t, key, views[0]["subjectId"])

	version := env.store.Version(store.Properties.Name())
	resp = env.do(t, http.MethodPut, "/api/data/properties/"+key, token, map[string]any{"title": "Lake House II"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var mutation map[string]any
	parseJSON(t, resp, &mutation)
	assert.Equal(t, true, mutation["ok"])
	assert.Equal(t, key, mutation["key"])
	assert.NotEqual(t, version, env.store.Version(store.Properties.Name()))

	got, ok := store.Properties.Get(env.store, key)
	require.True(t, ok)
	assert.Equal(t, "Lake House II", got.Title)

	resp = env.do(t, http.MethodPut, "/api/data/properties/missing", token, map[string]any{"title": "x"})
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "data.notfound", errorType(t, resp))

	resp = env.do(t, http.MethodDelete, "/api/data/properties/"+key, token, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "data.authorization.Properties", errorType(t, resp))

	resp = env.do(t, http.MethodDelete, "/api/data/inquiries/1", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	_, ok = store.Inquiries.Get(env.store, "1")
	assert.False(t, ok)

	resp = env.do(t, http.MethodGet, "/api/data/widgets", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "data.collection", errorType(t, resp))

	resp = env.do(t, http.MethodPost, "/api/data/properties", token, []string{"not", "a", "record"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/data/properties", token, map[string]any{"title": "Odd", "price": "NaN"})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "data.validation.input", errorType(t, resp))

	resp = env.do(t, http.MethodPut, "/api/data/properties", token, []map[string]any{
		{"key": key, "title": "Lake House II"},
		{"title": "Hill View"},
	})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var replaced []map[string]any
	parseJSON(t, resp, &replaced)
	require.Len(t, replaced, 2)
	assert.Equal(t, key, replaced[0]["key"])
	assert.NotEmpty(t, replaced[1]["key"])
	assert.Len(t, store.Properties.List(env.store), 2)
}

func TestGetCollections(t *testing.T) {
	env := setupTestApp(t, nil)
	token := env.login(t, "sales@example.com", "sales")

	resp := env.do(t, http.MethodGet, "/api/data?collections=properties,deals,properties", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var body map[string]json.RawMessage
	parseJSON(t, resp, &body)
	assert.Len(t, body, 2)
	assert.Contains(t, body, "properties")
	assert.Contains(t, body, "deals")

	resp = env.do(t, http.MethodGet, "/api/data?collections=subUsers,widgets", token, nil)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestSubUsers(t *testing.T) {
	env := setupTestApp(t, nil)
	manager := env.login(t, "manager@example.com", "manager")
	sales := env.login(t, "sales@example.com", "sales")

	resp := env.do(t, http.MethodGet, "/api/data/subUsers", manager, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var users []map[string]any
	parseJSON(t, resp, &users)
	require.Len(t, users, 3)
	for _, u := range users {
		assert.NotContains(t, u, "password")
	}

	resp = env.do(t, http.MethodGet, "/api/data/subUsers", sales, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/data/subUsers", manager, map[string]any{
		"name": "New Agent", "email": "agent@example.com", "role": "Sales", "password": "agent",
	})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var added map[string]any
	parseJSON(t, resp, &added)
	assert.NotContains(t, added, "password")

	env.login(t, "agent@example.com", "agent")
}

func TestToggleTask(t *testing.T) {
	env := setupTestApp(t, nil)
	token := env.login(t, "manager@example.com", "manager")

	resp := env.do(t, http.MethodPost, "/api/data/tasks/1/toggle", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var task map[string]any
	parseJSON(t, resp, &task)
	assert.Equal(t, "Completed", task["status"])

	resp = env.do(t, http.MethodPost, "/api/data/tasks/missing/toggle", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestPermissions(t *testing.T) {
	env := setupTestApp(t, nil)
	admin := env.login(t, "admin", "admin")
	manager := env.login(t, "manager@example.com", "manager")
	sales := env.login(t, "sales@example.com", "sales")

	resp := env.do(t, http.MethodGet, "/api/settings", sales, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/api/permissions/Sales/Settings/view", manager, handlers.ToggleInput{Value: true})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "data.authorization.permissions", errorType(t, resp))

	resp = env.do(t, http.MethodPatch, "/api/permissions/Sales/Settings/view", admin, handlers.ToggleInput{Value: true})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var grant permissions.Grant
	parseJSON(t, resp, &grant)
	assert.Equal(t, permissions.Grant{View: true}, grant)

	resp = env.do(t, http.MethodGet, "/api/settings", sales, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodPatch, "/api/permissions/Sales/Widgets/view", admin, handlers.ToggleInput{Value: true})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp = env.do(t, http.MethodPatch, "/api/permissions/Sales/Settings/approve", admin, handlers.ToggleInput{Value: true})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/permissions/check?module=Deals&action=create", sales, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var check handlers.CheckResult
	parseJSON(t, resp, &check)
	assert.True(t, check.Allowed)
	assert.Equal(t, "Sales", check.EffectiveRole)
	assert.False(t, check.CanManage)
	assert.Equal(t, permissions.Grant{View: true, Create: true}, check.Access)

	resp = env.do(t, http.MethodGet, "/api/permissions/check?module=Deals", admin, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	parseJSON(t, resp, &check)
	assert.Equal(t, "Admin", check.EffectiveRole)
	assert.True(t, check.CanManage)
	assert.Equal(t, permissions.Grant{View: true, Create: true, Edit: true, Delete: true}, check.Access)

	resp = env.do(t, http.MethodPut, "/api/permissions", admin, permissions.Matrix{})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp = env.do(t, http.MethodGet, "/api/data/properties", manager, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestConversions(t *testing.T) {
	env := setupTestApp(t, nil)
	token := env.login(t, "manager@example.com", "manager")

	resp := env.do(t, http.MethodPost, "/api/inquiries/1/convert", token, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var deal map[string]any
	parseJSON(t, resp, &deal)
	assert.Equal(t, "Qualified", deal["stage"])
	assert.Equal(t, "John Doe", deal["client"])

	resp = env.do(t, http.MethodPost, "/api/inquiries/1/convert", token, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, "data.state", errorType(t, resp))

	resp = env.do(t, http.MethodPost, "/api/inquiries/missing/convert", token, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/deals/2/convert", token, nil)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var booking map[string]any
	parseJSON(t, resp, &booking)
	assert.Equal(t, "2026-02-01", booking["bookingDate"])
}

func TestMasterLists(t *testing.T) {
	env := setupTestApp(t, nil)
	manager := env.login(t, "manager@example.com", "manager")
	sales := env.login(t, "sales@example.com", "sales")

	resp := env.do(t, http.MethodGet, "/api/master/areas", manager, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var areas []map[string]any
	parseJSON(t, resp, &areas)
	assert.Len(t, areas, 2)

	resp = env.do(t, http.MethodPost, "/api/master/areas", manager, map[string]any{"name": "Harbour"})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Len(t, store.Areas.List(env.store), 3)

	resp = env.do(t, http.MethodPut, "/api/master/areas", manager, []map[string]any{{"name": "Old Town"}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	areasNow := store.Areas.List(env.store)
	require.Len(t, areasNow, 1)
	assert.NotEmpty(t, areasNow[0].Key)

	resp = env.do(t, http.MethodDelete, "/api/master/areas/"+areasNow[0].Key, manager, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/master/planets", manager, nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/master/areas", sales, nil)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestDashboardAndNearby(t *testing.T) {
	env := setupTestApp(t, nil)
	token := env.login(t, "manager@example.com", "manager")

	resp := env.do(t, http.MethodGet, "/api/dashboard", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var dash map[string]any
	parseJSON(t, resp, &dash)
	assert.Contains(t, dash, "properties")

	resp = env.do(t, http.MethodGet, "/api/properties/nearby?lat=200&lng=10", token, nil)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodGet, "/api/properties/nearby?lat=19.07&lng=72.87&radius=1000", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestBackups(t *testing.T) {
	t.Run("disabled", func(t *testing.T) {
		env := setupTestApp(t, nil)
		token := env.login(t, "manager@example.com", "manager")
		resp := env.do(t, http.MethodGet, "/api/backups", token, nil)
		assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
		assert.Equal(t, "backup.disabled", errorType(t, resp))
	})

	t.Run("filesystem", func(t *testing.T) {
		sink, err := backup.NewFilesystem(t.TempDir())
		require.NoError(t, err)
		env := setupTestApp(t, sink)
		token := env.login(t, "manager@example.com", "manager")

		resp := env.do(t, http.MethodPost, "/api/backups", token, nil)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
		var info backup.Info
		parseJSON(t, resp, &info)
		assert.Equal(t, backup.FileName(fixedNow), info.Name)

		resp = env.do(t, http.MethodGet, "/api/backups", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		var infos []backup.Info
		parseJSON(t, resp, &infos)
		require.Len(t, infos, 1)

		_, err = store.Properties.Delete(context.Background(), env.store, "1")
		require.NoError(t, err)

		resp = env.do(t, http.MethodPost, "/api/backups/"+info.Name+"/restore", token, nil)
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		_, ok := store.Properties.Get(env.store, "1")
		assert.True(t, ok)

		resp = env.do(t, http.MethodPost, "/api/backups/passwd/restore", token, nil)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

		resp = env.do(t, http.MethodPost, "/api/backups/crm_backup_1999-01-01.json/restore", token, nil)
		assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	})
}

func TestExportImport(t *testing.T) {
	env := setupTestApp(t, nil)
	token := env.login(t, "manager@example.com", "manager")

	resp := env.do(t, http.MethodGet, "/api/export", token, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Disposition"), backup.FileName(fixedNow))
	var doc store.ExportDocument
	parseJSON(t, resp, &doc)
	require.NotNil(t, doc.Data)

	doc.Data.Properties = doc.Data.Properties[:1]
	resp = env.do(t, http.MethodPost, "/api/import", token, doc)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, store.Properties.List(env.store), 1)

	resp = env.do(t, http.MethodPost, "/api/import", token, map[string]any{})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestSettingsAndNotes(t *testing.T) {
	env := setupTestApp(t, nil)
	token := env.login(t, "manager@example.com", "manager")

	resp := env.do(t, http.MethodPut, "/api/notes", token, map[string]string{"1": "Call the bank"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Call the bank", store.DashboardNotes.Get(env.store).Note1)

	resp = env.do(t, http.MethodPut, "/api/profile", token, map[string]string{"name": "Manager M", "role": "Administrator"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	profile := store.UserProfile.Get(env.store)
	assert.Equal(t, "Manager M", profile.Name)
	assert.Equal(t, "Manager", profile.Role)

	resp = env.do(t, http.MethodPut, "/api/settings", token, map[string]any{"companyName": "Dave Realty"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Dave Realty", store.AppSettings.Get(env.store).CompanyName)
}

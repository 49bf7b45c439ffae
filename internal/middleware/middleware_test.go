package middleware

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/data"
	"github.com/localnerve/crmdb/internal/kv"
	"github.com/localnerve/crmdb/internal/permissions"
	"github.com/localnerve/crmdb/internal/services"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeValidator map[string]*services.Claims

func (f fakeValidator) ValidateToken(token string) (*services.Claims, error) {
	if c, ok := f[token]; ok {
		return c, nil
	}
	return nil, services.ErrInvalidToken
}

func errorHandler(c *fiber.Ctx, err error) error {
	var ce *types.CustomError
	if errors.As(err, &ce) {
		return c.Status(ce.Code).SendString(ce.Type)
	}
	return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
}

func newStore(t *testing.T) *store.Store {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	s := store.New(kv.NewMemory(), store.Options{Logger: logger, Registerer: prometheus.NewRegistry(), Defaults: data.Demo})
	require.NoError(t, s.Hydrate(context.Background()))
	return s
}

func newApp(t *testing.T) *fiber.App {
	t.Helper()
	s := newStore(t)
	ev := permissions.NewEvaluator("", "")
	tokens := fakeValidator{
		"admin": {Role: "Administrator"},
		"sales": {Role: "Sales"},
		"none":  {Role: ""},
	}

	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(VersionMiddleware())
	api := app.Group("/api", Authenticate(tokens))
	ok := func(c *fiber.Ctx) error { return c.SendString(Claims(c).Role) }
	api.Get("/data/:collection", RequireCollectionPermission(s, ev, permissions.View), ok)
	api.Delete("/data/:collection/:key", RequireCollectionPermission(s, ev, permissions.Delete), ok)
	api.Get("/settings", RequirePermission(s, ev, permissions.Settings, permissions.View), ok)
	api.Put("/permissions", RequireManage(ev), ok)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string) (int, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, string(body)
}

func TestAuthenticate(t *testing.T) {
	app := newApp(t)

	code, body := do(t, app, "GET", "/api/data/properties", "")
	assert.Equal(t, fiber.StatusUnauthorized, code)
	assert.Equal(t, "auth.token", body)

	code, _ = do(t, app, "GET", "/api/data/properties", "forged")
	assert.Equal(t, fiber.StatusUnauthorized, code)

	code, body = do(t, app, "GET", "/api/data/properties", "sales")
	assert.Equal(t, fiber.StatusOK, code)
	assert.Equal(t, "Sales", body)
}

func TestRequireCollectionPermission(t *testing.T) {
	app := newApp(t)

	code, body := do(t, app, "GET", "/api/data/subUsers", "sales")
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.Equal(t, "data.authorization.Users", body)

	code, _ = do(t, app, "DELETE", "/api/data/properties/1", "sales")
	assert.Equal(t, fiber.StatusForbidden, code)

	code, _ = do(t, app, "DELETE", "/api/data/properties/1", "admin")
	assert.Equal(t, fiber.StatusOK, code)

	code, body = do(t, app, "GET", "/api/data/nothing", "admin")
	assert.Equal(t, fiber.StatusNotFound, code)
	assert.Equal(t, "data.collection", body)

	// empty role evaluates as Admin, which may view users
	code, _ = do(t, app, "GET", "/api/data/subUsers", "none")
	assert.Equal(t, fiber.StatusOK, code)
}

func TestRequirePermission(t *testing.T) {
	app := newApp(t)

	code, body := do(t, app, "GET", "/api/settings", "sales")
	assert.Equal(t, fiber.StatusForbidden, code)
	assert.Equal(t, "data.authorization.Settings", body)

	code, _ = do(t, app, "GET", "/api/settings", "none")
	assert.Equal(t, fiber.StatusOK, code)
}

func TestRequireManage(t *testing.T) {
	app := newApp(t)

	code, _ := do(t, app, "PUT", "/api/permissions", "sales")
	assert.Equal(t, fiber.StatusForbidden, code)
	code, _ = do(t, app, "PUT", "/api/permissions", "admin")
	assert.Equal(t, fiber.StatusOK, code)
	code, _ = do(t, app, "PUT", "/api/permissions", "none")
	assert.Equal(t, fiber.StatusForbidden, code, "an empty role is not the default role here")
}

func TestVersionMiddleware(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: errorHandler})
	app.Use(VersionMiddleware())
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(c.Locals("apiVersion").(string)) })

	for header, want := range map[string]string{"": APIVersion, "1.0": APIVersion, "1.2.0": "1.2.0"} {
		req := httptest.NewRequest("GET", "/", nil)
		if header != "" {
			req.Header.Set("X-Api-Version", header)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		body, _ := io.ReadAll(resp.Body)
		assert.Equal(t, want, string(body))
		assert.Equal(t, APIVersion, resp.Header.Get("X-Api-Version"))
	}

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("X-Api-Version", "2.0.0")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

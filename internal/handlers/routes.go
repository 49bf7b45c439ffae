// routes.go
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

package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/backup"
	"github.com/localnerve/crmdb/internal/config"
	"github.com/localnerve/crmdb/internal/middleware"
	"github.com/localnerve/crmdb/internal/permissions"
	"github.com/localnerve/crmdb/internal/services"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/sirupsen/logrus"
)

// Deps are the services the API routes are built on
type Deps struct {
	Config    *config.Config
	Store     *store.Store
	Evaluator permissions.Evaluator
	Auth      *services.Auth
	Storage   services.Pinger // nil for memory storage
	Sink      backup.Sink     // nil when backups are disabled
	Logger    *logrus.Logger
	Clock     Clock
}

// Register mounts every API route on api, normally the /api group
func Register(api fiber.Router, d Deps) {
	var (
		s     = d.Store
		ev    = d.Evaluator
		can   = func(module string, a permissions.Action) fiber.Handler { return middleware.RequirePermission(s, ev, module, a) }
		canIn = func(a permissions.Action) fiber.Handler { return middleware.RequireCollectionPermission(s, ev, a) }
	)

	authH := &AuthHandler{Store: s, Auth: d.Auth, Evaluator: ev}
	usersH := &UsersHandler{Store: s, Users: services.NewUsers(s, d.Auth)}
	recordsH := &RecordsHandler{Store: s, Evaluator: ev, Clock: d.Clock}
	permsH := &PermissionsHandler{Store: s, Evaluator: ev}
	masterH := &MasterHandler{Store: s}
	workflowH := &WorkflowHandler{Store: s, Evaluator: ev, Clock: d.Clock}
	settingsH := &SettingsHandler{Store: s}
	backupH := &BackupHandler{Store: s, Sink: d.Sink, Clock: d.Clock, Logger: d.Logger}
	healthH := &HealthHandler{Config: d.Config, Storage: d.Storage, Sink: d.Sink, Logger: d.Logger}

	api.Use(reloadOnConflict(s, d.Logger))

	// Public routes
	api.Get("/health", healthH.Health)
	api.Post("/auth/login", authH.Login)

	// Everything below requires a session
	authed := api.Group("", middleware.Authenticate(d.Auth))

	authed.Post("/auth/logout", authH.Logout)
	authed.Post("/auth/password", authH.ChangePassword)
	authed.Get("/auth/sessions", authH.Sessions)
	authed.Delete("/auth/sessions/:key", authH.RevokeSession)

	authed.Get("/profile", settingsH.GetProfile)
	authed.Put("/profile", settingsH.PutProfile)
	authed.Get("/notes", settingsH.GetNotes)
	authed.Put("/notes", settingsH.PutNotes)
	authed.Get("/settings", can(permissions.Settings, permissions.View), settingsH.GetSettings)
	authed.Put("/settings", can(permissions.Settings, permissions.Edit), settingsH.PutSettings)

	authed.Get("/permissions", permsH.Get)
	authed.Get("/permissions/check", permsH.Check)
	authed.Put("/permissions", middleware.RequireManage(ev), permsH.Replace)
	authed.Patch("/permissions/:role/:module/:action", middleware.RequireManage(ev), permsH.Toggle)

	// Sub-users before the generic collection routes
	data := authed.Group("/data")
	data.Get("/subUsers", can(permissions.Users, permissions.View), usersH.List)
	data.Get("/subUsers/:key", can(permissions.Users, permissions.View), usersH.Get)
	data.Post("/subUsers", can(permissions.Users, permissions.Create), usersH.Create)
	data.Put("/subUsers/:key", can(permissions.Users, permissions.Edit), usersH.Update)
	data.Delete("/subUsers/:key", can(permissions.Users, permissions.Delete), usersH.Delete)

	data.Post("/tasks/:key/toggle", can(permissions.Tasks, permissions.Edit), recordsH.ToggleTask)
	data.Get("/", recordsH.GetCollections)
	data.Get("/:collection", canIn(permissions.View), recordsH.List)
	data.Get("/:collection/:key", canIn(permissions.View), recordsH.Get)
	data.Post("/:collection", canIn(permissions.Create), recordsH.Create)
	data.Put("/:collection", canIn(permissions.Edit), recordsH.Replace)
	data.Put("/:collection/:key", canIn(permissions.Edit), recordsH.Update)
	data.Delete("/:collection/:key", canIn(permissions.Delete), recordsH.Delete)

	authed.Get("/master/:list", can(permissions.Settings, permissions.View), masterH.Get)
	authed.Put("/master/:list", can(permissions.Settings, permissions.Edit), masterH.Replace)
	authed.Post("/master/:list", can(permissions.Settings, permissions.Edit), masterH.Add)
	authed.Delete("/master/:list/:key", can(permissions.Settings, permissions.Edit), masterH.Remove)

	authed.Get("/views/:log", workflowH.Views)
	authed.Get("/dashboard", workflowH.Dashboard)
	authed.Get("/properties/nearby", can(permissions.Properties, permissions.View), workflowH.Nearby)
	authed.Post("/inquiries/:key/convert", can(permissions.Deals, permissions.Create), workflowH.ConvertInquiry)
	authed.Post("/deals/:key/convert", can(permissions.Bookings, permissions.Create), workflowH.ConvertDeal)

	authed.Get("/export", can(permissions.Settings, permissions.View), backupH.Export)
	authed.Post("/import", can(permissions.Settings, permissions.Edit), backupH.Import)
	authed.Get("/backups", can(permissions.Settings, permissions.View), backupH.List)
	authed.Post("/backups", can(permissions.Settings, permissions.Edit), backupH.Create)
	authed.Post("/backups/:name/restore", can(permissions.Settings, permissions.Edit), backupH.Restore)
}

// reloadOnConflict re-hydrates the store when a write lost a version race
// with another instance, so the client's retry sees the winning data
func reloadOnConflict(s *store.Store, log *logrus.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if errors.Is(err, store.ErrConflict) {
			log.WithField("url", c.OriginalURL()).Warn("Version conflict, reloading records")
			if rerr := s.Reload(c.UserContext()); rerr != nil {
				log.WithError(rerr).Error("Failed to reload records")
			}
		}
		return err
	}
}

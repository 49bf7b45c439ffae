// backups.go
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
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/backup"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/types"
	"github.com/localnerve/crmdb/internal/utils"
	"github.com/sirupsen/logrus"
)

// BackupHandler serves full-system export, import and stored backups. Sink
// is nil when backups are disabled.
type BackupHandler struct {
	Store  *store.Store
	Sink   backup.Sink
	Clock  Clock
	Logger *logrus.Logger
}

var errBackupsDisabled = &types.CustomError{
	Code:    fiber.StatusServiceUnavailable,
	Message: "Backups are not configured",
	Type:    "backup.disabled",
}

// Export handles GET /api/export
// @Summary Export all data
// @Description Download the full-system export document
// @Tags Backup
// @Produce json
// @Success 200 {object} store.ExportDocument
// @Security BearerAuth
// @Router /export [get]
func (h *BackupHandler) Export(c *fiber.Ctx) error {
	now := h.Clock.now()
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, backup.FileName(now)))
	return c.Status(fiber.StatusOK).JSON(h.Store.Export(now))
}

// Import handles POST /api/import
// @Summary Import an export document
// @Description Replace each collection present in the document; absent sections are left alone
// @Tags Backup
// @Accept json
// @Produce json
// @Param document body store.ExportDocument true "Export document"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /import [post]
func (h *BackupHandler) Import(c *fiber.Ctx) error {
	var doc store.ExportDocument
	if err := parseBody(c, &doc); err != nil {
		return err
	}
	if err := h.Store.Import(c.UserContext(), doc); err != nil {
		return err
	}
	h.Logger.WithField("exportedAt", doc.ExportedAt).Info("Imported export document")
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "", h.Store.Version(store.Properties.Name()))
}

// List handles GET /api/backups
// @Summary List stored backups
// @Tags Backup
// @Produce json
// @Success 200 {array} backup.Info
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /backups [get]
func (h *BackupHandler) List(c *fiber.Ctx) error {
	if h.Sink == nil {
		return errBackupsDisabled
	}
	infos, err := h.Sink.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(infos)
}

// Create handles POST /api/backups
// @Summary Write a backup now
// @Tags Backup
// @Produce json
// @Success 201 {object} backup.Info
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /backups [post]
func (h *BackupHandler) Create(c *fiber.Ctx) error {
	if h.Sink == nil {
		return errBackupsDisabled
	}
	info, err := backup.Run(c.UserContext(), h.Store, h.Sink, h.Clock.now())
	if err != nil {
		return err
	}
	h.Logger.WithFields(logrus.Fields{
		"name":   info.Name,
		"size":   info.Size,
		"driver": h.Sink.Driver(),
	}).Info("Backup written")
	return c.Status(fiber.StatusCreated).JSON(info)
}

// Restore handles POST /api/backups/:name/restore
// @Summary Restore a stored backup
// @Tags Backup
// @Produce json
// @Param name path string true "Backup file name"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 503 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /backups/{name}/restore [post]
func (h *BackupHandler) Restore(c *fiber.Ctx) error {
	if h.Sink == nil {
		return errBackupsDisabled
	}
	name := c.Params("name")
	if err := backup.Restore(c.UserContext(), h.Store, h.Sink, name); err != nil {
		return err
	}
	h.Logger.WithField("name", name).Info("Backup restored")
	return utils.MutationSuccessResponse(c, fiber.StatusOK, name, h.Store.Version(store.Properties.Name()))
}

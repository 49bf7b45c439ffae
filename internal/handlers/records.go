// records.go
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
	"github.com/localnerve/crmdb/internal/middleware"
	"github.com/localnerve/crmdb/internal/permissions"
	"github.com/localnerve/crmdb/internal/services"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/utils"
)

// RecordsHandler serves the CRM collections under /api/data
type RecordsHandler struct {
	Store     *store.Store
	Evaluator permissions.Evaluator
	Clock     Clock
}

func collectionNotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, fmt.Sprintf("Collection '%s' not found", c.Params("collection")))
}

// GetCollections handles GET /api/data
// @Summary Get collections
// @Description Get every record collection the role may view, optionally filtered
// @Tags Records
// @Produce json
// @Param collections query string false "Comma-separated list of collections"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data [get]
func (h *RecordsHandler) GetCollections(c *fiber.Ctx) error {
	names := parseCollections(c)
	if names == nil {
		names = store.RecordNames()
	}

	matrix := store.Permissions.Get(h.Store)
	role := roleOf(c)
	result := make(map[string]any, len(names))
	for _, name := range names {
		coll, ok := store.Lookup(name)
		module, gated := permissions.ModuleFor(name)
		if !ok || !gated || !h.Evaluator.Can(matrix, role, module, permissions.View) {
			continue
		}
		result[name] = coll.Values(h.Store)
	}

	if len(result) == 0 {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// List handles GET /api/data/:collection
// @Summary List records
// @Description Get every record of a collection in insertion order
// @Tags Records
// @Produce json
// @Param collection path string true "Collection name"
// @Success 200 {array} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/{collection} [get]
func (h *RecordsHandler) List(c *fiber.Ctx) error {
	coll, ok := store.Lookup(c.Params("collection"))
	if !ok {
		return collectionNotFound(c)
	}
	return c.Status(fiber.StatusOK).JSON(coll.Values(h.Store))
}

// Get handles GET /api/data/:collection/:key. Opening a property or an
// inquiry is recorded in its view log.
// @Summary Get a record
// @Tags Records
// @Produce json
// @Param collection path string true "Collection name"
// @Param key path string true "Record key"
// @Success 200 {object} map[string]interface{}
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/{collection}/{key} [get]
func (h *RecordsHandler) Get(c *fiber.Ctx) error {
	coll, ok := store.Lookup(c.Params("collection"))
	if !ok {
		return collectionNotFound(c)
	}
	key := c.Params("key")
	record, found := coll.Value(h.Store, key)
	if !found {
		return utils.RecordNotFoundResponse(c, coll.Name(), key)
	}

	var err error
	viewer := services.ViewerFromClaims(middleware.Claims(c))
	switch coll.Name() {
	case store.Properties.Name():
		_, _, err = services.LogPropertyView(c.UserContext(), h.Store, viewer, key, h.Clock.now())
	case store.Inquiries.Name():
		_, _, err = services.LogInquiryView(c.UserContext(), h.Store, viewer, key, h.Clock.now())
	}
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(record)
}

// Create handles POST /api/data/:collection
// @Summary Create a record
// @Description Assign a fresh key, apply defaults and append the record
// @Tags Records
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param record body map[string]interface{} true "Record fields"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/{collection} [post]
func (h *RecordsHandler) Create(c *fiber.Ctx) error {
	coll, ok := store.Lookup(c.Params("collection"))
	if !ok {
		return collectionNotFound(c)
	}
	record, err := coll.AddJSON(c.UserContext(), h.Store, c.Body())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// Replace handles PUT /api/data/:collection
// @Summary Replace a collection
// @Description Replace every record of a collection. Records without a key get one.
// @Tags Records
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param records body []map[string]interface{} true "Records"
// @Success 200 {array} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/{collection} [put]
func (h *RecordsHandler) Replace(c *fiber.Ctx) error {
	coll, ok := store.Lookup(c.Params("collection"))
	if !ok {
		return collectionNotFound(c)
	}
	records, err := coll.ReplaceJSON(c.UserContext(), h.Store, c.Body())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(records)
}

// Update handles PUT /api/data/:collection/:key
// @Summary Replace a record
// @Description Replace the record with the key, keeping its position
// @Tags Records
// @Accept json
// @Produce json
// @Param collection path string true "Collection name"
// @Param key path string true "Record key"
// @Param record body map[string]interface{} true "Record fields"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/{collection}/{key} [put]
func (h *RecordsHandler) Update(c *fiber.Ctx) error {
	coll, ok := store.Lookup(c.Params("collection"))
	if !ok {
		return collectionNotFound(c)
	}
	key := c.Params("key")
	_, res, err := coll.UpdateJSON(c.UserContext(), h.Store, key, c.Body())
	if err != nil {
		return err
	}
	if res == store.NotFound {
		return utils.RecordNotFoundResponse(c, coll.Name(), key)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, key, h.Store.Version(coll.Name()))
}

// Delete handles DELETE /api/data/:collection/:key
// @Summary Delete a record
// @Tags Records
// @Produce json
// @Param collection path string true "Collection name"
// @Param key path string true "Record key"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/{collection}/{key} [delete]
func (h *RecordsHandler) Delete(c *fiber.Ctx) error {
	coll, ok := store.Lookup(c.Params("collection"))
	if !ok {
		return collectionNotFound(c)
	}
	key := c.Params("key")
	res, err := coll.Delete(c.UserContext(), h.Store, key)
	if err != nil {
		return err
	}
	if res == store.NotFound {
		return utils.RecordNotFoundResponse(c, coll.Name(), key)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, key, h.Store.Version(coll.Name()))
}

// ToggleTask handles POST /api/data/tasks/:key/toggle
// @Summary Toggle a task
// @Description Flip a task between Completed and Pending
// @Tags Records
// @Produce json
// @Param key path string true "Task key"
// @Success 200 {object} models.Task
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/tasks/{key}/toggle [post]
func (h *RecordsHandler) ToggleTask(c *fiber.Ctx) error {
	key := c.Params("key")
	task, res, err := store.ToggleTask(c.UserContext(), h.Store, key)
	if err != nil {
		return err
	}
	if res == store.NotFound {
		return utils.RecordNotFoundResponse(c, store.Tasks.Name(), key)
	}
	return c.Status(fiber.StatusOK).JSON(task)
}

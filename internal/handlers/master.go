package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/utils"
)

// MasterHandler serves the master-data lists used by form dropdowns
type MasterHandler struct {
	Store *store.Store
}

func masterNotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, fmt.Sprintf("Master list '%s' not found", c.Params("list")))
}

// Get handles GET /api/master/:list
// @Summary Get a master list
// @Tags Master
// @Produce json
// @Param list path string true "areas, subTypes, societies, features, amenities, sources, contactGroups or commissions"
// @Success 200 {array} models.MasterItem
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /master/{list} [get]
func (h *MasterHandler) Get(c *fiber.Ctx) error {
	list, ok := store.MasterList(c.Params("list"))
	if !ok {
		return masterNotFound(c)
	}
	return c.Status(fiber.StatusOK).JSON(list.List(h.Store))
}

// Replace handles PUT /api/master/:list. Items without a key get one.
// @Summary Replace a master list
// @Tags Master
// @Accept json
// @Produce json
// @Param list path string true "List name"
// @Param items body []models.MasterItem true "Items"
// @Success 200 {array} models.MasterItem
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /master/{list} [put]
func (h *MasterHandler) Replace(c *fiber.Ctx) error {
	list, ok := store.MasterList(c.Params("list"))
	if !ok {
		return masterNotFound(c)
	}
	var items []models.MasterItem
	if err := parseBody(c, &items); err != nil {
		return err
	}
	saved, err := list.Replace(c.UserContext(), h.Store, items)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(saved)
}

// Add handles POST /api/master/:list
// @Summary Add a master list item
// @Tags Master
// @Accept json
// @Produce json
// @Param list path string true "List name"
// @Param item body models.MasterItem true "Item"
// @Success 201 {object} models.MasterItem
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /master/{list} [post]
func (h *MasterHandler) Add(c *fiber.Ctx) error {
	list, ok := store.MasterList(c.Params("list"))
	if !ok {
		return masterNotFound(c)
	}
	var item models.MasterItem
	if err := parseBody(c, &item); err != nil {
		return err
	}
	added, err := list.Add(c.UserContext(), h.Store, item)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(added)
}

// Remove handles DELETE /api/master/:list/:key
// @Summary Remove a master list item
// @Tags Master
// @Produce json
// @Param list path string true "List name"
// @Param key path string true "Item key"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /master/{list}/{key} [delete]
func (h *MasterHandler) Remove(c *fiber.Ctx) error {
	list, ok := store.MasterList(c.Params("list"))
	if !ok {
		return masterNotFound(c)
	}
	key := c.Params("key")
	res, err := list.Delete(c.UserContext(), h.Store, key)
	if err != nil {
		return err
	}
	if res == store.NotFound {
		return utils.RecordNotFoundResponse(c, list.Name(), key)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, key, h.Store.Version(list.Name()))
}

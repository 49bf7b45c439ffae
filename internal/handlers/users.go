package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/models"
	"github.com/localnerve/crmdb/internal/services"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/utils"
)

// UsersHandler serves /api/data/subUsers. Passwords are accepted on write
// and never returned.
type UsersHandler struct {
	Store *store.Store
	Users *services.Users
}

// List handles GET /api/data/subUsers
// @Summary List sub-users
// @Tags Users
// @Produce json
// @Success 200 {array} models.SubUser
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/subUsers [get]
func (h *UsersHandler) List(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.Users.List())
}

// Get handles GET /api/data/subUsers/:key
// @Summary Get a sub-user
// @Tags Users
// @Produce json
// @Param key path string true "User key"
// @Success 200 {object} models.SubUser
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/subUsers/{key} [get]
func (h *UsersHandler) Get(c *fiber.Ctx) error {
	key := c.Params("key")
	user, ok := h.Users.Get(key)
	if !ok {
		return utils.RecordNotFoundResponse(c, store.SubUsers.Name(), key)
	}
	return c.Status(fiber.StatusOK).JSON(user)
}

// Create handles POST /api/data/subUsers
// @Summary Create a sub-user
// @Tags Users
// @Accept json
// @Produce json
// @Param user body models.SubUser true "User with clear-text password"
// @Success 201 {object} models.SubUser
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/subUsers [post]
func (h *UsersHandler) Create(c *fiber.Ctx) error {
	var user models.SubUser
	if err := parseBody(c, &user); err != nil {
		return err
	}
	added, err := h.Users.Add(c.UserContext(), user)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(added)
}

// Update handles PUT /api/data/subUsers/:key. An empty password keeps the
// current one.
// @Summary Replace a sub-user
// @Tags Users
// @Accept json
// @Produce json
// @Param key path string true "User key"
// @Param user body models.SubUser true "User"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/subUsers/{key} [put]
func (h *UsersHandler) Update(c *fiber.Ctx) error {
	var user models.SubUser
	if err := parseBody(c, &user); err != nil {
		return err
	}
	user.Key = c.Params("key")
	_, res, err := h.Users.Update(c.UserContext(), user)
	if err != nil {
		return err
	}
	if res == store.NotFound {
		return utils.RecordNotFoundResponse(c, store.SubUsers.Name(), user.Key)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, user.Key, h.Store.Version(store.SubUsers.Name()))
}

// Delete handles DELETE /api/data/subUsers/:key
// @Summary Delete a sub-user
// @Tags Users
// @Produce json
// @Param key path string true "User key"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /data/subUsers/{key} [delete]
func (h *UsersHandler) Delete(c *fiber.Ctx) error {
	key := c.Params("key")
	res, err := h.Users.Delete(c.UserContext(), key)
	if err != nil {
		return err
	}
	if res == store.NotFound {
		return utils.RecordNotFoundResponse(c, store.SubUsers.Name(), key)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, key, h.Store.Version(store.SubUsers.Name()))
}

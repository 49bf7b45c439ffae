package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/middleware"
	"github.com/localnerve/crmdb/internal/permissions"
	"github.com/localnerve/crmdb/internal/services"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/types"
	"github.com/localnerve/crmdb/internal/utils"
)

// AuthHandler serves sign-in, sign-out and session management
type AuthHandler struct {
	Store     *store.Store
	Auth      *services.Auth
	Evaluator permissions.Evaluator
}

// managesUsers reports whether the caller may act on other users' sessions
func (h *AuthHandler) managesUsers(claims *services.Claims, a permissions.Action) bool {
	return h.Evaluator.Can(store.Permissions.Get(h.Store), claims.Role, permissions.Users, a)
}

// LoginInput is the sign-in form. Username matches a user's email or name.
type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// PasswordInput is the change password form
type PasswordInput struct {
	Current string `json:"current"`
	Next    string `json:"next"`
}

// Login handles POST /api/auth/login
// @Summary Sign in
// @Tags Auth
// @Accept json
// @Produce json
// @Param credentials body LoginInput true "Credentials"
// @Success 200 {object} services.LoginResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var in LoginInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if in.Username == "" || in.Password == "" {
		return &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: "username and password are required",
			Type:    "data.validation.input",
		}
	}

	res, err := h.Auth.Login(c.UserContext(), in.Username, in.Password, c.Get(fiber.HeaderUserAgent), c.IP())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(res)
}

// Logout handles POST /api/auth/logout
// @Summary Sign out
// @Description Remove the current session; its token stops working
// @Tags Auth
// @Produce json
// @Success 200 {object} utils.SuccessResponseStruct
// @Security BearerAuth
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.UserContext(), middleware.Claims(c)); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "", h.Store.Version(store.ActiveSessions.Name()))
}

// ChangePassword handles POST /api/auth/password
// @Summary Change password
// @Tags Auth
// @Accept json
// @Produce json
// @Param passwords body PasswordInput true "Current and new password"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /auth/password [post]
func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	var in PasswordInput
	if err := parseBody(c, &in); err != nil {
		return err
	}
	if in.Next == "" {
		return &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: "a new password is required",
			Type:    "data.validation.input",
		}
	}
	claims := middleware.Claims(c)
	if err := h.Auth.ChangePassword(c.UserContext(), claims, in.Current, in.Next); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, claims.UserID(), h.Store.Version(store.SubUsers.Name()))
}

// Sessions handles GET /api/auth/sessions. Callers without Users view see
// only their own sessions.
// @Summary List signed-in devices
// @Tags Auth
// @Produce json
// @Success 200 {array} models.Session
// @Security BearerAuth
// @Router /auth/sessions [get]
func (h *AuthHandler) Sessions(c *fiber.Ctx) error {
	claims := middleware.Claims(c)
	if h.managesUsers(claims, permissions.View) {
		return c.Status(fiber.StatusOK).JSON(h.Auth.Sessions())
	}
	return c.Status(fiber.StatusOK).JSON(h.Auth.SessionsFor(claims.UserID()))
}

// RevokeSession handles DELETE /api/auth/sessions/:key
// @Summary Sign a device out
// @Tags Auth
// @Produce json
// @Description Users without Users delete permission may only revoke their own sessions.
// @Param key path string true "Session key"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /auth/sessions/{key} [delete]
func (h *AuthHandler) RevokeSession(c *fiber.Ctx) error {
	key := c.Params("key")
	claims := middleware.Claims(c)
	owner := claims.UserID()
	if h.managesUsers(claims, permissions.Delete) {
		owner = ""
	}
	res, err := h.Auth.RevokeSession(c.UserContext(), key, owner)
	if err != nil {
		return err
	}
	if res == store.NotFound {
		return utils.RecordNotFoundResponse(c, store.ActiveSessions.Name(), key)
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, key, h.Store.Version(store.ActiveSessions.Name()))
}

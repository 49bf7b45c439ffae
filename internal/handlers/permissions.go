package handlers

import (
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/permissions"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/types"
	"github.com/localnerve/crmdb/internal/utils"
)

// PermissionsHandler serves the role/module permission matrix
type PermissionsHandler struct {
	Store     *store.Store
	Evaluator permissions.Evaluator
}

// ToggleInput sets one action flag
type ToggleInput struct {
	Value bool `json:"value"`
}

// CheckResult answers a permission query for the signed-in user
type CheckResult struct {
	Role          string            `json:"role"`
	EffectiveRole string            `json:"effectiveRole"`
	Module        string            `json:"module"`
	Action        string            `json:"action,omitempty"`
	Allowed       bool              `json:"allowed"`
	Access        permissions.Grant `json:"access"`
	CanManage     bool              `json:"canManage"`
}

// Get handles GET /api/permissions
// @Summary Get the permission matrix
// @Tags Permissions
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Security BearerAuth
// @Router /permissions [get]
func (h *PermissionsHandler) Get(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(store.Permissions.Get(h.Store))
}

// Replace handles PUT /api/permissions
// @Summary Replace the permission matrix
// @Tags Permissions
// @Accept json
// @Produce json
// @Param matrix body map[string]interface{} true "Role -> module -> grant"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /permissions [put]
func (h *PermissionsHandler) Replace(c *fiber.Ctx) error {
	var m permissions.Matrix
	if err := parseBody(c, &m); err != nil {
		return err
	}
	if m == nil {
		m = permissions.Matrix{}
	}
	if err := store.Permissions.Set(c.UserContext(), h.Store, m); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, fiber.StatusOK, "", h.Store.Version(store.Permissions.Name()))
}

// Toggle handles PATCH /api/permissions/:role/:module/:action
// @Summary Set one permission flag
// @Tags Permissions
// @Accept json
// @Produce json
// @Param role path string true "Role"
// @Param module path string true "Module"
// @Param action path string true "view, create, edit or delete"
// @Param value body ToggleInput true "New value"
// @Success 200 {object} permissions.Grant
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /permissions/{role}/{module}/{action} [patch]
func (h *PermissionsHandler) Toggle(c *fiber.Ctx) error {
	role, module := c.Params("role"), c.Params("module")
	action, err := permissions.ParseAction(c.Params("action"))
	if err != nil {
		return &types.CustomError{Code: fiber.StatusBadRequest, Message: err.Error(), Type: "data.validation.input"}
	}
	if role == "" || !slices.Contains(permissions.Modules, module) {
		return &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: "unknown role or module",
			Type:    "data.validation.input",
		}
	}
	var in ToggleInput
	if err := parseBody(c, &in); err != nil {
		return err
	}

	var grant permissions.Grant
	err = h.Store.Update(c.UserContext(), func(tx *store.Tx) error {
		m := store.Permissions.GetIn(tx).Set(role, module, action, in.Value)
		store.Permissions.SetIn(tx, m)
		grant = m.Lookup(role, module)
		return nil
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusOK).JSON(grant)
}

// Check handles GET /api/permissions/check?module=&action=
// @Summary Check the signed-in user's access
// @Tags Permissions
// @Produce json
// @Param module query string true "Module"
// @Param action query string false "Action; omit for all four flags"
// @Success 200 {object} CheckResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Security BearerAuth
// @Router /permissions/check [get]
func (h *PermissionsHandler) Check(c *fiber.Ctx) error {
	module := c.Query("module")
	if module == "" {
		return &types.CustomError{Code: fiber.StatusBadRequest, Message: "module is required", Type: "data.validation.input"}
	}

	role := roleOf(c)
	matrix := store.Permissions.Get(h.Store)
	result := CheckResult{
		Role:          role,
		EffectiveRole: h.Evaluator.EffectiveRole(role),
		Module:        module,
		Access:        h.Evaluator.Access(matrix, role, module),
		CanManage:     h.Evaluator.CanManage(role),
	}
	if raw := c.Query("action"); raw != "" {
		action, err := permissions.ParseAction(raw)
		if err != nil {
			return &types.CustomError{Code: fiber.StatusBadRequest, Message: err.Error(), Type: "data.validation.input"}
		}
		result.Action = string(action)
		result.Allowed = h.Evaluator.Can(matrix, role, module, action)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

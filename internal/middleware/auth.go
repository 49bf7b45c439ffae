// auth.go
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

package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/permissions"
	"github.com/localnerve/crmdb/internal/services"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/types"
)

const claimsKey = "claims"

// TokenValidator resolves a bearer token to its claims
type TokenValidator interface {
	ValidateToken(token string) (*services.Claims, error)
}

// Authenticate requires a valid bearer token and stores its claims in the
// request context
func Authenticate(auth TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: "Bearer token not found",
				Type:    "auth.token",
			}
		}

		claims, err := auth.ValidateToken(strings.TrimSpace(token))
		if err != nil {
			return &types.CustomError{
				Code:    fiber.StatusUnauthorized,
				Message: fmt.Sprintf("Invalid session: %v", err),
				Type:    "auth.token",
			}
		}

		c.Locals(claimsKey, claims)
		return c.Next()
	}
}

// Claims returns the claims Authenticate stored, or nil
func Claims(c *fiber.Ctx) *services.Claims {
	claims, _ := c.Locals(claimsKey).(*services.Claims)
	return claims
}

func role(c *fiber.Ctx) string {
	if claims := Claims(c); claims != nil {
		return claims.Role
	}
	return ""
}

func denied(module string, action permissions.Action) error {
	return &types.CustomError{
		Code:    fiber.StatusForbidden,
		Message: fmt.Sprintf("Role may not %s %s", action, module),
		Type:    "data.authorization." + module,
	}
}

// RequirePermission checks the signed-in role against the current
// permission matrix before the handler runs
func RequirePermission(s *store.Store, ev permissions.Evaluator, module string, action permissions.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ev.Can(store.Permissions.Get(s), role(c), module, action) {
			return denied(module, action)
		}
		return c.Next()
	}
}

// RequireCollectionPermission gates the /data/:collection routes by the
// module of the named collection
func RequireCollectionPermission(s *store.Store, ev permissions.Evaluator, action permissions.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		collection := c.Params("collection")
		module, ok := permissions.ModuleFor(collection)
		if !ok {
			return &types.CustomError{
				Code:    fiber.StatusNotFound,
				Message: fmt.Sprintf("Collection '%s' not found", collection),
				Type:    "data.collection",
			}
		}
		if !ev.Can(store.Permissions.Get(s), role(c), module, action) {
			return denied(module, action)
		}
		return c.Next()
	}
}

// RequireManage allows only the roles that may edit the permission matrix
func RequireManage(ev permissions.Evaluator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !ev.CanManage(role(c)) {
			return &types.CustomError{
				Code:    fiber.StatusForbidden,
				Message: "Role may not manage permissions",
				Type:    "data.authorization.permissions",
			}
		}
		return c.Next()
	}
}

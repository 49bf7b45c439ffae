// common.go
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
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/backup"
	"github.com/localnerve/crmdb/internal/middleware"
	"github.com/localnerve/crmdb/internal/services"
	"github.com/localnerve/crmdb/internal/store"
	"github.com/localnerve/crmdb/internal/types"
	"github.com/localnerve/crmdb/internal/utils"
)

// Clock returns the current time. Handlers take one so tests can pin dates.
type Clock func() time.Time

func (c Clock) now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// today is the calendar date of the request. The UI sends its offset in
// X-Timezone-Offset as minutes east of UTC; without it UTC is used.
func today(c *fiber.Ctx, clock Clock) types.Date {
	now := clock.now().UTC()
	if offset := c.Get("X-Timezone-Offset"); offset != "" {
		if minutes, err := strconv.Atoi(offset); err == nil && minutes >= -14*60 && minutes <= 14*60 {
			now = now.Add(time.Duration(minutes) * time.Minute)
		}
	}
	return types.DateOf(now)
}

// roleOf is the signed-in user's role, empty when unauthenticated
func roleOf(c *fiber.Ctx) string {
	if claims := middleware.Claims(c); claims != nil {
		return claims.Role
	}
	return ""
}

// parseBody decodes the request body into v
func parseBody(c *fiber.Ctx, v any) error {
	if err := json.Unmarshal(c.Body(), v); err != nil {
		return &types.CustomError{
			Code:    fiber.StatusBadRequest,
			Message: fmt.Sprintf("Invalid request body: %v", err),
			Type:    "data.validation.input",
		}
	}
	return nil
}

// parseCollections extracts the optional collections filter, supporting
// both repeated 'collections' keys and comma-separated values.
func parseCollections(c *fiber.Ctx) []string {
	seen := make(map[string]struct{})
	var collections []string

	args := c.Context().QueryArgs()
	for key, value := range args.All() {
		if string(key) != "collections" {
			continue
		}
		for _, v := range strings.Split(string(value), ",") {
			v = strings.TrimSpace(v)
			if _, dup := seen[v]; v != "" && !dup {
				seen[v] = struct{}{}
				collections = append(collections, v)
			}
		}
	}

	return collections
}

// ErrorHandler renders every error returned by a handler or middleware in
// the standard envelope
func ErrorHandler(c *fiber.Ctx, err error) error {
	var (
		ce *types.CustomError
		fe *fiber.Error
	)

	switch {
	case errors.As(err, &ce):
		return utils.ErrorResponse(c, ce.Message, ce.Code, ce.Type)
	case errors.As(err, &fe):
		return utils.ErrorResponse(c, fe.Message, fe.Code, "unknown")
	case errors.Is(err, store.ErrConflict):
		return utils.VersionErrorResponse(c)
	case errors.Is(err, store.ErrInvalidRecord),
		errors.Is(err, store.ErrInvalidImport),
		errors.Is(err, backup.ErrInvalidName):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "data.validation.input")
	case errors.Is(err, services.ErrInvalidCredentials):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "auth.credentials")
	case errors.Is(err, services.ErrInvalidToken):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "auth.token")
	case errors.Is(err, services.ErrBuiltinAccount):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusBadRequest, "auth.builtin")
	case errors.Is(err, services.ErrAlreadyConverted):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusConflict, "data.state")
	case errors.Is(err, backup.ErrNotFound):
		return utils.NotFoundResponse(c, err.Error())
	case errors.Is(err, store.ErrClosed):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusServiceUnavailable, "unavailable")
	}

	return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, "unknown")
}

// NotFound is the catch-all for unmatched routes
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}

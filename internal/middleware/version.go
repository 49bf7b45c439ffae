package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/crmdb/internal/types"
)

// APIVersion is the current API version
const APIVersion = "1.0.0"

// VersionMiddleware reads the X-Api-Version header, stores it in context and
// echoes the served version. Only major version 1 is served.
func VersionMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		version := c.Get("X-Api-Version", APIVersion)

		// Support version aliases
		switch version {
		case "1", "1.0":
			version = APIVersion
		}

		if major, _, _ := strings.Cut(version, "."); major != "1" {
			return &types.CustomError{
				Code:    fiber.StatusBadRequest,
				Message: fmt.Sprintf("Unsupported API version %q", version),
				Type:    "api.version",
			}
		}

		c.Locals("apiVersion", version)
		c.Set("X-Api-Version", APIVersion)

		return c.Next()
	}
}

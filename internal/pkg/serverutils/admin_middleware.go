package serverutils

import (
	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

const HeaderAdminKey = "X-Admin-Key"

// AdminKeyMiddleware guards maintenance routes with a shared key whose bcrypt
// hash lives in config. An empty hash disables the routes entirely.
func AdminKeyMiddleware(hash string) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		if hash == "" {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse("Admin access is disabled"))
		}

		key := ctx.Get(HeaderAdminKey)
		if key == "" {
			return ctx.Status(fiber.StatusUnauthorized).JSON(ErrorResponse("Admin key required"))
		}

		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(key)); err != nil {
			return ctx.Status(fiber.StatusForbidden).JSON(ErrorResponse("Invalid admin key"))
		}

		return ctx.Next()
	}
}

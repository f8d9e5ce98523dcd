package auth

import (
	"github.com/gofiber/fiber/v2"
	jwtware "github.com/gofiber/jwt/v2"

	"github.com/wichananm65/tabdil-hub-backend/internal/apperror"
	"github.com/wichananm65/tabdil-hub-backend/internal/response"
)

// Middleware rejects requests without a valid bearer token signed with
// secret. Failures use the error envelope.
func Middleware(secret string) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ContextKey:    ContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			message := "Invalid or expired token"
			if err.Error() == "Missing or malformed JWT" {
				message = "Missing or malformed token"
			}
			return response.Error(c, apperror.Unauthorized(message))
		},
	})
}

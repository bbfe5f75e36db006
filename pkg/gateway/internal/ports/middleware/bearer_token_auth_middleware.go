package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/minima-tools/go-minima-gateway/pkg/gateway/internal/app"
)

// BearerTokenAuthorizationMiddleware returns a fiber.Handler that validates the
// Bearer token present in the Authorization header of incoming HTTP requests.
// Requests missing the header or carrying a wrong token never reach the handler.
func BearerTokenAuthorizationMiddleware(expectedToken string) fiber.Handler {
	const scheme = "Bearer "

	return func(c *fiber.Ctx) error {
		auth := c.Get(fiber.HeaderAuthorization)
		if auth == "" {
			return NewMissingAuthorizationHeaderError()
		}

		if !strings.HasPrefix(auth, scheme) {
			return NewMissingBearerTokenValueError()
		}

		token := strings.TrimPrefix(auth, scheme)
		if token != expectedToken {
			return NewInvalidBearerTokenValueError()
		}

		return c.Next()
	}
}

// NewMissingAuthorizationHeaderError returns an app.Error indicating that the
// Authorization header is missing from the request.
func NewMissingAuthorizationHeaderError() app.Error {
	const str = "Unauthorized access: Missing Authorization header in the request"
	return app.NewAuthorizationError(str, str)
}

// NewMissingBearerTokenValueError returns an app.Error indicating that the
// Bearer token value is missing from the Authorization header.
func NewMissingBearerTokenValueError() app.Error {
	const str = "Unauthorized access: Missing Authorization header Bearer token value"
	return app.NewAuthorizationError(str, str)
}

// NewInvalidBearerTokenValueError returns an app.Error indicating that the
// Bearer token provided is invalid or not recognized.
func NewInvalidBearerTokenValueError() app.Error {
	const str = "Forbidden access: Invalid Bearer token value"
	return app.NewAccessForbiddenError(str, str)
}

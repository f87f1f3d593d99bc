package middleware

import (
	"strings"

	"storefront/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// TokenCookie is the cookie read when a request carries no Authorization
// header, as happens on browser redirects from the payment provider.
const TokenCookie = "storefront_token"

const sessionKey = "session"

// TokenValidator turns a bearer token into a session.
type TokenValidator interface {
	ValidateToken(token string) (models.Session, error)
}

// LoadSession resolves the shopper behind the request and stores the session
// in the Fiber context. Requests without a valid token continue anonymously;
// services decide whether they need a login.
func LoadSession(validator TokenValidator, logger zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" {
			token = c.Cookies(TokenCookie)
		}
		if token == "" {
			return c.Next()
		}

		sess, err := validator.ValidateToken(token)
		if err != nil {
			logger.Debug().Err(err).Str("path", c.Path()).Msg("ignoring invalid session token")
			return c.Next()
		}
		c.Locals(sessionKey, sess)
		return c.Next()
	}
}

// SessionFrom returns the session stored by LoadSession, or an anonymous one.
func SessionFrom(c *fiber.Ctx) models.Session {
	sess, _ := c.Locals(sessionKey).(models.Session)
	return sess
}

// bearerToken extracts the token of a "Bearer <token>" header.
func bearerToken(header string) string {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

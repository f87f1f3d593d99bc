package handlers

import (
	"errors"
	"fmt"
	"time"

	"storefront/internal/middleware"
	"storefront/internal/notify"
	"storefront/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// SessionHandler handles local login and logout.
type SessionHandler struct {
	sessions *services.SessionService
	carts    *services.CartService
	validate *validator.Validate
	responder
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *services.SessionService, carts *services.CartService, notices *notify.Recorder, loginPath string, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{
		sessions:  sessions,
		carts:     carts,
		validate:  validator.New(),
		responder: newResponder(notices, loginPath, logger),
	}
}

// RegisterRoutes registers the session routes. Login is only offered when
// local accounts are configured.
func (h *SessionHandler) RegisterRoutes(router fiber.Router) {
	sessionRoutes := router.Group("/session")
	if h.sessions.LocalLogin() {
		sessionRoutes.Post("/", h.HandleLogin)
	}
	sessionRoutes.Delete("/", h.HandleLogout)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// HandleLogin checks a local account and issues a token, also set as a
// cookie for the payment provider's browser redirects.
func (h *SessionHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if err := h.validate.Struct(req); err != nil {
		errorMessages := make(map[string]string)
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, e := range verrs {
				errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
			}
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	sess, err := h.sessions.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		h.logger.Info().Str("username", req.Username).Msg("login rejected")
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"message": "Authentication failed",
			"error":   err.Error(),
		})
	}

	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    sess.Token,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return c.JSON(fiber.Map{
		"message": "Login successful",
		"token":   sess.Token,
		"session": sess,
	})
}

// HandleLogout drops the shopper's cart session and token cookie.
func (h *SessionHandler) HandleLogout(c *fiber.Ctx) error {
	sess := middleware.SessionFrom(c)
	if sess.UserID != "" {
		h.carts.Discard(sess.UserID)
		h.notices.Drain(sess.UserID)
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.TokenCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
	})
	return c.SendStatus(fiber.StatusNoContent)
}

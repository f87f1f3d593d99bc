package handlers

import (
	"context"
	"errors"
	"net/url"

	"storefront/internal/models"
	"storefront/internal/notify"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
)

// responder renders service results and attaches the notifications produced
// while serving the request.
type responder struct {
	notices   *notify.Recorder
	loginPath string
	logger    zerolog.Logger
}

func newResponder(notices *notify.Recorder, loginPath string, logger zerolog.Logger) responder {
	if notices == nil {
		notices = notify.NewRecorder()
	}
	return responder{notices: notices, loginPath: loginPath, logger: logger}
}

func (r responder) ok(c *fiber.Ctx, sess models.Session, status int, body fiber.Map) error {
	body["notifications"] = r.notices.Drain(sess.UserID)
	return c.Status(status).JSON(body)
}

func (r responder) fail(c *fiber.Ctx, sess models.Session, err error) error {
	status := statusFor(err)
	body := fiber.Map{
		"message":       err.Error(),
		"notifications": r.notices.Drain(sess.UserID),
	}
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		body["kind"] = svcErr.Kind
		if len(svcErr.Fields) > 0 {
			body["errors"] = svcErr.Fields
		}
	}
	if status == fiber.StatusUnauthorized {
		body["redirectTo"] = r.loginPath
	}
	if status >= fiber.StatusInternalServerError {
		r.logger.Error().Err(err).Str("path", c.Path()).Int("status", status).Msg("request failed")
	}
	return c.Status(status).JSON(body)
}

func (r responder) badRequest(c *fiber.Ctx, sess models.Session, message string, err error) error {
	body := fiber.Map{
		"message":       message,
		"notifications": r.notices.Drain(sess.UserID),
	}
	if err != nil {
		body["error"] = err.Error()
	}
	return c.Status(fiber.StatusBadRequest).JSON(body)
}

// statusFor maps an error kind to an HTTP status.
func statusFor(err error) int {
	if errors.Is(err, services.ErrOrderNotCancellable) {
		return fiber.StatusConflict
	}
	switch services.KindOf(err) {
	case services.KindAuthenticationRequired:
		return fiber.StatusUnauthorized
	case services.KindValidation, services.KindEmptyCart, services.KindInvalidPaymentCallback:
		return fiber.StatusBadRequest
	case services.KindNetworkOrServer, services.KindCheckoutFailed, services.KindPaymentConfirmationFailed:
		return fiber.StatusBadGateway
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fiber.StatusRequestTimeout
	}
	return fiber.StatusInternalServerError
}

// queryValues parses the raw query string. Malformed pairs are skipped and
// the rest is kept.
func (r responder) queryValues(c *fiber.Ctx) url.Values {
	values, err := url.ParseQuery(string(c.Request().URI().QueryString()))
	if err != nil {
		r.logger.Debug().Err(err).Str("path", c.Path()).Msg("skipping malformed query parameters")
	}
	if values == nil {
		values = url.Values{}
	}
	return values
}

func isNotFound(err error) bool {
	return errors.Is(err, repositories.ErrNotFound)
}

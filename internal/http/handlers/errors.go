package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"avtosotuv/internal/domain"
	applog "avtosotuv/internal/log"
)

const msgServerError = "Server xatosi"

var denyResponses = map[domain.DenyReason]struct {
	status int
	msg    string
}{
	domain.DenyBlocked:        {fiber.StatusForbidden, "Sizning hisobingiz bloklangan"},
	domain.DenyQuotaExceeded:  {fiber.StatusTooManyRequests, "Aktiv e'lonlar soni limitga yetdi"},
	domain.DenyCooldownActive: {fiber.StatusTooManyRequests, "24 soat ichida faqat 1 ta e'lon joylash mumkin"},
	domain.DenyDuplicate:      {fiber.StatusConflict, "Bu e'lon allaqachon mavjud"},
}

// respondError maps a service error to its status code. Unknown errors are
// logged under action and answered with a generic message.
func respondError(c *fiber.Ctx, action string, err error) error {
	var ve *domain.ValidationError
	if errors.As(err, &ve) {
		applog.Security(c, "validation.fail", map[string]any{"field": ve.Field, "action": action})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": ve.Msg, "field": ve.Field})
	}
	if reason, ok := domain.DenyReasonOf(err); ok {
		r := denyResponses[reason]
		applog.Security(c, "cars.create.denied", map[string]any{"reason": string(reason)})
		return jsonError(c, r.status, r.msg)
	}
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		return jsonError(c, fiber.StatusUnauthorized, "Avtorizatsiya xatosi")
	case errors.Is(err, domain.ErrBlocked):
		return jsonError(c, fiber.StatusForbidden, "Sizning hisobingiz bloklangan")
	case errors.Is(err, domain.ErrForbidden):
		return jsonError(c, fiber.StatusForbidden, "Ruxsat yo'q")
	case errors.Is(err, domain.ErrNotFound):
		return jsonError(c, fiber.StatusNotFound, "Topilmadi")
	case errors.Is(err, domain.ErrInvalidTransition):
		return jsonError(c, fiber.StatusConflict, "Holatni o'zgartirib bo'lmaydi")
	}
	applog.Error(c, action, err, nil)
	return jsonError(c, fiber.StatusInternalServerError, msgServerError)
}

func jsonError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"error": msg})
}

// ErrorHandler is the last-resort handler for errors returned past the
// route handlers, including panics caught by recover.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) && fe.Code < fiber.StatusInternalServerError {
		if fe.Code == fiber.StatusRequestEntityTooLarge {
			applog.Security(c, "request.too_large", nil)
		}
		return jsonError(c, fe.Code, fe.Message)
	}
	applog.Error(c, "server.error", err, nil)
	return jsonError(c, fiber.StatusInternalServerError, msgServerError)
}

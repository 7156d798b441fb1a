package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"avtosotuv/internal/domain"
	applog "avtosotuv/internal/log"
	"avtosotuv/internal/services"
)

type AuthHandler struct {
	Auth *services.AuthService
}

type loginRequest struct {
	InitData string `json:"initData"`
}

// POST /api/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_body"})
		return jsonError(c, fiber.StatusBadRequest, "initData taqdim etilmagan")
	}
	res, err := h.Auth.Login(c.UserContext(), req.InitData)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUnauthorized):
			applog.Security(c, "auth.login.fail", map[string]any{"reason": "bad_signature"})
			return jsonError(c, fiber.StatusUnauthorized, "Telegram autentifikatsiya xatosi")
		case errors.Is(err, domain.ErrBlocked):
			applog.Security(c, "auth.login.fail", map[string]any{"reason": "blocked"})
		}
		return respondError(c, "auth.login.error", err)
	}
	c.Locals("userID", res.User.ID)
	applog.Audit(c, "auth.login.success", map[string]any{"telegram_id": res.User.TelegramID, "admin": res.User.IsAdmin})
	return c.JSON(res)
}

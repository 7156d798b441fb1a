package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"avtosotuv/internal/domain"
	"avtosotuv/internal/services"
	"avtosotuv/internal/validate"
)

type DirectoryHandler struct {
	Directory *services.DirectoryService
}

// GET /api/services
func (h *DirectoryHandler) List(c *fiber.Ctx) error {
	list, err := h.Directory.List(c.UserContext(), c.Query("type"), c.Query("city"), c.Query("search"))
	if err != nil {
		return respondError(c, "services.list.fail", err)
	}
	return c.JSON(fiber.Map{"services": list})
}

// GET /api/services/:id
func (h *DirectoryHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "Noto'g'ri ID")
	}
	s, err := h.Directory.Get(c.UserContext(), id)
	if err != nil {
		return respondError(c, "services.detail.fail", err)
	}
	return c.JSON(fiber.Map{"service": s})
}

// GET /api/constants
func Constants(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"brands": domain.Brands,
		"cities": domain.Cities,
		"years":  domain.Years(time.Now().Year()),
	})
}

// GET /api/health
func Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339Nano)})
}

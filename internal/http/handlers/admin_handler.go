package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "avtosotuv/internal/log"
	"avtosotuv/internal/services"
	"avtosotuv/internal/validate"
)

type AdminHandler struct {
	Admin *services.AdminService
}

// GET /api/admin/stats
func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	st, err := h.Admin.Stats(c.UserContext())
	if err != nil {
		return respondError(c, "admin.stats.fail", err)
	}
	return c.JSON(st)
}

// GET /api/admin/cars
func (h *AdminHandler) Cars(c *fiber.Ctx) error {
	page := validate.Page(c.Query("page"))
	cars, total, err := h.Admin.ListCars(c.UserContext(), page)
	if err != nil {
		return respondError(c, "admin.cars.list.fail", err)
	}
	return c.JSON(fiber.Map{
		"cars":       cars,
		"total":      total,
		"page":       page,
		"totalPages": totalPages(total, services.AdminPageSize),
	})
}

// GET /api/admin/users
func (h *AdminHandler) Users(c *fiber.Ctx) error {
	page := validate.Page(c.Query("page"))
	users, total, err := h.Admin.ListUsers(c.UserContext(), page)
	if err != nil {
		return respondError(c, "admin.users.list.fail", err)
	}
	return c.JSON(fiber.Map{
		"users":      users,
		"total":      total,
		"page":       page,
		"totalPages": totalPages(total, services.AdminPageSize),
	})
}

// DELETE /api/admin/cars/:id
func (h *AdminHandler) DeleteCar(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "Noto'g'ri ID")
	}
	admin, _ := actorOf(c)
	if err := h.Admin.DeleteCar(c.UserContext(), admin, id); err != nil {
		return respondError(c, "admin.cars.delete.fail", err)
	}
	applog.Audit(c, "admin.cars.delete", map[string]any{"car_id": id})
	return c.JSON(fiber.Map{"message": "E'lon o'chirildi"})
}

// PUT /api/admin/users/:id/block
func (h *AdminHandler) ToggleBlock(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "Noto'g'ri ID")
	}
	admin, _ := actorOf(c)
	u, err := h.Admin.ToggleBlock(c.UserContext(), admin, id)
	if err != nil {
		return respondError(c, "admin.users.block.fail", err)
	}
	applog.Audit(c, "admin.users.block", map[string]any{"target_id": id, "blocked": u.IsBlocked})
	msg := "Blokdan chiqarildi"
	if u.IsBlocked {
		msg = "Foydalanuvchi bloklandi"
	}
	return c.JSON(fiber.Map{"user": u, "message": msg})
}

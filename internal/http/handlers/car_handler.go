package handlers

import (
	"github.com/gofiber/fiber/v2"

	"avtosotuv/internal/domain"
	applog "avtosotuv/internal/log"
	"avtosotuv/internal/services"
	"avtosotuv/internal/validate"
)

type CarHandler struct {
	Listings *services.ListingService
}

// GET /api/cars
func (h *CarHandler) List(c *fiber.Ctx) error {
	f, ok := carFilter(c)
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "filter"})
		return jsonError(c, fiber.StatusBadRequest, "Noto'g'ri filtr")
	}
	cars, total, err := h.Listings.List(c.UserContext(), f)
	if err != nil {
		return respondError(c, "cars.list.fail", err)
	}
	return c.JSON(fiber.Map{
		"cars":       cars,
		"total":      total,
		"page":       f.Page,
		"totalPages": totalPages(total, f.Limit),
	})
}

// GET /api/cars/my
func (h *CarHandler) Mine(c *fiber.Ctx) error {
	actor, _ := actorOf(c)
	cars, err := h.Listings.Mine(c.UserContext(), actor)
	if err != nil {
		return respondError(c, "cars.mine.fail", err)
	}
	return c.JSON(fiber.Map{"cars": cars})
}

// GET /api/cars/:id
func (h *CarHandler) Detail(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "Noto'g'ri ID")
	}
	var viewer *domain.Actor
	if a, ok := actorOf(c); ok {
		viewer = &a
	}
	car, err := h.Listings.Get(c.UserContext(), id, viewer)
	if err != nil {
		return respondError(c, "cars.detail.fail", err)
	}
	return c.JSON(fiber.Map{"car": car})
}

// POST /api/cars
func (h *CarHandler) Create(c *fiber.Ctx) error {
	actor, _ := actorOf(c)
	var in services.CreateCarInput
	if err := c.BodyParser(&in); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"field": "body"})
		return jsonError(c, fiber.StatusBadRequest, "Barcha maydonlarni to'ldiring")
	}
	car, err := h.Listings.Create(c.UserContext(), actor, in)
	if err != nil {
		return respondError(c, "cars.create.fail", err)
	}
	applog.Audit(c, "cars.create", map[string]any{"car_id": car.ID})
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"car": car})
}

// DELETE /api/cars/:id
func (h *CarHandler) Delete(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return jsonError(c, fiber.StatusBadRequest, "Noto'g'ri ID")
	}
	actor, _ := actorOf(c)
	if err := h.Listings.Delete(c.UserContext(), actor, id); err != nil {
		return respondError(c, "cars.delete.fail", err)
	}
	applog.Audit(c, "cars.delete", map[string]any{"car_id": id})
	return c.JSON(fiber.Map{"message": "E'lon o'chirildi"})
}

func carFilter(c *fiber.Ctx) (domain.CarFilter, bool) {
	f := domain.CarFilter{
		Brand:  validate.Search(c.Query("brand")),
		City:   validate.Search(c.Query("city")),
		Search: validate.Search(c.Query("search")),
		Sort:   validate.Sort(c.Query("sort")),
		Page:   validate.Page(c.Query("page")),
		Limit:  validate.LimitParam(c.Query("limit")),
	}
	yearFrom, ok1 := validate.OptInt(c.Query("yearFrom"))
	yearTo, ok2 := validate.OptInt(c.Query("yearTo"))
	priceFrom, ok3 := validate.OptInt(c.Query("priceFrom"))
	priceTo, ok4 := validate.OptInt(c.Query("priceTo"))
	if !ok1 || !ok2 || !ok3 || !ok4 || yearFrom > 9999 || yearTo > 9999 {
		return f, false
	}
	f.YearFrom, f.YearTo = int(yearFrom), int(yearTo)
	f.PriceFrom, f.PriceTo = priceFrom, priceTo
	return f, true
}

func totalPages(total, limit int) int {
	if limit < 1 {
		return 0
	}
	return (total + limit - 1) / limit
}

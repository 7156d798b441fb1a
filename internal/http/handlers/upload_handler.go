package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "avtosotuv/internal/log"
	"avtosotuv/internal/services"
)

type UploadHandler struct {
	Uploads *services.UploadService
}

// POST /api/upload
func (h *UploadHandler) Images(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return jsonError(c, fiber.StatusBadRequest, "Rasm yuklanmadi")
	}
	urls, err := h.Uploads.SaveImages(c.UserContext(), form.File["images"])
	if err != nil {
		return respondError(c, "upload.fail", err)
	}
	applog.Info(c, "upload.ok", map[string]any{"count": len(urls)})
	return c.JSON(fiber.Map{"urls": urls})
}

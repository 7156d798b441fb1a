package handlers

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "avtosotuv/internal/log"
)

const (
	// five images of 5 MiB plus multipart overhead
	bodyLimit      = 30 << 20
	defaultRateMax = 100
	rateWindow     = 15 * time.Minute
	loginWindow    = time.Minute
	loginMax       = 20
)

// NewApp builds the fiber app with the global middleware and every route.
func NewApp(d *Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "avtosotuv",
		ErrorHandler: ErrorHandler,
		BodyLimit:    bodyLimit,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	app.Use(requestid.New())
	app.Use(fiberrecover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${locals:requestid} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(cors.New(cors.Config{
		AllowOrigins:     d.FrontendURL,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowCredentials: d.FrontendURL != "*",
	}))

	if d.UploadDir != "" {
		app.Get("/uploads/*", serveUpload(d.UploadDir))
	}

	Register(app, d)

	app.Use(func(c *fiber.Ctx) error {
		return jsonError(c, fiber.StatusNotFound, "Topilmadi")
	})
	return app
}

// Register mounts the API under /api.
func Register(app *fiber.App, d *Deps) {
	rateMax := d.RateLimitMax
	if rateMax <= 0 {
		rateMax = defaultRateMax
	}
	api := app.Group("/api", limiter.New(limiter.Config{
		Max:        rateMax,
		Expiration: rateWindow,
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.api.hit", nil)
			return jsonError(c, fiber.StatusTooManyRequests, "So'rovlar limiti oshib ketdi. Iltimos, keyinroq urinib ko'ring.")
		},
	}))

	authH := &AuthHandler{Auth: d.Auth}
	carH := &CarHandler{Listings: d.Listings}
	adminH := &AdminHandler{Admin: d.Admin}
	dirH := &DirectoryHandler{Directory: d.Directory}
	upH := &UploadHandler{Uploads: d.Uploads}

	api.Post("/auth/login", limiter.New(limiter.Config{
		Max:        loginMax,
		Expiration: loginWindow,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|login"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.login.hit", nil)
			return jsonError(c, fiber.StatusTooManyRequests, "Juda ko'p urinish. Keyinroq qayta urinib ko'ring.")
		},
	}), authH.Login)

	user := RequireUser(d.Auth)
	api.Get("/cars", carH.List)
	api.Get("/cars/my", user, carH.Mine)
	api.Get("/cars/:id", OptionalUser(d.Auth), carH.Detail)
	api.Post("/cars", user, carH.Create)
	api.Delete("/cars/:id", user, carH.Delete)

	api.Post("/upload", user, upH.Images)

	api.Get("/services", dirH.List)
	api.Get("/services/:id", dirH.Detail)
	api.Get("/constants", Constants)
	api.Get("/health", Health)

	admin := api.Group("/admin", RequireAdmin(d.Auth))
	admin.Get("/stats", adminH.Stats)
	admin.Get("/cars", adminH.Cars)
	admin.Get("/users", adminH.Users)
	admin.Delete("/cars/:id", adminH.DeleteCar)
	admin.Put("/users/:id/block", adminH.ToggleBlock)
}

// serveUpload serves stored images read-only and refuses traversal.
func serveUpload(dir string) fiber.Handler {
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	return func(c *fiber.Ctx) error {
		path := c.Params("*")
		rawLower := strings.ToLower(path)
		if strings.Contains(rawLower, "..") || strings.Contains(rawLower, "%2e") || strings.Contains(rawLower, "\x00") {
			applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		clean := filepath.Clean(path)
		if clean == "." || strings.Contains(clean, "/") || filepath.IsAbs(clean) {
			applog.Security(c, "uploads.traversal.block", map[string]any{"path": path})
			return c.SendStatus(fiber.StatusNotFound)
		}
		return c.SendFile(filepath.Join(dir, clean))
	}
}

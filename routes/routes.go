package routes

import (
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"stockroom/controllers"
	"stockroom/inventory"
	"stockroom/middleware"
	"stockroom/session"
)

type Deps struct {
	Sessions     *session.Store
	Inventory    inventory.Store
	Logger       *slog.Logger
	AllowOrigins string
	WebDir       string
	AccessLog    bool
}

// New builds the fiber app with middleware and every route registered.
func New(d Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "stockroom",
		DisableStartupMessage: true,
		ErrorHandler:          controllers.NewErrorHandler(d.Logger),
	})

	app.Use(recover.New())
	if d.AccessLog {
		app.Use(logger.New())
	}

	allow := d.AllowOrigins
	if strings.TrimSpace(allow) == "" {
		allow = "*"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allow,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: allow != "*",
	}))

	RegisterRoutes(app, d)
	return app
}

func RegisterRoutes(app *fiber.App, d Deps) {
	auth := controllers.NewAuthController(d.Sessions, d.Logger)
	products := controllers.NewProductController(d.Inventory, d.Logger)
	guard := middleware.RequireSession(d.Sessions)

	// auth, no token needed
	app.Post("/api/login", auth.Login)
	app.Post("/api/logout", auth.Logout)
	app.Get("/api/verify", auth.Verify)

	// products
	app.Get("/api/products", guard, products.ListProducts)
	app.Post("/api/products", guard, products.CreateProduct)
	app.Get("/api/product", guard, products.GetProduct)
	app.Put("/api/product", guard, products.UpdateProduct)
	app.Delete("/api/product", guard, products.DeleteProduct)

	// stock
	app.Get("/api/statistics", guard, products.Statistics)
	app.Get("/api/low-stock", guard, products.LowStock)
	app.Post("/api/stock-in", guard, products.StockIn)
	app.Post("/api/stock-out", guard, products.StockOut)

	// frontend
	app.Get("/*", controllers.Pages(d.WebDir))
}

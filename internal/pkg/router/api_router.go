package router

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/vikramdxb02-del/smmcompare/app/controllers"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/middleware"
)

type ApiRouter struct {
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	api := app.Group("/api", limiter.New())
	api.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
			"message": "Hello from api",
		})
	})

	v1 := api.Group("/v1")

	// Public search
	v1.Get("/services/search", controllers.HandleServiceSearch)

	// Admin bootstrap: the handler itself allows the first admin to be
	// created without a session and requires one afterwards.
	v1.Post("/admin/create-admin", controllers.HandleCreateAdmin)

	admin := v1.Group("/admin", middleware.RequireAPIAdmin)
	admin.Get("/users", controllers.HandleAdminListUsers)
	admin.Get("/providers", controllers.HandleAdminListProviders)
	admin.Post("/providers", controllers.HandleAdminCreateProvider)
	admin.Put("/providers/:id", controllers.HandleAdminUpdateProvider)
	admin.Delete("/providers/:id", controllers.HandleAdminDeleteProvider)
	admin.Post("/providers/:id/fetch-services", controllers.HandleAdminFetchServices)
	admin.Get("/providers/test-api", controllers.HandleAdminTestAPI)
}

func NewApiRouter() *ApiRouter {
	return &ApiRouter{}
}

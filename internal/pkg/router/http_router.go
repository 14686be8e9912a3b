package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/vikramdxb02-del/smmcompare/app/controllers"
	"github.com/vikramdxb02-del/smmcompare/app/repository"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/database"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/middleware"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/oauth"
	"github.com/vikramdxb02-del/smmcompare/internal/pkg/session"
)

type HttpRouter struct {
}

func (h HttpRouter) InstallRouter(app *fiber.App) {
	// init session
	session.NewSessionStore()

	// init oauth providers
	oauth.Setup()

	// repositories back every controller, wire them before any handler runs
	repository.InitializeFactory(database.GetDB())
	controllers.InitializeIngestRunner()

	// Apply UserContext middleware globally as first middleware
	app.Use(middleware.UserContextMiddleware)

	h.registerPublicRoutes(app)
	h.registerCSRFProtectedRoutes(app)
}

func NewHttpRouter() *HttpRouter {
	return &HttpRouter{}
}

func loggedInMiddleware(c *fiber.Ctx) error {
	// UserContextMiddleware already set all user context; handlers read it
	// via usercontext.GetUserContext(c).
	return c.Next()
}
